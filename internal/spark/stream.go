// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package spark

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/log"
	"github.com/mattn/go-runewidth"
)

// =============================================================================
// CHUNK SOURCE
// =============================================================================

// ChunkSource yields the raw byte chunks of a response body in arrival order.
// Next returns io.EOF once the sequence is exhausted. A returned slice is
// only valid until the following call.
type ChunkSource interface {
	Next() ([]byte, error)
}

// readerSource adapts an io.Reader: every successful Read is one chunk.
type readerSource struct {
	r       io.Reader
	buf     []byte
	pending error
}

// defaultChunkBuffer is the read size for one network chunk.
const defaultChunkBuffer = 32 * 1024

// NewReaderSource returns a ChunkSource reading r.
func NewReaderSource(r io.Reader) ChunkSource {
	return &readerSource{r: r, buf: make([]byte, defaultChunkBuffer)}
}

// Next reads the next chunk.
func (s *readerSource) Next() ([]byte, error) {
	if s.pending != nil {
		return nil, s.pending
	}
	for {
		n, err := s.r.Read(s.buf)
		if n > 0 {
			// Deliver the data now, report the error on the next call.
			s.pending = err
			return s.buf[:n], nil
		}
		if err != nil {
			s.pending = err
			return nil, err
		}
	}
}

// =============================================================================
// EVENT DECODING
// =============================================================================

// ParseEvent decodes one unit of stream text: a whole chunk under
// FramingChunks or a single line under FramingLines.
//
// The unit must be valid UTF-8, start with "data: " and carry either the
// "[DONE]" token or a delta object. Anything else is EventNoise.
func ParseEvent(unit []byte) Event {
	if !utf8.Valid(unit) {
		return Event{Kind: EventNoise}
	}
	if !bytes.HasPrefix(unit, []byte(DataPrefix)) {
		return Event{Kind: EventNoise}
	}
	payload := unit[len(DataPrefix):]

	if string(bytes.TrimRight(payload, " \r\n")) == DoneToken {
		return Event{Kind: EventDone}
	}

	var chunk StreamChunk
	if err := json.Unmarshal(payload, &chunk); err != nil {
		return Event{Kind: EventNoise}
	}

	content, ok := chunk.GetContent()
	if !ok || content == "" {
		return Event{Kind: EventEmpty}
	}
	return Event{Kind: EventContent, Content: content}
}

// =============================================================================
// CONSUMER
// =============================================================================

// Consumer assembles a reply from a ChunkSource.
type Consumer struct {
	framing Framing
	logger  *log.Logger
}

// NewConsumer creates a consumer. A nil logger discards diagnostics.
func NewConsumer(framing Framing, logger *log.Logger) *Consumer {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Consumer{framing: framing, logger: logger}
}

// Framing returns the framing the consumer decodes with.
func (c *Consumer) Framing() Framing {
	return c.framing
}

// Consume reads src until it is exhausted, calling emit once per content
// fragment in arrival order. emit may be nil.
//
// Undecodable units are skipped. A "[DONE]" event is recorded but reading
// continues until src returns io.EOF. Any other read error is returned as a
// *StreamError holding the content received so far.
func (c *Consumer) Consume(src ChunkSource, emit func(string)) (*Reply, error) {
	var (
		reply   Reply
		content strings.Builder
		pending []byte
		start   = time.Now()
	)

	handle := func(unit []byte) {
		ev := ParseEvent(unit)
		switch ev.Kind {
		case EventNoise:
			reply.Noise++
			c.logger.Debug("skipping undecodable stream unit",
				"bytes", len(unit),
				"preview", runewidth.Truncate(string(unit), 48, "..."))
		case EventDone:
			reply.Done = true
		case EventContent:
			if reply.Fragments == 0 {
				reply.FirstFragment = time.Since(start)
			}
			reply.Fragments++
			content.WriteString(ev.Content)
			if emit != nil {
				emit(ev.Content)
			}
		}
	}

	handleLine := func(line []byte) {
		line = bytes.TrimSuffix(line, []byte("\r"))
		// Blank lines separate events.
		if len(line) == 0 {
			return
		}
		handle(line)
	}

	for {
		chunk, err := src.Next()
		if len(chunk) > 0 {
			switch c.framing {
			case FramingChunks:
				handle(chunk)
			default:
				pending = append(pending, chunk...)
				consumed := 0
				for {
					i := bytes.IndexByte(pending[consumed:], '\n')
					if i < 0 {
						break
					}
					handleLine(pending[consumed : consumed+i])
					consumed += i + 1
				}
				if consumed > 0 {
					pending = append(pending[:0], pending[consumed:]...)
				}
				if len(pending) > MaxLineSize {
					reply.Noise++
					c.logger.Debug("dropping oversized stream line", "bytes", len(pending))
					pending = pending[:0]
				}
			}
		}

		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, &StreamError{Partial: content.String(), Err: err}
		}
	}

	// A final line without a trailing newline is still an event.
	if len(pending) > 0 {
		handleLine(pending)
	}

	reply.Content = content.String()
	reply.Elapsed = time.Since(start)
	return &reply, nil
}

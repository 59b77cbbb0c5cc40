// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package spark provides the streaming client for the Spark chat
// completions API.
//
// The endpoint speaks the OpenAI-compatible wire format: a JSON request with
// the whole conversation, answered by a server-sent event stream of
// "data: " lines carrying delta objects and a final "data: [DONE]".
//
// # Key Types
//
//   - Client: issues one completion request per turn and consumes the stream
//   - Consumer: turns a sequence of raw byte chunks into content fragments
//   - ChunkSource: the raw chunk sequence of a response body
//   - Reply: the assembled reply text plus stream statistics
//
// # Usage
//
//	client := spark.NewClient(spark.Credentials{Key: key, Secret: secret})
//	reply, err := client.StreamReply(ctx, store.Snapshot(), func(fragment string) {
//	    fmt.Print(fragment)
//	})
//
// # Stream Tolerance
//
// Chunks that are not valid UTF-8, lines without the "data: " prefix and
// payloads that are not valid JSON are skipped and counted in Reply.Noise.
// They never abort the stream. Only transport failures end a turn early.
//
// # Framing
//
// FramingLines (the default) buffers bytes across chunk boundaries and
// decodes complete lines, so an event split by the network is reassembled.
// FramingChunks decodes every chunk on its own; an event split across two
// chunks is dropped. It exists for parity with older clients of the API.
package spark

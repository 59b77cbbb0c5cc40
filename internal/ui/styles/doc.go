// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package styles provides the terminal styling of the chat client.

# Skin (skin.go)

Reply fragments are printed as they stream in, so markup is styled inline
and per fragment rather than as a rendered document:

	**bold**   - bright yellow
	*italic*   - underlined bold sky blue
	`code`     - faint, muted

Markers without a partner are printed literally. A Skin is built once for
a color profile and never changes afterwards.

	skin := styles.NewSkin(termenv.TrueColor)
	fmt.Print(skin.Format("a **bold** move"))

Under termenv.Ascii the markers are removed and no escape sequences are
written. Plain is the Formatter that returns text unchanged.

# Theme (theme.go)

Theme groups the Skin with the styles of the session chrome: the reply
label, error lines and notices.

	theme := styles.NewTheme(termenv.ANSI256)
	fmt.Fprintln(os.Stderr, theme.Error.Render("Error: ")+err.Error())
*/
package styles

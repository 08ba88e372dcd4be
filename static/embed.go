// Package static embeds the single page client served under /ui/.
package static

import "embed"

//go:embed index.html
var FS embed.FS

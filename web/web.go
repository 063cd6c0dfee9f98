// Package web holds the embedded presentation assets. The pages are
// intentionally thin: all business rules live server-side, the admin panel
// only mirrors basic format checks before submitting.
package web

import "embed"

//go:embed templates/*.html
var Templates embed.FS

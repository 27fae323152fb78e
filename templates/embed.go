// Package templates holds the page templates and static assets compiled into
// the server binary.
package templates

import "embed"

//go:embed *.html static
var FS embed.FS

// Package web carries the HTML templates and static assets compiled into the
// binary.
package web

import "embed"

// Templates holds layouts, partials and pages.
//
//go:embed templates/layouts templates/partials templates/pages
var Templates embed.FS

// Static holds stylesheets and the member images.
//
//go:embed static/css static/img
var Static embed.FS

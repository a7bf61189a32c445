// Package web bundles the dashboard templates and browser assets.
package web

import "embed"

// Templates holds layouts, partials and pages.
//
//go:embed templates/layouts/*.html templates/partials/*.html templates/pages/*.html
var Templates embed.FS

// Static holds the stylesheet and the chart hydration script.
//
//go:embed static/css static/js
var Static embed.FS

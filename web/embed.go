package web

import "embed"

// Templates embeds HTML templates, including nested page directories.
//
//go:embed templates
var Templates embed.FS

// Static embeds static assets.
//
//go:embed static
var Static embed.FS

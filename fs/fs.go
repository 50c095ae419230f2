// Package appfs embeds the files shipped inside the binaries:
// SQL migrations and email templates.
package appfs

import "embed"

// assets holds "_"-prefixed partials, hence "all:".
//
//go:embed migrations all:assets
var FS embed.FS

package web

import "embed"

//go:embed templates/*.html
var templatesFS embed.FS

//go:embed assets/*.css
var assetsFS embed.FS

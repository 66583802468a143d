// Package web holds the page template and the assets served under /static.
package web

import (
	"embed"
	"html/template"
	"io/fs"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

var projectIcons = map[string]string{
	"stopwatch": "⏱",
	"gamepad":   "🎮",
	"steam":     "♨",
}

// Templates parses the embedded page templates.
func Templates() (*template.Template, error) {
	return template.New("").Funcs(template.FuncMap{
		"projectIcon": func(name string) string {
			if icon, ok := projectIcons[name]; ok {
				return icon
			}
			return "◆"
		},
	}).ParseFS(templateFS, "templates/*.html")
}

// Static returns the asset tree rooted at static/.
func Static() fs.FS {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic("web: static assets missing: " + err.Error())
	}
	return sub
}

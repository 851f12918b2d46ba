package dashboard

import (
	"embed"
	"io/fs"

	template "github.com/goliatone/go-template"
)

//go:embed templates/*.html
var embeddedTemplates embed.FS

// TemplatesFS exposes the embedded page templates rooted at their directory.
func TemplatesFS() fs.FS {
	sub, err := fs.Sub(embeddedTemplates, "templates")
	if err != nil {
		panic(err)
	}
	return sub
}

// NewTemplateRenderer creates a go-template renderer backed by the embedded
// templates. Loading never touches the working directory.
func NewTemplateRenderer() (Renderer, error) {
	return template.NewRenderer(
		template.WithFS(TemplatesFS()),
		template.WithExtension(".html"),
	)
}

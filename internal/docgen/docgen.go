// Package docgen renders Markdown reference documentation from the host API
// document, a JSON file published alongside the scripting environment.
package docgen

import (
	"fmt"
	"io"
	"text/template"

	"resty.dev/v3"
)

// Document is the fetched API description.
type Document struct {
	Title    string    `json:"title"`
	Version  string    `json:"version"`
	Sections []Section `json:"sections"`
}

// Section groups related entries, e.g. hooks or library functions.
type Section struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Entries     []Entry `json:"entries"`
}

// Entry documents one function, hook or channel.
type Entry struct {
	Name        string `json:"name"`
	Signature   string `json:"signature"`
	Description string `json:"description"`
}

const markdown = `# {{.Title}}{{if .Version}} ({{.Version}}){{end}}
{{range .Sections}}
## {{.Name}}

{{.Description}}
{{range .Entries}}
### {{.Name}}

{{if .Signature}}` + "`{{.Signature}}`" + `

{{end}}{{.Description}}
{{end}}{{end}}`

var tmpl = template.Must(template.New("markdown").Parse(markdown))

// Fetch retrieves the API document from url.
func Fetch(url string) (*Document, error) {
	client := resty.New()
	defer client.Close()

	var doc Document
	resp, err := client.R().SetResult(&doc).Get(url)
	if err != nil {
		return nil, fmt.Errorf("docgen: fetching %q: %w", url, err)
	}
	if !resp.IsSuccess() {
		return nil, fmt.Errorf("docgen: fetching %q: unexpected status %s", url, resp.Status())
	}
	return &doc, nil
}

// Render writes the Markdown form of doc to w.
func Render(w io.Writer, doc *Document) error {
	if doc == nil {
		return fmt.Errorf("docgen: Render: document must be non-nil")
	}
	if err := tmpl.Execute(w, doc); err != nil {
		return fmt.Errorf("docgen: rendering: %w", err)
	}
	return nil
}

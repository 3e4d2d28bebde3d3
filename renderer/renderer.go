// Package renderer turns analytics results into markdown reports.
//
// Each report is a main template in templates/ that depends on partials, so
// that parts of reports can be shared and tested alone.
package renderer

import (
	"embed"
	"fmt"
	"strings"
	"text/template"
)

//go:embed templates/*.md
var templates embed.FS

// parseReport reads the main template and its partials, keyed by the name templates
// call them with. An empty partial file defines an empty template.
func parseReport(name, mainFile string, partials map[string]string) (*template.Template, error) {
	read := func(file string) (string, error) {
		if file == "" {
			return "", nil
		}
		content, err := templates.ReadFile("templates/" + file)
		if err != nil {
			return "", fmt.Errorf("cannot read template %q: %w", file, err)
		}
		return string(content), nil
	}

	content, err := read(mainFile)
	if err != nil {
		return nil, err
	}
	tmpl, err := template.New(name).Funcs(funcs).Parse(content)
	if err != nil {
		return nil, err
	}
	for partial, file := range partials {
		if content, err = read(file); err != nil {
			return nil, err
		}
		if _, err := tmpl.New(partial).Parse(content); err != nil {
			return nil, fmt.Errorf("cannot parse %q as %q: %w", file, partial, err)
		}
	}
	return tmpl, nil
}

// renderTemplate renders a report. Failures are rendered in place of the
// report, so that they show in the output.
func renderTemplate(name, mainFile string, partials map[string]string, data any) string {
	tmpl, err := parseReport(name, mainFile, partials)
	if err != nil {
		return fmt.Sprintf("error parsing report %q: %v", name, err)
	}
	var b strings.Builder
	if err := tmpl.ExecuteTemplate(&b, name, data); err != nil {
		return fmt.Sprintf("error executing report %q: %v", name, err)
	}
	return b.String()
}

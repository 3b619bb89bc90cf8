// Package rowtemplate prints one line per record from a Go template with the
// sprig function library.
package rowtemplate

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"
)

const FlagName = "row-template"

// Template renders records. Fields are addressed by their JSON names, e.g.
// '{{ .id }} {{ .full_name | upper }}'.
type Template struct {
	tmpl *template.Template
}

func Parse(text string) (*Template, error) {
	tmpl, err := template.New(FlagName).
		Option("missingkey=zero").
		Funcs(sprig.TxtFuncMap()).
		Parse(text)
	if err != nil {
		return nil, fmt.Errorf("invalid --%s: %w", FlagName, err)
	}
	return &Template{tmpl: tmpl}, nil
}

// Execute writes one line per record. A template that already ends with a
// newline is not given a second one.
func (t *Template) Execute(w io.Writer, records []any) error {
	var buf bytes.Buffer
	for _, r := range records {
		data, err := fields(r)
		if err != nil {
			return err
		}
		buf.Reset()
		if err := t.tmpl.Execute(&buf, data); err != nil {
			return fmt.Errorf("rendering --%s: %w", FlagName, err)
		}
		line := buf.String()
		if !strings.HasSuffix(line, "\n") {
			line += "\n"
		}
		if _, err := io.WriteString(w, line); err != nil {
			return err
		}
	}
	return nil
}

func fields(record any) (map[string]any, error) {
	b, err := json.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("encoding record for --%s: %w", FlagName, err)
	}
	var rv map[string]any
	if err := json.Unmarshal(b, &rv); err != nil {
		return nil, fmt.Errorf("record is not an object: %w", err)
	}
	return rv, nil
}

// Package stub writes dated report definitions: a small Quarto document whose
// front matter pins the report date and whose body includes the shared
// report template.
package stub

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Defaults used by `archivist stub`.
const (
	DefaultDir      = "reports"
	DefaultTemplate = "_report-template.qmd"
	DefaultSuffix   = "market-report"
	DefaultTitle    = "Market Research"
)

// Options controls where and how a stub is written. Relative paths resolve
// against the project directory passed to New.
type Options struct {
	Dir      string    // directory for stubs; DefaultDir when empty
	Template string    // shared template included by the stub; DefaultTemplate when empty
	Suffix   string    // file name after the date; DefaultSuffix when empty
	Title    string    // title prefix; DefaultTitle when empty
	Date     time.Time // report date; today when zero
}

func (o Options) withDefaults() Options {
	if o.Dir == "" {
		o.Dir = DefaultDir
	}
	if o.Template == "" {
		o.Template = DefaultTemplate
	}
	if o.Suffix == "" {
		o.Suffix = DefaultSuffix
	}
	if o.Title == "" {
		o.Title = DefaultTitle
	}
	if o.Date.IsZero() {
		o.Date = time.Now()
	}
	return o
}

// New writes <dir>/<date>-<suffix>.qmd under the project directory and
// returns its path. Returns an error if the file already exists.
func New(project string, opts Options) (string, error) {
	opts = opts.withDefaults()

	stubDir := resolve(project, opts.Dir)
	if err := os.MkdirAll(stubDir, 0o755); err != nil {
		return "", fmt.Errorf("stub: create %s: %w", stubDir, err)
	}

	date := opts.Date.Format("2006-01-02")
	path := filepath.Join(stubDir, date+"-"+opts.Suffix+".qmd")
	if _, err := os.Stat(path); err == nil {
		return "", fmt.Errorf("stub: already exists: %s", path)
	}

	include, err := filepath.Rel(stubDir, resolve(project, opts.Template))
	if err != nil {
		return "", fmt.Errorf("stub: locate template: %w", err)
	}

	content, err := Render(opts.Title, date, filepath.ToSlash(include))
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return "", fmt.Errorf("stub: write %s: %w", path, err)
	}
	return path, nil
}

// Render produces the stub document for date, including the template at
// include (a path relative to the stub).
func Render(title, date, include string) ([]byte, error) {
	str := func(v string) *yaml.Node {
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v, Style: yaml.DoubleQuotedStyle}
	}
	key := func(k string) *yaml.Node {
		return &yaml.Node{Kind: yaml.ScalarNode, Value: k}
	}
	fm := &yaml.Node{Kind: yaml.MappingNode, Content: []*yaml.Node{
		key("title"), str(title + ": " + date),
		key("date"), str(date),
		key("params"), {Kind: yaml.MappingNode, Content: []*yaml.Node{
			key("report_date"), str(date),
		}},
	}}

	var buf bytes.Buffer
	buf.WriteString("---\n")
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(fm); err != nil {
		return nil, fmt.Errorf("stub: encode front matter: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("stub: encode front matter: %w", err)
	}
	buf.WriteString("---\n\n")
	fmt.Fprintf(&buf, "{{< include %s >}}\n", include)
	return buf.Bytes(), nil
}

func resolve(project, p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(project, p)
}

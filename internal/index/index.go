// Package index regenerates the Archive Index: a Markdown listing document
// derived entirely from the contents of the Persistent Archive Store.
//
// The document is overwritten on every build. Front matter required by the
// site generator is re-emitted each time rather than preserved from disk.
package index

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	"gopkg.in/yaml.v3"

	"github.com/LISSConsulting/LISSTech.Archivist/internal/fsutil"
)

// DefaultPlaceholder is rendered in place of the list when nothing is archived.
const DefaultPlaceholder = "No archived reports yet."

// Entry is one archived report in the listing.
type Entry struct {
	Label string // file name without extension, e.g. "report_2024-06-01"
	Href  string // link relative to the index, e.g. "report_2024-06-01.html"
}

// Builder scans a store and renders the listing.
type Builder struct {
	Ext         string            // archived report extension, e.g. ".html"
	Exclude     []string          // file names never listed (aliases, meta files)
	Title       string            // front matter title
	Heading     string            // top-level heading above the list
	Placeholder string            // shown instead of an empty list
	FrontMatter map[string]string // extra front matter keys, emitted sorted after title
}

// Default returns a Builder matching the stock archive page.
func Default() Builder {
	return Builder{
		Ext:         ".html",
		Title:       "Archive",
		Heading:     "Past Reports",
		Placeholder: DefaultPlaceholder,
	}
}

// Scan lists the archived reports under root, newest first. A missing root
// yields no entries.
func (b Builder) Scan(root string) ([]Entry, error) {
	dirEntries, err := os.ReadDir(root)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("index: read %q: %w", root, err)
	}

	var entries []Entry
	for _, de := range dirEntries {
		name := de.Name()
		if !de.Type().IsRegular() || filepath.Ext(name) != b.Ext || b.excluded(name) {
			continue
		}
		entries = append(entries, Entry{
			Label: strings.TrimSuffix(name, b.Ext),
			Href:  name,
		})
	}

	// Identifiers are date-first, so reverse lexical order is newest first.
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Label > entries[j].Label
	})
	return entries, nil
}

func (b Builder) excluded(name string) bool {
	if name == "index"+b.Ext {
		return true
	}
	for _, x := range b.Exclude {
		if name == x {
			return true
		}
	}
	return false
}

// Render produces the index document for entries. Identical input always
// renders identical bytes.
func (b Builder) Render(entries []Entry) ([]byte, error) {
	fm, err := b.frontMatter()
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.WriteString("---\n")
	buf.Write(fm)
	buf.WriteString("---\n\n")
	fmt.Fprintf(&buf, "# %s\n\n", b.Heading)

	if len(entries) == 0 {
		placeholder := b.Placeholder
		if placeholder == "" {
			placeholder = DefaultPlaceholder
		}
		buf.WriteString(placeholder + "\n")
		return buf.Bytes(), nil
	}
	for _, e := range entries {
		fmt.Fprintf(&buf, "- [%s](%s)\n", e.Label, e.Href)
	}
	return buf.Bytes(), nil
}

// frontMatter encodes title followed by the extra keys in sorted order.
func (b Builder) frontMatter() ([]byte, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	add := func(k, v string) {
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k},
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v},
		)
	}
	add("title", b.Title)

	keys := make([]string, 0, len(b.FrontMatter))
	for k := range b.FrontMatter {
		if k != "title" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	for _, k := range keys {
		add(k, b.FrontMatter[k])
	}

	data, err := yaml.Marshal(node)
	if err != nil {
		return nil, fmt.Errorf("index: encode front matter: %w", err)
	}
	return data, nil
}

// Build scans root, renders the index and writes it to dest. It returns the
// number of listed reports.
func (b Builder) Build(root, dest string) (int, error) {
	entries, err := b.Scan(root)
	if err != nil {
		return 0, err
	}
	doc, err := b.Render(entries)
	if err != nil {
		return 0, err
	}
	if err := fsutil.WriteFileAtomic(dest, doc); err != nil {
		return 0, fmt.Errorf("index: write: %w", err)
	}
	return len(entries), nil
}

// RenderHTML converts a rendered index document into a standalone HTML page,
// for hosts that serve the archive without a site generator.
func (b Builder) RenderHTML(doc []byte) []byte {
	body := stripFrontMatter(doc)
	p := parser.NewWithExtensions(parser.CommonExtensions)
	r := html.NewRenderer(html.RendererOptions{
		Title: b.Title,
		Flags: html.CommonFlags | html.CompletePage,
	})
	return markdown.ToHTML(body, p, r)
}

// WriteHTML renders doc as HTML and writes it to dest.
func (b Builder) WriteHTML(doc []byte, dest string) error {
	if err := fsutil.WriteFileAtomic(dest, b.RenderHTML(doc)); err != nil {
		return fmt.Errorf("index: write html: %w", err)
	}
	return nil
}

func stripFrontMatter(doc []byte) []byte {
	if !bytes.HasPrefix(doc, []byte("---\n")) {
		return doc
	}
	parts := bytes.SplitN(doc[4:], []byte("\n---\n"), 2)
	if len(parts) < 2 {
		return doc
	}
	return parts[1]
}

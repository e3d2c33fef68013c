package variables

import (
	"slices"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/nathanaelcunningham/typst-pdftemplater/pkg/errors"
	"github.com/nathanaelcunningham/typst-pdftemplater/pkg/layout"
)

var (
	placeholderLexer = lexer.MustSimple([]lexer.SimpleRule{
		{Name: "Placeholder", Pattern: `\{\{\s*\.[A-Za-z_][A-Za-z0-9_]*(?:\.[A-Za-z_][A-Za-z0-9_]*)*\s*\}\}`},
		{Name: "Open", Pattern: `\{`},
		{Name: "Text", Pattern: `[^{]+`},
	})

	segmentParser = participle.MustBuild[segmentList](
		participle.Lexer(placeholderLexer),
	)
)

type segmentList struct {
	Segments []*rawSegment `parser:"@@*"`
}

type rawSegment struct {
	Placeholder string `parser:"  @Placeholder"`
	Text        string `parser:"| @(Text | Open)"`
}

// Segment is a run of literal text or a single placeholder.
type Segment struct {
	Text string // source text, including braces for placeholders
	Path string // referenced path; empty for literal text
}

// IsPlaceholder reports whether s references a variable.
func (s Segment) IsPlaceholder() bool { return s.Path != "" }

// Scan splits text into literal and placeholder segments. Adjacent literal
// runs are merged. Braces that do not form a placeholder stay literal.
func Scan(text string) ([]Segment, error) {
	if text == "" {
		return nil, nil
	}
	list, err := segmentParser.ParseString("", text)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "scan placeholders")
	}

	var out []Segment
	for _, raw := range list.Segments {
		if raw.Placeholder != "" {
			out = append(out, Segment{Text: raw.Placeholder, Path: placeholderPath(raw.Placeholder)})
			continue
		}
		if n := len(out); n > 0 && !out[n-1].IsPlaceholder() {
			out[n-1].Text += raw.Text
			continue
		}
		out = append(out, Segment{Text: raw.Text})
	}
	return out, nil
}

func placeholderPath(token string) string {
	inner := strings.TrimSuffix(strings.TrimPrefix(token, "{{"), "}}")
	return NormalizePath(inner)
}

// References returns the sorted, distinct placeholder paths used anywhere
// in doc's component props.
func References(doc *layout.Document) []string {
	var refs []string
	doc.Walk(func(n *layout.Node) bool {
		for _, s := range propStrings(n.Element) {
			segs, err := Scan(s)
			if err != nil {
				continue
			}
			for _, seg := range segs {
				if seg.IsPlaceholder() {
					refs = append(refs, seg.Path)
				}
			}
		}
		return true
	})
	slices.Sort(refs)
	return slices.Compact(refs)
}

// Dangling returns the referenced paths in doc that no variable declares.
func Dangling(doc *layout.Document, vars []Variable) []string {
	declared := make(map[string]bool, len(vars))
	for _, v := range vars {
		declared[NormalizePath(v.Path)] = true
	}
	var out []string
	for _, ref := range References(doc) {
		if !declared[ref] {
			out = append(out, ref)
		}
	}
	return out
}

// propStrings returns the text-bearing props of e.
func propStrings(e layout.Element) []string {
	switch e := e.(type) {
	case *layout.Text:
		return []string{e.Content}
	case *layout.Heading:
		return []string{e.Content}
	case *layout.Image:
		return []string{e.Source, e.Alt}
	case *layout.Table:
		out := slices.Clone(e.Headers)
		for _, row := range e.Rows {
			out = append(out, row...)
		}
		return out
	}
	return nil
}

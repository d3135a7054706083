package parser

import (
	"strings"
	"unicode/utf8"

	"github.com/russross/blackfriday/v2"
)

const descriptionLimit = 140

// StripMarkdown returns the visible text of a Markdown document: markup,
// link targets and raw HTML are dropped, one block per line.
func StripMarkdown(src string) string {
	src = strings.ReplaceAll(src, "\r\n", "\n")
	if strings.TrimSpace(src) == "" {
		return ""
	}

	md := blackfriday.New(blackfriday.WithExtensions(blackfriday.CommonExtensions))
	root := md.Parse([]byte(src))

	var b strings.Builder
	root.Walk(func(n *blackfriday.Node, entering bool) blackfriday.WalkStatus {
		switch n.Type {
		case blackfriday.Text, blackfriday.Code:
			if entering {
				b.Write(n.Literal)
			}
		case blackfriday.CodeBlock:
			if entering {
				b.Write(n.Literal)
				b.WriteByte('\n')
			}
		case blackfriday.Softbreak, blackfriday.Hardbreak:
			if entering {
				b.WriteByte('\n')
			}
		case blackfriday.HTMLBlock, blackfriday.HTMLSpan:
			return blackfriday.SkipChildren
		case blackfriday.TableCell:
			if !entering {
				b.WriteByte(' ')
			}
		case blackfriday.Paragraph, blackfriday.Heading, blackfriday.Item, blackfriday.TableRow, blackfriday.BlockQuote:
			if !entering {
				b.WriteByte('\n')
			}
		}
		return blackfriday.GoToNext
	})

	return strings.Join(nonBlankLines(b.String()), "\n")
}

// Title derives a note title from the first non-blank line of text.
func Title(text string) string {
	lines := nonBlankLines(text)
	if len(lines) == 0 {
		return ""
	}
	if t := StripMarkdown(lines[0]); t != "" {
		return strings.ReplaceAll(t, "\n", " ")
	}
	return lines[0]
}

// Description derives the short preview shown under the title: the two
// non-blank lines that follow the title line.
func Description(text string) string {
	lines := nonBlankLines(text)
	if len(lines) < 2 {
		return ""
	}
	end := min(len(lines), 3)
	parts := make([]string, 0, 2)
	for _, l := range lines[1:end] {
		if s := StripMarkdown(l); s != "" {
			parts = append(parts, strings.ReplaceAll(s, "\n", " "))
		}
	}
	return truncate(strings.Join(parts, " "), descriptionLimit)
}

func nonBlankLines(s string) []string {
	var out []string
	for _, l := range strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n") {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	return out
}

func truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	r := []rune(s)
	return strings.TrimSpace(string(r[:limit])) + "…"
}

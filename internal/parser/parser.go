// Package parser derives note text projections and reads imported
// Markdown files with optional YAML frontmatter.
package parser

import (
	"bytes"
	"strings"

	"gopkg.in/yaml.v3"
)

// Result holds the output of parsing an imported Markdown file.
type Result struct {
	Frontmatter map[string]interface{}
	Body        string
	ID          string
	Title       string
	Category    string
	Tags        []string
	Starred     bool
	Archived    bool
}

// Header is the frontmatter written in front of an exported note.
type Header struct {
	ID       string   `yaml:"id"`
	Category string   `yaml:"category,omitempty"`
	Tags     []string `yaml:"tags,omitempty"`
	Starred  bool     `yaml:"starred,omitempty"`
	Archived bool     `yaml:"archived,omitempty"`
}

// Parse splits frontmatter from the body and reads the note attributes
// it carries. Files without frontmatter are all body.
func Parse(data []byte) (*Result, error) {
	fm, body, err := splitFrontmatter(data)
	if err != nil {
		return nil, err
	}

	return &Result{
		Frontmatter: fm,
		Body:        body,
		ID:          stringField(fm, "id"),
		Title:       stringField(fm, "title"),
		Category:    stringField(fm, "category"),
		Tags:        extractTags(fm),
		Starred:     boolField(fm, "starred"),
		Archived:    boolField(fm, "archived"),
	}, nil
}

// Render joins h and body into a Markdown file that Parse reads back.
func Render(h Header, body string) ([]byte, error) {
	head, err := yaml.Marshal(h)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	buf.WriteString("---\n")
	buf.Write(head)
	buf.WriteString("---\n")
	buf.WriteString(body)
	return buf.Bytes(), nil
}

// splitFrontmatter separates YAML frontmatter (between leading --- delimiters)
// from the Markdown body.
func splitFrontmatter(data []byte) (map[string]interface{}, string, error) {
	const delim = "---"
	trimmed := bytes.TrimLeft(data, "\n\r")

	if !bytes.HasPrefix(trimmed, []byte(delim)) {
		return nil, string(data), nil
	}

	rest := trimmed[len(delim):]
	idx := bytes.Index(rest, []byte("\n"+delim))
	if idx < 0 {
		return nil, string(data), nil
	}

	yamlBlock := rest[:idx]
	afterDelim := rest[idx+1+len(delim):]
	body := strings.TrimLeft(string(afterDelim), "\n\r")

	var fm map[string]interface{}
	if err := yaml.Unmarshal(yamlBlock, &fm); err != nil {
		// Not frontmatter after all; keep the text intact.
		return nil, string(data), nil
	}

	return fm, body, nil
}

// extractTags reads "tags" as either a YAML list or a comma separated string.
func extractTags(fm map[string]interface{}) []string {
	var raw []string
	switch v := fm["tags"].(type) {
	case []interface{}:
		for _, item := range v {
			if s, ok := item.(string); ok {
				raw = append(raw, s)
			}
		}
	case string:
		raw = strings.Split(v, ",")
	}

	seen := make(map[string]struct{}, len(raw))
	out := make([]string, 0, len(raw))
	for _, s := range raw {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

func stringField(fm map[string]interface{}, key string) string {
	if s, ok := fm[key].(string); ok {
		return strings.TrimSpace(s)
	}
	return ""
}

func boolField(fm map[string]interface{}, key string) bool {
	b, _ := fm[key].(bool)
	return b
}

// ABOUTME: One-off converter turning the markdown FAQ into the structured JSON knowledge base
// ABOUTME: Parses headings, paragraphs, and lists into semantic blocks for the answer prompt

package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// KnowledgeBase is the document shape consumed by the answer prompt.
type KnowledgeBase struct {
	Metadata Metadata  `json:"metadata"`
	Sections []Section `json:"sections"`
}

// Metadata describes the knowledge-base provenance.
type Metadata struct {
	Source      string `json:"source"`
	Type        string `json:"type"`
	Version     string `json:"version"`
	GeneratedAt string `json:"generated_at"`
}

// Section is one heading with its prose and list items, nested by level.
type Section struct {
	Title    string    `json:"title"`
	Level    int       `json:"level"`
	Content  []string  `json:"content,omitempty"`
	Items    []string  `json:"items,omitempty"`
	Sections []Section `json:"sections,omitempty"`
}

func main() {
	var (
		input  = flag.String("in", "knowledge_base.md", "markdown FAQ to convert")
		output = flag.String("out", "knowledge_base.json", "structured JSON destination")
	)
	flag.Parse()

	if err := run(*input, *output); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(input, output string) error {
	source, err := os.ReadFile(input)
	if err != nil {
		return fmt.Errorf("reading %s: %w", input, err)
	}

	kb := convert(source)

	data, err := json.MarshalIndent(kb, "", "    ")
	if err != nil {
		return fmt.Errorf("marshaling knowledge base: %w", err)
	}

	if err := os.WriteFile(output, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", output, err)
	}

	fmt.Printf("Converted %s -> %s (%d top-level sections)\n", input, output, len(kb.Sections))
	return nil
}

// convert parses the markdown source into the knowledge-base structure.
func convert(source []byte) *KnowledgeBase {
	md := goldmark.New()
	doc := md.Parser().Parse(text.NewReader(source))

	kb := &KnowledgeBase{
		Metadata: Metadata{
			Source:      "globustele.com",
			Type:        "esim_support_knowledge_base",
			Version:     "1.0",
			GeneratedAt: time.Now().UTC().Format("2006-01-02"),
		},
	}

	// Stack of open sections, indexed by heading level
	var stack []*Section

	appendSection := func(s Section) *Section {
		for len(stack) > 0 && stack[len(stack)-1].Level >= s.Level {
			stack = stack[:len(stack)-1]
		}
		if len(stack) == 0 {
			kb.Sections = append(kb.Sections, s)
			return &kb.Sections[len(kb.Sections)-1]
		}
		parent := stack[len(stack)-1]
		parent.Sections = append(parent.Sections, s)
		return &parent.Sections[len(parent.Sections)-1]
	}

	for node := doc.FirstChild(); node != nil; node = node.NextSibling() {
		switch n := node.(type) {
		case *ast.Heading:
			sec := appendSection(Section{
				Title: textOf(n, source),
				Level: n.Level,
			})
			stack = append(stack, sec)

		case *ast.Paragraph:
			if len(stack) == 0 {
				continue
			}
			cur := stack[len(stack)-1]
			if txt := textOf(n, source); txt != "" {
				cur.Content = append(cur.Content, txt)
			}

		case *ast.List:
			if len(stack) == 0 {
				continue
			}
			cur := stack[len(stack)-1]
			for item := n.FirstChild(); item != nil; item = item.NextSibling() {
				if txt := textOf(item, source); txt != "" {
					cur.Items = append(cur.Items, txt)
				}
			}
		}
	}

	return kb
}

// textOf collects the plain text beneath a node, joining fragments with spaces.
func textOf(node ast.Node, source []byte) string {
	var sb strings.Builder
	_ = ast.Walk(node, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if t, ok := n.(*ast.Text); ok {
			sb.Write(t.Segment.Value(source))
			if t.SoftLineBreak() || t.HardLineBreak() {
				sb.WriteByte(' ')
			}
		}
		return ast.WalkContinue, nil
	})
	return strings.TrimSpace(sb.String())
}

package processor

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"

	"github.com/dgallion1/docchunk/internal/chunker"
	"github.com/dgallion1/docchunk/internal/document"
	"github.com/dgallion1/docchunk/internal/staging"
)

// HTMLProcessor extracts body text from HTML content as a single page.
type HTMLProcessor struct {
	params document.ChunkParams
}

func NewHTMLProcessor(params document.ChunkParams) *HTMLProcessor {
	return &HTMLProcessor{params: params}
}

func (p *HTMLProcessor) Params() document.ChunkParams { return p.params }

func (p *HTMLProcessor) ExtractPages(staged *staging.Staged) ([]document.Page, error) {
	f, err := staged.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	doc, err := html.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	var blocks []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "nav", "footer", "header":
				return
			case "h1", "h2", "h3", "h4", "h5", "h6", "p", "li", "td", "blockquote", "pre":
				if t := textContent(n); t != "" {
					blocks = append(blocks, t)
				}
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	root := doc
	if body := findElement(doc, "body"); body != nil {
		root = body
	}
	walk(root)

	content := chunker.CleanText(strings.Join(blocks, "\n\n"))
	if content == "" {
		// Fall back to all text for fragments without block elements.
		content = chunker.CleanText(textContent(root))
	}
	return []document.Page{{Number: 1, Content: content}}, nil
}

func textContent(n *html.Node) string {
	var buf strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return strings.TrimSpace(buf.String())
}

func findElement(n *html.Node, tag string) *html.Node {
	if n.Type == html.ElementNode && n.Data == tag {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, tag); found != nil {
			return found
		}
	}
	return nil
}

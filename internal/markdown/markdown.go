package markdown

import (
	"bytes"
	"html"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	gmhtml "github.com/yuin/goldmark/renderer/html"
)

var md = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithRendererOptions(gmhtml.WithHardWraps()),
)

// ToHTML renders a model answer, which is usually markdown, as an HTML fragment.
// Raw HTML in the source is omitted.
func ToHTML(src []byte) (string, error) {
	var buf bytes.Buffer
	if err := md.Convert(src, &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// ToPlainText renders src and drops all markup.
func ToPlainText(src []byte) (string, error) {
	out, err := ToHTML(src)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(StripHTMLTags(out)), nil
}

func StripHTMLTags(htmlContent string) string {
	var result strings.Builder
	inTag := false

	for _, ch := range htmlContent {
		switch ch {
		case '<':
			inTag = true
		case '>':
			inTag = false
		default:
			if !inTag {
				result.WriteRune(ch)
			}
		}
	}

	return html.UnescapeString(result.String())
}

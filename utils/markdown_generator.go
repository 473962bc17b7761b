package utils

import (
	"bytes"
	"strings"

	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/yuin/goldmark"
)

// markdown renders with goldmark defaults: raw HTML is omitted and unsafe
// link destinations are dropped.
var markdown = goldmark.New()

// RenderMarkdown converts a Markdown fragment to HTML.
func RenderMarkdown(source string) (string, error) {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(source), &buf); err != nil {
		return "", err
	}
	return strings.TrimSpace(buf.String()), nil
}

// HasStyle reports whether chroma knows the named style.
func HasStyle(name string) bool {
	_, ok := styles.Registry[strings.ToLower(name)]
	return ok
}

// CodeHighlighter renders code as class-based chroma HTML.
type CodeHighlighter struct {
	lexer     chroma.Lexer
	formatter *chromahtml.Formatter
}

// NewCodeHighlighter returns a highlighter for the given language, falling
// back to plain text when chroma has no lexer for it. Every CSS class is
// prefixed with classPrefix.
func NewCodeHighlighter(language, classPrefix string) *CodeHighlighter {
	lexer := lexers.Get(language)
	if lexer == nil {
		lexer = lexers.Fallback
	}
	return &CodeHighlighter{
		lexer:     chroma.Coalesce(lexer),
		formatter: chromahtml.New(chromahtml.WithClasses(true), chromahtml.ClassPrefix(classPrefix)),
	}
}

// Highlight returns the code as a <pre> block. Token text is HTML-escaped.
func (h *CodeHighlighter) Highlight(code string) (string, error) {
	iterator, err := h.lexer.Tokenise(nil, code)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := h.formatter.Format(&buf, styles.Fallback, iterator); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// StyleCSS returns the stylesheet for the named chroma style.
func (h *CodeHighlighter) StyleCSS(styleName string) (string, error) {
	var buf bytes.Buffer
	if err := h.formatter.WriteCSS(&buf, styles.Get(styleName)); err != nil {
		return "", err
	}
	return buf.String(), nil
}

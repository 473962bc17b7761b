package renderer

import (
	"bytes"
	"fmt"
	"html/template"
	"path/filepath"

	"github.com/meysamhadeli/odindoc/doc_analyzer/models"
	"github.com/meysamhadeli/odindoc/embed_data"
	"github.com/meysamhadeli/odindoc/utils"
)

const (
	DescriptionText     = "text"
	DescriptionMarkdown = "markdown"

	highlightLanguage = "odin"
	highlightPrefix   = "hl-"
)

var pageTemplate = template.Must(template.New("page.html").Parse(embed_data.PageTemplate))

// Options controls how pages are rendered.
type Options struct {
	// Title is the heading of the index page.
	Title string
	// Highlight renders signatures with chroma instead of a plain code block.
	Highlight  bool
	LightStyle string
	DarkStyle  string
	// DescriptionFormat is DescriptionText or DescriptionMarkdown.
	DescriptionFormat string
}

// PageInput is everything needed to render the page of one source file.
type PageInput struct {
	Filename      string
	Records       []models.DocRecord
	SidebarMarkup string
	SelfPath      string
	IndexPath     string
}

// Renderer turns documentation records into self-contained HTML pages.
type Renderer struct {
	options        Options
	highlighter    *utils.CodeHighlighter
	highlightStyle template.CSS
}

type recordView struct {
	Name            string
	Signature       string
	SignatureHTML   template.HTML
	Description     string
	DescriptionHTML template.HTML
	Params          []models.Param
	Return          string
}

type pageData struct {
	Title          string
	Heading        string
	IndexHref      string
	Sidebar        template.HTML
	Records        []recordView
	Style          template.CSS
	HighlightStyle template.CSS
	Script         template.JS
	SunIcon        template.HTML
	MoonIcon       template.HTML
}

// NewRenderer validates the options and prepares the highlighting stylesheet.
func NewRenderer(options Options) (*Renderer, error) {
	switch options.DescriptionFormat {
	case "":
		options.DescriptionFormat = DescriptionText
	case DescriptionText, DescriptionMarkdown:
	default:
		return nil, fmt.Errorf("unknown description format %q", options.DescriptionFormat)
	}

	r := &Renderer{options: options}
	if !options.Highlight {
		return r, nil
	}

	for _, name := range []string{options.LightStyle, options.DarkStyle} {
		if !utils.HasStyle(name) {
			return nil, fmt.Errorf("unknown highlight style %q", name)
		}
	}

	r.highlighter = utils.NewCodeHighlighter(highlightLanguage, highlightPrefix)
	light, err := r.highlighter.StyleCSS(options.LightStyle)
	if err != nil {
		return nil, fmt.Errorf("failed to write %s style: %w", options.LightStyle, err)
	}
	dark, err := r.highlighter.StyleCSS(options.DarkStyle)
	if err != nil {
		return nil, fmt.Errorf("failed to write %s style: %w", options.DarkStyle, err)
	}
	// Dark rules are nested under the theme selector so they win only while
	// the dark theme is active.
	r.highlightStyle = template.CSS(light + "[data-theme=\"dark\"] {\n" + dark + "}\n")

	return r, nil
}

// RenderPage renders the documentation page of one source file.
func (r *Renderer) RenderPage(input PageInput) (string, error) {
	indexHref, err := relativeLink(input.SelfPath, input.IndexPath)
	if err != nil {
		return "", err
	}

	records := make([]recordView, 0, len(input.Records))
	for _, record := range input.Records {
		view, err := r.recordView(record)
		if err != nil {
			return "", fmt.Errorf("failed to render %s in %s: %w", record.Name, input.Filename, err)
		}
		records = append(records, view)
	}

	return r.execute(pageData{
		Title:     input.Filename,
		Heading:   input.Filename,
		IndexHref: indexHref,
		Sidebar:   template.HTML(input.SidebarMarkup),
		Records:   records,
	})
}

// RenderIndex renders the landing page: the sidebar and an empty body.
func (r *Renderer) RenderIndex(sidebarMarkup, selfPath string) (string, error) {
	return r.execute(pageData{
		Title:     r.options.Title,
		Heading:   r.options.Title,
		IndexHref: filepath.Base(selfPath),
		Sidebar:   template.HTML(sidebarMarkup),
	})
}

func (r *Renderer) execute(data pageData) (string, error) {
	data.Style = template.CSS(embed_data.StyleSheet)
	data.HighlightStyle = r.highlightStyle
	data.Script = template.JS(embed_data.ThemeScript)
	data.SunIcon = template.HTML(embed_data.SunIcon)
	data.MoonIcon = template.HTML(embed_data.MoonIcon)

	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render page %s: %w", data.Title, err)
	}
	return buf.String(), nil
}

func (r *Renderer) recordView(record models.DocRecord) (recordView, error) {
	view := recordView{
		Name:        record.Name,
		Signature:   record.Signature,
		Description: record.Description,
		Params:      record.Params,
		Return:      record.Return,
	}

	if r.highlighter != nil {
		highlighted, err := r.highlighter.Highlight(record.Name + " " + record.Signature)
		if err != nil {
			return view, err
		}
		view.SignatureHTML = template.HTML(highlighted)
	}

	if r.options.DescriptionFormat == DescriptionMarkdown && record.Description != "" {
		rendered, err := utils.RenderMarkdown(record.Description)
		if err != nil {
			return view, err
		}
		view.DescriptionHTML = template.HTML(rendered)
	}

	return view, nil
}

// relativeLink returns the slash-separated path from the directory of from to to.
func relativeLink(from, to string) (string, error) {
	absFrom, err := filepath.Abs(from)
	if err != nil {
		return "", err
	}
	absTo, err := filepath.Abs(to)
	if err != nil {
		return "", err
	}
	rel, err := filepath.Rel(filepath.Dir(absFrom), absTo)
	if err != nil {
		return "", fmt.Errorf("failed to link %s from %s: %w", to, from, err)
	}
	return filepath.ToSlash(rel), nil
}

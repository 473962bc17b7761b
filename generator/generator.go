// Package generator drives a documentation run: it scans the source tree,
// builds the complete site tree and then renders and writes every page.
package generator

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/meysamhadeli/odindoc/doc_analyzer/contracts"
	"github.com/meysamhadeli/odindoc/doc_analyzer/models"
	"github.com/meysamhadeli/odindoc/renderer"
	"github.com/meysamhadeli/odindoc/site"
)

const (
	// LayoutTree mirrors the source folders below the output directory.
	LayoutTree = "tree"
	// LayoutFlat writes every page directly into the output directory,
	// joining the path segments of the source file with '_'.
	LayoutFlat = "flat"

	IndexFileName = "index.html"
	pageSuffix    = ".html"
)

// Options configures where and how pages are written.
type Options struct {
	OutputDir string
	Layout    string
}

// Result lists what a run wrote.
type Result struct {
	// Pages holds the output path of every page, in sidebar order.
	Pages []string
	Index string
	// Skipped lists source files that could not be read.
	Skipped []string
}

type Generator struct {
	analyzer contracts.IDocAnalyzer
	renderer *renderer.Renderer
	options  Options
}

// NewGenerator returns a generator writing to options.OutputDir.
func NewGenerator(analyzer contracts.IDocAnalyzer, pageRenderer *renderer.Renderer, options Options) (*Generator, error) {
	if options.OutputDir == "" {
		return nil, fmt.Errorf("output directory must not be empty")
	}
	switch options.Layout {
	case "":
		options.Layout = LayoutTree
	case LayoutTree, LayoutFlat:
	default:
		return nil, fmt.Errorf("unknown layout %q", options.Layout)
	}

	return &Generator{analyzer: analyzer, renderer: pageRenderer, options: options}, nil
}

// Generate documents sourceDir. The whole tree is discovered before the
// first page is rendered, so every sidebar lists every page.
func (g *Generator) Generate(ctx context.Context, sourceDir string) (*Result, error) {
	project, err := g.analyzer.ScanProject(sourceDir)
	if err != nil {
		return nil, err
	}

	tree := site.NewTree()
	files := make(map[string]models.FileDocs, len(project.Files))
	for _, file := range project.Files {
		outputPath := g.pagePath(file.RelativePath)
		relFolder, filename := path.Split(file.RelativePath)
		tree.Insert(relFolder, filename, outputPath)
		files[outputPath] = file
	}

	if err := os.MkdirAll(g.options.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory %s: %w", g.options.OutputDir, err)
	}

	result := &Result{
		Pages:   make([]string, 0, tree.Len()),
		Index:   filepath.Join(g.options.OutputDir, IndexFileName),
		Skipped: project.Skipped,
	}

	for _, page := range tree.Pages() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		file := files[page.OutputPath]
		sidebar, err := tree.RenderSidebar(page.OutputPath)
		if err != nil {
			return nil, err
		}
		content, err := g.renderer.RenderPage(renderer.PageInput{
			Filename:      file.RelativePath,
			Records:       file.Records,
			SidebarMarkup: sidebar,
			SelfPath:      page.OutputPath,
			IndexPath:     result.Index,
		})
		if err != nil {
			return nil, err
		}
		if err := writePage(page.OutputPath, content); err != nil {
			return nil, err
		}
		result.Pages = append(result.Pages, page.OutputPath)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	sidebar, err := tree.RenderSidebar(result.Index)
	if err != nil {
		return nil, err
	}
	content, err := g.renderer.RenderIndex(sidebar, result.Index)
	if err != nil {
		return nil, err
	}
	if err := writePage(result.Index, content); err != nil {
		return nil, err
	}

	if err := removeStalePages(g.options.OutputDir, result); err != nil {
		return nil, err
	}

	return result, nil
}

// removeStalePages deletes the pages under outputDir that this run did not
// write, such as those of files that lost their last doc comment. Only files
// ending in the page suffix are touched.
func removeStalePages(outputDir string, result *Result) error {
	written := make(map[string]bool, len(result.Pages)+1)
	written[filepath.Clean(result.Index)] = true
	for _, page := range result.Pages {
		written[filepath.Clean(page)] = true
	}

	return filepath.WalkDir(outputDir, func(filePath string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), pageSuffix) || written[filepath.Clean(filePath)] {
			return nil
		}
		if err := os.Remove(filePath); err != nil {
			return fmt.Errorf("failed to remove stale page %s: %w", filePath, err)
		}
		return nil
	})
}

// pagePath maps a slash-separated source path to its page in the output directory.
func (g *Generator) pagePath(relativePath string) string {
	if g.options.Layout == LayoutFlat {
		return filepath.Join(g.options.OutputDir, strings.ReplaceAll(relativePath, "/", "_")+pageSuffix)
	}
	return filepath.Join(g.options.OutputDir, filepath.FromSlash(relativePath)+pageSuffix)
}

func writePage(outputPath, content string) error {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", outputPath, err)
	}
	if err := os.WriteFile(outputPath, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", outputPath, err)
	}
	return nil
}

// OutputIgnoreEntry returns the slash-separated path of outputDir relative to
// sourceDir when the output directory lies inside the source tree, so that a
// run never documents its own earlier output.
func OutputIgnoreEntry(sourceDir, outputDir string) (string, bool) {
	absSource, err := filepath.Abs(sourceDir)
	if err != nil {
		return "", false
	}
	absOutput, err := filepath.Abs(outputDir)
	if err != nil {
		return "", false
	}

	rel, err := filepath.Rel(absSource, absOutput)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return filepath.ToSlash(rel), true
}

package generator

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/meysamhadeli/odindoc/doc_analyzer"
	"github.com/meysamhadeli/odindoc/renderer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

const linalgSource = `package linalg

/**
 * Adds two numbers.
 * @param a first
 * @param b second
 * @return sum
 */
add :: proc(a, b: int) -> int {
	return a + b
}
`

const stringsSource = `package strings

/* Concatenates <b>two</b> strings. */
concat :: proc(a, b: string) -> string { return "" }
`

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func sourceTree(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	writeFile(t, root, "core/math/linalg.odin", linalgSource)
	writeFile(t, root, "core/strings.odin", stringsSource)
	writeFile(t, root, "empty.odin", "package empty\n\nf :: proc() {}\n")
	writeFile(t, root, "build/gen.odin", linalgSource)
	writeFile(t, root, "vendor/build/gen.odin", linalgSource)
	return root
}

func newTestGenerator(t *testing.T, output, layout string) *Generator {
	t.Helper()
	analyzer := doc_analyzer.NewDocAnalyzer(doc_analyzer.AnalyzerOptions{
		Extensions: []string{".odin"},
		IgnoreDirs: []string{"build", "docs", "out", ".git"},
		Output:     io.Discard,
	})
	pageRenderer, err := renderer.NewRenderer(renderer.Options{Title: "Docs"})
	require.NoError(t, err)
	generator, err := NewGenerator(analyzer, pageRenderer, Options{OutputDir: output, Layout: layout})
	require.NoError(t, err)
	return generator
}

func readTree(t *testing.T, root string) map[string]string {
	t.Helper()
	files := make(map[string]string)
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		require.NoError(t, err)
		if d.IsDir() {
			return nil
		}
		content, err := os.ReadFile(path)
		require.NoError(t, err)
		rel, err := filepath.Rel(root, path)
		require.NoError(t, err)
		files[filepath.ToSlash(rel)] = string(content)
		return nil
	})
	require.NoError(t, err)
	return files
}

func sidebarHrefs(t *testing.T, page string) []string {
	t.Helper()
	doc, err := html.Parse(strings.NewReader(page))
	require.NoError(t, err)

	var hrefs []string
	var walk func(n *html.Node, inTree bool)
	walk = func(n *html.Node, inTree bool) {
		if n.Type == html.ElementNode {
			if n.Data == "ul" {
				for _, a := range n.Attr {
					if a.Key == "class" && a.Val == "tree" {
						inTree = true
					}
				}
			}
			if inTree && n.Data == "a" {
				for _, a := range n.Attr {
					if a.Key == "href" {
						hrefs = append(hrefs, a.Val)
					}
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c, inTree)
		}
	}
	walk(doc, false)
	return hrefs
}

func TestGenerate_TreeLayout(t *testing.T) {
	source := sourceTree(t)
	output := t.TempDir()

	result, err := newTestGenerator(t, output, LayoutTree).Generate(context.Background(), source)
	require.NoError(t, err)

	assert.Equal(t, []string{
		filepath.Join(output, "core", "math", "linalg.odin.html"),
		filepath.Join(output, "core", "strings.odin.html"),
	}, result.Pages)
	assert.Equal(t, filepath.Join(output, "index.html"), result.Index)
	assert.Empty(t, result.Skipped)

	files := readTree(t, output)
	assert.Len(t, files, 3)
	assert.Contains(t, files, "index.html")
	assert.NotContains(t, files, "empty.odin.html")

	linalg := files["core/math/linalg.odin.html"]
	assert.Contains(t, linalg, "add (a, b: int) -&gt; int")
	assert.Contains(t, linalg, `href="../../index.html"`)

	assert.Contains(t, files["core/strings.odin.html"], "Concatenates &lt;b&gt;two&lt;/b&gt; strings.")
}

func TestGenerate_SidebarListsEveryPage(t *testing.T) {
	source := sourceTree(t)
	output := t.TempDir()

	_, err := newTestGenerator(t, output, LayoutTree).Generate(context.Background(), source)
	require.NoError(t, err)

	files := readTree(t, output)
	assert.Equal(t, []string{"math/linalg.odin.html", "strings.odin.html"}, sidebarHrefs(t, files["core/strings.odin.html"]))
	assert.Equal(t, []string{"linalg.odin.html", "../strings.odin.html"}, sidebarHrefs(t, files["core/math/linalg.odin.html"]))
	assert.Equal(t, []string{"core/math/linalg.odin.html", "core/strings.odin.html"}, sidebarHrefs(t, files["index.html"]))
}

func TestGenerate_IsIdempotent(t *testing.T) {
	source := sourceTree(t)
	firstOutput := t.TempDir()
	secondOutput := t.TempDir()

	_, err := newTestGenerator(t, firstOutput, LayoutTree).Generate(context.Background(), source)
	require.NoError(t, err)
	_, err = newTestGenerator(t, secondOutput, LayoutTree).Generate(context.Background(), source)
	require.NoError(t, err)

	first := readTree(t, firstOutput)
	assert.Len(t, first, 3)
	assert.Equal(t, first, readTree(t, secondOutput))

	// A rerun over its own output leaves the same tree.
	_, err = newTestGenerator(t, firstOutput, LayoutTree).Generate(context.Background(), source)
	require.NoError(t, err)
	assert.Equal(t, first, readTree(t, firstOutput))
}

func TestGenerate_RemovesStalePages(t *testing.T) {
	source := sourceTree(t)
	output := t.TempDir()
	writeFile(t, output, "notes.txt", "kept")

	_, err := newTestGenerator(t, output, LayoutTree).Generate(context.Background(), source)
	require.NoError(t, err)
	require.Contains(t, readTree(t, output), "core/strings.odin.html")

	writeFile(t, source, "core/strings.odin", "package strings\n\nconcat :: proc(a, b: string) -> string { return \"\" }\n")
	result, err := newTestGenerator(t, output, LayoutTree).Generate(context.Background(), source)
	require.NoError(t, err)

	assert.Equal(t, []string{filepath.Join(output, "core", "math", "linalg.odin.html")}, result.Pages)
	files := readTree(t, output)
	assert.NotContains(t, files, "core/strings.odin.html")
	assert.Contains(t, files, "core/math/linalg.odin.html")
	assert.Contains(t, files, "index.html")
	assert.Equal(t, "kept", files["notes.txt"])
	assert.NotContains(t, files["index.html"], "strings.odin.html")
}

func TestGenerate_FlatLayout(t *testing.T) {
	source := sourceTree(t)
	output := t.TempDir()

	result, err := newTestGenerator(t, output, LayoutFlat).Generate(context.Background(), source)
	require.NoError(t, err)

	assert.Equal(t, []string{
		filepath.Join(output, "core_math_linalg.odin.html"),
		filepath.Join(output, "core_strings.odin.html"),
	}, result.Pages)

	files := readTree(t, output)
	assert.Len(t, files, 3)
	assert.Equal(t, []string{"core_math_linalg.odin.html", "core_strings.odin.html"}, sidebarHrefs(t, files["index.html"]))
	assert.Contains(t, files["core_strings.odin.html"], `href="index.html"`)
}

func TestGenerate_NoDocumentedFiles(t *testing.T) {
	source := t.TempDir()
	writeFile(t, source, "plain.odin", "package plain\n")
	output := filepath.Join(t.TempDir(), "site")

	result, err := newTestGenerator(t, output, LayoutTree).Generate(context.Background(), source)
	require.NoError(t, err)

	assert.Empty(t, result.Pages)
	assert.FileExists(t, result.Index)
}

func TestGenerate_OutputDirectoryUncreatable(t *testing.T) {
	source := sourceTree(t)
	blocker := filepath.Join(t.TempDir(), "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("file"), 0644))

	_, err := newTestGenerator(t, filepath.Join(blocker, "docs"), LayoutTree).Generate(context.Background(), source)
	assert.Error(t, err)
}

func TestGenerate_MissingSourceDirectory(t *testing.T) {
	_, err := newTestGenerator(t, t.TempDir(), LayoutTree).Generate(context.Background(), filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

func TestGenerate_StopsWhenCancelled(t *testing.T) {
	source := sourceTree(t)
	output := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestGenerator(t, output, LayoutTree).Generate(ctx, source)
	assert.ErrorIs(t, err, context.Canceled)
	assert.NoFileExists(t, filepath.Join(output, "index.html"))
}

func TestNewGenerator_Validates(t *testing.T) {
	pageRenderer, err := renderer.NewRenderer(renderer.Options{})
	require.NoError(t, err)
	analyzer := doc_analyzer.NewDocAnalyzer(doc_analyzer.AnalyzerOptions{Output: io.Discard})

	_, err = NewGenerator(analyzer, pageRenderer, Options{OutputDir: "docs", Layout: "spiral"})
	assert.Error(t, err)

	_, err = NewGenerator(analyzer, pageRenderer, Options{Layout: LayoutTree})
	assert.Error(t, err)

	generator, err := NewGenerator(analyzer, pageRenderer, Options{OutputDir: "docs"})
	require.NoError(t, err)
	assert.Equal(t, LayoutTree, generator.options.Layout)
}

func TestOutputIgnoreEntry(t *testing.T) {
	source := t.TempDir()

	entry, ok := OutputIgnoreEntry(source, filepath.Join(source, "site", "docs"))
	assert.True(t, ok)
	assert.Equal(t, "site/docs", entry)

	_, ok = OutputIgnoreEntry(source, t.TempDir())
	assert.False(t, ok)

	_, ok = OutputIgnoreEntry(source, source)
	assert.False(t, ok)
}

// Package site builds the folder tree of generated pages and renders it as the
// sidebar shown on every page.
package site

import (
	"bytes"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/meysamhadeli/odindoc/embed_data"
)

var sidebarTemplate = template.Must(template.New("sidebar.html").Parse(embed_data.SidebarTemplate))

// Node is either a folder, holding children keyed by name, or a page leaf
// pointing at a generated file.
type Node struct {
	Name       string
	OutputPath string

	children map[string]*Node
}

func newFolder(name string) *Node {
	return &Node{Name: name, children: make(map[string]*Node)}
}

// IsFolder reports whether the node is a folder.
func (n *Node) IsFolder() bool {
	return n.children != nil
}

// Children returns the children of a folder sorted by name.
func (n *Node) Children() []*Node {
	names := make([]string, 0, len(n.children))
	for name := range n.children {
		names = append(names, name)
	}
	sort.Strings(names)

	nodes := make([]*Node, 0, len(names))
	for _, name := range names {
		nodes = append(nodes, n.children[name])
	}
	return nodes
}

// Tree is the complete set of generated pages arranged by source folder.
type Tree struct {
	root *Node
}

func NewTree() *Tree {
	return &Tree{root: newFolder("")}
}

// Insert adds a page for filename under relFolder, creating intermediate
// folders as needed. relFolder uses '/' or the OS separator; "" and "." mean
// the root. Inserting the same page twice keeps the last output path.
func (t *Tree) Insert(relFolder, filename, outputPath string) {
	folder := t.root
	for _, segment := range strings.Split(filepath.ToSlash(relFolder), "/") {
		if segment == "" || segment == "." {
			continue
		}
		child, ok := folder.children[segment]
		if !ok || !child.IsFolder() {
			child = newFolder(segment)
			folder.children[segment] = child
		}
		folder = child
	}
	folder.children[filename] = &Node{Name: filename, OutputPath: outputPath}
}

// Pages returns every page leaf in sidebar order.
func (t *Tree) Pages() []*Node {
	var pages []*Node
	var walk func(*Node)
	walk = func(n *Node) {
		for _, child := range n.Children() {
			if child.IsFolder() {
				walk(child)
			} else {
				pages = append(pages, child)
			}
		}
	}
	walk(t.root)
	return pages
}

// Len returns the number of pages in the tree.
func (t *Tree) Len() int {
	return len(t.Pages())
}

type sidebarItem struct {
	Name     string
	Href     string
	Folder   bool
	Open     bool
	Current  bool
	Children []sidebarItem
}

// RenderSidebar renders the whole tree as nested lists for the page written
// at currentPagePath. Links are relative to that page's directory, the folders
// on the path to the page are expanded and its own link is marked current.
// currentPagePath need not be a page of the tree (the index, for example).
func (t *Tree) RenderSidebar(currentPagePath string) (string, error) {
	current, err := resolvePath(currentPagePath)
	if err != nil {
		return "", err
	}

	items, _, err := t.sidebarItems(t.root, current)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := sidebarTemplate.ExecuteTemplate(&buf, "sidebar", items); err != nil {
		return "", fmt.Errorf("failed to render sidebar: %w", err)
	}
	return buf.String(), nil
}

// sidebarItems converts the children of folder and reports whether the
// current page is among its descendants.
func (t *Tree) sidebarItems(folder *Node, current string) ([]sidebarItem, bool, error) {
	var items []sidebarItem
	containsCurrent := false

	for _, child := range folder.Children() {
		if child.IsFolder() {
			children, open, err := t.sidebarItems(child, current)
			if err != nil {
				return nil, false, err
			}
			items = append(items, sidebarItem{Name: child.Name, Folder: true, Open: open, Children: children})
			containsCurrent = containsCurrent || open
			continue
		}

		target, err := resolvePath(child.OutputPath)
		if err != nil {
			return nil, false, err
		}
		href, err := filepath.Rel(filepath.Dir(current), target)
		if err != nil {
			return nil, false, fmt.Errorf("failed to link %s from %s: %w", target, current, err)
		}
		isCurrent := target == current
		items = append(items, sidebarItem{Name: child.Name, Href: filepath.ToSlash(href), Current: isCurrent})
		containsCurrent = containsCurrent || isCurrent
	}

	return items, containsCurrent, nil
}

// resolvePath returns an absolute, cleaned form of p with symlinks resolved
// in its longest existing ancestor, so that paths of pages that are not yet
// written compare equal to those that are.
func resolvePath(p string) (string, error) {
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", p, err)
	}

	existing, rest := abs, ""
	for {
		if resolved, err := filepath.EvalSymlinks(existing); err == nil {
			return filepath.Join(resolved, rest), nil
		} else if !os.IsNotExist(err) {
			return abs, nil
		}
		parent := filepath.Dir(existing)
		if parent == existing {
			return abs, nil
		}
		rest = filepath.Join(filepath.Base(existing), rest)
		existing = parent
	}
}

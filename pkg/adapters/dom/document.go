// Package dom implements the element ports on a headless HTML document.
//
// The document is parsed with golang.org/x/net/html. Dialog state is the
// standard "open" attribute; modal presentation is marked with "data-modal".
package dom

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var (
	// ErrNotDialog is returned when ShowModal targets an element that is not a <dialog>.
	ErrNotDialog = errors.New("element is not a dialog")
	// ErrAlreadyOpen is returned when ShowModal targets a dialog opened non-modally.
	ErrAlreadyOpen = errors.New("dialog is already open")
)

// Document is a mutable HTML tree. Safe for concurrent use.
type Document struct {
	mu   sync.RWMutex
	root *html.Node
}

// Parse reads markup into a new Document.
func Parse(r io.Reader) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse document: %w", err)
	}
	return &Document{root: root}, nil
}

// ParseString is Parse for inline markup.
func ParseString(markup string) (*Document, error) {
	return Parse(strings.NewReader(markup))
}

// Empty returns a document with no elements.
func Empty() *Document {
	doc, _ := ParseString("")
	return doc
}

// Replace swaps the whole tree for freshly parsed markup.
// Elements returned by earlier lookups are detached and no longer rendered.
func (d *Document) Replace(r io.Reader) error {
	root, err := html.Parse(r)
	if err != nil {
		return fmt.Errorf("failed to parse document: %w", err)
	}
	d.mu.Lock()
	d.root = root
	d.mu.Unlock()
	return nil
}

// Lookup finds the element with the given id. Registry wraps it for ports.ElementRegistry.
func (d *Document) Lookup(id string) (*Element, bool) {
	if id == "" {
		return nil, false
	}
	d.mu.RLock()
	defer d.mu.RUnlock()

	n := findByID(d.root, id)
	if n == nil {
		return nil, false
	}
	return &Element{doc: d, node: n}, true
}

// Render serializes the whole document.
func (d *Document) Render() (string, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	var b strings.Builder
	if err := html.Render(&b, d.root); err != nil {
		return "", fmt.Errorf("failed to render document: %w", err)
	}
	return b.String(), nil
}

func findByID(n *html.Node, id string) *html.Node {
	if n.Type == html.ElementNode {
		if v, ok := attr(n, "id"); ok && v == id {
			return n
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findByID(c, id); found != nil {
			return found
		}
	}
	return nil
}

func attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

func setAttr(n *html.Node, key, val string) {
	for i, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

func removeAttr(n *html.Node, key string) {
	out := n.Attr[:0]
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			continue
		}
		out = append(out, a)
	}
	n.Attr = out
}

// Element is a node of a Document.
type Element struct {
	doc  *Document
	node *html.Node
}

// ShowModal opens a <dialog> modally. Re-opening a modal dialog is a no-op.
func (e *Element) ShowModal() error {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()

	if e.node.DataAtom != atom.Dialog {
		return fmt.Errorf("%w: <%s>", ErrNotDialog, e.node.Data)
	}
	if _, open := attr(e.node, "open"); open {
		if _, modal := attr(e.node, "data-modal"); modal {
			return nil
		}
		return ErrAlreadyOpen
	}
	setAttr(e.node, "open", "")
	setAttr(e.node, "data-modal", "")
	return nil
}

// Close dismisses the element. Closing a closed element is a no-op.
func (e *Element) Close() error {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()

	removeAttr(e.node, "open")
	removeAttr(e.node, "data-modal")
	return nil
}

// IsOpen reports whether the element carries the open attribute.
func (e *Element) IsOpen() bool {
	e.doc.mu.RLock()
	defer e.doc.mu.RUnlock()
	_, open := attr(e.node, "open")
	return open
}

// OuterHTML renders the element and its subtree.
func (e *Element) OuterHTML() (string, error) {
	e.doc.mu.RLock()
	defer e.doc.mu.RUnlock()

	var b strings.Builder
	if err := html.Render(&b, e.node); err != nil {
		return "", fmt.Errorf("failed to render element: %w", err)
	}
	return b.String(), nil
}

package htmldoc

import (
	"bytes"
	"context"
	"io"
	"strings"
	"sync"

	goerrors "github.com/goliatone/go-errors"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/goliatone/go-mapdirective/pkg/interfaces"
)

const TextCodeElementNotFound = "SURFACE_ELEMENT_NOT_FOUND"

// Script is a program executed against the document.
type Script struct {
	Target string
	Source string
}

// Document is an in-memory HTML surface. Markup is loaded into its body and
// every executed script is appended as a <script> element, so the rendered
// page replays the mounts in a browser.
type Document struct {
	mu      sync.Mutex
	root    *html.Node
	body    *html.Node
	scripts []Script
	waiters map[string][]chan struct{}
}

var (
	_ interfaces.Surface         = (*Document)(nil)
	_ interfaces.ElementNotifier = (*Document)(nil)
)

// New returns an empty document.
func New() *Document {
	doc, _ := Parse(strings.NewReader("<!DOCTYPE html><html><head></head><body></body></html>"))
	return doc
}

// Parse reads a complete HTML document.
func Parse(r io.Reader) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryBadInput, "parse html document")
	}
	body := find(root, func(n *html.Node) bool {
		return n.Type == html.ElementNode && n.DataAtom == atom.Body
	})
	if body == nil {
		return nil, goerrors.New("html document has no body", goerrors.CategoryBadInput)
	}
	return &Document{root: root, body: body, waiters: make(map[string][]chan struct{})}, nil
}

// Load appends a markup fragment to the body.
func (d *Document) Load(markup string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	nodes, err := html.ParseFragment(strings.NewReader(markup), d.body)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryBadInput, "parse html fragment")
	}
	for _, node := range nodes {
		d.body.AppendChild(node)
	}
	d.notifyLocked()
	return nil
}

// HasElement reports whether an element with id is present.
func (d *Document) HasElement(ctx context.Context, id string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.elementLocked(id) != nil, nil
}

// SetContent replaces the children of the element with id.
func (d *Document) SetContent(ctx context.Context, id string, markup string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	element := d.elementLocked(id)
	if element == nil {
		return notFound(id)
	}
	nodes, err := html.ParseFragment(strings.NewReader(markup), element)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryBadInput, "parse html fragment")
	}
	for child := element.FirstChild; child != nil; {
		next := child.NextSibling
		element.RemoveChild(child)
		child = next
	}
	for _, node := range nodes {
		element.AppendChild(node)
	}
	d.notifyLocked()
	return nil
}

// Exec records script and appends it to the body. The target element must
// exist.
func (d *Document) Exec(ctx context.Context, id string, script string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.elementLocked(id) == nil {
		return notFound(id)
	}
	node := &html.Node{Type: html.ElementNode, Data: "script", DataAtom: atom.Script}
	node.AppendChild(&html.Node{Type: html.TextNode, Data: script})
	d.body.AppendChild(node)
	d.scripts = append(d.scripts, Script{Target: id, Source: script})
	return nil
}

// ElementReady returns a channel closed once an element with id exists.
func (d *Document) ElementReady(id string) <-chan struct{} {
	d.mu.Lock()
	defer d.mu.Unlock()

	ch := make(chan struct{})
	if d.elementLocked(id) != nil {
		close(ch)
		return ch
	}
	d.waiters[id] = append(d.waiters[id], ch)
	return ch
}

// Scripts returns the executed scripts in order.
func (d *Document) Scripts() []Script {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]Script, len(d.scripts))
	copy(out, d.scripts)
	return out
}

// InnerHTML renders the children of the element with id.
func (d *Document) InnerHTML(id string) (string, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	element := d.elementLocked(id)
	if element == nil {
		return "", false
	}
	var buf bytes.Buffer
	for child := element.FirstChild; child != nil; child = child.NextSibling {
		if err := html.Render(&buf, child); err != nil {
			return "", false
		}
	}
	return buf.String(), true
}

// Body renders the children of <body>.
func (d *Document) Body() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	var buf bytes.Buffer
	for child := d.body.FirstChild; child != nil; child = child.NextSibling {
		_ = html.Render(&buf, child)
	}
	return buf.String()
}

// Head returns the <head> element for callers that add assets. The returned
// node must not be modified while tasks are running.
func (d *Document) Head() *html.Node {
	return find(d.root, func(n *html.Node) bool {
		return n.Type == html.ElementNode && n.DataAtom == atom.Head
	})
}

// Render writes the whole document.
func (d *Document) Render(w io.Writer) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return html.Render(w, d.root)
}

func (d *Document) String() string {
	var buf bytes.Buffer
	_ = d.Render(&buf)
	return buf.String()
}

func (d *Document) elementLocked(id string) *html.Node {
	return find(d.root, func(n *html.Node) bool {
		if n.Type != html.ElementNode {
			return false
		}
		for _, attr := range n.Attr {
			if attr.Namespace == "" && attr.Key == "id" && attr.Val == id {
				return true
			}
		}
		return false
	})
}

func (d *Document) notifyLocked() {
	for id, waiters := range d.waiters {
		if d.elementLocked(id) == nil {
			continue
		}
		for _, ch := range waiters {
			close(ch)
		}
		delete(d.waiters, id)
	}
}

func find(node *html.Node, match func(*html.Node) bool) *html.Node {
	if match(node) {
		return node
	}
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		if found := find(child, match); found != nil {
			return found
		}
	}
	return nil
}

func notFound(id string) error {
	return goerrors.New("element "+id+" not found", goerrors.CategoryNotFound).
		WithTextCode(TextCodeElementNotFound).
		WithMetadata(map[string]any{"element_id": id})
}

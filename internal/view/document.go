// Package view holds the board's document: an HTML tree with the regions the
// board renders into, form state, and delegated click dispatch.
package view

import (
	"context"
	"fmt"
	"io"
	"sync"

	"golang.org/x/net/html"
)

// Ids of the stable regions of the document.
const (
	ListID    = "activities-list"
	SelectID  = "activity"
	FormID    = "signup-form"
	EmailID   = "email"
	MessageID = "message"
)

// HiddenClass marks the status region as hidden.
const HiddenClass = "hidden"

// Event describes a click. Path runs from the target up to and including the
// element the handler listens on.
type Event struct {
	Target *html.Node
	Path   []*html.Node
}

// Closest returns the first element on the event path carrying class.
func (e Event) Closest(class string) *html.Node {
	for _, n := range e.Path {
		if HasClass(n, class) {
			return n
		}
	}
	return nil
}

// ClickHandler receives delegated clicks.
type ClickHandler func(ctx context.Context, ev Event)

// Status is a snapshot of the status region.
type Status struct {
	Text    string
	Class   string
	Visible bool
}

// Document owns the rendered page. Mutations are serialized; handlers run
// outside the lock.
type Document struct {
	mu        sync.Mutex
	root      *html.Node
	list      *html.Node
	selector  *html.Node
	email     *html.Node
	message   *html.Node
	listeners map[*html.Node][]ClickHandler
}

// NewDocument builds the page skeleton.
func NewDocument(title string) *Document {
	d := &Document{listeners: make(map[*html.Node][]ClickHandler)}

	d.list = Element("div", Attrs("id", ListID), Element("p", nil, Text("Loading activities...")))
	d.email = Element("input", Attrs(
		"type", "email",
		"id", EmailID,
		"name", "email",
		"required", "",
		"placeholder", "your-email@mergington.edu",
	))
	d.selector = Element("select", Attrs("id", SelectID, "name", "activity", "required", ""), ActivityOptions(nil)...)
	d.message = Element("div", Attrs("id", MessageID, "class", HiddenClass))

	form := Element("form", Attrs("id", FormID, "method", "post", "action", "/signup"),
		Element("div", Attrs("class", "form-group"),
			Element("label", Attrs("for", EmailID), Text("Student Email:")),
			d.email,
		),
		Element("div", Attrs("class", "form-group"),
			Element("label", Attrs("for", SelectID), Text("Select Activity:")),
			d.selector,
		),
		Element("button", Attrs("type", "submit"), Text("Sign Up")),
	)

	body := Element("body", nil,
		Element("header", nil, Element("h1", nil, Text(title))),
		Element("main", nil,
			Element("section", Attrs("id", "activities-container"),
				Element("h3", nil, Text("Available Activities")),
				d.list,
			),
			Element("section", Attrs("id", "signup-container"),
				Element("h3", nil, Text("Sign Up for an Activity")),
				form,
				d.message,
			),
		),
	)

	d.root = &html.Node{Type: html.DocumentNode}
	d.root.AppendChild(&html.Node{Type: html.DoctypeNode, Data: "html"})
	d.root.AppendChild(Element("html", Attrs("lang", "en"),
		Element("head", nil,
			Element("meta", Attrs("charset", "utf-8")),
			Element("title", nil, Text(title)),
		),
		body,
	))
	return d
}

// ReplaceList swaps the whole content of the activities list.
func (d *Document) ReplaceList(nodes ...*html.Node) {
	d.mu.Lock()
	defer d.mu.Unlock()
	replaceChildren(d.list, nodes)
}

// ShowCatalog swaps the list content and the selector options in one step.
// The selection falls back to the first option.
func (d *Document) ShowCatalog(cards, options []*html.Node) {
	d.mu.Lock()
	defer d.mu.Unlock()
	replaceChildren(d.list, cards)
	replaceChildren(d.selector, options)
}

func replaceChildren(parent *html.Node, nodes []*html.Node) {
	removeChildren(parent)
	for _, n := range nodes {
		parent.AppendChild(n)
	}
}

// ShowStatus makes the status region visible with text styled by class.
func (d *Document) ShowStatus(text, class string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	replaceChildren(d.message, []*html.Node{Text(text)})
	SetAttr(d.message, "class", class)
}

// HideStatus hides the status region, keeping its text and styling.
func (d *Document) HideStatus() {
	d.mu.Lock()
	defer d.mu.Unlock()
	AddClass(d.message, HiddenClass)
}

// Status reports the current state of the status region.
func (d *Document) Status() Status {
	d.mu.Lock()
	defer d.mu.Unlock()
	class := ""
	for _, c := range classList(d.message) {
		if c != HiddenClass {
			class = c
		}
	}
	return Status{
		Text:    TextContent(d.message),
		Class:   class,
		Visible: !HasClass(d.message, HiddenClass),
	}
}

// SetForm sets the signup form's field values, as a user typing would.
func (d *Document) SetForm(email, activity string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	SetAttr(d.email, "value", email)
	for opt := d.selector.FirstChild; opt != nil; opt = opt.NextSibling {
		if opt.Type != html.ElementNode {
			continue
		}
		if Attr(opt, "value") == activity {
			SetAttr(opt, "selected", "")
		} else {
			RemoveAttr(opt, "selected")
		}
	}
}

// ResetForm clears the signup form fields.
func (d *Document) ResetForm() {
	d.mu.Lock()
	defer d.mu.Unlock()
	RemoveAttr(d.email, "value")
	for opt := d.selector.FirstChild; opt != nil; opt = opt.NextSibling {
		if opt.Type == html.ElementNode {
			RemoveAttr(opt, "selected")
		}
	}
}

// FormValues returns the current email and selected activity.
func (d *Document) FormValues() (email, activity string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	email = Attr(d.email, "value")

	var first *html.Node
	for opt := d.selector.FirstChild; opt != nil; opt = opt.NextSibling {
		if opt.Type != html.ElementNode {
			continue
		}
		if first == nil {
			first = opt
		}
		if HasAttr(opt, "selected") {
			return email, Attr(opt, "value")
		}
	}
	return email, Attr(first, "value")
}

// Listen attaches handler to the element with the given id. Clicks on that
// element or any of its descendants reach the handler.
func (d *Document) Listen(containerID string, handler ClickHandler) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	container := ByID(d.root, containerID)
	if container == nil {
		return fmt.Errorf("no element with id %q", containerID)
	}
	d.listeners[container] = append(d.listeners[container], handler)
	return nil
}

// Click dispatches a click on the element with the given id to every listening
// ancestor, outermost first. It reports whether the target exists.
func (d *Document) Click(ctx context.Context, targetID string) bool {
	type dispatch struct {
		handler ClickHandler
		event   Event
	}

	d.mu.Lock()
	target := ByID(d.root, targetID)
	if target == nil {
		d.mu.Unlock()
		return false
	}
	var path []*html.Node
	for n := target; n != nil; n = n.Parent {
		path = append(path, n)
	}
	var calls []dispatch
	for i := len(path) - 1; i >= 0; i-- {
		for _, h := range d.listeners[path[i]] {
			calls = append(calls, dispatch{handler: h, event: Event{Target: target, Path: path[:i+1]}})
		}
	}
	d.mu.Unlock()

	for _, c := range calls {
		c.handler(ctx, c.event)
	}
	return true
}

// Snapshot returns a deep copy of the document tree.
func (d *Document) Snapshot() *html.Node {
	d.mu.Lock()
	defer d.mu.Unlock()
	return clone(d.root)
}

// Region returns a deep copy of the element with the given id, or nil.
func (d *Document) Region(id string) *html.Node {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := ByID(d.root, id)
	if n == nil {
		return nil
	}
	return clone(n)
}

// Render writes the document as HTML. decorate, when non-nil, may modify a
// private copy of the tree before it is written.
func (d *Document) Render(w io.Writer, decorate func(root *html.Node)) error {
	root := d.Snapshot()
	if decorate != nil {
		decorate(root)
	}
	return html.Render(w, root)
}

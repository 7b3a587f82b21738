package model

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Item is a single node in the checklist tree. A node with children acts as
// a heading; nesting depth is arbitrary. Children are owned exclusively by
// their parent, and the order of the Children slice is both the display
// order and the persisted order.
type Item struct {
	ID       string // runtime identity, never persisted
	Title    string
	URL      string // empty means absent
	Done     bool
	Quantity int
	Children []*Item
}

// New returns a leaf item with a fresh identity and default quantity.
func New(title string) *Item {
	return &Item{
		ID:       uuid.NewString(),
		Title:    title,
		Quantity: 1,
	}
}

// Label is the display text for the node. Quantity is cosmetic and only
// shows up as a prefix when above one.
func (it *Item) Label() string {
	if it.Quantity > 1 {
		return fmt.Sprintf("(%d) %s", it.Quantity, it.Title)
	}
	return it.Title
}

// Openable reports whether the node carries a link worth handing to the
// browser.
func (it *Item) Openable() bool {
	return strings.TrimSpace(it.URL) != ""
}

// Equal compares two items field by field, recursively and order-sensitive.
// Runtime IDs are excluded: two trees loaded from the same file are equal.
func (it *Item) Equal(other *Item) bool {
	if it == nil || other == nil {
		return it == other
	}
	if it.Title != other.Title || it.URL != other.URL ||
		it.Done != other.Done || it.Quantity != other.Quantity {
		return false
	}
	if len(it.Children) != len(other.Children) {
		return false
	}
	for i := range it.Children {
		if !it.Children[i].Equal(other.Children[i]) {
			return false
		}
	}
	return true
}

// EqualForest compares two root sequences with Equal semantics.
func EqualForest(a, b []*Item) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}

// Walk visits it and every descendant in display order.
func (it *Item) Walk(visit func(*Item)) {
	visit(it)
	for _, c := range it.Children {
		c.Walk(visit)
	}
}

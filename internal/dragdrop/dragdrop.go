// Package dragdrop turns a grab-move-drop gesture into the single tree
// mutation it stands for: a sibling reorder, a reparent, or a promotion to
// the root level.
package dragdrop

import (
	"errors"
	"fmt"

	"cesta/internal/storage"
)

// ErrNoDrag is returned when a drop or hover arrives without a grabbed
// node.
var ErrNoDrag = errors.New("no active drag")

// DropKind names the mutation a completed drop performed.
type DropKind int

const (
	DropNone DropKind = iota
	DropReorder
	DropReparent
	DropRoot
)

// Controller holds the state of one drag gesture: the grabbed source node
// and the candidate target under the pointer. Hovering only moves the
// highlight; the forest is untouched until the drop.
type Controller struct {
	store  *storage.Store
	source string
	target string
}

func New(store *storage.Store) *Controller {
	return &Controller{store: store}
}

// Grab starts a drag with the given node as source.
func (c *Controller) Grab(id string) error {
	if c.store.Find(id) == nil {
		return fmt.Errorf("%w: no such node", storage.ErrInvalidParent)
	}
	c.source = id
	c.target = ""
	return nil
}

// Dragging reports whether a gesture is in progress.
func (c *Controller) Dragging() bool { return c.source != "" }

// Source returns the grabbed node's id, empty when idle.
func (c *Controller) Source() string { return c.source }

// Hover updates the highlighted candidate target. Empty id means the
// pointer is over empty canvas. No mutation happens here.
func (c *Controller) Hover(id string) {
	if c.source == "" {
		return
	}
	c.target = id
}

// Target returns the current highlight, empty when over canvas or idle.
func (c *Controller) Target() string { return c.target }

// Cancel abandons the gesture without touching the forest.
func (c *Controller) Cancel() {
	c.source = ""
	c.target = ""
}

// DropOnCanvas ends the drag on empty background: the source is detached
// and appended to the end of the root sequence.
func (c *Controller) DropOnCanvas() (DropKind, error) {
	return c.Drop("")
}

// Drop ends the drag on targetID and applies the resulting mutation:
//
//   - empty target: promote to root (append at the end of the roots)
//   - target is the source or inside its subtree: rejected, no mutation
//   - target shares the source's parent: sibling reorder, dragging upward
//     lands before the target, downward immediately after it
//   - anything else: reparent, appended as the target's last child. This
//     deliberately includes dropping onto the node's own parent, which
//     re-appends it as that parent's last child
//
// The gesture ends either way; a rejected drop leaves the forest and the
// file exactly as they were.
func (c *Controller) Drop(targetID string) (DropKind, error) {
	if c.source == "" {
		return DropNone, ErrNoDrag
	}
	source := c.source
	c.Cancel()

	if targetID == "" {
		if err := c.store.MoveToRoot(source); err != nil {
			return DropNone, err
		}
		return DropRoot, nil
	}
	if c.store.Find(targetID) == nil {
		return DropNone, fmt.Errorf("%w: no such node", storage.ErrInvalidParent)
	}
	if c.store.Contains(source, targetID) {
		return DropNone, storage.ErrCyclicMove
	}

	// Siblings share the same non-nil parent. Two roots do not count:
	// dropping one root onto another nests it, same as any other node.
	srcParent := c.store.ParentOf(source)
	dstParent := c.store.ParentOf(targetID)
	if srcParent != dstParent || srcParent == nil {
		if err := c.store.Move(source, storage.MoveTarget{ParentID: targetID, Index: -1}); err != nil {
			return DropNone, err
		}
		return DropReparent, nil
	}

	// Sibling reorder. The target's index is captured before the detach;
	// once the source leaves the sequence, inserting at that index lands
	// before the target when dragging upward and immediately after it when
	// dragging downward (the detach shifts the target left by one).
	dstIdx := c.store.IndexOf(targetID)
	if err := c.store.Move(source, storage.MoveTarget{ParentID: srcParent.ID, Index: dstIdx}); err != nil {
		return DropNone, err
	}
	return DropReorder, nil
}

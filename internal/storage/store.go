package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cesta/internal/model"
)

var (
	// ErrInvalidParent rejects a mutation aimed at a node that is not part
	// of the current forest, or an add with a blank title.
	ErrInvalidParent = errors.New("invalid parent")
	// ErrCyclicMove rejects a move that would make a node a descendant of
	// itself.
	ErrCyclicMove = errors.New("move would create a cycle")
)

// MoveTarget names the destination slot of a Move: the owning parent
// (empty ParentID means the root sequence) and the insertion index within
// its children, -1 to append.
type MoveTarget struct {
	ParentID string
	Index    int
}

// Store owns the authoritative forest and its save path. Every successful
// mutation writes the whole forest back to disk before returning; the file
// therefore always reflects the last successful mutation. Write failures
// are non-fatal and reported to the caller, in-memory state stays
// authoritative for the rest of the session.
type Store struct {
	path    string
	roots   []*model.Item
	items   map[string]*model.Item
	parents map[string]*model.Item // absent for roots
	saves   int
}

// Open loads the forest from path. A missing file yields the built-in
// sample list without error; an unreadable or malformed file also yields
// the sample list, but with an error wrapping ErrMalformedDocument so the
// caller can show a notice. The returned store is usable in every case.
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, errors.New("list path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, err
	}

	s := &Store{path: path}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		s.reset(SampleForest())
		return s, nil
	}
	if err != nil {
		s.reset(SampleForest())
		return s, fmt.Errorf("%w: %v", ErrMalformedDocument, err)
	}
	forest, err := Decode(data)
	if err != nil {
		s.reset(SampleForest())
		return s, err
	}
	s.reset(forest)
	return s, nil
}

// SampleForest is the list substituted when no usable file exists.
func SampleForest() []*model.Item {
	milk := model.New("Milk")
	cheese := model.New("Cheese")
	bread := model.New("Bread")
	dairy := model.New("Dairy")
	dairy.Children = []*model.Item{milk, cheese}
	bakery := model.New("Bakery")
	bakery.Children = []*model.Item{bread}
	root := model.New("Shopping lists")
	root.Children = []*model.Item{dairy, bakery}
	return []*model.Item{root}
}

func (s *Store) reset(forest []*model.Item) {
	s.roots = forest
	s.items = make(map[string]*model.Item)
	s.parents = make(map[string]*model.Item)
	for _, r := range s.roots {
		s.index(r, nil)
	}
}

func (s *Store) index(it *model.Item, parent *model.Item) {
	s.items[it.ID] = it
	if parent != nil {
		s.parents[it.ID] = parent
	}
	for _, c := range it.Children {
		s.index(c, it)
	}
}

// Roots returns the root sequence. Callers must not mutate it.
func (s *Store) Roots() []*model.Item { return s.roots }

// Find returns the live node with the given id, nil when it is not part of
// the forest (removed, or a stale id from an abandoned async result).
func (s *Store) Find(id string) *model.Item { return s.items[id] }

// ParentOf returns the owning parent of id, nil for roots and unknown ids.
func (s *Store) ParentOf(id string) *model.Item { return s.parents[id] }

// Contains reports whether id sits inside ancestorID's subtree, the node
// itself included. The walk follows parent links up to the root.
func (s *Store) Contains(ancestorID, id string) bool {
	for cur := s.items[id]; cur != nil; cur = s.parents[cur.ID] {
		if cur.ID == ancestorID {
			return true
		}
	}
	return false
}

// AddChild appends a new leaf under parentID and persists.
func (s *Store) AddChild(parentID, title string) (*model.Item, error) {
	return s.AddChildURL(parentID, title, "")
}

// AddChildURL is AddChild with a link attached, used by the capture-page
// flow.
func (s *Store) AddChildURL(parentID, title, url string) (*model.Item, error) {
	if strings.TrimSpace(title) == "" {
		return nil, fmt.Errorf("%w: title is blank", ErrInvalidParent)
	}
	parent := s.items[parentID]
	if parent == nil {
		return nil, fmt.Errorf("%w: no such node", ErrInvalidParent)
	}
	it := model.New(title)
	it.URL = url
	parent.Children = append(parent.Children, it)
	s.items[it.ID] = it
	s.parents[it.ID] = parent
	return it, s.save()
}

// AddRoot appends a new heading to the end of the root sequence and
// persists.
func (s *Store) AddRoot(title string) (*model.Item, error) {
	if strings.TrimSpace(title) == "" {
		return nil, fmt.Errorf("%w: title is blank", ErrInvalidParent)
	}
	it := model.New(title)
	s.roots = append(s.roots, it)
	s.items[it.ID] = it
	return it, s.save()
}

// Remove detaches the node and discards its whole subtree, then persists.
func (s *Store) Remove(id string) error {
	it := s.items[id]
	if it == nil {
		return fmt.Errorf("%w: no such node", ErrInvalidParent)
	}
	s.detach(it)
	it.Walk(func(n *model.Item) {
		delete(s.items, n.ID)
		delete(s.parents, n.ID)
	})
	return s.save()
}

// SetDone sets the flag on one node only; no cascade in either direction.
// The write happens even when the value is unchanged.
func (s *Store) SetDone(id string, done bool) error {
	it := s.items[id]
	if it == nil {
		return fmt.Errorf("%w: no such node", ErrInvalidParent)
	}
	it.Done = done
	return s.save()
}

// SetQuantity updates the cosmetic quantity. The value is stored as given.
func (s *Store) SetQuantity(id string, n int) error {
	it := s.items[id]
	if it == nil {
		return fmt.Errorf("%w: no such node", ErrInvalidParent)
	}
	it.Quantity = n
	return s.save()
}

// Rename replaces the title, rejecting blank ones.
func (s *Store) Rename(id, title string) error {
	it := s.items[id]
	if it == nil {
		return fmt.Errorf("%w: no such node", ErrInvalidParent)
	}
	if strings.TrimSpace(title) == "" {
		return fmt.Errorf("%w: title is blank", ErrInvalidParent)
	}
	it.Title = title
	return s.save()
}

// Move detaches the node and reattaches it at dest, then persists. The
// destination index is interpreted against the destination sequence as it
// stands after the detach. Rejected with ErrCyclicMove when dest sits
// inside the node's own subtree; nothing is mutated or written then.
func (s *Store) Move(id string, dest MoveTarget) error {
	it := s.items[id]
	if it == nil {
		return fmt.Errorf("%w: no such node", ErrInvalidParent)
	}
	var destParent *model.Item
	if dest.ParentID != "" {
		destParent = s.items[dest.ParentID]
		if destParent == nil {
			return fmt.Errorf("%w: no such node", ErrInvalidParent)
		}
		if s.Contains(id, dest.ParentID) {
			return ErrCyclicMove
		}
	}

	s.detach(it)
	seq := &s.roots
	if destParent != nil {
		seq = &destParent.Children
		s.parents[id] = destParent
	}
	idx := dest.Index
	if idx < 0 || idx > len(*seq) {
		idx = len(*seq)
	}
	*seq = append(*seq, nil)
	copy((*seq)[idx+1:], (*seq)[idx:])
	(*seq)[idx] = it
	return s.save()
}

// MoveToRoot appends the node to the end of the root sequence. This is the
// only way a nested node becomes a root.
func (s *Store) MoveToRoot(id string) error {
	return s.Move(id, MoveTarget{Index: -1})
}

// IndexOf returns the node's position within its owning sequence, -1 when
// the id is not live.
func (s *Store) IndexOf(id string) int {
	it := s.items[id]
	if it == nil {
		return -1
	}
	seq := s.roots
	if p := s.parents[id]; p != nil {
		seq = p.Children
	}
	for i, n := range seq {
		if n == it {
			return i
		}
	}
	return -1
}

// detach removes it from its owning sequence. The parent link is cleared;
// the node keeps its subtree.
func (s *Store) detach(it *model.Item) {
	seq := &s.roots
	if p := s.parents[it.ID]; p != nil {
		seq = &p.Children
	}
	for i, n := range *seq {
		if n == it {
			*seq = append((*seq)[:i], (*seq)[i+1:]...)
			break
		}
	}
	delete(s.parents, it.ID)
}

// save writes the whole forest to the list file via a temp file and rename,
// so a crash mid-write cannot corrupt the previous good copy.
func (s *Store) save() error {
	data, err := Encode(s.roots)
	if err != nil {
		return fmt.Errorf("save list: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".cesta-*")
	if err != nil {
		return fmt.Errorf("save list: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("save list: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("save list: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("save list: %w", err)
	}
	s.saves++
	return nil
}

package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cesta/internal/model"
)

func emptyStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "list.json")
	require.NoError(t, os.WriteFile(path, []byte("[]"), 0o644))
	s, err := Open(path)
	require.NoError(t, err)
	require.Empty(t, s.Roots())
	return s
}

func readForest(t *testing.T, s *Store) []*model.Item {
	t.Helper()
	data, err := os.ReadFile(s.path)
	require.NoError(t, err)
	forest, err := Decode(data)
	require.NoError(t, err)
	return forest
}

func TestOpenMissingFileUsesSample(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "list.json"))
	require.NoError(t, err)
	require.Len(t, s.Roots(), 1)
	assert.Equal(t, "Shopping lists", s.Roots()[0].Title)

	// Nothing is written until the first mutation.
	_, err = os.Stat(s.path)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestOpenMalformedFileFallsBackToSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "list.json")
	require.NoError(t, os.WriteFile(path, []byte("{{{"), 0o644))

	s, err := Open(path)
	assert.ErrorIs(t, err, ErrMalformedDocument)
	require.NotNil(t, s)
	require.Len(t, s.Roots(), 1)
	assert.Equal(t, "Shopping lists", s.Roots()[0].Title)
}

func TestAddChildAndPersist(t *testing.T) {
	s := emptyStore(t)

	root, err := s.AddRoot("Groceries")
	require.NoError(t, err)
	item, err := s.AddChild(root.ID, "Milk")
	require.NoError(t, err)

	assert.Equal(t, item, s.Find(item.ID))
	assert.Equal(t, root, s.ParentOf(item.ID))
	assert.True(t, model.EqualForest(s.Roots(), readForest(t, s)))
}

func TestAddChildRejectsBlankTitleAndDeadParent(t *testing.T) {
	s := emptyStore(t)
	root, err := s.AddRoot("Groceries")
	require.NoError(t, err)

	_, err = s.AddChild(root.ID, "   ")
	assert.ErrorIs(t, err, ErrInvalidParent)

	_, err = s.AddChild("no-such-id", "Milk")
	assert.ErrorIs(t, err, ErrInvalidParent)

	_, err = s.AddRoot("")
	assert.ErrorIs(t, err, ErrInvalidParent)
	assert.Equal(t, 1, s.saves, "failed adds must not write")
}

func TestAddChildURL(t *testing.T) {
	s := emptyStore(t)
	root, err := s.AddRoot("Reading")
	require.NoError(t, err)

	item, err := s.AddChildURL(root.ID, "Go blog", "https://go.dev/blog")
	require.NoError(t, err)
	assert.Equal(t, "https://go.dev/blog", item.URL)
	assert.True(t, item.Openable())
}

func TestRemoveCascades(t *testing.T) {
	s := emptyStore(t)
	root, _ := s.AddRoot("Top")
	mid, _ := s.AddChild(root.ID, "Middle")
	leaf, _ := s.AddChild(mid.ID, "Leaf")

	require.NoError(t, s.Remove(mid.ID))

	assert.Nil(t, s.Find(mid.ID))
	assert.Nil(t, s.Find(leaf.ID))
	assert.Nil(t, s.ParentOf(leaf.ID))
	assert.Empty(t, root.Children)
	assert.True(t, model.EqualForest(s.Roots(), readForest(t, s)))

	assert.ErrorIs(t, s.Remove(mid.ID), ErrInvalidParent)
}

func TestSetDoneNoCascadeAndOneWritePerCall(t *testing.T) {
	s := emptyStore(t)
	root, _ := s.AddRoot("Top")
	child, _ := s.AddChild(root.ID, "Child")

	before := s.saves
	require.NoError(t, s.SetDone(child.ID, true))
	require.NoError(t, s.SetDone(child.ID, true))

	assert.True(t, child.Done)
	assert.False(t, root.Done, "done never propagates upward")
	assert.Equal(t, before+2, s.saves, "each call writes, no coalescing")
}

func TestSetQuantityUnvalidated(t *testing.T) {
	s := emptyStore(t)
	root, _ := s.AddRoot("Top")
	item, _ := s.AddChild(root.ID, "Eggs")

	require.NoError(t, s.SetQuantity(item.ID, 12))
	assert.Equal(t, "(12) Eggs", item.Label())

	// Quantity is cosmetic; zero and negative pass through untouched.
	require.NoError(t, s.SetQuantity(item.ID, 0))
	assert.Equal(t, 0, item.Quantity)
}

func TestRename(t *testing.T) {
	s := emptyStore(t)
	root, _ := s.AddRoot("Tpo")

	require.NoError(t, s.Rename(root.ID, "Top"))
	assert.Equal(t, "Top", root.Title)
	assert.ErrorIs(t, s.Rename(root.ID, "  "), ErrInvalidParent)
}

func TestMoveRejectsCycles(t *testing.T) {
	s := emptyStore(t)
	root, _ := s.AddRoot("Top")
	mid, _ := s.AddChild(root.ID, "Middle")
	leaf, _ := s.AddChild(mid.ID, "Leaf")

	fileBefore, err := os.ReadFile(s.path)
	require.NoError(t, err)
	savesBefore := s.saves

	assert.ErrorIs(t, s.Move(root.ID, MoveTarget{ParentID: root.ID, Index: -1}), ErrCyclicMove)
	assert.ErrorIs(t, s.Move(root.ID, MoveTarget{ParentID: leaf.ID, Index: -1}), ErrCyclicMove)

	fileAfter, err := os.ReadFile(s.path)
	require.NoError(t, err)
	assert.Equal(t, fileBefore, fileAfter, "rejected move leaves the file byte-for-byte unchanged")
	assert.Equal(t, savesBefore, s.saves)
	assert.Equal(t, []*model.Item{mid}, root.Children)
}

func TestMoveToRootKeepsSubtree(t *testing.T) {
	s := emptyStore(t)
	root, _ := s.AddRoot("Top")
	mid, _ := s.AddChild(root.ID, "Middle")
	leaf, _ := s.AddChild(mid.ID, "Leaf")

	require.NoError(t, s.MoveToRoot(mid.ID))

	require.Len(t, s.Roots(), 2)
	assert.Equal(t, mid, s.Roots()[1], "appended at the end of the roots")
	assert.Nil(t, s.ParentOf(mid.ID))
	assert.Equal(t, mid, s.ParentOf(leaf.ID), "subtree travels with the node")
	assert.Empty(t, root.Children)
}

func TestContains(t *testing.T) {
	s := emptyStore(t)
	root, _ := s.AddRoot("Top")
	mid, _ := s.AddChild(root.ID, "Middle")
	leaf, _ := s.AddChild(mid.ID, "Leaf")
	other, _ := s.AddRoot("Other")

	assert.True(t, s.Contains(root.ID, leaf.ID))
	assert.True(t, s.Contains(mid.ID, mid.ID), "a node contains itself")
	assert.False(t, s.Contains(leaf.ID, root.ID))
	assert.False(t, s.Contains(other.ID, leaf.ID))
}

func TestSaveLeavesNoTempFiles(t *testing.T) {
	s := emptyStore(t)
	_, err := s.AddRoot("Top")
	require.NoError(t, err)

	entries, err := os.ReadDir(filepath.Dir(s.path))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, filepath.Base(s.path), entries[0].Name())
}

func TestSampleScenario(t *testing.T) {
	// Load the sample list, remove Milk, and check both memory and disk.
	path := filepath.Join(t.TempDir(), "list.json")
	s, err := Open(path)
	require.NoError(t, err)

	root := s.Roots()[0]
	dairy := root.Children[0]
	require.Equal(t, "Dairy", dairy.Title)
	milk := dairy.Children[0]
	require.Equal(t, "Milk", milk.Title)

	require.NoError(t, s.Remove(milk.ID))

	require.Len(t, dairy.Children, 1)
	assert.Equal(t, "Cheese", dairy.Children[0].Title)

	persisted := readForest(t, s)
	assert.True(t, model.EqualForest(s.Roots(), persisted))
}

package ui

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"cesta/internal/model"
)

func fixtureForest() []*model.Item {
	milk := model.New("Milk")
	cheese := model.New("Cheese")
	dairy := model.New("Dairy")
	dairy.Children = []*model.Item{milk, cheese}
	bread := model.New("Bread")
	bakery := model.New("Bakery")
	bakery.Children = []*model.Item{bread}
	root := model.New("Shopping lists")
	root.Children = []*model.Item{dairy, bakery}
	return []*model.Item{root}
}

func rowTitles(rows []row) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.item.Title
	}
	return out
}

func TestFlattenDisplayOrder(t *testing.T) {
	rows := flatten(fixtureForest(), map[string]bool{})

	assert.Equal(t, []string{"Shopping lists", "Dairy", "Milk", "Cheese", "Bakery", "Bread"}, rowTitles(rows))
	assert.Equal(t, 0, rows[0].depth)
	assert.Equal(t, 1, rows[1].depth)
	assert.Equal(t, 2, rows[2].depth)
	assert.True(t, rows[1].hasKids)
	assert.False(t, rows[2].hasKids)
}

func TestFlattenSkipsCollapsedSubtrees(t *testing.T) {
	forest := fixtureForest()
	dairy := forest[0].Children[0]

	rows := flatten(forest, map[string]bool{dairy.ID: true})

	assert.Equal(t, []string{"Shopping lists", "Dairy", "Bakery", "Bread"}, rowTitles(rows))
	i := rowIndexOf(rows, dairy.ID)
	assert.True(t, rows[i].collapsed)
}

func TestFlattenIgnoresCollapsedLeaf(t *testing.T) {
	forest := fixtureForest()
	milk := forest[0].Children[0].Children[0]

	rows := flatten(forest, map[string]bool{milk.ID: true})
	assert.Len(t, rows, 6)
	assert.False(t, rows[rowIndexOf(rows, milk.ID)].collapsed)
}

func TestRowIndexOfMissing(t *testing.T) {
	rows := flatten(fixtureForest(), map[string]bool{})
	assert.Equal(t, -1, rowIndexOf(rows, "nope"))
}

package ui

import "cesta/internal/model"

// row is one visible line of the tree, projected from store state on every
// refresh. The UI never holds node pointers across updates, only ids.
type row struct {
	id        string
	item      *model.Item
	depth     int
	hasKids   bool
	collapsed bool
}

// flatten walks the forest in display order, skipping the subtrees of
// collapsed nodes.
func flatten(roots []*model.Item, collapsed map[string]bool) []row {
	var rows []row
	var walk func(it *model.Item, depth int)
	walk = func(it *model.Item, depth int) {
		col := collapsed[it.ID] && len(it.Children) > 0
		rows = append(rows, row{
			id:        it.ID,
			item:      it,
			depth:     depth,
			hasKids:   len(it.Children) > 0,
			collapsed: col,
		})
		if col {
			return
		}
		for _, c := range it.Children {
			walk(c, depth+1)
		}
	}
	for _, r := range roots {
		walk(r, 0)
	}
	return rows
}

func rowIndexOf(rows []row, id string) int {
	for i, r := range rows {
		if r.id == id {
			return i
		}
	}
	return -1
}

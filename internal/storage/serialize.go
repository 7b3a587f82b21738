package storage

import (
	"encoding/json"
	"errors"
	"fmt"

	"cesta/internal/model"
)

// ErrMalformedDocument marks a persisted list file that cannot be decoded.
// Callers recover by substituting the built-in sample list.
var ErrMalformedDocument = errors.New("malformed list document")

// wireItem is the persisted shape of a node. Quantity is a pointer because
// older files omit it; Children is a read-only alias some of those files
// used instead of SubTasks.
type wireItem struct {
	Title    string     `json:"title"`
	URL      string     `json:"url,omitempty"`
	Done     bool       `json:"isDone"`
	Quantity *int       `json:"quantity,omitempty"`
	SubTasks []wireItem `json:"subTasks"`
	Children []wireItem `json:"children,omitempty"`
}

// Encode renders the forest as the pretty-printed JSON document stored on
// disk. Structure mirrors the forest exactly, order preserved.
func Encode(forest []*model.Item) ([]byte, error) {
	wire := make([]wireItem, 0, len(forest))
	for _, it := range forest {
		wire = append(wire, toWire(it))
	}
	data, err := json.MarshalIndent(wire, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode list: %w", err)
	}
	return data, nil
}

// Decode is the inverse of Encode. Fresh runtime IDs are assigned to every
// node. Syntactically invalid input yields ErrMalformedDocument.
func Decode(data []byte) ([]*model.Item, error) {
	var wire []wireItem
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedDocument, err)
	}
	forest := make([]*model.Item, 0, len(wire))
	for i := range wire {
		forest = append(forest, fromWire(&wire[i]))
	}
	return forest, nil
}

func toWire(it *model.Item) wireItem {
	qty := it.Quantity
	w := wireItem{
		Title:    it.Title,
		URL:      it.URL,
		Done:     it.Done,
		Quantity: &qty,
		SubTasks: make([]wireItem, 0, len(it.Children)),
	}
	for _, c := range it.Children {
		w.SubTasks = append(w.SubTasks, toWire(c))
	}
	return w
}

func fromWire(w *wireItem) *model.Item {
	it := model.New(w.Title)
	it.URL = w.URL
	it.Done = w.Done
	if w.Quantity != nil {
		it.Quantity = *w.Quantity
	}
	kids := w.SubTasks
	if kids == nil {
		kids = w.Children
	}
	for i := range kids {
		it.Children = append(it.Children, fromWire(&kids[i]))
	}
	return it
}

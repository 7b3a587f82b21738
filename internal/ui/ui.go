package ui

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"cesta/internal/browser"
	"cesta/internal/config"
	"cesta/internal/dragdrop"
	"cesta/internal/fetch"
	"cesta/internal/storage"
)

type mode int

const (
	modeList mode = iota
	modeAddHeading
	modeAddChild
	modeLinkURL
	modeRename
	modeConfirmDelete
)

// titleFetchedMsg carries the async result of a page-title lookup. The
// parent id is looked up again on arrival: the node may be gone by then.
type titleFetchedMsg struct {
	parentID string
	url      string
	title    string
	err      error
}

type Model struct {
	store   *storage.Store
	drag    *dragdrop.Controller
	fetcher *fetch.Client
	cfg     config.Config

	rows      []row
	cursor    int
	collapsed map[string]bool

	mode       mode
	input      textinput.Model
	status     string
	subject    string // node the current input mode acts on
	pendingURL string // link waiting to be attached by the add-from-link flow
	pendingDel string
}

func Run(store *storage.Store, cfg config.Config, initialStatus string) error {
	ti := textinput.New()
	ti.Placeholder = "Title"
	ti.CharLimit = 256
	ti.Width = 40

	status := initialStatus
	if status == "" {
		status = "Press 'a' to add an item, 'g' to grab and move one."
	}

	m := Model{
		store:     store,
		drag:      dragdrop.New(store),
		fetcher:   fetch.New(),
		cfg:       cfg,
		collapsed: map[string]bool{},
		input:     ti,
		status:    status,
	}
	m.rows = flatten(store.Roots(), m.collapsed)

	program := tea.NewProgram(m)
	_, err := program.Run()
	return err
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.mode == modeConfirmDelete {
			return m.updateDeleteConfirm(msg.String())
		}
		if m.mode != modeList {
			return m.updateInputMode(msg.String(), msg)
		}
		return m.updateListMode(msg.String())
	case tea.WindowSizeMsg:
		m.input.Width = msg.Width - 10
	case titleFetchedMsg:
		return m.handleTitleFetched(msg)
	}
	return m, nil
}

func (m Model) updateListMode(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "ctrl+c", m.cfg.Keys.Quit:
		return m, tea.Quit
	case m.cfg.Keys.Down, "down":
		if m.cursor < len(m.rows)-1 {
			m.cursor++
		}
		m.hover()
	case m.cfg.Keys.Up, "up":
		if m.cursor > 0 {
			m.cursor--
		}
		m.hover()
	case m.cfg.Keys.Collapse, "left":
		if r, ok := m.currentRow(); ok && r.hasKids {
			m.collapsed[r.id] = true
			m.refresh()
		}
	case m.cfg.Keys.Expand, "right":
		if r, ok := m.currentRow(); ok && r.collapsed {
			delete(m.collapsed, r.id)
			m.refresh()
		}
	case m.cfg.Keys.Toggle:
		return m.toggleDone()
	case m.cfg.Keys.AddHeading:
		m.subject = ""
		m.pendingURL = ""
		return m.enterInput(modeAddHeading, "", "Heading title"), nil
	case m.cfg.Keys.AddChild:
		r, ok := m.currentRow()
		if !ok {
			m.status = "Nothing selected; use '" + m.cfg.Keys.AddHeading + "' to add a heading"
			return m, nil
		}
		m.subject = r.id
		m.pendingURL = ""
		return m.enterInput(modeAddChild, "", "Item title"), nil
	case m.cfg.Keys.AddLink:
		r, ok := m.currentRow()
		if !ok {
			m.status = "Nothing selected; add a heading first"
			return m, nil
		}
		m.subject = r.id
		return m.enterInput(modeLinkURL, "", "https://…"), nil
	case m.cfg.Keys.Rename:
		r, ok := m.currentRow()
		if !ok {
			return m, nil
		}
		m.subject = r.id
		return m.enterInput(modeRename, r.item.Title, "New title"), nil
	case m.cfg.Keys.Delete:
		r, ok := m.currentRow()
		if !ok {
			return m, nil
		}
		m.pendingDel = r.id
		m.mode = modeConfirmDelete
		m.status = fmt.Sprintf("Delete %q and everything under it? y/n", r.item.Title)
	case m.cfg.Keys.QuantityUp:
		return m.bumpQuantity(1)
	case m.cfg.Keys.QuantityDown:
		return m.bumpQuantity(-1)
	case m.cfg.Keys.Grab:
		return m.grab()
	case m.cfg.Keys.DropRoot:
		if m.drag.Dragging() {
			return m.drop(true)
		}
	case m.cfg.Keys.Confirm, "enter":
		if m.drag.Dragging() {
			return m.drop(false)
		}
		return m.openLink()
	case m.cfg.Keys.Open:
		return m.openLink()
	case m.cfg.Keys.Cancel, "esc":
		if m.drag.Dragging() {
			m.drag.Cancel()
			m.status = "Move cancelled"
		}
	}
	return m, nil
}

func (m Model) toggleDone() (tea.Model, tea.Cmd) {
	r, ok := m.currentRow()
	if !ok {
		return m, nil
	}
	if err := m.store.SetDone(r.id, !r.item.Done); err != nil {
		m.status = fmt.Sprintf("toggle failed: %v", err)
		return m, nil
	}
	m.refresh()
	return m, nil
}

func (m Model) bumpQuantity(delta int) (tea.Model, tea.Cmd) {
	r, ok := m.currentRow()
	if !ok {
		return m, nil
	}
	if err := m.store.SetQuantity(r.id, r.item.Quantity+delta); err != nil {
		m.status = fmt.Sprintf("quantity change failed: %v", err)
	}
	m.refresh()
	return m, nil
}

func (m Model) grab() (tea.Model, tea.Cmd) {
	r, ok := m.currentRow()
	if !ok {
		return m, nil
	}
	if m.drag.Dragging() {
		return m, nil
	}
	if err := m.drag.Grab(r.id); err != nil {
		m.status = fmt.Sprintf("grab failed: %v", err)
		return m, nil
	}
	m.drag.Hover(r.id)
	m.status = fmt.Sprintf("Moving %q: enter drops onto the selected node, '%s' drops at the top level, esc cancels",
		r.item.Title, m.cfg.Keys.DropRoot)
	return m, nil
}

func (m Model) drop(toRoot bool) (tea.Model, tea.Cmd) {
	source := m.drag.Source()
	var kind dragdrop.DropKind
	var err error
	var target string
	if toRoot {
		kind, err = m.drag.DropOnCanvas()
	} else {
		r, ok := m.currentRow()
		if !ok {
			kind, err = m.drag.DropOnCanvas()
		} else {
			target = r.id
			kind, err = m.drag.Drop(r.id)
		}
	}
	switch {
	case errors.Is(err, storage.ErrCyclicMove):
		m.status = "Cannot drop a node onto itself or into its own subtree"
		return m, nil
	case err != nil:
		m.status = fmt.Sprintf("move failed: %v", err)
		return m, nil
	}
	if kind == dragdrop.DropReparent && target != "" {
		delete(m.collapsed, target) // reveal the newly added child
	}
	m.refresh()
	m.selectNode(source)
	switch kind {
	case dragdrop.DropRoot:
		m.status = "Moved to the top level"
	case dragdrop.DropReorder:
		m.status = "Reordered"
	case dragdrop.DropReparent:
		m.status = "Moved"
	}
	return m, nil
}

func (m Model) openLink() (tea.Model, tea.Cmd) {
	r, ok := m.currentRow()
	if !ok || !r.item.Openable() {
		return m, nil
	}
	u, err := browser.ValidateURL(r.item.URL)
	if err != nil {
		m.status = fmt.Sprintf("cannot open link: %v", err)
		return m, nil
	}
	if err := browser.Open(u); err != nil {
		m.status = fmt.Sprintf("browser failed: %v", err)
		return m, nil
	}
	m.status = "Opened " + u
	return m, nil
}

func (m Model) enterInput(to mode, value, placeholder string) Model {
	m.mode = to
	m.input.SetValue(value)
	m.input.Placeholder = placeholder
	m.input.CursorEnd()
	m.input.Focus()
	switch to {
	case modeAddHeading:
		m.status = "New heading: type a title and press enter"
	case modeAddChild:
		m.status = "New item: type a title and press enter"
	case modeLinkURL:
		m.status = "Add from link: paste a URL and press enter"
	case modeRename:
		m.status = "Rename: edit the title and press enter"
	}
	return m
}

func (m Model) leaveInput() Model {
	m.mode = modeList
	m.input.SetValue("")
	m.input.Blur()
	return m
}

func (m Model) updateInputMode(key string, msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key {
	case m.cfg.Keys.Cancel, "esc":
		m = m.leaveInput()
		m.pendingURL = ""
		m.status = "Cancelled"
		return m, nil
	case m.cfg.Keys.Confirm, "enter":
		return m.confirmInput()
	default:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
}

func (m Model) confirmInput() (tea.Model, tea.Cmd) {
	value := m.input.Value()
	switch m.mode {
	case modeAddHeading:
		it, err := m.store.AddRoot(value)
		if err != nil {
			m.status = fmt.Sprintf("add failed: %v", err)
			return m, nil
		}
		m = m.leaveInput()
		m.refresh()
		m.selectNode(it.ID)
		m.status = "Added heading"
		return m, nil
	case modeAddChild:
		var err error
		var added string
		if m.pendingURL != "" {
			it, e := m.store.AddChildURL(m.subject, value, m.pendingURL)
			if e == nil {
				added = it.ID
			}
			err = e
		} else {
			it, e := m.store.AddChild(m.subject, value)
			if e == nil {
				added = it.ID
			}
			err = e
		}
		if err != nil {
			m.status = fmt.Sprintf("add failed: %v", err)
			return m, nil
		}
		m.pendingURL = ""
		delete(m.collapsed, m.subject)
		m = m.leaveInput()
		m.refresh()
		m.selectNode(added)
		m.status = "Added item"
		return m, nil
	case modeLinkURL:
		u, err := browser.ValidateURL(value)
		if err != nil {
			m.status = fmt.Sprintf("bad link: %v", err)
			return m, nil
		}
		m.pendingURL = u
		m = m.enterInput(modeAddChild, "", "Item title (fetching page title…)")
		m.status = "Fetching page title…"
		return m, fetchTitleCmd(m.fetcher, m.subject, u)
	case modeRename:
		if err := m.store.Rename(m.subject, value); err != nil {
			m.status = fmt.Sprintf("rename failed: %v", err)
			return m, nil
		}
		m = m.leaveInput()
		m.refresh()
		m.status = "Renamed"
		return m, nil
	}
	return m, nil
}

func (m Model) updateDeleteConfirm(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "n", "N", m.cfg.Keys.Cancel, "esc":
		m.mode = modeList
		m.pendingDel = ""
		m.status = "Delete cancelled"
		return m, nil
	case "y", "Y":
		id := m.pendingDel
		m.mode = modeList
		m.pendingDel = ""
		if id == "" {
			return m, nil
		}
		if err := m.store.Remove(id); err != nil {
			m.status = fmt.Sprintf("delete failed: %v", err)
			return m, nil
		}
		m.refresh()
		m.status = "Deleted"
		return m, nil
	default:
		return m, nil
	}
}

func (m Model) handleTitleFetched(msg titleFetchedMsg) (tea.Model, tea.Cmd) {
	if m.store.Find(msg.parentID) == nil {
		// Target vanished while the fetch was in flight; drop the result.
		return m, nil
	}
	if msg.err != nil {
		if m.mode == modeAddChild && m.pendingURL == msg.url {
			m.status = fmt.Sprintf("no page title (%v); enter one yourself", msg.err)
		}
		return m, nil
	}
	if m.mode == modeAddChild && m.subject == msg.parentID &&
		m.pendingURL == msg.url && m.input.Value() == "" {
		m.input.SetValue(msg.title)
		m.input.CursorEnd()
		m.status = "Page title filled in; press enter to add"
	}
	return m, nil
}

func fetchTitleCmd(fetcher *fetch.Client, parentID, url string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		title, err := fetcher.Title(ctx, url)
		return titleFetchedMsg{parentID: parentID, url: url, title: title, err: err}
	}
}

func (m *Model) refresh() {
	m.rows = flatten(m.store.Roots(), m.collapsed)
	if m.cursor >= len(m.rows) {
		m.cursor = len(m.rows) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m *Model) selectNode(id string) {
	if i := rowIndexOf(m.rows, id); i >= 0 {
		m.cursor = i
	}
}

func (m *Model) hover() {
	if !m.drag.Dragging() {
		return
	}
	if r, ok := m.currentRow(); ok {
		m.drag.Hover(r.id)
	} else {
		m.drag.Hover("")
	}
}

func (m Model) currentRow() (row, bool) {
	if len(m.rows) == 0 || m.cursor < 0 || m.cursor >= len(m.rows) {
		return row{}, false
	}
	return m.rows[m.cursor], true
}

package ui

import (
	"fmt"
	"strings"

	"cesta/internal/config"
)

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("cesta"))
	b.WriteString("\n\n")

	if len(m.rows) == 0 {
		b.WriteString("Empty list. Press '" + m.cfg.Keys.AddHeading + "' to add a heading.")
		b.WriteString("\n")
	} else {
		b.WriteString(m.renderRows())
	}

	b.WriteString("\n---\n")
	if m.mode == modeAddHeading || m.mode == modeAddChild ||
		m.mode == modeLinkURL || m.mode == modeRename {
		b.WriteString(m.input.View())
		b.WriteString("\n")
	}
	b.WriteString(statusStyle.Render(m.status))
	b.WriteString("\n")
	b.WriteString(statusStyle.Render(renderHelp(m.cfg.Keys)))
	return b.String()
}

func (m Model) renderRows() string {
	var b strings.Builder
	for i, r := range m.rows {
		cursor := " "
		if m.cursor == i && m.mode == modeList {
			cursor = ">"
		}

		marker := "  "
		if r.hasKids {
			marker = "▾ "
			if r.collapsed {
				marker = "▸ "
			}
		}

		checkbox := "[ ]"
		if r.item.Done {
			checkbox = "[x]"
		}

		label := r.item.Label()
		switch {
		case m.drag.Dragging() && r.id == m.drag.Source():
			label = grabbedStyle.Render(label)
		case m.drag.Dragging() && m.cursor == i:
			label = targetStyle.Render(label)
		case r.item.Done:
			label = doneStyle.Render(label)
		case r.hasKids:
			label = headingStyle.Render(label)
		}
		if r.item.Openable() {
			label += linkStyle.Render(" ↗")
		}

		fmt.Fprintf(&b, "%s %s%s%s %s\n",
			cursor, strings.Repeat("  ", r.depth), marker, checkbox, label)
	}
	return b.String()
}

func renderHelp(k config.Keymap) string {
	return fmt.Sprintf("%s/%s move • %s toggle • %s/%s add item/heading • %s add from link • %s grab/drop • %s rename • %s delete • %s open • %s quit",
		k.Up, k.Down, k.Toggle, k.AddChild, k.AddHeading, k.AddLink, k.Grab, k.Rename, k.Delete, k.Open, k.Quit)
}

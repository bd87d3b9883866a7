package ui

import (
	"fmt"
	"strings"

	"todo/internal/config"
	"todo/internal/storage"
)

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(m.list.Title))
	b.WriteString("\n\n")

	for _, s := range []section{sectionCurrent, sectionCompleted} {
		b.WriteString(headerStyle.Render(s.title()))
		b.WriteString("\n")
		b.WriteString(m.renderSection(s))
		b.WriteString("\n")
	}

	if m.alert != nil {
		b.WriteString(m.alert.View())
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(statusStyle.Render(m.status))
	b.WriteString("\n")
	b.WriteString(helpStyle.Render(renderHelp(m.cfg.Keys)))

	return b.String()
}

func (m Model) renderSection(s section) string {
	rows := m.rows(s)
	if len(rows) == 0 {
		return noteStyle.Render("  (no tasks)") + "\n"
	}
	var b strings.Builder
	for i, t := range rows {
		active := m.alert == nil && m.sec == s && m.row == i
		b.WriteString(m.renderRow(t, active))
		b.WriteString("\n")
		if active && m.actions != nil {
			b.WriteString("    ")
			b.WriteString(m.actions.view())
			b.WriteString("\n")
		}
	}
	return b.String()
}

func (m Model) renderRow(t storage.Task, active bool) string {
	cursor := "  "
	if active {
		cursor = cursorStyle.Render("> ")
	}
	title := t.Title
	if t.IsComplete {
		title = doneRowStyle.Render(title)
	}
	line := cursor + title
	if strings.TrimSpace(t.Note) != "" {
		line += "\n    " + noteStyle.Render(t.Note)
	}
	return line
}

func renderHelp(k config.Keymap) string {
	return fmt.Sprintf("%s/%s move • %s add • %s actions • %s done • %s edit • %s delete • %s quit",
		keyLabel(k.Up), keyLabel(k.Down), keyLabel(k.Add), keyLabel(k.Actions),
		keyLabel(k.Toggle), keyLabel(k.Edit), keyLabel(k.Delete), keyLabel(k.Quit))
}

func keyLabel(k string) string {
	if k == " " {
		return "space"
	}
	return k
}

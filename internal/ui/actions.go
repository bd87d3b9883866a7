package ui

import (
	"strings"

	"todo/internal/storage"
)

type rowAction int

const (
	actionToggle rowAction = iota
	actionEdit
	actionDelete
)

// rowActions is the trailing action menu of one row, in display order
// Done/Undone, Edit, Delete.
type rowActions struct {
	task    storage.Task
	actions []rowAction
	index   int
}

func newRowActions(t storage.Task) *rowActions {
	return &rowActions{
		task:    t,
		actions: []rowAction{actionToggle, actionEdit, actionDelete},
	}
}

func (r *rowActions) label(a rowAction) string {
	switch a {
	case actionToggle:
		if r.task.IsComplete {
			return "Undone"
		}
		return "Done"
	case actionEdit:
		return "Edit"
	case actionDelete:
		return "Delete"
	}
	return ""
}

func (r *rowActions) current() rowAction {
	return r.actions[r.index]
}

func (r *rowActions) move(delta int) {
	r.index = wrapIndex(r.index+delta, len(r.actions))
}

func (r *rowActions) view() string {
	parts := make([]string, 0, len(r.actions))
	for i, a := range r.actions {
		label := " " + r.label(a) + " "
		if i == r.index {
			label = "[" + r.label(a) + "]"
		}
		parts = append(parts, actionStyle(a).Render(label))
	}
	return strings.Join(parts, " ")
}

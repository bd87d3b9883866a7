package ui

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"todo/internal/config"
	"todo/internal/storage"
	"todo/internal/watch"
)

// TaskStore is the part of the storage manager the list screen uses.
type TaskStore interface {
	CurrentTasks(ctx context.Context, listID int64) ([]storage.Task, error)
	CompletedTasks(ctx context.Context, listID int64) ([]storage.Task, error)
	SaveTask(ctx context.Context, listID int64, title, note string) (storage.Task, error)
	EditTask(ctx context.Context, id int64, title, note string) error
	DeleteTask(ctx context.Context, id int64) error
	DoneTask(ctx context.Context, id int64) (storage.Task, error)
}

type section int

const (
	sectionCurrent section = iota
	sectionCompleted
)

func (s section) title() string {
	if s == sectionCurrent {
		return "CURRENT TASKS"
	}
	return "COMPLETED TASKS"
}

type operation int

const (
	opSave operation = iota
	opEdit
	opDelete
	opToggle
)

func (o operation) String() string {
	switch o {
	case opSave:
		return "save"
	case opEdit:
		return "edit"
	case opDelete:
		return "delete"
	case opToggle:
		return "toggle"
	}
	return "operation"
}

// taskMsg reports the outcome of a storage command.
type taskMsg struct {
	op   operation
	task storage.Task
	err  error
}

// ReloadMsg asks the screen to re-query both sections, e.g. after another
// process changed the database.
type ReloadMsg struct{}

type Model struct {
	store     TaskStore
	cfg       config.Config
	logger    *slog.Logger
	list      storage.TaskList
	current   []storage.Task
	completed []storage.Task

	sec    section
	row    int
	width  int
	status string

	alert      *Alert
	actions    *rowActions
	confirmDel bool
	pendingDel *storage.Task
}

// New loads both sections of list and returns a ready screen.
func New(store TaskStore, cfg config.Config, list storage.TaskList, logger *slog.Logger) (Model, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	m := Model{
		store:  store,
		cfg:    cfg,
		logger: logger.With("list_id", list.ID),
		list:   list,
		status: fmt.Sprintf("Press '%s' to add, '%s' for row actions.", keyLabel(cfg.Keys.Add), keyLabel(cfg.Keys.Actions)),
	}
	if err := m.reload(); err != nil {
		return Model{}, fmt.Errorf("load tasks: %w", err)
	}
	return m, nil
}

// Run opens the screen for list and blocks until the user quits. When
// cfg.Watch is set, writes to the database by other processes reload the view.
func Run(store *storage.Store, cfg config.Config, list storage.TaskList, logger *slog.Logger) error {
	m, err := New(store, cfg, list, logger)
	if err != nil {
		return err
	}

	program := tea.NewProgram(m, tea.WithAltScreen())
	if cfg.Watch && !strings.HasPrefix(store.Path(), "file:") {
		w, err := watch.New(store.Path(), watch.DefaultDebounce, logger, func() {
			program.Send(ReloadMsg{})
		})
		if err != nil {
			m.logger.Warn("database watch disabled", "error", err)
		} else {
			defer w.Close()
		}
	}
	_, err = program.Run()
	return err
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		if m.alert != nil {
			m.alert.SetWidth(msg.Width - 10)
		}
		return m, nil
	case taskMsg:
		return m.applyResult(msg)
	case ReloadMsg:
		if err := m.reload(); err != nil {
			m.status = fmt.Sprintf("reload failed: %v", err)
		}
		return m, nil
	}

	if m.alert != nil {
		cmd := m.alert.Update(msg)
		if m.alert.Done() {
			m.alert = nil
			if cmd == nil {
				m.status = "Cancelled"
			}
		}
		return m, cmd
	}

	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	if m.confirmDel {
		return m.updateDeleteConfirm(key.String())
	}
	if m.actions != nil {
		return m.updateActions(key.String())
	}
	return m.updateListMode(key.String())
}

func (m Model) updateListMode(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "ctrl+c", m.cfg.Keys.Quit:
		return m, tea.Quit
	case m.cfg.Keys.Down, "down":
		m.move(1)
	case m.cfg.Keys.Up, "up":
		m.move(-1)
	case m.cfg.Keys.Add:
		return m.showAlert(nil)
	case m.cfg.Keys.Select:
		// Selecting a row only deselects it again.
		m.status = ""
	case m.cfg.Keys.Actions, "right":
		task, ok := m.selected()
		if !ok {
			m.status = "No task selected"
			return m, nil
		}
		m.actions = newRowActions(task)
		m.status = fmt.Sprintf("Actions for \"%s\"", task.Title)
	case m.cfg.Keys.Toggle:
		return m.runAction(actionToggle)
	case m.cfg.Keys.Edit:
		return m.runAction(actionEdit)
	case m.cfg.Keys.Delete:
		return m.runAction(actionDelete)
	}
	return m, nil
}

func (m Model) updateActions(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "ctrl+c":
		return m, tea.Quit
	case m.cfg.Keys.Cancel, "esc", "left":
		if key == "left" && m.actions.index > 0 {
			m.actions.move(-1)
			return m, nil
		}
		m.actions = nil
		m.status = ""
	case "h", "shift+tab":
		m.actions.move(-1)
	case "l", "tab", "right":
		m.actions.move(1)
	case m.cfg.Keys.Confirm, "enter":
		a := m.actions.current()
		m.actions = nil
		return m.runAction(a)
	}
	return m, nil
}

// runAction applies a row action to the selected task.
func (m Model) runAction(a rowAction) (tea.Model, tea.Cmd) {
	task, ok := m.selected()
	if !ok {
		m.status = "No task selected"
		return m, nil
	}
	switch a {
	case actionToggle:
		return m, m.toggleCmd(task)
	case actionEdit:
		return m.showAlert(&task)
	case actionDelete:
		if m.cfg.ConfirmDelete {
			m.confirmDel = true
			m.pendingDel = &task
			m.status = fmt.Sprintf("Delete \"%s\"? y/n", task.Title)
			return m, nil
		}
		return m, m.deleteCmd(task)
	}
	return m, nil
}

func (m Model) updateDeleteConfirm(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "n", "N", m.cfg.Keys.Cancel:
		m.status = "Delete cancelled"
		m.confirmDel = false
		m.pendingDel = nil
		return m, nil
	case "y", "Y":
		if m.pendingDel == nil {
			m.status = "Nothing to delete"
			m.confirmDel = false
			return m, nil
		}
		task := *m.pendingDel
		m.confirmDel = false
		m.pendingDel = nil
		return m, m.deleteCmd(task)
	default:
		return m, nil
	}
}

// showAlert opens the task form: empty for a new task, pre-filled when
// editing task.
func (m Model) showAlert(task *storage.Task) (tea.Model, tea.Cmd) {
	title, action := "New Task", "Save Task"
	if task != nil {
		title, action = "Edit Task", "Update Task"
	}

	b := NewAlertBuilder(title, "What do you want to do?").SetKeys(m.cfg.Keys)
	var handler AlertHandler
	if task != nil {
		b.SetTextFields(task.Title, task.Note)
		id := task.ID
		handler = func(title, note string) tea.Cmd { return m.editCmd(id, title, note) }
	} else {
		b.SetTextFields("", "")
		handler = func(title, note string) tea.Cmd { return m.saveCmd(title, note) }
	}
	alert := b.AddAction(action, ActionDefault, handler).
		AddAction("Cancel", ActionDestructive, nil).
		Build()
	alert.SetWidth(m.width - 10)

	m.alert = &alert
	m.actions = nil
	m.status = fmt.Sprintf("%s to switch fields, %s to confirm, %s to cancel",
		keyLabel(m.cfg.Keys.NextField), keyLabel(m.cfg.Keys.Confirm), keyLabel(m.cfg.Keys.Cancel))
	return m, alert.Init()
}

func (m Model) saveCmd(title, note string) tea.Cmd {
	store, listID := m.store, m.list.ID
	return func() tea.Msg {
		task, err := store.SaveTask(context.Background(), listID, title, note)
		return taskMsg{op: opSave, task: task, err: err}
	}
}

func (m Model) editCmd(id int64, title, note string) tea.Cmd {
	store := m.store
	return func() tea.Msg {
		err := store.EditTask(context.Background(), id, title, note)
		return taskMsg{op: opEdit, task: storage.Task{ID: id, Title: title, Note: note}, err: err}
	}
}

func (m Model) deleteCmd(task storage.Task) tea.Cmd {
	store := m.store
	return func() tea.Msg {
		err := store.DeleteTask(context.Background(), task.ID)
		return taskMsg{op: opDelete, task: task, err: err}
	}
}

func (m Model) toggleCmd(task storage.Task) tea.Cmd {
	store := m.store
	return func() tea.Msg {
		updated, err := store.DoneTask(context.Background(), task.ID)
		if err != nil {
			updated = task
		}
		return taskMsg{op: opToggle, task: updated, err: err}
	}
}

func (m Model) applyResult(msg taskMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.logger.Error("task operation failed", "op", msg.op.String(), "task_id", msg.task.ID, "error", msg.err)
		m.status = fmt.Sprintf("%s failed: %v", msg.op, msg.err)
		return m, nil
	}
	if err := m.reload(); err != nil {
		m.logger.Error("reload failed", "error", err)
		m.status = fmt.Sprintf("reload failed: %v", err)
		return m, nil
	}

	switch msg.op {
	case opSave:
		m.focusTask(msg.task.ID)
		m.status = "Added task"
	case opEdit:
		m.status = "Updated task"
	case opDelete:
		m.status = "Deleted task"
	case opToggle:
		if msg.task.IsComplete {
			m.status = "Marked done"
		} else {
			m.status = "Marked undone"
		}
	}
	m.logger.Info("task "+msg.op.String(), "task_id", msg.task.ID)
	return m, nil
}

// reload re-queries both sections and keeps the cursor in range.
func (m *Model) reload() error {
	ctx := context.Background()
	current, err := m.store.CurrentTasks(ctx, m.list.ID)
	if err != nil {
		return err
	}
	completed, err := m.store.CompletedTasks(ctx, m.list.ID)
	if err != nil {
		return err
	}
	m.current, m.completed = current, completed
	m.clamp()
	return nil
}

func (m Model) rows(s section) []storage.Task {
	if s == sectionCurrent {
		return m.current
	}
	return m.completed
}

func (m Model) selected() (storage.Task, bool) {
	rows := m.rows(m.sec)
	if m.row < 0 || m.row >= len(rows) {
		return storage.Task{}, false
	}
	return rows[m.row], true
}

// clamp keeps the cursor on an existing row, switching section when the
// current one is empty.
func (m *Model) clamp() {
	if len(m.rows(m.sec)) == 0 {
		other := sectionCompleted
		if m.sec == sectionCompleted {
			other = sectionCurrent
		}
		if len(m.rows(other)) > 0 {
			m.sec = other
		}
	}
	m.row = clampCursor(m.row, len(m.rows(m.sec)))
}

// move steps the cursor through both sections as one sequence.
func (m *Model) move(delta int) {
	total := len(m.current) + len(m.completed)
	if total == 0 {
		return
	}
	flat := m.row
	if m.sec == sectionCompleted {
		flat += len(m.current)
	}
	flat = clampCursor(flat+delta, total)
	if flat < len(m.current) {
		m.sec, m.row = sectionCurrent, flat
	} else {
		m.sec, m.row = sectionCompleted, flat-len(m.current)
	}
}

func (m *Model) focusTask(id int64) {
	for _, s := range []section{sectionCurrent, sectionCompleted} {
		for i, t := range m.rows(s) {
			if t.ID == id {
				m.sec, m.row = s, i
				return
			}
		}
	}
}

func clampCursor(cur, n int) int {
	if n <= 0 {
		return 0
	}
	if cur < 0 {
		return 0
	}
	if cur >= n {
		return n - 1
	}
	return cur
}

func wrapIndex(idx, n int) int {
	if n <= 0 {
		return 0
	}
	idx %= n
	if idx < 0 {
		idx += n
	}
	return idx
}

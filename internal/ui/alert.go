package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"todo/internal/config"
)

type ActionStyle int

const (
	ActionDefault ActionStyle = iota
	// ActionDestructive actions close the alert without validating its fields.
	ActionDestructive
)

// AlertHandler receives the title and note fields when its action fires. A nil
// handler just closes the alert.
type AlertHandler func(title, note string) tea.Cmd

type AlertAction struct {
	Title   string
	Style   ActionStyle
	Handler AlertHandler
}

// Alert is a modal form with a title, a message, two text fields (title and
// note) and a row of actions.
//
// Focus cycles through the fields and then the actions. Confirm on a field
// fires the first action; confirm on an action fires that action. Cancel fires
// the first destructive action. Default-style actions stay disabled while the
// title field is blank.
type Alert struct {
	Title   string
	Message string

	fields  []textinput.Model
	initial []prefill
	actions []AlertAction
	focus   int
	keys    config.Keymap
	err     string
	done    bool
}

// prefill remembers what a field was given and what the input made of it.
// The input sanitises newlines, so an untouched field reports the given text.
type prefill struct {
	given  string
	loaded string
}

// AlertBuilder assembles an Alert step by step.
type AlertBuilder struct {
	alert Alert
}

func NewAlertBuilder(title, message string) *AlertBuilder {
	return &AlertBuilder{alert: Alert{
		Title:   title,
		Message: message,
		keys:    config.Default().Keys,
	}}
}

// SetTextFields adds the title and note inputs, pre-filled with the given values.
func (b *AlertBuilder) SetTextFields(title, note string) *AlertBuilder {
	b.alert.fields = []textinput.Model{
		newField("Task", title),
		newField("Note", note),
	}
	b.alert.initial = []prefill{
		{given: title, loaded: b.alert.fields[0].Value()},
		{given: note, loaded: b.alert.fields[1].Value()},
	}
	return b
}

func (b *AlertBuilder) AddAction(title string, style ActionStyle, handler AlertHandler) *AlertBuilder {
	b.alert.actions = append(b.alert.actions, AlertAction{Title: title, Style: style, Handler: handler})
	return b
}

// SetKeys overrides the confirm/cancel/field navigation keys.
func (b *AlertBuilder) SetKeys(k config.Keymap) *AlertBuilder {
	b.alert.keys = k
	return b
}

func (b *AlertBuilder) Build() Alert {
	a := b.alert
	a.fields = append([]textinput.Model(nil), a.fields...)
	a.initial = append([]prefill(nil), a.initial...)
	a.actions = append([]AlertAction(nil), a.actions...)
	a.setFocus(0)
	return a
}

func newField(placeholder, value string) textinput.Model {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.Prompt = placeholder + ": "
	ti.CharLimit = 0
	ti.Width = 40
	ti.SetValue(value)
	return ti
}

// Init returns the cursor blink command of the focused field.
func (a Alert) Init() tea.Cmd {
	if a.focus < len(a.fields) {
		return textinput.Blink
	}
	return nil
}

// Done reports whether an action has fired and the alert should be dismissed.
func (a Alert) Done() bool {
	return a.done
}

// Values returns the current title and note. A field left untouched returns
// exactly the text it was pre-filled with.
func (a Alert) Values() (string, string) {
	var title, note string
	if len(a.fields) > 0 {
		title = a.value(0)
	}
	if len(a.fields) > 1 {
		note = a.value(1)
	}
	return title, note
}

func (a Alert) value(i int) string {
	v := a.fields[i].Value()
	if i < len(a.initial) && v == a.initial[i].loaded {
		return a.initial[i].given
	}
	return v
}

func (a *Alert) SetWidth(w int) {
	if w <= 0 {
		return
	}
	for i := range a.fields {
		a.fields[i].Width = w
	}
}

func (a *Alert) Update(msg tea.Msg) tea.Cmd {
	if a.done {
		return nil
	}
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return a.updateField(msg)
	}
	switch key.String() {
	case a.keys.Cancel, "esc":
		for i, act := range a.actions {
			if act.Style == ActionDestructive {
				return a.fire(i)
			}
		}
		a.done = true
		return nil
	case a.keys.NextField, "down":
		a.setFocus(wrapIndex(a.focus+1, a.focusables()))
		return nil
	case a.keys.PrevField, "up":
		a.setFocus(wrapIndex(a.focus-1, a.focusables()))
		return nil
	case a.keys.Confirm, "enter":
		if a.focus < len(a.fields) {
			return a.fire(0)
		}
		return a.fire(a.focus - len(a.fields))
	default:
		a.err = ""
		return a.updateField(msg)
	}
}

func (a *Alert) updateField(msg tea.Msg) tea.Cmd {
	if a.focus >= len(a.fields) {
		return nil
	}
	var cmd tea.Cmd
	a.fields[a.focus], cmd = a.fields[a.focus].Update(msg)
	return cmd
}

func (a *Alert) fire(i int) tea.Cmd {
	if i < 0 || i >= len(a.actions) {
		return nil
	}
	act := a.actions[i]
	title, note := a.Values()
	if act.Style == ActionDefault && len(a.fields) > 0 && strings.TrimSpace(title) == "" {
		a.err = "Title cannot be empty"
		a.setFocus(0)
		return nil
	}
	a.done = true
	for j := range a.fields {
		a.fields[j].Blur()
	}
	if act.Handler == nil {
		return nil
	}
	return act.Handler(title, note)
}

func (a *Alert) focusables() int {
	return len(a.fields) + len(a.actions)
}

func (a *Alert) setFocus(i int) {
	a.focus = i
	for j := range a.fields {
		if j == i {
			a.fields[j].Focus()
		} else {
			a.fields[j].Blur()
		}
	}
}

func (a Alert) View() string {
	var b strings.Builder
	b.WriteString(alertTitleStyle.Render(a.Title))
	b.WriteString("\n")
	b.WriteString(a.Message)
	b.WriteString("\n\n")
	for _, f := range a.fields {
		b.WriteString(f.View())
		b.WriteString("\n")
	}
	b.WriteString("\n")

	buttons := make([]string, 0, len(a.actions))
	for i, act := range a.actions {
		label := act.Title
		if a.focus == len(a.fields)+i {
			label = "[" + label + "]"
		} else {
			label = " " + label + " "
		}
		style := buttonStyle
		if act.Style == ActionDestructive {
			style = destructiveStyle
		}
		buttons = append(buttons, style.Render(label))
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, buttons...))
	if a.err != "" {
		b.WriteString("\n")
		b.WriteString(errorStyle.Render(a.err))
	}
	return alertBoxStyle.Render(b.String())
}

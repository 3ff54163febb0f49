package ui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/BlackOrder/zollpilot/internal/registry"
	"github.com/BlackOrder/zollpilot/internal/wizard"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
)

// fieldInput holds the editing state of one wizard field. Text-like fields
// (text, number, country, currency) use a textinput; booleans and selects
// keep their value directly.
type fieldInput struct {
	def   registry.FieldDefinition
	input textinput.Model
	on    bool
	// opt indexes def.Config.Options; -1 means nothing selected.
	opt int
}

func (fi fieldInput) textual() bool {
	switch fi.def.FieldType {
	case registry.FieldBoolean, registry.FieldSelect:
		return false
	}
	return true
}

// wizardModel walks the user through the steps of one procedure variant.
// Steps and fields are shown in their configured order. Enter advances to
// the next field and, on the last field, checks the step. The model quits
// after the last step or when the user cancels.
type wizardModel struct {
	cfg    *registry.ProcedureConfig
	steps  [][]fieldInput
	step   int
	focus  int
	errs   map[string]string
	result wizard.Answers

	done      bool
	cancelled bool

	width    int
	renderer *glamour.TermRenderer
	styles   Styles
}

// WizardModelAccessor exposes the outcome of the wizard once it exits.
type WizardModelAccessor interface {
	Answers() wizard.Answers
	Done() bool
}

// NewWizardModel constructs a wizard for cfg. Initial values come from the
// configured defaults overlaid with prefill, which may be nil.
func NewWizardModel(cfg *registry.ProcedureConfig, prefill wizard.Answers) wizardModel {
	values := wizard.Defaults(cfg)
	for k, v := range prefill {
		values[k] = v
	}
	steps := make([][]fieldInput, len(cfg.Steps))
	for i, s := range cfg.Steps {
		for _, f := range s.Fields {
			steps[i] = append(steps[i], newFieldInput(f, values[f.FieldKey]))
		}
	}
	m := wizardModel{
		cfg:      cfg,
		steps:    steps,
		errs:     make(map[string]string),
		width:    80,
		renderer: newRenderer(80),
		styles:   DefaultStyles(),
	}
	m.focusField(0)
	return m
}

func newFieldInput(f registry.FieldDefinition, v any) fieldInput {
	fi := fieldInput{def: f, opt: -1}
	switch f.FieldType {
	case registry.FieldBoolean:
		fi.on, _ = v.(bool)
	case registry.FieldSelect:
		if s, ok := v.(string); ok {
			for i, o := range f.Config.Options {
				if o.Value == s {
					fi.opt = i
				}
			}
		}
		if fi.opt < 0 && f.Required && len(f.Config.Options) > 0 {
			fi.opt = 0
		}
	default:
		ti := textinput.New()
		ti.Placeholder = f.Config.Placeholder
		if f.Config.MaxLength != nil {
			ti.CharLimit = *f.Config.MaxLength
		}
		if v != nil {
			ti.SetValue(wizard.InputValue(f, v))
		}
		fi.input = ti
	}
	return fi
}

// Init returns the cursor blink command of the focused input.
func (m wizardModel) Init() tea.Cmd { return textinput.Blink }

// Update processes key presses for the focused field and step navigation.
func (m wizardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.renderer = newRenderer(m.width)
		return m, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.cancelled = true
			return m, tea.Quit
		case "tab", "down":
			if n := len(m.current()); n > 0 {
				m.focusField((m.focus + 1) % n)
			}
			return m, nil
		case "shift+tab", "up":
			if n := len(m.current()); n > 0 {
				m.focusField((m.focus - 1 + n) % n)
			}
			return m, nil
		case "ctrl+b":
			if m.step > 0 {
				m.step--
				m.focusField(0)
			}
			return m, nil
		case "enter":
			if m.focus < len(m.current())-1 {
				m.focusField(m.focus + 1)
				return m, nil
			}
			return m.submitStep()
		case "left", "right", " ":
			if len(m.current()) == 0 {
				return m, nil
			}
			fi := &m.current()[m.focus]
			switch fi.def.FieldType {
			case registry.FieldBoolean:
				fi.on = !fi.on
				return m, nil
			case registry.FieldSelect:
				if msg.String() != " " {
					fi.opt = cycleOption(fi.opt, len(fi.def.Config.Options), !fi.def.Required, msg.String() == "right")
				}
				return m, nil
			}
		}
	}
	fields := m.current()
	if len(fields) == 0 || !fields[m.focus].textual() {
		return m, nil
	}
	var cmd tea.Cmd
	fields[m.focus].input, cmd = fields[m.focus].input.Update(msg)
	return m, cmd
}

// cycleOption moves through n options. When empty is allowed, index -1
// (no selection) is part of the cycle.
func cycleOption(cur, n int, empty, forward bool) int {
	if n == 0 {
		return -1
	}
	lo := 0
	if empty {
		lo = -1
	}
	span := n - lo
	pos := cur - lo
	if forward {
		pos = (pos + 1) % span
	} else {
		pos = (pos - 1 + span) % span
	}
	return pos + lo
}

func (m *wizardModel) current() []fieldInput {
	if m.step >= len(m.steps) {
		return nil
	}
	return m.steps[m.step]
}

func (m *wizardModel) focusField(i int) {
	fields := m.current()
	for j := range fields {
		if fields[j].textual() {
			fields[j].input.Blur()
		}
	}
	if i < 0 || i >= len(fields) {
		m.focus = 0
		return
	}
	m.focus = i
	if fields[i].textual() {
		fields[i].input.Focus()
	}
}

// collect converts the inputs of one step into answers. Conversion errors
// are returned by field key.
func (m *wizardModel) collect(step int) (wizard.Answers, map[string]string) {
	out := wizard.Answers{}
	errs := map[string]string{}
	for _, fi := range m.steps[step] {
		key := fi.def.FieldKey
		switch fi.def.FieldType {
		case registry.FieldBoolean:
			out[key] = fi.on
		case registry.FieldSelect:
			if fi.opt >= 0 {
				out[key] = fi.def.Config.Options[fi.opt].Value
			}
		default:
			v, err := wizard.Coerce(fi.def, fi.input.Value())
			if err != nil {
				errs[key] = errMessage(err)
				continue
			}
			if v != nil {
				out[key] = v
			}
		}
	}
	return out, errs
}

func errMessage(err error) string {
	var fe *wizard.FieldError
	if errors.As(err, &fe) {
		return fe.Message
	}
	return err.Error()
}

// submitStep checks the current step and advances when it is complete.
func (m wizardModel) submitStep() (tea.Model, tea.Cmd) {
	answers, errs := m.collect(m.step)
	for _, fe := range wizard.CheckStep(m.cfg.Steps[m.step], answers) {
		if _, seen := errs[fe.FieldKey]; !seen {
			errs[fe.FieldKey] = fe.Message
		}
	}
	m.errs = errs
	if len(errs) > 0 {
		for i, fi := range m.current() {
			if _, bad := errs[fi.def.FieldKey]; bad {
				m.focusField(i)
				break
			}
		}
		return m, nil
	}
	if m.step < len(m.steps)-1 {
		m.step++
		m.focusField(0)
		return m, nil
	}
	result := wizard.Answers{}
	for i := range m.steps {
		a, _ := m.collect(i)
		for k, v := range a {
			result[k] = v
		}
	}
	m.result = result
	m.done = true
	return m, tea.Quit
}

// Answers returns the collected answers after the wizard completed.
func (m wizardModel) Answers() wizard.Answers { return m.result }

// Done reports whether every step was completed.
func (m wizardModel) Done() bool { return m.done }

// hintMarkdown builds the Markdown help text for a field.
func hintMarkdown(cfg *registry.ProcedureConfig, f registry.FieldDefinition) string {
	var b strings.Builder
	if h := cfg.FieldHint(f.FieldKey); h != nil {
		fmt.Fprintf(&b, "**%s**\n\n%s\n", h.Title, h.Summary)
		if h.Explanation != "" {
			fmt.Fprintf(&b, "\n%s\n", h.Explanation)
		}
	} else if f.Config.Description != "" {
		fmt.Fprintf(&b, "%s\n", f.Config.Description)
	}
	if mp := cfg.FieldMapping(f.FieldKey); mp != nil {
		fmt.Fprintf(&b, "\n_Formular:_ %s, %s\n", mp.TargetForm, mp.TargetField)
	}
	return b.String()
}

func newRenderer(width int) *glamour.TermRenderer {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(max(width-8, 20)),
	)
	if err != nil {
		return nil
	}
	return r
}

func (m wizardModel) renderHint(md string) string {
	if md == "" || m.renderer == nil {
		return md
	}
	out, err := m.renderer.Render(md)
	if err != nil {
		return md
	}
	return strings.TrimSpace(out)
}

// View renders the current step.
func (m wizardModel) View() string {
	if m.step >= len(m.steps) {
		return ""
	}
	s := m.cfg.Steps[m.step]
	var b strings.Builder
	b.WriteString(m.styles.Title.Render(fmt.Sprintf("%s (%s %s)", m.cfg.Meta.Name, m.cfg.Meta.Code, m.cfg.Meta.Version)))
	b.WriteString("\n")
	b.WriteString(m.styles.Subtitle.Render(fmt.Sprintf("Schritt %d von %d: %s", m.step+1, len(m.steps), s.Title)))
	b.WriteString("\n")
	if s.Description != "" {
		b.WriteString(m.styles.Help.Render(s.Description) + "\n")
	}
	b.WriteString("\n")

	for i, fi := range m.steps[m.step] {
		label := fi.def.DisplayLabel()
		if fi.def.Required {
			label += m.styles.Required.Render(" *")
		}
		if i == m.focus {
			b.WriteString(m.styles.Focused.Render(label))
		} else {
			b.WriteString(m.styles.Label.Render(label))
		}
		switch fi.def.FieldType {
		case registry.FieldBoolean:
			if fi.on {
				b.WriteString("[x] Ja")
			} else {
				b.WriteString("[ ] Nein")
			}
		case registry.FieldSelect:
			choice := "–"
			if fi.opt >= 0 {
				choice = fi.def.Config.Options[fi.opt].Label
			}
			b.WriteString("‹ " + choice + " ›")
		default:
			b.WriteString(fi.input.View())
		}
		b.WriteString("\n")
		if msg, bad := m.errs[fi.def.FieldKey]; bad {
			b.WriteString(m.styles.Error.Render("  ↳ "+msg) + "\n")
		}
	}

	if len(m.steps[m.step]) > 0 {
		if hint := m.renderHint(hintMarkdown(m.cfg, m.steps[m.step][m.focus].def)); hint != "" {
			b.WriteString("\n" + m.styles.Hint.Render(hint) + "\n")
		}
	}
	b.WriteString("\n" + m.styles.Help.Render("TAB/↑/↓ Feld wechseln • ←/→ Auswahl • Leertaste Ja/Nein • ENTER weiter • Ctrl+B zurück • ESC abbrechen"))
	return b.String()
}

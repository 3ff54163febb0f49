package ui

import (
	"fmt"
	"strings"

	"github.com/BlackOrder/zollpilot/internal/registry"
	"github.com/BlackOrder/zollpilot/internal/wizard"

	tea "github.com/charmbracelet/bubbletea"
)

// summaryModel shows where each answer goes on the paper form.
type summaryModel struct {
	meta      registry.ProcedureMeta
	groups    []wizard.FormGroup
	confirmed bool
	styles    Styles
}

// NewSummaryModel builds the fill preview for answers of cfg.
func NewSummaryModel(cfg *registry.ProcedureConfig, answers wizard.Answers) summaryModel {
	return summaryModel{
		meta:   cfg.Meta,
		groups: wizard.GroupByForm(wizard.FillForm(cfg, answers)),
		styles: DefaultStyles(),
	}
}

// Init initializes the model.
func (m summaryModel) Init() tea.Cmd { return nil }

// Update quits on Enter (confirmed) or Esc.
func (m summaryModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "enter":
			m.confirmed = true
			return m, tea.Quit
		case "ctrl+c", "esc", "q":
			return m, tea.Quit
		}
	}
	return m, nil
}

// View renders the preview grouped by form.
func (m summaryModel) View() string {
	var b strings.Builder
	b.WriteString(m.styles.Title.Render("Ausfüllhilfe: " + m.meta.Name))
	b.WriteString("\n")
	if len(m.groups) == 0 {
		b.WriteString(m.styles.Help.Render("Keine Angaben für das Formular.") + "\n")
	}
	for _, g := range m.groups {
		b.WriteString(m.styles.Form.Render(g.Form) + "\n")
		for _, e := range g.Entries {
			fmt.Fprintf(&b, "  %s %s\n", m.styles.Label.Render(e.TargetField), m.styles.Value.Render(e.Value))
			if e.Hint != "" {
				b.WriteString("  " + m.styles.Help.Render(e.Hint) + "\n")
			}
		}
	}
	b.WriteString("\n" + m.styles.Help.Render("ENTER übernehmen • ESC verwerfen"))
	return b.String()
}

// Confirmed reports whether the user accepted the preview.
func (m summaryModel) Confirmed() bool { return m.confirmed }

// FinalOutput returns the plain-text preview once the user confirmed it.
func (m summaryModel) FinalOutput() string {
	if !m.confirmed {
		return ""
	}
	return PlainSummary(m.meta, m.groups)
}

// PlainSummary renders the fill preview without styling, for printing to a
// terminal or a file.
func PlainSummary(meta registry.ProcedureMeta, groups []wizard.FormGroup) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s (%s %s)\n", meta.Name, meta.Code, meta.Version)
	for _, g := range groups {
		fmt.Fprintf(&b, "\n%s\n", g.Form)
		for _, e := range g.Entries {
			fmt.Fprintf(&b, "  %s: %s\n", e.TargetField, e.Value)
		}
	}
	return b.String()
}

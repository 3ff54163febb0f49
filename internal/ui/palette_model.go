package ui

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/BlackOrder/zollpilot/internal/config"
	"github.com/BlackOrder/zollpilot/internal/registry"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// paletteItem wraps a procedure variant to implement the list.Item
// interface. Code, name and description are used for filtering.
type paletteItem struct {
	meta registry.ProcedureMeta
}

func (p paletteItem) FilterValue() string {
	return strings.Join([]string{p.meta.Code, p.meta.Name, p.meta.ShortDescription}, " ")
}

// paletteModel presents the active procedure variants and lets the user
// choose which one to prepare. When an item is selected with Enter, the
// model records the chosen variant and exits.
type paletteModel struct {
	list     list.Model
	selected *registry.ProcedureMeta
	styles   Styles
}

// PaletteModelAccessor exposes the chosen variant once the palette exits.
type PaletteModelAccessor interface {
	GetSelected() *registry.ProcedureMeta
}

// GetSelected returns the chosen variant, or nil when the user cancelled.
func (m paletteModel) GetSelected() *registry.ProcedureMeta {
	return m.selected
}

// SortProcedures orders variants by their German names. Variants the user
// worked with before (per cfg) come first.
func SortProcedures(metas []registry.ProcedureMeta, cfg *config.Config) []registry.ProcedureMeta {
	out := append([]registry.ProcedureMeta(nil), metas...)
	col := collate.New(language.German)
	preferred := func(m registry.ProcedureMeta) bool {
		if cfg == nil {
			return false
		}
		v, ok := cfg.PreferredVersion(m.Code)
		return ok && v == m.Version
	}
	sort.SliceStable(out, func(i, j int) bool {
		pi, pj := preferred(out[i]), preferred(out[j])
		if pi != pj {
			return pi
		}
		if c := col.CompareString(out[i].Name, out[j].Name); c != 0 {
			return c < 0
		}
		return out[i].Version > out[j].Version
	})
	return out
}

// NewPaletteModel constructs a paletteModel listing the given variants.
// Filtering is enabled to allow searching by code and name.
func NewPaletteModel(metas []registry.ProcedureMeta, cfg *config.Config) paletteModel {
	var items []list.Item
	for _, m := range SortProcedures(metas, cfg) {
		items = append(items, paletteItem{meta: m})
	}
	l := list.New(items, paletteDelegate{}, 0, 0)
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)
	l.Title = "Verfahren wählen"
	return paletteModel{
		list:   l,
		styles: DefaultStyles(),
	}
}

// Init returns nil; no asynchronous initialization is required.
func (m paletteModel) Init() tea.Cmd { return nil }

// Update handles navigation and selection. While the user types a filter,
// keys go to the list.
func (m paletteModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.list.SetSize(msg.Width, msg.Height-4)
		return m, nil
	case tea.KeyMsg:
		if m.list.FilterState() == list.Filtering {
			break
		}
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "esc":
			// With a filter applied, Esc clears the filter first.
			if m.list.FilterState() == list.Unfiltered {
				return m, tea.Quit
			}
		case "enter":
			if item, ok := m.list.SelectedItem().(paletteItem); ok {
				meta := item.meta
				m.selected = &meta
			}
			return m, tea.Quit
		}
	}
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// View renders the palette list along with basic instructions.
func (m paletteModel) View() string {
	s := m.styles.Title.Render("ZollPilot") + "\n"
	s += m.styles.Help.Render("↑/↓ oder Tippen zum Filtern • Enter wählen • Esc beenden") + "\n\n"
	return s + m.list.View()
}

// paletteDelegate renders one variant per line and marks the cursor.
type paletteDelegate struct{}

func (d paletteDelegate) Height() int                             { return 1 }
func (d paletteDelegate) Spacing() int                            { return 0 }
func (d paletteDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }
func (d paletteDelegate) Render(w io.Writer, m list.Model, idx int, listItem list.Item) {
	prefix := "  "
	if idx == m.Index() {
		prefix = "> "
	}
	if item, ok := listItem.(paletteItem); ok {
		fmt.Fprintf(w, "%s%s %s – %s\n", prefix, item.meta.Code, item.meta.Version, item.meta.Name)
	} else {
		fmt.Fprintf(w, "%s%v\n", prefix, listItem)
	}
}

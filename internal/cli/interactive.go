package cli

import (
	"errors"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/BlackOrder/zollpilot/internal/detect"
	"github.com/BlackOrder/zollpilot/internal/ui"
)

// errNoTerminal is returned when the wizard is started without a terminal.
var errNoTerminal = errors.New("the interactive wizard needs a terminal; use \"zollpilot fill\" instead")

// runInteractive chains the palette, the wizard and the fill preview. The
// confirmed preview is printed after the alternate screen is left.
func (a *app) runInteractive(cmd *cobra.Command) error {
	if !detect.Interactive(os.Stdin) || !detect.Interactive(os.Stdout) {
		return errNoTerminal
	}

	pm, err := tea.NewProgram(ui.NewPaletteModel(a.reg.AllProcedures(), a.cfg), tea.WithAltScreen()).Run()
	if err != nil {
		return err
	}
	meta := pm.(ui.PaletteModelAccessor).GetSelected()
	if meta == nil {
		return nil
	}
	c, err := a.resolve(meta.Code, meta.Version)
	if err != nil {
		return err
	}
	a.logger.Debug("procedure selected", zap.Stringer("procedure", c.Key()))

	wm, err := tea.NewProgram(ui.NewWizardModel(c, nil), tea.WithAltScreen()).Run()
	if err != nil {
		return err
	}
	w := wm.(ui.WizardModelAccessor)
	if !w.Done() {
		a.logger.Debug("wizard cancelled", zap.Stringer("procedure", c.Key()))
		return nil
	}
	a.remember(c)

	sm, err := tea.NewProgram(ui.NewSummaryModel(c, w.Answers()), tea.WithAltScreen()).Run()
	if err != nil {
		return err
	}
	if out, ok := sm.(interface{ FinalOutput() string }); ok {
		if s := out.FinalOutput(); s != "" {
			fmt.Fprint(cmd.OutOrStdout(), s)
		}
	}
	return nil
}

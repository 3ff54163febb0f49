package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/BlackOrder/zollpilot/internal/integration"
	"github.com/BlackOrder/zollpilot/internal/registry"
	"github.com/BlackOrder/zollpilot/internal/ui"
	"github.com/BlackOrder/zollpilot/internal/wizard"
)

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...)
}

func yesNo(b bool) string {
	if b {
		return "ja"
	}
	return "nein"
}

func (a *app) listCmd() *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the procedure variants of the catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			t := newTable("CODE", "VERSION", "NAME", "ZIELGRUPPE", "AKTIV")
			n := 0
			for _, k := range a.reg.Keys() {
				c := a.reg.ProcedureConfig(k.Code, k.Version)
				if !all && !c.Meta.IsActive {
					continue
				}
				t.Row(c.Meta.Code, c.Meta.Version, c.Meta.Name, string(c.Meta.TargetAudience), yesNo(c.Meta.IsActive))
				n++
			}
			if n == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no procedures available")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), t.String())
			return nil
		},
	}
	cmd.Flags().BoolVarP(&all, "all", "a", false, "include inactive variants")
	return cmd
}

func (a *app) showCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show CODE [VERSION]",
		Short: "Show the steps and fields of a procedure variant",
		Long: `Show the steps and fields of a procedure variant. Without VERSION the
version you used last is shown, or the latest active one.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			version := ""
			if len(args) == 2 {
				version = args[1]
			}
			c, err := a.resolve(args[0], version)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s (%s %s)\n", c.Meta.Name, c.Meta.Code, c.Meta.Version)
			if c.Meta.ShortDescription != "" {
				fmt.Fprintln(out, c.Meta.ShortDescription)
			}
			for i, s := range c.Steps {
				fmt.Fprintf(out, "\n%d. %s\n", i+1, s.Title)
				t := newTable("FELD", "TYP", "PFLICHT", "BEZEICHNUNG")
				for _, f := range s.Fields {
					t.Row(f.FieldKey, string(f.FieldType), yesNo(f.Required), f.DisplayLabel())
				}
				fmt.Fprintln(out, t.String())
			}
			return nil
		},
	}
}

func (a *app) mappingCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mapping CODE VERSION [FIELD]",
		Short: "Show where the fields of a variant go on the paper form",
		Args:  cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.resolve(args[0], args[1])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(args) == 3 {
				m := c.FieldMapping(args[2])
				if m == nil {
					return fmt.Errorf("field %s of %s has no mapping", args[2], c.Key())
				}
				fmt.Fprintf(out, "%s\n  %s, %s\n", m.Label, m.TargetForm, m.TargetField)
				if m.Hint != "" {
					fmt.Fprintf(out, "  %s\n", m.Hint)
				}
				return nil
			}
			t := newTable("FELD", "BEZEICHNUNG", "FORMULAR", "FORMULARFELD")
			for _, m := range c.Mapping.Mappings {
				t.Row(m.FieldKey, m.Label, m.TargetForm, m.TargetField)
			}
			fmt.Fprintln(out, t.String())
			return nil
		},
	}
}

func (a *app) hintCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hint CODE VERSION FIELD",
		Short: "Show the help text of a field",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.resolve(args[0], args[1])
			if err != nil {
				return err
			}
			h := c.FieldHint(args[2])
			if h == nil {
				return fmt.Errorf("field %s of %s has no hint", args[2], c.Key())
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s\n\n%s\n", h.Title, h.Summary)
			if h.Explanation != "" {
				fmt.Fprintf(out, "\n%s\n", h.Explanation)
			}
			return nil
		},
	}
}

func (a *app) fillCmd() *cobra.Command {
	var answersPath, outPath string
	cmd := &cobra.Command{
		Use:   "fill CODE VERSION --answers FILE",
		Short: "Check an answers file and show where each answer goes on the paper form",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.resolve(args[0], args[1])
			if err != nil {
				return err
			}
			raw, err := wizard.LoadAnswers(answersPath)
			if err != nil {
				return err
			}
			answers, err := wizard.Normalize(c, raw)
			if err != nil {
				return fmt.Errorf("answers for %s: %w", c.Key(), err)
			}
			if err := wizard.Check(c, answers); err != nil {
				return fmt.Errorf("answers for %s are incomplete: %w", c.Key(), err)
			}
			a.logger.Debug("answers checked", zap.Stringer("procedure", c.Key()), zap.Int("answers", len(answers)))

			groups := wizard.GroupByForm(wizard.FillForm(c, answers))
			fmt.Fprint(cmd.OutOrStdout(), ui.PlainSummary(c.Meta, groups))
			if outPath != "" {
				if err := writeAnswersFile(outPath, answers); err != nil {
					return err
				}
			}
			a.remember(c)
			return nil
		},
	}
	cmd.Flags().StringVarP(&answersPath, "answers", "f", "", "YAML file with the answers by field key")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "write the normalized answers to this file")
	_ = cmd.MarkFlagRequired("answers")
	return cmd
}

func writeAnswersFile(path string, answers wizard.Answers) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := wizard.WriteAnswers(f, answers); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func (a *app) validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check a catalog directory for consistency and changed published variants",
		Long: `Check every procedure document of the catalog against the schema and
the consistency rules, and make sure no published variant was edited or
removed. Without --catalog the built-in catalog is checked.`,
		Args:        cobra.NoArgs,
		Annotations: map[string]string{skipCatalog: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			var fsys fs.FS
			if a.catalogDir == "" {
				fsys = registry.Catalog()
			} else {
				fsys = os.DirFS(a.catalogDir)
			}
			out := cmd.OutOrStdout()

			var issues registry.IssueList
			reg, err := registry.LoadDir(fsys, ".")
			var found registry.IssueList
			switch {
			case errors.As(err, &found):
				issues = append(issues, found...)
			case err != nil:
				return err
			default:
				issues = append(issues, reg.Issues()...)
			}
			issues = append(issues, registry.VerifyPublished(fsys, ".")...)

			for _, is := range issues {
				fmt.Fprintln(out, is.String())
			}
			errs := issues.Errors()
			if reg != nil {
				fmt.Fprintf(out, "%d variants, %d errors, %d warnings\n", len(reg.Keys()), len(errs), len(issues.Warnings()))
			} else {
				fmt.Fprintf(out, "%d errors, %d warnings\n", len(errs), len(issues.Warnings()))
			}
			if len(errs) > 0 {
				return fmt.Errorf("catalog has %s", plural(len(errs), "error"))
			}
			return nil
		},
	}
}

func plural(n int, word string) string {
	s := strconv.Itoa(n) + " " + word
	if n != 1 {
		s += "s"
	}
	return s
}

func (a *app) integrationCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "integration [install|remove]",
		Short:     "Install or remove shell completion in your shell's rc file",
		Long:      "Without an argument the shell integration is toggled.",
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"install", "remove"},
		Annotations: map[string]string{
			skipCatalog: "true",
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			var install *bool
			if len(args) == 1 {
				v := args[0] == "install"
				install = &v
			}
			msg, err := integration.ToggleShellIntegration(install)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), msg)
			return nil
		},
	}
}

// Package cli wires the zollpilot command tree.
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/BlackOrder/zollpilot/internal/config"
	"github.com/BlackOrder/zollpilot/internal/logging"
	"github.com/BlackOrder/zollpilot/internal/registry"
)

// ErrNotAvailable is returned when a procedure variant is not in the catalog.
var ErrNotAvailable = errors.New("not available")

// skipCatalog marks commands that load the catalog themselves.
const skipCatalog = "skip-catalog"

// app carries the state shared by all commands of one invocation.
type app struct {
	verbose    bool
	catalogDir string

	logger *zap.Logger
	cfg    *config.Config
	reg    *registry.Registry
}

type option func(*app)

// withLogger replaces the logger normally built from the --verbose flag.
func withLogger(l *zap.Logger) option {
	return func(a *app) { a.logger = l }
}

// NewRootCommand returns the zollpilot command tree.
func NewRootCommand() *cobra.Command {
	return newRootCommand()
}

func newRootCommand(opts ...option) *cobra.Command {
	a := &app{}
	for _, o := range opts {
		o(a)
	}
	root := &cobra.Command{
		Use:   "zollpilot",
		Short: "Prepare German customs declarations (IZA, IPK, IAA)",
		Long: `zollpilot walks you through the data needed for a German customs
declaration and shows where each answer goes on the official paper form.
It prepares declarations; it never submits anything.

Run without arguments to start the interactive wizard.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runInteractive(cmd)
		},
	}
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logging")
	root.PersistentFlags().StringVar(&a.catalogDir, "catalog", "", "directory of procedure documents replacing the built-in catalog")

	root.AddCommand(
		a.listCmd(),
		a.showCmd(),
		a.mappingCmd(),
		a.hintCmd(),
		a.fillCmd(),
		a.validateCmd(),
		a.integrationCmd(),
	)
	return root
}

// setup builds the logger, reads the user config and loads the catalog.
func (a *app) setup(cmd *cobra.Command) error {
	if a.logger == nil {
		logger, err := logging.New(a.verbose)
		if err != nil {
			return err
		}
		a.logger = logger
	}
	cfg, err := config.Load()
	if err != nil {
		a.logger.Warn("ignoring unreadable config", zap.Error(err))
		cfg = &config.Config{Preferences: map[string]string{}}
	}
	a.cfg = cfg
	if a.catalogDir == "" {
		a.catalogDir = cfg.CatalogDir
	}
	if cmd.Annotations[skipCatalog] != "" {
		return nil
	}

	if a.catalogDir == "" {
		a.reg = registry.Default()
	} else {
		reg, err := registry.LoadDir(os.DirFS(a.catalogDir), ".")
		if err != nil {
			return fmt.Errorf("load catalog %s: %w", a.catalogDir, err)
		}
		a.reg = reg
	}
	a.logger.Debug("catalog loaded",
		zap.String("dir", a.catalogDir),
		zap.Int("variants", len(a.reg.Keys())),
		zap.Int("warnings", len(a.reg.Issues())))
	if a.verbose {
		logging.Issues(a.logger, a.reg.Issues())
	}
	return nil
}

// resolve finds the variant for code and an optional version. Without a
// version the user's preferred version is used, then the latest active one.
func (a *app) resolve(code, version string) (*registry.ProcedureConfig, error) {
	if version == "" {
		if v, ok := a.cfg.PreferredVersion(code); ok {
			if c := a.reg.ProcedureConfig(code, v); c != nil {
				return c, nil
			}
		}
		if c := a.reg.Latest(code); c != nil {
			return c, nil
		}
		return nil, fmt.Errorf("procedure %s is %w", code, ErrNotAvailable)
	}
	c := a.reg.ProcedureConfig(code, version)
	if c == nil {
		return nil, fmt.Errorf("procedure %s %s is %w", code, version, ErrNotAvailable)
	}
	return c, nil
}

// remember stores the variant as the user's preferred version.
func (a *app) remember(c *registry.ProcedureConfig) {
	a.cfg.SetPreference(c.Meta.Code, c.Meta.Version)
	if err := config.Save(a.cfg); err != nil {
		a.logger.Warn("could not save preferences", zap.Error(err))
	}
}

// Execute runs the command tree with the process arguments and returns the
// exit code.
func Execute() int {
	return run(NewRootCommand(), os.Stderr)
}

func run(cmd *cobra.Command, stderr io.Writer) int {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(stderr, "error:", err)
		return 1
	}
	return 0
}

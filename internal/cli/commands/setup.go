package commands

import (
	"io"
	"log/slog"
	"os"

	"github.com/leapstack-labs/buildcheck/internal/cli/config"
	"github.com/leapstack-labs/buildcheck/internal/cli/output"
	"github.com/leapstack-labs/buildcheck/internal/manifest"
	"github.com/spf13/cobra"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Renderer *output.Renderer
}

// NewCommandContext creates a CommandContext from the loaded configuration.
func NewCommandContext(cmd *cobra.Command) *CommandContext {
	cfg := getConfig()
	logger := newLogger(cfg.Verbose, cmd.ErrOrStderr())
	mode := output.Mode(cfg.Output)
	r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), mode)

	return &CommandContext{
		Cfg:      cfg,
		Logger:   logger,
		Renderer: r,
	}
}

// getConfig returns the current configuration.
// It uses config.GetCurrentConfig() if available, otherwise falls back to
// environment variables.
func getConfig() *config.Config {
	if cfg := config.GetCurrentConfig(); cfg != nil {
		return cfg
	}

	return &config.Config{
		Manifest:           getEnvOrDefault("BUILDCHECK_MANIFEST", config.DefaultManifest),
		CompiledSQL:        getEnvOrDefault("BUILDCHECK_COMPILED_SQL", config.DefaultCompiledSQL),
		Dialect:            getEnvOrDefault("BUILDCHECK_DIALECT", config.DefaultDialect),
		CheckTables:        os.Getenv("BUILDCHECK_CHECK_TABLES") == "true",
		CheckRequirements:  os.Getenv("BUILDCHECK_CHECK_REQUIREMENTS") == "true",
		RequirementsConfig: os.Getenv("BUILDCHECK_REQUIREMENTS_CONFIG"),
		RestrictToFiles:    os.Getenv("BUILDCHECK_RESTRICT_TO_FILES"),
		Verbose:            os.Getenv("BUILDCHECK_VERBOSE") == "true",
		Output:             getEnvOrDefault("BUILDCHECK_OUTPUT", config.DefaultOutput),
	}
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

// newLogger returns a debug-level text logger when verbose is on, otherwise
// a discard logger.
func newLogger(verbose bool, w io.Writer) *slog.Logger {
	if !verbose {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

// loadManifest loads the manifest and applies the optional file restriction.
func loadManifest(cfg *config.Config) (*manifest.Manifest, error) {
	m, err := manifest.Load(cfg.Manifest)
	if err != nil {
		return nil, err
	}

	if cfg.RestrictToFiles != "" {
		paths, err := manifest.ReadRestrictFile(cfg.RestrictToFiles)
		if err != nil {
			return nil, err
		}
		m.RestrictTo(paths)
	}

	return m, nil
}

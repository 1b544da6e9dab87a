// Package cli provides the command-line interface for buildcheck.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/leapstack-labs/buildcheck/internal/cli/commands"
	"github.com/leapstack-labs/buildcheck/internal/cli/config"
	"github.com/leapstack-labs/buildcheck/internal/cli/output"
	"github.com/leapstack-labs/buildcheck/pkg/sqlparse"
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	cfg     *config.Config
)

// Version information (set at build time).
var (
	Version   = "0.1.0"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

// configKey is used to store config in context.
type configKey struct{}

// rendererKey is used to store renderer in context.
type rendererKey struct{}

// NewRootCmd creates and returns the root command.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "buildcheck",
		Short: "buildcheck - Manifest and compiled SQL consistency checker",
		Long: `buildcheck validates a transformation project's build artifacts.

It parses each model's compiled SQL, reconciles the outermost projection
against the columns declared in the manifest, validates table references
against known models and sources, and optionally enforces governance
requirements on model metadata.`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// Skip config loading for help and completion commands
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" {
				return nil
			}

			var err error
			cfg, err = config.LoadConfig(cfgFile, cmd.Root().PersistentFlags())
			if err != nil {
				return err
			}

			// Store config in context
			ctx := context.WithValue(cmd.Context(), configKey{}, cfg)

			// Create and store renderer based on output mode
			mode := output.Mode(cfg.Output)
			renderer := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), mode)
			ctx = context.WithValue(ctx, rendererKey{}, renderer)
			cmd.SetContext(ctx)

			// Print config file used (if verbose)
			if cfg.Verbose {
				if configFile := config.GetConfigFileUsed(); configFile != "" {
					fmt.Fprintf(os.Stderr, "Using config file: %s\n", configFile)
				}
			}

			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global persistent flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./buildcheck.yaml)")
	rootCmd.PersistentFlags().StringP("manifest", "m", "", "Path to the manifest JSON file")
	rootCmd.PersistentFlags().StringP("compiled-sql", "c", "", "Root directory of compiled SQL files")
	rootCmd.PersistentFlags().StringP("dialect", "d", "", "SQL dialect of the compiled files")
	rootCmd.PersistentFlags().Bool("check-tables", false, "Validate table references against the manifest")
	rootCmd.PersistentFlags().Bool("check-requirements", false, "Enforce governance requirements on model metadata")
	rootCmd.PersistentFlags().String("requirements-config", "", "Path to the requirements YAML (with --check-requirements)")
	rootCmd.PersistentFlags().String("restrict-to-files", "", "File listing model paths to restrict the check to")
	rootCmd.PersistentFlags().StringArray("database-substitution", nil, "Database substitution as original=substitute (repeatable)")
	rootCmd.PersistentFlags().StringArray("schema-substitution", nil, "Schema substitution as original=substitute (repeatable)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().StringP("output", "o", "", "Output format (auto|text|json)")

	// Register completion for output flag
	_ = rootCmd.RegisterFlagCompletionFunc("output", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"auto", "text", "json"}, cobra.ShellCompDirectiveNoFileComp
	})

	// Register completion for dialect flag
	_ = rootCmd.RegisterFlagCompletionFunc("dialect", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return sqlparse.DialectNames(), cobra.ShellCompDirectiveNoFileComp
	})

	// Add subcommands
	rootCmd.AddCommand(commands.NewVersionCommand(Version))
	rootCmd.AddCommand(commands.NewCheckCommand())
	rootCmd.AddCommand(commands.NewListCommand())
	rootCmd.AddCommand(NewCompletionCommand())

	return rootCmd
}

// Execute runs the root command.
func Execute() error {
	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}

// GetConfig retrieves the config from the command context.
func GetConfig(ctx context.Context) *config.Config {
	if c, ok := ctx.Value(configKey{}).(*config.Config); ok {
		return c
	}
	// Return default config if none in context
	return &config.Config{
		Manifest:    config.DefaultManifest,
		CompiledSQL: config.DefaultCompiledSQL,
		Dialect:     config.DefaultDialect,
		Output:      config.DefaultOutput,
	}
}

// GetRenderer retrieves the renderer from the command context.
func GetRenderer(ctx context.Context) *output.Renderer {
	if r, ok := ctx.Value(rendererKey{}).(*output.Renderer); ok {
		return r
	}
	// Return default renderer if none in context
	return output.NewRenderer(os.Stdout, os.Stderr, output.ModeAuto)
}

// NewCompletionCommand creates the completion command.
func NewCompletionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for buildcheck.

To load completions:

Bash:
  $ source <(buildcheck completion bash)

Zsh:
  $ buildcheck completion zsh > "${fpath[1]}/_buildcheck"

Fish:
  $ buildcheck completion fish | source

PowerShell:
  PS> buildcheck completion powershell | Out-String | Invoke-Expression
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(os.Stdout)
			case "zsh":
				return cmd.Root().GenZshCompletion(os.Stdout)
			case "fish":
				return cmd.Root().GenFishCompletion(os.Stdout, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(os.Stdout)
			}
			return nil
		},
	}
	return cmd
}

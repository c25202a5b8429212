package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Aman-CERP/fastfind/configs"
	"github.com/Aman-CERP/fastfind/internal/config"
	fferrors "github.com/Aman-CERP/fastfind/internal/errors"
	"github.com/Aman-CERP/fastfind/internal/output"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration files",
		Long: `Manage fastfind configuration.

Configuration precedence (lowest to highest):
  1. Hardcoded defaults
  2. User config (~/.config/fastfind/config.yaml)
  3. Project config (.fastfind.yaml in the project root)
  4. Environment variables (FASTFIND_*)
  5. Command line flags`,
		Example: `  # Create .fastfind.yaml in the current project
  fastfind config init

  # Create the user config
  fastfind config init --user

  # Show the effective configuration
  fastfind config show`,
	}

	cmd.AddCommand(newConfigInitCmd())
	cmd.AddCommand(newConfigShowCmd())
	cmd.AddCommand(newConfigPathCmd())

	return cmd
}

func newConfigInitCmd() *cobra.Command {
	var user, force bool

	cmd := &cobra.Command{
		Use:   "init [dir]",
		Short: "Create a configuration file from the template",
		Long: `Create .fastfind.yaml in the project root containing dir (default: the
current directory), or the user configuration with --user.

An existing file is only replaced with --force; the old file is kept as a
timestamped .bak copy next to it.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigInit(cmd, rootArg(args), user, force)
		},
	}

	cmd.Flags().BoolVar(&user, "user", false, "Create the user configuration instead of the project one")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing configuration (a backup is kept)")

	return cmd
}

func newConfigShowCmd() *cobra.Command {
	var (
		jsonOutput bool
		source     string
	)

	cmd := &cobra.Command{
		Use:   "show [dir]",
		Short: "Show the effective configuration",
		Long: `Show the configuration a search in dir (default: the current directory)
would use, after merging defaults, user and project files and environment
variables. Command line flags are not included.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigShow(cmd, rootArg(args), jsonOutput, source)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	cmd.Flags().StringVar(&source, "source", "merged", "Config source: merged or defaults")

	return cmd
}

func newConfigPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path [dir]",
		Short: "Print configuration file paths",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := config.FindProjectRoot(rootArg(args))
			if err != nil {
				return err
			}
			project := config.ProjectConfigPath(root)
			if project == "" {
				project = filepath.Join(root, config.ProjectConfigYAML) + " (not present)"
			}
			user := config.GetUserConfigPath()
			if !config.UserConfigExists() {
				user += " (not present)"
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "user:    %s\nproject: %s\n", user, project)
			return nil
		},
	}
}

func runConfigInit(cmd *cobra.Command, dir string, user, force bool) error {
	out := output.New(cmd.OutOrStdout())

	path, template := "", configs.ProjectConfigTemplate
	if user {
		path, template = config.GetUserConfigPath(), configs.UserConfigTemplate
	} else {
		root, err := config.FindProjectRoot(dir)
		if err != nil {
			return err
		}
		path = config.ProjectConfigPath(root)
		if path == "" {
			path = filepath.Join(root, config.ProjectConfigYAML)
		}
	}

	if _, err := os.Stat(path); err == nil {
		if !force {
			return fferrors.New(fferrors.ErrCodeInvalidInput, fmt.Sprintf("configuration already exists: %s", path), nil).
				WithSuggestion("use --force to replace it, the current file is backed up first")
		}
		backup, err := config.BackupFile(path)
		if err != nil {
			return err
		}
		out.Warningf("Replacing existing configuration %s", path)
		out.Statusf("💾", "Backup: %s", backup)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(template), 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	out.Successf("Created %s", path)
	out.Status("", "Edit the file, then run 'fastfind config show' to verify")
	return nil
}

func runConfigShow(cmd *cobra.Command, dir string, jsonOutput bool, source string) error {
	var cfg *config.Config
	var sourceDesc string

	switch source {
	case "merged":
		root, err := config.FindProjectRoot(dir)
		if err != nil {
			return err
		}
		cfg, err = config.Load(root)
		if err != nil {
			return err
		}
		sourceDesc = "merged (defaults + user + project + env)"
	case "defaults":
		cfg = config.NewConfig()
		sourceDesc = "defaults (hardcoded)"
	default:
		return fferrors.New(fferrors.ErrCodeInvalidInput,
			fmt.Sprintf("invalid source: %s (use: merged, defaults)", source), nil)
	}

	if jsonOutput {
		data, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal config: %w", err)
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	out := output.New(cmd.OutOrStdout())
	out.Statusf("📋", "Configuration source: %s", sourceDesc)
	out.Code(string(data))
	return nil
}

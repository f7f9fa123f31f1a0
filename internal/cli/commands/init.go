package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/leapstack-labs/sqlstyle/internal/cli/config"
	"github.com/leapstack-labs/sqlstyle/internal/cli/output"
)

const configHeader = `# sqlstyle configuration
#
# style:  canonical layout used by the formatter and layout rules
# lint:   disable rules, override severities or set rule options, e.g.
#
#   lint:
#     disabled: [boolean-prefix]
#     severity:
#       final-select-star: error
#     rules:
#       long-in-list:
#         max_items: 20
#
# Run 'sqlstyle rules' to list the available rules.

`

// NewInitCommand creates the init command.
func NewInitCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Create a default .sqlstyle.yaml",
		Long: `Write a .sqlstyle.yaml with the default style settings.

The file is picked up by every sqlstyle command run in the directory or
any of its subdirectories.`,
		Example: `  # Initialize in current directory
  sqlstyle init

  # Initialize in another directory
  sqlstyle init warehouse

  # Force overwrite existing config
  sqlstyle init --force`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}
			r := NewCommandContext(cmd, "").Renderer
			return runInit(r, dir, force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite existing configuration")

	return cmd
}

func runInit(r *output.Renderer, dir string, force bool) error {
	if dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	configPath := filepath.Join(dir, config.DefaultConfigFile)
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("%s already exists. Use --force to overwrite", configPath)
	}

	content, err := defaultConfigYAML()
	if err != nil {
		return err
	}
	if err := os.WriteFile(configPath, content, 0600); err != nil {
		return fmt.Errorf("failed to write %s: %w", configPath, err)
	}

	r.Success(fmt.Sprintf("Created %s", configPath))
	r.Println("")
	r.Println("Next steps:")
	r.Println("  1. Adjust the style section to match your team's conventions")
	r.Println("  2. Run 'sqlstyle lint' to check your SQL files")
	r.Println("  3. Run 'sqlstyle format --write' to reformat them")

	return nil
}

func defaultConfigYAML() ([]byte, error) {
	body, err := yaml.Marshal(config.Default())
	if err != nil {
		return nil, fmt.Errorf("failed to encode default config: %w", err)
	}
	return append([]byte(configHeader), body...), nil
}

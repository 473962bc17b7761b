package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/meysamhadeli/odindoc/config"
	"github.com/meysamhadeli/odindoc/constants/lipgloss"
	"github.com/spf13/cobra"
)

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default odindoc-config.yml to the working directory",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		force, _ := cmd.Flags().GetBool("force")

		cwd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("failed to get current working directory: %w", err)
		}

		path := filepath.Join(cwd, config.DefaultConfigFile)
		if err := config.WriteDefaultConfig(path, force); err != nil {
			return err
		}

		fmt.Println(lipgloss.Green.Render(fmt.Sprintf("✓ Wrote %s", path)))
		return nil
	},
}

func init() {
	initCmd.Flags().BoolP("force", "f", false, "Overwrite an existing configuration file")

	rootCmd.AddCommand(initCmd)
}

package cmd

import (
	"bufio"
	"fmt"
	"os"

	"github.com/meysamhadeli/odindoc/constants/lipgloss"
	"github.com/meysamhadeli/odindoc/utils"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// resetCacheCmd represents the reset-cache command
var resetCacheCmd = &cobra.Command{
	Use:   "reset-cache",
	Short: "Reset the extraction cache of odindoc",
	Long: `The 'reset-cache' command removes every cached extraction result from the cache
directory ('.cache/odindoc' by default, or --cache_dir). Use it when cached pages look stale.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Parse flags
		force, _ := cmd.Flags().GetBool("force")
		stats, _ := cmd.Flags().GetBool("stats")

		return handleResetCacheCommand(force, stats)
	},
}

func init() {
	// Define command-specific flags
	resetCacheCmd.Flags().BoolP("force", "f", false, "Force cache reset without confirmation")
	resetCacheCmd.Flags().BoolP("stats", "s", false, "Show cache statistics instead of resetting")

	// Add the reset-cache command to the root command
	rootCmd.AddCommand(resetCacheCmd)
}

func handleResetCacheCommand(force bool, showStats bool) error {
	// Initialize the analyzer with cache enabled
	rootDependencies, err := handleRootCommand(".", true)
	if err != nil {
		return err
	}

	if !rootDependencies.Analyzer.CacheEnabled() {
		fmt.Println(lipgloss.Yellow.Render("Cache is unavailable. No cache to reset."))
		return nil
	}

	// Show cache statistics if requested
	if showStats {
		fmt.Println(lipgloss.Info.Render("Cache Statistics:"))
		cacheStats, err := rootDependencies.Analyzer.GetCacheStats()
		if err != nil {
			fmt.Println(lipgloss.Yellow.Render(fmt.Sprintf("Warning: Could not show statistics: %v", err)))
			return nil
		}

		if dir, ok := cacheStats["cache_dir"].(string); ok {
			fmt.Println(lipgloss.Gray.Render(fmt.Sprintf("  Cache Directory: %s", dir)))
		}
		if files, ok := cacheStats["cache_files"].(int); ok {
			fmt.Println(lipgloss.Gray.Render(fmt.Sprintf("  Cached Files: %d", files)))
		}
		if size, ok := cacheStats["total_size"].(int64); ok {
			fmt.Println(lipgloss.Gray.Render(fmt.Sprintf("  Total Size: %.2f KB", float64(size)/1024)))
		}

		// Only show stats, skip the actual reset
		return nil
	}

	// Confirm reset (if not forced)
	if !force {
		confirmed, err := utils.ConfirmPrompt("Are you sure you want to reset the extraction cache?", bufio.NewReader(os.Stdin), os.Stdout)
		if err != nil {
			return err
		}
		if !confirmed {
			fmt.Println(lipgloss.Yellow.Render("Cache reset cancelled."))
			return nil
		}
	}

	spinner := pterm.DefaultSpinner.WithStyle(pterm.NewStyle(pterm.FgCyan)).
		WithSequence("⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏").
		WithDelay(100).WithRemoveWhenDone(true)

	spinnerInstance, _ := spinner.Start("Resetting extraction cache...")

	err = rootDependencies.Analyzer.ClearCache()

	spinnerInstance.Stop()
	fmt.Print("\r")

	if err != nil {
		return fmt.Errorf("error resetting cache: %w", err)
	}

	fmt.Println(lipgloss.Green.Render("✓ Extraction cache has been successfully reset!"))
	return nil
}

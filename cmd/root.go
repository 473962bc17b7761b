package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/meysamhadeli/odindoc/config"
	"github.com/meysamhadeli/odindoc/constants/lipgloss"
	"github.com/meysamhadeli/odindoc/doc_analyzer"
	"github.com/meysamhadeli/odindoc/doc_analyzer/contracts"
	"github.com/meysamhadeli/odindoc/generator"
	"github.com/meysamhadeli/odindoc/renderer"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// RootDependencies holds what every command needs: the resolved config and
// an analyzer configured from it.
type RootDependencies struct {
	Config   *config.Config
	Cwd      string
	Analyzer contracts.IDocAnalyzer
}

var rootCmd = &cobra.Command{
	Use:   "odindoc [source_dir]",
	Short: "Generate a static HTML documentation site from Odin doc comments.",
	Long: `odindoc walks a source tree, collects the block comments placed directly before
procedure declarations and writes one HTML page per documented file, plus an index.
Every page carries a sidebar with the whole folder tree and a light/dark theme toggle.
Comments may use @param name description and @return description tags.`,
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
}

func runRoot(cmd *cobra.Command, args []string) error {
	if version, _ := cmd.Flags().GetBool("version"); version {
		fmt.Println(lipgloss.BlueSky.Render(fmt.Sprintf("odindoc version %s", config.DefaultConfig.Version)))
		return nil
	}

	sourceDir := "."
	if len(args) == 1 {
		sourceDir = args[0]
	}

	rootDependencies, err := handleRootCommand(sourceDir, false)
	if err != nil {
		return err
	}
	return handleGenerateCommand(rootDependencies, sourceDir)
}

// Execute runs the root command and exits non-zero on a fatal error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(lipgloss.Red.Render(fmt.Sprintf("%v", err)))
		os.Exit(1)
	}
}

func init() {
	rootCmd.RunE = runRoot
	config.InitFlags(rootCmd)
}

// handleRootCommand loads the configuration and builds the analyzer. The
// output directory is ignored when it lies inside sourceDir. forceCache turns
// the extraction cache on regardless of the configuration.
func handleRootCommand(sourceDir string, forceCache bool) (*RootDependencies, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get current working directory: %w", err)
	}

	cfg, err := config.LoadConfigs(rootCmd, cwd)
	if err != nil {
		return nil, err
	}

	ignore := append([]string{}, cfg.Ignore...)
	if entry, ok := generator.OutputIgnoreEntry(sourceDir, cfg.Output); ok {
		ignore = append(ignore, entry)
	}

	analyzer := doc_analyzer.NewDocAnalyzer(doc_analyzer.AnalyzerOptions{
		Extensions:  cfg.Extensions,
		IgnoreDirs:  ignore,
		EnableCache: cfg.EnableCache || forceCache,
		CacheDir:    cfg.CacheDir,
		Output:      os.Stdout,
	})

	return &RootDependencies{Config: cfg, Cwd: cwd, Analyzer: analyzer}, nil
}

func handleGenerateCommand(rootDependencies *RootDependencies, sourceDir string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg := rootDependencies.Config

	pageRenderer, err := renderer.NewRenderer(renderer.Options{
		Title:             cfg.Title,
		Highlight:         cfg.Highlight,
		LightStyle:        cfg.LightStyle,
		DarkStyle:         cfg.DarkStyle,
		DescriptionFormat: cfg.DescriptionFormat,
	})
	if err != nil {
		return err
	}

	docGenerator, err := generator.NewGenerator(rootDependencies.Analyzer, pageRenderer, generator.Options{
		OutputDir: cfg.Output,
		Layout:    cfg.Layout,
	})
	if err != nil {
		return err
	}

	spinner := pterm.DefaultSpinner.WithStyle(pterm.NewStyle(pterm.FgLightBlue)).WithSequence("⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏").WithDelay(100).WithRemoveWhenDone(true)
	spinnerGenerate, _ := spinner.Start(fmt.Sprintf("Generating documentation for %s...", sourceDir))

	result, err := docGenerator.Generate(ctx, sourceDir)

	spinnerGenerate.Stop()
	fmt.Print("\r")

	if err != nil {
		if ctx.Err() != nil {
			fmt.Println(lipgloss.Yellow.Render("🔄 Generation cancelled."))
		}
		return fmt.Errorf("failed to generate documentation: %w", err)
	}

	if len(result.Pages) == 0 {
		fmt.Println(lipgloss.Yellow.Render(fmt.Sprintf("No documented procedures found in %s", sourceDir)))
	}

	summary := fmt.Sprintf("Pages:   %d\nSkipped: %d\nIndex:   %s", len(result.Pages), len(result.Skipped), result.Index)
	if rootDependencies.Analyzer.CacheEnabled() {
		if cacheStats, err := rootDependencies.Analyzer.GetCacheStats(); err == nil {
			if hitRate, ok := cacheStats["hit_rate"].(float64); ok {
				summary += fmt.Sprintf("\nCache:   %.1f%% hits", hitRate)
			}
		}
	}
	fmt.Println(lipgloss.BoxStyle.Render(summary))
	fmt.Println(lipgloss.Green.Render(fmt.Sprintf("✔️ Documentation written to %s", cfg.Output)))

	return nil
}

package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/meysamhadeli/odindoc/constants/lipgloss"
	"github.com/meysamhadeli/odindoc/generator"
	"github.com/meysamhadeli/odindoc/server"
	"github.com/spf13/cobra"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Preview the generated documentation in a browser",
	Long: `The 'serve' command starts a local HTTP server for the output directory.
Run odindoc first to generate the pages.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, _ := cmd.Flags().GetString("addr")
		return handleServeCommand(addr)
	},
}

func init() {
	serveCmd.Flags().String("addr", "127.0.0.1:8080", "Address the preview server listens on")

	rootCmd.AddCommand(serveCmd)
}

func handleServeCommand(addr string) error {
	rootDependencies, err := handleRootCommand(".", false)
	if err != nil {
		return err
	}
	output := rootDependencies.Config.Output

	if _, err := os.Stat(filepath.Join(output, generator.IndexFileName)); err != nil {
		fmt.Println(lipgloss.Yellow.Render(fmt.Sprintf("No %s in %s yet, run odindoc to generate the site.", generator.IndexFileName, output)))
	}

	log := slog.New(slog.NewTextHandler(os.Stdout, nil))
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      server.NewServer(output, log),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Graceful shutdown.
	go func() {
		<-ctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)
	}()

	fmt.Println(lipgloss.BoxStyle.Render(fmt.Sprintf("Serving %s at http://%s", output, addr)))
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}

	fmt.Println(lipgloss.Yellow.Render("🔄 Server stopped."))
	return nil
}

package cli

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/roboco-io/pubrender/internal/server"
)

const shutdownTimeout = 10 * time.Second

var (
	serveAddr  string
	serveDebug bool
	serveQuiet bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the preview and export server",
	Long: `Serve live previews and exports over HTTP.

Routes:
  GET  /publications/{id}/preview
  GET  /publications/{id}/export.html
  GET  /publications/{id}/export.pdf
  POST /publications/{id}/validate
  PUT  /publications/{id}

The template, page and orientation query parameters override the
configured defaults.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default: server.address)")
	serveCmd.Flags().BoolVar(&serveDebug, "debug", false, "debug mode, no panic recovery")
	serveCmd.Flags().BoolVar(&serveQuiet, "quiet", false, "disable request logs")

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, true)
	if err != nil {
		return err
	}
	defer a.Close()

	prof, err := profile(a.cfg, "")
	if err != nil {
		return err
	}
	pdfOpts, err := pdfOptions(a.cfg.PDF, "", "")
	if err != nil {
		return err
	}
	addr := serveAddr
	if addr == "" {
		addr = a.cfg.Server.Address
	}

	srv := server.New(&server.Options{
		Address:        addr,
		DisableReqLogs: serveQuiet,
		Debug:          serveDebug,
		Store:          a.store,
		Logger:         a.log.Logger,
		Profile:        prof,
		PDF:            pdfOpts,
	})

	errc := make(chan error, 1)
	go func() { errc <- srv.Start() }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	a.log.Logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Stop(shutdownCtx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return <-errc
}

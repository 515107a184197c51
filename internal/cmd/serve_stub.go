package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/newsroomkit/newsroomkit/internal/config"
	"github.com/newsroomkit/newsroomkit/internal/devstub"
	"github.com/newsroomkit/newsroomkit/internal/observability"
)

var (
	stubHost   string
	stubPort   int
	stubSecret string
)

var serveStubCmd = &cobra.Command{
	Use:   "serve-stub",
	Short: "Run the local dev stub CMS backend",
	Long: `serve-stub runs a local HTTP server that answers the CMS API with
the built-in fallback dataset and mints short-lived credentials. Point
NEWSROOM_API_BASE_URL at it to develop without a real backend.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Get()
		observability.InitServerLogger("newsroomkit-stub", cfg.Logging.Level)

		server, err := devstub.New(stubHost, stubPort, stubSecret, observability.ServerLogger)
		if err != nil {
			return err
		}

		errCh := make(chan error, 1)
		go func() {
			if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
		}()

		stop := make(chan os.Signal, 1)
		signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

		select {
		case err := <-errCh:
			return err
		case <-stop:
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	},
}

func init() {
	serveStubCmd.Flags().StringVar(&stubHost, "host", "127.0.0.1", "listen host")
	serveStubCmd.Flags().IntVar(&stubPort, "port", 8080, "listen port")
	serveStubCmd.Flags().StringVar(&stubSecret, "secret", "dev-stub-secret", "token signing secret")
	rootCmd.AddCommand(serveStubCmd)
}

// Package cmd implements the newsroomkit CLI.
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/newsroomkit/newsroomkit/internal/apiclient"
	"github.com/newsroomkit/newsroomkit/internal/config"
	"github.com/newsroomkit/newsroomkit/internal/observability"
	"github.com/newsroomkit/newsroomkit/internal/services"
)

var (
	cfgFile string
	verbose bool

	// Version info set by main package
	versionInfo struct {
		Version   string
		Commit    string
		BuildDate string
	}
)

// SetVersionInfo is called by the main package to set version information.
func SetVersionInfo(version, commit, buildDate string) {
	versionInfo.Version = version
	versionInfo.Commit = commit
	versionInfo.BuildDate = buildDate
}

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "newsroomkit",
	Short: "Client toolkit for the Newsroom CMS API",
	Long: `newsroomkit talks to the Newsroom CMS API with the same retry,
credential-refresh and rate-limit behavior the site frontend uses.

Use the subcommands to browse content or run the local dev stub.`,
}

// Execute adds all child commands to the root command and sets flags
// appropriately. Called once from main.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (YAML)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

func initConfig() {
	if _, err := config.Load(cfgFile); err != nil {
		ExitConfigError("Failed to load configuration", err)
	}
	observability.InitCLILogger("newsroomkit", verbose)
}

// newClient builds the HTTP facade from the loaded configuration.
func newClient() *apiclient.Client {
	cfg := config.Get()

	var store apiclient.SessionStore
	if cfg.SessionFile != "" {
		fileStore, err := apiclient.NewFileSessionStore(cfg.SessionFile)
		if err != nil {
			ExitConfigError("Failed to open session file", err)
		}
		store = fileStore
	}

	return apiclient.New(apiclient.Options{
		BaseURL:          cfg.API.BaseURL,
		Timeout:          cfg.API.Timeout,
		MaxRetries:       cfg.API.MaxRetries,
		RetryBaseDelay:   cfg.API.RetryBaseDelay,
		RetryMaxDelay:    cfg.API.RetryMaxDelay,
		RateLimitWindow:  cfg.API.RateLimitWindow,
		RateLimitCeiling: cfg.API.RateLimitCeiling,
		RefreshThreshold: cfg.API.RefreshThreshold,
		Store:            store,
		Logger:           observability.CLILogger,
		OnSessionExpired: func() {
			observability.CLILogger.Warn("Session expired, log in again with `newsroomkit login`")
		},
	})
}

// newServices wires the feature services over a fresh facade.
func newServices() *services.Services {
	cfg := config.Get()
	return services.New(newClient(), services.Options{
		FallbackEnabled: cfg.Features.FallbackEnabled && cfg.IsDevelopment(),
		Logger:          observability.CLILogger,
	})
}

package main

import (
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/pders01/uriel/internal/api"
	"github.com/pders01/uriel/internal/catalog"
	"github.com/pders01/uriel/internal/config"
	"github.com/pders01/uriel/internal/debuglog"
	"github.com/pders01/uriel/internal/media"
	"github.com/pders01/uriel/internal/seed"
	"github.com/pders01/uriel/internal/tui"
)

var (
	configPath string
	apiURL     string
	logLevel   string
	quiet      bool
)

var rootCmd = &cobra.Command{
	Use:   "uriel",
	Short: "Browse a remote media catalog",
	Long: `uriel - terminal browser for a remote media catalog

Lists movies, series and anime from the catalog service, filters them
by tab and title, and records downloads.

Examples:
  uriel                          # Start the interactive browser
  uriel --api http://host:8000   # Use another catalog service
  uriel list --tab anime         # Print the anime tab
  uriel download 42              # Record one download of item 42
  uriel seed                     # Add sample titles to an empty catalog`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runBrowser,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to configuration file")
	rootCmd.PersistentFlags().StringVar(&apiURL, "api", "", "Catalog service URL (overrides config)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: off, error, warn, info, debug (overrides config)")
	rootCmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Skip startup banner")
}

// loadConfig reads the configuration and applies the command line overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if apiURL != "" {
		cfg.API.BaseURL = apiURL
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	return cfg, nil
}

// newStore wires the service client, the sample drafts and the store
// policies from cfg. onChange may be nil.
func newStore(cfg *config.Config, onChange func()) (*catalog.Store, error) {
	client, err := api.NewClient(cfg)
	if err != nil {
		return nil, err
	}

	drafts, err := seed.Load(cfg.Seed.File)
	if err != nil {
		return nil, fmt.Errorf("loading seed drafts: %w", err)
	}

	policy, err := catalog.ParseDownloadFailurePolicy(cfg.Catalog.DownloadFailurePolicy)
	if err != nil {
		return nil, err
	}
	ordering, err := catalog.ParseRefreshOrdering(cfg.Catalog.RefreshOrdering)
	if err != nil {
		return nil, err
	}

	opts := []catalog.Option{
		catalog.WithDownloadFailurePolicy(policy),
		catalog.WithRefreshOrdering(ordering),
		catalog.WithSeeder(catalog.NewSeeder(client, cfg.Seed.Concurrency), drafts),
	}
	if onChange != nil {
		opts = append(opts, catalog.WithChangeHook(onChange))
	}

	debuglog.WithFields(map[string]interface{}{
		"api":      client.BaseURL(),
		"policy":   cfg.Catalog.DownloadFailurePolicy,
		"ordering": cfg.Catalog.RefreshOrdering,
		"drafts":   len(drafts),
	}).Infof("catalog store ready")

	return catalog.NewStore(client, opts...), nil
}

// setupCLILogging sends log output of the non-interactive commands to w.
func setupCLILogging(cfg *config.Config, w io.Writer) {
	debuglog.SetupWriter(debuglog.ParseLogLevel(cfg.Log.Level), w)
}

func runBrowser(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if err := debuglog.Setup(debuglog.ParseLogLevel(cfg.Log.Level), cfg.Log.File); err != nil {
		return err
	}
	defer debuglog.Close()
	debuglog.Infof("%s %s starting (log level %s)", tui.AppName, Version, debuglog.GetLevel())

	if !quiet {
		tui.ShowBanner(Version)
	}

	notifier := tui.NewNotifier()
	store, err := newStore(cfg, notifier.Notify)
	if err != nil {
		return err
	}

	app := tui.NewApp(cfg, store, media.NewLauncher(cfg), notifier)
	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(cmd.Context()))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running browser: %w", err)
	}
	return nil
}

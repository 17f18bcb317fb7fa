package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/pders01/uriel/internal/catalog"
	"github.com/pders01/uriel/internal/config"
	"github.com/pders01/uriel/internal/tui"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Print the catalog",
	Long: `Fetches the catalog for the given tab and search text and prints it.

Examples:
  uriel list                    # Everything
  uriel list --tab series       # Only series
  uriel list --query "neon"     # Titles containing "neon"`,
	Args: cobra.NoArgs,
	RunE: runList,
}

var downloadCmd = &cobra.Command{
	Use:   "download <id>",
	Short: "Record one download of an item",
	Args:  cobra.ExactArgs(1),
	RunE:  runDownload,
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Add sample titles to an empty catalog",
	Long: `Creates the sample drafts (built in, or seed.file from the config) when
the catalog is empty. --force creates them regardless.`,
	Args: cobra.NoArgs,
	RunE: runSeed,
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the configuration file",
}

var configGenCmd = &cobra.Command{
	Use:   "generate",
	Short: "Write the default configuration",
	Run: func(cmd *cobra.Command, _ []string) {
		path := config.DefaultPath()
		if err := config.GenerateDefaultConfig(path); err != nil {
			fmt.Fprintf(errOut(cmd), "Failed to generate config: %v\n", err)
			return
		}
		fmt.Fprintf(out(cmd), "Generated default configuration at: %s\n", path)
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, _ []string) {
		w := out(cmd)
		fmt.Fprintf(w, "%s %s\n", tui.AppName, Version)
		fmt.Fprintln(w, "Media catalog browser")
		fmt.Fprintln(w, "github.com/pders01/uriel")
	},
}

var (
	listTab   string
	listQuery string
	seedForce bool
)

func init() {
	listCmd.Flags().StringVarP(&listTab, "tab", "t", "all", "Tab to list (all, movie, series, anime)")
	listCmd.Flags().StringVarP(&listQuery, "query", "Q", "", "Search text")
	seedCmd.Flags().BoolVar(&seedForce, "force", false, "Seed even when the catalog is not empty")

	configCmd.AddCommand(configGenCmd)
	rootCmd.AddCommand(listCmd, downloadCmd, seedCmd, configCmd, versionCmd)
}

// out and errOut tolerate a nil command so Run funcs can be called directly.
func out(cmd *cobra.Command) io.Writer {
	if cmd == nil {
		return os.Stdout
	}
	return cmd.OutOrStdout()
}

func errOut(cmd *cobra.Command) io.Writer {
	if cmd == nil {
		return os.Stderr
	}
	return cmd.ErrOrStderr()
}

func runList(cmd *cobra.Command, _ []string) error {
	tab, err := catalog.ParseTab(listTab)
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	setupCLILogging(cfg, cmd.ErrOrStderr())

	store, err := newStore(cfg, nil)
	if err != nil {
		return err
	}

	filter := catalog.FilterState{Tab: tab, SearchText: listQuery}
	store.SetFilter(filter)
	if err := store.Refresh(cmd.Context(), filter); err != nil {
		return err
	}

	items := store.View()
	if len(items) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), tui.MsgNoResults)
		return nil
	}
	fmt.Fprintln(cmd.OutOrStdout(), renderTable(items))
	return nil
}

func runDownload(cmd *cobra.Command, args []string) error {
	id := catalog.ItemID(args[0])

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	setupCLILogging(cfg, cmd.ErrOrStderr())

	store, err := newStore(cfg, nil)
	if err != nil {
		return err
	}

	// Fetch first so the confirmed counter can be read back from the store.
	if err := store.Refresh(cmd.Context(), catalog.FilterState{}); err != nil {
		return err
	}
	if err := store.ApplyDownload(cmd.Context(), id); err != nil {
		return err
	}

	for _, item := range store.Items() {
		if item.ID == id {
			fmt.Fprintln(cmd.OutOrStdout(), tui.MsgDownloaded(item.Title, item.Downloads))
			return nil
		}
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Download of %s recorded\n", id)
	return nil
}

func runSeed(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	setupCLILogging(cfg, cmd.ErrOrStderr())

	store, err := newStore(cfg, nil)
	if err != nil {
		return err
	}

	var report catalog.SeedReport
	if seedForce {
		report, err = store.Seed(cmd.Context())
	} else {
		// The emptiness gate looks at the held list, so fetch it first.
		if err := store.Refresh(cmd.Context(), store.Filter()); err != nil {
			return err
		}
		report, err = store.SeedIfEmpty(cmd.Context())
	}

	w := cmd.OutOrStdout()
	if report.Skipped {
		fmt.Fprintln(w, tui.MsgSeedSkipped)
		return err
	}
	fmt.Fprintln(w, tui.MsgSeedSummary(report))
	for _, e := range report.Errors {
		if e != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "  %v\n", e)
		}
	}
	if err != nil {
		return err
	}
	if report.Failed() > 0 {
		return errors.New("some drafts could not be created")
	}
	return nil
}

func renderTable(items []catalog.MediaItem) string {
	rows := make([][]string, 0, len(items))
	for _, m := range items {
		year := ""
		if m.Year != nil {
			year = strconv.Itoa(*m.Year)
		}
		rating := ""
		if m.Rating != nil {
			rating = strconv.FormatFloat(*m.Rating, 'f', 1, 64)
		}
		rows = append(rows, []string{
			m.ID.String(),
			m.Title,
			string(m.Kind),
			year,
			rating,
			strconv.Itoa(m.Downloads),
			strings.Join(m.Tags, ", "),
		})
	}

	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(tui.MutedColor)).
		Headers("ID", "TITLE", "KIND", "YEAR", "RATING", "DOWNLOADS", "TAGS").
		Rows(rows...).
		String()
}

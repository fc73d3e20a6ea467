/*
 * MIT License
 * Copyright (c) 2024-2025 Zuplu
 */

package overlay

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/Zuplu/sc-overlay/internal/status"
	"github.com/Zuplu/sc-overlay/internal/utils/log"
	"github.com/Zuplu/sc-overlay/internal/wiki"
	"github.com/charmbracelet/lipgloss"
	"github.com/neilotoole/jsoncolor"
	"github.com/spf13/cobra"
)

const DEFAULT_CONFIG_FILE = "config.yaml"

type imageView struct {
	wiki.Resolution
	Image *wiki.ImageData `json:"image,omitempty"`
}

var pillColors = map[status.State]lipgloss.Color{
	status.OK:       lipgloss.Color("#22c55e"),
	status.DEGRADED: lipgloss.Color("#eab308"),
	status.PARTIAL:  lipgloss.Color("#f97316"),
	status.MAJOR:    lipgloss.Color("#ef4444"),
	status.UNKNOWN:  lipgloss.Color("#6b7280"),
}

func statusPill(c status.Classification) string {
	color, ok := pillColors[c.State]
	if !ok {
		color = pillColors[status.UNKNOWN]
	}
	return lipgloss.NewStyle().
		Background(color).
		Foreground(lipgloss.Color("#0b0f14")).
		Bold(true).
		Padding(0, 1).
		Render(c.Label)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	o, err := f.Stat()
	return err == nil && o.Mode()&os.ModeCharDevice != 0
}

func printJSON(w io.Writer, result any) error {
	if isTerminal(w) {
		enc := jsoncolor.NewEncoder(w)
		enc.SetIndent("", "  ")
		enc.SetColors(jsoncolor.DefaultColors())
		return enc.Encode(result)
	}
	return json.NewEncoder(w).Encode(result)
}

func printVersion(w io.Writer, version string) {
	curYear, _, _ := time.Now().Date()
	fmt.Fprintf(w, "sc-overlay (c) 2025-%d Zuplu, %s\nThis program is licensed under the MIT License.\n", curYear, version)
}

// newRootCommand wires the subcommands. lookup is injectable for tests.
func newRootCommand(version, licenseText string, lookup func(string) (string, bool)) *cobra.Command {
	var cfgFile string
	var services *Services
	var config Config

	// setup resolves config and builds the services for every command but version.
	setup := func(cmd *cobra.Command, _ []string) error {
		var err error
		config, err = resolveConfig(cfgFile, lookup)
		if err != nil {
			return fmt.Errorf("loading config %q: %w", cfgFile, err)
		}
		log.SetLevel(config.Server.LogLevel)
		services = NewServices(cmd.Context(), config, nil, version)
		return nil
	}

	root := &cobra.Command{
		Use:           "sc-overlay",
		Short:         "Star Citizen overlay data service",
		Long:          "sc-overlay scrapes the RSI status page, resolves wiki images, searches ships\nand asks a Gemini assistant, caching what it fetches for the overlay UI.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&cfgFile, "config", DEFAULT_CONFIG_FILE, "config file (YAML or the desktop config.json)")

	serveCmd := &cobra.Command{
		Use:     "serve",
		Short:   "Serve the overlay HTTP API",
		Args:    cobra.NoArgs,
		PreRunE: setup,
		RunE: func(cmd *cobra.Command, _ []string) error {
			printVersion(cmd.ErrOrStderr(), version)
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			if config.Server.Refresh {
				log.Info("Background refresh enabled!")
				go newRefresher(services).run(ctx)
			}
			return startHTTPServer(ctx, config.Server.Address, NewRouter(services))
		},
	}

	statusCmd := &cobra.Command{
		Use:     "status",
		Short:   "Show the current RSI platform status",
		Args:    cobra.NoArgs,
		PreRunE: setup,
		RunE: func(cmd *cobra.Command, _ []string) error {
			v := services.StatusView(cmd.Context())
			out := cmd.OutOrStdout()
			if isTerminal(out) {
				fmt.Fprintln(out, statusPill(v.Classification))
			}
			return printJSON(out, v)
		},
	}

	healthCmd := &cobra.Command{
		Use:     "health",
		Short:   "Check whether the assistant is reachable",
		Args:    cobra.NoArgs,
		PreRunE: setup,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return printJSON(cmd.OutOrStdout(), services.Assistant.Health(cmd.Context()))
		},
	}

	askCmd := &cobra.Command{
		Use:     "ask <question...>",
		Short:   "Ask the Star Citizen assistant a question",
		Args:    cobra.MinimumNArgs(1),
		PreRunE: setup,
		RunE: func(cmd *cobra.Command, args []string) error {
			return printJSON(cmd.OutOrStdout(), services.Ask(cmd.Context(), strings.Join(args, " ")))
		},
	}

	var embed bool
	imageCmd := &cobra.Command{
		Use:     "image <topic...>",
		Short:   "Resolve a representative wiki image for a topic",
		Args:    cobra.MinimumNArgs(1),
		PreRunE: setup,
		RunE: func(cmd *cobra.Command, args []string) error {
			v := imageView{Resolution: services.Images.Resolve(cmd.Context(), strings.Join(args, " "))}
			if embed && v.OK {
				data := services.Embedder.Fetch(cmd.Context(), v.URL)
				v.Image = &data
			}
			return printJSON(cmd.OutOrStdout(), v)
		},
	}
	imageCmd.Flags().BoolVar(&embed, "embed", false, "also download the image as a data URL")

	shipsCmd := &cobra.Command{
		Use:     "ships <query...>",
		Short:   "Search the ship database",
		Args:    cobra.MinimumNArgs(1),
		PreRunE: setup,
		RunE: func(cmd *cobra.Command, args []string) error {
			return printJSON(cmd.OutOrStdout(), services.Ships.Search(cmd.Context(), strings.Join(args, " ")))
		},
	}

	var showLicense bool
	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print version and license",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			printVersion(cmd.OutOrStdout(), version)
			if showLicense {
				fmt.Fprintln(cmd.OutOrStdout(), "\n"+licenseText)
			}
		},
	}
	versionCmd.Flags().BoolVar(&showLicense, "license", false, "print the full license text")

	root.AddCommand(serveCmd, statusCmd, healthCmd, askCmd, imageCmd, shipsCmd, versionCmd)
	return root
}

// Run executes the command line and exits non-zero on failure.
func Run(version *string, licenseText *string) {
	v := "undefined"
	if version != nil && *version != "" {
		v = *version
	}
	root := newRootCommand(v, *licenseText, os.LookupEnv)
	if err := root.ExecuteContext(context.Background()); err != nil {
		log.Error(err)
		os.Exit(1)
	}
}

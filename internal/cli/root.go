// Package cli implements the deepread command line using cobra. The root
// command opens the full-screen reading UI; subcommands cover the
// non-interactive paths: login, logout, upload, export, and version.
package cli

import (
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/asengupta/deepread/internal/api"
	"github.com/asengupta/deepread/internal/assist"
	"github.com/asengupta/deepread/internal/config"
	"github.com/asengupta/deepread/internal/logging"
	"github.com/asengupta/deepread/internal/session"
	"github.com/asengupta/deepread/internal/tui"
)

var (
	// Version is set at build time via -ldflags
	Version = "dev"

	rootCmd = &cobra.Command{
		Use:   "deepread",
		Short: "Read research papers deeply, straight from the terminal",
		Long: `deepread is a terminal client for a Read it DEEP server.

Run it without arguments to open the reading UI: browse the library,
open a paper, highlight a passage, and pick how to read it. Analysis
answers stream in as they are generated.`,
		SilenceUsage: true,
		RunE:         runUI,
	}
)

func init() {
	cobra.OnInitialize(config.Init)

	rootCmd.PersistentFlags().String("server", "", "Backend base URL (e.g. http://localhost:8000)")
	rootCmd.PersistentFlags().Int("timeout", 0, "Request timeout in seconds for non-streaming calls")
	rootCmd.PersistentFlags().String("log-level", "", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-file", "", "Log file path; the UI owns the terminal")
	rootCmd.PersistentFlags().String("session-file", "", "Path to the stored login session")
	rootCmd.Flags().Bool("no-alt-screen", false, "Disable the alternate screen buffer")

	config.BindFlags(rootCmd)

	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(uploadCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command and returns any error encountered.
func Execute() error {
	return rootCmd.Execute()
}

func runUI(cmd *cobra.Command, args []string) error {
	cfg := config.Get()

	logFile, err := logging.OpenFile(cfg.Log.File)
	if err != nil {
		return err
	}
	defer logFile.Close()
	logger := logging.New(logging.Config{Level: cfg.Log.Level, Output: logFile})

	sess, err := session.Load(cfg.Session.File)
	if err != nil {
		if errors.Is(err, session.ErrNotLoggedIn) {
			return fmt.Errorf("no stored session; run `deepread login` first")
		}
		return err
	}

	server := resolveServer(cmd, cfg, sess)
	client := api.New(api.Config{
		BaseURL: server,
		Token:   sess.Token,
		Timeout: time.Duration(cfg.API.Timeout) * time.Second,
		Logger:  logger.With().Str("component", "api").Logger(),
	})
	smart := assist.New(assist.Config{
		BaseURL: server,
		Token:   sess.Token,
		Logger:  logger.With().Str("component", "assist").Logger(),
	})

	logger.Info().Str("server", server).Str("user", sess.Username).Msg("starting ui")

	var opts []tea.ProgramOption
	if noAlt, _ := cmd.Flags().GetBool("no-alt-screen"); !noAlt {
		opts = append(opts, tea.WithAltScreen())
	}
	program := tea.NewProgram(tui.New(tui.Config{
		Client:    client,
		Assist:    smart,
		Logger:    logger.With().Str("component", "tui").Logger(),
		ExportDir: cfg.Export.Dir,
		Username:  sess.Username,
	}), opts...)

	if _, err := program.Run(); err != nil {
		return fmt.Errorf("ui error: %w", err)
	}
	return nil
}

// resolveServer prefers an explicit --server flag, then the server the
// session was created against, then the configured default.
func resolveServer(cmd *cobra.Command, cfg *config.Config, sess session.Session) string {
	if cmd.Flags().Changed("server") {
		return cfg.API.BaseURL
	}
	if sess.ServerURL != "" {
		return sess.ServerURL
	}
	return cfg.API.BaseURL
}

// apiClient builds a client for a subcommand from the stored session.
func apiClient(cmd *cobra.Command) (*api.Client, *config.Config, error) {
	cfg := config.Get()
	sess, err := session.Load(cfg.Session.File)
	if err != nil {
		if errors.Is(err, session.ErrNotLoggedIn) {
			return nil, nil, fmt.Errorf("no stored session; run `deepread login` first")
		}
		return nil, nil, err
	}
	client := api.New(api.Config{
		BaseURL: resolveServer(cmd, cfg, sess),
		Token:   sess.Token,
		Timeout: time.Duration(cfg.API.Timeout) * time.Second,
		Logger:  logging.New(logging.Config{Level: "error"}).With().Str("component", "api").Logger(),
	})
	return client, cfg, nil
}

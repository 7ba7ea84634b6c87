package cli

import (
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"ragclient/internal/tui"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive terminal UI",
	Long: `Launch the interactive terminal UI.

Controls:
  Tab        - Switch between the document and question panes
  Ctrl+S     - Ingest the document
  Enter      - Ask the question
  PgUp/PgDn  - Scroll the answer
  Ctrl+C     - Quit

Logs are written to log.file from the config, or discarded.`,
	RunE: runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logOut, closeLog, err := openLogFile(cfg.Log.File)
	if err != nil {
		return err
	}
	defer closeLog()

	s, err := newSession(cfg, logOut)
	if err != nil {
		return err
	}

	opts := []tea.ProgramOption{tea.WithContext(cmd.Context())}
	if cfg.UI.AltScreen {
		opts = append(opts, tea.WithAltScreen())
	}
	p := tea.NewProgram(tui.New(cmd.Context(), s.ctrl), opts...)
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running tui: %w", err)
	}
	s.logger.Debug("tui exited")
	return nil
}

// openLogFile keeps logs off the screen while the UI owns it.
func openLogFile(path string) (io.Writer, func(), error) {
	if path == "" {
		return io.Discard, func() {}, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("opening log file: %w", err)
	}
	return f, func() { _ = f.Close() }, nil
}

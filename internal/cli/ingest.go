package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"ragclient/internal/controller"
)

var ingestFile string

var ingestCmd = &cobra.Command{
	Use:   "ingest [text]",
	Short: "Ingest a document into the knowledge base",
	Long: `Sends document text to the service for chunking and indexing.

The text is taken from the arguments, from --file, or from standard input
when it is not a terminal.`,
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().StringVarP(&ingestFile, "file", "f", "", "read the document from a file")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	text, err := ingestText(cmd, args)
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	s, err := newSession(cfg, cmd.ErrOrStderr(), controller.WithNotifier(func(msg string) {
		fmt.Fprintln(out, msg)
	}))
	if err != nil {
		return err
	}

	_, err = s.ctrl.SubmitIngestion(cmd.Context(), text)
	return err
}

func ingestText(cmd *cobra.Command, args []string) (string, error) {
	if ingestFile != "" {
		data, err := os.ReadFile(ingestFile)
		if err != nil {
			return "", fmt.Errorf("reading %s: %w", ingestFile, err)
		}
		return string(data), nil
	}
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}

	in := cmd.InOrStdin()
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return "", nil
	}
	data, err := io.ReadAll(in)
	if err != nil {
		return "", fmt.Errorf("reading stdin: %w", err)
	}
	return string(data), nil
}

package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"ragclient/internal/domain"
	"ragclient/internal/render"
)

var queryJSON bool

var queryCmd = &cobra.Command{
	Use:   "query <question>",
	Short: "Ask the knowledge base a question",
	Long: `Sends a question to the service and prints the answer with its
numbered sources and the reported processing time.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runQuery,
}

func init() {
	queryCmd.Flags().BoolVar(&queryJSON, "json", false, "output the answer as JSON")
	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	s, err := newSession(cfg, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	answer, err := s.ctrl.SubmitQuery(cmd.Context(), strings.Join(args, " "))
	if err != nil {
		return err
	}

	if queryJSON {
		return outputAnswerJSON(cmd, answer)
	}
	fmt.Fprint(cmd.OutOrStdout(), render.Answer(answer, render.PlainStyles()))
	return nil
}

func outputAnswerJSON(cmd *cobra.Command, answer domain.AnswerResult) error {
	if answer.Sources == nil {
		answer.Sources = []domain.SourceCitation{}
	}
	data, err := json.MarshalIndent(answer, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal answer: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}

package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/policyrag/internal/rag"
	"github.com/ziadkadry99/policyrag/internal/schema"
)

var queryCmd = &cobra.Command{
	Use:   "query [question]",
	Short: "Ask a question about an ingested policy document",
	Long: `Answers a natural language question against a previously ingested
document, returning a COVERED, NOT_COVERED, or CONDITIONAL decision
with cited evidence.`,
	Args: cobra.ExactArgs(1),
	RunE: runQuery,
}

func init() {
	queryCmd.Flags().String("session", "", "session id from policyrag ingest (defaults to the most recent)")
	queryCmd.Flags().Bool("json", false, "output the full result as JSON")
	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	question := args[0]

	sessionID, _ := cmd.Flags().GetString("session")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	svc, _, err := buildService(ctx, cfg)
	if err != nil {
		return err
	}

	sessions, err := openSessions(cfg)
	if err != nil {
		return fmt.Errorf("opening session database: %w", err)
	}
	defer sessions.Close()

	if sessionID == "" {
		all, err := sessions.List(ctx)
		if err != nil {
			return err
		}
		if len(all) == 0 {
			return fmt.Errorf("no sessions found; run `policyrag ingest` first")
		}
		sessionID = all[0].ID
	}

	sess, err := sessions.Get(ctx, sessionID)
	if err != nil {
		return err
	}
	if sess.Namespace == "" {
		return fmt.Errorf("session %s has no document; run `policyrag ingest` first", sess.ID)
	}

	result, err := svc.AnswerQuery(ctx, rag.QueryContext{
		Namespace: sess.Namespace,
		DocKey:    sess.DocKey,
		Category:  schema.DocumentCategory(sess.DocumentCategory),
	}, question)
	if err != nil {
		return err
	}

	if err := sessions.AddChat(ctx, sess.ID, question, result.Answer, string(result.Decision)); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not record chat history: %v\n", err)
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(queryOutput{
			SessionID:  sess.ID,
			Question:   question,
			Answer:     result.Answer,
			Decision:   string(result.Decision),
			Confidence: result.Confidence,
			Rationale:  result.Rationale,
			Evidence:   result.Evidence,
		})
	}

	printQueryResult(sess.DocumentName, result)
	return nil
}

type queryOutput struct {
	SessionID  string  `json:"session_id"`
	Question   string  `json:"question"`
	Answer     string  `json:"answer"`
	Decision   string  `json:"decision"`
	Confidence float64 `json:"confidence"`
	Rationale  string  `json:"rationale,omitempty"`
	Evidence   any     `json:"evidence"`
}

func printQueryResult(docName string, result *rag.QueryResult) {
	fmt.Printf("Document: %s\n", docName)
	fmt.Printf("Decision: %s (confidence %.2f)\n\n", result.Decision, result.Confidence)
	fmt.Println(result.Answer)

	if len(result.Evidence) > 0 {
		fmt.Println("\nEvidence:")
		for i, ev := range result.Evidence {
			snippet := ev.Snippet
			if snippet == "" {
				snippet = truncate(ev.Text, 160)
			}
			fmt.Printf("  %d. [%s p.%d] %s\n", i+1, ev.DocID, ev.Page, snippet)
		}
	}
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}

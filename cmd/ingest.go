package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/policyrag/internal/ingest"
	"github.com/ziadkadry99/policyrag/internal/progress"
	"github.com/ziadkadry99/policyrag/internal/rag"
	"github.com/ziadkadry99/policyrag/internal/session"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [path|url|directory]",
	Short: "Classify and index a policy document",
	Long: `Loads a document from a file path, URL, or directory, classifies it,
extracts per-page metadata, and indexes its chunks in the vector store.
Each document gets its own session; use the printed session id with
policyrag query.`,
	Args: cobra.ExactArgs(1),
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	target := args[0]

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	svc, store, err := buildService(ctx, cfg)
	if err != nil {
		return err
	}
	svc.SetReporter(progress.NewReporter())

	sessions, err := openSessions(cfg)
	if err != nil {
		return fmt.Errorf("opening session database: %w", err)
	}
	defer sessions.Close()

	var docs []*ingest.Document
	switch {
	case strings.HasPrefix(target, "http://") || strings.HasPrefix(target, "https://"):
		doc, err := ingest.LoadURL(ctx, target)
		if err != nil {
			return err
		}
		docs = append(docs, doc)
	case isDir(target):
		paths, err := ingest.FindDocuments(target, cfg.Include, cfg.Exclude)
		if err != nil {
			return err
		}
		if len(paths) == 0 {
			return fmt.Errorf("no documents matched under %s", target)
		}
		for _, p := range paths {
			doc, err := ingest.LoadFile(filepath.Join(target, p))
			if err != nil {
				fmt.Fprintf(os.Stderr, "Skipping %s: %v\n", p, err)
				continue
			}
			docs = append(docs, doc)
		}
	default:
		doc, err := ingest.LoadFile(target)
		if err != nil {
			return err
		}
		docs = append(docs, doc)
	}

	for _, doc := range docs {
		if err := ingestOne(ctx, svc, sessions, doc); err != nil {
			return err
		}
	}

	if err := store.Persist(ctx, vectorDir(cfg)); err != nil {
		return fmt.Errorf("persisting vector store: %w", err)
	}
	return nil
}

func ingestOne(ctx context.Context, svc *rag.Service, sessions *session.DB, doc *ingest.Document) error {
	result, err := svc.Ingest(ctx, doc)
	if err != nil {
		return fmt.Errorf("ingesting %s: %w", doc.Source, err)
	}

	sess, err := sessions.Create(ctx)
	if err != nil {
		return fmt.Errorf("creating session: %w", err)
	}
	err = sessions.SetDocument(ctx, sess.ID, doc.Name, string(result.Category),
		doc.Source, result.DocKey, result.Namespace, result.ChunksCreated)
	if err != nil {
		return fmt.Errorf("recording session document: %w", err)
	}

	fmt.Printf("%s\n", doc.Name)
	fmt.Printf("  Category: %s\n", result.Category)
	fmt.Printf("  Chunks:   %d\n", result.ChunksCreated)
	if result.PagesFailed > 0 {
		fmt.Printf("  Pages with failed metadata extraction: %d\n", result.PagesFailed)
	}
	fmt.Printf("  Session:  %s\n", sess.ID)
	return nil
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

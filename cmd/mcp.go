package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	mcpserver "github.com/ziadkadry99/policyrag/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server for AI agent integration",
	Long: `Starts a Model Context Protocol (MCP) server on stdio, exposing
ask_policy and search_clauses tools so AI agents can query ingested
policy documents.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

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

		mcpserver.Version = Version

		fmt.Fprintf(os.Stderr, "policyrag MCP server started on stdio\n")

		srv := mcpserver.NewServer(svc, sessions)
		return srv.Serve()
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

package mcp

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/ziadkadry99/policyrag/internal/rag"
	"github.com/ziadkadry99/policyrag/internal/retrieval"
	"github.com/ziadkadry99/policyrag/internal/schema"
)

// handleAskPolicy answers a question against a session's document through
// the full retrieval and adjudication pipeline.
func (s *Server) handleAskPolicy(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: session_id"), nil
	}
	question, err := request.RequireString("question")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: question"), nil
	}

	qc, errResult := s.queryContext(ctx, sessionID)
	if errResult != nil {
		return errResult, nil
	}

	result, err := s.svc.AnswerQuery(ctx, qc, question)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("query failed: %v", err)), nil
	}

	if err := s.sessions.AddChat(ctx, sessionID, question, result.Answer, string(result.Decision)); err != nil {
		// Stdout carries protocol messages; the default logger writes to stderr.
		log.Printf("mcp: recording chat: %v", err)
	}

	return mcp.NewToolResultText(formatAnswer(result)), nil
}

// handleSearchClauses performs filtered semantic search without adjudication.
func (s *Server) handleSearchClauses(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: session_id"), nil
	}
	query, err := request.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: query"), nil
	}

	limit := request.GetInt("limit", 3)
	if limit <= 0 {
		limit = 3
	}

	qc, errResult := s.queryContext(ctx, sessionID)
	if errResult != nil {
		return errResult, nil
	}

	hits, err := s.svc.SearchClauses(ctx, qc, query, limit)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("search failed: %v", err)), nil
	}

	if len(hits) == 0 {
		return mcp.NewToolResultText("No matching clauses found."), nil
	}

	return mcp.NewToolResultText(formatClauses(hits)), nil
}

// handleListSessions lists active sessions and their documents.
func (s *Server) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessions, err := s.sessions.List(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("listing sessions failed: %v", err)), nil
	}

	if len(sessions) == 0 {
		return mcp.NewToolResultText("No active sessions. Create one with the HTTP API or the `policyrag ingest` command."), nil
	}

	var sb strings.Builder
	for _, sess := range sessions {
		sb.WriteString(sess.ID)
		if sess.DocumentName != "" {
			fmt.Fprintf(&sb, "  %s (%s, %d chunks)", sess.DocumentName, sess.DocumentCategory, sess.ChunksCount)
		} else {
			sb.WriteString("  (no document uploaded)")
		}
		sb.WriteString("\n")
	}
	return mcp.NewToolResultText(sb.String()), nil
}

// queryContext resolves a session id to the namespace and keyword-store key
// a query runs against. The second return value is non-nil on failure.
func (s *Server) queryContext(ctx context.Context, sessionID string) (rag.QueryContext, *mcp.CallToolResult) {
	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return rag.QueryContext{}, mcp.NewToolResultError(fmt.Sprintf("session not found: %v", err))
	}
	if sess.Namespace == "" {
		return rag.QueryContext{}, mcp.NewToolResultError("no document uploaded for this session")
	}
	return rag.QueryContext{
		Namespace: sess.Namespace,
		DocKey:    sess.DocKey,
		Category:  schema.DocumentCategory(sess.DocumentCategory),
	}, nil
}

// formatAnswer renders a query result as text for agent consumption.
func formatAnswer(result *rag.QueryResult) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Decision: %s (confidence %.2f)\n\n", result.Decision, result.Confidence)
	sb.WriteString(result.Answer)
	sb.WriteString("\n")

	if result.Rationale != "" {
		fmt.Fprintf(&sb, "\nRationale: %s\n", result.Rationale)
	}

	for i, ev := range result.Evidence {
		fmt.Fprintf(&sb, "\n--- Evidence %d ---\n", i+1)
		fmt.Fprintf(&sb, "Source: %s page %d\n", ev.DocID, ev.Page)
		if ev.Reason != "" {
			fmt.Fprintf(&sb, "Reason: %s\n", ev.Reason)
		}
		snippet := ev.Snippet
		if snippet == "" {
			snippet = ev.Text
		}
		if snippet != "" {
			sb.WriteString(snippet)
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

// formatClauses renders raw clause hits as text.
func formatClauses(hits []retrieval.ClauseHit) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Found %d clause(s):\n", len(hits))
	for i, h := range hits {
		fmt.Fprintf(&sb, "\n--- Clause %d ---\n", i+1)
		fmt.Fprintf(&sb, "Source: %s page %d\n", h.DocID, h.Page)
		fmt.Fprintf(&sb, "Score: %.3f\n\n", h.Score)
		sb.WriteString(h.Text)
		sb.WriteString("\n")
	}
	return sb.String()
}

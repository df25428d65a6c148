package mcp

import "github.com/mark3labs/mcp-go/mcp"

// askPolicyTool defines the ask_policy MCP tool.
var askPolicyTool = mcp.NewTool("ask_policy",
	mcp.WithDescription("Ask a question about an uploaded policy document. Returns a coverage decision (COVERED, NOT_COVERED, or CONDITIONAL) with cited evidence."),
	mcp.WithString("session_id",
		mcp.Required(),
		mcp.Description("Session holding the uploaded document"),
	),
	mcp.WithString("question",
		mcp.Required(),
		mcp.Description("Natural language question about the policy"),
	),
)

// searchClausesTool defines the search_clauses MCP tool.
var searchClausesTool = mcp.NewTool("search_clauses",
	mcp.WithDescription("Semantically search the clauses of an uploaded policy document. Returns matching passages with metadata, without a coverage decision."),
	mcp.WithString("session_id",
		mcp.Required(),
		mcp.Description("Session holding the uploaded document"),
	),
	mcp.WithString("query",
		mcp.Required(),
		mcp.Description("Natural language search query"),
	),
	mcp.WithNumber("limit",
		mcp.Description("Maximum number of clauses to return (default 3)"),
	),
)

// listSessionsTool defines the list_sessions MCP tool.
var listSessionsTool = mcp.NewTool("list_sessions",
	mcp.WithDescription("List active sessions and the documents uploaded to them."),
)

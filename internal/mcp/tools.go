package mcp

import "github.com/mark3labs/mcp-go/mcp"

var fetchToolDef = mcp.NewTool("case_fetch",
	mcp.WithDescription("Fetch the latest persisted version of a case by cause number."),
	mcp.WithString("cause_number",
		mcp.Required(),
		mcp.Description("Court cause number, e.g. CR-16-0002-A."),
	),
)

var versionsToolDef = mcp.NewTool("case_versions",
	mcp.WithDescription("List every persisted version of a case, oldest first."),
	mcp.WithString("cause_number",
		mcp.Required(),
		mcp.Description("Court cause number, e.g. CR-16-0002-A."),
	),
)

var statsToolDef = mcp.NewTool("store_stats",
	mcp.WithDescription("Summarize the persisted dataset: case versions, distinct cases, charges, dispositions, events."),
)

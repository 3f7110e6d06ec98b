package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// Tool names
const (
	ToolAddItems        = "add_items"
	ToolDeleteItems     = "delete_items"
	ToolSearchItems     = "search_items"
	ToolGetItemDetails  = "get_item_details"
	ToolExecuteRawQuery = "execute_raw_query"
)

func idsProperty(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "array",
		"description": description,
		"items": map[string]interface{}{
			"type": "integer",
		},
	}
}

// addItemsTool returns the tool definition for add_items
func addItemsTool() mcp.Tool {
	return mcp.Tool{
		Name:        ToolAddItems,
		Description: "Add media files to the catalog. Every path is reported as added, already present, or failed.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"paths": map[string]interface{}{
					"type":        "array",
					"description": "File paths to add; they are cleaned but not checked on disk",
					"items": map[string]interface{}{
						"type": "string",
					},
				},
			},
			Required: []string{"paths"},
		},
	}
}

// deleteItemsTool returns the tool definition for delete_items
func deleteItemsTool() mcp.Tool {
	return mcp.Tool{
		Name:        ToolDeleteItems,
		Description: "Remove catalog items by id and return the ids that were removed",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"ids": idsProperty("Item ids to remove; unknown ids are ignored"),
			},
			Required: []string{"ids"},
		},
	}
}

// searchItemsTool returns the tool definition for search_items
func searchItemsTool() mcp.Tool {
	return mcp.Tool{
		Name:        ToolSearchItems,
		Description: "Find item ids whose title or path contains the term, newest first",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"term": map[string]interface{}{
					"type":        "string",
					"description": "Case-insensitive substring; empty lists every item",
					"default":     "",
				},
			},
		},
	}
}

// getItemDetailsTool returns the tool definition for get_item_details
func getItemDetailsTool() mcp.Tool {
	return mcp.Tool{
		Name:        ToolGetItemDetails,
		Description: "Fetch full catalog records for the given ids, ascending by id",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"ids": idsProperty("Item ids to fetch; unknown ids are omitted"),
			},
			Required: []string{"ids"},
		},
	}
}

// executeRawQueryTool returns the tool definition for execute_raw_query
func executeRawQueryTool() mcp.Tool {
	return mcp.Tool{
		Name: ToolExecuteRawQuery,
		Description: "Run a SQL statement against the catalog database. Statements containing " +
			"DROP TABLE or ALTER TABLE are refused. Reads return rows; other statements return affected_rows.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"query": map[string]interface{}{
					"type":        "string",
					"description": "A single SQL statement, run without parameters",
				},
			},
			Required: []string{"query"},
		},
	}
}

// Package mcp implements the Model Context Protocol (MCP) server for the
// media catalog.
//
// The MCP server exposes five tools:
//   - add_items: Add file paths to the catalog
//   - delete_items: Remove items by id
//   - search_items: Substring search over titles and paths
//   - get_item_details: Fetch full records by id
//   - execute_raw_query: Run a guarded SQL statement
//
// # Protocol Overview
//
// MCP is a JSON-RPC 2.0 protocol over stdio transport:
//
//	Client → Server: {"method": "tools/call", "params": {...}}
//	Server → Client: {"result": {...}}
//
// Logs go to stderr; stdout carries only protocol messages.
//
// # Tool: add_items
//
//	Request:
//	{
//	  "name": "add_items",
//	  "arguments": {"paths": ["/media/a.mp4", "", "/media/b.jpg"]}
//	}
//
//	Response:
//	{
//	  "success": [12],
//	  "duplicates": ["/media/b.jpg"],
//	  "errors": [{"path": "", "error": "empty path", "kind": "MalformedInput"}]
//	}
//
// # Tool: delete_items
//
//	Request:  {"name": "delete_items", "arguments": {"ids": [12, 99]}}
//	Response: {"deleted": [12]}
//
// # Tool: search_items
//
//	Request:  {"name": "search_items", "arguments": {"term": "beach"}}
//	Response: {"term": "beach", "ids": [31, 7]}
//
// # Tool: get_item_details
//
//	Request:  {"name": "get_item_details", "arguments": {"ids": [7]}}
//	Response:
//	{
//	  "items": [{
//	    "id": 7,
//	    "path": "/photos/beach.jpg",
//	    "title": "beach",
//	    "extension": "jpg",
//	    "description": null,
//	    "thumbnail": null,
//	    "added": 1717171717,
//	    "lastVerified": 1717171717
//	  }]
//	}
//
// # Tool: execute_raw_query
//
//	Request:  {"name": "execute_raw_query", "arguments": {"query": "SELECT id, path FROM items"}}
//	Response: {"rows": [{"id": 7, "path": "/photos/beach.jpg"}]}
//
// # Error Handling
//
// Failures are returned as JSON-RPC errors. Catalog error kinds map to
// their own codes:
//
//	-32602 invalid params
//	-32603 internal error
//	-32001 store unavailable
//	-32002 constraint violation
//	-32003 rejected statement
//	-32004 malformed input
//	-32005 not found
package mcp

package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/sirupsen/logrus"

	"github.com/dshills/mediacat-mcp/internal/metrics"
	"github.com/dshills/mediacat-mcp/pkg/types"
)

// MCP error codes
const (
	ErrorCodeInvalidParams       = -32602 // Invalid method parameters
	ErrorCodeInternalError       = -32603 // Internal JSON-RPC error
	ErrorCodeStoreUnavailable    = -32001 // Catalog database could not be reached
	ErrorCodeConstraintViolation = -32002 // Write refused by a schema constraint
	ErrorCodeRejectedStatement   = -32003 // Raw statement matched the denylist
	ErrorCodeMalformedInput      = -32004 // Statement or argument could not be used
	ErrorCodeNotFound            = -32005 // Requested record does not exist
)

var kindCodes = map[types.ErrorKind]int{
	types.KindStoreUnavailable:    ErrorCodeStoreUnavailable,
	types.KindConstraintViolation: ErrorCodeConstraintViolation,
	types.KindRejectedStatement:   ErrorCodeRejectedStatement,
	types.KindMalformedInput:      ErrorCodeMalformedInput,
	types.KindNotFound:            ErrorCodeNotFound,
}

// instrument counts tool calls by outcome and logs failures
func (s *Server) instrument(tool string, handler server.ToolHandlerFunc) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		start := time.Now()
		result, err := handler(ctx, request)

		status := "ok"
		if err != nil {
			status = "error"
			fields := logrus.Fields{
				"tool":     tool,
				"duration": time.Since(start),
			}
			var mcpErr *MCPError
			if errors.As(err, &mcpErr) {
				fields["code"] = mcpErr.Code
			}
			log.WithFields(fields).WithError(err).Warn("tool call failed")
		}
		metrics.ToolCallsTotal.WithLabelValues(tool, status).Inc()

		return result, err
	}
}

// handleAddItems handles the add_items tool invocation
func (s *Server) handleAddItems(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	paths, err := getStringSlice(args, "paths")
	if err != nil {
		return nil, newMCPError(ErrorCodeInvalidParams, "paths parameter is invalid", map[string]interface{}{
			"param":  "paths",
			"reason": err.Error(),
		})
	}

	result, err := s.catalog.AddItems(ctx, paths)
	if err != nil {
		return nil, toMCPError("add items failed", err)
	}

	response := map[string]interface{}{
		"success":    result.Success,
		"duplicates": result.Duplicates,
		"errors":     result.Errors,
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleDeleteItems handles the delete_items tool invocation
func (s *Server) handleDeleteItems(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	ids, err := getIDSlice(args, "ids")
	if err != nil {
		return nil, newMCPError(ErrorCodeInvalidParams, "ids parameter is invalid", map[string]interface{}{
			"param":  "ids",
			"reason": err.Error(),
		})
	}

	deleted, err := s.catalog.DeleteItems(ctx, ids)
	if err != nil {
		return nil, toMCPError("delete items failed", err)
	}

	return mcp.NewToolResultText(formatJSON(map[string]interface{}{
		"deleted": deleted,
	})), nil
}

// handleSearchItems handles the search_items tool invocation
func (s *Server) handleSearchItems(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok && request.Params.Arguments != nil {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	if raw, present := args["term"]; present {
		if _, isString := raw.(string); !isString {
			return nil, newMCPError(ErrorCodeInvalidParams, "term must be a string", map[string]interface{}{
				"param": "term",
			})
		}
	}
	term := getStringDefault(args, "term", "")

	ids, err := s.catalog.SearchItems(ctx, term)
	if err != nil {
		return nil, toMCPError("search failed", err)
	}

	return mcp.NewToolResultText(formatJSON(map[string]interface{}{
		"term": term,
		"ids":  ids,
	})), nil
}

// handleGetItemDetails handles the get_item_details tool invocation
func (s *Server) handleGetItemDetails(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	ids, err := getIDSlice(args, "ids")
	if err != nil {
		return nil, newMCPError(ErrorCodeInvalidParams, "ids parameter is invalid", map[string]interface{}{
			"param":  "ids",
			"reason": err.Error(),
		})
	}

	items, err := s.catalog.GetItemDetails(ctx, ids)
	if err != nil {
		return nil, toMCPError("fetch item details failed", err)
	}

	return mcp.NewToolResultText(formatJSON(map[string]interface{}{
		"items": items,
	})), nil
}

// handleExecuteRawQuery handles the execute_raw_query tool invocation
func (s *Server) handleExecuteRawQuery(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	query, ok := args["query"].(string)
	if !ok || query == "" {
		return nil, newMCPError(ErrorCodeInvalidParams, "query parameter is required", map[string]interface{}{
			"param":  "query",
			"reason": "missing or empty",
		})
	}

	rows, err := s.catalog.ExecuteRawQuery(ctx, query)
	if err != nil {
		return nil, toMCPError("query failed", err)
	}

	return mcp.NewToolResultText(formatJSON(map[string]interface{}{
		"rows": rows,
	})), nil
}

// Helper functions

// newMCPError creates a properly formatted MCP error
func newMCPError(code int, message string, data interface{}) error {
	// MCP errors are returned as regular errors, the framework handles encoding
	return &MCPError{
		Code:    code,
		Message: message,
		Data:    data,
	}
}

// toMCPError maps a catalog error to the code for its kind
func toMCPError(message string, err error) error {
	kind := types.KindOf(err)
	code, ok := kindCodes[kind]
	if !ok {
		code = ErrorCodeInternalError
	}
	return &MCPError{
		Code:    code,
		Message: message,
		Data: map[string]interface{}{
			"kind":  string(kind),
			"error": err.Error(),
		},
		cause: err,
	}
}

// MCPError represents an MCP protocol error
type MCPError struct {
	Code    int
	Message string
	Data    interface{}

	cause error
}

func (e *MCPError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("MCP error %d: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("MCP error %d: %s", e.Code, e.Message)
}

func (e *MCPError) Unwrap() error {
	return e.cause
}

// formatJSON formats a map as indented JSON
func formatJSON(data map[string]interface{}) string {
	bytes, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", data)
	}
	return string(bytes)
}

// getStringDefault extracts a string parameter with a default value
func getStringDefault(args map[string]interface{}, key string, defaultValue string) string {
	if val, ok := args[key].(string); ok {
		return val
	}
	return defaultValue
}

// getStringSlice extracts a required array of strings
func getStringSlice(args map[string]interface{}, key string) ([]string, error) {
	raw, ok := args[key]
	if !ok || raw == nil {
		return nil, ErrParamRequired
	}

	switch v := raw.(type) {
	case []string:
		return v, nil
	case []interface{}:
		out := make([]string, len(v))
		for i, elem := range v {
			s, ok := elem.(string)
			if !ok {
				return nil, fmt.Errorf("element %d: %w", i, ErrNotString)
			}
			out[i] = s
		}
		return out, nil
	default:
		return nil, ErrNotArray
	}
}

// getIDSlice extracts a required array of item ids. JSON numbers decode as
// float64, so whole-valued floats are accepted.
func getIDSlice(args map[string]interface{}, key string) ([]int64, error) {
	raw, ok := args[key]
	if !ok || raw == nil {
		return nil, ErrParamRequired
	}

	switch v := raw.(type) {
	case []int64:
		return v, nil
	case []interface{}:
		out := make([]int64, len(v))
		for i, elem := range v {
			id, err := toID(elem)
			if err != nil {
				return nil, fmt.Errorf("element %d: %w", i, err)
			}
			out[i] = id
		}
		return out, nil
	default:
		return nil, ErrNotArray
	}
}

func toID(v interface{}) (int64, error) {
	switch n := v.(type) {
	case float64:
		if n != math.Trunc(n) || n < math.MinInt64 || n > math.MaxInt64 {
			return 0, types.ErrInvalidItemID
		}
		return int64(n), nil
	case int:
		return int64(n), nil
	case int64:
		return n, nil
	case json.Number:
		id, err := n.Int64()
		if err != nil {
			return 0, types.ErrInvalidItemID
		}
		return id, nil
	default:
		return 0, types.ErrInvalidItemID
	}
}

// Validation helpers

var (
	ErrParamRequired = errors.New("parameter is required")
	ErrNotArray      = errors.New("must be an array")
	ErrNotString     = errors.New("must be a string")
)

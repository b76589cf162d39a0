package response

import (
	"encoding/json"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

// Result wraps a host reply as a tool result. Object replies are also
// attached as structured content; the text block always carries the JSON.
func Result(data json.RawMessage) *mcp.CallToolResult {
	if len(data) == 0 {
		data = json.RawMessage(`null`)
	}
	result := &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: string(data)}},
	}
	var obj map[string]any
	if json.Unmarshal(data, &obj) == nil && obj != nil {
		result.StructuredContent = obj
	}
	return result
}

// Value marshals v and wraps it with Result.
func Value(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return Result(data), nil
}

// Error is a tool result reporting err to the model.
func Error(err error) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: err.Error()}},
	}
}

// Unwrap extracts printable output from a CallToolResult.
// Returns the output bytes and an exit code.
func Unwrap(result *mcp.CallToolResult) ([]byte, int) {
	if result == nil {
		return nil, ExitInternal
	}

	exitCode := ExitOK
	if result.IsError {
		exitCode = ExitToolErr
	}

	if result.StructuredContent != nil && !result.IsError {
		if data, err := json.Marshal(result.StructuredContent); err == nil {
			return ensureTrailingNewline(data), exitCode
		}
	}

	var parts []string
	for _, content := range result.Content {
		if text, ok := renderContent(content); ok {
			parts = append(parts, text)
			continue
		}
		raw, err := json.Marshal(content)
		if err == nil {
			parts = append(parts, string(raw))
		}
	}

	if len(parts) == 0 {
		return nil, exitCode
	}
	return ensureTrailingNewline([]byte(strings.Join(parts, "\n"))), exitCode
}

func renderContent(content mcp.Content) (string, bool) {
	switch c := content.(type) {
	case mcp.TextContent:
		return c.Text, true
	case *mcp.TextContent:
		return c.Text, true
	default:
		return "", false
	}
}

func ensureTrailingNewline(out []byte) []byte {
	if len(out) == 0 {
		return out
	}
	if out[len(out)-1] != '\n' {
		return append(out, '\n')
	}
	return out
}

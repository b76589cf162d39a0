package tools

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

// CompileArgs checks raw against the tool's input schema and coerces values
// to the declared types. String values are accepted for numbers, integers
// and booleans, so flags typed on a command line reach the host as proper
// JSON. A boolean property may also be negated with a "no-" prefix.
func CompileArgs(tool mcp.Tool, raw map[string]any) (map[string]any, error) {
	if raw == nil {
		raw = map[string]any{}
	}

	props := tool.InputSchema.Properties
	raw, err := rewriteNegatedBooleans(raw, props)
	if err != nil {
		return nil, err
	}

	for key := range raw {
		if _, ok := props[key]; !ok {
			return nil, invalidParamsError("unknown argument %q for %s", key, tool.Name)
		}
	}
	for _, key := range tool.InputSchema.Required {
		if _, ok := raw[key]; !ok {
			return nil, invalidParamsError("missing required argument %q for %s", key, tool.Name)
		}
	}

	out := make(map[string]any, len(raw))
	for key, value := range raw {
		propSchema, _ := props[key].(map[string]any)
		coerced, err := coerceValue(value, propSchema, key)
		if err != nil {
			return nil, err
		}
		out[key] = coerced
	}
	return out, nil
}

func rewriteNegatedBooleans(raw map[string]any, props map[string]any) (map[string]any, error) {
	if len(raw) == 0 || len(props) == 0 {
		return raw, nil
	}

	rewritten := make(map[string]any, len(raw))
	for key, value := range raw {
		rewritten[key] = value
	}

	for key, value := range raw {
		if _, ok := props[key]; ok {
			continue
		}
		if !strings.HasPrefix(key, "no-") || len(key) <= len("no-") {
			continue
		}

		baseKey := strings.TrimPrefix(key, "no-")
		baseSchema, ok := props[baseKey].(map[string]any)
		if !ok || schemaType(baseSchema) != "boolean" {
			continue
		}
		if _, exists := rewritten[baseKey]; exists {
			return nil, invalidParamsError("conflicting arguments %q and %q", baseKey, key)
		}

		negated, err := coerceBoolean(value, key)
		if err != nil {
			return nil, err
		}
		rewritten[baseKey] = !negated
		delete(rewritten, key)
	}
	return rewritten, nil
}

func coerceValue(value any, schema map[string]any, path string) (any, error) {
	if schema == nil || value == nil {
		return value, nil
	}

	switch schemaType(schema) {
	case "string":
		s, ok := value.(string)
		if !ok {
			return nil, invalidParamsType(path, "string", value)
		}
		return s, nil
	case "integer":
		return coerceInteger(value, path)
	case "number":
		return coerceNumber(value, path)
	case "boolean":
		return coerceBoolean(value, path)
	default:
		return value, nil
	}
}

func coerceInteger(value any, path string) (int64, error) {
	switch v := value.(type) {
	case int:
		return int64(v), nil
	case int64:
		return v, nil
	case float64:
		if math.Trunc(v) != v {
			return 0, invalidParamsError("argument %q must be integer", path)
		}
		return int64(v), nil
	case json.Number:
		i, err := v.Int64()
		if err != nil {
			return 0, invalidParamsError("argument %q must be integer: %v", path, err)
		}
		return i, nil
	case string:
		i, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return 0, invalidParamsError("argument %q must be integer: %v", path, err)
		}
		return i, nil
	default:
		return 0, invalidParamsType(path, "integer", value)
	}
}

func coerceNumber(value any, path string) (float64, error) {
	var f float64
	switch v := value.(type) {
	case int:
		f = float64(v)
	case int64:
		f = float64(v)
	case float64:
		f = v
	case json.Number:
		parsed, err := v.Float64()
		if err != nil {
			return 0, invalidParamsError("argument %q must be number: %v", path, err)
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, invalidParamsError("argument %q must be number: %v", path, err)
		}
		f = parsed
	default:
		return 0, invalidParamsType(path, "number", value)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, invalidParamsError("argument %q must be a finite number", path)
	}
	return f, nil
}

func coerceBoolean(value any, path string) (bool, error) {
	switch v := value.(type) {
	case bool:
		return v, nil
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return false, invalidParamsError("argument %q must be boolean: %v", path, err)
		}
		return b, nil
	default:
		return false, invalidParamsType(path, "boolean", value)
	}
}

func schemaType(schema map[string]any) string {
	if t, ok := schema["type"].(string); ok {
		return strings.TrimSpace(strings.ToLower(t))
	}
	return ""
}

func invalidParamsType(path, want string, got any) error {
	return invalidParamsError("argument %q must be %s, got %T", path, want, got)
}

func invalidParamsError(format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	return fmt.Errorf("%w: %s", mcp.ErrInvalidParams, msg)
}

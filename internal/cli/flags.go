package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"
)

type toolCallArgs struct {
	toolArgs map[string]any
	noCache  bool
	verbose  bool
	quiet    bool
	help     bool
}

// parseToolCallArgs splits call arguments into reserved flags and tool
// arguments. Tool arguments come from --key value flags, one positional JSON
// object, or a JSON object on stdin when nothing else is given. Values stay
// strings here; the tool schema coerces them later.
func parseToolCallArgs(args []string, stdin io.Reader, stdinIsTTY bool) (*toolCallArgs, error) {
	parsed := &toolCallArgs{
		toolArgs: make(map[string]any),
	}

	var positionalJSON string
	hasToolFlags := false
	hasAnyFlags := false
	afterSeparator := false

	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--" {
			afterSeparator = true
			continue
		}

		if !afterSeparator {
			switch arg {
			case "-v", "--verbose":
				parsed.verbose = true
				hasAnyFlags = true
				continue
			case "-q", "--quiet":
				parsed.quiet = true
				hasAnyFlags = true
				continue
			case "-h", "--help":
				parsed.help = true
				hasAnyFlags = true
				continue
			case "--no-cache":
				parsed.noCache = true
				hasAnyFlags = true
				continue
			}
		}

		if strings.HasPrefix(arg, "--") {
			flagArg := arg
			if strings.HasPrefix(arg, "--tool-") {
				flagArg = "--" + strings.TrimPrefix(arg, "--tool-")
			}
			if positionalJSON != "" {
				return nil, fmt.Errorf("cannot mix positional JSON arguments with --flags")
			}

			key, value, err := parseLongFlagValue(args, &i, flagArg)
			if err != nil {
				return nil, err
			}
			if _, dup := parsed.toolArgs[key]; dup {
				return nil, fmt.Errorf("flag --%s given more than once", key)
			}
			parsed.toolArgs[key] = value
			hasToolFlags = true
			hasAnyFlags = true
			continue
		}

		// Negative numbers are values, not short flags.
		if strings.HasPrefix(arg, "-") && !looksNumeric(arg) {
			return nil, fmt.Errorf("unsupported short flag: %s", arg)
		}

		if hasToolFlags {
			return nil, fmt.Errorf("unexpected positional argument: %s", arg)
		}
		if positionalJSON != "" {
			return nil, fmt.Errorf("multiple positional arguments are not supported")
		}
		positionalJSON = arg
	}

	if positionalJSON != "" {
		obj, err := parseJSONObject(positionalJSON)
		if err != nil {
			return nil, err
		}
		parsed.toolArgs = obj
		return parsed, nil
	}

	if !hasAnyFlags && !stdinIsTTY && stdin != nil {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("reading stdin: %w", err)
		}
		trimmed := strings.TrimSpace(string(data))
		if trimmed != "" {
			obj, err := parseJSONObject(trimmed)
			if err != nil {
				return nil, err
			}
			parsed.toolArgs = obj
		}
	}

	return parsed, nil
}

func parseJSONObject(raw string) (map[string]any, error) {
	var decoded any
	if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
		return nil, fmt.Errorf("invalid JSON arguments: %w", err)
	}

	obj, ok := decoded.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("JSON arguments must be an object")
	}
	return obj, nil
}

// parseLongFlagValue reads --key=value, --key value, or a bare --key
// (true). A following token that starts with "--" is the next flag, but a
// negative number such as -970 is taken as the value.
func parseLongFlagValue(args []string, idx *int, token string) (string, any, error) {
	body := strings.TrimPrefix(token, "--")
	if body == "" {
		return "", nil, fmt.Errorf("invalid flag: %s", token)
	}

	if eq := strings.Index(body, "="); eq >= 0 {
		key := body[:eq]
		if key == "" {
			return "", nil, fmt.Errorf("invalid flag: %s", token)
		}
		return key, body[eq+1:], nil
	}

	if *idx+1 < len(args) {
		next := args[*idx+1]
		if !strings.HasPrefix(next, "-") || looksNumeric(next) {
			*idx = *idx + 1
			return body, next, nil
		}
	}
	return body, true, nil
}

func looksNumeric(s string) bool {
	var f float64
	_, err := fmt.Sscanf(s, "%g", &f)
	return err == nil && strings.TrimLeft(s, "-+.0123456789eE") == ""
}

func stdinIsTTY(file *os.File) bool {
	info, err := file.Stat()
	if err != nil {
		return true
	}
	return info.Mode()&fs.ModeCharDevice != 0
}

package criteria

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/dop251/goja"

	"github.com/islomar/rostersearch/internal/logger"
)

// Console limits
const (
	// MaxLogMessageLength is the maximum length of a single console message (8KB)
	MaxLogMessageLength = 8 * 1024
	// MaxObjectDepth is the maximum depth for object formatting
	MaxObjectDepth = 10
)

const placeholderObject = "[Object]"

// jsConsole routes console.log/info/warn/error/debug from criterion scripts
// to the structured logger. person is the name of the record being tested,
// empty while the script source itself runs.
type jsConsole struct {
	person string
}

// installConsole registers a console object in vm.
func installConsole(vm *goja.Runtime) (*jsConsole, error) {
	c := &jsConsole{}

	console := vm.NewObject()
	for name, level := range map[string]slog.Level{
		"log":   slog.LevelInfo,
		"info":  slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
		"debug": slog.LevelDebug,
	} {
		fn := func(call goja.FunctionCall) goja.Value {
			c.logWithLevel(level, call.Arguments)
			return goja.Undefined()
		}
		if err := console.Set(name, fn); err != nil {
			return nil, fmt.Errorf("console.Set(%q): %w", name, err)
		}
	}
	if err := vm.Set("console", console); err != nil {
		return nil, fmt.Errorf("runtime.Set(console): %w", err)
	}
	return c, nil
}

func (c *jsConsole) logWithLevel(level slog.Level, args []goja.Value) {
	parts := make([]string, 0, len(args))
	for _, arg := range args {
		parts = append(parts, formatValue(arg))
	}
	message := truncateMessage(strings.Join(parts, " "))

	attrs := []any{slog.String("source", "javascript")}
	if c.person != "" {
		attrs = append(attrs, slog.String("person", c.person))
	}

	switch level {
	case slog.LevelDebug:
		logger.Debug(message, attrs...)
	case slog.LevelWarn:
		logger.Warn(message, attrs...)
	case slog.LevelError:
		logger.Error(message, attrs...)
	default:
		logger.Info(message, attrs...)
	}
}

// truncateMessage caps message at MaxLogMessageLength bytes without splitting
// a UTF-8 sequence.
func truncateMessage(message string) string {
	if len(message) <= MaxLogMessageLength {
		return message
	}
	cut := MaxLogMessageLength - 3
	for cut > 0 && !utf8.RuneStart(message[cut]) {
		cut--
	}
	return message[:cut] + "..."
}

// formatValue renders a JavaScript value the way Node's console does for
// primitives, and as JSON-like text for objects and arrays.
func formatValue(val goja.Value) string {
	if val == nil || goja.IsUndefined(val) {
		return "undefined"
	}
	if goja.IsNull(val) {
		return "null"
	}
	if s, ok := val.Export().(string); ok {
		return s
	}
	if _, ok := val.(*goja.Object); !ok {
		return val.String()
	}
	return formatGoValue(val.Export(), 0)
}

// formatGoValue formats an exported value; depth bounds cyclic structures.
func formatGoValue(v interface{}, depth int) string {
	if depth > MaxObjectDepth {
		return placeholderObject
	}

	switch x := v.(type) {
	case nil:
		return "null"
	case string:
		data, _ := json.Marshal(x)
		return string(data)
	case []interface{}:
		parts := make([]string, 0, len(x))
		for _, item := range x {
			parts = append(parts, formatGoValue(item, depth+1))
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case map[string]interface{}:
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		var b strings.Builder
		b.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(formatGoValue(k, depth+1))
			b.WriteString(": ")
			b.WriteString(formatGoValue(x[k], depth+1))
		}
		b.WriteByte('}')
		return b.String()
	default:
		if _, isFunc := v.(func(goja.FunctionCall) goja.Value); isFunc {
			return "[Function]"
		}
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(data)
	}
}

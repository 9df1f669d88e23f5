package criteria

import (
	"bytes"
	"os"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/dop251/goja"

	"github.com/islomar/rostersearch/internal/logger"
	"github.com/islomar/rostersearch/pkg/roster"
)

func TestFormatValue(t *testing.T) {
	vm := goja.New()

	tests := []struct {
		name string
		js   string
		want string
	}{
		{"string", `"hello"`, "hello"},
		{"integer", "42", "42"},
		{"float", "1.5", "1.5"},
		{"boolean", "true", "true"},
		{"null", "null", "null"},
		{"undefined", "undefined", "undefined"},
		{"array", `[1, "a", null]`, `[1, "a", null]`},
		{"object keys sorted", `({b: 2, a: {c: "x"}})`, `{"a": {"c": "x"}, "b": 2}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			val, err := vm.RunString(tt.js)
			if err != nil {
				t.Fatal(err)
			}
			if got := formatValue(val); got != tt.want {
				t.Errorf("formatValue(%s) = %q, want %q", tt.js, got, tt.want)
			}
		})
	}
}

func TestFormatGoValue_DepthLimit(t *testing.T) {
	nested := map[string]interface{}{}
	current := nested
	for i := 0; i < MaxObjectDepth+5; i++ {
		next := map[string]interface{}{}
		current["n"] = next
		current = next
	}
	if got := formatGoValue(nested, 0); !strings.Contains(got, placeholderObject) {
		t.Errorf("expected depth placeholder in %q", got)
	}
}

func TestTruncateMessage(t *testing.T) {
	short := "hello"
	if got := truncateMessage(short); got != short {
		t.Errorf("truncateMessage(%q) = %q", short, got)
	}

	tests := []struct {
		name string
		msg  string
	}{
		{"ascii", strings.Repeat("x", MaxLogMessageLength+10)},
		{"two-byte runes", strings.Repeat("é", MaxLogMessageLength)},
		{"four-byte runes", strings.Repeat("😀", MaxLogMessageLength)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := truncateMessage(tt.msg)
			if len(got) > MaxLogMessageLength {
				t.Errorf("len = %d, want <= %d", len(got), MaxLogMessageLength)
			}
			if !strings.HasSuffix(got, "...") {
				t.Error("expected ... suffix")
			}
			if !utf8.ValidString(got) {
				t.Error("truncation split a rune")
			}
		})
	}
}

func TestScriptConsole(t *testing.T) {
	var buf bytes.Buffer
	logger.SetOutput(&buf)
	defer logger.SetOutput(os.Stderr)

	script := `console.info("loaded");
function test(p) { console.warn("checking", p.age); return true }`
	test, err := NewScript(script, fixedClock)
	if err != nil {
		t.Fatalf("NewScript() error = %v", err)
	}

	p := personAged(30, roster.Male)
	p.Name = "Alan Turing"
	if !test(p) {
		t.Fatal("expected match")
	}

	out := buf.String()
	for _, want := range []string{`"msg":"loaded"`, `"msg":"checking 30"`, `"person":"Alan Turing"`, `"source":"javascript"`} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %s:\n%s", want, out)
		}
	}
}

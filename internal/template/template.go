// Package template renders person fields into strings using {{field}} placeholders
// with optional default values, e.g. `{{givenName}} <{{email | default: "n/a"}}>`.
package template

import (
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/islomar/rostersearch/internal/logger"
)

// Template syntax constants
const (
	// Prefix is the opening delimiter for template variables
	Prefix = "{{"
	// Suffix is the closing delimiter for template variables
	Suffix = "}}"
	// FieldPrefix is an optional qualifier stripped from variable paths
	FieldPrefix = "person."
)

// Error messages for template parsing
const (
	ErrMsgInvalidTemplateSyntax = "invalid template syntax"
	ErrMsgEmptyVariablePath     = "empty variable path"
	ErrMsgUnknownField          = "unknown field"
)

// varRegex matches template variables like {{email}} or {{email | default: "value"}}
// Group 1: variable path (e.g., "person.email")
// Group 2: optional default value clause including quotes
// Group 3: the default value itself (may be empty string)
var varRegex = regexp.MustCompile(`\{\{\s*([^|}]+?)(\s*\|\s*default:\s*"([^"]*)")?\s*\}\}`)

var emptyBracesRegex = regexp.MustCompile(`\{\{\s*\}\}`)

// Variable represents a parsed template variable
type Variable struct {
	FullMatch    string // The full matched string including {{ }}
	Field        string // The field name with FieldPrefix removed (e.g., "email")
	DefaultValue string // Default value if specified (empty string if not)
	HasDefault   bool   // Whether a default value was specified
}

// Template is a parsed template. It is immutable and safe for concurrent use.
type Template struct {
	text string
	vars []Variable
}

// HasVariables checks if a string contains template variables.
func HasVariables(s string) bool {
	return strings.Contains(s, Prefix) && strings.Contains(s, Suffix)
}

// Parse validates the syntax of text and extracts its variables.
func Parse(text string) (*Template, error) {
	if err := ValidateSyntax(text); err != nil {
		return nil, err
	}

	matches := varRegex.FindAllStringSubmatch(text, -1)
	vars := make([]Variable, 0, len(matches))
	for _, match := range matches {
		v := Variable{
			FullMatch: match[0],
			Field:     strings.TrimPrefix(strings.TrimSpace(match[1]), FieldPrefix),
		}
		if match[2] != "" {
			v.DefaultValue = match[3]
			v.HasDefault = true
		}
		vars = append(vars, v)
	}
	return &Template{text: text, vars: vars}, nil
}

// String returns the template source.
func (t *Template) String() string {
	return t.text
}

// Variables returns the parsed variables in order of appearance.
func (t *Template) Variables() []Variable {
	return append([]Variable(nil), t.vars...)
}

// CheckFields returns an error naming the first variable whose field is not in
// known and has no default.
func (t *Template) CheckFields(known []string) error {
	set := make(map[string]struct{}, len(known))
	for _, k := range known {
		set[k] = struct{}{}
	}
	for _, v := range t.vars {
		if _, ok := set[v.Field]; !ok && !v.HasDefault {
			return fmt.Errorf("%s %q (known: %s)", ErrMsgUnknownField, v.Field, strings.Join(known, ", "))
		}
	}
	return nil
}

// Execute replaces every variable with the matching value in fields.
// Missing or nil fields render as their default, or as an empty string.
func (t *Template) Execute(fields map[string]interface{}) string {
	if len(t.vars) == 0 {
		return t.text
	}

	result := t.text
	for _, v := range t.vars {
		result = strings.Replace(result, v.FullMatch, resolve(v, fields), 1)
	}
	return result
}

func resolve(v Variable, fields map[string]interface{}) string {
	value, found := fields[v.Field]
	if !found || value == nil {
		if v.HasDefault {
			return v.DefaultValue
		}
		logger.Warn("template variable missing, using empty string",
			slog.String("field", v.Field),
		)
		return ""
	}
	return ValueToString(value)
}

// ValueToString converts any value to its string representation.
func ValueToString(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case int:
		return strconv.Itoa(v)
	case float64:
		// integers without decimal point
		if v == float64(int64(v)) {
			return strconv.FormatInt(int64(v), 10)
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}

// ValidateSyntax validates that a template string has valid syntax.
// Returns an error if the syntax is invalid (e.g., unmatched braces).
func ValidateSyntax(text string) error {
	openCount := strings.Count(text, Prefix)
	closeCount := strings.Count(text, Suffix)

	if openCount != closeCount {
		return fmt.Errorf("%s: unmatched template delimiters (found %d '{{' and %d '}}')",
			ErrMsgInvalidTemplateSyntax, openCount, closeCount)
	}
	if openCount == 0 {
		return nil
	}

	if emptyBracesRegex.MatchString(text) {
		return fmt.Errorf("%s: %s", ErrMsgInvalidTemplateSyntax, ErrMsgEmptyVariablePath)
	}

	// "}}{{" balances the count but pairs nothing
	remainder := varRegex.ReplaceAllString(text, "")
	if strings.Contains(remainder, Prefix) || strings.Contains(remainder, Suffix) {
		return fmt.Errorf("%s: template delimiters must form valid {{...}} expressions (stray '{{' or '}}' found)",
			ErrMsgInvalidTemplateSyntax)
	}
	return nil
}

package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"strings"

	"gopkg.in/yaml.v3"
)

// Format names.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// ParseFile parses a configuration file, detecting JSON or YAML from the
// extension first and the content second.
func ParseFile(filepath string) *ParseResult {
	content, err := os.ReadFile(filepath)
	if err != nil {
		return &ParseResult{
			FilePath: filepath,
			Format:   DetectFormat(filepath),
			Errors: []ParseError{{
				Path:    filepath,
				Message: fmt.Sprintf("failed to read file: %v", err),
				Type:    ErrorTypeIO,
			}},
		}
	}

	format := DetectFormat(filepath)
	if format == "" {
		format = detectContentFormat(string(content))
	}

	var result *ParseResult
	switch format {
	case FormatJSON:
		result = ParseJSONString(string(content))
	case FormatYAML:
		result = ParseYAMLString(string(content))
	default:
		result = &ParseResult{Errors: []ParseError{{
			Message: "unable to detect configuration format: not valid JSON or YAML",
			Type:    ErrorTypeFormat,
		}}}
	}

	result.FilePath = filepath
	for i := range result.Errors {
		if result.Errors[i].Path == "" {
			result.Errors[i].Path = filepath
		}
	}
	return result
}

// ParseString parses configuration content. If format is empty it is detected
// from the content.
func ParseString(content, format string) *ParseResult {
	if format == "" {
		format = detectContentFormat(content)
	}
	switch format {
	case FormatJSON:
		return ParseJSONString(content)
	case FormatYAML:
		return ParseYAMLString(content)
	case "":
		return &ParseResult{Errors: []ParseError{{
			Message: "unable to detect configuration format: not valid JSON or YAML",
			Type:    ErrorTypeFormat,
		}}}
	default:
		return &ParseResult{Errors: []ParseError{{
			Message: fmt.Sprintf("unsupported format: %s", format),
			Type:    ErrorTypeFormat,
		}}}
	}
}

// ParseJSONString parses JSON content from a string.
// Numbers are kept as json.Number so schema validation sees exact values.
func ParseJSONString(content string) *ParseResult {
	result := &ParseResult{Format: FormatJSON}

	content = strings.TrimSpace(content)
	if content == "" {
		result.Errors = append(result.Errors, ParseError{
			Message: "empty content: expected JSON object",
			Type:    ErrorTypeSyntax,
		})
		return result
	}

	dec := json.NewDecoder(strings.NewReader(content))
	dec.UseNumber()

	var data interface{}
	if err := dec.Decode(&data); err != nil {
		result.Errors = append(result.Errors, parseJSONError(err, content))
		return result
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		result.Errors = append(result.Errors, ParseError{
			Message: "unexpected content after JSON document",
			Type:    ErrorTypeSyntax,
		})
		return result
	}

	return withObject(result, data, "JSON object")
}

// ParseYAMLString parses YAML content from a string.
// The decoded document is normalized to JSON-compatible values, with numbers
// as json.Number.
func ParseYAMLString(content string) *ParseResult {
	result := &ParseResult{Format: FormatYAML}

	if strings.TrimSpace(content) == "" {
		result.Errors = append(result.Errors, ParseError{
			Message: "empty content: expected YAML document",
			Type:    ErrorTypeSyntax,
		})
		return result
	}

	var data interface{}
	if err := yaml.Unmarshal([]byte(content), &data); err != nil {
		result.Errors = append(result.Errors, parseYAMLError(err))
		return result
	}

	normalized, err := normalize(data)
	if err != nil {
		result.Errors = append(result.Errors, ParseError{
			Message: fmt.Sprintf("unsupported YAML value: %v", err),
			Type:    ErrorTypeFormat,
		})
		return result
	}

	return withObject(result, normalized, "YAML mapping")
}

// withObject stores data in result when it is an object.
func withObject(result *ParseResult, data interface{}, want string) *ParseResult {
	if data == nil {
		// null document or comments only: valid syntax but not a usable config
		return result
	}
	dataMap, ok := data.(map[string]interface{})
	if !ok {
		result.Errors = append(result.Errors, ParseError{
			Message: fmt.Sprintf("invalid configuration: expected %s, got %T", want, data),
			Type:    ErrorTypeFormat,
		})
		return result
	}
	result.Data = dataMap
	return result
}

// normalize converts a YAML-decoded value into the shape encoding/json would
// produce with UseNumber. yaml.v3 already keeps timestamps as strings when
// decoding into interface{}.
func normalize(v interface{}) (interface{}, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var out interface{}
	if err := dec.Decode(&out); err != nil {
		return nil, err
	}
	return out, nil
}

// parseJSONError extracts detailed error information from a JSON decoding error.
func parseJSONError(err error, content string) ParseError {
	parseErr := ParseError{
		Message: err.Error(),
		Type:    ErrorTypeSyntax,
	}

	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		parseErr.Offset = syntaxErr.Offset
		parseErr.Line, parseErr.Column = offsetToLineColumn(content, syntaxErr.Offset)
		parseErr.Message = fmt.Sprintf("JSON syntax error at offset %d: %s", syntaxErr.Offset, syntaxErr.Error())
	}

	if errors.Is(err, io.ErrUnexpectedEOF) {
		parseErr.Offset = int64(len(content))
		parseErr.Line, parseErr.Column = offsetToLineColumn(content, parseErr.Offset)
		parseErr.Message = "JSON syntax error: unexpected end of input"
	}

	return parseErr
}

// parseYAMLError extracts detailed error information from a YAML decoding error.
func parseYAMLError(err error) ParseError {
	parseErr := ParseError{
		Message: err.Error(),
		Type:    ErrorTypeSyntax,
	}

	var typeErr *yaml.TypeError
	if errors.As(err, &typeErr) {
		parseErr.Message = fmt.Sprintf("YAML type error: %s", strings.Join(typeErr.Errors, "; "))
	}

	// yaml.v3 reports locations as "yaml: line X: ..."
	var line int
	if _, scanErr := fmt.Sscanf(err.Error(), "yaml: line %d:", &line); scanErr == nil {
		parseErr.Line = line
	}

	return parseErr
}

// offsetToLineColumn converts a byte offset to line and column numbers (1-based).
func offsetToLineColumn(content string, offset int64) (line, column int) {
	if offset <= 0 {
		return 1, 1
	}

	line = 1
	column = 1
	for i := int64(0); i < offset && i < int64(len(content)); i++ {
		if content[i] == '\n' {
			line++
			column = 1
		} else {
			column++
		}
	}
	return line, column
}

// DetectFormat detects the configuration format from file extension.
// Returns "json", "yaml", or empty string if format cannot be detected.
func DetectFormat(filepath string) string {
	switch strings.ToLower(path.Ext(filepath)) {
	case ".json":
		return FormatJSON
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return ""
	}
}

// IsJSON checks if the content appears to be JSON format.
func IsJSON(content string) bool {
	content = strings.TrimSpace(content)
	return strings.HasPrefix(content, "{") || strings.HasPrefix(content, "[")
}

// IsYAML checks if the content parses as a non-empty YAML document.
// JSON is also valid YAML, so this may return true for JSON content.
func IsYAML(content string) bool {
	if strings.TrimSpace(content) == "" {
		return false
	}
	var data interface{}
	err := yaml.Unmarshal([]byte(content), &data)
	return err == nil && data != nil
}

func detectContentFormat(content string) string {
	switch {
	case IsJSON(content):
		return FormatJSON
	case IsYAML(content):
		return FormatYAML
	default:
		return ""
	}
}

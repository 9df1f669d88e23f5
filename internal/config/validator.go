package config

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

//go:embed schema/criteria-schema.json
var criteriaSchemaJSON []byte

//go:embed schema/roster-schema.json
var rosterSchemaJSON []byte

const (
	criteriaSchemaURL = "https://rostersearch.dev/schemas/criteria/v1/criteria-schema.json"
	rosterSchemaURL   = "https://rostersearch.dev/schemas/roster/v1/roster-schema.json"
)

// lazySchema compiles an embedded schema once. Thread-safe via sync.Once.
type lazySchema struct {
	url  string
	raw  []byte
	once sync.Once
	s    *jsonschema.Schema
	err  error
}

var (
	criteriaSchema = &lazySchema{url: criteriaSchemaURL, raw: criteriaSchemaJSON}
	rosterSchema   = &lazySchema{url: rosterSchemaURL, raw: rosterSchemaJSON}
)

func (l *lazySchema) get() (*jsonschema.Schema, error) {
	l.once.Do(func() {
		var schemaDoc interface{}
		if err := json.Unmarshal(l.raw, &schemaDoc); err != nil {
			l.err = fmt.Errorf("failed to parse embedded schema: %w", err)
			return
		}

		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource(l.url, schemaDoc); err != nil {
			l.err = fmt.Errorf("failed to add schema resource: %w", err)
			return
		}

		l.s, l.err = compiler.Compile(l.url)
		if l.err != nil {
			l.err = fmt.Errorf("failed to compile schema: %w", l.err)
		}
	})
	return l.s, l.err
}

// GetEmbeddedSchema returns the embedded schema for kind, or nil.
func GetEmbeddedSchema(kind Kind) []byte {
	switch kind {
	case KindCriteria:
		return criteriaSchemaJSON
	case KindRoster:
		return rosterSchemaJSON
	default:
		return nil
	}
}

// DetectKind reports which document a parsed configuration holds, based on
// its top-level key.
func DetectKind(data map[string]interface{}) Kind {
	if _, ok := data["criteria"]; ok {
		return KindCriteria
	}
	if _, ok := data["people"]; ok {
		return KindRoster
	}
	return KindUnknown
}

// ValidateCriteria validates parsed data against the criteria schema.
func ValidateCriteria(data map[string]interface{}) *ValidationResult {
	return validate(data, criteriaSchema)
}

// ValidateRoster validates parsed data against the roster schema.
func ValidateRoster(data map[string]interface{}) *ValidationResult {
	return validate(data, rosterSchema)
}

// Validate validates data against the schema matching its detected kind.
func Validate(data map[string]interface{}) *ValidationResult {
	switch DetectKind(data) {
	case KindCriteria:
		return ValidateCriteria(data)
	case KindRoster:
		return ValidateRoster(data)
	}
	if len(data) == 0 {
		return validate(data, nil)
	}
	return &ValidationResult{
		Valid: false,
		Errors: []ValidationError{{
			Path:    "/",
			Type:    "required",
			Message: "unknown document: expected a top-level 'criteria' or 'people' key",
		}},
	}
}

func validate(data map[string]interface{}, ls *lazySchema) *ValidationResult {
	result := &ValidationResult{Valid: true}

	if data == nil {
		result.Valid = false
		result.Errors = append(result.Errors, ValidationError{
			Path:    "/",
			Type:    "required",
			Message: "configuration data is nil",
		})
		return result
	}

	if len(data) == 0 {
		result.Valid = false
		result.Errors = append(result.Errors, ValidationError{
			Path:    "/",
			Type:    "required",
			Message: "configuration data is empty",
		})
		return result
	}

	schema, err := ls.get()
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, ValidationError{
			Path:    "/",
			Type:    "schema",
			Message: fmt.Sprintf("failed to load schema: %v", err),
		})
		return result
	}

	validationErr := schema.Validate(data)
	if validationErr == nil {
		return result
	}

	result.Valid = false
	if detailedErr, ok := validationErr.(*jsonschema.ValidationError); ok {
		result.Errors = convertValidationErrors(detailedErr)
	}
	if len(result.Errors) == 0 {
		result.Errors = append(result.Errors, ValidationError{
			Path:    "/",
			Type:    "validation",
			Message: validationErr.Error(),
		})
	}
	return result
}

// convertValidationErrors flattens the leaf causes of a jsonschema error.
func convertValidationErrors(err *jsonschema.ValidationError) []ValidationError {
	if len(err.Causes) == 0 {
		msg := err.Error()
		if err.ErrorKind != nil {
			msg = err.ErrorKind.LocalizedString(printer)
		}
		return []ValidationError{{
			Path:    formatInstanceLocation(err.InstanceLocation),
			Type:    extractErrorType(msg),
			Message: msg,
		}}
	}

	var errs []ValidationError
	for _, cause := range err.Causes {
		errs = append(errs, convertValidationErrors(cause)...)
	}
	return errs
}

// formatInstanceLocation formats the instance location as a JSON pointer.
func formatInstanceLocation(loc []string) string {
	if len(loc) == 0 {
		return "/"
	}
	return "/" + strings.Join(loc, "/")
}

// extractErrorType extracts a simplified error type from a validation message.
func extractErrorType(msg string) string {
	msg = strings.ToLower(msg)

	switch {
	case strings.Contains(msg, "missing propert"), strings.Contains(msg, "required"):
		return "required"
	case strings.Contains(msg, "additional propert"):
		return "additionalProperties"
	case strings.Contains(msg, "does not match pattern"):
		return "pattern"
	case strings.Contains(msg, "value must be one of"):
		return "enum"
	case strings.Contains(msg, "got ") && strings.Contains(msg, "want "):
		return "type"
	case strings.Contains(msg, "minimum") || strings.Contains(msg, "maximum") || strings.Contains(msg, "length"):
		return "range"
	default:
		return "validation"
	}
}

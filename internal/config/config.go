package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/islomar/rostersearch/pkg/roster"
)

// ParseConfig parses a file and validates it against the schema of its
// detected kind. The returned Result is never nil.
func ParseConfig(filepath string) *Result {
	parsed := ParseFile(filepath)
	result := &Result{
		FilePath:    filepath,
		Format:      parsed.Format,
		ParseErrors: parsed.Errors,
	}
	if !parsed.IsValid() {
		return result
	}

	result.Data = parsed.Data
	result.Kind = DetectKind(parsed.Data)
	result.ValidationErrors = Validate(parsed.Data).Errors
	return result
}

// LoadCriteriaFile parses, validates and decodes a criteria file.
// An invalid file yields a *ResultError.
func LoadCriteriaFile(filepath string) (*CriteriaFile, error) {
	result, err := loadKind(filepath, KindCriteria)
	if err != nil {
		return nil, err
	}

	var file CriteriaFile
	if err := decode(result.Data, &file); err != nil {
		return nil, fmt.Errorf("decoding criteria file %s: %w", filepath, err)
	}
	return &file, nil
}

// LoadRosterFile parses, validates and decodes a roster file. Every person is
// checked with roster.NewPerson against now; the first invalid entry fails the
// load with its index.
func LoadRosterFile(filepath string, now time.Time) ([]roster.Person, error) {
	result, err := loadKind(filepath, KindRoster)
	if err != nil {
		return nil, err
	}

	var file RosterFile
	if err := decode(result.Data, &file); err != nil {
		return nil, fmt.Errorf("decoding roster file %s: %w", filepath, err)
	}

	people := make([]roster.Person, 0, len(file.People))
	for i, p := range file.People {
		person, err := roster.NewPerson(p, now)
		if err != nil {
			return nil, fmt.Errorf("%s: people[%d]: %w", filepath, i, err)
		}
		people = append(people, person)
	}
	return people, nil
}

func loadKind(filepath string, want Kind) (*Result, error) {
	result := ParseConfig(filepath)
	if len(result.ParseErrors) == 0 && result.Kind != want && len(result.ValidationErrors) == 0 {
		result.ValidationErrors = append(result.ValidationErrors, ValidationError{
			Path:    "/",
			Type:    "required",
			Message: fmt.Sprintf("expected a %s file, got %s", want, kindName(result.Kind)),
		})
	}
	if !result.IsValid() {
		return nil, &ResultError{Result: result}
	}
	return result, nil
}

func kindName(k Kind) string {
	if k == KindUnknown {
		return "an unknown document"
	}
	return "a " + string(k) + " file"
}

// decode maps validated generic data onto a typed struct.
func decode(data map[string]interface{}, v interface{}) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

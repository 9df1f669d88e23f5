// Package roster provides the public record types filtered by the search runtime.
// This package is intended to be importable by external projects that build
// their own rosters and criteria.
package roster

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/asaskevich/govalidator"
	"gopkg.in/yaml.v3"

	"github.com/islomar/rostersearch/internal/errhandling"
)

// DateLayout is the layout used for birth dates in files and output.
const DateLayout = "2006-01-02"

// Gender is the enumerated gender of a Person.
type Gender string

// Supported genders.
const (
	Male   Gender = "MALE"
	Female Gender = "FEMALE"
)

// ParseGender parses a gender name case-insensitively.
func ParseGender(s string) (Gender, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case string(Male):
		return Male, nil
	case string(Female):
		return Female, nil
	default:
		return "", errhandling.NewInvalidFieldError("gender", s, "must be MALE or FEMALE")
	}
}

// Valid reports whether g is one of the supported genders.
func (g Gender) Valid() bool {
	return g == Male || g == Female
}

func (g Gender) String() string {
	return string(g)
}

// UnmarshalText accepts any casing of a supported gender.
func (g *Gender) UnmarshalText(text []byte) error {
	parsed, err := ParseGender(string(text))
	if err != nil {
		return err
	}
	*g = parsed
	return nil
}

// MarshalText encodes the upper-case gender name.
func (g Gender) MarshalText() ([]byte, error) {
	return []byte(g), nil
}

// Person is the record being searched.
// Treat it as immutable once built; NewPerson validates a candidate value.
type Person struct {
	// Name is the display name; derived from GivenName and FamilyName when empty
	Name string `json:"name,omitempty" yaml:"name,omitempty"`

	// BirthDate is stored as a UTC calendar date
	BirthDate time.Time `json:"-" yaml:"-"`

	// Email is the contact address
	Email string `json:"email,omitempty" yaml:"email,omitempty"`

	// Phone is the contact number, free-form
	Phone string `json:"phone,omitempty" yaml:"phone,omitempty"`

	// Gender is MALE or FEMALE
	Gender Gender `json:"gender" yaml:"gender"`

	// FamilyName is the surname
	FamilyName string `json:"familyName,omitempty" yaml:"familyName,omitempty"`

	// GivenName is the first name
	GivenName string `json:"givenName,omitempty" yaml:"givenName,omitempty"`
}

// NewPerson validates p against now and returns a normalized copy.
// Returns an *errhandling.InvalidFieldError when the birth date is missing or in
// the future, the gender is unknown, or a non-empty email is malformed.
func NewPerson(p Person, now time.Time) (Person, error) {
	if p.BirthDate.IsZero() {
		return Person{}, errhandling.NewInvalidFieldError("birthDate", "", "birth date is required")
	}

	p.BirthDate = dateOf(p.BirthDate)
	if p.BirthDate.After(dateOf(now)) {
		return Person{}, errhandling.NewInvalidFieldError("birthDate", p.BirthDate.Format(DateLayout), "birth date is in the future")
	}

	if !p.Gender.Valid() {
		return Person{}, errhandling.NewInvalidFieldError("gender", string(p.Gender), "must be MALE or FEMALE")
	}

	if p.Email != "" {
		if !govalidator.StringLength(p.Email, "3", "254") || !govalidator.IsEmail(p.Email) {
			return Person{}, errhandling.NewInvalidFieldError("email", p.Email, "malformed address")
		}
	}

	if p.Name == "" {
		p.Name = p.WesternName()
	}

	return p, nil
}

// Age returns the number of whole calendar years between the birth date and now.
// A birthday not yet reached in now's year does not count. Future birth dates
// yield 0.
func (p Person) Age(now time.Time) int {
	if p.BirthDate.IsZero() {
		return 0
	}

	birth := dateOf(p.BirthDate)
	today := dateOf(now)
	if birth.After(today) {
		return 0
	}

	age := today.Year() - birth.Year()
	if today.Month() < birth.Month() || (today.Month() == birth.Month() && today.Day() < birth.Day()) {
		age--
	}
	return age
}

// WesternName formats the name as "Given Family".
func (p Person) WesternName() string {
	return joinNonEmpty(p.GivenName, p.FamilyName)
}

// EasternName formats the name as "Family Given".
func (p Person) EasternName() string {
	return joinNonEmpty(p.FamilyName, p.GivenName)
}

// String returns the display name.
func (p Person) String() string {
	if p.Name != "" {
		return p.Name
	}
	return p.WesternName()
}

// Env exposes the person as a field map for expression and script criteria.
// Keys use the same camelCase names as the roster file format.
func (p Person) Env(now time.Time) map[string]interface{} {
	birthDate := ""
	if !p.BirthDate.IsZero() {
		birthDate = p.BirthDate.Format(DateLayout)
	}
	return map[string]interface{}{
		"name":       p.String(),
		"givenName":  p.GivenName,
		"familyName": p.FamilyName,
		"email":      p.Email,
		"phone":      p.Phone,
		"gender":     string(p.Gender),
		"age":        p.Age(now),
		"birthDate":  birthDate,
	}
}

// personAlias avoids recursion in the custom (un)marshalers.
type personAlias Person

type personWire struct {
	personAlias
	BirthDate string `json:"birthDate,omitempty" yaml:"birthDate,omitempty"`
}

// MarshalJSON encodes BirthDate as a YYYY-MM-DD string.
func (p Person) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.toWire())
}

// UnmarshalJSON decodes BirthDate from a YYYY-MM-DD string.
func (p *Person) UnmarshalJSON(data []byte) error {
	var w personWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	return p.fromWire(w)
}

// MarshalYAML encodes BirthDate as a YYYY-MM-DD string.
func (p Person) MarshalYAML() (interface{}, error) {
	return yamlPerson{
		Name:       p.Name,
		GivenName:  p.GivenName,
		FamilyName: p.FamilyName,
		BirthDate:  p.toWire().BirthDate,
		Gender:     p.Gender,
		Email:      p.Email,
		Phone:      p.Phone,
	}, nil
}

// UnmarshalYAML decodes BirthDate from a YYYY-MM-DD string.
func (p *Person) UnmarshalYAML(value *yaml.Node) error {
	var y yamlPerson
	if err := value.Decode(&y); err != nil {
		return err
	}
	return p.fromWire(personWire{
		personAlias: personAlias{
			Name:       y.Name,
			GivenName:  y.GivenName,
			FamilyName: y.FamilyName,
			Gender:     y.Gender,
			Email:      y.Email,
			Phone:      y.Phone,
		},
		BirthDate: y.BirthDate,
	})
}

// yamlPerson flattens the wire form; yaml.v3 does not inline embedded structs
// without an explicit tag.
type yamlPerson struct {
	Name       string `yaml:"name,omitempty"`
	GivenName  string `yaml:"givenName,omitempty"`
	FamilyName string `yaml:"familyName,omitempty"`
	BirthDate  string `yaml:"birthDate,omitempty"`
	Gender     Gender `yaml:"gender"`
	Email      string `yaml:"email,omitempty"`
	Phone      string `yaml:"phone,omitempty"`
}

func (p Person) toWire() personWire {
	w := personWire{personAlias: personAlias(p)}
	if !p.BirthDate.IsZero() {
		w.BirthDate = p.BirthDate.Format(DateLayout)
	}
	return w
}

func (p *Person) fromWire(w personWire) error {
	*p = Person(w.personAlias)
	if w.BirthDate == "" {
		p.BirthDate = time.Time{}
		return nil
	}
	birth, err := ParseDate(w.BirthDate)
	if err != nil {
		return err
	}
	p.BirthDate = birth
	return nil
}

// ParseDate parses a YYYY-MM-DD date as a UTC calendar date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, strings.TrimSpace(s), time.UTC)
	if err != nil {
		return time.Time{}, errhandling.NewInvalidFieldError("birthDate", s, fmt.Sprintf("expected %s", DateLayout))
	}
	return t, nil
}

// dateOf returns t's calendar date, read in t's own location, as UTC midnight.
func dateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func joinNonEmpty(parts ...string) string {
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if part != "" {
			out = append(out, part)
		}
	}
	return strings.Join(out, " ")
}

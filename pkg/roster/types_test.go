package roster

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/islomar/rostersearch/internal/errhandling"
)

var refDate = time.Date(2026, time.October, 15, 12, 0, 0, 0, time.UTC)

var tokyo = time.FixedZone("UTC+9", 9*3600)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestAge(t *testing.T) {
	tests := []struct {
		name  string
		birth time.Time
		now   time.Time
		want  int
	}{
		{"birthday today", date(2000, time.October, 15), refDate, 26},
		{"day before birthday", date(2000, time.October, 16), refDate, 25},
		{"birthday passed", date(2000, time.January, 1), refDate, 26},
		{"born today", date(2026, time.October, 15), refDate, 0},
		{"future birth date", date(2027, time.January, 1), refDate, 0},
		{"zero birth date", time.Time{}, refDate, 0},
		{"leap day in non-leap year before march", date(2000, time.February, 29), date(2027, time.February, 28), 26},
		{"leap day in non-leap year on march 1", date(2000, time.February, 29), date(2027, time.March, 1), 27},
		{"non-UTC now uses its own calendar date", date(2000, time.October, 16), time.Date(2026, time.October, 15, 23, 30, 0, 0, time.FixedZone("UTC-2", -2*3600)), 25},
		{"birth at local midnight east of UTC", time.Date(2000, time.October, 16, 0, 0, 0, 0, tokyo), refDate, 25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Person{BirthDate: tt.birth}
			if got := p.Age(tt.now); got != tt.want {
				t.Errorf("Age() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestNewPerson(t *testing.T) {
	valid := Person{
		GivenName:  "Ada",
		FamilyName: "Lovelace",
		BirthDate:  time.Date(1990, time.December, 10, 15, 4, 5, 0, time.UTC),
		Gender:     Female,
		Email:      "ada@example.com",
	}

	t.Run("valid person is normalized", func(t *testing.T) {
		p, err := NewPerson(valid, refDate)
		if err != nil {
			t.Fatalf("NewPerson() error = %v", err)
		}
		if p.Name != "Ada Lovelace" {
			t.Errorf("Name = %q, want derived western name", p.Name)
		}
		if !p.BirthDate.Equal(date(1990, time.December, 10)) {
			t.Errorf("BirthDate = %v, want truncated date", p.BirthDate)
		}
	})

	tests := []struct {
		name      string
		mutate    func(p *Person)
		wantField string
	}{
		{"missing birth date", func(p *Person) { p.BirthDate = time.Time{} }, "birthDate"},
		{"future birth date", func(p *Person) { p.BirthDate = date(2030, time.January, 1) }, "birthDate"},
		{"unknown gender", func(p *Person) { p.Gender = "OTHER" }, "gender"},
		{"empty gender", func(p *Person) { p.Gender = "" }, "gender"},
		{"malformed email", func(p *Person) { p.Email = "not-an-email" }, "email"},
		{"email without domain", func(p *Person) { p.Email = "ada@" }, "email"},
		{"display name email", func(p *Person) { p.Email = "Ada <ada@example.com>" }, "email"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			candidate := valid
			tt.mutate(&candidate)

			_, err := NewPerson(candidate, refDate)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !errors.Is(err, errhandling.ErrInvalidField) {
				t.Errorf("error %v should match ErrInvalidField", err)
			}
			var fieldErr *errhandling.InvalidFieldError
			if !errors.As(err, &fieldErr) {
				t.Fatalf("error %T is not *InvalidFieldError", err)
			}
			if fieldErr.Field != tt.wantField {
				t.Errorf("Field = %q, want %q", fieldErr.Field, tt.wantField)
			}
		})
	}
}

func TestNewPerson_KeepsLocalCalendarDate(t *testing.T) {
	p, err := NewPerson(Person{
		BirthDate: time.Date(1990, time.December, 10, 0, 0, 0, 0, tokyo),
		Gender:    Female,
	}, refDate)
	if err != nil {
		t.Fatalf("NewPerson() error = %v", err)
	}
	if got := p.BirthDate.Format(DateLayout); got != "1990-12-10" {
		t.Errorf("BirthDate = %s, want 1990-12-10", got)
	}
	if p.BirthDate.Location() != time.UTC {
		t.Errorf("BirthDate location = %v, want UTC", p.BirthDate.Location())
	}
}

func TestParseGender(t *testing.T) {
	tests := []struct {
		in      string
		want    Gender
		wantErr bool
	}{
		{"MALE", Male, false},
		{"male", Male, false},
		{" Female ", Female, false},
		{"", "", true},
		{"unknown", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseGender(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseGender(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseGender(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNames(t *testing.T) {
	p := Person{GivenName: "Taro", FamilyName: "Yamada"}
	if got := p.WesternName(); got != "Taro Yamada" {
		t.Errorf("WesternName() = %q", got)
	}
	if got := p.EasternName(); got != "Yamada Taro" {
		t.Errorf("EasternName() = %q", got)
	}
	if got := p.String(); got != "Taro Yamada" {
		t.Errorf("String() without Name = %q", got)
	}

	onlyGiven := Person{GivenName: "Cher"}
	if got := onlyGiven.EasternName(); got != "Cher" {
		t.Errorf("EasternName() with missing family name = %q", got)
	}
}

func TestEnv(t *testing.T) {
	p := Person{
		GivenName:  "Ada",
		FamilyName: "Lovelace",
		BirthDate:  date(1990, time.December, 10),
		Gender:     Female,
	}
	env := p.Env(refDate)

	if env["age"] != 35 {
		t.Errorf("env[age] = %v, want 35", env["age"])
	}
	if env["gender"] != "FEMALE" {
		t.Errorf("env[gender] = %v", env["gender"])
	}
	if env["birthDate"] != "1990-12-10" {
		t.Errorf("env[birthDate] = %v", env["birthDate"])
	}
	if env["name"] != "Ada Lovelace" {
		t.Errorf("env[name] = %v", env["name"])
	}
}

func TestPersonJSON(t *testing.T) {
	in := `{"givenName":"Ada","familyName":"Lovelace","birthDate":"1990-12-10","gender":"female","email":"ada@example.com"}`

	var p Person
	if err := json.Unmarshal([]byte(in), &p); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if p.Gender != Female {
		t.Errorf("Gender = %q, want FEMALE", p.Gender)
	}
	if !p.BirthDate.Equal(date(1990, time.December, 10)) {
		t.Errorf("BirthDate = %v", p.BirthDate)
	}

	out, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if !strings.Contains(string(out), `"birthDate":"1990-12-10"`) {
		t.Errorf("marshaled JSON missing birth date: %s", out)
	}
	if !strings.Contains(string(out), `"gender":"FEMALE"`) {
		t.Errorf("marshaled JSON missing upper-case gender: %s", out)
	}

	bad := `{"givenName":"Ada","birthDate":"10/12/1990","gender":"FEMALE"}`
	if err := json.Unmarshal([]byte(bad), &p); !errors.Is(err, errhandling.ErrInvalidField) {
		t.Errorf("bad date error = %v, want ErrInvalidField", err)
	}
}

func TestPersonYAML(t *testing.T) {
	in := "givenName: Alan\nfamilyName: Turing\nbirthDate: 1912-06-23\ngender: MALE\n"

	var p Person
	if err := yaml.Unmarshal([]byte(in), &p); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if !p.BirthDate.Equal(date(1912, time.June, 23)) {
		t.Errorf("BirthDate = %v", p.BirthDate)
	}
	if p.Gender != Male {
		t.Errorf("Gender = %q", p.Gender)
	}

	out, err := yaml.Marshal(p)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if !strings.Contains(string(out), "birthDate: \"1912-06-23\"") && !strings.Contains(string(out), "birthDate: 1912-06-23") {
		t.Errorf("marshaled YAML missing birth date:\n%s", out)
	}
}

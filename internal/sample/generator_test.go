package sample

import (
	"regexp"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/islomar/rostersearch/pkg/roster"
)

var referenceDate = time.Date(2026, time.October, 15, 9, 30, 0, 0, time.UTC)

func TestPerson(t *testing.T) {
	g := New(referenceDate, WithSeed(1))
	p := g.Person()

	phone := regexp.MustCompile(`^\(555\) [1-9][0-9]{2}-[0-9]{4}$`)

	tests := []struct {
		name  string
		check func() bool
	}{
		{"GivenName non-empty", func() bool { return p.GivenName != "" }},
		{"FamilyName non-empty", func() bool { return p.FamilyName != "" }},
		{"Name is western", func() bool { return p.Name == p.GivenName+" "+p.FamilyName }},
		{"Gender valid", func() bool { return p.Gender.Valid() }},
		{"Email domain", func() bool { return strings.HasSuffix(p.Email, "@"+defaultDomain) }},
		{"Email local part", func() bool { return strings.HasPrefix(p.Email, strings.ToLower(p.GivenName)+".") }},
		{"Phone format", func() bool { return phone.MatchString(p.Phone) }},
		{"BirthDate is midnight UTC", func() bool {
			return p.BirthDate.Location() == time.UTC && p.BirthDate.Hour() == 0
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !tt.check() {
				t.Errorf("check failed for person: %+v", p)
			}
		})
	}
}

func TestPerson_PassesValidation(t *testing.T) {
	g := New(referenceDate, WithSeed(7))
	for i, p := range g.Roster(200) {
		if _, err := roster.NewPerson(p, referenceDate); err != nil {
			t.Fatalf("person %d failed validation: %v (%+v)", i, err, p)
		}
	}
}

func TestNameMatchesGender(t *testing.T) {
	g := New(referenceDate, WithSeed(3))
	for _, p := range g.Roster(100) {
		names := maleNames
		if p.Gender == roster.Female {
			names = femaleNames
		}
		if !slices.Contains(names, p.GivenName) {
			t.Errorf("%s given name %q not in %s list", p.Name, p.GivenName, p.Gender)
		}
	}
}

func TestWithAgeRange(t *testing.T) {
	tests := []struct {
		name     string
		now      time.Time
		min, max int
	}{
		{"default day", referenceDate, 18, 25},
		{"single age", referenceDate, 40, 40},
		{"leap day", time.Date(2024, time.February, 29, 0, 0, 0, 0, time.UTC), 1, 3},
		{"new year", time.Date(2027, time.January, 1, 0, 0, 0, 0, time.UTC), 0, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := New(tt.now, WithSeed(11), WithAgeRange(tt.min, tt.max))
			for _, p := range g.Roster(300) {
				if age := p.Age(tt.now); age < tt.min || age > tt.max {
					t.Fatalf("age %d outside [%d, %d] (birth %s)", age, tt.min, tt.max, p.BirthDate.Format(roster.DateLayout))
				}
			}
		})
	}
}

func TestWithAgeRange_IgnoresInvalid(t *testing.T) {
	g := New(referenceDate, WithAgeRange(30, 20))
	if g.minAge != DefaultMinAge || g.maxAge != DefaultMaxAge {
		t.Errorf("invalid range applied: [%d, %d]", g.minAge, g.maxAge)
	}
}

func TestWithSeed_Reproducible(t *testing.T) {
	a := New(referenceDate, WithSeed(42)).Roster(20)
	b := New(referenceDate, WithSeed(42)).Roster(20)
	c := New(referenceDate, WithSeed(43)).Roster(20)

	if !slices.Equal(a, b) {
		t.Error("same seed should produce the same roster")
	}
	if slices.Equal(a, c) {
		t.Error("different seeds should produce different rosters")
	}
}

func TestWithDomain(t *testing.T) {
	p := New(referenceDate, WithDomain("corp.test")).Person()
	if !strings.HasSuffix(p.Email, "@corp.test") {
		t.Errorf("expected custom domain, got %q", p.Email)
	}
}

func TestSeq(t *testing.T) {
	g := New(referenceDate, WithSeed(5))

	count := 0
	for range g.Seq(10) {
		count++
		if count == 4 {
			break
		}
	}
	if count != 4 {
		t.Errorf("early break: got %d", count)
	}

	if got := New(referenceDate, WithSeed(5)).Roster(-1); len(got) != 0 {
		t.Errorf("negative count should yield an empty roster, got %d", len(got))
	}
}

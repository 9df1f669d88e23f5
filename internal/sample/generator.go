// Package sample generates synthetic rosters for the command-line harness.
package sample

import (
	"fmt"
	"iter"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/islomar/rostersearch/pkg/roster"
)

// Default age range of generated persons.
const (
	DefaultMinAge = 10
	DefaultMaxAge = 70
)

// Generator produces random persons. A seeded generator is deterministic
// for a given reference date. Not safe for concurrent use.
type Generator struct {
	rng    *rand.Rand
	now    time.Time
	minAge int
	maxAge int
	domain string
}

// Option configures a Generator.
type Option func(*Generator)

// WithSeed makes the output reproducible.
func WithSeed(seed uint64) Option {
	return func(g *Generator) {
		g.rng = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	}
}

// WithAgeRange bounds generated ages to [minAge, maxAge]. Invalid ranges are
// ignored.
func WithAgeRange(minAge, maxAge int) Option {
	return func(g *Generator) {
		if minAge >= 0 && maxAge >= minAge {
			g.minAge, g.maxAge = minAge, maxAge
		}
	}
}

// WithDomain sets the email domain.
func WithDomain(domain string) Option {
	return func(g *Generator) {
		if domain != "" {
			g.domain = domain
		}
	}
}

// New creates a generator whose ages are relative to now.
func New(now time.Time, opts ...Option) *Generator {
	g := &Generator{
		now:    now.UTC(),
		minAge: DefaultMinAge,
		maxAge: DefaultMaxAge,
		domain: defaultDomain,
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.rng == nil {
		g.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return g
}

// Person produces one random person. The result always passes
// roster.NewPerson for the generator's reference date.
func (g *Generator) Person() roster.Person {
	gender := roster.Male
	given := pick(g.rng, maleNames)
	if g.rng.IntN(2) == 1 {
		gender = roster.Female
		given = pick(g.rng, femaleNames)
	}
	family := pick(g.rng, familyNames)

	p := roster.Person{
		GivenName:  given,
		FamilyName: family,
		Gender:     gender,
		BirthDate:  g.birthDate(),
		Email:      g.email(given, family),
		Phone:      g.phone(),
	}
	p.Name = p.WesternName()
	return p
}

// Roster produces n random persons.
func (g *Generator) Roster(n int) []roster.Person {
	if n < 0 {
		n = 0
	}
	people := make([]roster.Person, 0, n)
	for i := 0; i < n; i++ {
		people = append(people, g.Person())
	}
	return people
}

// Seq yields n random persons lazily.
func (g *Generator) Seq(n int) iter.Seq[roster.Person] {
	return func(yield func(roster.Person) bool) {
		for i := 0; i < n; i++ {
			if !yield(g.Person()) {
				return
			}
		}
	}
}

// birthDate picks a date whose age on the reference date is within range.
func (g *Generator) birthDate() time.Time {
	today := time.Date(g.now.Year(), g.now.Month(), g.now.Day(), 0, 0, 0, 0, time.UTC)
	age := g.minAge + g.rng.IntN(g.maxAge-g.minAge+1)

	// latest birth date for this age is today minus age years; earliest is
	// the day after today minus age+1 years
	latest := today.AddDate(-age, 0, 0)
	for latest.Month() != today.Month() {
		// Feb 29 normalized into March
		latest = latest.AddDate(0, 0, -1)
	}
	earliest := today.AddDate(-age-1, 0, 1)
	span := int(latest.Sub(earliest).Hours() / 24)
	return earliest.AddDate(0, 0, g.rng.IntN(span+1))
}

// email derives an address like ada.lovelace42@example.com.
func (g *Generator) email(given, family string) string {
	local := strings.ToLower(given + "." + family)
	return fmt.Sprintf("%s%d@%s", local, g.rng.IntN(100), g.domain)
}

// phone generates a US fictional phone number: (555) XXX-XXXX.
func (g *Generator) phone() string {
	// second segment 100-999 to look realistic
	prefix := 100 + g.rng.IntN(900)
	line := g.rng.IntN(10000)
	return fmt.Sprintf("(555) %03d-%04d", prefix, line)
}

func pick(rng *rand.Rand, s []string) string {
	return s[rng.IntN(len(s))]
}

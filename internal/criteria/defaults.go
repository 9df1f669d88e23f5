package criteria

import (
	"github.com/islomar/rostersearch/pkg/roster"
)

// Default criterion names.
const (
	AdultDriver   = "adult-driver"
	DraftEligible = "draft-eligible"
	PilotEligible = "pilot-eligible"
)

// defaultAliases maps the camelCase names used by older rosters to the
// default criteria.
var defaultAliases = map[string]string{
	"allDrivers":  AdultDriver,
	"allDraftees": DraftEligible,
	"allPilots":   PilotEligible,
}

// AgeBetween matches persons whose age is within [minAge, maxAge] on the
// clock's current date.
func AgeBetween(clock Clock, minAge, maxAge int) Predicate {
	return func(p roster.Person) bool {
		age := p.Age(clock())
		return age >= minAge && age <= maxAge
	}
}

// AgeAtLeast matches persons aged minAge or more.
func AgeAtLeast(clock Clock, minAge int) Predicate {
	return func(p roster.Person) bool {
		return p.Age(clock()) >= minAge
	}
}

// HasGender matches persons of gender g.
func HasGender(g roster.Gender) Predicate {
	return func(p roster.Person) bool {
		return p.Gender == g
	}
}

func registerDefaults(r *Registry) {
	defaults := []Entry{
		{
			Name:        AdultDriver,
			Description: "age 16 or over",
			Test:        AgeAtLeast(r.now, 16),
		},
		{
			Name:        DraftEligible,
			Description: "male, age 18 to 25",
			Test:        AgeBetween(r.now, 18, 25).And(HasGender(roster.Male)),
		},
		{
			Name:        PilotEligible,
			Description: "age 23 to 65",
			Test:        AgeBetween(r.now, 23, 65),
		},
	}

	for _, e := range defaults {
		r.entries[e.Name] = e
	}
	for alias, target := range defaultAliases {
		r.aliases[alias] = target
	}
}

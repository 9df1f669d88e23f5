// Package transform provides the named mappers applied to matching persons
// before they reach a sink.
package transform

import (
	"fmt"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/islomar/rostersearch/internal/errhandling"
	"github.com/islomar/rostersearch/internal/template"
	"github.com/islomar/rostersearch/pkg/roster"
)

// Mapper derives a display string from a person.
type Mapper func(roster.Person) string

// Built-in mapper names.
const (
	Email       = "email"
	Phone       = "phone"
	Name        = "name"
	WesternName = "western-name"
	EasternName = "eastern-name"
	Gender      = "gender"
	Age         = "age"
)

// Registry holds named mappers. It is safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	mappers map[string]Mapper
	clock   func() time.Time
}

// New creates a registry with the built-in mappers. clock supplies the
// reference date for age output; nil means time.Now.
func New(clock func() time.Time) *Registry {
	if clock == nil {
		clock = time.Now
	}

	r := &Registry{mappers: make(map[string]Mapper), clock: clock}
	r.mappers[Email] = func(p roster.Person) string { return p.Email }
	r.mappers[Phone] = func(p roster.Person) string { return p.Phone }
	r.mappers[Name] = roster.Person.String
	r.mappers[WesternName] = func(p roster.Person) string {
		return Profile(p.WesternName(), p, clock())
	}
	r.mappers[EasternName] = func(p roster.Person) string {
		return Profile(p.EasternName(), p, clock())
	}
	r.mappers[Gender] = func(p roster.Person) string { return p.Gender.String() }
	r.mappers[Age] = func(p roster.Person) string { return strconv.Itoa(p.Age(clock())) }
	return r
}

// Register inserts or replaces the mapper for name.
// Calling Register with an already registered name overwrites the previous mapper.
func (r *Registry) Register(name string, m Mapper) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.mappers[name] = m
}

// Resolve returns the mapper registered under name.
// Returns an *errhandling.UnknownMapperError if name is not registered.
func (r *Registry) Resolve(name string) (Mapper, error) {
	r.mu.RLock()
	m, ok := r.mappers[name]
	r.mu.RUnlock()

	if !ok || m == nil {
		return nil, errhandling.NewUnknownMapperError(name, r.Names())
	}
	return m, nil
}

// Names returns the registered mapper names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.mappers))
	for name := range r.mappers {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Template compiles text, e.g. "{{givenName}} <{{email}}>", into a mapper
// over the person's fields. Placeholders must name a field of roster.Person.Env
// unless they carry a default.
func (r *Registry) Template(text string) (Mapper, error) {
	tmpl, err := template.Parse(text)
	if err == nil {
		err = tmpl.CheckFields(fieldNames())
	}
	if err != nil {
		return nil, errhandling.NewInvalidFieldError("template", text, err.Error())
	}

	return func(p roster.Person) string {
		return tmpl.Execute(p.Env(r.clock()))
	}, nil
}

func fieldNames() []string {
	env := roster.Person{}.Env(time.Time{})
	names := make([]string, 0, len(env))
	for name := range env {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Profile formats a short profile card:
//
//	Name: Ada Lovelace
//	Age: 35  Gender: FEMALE
func Profile(name string, p roster.Person, now time.Time) string {
	return fmt.Sprintf("Name: %s\nAge: %d  Gender: %s", name, p.Age(now), p.Gender)
}

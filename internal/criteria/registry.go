// Package criteria provides the registry of named search criteria.
//
// # Overview
//
// A criterion is a named boolean test over a roster.Person. The Registry maps
// names to tests and resolves them on demand; an unknown name yields a typed
// *errhandling.UnknownCriterionError so callers decide what a miss means.
//
// # Adding a Criterion
//
// Criteria can be registered in code:
//
//	reg := criteria.New()
//	err := reg.Register("senior", func(p roster.Person) bool {
//	    return p.Age(time.Now()) >= 65
//	})
//
// or declared in a criteria file and loaded with Registry.Load, using an
// expr-lang expression or a JavaScript test(person) function.
package criteria

import (
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/islomar/rostersearch/internal/errhandling"
	"github.com/islomar/rostersearch/internal/logger"
	"github.com/islomar/rostersearch/internal/pipeline"
	"github.com/islomar/rostersearch/pkg/roster"
)

// Predicate is a boolean test over a person.
type Predicate = pipeline.Predicate[roster.Person]

// Clock returns the reference date used to derive ages.
type Clock func() time.Time

// Entry is a registered criterion.
type Entry struct {
	// Name is the registry key
	Name string
	// Description is shown by the criteria command; may be empty
	Description string
	// Test is the boolean test
	Test Predicate
}

// Registry holds named criteria. It is safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]Entry
	aliases map[string]string // alias -> target name
	now     Clock
}

// Option configures a Registry.
type Option func(*registryOptions)

type registryOptions struct {
	clock      Clock
	noDefaults bool
}

// WithClock sets the reference date source for age-based criteria.
// Defaults to time.Now.
func WithClock(clock Clock) Option {
	return func(o *registryOptions) {
		if clock != nil {
			o.clock = clock
		}
	}
}

// WithoutDefaults starts the registry empty.
func WithoutDefaults() Option {
	return func(o *registryOptions) {
		o.noDefaults = true
	}
}

// New creates a registry populated with the default criteria.
func New(opts ...Option) *Registry {
	o := registryOptions{clock: time.Now}
	for _, opt := range opts {
		opt(&o)
	}

	r := &Registry{
		entries: make(map[string]Entry),
		aliases: make(map[string]string),
		now:     o.clock,
	}
	if !o.noDefaults {
		registerDefaults(r)
	}
	return r
}

// Clock returns the registry's reference date source.
func (r *Registry) Clock() Clock {
	return r.now
}

// Register inserts or replaces the test for name.
// An empty name or a nil test is rejected and leaves the registry unchanged.
func (r *Registry) Register(name string, test Predicate) error {
	return r.RegisterEntry(Entry{Name: name, Test: test})
}

// RegisterEntry inserts or replaces an entry, keeping its description.
// Registering under an alias name replaces the alias.
func (r *Registry) RegisterEntry(e Entry) error {
	if err := validateEntry(e); err != nil {
		return err
	}

	r.mu.Lock()
	_, replaced := r.entries[e.Name]
	if _, ok := r.aliases[e.Name]; ok {
		delete(r.aliases, e.Name)
		replaced = true
	}
	r.entries[e.Name] = e
	r.mu.Unlock()

	if replaced {
		logger.Debug("criterion replaced", slog.String("criterion", e.Name))
	}
	return nil
}

func validateEntry(e Entry) error {
	if strings.TrimSpace(e.Name) == "" {
		return errhandling.NewCriterionError(errhandling.CodeInvalidCriterion, "", "criterion name cannot be empty", nil)
	}
	if e.Test == nil {
		return errhandling.NewCriterionError(errhandling.CodeInvalidCriterion, e.Name, "test cannot be nil", nil)
	}
	return nil
}

// RegisterAlias makes alias resolve to whatever is registered under target,
// now and after target is replaced. target must be a registered criterion,
// not another alias.
func (r *Registry) RegisterAlias(alias, target string) error {
	if strings.TrimSpace(alias) == "" {
		return errhandling.NewCriterionError(errhandling.CodeInvalidCriterion, "", "alias name cannot be empty", nil)
	}
	if alias == target {
		return errhandling.NewCriterionError(errhandling.CodeInvalidCriterion, alias, "alias cannot point at itself", nil)
	}

	r.mu.Lock()
	_, ok := r.entries[target]
	if ok {
		delete(r.entries, alias)
		r.aliases[alias] = target
	}
	r.mu.Unlock()

	if !ok {
		return errhandling.NewUnknownCriterionError(target, r.Names())
	}
	return nil
}

// Resolve returns the test registered under name, following aliases.
// Returns an *errhandling.UnknownCriterionError if name is not registered.
func (r *Registry) Resolve(name string) (Predicate, error) {
	e, ok := r.Lookup(name)
	if !ok {
		return nil, errhandling.NewUnknownCriterionError(name, r.Names())
	}
	return e.Test, nil
}

// Lookup returns the entry registered under name. For an alias the entry
// carries the alias name and the target's current test.
func (r *Registry) Lookup(name string) (Entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.lookup(name)
}

// lookup must be called with r.mu held.
func (r *Registry) lookup(name string) (Entry, bool) {
	if e, ok := r.entries[name]; ok {
		return e, true
	}
	target, ok := r.aliases[name]
	if !ok {
		return Entry{}, false
	}
	e, ok := r.entries[target]
	if !ok {
		return Entry{}, false
	}
	return Entry{Name: name, Description: "alias of " + target, Test: e.Test}, true
}

// Names returns the registered names, aliases included, in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	names := make([]string, 0, len(r.entries)+len(r.aliases))
	for name := range r.entries {
		names = append(names, name)
	}
	for alias := range r.aliases {
		names = append(names, alias)
	}
	r.mu.RUnlock()

	slices.Sort(names)
	return names
}

// Entries returns the registered entries sorted by name.
func (r *Registry) Entries() []Entry {
	r.mu.RLock()
	entries := make([]Entry, 0, len(r.entries)+len(r.aliases))
	for _, e := range r.entries {
		entries = append(entries, e)
	}
	for alias := range r.aliases {
		if e, ok := r.lookup(alias); ok {
			entries = append(entries, e)
		}
	}
	r.mu.RUnlock()

	slices.SortFunc(entries, func(a, b Entry) int {
		return strings.Compare(a.Name, b.Name)
	})
	return entries
}

// Len returns the number of registered criteria.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries) + len(r.aliases)
}

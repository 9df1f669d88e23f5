// Package runtime provides the search execution engine.
// It resolves a criterion and a mapper by name and drives a roster through
// the filter -> transform -> consume pipeline.
package runtime

import (
	"errors"
	"iter"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/islomar/rostersearch/internal/criteria"
	"github.com/islomar/rostersearch/internal/logger"
	"github.com/islomar/rostersearch/internal/pipeline"
	"github.com/islomar/rostersearch/internal/transform"
	"github.com/islomar/rostersearch/pkg/roster"
)

// Execution status values
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// TemplateMapper is the mapper name recorded for template requests.
const TemplateMapper = "template"

// Common errors
var (
	// ErrNilSource is returned when the request has no roster source
	ErrNilSource = errors.New("roster source is nil")

	// ErrNilSink is returned when no sink is provided
	ErrNilSink = errors.New("sink is nil")
)

// Request describes one search.
type Request struct {
	// Criterion is the registered criterion name (required)
	Criterion string
	// Mapper is the transform name; empty means transform.Name
	Mapper string
	// Template, when set, replaces Mapper with a {{field}} template
	Template string
	// Source describes where People came from, for logging
	Source string
	// People is the roster, visited once in order
	People iter.Seq[roster.Person]
}

// Result holds the outcome of a search.
type Result struct {
	// ID identifies the search in log output
	ID          string
	Criterion   string
	Mapper      string
	Status      string
	Scanned     int
	Matched     int
	StartedAt   time.Time
	CompletedAt time.Time
}

// Duration returns how long the search ran.
func (r *Result) Duration() time.Duration {
	return r.CompletedAt.Sub(r.StartedAt)
}

// Executor runs searches against a criteria registry and a mapper registry.
//
// The Executor only reaches criteria and mappers through their registries;
// an unknown name is returned to the caller as a typed error.
type Executor struct {
	criteria *criteria.Registry
	mappers  *transform.Registry
}

// NewExecutor creates an executor.
func NewExecutor(criteria *criteria.Registry, mappers *transform.Registry) *Executor {
	return &Executor{criteria: criteria, mappers: mappers}
}

// Execute resolves the request's criterion and mapper and streams every
// matching person, mapped to a string, into sink. Nothing is sent to sink when
// resolution fails.
//
// Panics raised by the criterion, mapper or sink propagate unchanged.
func (e *Executor) Execute(req Request, sink func(string)) (*Result, error) {
	result := &Result{
		ID:        uuid.NewString(),
		Criterion: req.Criterion,
		Mapper:    req.Mapper,
		Status:    StatusError,
		StartedAt: time.Now(),
	}
	switch {
	case req.Template != "":
		result.Mapper = TemplateMapper
	case result.Mapper == "":
		result.Mapper = transform.Name
	}

	if req.People == nil {
		return finish(result), ErrNilSource
	}
	if sink == nil {
		return finish(result), ErrNilSink
	}

	test, err := e.criteria.Resolve(req.Criterion)
	if err != nil {
		logger.Debug("criterion resolution failed",
			slog.String("run_id", result.ID),
			slog.String("criterion", req.Criterion),
			slog.String("error", err.Error()),
		)
		return finish(result), err
	}

	mapper, err := e.mapper(req)
	if err != nil {
		logger.Debug("mapper resolution failed",
			slog.String("run_id", result.ID),
			slog.String("mapper", result.Mapper),
			slog.String("error", err.Error()),
		)
		return finish(result), err
	}

	ctx := logger.SearchContext{
		RunID:     result.ID,
		Criterion: req.Criterion,
		Mapper:    result.Mapper,
		Source:    req.Source,
	}
	logger.LogSearchStart(ctx, -1)

	pipeline.Process(
		counted(req.People, &result.Scanned),
		test,
		mapper,
		pipeline.Tee(pipeline.Count[string](&result.Matched), sink),
	)

	result.Status = StatusSuccess
	finish(result)
	logger.LogSearchEnd(ctx, result.Matched, result.Duration())
	logger.Debug("search scanned roster",
		slog.String("run_id", result.ID),
		slog.Int("scanned", result.Scanned),
	)
	return result, nil
}

func (e *Executor) mapper(req Request) (transform.Mapper, error) {
	if req.Template != "" {
		return e.mappers.Template(req.Template)
	}
	if req.Mapper == "" {
		return e.mappers.Resolve(transform.Name)
	}
	return e.mappers.Resolve(req.Mapper)
}

func finish(r *Result) *Result {
	r.CompletedAt = time.Now()
	return r
}

// counted wraps seq so every yielded element increments n.
func counted[X any](seq iter.Seq[X], n *int) iter.Seq[X] {
	return func(yield func(X) bool) {
		for x := range seq {
			*n++
			if !yield(x) {
				return
			}
		}
	}
}

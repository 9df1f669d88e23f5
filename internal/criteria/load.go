package criteria

import (
	"errors"
	"fmt"

	"github.com/islomar/rostersearch/internal/config"
	"github.com/islomar/rostersearch/internal/errhandling"
)

// Build compiles a criterion definition into a registry entry using clock
// as the reference date source.
func Build(def config.CriterionDef, clock Clock) (Entry, error) {
	var (
		test Predicate
		err  error
	)

	switch def.Language() {
	case config.LangExpr:
		test, err = NewExpression(def.Expression, clock)
	case config.LangJavaScript:
		test, err = NewScript(def.Script, clock)
	default:
		err = errhandling.NewCriterionError(errhandling.CodeInvalidCriterion, def.Name,
			fmt.Sprintf("unsupported lang %q", def.Lang), nil)
	}
	if err != nil {
		return Entry{}, withCriterion(err, def.Name)
	}

	return Entry{Name: def.Name, Description: def.Description, Test: test}, nil
}

// Load compiles every definition and registers them. Either all definitions
// are registered or, on the first failure, none are.
func (r *Registry) Load(defs []config.CriterionDef) error {
	entries := make([]Entry, 0, len(defs))
	for i, def := range defs {
		e, err := Build(def, r.now)
		if err != nil {
			return fmt.Errorf("criteria[%d]: %w", i, err)
		}
		if err := validateEntry(e); err != nil {
			return fmt.Errorf("criteria[%d]: %w", i, err)
		}
		entries = append(entries, e)
	}

	for _, e := range entries {
		// validated above
		_ = r.RegisterEntry(e)
	}
	return nil
}

// withCriterion fills in the criterion name on a CriterionError.
func withCriterion(err error, name string) error {
	var ce *errhandling.CriterionError
	if errors.As(err, &ce) && ce.Criterion == "" {
		ce.Criterion = name
	}
	return err
}

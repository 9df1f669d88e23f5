package criteria

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/islomar/rostersearch/internal/errhandling"
	"github.com/islomar/rostersearch/internal/logger"
	"github.com/islomar/rostersearch/pkg/roster"
)

// exprEnv declares the identifiers and types an expression may use.
var exprEnv = roster.Person{}.Env(time.Time{})

// NewExpression compiles an expr-lang expression into a predicate.
// The expression sees the fields of roster.Person.Env, for example
// `age >= 18 && gender == "FEMALE"`. Unknown identifiers and type mismatches
// fail compilation.
//
// Non-boolean results are converted by truthiness. An evaluation failure is
// logged at warn level and counts as no match.
func NewExpression(expression string, clock Clock) (Predicate, error) {
	if strings.TrimSpace(expression) == "" {
		return nil, errhandling.NewCriterionError(errhandling.CodeInvalidExpression, "", "expression cannot be empty", nil)
	}
	if clock == nil {
		return nil, errhandling.NewCriterionError(errhandling.CodeInvalidCriterion, "", "clock cannot be nil", nil)
	}

	program, err := expr.Compile(expression, expr.Env(exprEnv))
	if err != nil {
		return nil, errhandling.NewCriterionError(errhandling.CodeInvalidExpression, "",
			fmt.Sprintf("invalid expression: %v", err), err)
	}

	logger.Debug("expression criterion compiled", slog.String("expression", expression))

	return func(p roster.Person) bool {
		return evalExpression(program, expression, p.Env(clock()))
	}, nil
}

func evalExpression(program *vm.Program, expression string, env map[string]interface{}) bool {
	output, err := expr.Run(program, env)
	if err != nil {
		logger.Warn("expression evaluation failed; treating as no match",
			slog.String("expression", expression),
			slog.String("error", err.Error()),
		)
		return false
	}

	if b, ok := output.(bool); ok {
		return b
	}
	return toBool(output)
}

// toBool converts a value to boolean.
func toBool(value interface{}) bool {
	if value == nil {
		return false
	}
	switch v := value.(type) {
	case bool:
		return v
	case int:
		return v != 0
	case int64:
		return v != 0
	case float64:
		return v != 0
	case string:
		return v != ""
	default:
		return true
	}
}

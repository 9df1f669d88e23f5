package criteria

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/dop251/goja"

	"github.com/islomar/rostersearch/internal/errhandling"
	"github.com/islomar/rostersearch/internal/logger"
	"github.com/islomar/rostersearch/pkg/roster"
)

// MaxScriptLength is the maximum allowed script length in bytes (100KB).
const MaxScriptLength = 100 * 1024

// testFunctionName is the function a criterion script must define.
const testFunctionName = "test"

// scriptCriterion runs a JavaScript test(person) function using Goja.
//
// Goja runtimes are NOT goroutine-safe; calls are serialized on mu so the
// resulting predicate can be shared.
type scriptCriterion struct {
	mu      sync.Mutex
	runtime *goja.Runtime
	testFn  goja.Callable
	console *jsConsole
	clock   Clock
}

// NewScript compiles a JavaScript criterion. The script must define
// test(person) returning a boolean; person exposes the fields of
// roster.Person.Env. console.log and friends write to the logger.
//
// A runtime error inside test is logged at warn level and counts as no match.
func NewScript(source string, clock Clock) (Predicate, error) {
	if strings.TrimSpace(source) == "" {
		return nil, errhandling.NewCriterionError(errhandling.CodeCompilationFailed, "", "script cannot be empty", nil)
	}
	if len(source) > MaxScriptLength {
		return nil, errhandling.NewCriterionError(errhandling.CodeCompilationFailed, "",
			fmt.Sprintf("script exceeds maximum length: %d bytes exceeds maximum %d bytes", len(source), MaxScriptLength), nil)
	}
	if clock == nil {
		return nil, errhandling.NewCriterionError(errhandling.CodeInvalidCriterion, "", "clock cannot be nil", nil)
	}

	vm := goja.New()
	console, err := installConsole(vm)
	if err != nil {
		return nil, errhandling.NewCriterionError(errhandling.CodeCompilationFailed, "", "console setup failed", err)
	}
	if _, err := vm.RunString(source); err != nil {
		return nil, errhandling.NewCriterionError(errhandling.CodeCompilationFailed, "",
			fmt.Sprintf("script compilation failed: %v", err), err)
	}

	testFn, err := getTestFunction(vm)
	if err != nil {
		return nil, err
	}

	logger.Debug("script criterion compiled", slog.Int("script_length", len(source)))

	sc := &scriptCriterion{runtime: vm, testFn: testFn, console: console, clock: clock}
	return sc.test, nil
}

// getTestFunction retrieves and validates the test function from the runtime.
func getTestFunction(vm *goja.Runtime) (goja.Callable, error) {
	val := vm.Get(testFunctionName)
	if val == nil || goja.IsUndefined(val) {
		return nil, errhandling.NewCriterionError(errhandling.CodeMissingTestFunction, "",
			"test function not found in script", nil)
	}

	fn, ok := goja.AssertFunction(val)
	if !ok {
		return nil, errhandling.NewCriterionError(errhandling.CodeMissingTestFunction, "",
			"test is not a function", nil)
	}
	return fn, nil
}

func (s *scriptCriterion) test(p roster.Person) bool {
	env := p.Env(s.clock())

	s.mu.Lock()
	defer s.mu.Unlock()

	s.console.person = p.String()
	defer func() { s.console.person = "" }()

	result, err := s.testFn(goja.Undefined(), s.runtime.ToValue(env))
	if err != nil {
		attrs := []any{slog.String("error", err.Error())}
		if ex, ok := err.(*goja.Exception); ok {
			attrs = append(attrs, slog.String("stack_trace", ex.String()))
		}
		logger.Warn("script evaluation failed; treating as no match", attrs...)
		return false
	}
	return result.ToBoolean()
}

package rules

import (
	"errors"
	"testing"
)

func TestSiteWrapCarriesConditionMetadata(t *testing.T) {
	base := errors.New("boom")
	err := evalSite("expr", "readOnly && missing", RuleContext{Property: "Title", Scope: "tenant:acme"}).wrap(base)

	var evalErr *EvaluationError
	if !errors.As(err, &evalErr) {
		t.Fatalf("expected EvaluationError, got %T", err)
	}
	want := EvaluationError{
		Engine:   "expr",
		Phase:    PhaseEvaluate,
		Expr:     "readOnly && missing",
		Property: "Title",
		Scope:    "tenant:acme",
		Err:      base,
	}
	if *evalErr != want {
		t.Fatalf("unexpected error metadata %+v", evalErr)
	}
	if !errors.Is(err, base) {
		t.Fatalf("wrapped error should unwrap to base error")
	}
	if got := err.Error(); got != `rules: expr evaluate expr="readOnly && missing" property=Title scope=tenant:acme: boom` {
		t.Fatalf("unexpected message %q", got)
	}
	if IsCompileError(err) {
		t.Fatalf("evaluation failure reported as compile error")
	}
}

func TestSiteWrapFillsExistingError(t *testing.T) {
	base := errors.New("compile failure")
	existing := &EvaluationError{Engine: "expr", Err: base}

	err := evalSite("cel", "rule", RuleContext{Scope: "group:9"}).wrap(existing)
	if !errors.Is(err, base) {
		t.Fatalf("expected base error to unwrap")
	}
	if existing.Engine != "expr" {
		t.Fatalf("existing engine should not be overwritten, got %q", existing.Engine)
	}
	if existing.Expr != "rule" || existing.Scope != "group:9" || existing.Phase != PhaseEvaluate {
		t.Fatalf("blank fields should be filled, got %+v", existing)
	}
}

func TestCompileSiteMarksPhase(t *testing.T) {
	err := compileSite("cel", "status ==").wrap(errors.New("syntax"))
	if !IsCompileError(err) {
		t.Fatalf("expected compile error, got %v", err)
	}
	if got := err.Error(); got != `rules: cel compile expr="status ==": syntax` {
		t.Fatalf("unexpected message %q", got)
	}
	if IsCompileError(errors.New("plain")) {
		t.Fatalf("plain errors are not compile errors")
	}
}

func TestSiteWrapNil(t *testing.T) {
	if err := compileSite("expr", "x").wrap(nil); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
}

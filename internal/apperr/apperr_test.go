package apperr

import (
	"errors"
	"fmt"
	"testing"
)

func TestValidationSurvivesWrapping(t *testing.T) {
	err := fmt.Errorf("ingest: %w", Validation("end_time before start_time"))
	if !IsValidation(err) {
		t.Fatalf("wrapped validation error not recognized: %v", err)
	}
	if IsConflict(err) || IsPersistence(err) {
		t.Fatalf("validation error matched another class: %v", err)
	}
}

func TestAsExternalUnwraps(t *testing.T) {
	base := errors.New("429 from collaborator")
	err := fmt.Errorf("variant budget: %w", External(ExternalRateLimited, base))

	ext, ok := AsExternal(err)
	if !ok {
		t.Fatalf("AsExternal: want match, got none for %v", err)
	}
	if ext.Kind != ExternalRateLimited {
		t.Fatalf("kind: want=%s got=%s", ExternalRateLimited, ext.Kind)
	}
	if !errors.Is(err, base) {
		t.Fatalf("base error not reachable through Unwrap")
	}
}

func TestConflictCarriesRevisions(t *testing.T) {
	err := Conflict(3, 5)
	if !IsConflict(err) {
		t.Fatalf("IsConflict: want true")
	}
	var ce *ConflictError
	if !errors.As(err, &ce) {
		t.Fatalf("errors.As: want ConflictError")
	}
	if ce.Expected != 3 || ce.Actual != 5 {
		t.Fatalf("revisions: want=(3,5) got=(%d,%d)", ce.Expected, ce.Actual)
	}
}

func TestSentinelsStayDistinct(t *testing.T) {
	if errors.Is(ErrNotFound, ErrForbidden) {
		t.Fatalf("sentinels must not alias")
	}
	wrapped := fmt.Errorf("trip %s: %w", "abc", ErrNotFound)
	if !errors.Is(wrapped, ErrNotFound) {
		t.Fatalf("wrapped sentinel not recognized")
	}
}

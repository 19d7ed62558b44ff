package apperr_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/DjordjeVuckovic/agreement-lab/internal/apperr"
)

func TestNewValidation(t *testing.T) {
	err := apperr.NewValidation("field is required")

	if err.Error() != "field is required" {
		t.Errorf("expected 'field is required', got %q", err.Error())
	}
	if err.Unwrap() != nil {
		t.Errorf("expected nil unwrap, got %v", err.Unwrap())
	}
}

func TestNewValidationWrap(t *testing.T) {
	inner := fmt.Errorf("parse failed")
	err := apperr.NewValidationWrap("invalid label sequence", inner)

	if err.Error() != "invalid label sequence: parse failed" {
		t.Errorf("expected 'invalid label sequence: parse failed', got %q", err.Error())
	}
	if !errors.Is(err, inner) {
		t.Error("expected Unwrap to return inner error")
	}
}

func TestValidationError_SurvivesFmtWrapping(t *testing.T) {
	original := apperr.NewValidation("comment too short")

	wrapped := fmt.Errorf("failed to validate: %w", original)
	doubleWrapped := fmt.Errorf("storage error: %w", wrapped)

	var ve *apperr.ValidationError
	if !errors.As(doubleWrapped, &ve) {
		t.Fatal("errors.As should find ValidationError through double wrapping")
	}
	if ve.Message != "comment too short" {
		t.Errorf("expected 'comment too short', got %q", ve.Message)
	}
}

func TestValidationError_NotFoundForPlainErrors(t *testing.T) {
	plain := fmt.Errorf("database connection failed")
	wrapped := fmt.Errorf("storage error: %w", plain)

	var ve *apperr.ValidationError
	if errors.As(wrapped, &ve) {
		t.Fatal("errors.As should NOT find ValidationError in plain error chain")
	}
}

func TestNotFoundError_MatchesSentinel(t *testing.T) {
	err := fmt.Errorf("get current version: %w", apperr.NewNotFound("gold standard version", "12/gs-1"))

	if !errors.Is(err, apperr.ErrNotFound) {
		t.Fatal("expected errors.Is to match ErrNotFound")
	}
	if errors.Is(err, apperr.ErrConflict) {
		t.Fatal("did not expect ErrConflict")
	}

	var nf *apperr.NotFoundError
	if !errors.As(err, &nf) {
		t.Fatal("expected errors.As to find NotFoundError")
	}
	if nf.Error() != "gold standard version 12/gs-1 not found" {
		t.Errorf("unexpected message %q", nf.Error())
	}
}

func TestConflictError_Kinds(t *testing.T) {
	resolved := apperr.NewAlreadyResolved("item 4 of run r already validated")
	if !errors.Is(resolved, apperr.ErrAlreadyResolved) {
		t.Error("expected ErrAlreadyResolved")
	}
	if errors.Is(resolved, apperr.ErrConflict) {
		t.Error("did not expect ErrConflict")
	}

	conflict := apperr.NewConflict("gold standard gs-1 already exists")
	if !errors.Is(conflict, apperr.ErrConflict) {
		t.Error("expected ErrConflict")
	}
}

func TestNewStore(t *testing.T) {
	driver := fmt.Errorf("connection reset")

	err := apperr.NewStore("correct version", driver)
	if !errors.Is(err, apperr.ErrStoreFailure) {
		t.Fatal("expected ErrStoreFailure")
	}
	if !errors.Is(err, driver) {
		t.Fatal("expected driver error in chain")
	}
	if err.Error() != "store failure: correct version: connection reset" {
		t.Errorf("unexpected message %q", err.Error())
	}

	if apperr.NewStore("noop", nil) != nil {
		t.Error("expected nil for nil error")
	}

	nf := apperr.NewNotFound("run", "r-1")
	if got := apperr.NewStore("get run", nf); got != error(nf) {
		t.Errorf("expected domain error to pass through, got %v", got)
	}

	twice := apperr.NewStore("outer", err)
	if twice != err {
		t.Errorf("expected store error not to be wrapped twice, got %v", twice)
	}
}

package catga_test

import (
	"errors"
	"testing"

	"github.com/catga/catga"
)

func TestError_IsMatchesByCode(t *testing.T) {
	t.Parallel()
	err := catga.NewError(catga.CodeNotFound, "order %s missing", "A")
	if !errors.Is(err, catga.ErrNotFound) {
		t.Fatalf("expected errors.Is to match on code")
	}
	if errors.Is(err, catga.ErrValidation) {
		t.Fatalf("expected errors.Is to reject a different code")
	}
}

func TestError_UnwrapReturnsCause(t *testing.T) {
	t.Parallel()
	cause := errors.New("boom")
	wrapped := catga.Wrap(cause)
	if !errors.Is(wrapped, catga.ErrDependencyFailed) {
		t.Fatalf("expected Wrap to tag the error CodeDependencyFailed")
	}
	if errors.Unwrap(wrapped) != cause {
		t.Fatalf("expected Unwrap to return the original cause")
	}
}

func TestWrap_LeavesAnExistingErrorUnchanged(t *testing.T) {
	t.Parallel()
	original := catga.NewError(catga.CodeValidation, "bad input")
	if catga.Wrap(original) != original {
		t.Fatalf("expected Wrap to return an existing *Error unchanged")
	}
}

func TestVersionConflictError_AsErrorCarriesCode(t *testing.T) {
	t.Parallel()
	vc := &catga.VersionConflictError{StreamID: "Order-A", ExpectedVersion: 2, ActualVersion: 3}
	err := vc.AsError()
	if err.Code != catga.CodeConcurrencyConflict {
		t.Fatalf("expected CodeConcurrencyConflict, got %v", err.Code)
	}
	if errors.Unwrap(err) != vc {
		t.Fatalf("expected the Error to unwrap to the VersionConflictError")
	}
}

func TestHTTPStatus(t *testing.T) {
	t.Parallel()
	cases := map[catga.ErrorCode]int{
		catga.CodeValidation:          400,
		catga.CodeUnauthorized:        401,
		catga.CodeForbidden:           403,
		catga.CodeNotFound:            404,
		catga.CodeDuplicate:           409,
		catga.CodeConcurrencyConflict: 409,
		catga.CodeRateLimited:         429,
		catga.CodeTimeout:             504,
		catga.CodeUnhandled:           500,
	}
	for code, want := range cases {
		if got := catga.HTTPStatus(code); got != want {
			t.Errorf("HTTPStatus(%s) = %d, want %d", code, got, want)
		}
	}
}

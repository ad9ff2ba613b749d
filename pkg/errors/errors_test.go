package errors

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestNewModelError(t *testing.T) {
	tests := []struct {
		name    string
		op      string
		kind    string
		err     error
		wantMsg string
	}{
		{
			name:    "with original error",
			op:      "Validate",
			kind:    "invalid split",
			err:     fmt.Errorf("border index out of range"),
			wantMsg: "symforest: Validate: invalid split: border index out of range",
		},
		{
			name:    "without original error",
			op:      "Validate",
			kind:    "no trees",
			wantMsg: "symforest: Validate: no trees",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewModelError(tt.op, tt.kind, tt.err)

			if err.Error() != tt.wantMsg {
				t.Errorf("Error() = %v, want %v", err.Error(), tt.wantMsg)
			}

			// スタックトレースの存在確認
			formatted := fmt.Sprintf("%+v", err)
			if !strings.Contains(formatted, "errors_test.go") {
				t.Error("Expected stack trace to contain test file name")
			}

			var modelErr *ModelError
			if !As(err, &modelErr) {
				t.Error("Error should be castable to *ModelError")
			}
		})
	}
}

func TestNewDimensionError(t *testing.T) {
	err := NewDimensionError("Calc", 256, 255, 0)

	want := "symforest: Calc: dimension mismatch on axis 0 (examples). Expected 256, got 255"
	if err.Error() != want {
		t.Errorf("Error() = %v, want %v", err.Error(), want)
	}

	var dimErr *DimensionError
	if !As(err, &dimErr) {
		t.Fatal("Error should be castable to *DimensionError")
	}
	if dimErr.Expected != 256 || dimErr.Got != 255 {
		t.Errorf("unexpected fields: %+v", dimErr)
	}
}

func TestNewValidationError(t *testing.T) {
	err := NewValidationError("treeEnd", "must not exceed tree count", 7)

	want := "symforest: validation failed for parameter 'treeEnd': must not exceed tree count (got: 7)"
	if err.Error() != want {
		t.Errorf("Error() = %v, want %v", err.Error(), want)
	}

	var valErr *ValidationError
	if !As(err, &valErr) {
		t.Error("Error should be castable to *ValidationError")
	}
}

func TestNewValueError(t *testing.T) {
	err := NewValueError("CalcTreeIntervals", "approx dimension must be 1, got 3")

	if err.Error() != "symforest: CalcTreeIntervals: approx dimension must be 1, got 3" {
		t.Errorf("unexpected message %q", err.Error())
	}

	var valErr *ValueError
	if !As(err, &valErr) {
		t.Error("Error should be castable to *ValueError")
	}
}

func TestWrapAndIs(t *testing.T) {
	wrapped := Wrap(ErrMissingCtrProvider, "in NewEvaluator")

	if !Is(wrapped, ErrMissingCtrProvider) {
		t.Error("Expected Is(wrapped, ErrMissingCtrProvider) to be true")
	}
	if !strings.Contains(wrapped.Error(), "in NewEvaluator") {
		t.Error("Expected wrapped error to contain wrapping message")
	}

	wrappedf := Wrapf(ErrEmptyData, "in %s: %d rows", "ReadNpy", 0)
	if !Is(wrappedf, ErrEmptyData) {
		t.Error("Expected Is(wrappedf, ErrEmptyData) to be true")
	}
}

func TestMarshalZerologObject(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	var dimErr *DimensionError
	if !As(NewDimensionError("Calc", 4, 3, 1), &dimErr) {
		t.Fatal("Error should be castable to *DimensionError")
	}
	logger.Error().Object("detail", dimErr).Msg("failed")

	out := buf.String()
	for _, want := range []string{`"type":"DimensionError"`, `"axis_name":"outputs"`, `"expected":4`} {
		if !strings.Contains(out, want) {
			t.Errorf("log output %s missing %s", out, want)
		}
	}
}

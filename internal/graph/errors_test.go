package graph

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindClassification(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorKind
	}{
		{"validation", Invalidf("title is required"), KindValidation},
		{"not found", NotFoundf("node %s not found", "wi-x"), KindNotFound},
		{"conflict", Conflictf("node %s already exists", "wi-x"), KindConflict},
		{"storage", Storagef(errors.New("connection reset"), "query failed"), KindStorage},
		{"plain error", errors.New("something"), KindUnknown},
		{"nil", nil, KindUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Kind(tt.err); got != tt.want {
				t.Errorf("Kind() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestKindSurvivesWrapping(t *testing.T) {
	err := fmt.Errorf("create node: %w", NotFoundf("graph gr-x not found"))
	if !IsNotFound(err) {
		t.Error("kind should be visible through fmt.Errorf wrapping")
	}
	if IsValidation(err) {
		t.Error("a not-found error is not a validation error")
	}
}

func TestStoragef_PreservesCause(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	err := Storagef(cause, "health ping failed")

	if !errors.Is(err, cause) {
		t.Error("the storage cause must stay reachable via errors.Is")
	}
	want := "health ping failed: dial tcp: connection refused"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestKindString(t *testing.T) {
	tests := []struct {
		kind ErrorKind
		want string
	}{
		{KindUnknown, "unknown"},
		{KindValidation, "validation"},
		{KindNotFound, "not_found"},
		{KindConflict, "conflict"},
		{KindStorage, "storage"},
	}
	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("%d.String() = %q, want %q", tt.kind, got, tt.want)
		}
	}
}

func TestErrorMessageFormatting(t *testing.T) {
	if got := Invalidf("weight %v out of range", 1.5).Error(); got != "weight 1.5 out of range" {
		t.Errorf("Error() = %q", got)
	}
}

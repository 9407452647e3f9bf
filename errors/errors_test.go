package errors

import (
	"errors"
	"testing"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		contains []string
	}{
		{
			name: "full error",
			err: &Error{
				Phase:  PhaseFixture,
				Kind:   KindInvalidData,
				Path:   []string{"objects", "fut1", "slot"},
				Detail: "listener slot holds a context",
			},
			contains: []string{"[fixture]", "invalid_data", "objects.fut1.slot", "listener slot holds a context"},
		},
		{
			name: "minimal error",
			err: &Error{
				Phase: PhaseCapture,
				Kind:  KindEmptyStack,
			},
			contains: []string{"[capture]", "empty_stack"},
		},
		{
			name: "error with cause",
			err: &Error{
				Phase:  PhaseProfile,
				Kind:   KindNotFound,
				Detail: "read profile file",
				Cause:  errors.New("underlying error"),
			},
			contains: []string{"[profile]", "not_found", "read profile file", "caused by", "underlying error"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.err.Error()
			for _, s := range tt.contains {
				if !containsSubstring(msg, s) {
					t.Errorf("error message %q does not contain %q", msg, s)
				}
			}
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := &Error{
		Phase: PhaseFixture,
		Kind:  KindInvalidData,
		Cause: cause,
	}

	if !errors.Is(err.Unwrap(), cause) {
		t.Error("Unwrap did not return cause")
	}

	// Test with errors.Unwrap
	if !errors.Is(errors.Unwrap(err), cause) {
		t.Error("errors.Unwrap did not return cause")
	}
}

func TestError_Is(t *testing.T) {
	err := &Error{
		Phase: PhaseFixture,
		Kind:  KindInvalidData,
		Path:  []string{"foo"},
	}

	// Same phase and kind
	if !err.Is(&Error{Phase: PhaseFixture, Kind: KindInvalidData}) {
		t.Error("Is should match same phase and kind")
	}

	// Different phase
	if err.Is(&Error{Phase: PhaseProfile, Kind: KindInvalidData}) {
		t.Error("Is should not match different phase")
	}

	// Different kind
	if err.Is(&Error{Phase: PhaseFixture, Kind: KindNotFound}) {
		t.Error("Is should not match different kind")
	}

	// Test with errors.Is
	target := &Error{Phase: PhaseFixture, Kind: KindInvalidData}
	if !errors.Is(err, target) {
		t.Error("errors.Is should match")
	}
}

func TestBuilder(t *testing.T) {
	cause := errors.New("root")
	err := New(PhaseCapture, KindInvalidInput).
		Path("target", "frames").
		Cause(cause).
		Detail("expected %s, got %s", "iterator", "nil").
		Build()

	if err.Phase != PhaseCapture {
		t.Errorf("Phase = %v, want %v", err.Phase, PhaseCapture)
	}
	if err.Kind != KindInvalidInput {
		t.Errorf("Kind = %v, want %v", err.Kind, KindInvalidInput)
	}
	if len(err.Path) != 2 || err.Path[0] != "target" || err.Path[1] != "frames" {
		t.Errorf("Path = %v, want [target frames]", err.Path)
	}
	if !errors.Is(err.Cause, cause) {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}
	if err.Detail != "expected iterator, got nil" {
		t.Errorf("Detail = %v, want 'expected iterator, got nil'", err.Detail)
	}
}

func TestConvenienceConstructors(t *testing.T) {
	t.Run("NotFound", func(t *testing.T) {
		err := NotFound(PhaseProfile, "profile", "shapes.yaml")
		if err.Kind != KindNotFound {
			t.Errorf("Kind = %v, want %v", err.Kind, KindNotFound)
		}
		if !containsSubstring(err.Detail, "shapes.yaml") {
			t.Errorf("Detail = %v, should contain name", err.Detail)
		}
	})

	t.Run("InvalidData", func(t *testing.T) {
		err := InvalidData(PhaseFixture, []string{"stack"}, "frame names unknown function")
		if err.Kind != KindInvalidData {
			t.Errorf("Kind = %v, want %v", err.Kind, KindInvalidData)
		}
	})

	t.Run("InvalidInput", func(t *testing.T) {
		err := InvalidInput(PhaseCapture, "nil frame iterator")
		if err.Kind != KindInvalidInput {
			t.Errorf("Kind = %v, want %v", err.Kind, KindInvalidInput)
		}
	})

	t.Run("EmptyStack", func(t *testing.T) {
		err := EmptyStack(PhaseCapture)
		if err.Kind != KindEmptyStack {
			t.Errorf("Kind = %v, want %v", err.Kind, KindEmptyStack)
		}
		if !containsSubstring(err.Detail, "no frames") {
			t.Errorf("Detail = %v, should mention missing frames", err.Detail)
		}
	})

	t.Run("Wrap", func(t *testing.T) {
		cause := errors.New("io failure")
		err := Wrap(PhaseProfile, KindInvalidData, cause, "decode profile yaml")
		if err.Kind != KindInvalidData {
			t.Errorf("Kind = %v, want %v", err.Kind, KindInvalidData)
		}
		if !errors.Is(err, &Error{Phase: PhaseProfile, Kind: KindInvalidData}) {
			t.Error("wrapped error should match phase and kind")
		}
		if !errors.Is(err.Unwrap(), cause) {
			t.Error("wrapped error should unwrap to cause")
		}
	})
}

func containsSubstring(s, substr string) bool {
	return len(s) >= len(substr) && (s == substr || len(substr) == 0 ||
		(len(s) > 0 && containsSubstringHelper(s, substr)))
}

func containsSubstringHelper(s, substr string) bool {
	for i := 0; i <= len(s)-len(substr); i++ {
		if s[i:i+len(substr)] == substr {
			return true
		}
	}
	return false
}

package errors

import (
	"errors"
	"strings"
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
				Phase:    PhaseParse,
				Kind:     KindUnexpectedToken,
				File:     "input.ir",
				Line:     14,
				Function: "caller",
				Detail:   "expected type",
			},
			contains: []string{"[parse]", "unexpected_token", "input.ir:14", "@caller", "expected type"},
		},
		{
			name: "minimal error",
			err: &Error{
				Phase: PhaseVerify,
				Kind:  KindArityMismatch,
			},
			contains: []string{"[verify]", "arity_mismatch"},
		},
		{
			name: "error with cause",
			err: &Error{
				Phase:  PhaseLoad,
				Kind:   KindInvalidData,
				Detail: "read input",
				Cause:  errors.New("underlying error"),
			},
			contains: []string{"[load]", "invalid_data", "read input", "caused by", "underlying error"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.err.Error()
			for _, s := range tt.contains {
				if !strings.Contains(msg, s) {
					t.Errorf("error message %q does not contain %q", msg, s)
				}
			}
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := &Error{
		Phase: PhaseParse,
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
		Phase:    PhaseParse,
		Kind:     KindUnknownRef,
		Function: "main",
	}

	// Same phase and kind
	if !err.Is(&Error{Phase: PhaseParse, Kind: KindUnknownRef}) {
		t.Error("Is should match same phase and kind")
	}

	// Different phase
	if err.Is(&Error{Phase: PhaseVerify, Kind: KindUnknownRef}) {
		t.Error("Is should not match different phase")
	}

	// Different kind
	if err.Is(&Error{Phase: PhaseParse, Kind: KindSyntax}) {
		t.Error("Is should not match different kind")
	}

	// Test with errors.Is
	target := &Error{Phase: PhaseParse, Kind: KindUnknownRef}
	if !errors.Is(err, target) {
		t.Error("errors.Is should match")
	}
}

func TestBuilder(t *testing.T) {
	cause := errors.New("root")
	err := New(PhaseInline, KindUnsupported).
		Function("caller").
		At("mod.ir", 7).
		Cause(cause).
		Detail("capture %d uses convention %s", 1, "indirect_owned").
		Build()

	if err.Phase != PhaseInline {
		t.Errorf("Phase = %v, want %v", err.Phase, PhaseInline)
	}
	if err.Kind != KindUnsupported {
		t.Errorf("Kind = %v, want %v", err.Kind, KindUnsupported)
	}
	if err.Function != "caller" {
		t.Errorf("Function = %v, want 'caller'", err.Function)
	}
	if err.File != "mod.ir" || err.Line != 7 {
		t.Errorf("position = %v:%v, want mod.ir:7", err.File, err.Line)
	}
	if !errors.Is(err.Cause, cause) {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}
	if err.Detail != "capture 1 uses convention indirect_owned" {
		t.Errorf("Detail = %v", err.Detail)
	}
}

func TestConvenienceConstructors(t *testing.T) {
	t.Run("Syntax", func(t *testing.T) {
		err := Syntax("a.ir", 3, "bad character %q", '$')
		if err.Kind != KindSyntax {
			t.Errorf("Kind = %v, want %v", err.Kind, KindSyntax)
		}
		if err.File != "a.ir" || err.Line != 3 {
			t.Errorf("position = %v:%v, want a.ir:3", err.File, err.Line)
		}
	})

	t.Run("UnexpectedToken", func(t *testing.T) {
		err := UnexpectedToken("a.ir", 5, "'}'", "instruction")
		if err.Kind != KindUnexpectedToken {
			t.Errorf("Kind = %v, want %v", err.Kind, KindUnexpectedToken)
		}
		if !strings.Contains(err.Detail, "'}'") || !strings.Contains(err.Detail, "instruction") {
			t.Errorf("Detail = %v, should name got and want", err.Detail)
		}
	})

	t.Run("UnknownValue", func(t *testing.T) {
		err := UnknownValue("a.ir", 9, "f", "%3")
		if err.Kind != KindUnknownRef {
			t.Errorf("Kind = %v, want %v", err.Kind, KindUnknownRef)
		}
		if err.Function != "f" {
			t.Errorf("Function = %v, want 'f'", err.Function)
		}
	})

	t.Run("UnknownBlock", func(t *testing.T) {
		err := UnknownBlock("a.ir", 12, "f", "bb9")
		if err.Kind != KindUnknownRef {
			t.Errorf("Kind = %v, want %v", err.Kind, KindUnknownRef)
		}
		if !strings.Contains(err.Detail, "bb9") {
			t.Errorf("Detail = %v, should name block", err.Detail)
		}
	})

	t.Run("Duplicate", func(t *testing.T) {
		err := Duplicate("a.ir", 2, "function", "main")
		if err.Kind != KindDuplicate {
			t.Errorf("Kind = %v, want %v", err.Kind, KindDuplicate)
		}
	})

	t.Run("ArityMismatch", func(t *testing.T) {
		err := ArityMismatch("f", 2, 3)
		if err.Kind != KindArityMismatch {
			t.Errorf("Kind = %v, want %v", err.Kind, KindArityMismatch)
		}
		if !strings.Contains(err.Detail, "2") || !strings.Contains(err.Detail, "3") {
			t.Errorf("Detail = %v, should contain both counts", err.Detail)
		}
	})

	t.Run("TypeMismatch", func(t *testing.T) {
		err := TypeMismatch("f", "argument 0 has type %s, parameter wants %s", "Int", "Bool")
		if err.Kind != KindTypeMismatch {
			t.Errorf("Kind = %v, want %v", err.Kind, KindTypeMismatch)
		}
		if err.Function != "f" {
			t.Errorf("Function = %v, want 'f'", err.Function)
		}
	})

	t.Run("NotFound", func(t *testing.T) {
		err := NotFound(PhaseResolve, "method", "Dog.speak")
		if err.Kind != KindNotFound {
			t.Errorf("Kind = %v, want %v", err.Kind, KindNotFound)
		}
	})

	t.Run("Unsupported", func(t *testing.T) {
		err := Unsupported(PhaseInline, "objc method callee")
		if err.Kind != KindUnsupported {
			t.Errorf("Kind = %v, want %v", err.Kind, KindUnsupported)
		}
	})

	t.Run("BadLinkage", func(t *testing.T) {
		err := BadLinkage("fragileCaller", "hiddenHelper")
		if err.Kind != KindLinkage {
			t.Errorf("Kind = %v, want %v", err.Kind, KindLinkage)
		}
		if !strings.Contains(err.Detail, "hiddenHelper") {
			t.Errorf("Detail = %v, should name callee", err.Detail)
		}
	})

	t.Run("Load", func(t *testing.T) {
		cause := errors.New("no such file")
		err := Load("open input.ir", cause)
		if err.Kind != KindInvalidData {
			t.Errorf("Kind = %v, want %v", err.Kind, KindInvalidData)
		}
		if !errors.Is(err, &Error{Phase: PhaseLoad, Kind: KindInvalidData}) {
			t.Error("errors.Is should match load errors")
		}
	})

	t.Run("ParseFailed", func(t *testing.T) {
		cause := errors.New("bad token")
		err := ParseFailed("module", cause)
		if err.Phase != PhaseParse {
			t.Errorf("Phase = %v, want %v", err.Phase, PhaseParse)
		}
		if !errors.Is(errors.Unwrap(err), cause) {
			t.Error("cause not preserved")
		}
	})

	t.Run("Config", func(t *testing.T) {
		err := Config("decode opt.toml", errors.New("bad value"))
		if err.Phase != PhaseConfig {
			t.Errorf("Phase = %v, want %v", err.Phase, PhaseConfig)
		}
	})
}

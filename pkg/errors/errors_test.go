package errors

import (
	stderrors "errors"
	"fmt"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(CodeMissing, "tag %s not found", "color")

	if err.Code != CodeMissing {
		t.Errorf("Code = %v, want %v", err.Code, CodeMissing)
	}
	if err.Message != "tag color not found" {
		t.Errorf("Message = %q, want %q", err.Message, "tag color not found")
	}
	if got, want := err.Error(), "MISSING: tag color not found"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestWrap(t *testing.T) {
	cause := stderrors.New("unexpected end of JSON input")
	err := Wrap(CodeFormat, cause, "failed to parse tags json")

	if !stderrors.Is(err, cause) {
		t.Error("wrapped error should match cause via errors.Is")
	}
	if got, want := err.Error(), "FORMAT: failed to parse tags json: unexpected end of JSON input"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestIs(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code Code
		want bool
	}{
		{"MatchingCode", New(CodeCollision, "tag exists"), CodeCollision, true},
		{"DifferentCode", New(CodeCollision, "tag exists"), CodeMissing, false},
		{"WrappedInFmt", fmt.Errorf("context: %w", New(CodeDeleteDanger, "last alias")), CodeDeleteDanger, true},
		{"PlainError", stderrors.New("plain"), CodeGeneric, false},
		{"NilError", nil, CodeMissing, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Is(tt.err, tt.code); got != tt.want {
				t.Errorf("Is() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGetCode(t *testing.T) {
	if got := GetCode(New(CodeWrongType, "bad query")); got != CodeWrongType {
		t.Errorf("GetCode = %v, want %v", got, CodeWrongType)
	}
	if got := GetCode(stderrors.New("plain")); got != "" {
		t.Errorf("GetCode = %v, want empty", got)
	}
}

func TestUserMessage(t *testing.T) {
	if got := UserMessage(New(CodeMissing, "tag color not found")); got != "tag color not found" {
		t.Errorf("UserMessage = %q", got)
	}
	if got := UserMessage(stderrors.New("plain failure")); got != "plain failure" {
		t.Errorf("UserMessage = %q", got)
	}
}

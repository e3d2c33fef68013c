package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestRefusalFormatting(t *testing.T) {
	err := New(ErrCodeColumnOccupied, "column %d is occupied", 7)

	if err.Code != ErrCodeColumnOccupied || err.Message != "column 7 is occupied" {
		t.Fatalf("New = %+v", err)
	}
	if got, want := err.Error(), "COLUMN_OCCUPIED: column 7 is occupied"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if got := UserMessage(err); got != "column 7 is occupied" {
		t.Errorf("UserMessage = %q", got)
	}
}

func TestWrapKeepsCause(t *testing.T) {
	dial := errors.New("dial tcp: connection refused")
	err := Wrap(ErrCodeNetwork, dial, "POST %s failed", "/compile")

	if got, want := err.Error(), "NETWORK_ERROR: POST /compile failed: dial tcp: connection refused"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if errors.Unwrap(err) != dial || !errors.Is(err, dial) {
		t.Error("cause not reachable through the chain")
	}
}

func TestCodeLookup(t *testing.T) {
	refusal := New(ErrCodeLastColumn, "cannot delete the last column")
	wrapped := fmt.Errorf("drop onto canvas: %w", refusal)
	nested := Wrap(ErrCodeInternal, New(ErrCodeTemplateNotFound, "no template %q", "invoice"), "load")

	tests := []struct {
		name string
		err  error
		code Code
	}{
		{"direct", refusal, ErrCodeLastColumn},
		{"through fmt wrap", wrapped, ErrCodeLastColumn},
		{"outermost wins", nested, ErrCodeInternal},
		{"plain error", errors.New("boom"), ""},
		{"nil", nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetCode(tt.err); got != tt.code {
				t.Errorf("GetCode = %q, want %q", got, tt.code)
			}
			if tt.code != "" && !Is(tt.err, tt.code) {
				t.Errorf("Is(%q) = false", tt.code)
			}
			if Is(tt.err, ErrCodeRateLimited) {
				t.Error("Is matched an unrelated code")
			}
		})
	}
}

func TestUserMessagePlainError(t *testing.T) {
	if got := UserMessage(errors.New("template store offline")); got != "template store offline" {
		t.Errorf("UserMessage = %q", got)
	}
}

func TestStatusError(t *testing.T) {
	tests := []struct {
		status  int
		body    string
		message string
		code    Code
	}{
		{400, "unknown variable", "unknown variable", ErrCodeInvalidInput},
		{404, "", "request failed: 404 Not Found", ErrCodeNotFound},
		{408, "", "request failed: 408 Request Timeout", ErrCodeTimeout},
		{429, "slow down", "slow down", ErrCodeRateLimited},
		{502, "", "request failed: 502 Bad Gateway", ErrCodeServiceFailure},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.status), func(t *testing.T) {
			se := &StatusError{StatusCode: tt.status, Message: tt.body}
			if got := se.Error(); got != tt.message {
				t.Errorf("Error() = %q, want %q", got, tt.message)
			}
			if got := se.Code(); got != tt.code {
				t.Errorf("Code() = %v, want %v", got, tt.code)
			}
		})
	}
}

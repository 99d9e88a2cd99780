package errors

import (
	"strings"
	"testing"
)

func TestPipeError_Error(t *testing.T) {
	err := NewNotFound("CR-16-0002-A")
	if !strings.Contains(err.Error(), "NOT_FOUND") {
		t.Errorf("Error() = %q, want code included", err.Error())
	}
	if !strings.Contains(err.Error(), "CR-16-0002-A") {
		t.Errorf("Error() = %q, want identifier included", err.Error())
	}
}

func TestIs(t *testing.T) {
	tests := []struct {
		err  error
		code ErrorCode
		want bool
	}{
		{NewInvalidRequest("bad"), ErrInvalidRequest, true},
		{NewNotFound("x"), ErrNotFound, true},
		{NewConfiguration("missing", nil), ErrConfiguration, true},
		{NewUnsupportedJurisdiction("travis"), ErrUnsupportedJurisdiction, true},
		{NewExtraction("doc", "no body"), ErrExtraction, true},
		{NewDuplicateContent("abc"), ErrDuplicateContent, true},
		{NewPersistence("doc", nil), ErrPersistence, true},
		{NewInternal(nil), ErrInternal, true},
		{NewNotFound("x"), ErrInternal, false},
		{nil, ErrInternal, false},
	}
	for _, tt := range tests {
		if got := Is(tt.err, tt.code); got != tt.want {
			t.Errorf("Is(%v, %s) = %v, want %v", tt.err, tt.code, got, tt.want)
		}
	}
}

func TestNewConfiguration_WrapsCause(t *testing.T) {
	cause := NewInternal(nil)
	err := NewConfiguration("taxonomy file unreadable", cause)
	if !strings.Contains(err.Message, "taxonomy file unreadable") {
		t.Errorf("Message = %q", err.Message)
	}
	if !strings.Contains(err.Message, cause.Error()) {
		t.Errorf("Message = %q, want cause appended", err.Message)
	}
}

func TestDetails(t *testing.T) {
	err := NewUnsupportedJurisdiction("travis")
	if err.Details["jurisdiction"] != "travis" {
		t.Errorf("Details = %v", err.Details)
	}
}

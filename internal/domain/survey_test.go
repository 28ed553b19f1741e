package domain

import (
	"errors"
	"testing"
)

func TestValidateAnswers(t *testing.T) {
	tests := []struct {
		name    string
		qt      QuestionType
		answers []string
		wantErr bool
	}{
		{"select with one answer", QuestionSelect, []string{"yes"}, false},
		{"select with no answers", QuestionSelect, nil, true},
		{"select with two answers", QuestionSelect, []string{"yes", "no"}, true},
		{"text with one answer", QuestionText, []string{"free text"}, false},
		{"text with no answers", QuestionText, []string{}, true},
		{"text with two answers", QuestionText, []string{"a", "b"}, true},
		{"multiselect with one answer", QuestionMultiSelect, []string{"a"}, false},
		{"multiselect with five answers", QuestionMultiSelect, []string{"a", "b", "c", "d", "e"}, false},
		{"multiselect with no answers", QuestionMultiSelect, nil, true},
		{"unknown question type", QuestionType("ranking"), []string{"a"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateAnswers(tt.qt, tt.answers)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateAnswers(%q, %v) error = %v, wantErr %v", tt.qt, tt.answers, err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidArgument) {
				t.Fatalf("expected ErrInvalidArgument, got %v", err)
			}
		})
	}
}

func TestParseQuestionType(t *testing.T) {
	for _, valid := range []string{"select", "multiselect", "text"} {
		if _, ok := ParseQuestionType(valid); !ok {
			t.Errorf("ParseQuestionType(%q) should succeed", valid)
		}
	}
	for _, invalid := range []string{"", "ranking", "Select", "mutliselect"} {
		if _, ok := ParseQuestionType(invalid); ok {
			t.Errorf("ParseQuestionType(%q) should fail", invalid)
		}
	}
}

func TestRegisterRequestValidate(t *testing.T) {
	tests := []struct {
		name    string
		req     RegisterRequest
		wantErr bool
	}{
		{"valid", RegisterRequest{Username: "alice", Email: "a@x.com"}, false},
		{"missing username", RegisterRequest{Email: "a@x.com"}, true},
		{"missing email", RegisterRequest{Username: "alice"}, true},
		{"malformed email", RegisterRequest{Username: "alice", Email: "not-an-email"}, true},
		{"uppercase email normalized", RegisterRequest{Username: "alice", Email: "  A@X.COM "}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.req.Normalize()
			err := tt.req.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}

	req := RegisterRequest{Username: " alice ", Email: " A@X.com "}
	req.Normalize()
	if req.Email != "a@x.com" || req.Username != "alice" {
		t.Errorf("Normalize() = %q/%q, want a@x.com/alice", req.Email, req.Username)
	}
}

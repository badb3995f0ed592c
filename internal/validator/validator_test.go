package validator

import (
	"errors"
	"strings"
	"testing"

	"github.com/stemsi/exstem-prep/internal/model"
)

func TestStruct_TranslatesWithJSONNames(t *testing.T) {
	Setup()

	tests := []struct {
		name      string
		v         interface{}
		wantField string
	}{
		{"missing module", &model.StartSessionRequest{}, "module_id"},
		{"option out of range", &model.RecordAnswerRequest{QuestionID: "q", OptionIndex: intPtr(7)}, "option_index"},
		{"missing index", &model.NavigateRequest{}, "index"},
		{"unknown signal", &model.ReportSignalRequest{Signal: "telepathy"}, "signal"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fields := Struct(tt.v)
			msg, ok := fields[tt.wantField]
			if !ok {
				t.Fatalf("fields = %v, want key %q", fields, tt.wantField)
			}
			if !strings.Contains(msg, tt.wantField) {
				t.Errorf("message %q does not name the field", msg)
			}
		})
	}
}

func TestStruct_Valid(t *testing.T) {
	Setup()
	if fields := Struct(&model.RecordAnswerRequest{QuestionID: "q", OptionIndex: intPtr(0)}); fields != nil {
		t.Fatalf("fields = %v, want nil", fields)
	}
}

func TestTranslateErrors_NonValidation(t *testing.T) {
	fields := TranslateErrors(errors.New("unexpected EOF"))
	if fields["detail"] != "unexpected EOF" {
		t.Fatalf("fields = %v", fields)
	}
}

func intPtr(v int) *int { return &v }

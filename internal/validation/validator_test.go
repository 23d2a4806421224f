// Productrec - Neighbor-Based Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/productrec

package validation

import (
	"strings"
	"testing"
)

func TestGetValidator_Singleton(t *testing.T) {
	v1 := GetValidator()
	v2 := GetValidator()

	if v1 == nil {
		t.Fatal("GetValidator() should not return nil")
	}
	if v1 != v2 {
		t.Error("GetValidator() should return the same singleton instance")
	}
}

type requestStruct struct {
	UserID string `validate:"entityid"`
	Count  int    `validate:"gte=0,lte=100"`
	Mode   string `validate:"omitempty,oneof=fast exact"`
}

func TestValidateStruct(t *testing.T) {
	tests := []struct {
		name      string
		input     requestStruct
		wantErr   bool
		wantField string
		wantTag   string
	}{
		{
			name:  "valid",
			input: requestStruct{UserID: "A3SGXH7AUHU8GW", Count: 5},
		},
		{
			name:  "numeric id",
			input: requestStruct{UserID: "0042", Count: 0, Mode: "fast"},
		},
		{
			name:      "blank id",
			input:     requestStruct{UserID: "   ", Count: 5},
			wantErr:   true,
			wantField: "UserID",
			wantTag:   "entityid",
		},
		{
			name:      "count too large",
			input:     requestStruct{UserID: "u1", Count: 101},
			wantErr:   true,
			wantField: "Count",
			wantTag:   "lte",
		},
		{
			name:      "negative count",
			input:     requestStruct{UserID: "u1", Count: -1},
			wantErr:   true,
			wantField: "Count",
			wantTag:   "gte",
		},
		{
			name:      "unknown mode",
			input:     requestStruct{UserID: "u1", Mode: "slow"},
			wantErr:   true,
			wantField: "Mode",
			wantTag:   "oneof",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStruct(&tt.input)
			if !tt.wantErr {
				if err != nil {
					t.Fatalf("ValidateStruct() unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("ValidateStruct() expected error, got nil")
			}
			errs := err.Errors()
			if len(errs) != 1 {
				t.Fatalf("got %d errors, want 1: %v", len(errs), err)
			}
			if errs[0].Field() != tt.wantField {
				t.Errorf("Field() = %q, want %q", errs[0].Field(), tt.wantField)
			}
			if errs[0].Tag() != tt.wantTag {
				t.Errorf("Tag() = %q, want %q", errs[0].Tag(), tt.wantTag)
			}
		})
	}
}

func TestIsEntityID(t *testing.T) {
	tests := []struct {
		id   string
		want bool
	}{
		{"B001E4KFG0", true},
		{"user with spaces", true},
		{"ユーザー", true},
		{"", false},
		{" \t", false},
		{"bad\nid", false},
		{"bad\x00id", false},
		{strings.Repeat("a", MaxEntityIDLength), true},
		{strings.Repeat("a", MaxEntityIDLength+1), false},
	}

	for _, tt := range tests {
		if got := IsEntityID(tt.id); got != tt.want {
			t.Errorf("IsEntityID(%q) = %v, want %v", tt.id, got, tt.want)
		}
	}
}

func TestToAPIError_SingleError(t *testing.T) {
	err := ValidateStruct(&requestStruct{UserID: "", Count: 5})
	if err == nil {
		t.Fatal("expected validation error")
	}

	apiErr := err.ToAPIError()
	if apiErr.Code != "VALIDATION_ERROR" {
		t.Errorf("Code = %q, want VALIDATION_ERROR", apiErr.Code)
	}
	if !strings.Contains(apiErr.Message, "UserID") {
		t.Errorf("Message = %q, should name the field", apiErr.Message)
	}
	if apiErr.Details["field"] != "UserID" {
		t.Errorf("Details[field] = %v, want UserID", apiErr.Details["field"])
	}
}

func TestToAPIError_MultipleErrors(t *testing.T) {
	err := ValidateStruct(&requestStruct{UserID: "", Count: 500})
	if err == nil {
		t.Fatal("expected validation error")
	}

	apiErr := err.ToAPIError()
	fields, ok := apiErr.Details["fields"].([]map[string]interface{})
	if !ok {
		t.Fatalf("Details[fields] has type %T", apiErr.Details["fields"])
	}
	if len(fields) != 2 {
		t.Errorf("got %d field errors, want 2", len(fields))
	}
	if !strings.Contains(apiErr.Message, "; ") {
		t.Errorf("Message = %q, want joined messages", apiErr.Message)
	}
}

func TestToAPIError_Empty(t *testing.T) {
	ve := &RequestValidationError{}
	if ve.Error() != "validation failed" {
		t.Errorf("Error() = %q", ve.Error())
	}
	if got := ve.ToAPIError().Message; got != "Validation failed" {
		t.Errorf("Message = %q", got)
	}
}

func TestErrorMessages(t *testing.T) {
	type sample struct {
		Name  string `validate:"required"`
		Short string `validate:"min=3"`
		Small int    `validate:"max=10"`
		Min   int
		Top   int `validate:"gtefield=Min"`
	}

	err := ValidateStruct(&sample{Short: "ab", Small: 11, Min: 5, Top: 2})
	if err == nil {
		t.Fatal("expected validation error")
	}

	want := map[string]string{
		"Name":  "Name is required",
		"Short": "Short must be at least 3 characters",
		"Small": "Small must be at most 10",
		"Top":   "Top must be greater than or equal to Min",
	}
	for _, e := range err.Errors() {
		if msg, ok := want[e.Field()]; ok && e.Error() != msg {
			t.Errorf("%s: message = %q, want %q", e.Field(), e.Error(), msg)
		}
	}
	if len(err.Errors()) != len(want) {
		t.Errorf("got %d errors, want %d", len(err.Errors()), len(want))
	}
}

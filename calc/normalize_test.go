package calc

import (
	"errors"
	"fmt"
	"reflect"
	"testing"
)

func TestNewSingleRequest(t *testing.T) {
	req, err := NewSingleRequest("Copper", "surface_water", Single(Context{"hardness": "100 mg/L"}), "mg/L")
	if err != nil {
		t.Fatalf("NewSingleRequest error = %v", err)
	}

	want := &Request{
		Endpoint:   EndpointCalculate,
		Parameters: []ParameterSpec{{Name: "Copper"}},
		Media:      "surface_water",
		Contexts:   []Context{{"hardness": "100 mg/L"}},
		TargetUnit: "mg/L",
	}
	if !reflect.DeepEqual(req, want) {
		t.Fatalf("request = %+v, want %+v", req, want)
	}
}

func TestNewSingleRequest_NoContext(t *testing.T) {
	req, err := NewSingleRequest("Zinc", "surface_water", ContextInput{}, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(req.Contexts) != 1 || len(req.Contexts[0]) != 0 {
		t.Fatalf("contexts = %v, want one empty context", req.Contexts)
	}
	if req.ManyContexts {
		t.Error("ManyContexts should be false")
	}
	if req.HasContext() {
		t.Error("HasContext should be false for an empty context")
	}
}

func TestNewSingleRequest_ManyContexts(t *testing.T) {
	a := Context{"pH": "6.5 1"}
	b := Context{"pH": "8.0 1"}
	req, err := NewSingleRequest("Ammonia", "surface_water", Many(a, b), "")
	if err != nil {
		t.Fatal(err)
	}
	if !req.ManyContexts {
		t.Error("ManyContexts should be true")
	}
	if !reflect.DeepEqual(req.Contexts, []Context{a, b}) {
		t.Errorf("contexts = %v", req.Contexts)
	}
}

func TestNewSingleRequest_CopiesContexts(t *testing.T) {
	in := Context{"pH": "7.0 1"}
	req, err := NewSingleRequest("Copper", "surface_water", Single(in), "")
	if err != nil {
		t.Fatal(err)
	}
	in["pH"] = "9.0 1"
	if req.Contexts[0]["pH"] != "7.0 1" {
		t.Fatal("request must not alias the caller's context")
	}
}

func TestNewSingleRequest_Validation(t *testing.T) {
	tests := []struct {
		name      string
		parameter string
		media     string
		in        ContextInput
		field     string
	}{
		{"empty parameter", "", "surface_water", ContextInput{}, "parameter"},
		{"blank parameter", "   ", "surface_water", ContextInput{}, "parameter"},
		{"empty media", "Copper", "", ContextInput{}, "media"},
		{"empty context list", "Copper", "surface_water", Many(), "context"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSingleRequest(tt.parameter, tt.media, tt.in, "")
			if !errors.Is(err, ErrValidation) {
				t.Fatalf("err = %v, want ErrValidation", err)
			}
			var ve *ValidationError
			if !errors.As(err, &ve) || ve.Field != tt.field {
				t.Fatalf("err = %#v, want field %q", err, tt.field)
			}
		})
	}
}

func TestNewBatchRequest(t *testing.T) {
	params := []ParameterInput{
		Name("Aluminum"),
		ParameterSpec{Name: "Copper", TargetUnit: "mg/L"},
		Name("Lead"),
	}
	req, err := NewBatchRequest(params, "surface_water", Single(Context{"pH": "7.0 1"}))
	if err != nil {
		t.Fatal(err)
	}

	want := []ParameterSpec{
		{Name: "Aluminum"},
		{Name: "Copper", TargetUnit: "mg/L"},
		{Name: "Lead"},
	}
	if !reflect.DeepEqual(req.Parameters, want) {
		t.Errorf("parameters = %+v, want %+v", req.Parameters, want)
	}
	if req.Endpoint != EndpointBatch {
		t.Errorf("endpoint = %q", req.Endpoint)
	}
	if req.TargetUnit != "" {
		t.Errorf("batch requests carry no top-level target unit, got %q", req.TargetUnit)
	}
}

func manyNames(n int) []ParameterInput {
	out := make([]ParameterInput, n)
	for i := range out {
		out[i] = Name(fmt.Sprintf("Param%02d", i))
	}
	return out
}

func TestNewBatchRequest_SizeLimit(t *testing.T) {
	if _, err := NewBatchRequest(manyNames(MaxBatchParameters), "surface_water", ContextInput{}); err != nil {
		t.Fatalf("%d parameters should be accepted: %v", MaxBatchParameters, err)
	}

	_, err := NewBatchRequest(manyNames(MaxBatchParameters+1), "surface_water", ContextInput{})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}
	if got := err.Error(); got != "calc: invalid parameters: maximum 50 parameters per batch request, got 51" {
		t.Errorf("message = %q", got)
	}
}

func TestNewBatchRequest_Validation(t *testing.T) {
	tests := []struct {
		name   string
		params []ParameterInput
		media  string
		in     ContextInput
		field  string
	}{
		{"nil list", nil, "surface_water", ContextInput{}, "parameters"},
		{"empty list", []ParameterInput{}, "surface_water", ContextInput{}, "parameters"},
		{"blank name", []ParameterInput{Name("Copper"), Name("")}, "surface_water", ContextInput{}, "parameters[1]"},
		{"blank spec name", []ParameterInput{ParameterSpec{TargetUnit: "mg/L"}}, "surface_water", ContextInput{}, "parameters[0]"},
		{"nil entry", []ParameterInput{nil}, "surface_water", ContextInput{}, "parameters[0]"},
		{"empty media", Names("Copper"), " ", ContextInput{}, "media"},
		{"empty context list", Names("Copper"), "soil", Many(), "context"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewBatchRequest(tt.params, tt.media, tt.in)
			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("err = %v, want *ValidationError", err)
			}
			if ve.Field != tt.field {
				t.Errorf("field = %q, want %q", ve.Field, tt.field)
			}
		})
	}
}

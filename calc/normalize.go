package calc

import (
	"fmt"
	"strings"
)

// MaxBatchParameters is the largest parameter list a batch request accepts.
const MaxBatchParameters = 50

// NewSingleRequest validates and normalizes a single-parameter calculation.
func NewSingleRequest(parameter, media string, in ContextInput, targetUnit string) (*Request, error) {
	if strings.TrimSpace(parameter) == "" {
		return nil, &ValidationError{Field: "parameter", Reason: "must not be empty"}
	}
	if err := validateMedia(media); err != nil {
		return nil, err
	}
	contexts, err := normalizeContexts(in)
	if err != nil {
		return nil, err
	}

	return &Request{
		Endpoint:     EndpointCalculate,
		Parameters:   []ParameterSpec{{Name: parameter}},
		Media:        media,
		Contexts:     contexts,
		TargetUnit:   targetUnit,
		ManyContexts: in.many,
	}, nil
}

// NewBatchRequest validates and normalizes a batch calculation. Parameter
// order is preserved.
func NewBatchRequest(parameters []ParameterInput, media string, in ContextInput) (*Request, error) {
	if len(parameters) == 0 {
		return nil, &ValidationError{Field: "parameters", Reason: "must not be empty"}
	}
	if len(parameters) > MaxBatchParameters {
		return nil, &ValidationError{
			Field:  "parameters",
			Reason: fmt.Sprintf("maximum %d parameters per batch request, got %d", MaxBatchParameters, len(parameters)),
		}
	}

	specs := make([]ParameterSpec, len(parameters))
	for i, p := range parameters {
		if p == nil {
			return nil, &ValidationError{Field: fmt.Sprintf("parameters[%d]", i), Reason: "must not be nil"}
		}
		spec := p.parameterSpec()
		if strings.TrimSpace(spec.Name) == "" {
			return nil, &ValidationError{Field: fmt.Sprintf("parameters[%d]", i), Reason: "name must not be empty"}
		}
		specs[i] = spec
	}

	if err := validateMedia(media); err != nil {
		return nil, err
	}
	contexts, err := normalizeContexts(in)
	if err != nil {
		return nil, err
	}

	return &Request{
		Endpoint:     EndpointBatch,
		Parameters:   specs,
		Media:        media,
		Contexts:     contexts,
		ManyContexts: in.many,
	}, nil
}

func validateMedia(media string) error {
	if strings.TrimSpace(media) == "" {
		return &ValidationError{Field: "media", Reason: "must not be empty"}
	}
	return nil
}

// normalizeContexts returns a non-empty, caller-ordered copy of the input.
// No context becomes a single empty Context.
func normalizeContexts(in ContextInput) ([]Context, error) {
	if in.many && len(in.contexts) == 0 {
		return nil, &ValidationError{Field: "context", Reason: "context list must not be empty"}
	}
	if len(in.contexts) == 0 {
		return []Context{{}}, nil
	}

	out := make([]Context, len(in.contexts))
	for i, c := range in.contexts {
		out[i] = c.clone()
	}
	return out, nil
}

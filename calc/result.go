package calc

import (
	"encoding/json"
	"fmt"
)

// Guideline is one guideline record as returned by the remote service. The
// client never recomputes these values.
type Guideline struct {
	ID                     int      `json:"id"`
	Parameter              string   `json:"parameter"`
	ParameterSpecification string   `json:"parameter_specification"`
	Media                  string   `json:"media"`
	Value                  string   `json:"value"`
	Lower                  *float64 `json:"lower,omitempty"`
	Upper                  *float64 `json:"upper,omitempty"`
	Unit                   string   `json:"unit"`
	IsCalculated           bool     `json:"is_calculated"`
	Source                 string   `json:"source"`
	Basis                  *string  `json:"basis,omitempty"`
	Receptor               string   `json:"receptor"`
	ExposureDuration       string   `json:"exposure_duration"`
	GuidelineType          *string  `json:"guideline_type,omitempty"`
	Notes                  *string  `json:"notes,omitempty"`
	ReferenceID            *int     `json:"reference_id,omitempty"`
	DocumentID             *int     `json:"document_id,omitempty"`
	CreatedAt              *string  `json:"created_at,omitempty"`
	UpdatedAt              *string  `json:"updated_at,omitempty"`
	DocumentAbbreviation   string   `json:"document_abbreviation"`
	SourceAbbreviation     string   `json:"source_abbreviation"`

	// ContextIndex is the position of the context that produced this record
	// when several contexts were supplied.
	ContextIndex *int `json:"context_index,omitempty"`
}

// Result is the caller-facing calculation result. Exactly one of Context and
// Contexts is set, matching the shape the caller supplied.
type Result struct {
	Results    []Guideline `json:"results"`
	Context    Context     `json:"context,omitempty"`
	Contexts   []Context   `json:"contexts,omitempty"`
	TotalCount int         `json:"total_count"`

	// FromCache reports whether the payload was served from the cache.
	FromCache bool `json:"-"`
}

// payload is the wire shape of a calculation response.
type payload struct {
	Results    []Guideline     `json:"results"`
	Context    json.RawMessage `json:"context"`
	Contexts   json.RawMessage `json:"contexts"`
	TotalCount *int            `json:"total_count"`
}

// assemble decodes a raw payload into a Result for req. Context echoes prefer
// what the service returned and fall back to the request's contexts.
func assemble(req *Request, raw []byte, fromCache bool) (*Result, error) {
	var p payload
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("calc: decode %s response: %w", req.Endpoint, err)
	}

	res := &Result{
		Results:   p.Results,
		FromCache: fromCache,
	}
	if res.Results == nil {
		res.Results = []Guideline{}
	}
	if p.TotalCount != nil {
		res.TotalCount = *p.TotalCount
	} else {
		res.TotalCount = len(res.Results)
	}

	if req.ManyContexts {
		res.Contexts = echoedContexts(p, req.Contexts)
	} else {
		res.Context = echoedContext(p.Context, req.Contexts[0])
	}
	return res, nil
}

func echoedContext(raw json.RawMessage, fallback Context) Context {
	var c Context
	if len(raw) > 0 && json.Unmarshal(raw, &c) == nil && c != nil {
		return c
	}
	return fallback.clone()
}

func echoedContexts(p payload, fallback []Context) []Context {
	for _, raw := range []json.RawMessage{p.Contexts, p.Context} {
		var cs []Context
		if len(raw) > 0 && json.Unmarshal(raw, &cs) == nil && len(cs) > 0 {
			return cs
		}
	}
	out := make([]Context, len(fallback))
	for i, c := range fallback {
		out[i] = c.clone()
	}
	return out
}

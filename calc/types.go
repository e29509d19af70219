package calc

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Endpoint names a calculation endpoint of the remote service.
type Endpoint string

const (
	// EndpointCalculate evaluates one parameter.
	EndpointCalculate Endpoint = "calculate"
	// EndpointBatch evaluates up to MaxBatchParameters parameters.
	EndpointBatch Endpoint = "calculate/batch"
)

// ParameterInput is a parameter as supplied by the caller: a bare Name or a
// ParameterSpec.
type ParameterInput interface {
	parameterSpec() ParameterSpec
}

// Name is a bare parameter name; it normalizes to a ParameterSpec without a
// target unit.
type Name string

func (n Name) parameterSpec() ParameterSpec { return ParameterSpec{Name: string(n)} }

// Names converts plain strings to parameter inputs.
func Names(names ...string) []ParameterInput {
	out := make([]ParameterInput, len(names))
	for i, n := range names {
		out[i] = Name(n)
	}
	return out
}

// ParameterSpec is a normalized parameter with an optional target unit.
type ParameterSpec struct {
	Name       string `json:"name"`
	TargetUnit string `json:"target_unit,omitempty"`
}

func (p ParameterSpec) parameterSpec() ParameterSpec { return p }

// UnmarshalJSON accepts either "Copper" or {"name":"Copper","target_unit":"µg/L"}.
func (p *ParameterSpec) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var name string
		if err := json.Unmarshal(data, &name); err != nil {
			return err
		}
		*p = ParameterSpec{Name: name}
		return nil
	}

	type plain ParameterSpec
	var v plain
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("calc: parameter must be a string or an object: %w", err)
	}
	*p = ParameterSpec(v)
	return nil
}

// Context maps environmental variables to values with embedded units, e.g.
// {"pH": "7.0 1", "hardness": "100 mg/L"}. Key order carries no meaning.
type Context map[string]string

func (c Context) clone() Context {
	out := make(Context, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}

// ContextInput is the caller's context: Single(ctx), Many(ctxs...), or the
// zero value for "no context".
type ContextInput struct {
	contexts []Context
	many     bool
}

// Single wraps one context. The result echoes it as Result.Context.
func Single(c Context) ContextInput {
	return ContextInput{contexts: []Context{c}}
}

// Many wraps an ordered list of contexts. Results are tagged with the index
// of the context that produced them and the result echoes Result.Contexts.
func Many(cs ...Context) ContextInput {
	return ContextInput{contexts: cs, many: true}
}

// IsMany reports whether the caller supplied a list of contexts.
func (in ContextInput) IsMany() bool { return in.many }

// UnmarshalJSON accepts a single object, an array of objects, or null.
func (in *ContextInput) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		*in = ContextInput{}
		return nil
	case data[0] == '[':
		var cs []Context
		if err := json.Unmarshal(data, &cs); err != nil {
			return fmt.Errorf("calc: context list: %w", err)
		}
		*in = Many(cs...)
		return nil
	default:
		var c Context
		if err := json.Unmarshal(data, &c); err != nil {
			return fmt.Errorf("calc: context: %w", err)
		}
		*in = Single(c)
		return nil
	}
}

// MarshalJSON writes the shape the caller supplied.
func (in ContextInput) MarshalJSON() ([]byte, error) {
	if in.many {
		return json.Marshal(in.contexts)
	}
	if len(in.contexts) == 0 {
		return []byte("null"), nil
	}
	return json.Marshal(in.contexts[0])
}

// Request is a normalized, validated calculation request. It is built by
// NewSingleRequest or NewBatchRequest and must not be modified afterwards.
// It never carries credentials.
type Request struct {
	Endpoint   Endpoint
	Parameters []ParameterSpec
	Media      string
	Contexts   []Context
	TargetUnit string

	// ManyContexts records that the caller supplied a context list, which
	// selects the list form on the wire and in the Result.
	ManyContexts bool
}

// HasContext reports whether any context carries at least one variable.
func (r *Request) HasContext() bool {
	for _, c := range r.Contexts {
		if len(c) > 0 {
			return true
		}
	}
	return r.ManyContexts
}

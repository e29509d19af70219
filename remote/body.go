package remote

import (
	"encoding/json"

	"github.com/jonwraymond/guidelinely/calc"
)

// singleBody is the POST /calculate request body.
type singleBody struct {
	Parameter  string `json:"parameter"`
	Media      string `json:"media"`
	Context    any    `json:"context,omitempty"`
	TargetUnit string `json:"target_unit,omitempty"`
}

// batchBody is the POST /calculate/batch request body.
type batchBody struct {
	Parameters []any  `json:"parameters"`
	Media      string `json:"media"`
	Context    any    `json:"context,omitempty"`
}

// encodeBody renders req in the wire shape of its endpoint. A parameter
// without a target unit is sent as a bare name. The context is an object
// when the caller gave one context, an array when they gave a list, and
// omitted when it is empty.
func encodeBody(req *calc.Request) ([]byte, error) {
	ctx := wireContext(req)

	if req.Endpoint == calc.EndpointBatch {
		params := make([]any, len(req.Parameters))
		for i, p := range req.Parameters {
			if p.TargetUnit == "" {
				params[i] = p.Name
			} else {
				params[i] = p
			}
		}
		return json.Marshal(batchBody{
			Parameters: params,
			Media:      req.Media,
			Context:    ctx,
		})
	}

	return json.Marshal(singleBody{
		Parameter:  req.Parameters[0].Name,
		Media:      req.Media,
		Context:    ctx,
		TargetUnit: req.TargetUnit,
	})
}

func wireContext(req *calc.Request) any {
	if req.ManyContexts {
		return req.Contexts
	}
	if len(req.Contexts) == 0 || len(req.Contexts[0]) == 0 {
		return nil
	}
	return req.Contexts[0]
}

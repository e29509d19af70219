package calc

import "github.com/jonwraymond/guidelinely/cache"

var keyer = cache.NewDefaultKeyer()

// Canonicalize returns the cache identity of req.
//
// The key covers endpoint, parameters (in order), media, contexts (in order,
// each with sorted keys), the context shape and the target unit. A single
// context and a one-element list are different wire requests, so they get
// different keys. Request has no credential fields, so no secret can reach
// a key.
func Canonicalize(req *Request) (string, error) {
	params := make([]any, len(req.Parameters))
	for i, p := range req.Parameters {
		params[i] = map[string]any{
			"name":        p.Name,
			"target_unit": optional(p.TargetUnit),
		}
	}

	contexts := make([]any, len(req.Contexts))
	for i, c := range req.Contexts {
		m := make(map[string]any, len(c))
		for k, v := range c {
			m[k] = v
		}
		contexts[i] = m
	}

	return keyer.Key(string(req.Endpoint), map[string]any{
		"endpoint":    string(req.Endpoint),
		"parameters":  params,
		"media":       req.Media,
		"contexts":    contexts,
		"many":        req.ManyContexts,
		"target_unit": optional(req.TargetUnit),
	})
}

func optional(s string) any {
	if s == "" {
		return nil
	}
	return s
}

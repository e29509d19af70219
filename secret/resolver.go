package secret

import (
	"context"
	"fmt"
	"regexp"
	"strings"
)

const refPrefix = "secretref:"

// Resolver expands environment variables and resolves secret references.
//
// Contract:
//   - Concurrency: safe for concurrent use once built.
//   - Errors: missing variables match ErrMissingEnv, unknown providers
//     ErrUnknownProvider; provider errors are returned wrapped.
type Resolver struct {
	providers map[string]Provider
	lookup    LookupFunc
	strict    bool
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithProvider registers p under p.Name(), replacing any earlier one.
func WithProvider(p Provider) ResolverOption {
	return func(r *Resolver) {
		if p != nil {
			r.providers[p.Name()] = p
		}
	}
}

// WithLookup sets the variable source for expansion and the env provider.
func WithLookup(lookup LookupFunc) ResolverOption {
	return func(r *Resolver) {
		r.lookup = lookup
	}
}

// WithStrict makes an empty provider result an error.
func WithStrict() ResolverOption {
	return func(r *Resolver) {
		r.strict = true
	}
}

// NewResolver creates a resolver with the env and file providers
// registered.
func NewResolver(opts ...ResolverOption) *Resolver {
	r := &Resolver{providers: make(map[string]Provider)}
	for _, opt := range opts {
		opt(r)
	}
	if _, ok := r.providers["env"]; !ok {
		r.providers["env"] = EnvProvider{Lookup: r.lookup}
	}
	if _, ok := r.providers["file"]; !ok {
		r.providers["file"] = FileProvider{}
	}
	return r
}

// Resolve expands value and replaces any secret references in it.
func (r *Resolver) Resolve(ctx context.Context, value string) (string, error) {
	expanded, err := Expand(value, r.lookup)
	if err != nil {
		return "", err
	}
	if provider, ref, ok := ParseSecretRef(expanded); ok {
		return r.resolveRef(ctx, provider, ref)
	}
	if !strings.Contains(expanded, refPrefix) {
		return expanded, nil
	}
	return r.resolveInline(ctx, expanded)
}

// ParseSecretRef splits a whole-value reference secretref:<provider>:<ref>.
func ParseSecretRef(value string) (provider, ref string, ok bool) {
	rest, found := strings.CutPrefix(value, refPrefix)
	if !found {
		return "", "", false
	}
	provider, ref, found = strings.Cut(rest, ":")
	if !found || provider == "" || ref == "" {
		return "", "", false
	}
	return provider, ref, true
}

func (r *Resolver) resolveRef(ctx context.Context, name, ref string) (string, error) {
	p, ok := r.providers[name]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownProvider, name)
	}
	v, err := p.Resolve(ctx, ref)
	if err != nil {
		return "", fmt.Errorf("secret: resolve via %s: %w", name, err)
	}
	if r.strict && v == "" {
		return "", fmt.Errorf("%w: provider %s", ErrEmpty, name)
	}
	return v, nil
}

var inlineRef = regexp.MustCompile(`secretref:([^:\s]+):(\S+)`)

func (r *Resolver) resolveInline(ctx context.Context, value string) (string, error) {
	var firstErr error
	out := inlineRef.ReplaceAllStringFunc(value, func(m string) string {
		if firstErr != nil {
			return m
		}
		sub := inlineRef.FindStringSubmatch(m)
		v, err := r.resolveRef(ctx, sub[1], sub[2])
		if err != nil {
			firstErr = err
			return m
		}
		return v
	})
	if firstErr != nil {
		return "", firstErr
	}
	return out, nil
}

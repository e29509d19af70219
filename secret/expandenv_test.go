package secret

import (
	"errors"
	"strings"
	"testing"
)

func mapLookup(vars map[string]string) LookupFunc {
	return func(key string) (string, bool) {
		v, ok := vars[key]
		return v, ok
	}
}

func TestExpand(t *testing.T) {
	lookup := mapLookup(map[string]string{"KEY": "abc", "EMPTY": ""})

	tests := []struct {
		name    string
		in      string
		want    string
		missing []string
	}{
		{name: "plain", in: "no vars", want: "no vars"},
		{name: "braced", in: "${KEY}", want: "abc"},
		{name: "bare", in: "x-$KEY", want: "x-abc"},
		{name: "set but empty", in: "${EMPTY}", want: ""},
		{name: "bare unset is empty", in: "[$NOPE]", want: "[]"},
		{name: "escaped dollar", in: "$$KEY", want: "$KEY"},
		{name: "missing braced", in: "${B_MISSING}-${A_MISSING}", missing: []string{"A_MISSING", "B_MISSING"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Expand(tt.in, lookup)
			if len(tt.missing) > 0 {
				if !errors.Is(err, ErrMissingEnv) {
					t.Fatalf("Expand(%q) error = %v, want ErrMissingEnv", tt.in, err)
				}
				if !strings.HasSuffix(err.Error(), strings.Join(tt.missing, ", ")) {
					t.Errorf("error = %q, want names %v in order", err, tt.missing)
				}
				return
			}
			if err != nil {
				t.Fatalf("Expand(%q) error = %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("Expand(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestExpandEnvStrict(t *testing.T) {
	t.Setenv("GUIDELINELY_TEST_SECRET", "from-env")

	got, err := ExpandEnvStrict("${GUIDELINELY_TEST_SECRET}")
	if err != nil {
		t.Fatalf("ExpandEnvStrict() error = %v", err)
	}
	if got != "from-env" {
		t.Errorf("ExpandEnvStrict() = %q", got)
	}
}

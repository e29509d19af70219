package secret

import (
	"fmt"
	"os"
	"sort"
	"strings"
)

// LookupFunc reports the value of a variable and whether it is set.
type LookupFunc func(key string) (string, bool)

// ExpandEnvStrict expands $VAR and ${VAR} from the process environment.
// See Expand.
func ExpandEnvStrict(s string) (string, error) {
	return Expand(s, os.LookupEnv)
}

// Expand expands $VAR and ${VAR} using lookup.
//
// An unset ${VAR} is an error listing every missing name; an unset bare $VAR
// expands to "". $$ produces a literal $.
func Expand(s string, lookup LookupFunc) (string, error) {
	if lookup == nil {
		lookup = os.LookupEnv
	}

	const dollar = "\x00guidelinely-dollar\x00"
	s = strings.ReplaceAll(s, "$$", dollar)

	missing := map[string]struct{}{}
	out := os.Expand(s, func(name string) string {
		v, ok := lookup(name)
		if !ok && braced(s, name) {
			missing[name] = struct{}{}
		}
		return v
	})
	if len(missing) > 0 {
		names := make([]string, 0, len(missing))
		for name := range missing {
			names = append(names, name)
		}
		sort.Strings(names)
		return "", fmt.Errorf("%w: %s", ErrMissingEnv, strings.Join(names, ", "))
	}
	return strings.ReplaceAll(out, dollar, "$"), nil
}

func braced(s, name string) bool {
	return strings.Contains(s, "${"+name+"}")
}

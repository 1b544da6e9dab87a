package reconcile

import (
	"fmt"
	"strings"
)

// Substitutions rewrites catalog and schema segments of extracted table
// references. Keys are matched against the already lower-cased reference
// segments. Substitution is applied once, after extraction and before
// catalog resolution, and never to manifest-side keys.
//
// Applying the same maps twice is idempotent only when no replacement value
// is itself a mapped key; callers must not re-apply.
type Substitutions struct {
	Catalog map[string]string
	Schema  map[string]string
}

// Empty reports whether no substitutions are configured.
func (s Substitutions) Empty() bool {
	return len(s.Catalog) == 0 && len(s.Schema) == 0
}

// Apply rewrites one normalized reference string. The catalog map applies
// to the first segment of a 3-segment reference; the schema map to the
// middle segment of a 2- or 3-segment reference. A bare table name passes
// through unchanged, as does any unmapped segment. The result is
// lower-cased.
func (s Substitutions) Apply(ref string) string {
	parts := strings.Split(ref, ".")

	switch len(parts) {
	case 2:
		if sub, ok := s.Schema[parts[0]]; ok {
			parts[0] = sub
		}
	case 3:
		if sub, ok := s.Catalog[parts[0]]; ok {
			parts[0] = sub
		}
		if sub, ok := s.Schema[parts[1]]; ok {
			parts[1] = sub
		}
	}

	return strings.ToLower(strings.Join(parts, "."))
}

// ParseSubstitutionPairs parses repeated "original=substitute" flag values
// into a map. Both sides must be non-empty.
func ParseSubstitutionPairs(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}

	subs := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		orig, sub, found := strings.Cut(pair, "=")
		if !found || orig == "" || sub == "" {
			return nil, fmt.Errorf("invalid substitution %q: expected original=substitute", pair)
		}
		subs[strings.ToLower(orig)] = strings.ToLower(sub)
	}
	return subs, nil
}

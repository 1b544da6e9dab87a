package reconcile_test

import (
	"testing"

	"github.com/leapstack-labs/buildcheck/pkg/reconcile"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubstitutionsApply(t *testing.T) {
	subs := reconcile.Substitutions{
		Catalog: map[string]string{"raw_db": "prod_db"},
		Schema:  map[string]string{"raw": "prod_raw"},
	}

	tests := []struct {
		name string
		ref  string
		want string
	}{
		{
			name: "three segments get catalog and schema substitution",
			ref:  "raw_db.raw.users",
			want: "prod_db.prod_raw.users",
		},
		{
			name: "two segments get schema substitution only",
			ref:  "raw.users",
			want: "prod_raw.users",
		},
		{
			name: "bare name passes through",
			ref:  "raw_db",
			want: "raw_db",
		},
		{
			name: "unmapped names pass through",
			ref:  "other_db.public.users",
			want: "other_db.public.users",
		},
		{
			name: "catalog map never applies to the middle segment",
			ref:  "x.raw_db.users",
			want: "x.raw_db.users",
		},
		{
			name: "result is lower-cased",
			ref:  "raw_db.raw.Users",
			want: "prod_db.prod_raw.users",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, subs.Apply(tt.ref))
		})
	}
}

func TestSubstitutionsNotGenerallyIdempotent(t *testing.T) {
	// When a replacement value is itself a mapped key, applying twice
	// rewrites twice. Callers apply exactly once, after extraction.
	subs := reconcile.Substitutions{
		Schema: map[string]string{"a": "b", "b": "c"},
	}

	once := subs.Apply("a.users")
	assert.Equal(t, "b.users", once)
	assert.Equal(t, "c.users", subs.Apply(once))

	// With no replacement value among the keys, double application is safe.
	safe := reconcile.Substitutions{Schema: map[string]string{"raw": "prod"}}
	once = safe.Apply("raw.users")
	assert.Equal(t, once, safe.Apply(once))
}

func TestSubstitutionsEmpty(t *testing.T) {
	assert.True(t, reconcile.Substitutions{}.Empty())
	assert.False(t, reconcile.Substitutions{Schema: map[string]string{"a": "b"}}.Empty())

	assert.Equal(t, "raw_db.raw.users", reconcile.Substitutions{}.Apply("raw_db.raw.users"))
}

func TestParseSubstitutionPairs(t *testing.T) {
	tests := []struct {
		name    string
		pairs   []string
		want    map[string]string
		wantErr bool
	}{
		{
			name:  "empty input yields nil map",
			pairs: nil,
			want:  nil,
		},
		{
			name:  "single pair",
			pairs: []string{"raw_db=prod_db"},
			want:  map[string]string{"raw_db": "prod_db"},
		},
		{
			name:  "multiple pairs",
			pairs: []string{"a=b", "c=d"},
			want:  map[string]string{"a": "b", "c": "d"},
		},
		{
			name:  "pairs are lower-cased",
			pairs: []string{"RAW_DB=Prod_DB"},
			want:  map[string]string{"raw_db": "prod_db"},
		},
		{
			name:    "missing separator",
			pairs:   []string{"raw_db"},
			wantErr: true,
		},
		{
			name:    "empty original",
			pairs:   []string{"=prod"},
			wantErr: true,
		},
		{
			name:    "empty substitute",
			pairs:   []string{"raw="},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := reconcile.ParseSubstitutionPairs(tt.pairs)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

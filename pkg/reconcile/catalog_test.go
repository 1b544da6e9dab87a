package reconcile_test

import (
	"testing"

	"github.com/leapstack-labs/buildcheck/pkg/reconcile"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildCatalogGranularities(t *testing.T) {
	catalog := reconcile.BuildCatalog([]reconcile.TableMeta{
		{
			Kind:    reconcile.KindModel,
			ID:      "model.proj.users",
			Name:    "users",
			Catalog: "analytics",
			Schema:  "public",
		},
	})

	for _, ref := range []string{"users", "public.users", "analytics.public.users"} {
		meta, ok := catalog.Resolve(ref)
		require.True(t, ok, "expected %q to resolve", ref)
		assert.Equal(t, "model.proj.users", meta.ID)
	}

	_, ok := catalog.Resolve("other.users")
	assert.False(t, ok)
}

func TestBuildCatalogLowerCasesKeys(t *testing.T) {
	catalog := reconcile.BuildCatalog([]reconcile.TableMeta{
		{Kind: reconcile.KindSource, ID: "source.proj.raw.Events", Name: "Events", Schema: "Raw"},
	})

	_, ok := catalog.Resolve("raw.events")
	assert.True(t, ok)

	// Resolution is exact-match on the lower-cased key
	_, ok = catalog.Resolve("Raw.Events")
	assert.False(t, ok)
}

func TestBuildCatalogPartialQualification(t *testing.T) {
	// Without a schema there is only the bare-name key; without a catalog
	// there is no three-segment key.
	catalog := reconcile.BuildCatalog([]reconcile.TableMeta{
		{Kind: reconcile.KindModel, ID: "model.proj.a", Name: "a"},
		{Kind: reconcile.KindModel, ID: "model.proj.b", Name: "b", Schema: "s"},
	})

	_, ok := catalog.Resolve("a")
	assert.True(t, ok)
	_, ok = catalog.Resolve("s.b")
	assert.True(t, ok)
	_, ok = catalog.Resolve("c.s.b")
	assert.False(t, ok)

	assert.Len(t, catalog, 3)
}

func TestCatalogDuplicateKeyLastWins(t *testing.T) {
	// Two sources sharing a bare table name silently collide; the later
	// insertion wins. Ambiguous manifests are not validated further.
	catalog := reconcile.BuildCatalog([]reconcile.TableMeta{
		{Kind: reconcile.KindSource, ID: "source.proj.raw.users", Name: "users", Schema: "raw"},
		{Kind: reconcile.KindSource, ID: "source.proj.backup.users", Name: "users", Schema: "backup"},
	})

	meta, ok := catalog.Resolve("users")
	require.True(t, ok)
	assert.Equal(t, "source.proj.backup.users", meta.ID)

	// The qualified keys still address their own entries
	meta, ok = catalog.Resolve("raw.users")
	require.True(t, ok)
	assert.Equal(t, "source.proj.raw.users", meta.ID)
}

func TestBuildCatalogSkipsNamelessEntries(t *testing.T) {
	catalog := reconcile.BuildCatalog([]reconcile.TableMeta{
		{Kind: reconcile.KindModel, ID: "model.proj.broken"},
	})
	assert.Empty(t, catalog)
}

package env

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBaseAdd(t *testing.T) {
	t.Run("rejects empty key", func(t *testing.T) {
		base := NewBase()
		assert.ErrorContains(t, base.Add("", 1), "key must be a non-empty string")
	})

	t.Run("binding is visible to scopes created afterwards", func(t *testing.T) {
		base := NewBase()
		require.NoError(t, base.Add("answer", 42))

		scope, err := base.NewScope("modules/a")
		require.NoError(t, err)

		v, ok := scope.Get("answer")
		require.True(t, ok)
		assert.Equal(t, 42, v)
	})

	t.Run("binding is visible to scopes created before", func(t *testing.T) {
		base := NewBase()
		scope, err := base.NewScope("modules/a")
		require.NoError(t, err)

		_, ok := scope.Get("late")
		require.False(t, ok)

		require.NoError(t, base.Add("late", "value"))
		v, ok := scope.Get("late")
		require.True(t, ok)
		assert.Equal(t, "value", v)
	})
}

func TestScopeIsolation(t *testing.T) {
	t.Run("writes stay private to the writing scope", func(t *testing.T) {
		base := NewBase()
		require.NoError(t, base.Add("shared", "base"))

		a, err := base.NewScope("modules/a")
		require.NoError(t, err)
		b, err := base.NewScope("modules/b")
		require.NoError(t, err)

		require.NoError(t, a.Set("shared", "overridden"))

		v, _ := a.Get("shared")
		assert.Equal(t, "overridden", v, "local write wins for the writer")
		v, _ = b.Get("shared")
		assert.Equal(t, "base", v, "sibling still reads the base value")
	})

	t.Run("local-only keys never leak to siblings", func(t *testing.T) {
		base := NewBase()
		a, err := base.NewScope("modules/a")
		require.NoError(t, err)
		b, err := base.NewScope("modules/b")
		require.NoError(t, err)

		require.NoError(t, a.Set("private", true))
		_, ok := b.Get("private")
		assert.False(t, ok)
		assert.Zero(t, base.Len())
	})

	t.Run("rejects empty identity and empty key", func(t *testing.T) {
		base := NewBase()
		_, err := base.NewScope("")
		assert.ErrorContains(t, err, "modulePath must be a non-empty string")

		scope, err := base.NewScope("modules/a")
		require.NoError(t, err)
		assert.ErrorContains(t, scope.Set("", 1), "key must be a non-empty string")
	})
}

func TestModulePathBinding(t *testing.T) {
	base := NewBase()
	scope, err := base.NewScope("modules/radar")
	require.NoError(t, err)

	assert.Equal(t, "modules/radar", scope.ModulePath())
	v, ok := scope.Get(KeyModulePath)
	require.True(t, ok)
	assert.Equal(t, "modules/radar", v)
}

func TestGlobalScope(t *testing.T) {
	t.Run("writes land in the shared base", func(t *testing.T) {
		base := NewBase()
		global := base.GlobalScope()

		require.NoError(t, global.Set("lib", "loaded"))

		scope, err := base.NewScope("modules/a")
		require.NoError(t, err)
		v, ok := scope.Get("lib")
		require.True(t, ok)
		assert.Equal(t, "loaded", v)
	})

	t.Run("has no identity", func(t *testing.T) {
		base := NewBase()
		assert.Empty(t, base.GlobalScope().ModulePath())
	})
}

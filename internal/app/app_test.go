package app

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeScript(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestNew(t *testing.T) {
	t.Run("missing scripts root fails", func(t *testing.T) {
		_, err := New(&bytes.Buffer{}, &Config{ScriptsRoot: filepath.Join(t.TempDir(), "nope")})
		assert.ErrorContains(t, err, "failed to open scripts root")
	})

	t.Run("broken config file fails", func(t *testing.T) {
		cfgPath := filepath.Join(t.TempDir(), "mainframe.hcl")
		require.NoError(t, os.WriteFile(cfgPath, []byte("mainframe {"), 0o644))

		_, err := New(&bytes.Buffer{}, &Config{ConfigPath: cfgPath, ScriptsRoot: t.TempDir()})
		assert.ErrorContains(t, err, "failed to load configuration")
	})
}

func TestRun(t *testing.T) {
	t.Run("loads libraries then modules from disk", func(t *testing.T) {
		root := t.TempDir()
		writeScript(t, root, "mainframe/libraries/greet.go", `
import "mainframe"

func Load(s *mainframe.Scope) any {
	s.Set("greeting", "hello")
	return nil
}
`)
		writeScript(t, root, "mainframe/modules/hello.go", `
import (
	"fmt"

	"mainframe"
)

func Load(s *mainframe.Scope) any {
	if mainframe.StepOf(s) == mainframe.StepDeclare {
		return mainframe.Manifest{}
	}
	if _, ok := s.Get("greeting"); !ok {
		panic(fmt.Errorf("library binding missing at module run time"))
	}
	s.Set("ran", true)
	return nil
}
`)

		var out bytes.Buffer
		a, err := New(&out, &Config{ScriptsRoot: root, LogLevel: "debug"})
		require.NoError(t, err)
		defer a.Close()

		require.NoError(t, a.Run(context.Background()))

		// The library binding landed in the shared base.
		probe, err := a.Bootstrapper().CreateEnvironment("probe")
		require.NoError(t, err)
		v, ok := probe.Get("greeting")
		require.True(t, ok)
		assert.Equal(t, "hello", v)

		// Module-local writes did not.
		_, ok = probe.Get("ran")
		assert.False(t, ok)
	})

	t.Run("module dependencies order execution across files", func(t *testing.T) {
		root := t.TempDir()
		recordScript := func(id, deps string) string {
			return `
import "mainframe"

func Load(s *mainframe.Scope) any {
	if mainframe.StepOf(s) == mainframe.StepDeclare {
		return mainframe.Manifest{Dependencies: []string{` + deps + `}}
	}
	v, _ := s.Get("order")
	list := v.(*[]string)
	*list = append(*list, "` + id + `")
	return nil
}
`
		}
		writeScript(t, root, "mainframe/modules/consumer.go", recordScript("consumer", `"provider"`))
		writeScript(t, root, "mainframe/modules/provider.go", recordScript("provider", ""))

		var out bytes.Buffer
		a, err := New(&out, &Config{ScriptsRoot: root})
		require.NoError(t, err)
		defer a.Close()

		order := &[]string{}
		require.NoError(t, a.Bootstrapper().AddToEnvironment("order", order))

		require.NoError(t, a.Run(context.Background()))
		assert.Equal(t, []string{"provider", "consumer"}, *order)
	})
}

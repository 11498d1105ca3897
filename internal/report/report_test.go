package report

import (
	"bytes"
	"fmt"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReporter(t *testing.T) {
	t.Run("default handler logs and returns the error", func(t *testing.T) {
		var buf bytes.Buffer
		rep := New(slog.New(slog.NewTextHandler(&buf, nil)))

		in := fmt.Errorf("module blew up")
		out := rep.Report(in)
		assert.Same(t, in, out)
		assert.Contains(t, buf.String(), "script error")
		assert.Contains(t, buf.String(), "module blew up")
	})

	t.Run("nil errors are ignored", func(t *testing.T) {
		var buf bytes.Buffer
		rep := New(slog.New(slog.NewTextHandler(&buf, nil)))

		assert.NoError(t, rep.Report(nil))
		assert.Empty(t, buf.String())
	})

	t.Run("replace swaps the handler wholesale", func(t *testing.T) {
		var buf bytes.Buffer
		rep := New(slog.New(slog.NewTextHandler(&buf, nil)))

		var seen []error
		require.NoError(t, rep.Replace(func(err error) error {
			seen = append(seen, err)
			return err
		}))

		rep.Report(fmt.Errorf("handled elsewhere"))
		require.Len(t, seen, 1)
		assert.Empty(t, buf.String(), "default handler no longer runs")
	})

	t.Run("nil handler is rejected", func(t *testing.T) {
		rep := New(slog.Default())
		assert.ErrorContains(t, rep.Replace(nil), "handler must be non-nil")
	})
}

func TestCall(t *testing.T) {
	t.Run("passes results through", func(t *testing.T) {
		assert.NoError(t, Call(func() error { return nil }))

		want := fmt.Errorf("ordinary failure")
		assert.Same(t, want, Call(func() error { return want }))
	})

	t.Run("converts panics into errors", func(t *testing.T) {
		err := Call(func() error { panic("boom") })
		require.Error(t, err)
		assert.ErrorContains(t, err, "recovered panic: boom")
	})
}

func TestCallValue(t *testing.T) {
	t.Run("passes results through", func(t *testing.T) {
		v, err := CallValue(func() (any, error) { return 42, nil })
		require.NoError(t, err)
		assert.Equal(t, 42, v)
	})

	t.Run("converts panics and drops the value", func(t *testing.T) {
		v, err := CallValue(func() (any, error) { panic(fmt.Errorf("typed panic")) })
		require.Error(t, err)
		assert.Nil(t, v)
		assert.ErrorContains(t, err, "typed panic")
	})
}

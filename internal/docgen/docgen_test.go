package docgen

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetch(t *testing.T) {
	t.Run("decodes the published document", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{
				"title": "Host API",
				"version": "2.1",
				"sections": [
					{
						"name": "Hooks",
						"description": "Event callbacks.",
						"entries": [
							{"name": "AddHook", "signature": "AddHook(event, name, fn)", "description": "Registers a callback."}
						]
					}
				]
			}`))
		}))
		defer server.Close()

		doc, err := Fetch(server.URL)
		require.NoError(t, err)
		assert.Equal(t, "Host API", doc.Title)
		assert.Equal(t, "2.1", doc.Version)
		require.Len(t, doc.Sections, 1)
		require.Len(t, doc.Sections[0].Entries, 1)
		assert.Equal(t, "AddHook", doc.Sections[0].Entries[0].Name)
	})

	t.Run("non-success status fails", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "gone", http.StatusNotFound)
		}))
		defer server.Close()

		_, err := Fetch(server.URL)
		assert.ErrorContains(t, err, "unexpected status")
	})

	t.Run("unreachable host fails", func(t *testing.T) {
		_, err := Fetch("http://127.0.0.1:0/doc.json")
		assert.Error(t, err)
	})
}

func TestRender(t *testing.T) {
	t.Run("rejects a nil document", func(t *testing.T) {
		assert.ErrorContains(t, Render(&strings.Builder{}, nil), "must be non-nil")
	})

	t.Run("renders titles, sections and signatures", func(t *testing.T) {
		doc := &Document{
			Title:   "Host API",
			Version: "2.1",
			Sections: []Section{
				{
					Name:        "Hooks",
					Description: "Event callbacks.",
					Entries: []Entry{
						{Name: "AddHook", Signature: "AddHook(event, name, fn)", Description: "Registers a callback."},
						{Name: "RemoveHook", Description: "Drops a callback."},
					},
				},
			},
		}

		var out strings.Builder
		require.NoError(t, Render(&out, doc))
		got := out.String()

		assert.Contains(t, got, "# Host API (2.1)")
		assert.Contains(t, got, "## Hooks")
		assert.Contains(t, got, "### AddHook")
		assert.Contains(t, got, "`AddHook(event, name, fn)`")
		assert.Contains(t, got, "Drops a callback.")
	})

	t.Run("omits the version suffix when empty", func(t *testing.T) {
		var out strings.Builder
		require.NoError(t, Render(&out, &Document{Title: "Host API"}))
		assert.Contains(t, out.String(), "# Host API\n")
	})
}

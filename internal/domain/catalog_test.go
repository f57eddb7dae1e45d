package domain

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDecodeCatalogKeepsServerOrder(t *testing.T) {
	body := `{
		"Programming Class": {"description": "Learn code", "schedule": "Tue 3pm", "max_participants": 20, "participants": []},
		"Chess Club": {"description": "Play chess", "schedule": "Fri 3pm", "max_participants": 5, "participants": ["a@x.com"]},
		"Art Studio": {"description": "Paint", "schedule": "Mon 4pm", "max_participants": 1, "participants": ["b@x.com", "c@x.com"]}
	}`

	catalog, err := DecodeCatalog(strings.NewReader(body))
	require.NoError(t, err)
	require.Equal(t, []string{"Programming Class", "Chess Club", "Art Studio"}, catalog.Names())

	chess, ok := catalog.Get("Chess Club")
	require.True(t, ok)
	require.Equal(t, "Play chess", chess.Description)
	require.Equal(t, "Fri 3pm", chess.Schedule)
	require.Equal(t, 4, chess.SpotsLeft())

	art, _ := catalog.Get("Art Studio")
	require.Equal(t, -1, art.SpotsLeft())
}

func TestDecodeCatalogDuplicateKeyKeepsFirstPosition(t *testing.T) {
	body := `{"A": {"participants": ["one@x.com"]}, "B": {"participants": []}, "A": {"participants": ["two@x.com"]}}`

	catalog, err := DecodeCatalog(strings.NewReader(body))
	require.NoError(t, err)
	require.Equal(t, []string{"A", "B"}, catalog.Names())

	a, _ := catalog.Get("A")
	require.Equal(t, []string{"two@x.com"}, a.Participants)
}

func TestDecodeCatalogRejectsMalformedBodies(t *testing.T) {
	cases := map[string]string{
		"empty":                 ``,
		"null":                  `null`,
		"array":                 `[]`,
		"missing participants":  `{"A": {"description": "x"}}`,
		"null participants":     `{"A": {"participants": null}}`,
		"non string email":      `{"A": {"participants": [1]}}`,
		"truncated":             `{"A": {"participants": []}`,
		"trailing garbage":      `{"A": {"participants": []}} x`,
		"string max":            `{"A": {"max_participants": "5", "participants": []}}`,
		"details not an object": `{"A": 3}`,
	}

	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeCatalog(strings.NewReader(body))
			require.ErrorIs(t, err, ErrMalformedCatalog)
		})
	}
}

func TestDecodeCatalogEmptyObject(t *testing.T) {
	catalog, err := DecodeCatalog(strings.NewReader(`{}`))
	require.NoError(t, err)
	require.Zero(t, catalog.Len())
}

func TestCatalogMarshalPreservesOrder(t *testing.T) {
	catalog := NewCatalog(
		Activity{Name: "Zeta", Details: ActivityDetails{MaxParticipants: 2}},
		Activity{Name: "Alpha", Details: ActivityDetails{MaxParticipants: 3, Participants: []string{"a@x.com"}}},
	)

	data, err := json.Marshal(catalog)
	require.NoError(t, err)
	require.True(t, strings.Index(string(data), `"Zeta"`) < strings.Index(string(data), `"Alpha"`))
	require.Contains(t, string(data), `"participants":[]`)

	var decoded Catalog
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Equal(t, catalog.Activities(), decoded.Activities())
}

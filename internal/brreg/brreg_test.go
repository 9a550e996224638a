package brreg

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestShouldLookup(t *testing.T) {
	t.Parallel()

	require.True(t, ShouldLookup("974760673"))
	require.True(t, ShouldLookup(" 974 760 673 "))
	require.False(t, ShouldLookup("97476067"))   // 8 digits
	require.False(t, ShouldLookup("9747606731")) // 10 digits
	require.False(t, ShouldLookup("97476067a"))
	require.False(t, ShouldLookup(""))
}

func TestLookup(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/enhetsregisteret/api/enheter/974760673", r.URL.Path)
		_, _ = w.Write([]byte(`{
			"organisasjonsnummer": "974760673",
			"navn": "REGISTERENHETEN I BRØNNØYSUND",
			"forretningsadresse": {
				"adresse": ["Havnegata 48"],
				"postnummer": "8900",
				"poststed": "BRØNNØYSUND",
				"land": "Norge"
			}
		}`))
	}))
	t.Cleanup(srv.Close)

	u, err := New(srv.URL).Lookup(context.Background(), "974 760 673")
	require.NoError(t, err)
	require.Equal(t, "REGISTERENHETEN I BRØNNØYSUND", u.Name)
	require.Equal(t, "Havnegata 48", u.Street)
	require.Equal(t, "8900", u.PostalCode)
	require.Equal(t, "BRØNNØYSUND", u.City)
}

func TestLookupNotFound(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	t.Cleanup(srv.Close)

	_, err := New(srv.URL).Lookup(context.Background(), "999999999")
	require.Error(t, err)
	require.Contains(t, err.Error(), "999999999")
}

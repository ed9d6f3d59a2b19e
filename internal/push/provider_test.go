package push

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHTTPProviderDeliversPerToken(t *testing.T) {
	var seen []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req providerRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		seen = append(seen, req.To)
		json.NewEncoder(w).Encode(providerResponse{})
	}))
	defer server.Close()

	provider := NewHTTPProvider(server.URL, "test-key")
	results, err := provider.Send(context.Background(), []string{"a", "b"}, Notification{Title: "t", Body: "b"})
	require.NoError(t, err)
	require.Len(t, results, 2)
	require.Equal(t, []string{"a", "b"}, seen)
	for _, r := range results {
		require.False(t, r.Invalid)
		require.NoError(t, r.Err)
	}
}

func TestHTTPProviderFlagsUnregisteredToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(providerResponse{
			Failure: 1,
			Results: []struct {
				Error string `json:"error"`
			}{{Error: "NotRegistered"}},
		})
	}))
	defer server.Close()

	provider := NewHTTPProvider(server.URL, "test-key")
	results, err := provider.Send(context.Background(), []string{"dead"}, Notification{})
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.True(t, results[0].Invalid)
}

func TestHTTPProviderReportsEndpointErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	provider := NewHTTPProvider(server.URL, "test-key")
	results, err := provider.Send(context.Background(), []string{"t"}, Notification{})
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Error(t, results[0].Err)
	require.False(t, results[0].Invalid)
}

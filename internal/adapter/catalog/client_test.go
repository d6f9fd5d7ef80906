package catalog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogClient_GetItem(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/items/exp_hot_air_balloon", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"exp_hot_air_balloon","title":"Hot Air Balloon Ride","vendor_id":"vnd_1","price":14900}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, srv.Client())

	item, err := client.GetItem(context.Background(), "exp_hot_air_balloon")
	require.NoError(t, err)
	require.NotNil(t, item)
	assert.Equal(t, "Hot Air Balloon Ride", item.Title)
	assert.Equal(t, int64(14900), item.Price)
}

func TestCatalogClient_NotFoundIsNilNil(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, srv.Client())

	item, err := client.GetItem(context.Background(), "exp_missing")
	assert.NoError(t, err)
	assert.Nil(t, item)
}

func TestCatalogClient_ServerErrorIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, srv.Client())

	_, err := client.GetItem(context.Background(), "exp_1")
	assert.Error(t, err)
}

func TestCatalogClient_EscapesItemID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/items/exp%2F..%2Fadmin", r.URL.RawPath)
		w.Write([]byte(`{"id":"x","title":"y"}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, srv.Client())

	_, err := client.GetItem(context.Background(), "exp/../admin")
	assert.NoError(t, err)
}

package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clam-browse/internal/browse"
)

func TestFetchProductsEnvelope(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/products", r.URL.Path)
		gotQuery = r.URL.Query().Get("q")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"products":[{"id":"p1","name":"Red Shoe","category":"Footwear","brand":"A","price":50,"rating":4}],"total":1}`))
	}))
	defer srv.Close()

	products, err := NewClient(srv.URL+"/", nil).FetchProducts(context.Background(), "red shoe")
	require.NoError(t, err)

	assert.Equal(t, "red shoe", gotQuery)
	assert.Equal(t, []browse.Product{
		{ID: "p1", Name: "Red Shoe", Category: "Footwear", Brand: "A", Price: 50, Rating: 4},
	}, products)
}

func TestFetchProductsBareArray(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.URL.RawQuery)
		_, _ = w.Write([]byte(`[{"id":1,"name":"Lamp","popularity":7.5},{"id":2,"name":"Desk"}]`))
	}))
	defer srv.Close()

	products, err := NewClient(srv.URL, nil).FetchProducts(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, browse.ProductID("1"), products[0].ID)
	require.NotNil(t, products[0].Popularity)
	assert.Equal(t, 7.5, *products[0].Popularity)
	assert.Nil(t, products[1].Popularity)
}

func TestFetchProductsServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, nil).FetchProducts(context.Background(), "x")
	require.Error(t, err)
	assert.True(t, IsServer(err))
	assert.False(t, IsNetwork(err))

	var se *ServerError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusBadGateway, se.StatusCode)
	assert.Equal(t, "boom", se.Body)
}

func TestFetchProductsNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewClient(url, nil).FetchProducts(context.Background(), "x")
	require.Error(t, err)
	assert.True(t, IsNetwork(err))
}

func TestFetchProductsBadJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"products": "nope"}`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, nil).FetchProducts(context.Background(), "")
	require.Error(t, err)
	assert.False(t, IsNetwork(err))
	assert.False(t, IsServer(err))
}

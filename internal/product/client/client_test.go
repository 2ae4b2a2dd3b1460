package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/allisson/orders/internal/product/domain"
)

func TestClient_Lookup(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/products/10", r.URL.Path)
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"id":10,"name":"Keyboard","price":"100.00","stock":5,"category":"peripherals"}`))
		}))
		defer server.Close()

		product, err := NewClient(server.URL+"/", server.Client()).Lookup(context.Background(), 10)
		require.NoError(t, err)
		assert.Equal(t, int64(10), product.ID)
		assert.Equal(t, "Keyboard", product.Name)
		assert.Equal(t, "100.00", product.Price.StringFixed(2))
		assert.Equal(t, 5, product.Stock)
	})

	t.Run("Success_NumericPrice", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"id":10,"name":"Mouse","price":49.9,"stock":1}`))
		}))
		defer server.Close()

		product, err := NewClient(server.URL, nil).Lookup(context.Background(), 10)
		require.NoError(t, err)
		assert.Equal(t, "49.90", product.Price.StringFixed(2))
	})

	t.Run("Error_NotFound", func(t *testing.T) {
		server := httptest.NewServer(http.NotFoundHandler())
		defer server.Close()

		product, err := NewClient(server.URL, nil).Lookup(context.Background(), 10)
		assert.ErrorIs(t, err, domain.ErrProductNotFound)
		assert.Nil(t, product)
	})

	t.Run("Error_ServerError", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "database down", http.StatusInternalServerError)
		}))
		defer server.Close()

		product, err := NewClient(server.URL, nil).Lookup(context.Background(), 10)
		require.Error(t, err)
		assert.NotErrorIs(t, err, domain.ErrProductNotFound)
		assert.Contains(t, err.Error(), "status 500")
		assert.Nil(t, product)
	})

	t.Run("Error_InvalidBody", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`not json`))
		}))
		defer server.Close()

		_, err := NewClient(server.URL, nil).Lookup(context.Background(), 10)
		assert.ErrorContains(t, err, "failed to decode")
	})
}

func TestClient_HasStock(t *testing.T) {
	t.Run("Available", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/products/3/stock", r.URL.Path)
			assert.Equal(t, "2", r.URL.Query().Get("quantity"))
			_, _ = w.Write([]byte(`{"available":true}`))
		}))
		defer server.Close()

		ok, err := NewClient(server.URL, nil).HasStock(context.Background(), 3, 2)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("Unavailable", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"available":false}`))
		}))
		defer server.Close()

		ok, err := NewClient(server.URL, nil).HasStock(context.Background(), 3, 100)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("Error_NotFound", func(t *testing.T) {
		server := httptest.NewServer(http.NotFoundHandler())
		defer server.Close()

		_, err := NewClient(server.URL, nil).HasStock(context.Background(), 3, 1)
		assert.ErrorIs(t, err, domain.ErrProductNotFound)
	})
}

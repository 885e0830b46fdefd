package commerce

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c := NewClient(srv.URL, "ck_test", "cs_test")
	c.HTTPClient = srv.Client()
	return c, srv
}

func TestCreateProductSendsAuthAndPayload(t *testing.T) {
	var gotPath, gotKey, gotSecret string
	var gotPayload ProductPayload

	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.URL.Query().Get("consumer_key")
		gotSecret = r.URL.Query().Get("consumer_secret")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotPayload))
		json.NewEncoder(w).Encode(Product{Id: 101, Name: gotPayload.Name, Status: gotPayload.Status})
	})

	payload := &ProductPayload{
		Name:         "Walnut Desk Organizer",
		Status:       StatusPublish,
		RegularPrice: "5000.00",
		Categories:   []CategoryRef{{Id: 7}, {Name: "Handmade"}},
	}
	product, err := c.CreateProduct(context.Background(), payload)
	require.NoError(t, err)

	assert.Equal(t, "/products", gotPath)
	assert.Equal(t, "ck_test", gotKey)
	assert.Equal(t, "cs_test", gotSecret)
	assert.Equal(t, "Walnut Desk Organizer", gotPayload.Name)
	assert.Equal(t, int64(101), product.Id)
}

func TestGetProductNotFound(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	_, err := c.GetProduct(context.Background(), 999)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestUpdateProductUsesPut(t *testing.T) {
	var gotMethod, gotPath string
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		json.NewEncoder(w).Encode(Product{Id: 42})
	})

	_, err := c.UpdateProduct(context.Background(), 42, &ProductPayload{Name: "X"})
	require.NoError(t, err)
	assert.Equal(t, http.MethodPut, gotMethod)
	assert.Equal(t, "/products/42", gotPath)
}

func TestListCategoriesKeepsExistingQuery(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		// per_page must survive next to the auth params.
		assert.Equal(t, "100", r.URL.Query().Get("per_page"))
		assert.Equal(t, "ck_test", r.URL.Query().Get("consumer_key"))
		json.NewEncoder(w).Encode([]Category{{Id: 7, Name: "Office"}})
	})

	categories, err := c.ListCategories(context.Background())
	require.NoError(t, err)
	require.Len(t, categories, 1)
	assert.Equal(t, "Office", categories[0].Name)
}

func TestBackendErrorIncludesBody(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"code":"woocommerce_rest_invalid"}`, http.StatusBadRequest)
	})

	_, err := c.CreateProduct(context.Background(), &ProductPayload{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 400")
	assert.Contains(t, err.Error(), "woocommerce_rest_invalid")
}

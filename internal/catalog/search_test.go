package catalog

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeES(t *testing.T, handler http.HandlerFunc) *elasticsearch.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	es, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{srv.URL}})
	require.NoError(t, err)
	return es
}

func esRespond(w http.ResponseWriter, body string) {
	w.Header().Set("X-Elastic-Product", "Elasticsearch")
	w.Header().Set("Content-Type", "application/json")
	io.WriteString(w, body)
}

func TestSearch_DecodesHits(t *testing.T) {
	t.Parallel()

	var gotBody searchQuery
	es := fakeES(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		esRespond(w, `{
			"hits": {
				"total": {"value": 2},
				"hits": [
					{"_id": "p1", "_score": 2.4, "_source": {"name": "Premium T-Shirt", "category": "Apparel", "base_price": 299, "print_price": 100}},
					{"_id": "p2", "_score": 1.1, "_source": {"name": "Ceramic Mug", "category": "Home & Living", "base_price": 199, "print_price": 50}}
				]
			}
		}`)
	})

	total, prods, err := Search(context.Background(), es, "product", "shirt", 0, 10)
	require.NoError(t, err)

	assert.Equal(t, int64(2), total)
	require.Len(t, prods, 2)
	assert.Equal(t, "Premium T-Shirt", prods[0].Name)
	assert.Equal(t, int64(299), prods[0].BasePrice)
	assert.Equal(t, int64(100), prods[0].PrintPrice)
	assert.Equal(t, "Ceramic Mug", prods[1].Name)

	assert.Equal(t, "shirt", gotBody.Query.MultiMatch.Query)
	assert.Equal(t, []string{"name^2", "description"}, gotBody.Query.MultiMatch.Fields)
	assert.Equal(t, "AUTO", gotBody.Query.MultiMatch.Fuzziness)
	assert.Equal(t, 10, gotBody.Size)
}

func TestSearch_EmptyResult(t *testing.T) {
	t.Parallel()

	es := fakeES(t, func(w http.ResponseWriter, r *http.Request) {
		esRespond(w, `{"hits": {"total": {"value": 0}, "hits": []}}`)
	})

	total, prods, err := Search(context.Background(), es, "product", "nothing", 0, 10)
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, prods)
}

func TestSearch_ServerError(t *testing.T) {
	t.Parallel()

	es := fakeES(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, _, err := Search(context.Background(), es, "product", "shirt", 0, 10)
	require.Error(t, err)
}

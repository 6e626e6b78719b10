package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/elastic/go-elasticsearch/v9"

	"github.com/printyshop/printy/internal/models"
)

// searchQuery is the request body for a fuzzy multi_match over product names
// and descriptions, with name matches weighted double.
type searchQuery struct {
	Query struct {
		MultiMatch struct {
			Query     string   `json:"query"`
			Fields    []string `json:"fields"`
			Fuzziness string   `json:"fuzziness"`
		} `json:"multi_match"`
	} `json:"query"`
	From int `json:"from"`
	Size int `json:"size"`
}

func newSearchQuery(query string, from, size int) searchQuery {
	var q searchQuery
	q.Query.MultiMatch.Query = query
	q.Query.MultiMatch.Fields = []string{"name^2", "description"}
	q.Query.MultiMatch.Fuzziness = "AUTO"
	q.From = from
	q.Size = size
	return q
}

type searchHit struct {
	ID     string         `json:"_id"`
	Score  float64        `json:"_score"`
	Source models.Product `json:"_source"`
}

type searchResponse struct {
	Hits struct {
		Total struct {
			Value int64 `json:"value"`
		} `json:"total"`
		Hits []searchHit `json:"hits"`
	} `json:"hits"`
}

// Search queries the product index and returns the total hit count alongside
// the decoded product documents for the requested page.
func Search(ctx context.Context, es *elasticsearch.Client, index, query string, from, size int) (int64, []models.Product, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(newSearchQuery(query, from, size)); err != nil {
		return 0, nil, fmt.Errorf("search: encode query: %w", err)
	}

	res, err := es.Search(
		es.Search.WithContext(ctx),
		es.Search.WithIndex(index),
		es.Search.WithBody(&buf),
	)
	if err != nil {
		return 0, nil, fmt.Errorf("search: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return 0, nil, fmt.Errorf("search: %s", res.Status())
	}

	var r searchResponse
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return 0, nil, fmt.Errorf("search: decode response: %w", err)
	}

	prods := make([]models.Product, len(r.Hits.Hits))
	for i, hit := range r.Hits.Hits {
		prods[i] = hit.Source
	}
	return r.Hits.Total.Value, prods, nil
}

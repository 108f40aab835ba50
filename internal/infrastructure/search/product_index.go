package search

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/example/ec-chatbot/internal/readmodel"
)

const (
	DefaultIndex = "chatbot-products"

	// defaultPageSize stays under the default index.max_result_window
	defaultPageSize = 5000
)

var ErrSearchFailed = errors.New("product search failed")

// ProductIndex keeps product documents in Elasticsearch for name lookups.
// Hits are ordered by load position, not by relevance.
type ProductIndex struct {
	client   *elasticsearch.Client
	index    string
	pageSize int
}

type productDocument struct {
	readmodel.ProductReadModel
	NameLower string `json:"name_lower"`
	Position  int    `json:"position"`
}

func NewProductIndex(client *elasticsearch.Client, index string) *ProductIndex {
	if index == "" {
		index = DefaultIndex
	}
	return &ProductIndex{client: client, index: index, pageSize: defaultPageSize}
}

// NewClient builds an Elasticsearch client for the given node addresses
func NewClient(addresses []string, username, password string) (*elasticsearch.Client, error) {
	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: addresses,
		Username:  username,
		Password:  password,
	})
	if err != nil {
		return nil, fmt.Errorf("create elasticsearch client: %w", err)
	}
	return client, nil
}

// EnsureIndex creates the index with its mapping when it does not exist
func (pi *ProductIndex) EnsureIndex(ctx context.Context) error {
	res, err := pi.client.Indices.Exists([]string{pi.index}, pi.client.Indices.Exists.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("check index %s: %w", pi.index, err)
	}
	res.Body.Close()
	if res.StatusCode == http.StatusOK {
		return nil
	}

	mapping := `{
		"mappings": {
			"properties": {
				"id":           {"type": "keyword"},
				"name":         {"type": "text"},
				"name_lower":   {"type": "keyword"},
				"brand":        {"type": "keyword"},
				"category":     {"type": "keyword"},
				"department":   {"type": "keyword"},
				"retail_price": {"type": "double"},
				"position":     {"type": "integer"}
			}
		}
	}`
	res, err = pi.client.Indices.Create(pi.index,
		pi.client.Indices.Create.WithContext(ctx),
		pi.client.Indices.Create.WithBody(strings.NewReader(mapping)))
	if err != nil {
		return fmt.Errorf("create index %s: %w", pi.index, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return responseError("create index", res)
	}
	return nil
}

// Rebuild drops the index and writes products into a fresh one, so products
// removed since the last load disappear and positions start again at zero.
// Searches issued while it runs fail and are served by the store instead.
func (pi *ProductIndex) Rebuild(ctx context.Context, products []*readmodel.ProductReadModel) error {
	res, err := pi.client.Indices.Delete([]string{pi.index}, pi.client.Indices.Delete.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("delete index %s: %w", pi.index, err)
	}
	defer res.Body.Close()
	if res.IsError() && res.StatusCode != http.StatusNotFound {
		return responseError("delete index", res)
	}

	if err := pi.EnsureIndex(ctx); err != nil {
		return err
	}
	return pi.Index(ctx, products)
}

// Index bulk-writes products, replacing documents with the same id
func (pi *ProductIndex) Index(ctx context.Context, products []*readmodel.ProductReadModel) error {
	if len(products) == 0 {
		return nil
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for i, p := range products {
		meta := map[string]any{"index": map[string]any{"_id": p.ID}}
		if err := enc.Encode(meta); err != nil {
			return err
		}
		doc := productDocument{ProductReadModel: *p, NameLower: strings.ToLower(p.Name), Position: i}
		if err := enc.Encode(doc); err != nil {
			return err
		}
	}

	res, err := pi.client.Bulk(&buf,
		pi.client.Bulk.WithContext(ctx),
		pi.client.Bulk.WithIndex(pi.index),
		pi.client.Bulk.WithRefresh("true"))
	if err != nil {
		return fmt.Errorf("bulk index: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return responseError("bulk index", res)
	}

	var body struct {
		Errors bool `json:"errors"`
	}
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return fmt.Errorf("decode bulk response: %w", err)
	}
	if body.Errors {
		return fmt.Errorf("%w: bulk index reported item errors", ErrSearchFailed)
	}
	return nil
}

// SearchByName returns every product whose name contains fragment,
// case-insensitively. Results are paged with search_after on position so
// large matches are not cut at the result window.
func (pi *ProductIndex) SearchByName(ctx context.Context, fragment string) ([]*readmodel.ProductReadModel, error) {
	var (
		products []*readmodel.ProductReadModel
		after    *int
	)
	for {
		page, err := pi.searchPage(ctx, strings.ToLower(fragment), after)
		if err != nil {
			return nil, err
		}
		for i := range page {
			p := page[i].ProductReadModel
			products = append(products, &p)
		}
		if len(page) < pi.pageSize {
			break
		}
		last := page[len(page)-1].Position
		after = &last
	}
	if products == nil {
		products = []*readmodel.ProductReadModel{}
	}
	return products, nil
}

func (pi *ProductIndex) searchPage(ctx context.Context, fragment string, after *int) ([]productDocument, error) {
	query := map[string]any{
		"query": map[string]any{
			"wildcard": map[string]any{
				"name_lower": map[string]any{
					"value": "*" + escapeWildcard(fragment) + "*",
				},
			},
		},
		"sort": []any{map[string]any{"position": "asc"}},
		"size": pi.pageSize,
	}
	if after != nil {
		query["search_after"] = []any{*after}
	}
	body, err := json.Marshal(query)
	if err != nil {
		return nil, err
	}

	res, err := pi.client.Search(
		pi.client.Search.WithContext(ctx),
		pi.client.Search.WithIndex(pi.index),
		pi.client.Search.WithBody(bytes.NewReader(body)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSearchFailed, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, responseError("search", res)
	}

	var result struct {
		Hits struct {
			Hits []struct {
				Source productDocument `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	page := make([]productDocument, 0, len(result.Hits.Hits))
	for _, hit := range result.Hits.Hits {
		page = append(page, hit.Source)
	}
	return page, nil
}

func escapeWildcard(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`)
	return r.Replace(s)
}

func responseError(op string, res *esapi.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(res.Body, 1024))
	return fmt.Errorf("%w: %s returned %s: %s", ErrSearchFailed, op, res.Status(), strings.TrimSpace(string(raw)))
}

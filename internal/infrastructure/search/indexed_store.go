package search

import (
	"context"

	"github.com/example/ec-chatbot/internal/infrastructure/store"
	"github.com/example/ec-chatbot/internal/logger"
	"github.com/example/ec-chatbot/internal/readmodel"
)

// NameSearcher finds products by a case-insensitive name fragment
type NameSearcher interface {
	SearchByName(ctx context.Context, fragment string) ([]*readmodel.ProductReadModel, error)
}

// IndexedStore routes product name search to a search index and everything
// else to the wrapped CatalogReader. A failing index falls back to the store.
type IndexedStore struct {
	store.CatalogReader

	index NameSearcher
	log   logger.Logger
}

func NewIndexedStore(next store.CatalogReader, index NameSearcher, log logger.Logger) *IndexedStore {
	return &IndexedStore{
		CatalogReader: next,
		index:         index,
		log:           logger.Component(log, "search"),
	}
}

func (s *IndexedStore) SearchProductsByName(ctx context.Context, fragment string) ([]*readmodel.ProductReadModel, error) {
	products, err := s.index.SearchByName(ctx, fragment)
	if err == nil {
		return products, nil
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	s.log.WithError(err).Warn("search index unavailable, falling back to store", map[string]any{"fragment": fragment})
	return s.CatalogReader.SearchProductsByName(ctx, fragment)
}

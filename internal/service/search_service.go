package service

import (
	"context"
	"strings"

	"github.com/weiawesome/wes-estate/internal/cache"
	"github.com/weiawesome/wes-estate/internal/domain"
	"github.com/weiawesome/wes-estate/internal/repository"
)

// searchServiceImpl implements SearchService interface.
type searchServiceImpl struct {
	repo  repository.PropertyRepository
	text  repository.TextSearcher
	cache *cache.Cache
	ttls  TTLs
}

// NewSearchService creates a new search service. text runs free-text
// queries; it defaults to repo.
func NewSearchService(repo repository.PropertyRepository, text repository.TextSearcher, c *cache.Cache, ttls TTLs) SearchService {
	if text == nil {
		text = repo
	}
	return &searchServiceImpl{repo: repo, text: text, cache: c, ttls: ttls}
}

// Search runs an advanced filter. Every filter field is part of the cache key.
func (s *searchServiceImpl) Search(ctx context.Context, f domain.SearchFilter) (*domain.Page[domain.Property], error) {
	p, err := cachedRead(ctx, s.cache, NamespaceSearch, f.CacheParams(), s.ttls.Search,
		func(ctx context.Context) (domain.Page[domain.Property], error) {
			items, total, err := s.repo.Search(ctx, f)
			if err != nil {
				return domain.Page[domain.Property]{}, err
			}
			return domain.NewPage(items, total, f.Page), nil
		})
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// TextSearch matches query against the descriptive fields of a listing.
func (s *searchServiceImpl) TextSearch(ctx context.Context, query string, page domain.PageRequest) (*domain.Page[domain.Property], error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrMissingQuery
	}

	params := pageParams(page)
	params["q"] = query
	p, err := cachedRead(ctx, s.cache, NamespaceTextSearch, params, s.ttls.TextSearch,
		func(ctx context.Context) (domain.Page[domain.Property], error) {
			items, total, err := s.text.TextSearch(ctx, query, page)
			if err != nil {
				return domain.Page[domain.Property]{}, err
			}
			return domain.NewPage(items, total, page), nil
		})
	if err != nil {
		return nil, err
	}
	return &p, nil
}

package service

import (
	"context"
	"errors"
	"strings"

	"github.com/weiawesome/wes-estate/internal/audit"
	"github.com/weiawesome/wes-estate/internal/cache"
	"github.com/weiawesome/wes-estate/internal/domain"
	"github.com/weiawesome/wes-estate/internal/idgen"
	"github.com/weiawesome/wes-estate/internal/repository"
	"github.com/weiawesome/wes-estate/pkg/log"
)

// PropertyDeps groups the collaborators of the property service. Indexer is
// optional.
type PropertyDeps struct {
	Repo     repository.PropertyRepository
	Cache    *cache.Cache
	TTLs     TTLs
	IDs      idgen.Generator
	Listings idgen.Generator
	Indexer  repository.PropertyIndexer
}

// propertyServiceImpl implements PropertyService interface.
type propertyServiceImpl struct {
	PropertyDeps
}

// NewPropertyService creates a new property service.
func NewPropertyService(deps PropertyDeps) PropertyService {
	return &propertyServiceImpl{PropertyDeps: deps}
}

// List returns a page of properties, newest first.
func (s *propertyServiceImpl) List(ctx context.Context, page domain.PageRequest) (*domain.Page[domain.Property], error) {
	p, err := cachedRead(ctx, s.Cache, NamespaceProperties, pageParams(page), s.TTLs.Properties,
		func(ctx context.Context) (domain.Page[domain.Property], error) {
			items, total, err := s.Repo.List(ctx, page)
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

// Get returns one property.
func (s *propertyServiceImpl) Get(ctx context.Context, id string) (*domain.Property, error) {
	if !s.IDs.Validate(id) {
		return nil, ErrPropertyNotFound
	}
	p, err := cachedRead(ctx, s.Cache, NamespaceProperty, map[string]any{"id": id}, s.TTLs.Property,
		func(ctx context.Context) (domain.Property, error) {
			p, err := s.load(ctx, id)
			if err != nil {
				return domain.Property{}, err
			}
			return *p, nil
		})
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ListMine returns a page of the caller's listings. It is not cached.
func (s *propertyServiceImpl) ListMine(ctx context.Context, userID string, page domain.PageRequest) (*domain.Page[domain.Property], error) {
	items, total, err := s.Repo.ListByOwner(ctx, userID, page)
	if err != nil {
		return nil, err
	}
	p := domain.NewPage(items, total, page)
	return &p, nil
}

// Create validates and stores a new listing.
func (s *propertyServiceImpl) Create(ctx context.Context, userID string, in *domain.PropertyInput) (*domain.Property, error) {
	if missing := in.MissingForCreate(); len(missing) > 0 {
		return nil, validationError("Please provide " + strings.Join(missing, ", "))
	}

	p := &domain.Property{Amenities: []string{}, Tags: []string{}}
	in.Apply(p)
	p.CreatedBy = userID
	if p.ListingID == "" {
		id, err := s.Listings.Generate()
		if err != nil {
			return nil, err
		}
		p.ListingID = id
	}
	if err := p.Validate(); err != nil {
		return nil, validationError(err.Error())
	}

	if err := s.Repo.Create(ctx, p); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrListingIDTaken
		}
		return nil, err
	}

	s.afterWrite(ctx, p, false)
	audit.Log(ctx, audit.ActionCreateProperty, userID, p.ID, "property created")
	return p, nil
}

// Update applies in to a listing owned by userID.
func (s *propertyServiceImpl) Update(ctx context.Context, userID, id string, in *domain.PropertyInput) (*domain.Property, error) {
	p, err := s.owned(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	listingID := p.ListingID
	in.Apply(p)
	if p.ListingID == "" {
		p.ListingID = listingID
	}
	if err := p.Validate(); err != nil {
		return nil, validationError(err.Error())
	}

	if err := s.Repo.Update(ctx, p); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicate):
			return nil, ErrListingIDTaken
		case errors.Is(err, repository.ErrNotFound):
			return nil, ErrPropertyNotFound
		}
		return nil, err
	}

	s.afterWrite(ctx, p, true)
	audit.Log(ctx, audit.ActionUpdateProperty, userID, p.ID, "property updated")
	return p, nil
}

// Delete removes a listing owned by userID, with its favorites and
// recommendations.
func (s *propertyServiceImpl) Delete(ctx context.Context, userID, id string) error {
	p, err := s.owned(ctx, userID, id)
	if err != nil {
		return err
	}

	if err := s.Repo.Delete(ctx, p.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrPropertyNotFound
		}
		return err
	}

	if s.Indexer != nil {
		if err := s.Indexer.DeleteProperty(ctx, p.ID); err != nil {
			l := log.Ctx(ctx)
			l.Warn().Err(err).Str(log.FieldPropertyID, p.ID).Msg("failed to remove property from search index")
		}
	}
	s.invalidate(ctx, p.ID, true)
	audit.Log(ctx, audit.ActionDeleteProperty, userID, p.ID, "property deleted")
	return nil
}

// owned loads a property from the source of truth and checks its owner.
func (s *propertyServiceImpl) owned(ctx context.Context, userID, id string) (*domain.Property, error) {
	if !s.IDs.Validate(id) {
		return nil, ErrPropertyNotFound
	}
	p, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.CreatedBy != userID {
		return nil, ErrNotPropertyOwner
	}
	return p, nil
}

func (s *propertyServiceImpl) load(ctx context.Context, id string) (*domain.Property, error) {
	p, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPropertyNotFound
		}
		return nil, err
	}
	return p, nil
}

// afterWrite updates the search index before invalidating, so a text search
// that misses right after cannot cache a page from the old index.
func (s *propertyServiceImpl) afterWrite(ctx context.Context, p *domain.Property, favorites bool) {
	if s.Indexer != nil {
		if err := s.Indexer.IndexProperty(ctx, p); err != nil {
			l := log.Ctx(ctx)
			l.Warn().Err(err).Str(log.FieldPropertyID, p.ID).Msg("failed to index property")
		}
	}
	s.invalidate(ctx, p.ID, favorites)
}

// invalidate drops every cached view a property write can change. Favorites
// embed properties, so updates and deletes clear them for all users.
func (s *propertyServiceImpl) invalidate(ctx context.Context, id string, favorites bool) {
	targets := []cache.Target{
		cache.Namespace(NamespaceProperties),
		cache.Namespace(NamespaceSearch),
		cache.Namespace(NamespaceTextSearch),
	}
	if key, err := propertyKey(id); err == nil {
		targets = append(targets, cache.Key(key))
	}
	if favorites {
		targets = append(targets, cache.Namespace(NamespaceFavorites))
	}
	invalidate(ctx, s.Cache, targets...)
}

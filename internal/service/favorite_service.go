package service

import (
	"context"
	"errors"
	"time"

	"github.com/weiawesome/wes-estate/internal/audit"
	"github.com/weiawesome/wes-estate/internal/cache"
	"github.com/weiawesome/wes-estate/internal/domain"
	"github.com/weiawesome/wes-estate/internal/repository"
)

// favoriteServiceImpl implements FavoriteService interface.
type favoriteServiceImpl struct {
	repo       repository.FavoriteRepository
	properties repository.PropertyRepository
	cache      *cache.Cache
	ttl        time.Duration
}

// NewFavoriteService creates a new favorite service. Each user's pages live in
// their own namespace, favorites:<userID>.
func NewFavoriteService(repo repository.FavoriteRepository, properties repository.PropertyRepository, c *cache.Cache, ttl time.Duration) FavoriteService {
	return &favoriteServiceImpl{repo: repo, properties: properties, cache: c, ttl: ttl}
}

// List returns the user's favorites with their properties, newest first.
func (s *favoriteServiceImpl) List(ctx context.Context, userID string, page domain.PageRequest) (*domain.Page[domain.Favorite], error) {
	p, err := cachedRead(ctx, s.cache, namespaceFor(userID), pageParams(page), s.ttl,
		func(ctx context.Context) (domain.Page[domain.Favorite], error) {
			items, total, err := s.repo.ListByUser(ctx, userID, page)
			if err != nil {
				return domain.Page[domain.Favorite]{}, err
			}
			return domain.NewPage(items, total, page), nil
		})
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Add saves a property to the user's favorites.
func (s *favoriteServiceImpl) Add(ctx context.Context, userID string, req *domain.AddFavoriteRequest) (*domain.Favorite, error) {
	property, err := s.properties.GetByID(ctx, req.PropertyID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPropertyNotFound
		}
		return nil, err
	}

	if _, err := s.repo.GetByUserAndProperty(ctx, userID, property.ID); err == nil {
		return nil, ErrAlreadyFavorite
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	f := &domain.Favorite{UserID: userID, PropertyID: property.ID, Notes: req.Notes}
	if err := s.repo.Create(ctx, f); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrAlreadyFavorite
		}
		return nil, err
	}
	f.Property = property

	s.invalidate(ctx, userID)
	audit.Log(ctx, audit.ActionAddFavorite, userID, property.ID, "favorite added")
	return f, nil
}

// Remove deletes one of the user's favorites.
func (s *favoriteServiceImpl) Remove(ctx context.Context, userID, id string) error {
	f, err := s.get(ctx, id)
	if err != nil {
		return err
	}
	if f.UserID != userID {
		return ErrFavoriteRemoveDenied
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrFavoriteNotFound
		}
		return err
	}

	s.invalidate(ctx, userID)
	audit.Log(ctx, audit.ActionRemoveFavorite, userID, f.PropertyID, "favorite removed")
	return nil
}

// UpdateNotes replaces the notes of one of the user's favorites.
func (s *favoriteServiceImpl) UpdateNotes(ctx context.Context, userID, id, notes string) (*domain.Favorite, error) {
	f, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if f.UserID != userID {
		return nil, ErrFavoriteUpdateDenied
	}

	updated, err := s.repo.UpdateNotes(ctx, id, notes)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrFavoriteNotFound
		}
		return nil, err
	}

	s.invalidate(ctx, userID)
	return updated, nil
}

// Check reports whether propertyID is among the user's favorites.
func (s *favoriteServiceImpl) Check(ctx context.Context, userID, propertyID string) (*domain.FavoriteCheck, error) {
	f, err := s.repo.GetByUserAndProperty(ctx, userID, propertyID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return &domain.FavoriteCheck{}, nil
		}
		return nil, err
	}
	return &domain.FavoriteCheck{IsFavorite: true, Favorite: f}, nil
}

func (s *favoriteServiceImpl) get(ctx context.Context, id string) (*domain.Favorite, error) {
	f, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrFavoriteNotFound
		}
		return nil, err
	}
	return f, nil
}

func (s *favoriteServiceImpl) invalidate(ctx context.Context, userID string) {
	invalidate(ctx, s.cache, cache.Namespace(namespaceFor(userID)))
}

func namespaceFor(userID string) string {
	return cache.Scope(NamespaceFavorites, userID)
}

package repository

import (
	"context"
	"errors"

	"github.com/weiawesome/wes-estate/internal/domain"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
)

// UserRepository defines the interface for user persistence.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	LookupEmail(ctx context.Context, id string) (string, error)
}

// PropertyRepository defines the interface for property persistence.
type PropertyRepository interface {
	Create(ctx context.Context, p *domain.Property) error
	GetByID(ctx context.Context, id string) (*domain.Property, error)
	List(ctx context.Context, page domain.PageRequest) ([]domain.Property, int64, error)
	ListByOwner(ctx context.Context, userID string, page domain.PageRequest) ([]domain.Property, int64, error)
	Update(ctx context.Context, p *domain.Property) error
	Delete(ctx context.Context, id string) error
	Search(ctx context.Context, f domain.SearchFilter) ([]domain.Property, int64, error)
	TextSearcher
	// Each calls fn with successive batches of every property.
	Each(ctx context.Context, batchSize int, fn func([]domain.Property) error) error
}

// TextSearcher runs free-text property search.
type TextSearcher interface {
	TextSearch(ctx context.Context, query string, page domain.PageRequest) ([]domain.Property, int64, error)
}

// PropertyIndexer keeps an external search index in step with writes.
type PropertyIndexer interface {
	IndexProperty(ctx context.Context, p *domain.Property) error
	DeleteProperty(ctx context.Context, id string) error
}

// FavoriteRepository defines the interface for favorite persistence.
type FavoriteRepository interface {
	Create(ctx context.Context, f *domain.Favorite) error
	GetByID(ctx context.Context, id string) (*domain.Favorite, error)
	GetByUserAndProperty(ctx context.Context, userID, propertyID string) (*domain.Favorite, error)
	ListByUser(ctx context.Context, userID string, page domain.PageRequest) ([]domain.Favorite, int64, error)
	UpdateNotes(ctx context.Context, id, notes string) (*domain.Favorite, error)
	Delete(ctx context.Context, id string) error
}

// RecommendationRepository defines the interface for recommendation persistence.
type RecommendationRepository interface {
	Create(ctx context.Context, r *domain.Recommendation) error
	GetByID(ctx context.Context, id string) (*domain.Recommendation, error)
	ListReceived(ctx context.Context, userID string, page domain.PageRequest) ([]domain.Recommendation, int64, error)
	ListSent(ctx context.Context, userID string, page domain.PageRequest) ([]domain.Recommendation, int64, error)
	MarkRead(ctx context.Context, id string) (*domain.Recommendation, error)
	Delete(ctx context.Context, id string) error
	CountUnread(ctx context.Context, userID string) (int64, error)
}

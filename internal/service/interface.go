package service

import (
	"context"

	"github.com/weiawesome/wes-estate/internal/domain"
)

// UserService defines the interface for account business logic.
type UserService interface {
	Register(ctx context.Context, req *domain.RegisterRequest) (*domain.AuthResult, error)
	Login(ctx context.Context, req *domain.LoginRequest) (*domain.AuthResult, error)
	Me(ctx context.Context, userID string) (*domain.UserSummary, error)
	Update(ctx context.Context, userID string, req *domain.UpdateUserRequest) (*domain.UserSummary, error)
	UpdatePassword(ctx context.Context, userID string, req *domain.UpdatePasswordRequest) (*domain.AuthResult, error)
	FindByEmail(ctx context.Context, email string) (*domain.UserSummary, error)
}

// PropertyService defines the interface for property business logic.
type PropertyService interface {
	List(ctx context.Context, page domain.PageRequest) (*domain.Page[domain.Property], error)
	Get(ctx context.Context, id string) (*domain.Property, error)
	ListMine(ctx context.Context, userID string, page domain.PageRequest) (*domain.Page[domain.Property], error)
	Create(ctx context.Context, userID string, in *domain.PropertyInput) (*domain.Property, error)
	Update(ctx context.Context, userID, id string, in *domain.PropertyInput) (*domain.Property, error)
	Delete(ctx context.Context, userID, id string) error
}

// SearchService defines the interface for property search.
type SearchService interface {
	Search(ctx context.Context, f domain.SearchFilter) (*domain.Page[domain.Property], error)
	TextSearch(ctx context.Context, query string, page domain.PageRequest) (*domain.Page[domain.Property], error)
}

// FavoriteService defines the interface for a user's saved properties.
type FavoriteService interface {
	List(ctx context.Context, userID string, page domain.PageRequest) (*domain.Page[domain.Favorite], error)
	Add(ctx context.Context, userID string, req *domain.AddFavoriteRequest) (*domain.Favorite, error)
	Remove(ctx context.Context, userID, id string) error
	UpdateNotes(ctx context.Context, userID, id, notes string) (*domain.Favorite, error)
	Check(ctx context.Context, userID, propertyID string) (*domain.FavoriteCheck, error)
}

// RecommendationService defines the interface for recommendations between users.
type RecommendationService interface {
	Create(ctx context.Context, senderID string, req *domain.CreateRecommendationRequest) (*domain.Recommendation, error)
	Received(ctx context.Context, userID string, page domain.PageRequest) (*domain.Page[domain.Recommendation], error)
	Sent(ctx context.Context, userID string, page domain.PageRequest) (*domain.Page[domain.Recommendation], error)
	MarkRead(ctx context.Context, userID, id string) (*domain.Recommendation, error)
	Delete(ctx context.Context, userID, id string) error
	UnreadCount(ctx context.Context, userID string) (int64, error)
}

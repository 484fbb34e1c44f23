package domain

import "time"

// Favorite is a property saved by a user.
type Favorite struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user"`
	PropertyID string    `json:"propertyId"`
	Property   *Property `json:"property,omitempty"`
	Notes      string    `json:"notes"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// AddFavoriteRequest represents an add-to-favorites request.
type AddFavoriteRequest struct {
	PropertyID string `json:"propertyId" binding:"required"`
	Notes      string `json:"notes"`
}

// UpdateFavoriteRequest represents a notes update.
type UpdateFavoriteRequest struct {
	Notes string `json:"notes"`
}

// FavoriteCheck reports whether a property is among the user's favorites.
type FavoriteCheck struct {
	IsFavorite bool      `json:"isFavorite"`
	Favorite   *Favorite `json:"data"`
}

package domain

import "time"

// Recommendation is a property suggested by one user to another.
type Recommendation struct {
	ID          string       `json:"id"`
	SenderID    string       `json:"senderId"`
	RecipientID string       `json:"recipientId"`
	PropertyID  string       `json:"propertyId"`
	Sender      *UserSummary `json:"sender,omitempty"`
	Recipient   *UserSummary `json:"recipient,omitempty"`
	Property    *Property    `json:"property,omitempty"`
	Message     string       `json:"message"`
	IsRead      bool         `json:"isRead"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}

// CreateRecommendationRequest identifies the recipient by id or by email.
type CreateRecommendationRequest struct {
	RecipientID    string `json:"recipientId"`
	RecipientEmail string `json:"recipientEmail"`
	PropertyID     string `json:"propertyId" binding:"required"`
	Message        string `json:"message"`
}

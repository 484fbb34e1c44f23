package service

import (
	"context"
	"errors"
	"strings"

	"github.com/weiawesome/wes-estate/internal/audit"
	"github.com/weiawesome/wes-estate/internal/domain"
	"github.com/weiawesome/wes-estate/internal/repository"
)

// recommendationServiceImpl implements RecommendationService interface.
type recommendationServiceImpl struct {
	repo       repository.RecommendationRepository
	users      repository.UserRepository
	properties repository.PropertyRepository
}

// NewRecommendationService creates a new recommendation service.
// Recommendations are per-user inbox data and are not cached.
func NewRecommendationService(repo repository.RecommendationRepository, users repository.UserRepository, properties repository.PropertyRepository) RecommendationService {
	return &recommendationServiceImpl{repo: repo, users: users, properties: properties}
}

// Create sends a property to another user, addressed by id or email.
func (s *recommendationServiceImpl) Create(ctx context.Context, senderID string, req *domain.CreateRecommendationRequest) (*domain.Recommendation, error) {
	recipient, err := s.recipient(ctx, req)
	if err != nil {
		return nil, err
	}
	if recipient.ID == senderID {
		return nil, ErrSelfRecommendation
	}

	if _, err := s.properties.GetByID(ctx, req.PropertyID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPropertyNotFound
		}
		return nil, err
	}

	rec := &domain.Recommendation{
		SenderID:    senderID,
		RecipientID: recipient.ID,
		PropertyID:  req.PropertyID,
		Message:     strings.TrimSpace(req.Message),
	}
	if err := s.repo.Create(ctx, rec); err != nil {
		return nil, err
	}

	audit.LogWithDetail(ctx, audit.ActionRecommend, senderID, rec.ID, recipient.ID, "property recommended")
	return s.repo.GetByID(ctx, rec.ID)
}

// Received returns recommendations sent to the user, newest first.
func (s *recommendationServiceImpl) Received(ctx context.Context, userID string, page domain.PageRequest) (*domain.Page[domain.Recommendation], error) {
	items, total, err := s.repo.ListReceived(ctx, userID, page)
	if err != nil {
		return nil, err
	}
	p := domain.NewPage(items, total, page)
	return &p, nil
}

// Sent returns recommendations sent by the user, newest first.
func (s *recommendationServiceImpl) Sent(ctx context.Context, userID string, page domain.PageRequest) (*domain.Page[domain.Recommendation], error) {
	items, total, err := s.repo.ListSent(ctx, userID, page)
	if err != nil {
		return nil, err
	}
	p := domain.NewPage(items, total, page)
	return &p, nil
}

// MarkRead flags a received recommendation as read. Only the recipient may.
func (s *recommendationServiceImpl) MarkRead(ctx context.Context, userID, id string) (*domain.Recommendation, error) {
	rec, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec.RecipientID != userID {
		return nil, ErrRecommendationUpdateDenied
	}

	updated, err := s.repo.MarkRead(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrRecommendationNotFound
		}
		return nil, err
	}
	return updated, nil
}

// Delete removes a recommendation. Sender and recipient may both delete it.
func (s *recommendationServiceImpl) Delete(ctx context.Context, userID, id string) error {
	rec, err := s.get(ctx, id)
	if err != nil {
		return err
	}
	if rec.SenderID != userID && rec.RecipientID != userID {
		return ErrRecommendationDeleteDenied
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrRecommendationNotFound
		}
		return err
	}

	audit.Log(ctx, audit.ActionDeleteRecommend, userID, id, "recommendation deleted")
	return nil
}

// UnreadCount counts the user's unread received recommendations.
func (s *recommendationServiceImpl) UnreadCount(ctx context.Context, userID string) (int64, error) {
	return s.repo.CountUnread(ctx, userID)
}

func (s *recommendationServiceImpl) recipient(ctx context.Context, req *domain.CreateRecommendationRequest) (*domain.User, error) {
	var (
		user *domain.User
		err  error
	)
	switch {
	case strings.TrimSpace(req.RecipientID) != "":
		user, err = s.users.GetByID(ctx, strings.TrimSpace(req.RecipientID))
	case strings.TrimSpace(req.RecipientEmail) != "":
		user, err = s.users.GetByEmail(ctx, req.RecipientEmail)
	default:
		return nil, ErrMissingRecipient
	}
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrRecipientNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *recommendationServiceImpl) get(ctx context.Context, id string) (*domain.Recommendation, error) {
	rec, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrRecommendationNotFound
		}
		return nil, err
	}
	return rec, nil
}

package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/weiawesome/wes-estate/internal/domain"
	"github.com/weiawesome/wes-estate/internal/idgen"
	"github.com/weiawesome/wes-estate/pkg/log"
)

// GormRecommendationRepository implements RecommendationRepository using GORM.
type GormRecommendationRepository struct {
	db  *gorm.DB
	ids idgen.Generator
}

// NewGormRecommendationRepository creates a new GORM-based recommendation repository.
func NewGormRecommendationRepository(db *gorm.DB, ids idgen.Generator) *GormRecommendationRepository {
	return &GormRecommendationRepository{db: db, ids: ids}
}

// Create inserts a recommendation.
func (r *GormRecommendationRepository) Create(ctx context.Context, rec *domain.Recommendation) error {
	if rec.ID == "" {
		id, err := r.ids.Generate()
		if err != nil {
			return err
		}
		rec.ID = id
	}

	model := &domain.RecommendationModel{
		ID:          rec.ID,
		SenderID:    rec.SenderID,
		RecipientID: rec.RecipientID,
		PropertyID:  rec.PropertyID,
		Message:     rec.Message,
	}
	if err := r.db.WithContext(ctx).Omit("Sender", "Recipient", "Property").Create(model).Error; err != nil {
		l := log.Ctx(ctx)
		l.Error().Err(err).Str(log.FieldUserID, rec.SenderID).Msg("failed to create recommendation in db")
		return translate(err)
	}

	rec.CreatedAt = model.CreatedAt.UTC()
	rec.UpdatedAt = model.UpdatedAt.UTC()
	return nil
}

// GetByID retrieves a recommendation with its users and property.
func (r *GormRecommendationRepository) GetByID(ctx context.Context, id string) (*domain.Recommendation, error) {
	var model domain.RecommendationModel
	err := r.db.WithContext(ctx).
		Preload("Sender").Preload("Recipient").Preload("Property").
		First(&model, "id = ?", id).Error
	if err != nil {
		err = translate(err)
		if err != ErrNotFound {
			l := log.Ctx(ctx)
			l.Error().Err(err).Msg("failed to get recommendation")
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// ListReceived returns recommendations sent to userID, with sender and property.
func (r *GormRecommendationRepository) ListReceived(ctx context.Context, userID string, page domain.PageRequest) ([]domain.Recommendation, int64, error) {
	return r.list(ctx, "recipient_id", "Sender", userID, page)
}

// ListSent returns recommendations sent by userID, with recipient and property.
func (r *GormRecommendationRepository) ListSent(ctx context.Context, userID string, page domain.PageRequest) ([]domain.Recommendation, int64, error) {
	return r.list(ctx, "sender_id", "Recipient", userID, page)
}

// MarkRead flags a recommendation as read and returns it.
func (r *GormRecommendationRepository) MarkRead(ctx context.Context, id string) (*domain.Recommendation, error) {
	result := r.db.WithContext(ctx).Model(&domain.RecommendationModel{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"is_read":    true,
			"updated_at": time.Now().UTC(),
		})
	if result.Error != nil {
		l := log.Ctx(ctx)
		l.Error().Err(result.Error).Msg("failed to mark recommendation read")
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return r.GetByID(ctx, id)
}

// Delete removes a recommendation.
func (r *GormRecommendationRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.RecommendationModel{})
	if result.Error != nil {
		l := log.Ctx(ctx)
		l.Error().Err(result.Error).Msg("failed to delete recommendation")
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// CountUnread counts unread recommendations received by userID.
func (r *GormRecommendationRepository) CountUnread(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.RecommendationModel{}).
		Where("recipient_id = ? AND is_read = ?", userID, false).
		Count(&count).Error
	if err != nil {
		l := log.Ctx(ctx)
		l.Error().Err(err).Str(log.FieldUserID, userID).Msg("failed to count unread recommendations")
	}
	return count, err
}

func (r *GormRecommendationRepository) list(ctx context.Context, column, counterpart, userID string, page domain.PageRequest) ([]domain.Recommendation, int64, error) {
	base := func() *gorm.DB {
		return r.db.WithContext(ctx).Model(&domain.RecommendationModel{}).Where(column+" = ?", userID)
	}
	models, total, err := countAndFind[domain.RecommendationModel](ctx, base, func(q *gorm.DB) *gorm.DB {
		return q.Preload(counterpart).Preload("Property").Order("created_at DESC, id").Offset(page.Offset()).Limit(page.Limit)
	})
	if err != nil {
		l := log.Ctx(ctx)
		l.Error().Err(err).Str(log.FieldUserID, userID).Msg("failed to list recommendations")
		return nil, 0, err
	}

	recs := make([]domain.Recommendation, len(models))
	for i := range models {
		recs[i] = *models[i].ToDomain()
	}
	return recs, total, nil
}

package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/weiawesome/wes-estate/internal/domain"
	"github.com/weiawesome/wes-estate/internal/idgen"
	"github.com/weiawesome/wes-estate/pkg/log"
)

// GormFavoriteRepository implements FavoriteRepository using GORM.
type GormFavoriteRepository struct {
	db  *gorm.DB
	ids idgen.Generator
}

// NewGormFavoriteRepository creates a new GORM-based favorite repository.
func NewGormFavoriteRepository(db *gorm.DB, ids idgen.Generator) *GormFavoriteRepository {
	return &GormFavoriteRepository{db: db, ids: ids}
}

// Create inserts a favorite. A second favorite for the same user and
// property fails with ErrDuplicate.
func (r *GormFavoriteRepository) Create(ctx context.Context, f *domain.Favorite) error {
	if f.ID == "" {
		id, err := r.ids.Generate()
		if err != nil {
			return err
		}
		f.ID = id
	}

	model := &domain.FavoriteModel{
		ID:         f.ID,
		UserID:     f.UserID,
		PropertyID: f.PropertyID,
		Notes:      f.Notes,
	}
	if err := r.db.WithContext(ctx).Omit("Property").Create(model).Error; err != nil {
		err = translate(err)
		if err != ErrDuplicate {
			l := log.Ctx(ctx)
			l.Error().Err(err).Str(log.FieldUserID, f.UserID).Msg("failed to create favorite in db")
		}
		return err
	}

	f.CreatedAt = model.CreatedAt.UTC()
	f.UpdatedAt = model.UpdatedAt.UTC()
	return nil
}

// GetByID retrieves a favorite without its property.
func (r *GormFavoriteRepository) GetByID(ctx context.Context, id string) (*domain.Favorite, error) {
	var model domain.FavoriteModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, r.readErr(ctx, err)
	}
	return model.ToDomain(), nil
}

// GetByUserAndProperty retrieves the favorite linking userID and propertyID.
func (r *GormFavoriteRepository) GetByUserAndProperty(ctx context.Context, userID, propertyID string) (*domain.Favorite, error) {
	var model domain.FavoriteModel
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND property_id = ?", userID, propertyID).
		First(&model).Error
	if err != nil {
		return nil, r.readErr(ctx, err)
	}
	return model.ToDomain(), nil
}

// ListByUser returns a page of favorites with their properties, newest first.
func (r *GormFavoriteRepository) ListByUser(ctx context.Context, userID string, page domain.PageRequest) ([]domain.Favorite, int64, error) {
	base := func() *gorm.DB {
		return r.db.WithContext(ctx).Model(&domain.FavoriteModel{}).Where("user_id = ?", userID)
	}
	models, total, err := countAndFind[domain.FavoriteModel](ctx, base, func(q *gorm.DB) *gorm.DB {
		return q.Preload("Property").Order("created_at DESC, id").Offset(page.Offset()).Limit(page.Limit)
	})
	if err != nil {
		l := log.Ctx(ctx)
		l.Error().Err(err).Str(log.FieldUserID, userID).Msg("failed to list favorites")
		return nil, 0, err
	}

	favorites := make([]domain.Favorite, len(models))
	for i := range models {
		favorites[i] = *models[i].ToDomain()
	}
	return favorites, total, nil
}

// UpdateNotes replaces the notes of a favorite and returns it.
func (r *GormFavoriteRepository) UpdateNotes(ctx context.Context, id, notes string) (*domain.Favorite, error) {
	result := r.db.WithContext(ctx).Model(&domain.FavoriteModel{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"notes":      notes,
			"updated_at": time.Now().UTC(),
		})
	if result.Error != nil {
		l := log.Ctx(ctx)
		l.Error().Err(result.Error).Msg("failed to update favorite notes")
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return r.GetByID(ctx, id)
}

// Delete removes a favorite.
func (r *GormFavoriteRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.FavoriteModel{})
	if result.Error != nil {
		l := log.Ctx(ctx)
		l.Error().Err(result.Error).Msg("failed to delete favorite")
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *GormFavoriteRepository) readErr(ctx context.Context, err error) error {
	err = translate(err)
	if err != ErrNotFound {
		l := log.Ctx(ctx)
		l.Error().Err(err).Msg("failed to get favorite")
	}
	return err
}

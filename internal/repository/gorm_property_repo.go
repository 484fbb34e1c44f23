package repository

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/weiawesome/wes-estate/internal/domain"
	"github.com/weiawesome/wes-estate/internal/idgen"
	"github.com/weiawesome/wes-estate/pkg/log"
)

// textSearchColumns are matched by TextSearch. amenities and tags hold JSON
// text, so a substring match covers their elements.
var textSearchColumns = []string{"title", "type", "city", "state", "listed_by", "tags", "amenities"}

// GormPropertyRepository implements PropertyRepository using GORM.
type GormPropertyRepository struct {
	db  *gorm.DB
	ids idgen.Generator
}

// NewGormPropertyRepository creates a new GORM-based property repository.
func NewGormPropertyRepository(db *gorm.DB, ids idgen.Generator) *GormPropertyRepository {
	return &GormPropertyRepository{db: db, ids: ids}
}

// Create inserts a property.
func (r *GormPropertyRepository) Create(ctx context.Context, p *domain.Property) error {
	l := log.Ctx(ctx)

	if p.ID == "" {
		id, err := r.ids.Generate()
		if err != nil {
			return err
		}
		p.ID = id
	}

	model := domain.PropertyToModel(p)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		err = translate(err)
		if err != ErrDuplicate {
			l.Error().Err(err).Msg("failed to create property in db")
		}
		return err
	}

	p.CreatedAt = model.CreatedAt.UTC()
	p.UpdatedAt = model.UpdatedAt.UTC()
	l.Debug().Str(log.FieldPropertyID, p.ID).Msg("property created in db")
	return nil
}

// GetByID retrieves a property by ID.
func (r *GormPropertyRepository) GetByID(ctx context.Context, id string) (*domain.Property, error) {
	var model domain.PropertyModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		err = translate(err)
		if err != ErrNotFound {
			l := log.Ctx(ctx)
			l.Error().Err(err).Str(log.FieldPropertyID, id).Msg("failed to get property by id")
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// List returns a page of properties, newest first.
func (r *GormPropertyRepository) List(ctx context.Context, page domain.PageRequest) ([]domain.Property, int64, error) {
	base := func() *gorm.DB {
		return r.db.WithContext(ctx).Model(&domain.PropertyModel{})
	}
	return r.page(ctx, base, domain.DefaultSort, page, "failed to list properties")
}

// ListByOwner returns a page of the properties created by userID, newest first.
func (r *GormPropertyRepository) ListByOwner(ctx context.Context, userID string, page domain.PageRequest) ([]domain.Property, int64, error) {
	base := func() *gorm.DB {
		return r.db.WithContext(ctx).Model(&domain.PropertyModel{}).Where("created_by = ?", userID)
	}
	return r.page(ctx, base, domain.DefaultSort, page, "failed to list user properties")
}

// Update overwrites every mutable column of p.
func (r *GormPropertyRepository) Update(ctx context.Context, p *domain.Property) error {
	p.UpdatedAt = time.Now().UTC()
	model := domain.PropertyToModel(p)

	result := r.db.WithContext(ctx).Model(&domain.PropertyModel{}).
		Where("id = ?", p.ID).
		Select("*").
		Omit("id", "created_by", "created_at").
		Updates(model)
	if result.Error != nil {
		err := translate(result.Error)
		if err != ErrDuplicate {
			l := log.Ctx(ctx)
			l.Error().Err(err).Str(log.FieldPropertyID, p.ID).Msg("failed to update property in db")
		}
		return err
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a property together with the favorites and
// recommendations that reference it.
func (r *GormPropertyRepository) Delete(ctx context.Context, id string) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("property_id = ?", id).Delete(&domain.FavoriteModel{}).Error; err != nil {
			return err
		}
		if err := tx.Where("property_id = ?", id).Delete(&domain.RecommendationModel{}).Error; err != nil {
			return err
		}
		result := tx.Where("id = ?", id).Delete(&domain.PropertyModel{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
	if err != nil && err != ErrNotFound {
		l := log.Ctx(ctx)
		l.Error().Err(err).Str(log.FieldPropertyID, id).Msg("failed to delete property")
	}
	return err
}

// Search applies an advanced filter.
func (r *GormPropertyRepository) Search(ctx context.Context, f domain.SearchFilter) ([]domain.Property, int64, error) {
	base := func() *gorm.DB {
		return applyFilter(r.db.WithContext(ctx).Model(&domain.PropertyModel{}), f)
	}
	sort := f.Sort
	if len(sort) == 0 {
		sort = domain.DefaultSort
	}
	return r.page(ctx, base, sort, f.Page, "failed to search properties")
}

// TextSearch matches query case-insensitively against the text columns.
func (r *GormPropertyRepository) TextSearch(ctx context.Context, query string, page domain.PageRequest) ([]domain.Property, int64, error) {
	pattern := containsPattern(strings.ToLower(strings.TrimSpace(query)))
	conds := make([]string, len(textSearchColumns))
	args := make([]interface{}, len(textSearchColumns))
	for i, col := range textSearchColumns {
		conds[i] = ilike(col)
		args[i] = pattern
	}
	where := strings.Join(conds, " OR ")

	base := func() *gorm.DB {
		return r.db.WithContext(ctx).Model(&domain.PropertyModel{}).Where(where, args...)
	}
	return r.page(ctx, base, domain.DefaultSort, page, "failed to text search properties")
}

// Each walks every property in primary key order.
func (r *GormPropertyRepository) Each(ctx context.Context, batchSize int, fn func([]domain.Property) error) error {
	var models []domain.PropertyModel
	result := r.db.WithContext(ctx).FindInBatches(&models, batchSize, func(tx *gorm.DB, batch int) error {
		return fn(toProperties(models))
	})
	return result.Error
}

func (r *GormPropertyRepository) page(ctx context.Context, base func() *gorm.DB, sort []domain.SortField, page domain.PageRequest, msg string) ([]domain.Property, int64, error) {
	models, total, err := countAndFind[domain.PropertyModel](ctx, base, func(q *gorm.DB) *gorm.DB {
		return q.Clauses(orderBy(sort)).Offset(page.Offset()).Limit(page.Limit)
	})
	if err != nil {
		l := log.Ctx(ctx)
		l.Error().Err(err).Msg(msg)
		return nil, 0, err
	}
	return toProperties(models), total, nil
}

// applyFilter adds one condition per populated filter field.
func applyFilter(q *gorm.DB, f domain.SearchFilter) *gorm.DB {
	for _, c := range []struct{ col, v string }{{"city", f.City}, {"state", f.State}} {
		if c.v != "" {
			q = q.Where(ilike(c.col), containsPattern(strings.ToLower(c.v)))
		}
	}
	for _, c := range []struct{ col, v string }{{"type", f.Type}, {"furnished", f.Furnished}, {"listed_by", f.ListedBy}, {"listing_type", f.ListingType}} {
		if c.v != "" {
			q = q.Where(c.col+" = ?", c.v)
		}
	}

	q = floatRange(q, "price", f.MinPrice, f.MaxPrice)
	q = floatRange(q, "area_sq_ft", f.MinAreaSqFt, f.MaxAreaSqFt)
	q = floatRange(q, "rating", f.MinRating, f.MaxRating)
	q = intRange(q, "bedrooms", f.MinBedrooms, f.MaxBedrooms)
	q = intRange(q, "bathrooms", f.MinBathrooms, f.MaxBathrooms)

	for _, a := range f.Amenities {
		q = q.Where("amenities LIKE ? ESCAPE '"+likeEscape+"'", elementPattern(a))
	}
	for _, t := range f.Tags {
		q = q.Where("tags LIKE ? ESCAPE '"+likeEscape+"'", elementPattern(t))
	}
	if f.IsVerified != nil {
		q = q.Where("is_verified = ?", *f.IsVerified)
	}
	return q
}

func floatRange(q *gorm.DB, col string, min, max *float64) *gorm.DB {
	if min != nil {
		q = q.Where(col+" >= ?", *min)
	}
	if max != nil {
		q = q.Where(col+" <= ?", *max)
	}
	return q
}

func intRange(q *gorm.DB, col string, min, max *int) *gorm.DB {
	if min != nil {
		q = q.Where(col+" >= ?", *min)
	}
	if max != nil {
		q = q.Where(col+" <= ?", *max)
	}
	return q
}

func toProperties(models []domain.PropertyModel) []domain.Property {
	out := make([]domain.Property, len(models))
	for i := range models {
		out[i] = *models[i].ToDomain()
	}
	return out
}

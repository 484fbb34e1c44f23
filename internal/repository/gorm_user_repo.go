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

// GormUserRepository implements UserRepository using GORM.
type GormUserRepository struct {
	db  *gorm.DB
	ids idgen.Generator
}

// NewGormUserRepository creates a new GORM-based user repository.
func NewGormUserRepository(db *gorm.DB, ids idgen.Generator) *GormUserRepository {
	return &GormUserRepository{db: db, ids: ids}
}

// Create inserts a user. Emails are stored lower-cased.
func (r *GormUserRepository) Create(ctx context.Context, user *domain.User) error {
	l := log.Ctx(ctx)

	if user.ID == "" {
		id, err := r.ids.Generate()
		if err != nil {
			return err
		}
		user.ID = id
	}
	user.Email = normalizeEmail(user.Email)

	model := domain.UserToModel(user)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		err = translate(err)
		if err != ErrDuplicate {
			l.Error().Err(err).Msg("failed to create user in db")
		}
		return err
	}

	user.CreatedAt = model.CreatedAt
	user.UpdatedAt = model.UpdatedAt
	l.Debug().Str(log.FieldUserID, user.ID).Msg("user created in db")
	return nil
}

// GetByID retrieves a user by ID.
func (r *GormUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	var model domain.UserModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, r.readErr(ctx, err, "failed to get user by id")
	}
	return model.ToDomain(), nil
}

// GetByEmail retrieves a user by email, ignoring case.
func (r *GormUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var model domain.UserModel
	if err := r.db.WithContext(ctx).First(&model, "email = ?", normalizeEmail(email)).Error; err != nil {
		return nil, r.readErr(ctx, err, "failed to get user by email")
	}
	return model.ToDomain(), nil
}

// Update saves name and email.
func (r *GormUserRepository) Update(ctx context.Context, user *domain.User) error {
	user.Email = normalizeEmail(user.Email)
	user.UpdatedAt = time.Now().UTC()

	result := r.db.WithContext(ctx).Model(&domain.UserModel{}).
		Where("id = ?", user.ID).
		Updates(map[string]interface{}{
			"name":       user.Name,
			"email":      user.Email,
			"updated_at": user.UpdatedAt,
		})
	if result.Error != nil {
		err := translate(result.Error)
		if err != ErrDuplicate {
			l := log.Ctx(ctx)
			l.Error().Err(err).Str(log.FieldUserID, user.ID).Msg("failed to update user in db")
		}
		return err
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdatePassword replaces the password hash.
func (r *GormUserRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	result := r.db.WithContext(ctx).Model(&domain.UserModel{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"password_hash": passwordHash,
			"updated_at":    time.Now().UTC(),
		})
	if result.Error != nil {
		l := log.Ctx(ctx)
		l.Error().Err(result.Error).Str(log.FieldUserID, id).Msg("failed to update password in db")
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// LookupEmail returns the email of a user. The auth middleware uses it to
// check that a token's subject still exists.
func (r *GormUserRepository) LookupEmail(ctx context.Context, id string) (string, error) {
	var model domain.UserModel
	err := r.db.WithContext(ctx).Select("id", "email").First(&model, "id = ?", id).Error
	if err != nil {
		return "", r.readErr(ctx, err, "failed to look up user email")
	}
	return model.Email, nil
}

func (r *GormUserRepository) readErr(ctx context.Context, err error, msg string) error {
	err = translate(err)
	if err != ErrNotFound {
		l := log.Ctx(ctx)
		l.Error().Err(err).Msg(msg)
	}
	return err
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

package domain

import (
	"time"

	"github.com/weiawesome/wes-estate/pkg/database"
)

// UserModel is the GORM model for users table.
type UserModel struct {
	ID           string    `gorm:"type:varchar(36);primaryKey"`
	Name         string    `gorm:"type:varchar(100);not null"`
	Email        string    `gorm:"type:varchar(255);uniqueIndex;not null"`
	PasswordHash string    `gorm:"type:varchar(255);not null"`
	CreatedAt    time.Time `gorm:"autoCreateTime"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime"`
}

// TableName specifies the table name for UserModel.
func (UserModel) TableName() string {
	return "users"
}

// ToDomain converts UserModel to domain User.
func (m *UserModel) ToDomain() *User {
	return &User{
		ID:           m.ID,
		Name:         m.Name,
		Email:        m.Email,
		PasswordHash: m.PasswordHash,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

// UserToModel converts domain User to UserModel.
func UserToModel(u *User) *UserModel {
	return &UserModel{
		ID:           u.ID,
		Name:         u.Name,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

// PropertyModel is the GORM model for properties table.
type PropertyModel struct {
	ID            string               `gorm:"type:varchar(36);primaryKey"`
	ListingID     string               `gorm:"type:varchar(32);uniqueIndex;not null"`
	Title         string               `gorm:"type:varchar(255);not null"`
	Type          string               `gorm:"type:varchar(50);index;not null"`
	Price         float64              `gorm:"index;not null"`
	State         string               `gorm:"type:varchar(100);index;not null"`
	City          string               `gorm:"type:varchar(100);index;not null"`
	AreaSqFt      float64              `gorm:"not null"`
	Bedrooms      int                  `gorm:"index;not null"`
	Bathrooms     int                  `gorm:"index;not null"`
	Amenities     database.StringArray `gorm:"type:text"`
	Furnished     string               `gorm:"type:varchar(20);not null"`
	AvailableFrom time.Time
	ListedBy      string               `gorm:"type:varchar(50);not null"`
	Tags          database.StringArray `gorm:"type:text"`
	ColorTheme    string               `gorm:"type:varchar(20)"`
	Rating        float64              `gorm:"default:0"`
	IsVerified    bool                 `gorm:"default:false"`
	ListingType   string               `gorm:"type:varchar(10);index;not null"`
	CreatedBy     string               `gorm:"type:varchar(36);index;not null"`
	CreatedAt     time.Time            `gorm:"autoCreateTime;index"`
	UpdatedAt     time.Time            `gorm:"autoUpdateTime"`
}

// TableName specifies the table name for PropertyModel.
func (PropertyModel) TableName() string {
	return "properties"
}

// ToDomain converts PropertyModel to domain Property.
func (m *PropertyModel) ToDomain() *Property {
	return &Property{
		ID:            m.ID,
		ListingID:     m.ListingID,
		Title:         m.Title,
		Type:          m.Type,
		Price:         m.Price,
		State:         m.State,
		City:          m.City,
		AreaSqFt:      m.AreaSqFt,
		Bedrooms:      m.Bedrooms,
		Bathrooms:     m.Bathrooms,
		Amenities:     nonNil(m.Amenities),
		Furnished:     Furnished(m.Furnished),
		AvailableFrom: m.AvailableFrom.UTC(),
		ListedBy:      m.ListedBy,
		Tags:          nonNil(m.Tags),
		ColorTheme:    m.ColorTheme,
		Rating:        m.Rating,
		IsVerified:    m.IsVerified,
		ListingType:   ListingType(m.ListingType),
		CreatedBy:     m.CreatedBy,
		CreatedAt:     m.CreatedAt.UTC(),
		UpdatedAt:     m.UpdatedAt.UTC(),
	}
}

// PropertyToModel converts domain Property to PropertyModel.
func PropertyToModel(p *Property) *PropertyModel {
	return &PropertyModel{
		ID:            p.ID,
		ListingID:     p.ListingID,
		Title:         p.Title,
		Type:          p.Type,
		Price:         p.Price,
		State:         p.State,
		City:          p.City,
		AreaSqFt:      p.AreaSqFt,
		Bedrooms:      p.Bedrooms,
		Bathrooms:     p.Bathrooms,
		Amenities:     database.NewStringArray(p.Amenities...),
		Furnished:     string(p.Furnished),
		AvailableFrom: p.AvailableFrom,
		ListedBy:      p.ListedBy,
		Tags:          database.NewStringArray(p.Tags...),
		ColorTheme:    p.ColorTheme,
		Rating:        p.Rating,
		IsVerified:    p.IsVerified,
		ListingType:   string(p.ListingType),
		CreatedBy:     p.CreatedBy,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

// FavoriteModel is the GORM model for favorites table.
type FavoriteModel struct {
	ID         string        `gorm:"type:varchar(36);primaryKey"`
	UserID     string        `gorm:"type:varchar(36);not null;uniqueIndex:idx_favorite_user_property"`
	PropertyID string        `gorm:"type:varchar(36);not null;uniqueIndex:idx_favorite_user_property;index"`
	Notes      string        `gorm:"type:text"`
	Property   PropertyModel `gorm:"foreignKey:PropertyID;constraint:OnDelete:CASCADE"`
	CreatedAt  time.Time     `gorm:"autoCreateTime;index"`
	UpdatedAt  time.Time     `gorm:"autoUpdateTime"`
}

// TableName specifies the table name for FavoriteModel.
func (FavoriteModel) TableName() string {
	return "favorites"
}

// ToDomain converts FavoriteModel to domain Favorite. The property is only
// attached when it was preloaded.
func (m *FavoriteModel) ToDomain() *Favorite {
	f := &Favorite{
		ID:         m.ID,
		UserID:     m.UserID,
		PropertyID: m.PropertyID,
		Notes:      m.Notes,
		CreatedAt:  m.CreatedAt.UTC(),
		UpdatedAt:  m.UpdatedAt.UTC(),
	}
	if m.Property.ID != "" {
		f.Property = m.Property.ToDomain()
	}
	return f
}

// RecommendationModel is the GORM model for recommendations table.
type RecommendationModel struct {
	ID          string        `gorm:"type:varchar(36);primaryKey"`
	SenderID    string        `gorm:"type:varchar(36);index;not null"`
	RecipientID string        `gorm:"type:varchar(36);index;not null"`
	PropertyID  string        `gorm:"type:varchar(36);index;not null"`
	Message     string        `gorm:"type:text"`
	IsRead      bool          `gorm:"index;default:false"`
	Sender      UserModel     `gorm:"foreignKey:SenderID;constraint:OnDelete:CASCADE"`
	Recipient   UserModel     `gorm:"foreignKey:RecipientID;constraint:OnDelete:CASCADE"`
	Property    PropertyModel `gorm:"foreignKey:PropertyID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time     `gorm:"autoCreateTime;index"`
	UpdatedAt   time.Time     `gorm:"autoUpdateTime"`
}

// TableName specifies the table name for RecommendationModel.
func (RecommendationModel) TableName() string {
	return "recommendations"
}

// ToDomain converts RecommendationModel to domain Recommendation.
func (m *RecommendationModel) ToDomain() *Recommendation {
	r := &Recommendation{
		ID:          m.ID,
		SenderID:    m.SenderID,
		RecipientID: m.RecipientID,
		PropertyID:  m.PropertyID,
		Message:     m.Message,
		IsRead:      m.IsRead,
		CreatedAt:   m.CreatedAt.UTC(),
		UpdatedAt:   m.UpdatedAt.UTC(),
	}
	if m.Sender.ID != "" {
		s := m.Sender.ToDomain().Summary()
		r.Sender = &s
	}
	if m.Recipient.ID != "" {
		s := m.Recipient.ToDomain().Summary()
		r.Recipient = &s
	}
	if m.Property.ID != "" {
		r.Property = m.Property.ToDomain()
	}
	return r
}

// Models lists every GORM model for auto-migration.
func Models() []interface{} {
	return []interface{}{
		&UserModel{},
		&PropertyModel{},
		&FavoriteModel{},
		&RecommendationModel{},
	}
}

func nonNil(a database.StringArray) []string {
	if a == nil {
		return []string{}
	}
	return []string(a)
}

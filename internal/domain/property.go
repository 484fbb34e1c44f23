package domain

import (
	"errors"
	"sort"
	"strings"
	"time"
)

// Furnished describes how a property is furnished.
type Furnished string

const (
	FurnishedNone Furnished = "Unfurnished"
	FurnishedSemi Furnished = "Semi"
	FurnishedFull Furnished = "Furnished"
)

// Valid reports whether f is a known furnishing state.
func (f Furnished) Valid() bool {
	switch f {
	case FurnishedNone, FurnishedSemi, FurnishedFull:
		return true
	}
	return false
}

// ListingType is either rent or sale.
type ListingType string

const (
	ListingTypeRent ListingType = "rent"
	ListingTypeSale ListingType = "sale"
)

// Valid reports whether t is a known listing type.
func (t ListingType) Valid() bool {
	return t == ListingTypeRent || t == ListingTypeSale
}

// Property represents a real-estate listing.
type Property struct {
	ID            string      `json:"id"`
	ListingID     string      `json:"listingId"`
	Title         string      `json:"title"`
	Type          string      `json:"type"`
	Price         float64     `json:"price"`
	State         string      `json:"state"`
	City          string      `json:"city"`
	AreaSqFt      float64     `json:"areaSqFt"`
	Bedrooms      int         `json:"bedrooms"`
	Bathrooms     int         `json:"bathrooms"`
	Amenities     []string    `json:"amenities"`
	Furnished     Furnished   `json:"furnished"`
	AvailableFrom time.Time   `json:"availableFrom"`
	ListedBy      string      `json:"listedBy"`
	Tags          []string    `json:"tags"`
	ColorTheme    string      `json:"colorTheme,omitempty"`
	Rating        float64     `json:"rating"`
	IsVerified    bool        `json:"isVerified"`
	ListingType   ListingType `json:"listingType"`
	CreatedBy     string      `json:"createdBy"`
	CreatedAt     time.Time   `json:"createdAt"`
	UpdatedAt     time.Time   `json:"updatedAt"`
}

// PropertyInput is the body of create and update requests. Nil fields are
// left unchanged on update; create requires the mandatory ones.
type PropertyInput struct {
	ListingID     *string      `json:"listingId"`
	Title         *string      `json:"title"`
	Type          *string      `json:"type"`
	Price         *float64     `json:"price"`
	State         *string      `json:"state"`
	City          *string      `json:"city"`
	AreaSqFt      *float64     `json:"areaSqFt"`
	Bedrooms      *int         `json:"bedrooms"`
	Bathrooms     *int         `json:"bathrooms"`
	Amenities     *StringList  `json:"amenities"`
	Furnished     *Furnished   `json:"furnished"`
	AvailableFrom *Date        `json:"availableFrom"`
	ListedBy      *string      `json:"listedBy"`
	Tags          *StringList  `json:"tags"`
	ColorTheme    *string      `json:"colorTheme"`
	Rating        *float64     `json:"rating"`
	IsVerified    *bool        `json:"isVerified"`
	ListingType   *ListingType `json:"listingType"`
}

// Apply copies every non-nil field of in onto p.
func (in *PropertyInput) Apply(p *Property) {
	setString(&p.ListingID, in.ListingID)
	setString(&p.Title, in.Title)
	setString(&p.Type, in.Type)
	setString(&p.State, in.State)
	setString(&p.City, in.City)
	setString(&p.ListedBy, in.ListedBy)
	setString(&p.ColorTheme, in.ColorTheme)
	if in.Price != nil {
		p.Price = *in.Price
	}
	if in.AreaSqFt != nil {
		p.AreaSqFt = *in.AreaSqFt
	}
	if in.Bedrooms != nil {
		p.Bedrooms = *in.Bedrooms
	}
	if in.Bathrooms != nil {
		p.Bathrooms = *in.Bathrooms
	}
	if in.Amenities != nil {
		p.Amenities = []string(*in.Amenities)
	}
	if in.Tags != nil {
		p.Tags = []string(*in.Tags)
	}
	if in.Furnished != nil {
		p.Furnished = *in.Furnished
	}
	if in.AvailableFrom != nil {
		p.AvailableFrom = in.AvailableFrom.Time
	}
	if in.Rating != nil {
		p.Rating = *in.Rating
	}
	if in.IsVerified != nil {
		p.IsVerified = *in.IsVerified
	}
	if in.ListingType != nil {
		p.ListingType = *in.ListingType
	}
}

// MissingForCreate lists the mandatory fields absent from in.
func (in *PropertyInput) MissingForCreate() []string {
	var missing []string
	check := func(name string, present bool) {
		if !present {
			missing = append(missing, name)
		}
	}
	check("title", in.Title != nil && strings.TrimSpace(*in.Title) != "")
	check("type", in.Type != nil && strings.TrimSpace(*in.Type) != "")
	check("price", in.Price != nil)
	check("state", in.State != nil && strings.TrimSpace(*in.State) != "")
	check("city", in.City != nil && strings.TrimSpace(*in.City) != "")
	check("areaSqFt", in.AreaSqFt != nil)
	check("bedrooms", in.Bedrooms != nil)
	check("bathrooms", in.Bathrooms != nil)
	check("furnished", in.Furnished != nil)
	check("availableFrom", in.AvailableFrom != nil)
	check("listedBy", in.ListedBy != nil && strings.TrimSpace(*in.ListedBy) != "")
	check("listingType", in.ListingType != nil)
	return missing
}

// Validate checks the invariants of a complete property.
func (p *Property) Validate() error {
	var problems []string
	for name, v := range map[string]string{
		"title": p.Title, "type": p.Type, "state": p.State, "city": p.City, "listedBy": p.ListedBy,
	} {
		if v == "" {
			problems = append(problems, name+" is required")
		}
	}
	if p.Price < 0 {
		problems = append(problems, "price must not be negative")
	}
	if p.AreaSqFt < 0 {
		problems = append(problems, "areaSqFt must not be negative")
	}
	if p.Bedrooms < 0 {
		problems = append(problems, "bedrooms must not be negative")
	}
	if p.Bathrooms < 0 {
		problems = append(problems, "bathrooms must not be negative")
	}
	if !p.Furnished.Valid() {
		problems = append(problems, "furnished must be one of Unfurnished, Semi, Furnished")
	}
	if !p.ListingType.Valid() {
		problems = append(problems, "listingType must be rent or sale")
	}
	if p.Rating < 0 || p.Rating > 5 {
		problems = append(problems, "rating must be between 0 and 5")
	}
	if len(problems) == 0 {
		return nil
	}
	sort.Strings(problems)
	return errors.New(strings.Join(problems, ", "))
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = strings.TrimSpace(*src)
	}
}

package repository

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/weiawesome/wes-estate/internal/domain"
)

// likeEscape is the LIKE escape character. It is not special in any
// supported dialect's string literals.
const likeEscape = "!"

var likeReplacer = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

// containsPattern builds a LIKE pattern matching s anywhere.
func containsPattern(s string) string {
	return "%" + likeReplacer.Replace(s) + "%"
}

// elementPattern matches a JSON-encoded StringArray column containing item.
func elementPattern(item string) string {
	b, _ := json.Marshal(item)
	return "%" + likeReplacer.Replace(string(b)) + "%"
}

// ilike is a case-insensitive substring condition on column.
func ilike(column string) string {
	return "LOWER(" + column + ") LIKE ? ESCAPE '" + likeEscape + "'"
}

// orderBy converts sort fields to order clauses. id breaks ties so pages
// are stable.
func orderBy(fields []domain.SortField) clause.OrderBy {
	var cols []clause.OrderByColumn
	for _, f := range fields {
		name, ok := domain.SortableFields[f.Field]
		if !ok {
			continue
		}
		cols = append(cols, clause.OrderByColumn{Column: clause.Column{Name: name}, Desc: f.Desc})
	}
	cols = append(cols, clause.OrderByColumn{Column: clause.Column{Name: "id"}})
	return clause.OrderBy{Columns: cols}
}

// countAndFind runs the count and the page query concurrently. base must
// return a fresh statement on each call.
func countAndFind[M any](ctx context.Context, base func() *gorm.DB, page func(*gorm.DB) *gorm.DB) ([]M, int64, error) {
	var (
		total  int64
		models []M
	)
	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		return base().Count(&total).Error
	})
	g.Go(func() error {
		return page(base()).Find(&models).Error
	})
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}
	return models, total, nil
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicate
	}
	return err
}

package repos

import (
	"errors"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/architeacher/catalog/internal/domain/model"
	"github.com/architeacher/catalog/pkg/logger"
)

var ErrUnsupportedSpecification = errors.New("unsupported specification")

var columnMapping = map[string]string{
	"id":        "id",
	"name":      "name",
	"color":     "color",
	"size":      "size",
	"price":     "price",
	"createdAt": "created_at",
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// CriteriaTranslator renders criteria as squirrel conditions so that
// PostgreSQL returns exactly what Criteria.Apply returns in memory.
type CriteriaTranslator struct {
	logger *logger.Logger
}

func NewCriteriaTranslator(log *logger.Logger) *CriteriaTranslator {
	return &CriteriaTranslator{logger: log}
}

func (t *CriteriaTranslator) ApplyToSelect(builder sq.SelectBuilder, criteria model.Criteria) (sq.SelectBuilder, error) {
	builder, err := t.ApplyConditionsOnly(builder, criteria)
	if err != nil {
		return builder, err
	}

	builder = t.applySorting(builder, criteria)
	builder = t.applyPagination(builder, criteria)

	return builder, nil
}

func (t *CriteriaTranslator) ApplyConditionsOnly(builder sq.SelectBuilder, criteria model.Criteria) (sq.SelectBuilder, error) {
	if !criteria.HasSpec() {
		return builder, nil
	}

	condition, err := t.Translate(criteria.Spec())
	if err != nil {
		return builder, err
	}

	return builder.Where(condition), nil
}

// Translate maps a specification tree to a condition. An empty AND renders
// as (1=1) and an empty OR as (1=0), matching their in-memory results.
func (t *CriteriaTranslator) Translate(spec model.Specification) (sq.Sqlizer, error) {
	switch spec.Operator() {
	case model.SpecOpColor, model.SpecOpSize:
		return sq.Eq{t.col(spec.Field()): fmt.Sprint(spec.Value())}, nil

	case model.SpecOpPriceRange:
		bounds, ok := spec.Value().(model.PriceBounds)
		if !ok {
			return nil, fmt.Errorf("%w: price range value %T", ErrUnsupportedSpecification, spec.Value())
		}

		col := t.col(spec.Field())
		conditions := make(sq.And, 0, 2)

		if bounds.Min != nil {
			conditions = append(conditions, sq.GtOrEq{col: *bounds.Min})
		}

		if bounds.Max != nil {
			conditions = append(conditions, sq.LtOrEq{col: *bounds.Max})
		}

		return conditions, nil

	case model.SpecOpNameLike:
		pattern := "%" + likeEscaper.Replace(fmt.Sprint(spec.Value())) + "%"

		return sq.ILike{t.col(spec.Field()): pattern}, nil

	case model.SpecOpAnd:
		conditions := make(sq.And, 0, len(spec.Children()))
		for _, child := range spec.Children() {
			condition, err := t.Translate(child)
			if err != nil {
				return nil, err
			}

			conditions = append(conditions, condition)
		}

		return conditions, nil

	case model.SpecOpOr:
		conditions := make(sq.Or, 0, len(spec.Children()))
		for _, child := range spec.Children() {
			condition, err := t.Translate(child)
			if err != nil {
				return nil, err
			}

			conditions = append(conditions, condition)
		}

		return conditions, nil

	case model.SpecOpNot:
		children := spec.Children()
		if len(children) != 1 {
			return nil, fmt.Errorf("%w: not with %d operands", ErrUnsupportedSpecification, len(children))
		}

		condition, err := t.Translate(children[0])
		if err != nil {
			return nil, err
		}

		return sq.Expr("NOT (?)", condition), nil
	}

	return nil, fmt.Errorf("%w: operator %q", ErrUnsupportedSpecification, spec.Operator())
}

func (t *CriteriaTranslator) col(field string) string {
	if col, ok := columnMapping[field]; ok {
		return col
	}

	if t.logger != nil {
		t.logger.Warn().
			Str("field", field).
			Str("fallback", "created_at").
			Msg("unknown field requested, falling back to default")
	}

	return "created_at"
}

// applySorting always ends with created_at and id so that pages are stable
// and unsorted queries keep insertion order.
func (t *CriteriaTranslator) applySorting(builder sq.SelectBuilder, c model.Criteria) sq.SelectBuilder {
	for _, s := range c.Sorting() {
		builder = builder.OrderBy(fmt.Sprintf("%s %s", t.col(s.Field), s.Direction))
	}

	return builder.OrderBy("created_at ASC", "id ASC")
}

func (t *CriteriaTranslator) applyPagination(builder sq.SelectBuilder, c model.Criteria) sq.SelectBuilder {
	if !c.HasPagination() {
		return builder
	}

	return builder.Limit(uint64(c.Size())).Offset(uint64(c.Offset()))
}

package model

import (
	"cmp"
	"slices"
	"strings"
)

type SortDirection string

const (
	SortAsc  SortDirection = "ASC"
	SortDesc SortDirection = "DESC"

	defaultPage uint = 1
	defaultSize uint = 20
)

type (
	SortField struct {
		Field     string
		Direction SortDirection
	}

	Criteria struct {
		spec    Specification
		sorting []SortField
		page    uint
		size    uint
	}
)

func (c Criteria) Spec() Specification  { return c.spec }
func (c Criteria) Sorting() []SortField { return c.sorting }
func (c Criteria) Page() uint           { return c.page }
func (c Criteria) Size() uint           { return c.size }
func (c Criteria) Offset() uint         { return (c.page - 1) * c.size }
func (c Criteria) HasSpec() bool        { return c.spec != nil }
func (c Criteria) HasSorting() bool     { return len(c.sorting) > 0 }
func (c Criteria) HasPagination() bool  { return c.page > 0 && c.size > 0 }

// Apply evaluates the criteria against products in memory. It returns the
// requested page and the number of products matching the specification.
// Without sorting the input order is kept.
func (c Criteria) Apply(products []Product) ([]Product, uint) {
	matched := Filter(products, c.spec)

	if c.HasSorting() {
		slices.SortStableFunc(matched, c.compare)
	}

	total := uint(len(matched))
	if !c.HasPagination() {
		return matched, total
	}

	start := min(c.Offset(), total)
	end := min(start+c.size, total)

	return matched[start:end], total
}

func (c Criteria) compare(a, b Product) int {
	for _, s := range c.sorting {
		result := compareProducts(a, b, s.Field)
		if s.Direction == SortDesc {
			result = -result
		}

		if result != 0 {
			return result
		}
	}

	return 0
}

func compareProducts(a, b Product, field string) int {
	switch field {
	case "name":
		return strings.Compare(a.Name, b.Name)
	case "color":
		return strings.Compare(a.Color.String(), b.Color.String())
	case "size":
		return strings.Compare(a.Size.String(), b.Size.String())
	case "price":
		return cmp.Compare(a.Price, b.Price)
	default:
		return a.CreatedAt.Compare(b.CreatedAt)
	}
}

func FromProductFilter(filter ProductFilter) Criteria {
	builder := NewCriteria()

	if len(filter.Colors) > 0 {
		builder.WhereColorIn(filter.Colors...)
	}

	if len(filter.Sizes) > 0 {
		builder.WhereSizeIn(filter.Sizes...)
	}

	if filter.MinPrice != nil || filter.MaxPrice != nil {
		opts := make([]PriceOption, 0, 2)
		if filter.MinPrice != nil {
			opts = append(opts, WithMinPrice(*filter.MinPrice))
		}

		if filter.MaxPrice != nil {
			opts = append(opts, WithMaxPrice(*filter.MaxPrice))
		}

		builder.WherePriceRange(opts...)
	}

	if filter.Name != "" {
		builder.WhereNameLike(filter.Name)
	}

	for _, sort := range filter.Sort {
		builder.OrderBy(sort)
	}

	builder.Paginate(filter.Page, filter.Size)

	return builder.Build()
}

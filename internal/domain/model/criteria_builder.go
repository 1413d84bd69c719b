package model

type CriteriaBuilder struct {
	specs   []Specification
	sorting []SortField
	page    uint
	size    uint
}

func NewCriteria() *CriteriaBuilder {
	return &CriteriaBuilder{
		specs: make([]Specification, 0),
		page:  defaultPage,
		size:  defaultSize,
	}
}

func (b *CriteriaBuilder) WhereColorIn(colors ...Color) *CriteriaBuilder {
	specs := make([]Specification, 0, len(colors))
	for _, color := range colors {
		specs = append(specs, ColorIs(color))
	}

	return b.whereAny(specs)
}

func (b *CriteriaBuilder) WhereSizeIn(sizes ...Size) *CriteriaBuilder {
	specs := make([]Specification, 0, len(sizes))
	for _, size := range sizes {
		specs = append(specs, SizeIs(size))
	}

	return b.whereAny(specs)
}

func (b *CriteriaBuilder) WherePriceRange(opts ...PriceOption) *CriteriaBuilder {
	b.specs = append(b.specs, PriceRange(opts...))

	return b
}

func (b *CriteriaBuilder) WhereNameLike(pattern string) *CriteriaBuilder {
	b.specs = append(b.specs, NameLike(pattern))

	return b
}

func (b *CriteriaBuilder) Where(spec Specification) *CriteriaBuilder {
	b.specs = append(b.specs, spec)

	return b
}

func (b *CriteriaBuilder) WhereNot(spec Specification) *CriteriaBuilder {
	b.specs = append(b.specs, Not(spec))

	return b
}

func (b *CriteriaBuilder) WhereAny(specs ...Specification) *CriteriaBuilder {
	b.specs = append(b.specs, Or(specs...))

	return b
}

func (b *CriteriaBuilder) whereAny(specs []Specification) *CriteriaBuilder {
	switch len(specs) {
	case 0:
		return b
	case 1:
		b.specs = append(b.specs, specs[0])
	default:
		b.specs = append(b.specs, Or(specs...))
	}

	return b
}

func (b *CriteriaBuilder) OrderBy(field string) *CriteriaBuilder {
	direction := SortAsc
	actualField := field

	if len(field) > 0 && field[0] == '-' {
		direction = SortDesc
		actualField = field[1:]
	}

	b.sorting = append(b.sorting, SortField{Field: actualField, Direction: direction})

	return b
}

func (b *CriteriaBuilder) Paginate(page, size uint) *CriteriaBuilder {
	if page > 0 {
		b.page = page
	}

	if size > 0 {
		b.size = size
	}

	return b
}

// Unpaginated drops the page window so that every match is returned.
func (b *CriteriaBuilder) Unpaginated() *CriteriaBuilder {
	b.page = 0
	b.size = 0

	return b
}

func (b *CriteriaBuilder) Build() Criteria {
	var rootSpec Specification

	if len(b.specs) == 1 {
		rootSpec = b.specs[0]
	} else if len(b.specs) > 1 {
		rootSpec = And(b.specs...)
	}

	return Criteria{
		spec:    rootSpec,
		sorting: b.sorting,
		page:    b.page,
		size:    b.size,
	}
}

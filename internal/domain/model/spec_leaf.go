package model

import "strings"

type baseSpec struct {
	self Specification
}

func (b *baseSpec) setSelf(s Specification) { b.self = s }

func (b *baseSpec) And(other Specification) Specification {
	return &andSpec{specs: []Specification{b.self, other}}
}
func (b *baseSpec) Or(other Specification) Specification {
	return &orSpec{specs: []Specification{b.self, other}}
}
func (b *baseSpec) Not() Specification        { return &notSpec{spec: b.self} }
func (b *baseSpec) IsComposite() bool         { return false }
func (b *baseSpec) Children() []Specification { return nil }

type colorSpec struct {
	baseSpec
	color Color
}

func ColorIs(color Color) Specification {
	s := &colorSpec{color: color}
	s.setSelf(s)

	return s
}

func (s *colorSpec) IsSatisfiedBy(product Product) bool { return product.Color == s.color }
func (s *colorSpec) Operator() SpecOperator             { return SpecOpColor }
func (s *colorSpec) Field() string                      { return "color" }
func (s *colorSpec) Value() any                         { return s.color }

type sizeSpec struct {
	baseSpec
	size Size
}

func SizeIs(size Size) Specification {
	s := &sizeSpec{size: size}
	s.setSelf(s)

	return s
}

func (s *sizeSpec) IsSatisfiedBy(product Product) bool { return product.Size == s.size }
func (s *sizeSpec) Operator() SpecOperator             { return SpecOpSize }
func (s *sizeSpec) Field() string                      { return "size" }
func (s *sizeSpec) Value() any                         { return s.size }

type (
	// PriceBounds holds the optional inclusive bounds of a price range.
	// A nil bound leaves that side unconstrained.
	PriceBounds struct {
		Min *float64
		Max *float64
	}

	PriceOption func(*PriceBounds)
)

func WithMinPrice(price float64) PriceOption {
	return func(b *PriceBounds) { b.Min = &price }
}

func WithMaxPrice(price float64) PriceOption {
	return func(b *PriceBounds) { b.Max = &price }
}

func (b PriceBounds) Contains(price float64) bool {
	if b.Min != nil && price < *b.Min {
		return false
	}

	if b.Max != nil && price > *b.Max {
		return false
	}

	return true
}

func (b PriceBounds) IsUnbounded() bool {
	return b.Min == nil && b.Max == nil
}

func (b PriceBounds) clone() PriceBounds {
	var out PriceBounds

	if b.Min != nil {
		v := *b.Min
		out.Min = &v
	}

	if b.Max != nil {
		v := *b.Max
		out.Max = &v
	}

	return out
}

type priceRangeSpec struct {
	baseSpec
	bounds PriceBounds
}

func PriceRange(opts ...PriceOption) Specification {
	var bounds PriceBounds
	for _, opt := range opts {
		opt(&bounds)
	}

	s := &priceRangeSpec{bounds: bounds}
	s.setSelf(s)

	return s
}

func (s *priceRangeSpec) IsSatisfiedBy(product Product) bool {
	return s.bounds.Contains(product.Price)
}
func (s *priceRangeSpec) Operator() SpecOperator { return SpecOpPriceRange }
func (s *priceRangeSpec) Field() string          { return "price" }
func (s *priceRangeSpec) Value() any             { return s.bounds.clone() }

type nameLikeSpec struct {
	baseSpec
	pattern string
}

// NameLike matches products whose name contains pattern, ignoring case.
func NameLike(pattern string) Specification {
	s := &nameLikeSpec{pattern: pattern}
	s.setSelf(s)

	return s
}

func (s *nameLikeSpec) IsSatisfiedBy(product Product) bool {
	return strings.Contains(strings.ToLower(product.Name), strings.ToLower(s.pattern))
}
func (s *nameLikeSpec) Operator() SpecOperator { return SpecOpNameLike }
func (s *nameLikeSpec) Field() string          { return "name" }
func (s *nameLikeSpec) Value() any             { return s.pattern }

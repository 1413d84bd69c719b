package model

type SpecOperator string

const (
	SpecOpColor      SpecOperator = "color"
	SpecOpSize       SpecOperator = "size"
	SpecOpPriceRange SpecOperator = "price_range"
	SpecOpNameLike   SpecOperator = "name_like"
	SpecOpAnd        SpecOperator = "and"
	SpecOpOr         SpecOperator = "or"
	SpecOpNot        SpecOperator = "not"
)

// Specification is a predicate over a Product. Implementations are immutable
// once constructed and safe for concurrent use.
//
// Besides evaluating products in memory, a Specification exposes its operator,
// field, value and children so that adapters can translate it into a storage
// query.
type Specification interface {
	IsSatisfiedBy(product Product) bool
	And(other Specification) Specification
	Or(other Specification) Specification
	Not() Specification
	IsComposite() bool
	Children() []Specification
	Operator() SpecOperator
	Field() string
	Value() any
}

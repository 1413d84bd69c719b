package model

import "slices"

type andSpec struct {
	specs []Specification
}

// And returns the conjunction of specs, evaluated left to right and stopping
// at the first unsatisfied operand. With no operands it is satisfied by every
// product.
func And(specs ...Specification) Specification {
	return &andSpec{specs: slices.Clone(specs)}
}

func (s *andSpec) IsSatisfiedBy(product Product) bool {
	for _, spec := range s.specs {
		if !spec.IsSatisfiedBy(product) {
			return false
		}
	}

	return true
}

func (s *andSpec) And(other Specification) Specification {
	return &andSpec{specs: append(slices.Clone(s.specs), other)}
}

func (s *andSpec) Or(other Specification) Specification {
	return &orSpec{specs: []Specification{s, other}}
}

func (s *andSpec) Not() Specification        { return &notSpec{spec: s} }
func (s *andSpec) IsComposite() bool         { return true }
func (s *andSpec) Children() []Specification { return slices.Clone(s.specs) }
func (s *andSpec) Operator() SpecOperator    { return SpecOpAnd }
func (s *andSpec) Field() string             { return "" }
func (s *andSpec) Value() any                { return nil }

type orSpec struct {
	specs []Specification
}

// Or returns the disjunction of specs. With no operands it is satisfied by
// no product.
func Or(specs ...Specification) Specification {
	return &orSpec{specs: slices.Clone(specs)}
}

func (s *orSpec) IsSatisfiedBy(product Product) bool {
	for _, spec := range s.specs {
		if spec.IsSatisfiedBy(product) {
			return true
		}
	}

	return false
}

func (s *orSpec) And(other Specification) Specification {
	return &andSpec{specs: []Specification{s, other}}
}

func (s *orSpec) Or(other Specification) Specification {
	return &orSpec{specs: append(slices.Clone(s.specs), other)}
}

func (s *orSpec) Not() Specification        { return &notSpec{spec: s} }
func (s *orSpec) IsComposite() bool         { return true }
func (s *orSpec) Children() []Specification { return slices.Clone(s.specs) }
func (s *orSpec) Operator() SpecOperator    { return SpecOpOr }
func (s *orSpec) Field() string             { return "" }
func (s *orSpec) Value() any                { return nil }

type notSpec struct {
	spec Specification
}

func Not(spec Specification) Specification {
	if negated, ok := spec.(*notSpec); ok {
		return negated.spec
	}

	return &notSpec{spec: spec}
}

func (s *notSpec) IsSatisfiedBy(product Product) bool {
	return !s.spec.IsSatisfiedBy(product)
}

func (s *notSpec) And(other Specification) Specification {
	return &andSpec{specs: []Specification{s, other}}
}

func (s *notSpec) Or(other Specification) Specification {
	return &orSpec{specs: []Specification{s, other}}
}

func (s *notSpec) Not() Specification        { return s.spec }
func (s *notSpec) IsComposite() bool         { return true }
func (s *notSpec) Children() []Specification { return []Specification{s.spec} }
func (s *notSpec) Operator() SpecOperator    { return SpecOpNot }
func (s *notSpec) Field() string             { return "" }
func (s *notSpec) Value() any                { return nil }

package model

import "iter"

// Filter returns the products satisfying spec, in input order. The result is
// never nil. A nil spec matches every product.
func Filter(products []Product, spec Specification) []Product {
	matched := make([]Product, 0, len(products))

	for _, product := range products {
		if spec == nil || spec.IsSatisfiedBy(product) {
			matched = append(matched, product)
		}
	}

	return matched
}

// FilterSeq is the lazy form of Filter: spec is evaluated only as the
// returned sequence is consumed.
func FilterSeq(products iter.Seq[Product], spec Specification) iter.Seq[Product] {
	return func(yield func(Product) bool) {
		for product := range products {
			if spec != nil && !spec.IsSatisfiedBy(product) {
				continue
			}

			if !yield(product) {
				return
			}
		}
	}
}

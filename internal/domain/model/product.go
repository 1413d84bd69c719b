package model

import (
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
)

type (
	Color string
	Size  string
)

const (
	ColorRed   Color = "red"
	ColorGreen Color = "green"
	ColorBlue  Color = "blue"

	SizeSmall  Size = "small"
	SizeMedium Size = "medium"
	SizeLarge  Size = "large"
)

func (c Color) String() string { return string(c) }

func (c Color) IsValid() bool {
	switch c {
	case ColorRed, ColorGreen, ColorBlue:
		return true
	default:
		return false
	}
}

func ParseColor(s string) (Color, error) {
	color := Color(strings.ToLower(strings.TrimSpace(s)))
	if !color.IsValid() {
		return "", ErrInvalidColor
	}

	return color, nil
}

func AllColors() []Color {
	return []Color{ColorRed, ColorGreen, ColorBlue}
}

func (s Size) String() string { return string(s) }

func (s Size) IsValid() bool {
	switch s {
	case SizeSmall, SizeMedium, SizeLarge:
		return true
	default:
		return false
	}
}

func ParseSize(s string) (Size, error) {
	size := Size(strings.ToLower(strings.TrimSpace(s)))
	if !size.IsValid() {
		return "", ErrInvalidSize
	}

	return size, nil
}

func AllSizes() []Size {
	return []Size{SizeSmall, SizeMedium, SizeLarge}
}

type ProductID struct {
	uuid.UUID
}

func NewProductID() ProductID {
	return ProductID{UUID: uuid.Must(uuid.NewV7())}
}

func ParseProductID(s string) (ProductID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return ProductID{}, ErrInvalidProductID
	}

	return ProductID{UUID: id}, nil
}

func (p ProductID) String() string {
	return p.UUID.String()
}

func (p ProductID) IsZero() bool {
	return p.UUID == uuid.Nil
}

// Product is a catalog record. It is passed by value and has no mutators,
// so a Product never changes after NewProduct returns it.
type Product struct {
	ID        ProductID
	Name      string
	Color     Color
	Size      Size
	Price     float64
	CreatedAt time.Time
}

func NewProduct(name string, color Color, size Size, price float64) (Product, error) {
	verrs := NewValidationErrors()

	name = strings.TrimSpace(name)
	if name == "" {
		verrs.Add("name", "name is required", "REQUIRED")
	}

	if !color.IsValid() {
		verrs.Add("color", ErrInvalidColor.Error(), "INVALID_ENUM")
	}

	if !size.IsValid() {
		verrs.Add("size", ErrInvalidSize.Error(), "INVALID_ENUM")
	}

	switch {
	case math.IsNaN(price) || math.IsInf(price, 0):
		verrs.Add("price", "price must be a finite number", "INVALID_NUMBER")
	case price < 0:
		verrs.Add("price", "price must not be negative", "OUT_OF_RANGE")
	}

	if verrs.HasErrors() {
		return Product{}, verrs
	}

	return Product{
		ID:        NewProductID(),
		Name:      name,
		Color:     color,
		Size:      size,
		Price:     price,
		CreatedAt: time.Now().UTC(),
	}, nil
}

type ProductFilter struct {
	Colors   []Color
	Sizes    []Size
	MinPrice *float64
	MaxPrice *float64
	Name     string
	Page     uint
	Size     uint
	Sort     []string
}

func DefaultProductFilter() ProductFilter {
	return ProductFilter{
		Page: defaultPage,
		Size: defaultSize,
	}
}

type Pagination struct {
	Page           uint
	Size           uint
	TotalItems     uint
	TotalPages     uint
	HasNext        bool
	HasPrevious    bool
	NextCursor     string
	PreviousCursor string
}

type ProductList struct {
	Products   []Product
	Pagination Pagination
	Filters    ProductFilter
}

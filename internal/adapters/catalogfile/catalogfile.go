// Package catalogfile reads product catalogs from YAML documents of the form
//
//	products:
//	  - name: Apple
//	    color: green
//	    size: small
//	    price: 10
package catalogfile

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/architeacher/catalog/internal/domain/model"
	"gopkg.in/yaml.v3"
)

var ErrMissingPrice = errors.New("price is required")

type (
	document struct {
		Products []entry `yaml:"products"`
	}

	entry struct {
		Name  string   `yaml:"name"`
		Color string   `yaml:"color"`
		Size  string   `yaml:"size"`
		Price *float64 `yaml:"price"`
	}
)

// Load reads the catalog stored at path.
func Load(path string) ([]model.Product, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening catalog file: %w", err)
	}
	defer file.Close()

	products, err := Parse(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return products, nil
}

// Parse decodes a catalog and returns its products in document order. Unknown
// keys are rejected so that a misspelled field does not silently default.
func Parse(r io.Reader) ([]model.Product, error) {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)

	var doc document
	if err := decoder.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return []model.Product{}, nil
		}

		return nil, fmt.Errorf("decoding catalog: %w", err)
	}

	products := make([]model.Product, 0, len(doc.Products))

	for index, item := range doc.Products {
		product, err := item.toProduct()
		if err != nil {
			return nil, fmt.Errorf("product %d: %w", index, err)
		}

		products = append(products, product)
	}

	return products, nil
}

func (e entry) toProduct() (model.Product, error) {
	color, err := model.ParseColor(e.Color)
	if err != nil {
		return model.Product{}, fmt.Errorf("color %q: %w", e.Color, err)
	}

	size, err := model.ParseSize(e.Size)
	if err != nil {
		return model.Product{}, fmt.Errorf("size %q: %w", e.Size, err)
	}

	if e.Price == nil {
		return model.Product{}, ErrMissingPrice
	}

	return model.NewProduct(e.Name, color, size, *e.Price)
}

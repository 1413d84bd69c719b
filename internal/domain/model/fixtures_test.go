package model_test

import (
	"testing"
	"time"

	"github.com/architeacher/catalog/internal/domain/model"
	"github.com/stretchr/testify/require"
)

var baseTime = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

func newProduct(t *testing.T, name string, color model.Color, size model.Size, price float64) model.Product {
	t.Helper()

	product, err := model.NewProduct(name, color, size, price)
	require.NoError(t, err)

	return product
}

// sampleCatalog returns Apple, Tree, House and Car, created one minute apart.
func sampleCatalog(t *testing.T) []model.Product {
	t.Helper()

	products := []model.Product{
		newProduct(t, "Apple", model.ColorGreen, model.SizeSmall, 10.0),
		newProduct(t, "Tree", model.ColorGreen, model.SizeLarge, 20.0),
		newProduct(t, "House", model.ColorBlue, model.SizeLarge, 100.0),
		newProduct(t, "Car", model.ColorRed, model.SizeLarge, 7000.0),
	}

	for index := range products {
		products[index].CreatedAt = baseTime.Add(time.Duration(index) * time.Minute)
	}

	return products
}

func names(products []model.Product) []string {
	result := make([]string, 0, len(products))
	for _, p := range products {
		result = append(result, p.Name)
	}

	return result
}

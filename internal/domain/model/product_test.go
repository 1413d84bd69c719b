package model_test

import (
	"math"
	"testing"

	"github.com/architeacher/catalog/internal/domain/model"
	"github.com/stretchr/testify/require"
)

func TestParseColor(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name          string
		input         string
		expectedColor model.Color
		expectError   bool
	}{
		{name: "parse red", input: "red", expectedColor: model.ColorRed},
		{name: "parse uppercase", input: "GREEN", expectedColor: model.ColorGreen},
		{name: "parse with whitespace", input: "  blue ", expectedColor: model.ColorBlue},
		{name: "parse invalid", input: "purple", expectError: true},
		{name: "parse empty", input: "", expectError: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			color, err := model.ParseColor(tc.input)

			if tc.expectError {
				require.ErrorIs(t, err, model.ErrInvalidColor)
				require.Empty(t, color)
			} else {
				require.NoError(t, err)
				require.Equal(t, tc.expectedColor, color)
			}
		})
	}
}

func TestParseSize(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name         string
		input        string
		expectedSize model.Size
		expectError  bool
	}{
		{name: "parse small", input: "small", expectedSize: model.SizeSmall},
		{name: "parse mixed case", input: "Medium", expectedSize: model.SizeMedium},
		{name: "parse large", input: "large", expectedSize: model.SizeLarge},
		{name: "parse invalid", input: "huge", expectError: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			size, err := model.ParseSize(tc.input)

			if tc.expectError {
				require.ErrorIs(t, err, model.ErrInvalidSize)
				require.Empty(t, size)
			} else {
				require.NoError(t, err)
				require.Equal(t, tc.expectedSize, size)
			}
		})
	}
}

func TestAllColorsAndSizes(t *testing.T) {
	t.Parallel()

	require.Len(t, model.AllColors(), 3)
	require.Len(t, model.AllSizes(), 3)

	for _, c := range model.AllColors() {
		require.True(t, c.IsValid())
	}

	for _, s := range model.AllSizes() {
		require.True(t, s.IsValid())
	}
}

func TestNewProduct(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name           string
		productName    string
		color          model.Color
		size           model.Size
		price          float64
		expectedFields []string
	}{
		{
			name:        "valid product",
			productName: "Apple",
			color:       model.ColorGreen,
			size:        model.SizeSmall,
			price:       10,
		},
		{
			name:        "zero price is valid",
			productName: "Sample",
			color:       model.ColorRed,
			size:        model.SizeMedium,
			price:       0,
		},
		{
			name:           "blank name",
			productName:    "   ",
			color:          model.ColorGreen,
			size:           model.SizeSmall,
			price:          10,
			expectedFields: []string{"name"},
		},
		{
			name:           "negative price",
			productName:    "Debt",
			color:          model.ColorGreen,
			size:           model.SizeSmall,
			price:          -1,
			expectedFields: []string{"price"},
		},
		{
			name:           "NaN price",
			productName:    "Ghost",
			color:          model.ColorGreen,
			size:           model.SizeSmall,
			price:          math.NaN(),
			expectedFields: []string{"price"},
		},
		{
			name:           "infinite price",
			productName:    "Galaxy",
			color:          model.ColorBlue,
			size:           model.SizeLarge,
			price:          math.Inf(1),
			expectedFields: []string{"price"},
		},
		{
			name:           "every field invalid",
			productName:    "",
			color:          model.Color("purple"),
			size:           model.Size("huge"),
			price:          -5,
			expectedFields: []string{"name", "color", "size", "price"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			product, err := model.NewProduct(tc.productName, tc.color, tc.size, tc.price)

			if len(tc.expectedFields) == 0 {
				require.NoError(t, err)
				require.False(t, product.ID.IsZero())
				require.Equal(t, tc.color, product.Color)
				require.Equal(t, tc.size, product.Size)
				require.InDelta(t, tc.price, product.Price, 0)
				require.False(t, product.CreatedAt.IsZero())

				return
			}

			var verrs *model.ValidationErrors
			require.ErrorAs(t, err, &verrs)

			fields := make([]string, 0, len(verrs.Errors))
			for _, e := range verrs.Errors {
				fields = append(fields, e.Field)
			}

			require.Equal(t, tc.expectedFields, fields)
		})
	}
}

func TestParseProductID(t *testing.T) {
	t.Parallel()

	id := model.NewProductID()

	parsed, err := model.ParseProductID(id.String())
	require.NoError(t, err)
	require.Equal(t, id, parsed)

	_, err = model.ParseProductID("not-a-uuid")
	require.ErrorIs(t, err, model.ErrInvalidProductID)
}

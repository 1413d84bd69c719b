package model

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

var (
	ErrInvalidCursor = errors.New("invalid cursor")
)

type (
	// CursorDirection indicates the pagination direction.
	CursorDirection string

	// Cursor represents a pagination cursor for keyset pagination.
	Cursor struct {
		Field     string          `json:"f"`
		Value     any             `json:"v"`
		ID        string          `json:"id"`
		Direction CursorDirection `json:"d"`
	}
)

const (
	CursorDirectionNext CursorDirection = "next"
	CursorDirectionPrev CursorDirection = "prev"
)

// EncodeCursor serializes a cursor to a URL-safe base64 string.
func EncodeCursor(c Cursor) (string, error) {
	data, err := json.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("marshal cursor: %w", err)
	}

	return base64.RawURLEncoding.EncodeToString(data), nil
}

// DecodeCursor deserializes a cursor from a base64 string.
func DecodeCursor(encoded string) (Cursor, error) {
	if encoded == "" {
		return Cursor{}, ErrInvalidCursor
	}

	data, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return Cursor{}, fmt.Errorf("%w: %v", ErrInvalidCursor, err)
	}

	var c Cursor
	if err := json.Unmarshal(data, &c); err != nil {
		return Cursor{}, fmt.Errorf("%w: %v", ErrInvalidCursor, err)
	}

	return c, nil
}

// NewCursorFromProduct creates a cursor from a product for the given sort field.
func NewCursorFromProduct(product Product, sortField string, direction CursorDirection) Cursor {
	var value any

	switch sortField {
	case "name", "-name":
		value = product.Name
	case "color", "-color":
		value = product.Color.String()
	case "size", "-size":
		value = product.Size.String()
	case "price", "-price":
		value = product.Price
	default:
		value = product.CreatedAt.Format(time.RFC3339Nano)
	}

	return Cursor{
		Field:     sortField,
		Value:     value,
		ID:        product.ID.String(),
		Direction: direction,
	}
}

// ParseCursorValue extracts the typed value from a cursor for comparison.
func (c *Cursor) ParseCursorValue() (any, error) {
	switch c.Field {
	case "name", "-name", "color", "-color", "size", "-size":
		if strVal, ok := c.Value.(string); ok {
			return strVal, nil
		}

		return nil, fmt.Errorf("%w: expected string", ErrInvalidCursor)
	case "price", "-price":
		if price, ok := c.Value.(float64); ok {
			return price, nil
		}

		return nil, fmt.Errorf("%w: expected number", ErrInvalidCursor)
	default:
		if strVal, ok := c.Value.(string); ok {
			parsed, err := time.Parse(time.RFC3339Nano, strVal)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrInvalidCursor, err)
			}

			return parsed, nil
		}

		return nil, fmt.Errorf("%w: expected time string", ErrInvalidCursor)
	}
}

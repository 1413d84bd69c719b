package idempotency

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name        string
		key         string
		expectedErr error
	}{
		{name: "uuid key", key: "550e8400-e29b-41d4-a716-446655440000"},
		{name: "underscores", key: "create_product_000001"},
		{name: "exactly minimum length", key: strings.Repeat("a", MinKeyLength)},
		{name: "exactly maximum length", key: strings.Repeat("a", MaxKeyLength)},
		{name: "too short", key: "short", expectedErr: ErrKeyTooShort},
		{name: "too long", key: strings.Repeat("a", MaxKeyLength+1), expectedErr: ErrKeyTooLong},
		{name: "spaces", key: "key with spaces 1234", expectedErr: ErrKeyInvalid},
		{name: "colon", key: "product:create:12345", expectedErr: ErrKeyInvalid},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			err := Validate(tc.key)
			if tc.expectedErr != nil {
				require.ErrorIs(t, err, tc.expectedErr)

				return
			}

			require.NoError(t, err)
		})
	}
}

func TestBuildCacheKey(t *testing.T) {
	t.Parallel()

	key := BuildCacheKey("POST", "/v1/products", "550e8400-e29b-41d4-a716-446655440000")

	require.True(t, strings.HasPrefix(key, KeyPrefix+":"))
	require.Len(t, key, len(KeyPrefix)+1+64)
	require.Equal(t, key, BuildCacheKey("POST", "/v1/products", "550e8400-e29b-41d4-a716-446655440000"))

	cases := []struct {
		name                 string
		method, path, client string
	}{
		{name: "other method", method: "PUT", path: "/v1/products", client: "550e8400-e29b-41d4-a716-446655440000"},
		{name: "other path", method: "POST", path: "/v2/products", client: "550e8400-e29b-41d4-a716-446655440000"},
		{name: "other key", method: "POST", path: "/v1/products", client: "650e8400-e29b-41d4-a716-446655440000"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			require.NotEqual(t, key, BuildCacheKey(tc.method, tc.path, tc.client))
		})
	}
}

func TestFingerprint(t *testing.T) {
	t.Parallel()

	body := []byte(`{"name":"Apple","color":"green","size":"small","price":10}`)

	require.Equal(t, Fingerprint(body), Fingerprint(append([]byte{}, body...)))
	require.NotEqual(t, Fingerprint(body), Fingerprint([]byte(`{"name":"Apple","color":"red","size":"small","price":10}`)))
	require.NotEmpty(t, Fingerprint(nil))
}

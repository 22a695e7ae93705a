package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIdempotencyStore_KeyNamespace(t *testing.T) {
	store := NewIdempotencyStore(nil, "storefront")
	assert.Equal(t, "storefront:idempotency:abc-123", store.key("abc-123"))
}

package organization

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCurrentId(t *testing.T) {
	t.Run("should return id stored in context", func(t *testing.T) {
		// given
		ctx := WithId(context.Background(), 42)

		// when
		id, err := CurrentId(ctx)

		// then
		assert.NoError(t, err)
		assert.Equal(t, 42, id)
	})

	t.Run("should fail when context has no organization", func(t *testing.T) {
		_, err := CurrentId(context.Background())

		assert.ErrorIs(t, err, ErrNoOrganization)
	})
}

func TestParseId(t *testing.T) {
	id, err := ParseId("17")
	assert.NoError(t, err)
	assert.Equal(t, 17, id)

	for _, value := range []string{"", "abc", "0", "-3"} {
		_, err := ParseId(value)
		assert.ErrorIs(t, err, ErrInvalidOrganizationId, value)
	}
}

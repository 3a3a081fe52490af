package trace

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContextRoundTrip(t *testing.T) {
	ctx := WithContext(context.Background(), "abc")
	assert.Equal(t, "abc", FromContext(ctx))
	assert.Equal(t, "", FromContext(context.Background()))
}

func TestFromHeaders(t *testing.T) {
	assert.Equal(t, "t1", FromHeaders(" t1 ", "r1"))
	assert.Equal(t, "r1", FromHeaders("", "r1"))
	assert.Len(t, FromHeaders("", ""), 32)
}

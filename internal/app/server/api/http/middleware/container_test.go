package middleware

import (
	"testing"

	"github.com/danielgtaylor/huma/v2"
	"github.com/stretchr/testify/assert"
)

func TestContainer_GetAllAndClear(t *testing.T) {
	var calls []string
	first := func(ctx huma.Context, next func(huma.Context)) { calls = append(calls, "first"); next(ctx) }
	second := func(ctx huma.Context, next func(huma.Context)) { calls = append(calls, "second"); next(ctx) }

	c := NewContainer()
	got := c.Add(first).Add(second).GetAllAndClear()

	assert.Len(t, got, 2)
	assert.Empty(t, c.GetAllAndClear())

	got[0](nil, func(huma.Context) {})
	got[1](nil, func(huma.Context) {})
	assert.Equal(t, []string{"first", "second"}, calls)
}

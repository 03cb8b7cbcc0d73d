package contextkeys

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContextKey_String(t *testing.T) {
	key := contextKey("testKey")
	assert.Equal(t, "vitamend context key testKey", key.String())
}

func TestContextKeys_Usage(t *testing.T) {
	ctx := context.Background()
	ctx = context.WithValue(ctx, RequestIDKey, "req-456")
	ctx = context.WithValue(ctx, ProviderKey, "mock")
	ctx = context.WithValue(ctx, OperationKey, "getDonations")
	ctx = context.WithValue(ctx, ComponentKey, "bridge")
	ctx = context.WithValue(ctx, SubjectKey, "admin")

	assert.Equal(t, "req-456", ctx.Value(RequestIDKey))
	assert.Equal(t, "mock", ctx.Value(ProviderKey))
	assert.Equal(t, "getDonations", ctx.Value(OperationKey))
	assert.Equal(t, "bridge", ctx.Value(ComponentKey))
	assert.Equal(t, "admin", ctx.Value(SubjectKey))
}

func TestContextKeys_Distinct(t *testing.T) {
	ctx := context.WithValue(context.Background(), ProviderKey, "supabase")
	assert.Nil(t, ctx.Value(OperationKey))
	assert.Nil(t, ctx.Value(contextKey("other")))
}

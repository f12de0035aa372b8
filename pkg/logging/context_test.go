package logging

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetLogFields_Empty(t *testing.T) {
	assert.Empty(t, GetLogFields(context.Background()))
}

func TestGetLogFields_Ordered(t *testing.T) {
	ctx := context.Background()
	ctx = WithServiceName(ctx, "ariproxy")
	ctx = WithCallContext(ctx, "cc-42")
	ctx = WithMessageType(ctx, "StasisStart")
	ctx = WithTraceID(ctx, "trace-1")

	assert.Equal(t, []interface{}{
		"trace_id", "trace-1",
		"message_type", "StasisStart",
		"call_context", "cc-42",
		"service_name", "ariproxy",
	}, GetLogFields(ctx))
}

func TestGetters_IgnoreForeignKeys(t *testing.T) {
	ctx := context.WithValue(context.Background(), "call_context", "plain-string-key")
	assert.Equal(t, "", GetCallContext(ctx))
}

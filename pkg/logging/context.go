package logging

import (
	"context"
)

type contextKey string

const (
	TraceIDKey     contextKey = "trace_id"
	CallContextKey contextKey = "call_context"
	MessageTypeKey contextKey = "message_type"
	ServiceNameKey contextKey = "service_name"
)

func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, TraceIDKey, traceID)
}

func WithCallContext(ctx context.Context, callContext string) context.Context {
	return context.WithValue(ctx, CallContextKey, callContext)
}

func WithMessageType(ctx context.Context, messageType string) context.Context {
	return context.WithValue(ctx, MessageTypeKey, messageType)
}

func WithServiceName(ctx context.Context, serviceName string) context.Context {
	return context.WithValue(ctx, ServiceNameKey, serviceName)
}

func getString(ctx context.Context, key contextKey) string {
	if v, ok := ctx.Value(key).(string); ok {
		return v
	}
	return ""
}

func GetTraceID(ctx context.Context) string {
	return getString(ctx, TraceIDKey)
}

func GetCallContext(ctx context.Context) string {
	return getString(ctx, CallContextKey)
}

func GetMessageType(ctx context.Context) string {
	return getString(ctx, MessageTypeKey)
}

func GetServiceName(ctx context.Context) string {
	return getString(ctx, ServiceNameKey)
}

// GetLogFields returns the context-scoped fields as alternating key/value pairs,
// ready to be prepended to a sugared logger call.
func GetLogFields(ctx context.Context) []interface{} {
	fields := make([]interface{}, 0, 8)

	if traceID := GetTraceID(ctx); traceID != "" {
		fields = append(fields, string(TraceIDKey), traceID)
	}

	if messageType := GetMessageType(ctx); messageType != "" {
		fields = append(fields, string(MessageTypeKey), messageType)
	}

	if callContext := GetCallContext(ctx); callContext != "" {
		fields = append(fields, string(CallContextKey), callContext)
	}

	if serviceName := GetServiceName(ctx); serviceName != "" {
		fields = append(fields, string(ServiceNameKey), serviceName)
	}

	return fields
}

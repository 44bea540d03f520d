// SPDX-License-Identifier: MIT

package telemetry

import (
	"go.opentelemetry.io/otel/attribute"
)

// Common attribute keys for consistent tracing across the application.
const (
	// HTTP attributes
	HTTPMethodKey     = "http.method"
	HTTPStatusCodeKey = "http.status_code"
	HTTPRouteKey      = "http.route"
	HTTPURLKey        = "http.url"

	// Upstream provider attributes
	ProviderNameKey      = "provider.name"
	ProviderOperationKey = "provider.operation"
	TitleIDKey           = "title.id"

	// Optimizer attributes
	OptimizeMustHaveKey       = "optimize.must_have"
	OptimizeNiceToHaveKey     = "optimize.nice_to_have"
	OptimizeConfigurationsKey = "optimize.configurations"

	// Error attributes
	ErrorKey     = "error"
	ErrorTypeKey = "error.type"
)

// HTTPAttributes creates common HTTP span attributes.
func HTTPAttributes(method, route, url string, statusCode int) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(HTTPMethodKey, method),
		attribute.String(HTTPRouteKey, route),
		attribute.String(HTTPURLKey, url),
		attribute.Int(HTTPStatusCodeKey, statusCode),
	}
}

// ProviderAttributes creates upstream-request span attributes.
func ProviderAttributes(name, operation, titleID string) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.String(ProviderNameKey, name),
		attribute.String(ProviderOperationKey, operation),
	}
	if titleID != "" {
		attrs = append(attrs, attribute.String(TitleIDKey, titleID))
	}
	return attrs
}

// OptimizeAttributes creates optimizer-run span attributes.
func OptimizeAttributes(mustHave, niceToHave, configurations int) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Int(OptimizeMustHaveKey, mustHave),
		attribute.Int(OptimizeNiceToHaveKey, niceToHave),
		attribute.Int(OptimizeConfigurationsKey, configurations),
	}
}

// ErrorAttributes creates error-related span attributes.
func ErrorAttributes(errorType string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Bool(ErrorKey, true),
		attribute.String(ErrorTypeKey, errorType),
	}
}

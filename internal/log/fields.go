// SPDX-License-Identifier: MIT

package log

// Canonical field name constants for structured logging.
const (
	// Identity fields
	FieldRequestID = "request_id"
	FieldComponent = "component"
	FieldEvent     = "event"

	// Domain fields
	FieldProvider = "provider"
	FieldTitleID  = "title_id"
	FieldQuery    = "query"
	FieldCacheKey = "cache_key"
	FieldService  = "service_id"
	FieldWeight   = "weight"

	// HTTP fields
	FieldMethod = "method"
	FieldPath   = "path"
	FieldStatus = "status"
)

// Package idgen generates context identifiers. Tests may replace NewFunc to
// obtain deterministic IDs; callers must treat identifiers as opaque strings.
package idgen

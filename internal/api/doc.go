// Package api defines wire-format types and converters for the IPC layer. It
// translates internal registry models into transport-friendly DTOs so clients
// can render documents without coupling to internal types.
//
// DTOs use camelCase JSON tags. Internal enums (registry.Status) are exposed
// as lowercase strings and timestamps use RFC3339 with milliseconds.
package api

// Package model defines the core data records shared across the clustering
// pipeline, persistence layer, and API.
package model

// SizeClass is the closed set of store footprint classes.
type SizeClass string

const (
	SizeSmall   SizeClass = "small"
	SizeMedium  SizeClass = "medium"
	SizeLarge   SizeClass = "large"
	SizeUnknown SizeClass = "unknown"
)

// ValidSize reports whether s is one of the known footprint classes.
func ValidSize(s SizeClass) bool {
	switch s {
	case SizeSmall, SizeMedium, SizeLarge:
		return true
	}
	return false
}

// Store is a geolocated retail store record. Stores are supplied by the
// caller (import, API body) and are only read by the clustering engine.
type Store struct {
	ID       string            `json:"id"`
	Name     string            `json:"name,omitempty"`
	Lat      float64           `json:"lat"`
	Lon      float64           `json:"lon"`
	Category string            `json:"category"`
	Size     SizeClass         `json:"size"`
	Tags     map[string]string `json:"tags,omitempty"`
}

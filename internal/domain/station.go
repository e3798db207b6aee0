package domain

import (
	"math"
	"time"
)

// Station is one gas station point of interest. The marker engine
// treats stations as immutable input: it reads coordinates and labels
// and never writes them back.
type Station struct {
	ID        string   `json:"id" db:"id"`
	Name      string   `json:"name" db:"name"`
	NameEn    *string  `json:"name_en,omitempty" db:"name_en"`
	Region    string   `json:"region" db:"region"`
	RegionEn  *string  `json:"region_en,omitempty" db:"region_en"`
	SubRegion *string  `json:"sub_region,omitempty" db:"sub_region"`
	Lat       float64  `json:"lat" db:"lat"`
	Lon       float64  `json:"lon" db:"lon"`
	FuelType  *string  `json:"fuel_type,omitempty" db:"fuel_type"`
	Note      *string  `json:"note,omitempty" db:"note"`

	// DistanceM is filled by proximity queries, meters from the
	// reference point. Zero when not computed.
	DistanceM *float64 `json:"distance_m,omitempty" db:"distance_m"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Position returns the station coordinate.
func (s *Station) Position() Point {
	return Point{Lat: s.Lat, Lon: s.Lon}
}

// HasValidCoordinates filters out rows with missing or corrupt
// geometry before they reach the renderer.
func (s *Station) HasValidCoordinates() bool {
	if math.IsNaN(s.Lat) || math.IsNaN(s.Lon) {
		return false
	}
	return s.Lat >= -90 && s.Lat <= 90 && s.Lon >= -180 && s.Lon <= 180
}

// MatchesRegion reports whether the station's region label equals the
// given city name in either supported language.
func (s *Station) MatchesRegion(name string) bool {
	if s.Region == name {
		return true
	}
	return s.RegionEn != nil && *s.RegionEn == name
}

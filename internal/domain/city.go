package domain

// City is a registry entry mapping a city name (Arabic and English)
// to its reference coordinate and default map zoom.
type City struct {
	ID     int64   `json:"id" db:"id"`
	Name   string  `json:"name" db:"name"`
	NameEn string  `json:"name_en" db:"name_en"`
	Lat    float64 `json:"lat" db:"lat"`
	Lon    float64 `json:"lon" db:"lon"`
	Zoom   float64 `json:"zoom" db:"zoom"`
}

// Center returns the city's reference coordinate.
func (c *City) Center() Point {
	return Point{Lat: c.Lat, Lon: c.Lon}
}

// Matches reports whether the given name equals the city name in
// either language.
func (c *City) Matches(name string) bool {
	return c.Name == name || c.NameEn == name
}

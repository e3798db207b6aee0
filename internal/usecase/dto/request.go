package dto

// NearbyStationsRequest is a radius search around a point.
type NearbyStationsRequest struct {
	Lat       float64  `json:"lat" query:"lat" validate:"min=-90,max=90"`
	Lon       float64  `json:"lon" query:"lon" validate:"min=-180,max=180"`
	RadiusKm  float64  `json:"radius_km" query:"radius_km" validate:"required,min=0.1,max=100"`
	FuelTypes []string `json:"fuel_types,omitempty" query:"fuel_types"`
	Limit     int      `json:"limit" query:"limit" validate:"omitempty,min=1,max=500"`
}

// StationsByCityRequest selects stations for a named city.
type StationsByCityRequest struct {
	City string `json:"city" query:"city" validate:"required,min=2"`
}

// ClustersRequest asks for the cluster view of a bounding box at a zoom level.
type ClustersRequest struct {
	MinLat float64 `json:"min_lat" query:"min_lat" validate:"min=-90,max=90"`
	MinLon float64 `json:"min_lon" query:"min_lon" validate:"min=-180,max=180"`
	MaxLat float64 `json:"max_lat" query:"max_lat" validate:"min=-90,max=90"`
	MaxLon float64 `json:"max_lon" query:"max_lon" validate:"min=-180,max=180"`
	Zoom   int     `json:"zoom" query:"zoom" validate:"min=0,max=22"`
}

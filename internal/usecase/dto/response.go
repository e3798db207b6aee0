package dto

import "github.com/fuelmap-service/internal/domain"

// StationResponse is the API shape of a single station.
type StationResponse struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	NameEn    *string  `json:"name_en,omitempty"`
	Region    string   `json:"region"`
	RegionEn  *string  `json:"region_en,omitempty"`
	SubRegion *string  `json:"sub_region,omitempty"`
	Lat       float64  `json:"lat"`
	Lon       float64  `json:"lon"`
	FuelType  *string  `json:"fuel_type,omitempty"`
	Note      *string  `json:"note,omitempty"`
	DistanceM *float64 `json:"distance_m,omitempty"`
}

// StationsResponse lists stations with the total before any cap.
type StationsResponse struct {
	Stations []StationResponse `json:"stations"`
	Total    int               `json:"total"`
}

// CityResponse is the API shape of a city.
type CityResponse struct {
	ID     int64   `json:"id"`
	Name   string  `json:"name"`
	NameEn string  `json:"name_en"`
	Lat    float64 `json:"lat"`
	Lon    float64 `json:"lon"`
	Zoom   float64 `json:"zoom"`
}

// CitiesResponse lists all known cities.
type CitiesResponse struct {
	Cities []CityResponse `json:"cities"`
	Total  int            `json:"total"`
}

// ClusterEntryResponse is one marker in a cluster view, either a
// single station or an aggregated cluster.
type ClusterEntryResponse struct {
	ID      string   `json:"id"`
	Kind    string   `json:"kind"`
	Lat     float64  `json:"lat"`
	Lon     float64  `json:"lon"`
	Count   int      `json:"count,omitempty"`
	Members []string `json:"members,omitempty"`
}

// ClustersResponse is the cluster view of a bounding box.
type ClustersResponse struct {
	Entries []ClusterEntryResponse `json:"entries"`
	Total   int                    `json:"total"`
}

// NewStationResponse converts a domain station.
func NewStationResponse(s *domain.Station) StationResponse {
	return StationResponse{
		ID:        s.ID,
		Name:      s.Name,
		NameEn:    s.NameEn,
		Region:    s.Region,
		RegionEn:  s.RegionEn,
		SubRegion: s.SubRegion,
		Lat:       s.Lat,
		Lon:       s.Lon,
		FuelType:  s.FuelType,
		Note:      s.Note,
		DistanceM: s.DistanceM,
	}
}

// NewStationsResponse converts a domain station slice.
func NewStationsResponse(stations []*domain.Station) *StationsResponse {
	out := make([]StationResponse, 0, len(stations))
	for _, s := range stations {
		out = append(out, NewStationResponse(s))
	}
	return &StationsResponse{Stations: out, Total: len(out)}
}

// NewCitiesResponse converts a domain city slice.
func NewCitiesResponse(cities []*domain.City) *CitiesResponse {
	out := make([]CityResponse, 0, len(cities))
	for _, c := range cities {
		out = append(out, CityResponse{
			ID:     c.ID,
			Name:   c.Name,
			NameEn: c.NameEn,
			Lat:    c.Lat,
			Lon:    c.Lon,
			Zoom:   c.Zoom,
		})
	}
	return &CitiesResponse{Cities: out, Total: len(out)}
}

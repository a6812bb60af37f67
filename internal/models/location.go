package models

import (
	"encoding/json"
)

const GeoJSONPoint = "Point"

// GeoPoint is a GeoJSON point as stored in MongoDB. Coordinates are
// ordered [longitude, latitude] so a 2dsphere index can serve $near.
type GeoPoint struct {
	Type        string    `json:"type" bson:"type"`
	Coordinates []float64 `json:"coordinates" bson:"coordinates"`
	Address     string    `json:"address" bson:"address"`
}

func NewGeoPoint(lat, lng float64, address string) GeoPoint {
	return GeoPoint{
		Type:        GeoJSONPoint,
		Coordinates: []float64{lng, lat},
		Address:     address,
	}
}

func (l GeoPoint) Latitude() float64 {
	if len(l.Coordinates) >= 2 {
		return l.Coordinates[1]
	}
	return 0
}

func (l GeoPoint) Longitude() float64 {
	if len(l.Coordinates) >= 1 {
		return l.Coordinates[0]
	}
	return 0
}

// MarshalJSON adds latitude and longitude next to the raw coordinates so
// clients do not have to know the GeoJSON axis order.
func (l GeoPoint) MarshalJSON() ([]byte, error) {
	type point GeoPoint
	coords := l.Coordinates
	if coords == nil {
		coords = []float64{}
	}
	p := point(l)
	p.Coordinates = coords
	return json.Marshal(struct {
		point
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
	}{
		point:     p,
		Latitude:  l.Latitude(),
		Longitude: l.Longitude(),
	})
}

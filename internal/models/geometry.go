package models

import (
	"database/sql/driver"
	"fmt"

	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/ewkb"
	"github.com/twpayne/go-geom/encoding/ewkbhex"
	"github.com/twpayne/go-geom/encoding/wkt"
)

const sridWGS84 = 4326

// GeoPoint maps a PostGIS GEOGRAPHY(Point, 4326) column.
type GeoPoint struct {
	Latitude  float64
	Longitude float64
}

func NewGeoPoint(g *Geolocation) *GeoPoint {
	if g == nil {
		return nil
	}
	return &GeoPoint{Latitude: g.Latitude, Longitude: g.Longitude}
}

// Value renders EWKT, for example "SRID=4326;POINT(-70.6483 -33.4569)".
func (p *GeoPoint) Value() (driver.Value, error) {
	if p == nil {
		return nil, nil
	}

	point := geom.NewPointFlat(geom.XY, []float64{p.Longitude, p.Latitude}).SetSRID(sridWGS84)
	wktString, err := wkt.Marshal(point)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal to WKT: %w", err)
	}

	return fmt.Sprintf("SRID=%d;%s", point.SRID(), wktString), nil
}

// Scan accepts binary EWKB or the hex text form postgres sends by default.
func (p *GeoPoint) Scan(value any) error {
	if value == nil {
		return nil
	}

	var (
		geometry geom.T
		err      error
	)
	switch v := value.(type) {
	case []byte:
		if len(v) > 0 && (v[0] == 0x00 || v[0] == 0x01) {
			geometry, err = ewkb.Unmarshal(v)
		} else {
			geometry, err = ewkbhex.Decode(string(v))
		}
	case string:
		geometry, err = ewkbhex.Decode(v)
	default:
		return fmt.Errorf("failed to scan GeoPoint: unexpected type %T", value)
	}
	if err != nil {
		return fmt.Errorf("failed to unmarshal EWKB: %w", err)
	}

	point, ok := geometry.(*geom.Point)
	if !ok {
		return fmt.Errorf("scanned geometry is not a Point")
	}

	p.Longitude = point.X()
	p.Latitude = point.Y()
	return nil
}

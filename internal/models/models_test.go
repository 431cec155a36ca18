package models

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/ewkb"
	"github.com/twpayne/go-geom/encoding/ewkbhex"
)

func TestSeverityRank(t *testing.T) {
	assert.Equal(t, 1, SeverityMinor.Rank())
	assert.Equal(t, 2, SeverityModerate.Rank())
	assert.Equal(t, 3, SeveritySevere.Rank())
	assert.Equal(t, 4, SeverityTotalLoss.Rank())
	assert.Equal(t, 0, Severity("catastrofico").Rank())
	assert.False(t, Severity("").Valid())
}

func TestFraudLevelAlerting(t *testing.T) {
	assert.False(t, FraudLow.Alerting())
	assert.False(t, FraudMedium.Alerting())
	assert.True(t, FraudHigh.Alerting())
	assert.True(t, FraudCritical.Alerting())
	assert.False(t, FraudLevel("severo").Valid())
}

func TestGeoPoint_Value(t *testing.T) {
	p := &GeoPoint{Latitude: -33.5, Longitude: -70.25}

	v, err := p.Value()
	require.NoError(t, err)
	ewkt, ok := v.(string)
	require.True(t, ok)
	assert.True(t, strings.HasPrefix(ewkt, "SRID=4326;POINT"))
	assert.Contains(t, ewkt, "-70.25 -33.5")

	var nilPoint *GeoPoint
	v, err = nilPoint.Value()
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestGeoPoint_Scan(t *testing.T) {
	point := geom.NewPointFlat(geom.XY, []float64{-70.25, -33.5}).SetSRID(4326)

	hexEncoded, err := ewkbhex.Encode(point, ewkb.NDR)
	require.NoError(t, err)

	var fromHex GeoPoint
	require.NoError(t, fromHex.Scan([]byte(hexEncoded)))
	assert.InDelta(t, -33.5, fromHex.Latitude, 1e-9)
	assert.InDelta(t, -70.25, fromHex.Longitude, 1e-9)

	binary, err := ewkb.Marshal(point, ewkb.NDR)
	require.NoError(t, err)

	var fromBinary GeoPoint
	require.NoError(t, fromBinary.Scan(binary))
	assert.InDelta(t, -70.25, fromBinary.Longitude, 1e-9)
}

func TestCostBreakdown_NilStoresEmptyArray(t *testing.T) {
	var c CostBreakdown
	v, err := c.Value()
	require.NoError(t, err)
	assert.Equal(t, []byte("[]"), v)

	require.NoError(t, c.Scan([]byte(`[{"parte":"capot","costo_min":10,"costo_max":20}]`)))
	assert.Equal(t, CostBreakdown{{Part: "capot", CostMin: 10, CostMax: 20}}, c)
}

func TestRawResponse_KeepsTextWhenUnparsed(t *testing.T) {
	raw := RawResponse{RawText: "no es json"}
	b, err := json.Marshal(raw)
	require.NoError(t, err)
	assert.JSONEq(t, `{"contenido":"no es json","parsed":null}`, string(b))
}

package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCatalogPlace_Validation(t *testing.T) {
	_, err := NewCatalogPlace("", "Lot A", 19.07, 72.87)
	assert.Error(t, err)

	_, err = NewCatalogPlace("lot-a", "Lot A", 95, 72.87)
	assert.Error(t, err)

	p, err := NewCatalogPlace("lot-a", "Lot A", 19.07, 72.87)
	require.NoError(t, err)
	assert.Equal(t, SourceCatalog, p.Source)
	assert.True(t, p.HasGeometry())
}

func TestPlace_SameAs(t *testing.T) {
	a, _ := NewCatalogPlace("lot-a", "Lot A", 19.07, 72.87)
	b, _ := NewCatalogPlace("lot-a", "Renamed", 19.08, 72.88)
	c, _ := NewCatalogPlace("lot-b", "Lot A", 19.07, 72.87)
	assert.True(t, a.SameAs(b), "catalog places compare by ID")
	assert.False(t, a.SameAs(c))

	s1 := NewSearchPlace("ref-1", "Cafe", 19.07, 72.87)
	s2 := NewSearchPlace("ref-2", "Cafe Two", 19.07, 72.87)
	s3 := NewSearchPlace("ref-1", "Cafe", 19.0701, 72.87)
	assert.True(t, s1.SameAs(s2), "search places compare by coordinates")
	assert.False(t, s1.SameAs(s3))
	assert.False(t, s1.SameAs(a))
}

func TestPlace_DisplayName(t *testing.T) {
	p, _ := NewCatalogPlace("lot-a", "", 19.07, 72.87)
	assert.Equal(t, "lot-a", p.DisplayName())

	p, _ = NewCatalogPlace("lot-a", "Lot A", 19.07, 72.87)
	assert.Equal(t, "Lot A", p.DisplayName())
}

func TestPlace_HasGeometry(t *testing.T) {
	assert.False(t, NewSearchPlace("", "nowhere", 0, 0).HasGeometry())
	assert.True(t, NewSearchPlace("", "Pune", 18.52, 73.85).HasGeometry())
}

func TestCoordinate_DistanceMeters(t *testing.T) {
	mumbai := Coordinate{Lat: 19.0760, Lng: 72.8777}
	pune := Coordinate{Lat: 18.5204, Lng: 73.8567}
	d := mumbai.DistanceMeters(pune)
	assert.InDelta(t, 120_000, d, 5_000)
	assert.Zero(t, mumbai.DistanceMeters(mumbai))
}

func TestCoordinate_Geohash(t *testing.T) {
	c := Coordinate{Lat: 19.0760, Lng: 72.8777}
	assert.Len(t, c.Geohash(9), 9)
	assert.Equal(t, c.Geohash(5), c.Geohash(9)[:5])
}

func TestParseTravelMode(t *testing.T) {
	tests := []struct {
		in      string
		want    TravelMode
		wantErr bool
	}{
		{"", TravelModeDriving, false},
		{"walking", TravelModeWalking, false},
		{" BICYCLING ", TravelModeBicycling, false},
		{"TRANSIT", TravelModeTransit, false},
		{"teleport", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseTravelMode(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDirections_StepInstructions(t *testing.T) {
	d := &Directions{Routes: []Route{
		{Legs: []Leg{
			{Steps: []Step{{Instruction: "Head north"}, {Instruction: "Turn left"}}},
			{Steps: []Step{{Instruction: "second leg"}}},
		}},
		{Legs: []Leg{{Steps: []Step{{Instruction: "alternative"}}}}},
	}}
	assert.Equal(t, []string{"Head north", "Turn left"}, d.StepInstructions())

	var empty *Directions
	assert.Nil(t, empty.StepInstructions())
	assert.Nil(t, (&Directions{}).StepInstructions())
}

func TestCoordinate_BoundingBox(t *testing.T) {
	c := Coordinate{Lat: 19.0760, Lng: 72.8777}
	sw, ne := c.BoundingBox(500)

	assert.InDelta(t, 500, c.DistanceMeters(Coordinate{Lat: ne.Lat, Lng: c.Lng}), 1)
	assert.InDelta(t, 500, c.DistanceMeters(Coordinate{Lat: sw.Lat, Lng: c.Lng}), 1)
	assert.InDelta(t, 500, c.DistanceMeters(Coordinate{Lat: c.Lat, Lng: ne.Lng}), 1)
	assert.InDelta(t, 500, c.DistanceMeters(Coordinate{Lat: c.Lat, Lng: sw.Lng}), 1)

	// Near the pole the box is clamped to valid bounds.
	sw, ne = Coordinate{Lat: 89.999, Lng: 179.99}.BoundingBox(5000)
	assert.True(t, sw.Valid())
	assert.True(t, ne.Valid())
	assert.Equal(t, 90.0, ne.Lat)
}

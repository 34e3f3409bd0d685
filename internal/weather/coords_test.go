package weather

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractCoordinates_QueryForm(t *testing.T) {
	coords := ExtractCoordinates("https://maps.google.com/?q=45.5231,-122.6765")
	require.NotNil(t, coords)
	assert.InDelta(t, 45.5231, coords.Lat, 0.0001)
	assert.InDelta(t, -122.6765, coords.Lng, 0.0001)
}

func TestExtractCoordinates_AmpersandQueryForm(t *testing.T) {
	coords := ExtractCoordinates("https://maps.google.com/maps?hl=en&q=37.7749,-122.4194")
	require.NotNil(t, coords)
	assert.InDelta(t, 37.7749, coords.Lat, 0.0001)
	assert.InDelta(t, -122.4194, coords.Lng, 0.0001)
}

func TestExtractCoordinates_AtForm(t *testing.T) {
	coords := ExtractCoordinates("https://www.google.com/maps/@45.5231,-122.6765,15z")
	require.NotNil(t, coords)
	assert.InDelta(t, 45.5231, coords.Lat, 0.0001)
	assert.InDelta(t, -122.6765, coords.Lng, 0.0001)
}

func TestExtractCoordinates_PlaceForm(t *testing.T) {
	coords := ExtractCoordinates("https://www.google.com/maps/place/-33.8688,151.2093")
	require.NotNil(t, coords)
	assert.InDelta(t, -33.8688, coords.Lat, 0.0001)
	assert.InDelta(t, 151.2093, coords.Lng, 0.0001)
}

func TestExtractCoordinates_IntegerCoordinates(t *testing.T) {
	coords := ExtractCoordinates("https://maps.google.com/?q=45,-122")
	require.NotNil(t, coords)
	assert.InDelta(t, 45.0, coords.Lat, 0.0001)
	assert.InDelta(t, -122.0, coords.Lng, 0.0001)
}

func TestExtractCoordinates_NoMatch(t *testing.T) {
	assert.Nil(t, ExtractCoordinates("https://maps.google.com/?cid=12345"))
	assert.Nil(t, ExtractCoordinates(""))
	assert.Nil(t, ExtractCoordinates("not a url"))
}

func TestExtractCoordinates_OutOfRange(t *testing.T) {
	assert.Nil(t, ExtractCoordinates("https://maps.google.com/?q=91.0,-122.68"))
	assert.Nil(t, ExtractCoordinates("https://maps.google.com/?q=45.52,-181.0"))
}

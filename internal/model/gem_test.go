package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCoordinatesValid(t *testing.T) {
	tests := []struct {
		name string
		c    Coordinates
		want bool
	}{
		{"origin", Coordinates{0, 0}, true},
		{"portland", Coordinates{45.5231, -122.6765}, true},
		{"poles", Coordinates{90, 180}, true},
		{"lat too high", Coordinates{90.1, 0}, false},
		{"lat too low", Coordinates{-90.1, 0}, false},
		{"lng too high", Coordinates{0, 180.1}, false},
		{"lng too low", Coordinates{0, -180.1}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.c.Valid())
		})
	}
}

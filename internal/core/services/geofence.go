package services

import (
	"fmt"
	"math"

	"SahayCare/internal/core/domain"

	"github.com/rs/zerolog"
)

const earthRadiusMeters = 6371000.0

// GeofenceValidator gates visit start/completion on the distance between the
// officer's reported location and the citizen's registered location.
// Enforcement is a configuration flag, not an environment-name comparison:
// deployments without reliable GPS run with enforce=false.
type GeofenceValidator struct {
	enforce      bool
	radiusMeters float64
	log          zerolog.Logger
}

// NewGeofenceValidator creates the validator. radiusMeters <= 0 falls back to
// the 25 m default.
func NewGeofenceValidator(enforce bool, radiusMeters float64, baseLogger *zerolog.Logger) *GeofenceValidator {
	if radiusMeters <= 0 {
		radiusMeters = 25
	}
	return &GeofenceValidator{
		enforce:      enforce,
		radiusMeters: radiusMeters,
		log:          baseLogger.With().Str("component", "geofence").Logger(),
	}
}

// Check validates the officer's position against the citizen's registered
// coordinate. Missing coordinates on either side skip the check entirely:
// that is the escape hatch for devices without GPS.
func (g *GeofenceValidator) Check(citizenLat, citizenLon, officerLat, officerLon *float64) error {
	if !g.enforce {
		return nil
	}
	if citizenLat == nil || citizenLon == nil || officerLat == nil || officerLon == nil {
		g.log.Debug().Msg("Geofence check skipped: missing coordinates")
		return nil
	}

	distance := Haversine(*citizenLat, *citizenLon, *officerLat, *officerLon)
	if distance > g.radiusMeters {
		g.log.Warn().
			Float64("distance_m", distance).
			Float64("radius_m", g.radiusMeters).
			Msg("Geofence check failed")
		return &domain.ValidationError{
			Reason: fmt.Sprintf("officer is %.1fm from the citizen's registered location (limit %.0fm)", distance, g.radiusMeters),
		}
	}
	return nil
}

// Haversine returns the great-circle distance in meters between two
// latitude/longitude pairs.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := toRadians(lat2 - lat1)
	dLon := toRadians(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(lat1))*math.Cos(toRadians(lat2))*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusMeters * c
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}

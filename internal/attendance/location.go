package attendance

import (
	"fmt"
	"math"
	"strconv"
)

// Expected operating region, a bounding box approximating Peru.
const (
	regionLatMin = -18.5
	regionLatMax = -0.1
	regionLngMin = -81.3
	regionLngMax = -68.7
)

// earthRadiusMeters is the mean Earth radius used by the Haversine formula.
const earthRadiusMeters = 6371000

// maxDriftMeters is how far a scan may be from the user's last recorded
// position before an advisory is attached.
const maxDriftMeters = 100

// Advisory messages shown to the scanner UI. Location issues never block a
// registration; the first matching rule wins and messages are not combined.
const (
	msgCoordsInvalid = "Las coordenadas de ubicación no son válidas."
	msgOutsideRegion = "Advertencia: Las coordenadas están fuera del rango esperado para Perú. Verifica tu ubicación."
)

// CheckCoordinates applies the range and regional-bound rules to a parsed
// point. It returns the advisory message, or "" when the point passes both.
func CheckCoordinates(lat, lng float64) string {
	if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return msgCoordsInvalid
	}
	if lat < regionLatMin || lat > regionLatMax || lng < regionLngMin || lng > regionLngMax {
		return msgOutsideRegion
	}
	return ""
}

// DriftWarning compares the current point against the previous one and
// returns an advisory when they are more than maxDriftMeters apart.
func DriftWarning(prevLat, prevLng, lat, lng float64) string {
	distance := Haversine(prevLat, prevLng, lat, lng)
	if distance > maxDriftMeters {
		return fmt.Sprintf("Advertencia: La ubicación actual está a %d metros de la ubicación anterior. Verifica que estés en el lugar correcto.", int(math.Round(distance)))
	}
	return ""
}

// Haversine returns the great-circle distance in meters between two points
// given in decimal degrees.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	latDelta := degToRad(lat2 - lat1)
	lonDelta := degToRad(lon2 - lon1)

	a := math.Sin(latDelta/2)*math.Sin(latDelta/2) +
		math.Cos(degToRad(lat1))*math.Cos(degToRad(lat2))*
			math.Sin(lonDelta/2)*math.Sin(lonDelta/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusMeters * c
}

func degToRad(deg float64) float64 {
	return deg * math.Pi / 180
}

// parseCoord mirrors a permissive cast: malformed input becomes 0 rather than
// an error, matching how submitted coordinate strings have always been read.
func parseCoord(s string) float64 {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f
}

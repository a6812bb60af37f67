package utils

import (
	"strconv"
)

// CoordinateKey renders "<lng>,<lat>" with the shortest exact decimal form,
// so identical coordinates always produce identical keys.
func CoordinateKey(lng, lat float64) string {
	return strconv.FormatFloat(lng, 'f', -1, 64) + "," + strconv.FormatFloat(lat, 'f', -1, 64)
}

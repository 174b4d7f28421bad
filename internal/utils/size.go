package utils

import (
	"fmt"
	"math"
)

var sizeUnits = []string{"B", "KB", "MB", "GB", "TB", "PB", "EB", "ZB", "YB"}

// ConvertSize renders a byte count in a human-readable unit, rounded to two
// decimals. Zero renders as the literal "0B".
func ConvertSize(sizeBytes int64) string {
	if sizeBytes == 0 {
		return "0B"
	}

	i := int(math.Floor(math.Log(float64(sizeBytes)) / math.Log(1024)))
	if i >= len(sizeUnits) {
		i = len(sizeUnits) - 1
	}

	p := math.Pow(1024, float64(i))
	s := math.Round(float64(sizeBytes)/p*100) / 100
	return fmt.Sprintf("%g %s", s, sizeUnits[i])
}

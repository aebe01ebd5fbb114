package types

import (
	"math"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// ParseRefreshRate converts a refresh rate token (e.g. "60.000004") to frames per second.
func ParseRefreshRate(tok string) (float64, error) {
	fps, err := strconv.ParseFloat(strings.TrimSpace(tok), 64)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid refresh rate %q", tok)
	}
	if fps <= 0 || math.IsNaN(fps) || math.IsInf(fps, 0) {
		return 0, errors.Errorf("refresh rate must be positive, got %v", fps)
	}
	return fps, nil
}

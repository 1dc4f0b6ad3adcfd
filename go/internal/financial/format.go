package financial

import (
	"math"

	"github.com/dustin/go-humanize"
)

// FormatCurrency renders v as Brazilian reais, e.g. "R$ 1.234,56" or "-R$ 10,00".
func FormatCurrency(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		v = 0
	}
	prefix := "R$ "
	if v < 0 {
		prefix = "-R$ "
		v = -v
	}
	return prefix + humanize.FormatFloat("#.###,##", v)
}

package stats

import (
	"math"
	"math/big"
	"strconv"

	"github.com/kursadbilgin/dispatch-console/internal/domain"
)

// zeroValue is what every rate or average reports when there is nothing to
// divide by.
const zeroValue = "0"

// round1 is the numeric value of format1(v), so tiers agree with the
// rendered rate.
func round1(v float64) float64 {
	r, err := strconv.ParseFloat(format1(v), 64)
	if err != nil {
		return v
	}
	return r
}

// format1 renders v with one decimal like JavaScript's toFixed(1): the exact
// binary value is rounded to the nearest tenth and only exact ties go away
// from zero. 1.15 is stored below the tie and renders "1.1"; 1.25 is an exact
// tie and renders "1.3".
func format1(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return strconv.FormatFloat(v, 'f', 1, 64)
	}
	if tenths, ok := tieTenths(v); ok {
		return formatTenths(tenths, v < 0)
	}
	return strconv.FormatFloat(v, 'f', 1, 64)
}

// tieTenths reports whether |v|*10 lies exactly halfway between two integers
// and, if so, returns the integer above it.
func tieTenths(v float64) (*big.Int, bool) {
	scaled := new(big.Float).SetPrec(128).SetFloat64(math.Abs(v))
	scaled.Mul(scaled, big.NewFloat(10))

	whole, _ := scaled.Int(nil)
	frac := new(big.Float).SetPrec(128).Sub(scaled, new(big.Float).SetInt(whole))
	if frac.Cmp(big.NewFloat(0.5)) != 0 {
		return nil, false
	}
	return whole.Add(whole, big.NewInt(1)), true
}

func formatTenths(tenths *big.Int, negative bool) string {
	digits := tenths.String()
	if len(digits) < 2 {
		digits = "0" + digits
	}

	out := digits[:len(digits)-1] + "." + digits[len(digits)-1:]
	if negative {
		out = "-" + out
	}
	return out
}

func percent(part int, total int) string {
	if total <= 0 {
		return zeroValue
	}
	return format1(float64(part) / float64(total) * 100)
}

func average(sum int, total int) string {
	if total <= 0 {
		return zeroValue
	}
	return format1(float64(sum) / float64(total))
}

// accumulator holds the running counters for one group key.
type accumulator struct {
	total     int
	delivered int
	failed    int
	pending   int
	attempts  int
}

func (a *accumulator) add(n *domain.NotificationRecord) {
	a.total++
	a.attempts += n.Attempts
	switch n.Status {
	case domain.StatusDelivered:
		a.delivered++
	case domain.StatusFailed:
		a.failed++
	case domain.StatusPending:
		a.pending++
	}
}

// orderedGroups accumulates records under a string key, keeping keys in the
// order they were first seen.
type orderedGroups struct {
	index map[string]int
	keys  []string
	accs  []accumulator
}

func groupRecords(records []domain.NotificationRecord, keyOf func(*domain.NotificationRecord) string) *orderedGroups {
	g := &orderedGroups{index: make(map[string]int)}
	for i := range records {
		rec := &records[i]
		key := keyOf(rec)
		pos, ok := g.index[key]
		if !ok {
			pos = len(g.keys)
			g.index[key] = pos
			g.keys = append(g.keys, key)
			g.accs = append(g.accs, accumulator{})
		}
		g.accs[pos].add(rec)
	}
	return g
}

package solver

import (
	"fmt"
	"math"
	"strconv"
)

var siPrefixes = []struct {
	exp    int
	symbol string
}{
	{9, "G"},
	{6, "M"},
	{3, "k"},
	{0, ""},
	{-3, "m"},
	{-6, "µ"},
	{-9, "n"},
	{-12, "p"},
}

// FormatMetric renders value with an SI prefix and unit. Precision shrinks as
// the scaled mantissa grows: two decimals below 10, one below 100, none
// above.
func FormatMetric(value float64, unit string) string {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return "n/a " + unit
	}
	if value == 0 {
		return "0 " + unit
	}

	abs := math.Abs(value)
	pi := len(siPrefixes) - 1
	for i, cand := range siPrefixes {
		if abs >= math.Pow10(cand.exp) {
			pi = i
			break
		}
	}

	for {
		p := siPrefixes[pi]
		text := mantissa(value / math.Pow10(p.exp))
		// 999.9 rounds to "1000"; step up to the next prefix instead.
		if r, _ := strconv.ParseFloat(text, 64); math.Abs(r) >= 1000 && pi > 0 {
			pi--
			continue
		}
		return text + " " + p.symbol + unit
	}
}

// mantissa formats m with the precision its rounded magnitude calls for.
func mantissa(m float64) string {
	prec := 2
	for {
		text := strconv.FormatFloat(m, 'f', prec, 64)
		r, _ := strconv.ParseFloat(text, 64)
		want := 2
		switch ar := math.Abs(r); {
		case ar >= 100:
			want = 0
		case ar >= 10:
			want = 1
		}
		if want >= prec {
			return text
		}
		prec = want
	}
}

func FormatVoltage(v float64) string    { return FormatMetric(v, "V") }
func FormatCurrent(v float64) string    { return FormatMetric(v, "A") }
func FormatResistance(v float64) string { return FormatMetric(v, "Ω") }
func FormatPower(v float64) string      { return FormatMetric(v, "W") }
func FormatImpedance(v float64) string  { return FormatMetric(v, "Ω") }

// FormatPhase renders an angle in degrees.
func FormatPhase(deg float64) string {
	return fmt.Sprintf("%.1f°", deg)
}

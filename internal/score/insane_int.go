// Package score implements InsaneInt, the score type clients report.
//
// Balatro scores outgrow float64 late in a run, so clients send them as
// formatted strings such as "123456", "1.5e308" or "ee1.2e15". An InsaneInt
// keeps three parts: the number of leading "e" towers, a coefficient and a
// base-10 exponent. Only non-negative values are meaningful.
package score

import (
	"math"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
)

// smallLimit is the magnitude below which a value is kept as a plain
// coefficient with a zero exponent so integers round-trip exactly.
const smallLimit = 1e15

// InsaneInt is an immutable arbitrary-magnitude score value.
type InsaneInt struct {
	eCount      int
	coefficient float64
	exponent    int64
}

// Zero is the zero score.
var Zero = InsaneInt{}

// New builds an InsaneInt from its three parts.
func New(eCount int, coefficient float64, exponent int64) InsaneInt {
	if eCount < 0 {
		eCount = 0
	}
	return normalize(InsaneInt{eCount: eCount, coefficient: coefficient, exponent: exponent})
}

// FromInt is a convenience for small integer scores.
func FromInt(v int64) InsaneInt {
	return New(0, float64(v), 0)
}

// Parse reads a formatted score. Leading "e" characters are towers; the
// remainder is a decimal number with an optional e-exponent that may exceed
// the float64 range.
func Parse(s string) (InsaneInt, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Zero, eris.New("empty score")
	}

	eCount := 0
	for eCount < len(s) && (s[eCount] == 'e' || s[eCount] == 'E') {
		eCount++
	}
	body := s[eCount:]
	if body == "" {
		return Zero, eris.Errorf("score %q has no digits", s)
	}

	mantissa, expPart, hasExp := strings.Cut(strings.ToLower(body), "e")
	coefficient, err := strconv.ParseFloat(mantissa, 64)
	if err != nil || math.IsNaN(coefficient) || math.IsInf(coefficient, 0) {
		return Zero, eris.Errorf("invalid score %q", s)
	}

	var exponent int64
	if hasExp {
		exponent, err = strconv.ParseInt(expPart, 10, 64)
		if err != nil {
			return Zero, eris.Errorf("invalid score exponent %q", s)
		}
	}
	return New(eCount, coefficient, exponent), nil
}

// MustParse is Parse for constants and tests.
func MustParse(s string) InsaneInt {
	v, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return v
}

func normalize(v InsaneInt) InsaneInt {
	if v.coefficient == 0 {
		return InsaneInt{eCount: v.eCount}
	}

	// fold the exponent into the coefficient while it stays small
	if v.exponent > 0 && v.exponent < 16 {
		folded := v.coefficient * math.Pow10(int(v.exponent))
		if math.Abs(folded) < smallLimit {
			return InsaneInt{eCount: v.eCount, coefficient: folded}
		}
	}
	if v.exponent == 0 && math.Abs(v.coefficient) < smallLimit {
		return v
	}

	shift := int64(math.Floor(math.Log10(math.Abs(v.coefficient))))
	v.coefficient /= math.Pow10(int(shift))
	v.exponent += shift
	// Log10 can be off by one at exact powers of ten
	if math.Abs(v.coefficient) >= 10 {
		v.coefficient /= 10
		v.exponent++
	}
	if v.exponent < 16 && v.exponent >= 0 {
		folded := v.coefficient * math.Pow10(int(v.exponent))
		if math.Abs(folded) < smallLimit {
			return InsaneInt{eCount: v.eCount, coefficient: folded}
		}
	}
	return v
}

// scientific returns the value as coefficient in [1,10) and exponent.
func (v InsaneInt) scientific() (float64, int64) {
	if v.coefficient == 0 {
		return 0, 0
	}
	if v.exponent != 0 {
		return v.coefficient, v.exponent
	}
	shift := int64(math.Floor(math.Log10(math.Abs(v.coefficient))))
	c := v.coefficient / math.Pow10(int(shift))
	if c >= 10 {
		c /= 10
		shift++
	}
	return c, v.exponent + shift
}

// Add returns v + o. Across different tower heights the taller value wins
// outright since the smaller operand is below float precision.
func (v InsaneInt) Add(o InsaneInt) InsaneInt {
	if v.eCount != o.eCount {
		if v.eCount > o.eCount {
			return v
		}
		return o
	}
	if v.eCount > 0 {
		if v.GreaterThan(o) {
			return v
		}
		return o
	}
	if v.exponent == 0 && o.exponent == 0 {
		return normalize(InsaneInt{coefficient: v.coefficient + o.coefficient})
	}

	vc, ve := v.scientific()
	oc, oe := o.scientific()
	if vc == 0 {
		return o
	}
	if oc == 0 {
		return v
	}
	if ve < oe {
		vc, ve, oc, oe = oc, oe, vc, ve
	}
	if ve-oe > 17 {
		return normalize(InsaneInt{coefficient: vc, exponent: ve})
	}
	return normalize(InsaneInt{coefficient: vc + oc/math.Pow10(int(ve-oe)), exponent: ve})
}

// Compare returns -1, 0 or 1.
func (v InsaneInt) Compare(o InsaneInt) int {
	if v.eCount != o.eCount {
		if v.eCount > o.eCount {
			return 1
		}
		return -1
	}
	if v.exponent == 0 && o.exponent == 0 {
		return cmpFloat(v.coefficient, o.coefficient)
	}

	vc, ve := v.scientific()
	oc, oe := o.scientific()
	switch {
	case vc == 0 || oc == 0:
		return cmpFloat(vc, oc)
	case ve != oe:
		if ve > oe {
			return 1
		}
		return -1
	}
	if approxEqual(vc, oc) {
		return 0
	}
	return cmpFloat(vc, oc)
}

// GreaterThan reports v > o.
func (v InsaneInt) GreaterThan(o InsaneInt) bool { return v.Compare(o) > 0 }

// EqualTo reports v == o.
func (v InsaneInt) EqualTo(o InsaneInt) bool { return v.Compare(o) == 0 }

// IsZero reports whether the value is zero.
func (v InsaneInt) IsZero() bool { return v.eCount == 0 && v.coefficient == 0 }

// String formats the value in the same notation Parse accepts.
func (v InsaneInt) String() string {
	prefix := strings.Repeat("e", v.eCount)
	if v.exponent == 0 {
		return prefix + strconv.FormatFloat(v.coefficient, 'f', -1, 64)
	}
	c := math.Round(v.coefficient*1e12) / 1e12
	return prefix + strconv.FormatFloat(c, 'f', -1, 64) + "e" + strconv.FormatInt(v.exponent, 10)
}

// MarshalText lets InsaneInt travel as a JSON string.
func (v InsaneInt) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

// UnmarshalText parses the textual form.
func (v *InsaneInt) UnmarshalText(b []byte) error {
	parsed, err := Parse(string(b))
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

func cmpFloat(a, b float64) int {
	switch {
	case a > b:
		return 1
	case a < b:
		return -1
	}
	return 0
}

func approxEqual(a, b float64) bool {
	return math.Abs(a-b) <= 1e-12*math.Max(math.Abs(a), math.Abs(b))
}

package core

import (
	"strconv"
	"strings"

	"github.com/signalsfoundry/orbit-risk/model"
)

// TLELineLength is the fixed width of a valid two-line element set line.
// Shorter lines cannot be decoded and mark the record as unusable.
const TLELineLength = 69

// Column ranges on element line 2, 1-indexed and inclusive.
const (
	inclinationStartCol = 9
	inclinationEndCol   = 16
	meanMotionStartCol  = 53
	meanMotionEndCol    = 63
)

// ParseField extracts the 1-indexed inclusive column range [start, end] from
// a fixed-width element line and interprets it as a real number.
//
// The TLE format leans on several implicit-value conventions, handled here
// in priority order:
//
//  1. a blank field decodes to 0.0 (absent, not an error)
//  2. a sign immediately followed by a decimal point gets the implied
//     leading zero inserted ("-.1234" -> -0.1234)
//  3. a bare leading decimal point gets a leading zero (".1234" -> 0.1234)
//  4. an embedded sign after the first character marks the assumed-decimal,
//     trailing-signed-exponent encoding used for drag terms
//     ("12345-6" -> 0.12345e-6); a leading sign applies to the mantissa
//  5. anything else parses as a plain decimal
//
// Malformed fields, including out-of-range column indices, decode to 0.0
// rather than failing so that one bad field never aborts a batch.
func ParseField(line string, start, end int) float64 {
	if start < 1 || end < start || start > len(line) {
		return 0
	}
	if end > len(line) {
		end = len(line)
	}
	raw := strings.TrimSpace(line[start-1 : end])
	if raw == "" {
		return 0
	}

	if len(raw) > 1 && (raw[0] == '-' || raw[0] == '+') && raw[1] == '.' {
		return parseOrZero(string(raw[0]) + "0" + raw[1:])
	}
	if raw[0] == '.' {
		return parseOrZero("0" + raw)
	}
	if i := strings.IndexAny(raw[1:], "+-"); i >= 0 {
		return parseAssumedExponent(raw, i+1)
	}
	return parseOrZero(raw)
}

// parseAssumedExponent decodes the drag-term encoding: the trailing signed
// integer starting at signIdx is a power-of-ten exponent and the digits
// before it are a mantissa with an implied leading "0.". The token is
// normalised to ordinary scientific notation and parsed once, so the result
// is bit-for-bit identical to parsing the written-out decimal.
func parseAssumedExponent(tok string, signIdx int) float64 {
	mantissa := tok[:signIdx]
	exponent := tok[signIdx:]

	sign := ""
	if mantissa[0] == '-' || mantissa[0] == '+' {
		sign = string(mantissa[0])
		mantissa = mantissa[1:]
	}
	if mantissa == "" {
		return 0
	}
	return parseOrZero(sign + "0." + mantissa + "e" + exponent)
}

func parseOrZero(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

// Elements are the orbital parameters decoded from one catalog record.
// They are recomputed per decode call and never persisted.
type Elements struct {
	MeanMotion  float64 // revolutions per day
	Inclination float64 // degrees, 0-180
}

// ElementsFromRecord decodes mean motion and inclination from a record's
// second element line.
//
// The returned flag is false when the line is shorter than the fixed format
// or when either field decodes to exactly zero. A zero mean motion or
// inclination is not a physically meaningful orbit in this catalog and
// signals a decode failure or a missing field; the flag keeps that
// exclusion decision out-of-band instead of overloading the numeric values.
func ElementsFromRecord(rec model.Record) (Elements, bool) {
	if len(rec.Line2) < TLELineLength {
		return Elements{}, false
	}
	el := Elements{
		MeanMotion:  ParseField(rec.Line2, meanMotionStartCol, meanMotionEndCol),
		Inclination: ParseField(rec.Line2, inclinationStartCol, inclinationEndCol),
	}
	if el.MeanMotion == 0 || el.Inclination == 0 {
		return el, false
	}
	return el, true
}

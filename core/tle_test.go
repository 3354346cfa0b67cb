package core

import (
	"math"
	"testing"

	"github.com/signalsfoundry/orbit-risk/model"
)

// ISS element set, used across the decoder tests as a known-good fixture.
const (
	issLine1 = "1 25544U 98067A   21275.59097222  .00000204  00000-0  10270-4 0  9990"
	issLine2 = "2 25544  51.6459 115.9059 0001817  61.3028  35.9198 15.49370953257760"
)

func TestParseField_PlainDecimal(t *testing.T) {
	if got := ParseField(" 14.2719", 1, 8); got != 14.2719 {
		t.Errorf("ParseField(%q, 1, 8) = %v, want 14.2719", " 14.2719", got)
	}
}

func TestParseField_ImplicitDecimalWithSign(t *testing.T) {
	if got := ParseField("-.1234", 1, 6); got != -0.1234 {
		t.Errorf("ParseField(-.1234) = %v, want -0.1234", got)
	}
	if got := ParseField("+.1234", 1, 6); got != 0.1234 {
		t.Errorf("ParseField(+.1234) = %v, want 0.1234", got)
	}
}

func TestParseField_ImplicitDecimalBare(t *testing.T) {
	if got := ParseField(".00000204", 1, 9); got != 0.00000204 {
		t.Errorf("ParseField(.00000204) = %v, want 0.00000204", got)
	}
}

func TestParseField_AssumedExponent(t *testing.T) {
	cases := []struct {
		raw  string
		want float64
	}{
		{"12345-6", 0.12345e-6},
		{"-12345-6", -0.12345e-6},
		{"+12345-6", 0.12345e-6},
		{"12345+2", 0.12345e+2},
		{"5-4", 0.5e-4},
		{"10270-4", 0.10270e-4}, // drag term from the ISS fixture
		{"00000-0", 0.0},
		{"00000+0", 0.0},
	}
	for _, c := range cases {
		if got := ParseField(c.raw, 1, len(c.raw)); got != c.want {
			t.Errorf("ParseField(%q) = %v, want %v", c.raw, got, c.want)
		}
	}
}

func TestParseField_BlankField(t *testing.T) {
	if got := ParseField("        ", 1, 8); got != 0 {
		t.Errorf("blank field = %v, want 0", got)
	}
	if got := ParseField("", 1, 8); got != 0 {
		t.Errorf("empty line = %v, want 0", got)
	}
}

func TestParseField_MalformedDegradesToZero(t *testing.T) {
	cases := []string{"abc", "1.2.3", "--5", "1e", "-"}
	for _, raw := range cases {
		if got := ParseField(raw, 1, len(raw)); got != 0 {
			t.Errorf("ParseField(%q) = %v, want 0", raw, got)
		}
	}
}

func TestParseField_OutOfRangeColumns(t *testing.T) {
	if got := ParseField("12345", 10, 20); got != 0 {
		t.Errorf("start past end of line = %v, want 0", got)
	}
	if got := ParseField("12345", 0, 3); got != 0 {
		t.Errorf("start below 1 = %v, want 0", got)
	}
	if got := ParseField("12345", 4, 2); got != 0 {
		t.Errorf("inverted range = %v, want 0", got)
	}
	// End past the line is clamped, not an error.
	if got := ParseField("12345", 1, 99); got != 12345 {
		t.Errorf("clamped range = %v, want 12345", got)
	}
}

func TestElementsFromRecord_ISS(t *testing.T) {
	el, ok := ElementsFromRecord(model.Record{Name: "ISS (ZARYA)", Number: 25544, Line1: issLine1, Line2: issLine2})
	if !ok {
		t.Fatalf("expected ISS record to be usable")
	}
	if el.Inclination != 51.6459 {
		t.Errorf("inclination = %v, want 51.6459", el.Inclination)
	}
	if el.MeanMotion != 15.49370953 {
		t.Errorf("mean motion = %v, want 15.49370953", el.MeanMotion)
	}
}

func TestElementsFromRecord_ShortLine(t *testing.T) {
	_, ok := ElementsFromRecord(model.Record{Line2: "2 25544  51.6459"})
	if ok {
		t.Errorf("expected short line to be unusable")
	}
}

func TestElementsFromRecord_ZeroFieldsUnusable(t *testing.T) {
	// A line of the right width whose mean-motion columns are blank decodes
	// to zero and must be excluded.
	blankMM := issLine2[:52] + "           " + issLine2[63:]
	if len(blankMM) != len(issLine2) {
		t.Fatalf("fixture construction broke: len=%d", len(blankMM))
	}
	el, ok := ElementsFromRecord(model.Record{Line2: blankMM})
	if ok {
		t.Errorf("expected zero mean motion to be unusable, got %+v", el)
	}
}

func TestElementsFromRecord_BinsRoundTrip(t *testing.T) {
	el := Elements{MeanMotion: 15.234, Inclination: 51.64}
	key := KeyFor(el)
	if key.MeanMotionBin != 15.2 || key.InclinationBin != 52 {
		t.Errorf("KeyFor(15.234, 51.64) = %+v, want (15.2, 52)", key)
	}
}

func TestKeyFor_RoundsHalfUp(t *testing.T) {
	key := KeyFor(Elements{MeanMotion: 15.25, Inclination: 51.5})
	if math.Abs(key.MeanMotionBin-15.3) > 1e-12 {
		t.Errorf("mean-motion bin = %v, want 15.3", key.MeanMotionBin)
	}
	if key.InclinationBin != 52 {
		t.Errorf("inclination bin = %d, want 52", key.InclinationBin)
	}
}

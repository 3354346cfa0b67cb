package model

// Record is one tracked object from a TLE catalog fetch: its free-text
// designation, NORAD catalog number, and the two fixed-format element lines.
// Records are immutable once fetched; the core only ever reads them.
type Record struct {
	Name   string `json:"name"`
	Number int    `json:"number"`
	Line1  string `json:"line1"`
	Line2  string `json:"line2"`
}

package pdf

import (
	"fmt"
	"strings"
)

// PageFormat names a paper size.
type PageFormat string

const (
	PageA4     PageFormat = "a4"
	PageLetter PageFormat = "letter"
	PageA5     PageFormat = "a5"
)

// Orientation of the output pages.
type Orientation string

const (
	Portrait  Orientation = "portrait"
	Landscape Orientation = "landscape"
)

// portrait sizes in millimeters
var pageSizes = map[PageFormat][2]float64{
	PageA4:     {210, 297},
	PageLetter: {215.9, 279.4},
	PageA5:     {148, 210},
}

// ParsePageFormat resolves a case-insensitive page format name. Empty means A4.
func ParsePageFormat(s string) (PageFormat, error) {
	f := PageFormat(strings.ToLower(strings.TrimSpace(s)))
	if f == "" {
		return PageA4, nil
	}
	if _, ok := pageSizes[f]; !ok {
		return "", fmt.Errorf("unknown page format %q (want a4, letter or a5)", s)
	}
	return f, nil
}

// ParseOrientation resolves an orientation name. Empty means portrait.
func ParseOrientation(s string) (Orientation, error) {
	switch o := Orientation(strings.ToLower(strings.TrimSpace(s))); o {
	case "":
		return Portrait, nil
	case Portrait, Landscape:
		return o, nil
	default:
		return "", fmt.Errorf("unknown orientation %q (want portrait or landscape)", s)
	}
}

// Size returns the page width and height in millimeters.
func Size(f PageFormat, o Orientation) (w, h float64) {
	s, ok := pageSizes[f]
	if !ok {
		s = pageSizes[PageA4]
	}
	if o == Landscape {
		return s[1], s[0]
	}
	return s[0], s[1]
}

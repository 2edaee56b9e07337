package html2pdf

import (
	"fmt"
	"strings"
)

// ColorMode selects color or grayscale output.
type ColorMode int

// Color modes.
const (
	Color ColorMode = iota
	Grayscale
)

func (m ColorMode) String() string {
	if m == Grayscale {
		return "Grayscale"
	}
	return "Color"
}

// ParseColorMode parses "color" or "grayscale" (case-insensitive).
func ParseColorMode(s string) (ColorMode, error) {
	switch strings.ToLower(s) {
	case "color", "colour":
		return Color, nil
	case "grayscale", "greyscale":
		return Grayscale, nil
	}
	return Color, fmt.Errorf("%w: %q (must be color or grayscale)", ErrInvalidColorMode, s)
}

// Orientation is the page orientation.
type Orientation int

// Orientations.
const (
	Portrait Orientation = iota
	Landscape
)

func (o Orientation) String() string {
	if o == Landscape {
		return "Landscape"
	}
	return "Portrait"
}

// ParseOrientation parses "portrait" or "landscape" (case-insensitive).
func ParseOrientation(s string) (Orientation, error) {
	switch strings.ToLower(s) {
	case "portrait":
		return Portrait, nil
	case "landscape":
		return Landscape, nil
	}
	return Portrait, fmt.Errorf("%w: %q (must be portrait or landscape)", ErrInvalidOrientation, s)
}

// PaperKind names a standard paper format.
type PaperKind string

// Paper formats.
const (
	A3     PaperKind = "A3"
	A4     PaperKind = "A4"
	A5     PaperKind = "A5"
	Letter PaperKind = "Letter"
	Legal  PaperKind = "Legal"
)

// paperDimensions holds width and height in millimeters, portrait.
var paperDimensions = map[PaperKind][2]string{
	A3:     {"297mm", "420mm"},
	A4:     {"210mm", "297mm"},
	A5:     {"148mm", "210mm"},
	Letter: {"215.9mm", "279.4mm"},
	Legal:  {"215.9mm", "355.6mm"},
}

// Size returns the explicit dimensions of k, or nil for an unknown kind.
func (k PaperKind) Size() *PaperSize {
	d, ok := paperDimensions[k]
	if !ok {
		return nil
	}
	return &PaperSize{Width: Ptr(d[0]), Height: Ptr(d[1])}
}

// ParsePaperKind parses a paper format name (case-insensitive).
func ParsePaperKind(s string) (PaperKind, error) {
	for k := range paperDimensions {
		if strings.EqualFold(string(k), s) {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: %q (must be a3, a4, a5, letter or legal)", ErrInvalidPaperSize, s)
}

// Ptr returns a pointer to v. It is a shorthand for optional settings.
func Ptr[T any](v T) *T {
	return &v
}

// Package qrcode turns URLs into black/white QR bitmaps for label glyphs.
//
// Two backends are available: Skip2 (github.com/skip2/go-qrcode, the default)
// and Boombuler (github.com/boombuler/barcode). Both satisfy layout.QREncoder.
package qrcode

import (
	"fmt"
	"image"
	"image/color"
	"strings"
)

// Level is the QR error-correction level.
type Level int

const (
	LevelLow Level = iota
	LevelMedium
	LevelQuartile
	LevelHigh
)

func (l Level) String() string {
	switch l {
	case LevelLow:
		return "L"
	case LevelMedium:
		return "M"
	case LevelQuartile:
		return "Q"
	case LevelHigh:
		return "H"
	default:
		return fmt.Sprintf("Level(%d)", int(l))
	}
}

// ParseLevel parses L/M/Q/H (case-insensitive).
func ParseLevel(s string) (Level, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "L":
		return LevelLow, nil
	case "", "M":
		return LevelMedium, nil
	case "Q":
		return LevelQuartile, nil
	case "H":
		return LevelHigh, nil
	default:
		return 0, fmt.Errorf("qrcode: unknown error-correction level %q (want L, M, Q or H)", s)
	}
}

// Encoder is implemented by both backends.
type Encoder interface {
	Encode(data string) (image.Image, error)
}

// New returns the encoder for the named backend ("skip2" or "boombuler").
func New(backend string, level Level) (Encoder, error) {
	switch strings.ToLower(strings.TrimSpace(backend)) {
	case "", "skip2":
		return &Skip2{Level: level}, nil
	case "boombuler":
		return &Boombuler{Level: level}, nil
	default:
		return nil, fmt.Errorf("qrcode: unknown encoder %q (want skip2 or boombuler)", backend)
	}
}

// modulePixels is the edge length of one QR module in the produced bitmap.
const modulePixels = 8

// bitmapImage scales a module matrix into a grayscale image.
func bitmapImage(bits [][]bool) *image.Gray {
	n := len(bits)
	img := image.NewGray(image.Rect(0, 0, n*modulePixels, n*modulePixels))
	for y, row := range bits {
		for x, dark := range row {
			c := color.Gray{Y: 0xff}
			if dark {
				c = color.Gray{Y: 0}
			}
			for dy := 0; dy < modulePixels; dy++ {
				for dx := 0; dx < modulePixels; dx++ {
					img.SetGray(x*modulePixels+dx, y*modulePixels+dy, c)
				}
			}
		}
	}
	return img
}

package qrcode

import (
	"fmt"
	"image"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/qr"
)

// Boombuler encodes with github.com/boombuler/barcode/qr.
type Boombuler struct {
	Level Level
}

func (b *Boombuler) Encode(data string) (image.Image, error) {
	code, err := qr.Encode(data, b.level(), qr.Auto)
	if err != nil {
		return nil, fmt.Errorf("qrcode: encode %d bytes at level %s: %w", len(data), b.Level, err)
	}
	n := code.Bounds().Dx()
	scaled, err := barcode.Scale(code, n*modulePixels, n*modulePixels)
	if err != nil {
		return nil, fmt.Errorf("qrcode: scale %dx%d code: %w", n, n, err)
	}
	return scaled, nil
}

func (b *Boombuler) level() qr.ErrorCorrectionLevel {
	switch b.Level {
	case LevelLow:
		return qr.L
	case LevelQuartile:
		return qr.Q
	case LevelHigh:
		return qr.H
	default:
		return qr.M
	}
}

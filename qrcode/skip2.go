package qrcode

import (
	"fmt"
	"image"

	goqrcode "github.com/skip2/go-qrcode"
)

// Skip2 encodes with github.com/skip2/go-qrcode. The quiet zone is left out,
// the label layout already reserves padding around the glyph.
type Skip2 struct {
	Level Level
}

func (s *Skip2) Encode(data string) (image.Image, error) {
	q, err := goqrcode.New(data, s.recovery())
	if err != nil {
		return nil, fmt.Errorf("qrcode: encode %d bytes at level %s: %w", len(data), s.Level, err)
	}
	q.DisableBorder = true
	return bitmapImage(q.Bitmap()), nil
}

func (s *Skip2) recovery() goqrcode.RecoveryLevel {
	switch s.Level {
	case LevelLow:
		return goqrcode.Low
	case LevelQuartile:
		return goqrcode.High
	case LevelHigh:
		return goqrcode.Highest
	default:
		return goqrcode.Medium
	}
}

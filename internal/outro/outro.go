// Package outro renders the optional QR card shown at the end of a
// slideshow: a QR code for a URL, centered on a dark square frame.
package outro

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	"os"

	qrcode "github.com/skip2/go-qrcode"

	"github.com/crashserver/crashfaces/internal/cache"
)

// Card builds the outro frame for url. size is the square frame edge
// in pixels; the QR code fills roughly half of it.
func Card(url string, size int) (image.Image, error) {
	if url == "" {
		return nil, fmt.Errorf("outro URL is empty")
	}

	qrSize := size / 2
	if qrSize < 64 {
		qrSize = 64
	}
	qr, err := qrcode.New(url, qrcode.Medium)
	if err != nil {
		return nil, fmt.Errorf("qr encode: %w", err)
	}
	// Dark modules on a light card; inverted codes are rejected by
	// many scanners. The light card sits centered on the dark frame.
	qrImg := qr.Image(qrSize)

	card := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.Draw(card, card.Bounds(), image.NewUniform(color.Black), image.Point{}, draw.Src)

	offset := image.Pt((size-qrImg.Bounds().Dx())/2, (size-qrImg.Bounds().Dy())/2)
	draw.Draw(card, qrImg.Bounds().Add(offset), qrImg, qrImg.Bounds().Min, draw.Over)

	return card, nil
}

// WriteCard renders the card and writes it as a JPEG frame, normalized
// through the same optimization path the slideshow frames use.
func WriteCard(url, path string, size, quality int) error {
	card, err := Card(url, size)
	if err != nil {
		return err
	}

	out := cache.Optimize(card, size, false)

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return jpeg.Encode(f, out, &jpeg.Options{Quality: quality})
}

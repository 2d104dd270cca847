package outro

import (
	"image/jpeg"
	"os"
	"path/filepath"
	"testing"
)

func TestCardDimensions(t *testing.T) {
	card, err := Card("https://crashserver.fr", 512)
	if err != nil {
		t.Fatal(err)
	}
	if card.Bounds().Dx() != 512 || card.Bounds().Dy() != 512 {
		t.Errorf("card is %dx%d, want 512x512", card.Bounds().Dx(), card.Bounds().Dy())
	}
}

func TestCardDarkOnLight(t *testing.T) {
	card, err := Card("https://crashserver.fr", 512)
	if err != nil {
		t.Fatal(err)
	}

	// Frame corner stays dark.
	r, g, b, _ := card.At(2, 2).RGBA()
	if r > 0x2000 || g > 0x2000 || b > 0x2000 {
		t.Errorf("frame corner not dark: r=%d g=%d b=%d", r>>8, g>>8, b>>8)
	}

	// The QR quiet zone, just inside the centered card, is light.
	// qrSize = 256, so the card spans [128, 384).
	r, g, b, _ = card.At(130, 256).RGBA()
	if r < 0xd000 || g < 0xd000 || b < 0xd000 {
		t.Errorf("QR quiet zone not light: r=%d g=%d b=%d", r>>8, g>>8, b>>8)
	}
}

func TestCardEmptyURL(t *testing.T) {
	if _, err := Card("", 512); err == nil {
		t.Error("expected error for empty URL")
	}
}

func TestWriteCard(t *testing.T) {
	path := filepath.Join(t.TempDir(), "outro.jpg")
	if err := WriteCard("https://crashserver.fr", path, 256, 85); err != nil {
		t.Fatal(err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	img, err := jpeg.Decode(f)
	if err != nil {
		t.Fatal(err)
	}
	if img.Bounds().Dx() != 256 || img.Bounds().Dy() != 256 {
		t.Errorf("written card is %dx%d, want 256x256", img.Bounds().Dx(), img.Bounds().Dy())
	}
}

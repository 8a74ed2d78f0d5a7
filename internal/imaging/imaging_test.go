package imaging

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"testing"
)

func fill(w, h int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func createTestJPEG(w, h int) []byte {
	var buf bytes.Buffer
	jpeg.Encode(&buf, fill(w, h, color.RGBA{255, 0, 0, 255}), &jpeg.Options{Quality: 90})
	return buf.Bytes()
}

func createTestPNG(w, h int, c color.Color) []byte {
	var buf bytes.Buffer
	png.Encode(&buf, fill(w, h, c))
	return buf.Bytes()
}

func TestProcessJPEG(t *testing.T) {
	result, err := Process(bytes.NewReader(createTestJPEG(100, 80)))
	if err != nil {
		t.Fatalf("Process JPEG: %v", err)
	}
	if result.MIME != OutputMIME {
		t.Errorf("expected %s, got %s", OutputMIME, result.MIME)
	}
	if result.SourceMIME != "image/jpeg" {
		t.Errorf("expected source image/jpeg, got %s", result.SourceMIME)
	}
	if result.Width != 100 || result.Height != 80 {
		t.Errorf("expected 100x80, got %dx%d", result.Width, result.Height)
	}
	if len(result.Data) == 0 {
		t.Error("expected non-empty data")
	}
}

func TestProcessPNGBecomesJPEG(t *testing.T) {
	result, err := Process(bytes.NewReader(createTestPNG(100, 100, color.RGBA{0, 0, 255, 255})))
	if err != nil {
		t.Fatalf("Process PNG: %v", err)
	}
	if result.SourceMIME != "image/png" {
		t.Errorf("expected source image/png, got %s", result.SourceMIME)
	}
	if _, err := jpeg.Decode(bytes.NewReader(result.Data)); err != nil {
		t.Errorf("output is not JPEG: %v", err)
	}
}

func TestProcessGIF(t *testing.T) {
	pal := image.NewPaletted(image.Rect(0, 0, 20, 20), []color.Color{color.White, color.Black})
	var buf bytes.Buffer
	if err := gif.Encode(&buf, pal, nil); err != nil {
		t.Fatalf("encoding gif: %v", err)
	}

	result, err := Process(&buf)
	if err != nil {
		t.Fatalf("Process GIF: %v", err)
	}
	if result.SourceMIME != "image/gif" {
		t.Errorf("expected source image/gif, got %s", result.SourceMIME)
	}
}

func TestProcessTransparentFlattenedToWhite(t *testing.T) {
	result, err := Process(bytes.NewReader(createTestPNG(10, 10, color.RGBA{0, 0, 0, 0})))
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	img, err := jpeg.Decode(bytes.NewReader(result.Data))
	if err != nil {
		t.Fatalf("decoding result: %v", err)
	}
	r, g, b, _ := img.At(5, 5).RGBA()
	if r>>8 < 240 || g>>8 < 240 || b>>8 < 240 {
		t.Errorf("expected white pixel, got %d,%d,%d", r>>8, g>>8, b>>8)
	}
}

func TestProcessDownscale(t *testing.T) {
	result, err := Process(bytes.NewReader(createTestJPEG(2560, 1280)))
	if err != nil {
		t.Fatalf("Process large image: %v", err)
	}
	if result.Width != MaxDimension || result.Height != MaxDimension/2 {
		t.Errorf("expected %dx%d, got %dx%d", MaxDimension, MaxDimension/2, result.Width, result.Height)
	}

	img, _, err := image.Decode(bytes.NewReader(result.Data))
	if err != nil {
		t.Fatalf("decoding result: %v", err)
	}
	if img.Bounds().Dx() != result.Width {
		t.Errorf("reported width %d does not match encoded %d", result.Width, img.Bounds().Dx())
	}
}

func TestProcessSmallImageNotUpscaled(t *testing.T) {
	result, err := Process(bytes.NewReader(createTestJPEG(50, 50)))
	if err != nil {
		t.Fatalf("Process small image: %v", err)
	}
	if result.Width != 50 || result.Height != 50 {
		t.Errorf("small image should not be resized: got %dx%d", result.Width, result.Height)
	}
}

func TestProcessInvalidFormat(t *testing.T) {
	_, err := Process(bytes.NewReader([]byte("not an image")))
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestProcessTruncatedPNG(t *testing.T) {
	data := createTestPNG(40, 40, color.Black)
	_, err := Process(bytes.NewReader(data[:len(data)/2]))
	if err == nil {
		t.Error("expected decode error for truncated PNG")
	}
}

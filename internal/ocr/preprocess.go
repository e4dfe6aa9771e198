package ocr

import (
	"bytes"
	"image"
	"image/color"
	"image/png"

	"github.com/nfnt/resize"

	_ "image/jpeg"

	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Variant is one preprocessed rendition of an upload, always PNG-encoded.
type Variant struct {
	Name string
	PNG  []byte
}

// Variants builds preprocessed renditions of the upload, ordered by how
// often they help the OCR engine: a plain resize first, then a contrast
// stretch, then a hard binarization for low-contrast photos. An undecodable
// image yields no variants; the caller still has the raw-upload path.
func Variants(raw []byte) []Variant {
	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil
	}

	var out []Variant
	if b := encodePNG(shrinkToWidth(img, 2000)); b != nil {
		out = append(out, Variant{Name: "base", PNG: b})
	}
	gray := normalizeGray(toGray(img))
	if b := encodePNG(shrinkToWidth(gray, 1800)); b != nil {
		out = append(out, Variant{Name: "gray_norm", PNG: b})
	}
	if b := encodePNG(shrinkToWidth(threshold(gray, 140), 1800)); b != nil {
		out = append(out, Variant{Name: "threshold_140", PNG: b})
	}
	return out
}

// shrinkToWidth scales the image down to the given width, never up.
func shrinkToWidth(img image.Image, width int) image.Image {
	if img.Bounds().Dx() <= width {
		return img
	}
	return resize.Resize(uint(width), 0, img, resize.Lanczos3)
}

func toGray(img image.Image) *image.Gray {
	b := img.Bounds()
	out := image.NewGray(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			out.Set(x, y, color.GrayModel.Convert(img.At(x, y)))
		}
	}
	return out
}

// normalizeGray stretches the luminance range to the full 0..255 span.
func normalizeGray(img *image.Gray) *image.Gray {
	lo, hi := uint8(255), uint8(0)
	for _, v := range img.Pix {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	if hi <= lo {
		return img
	}
	out := image.NewGray(img.Bounds())
	span := int(hi) - int(lo)
	for i, v := range img.Pix {
		out.Pix[i] = uint8((int(v) - int(lo)) * 255 / span)
	}
	return out
}

// threshold binarizes: luminance at or above cut becomes white.
func threshold(img *image.Gray, cut uint8) *image.Gray {
	out := image.NewGray(img.Bounds())
	for i, v := range img.Pix {
		if v >= cut {
			out.Pix[i] = 255
		}
	}
	return out
}

func encodePNG(img image.Image) []byte {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil
	}
	return buf.Bytes()
}

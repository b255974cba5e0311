package scan

import (
	"image"

	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/qrcode"
)

// Decoder finds a QR code in a frame and returns its payload.
type Decoder interface {
	Decode(img image.Image) (payload string, ok bool)
}

// QRDecoder decodes QR codes with gozxing. It is not safe for concurrent use.
type QRDecoder struct {
	reader gozxing.Reader
	hints  map[gozxing.DecodeHintType]interface{}
}

// NewQRDecoder creates a decoder. tryHarder trades speed for accuracy on
// blurry or skewed frames.
func NewQRDecoder(tryHarder bool) *QRDecoder {
	d := &QRDecoder{reader: qrcode.NewQRCodeReader()}
	if tryHarder {
		d.hints = map[gozxing.DecodeHintType]interface{}{
			gozxing.DecodeHintType_TRY_HARDER: true,
		}
	}
	return d
}

// Decode reports ok=false when the frame holds no readable code.
func (d *QRDecoder) Decode(img image.Image) (string, bool) {
	bmp, err := gozxing.NewBinaryBitmapFromImage(img)
	if err != nil {
		return "", false
	}
	res, err := d.reader.Decode(bmp, d.hints)
	if err != nil {
		return "", false
	}
	return res.GetText(), true
}

// DecodePixels decodes a packed RGBA pixel buffer of the given dimensions.
func (d *QRDecoder) DecodePixels(pix []byte, width, height int) (string, bool) {
	if width <= 0 || height <= 0 || len(pix) < 4*width*height {
		return "", false
	}
	img := &image.RGBA{
		Pix:    pix,
		Stride: 4 * width,
		Rect:   image.Rect(0, 0, width, height),
	}
	return d.Decode(img)
}

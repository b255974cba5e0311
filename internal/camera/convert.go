package camera

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
)

// Pixel formats authlive can turn into frames, as V4L2 FourCC codes.
const (
	FormatMJPEG uint32 = 'M' | 'J'<<8 | 'P'<<16 | 'G'<<24
	FormatYUYV  uint32 = 'Y' | 'U'<<8 | 'Y'<<16 | 'V'<<24
)

// preferredFormats is in order of preference. YUYV carries luminance
// directly, which is all the QR decoder needs.
var preferredFormats = []uint32{FormatYUYV, FormatMJPEG}

// FourCC renders a pixel format code as text.
func FourCC(f uint32) string {
	return string([]byte{byte(f), byte(f >> 8), byte(f >> 16), byte(f >> 24)})
}

// convertFrame turns a raw buffer in the given format into an image.
func convertFrame(format uint32, buf []byte, width, height int) (image.Image, error) {
	switch format {
	case FormatYUYV:
		return yuyvToGray(buf, width, height)
	case FormatMJPEG:
		img, err := jpeg.Decode(bytes.NewReader(buf))
		if err != nil {
			return nil, fmt.Errorf("failed to decode MJPEG frame: %w", err)
		}
		return img, nil
	default:
		return nil, fmt.Errorf("unsupported pixel format %s", FourCC(format))
	}
}

// yuyvToGray keeps the Y samples of a packed YUYV 4:2:2 buffer.
func yuyvToGray(buf []byte, width, height int) (*image.Gray, error) {
	if len(buf) < width*height*2 {
		return nil, fmt.Errorf("short YUYV frame: %d bytes for %dx%d", len(buf), width, height)
	}
	img := image.NewGray(image.Rect(0, 0, width, height))
	for i := 0; i < width*height; i++ {
		img.Pix[i] = buf[2*i]
	}
	return img, nil
}

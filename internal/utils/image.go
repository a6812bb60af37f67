package utils

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"strings"

	"github.com/nfnt/resize"
)

type ImageFormat string

const (
	ImageFormatUnknown ImageFormat = ""
	ImageFormatPNG     ImageFormat = "png"
	ImageFormatJPEG    ImageFormat = "jpeg"
	ImageFormatGIF     ImageFormat = "gif"
	ImageFormatBMP     ImageFormat = "bmp"
	ImageFormatWEBP    ImageFormat = "webp"
)

var ErrUnsupportedImg = errors.New("unsupported image format")

var pngMagic = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}

// SniffImageType identifies an image from its leading magic bytes.
func SniffImageType(b []byte) ImageFormat {
	switch {
	case bytes.HasPrefix(b, pngMagic):
		return ImageFormatPNG
	case len(b) >= 3 && b[0] == 0xFF && b[1] == 0xD8 && b[2] == 0xFF:
		return ImageFormatJPEG
	case bytes.HasPrefix(b, []byte("GIF87a")), bytes.HasPrefix(b, []byte("GIF89a")):
		return ImageFormatGIF
	case bytes.HasPrefix(b, []byte("BM")):
		return ImageFormatBMP
	case len(b) >= 12 && bytes.Equal(b[0:4], []byte("RIFF")) && bytes.Equal(b[8:12], []byte("WEBP")):
		return ImageFormatWEBP
	default:
		return ImageFormatUnknown
	}
}

// SniffBase64Image decodes just enough of a base64 payload to recognise
// its image header.
func SniffBase64Image(payload string) ImageFormat {
	payload = strings.TrimSpace(payload)
	// 16 base64 characters decode to 12 bytes, enough for every signature.
	prefix := payload
	if len(prefix) > 16 {
		prefix = prefix[:16]
	}
	head, err := base64.StdEncoding.DecodeString(prefix)
	if err != nil {
		head, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(prefix, "="))
		if err != nil {
			return ImageFormatUnknown
		}
	}
	return SniffImageType(head)
}

// ToImageDataURL wraps raw base64 evidence in a data URL. Items that are
// already data URLs are returned unchanged; unknown formats are labelled
// jpeg.
func ToImageDataURL(item string) string {
	if strings.HasPrefix(item, "data:") {
		return item
	}
	format := SniffBase64Image(item)
	if format == ImageFormatUnknown {
		format = ImageFormatJPEG
	}
	return fmt.Sprintf("data:image/%s;base64,%s", format, item)
}

// ResizeImage scales img down to fit maxWidth x maxHeight, keeping the
// aspect ratio. A zero bound leaves that axis unconstrained.
func ResizeImage(img image.Image, maxWidth, maxHeight uint) image.Image {
	bounds := img.Bounds()
	width := uint(bounds.Dx())
	height := uint(bounds.Dy())

	if (maxWidth == 0 || width <= maxWidth) && (maxHeight == 0 || height <= maxHeight) {
		return img
	}

	if maxHeight == 0 {
		return resize.Resize(maxWidth, 0, img, resize.Lanczos3)
	}
	if maxWidth == 0 {
		return resize.Resize(0, maxHeight, img, resize.Lanczos3)
	}
	return resize.Thumbnail(maxWidth, maxHeight, img, resize.Lanczos3)
}

// DecodeImage decodes PNG or JPEG bytes. Other formats are rejected.
func DecodeImage(data []byte) (image.Image, ImageFormat, error) {
	format := SniffImageType(data)
	var (
		img image.Image
		err error
	)
	switch format {
	case ImageFormatPNG:
		img, err = png.Decode(bytes.NewReader(data))
	case ImageFormatJPEG:
		img, err = jpeg.Decode(bytes.NewReader(data))
	default:
		return nil, format, ErrUnsupportedImg
	}
	return img, format, err
}

func EncodeImage(img image.Image, format ImageFormat, writer io.Writer, quality int) error {
	switch format {
	case ImageFormatJPEG:
		return jpeg.Encode(writer, img, &jpeg.Options{Quality: quality})
	case ImageFormatPNG:
		return png.Encode(writer, img)
	default:
		return ErrUnsupportedImg
	}
}

// ShrinkImage re-encodes PNG/JPEG bytes so neither side exceeds maxEdge.
// Anything it cannot decode is returned untouched.
func ShrinkImage(data []byte, maxEdge uint) []byte {
	img, format, err := DecodeImage(data)
	if err != nil {
		return data
	}
	bounds := img.Bounds()
	if uint(bounds.Dx()) <= maxEdge && uint(bounds.Dy()) <= maxEdge {
		return data
	}
	var buf bytes.Buffer
	if err := EncodeImage(ResizeImage(img, maxEdge, maxEdge), format, &buf, 85); err != nil {
		return data
	}
	return buf.Bytes()
}

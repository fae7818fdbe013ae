package qrtoken

import (
	"github.com/pkg/errors"
	qrcode "github.com/skip2/go-qrcode"
)

// DefaultImageSize is the pixel width/height of rendered QR codes.
const DefaultImageSize = 400

// Image renders a token as a PNG QR code. High error correction keeps the
// code scannable on low quality projector output.
func Image(token string, size int) ([]byte, error) {
	if size <= 0 {
		size = DefaultImageSize
	}
	png, err := qrcode.Encode(token, qrcode.High, size)
	if err != nil {
		return nil, errors.Wrap(err, "[qrtoken.Image] failed to encode QR code")
	}
	return png, nil
}

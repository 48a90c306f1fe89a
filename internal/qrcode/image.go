package qrcode

import (
	"encoding/base64"
	"fmt"

	goqr "github.com/skip2/go-qrcode"
)

const (
	ImageSize     = 200
	dataURLPrefix = "data:image/png;base64,"
)

// RenderPNG encodes payload as a square PNG with medium error recovery.
func RenderPNG(payload string) ([]byte, error) {
	png, err := goqr.Encode(payload, goqr.Medium, ImageSize)
	if err != nil {
		return nil, fmt.Errorf("render qr: %w", err)
	}
	return png, nil
}

func DataURL(png []byte) string {
	return dataURLPrefix + base64.StdEncoding.EncodeToString(png)
}

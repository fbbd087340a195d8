// Package qrcode renders verification URLs as PNG data URIs.
package qrcode

import (
	"encoding/base64"
	"fmt"

	goqrcode "github.com/skip2/go-qrcode"
)

const (
	DefaultSize = 256
	dataURIPNG  = "data:image/png;base64,"
)

// Encoder renders QR codes at a fixed size with medium error recovery.
type Encoder struct {
	size  int
	level goqrcode.RecoveryLevel
}

func New() *Encoder {
	return &Encoder{size: DefaultSize, level: goqrcode.Medium}
}

// Encode returns a "data:image/png;base64,..." URI for content.
func (e *Encoder) Encode(content string) (string, error) {
	if content == "" {
		return "", fmt.Errorf("qrcode: empty content")
	}
	png, err := goqrcode.Encode(content, e.level, e.size)
	if err != nil {
		return "", fmt.Errorf("qrcode: encode: %w", err)
	}
	return dataURIPNG + base64.StdEncoding.EncodeToString(png), nil
}

package wallet

import (
	"bytes"
	"fmt"
	"image/png"

	qrcode "github.com/skip2/go-qrcode"
)

// ReceiveQR renders a PNG QR code for receiving rewards at address. An
// optional amount is appended as a URI parameter.
func ReceiveQR(address, amount string) ([]byte, error) {
	content := address
	if amount != "" {
		content = address + "?amount=" + amount
	}
	qr, err := qrcode.New(content, qrcode.Medium)
	if err != nil {
		return nil, fmt.Errorf("failed to generate QR code: %w", err)
	}

	buf := new(bytes.Buffer)
	if err := png.Encode(buf, qr.Image(256)); err != nil {
		return nil, fmt.Errorf("failed to encode QR code to PNG: %w", err)
	}
	return buf.Bytes(), nil
}

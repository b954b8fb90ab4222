package wallet

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/skip2/go-qrcode"

	"github.com/strun-app/strun-wallet/internal/model"
)

const defaultQRSize = 256

// Generate creates the wallet explicitly. Returns WalletExistsError if one is already stored.
func (c *Custodian) Generate(ctx context.Context) (address string, err error) {
	c.ensureMu.Lock()
	defer c.ensureMu.Unlock()

	kp, created, err := c.ensureLocked(ctx)
	if err != nil {
		return "", err
	}
	defer kp.Clear()

	address = kp.PublicKey.String()
	if !created {
		return "", &WalletExistsError{Address: address}
	}
	return address, nil
}

// AddressQR returns the receive address with a QR code of it (base64 PNG)
func (c *Custodian) AddressQR(ctx context.Context, size int) (*model.AddressResponse, error) {
	address, err := c.PublicAddress(ctx)
	if err != nil {
		return nil, err
	}

	qr, err := generateQRCode(address, size)
	if err != nil {
		return nil, fmt.Errorf("failed to generate QR code: %w", err)
	}

	return &model.AddressResponse{
		Address: address,
		QR:      qr,
	}, nil
}

// generateQRCode generates QR code of address in base64
func generateQRCode(address string, size int) (string, error) {
	if size <= 0 {
		size = defaultQRSize
	}

	qr, err := qrcode.New("solana:"+address, qrcode.Medium)
	if err != nil {
		return "", fmt.Errorf("failed to create QR code: %w", err)
	}

	png, err := qr.PNG(size)
	if err != nil {
		return "", fmt.Errorf("failed to generate PNG: %w", err)
	}

	return base64.StdEncoding.EncodeToString(png), nil
}

package service

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"strings"

	"github.com/tecnomaub/rupia-wallet-bfa/internal/domain"
)

const (
	maxIconSide  = 500
	maxIconBytes = 1 << 20
)

// validateIcon accepts an empty icon, an http(s) URL, or a base64 image data
// URL whose decoded picture is at most 500x500.
func validateIcon(icon string) error {
	if icon == "" || strings.HasPrefix(icon, "https://") || strings.HasPrefix(icon, "http://") {
		return nil
	}

	meta, payload, ok := strings.Cut(icon, ",")
	if !ok || !strings.HasPrefix(meta, "data:image/") || !strings.HasSuffix(meta, ";base64") {
		return &domain.ErrValidation{Field: "icon", Message: "must be an image data URL or an http(s) URL"}
	}
	if base64.StdEncoding.DecodedLen(len(payload)) > maxIconBytes {
		return &domain.ErrValidation{Field: "icon", Message: "image is too large"}
	}

	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return &domain.ErrValidation{Field: "icon", Message: "invalid base64 payload"}
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		return &domain.ErrValidation{Field: "icon", Message: "unsupported image format"}
	}
	if cfg.Width > maxIconSide || cfg.Height > maxIconSide {
		return &domain.ErrValidation{
			Field:   "icon",
			Message: fmt.Sprintf("image must be at most %dx%d, got %dx%d", maxIconSide, maxIconSide, cfg.Width, cfg.Height),
		}
	}
	return nil
}

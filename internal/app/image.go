package app

import (
	"github.com/fjod/go_cart/storefront/internal/config"
	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/media"
)

// ImageFromForm resolves the admin form's image inputs. An uploaded file takes
// precedence over a URL, which must be absolute (data: URLs included). Files are
// size checked before being downscaled.
func ImageFromForm(cfg config.Media, url, fileName string, data []byte) (domain.ImagePayload, error) {
	sel := media.NewSelector(cfg.MaxUploadBytes)
	if len(data) == 0 {
		sel.SetURL(url)
		payload, err := sel.Payload()
		if err != nil {
			return payload, err
		}
		if !media.IsValidURL(payload.URL) {
			return domain.ImagePayload{}, domain.ErrInvalidImageURL
		}
		return payload, nil
	}

	if err := sel.SetFile(fileName, data); err != nil {
		return domain.ImagePayload{}, err
	}
	if optimized, err := media.Optimize(data, cfg.MaxDimension); err == nil && len(optimized) < len(data) {
		if err := sel.SetFile(fileName, optimized); err != nil {
			return domain.ImagePayload{}, err
		}
	}
	return sel.Payload()
}

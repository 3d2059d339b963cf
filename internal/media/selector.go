// Package media selects where a product image comes from and prepares uploads.
package media

import (
	"encoding/base64"
	"net/http"
	"net/url"
	"strings"

	"github.com/fjod/go_cart/storefront/internal/domain"
)

type Source int

const (
	SourceURL Source = iota
	SourceFile
)

func (s Source) String() string {
	if s == SourceFile {
		return "file"
	}
	return "url"
}

// Selector holds the admin form's image input. Only the input of the active
// source is ever populated; switching source clears the other one.
type Selector struct {
	source   Source
	url      string
	fileName string
	data     []byte
	maxBytes int64
}

// NewSelector starts in URL mode with no input.
func NewSelector(maxBytes int64) *Selector {
	return &Selector{maxBytes: maxBytes}
}

func (s *Selector) Source() Source {
	return s.source
}

// Switch changes the active source and clears the other input.
func (s *Selector) Switch(src Source) {
	s.source = src
	if src == SourceURL {
		s.fileName, s.data = "", nil
	} else {
		s.url = ""
	}
}

// SetURL switches to the URL source and stores raw.
func (s *Selector) SetURL(raw string) {
	s.Switch(SourceURL)
	s.url = strings.TrimSpace(raw)
}

// SetFile switches to the file source. An oversized file is rejected and leaves
// the file input empty.
func (s *Selector) SetFile(name string, data []byte) error {
	s.Switch(SourceFile)
	if s.maxBytes > 0 && int64(len(data)) > s.maxBytes {
		s.fileName, s.data = "", nil
		return domain.ErrImageTooLarge
	}
	s.fileName, s.data = name, data
	return nil
}

// Preview returns something an image element can display: the URL when it
// parses as an absolute URL, a data URL for a file, or "".
func (s *Selector) Preview() string {
	switch {
	case s.source == SourceFile && len(s.data) > 0:
		return DataURL(s.data)
	case s.source == SourceURL && IsValidURL(s.url):
		return s.url
	default:
		return ""
	}
}

// Payload returns the image to submit with the product form.
func (s *Selector) Payload() (domain.ImagePayload, error) {
	switch {
	case s.source == SourceFile && len(s.data) > 0:
		return domain.ImagePayload{FileName: s.fileName, Data: s.data}, nil
	case s.source == SourceURL && s.url != "":
		return domain.ImagePayload{URL: s.url}, nil
	default:
		return domain.ImagePayload{}, domain.ErrMissingImage
	}
}

// Reset returns the selector to an empty URL input.
func (s *Selector) Reset() {
	s.Switch(SourceURL)
	s.url = ""
}

// IsValidURL reports whether raw parses as an absolute URL.
func IsValidURL(raw string) bool {
	u, err := url.Parse(raw)
	return err == nil && u.Scheme != "" && (u.Host != "" || u.Opaque != "")
}

// DataURL encodes data as a base64 data URL with a sniffed content type.
func DataURL(data []byte) string {
	return "data:" + http.DetectContentType(data) + ";base64," + base64.StdEncoding.EncodeToString(data)
}

package domain

import (
	"encoding/json"
	"strings"
)

type Product struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Image       string  `json:"image"`
	Stock       int     `json:"stock"`
}

// UnmarshalJSON accepts the Mongo-style "_id" the backend emits alongside or instead of "id".
func (p *Product) UnmarshalJSON(data []byte) error {
	type plain Product
	var raw struct {
		plain
		MongoID string `json:"_id"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*p = Product(raw.plain)
	if raw.MongoID != "" {
		p.ID = raw.MongoID
	}
	return nil
}

// ImagePayload is either a URL/data string or an uploaded file, never both.
type ImagePayload struct {
	URL      string
	FileName string
	Data     []byte
}

func (i ImagePayload) IsFile() bool {
	return len(i.Data) > 0
}

func (i ImagePayload) IsEmpty() bool {
	return !i.IsFile() && strings.TrimSpace(i.URL) == ""
}

// ProductInput is the admin form for create and update.
type ProductInput struct {
	Name        string
	Price       float64
	Description string
	Category    string
	Stock       *int
	Image       ImagePayload
}

// Validate checks the form before anything is sent to the backend.
func (in ProductInput) Validate() error {
	switch {
	case strings.TrimSpace(in.Name) == "":
		return NewValidationError("Product name is required")
	case in.Price < 0:
		return NewValidationError("Price must not be negative")
	case in.Stock != nil && *in.Stock < 0:
		return NewValidationError("Stock must not be negative")
	case in.Image.IsEmpty():
		return ErrMissingImage
	}
	return nil
}

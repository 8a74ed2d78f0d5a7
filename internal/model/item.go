package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// Item is a stored catalog record. The JSON form is what the backend returns
// after a successful create and what the form renders as its result.
type Item struct {
	ID          int64     `json:"id,omitempty"`
	Name        string    `json:"name"`
	Condition   Condition `json:"condition"`
	Category    Category  `json:"category"`
	Price       Price     `json:"price"`
	Description string    `json:"description"`
	ImageURL    string    `json:"image_url"`
	ImageKey    string    `json:"-"`
	CreatedAt   time.Time `json:"created_at,omitzero"`
}

// Price is a decimal amount carried as text. It decodes from either a JSON
// string or a JSON number so backends that emit numeric prices still work.
type Price string

// UnmarshalJSON implements json.Unmarshaler.
func (p *Price) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*p = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return fmt.Errorf("decoding price: %w", err)
		}
		*p = Price(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("decoding price: %w", err)
	}
	*p = Price(n.String())
	return nil
}

// String returns the raw price text.
func (p Price) String() string {
	return string(p)
}

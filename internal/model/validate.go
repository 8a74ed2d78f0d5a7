package model

import (
	"math"
	"strconv"
	"strings"
)

// ValidationError describes one rejected field. Message is user-facing.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Validate checks a submitted form the way the backend does and returns the
// first problem found.
func (s FormState) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return &ValidationError{Field: FieldName, Message: "Nama wajib diisi"}
	}
	if !s.Condition.Valid() {
		return &ValidationError{Field: FieldCondition, Message: "Kondisi tidak valid"}
	}
	if !s.Category.Valid() {
		return &ValidationError{Field: FieldCategory, Message: "Kategori tidak valid"}
	}
	if strings.TrimSpace(s.Price) == "" {
		return &ValidationError{Field: FieldPrice, Message: "Harga wajib diisi"}
	}
	if _, err := NormalizePrice(s.Price); err != nil {
		return err
	}
	return nil
}

// NormalizePrice parses a non-negative price with at most two decimals and
// returns its shortest decimal text ("1500000.00" becomes "1500000").
func NormalizePrice(raw string) (string, error) {
	invalid := &ValidationError{Field: FieldPrice, Message: "Harga tidak valid"}

	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return "", invalid
	}
	cents := f * 100
	if math.Abs(cents-math.Round(cents)) > 1e-6 {
		return "", invalid
	}
	return strconv.FormatFloat(f, 'f', -1, 64), nil
}

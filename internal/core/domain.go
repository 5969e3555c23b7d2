package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// Category is one of the fixed spending categories.
type Category string

const (
	Food           Category = "Food"
	Transportation Category = "Transportation"
	Entertainment  Category = "Entertainment"
	Shopping       Category = "Shopping"
	Bills          Category = "Bills"
	Healthcare     Category = "Healthcare"
	Education      Category = "Education"
	Travel         Category = "Travel"
	Rent           Category = "Rent"
	Groceries      Category = "Groceries"
	Utilities      Category = "Utilities"
	Other          Category = "Other"
)

// Categories is the closed, ordered category set. Validation and the
// monthly summary both iterate it, so its order is the display order.
var Categories = []Category{
	Food,
	Transportation,
	Entertainment,
	Shopping,
	Bills,
	Healthcare,
	Education,
	Travel,
	Rent,
	Groceries,
	Utilities,
	Other,
}

const MaxDescriptionLength = 200

var (
	ErrInvalidCategory    = errors.New("invalid category")
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrNegativeBudget     = errors.New("budget amount must not be negative")
	ErrEmptyDescription   = errors.New("empty description")
	ErrDescriptionTooLong = fmt.Errorf("description too long (max %d characters)", MaxDescriptionLength)
	ErrInvalidDate        = errors.New("invalid date")
	ErrInvalidMonth       = errors.New("invalid month")
)

// IsValidation reports whether err stems from rejected input rather than
// from storage or infrastructure.
func IsValidation(err error) bool {
	for _, target := range []error{
		ErrInvalidCategory,
		ErrInvalidAmount,
		ErrNegativeBudget,
		ErrEmptyDescription,
		ErrDescriptionTooLong,
		ErrInvalidDate,
		ErrInvalidMonth,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

type (
	Transaction struct {
		ID          string    `json:"id"`
		Amount      Money     `json:"amount"`
		Description string    `json:"description"`
		Category    Category  `json:"category"`
		Date        Date      `json:"date"`
		CreatedAt   time.Time `json:"createdAt"`
	}

	Budget struct {
		ID        string    `json:"id"`
		Category  Category  `json:"category"`
		Amount    Money     `json:"amount"`
		Month     Month     `json:"month"`
		CreatedAt time.Time `json:"createdAt"`
		UpdatedAt time.Time `json:"updatedAt"`
	}
)

// Valid reports whether c belongs to the category set.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

func (c Category) String() string {
	return string(c)
}

// ParseCategory matches s exactly (after trimming) against the category set.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.TrimSpace(s))
	if !c.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidCategory, s)
	}
	return c, nil
}

func (t Transaction) Validate() error {
	if err := t.Date.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(t.Description) == "" {
		return ErrEmptyDescription
	}
	if utf8.RuneCountInString(t.Description) > MaxDescriptionLength {
		return ErrDescriptionTooLong
	}
	if !t.Category.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidCategory, t.Category)
	}
	return nil
}

func (b Budget) Validate() error {
	if !b.Category.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidCategory, b.Category)
	}
	if b.Amount.Cents < 0 {
		return ErrNegativeBudget
	}
	if err := b.Month.Validate(); err != nil {
		return err
	}
	return nil
}

// Key identifies the budget slot; at most one budget exists per key.
func (b Budget) Key() string {
	return b.Month.String() + "|" + string(b.Category)
}

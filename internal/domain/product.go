package domain

import (
	"fmt"
	"strings"
	"time"
)

// MaxPriceCents is 100 million in the major unit.
const MaxPriceCents = 10_000_000_000

type Product struct {
	ID          uint64    `json:"id" gorm:"primaryKey;autoIncrement"`
	Name        string    `json:"name" gorm:"size:255;not null"`
	PriceCents  int64     `json:"priceCents" gorm:"not null"`
	Description string    `json:"description" gorm:"type:text"`
	CreatedAt   time.Time `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt   time.Time `json:"updatedAt" gorm:"autoUpdateTime"`
}

func NewProduct(name string, priceCents int64, description string) (*Product, error) {
	p := &Product{
		Name:        strings.TrimSpace(name),
		PriceCents:  priceCents,
		Description: description,
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Product) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("%w: product name is required", ErrInvalidInput)
	}
	if p.PriceCents < 0 {
		return ErrNegativePrice
	}
	if p.PriceCents > MaxPriceCents {
		return ErrPriceTooHigh
	}
	return nil
}

// ProductPatch holds a partial product update; nil fields keep their value.
type ProductPatch struct {
	Name        *string `json:"name"`
	PriceCents  *int64  `json:"priceCents"`
	Description *string `json:"description"`
}

func (p *Product) Apply(patch ProductPatch) error {
	next := *p
	if patch.Name != nil {
		next.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.PriceCents != nil {
		next.PriceCents = *patch.PriceCents
	}
	if patch.Description != nil {
		next.Description = *patch.Description
	}
	if err := next.Validate(); err != nil {
		return err
	}
	*p = next
	return nil
}

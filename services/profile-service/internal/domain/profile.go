package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

var (
	ErrValidation      = errors.New("validation failed")
	ErrProfileNotFound = errors.New("profile not found")
	ErrEmailTaken      = errors.New("profile with email address already exists")
)

var validate = validator.New()

type Profile struct {
	ID        int64  `gorm:"primaryKey;autoIncrement"`
	FirstName string `gorm:"not null"`
	LastName  string `gorm:"not null"`
	Email     string `gorm:"column:email_address;uniqueIndex;not null"`

	Street     string `gorm:"column:street_address_street"`
	Number     string `gorm:"column:street_address_number"`
	City       string `gorm:"column:street_address_city"`
	PostalCode string `gorm:"column:street_address_postal_code"`
	Country    string `gorm:"column:street_address_country"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

type CreateProfileParams struct {
	FirstName  string `validate:"required"`
	LastName   string `validate:"required"`
	Email      string `validate:"required,email"`
	Street     string `validate:"required"`
	Number     string
	City       string `validate:"required"`
	PostalCode string `validate:"required"`
	Country    string `validate:"required"`
}

func NewProfile(p CreateProfileParams) (*Profile, error) {
	p = CreateProfileParams{
		FirstName:  strings.TrimSpace(p.FirstName),
		LastName:   strings.TrimSpace(p.LastName),
		Email:      NormalizeEmail(p.Email),
		Street:     strings.TrimSpace(p.Street),
		Number:     strings.TrimSpace(p.Number),
		City:       strings.TrimSpace(p.City),
		PostalCode: strings.TrimSpace(p.PostalCode),
		Country:    strings.TrimSpace(p.Country),
	}
	if err := validate.Struct(p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return &Profile{
		FirstName:  p.FirstName,
		LastName:   p.LastName,
		Email:      p.Email,
		Street:     p.Street,
		Number:     p.Number,
		City:       p.City,
		PostalCode: p.PostalCode,
		Country:    p.Country,
	}, nil
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (p *Profile) FullName() string {
	return p.FirstName + " " + p.LastName
}

func (p *Profile) StreetAddress() string {
	return fmt.Sprintf("%s %s, %s, %s, %s", p.Street, p.Number, p.City, p.PostalCode, p.Country)
}

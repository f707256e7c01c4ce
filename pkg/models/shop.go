package models

import "time"

// Shop is the profile that scopes all inventory operations. The phone
// number doubles as the shop identifier.
type Shop struct {
	PhoneNumber  string    `json:"phone_number" db:"phone_number"`
	Name         string    `json:"name" db:"name"`
	Contact      string    `json:"contact" db:"contact"`
	PasscodeHash string    `json:"-" db:"passcode_hash"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

type ShopSignupRequest struct {
	Name        string `json:"name" binding:"required"`
	PhoneNumber string `json:"phone_number" binding:"required"`
	Contact     string `json:"contact" binding:"required"`
	Passcode    string `json:"passcode" binding:"required"`
}

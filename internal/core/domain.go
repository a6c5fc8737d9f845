package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	StatusAvailable VehicleStatus = "available"
	StatusPending   VehicleStatus = "pending"
	StatusSold      VehicleStatus = "sold"
)

type (
	VehicleStatus string

	User struct {
		ID           int64     `json:"id"`
		Email        string    `json:"email"`
		PasswordHash string    `json:"-"`
		FirstName    *string   `json:"firstName"`
		LastName     *string   `json:"lastName"`
		CreatedAt    time.Time `json:"createdAt"`
		UpdatedAt    time.Time `json:"updatedAt"`
	}

	Vehicle struct {
		ID            int64         `json:"id"`
		Make          string        `json:"make"`
		Model         string        `json:"model"`
		Year          int           `json:"year"`
		VIN           *string       `json:"vin"`
		Mileage       *int          `json:"mileage"`
		FuelType      *string       `json:"fuelType"`
		Transmission  *string       `json:"transmission"`
		PurchasePrice *Money        `json:"purchasePrice"`
		AskingPrice   *Money        `json:"askingPrice"`
		SoldPrice     *Money        `json:"soldPrice"`
		Status        VehicleStatus `json:"status"`
		Description   *string       `json:"description"`
		ImageURL      *string       `json:"imageUrl"`
		UserID        int64         `json:"userId"`
		CreatedAt     time.Time     `json:"createdAt"`
		UpdatedAt     time.Time     `json:"updatedAt"`
		SoldAt        *time.Time    `json:"soldAt"`
	}

	Expense struct {
		ID          int64     `json:"id"`
		VehicleID   int64     `json:"vehicleId"`
		Type        string    `json:"type"`
		Description *string   `json:"description"`
		Amount      Money     `json:"amount"`
		Date        time.Time `json:"date"`
		CreatedAt   time.Time `json:"createdAt"`
	}

	// NewUser is a candidate user record: credentials already hashed,
	// ids and timestamps assigned by the store.
	NewUser struct {
		Email        string
		PasswordHash string
		FirstName    *string
		LastName     *string
	}

	// NewVehicle is a validated candidate vehicle lacking id, owner and
	// timestamps.
	NewVehicle struct {
		Make          string
		Model         string
		Year          int
		VIN           *string
		Mileage       *int
		FuelType      *string
		Transmission  *string
		PurchasePrice *Money
		AskingPrice   *Money
		SoldPrice     *Money
		Status        VehicleStatus
		Description   *string
		ImageURL      *string
	}

	// VehiclePatch is a partial field set for updates. Nil fields are left
	// unchanged.
	VehiclePatch struct {
		Make          *string
		Model         *string
		Year          *int
		VIN           *string
		Mileage       *int
		FuelType      *string
		Transmission  *string
		PurchasePrice *Money
		AskingPrice   *Money
		SoldPrice     *Money
		Status        *VehicleStatus
		Description   *string
		ImageURL      *string
	}

	NewExpense struct {
		VehicleID   int64
		Type        string
		Description *string
		Amount      Money
		Date        *time.Time
	}

	FieldError struct {
		Field   string `json:"field"`
		Message string `json:"message"`
	}

	// ValidationError carries per-field messages. Handlers surface the
	// fields verbatim to the caller.
	ValidationError struct {
		Fields []FieldError
	}
)

var (
	// ErrNotFound covers both a missing id and a record owned by someone
	// else. The two cases are indistinguishable to callers.
	ErrNotFound = errors.New("not found")

	// ErrVehicleNotFound reports an expense operation against a vehicle
	// that does not resolve for the requesting owner. Distinct from
	// ErrNotFound so callers cannot confuse it with a missing expense.
	ErrVehicleNotFound = errors.New("vehicle not found")

	ErrInvalidAmount = errors.New("invalid amount")
)

func (s VehicleStatus) IsValid() bool {
	switch s {
	case StatusAvailable, StatusPending, StatusSold:
		return true
	default:
		return false
	}
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	msgs := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		msgs[i] = fmt.Sprintf("%s: %s", f.Field, f.Message)
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

func (e *ValidationError) add(field, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
}

// orNil returns the error, or nil when no field failed. Returning a typed
// nil pointer through the error interface would read as non-nil.
func (e *ValidationError) orNil() *ValidationError {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

// Apply overlays the patch onto v. Nil fields are left unchanged. The update
// timestamp is always refreshed, even for an empty patch. SoldAt is stamped
// the first time the status moves to sold and is never cleared afterwards,
// even if the status later reverts.
func (p VehiclePatch) Apply(v *Vehicle, now time.Time) {
	if p.Make != nil {
		v.Make = *p.Make
	}
	if p.Model != nil {
		v.Model = *p.Model
	}
	if p.Year != nil {
		v.Year = *p.Year
	}
	if p.VIN != nil {
		v.VIN = p.VIN
	}
	if p.Mileage != nil {
		v.Mileage = p.Mileage
	}
	if p.FuelType != nil {
		v.FuelType = p.FuelType
	}
	if p.Transmission != nil {
		v.Transmission = p.Transmission
	}
	if p.PurchasePrice != nil {
		v.PurchasePrice = p.PurchasePrice
	}
	if p.AskingPrice != nil {
		v.AskingPrice = p.AskingPrice
	}
	if p.SoldPrice != nil {
		v.SoldPrice = p.SoldPrice
	}
	if p.Status != nil {
		v.Status = *p.Status
		if v.Status == StatusSold && v.SoldAt == nil {
			soldAt := now
			v.SoldAt = &soldAt
		}
	}
	if p.Description != nil {
		v.Description = p.Description
	}
	if p.ImageURL != nil {
		v.ImageURL = p.ImageURL
	}
	v.UpdatedAt = now
}

package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"lotbook/internal/core"
)

const maxBodyBytes = 1 << 20 // 1MB

// decimalField captures a monetary value from JSON without failing the whole
// decode: the raw token is kept and parsed during validation so a bad amount
// becomes a field-level error instead of a generic decode failure. It accepts
// both string ("1234.56") and bare number forms.
type decimalField struct {
	raw string
	set bool
}

func (d *decimalField) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" {
		return nil
	}
	d.raw = strings.Trim(s, `"`)
	d.set = true
	return nil
}

// money converts the captured token to cents. Absent fields yield nil.
func (d decimalField) money() (*core.Money, error) {
	if !d.set {
		return nil, nil
	}
	cents, err := core.ParseDecimalToCents(d.raw)
	if err != nil {
		return nil, err
	}
	return &core.Money{Cents: cents}, nil
}

type vehiclePayload struct {
	Make          *string      `json:"make"`
	Model         *string      `json:"model"`
	Year          *int         `json:"year"`
	VIN           *string      `json:"vin"`
	Mileage       *int         `json:"mileage"`
	FuelType      *string      `json:"fuelType"`
	Transmission  *string      `json:"transmission"`
	PurchasePrice decimalField `json:"purchasePrice"`
	AskingPrice   decimalField `json:"askingPrice"`
	SoldPrice     decimalField `json:"soldPrice"`
	Status        *string      `json:"status"`
	Description   *string      `json:"description"`
	ImageURL      *string      `json:"imageUrl"`
}

type expensePayload struct {
	Type        *string      `json:"type"`
	Description *string      `json:"description"`
	Amount      decimalField `json:"amount"`
	Date        *string      `json:"date"`
}

func decodeJSON(r *http.Request, v any) error {
	body := io.LimitReader(r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(v); err != nil {
		return err
	}
	return nil
}

// parseVehicleCreate decodes and validates a candidate vehicle. The second
// return value carries field-level validation errors; the third a decode
// failure.
func parseVehicleCreate(r *http.Request) (core.NewVehicle, *core.ValidationError, error) {
	var p vehiclePayload
	if err := decodeJSON(r, &p); err != nil {
		return core.NewVehicle{}, nil, err
	}

	var nv core.NewVehicle
	ve := &core.ValidationError{}
	if p.Make != nil {
		nv.Make = strings.TrimSpace(*p.Make)
	}
	if p.Model != nil {
		nv.Model = strings.TrimSpace(*p.Model)
	}
	if p.Year != nil {
		nv.Year = *p.Year
	}
	nv.VIN = p.VIN
	nv.Mileage = p.Mileage
	nv.FuelType = p.FuelType
	nv.Transmission = p.Transmission
	nv.Description = p.Description
	nv.ImageURL = p.ImageURL
	if p.Status != nil {
		nv.Status = core.VehicleStatus(*p.Status)
	}
	nv.PurchasePrice = parseMoneyField(ve, p.PurchasePrice, "purchasePrice")
	nv.AskingPrice = parseMoneyField(ve, p.AskingPrice, "askingPrice")
	nv.SoldPrice = parseMoneyField(ve, p.SoldPrice, "soldPrice")

	if fieldVE := nv.Validate(); fieldVE != nil {
		ve.Fields = append(ve.Fields, fieldVE.Fields...)
	}
	if len(ve.Fields) > 0 {
		return core.NewVehicle{}, ve, nil
	}
	return nv, nil, nil
}

// parseVehiclePatch decodes and validates a partial field set; absent fields
// stay nil and are left unchanged by the store.
func parseVehiclePatch(r *http.Request) (core.VehiclePatch, *core.ValidationError, error) {
	var p vehiclePayload
	if err := decodeJSON(r, &p); err != nil {
		return core.VehiclePatch{}, nil, err
	}

	var patch core.VehiclePatch
	ve := &core.ValidationError{}
	patch.Make = p.Make
	patch.Model = p.Model
	patch.Year = p.Year
	patch.VIN = p.VIN
	patch.Mileage = p.Mileage
	patch.FuelType = p.FuelType
	patch.Transmission = p.Transmission
	patch.Description = p.Description
	patch.ImageURL = p.ImageURL
	if p.Status != nil {
		status := core.VehicleStatus(*p.Status)
		patch.Status = &status
	}
	patch.PurchasePrice = parseMoneyField(ve, p.PurchasePrice, "purchasePrice")
	patch.AskingPrice = parseMoneyField(ve, p.AskingPrice, "askingPrice")
	patch.SoldPrice = parseMoneyField(ve, p.SoldPrice, "soldPrice")

	if fieldVE := patch.Validate(); fieldVE != nil {
		ve.Fields = append(ve.Fields, fieldVE.Fields...)
	}
	if len(ve.Fields) > 0 {
		return core.VehiclePatch{}, ve, nil
	}
	return patch, nil, nil
}

// parseExpenseCreate decodes and validates a candidate expense for the given
// vehicle. The date defaults to now when unspecified.
func parseExpenseCreate(r *http.Request, vehicleID int64) (core.NewExpense, *core.ValidationError, error) {
	var p expensePayload
	if err := decodeJSON(r, &p); err != nil {
		return core.NewExpense{}, nil, err
	}

	ne := core.NewExpense{VehicleID: vehicleID}
	ve := &core.ValidationError{}
	if p.Type != nil {
		ne.Type = strings.TrimSpace(*p.Type)
	}
	ne.Description = p.Description

	if !p.Amount.set {
		ve.Fields = append(ve.Fields, core.FieldError{Field: "amount", Message: "amount is required"})
	} else if amount, err := p.Amount.money(); err != nil {
		ve.Fields = append(ve.Fields, core.FieldError{Field: "amount", Message: "amount must be a non-negative decimal"})
	} else {
		ne.Amount = *amount
	}

	if p.Date != nil {
		date, err := parseDate(*p.Date)
		if err != nil {
			ve.Fields = append(ve.Fields, core.FieldError{Field: "date", Message: "date must be RFC3339 or YYYY-MM-DD"})
		} else {
			ne.Date = &date
		}
	}

	if fieldVE := ne.Validate(); fieldVE != nil {
		ve.Fields = append(ve.Fields, fieldVE.Fields...)
	}
	if len(ve.Fields) > 0 {
		return core.NewExpense{}, ve, nil
	}
	return ne, nil, nil
}

func parseMoneyField(ve *core.ValidationError, d decimalField, field string) *core.Money {
	m, err := d.money()
	if err != nil {
		ve.Fields = append(ve.Fields, core.FieldError{Field: field, Message: field + " must be a non-negative decimal"})
		return nil
	}
	return m
}

// parseDate accepts RFC3339 timestamps and plain YYYY-MM-DD dates.
func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	return time.Time{}, errors.New("unrecognized date format")
}

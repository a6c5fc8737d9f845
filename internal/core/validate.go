package core

import "strings"

// Column width limits, matching the storage schema.
const (
	maxMakeLen     = 100
	maxModelLen    = 100
	maxVINLen      = 17
	maxChoiceLen   = 50 // fuel type, transmission
	maxTypeLen     = 100
	maxImageURLLen = 500
)

// Validate checks a candidate vehicle for creation. Make, model and year are
// required; everything else is optional but bounded.
func (nv NewVehicle) Validate() *ValidationError {
	ve := &ValidationError{}
	if strings.TrimSpace(nv.Make) == "" {
		ve.add("make", "make is required")
	} else if len(nv.Make) > maxMakeLen {
		ve.add("make", "make is too long")
	}
	if strings.TrimSpace(nv.Model) == "" {
		ve.add("model", "model is required")
	} else if len(nv.Model) > maxModelLen {
		ve.add("model", "model is too long")
	}
	if nv.Year <= 0 {
		ve.add("year", "year is required")
	}
	if nv.Status != "" && !nv.Status.IsValid() {
		ve.add("status", "status must be available, pending or sold")
	}
	validateOptionalVehicleFields(ve, nv.VIN, nv.Mileage, nv.FuelType, nv.Transmission, nv.ImageURL)
	return ve.orNil()
}

// Validate re-checks only the fields present in the patch.
func (p VehiclePatch) Validate() *ValidationError {
	ve := &ValidationError{}
	if p.Make != nil {
		if strings.TrimSpace(*p.Make) == "" {
			ve.add("make", "make cannot be empty")
		} else if len(*p.Make) > maxMakeLen {
			ve.add("make", "make is too long")
		}
	}
	if p.Model != nil {
		if strings.TrimSpace(*p.Model) == "" {
			ve.add("model", "model cannot be empty")
		} else if len(*p.Model) > maxModelLen {
			ve.add("model", "model is too long")
		}
	}
	if p.Year != nil && *p.Year <= 0 {
		ve.add("year", "year must be positive")
	}
	if p.Status != nil && !p.Status.IsValid() {
		ve.add("status", "status must be available, pending or sold")
	}
	validateOptionalVehicleFields(ve, p.VIN, p.Mileage, p.FuelType, p.Transmission, p.ImageURL)
	return ve.orNil()
}

// Validate checks a candidate expense. The vehicle id and type are required;
// the amount must already have parsed as a non-negative fixed-point value.
func (ne NewExpense) Validate() *ValidationError {
	ve := &ValidationError{}
	if ne.VehicleID <= 0 {
		ve.add("vehicleId", "vehicle id is required")
	}
	if strings.TrimSpace(ne.Type) == "" {
		ve.add("type", "type is required")
	} else if len(ne.Type) > maxTypeLen {
		ve.add("type", "type is too long")
	}
	if ne.Amount.Cents < 0 {
		ve.add("amount", "amount must not be negative")
	}
	return ve.orNil()
}

func validateOptionalVehicleFields(ve *ValidationError, vin *string, mileage *int, fuelType, transmission, imageURL *string) {
	if vin != nil && len(*vin) > maxVINLen {
		ve.add("vin", "vin is too long")
	}
	if mileage != nil && *mileage < 0 {
		ve.add("mileage", "mileage must not be negative")
	}
	if fuelType != nil && len(*fuelType) > maxChoiceLen {
		ve.add("fuelType", "fuel type is too long")
	}
	if transmission != nil && len(*transmission) > maxChoiceLen {
		ve.add("transmission", "transmission is too long")
	}
	if imageURL != nil && len(*imageURL) > maxImageURLLen {
		ve.add("imageUrl", "image url is too long")
	}
}

// Package memory provides an in-process record store with manually
// incremented ids. It is the default backend for local runs and the test
// double for the HTTP layer; semantics match the sqlite store.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"lotbook/internal/core"
)

type Store struct {
	mu sync.Mutex

	users    map[int64]core.User
	vehicles map[int64]core.Vehicle
	expenses map[int64]core.Expense

	nextUserID    int64
	nextVehicleID int64
	nextExpenseID int64
}

func NewStore() *Store {
	return &Store{
		users:    make(map[int64]core.User),
		vehicles: make(map[int64]core.Vehicle),
		expenses: make(map[int64]core.Expense),
	}
}

func (s *Store) CreateUser(_ context.Context, nu core.NewUser) (core.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if strings.EqualFold(u.Email, nu.Email) {
			return core.User{}, &duplicateError{field: "email"}
		}
	}

	s.nextUserID++
	now := time.Now()
	user := core.User{
		ID:           s.nextUserID,
		Email:        nu.Email,
		PasswordHash: nu.PasswordHash,
		FirstName:    nu.FirstName,
		LastName:     nu.LastName,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	s.users[user.ID] = user
	return user, nil
}

func (s *Store) GetUser(_ context.Context, id int64) (core.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return core.User{}, core.ErrNotFound
	}
	return user, nil
}

func (s *Store) GetUserByEmail(_ context.Context, email string) (core.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return core.User{}, core.ErrNotFound
}

func (s *Store) ListVehicles(_ context.Context, ownerID int64) ([]core.Vehicle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.ownedVehiclesLocked(ownerID), nil
}

func (s *Store) GetVehicle(_ context.Context, id, ownerID int64) (core.Vehicle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.getVehicleLocked(id, ownerID)
}

func (s *Store) CreateVehicle(_ context.Context, nv core.NewVehicle, ownerID int64) (core.Vehicle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if nv.VIN != nil {
		for _, v := range s.vehicles {
			if v.VIN != nil && *v.VIN == *nv.VIN {
				return core.Vehicle{}, &duplicateError{field: "vin"}
			}
		}
	}

	status := nv.Status
	if status == "" {
		status = core.StatusAvailable
	}

	s.nextVehicleID++
	now := time.Now()
	vehicle := core.Vehicle{
		ID:            s.nextVehicleID,
		Make:          nv.Make,
		Model:         nv.Model,
		Year:          nv.Year,
		VIN:           nv.VIN,
		Mileage:       nv.Mileage,
		FuelType:      nv.FuelType,
		Transmission:  nv.Transmission,
		PurchasePrice: nv.PurchasePrice,
		AskingPrice:   nv.AskingPrice,
		SoldPrice:     nv.SoldPrice,
		Status:        status,
		Description:   nv.Description,
		ImageURL:      nv.ImageURL,
		UserID:        ownerID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	s.vehicles[vehicle.ID] = vehicle
	return vehicle, nil
}

func (s *Store) UpdateVehicle(_ context.Context, id int64, patch core.VehiclePatch, ownerID int64) (core.Vehicle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	vehicle, err := s.getVehicleLocked(id, ownerID)
	if err != nil {
		return core.Vehicle{}, err
	}
	patch.Apply(&vehicle, time.Now())
	s.vehicles[id] = vehicle
	return vehicle, nil
}

func (s *Store) DeleteVehicle(_ context.Context, id, ownerID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.getVehicleLocked(id, ownerID); err != nil {
		return false, nil
	}
	delete(s.vehicles, id)
	return true, nil
}

func (s *Store) ListVehicleExpenses(_ context.Context, vehicleID, ownerID int64) ([]core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// A vehicle that does not resolve for this owner looks identical to
	// one with no expenses yet.
	if _, err := s.getVehicleLocked(vehicleID, ownerID); err != nil {
		return nil, nil
	}

	var expenses []core.Expense
	for _, e := range s.expenses {
		if e.VehicleID == vehicleID {
			expenses = append(expenses, e)
		}
	}
	sort.Slice(expenses, func(i, j int) bool {
		if !expenses[i].Date.Equal(expenses[j].Date) {
			return expenses[i].Date.After(expenses[j].Date)
		}
		return expenses[i].ID > expenses[j].ID
	})
	return expenses, nil
}

func (s *Store) AddVehicleExpense(_ context.Context, ne core.NewExpense, ownerID int64) (core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.getVehicleLocked(ne.VehicleID, ownerID); err != nil {
		return core.Expense{}, core.ErrVehicleNotFound
	}

	s.nextExpenseID++
	now := time.Now()
	date := now
	if ne.Date != nil {
		date = *ne.Date
	}
	expense := core.Expense{
		ID:          s.nextExpenseID,
		VehicleID:   ne.VehicleID,
		Type:        ne.Type,
		Description: ne.Description,
		Amount:      ne.Amount,
		Date:        date,
		CreatedAt:   now,
	}
	s.expenses[expense.ID] = expense
	return expense, nil
}

func (s *Store) VehicleStats(_ context.Context, ownerID int64) (core.Stats, error) {
	s.mu.Lock()
	vehicles := s.ownedVehiclesLocked(ownerID)
	s.mu.Unlock()

	return core.ComputeStats(vehicles, time.Now()), nil
}

func (s *Store) Close() error { return nil }

func (s *Store) getVehicleLocked(id, ownerID int64) (core.Vehicle, error) {
	vehicle, ok := s.vehicles[id]
	if !ok || vehicle.UserID != ownerID {
		return core.Vehicle{}, core.ErrNotFound
	}
	return vehicle, nil
}

func (s *Store) ownedVehiclesLocked(ownerID int64) []core.Vehicle {
	var vehicles []core.Vehicle
	for _, v := range s.vehicles {
		if v.UserID == ownerID {
			vehicles = append(vehicles, v)
		}
	}
	// Newest created first; id breaks ties for rows created in the same
	// instant.
	sort.Slice(vehicles, func(i, j int) bool {
		if !vehicles[i].CreatedAt.Equal(vehicles[j].CreatedAt) {
			return vehicles[i].CreatedAt.After(vehicles[j].CreatedAt)
		}
		return vehicles[i].ID > vehicles[j].ID
	})
	return vehicles
}

// duplicateError reports a uniqueness violation, mirroring the constraint
// errors the sqlite store surfaces.
type duplicateError struct {
	field string
}

func (e *duplicateError) Error() string {
	return "duplicate " + e.field
}

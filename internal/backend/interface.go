// Package backend defines the record store contract and the factory that
// builds the configured implementation.
package backend

import (
	"context"

	"lotbook/internal/core"
)

// Store is the record store contract. Vehicle and expense operations are
// owner-scoped: the owner id is an opaque, already-authenticated identity and
// every read and mutation is filtered on it before anything is returned or
// written.
type Store interface {
	// User operations
	CreateUser(ctx context.Context, nu core.NewUser) (core.User, error)
	GetUser(ctx context.Context, id int64) (core.User, error)
	GetUserByEmail(ctx context.Context, email string) (core.User, error)

	// Vehicle operations. Get, Update and Delete report core.ErrNotFound
	// (or a false flag for Delete) when the id does not exist or belongs
	// to another owner; the two cases are indistinguishable.
	ListVehicles(ctx context.Context, ownerID int64) ([]core.Vehicle, error)
	GetVehicle(ctx context.Context, id, ownerID int64) (core.Vehicle, error)
	CreateVehicle(ctx context.Context, nv core.NewVehicle, ownerID int64) (core.Vehicle, error)
	UpdateVehicle(ctx context.Context, id int64, patch core.VehiclePatch, ownerID int64) (core.Vehicle, error)
	DeleteVehicle(ctx context.Context, id, ownerID int64) (bool, error)

	// Expense operations. ListVehicleExpenses returns an empty sequence
	// when the vehicle does not resolve for the owner; AddVehicleExpense
	// fails hard with core.ErrVehicleNotFound for the same condition.
	ListVehicleExpenses(ctx context.Context, vehicleID, ownerID int64) ([]core.Expense, error)
	AddVehicleExpense(ctx context.Context, ne core.NewExpense, ownerID int64) (core.Expense, error)

	// VehicleStats recomputes the snapshot from the owner's full vehicle
	// set on every call.
	VehicleStats(ctx context.Context, ownerID int64) (core.Stats, error)

	Close() error
}

// CleanupFunc releases backend resources at shutdown.
type CleanupFunc func() error

// Result contains the store instance and an optional cleanup function.
type Result struct {
	Store   Store
	Cleanup CleanupFunc
}

// Factory creates stores based on configuration.
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*Result, error)
}

// Config holds configuration for backend creation.
type Config struct {
	Type Type

	// SQLite specific
	SQLiteDBPath string
}

// Type selects the storage backend.
type Type string

const (
	SQLiteBackend Type = "sqlite"
	MemoryBackend Type = "memory"
)

// String implements fmt.Stringer
func (t Type) String() string {
	return string(t)
}

// IsValid returns true if the backend type is valid
func (t Type) IsValid() bool {
	switch t {
	case SQLiteBackend, MemoryBackend:
		return true
	default:
		return false
	}
}

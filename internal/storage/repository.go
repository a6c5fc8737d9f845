// Package storage implements the record store over sqlite.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"lotbook/internal/core"

	_ "modernc.org/sqlite"
)

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	// Run migrations
	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

const userColumns = `id, email, password_hash, first_name, last_name, created_at, updated_at`

func (r *SQLiteRepository) CreateUser(ctx context.Context, nu core.NewUser) (core.User, error) {
	now := time.Now().UTC()
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO users (email, password_hash, first_name, last_name, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		nu.Email, nu.PasswordHash, strArg(nu.FirstName), strArg(nu.LastName), now, now)
	if err != nil {
		return core.User{}, fmt.Errorf("insert user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.User{}, fmt.Errorf("user insert id: %w", err)
	}
	return core.User{
		ID:           id,
		Email:        nu.Email,
		PasswordHash: nu.PasswordHash,
		FirstName:    nu.FirstName,
		LastName:     nu.LastName,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

func (r *SQLiteRepository) GetUser(ctx context.Context, id int64) (core.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	return scanUser(row)
}

func (r *SQLiteRepository) GetUserByEmail(ctx context.Context, email string) (core.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ?`, email)
	return scanUser(row)
}

const vehicleColumns = `id, make, model, year, vin, mileage, fuel_type, transmission,
	purchase_price_cents, asking_price_cents, sold_price_cents,
	status, description, image_url, user_id, created_at, updated_at, sold_at`

func (r *SQLiteRepository) ListVehicles(ctx context.Context, ownerID int64) ([]core.Vehicle, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+vehicleColumns+` FROM vehicles
		 WHERE user_id = ?
		 ORDER BY created_at DESC, id DESC`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list vehicles: %w", err)
	}
	defer rows.Close()

	var vehicles []core.Vehicle
	for rows.Next() {
		v, err := scanVehicle(rows)
		if err != nil {
			return nil, err
		}
		vehicles = append(vehicles, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list vehicles: %w", err)
	}
	return vehicles, nil
}

// GetVehicle filters on id and owner together, so a vehicle owned by someone
// else reports not found exactly like a missing one.
func (r *SQLiteRepository) GetVehicle(ctx context.Context, id, ownerID int64) (core.Vehicle, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+vehicleColumns+` FROM vehicles WHERE id = ? AND user_id = ?`, id, ownerID)
	return scanVehicle(row)
}

func (r *SQLiteRepository) CreateVehicle(ctx context.Context, nv core.NewVehicle, ownerID int64) (core.Vehicle, error) {
	status := nv.Status
	if status == "" {
		status = core.StatusAvailable
	}
	now := time.Now().UTC()
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO vehicles (make, model, year, vin, mileage, fuel_type, transmission,
		 purchase_price_cents, asking_price_cents, sold_price_cents,
		 status, description, image_url, user_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		nv.Make, nv.Model, nv.Year, strArg(nv.VIN), intArg(nv.Mileage),
		strArg(nv.FuelType), strArg(nv.Transmission),
		moneyArg(nv.PurchasePrice), moneyArg(nv.AskingPrice), moneyArg(nv.SoldPrice),
		string(status), strArg(nv.Description), strArg(nv.ImageURL),
		ownerID, now, now)
	if err != nil {
		return core.Vehicle{}, fmt.Errorf("insert vehicle: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.Vehicle{}, fmt.Errorf("vehicle insert id: %w", err)
	}
	return core.Vehicle{
		ID:            id,
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
	}, nil
}

// UpdateVehicle reads the current owner-scoped record, overlays the patch and
// writes the row back. The read and the write are not wrapped in a
// transaction; a concurrent delete in between surfaces as not found.
func (r *SQLiteRepository) UpdateVehicle(ctx context.Context, id int64, patch core.VehiclePatch, ownerID int64) (core.Vehicle, error) {
	vehicle, err := r.GetVehicle(ctx, id, ownerID)
	if err != nil {
		return core.Vehicle{}, err
	}
	patch.Apply(&vehicle, time.Now().UTC())

	res, err := r.db.ExecContext(ctx,
		`UPDATE vehicles SET make = ?, model = ?, year = ?, vin = ?, mileage = ?,
		 fuel_type = ?, transmission = ?,
		 purchase_price_cents = ?, asking_price_cents = ?, sold_price_cents = ?,
		 status = ?, description = ?, image_url = ?, updated_at = ?, sold_at = ?
		 WHERE id = ? AND user_id = ?`,
		vehicle.Make, vehicle.Model, vehicle.Year, strArg(vehicle.VIN), intArg(vehicle.Mileage),
		strArg(vehicle.FuelType), strArg(vehicle.Transmission),
		moneyArg(vehicle.PurchasePrice), moneyArg(vehicle.AskingPrice), moneyArg(vehicle.SoldPrice),
		string(vehicle.Status), strArg(vehicle.Description), strArg(vehicle.ImageURL),
		vehicle.UpdatedAt, timeArg(vehicle.SoldAt),
		id, ownerID)
	if err != nil {
		return core.Vehicle{}, fmt.Errorf("update vehicle: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return core.Vehicle{}, fmt.Errorf("update vehicle rows affected: %w", err)
	}
	if affected == 0 {
		return core.Vehicle{}, core.ErrNotFound
	}
	return vehicle, nil
}

func (r *SQLiteRepository) DeleteVehicle(ctx context.Context, id, ownerID int64) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM vehicles WHERE id = ? AND user_id = ?`, id, ownerID)
	if err != nil {
		return false, fmt.Errorf("delete vehicle: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete vehicle rows affected: %w", err)
	}
	return affected > 0, nil
}

const expenseColumns = `id, vehicle_id, type, description, amount_cents, date, created_at`

// ListVehicleExpenses resolves the vehicle for the owner first. A vehicle
// that does not resolve yields an empty sequence, indistinguishable from one
// with no expenses yet.
func (r *SQLiteRepository) ListVehicleExpenses(ctx context.Context, vehicleID, ownerID int64) ([]core.Expense, error) {
	if _, err := r.GetVehicle(ctx, vehicleID, ownerID); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT `+expenseColumns+` FROM vehicle_expenses
		 WHERE vehicle_id = ?
		 ORDER BY date DESC, id DESC`, vehicleID)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()

	var expenses []core.Expense
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, err
		}
		expenses = append(expenses, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	return expenses, nil
}

// AddVehicleExpense fails hard when the vehicle does not resolve for the
// owner. Asymmetric with ListVehicleExpenses on purpose.
func (r *SQLiteRepository) AddVehicleExpense(ctx context.Context, ne core.NewExpense, ownerID int64) (core.Expense, error) {
	if _, err := r.GetVehicle(ctx, ne.VehicleID, ownerID); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return core.Expense{}, core.ErrVehicleNotFound
		}
		return core.Expense{}, err
	}

	now := time.Now().UTC()
	date := now
	if ne.Date != nil {
		date = *ne.Date
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO vehicle_expenses (vehicle_id, type, description, amount_cents, date, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		ne.VehicleID, ne.Type, strArg(ne.Description), ne.Amount.Cents, date, now)
	if err != nil {
		return core.Expense{}, fmt.Errorf("insert expense: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.Expense{}, fmt.Errorf("expense insert id: %w", err)
	}
	return core.Expense{
		ID:          id,
		VehicleID:   ne.VehicleID,
		Type:        ne.Type,
		Description: ne.Description,
		Amount:      ne.Amount,
		Date:        date,
		CreatedAt:   now,
	}, nil
}

// VehicleStats re-reads the owner's full vehicle set and aggregates in core.
func (r *SQLiteRepository) VehicleStats(ctx context.Context, ownerID int64) (core.Stats, error) {
	vehicles, err := r.ListVehicles(ctx, ownerID)
	if err != nil {
		return core.Stats{}, err
	}
	return core.ComputeStats(vehicles, time.Now()), nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanUser(row scanner) (core.User, error) {
	var u core.User
	var firstName, lastName sql.NullString
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &firstName, &lastName, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return core.User{}, core.ErrNotFound
	}
	if err != nil {
		return core.User{}, fmt.Errorf("scan user: %w", err)
	}
	u.FirstName = optString(firstName)
	u.LastName = optString(lastName)
	return u, nil
}

func scanVehicle(row scanner) (core.Vehicle, error) {
	var v core.Vehicle
	var vin, fuelType, transmission, description, imageURL sql.NullString
	var mileage, purchase, asking, sold sql.NullInt64
	var status string
	var soldAt sql.NullTime
	err := row.Scan(&v.ID, &v.Make, &v.Model, &v.Year, &vin, &mileage, &fuelType, &transmission,
		&purchase, &asking, &sold, &status, &description, &imageURL,
		&v.UserID, &v.CreatedAt, &v.UpdatedAt, &soldAt)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Vehicle{}, core.ErrNotFound
	}
	if err != nil {
		return core.Vehicle{}, fmt.Errorf("scan vehicle: %w", err)
	}
	v.VIN = optString(vin)
	v.Mileage = optInt(mileage)
	v.FuelType = optString(fuelType)
	v.Transmission = optString(transmission)
	v.PurchasePrice = optMoney(purchase)
	v.AskingPrice = optMoney(asking)
	v.SoldPrice = optMoney(sold)
	v.Status = core.VehicleStatus(status)
	v.Description = optString(description)
	v.ImageURL = optString(imageURL)
	if soldAt.Valid {
		t := soldAt.Time
		v.SoldAt = &t
	}
	return v, nil
}

func scanExpense(row scanner) (core.Expense, error) {
	var e core.Expense
	var description sql.NullString
	var amountCents int64
	err := row.Scan(&e.ID, &e.VehicleID, &e.Type, &description, &amountCents, &e.Date, &e.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Expense{}, core.ErrNotFound
	}
	if err != nil {
		return core.Expense{}, fmt.Errorf("scan expense: %w", err)
	}
	e.Description = optString(description)
	e.Amount = core.Money{Cents: amountCents}
	return e, nil
}

func optString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

func optInt(ni sql.NullInt64) *int {
	if !ni.Valid {
		return nil
	}
	n := int(ni.Int64)
	return &n
}

func optMoney(ni sql.NullInt64) *core.Money {
	if !ni.Valid {
		return nil
	}
	return &core.Money{Cents: ni.Int64}
}

func strArg(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func intArg(i *int) any {
	if i == nil {
		return nil
	}
	return *i
}

func moneyArg(m *core.Money) any {
	if m == nil {
		return nil
	}
	return m.Cents
}

func timeArg(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}

/*
Package staff is the facility's staff directory with role-based authorization.

PURPOSE:
  Every engine request is performed by a staff member. The directory maps
  staff ids to a role (ADMIN or REGULAR) and gates staff management itself:
  only admins may create, update or delete staff, and the last remaining
  admin can be neither demoted nor deleted.

  There is no authentication beyond the pre-shared staff id; login merely
  checks existence.
*/
package staff

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"

	_ "github.com/mattn/go-sqlite3"
)

// =============================================================================
// ROLES
// =============================================================================

type Role string

const (
	RoleAdmin   Role = "ADMIN"
	RoleRegular Role = "REGULAR"
)

func (r Role) Valid() bool { return r == RoleAdmin || r == RoleRegular }

// =============================================================================
// ERRORS
// =============================================================================

// Error carries the HTTP status the directory's contract prescribes for each
// refusal, plus the exact user-facing detail text.
type Error struct {
	Status int
	Detail string
}

func (e *Error) Error() string { return e.Detail }

func fail(status int, format string, args ...any) *Error {
	return &Error{Status: status, Detail: fmt.Sprintf(format, args...)}
}

// =============================================================================
// DIRECTORY
// =============================================================================

type Directory struct {
	db *sql.DB
}

// Open opens (creating if needed) the staff database at path.
// Use ":memory:" for a throwaway directory.
func Open(path string) (*Directory, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("open staff database: %w", err)
	}
	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS staff (
			staff_id TEXT PRIMARY KEY,
			role     TEXT NOT NULL
		)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate staff database: %w", err)
	}
	return &Directory{db: db}, nil
}

func (d *Directory) Close() error { return d.db.Close() }

// EnsureAdmin seeds an admin account if the id is not present. Used at
// startup so a fresh directory is manageable.
func (d *Directory) EnsureAdmin(ctx context.Context, id string) error {
	_, err := d.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO staff (staff_id, role) VALUES (?, ?)`, id, string(RoleAdmin))
	return err
}

// Lookup returns the role of a staff member, with ok=false when unknown.
func (d *Directory) Lookup(ctx context.Context, id string) (Role, bool, error) {
	var role string
	err := d.db.QueryRowContext(ctx,
		`SELECT role FROM staff WHERE staff_id = ?`, id).Scan(&role)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return Role(role), true, nil
}

// Login checks that the staff id exists. No authentication beyond that.
func (d *Directory) Login(ctx context.Context, id string) error {
	_, ok, err := d.Lookup(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return fail(http.StatusNotFound, "")
	}
	return nil
}

// Create registers a new staff member. Admin-only.
func (d *Directory) Create(ctx context.Context, actorID, newID string, role Role) (string, error) {
	if err := d.requireAdmin(ctx, actorID); err != nil {
		return "", err
	}
	if _, exists, err := d.Lookup(ctx, newID); err != nil {
		return "", err
	} else if exists {
		return "", fail(http.StatusConflict, "%s already exists in the system", newID)
	}
	if !role.Valid() {
		return "", fail(http.StatusBadRequest, "%s is not a valid user role", role)
	}
	if _, err := d.db.ExecContext(ctx,
		`INSERT INTO staff (staff_id, role) VALUES (?, ?)`, newID, string(role)); err != nil {
		return "", err
	}
	return fmt.Sprintf("%s has been created with role %s", newID, role), nil
}

// Update changes a staff member's role. Admin-only; the last admin cannot
// be demoted.
func (d *Directory) Update(ctx context.Context, actorID, targetID string, role Role) (string, error) {
	if err := d.requireAdmin(ctx, actorID); err != nil {
		return "", err
	}
	current, exists, err := d.Lookup(ctx, targetID)
	if err != nil {
		return "", err
	}
	if !exists {
		return "", fail(http.StatusNotFound, "%s is not in the system", targetID)
	}
	if current == RoleAdmin {
		if last, err := d.lastAdmin(ctx); err != nil {
			return "", err
		} else if last {
			return "", fail(http.StatusForbidden, "%s is the only remaining Admin in the system", targetID)
		}
	}
	if !role.Valid() {
		return "", fail(http.StatusBadRequest, "%s is not a valid user role", role)
	}
	if _, err := d.db.ExecContext(ctx,
		`UPDATE staff SET role = ? WHERE staff_id = ?`, string(role), targetID); err != nil {
		return "", err
	}
	return fmt.Sprintf("%s's role has been updated to %s", targetID, role), nil
}

// Delete removes a staff member. Admin-only; the last admin cannot be
// deleted.
func (d *Directory) Delete(ctx context.Context, actorID, targetID string) (string, error) {
	if err := d.requireAdmin(ctx, actorID); err != nil {
		return "", err
	}
	current, exists, err := d.Lookup(ctx, targetID)
	if err != nil {
		return "", err
	}
	if !exists {
		return "", fail(http.StatusNotFound, "%s is not in the system", targetID)
	}
	if current == RoleAdmin {
		if last, err := d.lastAdmin(ctx); err != nil {
			return "", err
		} else if last {
			return "", fail(http.StatusForbidden, "%s is the only remaining Admin in the system", targetID)
		}
	}
	if _, err := d.db.ExecContext(ctx,
		`DELETE FROM staff WHERE staff_id = ?`, targetID); err != nil {
		return "", err
	}
	return fmt.Sprintf("%s has been removed from the system", targetID), nil
}

// =============================================================================
// HELPERS
// =============================================================================

func (d *Directory) requireAdmin(ctx context.Context, actorID string) error {
	role, ok, err := d.Lookup(ctx, actorID)
	if err != nil {
		return err
	}
	if !ok || role != RoleAdmin {
		return fail(http.StatusForbidden, "%s does not have permission to manage staffs", actorID)
	}
	return nil
}

func (d *Directory) lastAdmin(ctx context.Context) (bool, error) {
	var admins int
	if err := d.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM staff WHERE role = ?`, string(RoleAdmin)).Scan(&admins); err != nil {
		return false, err
	}
	return admins == 1, nil
}

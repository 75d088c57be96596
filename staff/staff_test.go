package staff_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mpcs/reservation-engine/staff"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestDirectory(t *testing.T) *staff.Directory {
	d, err := staff.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { d.Close() })
	require.NoError(t, d.EnsureAdmin(context.Background(), "admin"))
	return d
}

func assertStaffError(t *testing.T, err error, status int, detail string) {
	t.Helper()
	var se *staff.Error
	require.ErrorAs(t, err, &se)
	assert.Equal(t, status, se.Status)
	assert.Equal(t, detail, se.Detail)
}

// =============================================================================
// LOGIN TESTS
// =============================================================================

func TestLogin(t *testing.T) {
	d := newTestDirectory(t)
	ctx := context.Background()

	assert.NoError(t, d.Login(ctx, "admin"))

	err := d.Login(ctx, "nobody")
	assertStaffError(t, err, http.StatusNotFound, "")
}

// =============================================================================
// CREATE TESTS
// =============================================================================

func TestCreate(t *testing.T) {
	d := newTestDirectory(t)
	ctx := context.Background()

	detail, err := d.Create(ctx, "admin", "s1", staff.RoleRegular)
	require.NoError(t, err)
	assert.Equal(t, "s1 has been created with role REGULAR", detail)

	role, ok, err := d.Lookup(ctx, "s1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, staff.RoleRegular, role)
}

func TestCreate_RequiresAdmin(t *testing.T) {
	d := newTestDirectory(t)
	ctx := context.Background()

	_, err := d.Create(ctx, "admin", "s1", staff.RoleRegular)
	require.NoError(t, err)

	_, err = d.Create(ctx, "s1", "s2", staff.RoleRegular)
	assertStaffError(t, err, http.StatusForbidden, "s1 does not have permission to manage staffs")

	// An unknown actor is refused the same way.
	_, err = d.Create(ctx, "ghost", "s2", staff.RoleRegular)
	assertStaffError(t, err, http.StatusForbidden, "ghost does not have permission to manage staffs")
}

func TestCreate_DuplicateID(t *testing.T) {
	d := newTestDirectory(t)
	ctx := context.Background()

	_, err := d.Create(ctx, "admin", "s1", staff.RoleRegular)
	require.NoError(t, err)

	_, err = d.Create(ctx, "admin", "s1", staff.RoleRegular)
	assertStaffError(t, err, http.StatusConflict, "s1 already exists in the system")
}

func TestCreate_InvalidRole(t *testing.T) {
	d := newTestDirectory(t)

	_, err := d.Create(context.Background(), "admin", "s1", "SUPERVISOR")
	assertStaffError(t, err, http.StatusBadRequest, "SUPERVISOR is not a valid user role")
}

// =============================================================================
// UPDATE TESTS
// =============================================================================

func TestUpdate(t *testing.T) {
	d := newTestDirectory(t)
	ctx := context.Background()

	_, err := d.Create(ctx, "admin", "s1", staff.RoleRegular)
	require.NoError(t, err)

	detail, err := d.Update(ctx, "admin", "s1", staff.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, "s1's role has been updated to ADMIN", detail)
}

func TestUpdate_UnknownTarget(t *testing.T) {
	d := newTestDirectory(t)

	_, err := d.Update(context.Background(), "admin", "ghost", staff.RoleAdmin)
	assertStaffError(t, err, http.StatusNotFound, "ghost is not in the system")
}

func TestUpdate_LastAdminCannotBeDemoted(t *testing.T) {
	d := newTestDirectory(t)

	_, err := d.Update(context.Background(), "admin", "admin", staff.RoleRegular)
	assertStaffError(t, err, http.StatusForbidden, "admin is the only remaining Admin in the system")
}

// =============================================================================
// DELETE TESTS
// =============================================================================

func TestDelete(t *testing.T) {
	d := newTestDirectory(t)
	ctx := context.Background()

	_, err := d.Create(ctx, "admin", "s1", staff.RoleRegular)
	require.NoError(t, err)

	detail, err := d.Delete(ctx, "admin", "s1")
	require.NoError(t, err)
	assert.Equal(t, "s1 has been removed from the system", detail)

	_, ok, err := d.Lookup(ctx, "s1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDelete_LastAdminCannotBeDeleted(t *testing.T) {
	d := newTestDirectory(t)

	_, err := d.Delete(context.Background(), "admin", "admin")
	assertStaffError(t, err, http.StatusForbidden, "admin is the only remaining Admin in the system")
}

func TestDelete_AdminWithPeerCanGo(t *testing.T) {
	// With a second admin present, the first one can be deleted.
	d := newTestDirectory(t)
	ctx := context.Background()

	_, err := d.Create(ctx, "admin", "admin2", staff.RoleAdmin)
	require.NoError(t, err)

	_, err = d.Delete(ctx, "admin2", "admin")
	require.NoError(t, err)

	// admin2 is now the last admin and is protected again.
	_, err = d.Delete(ctx, "admin2", "admin2")
	assertStaffError(t, err, http.StatusForbidden, "admin2 is the only remaining Admin in the system")
}

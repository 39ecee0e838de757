package tenancy

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptionalStringDecoding(t *testing.T) {
	decode := func(t *testing.T, payload string) InitializeStoreRequest {
		t.Helper()
		var req InitializeStoreRequest
		require.NoError(t, json.Unmarshal([]byte(payload), &req))
		return req
	}

	t.Run("absent field", func(t *testing.T) {
		req := decode(t, `{}`)
		assert.False(t, req.PlanID.Present)
		assert.Nil(t, req.Contact)
	})

	t.Run("string value", func(t *testing.T) {
		req := decode(t, `{"planId": "pro"}`)
		assert.True(t, req.PlanID.Present)
		assert.True(t, req.PlanID.Valid)
		assert.Equal(t, "pro", req.PlanID.StringValue())
	})

	t.Run("explicit null", func(t *testing.T) {
		req := decode(t, `{"planId": null}`)
		assert.True(t, req.PlanID.Present)
		assert.True(t, req.PlanID.Valid)
		assert.Nil(t, req.PlanID.Value)
		assert.Equal(t, "", req.PlanID.StringValue())
	})

	t.Run("wrong type is recorded, not a decode failure", func(t *testing.T) {
		req := decode(t, `{"planId": 42}`)
		assert.True(t, req.PlanID.Present)
		assert.False(t, req.PlanID.Valid)
		assert.Nil(t, req.PlanID.Value)
	})

	t.Run("nested contact block", func(t *testing.T) {
		req := decode(t, `{"contact": {"phone": null, "ownerName": "Ama", "town": 5}}`)
		require.NotNil(t, req.Contact)
		assert.True(t, req.Contact.Phone.Present)
		assert.True(t, req.Contact.Phone.Valid)
		assert.Nil(t, req.Contact.Phone.Value)
		assert.Equal(t, "Ama", req.Contact.OwnerName.StringValue())
		assert.True(t, req.Contact.Town.Present)
		assert.False(t, req.Contact.Town.Valid)
		assert.False(t, req.Contact.Country.Present)
	})
}

func TestRoleFromToken(t *testing.T) {
	assert.Equal(t, "", RoleFromToken(nil))
	assert.Equal(t, "", RoleFromToken(map[string]any{}))
	assert.Equal(t, "", RoleFromToken(map[string]any{"role": 42}))
	assert.Equal(t, "", RoleFromToken(map[string]any{"role": "manager"}))
	assert.Equal(t, RoleOwner, RoleFromToken(map[string]any{"role": "OWNER"}))
	assert.Equal(t, RoleStaff, RoleFromToken(map[string]any{"role": "Staff"}))
}

func TestAccessAssertions(t *testing.T) {
	t.Run("authenticated", func(t *testing.T) {
		assert.Error(t, AssertAuthenticated(CallableContext{}))
		assert.NoError(t, AssertAuthenticated(authedCall("u1", nil)))
	})

	t.Run("owner", func(t *testing.T) {
		requireCallableError(t, AssertOwnerAccess(CallableContext{}), CodeUnauthenticated)
		requireCallableError(t, AssertOwnerAccess(authedCall("u1", map[string]any{"role": RoleStaff})), CodePermissionDenied)
		assert.NoError(t, AssertOwnerAccess(authedCall("u1", map[string]any{"role": RoleOwner})))
	})

	t.Run("staff", func(t *testing.T) {
		requireCallableError(t, AssertStaffAccess(authedCall("u1", nil)), CodePermissionDenied)
		assert.NoError(t, AssertStaffAccess(authedCall("u1", map[string]any{"role": RoleStaff})))
		assert.NoError(t, AssertStaffAccess(authedCall("u1", map[string]any{"role": RoleOwner})))
	})
}

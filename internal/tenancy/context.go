package tenancy

import "strings"

// Roles assignable to team members.
const (
	RoleOwner = "owner"
	RoleStaff = "staff"
)

// AuthContext carries the authenticated caller's uid and decoded token
// claims.
type AuthContext struct {
	UID   string
	Token map[string]any
}

// CallableContext is the envelope passed into every callable operation. A nil
// Auth means the caller is unauthenticated.
type CallableContext struct {
	Auth *AuthContext
}

// RoleFromToken returns the token's role claim when it case-insensitively
// matches a known role, and "" otherwise.
func RoleFromToken(token map[string]any) string {
	if token == nil {
		return ""
	}
	raw, ok := token["role"].(string)
	if !ok {
		return ""
	}
	role := strings.ToLower(raw)
	if role == RoleOwner || role == RoleStaff {
		return role
	}
	return ""
}

// AssertAuthenticated fails with unauthenticated when no caller identity is
// present.
func AssertAuthenticated(call CallableContext) error {
	if call.Auth == nil {
		return NewError(CodeUnauthenticated, "Login required")
	}
	return nil
}

// AssertOwnerAccess requires an authenticated caller whose token role claim
// is exactly owner.
func AssertOwnerAccess(call CallableContext) error {
	if err := AssertAuthenticated(call); err != nil {
		return err
	}
	if RoleFromToken(call.Auth.Token) != RoleOwner {
		return NewError(CodePermissionDenied, "Owner access required")
	}
	return nil
}

// AssertStaffAccess requires an authenticated caller with any recognized role
// claim.
func AssertStaffAccess(call CallableContext) error {
	if err := AssertAuthenticated(call); err != nil {
		return err
	}
	if RoleFromToken(call.Auth.Token) == "" {
		return NewError(CodePermissionDenied, "Staff access required")
	}
	return nil
}

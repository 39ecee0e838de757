package tenancy

import "encoding/json"

// OptionalString models a payload field where "not supplied", "explicitly
// cleared" and "valued" must stay distinguishable, and where a non-string
// value is a validation error rather than a decode failure.
type OptionalString struct {
	// Present reports whether the key appeared in the payload at all.
	Present bool
	// Valid reports whether the supplied value was a string or null.
	Valid bool
	// Value holds the supplied string; nil when the field was null.
	Value *string
}

// UnmarshalJSON never fails: type errors are recorded in Valid so the
// normalization layer can raise a field-specific invalid-argument error.
func (o *OptionalString) UnmarshalJSON(data []byte) error {
	o.Present = true
	o.Valid = false
	o.Value = nil
	if string(data) == "null" {
		o.Valid = true
		return nil
	}
	var value string
	if err := json.Unmarshal(data, &value); err != nil {
		return nil
	}
	o.Valid = true
	o.Value = &value
	return nil
}

// StringValue returns the supplied string, or "" when absent or null.
func (o OptionalString) StringValue() string {
	if o.Value == nil {
		return ""
	}
	return *o.Value
}

// ContactRequest is the optional contact block accepted by InitializeStore.
type ContactRequest struct {
	Phone            OptionalString `json:"phone"`
	FirstSignupEmail OptionalString `json:"firstSignupEmail"`
	OwnerName        OptionalString `json:"ownerName"`
	BusinessName     OptionalString `json:"businessName"`
	Country          OptionalString `json:"country"`
	Town             OptionalString `json:"town"`
	SignupRole       OptionalString `json:"signupRole"`
}

// InitializeStoreRequest is the payload of the initialize_store operation.
type InitializeStoreRequest struct {
	PlanID  OptionalString  `json:"planId"`
	Contact *ContactRequest `json:"contact"`
}

// ManageStaffAccountRequest is the payload of the manage_staff_account
// operation.
type ManageStaffAccountRequest struct {
	StoreID  OptionalString `json:"storeId"`
	Email    OptionalString `json:"email"`
	Role     OptionalString `json:"role"`
	Password OptionalString `json:"password"`
}

// DocumentResult pairs a document id with its serialized payload.
type DocumentResult struct {
	ID   string         `json:"id"`
	Data map[string]any `json:"data"`
}

// InitializeStoreResult is the success shape of initialize_store.
type InitializeStoreResult struct {
	OK         bool           `json:"ok"`
	StoreID    string         `json:"storeId"`
	Claims     map[string]any `json:"claims"`
	TeamMember DocumentResult `json:"teamMember"`
	Store      DocumentResult `json:"store"`
	Workspace  DocumentResult `json:"workspace"`
}

// ResolveStoreAccessResult is the success shape of resolve_store_access.
type ResolveStoreAccessResult struct {
	OK            bool           `json:"ok"`
	StoreID       string         `json:"storeId"`
	WorkspaceSlug string         `json:"workspaceSlug"`
	Claims        map[string]any `json:"claims"`
	TeamMember    DocumentResult `json:"teamMember"`
	Store         DocumentResult `json:"store"`
}

// ManageStaffAccountResult is the success shape of manage_staff_account.
type ManageStaffAccountResult struct {
	OK      bool           `json:"ok"`
	Role    string         `json:"role"`
	Email   string         `json:"email"`
	UID     string         `json:"uid"`
	Created bool           `json:"created"`
	StoreID string         `json:"storeId"`
	Claims  map[string]any `json:"claims"`
}

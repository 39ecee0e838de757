package tenancy

import (
	"strings"

	"sedifex-backend-go/internal/plans"
	"sedifex-backend-go/internal/timeutil"
)

// NormalizePlanID trims and lower-cases the value and returns it when it
// names a catalog plan; anything else (including empty/whitespace) yields "".
// The caller decides whether absence is acceptable.
func NormalizePlanID(value string) string {
	candidate := strings.ToLower(strings.TrimSpace(value))
	if candidate != "" && plans.IsValidPlanID(candidate) {
		return candidate
	}
	return ""
}

// NormalizeWorkspaceSlug trims the value and falls back when it is empty.
func NormalizeWorkspaceSlug(value, fallback string) string {
	if candidate := strings.TrimSpace(value); candidate != "" {
		return candidate
	}
	return fallback
}

// inactiveStatusTokens is the deny-list of tokens marking a contract status
// as inactive.
var inactiveStatusTokens = map[string]struct{}{
	"inactive":    {},
	"terminated":  {},
	"termination": {},
	"cancelled":   {},
	"canceled":    {},
	"suspended":   {},
	"paused":      {},
	"hold":        {},
	"closed":      {},
	"ended":       {},
	"deactivated": {},
	"disabled":    {},
}

// IsInactiveContractStatus tokenizes the status on "-", "_" and spaces and
// reports whether any token is on the deny-list. Empty/unknown statuses are
// treated as active.
func IsInactiveContractStatus(value string) bool {
	if value == "" {
		return false
	}
	normalized := strings.ToLower(value)
	normalized = strings.ReplaceAll(normalized, "_", "-")
	normalized = strings.ReplaceAll(normalized, " ", "-")
	for _, token := range strings.Split(normalized, "-") {
		if token == "" {
			continue
		}
		if _, inactive := inactiveStatusTokens[token]; inactive {
			return true
		}
	}
	return false
}

// ContactPayload carries each contact field's normalized value together with
// whether the field was supplied at all, so merge logic can distinguish
// "absent" from "explicitly cleared".
type ContactPayload struct {
	Phone               *string
	HasPhone            bool
	FirstSignupEmail    *string
	HasFirstSignupEmail bool
	OwnerName           *string
	HasOwnerName        bool
	BusinessName        *string
	HasBusinessName     bool
	Country             *string
	HasCountry          bool
	Town                *string
	HasTown             bool
	SignupRole          *string
	HasSignupRole       bool
}

// NormalizeContactPayload validates and sanitizes the contact block. Strings
// are trimmed to nil when blank; a non-string, non-null value for any field
// is an invalid-argument error.
func NormalizeContactPayload(raw *ContactRequest) (ContactPayload, error) {
	var contact ContactPayload
	if raw == nil {
		return contact, nil
	}

	var err error
	if raw.Phone.Present {
		contact.HasPhone = true
		if contact.Phone, err = nullableString(raw.Phone, "Phone must be a string when provided"); err != nil {
			return ContactPayload{}, err
		}
	}
	if raw.FirstSignupEmail.Present {
		contact.HasFirstSignupEmail = true
		if contact.FirstSignupEmail, err = nullableEmail(raw.FirstSignupEmail, "First signup email must be a string when provided"); err != nil {
			return ContactPayload{}, err
		}
	}
	if raw.OwnerName.Present {
		contact.HasOwnerName = true
		if contact.OwnerName, err = nullableString(raw.OwnerName, "Owner name must be a string when provided"); err != nil {
			return ContactPayload{}, err
		}
	}
	if raw.BusinessName.Present {
		contact.HasBusinessName = true
		if contact.BusinessName, err = nullableString(raw.BusinessName, "Business name must be a string when provided"); err != nil {
			return ContactPayload{}, err
		}
	}
	if raw.Country.Present {
		contact.HasCountry = true
		if contact.Country, err = nullableString(raw.Country, "Country must be a string when provided"); err != nil {
			return ContactPayload{}, err
		}
	}
	if raw.Town.Present {
		contact.HasTown = true
		if contact.Town, err = nullableString(raw.Town, "Town must be a string when provided"); err != nil {
			return ContactPayload{}, err
		}
	}
	if raw.SignupRole.Present {
		contact.HasSignupRole = true
		if contact.SignupRole, err = normalizeSignupRole(raw.SignupRole); err != nil {
			return ContactPayload{}, err
		}
	}
	return contact, nil
}

// nullableString trims the supplied value to nil when blank; a non-string
// value raises invalid-argument with the given message.
func nullableString(field OptionalString, message string) (*string, error) {
	if !field.Valid {
		return nil, NewError(CodeInvalidArgument, message)
	}
	if field.Value == nil {
		return nil, nil
	}
	candidate := strings.TrimSpace(*field.Value)
	if candidate == "" {
		return nil, nil
	}
	return &candidate, nil
}

func nullableEmail(field OptionalString, message string) (*string, error) {
	value, err := nullableString(field, message)
	if err != nil || value == nil {
		return value, err
	}
	lowered := strings.ToLower(*value)
	return &lowered, nil
}

// normalizeSignupRole canonicalizes to "owner" or "team-member"; any other
// token normalizes to nil without error.
func normalizeSignupRole(field OptionalString) (*string, error) {
	if !field.Valid {
		return nil, NewError(CodeInvalidArgument, "Signup role must be a string when provided")
	}
	if field.Value == nil {
		return nil, nil
	}
	normalized := strings.ToLower(strings.TrimSpace(*field.Value))
	normalized = strings.ReplaceAll(normalized, "_", "-")
	normalized = strings.ReplaceAll(normalized, " ", "-")
	switch normalized {
	case "owner":
		role := RoleOwner
		return &role, nil
	case "team-member", "team":
		role := "team-member"
		return &role, nil
	}
	return nil, nil
}

// optionalString reads a document field as a trimmed non-empty string,
// returning "" for anything else.
func optionalString(value any) string {
	if s, ok := value.(string); ok {
		return strings.TrimSpace(s)
	}
	return ""
}

// optionalEmail reads a document field as a lower-cased trimmed email.
func optionalEmail(value any) string {
	return strings.ToLower(optionalString(value))
}

// toTimestamp coerces a document field into a Timestamp: either a native
// Timestamp value or the {"_millis": n} wire form.
func toTimestamp(value any) *timeutil.Timestamp {
	switch v := value.(type) {
	case timeutil.Timestamp:
		return &v
	case map[string]any:
		if millis, ok := numericValue(v["_millis"]); ok {
			ts := timeutil.FromMillis(millis)
			return &ts
		}
	}
	return nil
}

func numericValue(value any) (int64, bool) {
	switch v := value.(type) {
	case int:
		return int64(v), true
	case int64:
		return v, true
	case float64:
		return int64(v), true
	}
	return 0, false
}

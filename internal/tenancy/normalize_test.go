package tenancy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sedifex-backend-go/internal/timeutil"
)

func TestNormalizePlanID(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"starter", "starter"},
		{"  PRO ", "pro"},
		{"Enterprise", "enterprise"},
		{"gold", ""},
		{"", ""},
		{"   ", ""},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, NormalizePlanID(tc.in), "input %q", tc.in)
	}
}

func TestNormalizeWorkspaceSlug(t *testing.T) {
	assert.Equal(t, "acme", NormalizeWorkspaceSlug(" acme ", "fallback"))
	assert.Equal(t, "fallback", NormalizeWorkspaceSlug("", "fallback"))
	assert.Equal(t, "fallback", NormalizeWorkspaceSlug("   ", "fallback"))
}

func TestIsInactiveContractStatus(t *testing.T) {
	inactive := []string{
		"inactive",
		"Suspended",
		"suspended_pending",
		"On Hold",
		"CANCELLED",
		"canceled",
		"contract-terminated",
		"closed",
		"deactivated",
	}
	for _, status := range inactive {
		assert.True(t, IsInactiveContractStatus(status), "status %q", status)
	}

	active := []string{
		"",
		"Active",
		"trial",
		"pending-renewal",
		"holdings", // token match is exact, not substring
	}
	for _, status := range active {
		assert.False(t, IsInactiveContractStatus(status), "status %q", status)
	}
}

func TestNormalizeContactPayload(t *testing.T) {
	t.Run("nil block yields an empty payload", func(t *testing.T) {
		contact, err := NormalizeContactPayload(nil)
		require.NoError(t, err)
		assert.False(t, contact.HasPhone)
		assert.False(t, contact.HasOwnerName)
	})

	t.Run("trims values and blanks to nil", func(t *testing.T) {
		contact, err := NormalizeContactPayload(&ContactRequest{
			Phone:     optString("  +233200000001 "),
			OwnerName: optString("   "),
		})
		require.NoError(t, err)
		assert.True(t, contact.HasPhone)
		require.NotNil(t, contact.Phone)
		assert.Equal(t, "+233200000001", *contact.Phone)
		assert.True(t, contact.HasOwnerName)
		assert.Nil(t, contact.OwnerName)
	})

	t.Run("lowercases the first signup email", func(t *testing.T) {
		contact, err := NormalizeContactPayload(&ContactRequest{
			FirstSignupEmail: optString(" Owner@Example.COM "),
		})
		require.NoError(t, err)
		require.NotNil(t, contact.FirstSignupEmail)
		assert.Equal(t, "owner@example.com", *contact.FirstSignupEmail)
	})

	t.Run("null marks the field supplied but cleared", func(t *testing.T) {
		contact, err := NormalizeContactPayload(&ContactRequest{Phone: optNull()})
		require.NoError(t, err)
		assert.True(t, contact.HasPhone)
		assert.Nil(t, contact.Phone)
	})

	t.Run("raises field-specific type errors", func(t *testing.T) {
		cases := []struct {
			name    string
			req     ContactRequest
			message string
		}{
			{"phone", ContactRequest{Phone: optInvalid()}, "Phone must be a string when provided"},
			{"firstSignupEmail", ContactRequest{FirstSignupEmail: optInvalid()}, "First signup email must be a string when provided"},
			{"ownerName", ContactRequest{OwnerName: optInvalid()}, "Owner name must be a string when provided"},
			{"businessName", ContactRequest{BusinessName: optInvalid()}, "Business name must be a string when provided"},
			{"country", ContactRequest{Country: optInvalid()}, "Country must be a string when provided"},
			{"town", ContactRequest{Town: optInvalid()}, "Town must be a string when provided"},
			{"signupRole", ContactRequest{SignupRole: optInvalid()}, "Signup role must be a string when provided"},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				_, err := NormalizeContactPayload(&tc.req)
				callableErr := requireCallableError(t, err, CodeInvalidArgument)
				assert.Equal(t, tc.message, callableErr.Message)
			})
		}
	})

	t.Run("canonicalizes the signup role", func(t *testing.T) {
		cases := []struct {
			in   string
			want *string
		}{
			{"Owner", strPtr("owner")},
			{" team member ", strPtr("team-member")},
			{"team_member", strPtr("team-member")},
			{"TEAM", strPtr("team-member")},
			{"ceo", nil},
			{"", nil},
		}
		for _, tc := range cases {
			contact, err := NormalizeContactPayload(&ContactRequest{SignupRole: optString(tc.in)})
			require.NoError(t, err, "input %q", tc.in)
			assert.True(t, contact.HasSignupRole)
			if tc.want == nil {
				assert.Nil(t, contact.SignupRole, "input %q", tc.in)
			} else {
				require.NotNil(t, contact.SignupRole, "input %q", tc.in)
				assert.Equal(t, *tc.want, *contact.SignupRole, "input %q", tc.in)
			}
		}
	})
}

func TestDocumentFieldReaders(t *testing.T) {
	assert.Equal(t, "abc", optionalString(" abc "))
	assert.Equal(t, "", optionalString(42))
	assert.Equal(t, "", optionalString(nil))
	assert.Equal(t, "owner@example.com", optionalEmail(" Owner@Example.com "))

	ts := toTimestamp(timeutil.FromMillis(5_000))
	require.NotNil(t, ts)
	assert.Equal(t, int64(5_000), ts.ToMillis())

	ts = toTimestamp(map[string]any{"_millis": float64(7_000)})
	require.NotNil(t, ts)
	assert.Equal(t, int64(7_000), ts.ToMillis())

	assert.Nil(t, toTimestamp("2024-01-01"))
	assert.Nil(t, toTimestamp(map[string]any{"seconds": 12}))
	assert.Nil(t, toTimestamp(nil))
}

func strPtr(s string) *string { return &s }

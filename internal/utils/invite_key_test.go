package utils

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDeriveInvitationKey_Deterministic(t *testing.T) {
	first := DeriveInvitationKey("secret", 1, 2, 3)
	second := DeriveInvitationKey("secret", 1, 2, 3)

	require.Equal(t, first, second)
	require.Len(t, first, 64)

	_, err := hex.DecodeString(first)
	require.NoError(t, err)
}

func TestDeriveInvitationKey_DistinctInputsDiffer(t *testing.T) {
	base := DeriveInvitationKey("secret", 1, 2, 3)

	require.NotEqual(t, base, DeriveInvitationKey("secret", 9, 2, 3))
	require.NotEqual(t, base, DeriveInvitationKey("secret", 1, 9, 3))
	require.NotEqual(t, base, DeriveInvitationKey("secret", 1, 2, 9))
	require.NotEqual(t, base, DeriveInvitationKey("other", 1, 2, 3))

	// Swapping inviter and invitee must not map to the same key.
	require.NotEqual(t,
		DeriveInvitationKey("secret", 1, 2, 3),
		DeriveInvitationKey("secret", 1, 3, 2),
	)
}

func TestDeriveInvitationKey_FieldBoundariesAreUnambiguous(t *testing.T) {
	// (1, 23, 4) and (12, 3, 4) concatenate to the same digits; the separator
	// keeps them apart.
	require.NotEqual(t,
		DeriveInvitationKey("secret", 1, 23, 4),
		DeriveInvitationKey("secret", 12, 3, 4),
	)
}

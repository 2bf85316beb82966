package utils

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// DeriveInvitationKey derives the opaque invitation key for a
// (project, inviter, invitee) triple. The key is an HMAC-SHA256 over the
// canonical triple, keyed with a server-side secret: the same triple always
// maps to the same key, and distinct triples cannot collide.
func DeriveInvitationKey(secret string, projectID, inviterID, inviteeID uint64) string {
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d:%d:%d", projectID, inviterID, inviteeID)
	return hex.EncodeToString(mac.Sum(nil))
}

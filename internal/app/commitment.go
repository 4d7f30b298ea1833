package app

import (
	"crypto/sha256"
	"encoding/hex"

	"kentei-quiz-service/internal/domain"
)

// AnswerHash returns the lowercase hex SHA-256 of the normalized answer.
//
// The answer is always hashed in list form (trim, uppercase, sort, join with ",") so a
// client hashing its own one-element list gets the same digest. The digest only keeps
// the plaintext out of the timed-mode payload; the client compares digests and reports
// the outcome itself, so this is advisory and not an anti-cheat boundary.
func AnswerHash(a domain.Answer) string {
	sum := sha256.Sum256([]byte(joinNormalized(a.AsSet())))
	return hex.EncodeToString(sum[:])
}

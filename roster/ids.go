package roster

import "github.com/google/uuid"

// defaultIDGenerator issues record and audit entry identifiers.
// Tests inject a deterministic generator via WithIDGenerator.
func defaultIDGenerator() string {
	return uuid.NewString()
}

package eventstore

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// ComputeChecksum derives the integrity hash of an event from the fields that
// define its meaning: aggregate id, event type, payload bytes and timestamp.
// The timestamp is rendered in UTC RFC3339Nano, truncated to microseconds —
// the precision a TIMESTAMPTZ column keeps — so a hash computed at append
// time still matches after the row round-trips through the database,
// independent of the zone it comes back in.
func ComputeChecksum(aggregateID uuid.UUID, eventType string, payload json.RawMessage, timestamp time.Time) string {
	h := sha256.New()
	h.Write([]byte(aggregateID.String()))
	h.Write([]byte(eventType))
	h.Write(payload)
	h.Write([]byte(timestamp.UTC().Truncate(time.Microsecond).Format(time.RFC3339Nano)))
	return hex.EncodeToString(h.Sum(nil))
}

package ingestion

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"
)

// payloadHash fingerprints an import payload for idempotency checks.
//
// The encoding is a durable contract — changing it reclassifies every
// in-flight retry as a key conflict. Per item: the normalized values, absent
// optionals as null, amount at two decimals, posted_at in UTC RFC3339
// (nanoseconds when present), items in request order, object keys sorted
// (encoding/json sorts map keys), SHA-256 over the whole array, hex-encoded.
func payloadHash(items []TransactionInput) string {
	canonical := make([]map[string]any, len(items))
	for i, item := range items {
		entry := map[string]any{
			"amount":      item.Amount.StringFixed(2),
			"currency":    item.Currency,
			"description": nil,
			"external_id": nil,
			"posted_at":   item.PostedAt.UTC().Format(time.RFC3339Nano),
		}
		if item.Description != nil {
			entry["description"] = *item.Description
		}
		if item.ExternalID != nil {
			entry["external_id"] = *item.ExternalID
		}
		canonical[i] = entry
	}

	encoded, _ := json.Marshal(canonical)
	sum := sha256.Sum256(encoded)
	return hex.EncodeToString(sum[:])
}

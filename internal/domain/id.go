package domain

import (
	"strings"

	"github.com/google/uuid"
)

var idNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("urn:bakery-fulfillment"))

// StableID derives a deterministic UUID for an administratively named
// entity, so re-running a seed or import updates the same row.
func StableID(kind, name string) string {
	key := kind + ":" + strings.ToLower(strings.TrimSpace(name))
	return uuid.NewSHA1(idNamespace, []byte(key)).String()
}

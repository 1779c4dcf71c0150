package network

import (
	"strings"

	"github.com/google/uuid"
)

// cellIDPrefix keeps cell ids visually distinct from message ids in logs.
const cellIDPrefix = "cell-"

// newCellID produces a short unique cell identifier. Eight hex characters of a
// UUID are plenty for a MaxCells-bounded population; the registry retries on
// the unlikely collision.
func newCellID() string {
	raw := strings.ReplaceAll(uuid.New().String(), "-", "")
	return cellIDPrefix + raw[:8]
}

// newMessageID produces a unique message identifier.
func newMessageID() string {
	return uuid.New().String()
}

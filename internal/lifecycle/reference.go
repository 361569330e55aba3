package lifecycle

import (
	"strconv"
	"strings"
	"time"

	"sentra/backend/internal/config"

	"github.com/google/uuid"
)

// ReferenceGenerator produces human-readable incident reference codes.
type ReferenceGenerator func(now time.Time) string

// NewReference returns SENTRA-<base36 unix millis>-<6 random hex chars>.
// Codes sort by creation time; the random suffix separates codes minted in
// the same millisecond.
func NewReference(now time.Time) string {
	stamp := strings.ToUpper(strconv.FormatInt(now.UnixMilli(), 36))
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:6])
	return config.ReferencePrefix + "-" + stamp + "-" + suffix
}

package utils

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lithammer/shortuuid/v3"
)

// ==================== UUID & TOKEN ====================

func GenerateUUID() uuid.UUID {
	return uuid.New()
}

func ParseUUID(uuidStr string) (uuid.UUID, error) {
	return uuid.Parse(uuidStr)
}

func GenerateSessionToken() uuid.UUID {
	return uuid.New()
}

// ==================== REFERENCES ====================

// GenerateOrderID returns a booking order reference.
// Format: BK-YYYYMMDD-XXXXXXXX
func GenerateOrderID() string {
	return fmt.Sprintf("BK-%s-%s", time.Now().Format("20060102"), shortSuffix(8))
}

// GenerateTicketReference returns a support ticket reference. Format: TKT-XXXXXXXX
func GenerateTicketReference() string {
	return "TKT-" + shortSuffix(8)
}

func shortSuffix(n int) string {
	id := strings.ToUpper(shortuuid.New())
	if len(id) > n {
		id = id[:n]
	}
	return id
}

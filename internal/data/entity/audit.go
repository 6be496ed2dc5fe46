package entity

import (
	"encoding/json"

	"github.com/google/uuid"
)

type AuditLog struct {
	BaseSimple
	ActorID    *uuid.UUID      `db:"actor_id"`
	Action     string          `db:"action"`
	EntityType string          `db:"entity_type"`
	EntityID   *string         `db:"entity_id"`
	Details    json.RawMessage `db:"details"`
	IPAddress  *string         `db:"ip_address"`
}

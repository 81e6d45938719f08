package tenant

import (
	"time"

	"github.com/google/uuid"
)

// Organization is a tenant. Every member belongs through exactly one role.
type Organization struct {
	ID        uuid.UUID
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Member ties a user to an organization with a role.
type Member struct {
	ID        uuid.UUID
	OrgID     uuid.UUID
	UserID    uuid.UUID
	RoleID    uuid.UUID
	CreatedAt time.Time
}

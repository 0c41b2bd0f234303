package auth

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// User is the persisted identity model. Username is unique and immutable
// after creation; the entitlement set is only ever read by the auth core.
type User struct {
	bun.BaseModel `bun:"table:users,alias:usr"`
	ID            uuid.UUID      `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Username      string         `bun:"username,notnull,unique" json:"username,omitempty"`
	Nickname      string         `bun:"nickname,notnull" json:"nickname,omitempty"`
	PasswordHash  string         `bun:"password_hash,notnull" json:"-"`
	Activated     bool           `bun:"activated,notnull" json:"activated,omitempty"`
	Entitlements  EntitlementSet `bun:"entitlements,type:text" json:"entitlements,omitempty"`
	CreatedAt     *time.Time     `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time     `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
	DeletedAt     *time.Time     `bun:"deleted_at,soft_delete,nullzero" json:"deleted_at,omitempty"`
}

// HasEntitlement checks the stored entitlement set
func (u *User) HasEntitlement(e Entitlement) bool {
	return u.Entitlements.Has(e)
}

// UserProjection is the outward-facing shape of a user: no password
// material, ever.
type UserProjection struct {
	Username     string         `json:"username"`
	Nickname     string         `json:"nickname"`
	Entitlements EntitlementSet `json:"entitlements"`
}

// NewUserProjection maps a stored user to its public projection
func NewUserProjection(user *User) *UserProjection {
	if user == nil {
		return nil
	}

	return &UserProjection{
		Username:     user.Username,
		Nickname:     user.Nickname,
		Entitlements: user.Entitlements,
	}
}

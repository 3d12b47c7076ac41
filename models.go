package account

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// User is the account identity record
type User struct {
	bun.BaseModel     `bun:"table:users,alias:usr"`
	ID                uuid.UUID      `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Role              UserRole       `bun:"user_role,notnull" json:"user_role,omitempty"`
	Name              string         `bun:"name,notnull" json:"name,omitempty"`
	Email             string         `bun:"email,notnull,unique" json:"email,omitempty"`
	PasswordHash      string         `bun:"password_hash" json:"password_hash,omitempty"`
	ConfirmationToken string         `bun:"confirmation_token" json:"confirmation_token,omitempty"`
	Confirmed         bool           `bun:"is_confirmed" json:"is_confirmed,omitempty"`
	SuperAdmin        bool           `bun:"is_super_admin" json:"is_super_admin,omitempty"`
	Locale            string         `bun:"locale" json:"locale,omitempty"`
	Timezone          string         `bun:"timezone" json:"timezone,omitempty"`
	LastAccessAt      *time.Time     `bun:"last_access_at,nullzero" json:"last_access_at,omitempty"`
	SocialLogins      []*SocialLogin `bun:"rel:has-many,join:id=user_id" json:"social_logins,omitempty"`
	CreatedAt         *time.Time     `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt         *time.Time     `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
	DeletedAt         *time.Time     `bun:"deleted_at,soft_delete,nullzero" json:"deleted_at,omitempty"`
}

// Provider returns the loaded social login for the given provider, if any.
// Only inspects the relation already loaded on the record; it does not
// hit the database.
func (u *User) Provider(name string) *SocialLogin {
	for _, link := range u.SocialLogins {
		if link != nil && link.Provider == name {
			return link
		}
	}
	return nil
}

// SocialLogin links a user to an external identity provider.
// Links are append only: created the first time a provider authenticates
// the user and never updated afterwards.
type SocialLogin struct {
	bun.BaseModel  `bun:"table:social_logins,alias:sl"`
	ID             uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	UserID         uuid.UUID  `bun:"user_id,notnull,type:uuid" json:"user_id,omitempty"`
	Provider       string     `bun:"provider,notnull" json:"provider,omitempty"`
	ProviderUserID string     `bun:"provider_user_id,notnull" json:"provider_user_id,omitempty"`
	CreatedAt      *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
}

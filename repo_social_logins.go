package account

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// SocialLogins persists provider links. Lookups return (nil, nil) when no
// link exists; links are append only.
type SocialLogins interface {
	FindByProviderID(ctx context.Context, provider, providerUserID string) (*SocialLogin, error)
	FindByUserAndProvider(ctx context.Context, userID uuid.UUID, provider string) (*SocialLogin, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*SocialLogin, error)
	Create(ctx context.Context, link *SocialLogin) (*SocialLogin, error)
}

type socialLogins struct {
	db *bun.DB
}

var _ SocialLogins = (*socialLogins)(nil)

func NewSocialLoginsRepository(db *bun.DB) SocialLogins {
	return &socialLogins{db: db}
}

func (r *socialLogins) FindByProviderID(ctx context.Context, provider, providerUserID string) (*SocialLogin, error) {
	link := &SocialLogin{}
	err := r.db.NewSelect().
		Model(link).
		Where("?TableAlias.provider = ? AND ?TableAlias.provider_user_id = ?", provider, providerUserID).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return link, nil
}

func (r *socialLogins) FindByUserAndProvider(ctx context.Context, userID uuid.UUID, provider string) (*SocialLogin, error) {
	link := &SocialLogin{}
	err := r.db.NewSelect().
		Model(link).
		Where("?TableAlias.user_id = ? AND ?TableAlias.provider = ?", userID, provider).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return link, nil
}

func (r *socialLogins) ListByUser(ctx context.Context, userID uuid.UUID) ([]*SocialLogin, error) {
	var links []*SocialLogin
	err := r.db.NewSelect().
		Model(&links).
		Where("?TableAlias.user_id = ?", userID).
		Order("created_at ASC").
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return []*SocialLogin{}, nil
		}
		return nil, err
	}

	return links, nil
}

func (r *socialLogins) Create(ctx context.Context, link *SocialLogin) (*SocialLogin, error) {
	if link.ID == uuid.Nil {
		link.ID = uuid.New()
	}
	if link.CreatedAt == nil {
		now := time.Now()
		link.CreatedAt = &now
	}

	_, err := r.db.NewInsert().
		Model(link).
		Exec(ctx)
	if err != nil {
		return nil, err
	}

	return link, nil
}

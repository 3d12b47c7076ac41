package account

import (
	"context"
	"time"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

var trackLastAccessSQL = `UPDATE "users" AS "usr"
SET
	"last_access_at" = ?
WHERE
	("usr".id = ?)
	AND "usr"."deleted_at" IS NULL;`

type Users interface {
	repository.Repository[*User]

	Register(ctx context.Context, user *User) (*User, error)
	RegisterTx(ctx context.Context, tx bun.IDB, user *User) (*User, error)
	Create(ctx context.Context, record *User, criteria ...repository.InsertCriteria) (*User, error)
	CreateTx(ctx context.Context, tx bun.IDB, record *User, criteria ...repository.InsertCriteria) (*User, error)

	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByEmailTx(ctx context.Context, tx bun.IDB, email string) (*User, error)
	EmailTaken(ctx context.Context, email string, exclude uuid.UUID) (bool, error)

	Save(ctx context.Context, user *User) (*User, error)
	SaveTx(ctx context.Context, tx bun.IDB, user *User) (*User, error)

	TrackLastAccess(ctx context.Context, user *User, at time.Time) error
	TrackLastAccessTx(ctx context.Context, tx bun.IDB, user *User, at time.Time) error

	DeleteAccount(ctx context.Context, user *User) error
	DeleteAccountTx(ctx context.Context, tx bun.IDB, user *User) error
}

type users struct {
	repository.Repository[*User]
	db *bun.DB
}

var (
	_ Users                        = (*users)(nil)
	_ repository.Repository[*User] = (*users)(nil)
)

func NewUsersRepository(db *bun.DB) Users {
	repo := repository.NewRepository[*User](db, repository.ModelHandlers[*User]{
		NewRecord: func() *User { return &User{} },
		GetID: func(u *User) uuid.UUID {
			if u == nil {
				return uuid.Nil
			}
			return u.ID
		},
		SetID: func(u *User, id uuid.UUID) {
			if u != nil {
				u.ID = id
			}
		},
		GetIdentifier: func() string {
			return "email"
		},
	})

	return &users{
		Repository: repo,
		db:         db,
	}
}

func (a *users) Register(ctx context.Context, user *User) (*User, error) {
	return a.RegisterTx(ctx, a.db, user)
}

func (a *users) RegisterTx(ctx context.Context, tx bun.IDB, user *User) (*User, error) {
	return a.CreateTx(ctx, tx, user)
}

func (a *users) Create(ctx context.Context, record *User, criteria ...repository.InsertCriteria) (*User, error) {
	return a.CreateTx(ctx, a.db, record, criteria...)
}

func (a *users) CreateTx(ctx context.Context, tx bun.IDB, record *User, criteria ...repository.InsertCriteria) (*User, error) {
	prepareUserDefaults(record)
	return a.Repository.CreateTx(ctx, tx, record, criteria...)
}

func (a *users) GetByEmail(ctx context.Context, email string) (*User, error) {
	return a.GetByEmailTx(ctx, a.db, email)
}

func (a *users) GetByEmailTx(ctx context.Context, tx bun.IDB, email string) (*User, error) {
	record := &User{}
	err := tx.NewSelect().
		Model(record).
		Where("?TableAlias.email = ?", email).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{
					"email": email,
				})
		}
		return nil, err
	}

	return record, nil
}

// EmailTaken reports whether a live user other than exclude already owns
// the email.
func (a *users) EmailTaken(ctx context.Context, email string, exclude uuid.UUID) (bool, error) {
	q := a.db.NewSelect().
		Model((*User)(nil)).
		Where("?TableAlias.email = ?", email)

	if exclude != uuid.Nil {
		q = q.Where("?TableAlias.id != ?", exclude)
	}

	return q.Exists(ctx)
}

func (a *users) Save(ctx context.Context, user *User) (*User, error) {
	return a.SaveTx(ctx, a.db, user)
}

func (a *users) SaveTx(ctx context.Context, tx bun.IDB, user *User) (*User, error) {
	return a.Repository.UpdateTx(ctx, tx, user, repository.UpdateByID(user.ID.String()))
}

func (a *users) TrackLastAccess(ctx context.Context, user *User, at time.Time) error {
	return a.TrackLastAccessTx(ctx, a.db, user, at)
}

func (a *users) TrackLastAccessTx(ctx context.Context, tx bun.IDB, user *User, at time.Time) error {
	// NOTE: Updating using the ORM wont reset last_access_at when the
	// record carries zero values for other columns, use raw SQL.
	_, err := tx.NewRaw(trackLastAccessSQL, at, user.ID).Exec(ctx)
	return err
}

func (a *users) DeleteAccount(ctx context.Context, user *User) error {
	return a.DeleteAccountTx(ctx, a.db, user)
}

// DeleteAccountTx soft deletes the user row. The model carries a
// soft_delete tag so the record is retained with deleted_at stamped.
func (a *users) DeleteAccountTx(ctx context.Context, tx bun.IDB, user *User) error {
	res, err := tx.NewDelete().
		Model((*User)(nil)).
		Where("?TableAlias.id = ?", user.ID).
		Exec(ctx)
	if err != nil {
		return err
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return repository.NewRecordNotFound().
			WithMetadata(map[string]any{
				"id": user.ID.String(),
			})
	}

	return nil
}

func prepareUserDefaults(record *User) {
	if record == nil {
		return
	}

	if record.Role == "" {
		record.Role = RoleMember
	}

	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
}

package account

import (
	"context"
	"fmt"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
)

// RegisterInput holds the candidate profile fields for a new account.
type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UpdateInput carries the mutable profile fields. Empty fields are left
// unchanged.
type UpdateInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Locale   string `json:"locale"`
	Timezone string `json:"timezone"`
}

// SocialProfile is the profile an external identity provider reports
// after authenticating a user.
type SocialProfile struct {
	ID    string
	Email string
	Name  string
}

// LookupEmail returns the email used to unify accounts across providers:
// the provider supplied address when present, otherwise a deterministic
// placeholder so repeated logins from the same provider and id resolve to
// the same account.
func (p SocialProfile) LookupEmail(provider string) string {
	if p.Email != "" {
		return p.Email
	}
	return fmt.Sprintf("%s@%s.com", p.ID, provider)
}

// AccountService orchestrates registration, the post authentication login
// hook, social identity resolution and the self service account
// mutations. Every operation takes the acting user explicitly; there is
// no ambient current user.
type AccountService struct {
	repo     RepositoryManager
	settings Settings
	notifier Notifier
	logger   Logger
	activity ActivitySink
	now      func() time.Time
	newToken func() string
}

func NewAccountService(repo RepositoryManager, settings Settings, notifier Notifier) *AccountService {
	return &AccountService{
		repo:     repo,
		settings: settings,
		notifier: notifier,
		logger:   defLogger{},
		activity: noopActivitySink{},
		now:      time.Now,
		newToken: NewConfirmationToken,
	}
}

func (s *AccountService) WithLogger(logger Logger) *AccountService {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// WithClock injects a custom clock (useful for tests).
func (s *AccountService) WithClock(clock func() time.Time) *AccountService {
	if clock != nil {
		s.now = clock
	}
	return s
}

// WithTokenSource overrides how confirmation tokens are generated.
func (s *AccountService) WithTokenSource(fn func() string) *AccountService {
	if fn != nil {
		s.newToken = fn
	}
	return s
}

// WithActivitySink routes account lifecycle events to an audit sink.
func (s *AccountService) WithActivitySink(sink ActivitySink) *AccountService {
	s.activity = normalizeActivitySink(sink)
	return s
}

func (s *AccountService) record(ctx context.Context, event ActivityEvent) {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = s.now()
	}
	if err := s.activity.Record(ctx, event); err != nil {
		s.logger.Warn("activity sink rejected %s: %v", event.EventType, err)
	}
}

// Register creates a new account and sends the confirmation token to its
// email address. Uniqueness violations surface from the store unchanged.
func (s *AccountService) Register(ctx context.Context, input RegisterInput) (*User, error) {
	hash, err := HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	user, err := s.repo.Users().Register(ctx, &User{
		Name:         input.Name,
		Email:        input.Email,
		PasswordHash: hash,
	})
	if err != nil {
		return nil, err
	}

	if err := s.sendConfirmationTo(ctx, user); err != nil {
		return nil, err
	}

	s.record(ctx, ActivityEvent{
		EventType: ActivityEventRegistered,
		Actor:     ActorRef{ID: user.ID.String(), Name: user.Name},
		UserID:    user.ID.String(),
	})

	return user, nil
}

// Login runs after successful authentication: it stamps the last access
// time and materializes the user's permission set into the session for
// downstream authorization checks.
func (s *AccountService) Login(ctx context.Context, sess SessionStore, user *User) (*User, error) {
	record, err := s.loadUser(ctx, user)
	if err != nil {
		return nil, err
	}

	now := s.now()
	record.LastAccessAt = &now
	if err := s.repo.Users().TrackLastAccess(ctx, record, now); err != nil {
		return nil, wrapPersistence(err, "could not update last access")
	}

	sess.Set(SessionKeyPermissions, RolePermissions(record.Role))

	s.record(ctx, ActivityEvent{
		EventType:  ActivityEventLoginSuccess,
		Actor:      ActorRef{ID: record.ID.String(), Name: record.Name},
		UserID:     record.ID.String(),
		OccurredAt: now,
	})

	return record, nil
}

// FindOrCreateSocial resolves an external profile to a user, keyed by
// email. The account is created pre confirmed when registration is open;
// the provider link is appended lazily the first time a provider
// authenticates the user. Two providers reporting the same email resolve
// to the same account on purpose.
func (s *AccountService) FindOrCreateSocial(ctx context.Context, provider string, profile SocialProfile) (*User, error) {
	email := profile.LookupEmail(provider)

	user, err := s.repo.Users().GetByEmail(ctx, email)
	if err != nil {
		if !repository.IsRecordNotFound(err) {
			return nil, err
		}

		if !s.settings.RegistrationOpen() {
			return nil, ErrRegistrationDisabled
		}

		user, err = s.repo.Users().Register(ctx, &User{
			Name:      profile.Name,
			Email:     email,
			Confirmed: true,
		})
		if err != nil {
			return nil, err
		}
	}

	link, err := s.repo.SocialLogins().FindByUserAndProvider(ctx, user.ID, provider)
	if err != nil {
		return nil, wrapPersistence(err, "could not look up social login")
	}

	if link == nil {
		if _, err := s.repo.SocialLogins().Create(ctx, &SocialLogin{
			UserID:         user.ID,
			Provider:       provider,
			ProviderUserID: profile.ID,
		}); err != nil {
			return nil, wrapPersistence(err, "could not link social login")
		}
	}

	s.record(ctx, ActivityEvent{
		EventType: ActivityEventSocialResolved,
		Actor:     ActorRef{ID: user.ID.String(), Name: user.Name},
		UserID:    user.ID.String(),
		Metadata:  map[string]any{"provider": provider},
	})

	return user, nil
}

// Update applies the allow-listed profile fields to the acting user's
// account. Changing the email re-checks uniqueness and resets the
// confirmed flag, triggering a fresh confirmation token.
func (s *AccountService) Update(ctx context.Context, actor *User, input UpdateInput) (*User, error) {
	user, err := s.loadUser(ctx, actor)
	if err != nil {
		return nil, err
	}

	if input.Name != "" {
		user.Name = input.Name
	}
	if input.Locale != "" {
		user.Locale = input.Locale
	}
	if input.Timezone != "" {
		user.Timezone = input.Timezone
	}

	emailChanged := input.Email != "" && input.Email != user.Email
	if emailChanged {
		taken, err := s.repo.Users().EmailTaken(ctx, input.Email, user.ID)
		if err != nil {
			return nil, wrapPersistence(err, "could not check email uniqueness")
		}
		if taken {
			return nil, ErrEmailTaken.WithMetadata(map[string]any{
				"email": input.Email,
			})
		}

		user.Email = input.Email
		user.Confirmed = false
	}

	if _, err := s.repo.Users().Save(ctx, user); err != nil {
		return nil, wrapPersistence(err, "could not update account")
	}

	if emailChanged {
		if err := s.sendConfirmationTo(ctx, user); err != nil {
			return nil, err
		}
	}

	return user, nil
}

// ChangePassword stores a new password hash. It succeeds when no password
// is set yet (social only accounts) or when oldPassword matches the
// stored hash.
func (s *AccountService) ChangePassword(ctx context.Context, actor *User, oldPassword, newPassword string) error {
	user, err := s.loadUser(ctx, actor)
	if err != nil {
		return err
	}

	if user.PasswordHash != "" {
		if err := ComparePasswordAndHash(oldPassword, user.PasswordHash); err != nil {
			return ErrPasswordMismatch
		}
	}

	hash, err := HashPassword(newPassword)
	if err != nil {
		return err
	}

	user.PasswordHash = hash
	if _, err := s.repo.Users().Save(ctx, user); err != nil {
		return wrapPersistence(err, "could not change password")
	}

	return nil
}

// SendConfirmation regenerates the acting user's confirmation token and
// notifies them.
func (s *AccountService) SendConfirmation(ctx context.Context, actor *User) error {
	user, err := s.loadUser(ctx, actor)
	if err != nil {
		return err
	}

	return s.sendConfirmationTo(ctx, user)
}

// ConfirmEmail marks the account confirmed when the token matches the
// stored one exactly. A mismatch takes no action and reports no error.
func (s *AccountService) ConfirmEmail(ctx context.Context, actor *User, token string) error {
	user, err := s.loadUser(ctx, actor)
	if err != nil {
		return err
	}

	if token == "" || user.ConfirmationToken != token {
		s.logger.Debug("confirmation token mismatch for user %s", user.ID)
		return nil
	}

	user.Confirmed = true
	if _, err := s.repo.Users().Save(ctx, user); err != nil {
		return wrapPersistence(err, "could not confirm email")
	}

	return nil
}

// Delete removes the acting user's own account. The super admin account
// is protected and can never be deleted.
func (s *AccountService) Delete(ctx context.Context, actor *User) error {
	user, err := s.loadUser(ctx, actor)
	if err != nil {
		return err
	}

	if user.SuperAdmin {
		return ErrProtectedAccount
	}

	if err := s.repo.Users().DeleteAccount(ctx, user); err != nil {
		return wrapPersistence(err, "could not delete account")
	}

	s.record(ctx, ActivityEvent{
		EventType: ActivityEventDeleted,
		Actor:     ActorRef{ID: user.ID.String(), Name: user.Name},
		UserID:    user.ID.String(),
	})

	return nil
}

func (s *AccountService) sendConfirmationTo(ctx context.Context, user *User) error {
	user.ConfirmationToken = s.newToken()
	if _, err := s.repo.Users().Save(ctx, user); err != nil {
		return wrapPersistence(err, "could not store confirmation token")
	}

	if err := s.notifier.SendConfirmation(ctx, user, user.ConfirmationToken); err != nil {
		// fire and forget, delivery problems never bubble up
		s.logger.Warn("confirmation notification failed: %v", err)
	}

	return nil
}

func (s *AccountService) loadUser(ctx context.Context, actor *User) (*User, error) {
	if actor == nil {
		return nil, goerrors.New("acting user is required", goerrors.CategoryBadInput).
			WithCode(goerrors.CodeBadRequest)
	}
	return s.repo.Users().GetByIdentifier(ctx, actor.ID.String())
}

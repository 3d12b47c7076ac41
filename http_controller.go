package account

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
)

// ControllerRoutes are the paths the account endpoints mount on.
type ControllerRoutes struct {
	Register      string
	Login         string
	Account       string
	Password      string
	Confirm       string
	Confirmation  string
	Impersonate   string
	Unimpersonate string
}

// Controller exposes the account service over HTTP. It owns none of the
// domain rules: it binds payloads, validates them, resolves the acting
// user and maps domain errors to status codes.
type Controller struct {
	Logger       Logger
	Service      *AccountService
	Impersonator *Impersonator
	Tokens       *TokenService
	Repo         RepositoryManager
	Sessions     *session.Store
	CookieName   string
	Routes       *ControllerRoutes
}

func NewController(service *AccountService, impersonator *Impersonator, tokens *TokenService, repo RepositoryManager, sessions *session.Store) *Controller {
	return &Controller{
		Logger:       defLogger{},
		Service:      service,
		Impersonator: impersonator,
		Tokens:       tokens,
		Repo:         repo,
		Sessions:     sessions,
		CookieName:   "auth_token",
		Routes: &ControllerRoutes{
			Register:      "/register",
			Login:         "/login",
			Account:       "/account",
			Password:      "/account/password",
			Confirm:       "/account/confirm/:token",
			Confirmation:  "/account/confirmation",
			Impersonate:   "/admin/impersonate/:id",
			Unimpersonate: "/admin/impersonate",
		},
	}
}

// RegisterRoutes mounts the account endpoints on the app.
func RegisterRoutes(app *fiber.App, c *Controller) {
	app.Post(c.Routes.Register, c.RegisterPost)
	app.Post(c.Routes.Login, c.LoginPost)

	app.Put(c.Routes.Account, c.RequireUser, c.AccountPut)
	app.Delete(c.Routes.Account, c.RequireUser, c.AccountDelete)
	app.Put(c.Routes.Password, c.RequireUser, c.PasswordPut)
	app.Get(c.Routes.Confirm, c.RequireUser, c.ConfirmGet)
	app.Post(c.Routes.Confirmation, c.RequireUser, c.ConfirmationPost)

	app.Post(c.Routes.Impersonate, c.RequireUser, c.ImpersonatePost)
	app.Delete(c.Routes.Unimpersonate, c.RequireUser, c.UnimpersonateDelete)
}

// RegisterPayload is the registration form payload
type RegisterPayload struct {
	Name     string `json:"name" form:"name"`
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

func (r RegisterPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.Email, validation.Required, validation.Length(6, 100), is.Email),
		validation.Field(&r.Password, validation.Required, validation.Length(10, 100)),
	)
}

// LoginPayload is the credential form payload
type LoginPayload struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

func (r LoginPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required),
	)
}

// AccountPayload carries the mutable profile fields
type AccountPayload struct {
	Name     string `json:"name" form:"name"`
	Email    string `json:"email" form:"email"`
	Locale   string `json:"locale" form:"locale"`
	Timezone string `json:"timezone" form:"timezone"`
}

func (r AccountPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Length(1, 200)),
		validation.Field(&r.Email, validation.Length(6, 100), is.Email),
		validation.Field(&r.Locale, validation.Length(2, 35)),
		validation.Field(&r.Timezone, validation.Length(1, 64)),
	)
}

// PasswordPayload is the password change form payload
type PasswordPayload struct {
	OldPassword string `json:"old_password" form:"old_password"`
	NewPassword string `json:"new_password" form:"new_password"`
}

func (r PasswordPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.NewPassword, validation.Required, validation.Length(10, 100)),
	)
}

// RequireUser resolves the acting user from the session and makes it
// available to downstream handlers.
func (ct *Controller) RequireUser(c *fiber.Ctx) error {
	sess, err := ct.session(c)
	if err != nil {
		return ct.renderError(c, err)
	}

	id, ok := CurrentUserID(sess)
	if !ok {
		return c.SendStatus(fiber.StatusUnauthorized)
	}

	user, err := ct.Repo.Users().GetByIdentifier(c.UserContext(), id.String())
	if err != nil {
		return ct.renderError(c, err)
	}

	c.Locals("user", user)
	c.SetUserContext(WithContext(c.UserContext(), user))

	return c.Next()
}

func (ct *Controller) RegisterPost(c *fiber.Ctx) error {
	payload := RegisterPayload{}
	if err := c.BodyParser(&payload); err != nil {
		return c.SendStatus(fiber.StatusBadRequest)
	}

	if err := payload.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	user, err := ct.Service.Register(c.UserContext(), RegisterInput{
		Name:     payload.Name,
		Email:    payload.Email,
		Password: payload.Password,
	})
	if err != nil {
		return ct.renderError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(user)
}

func (ct *Controller) LoginPost(c *fiber.Ctx) error {
	payload := LoginPayload{}
	if err := c.BodyParser(&payload); err != nil {
		return c.SendStatus(fiber.StatusBadRequest)
	}

	if err := payload.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	user, err := ct.Repo.Users().GetByEmail(c.UserContext(), payload.Email)
	if err != nil {
		return c.SendStatus(fiber.StatusUnauthorized)
	}

	if err := ComparePasswordAndHash(payload.Password, user.PasswordHash); err != nil {
		return c.SendStatus(fiber.StatusUnauthorized)
	}

	sess, err := ct.session(c)
	if err != nil {
		return ct.renderError(c, err)
	}

	sess.Set(SessionKeyUserID, user.ID.String())

	if _, err := ct.Service.Login(c.UserContext(), sess, user); err != nil {
		return ct.renderError(c, err)
	}

	if err := sess.Save(); err != nil {
		return ct.renderError(c, err)
	}

	ct.refreshIdentityCookie(c, user)

	return c.JSON(user)
}

func (ct *Controller) AccountPut(c *fiber.Ctx) error {
	actor, ok := actingUser(c)
	if !ok {
		return c.SendStatus(fiber.StatusUnauthorized)
	}

	payload := AccountPayload{}
	if err := c.BodyParser(&payload); err != nil {
		return c.SendStatus(fiber.StatusBadRequest)
	}

	if err := payload.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	user, err := ct.Service.Update(c.UserContext(), actor, UpdateInput{
		Name:     payload.Name,
		Email:    payload.Email,
		Locale:   payload.Locale,
		Timezone: payload.Timezone,
	})
	if err != nil {
		return ct.renderError(c, err)
	}

	return c.JSON(user)
}

func (ct *Controller) PasswordPut(c *fiber.Ctx) error {
	actor, ok := actingUser(c)
	if !ok {
		return c.SendStatus(fiber.StatusUnauthorized)
	}

	payload := PasswordPayload{}
	if err := c.BodyParser(&payload); err != nil {
		return c.SendStatus(fiber.StatusBadRequest)
	}

	if err := payload.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	if err := ct.Service.ChangePassword(c.UserContext(), actor, payload.OldPassword, payload.NewPassword); err != nil {
		return ct.renderError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (ct *Controller) ConfirmGet(c *fiber.Ctx) error {
	actor, ok := actingUser(c)
	if !ok {
		return c.SendStatus(fiber.StatusUnauthorized)
	}

	if err := ct.Service.ConfirmEmail(c.UserContext(), actor, c.Params("token")); err != nil {
		return ct.renderError(c, err)
	}

	return c.Redirect(string(RedirectHome), fiber.StatusSeeOther)
}

func (ct *Controller) ConfirmationPost(c *fiber.Ctx) error {
	actor, ok := actingUser(c)
	if !ok {
		return c.SendStatus(fiber.StatusUnauthorized)
	}

	if err := ct.Service.SendConfirmation(c.UserContext(), actor); err != nil {
		return ct.renderError(c, err)
	}

	return c.SendStatus(fiber.StatusAccepted)
}

func (ct *Controller) AccountDelete(c *fiber.Ctx) error {
	actor, ok := actingUser(c)
	if !ok {
		return c.SendStatus(fiber.StatusUnauthorized)
	}

	if err := ct.Service.Delete(c.UserContext(), actor); err != nil {
		return ct.renderError(c, err)
	}

	sess, err := ct.session(c)
	if err == nil {
		sess.Forget(SessionKeyUserID)
		_ = sess.Save()
	}
	ct.clearIdentityCookie(c)

	return c.SendStatus(fiber.StatusNoContent)
}

func (ct *Controller) ImpersonatePost(c *fiber.Ctx) error {
	actor, ok := actingUser(c)
	if !ok {
		return c.SendStatus(fiber.StatusUnauthorized)
	}

	if !RoleIsAtLeast(actor.Role, RoleAdmin) {
		return c.SendStatus(fiber.StatusForbidden)
	}

	target, err := ct.Repo.Users().GetByIdentifier(c.UserContext(), c.Params("id"))
	if err != nil {
		return ct.renderError(c, err)
	}

	sess, err := ct.session(c)
	if err != nil {
		return ct.renderError(c, err)
	}

	redirect, err := ct.Impersonator.LoginAs(c.UserContext(), sess, actor, target)
	if err != nil {
		return ct.renderError(c, err)
	}

	if err := sess.Save(); err != nil {
		return ct.renderError(c, err)
	}

	if redirect == RedirectHome {
		ct.refreshIdentityCookie(c, target)
	}

	return c.Redirect(string(redirect), fiber.StatusSeeOther)
}

func (ct *Controller) UnimpersonateDelete(c *fiber.Ctx) error {
	sess, err := ct.session(c)
	if err != nil {
		return ct.renderError(c, err)
	}

	redirect, err := ct.Impersonator.LogoutAs(c.UserContext(), sess)
	if err != nil {
		return ct.renderError(c, err)
	}

	if err := sess.Save(); err != nil {
		return ct.renderError(c, err)
	}

	if id, ok := CurrentUserID(sess); ok {
		if user, err := ct.Repo.Users().GetByIdentifier(c.UserContext(), id.String()); err == nil {
			ct.refreshIdentityCookie(c, user)
		}
	}

	return c.Redirect(string(redirect), fiber.StatusSeeOther)
}

func (ct *Controller) session(c *fiber.Ctx) (*FiberSession, error) {
	sess, err := ct.Sessions.Get(c)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "could not open session")
	}
	return NewFiberSession(sess), nil
}

func (ct *Controller) refreshIdentityCookie(c *fiber.Ctx, user *User) {
	if ct.Tokens == nil {
		return
	}

	token, err := ct.Tokens.Generate(user)
	if err != nil {
		ct.Logger.Warn("identity cookie refresh failed: %v", err)
		return
	}

	c.Cookie(&fiber.Cookie{
		Name:     ct.CookieName,
		Value:    token,
		Expires:  time.Now().Add(24 * time.Hour),
		HTTPOnly: true,
		Secure:   true,
		SameSite: "Lax",
	})
}

func (ct *Controller) clearIdentityCookie(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     ct.CookieName,
		Value:    "",
		Expires:  time.Now().Add(-time.Hour * (24 * 365)),
		HTTPOnly: true,
		Secure:   true,
		SameSite: "Lax",
	})
}

func (ct *Controller) renderError(c *fiber.Ctx, err error) error {
	if repository.IsRecordNotFound(err) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not found"})
	}

	var rich *goerrors.Error
	if !goerrors.As(err, &rich) {
		rich = goerrors.Wrap(err, goerrors.CategoryInternal, "An unexpected server error occurred").
			WithCode(goerrors.CodeInternal)
	}

	ct.Logger.Error("request failed: %s (%s)", rich.Message, rich.TextCode)

	status := rich.Code
	if status == 0 {
		status = fiber.StatusInternalServerError
	}

	return c.Status(status).JSON(fiber.Map{
		"error":     rich.Message,
		"text_code": rich.TextCode,
	})
}

func actingUser(c *fiber.Ctx) (*User, bool) {
	user, ok := c.Locals("user").(*User)
	return user, ok
}

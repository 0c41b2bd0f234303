package auth

import (
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-router"
)

// TokenResponse is the authenticate endpoint payload
type TokenResponse struct {
	Token string `json:"token"`
}

// ErrorResponse is the JSON error envelope
type ErrorResponse struct {
	Message string `json:"message"`
}

func RegisterAuthRoutes[T any](app router.Router[T], controller *AuthController) {
	app.
		Get(controller.Routes.Hello, controller.Hello).
		SetName("hello.get")

	app.
		Post(controller.Routes.Authenticate, controller.Authenticate).
		SetName("authenticate.post")

	app.
		Post(controller.Routes.Signup, controller.Signup).
		SetName("signup.post")

	app.
		Get(controller.Routes.Me, controller.Me).
		SetName("user-me.get")

	app.
		Get(fmt.Sprintf("%s/:username", controller.Routes.Me), controller.UserByUsername).
		SetName("user-by-name.get")
}

type AuthControllerRoutes struct {
	Hello        string
	Authenticate string
	Signup       string
	Me           string
}

type AuthController struct {
	Debug      bool
	Logger     Logger
	Repo       RepositoryManager
	Routes     *AuthControllerRoutes
	Auther     Authenticator
	AuthScheme string
	ContextKey string
}

type AuthControllerOption func(*AuthController) *AuthController

func NewAuthController(opts ...AuthControllerOption) *AuthController {
	c := &AuthController{
		Logger:     defLogger{},
		AuthScheme: "Bearer",
		ContextKey: "user",
		Routes: &AuthControllerRoutes{
			Hello:        "/api/hello",
			Authenticate: "/api/authenticate",
			Signup:       "/api/signup",
			Me:           "/api/user",
		},
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Repo == nil {
		panic("Missing RepositoryManager in auth controller...")
	}

	if c.Auther == nil {
		panic("Missing Authenticator in auth controller...")
	}

	return c
}

func WithControllerLogger(logger Logger) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		if logger != nil {
			c.Logger = logger
		}
		return c
	}
}

func WithControllerRepo(repo RepositoryManager) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Repo = repo
		return c
	}
}

func WithControllerAuther(auther Authenticator) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Auther = auther
		return c
	}
}

func WithControllerDebug(debug bool) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Debug = debug
		return c
	}
}

// Hello is a liveness probe for the public tier of the policy table
func (a *AuthController) Hello(ctx router.Context) error {
	return ctx.Status(fiber.StatusOK).SendString("hello")
}

// LoginRequest payload
type LoginRequest struct {
	Username string `form:"username" json:"username"`
	Password string `form:"password" json:"password"`
}

// Validate will run validation rules
func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(
			&r.Username,
			validation.Required,
			validation.Length(3, 50),
		),
		validation.Field(
			&r.Password,
			validation.Required,
			validation.Length(3, 100),
		),
	)
}

// Authenticate exchanges credentials for a signed bearer token. The token
// travels back twice, in the Authorization header and in the JSON body, so
// both header-driven and body-driven clients can pick it up. Every
// credential failure collapses into the same 401: the response never says
// whether the username or the password was wrong.
func (a *AuthController) Authenticate(ctx router.Context) error {
	payload := new(LoginRequest)

	if err := ctx.Bind(payload); err != nil {
		a.Logger.Error("authenticate parse payload", "error", err)
		return ctx.JSON(fiber.StatusBadRequest, ErrorResponse{
			Message: "failed to parse request body",
		})
	}

	if err := payload.Validate(); err != nil {
		a.Logger.Error("authenticate validate payload", "error", err)
		return ctx.JSON(fiber.StatusBadRequest, ErrorResponse{
			Message: err.Error(),
		})
	}

	if a.Debug {
		fmt.Println("======= AUTHENTICATE ======")
		fmt.Println(print.MaybePrettyJSON(payload.Username))
		fmt.Println("===========================")
	}

	token, err := a.Auther.Login(ctx.Context(), payload.Username, payload.Password)
	if err != nil {
		a.Logger.Error("authenticate login", "error", err, "username", payload.Username)
		return ctx.JSON(fiber.StatusUnauthorized, ErrorResponse{
			Message: "invalid credentials",
		})
	}

	ctx.SetHeader(router.HeaderAuthorization, a.AuthScheme+" "+token)

	return ctx.JSON(fiber.StatusOK, TokenResponse{Token: token})
}

// SignupRequest payload
type SignupRequest struct {
	Username string `form:"username" json:"username"`
	Password string `form:"password" json:"password"`
	Nickname string `form:"nickname" json:"nickname"`
}

// Validate will validate the payload
func (r SignupRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Username, validation.Required, validation.Length(3, 50)),
		validation.Field(&r.Password, validation.Required, validation.Length(3, 100)),
		validation.Field(&r.Nickname, validation.Required, validation.Length(3, 50)),
	)
}

// Signup provisions a new identity and returns its public projection. A
// username collision is a 409, never a silent overwrite.
func (a *AuthController) Signup(ctx router.Context) error {
	payload := new(SignupRequest)

	if err := ctx.Bind(payload); err != nil {
		a.Logger.Error("signup parse payload", "error", err)
		return ctx.JSON(fiber.StatusBadRequest, ErrorResponse{
			Message: "failed to parse request body",
		})
	}

	if err := payload.Validate(); err != nil {
		a.Logger.Error("signup validate payload", "error", err)
		return ctx.JSON(fiber.StatusBadRequest, ErrorResponse{
			Message: err.Error(),
		})
	}

	registerUser := NewRegisterUserHandler(a.Repo)
	user, err := registerUser.Execute(ctx.Context(), RegisterUserMessage{
		Username: payload.Username,
		Password: payload.Password,
		Nickname: payload.Nickname,
	})
	if err != nil {
		a.Logger.Error("signup register user", "error", err, "username", payload.Username)
		return a.renderError(ctx, err)
	}

	return ctx.JSON(fiber.StatusOK, NewUserProjection(user))
}

// Me returns the projection of the caller's own identity
func (a *AuthController) Me(ctx router.Context) error {
	username, ok := CurrentUsernameFromRouter(ctx, a.ContextKey)
	if !ok {
		return ctx.Status(fiber.StatusUnauthorized).SendString("")
	}

	return a.renderUser(ctx, username)
}

// UserByUsername returns any identity's projection; the policy table
// restricts this route to administrative callers.
func (a *AuthController) UserByUsername(ctx router.Context) error {
	username := ctx.Param("username", "")
	if username == "" {
		return ctx.JSON(fiber.StatusBadRequest, ErrorResponse{
			Message: "username is required",
		})
	}

	return a.renderUser(ctx, username)
}

func (a *AuthController) renderUser(ctx router.Context, username string) error {
	user, err := a.Repo.Users().GetByUsername(ctx.Context(), username)
	if err != nil {
		a.Logger.Error("render user lookup", "error", err, "username", username)
		return a.renderError(ctx, err)
	}

	return ctx.JSON(fiber.StatusOK, NewUserProjection(user))
}

func (a *AuthController) renderError(ctx router.Context, err error) error {
	if repository.IsRecordNotFound(err) {
		return ctx.JSON(fiber.StatusNotFound, ErrorResponse{Message: "not found"})
	}

	var richErr *errors.Error
	if errors.As(err, &richErr) {
		status := richErr.Code
		if status == 0 {
			status = fiber.StatusInternalServerError
		}
		return ctx.JSON(status, ErrorResponse{Message: richErr.Message})
	}

	return ctx.JSON(fiber.StatusInternalServerError, ErrorResponse{
		Message: "internal server error",
	})
}

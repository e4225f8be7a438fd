package router

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"
	echoSwagger "github.com/swaggo/echo-swagger"

	"payauth/internal/auth"
	"payauth/internal/config"
	"payauth/internal/errors"
	"payauth/internal/handler"
	"payauth/internal/logging"
)

// Register wires routes and middleware.
func Register(
	e *echo.Echo,
	cfg *config.Config,
	log logrus.FieldLogger,
	tokens *auth.JWTService,
	authHandler *handler.AuthHandler,
	paymentHandler *handler.PaymentHandler,
	userHandler *handler.UserHandler,
	healthHandler *handler.HealthHandler,
) {
	e.Use(middleware.RequestID())
	e.Use(logging.RequestLogger(log))
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: cfg.HTTP.AllowOrigins,
	}))

	e.Validator = &CustomValidator{validator: validator.New()}

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group(cfg.HTTP.BasePath)

	api.GET("/", healthHandler.Root)
	if cfg.HTTP.BasePath != "" {
		api.GET("", healthHandler.Root)
	}
	api.GET("/healthz", healthHandler.Healthz)

	api.POST("/register", authHandler.Register)
	api.POST("/login", authHandler.Login)

	api.POST("/create-order", paymentHandler.CreateOrder)
	api.POST("/verify-payment", paymentHandler.VerifyPayment)

	// Secured routes (require a session token)
	requireToken := echojwt.WithConfig(echojwt.Config{
		ContextKey:  handler.ContextKeyClaims,
		TokenLookup: "header:" + echo.HeaderAuthorization + ":Bearer ",
		ParseTokenFunc: func(c echo.Context, token string) (interface{}, error) {
			return tokens.Parse(token)
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return echo.NewHTTPError(http.StatusUnauthorized, errors.ErrorResponse{
				Message: "invalid or missing token",
				Code:    "INVALID_TOKEN",
			})
		},
	})

	api.GET("/me", userHandler.Me, requireToken)
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

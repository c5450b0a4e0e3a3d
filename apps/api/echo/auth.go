package echoapi

import (
	"github.com/dgrijalva/jwt-go"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/checkout"
)

const userTokenContextKey = "userToken"

// Claims represents the authorization claims transmitted via a JWT.
// Tokens are issued by the upstream platform; this service only verifies
// them (shared signing key) and forwards the raw token on remote calls.
type Claims struct {
	jwt.StandardClaims
	Username  string   `json:"username,omitempty"`
	Email     string   `json:"email,omitempty"`
	IsStudent bool     `json:"is_student,omitempty"`
	IsTeacher bool     `json:"is_teacher,omitempty"`
	IsAdmin   bool     `json:"is_admin,omitempty"`
	Roles     []string `json:"roles,omitempty"`
}

func newJWTConfig(conf *core.Config) middleware.JWTConfig {
	return middleware.JWTConfig{
		SigningKey:    conf.SecretKey,
		SigningMethod: middleware.AlgorithmHS256,
		ContextKey:    userTokenContextKey,
		Claims:        new(Claims),
	}
}

func getContextToken(ctx echo.Context) (*jwt.Token, error) {
	if token, ok := ctx.Get(userTokenContextKey).(*jwt.Token); ok {
		return token, nil
	}
	return nil, errUnauthorized
}

func getContextClaims(ctx echo.Context) (Claims, error) {
	token, err := getContextToken(ctx)
	if err != nil {
		return Claims{}, err
	}
	if claims, ok := token.Claims.(*Claims); ok {
		return *claims, nil
	}
	return Claims{}, errUnauthorized
}

// getContextSession builds the checkout session carried through remote calls.
func getContextSession(ctx echo.Context) (checkout.Session, error) {
	token, err := getContextToken(ctx)
	if err != nil {
		return checkout.Session{}, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok {
		return checkout.Session{}, errUnauthorized
	}
	return checkout.Session{
		UserID: claims.Subject,
		Email:  claims.Email,
		Token:  token.Raw,
	}, nil
}

func adminMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			if claims, err := getContextClaims(ctx); err == nil && claims.IsAdmin {
				return next(ctx)
			}
			return errHttpForbidden
		}
	}
}

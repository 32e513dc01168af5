package middleware

import (
	"net/http"

	"storefront/internal/common"
	"storefront/internal/models"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
)

const tokenContextKey = "user"

// NewJWTConfig validates HS256 tokens signed with secret. When jwks is non-nil,
// tokens using any other algorithm are verified against the provider's keys.
func NewJWTConfig(secret string, jwks *keyfunc.JWKS) echojwt.Config {
	config := echojwt.Config{
		ContextKey: tokenContextKey,
		NewClaimsFunc: func(c echo.Context) jwt.Claims {
			return new(models.TokenClaims)
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
		},
	}
	if jwks == nil {
		config.SigningKey = []byte(secret)
		return config
	}

	// locally issued tokens stay HS256; everything else must verify against the key set
	config.KeyFunc = func(token *jwt.Token) (interface{}, error) {
		if token.Method == jwt.SigningMethodHS256 && secret != "" {
			return []byte(secret), nil
		}
		return jwks.Keyfunc(token)
	}
	return config
}

// ViewerFromToken copies the validated token's identity into the request context
func ViewerFromToken(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token, ok := c.Get(tokenContextKey).(*jwt.Token)
		if !ok {
			return echo.NewHTTPError(http.StatusUnauthorized, "Missing token")
		}
		claims, ok := token.Claims.(*models.TokenClaims)
		if !ok {
			return echo.NewHTTPError(http.StatusUnauthorized, "Invalid claims")
		}

		sub := claims.UserID
		if sub == "" {
			sub = claims.Subject
		}
		userID, err := uuid.Parse(sub)
		if err != nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "Invalid user_id format")
		}

		viewer := models.Viewer{UserID: userID, Role: claims.Role}
		c.SetRequest(c.Request().WithContext(common.WithViewer(c.Request().Context(), viewer)))
		return next(c)
	}
}

// Authenticate chains token validation and viewer extraction
func Authenticate(config echojwt.Config) []echo.MiddlewareFunc {
	return []echo.MiddlewareFunc{echojwt.WithConfig(config), ViewerFromToken}
}

package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/pkg/logging"
	"github.com/Skotchmaster/storefront/pkg/sessions"
	"github.com/Skotchmaster/storefront/pkg/tokens"
)

const (
	CtxUserID = "user_id"
	CtxRole   = "role"
	CtxClaims = "claims"

	AccessCookie = "accessToken"
	RoleAdmin    = "admin"
)

type AuthMiddleware struct {
	JWTSecret []byte
	Denylist  sessions.Denylist
}

func NewAuthMiddleware(secret []byte, denylist sessions.Denylist) *AuthMiddleware {
	return &AuthMiddleware{
		JWTSecret: secret,
		Denylist:  denylist,
	}
}

type ValidatorFunc func(claims *tokens.AccessClaims) error

func (m *AuthMiddleware) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return m.requireAuthWithValidator(next, nil)
}

func (m *AuthMiddleware) RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return m.requireAuthWithValidator(next, func(claims *tokens.AccessClaims) error {
		if claims.Role != RoleAdmin {
			return echo.NewHTTPError(http.StatusForbidden, "admin access required")
		}
		return nil
	})
}

func (m *AuthMiddleware) requireAuthWithValidator(next echo.HandlerFunc, validator ValidatorFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		l := logging.FromContext(ctx).With("middleware", "auth")

		if len(m.JWTSecret) == 0 {
			l.Error("auth_error", "status", http.StatusInternalServerError, "reason", "jwt secret not configured")
			return echo.NewHTTPError(http.StatusInternalServerError, "authentication service misconfigured")
		}

		raw := TokenFromRequest(c)
		if raw == "" {
			return echo.NewHTTPError(http.StatusUnauthorized, "missing access token")
		}

		claims, err := tokens.AccessClaimsFromToken(raw, m.JWTSecret)
		if err != nil || claims == nil {
			l.Warn("auth_error", "status", http.StatusUnauthorized, "reason", "invalid token", "error", err)
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired token")
		}

		if m.Denylist != nil {
			revoked, err := m.Denylist.IsRevoked(ctx, claims.ID)
			if err != nil {
				l.Error("auth_error", "status", http.StatusInternalServerError, "reason", "denylist lookup failed", "error", err)
				return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
			}
			if revoked {
				return echo.NewHTTPError(http.StatusUnauthorized, "token revoked")
			}
		}

		if validator != nil {
			if err := validator(claims); err != nil {
				return err
			}
		}

		setUserContext(c, claims)
		return next(c)
	}
}

// TokenFromRequest reads the bearer token, falling back to the access cookie
// and, for websocket handshakes, the access_token query parameter.
func TokenFromRequest(c echo.Context) string {
	h := c.Request().Header.Get(echo.HeaderAuthorization)
	if scheme, tok, ok := strings.Cut(h, " "); ok && strings.EqualFold(scheme, "Bearer") {
		if tok = strings.TrimSpace(tok); tok != "" {
			return tok
		}
	}
	if ck, err := c.Cookie(AccessCookie); err == nil && ck.Value != "" {
		return ck.Value
	}
	// browsers cannot set headers on a websocket handshake
	if strings.EqualFold(c.Request().Header.Get(echo.HeaderUpgrade), "websocket") {
		return c.QueryParam("access_token")
	}
	return ""
}

func setUserContext(c echo.Context, claims *tokens.AccessClaims) {
	c.Set(CtxUserID, claims.UserID)
	c.Set(CtxRole, claims.Role)
	c.Set(CtxClaims, claims)
}

func UserID(c echo.Context) uint {
	id, _ := c.Get(CtxUserID).(uint)
	return id
}

func Role(c echo.Context) string {
	role, _ := c.Get(CtxRole).(string)
	return role
}

func Claims(c echo.Context) *tokens.AccessClaims {
	claims, _ := c.Get(CtxClaims).(*tokens.AccessClaims)
	return claims
}

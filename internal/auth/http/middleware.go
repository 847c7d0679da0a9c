// Package http provides bearer-token authentication, capability authorization, rate limiting and the
// token issuance endpoint.
package http

import (
	"log/slog"
	"strings"

	"github.com/gin-gonic/gin"

	authDomain "github.com/allisson/sealbox/internal/auth/domain"
	authService "github.com/allisson/sealbox/internal/auth/service"
	authUseCase "github.com/allisson/sealbox/internal/auth/usecase"
	apperrors "github.com/allisson/sealbox/internal/errors"
	"github.com/allisson/sealbox/internal/httputil"
)

const bearerPrefix = "bearer "

// AuthenticationMiddleware resolves "Authorization: Bearer <token>" to a client and stores it in the
// request context. The scheme is matched case-insensitively.
//
//   - missing or malformed header → 401
//   - unknown, expired or revoked token → 401
//   - inactive client → 403
func AuthenticationMiddleware(
	tokenUseCase authUseCase.TokenUseCase,
	tokenService authService.TokenService,
	logger *slog.Logger,
) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if len(authHeader) <= len(bearerPrefix) ||
			!strings.EqualFold(authHeader[:len(bearerPrefix)], bearerPrefix) {
			logger.Debug("authentication failed: missing or malformed authorization header")
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			c.Abort()
			return
		}

		plainToken := strings.TrimSpace(authHeader[len(bearerPrefix):])
		if plainToken == "" {
			logger.Debug("authentication failed: empty bearer token")
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			c.Abort()
			return
		}

		client, err := tokenUseCase.Authenticate(c.Request.Context(), tokenService.HashToken(plainToken))
		if err != nil {
			logger.Debug("authentication failed", slog.Any("error", err))
			httputil.HandleErrorGin(c, err, logger)
			c.Abort()
			return
		}

		c.Request = c.Request.WithContext(WithClient(c.Request.Context(), client))
		c.Next()
	}
}

// AuthorizationMiddleware requires the authenticated client to hold capability on the request path.
// It must run after AuthenticationMiddleware.
func AuthorizationMiddleware(capability authDomain.Capability, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		client, ok := GetClient(c.Request.Context())
		if !ok || client == nil {
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			c.Abort()
			return
		}

		path := c.Request.URL.Path
		if !client.IsAllowed(path, capability) {
			logger.Debug("authorization failed: insufficient permissions",
				slog.String("client_id", client.ID.String()),
				slog.String("path", path),
				slog.String("capability", string(capability)))
			httputil.HandleErrorGin(c, apperrors.ErrForbidden, logger)
			c.Abort()
			return
		}

		c.Next()
	}
}

package http

import (
	"context"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	auditDomain "github.com/allisson/sealbox/internal/audit/domain"
	authDomain "github.com/allisson/sealbox/internal/auth/domain"
)

type clientKey struct{}

// WithClient stores an authenticated client in the context.
func WithClient(ctx context.Context, client *authDomain.Client) context.Context {
	return context.WithValue(ctx, clientKey{}, client)
}

// GetClient retrieves the authenticated client from the context.
func GetClient(ctx context.Context) (*authDomain.Client, bool) {
	client, ok := ctx.Value(clientKey{}).(*authDomain.Client)
	return client, ok
}

// GetActor returns the audit identity of the request: the authenticated client and the request ID
// assigned by the requestid middleware. Missing values become uuid.Nil.
func GetActor(c *gin.Context) auditDomain.Actor {
	return auditDomain.Actor{
		ID:        clientID(c.Request.Context()),
		RequestID: RequestID(c),
	}
}

// RequestID parses the X-Request-Id of the current request.
func RequestID(c *gin.Context) uuid.UUID {
	id, err := uuid.Parse(requestid.Get(c))
	if err != nil {
		return uuid.Nil
	}
	return id
}

func clientID(ctx context.Context) uuid.UUID {
	client, ok := GetClient(ctx)
	if !ok || client == nil {
		return uuid.Nil
	}
	return client.ID
}

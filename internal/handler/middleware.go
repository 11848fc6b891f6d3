package handler

import (
	"context"
	"net/http"

	"github.com/acadlab/equipment-loan-engine/internal/domain"
	"github.com/acadlab/equipment-loan-engine/pkg/response"
)

type contextKey string

const actorKey contextKey = "actor"

// Identity reads the caller identity the upstream auth layer supplies
// via X-Actor-* headers. The role is trusted as already verified;
// requests without an identity are rejected.
func Identity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor := domain.Actor{
			ID:   r.Header.Get("X-Actor-Id"),
			Name: r.Header.Get("X-Actor-Name"),
			Role: r.Header.Get("X-Actor-Role"),
		}

		if actor.ID == "" || actor.Role == "" {
			response.Unauthorized(w, "caller identity headers are missing")
			return
		}

		if !domain.ValidRole(actor.Role) {
			response.BadRequest(w, "unknown caller role", nil)
			return
		}

		ctx := context.WithValue(r.Context(), actorKey, actor)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ActorFrom returns the caller identity stored by the Identity
// middleware.
func ActorFrom(r *http.Request) domain.Actor {
	actor, _ := r.Context().Value(actorKey).(domain.Actor)
	return actor
}

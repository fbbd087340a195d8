package auth

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"agriqcert/pkg/domain"
	"agriqcert/pkg/requestcontext"
)

// SigningTokenHeader carries the caller's token for the external signing authority.
const SigningTokenHeader = "X-Esignet-Token"

// ActorValidator validates a bearer token and returns the actor claims it carries.
type ActorValidator interface {
	ValidateToken(tokenString string) (*ActorClaims, error)
}

// ActorClaims represents the claims we expect from the token validator.
type ActorClaims struct {
	UserID       string
	Role         string
	Organization string
	Email        string
	AgencyID     string
}

func writeJSONError(w http.ResponseWriter, status int, errCode, errDesc string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(fmt.Appendf(nil, `{"error":"%s","error_description":"%s"}`, errCode, errDesc))
}

// toActor converts string claims into a typed actor.
func toActor(claims *ActorClaims) (domain.Actor, error) {
	userID, err := domain.ParseUserID(claims.UserID)
	if err != nil {
		return domain.Actor{}, fmt.Errorf("invalid user_id: %w", err)
	}
	role, ok := domain.ParseRole(claims.Role)
	if !ok {
		return domain.Actor{}, fmt.Errorf("invalid role %q", claims.Role)
	}
	return domain.Actor{
		ID:           userID,
		Role:         role,
		Organization: claims.Organization,
		Email:        claims.Email,
		AgencyID:     claims.AgencyID,
	}, nil
}

// authenticate resolves the actor from the Authorization header.
// ok is false when no bearer token was sent at all.
func authenticate(r *http.Request, validator ActorValidator) (actor domain.Actor, ok bool, err error) {
	token, found := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !found || token == "" {
		return domain.Actor{}, false, nil
	}
	claims, err := validator.ValidateToken(token)
	if err != nil {
		return domain.Actor{}, true, err
	}
	actor, err = toActor(claims)
	return actor, true, err
}

// RequireAuth rejects requests without a valid bearer token and stores the actor in context.
func RequireAuth(validator ActorValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			actor, present, err := authenticate(r, validator)
			if !present {
				logger.WarnContext(ctx, "unauthorized access - missing token",
					"request_id", requestcontext.RequestID(ctx),
				)
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Missing or invalid Authorization header")
				return
			}
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access - invalid token",
					"error", err,
					"request_id", requestcontext.RequestID(ctx),
				)
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Invalid or expired token")
				return
			}
			next.ServeHTTP(w, r.WithContext(requestcontext.WithActor(ctx, actor)))
		})
	}
}

// OptionalAuth attaches the actor when a valid token is present and otherwise
// lets the request through anonymously. Public verification endpoints use it.
func OptionalAuth(validator ActorValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			actor, present, err := authenticate(r, validator)
			if present && err != nil {
				logger.DebugContext(ctx, "ignoring invalid token on public route",
					"error", err,
					"request_id", requestcontext.RequestID(ctx),
				)
			}
			if present && err == nil {
				ctx = requestcontext.WithActor(ctx, actor)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole rejects authenticated actors whose role is not listed.
// It must run after RequireAuth.
func RequireRole(roles ...domain.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, ok := requestcontext.Actor(r.Context())
			if !ok {
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Authentication required")
				return
			}
			if !actor.HasRole(roles...) {
				writeJSONError(w, http.StatusForbidden, "forbidden", "Insufficient role")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// SigningToken copies the external signing authority token header into context.
func SigningToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if token := strings.TrimSpace(r.Header.Get(SigningTokenHeader)); token != "" {
			r = r.WithContext(requestcontext.WithSigningToken(r.Context(), token))
		}
		next.ServeHTTP(w, r)
	})
}

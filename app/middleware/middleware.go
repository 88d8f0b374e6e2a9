package appMiddleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/koushik8686/GeoGuide-sub000/internal/api"
)

var errMissingToken = errors.New("authorization header required")

// Authenticator validates HS256 bearer tokens and puts the caller's user ID
// into the request context.
type Authenticator struct {
	secret []byte
	logger *slog.Logger
}

func NewAuthenticator(secret string, logger *slog.Logger) *Authenticator {
	return &Authenticator{secret: []byte(secret), logger: logger}
}

// Authenticate rejects requests without a valid token.
func (a *Authenticator) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, err := a.userFromRequest(r)
		if err != nil {
			a.logger.DebugContext(r.Context(), "Rejected request without valid token", slog.Any("error", err))
			api.ErrorResponse(w, r, http.StatusUnauthorized, "Authentication required")
			return
		}
		next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
	})
}

// OptionalAuthenticate identifies the caller when a token is present and lets
// anonymous requests through. A present but invalid token is still rejected.
func (a *Authenticator) OptionalAuthenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, err := a.userFromRequest(r)
		switch {
		case errors.Is(err, errMissingToken):
			next.ServeHTTP(w, r)
		case err != nil:
			a.logger.DebugContext(r.Context(), "Rejected request with invalid token", slog.Any("error", err))
			api.ErrorResponse(w, r, http.StatusUnauthorized, "Invalid or expired token")
		default:
			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
		}
	})
}

func (a *Authenticator) userFromRequest(r *http.Request) (uuid.UUID, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return uuid.Nil, errMissingToken
	}

	headerParts := strings.Split(authHeader, " ")
	if len(headerParts) != 2 || strings.ToLower(headerParts[0]) != "bearer" {
		return uuid.Nil, errors.New("authorization header format must be Bearer {token}")
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(headerParts[1], claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return a.secret, nil
	})
	if err != nil {
		return uuid.Nil, err
	}
	if !token.Valid {
		return uuid.Nil, errors.New("invalid token")
	}

	subject := claims.UserID
	if subject == "" {
		subject = claims.Subject
	}
	return uuid.Parse(subject)
}

func WithUserID(ctx context.Context, userID uuid.UUID) context.Context {
	return context.WithValue(ctx, UserIDKey, userID)
}

func GetUserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	userID, ok := ctx.Value(UserIDKey).(uuid.UUID)
	return userID, ok && userID != uuid.Nil
}

package middleware

import (
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Pesokrava/storefront_reviews/internal/delivery/http/response"
	"github.com/Pesokrava/storefront_reviews/internal/domain"
	"github.com/Pesokrava/storefront_reviews/internal/pkg/logger"
)

// RoleAdmin is the role claim value that grants moderation rights
const RoleAdmin = "admin"

// Claims are the JWT claims accepted by Authenticate
type Claims struct {
	Name string `json:"name"`
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Authenticate returns a middleware that validates an HMAC-signed bearer token
// and stores the caller's domain.Identity in the request context.
func Authenticate(secret string, log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				response.Error(w, http.StatusUnauthorized, "Missing authorization header")
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				response.Error(w, http.StatusUnauthorized, "Invalid authorization header format")
				return
			}

			var claims Claims
			token, err := jwt.ParseWithClaims(parts[1], &claims, func(token *jwt.Token) (any, error) {
				if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, jwt.ErrSignatureInvalid
				}
				return []byte(secret), nil
			})
			if err != nil || !token.Valid {
				log.WithFields(map[string]interface{}{
					"path":  r.URL.Path,
					"error": err,
				}).Warn("Invalid JWT token")
				response.Error(w, http.StatusUnauthorized, "Invalid or expired token")
				return
			}

			if claims.Subject == "" {
				response.Error(w, http.StatusUnauthorized, "Token has no subject")
				return
			}

			identity := domain.Identity{
				UserID:   claims.Subject,
				UserName: claims.Name,
				IsAdmin:  claims.Role == RoleAdmin,
			}

			next.ServeHTTP(w, r.WithContext(domain.WithIdentity(r.Context(), identity)))
		})
	}
}

// RequireAdmin rejects callers whose identity lacks the admin role.
// It must run after Authenticate.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, ok := domain.IdentityFromContext(r.Context())
		if !ok {
			response.Error(w, http.StatusUnauthorized, "Authentication required")
			return
		}
		if !identity.IsAdmin {
			response.Error(w, http.StatusForbidden, "Admin role required")
			return
		}

		next.ServeHTTP(w, r)
	})
}

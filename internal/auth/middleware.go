package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mjaffal21/devcamper-api/internal/httpx"
	"github.com/mjaffal21/devcamper-api/internal/users"
)

const identityKey = "auth.identity"

// Identity is the immutable snapshot attached to the request after the guard
// resolves a token.
type Identity struct {
	ID   uint
	Role string
}

// IsAdmin reports whether the identity holds the admin role.
func (i Identity) IsAdmin() bool {
	return i.Role == users.RoleAdmin
}

// RequireAuth extracts a bearer token, verifies it, resolves the subject
// against the credential store and attaches the identity to the context.
// The Authorization header is checked first; the "token" cookie is the
// fallback. Missing token, failed verification, and a vanished subject all
// abort with 401.
func RequireAuth(tokens *TokenService, store users.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr := extractToken(c)
		if tokenStr == "" {
			httpx.AbortError(c, http.StatusUnauthorized, "not authorized to access this route")
			return
		}
		userID, err := tokens.Verify(tokenStr)
		if err != nil {
			httpx.AbortError(c, http.StatusUnauthorized, "not authorized to access this route")
			return
		}
		user, err := store.FindByID(c.Request.Context(), userID)
		if err != nil {
			httpx.AbortError(c, http.StatusUnauthorized, "not authorized to access this route")
			return
		}
		c.Set(identityKey, Identity{ID: user.ID, Role: user.Role})
		c.Next()
	}
}

// RequireRoles aborts with 403 unless the resolved identity's role is in the
// allowed set. Must be composed after RequireAuth.
func RequireRoles(roles ...string) gin.HandlerFunc {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(c *gin.Context) {
		ident, ok := CurrentIdentity(c)
		if !ok {
			httpx.AbortError(c, http.StatusUnauthorized, "not authorized to access this route")
			return
		}
		if !allowed[ident.Role] {
			httpx.AbortError(c, http.StatusForbidden,
				"user role "+ident.Role+" is not authorized to access this route")
			return
		}
		c.Next()
	}
}

// CurrentIdentity returns the identity attached by RequireAuth.
func CurrentIdentity(c *gin.Context) (Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return Identity{}, false
	}
	ident, ok := v.(Identity)
	return ident, ok
}

// OwnerOrAdmin is the per-resource ownership policy: the resource owner may
// mutate it, and admins bypass the check unconditionally. Callers check
// resource existence first so 404 always precedes 403.
func OwnerOrAdmin(ident Identity, ownerID uint) bool {
	return ident.IsAdmin() || ident.ID == ownerID
}

func extractToken(c *gin.Context) string {
	if h := c.GetHeader("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	if cookie, err := c.Cookie(TokenCookie); err == nil {
		return cookie
	}
	return ""
}

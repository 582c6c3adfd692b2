package server

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/atriumhq/atrium/internal/auditcontext"
	authdomain "github.com/atriumhq/atrium/internal/auth/domain"
	"github.com/bwmarrin/snowflake"
)

const contextUserKey = "current_user"

// AuthRequired authenticates the session cookie, loads the user and
// stamps the request context with the acting principal.
func (s *Server) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := s.sessions.ReadToken(c)
		if !ok {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		sess, err := s.authsvc.Authenticate(c.Request.Context(), token)
		if err != nil {
			AbortWithError(c, err)
			return
		}

		user, err := s.authsvc.GetUser(c.Request.Context(), sess.UserID)
		if err != nil {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		ctx := auditcontext.WithActor(c.Request.Context(), "user", user.ID.String())
		c.Request = c.Request.WithContext(ctx)
		c.Set(contextUserKey, user)
		c.Next()
	}
}

// RequireRole allows only users holding one of the given roles.
func (s *Server) RequireRole(roles ...authdomain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c)
		if !ok {
			AbortWithError(c, ErrUnauthorized)
			return
		}
		for _, role := range roles {
			if user.Role == role {
				c.Next()
				return
			}
		}
		AbortWithError(c, ErrForbidden)
	}
}

// authorize gates a route on the casbin policy for object/action.
func (s *Server) authorize(object, action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c)
		if !ok {
			AbortWithError(c, ErrUnauthorized)
			return
		}
		actor := "user:" + user.ID.String()
		if err := s.authzSvc.Authorize(c.Request.Context(), actor, object, action); err != nil {
			AbortWithError(c, err)
			return
		}
		c.Next()
	}
}

func currentUser(c *gin.Context) (*authdomain.User, bool) {
	value, ok := c.Get(contextUserKey)
	if !ok {
		return nil, false
	}
	user, ok := value.(*authdomain.User)
	if !ok || user == nil {
		return nil, false
	}
	return user, true
}

// scopedTenantID returns the tenant the caller is restricted to. Staff
// roles see everything; TENANT users only their own rows.
func scopedTenantID(c *gin.Context) (string, bool) {
	user, ok := currentUser(c)
	if !ok || user.Role != authdomain.RoleTenant {
		return "", false
	}
	if user.TenantID == nil {
		return "", false
	}
	return user.TenantID.String(), true
}

// enforceTenantScope overrides the requested tenant filter for TENANT
// users. Returns false when the request targets another tenant's data.
func enforceTenantScope(c *gin.Context, requested string) (string, bool) {
	scoped, restricted := scopedTenantID(c)
	if !restricted {
		return strings.TrimSpace(requested), true
	}
	requested = strings.TrimSpace(requested)
	if requested != "" && requested != scoped {
		return "", false
	}
	return scoped, true
}

func tenantOwnsRow(c *gin.Context, tenantID snowflake.ID) bool {
	scoped, restricted := scopedTenantID(c)
	if !restricted {
		return true
	}
	return scoped == tenantID.String()
}

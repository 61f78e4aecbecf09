package middleware

import (
	"github.com/gin-gonic/gin"
)

// AuthRealm is the realm announced in WWW-Authenticate challenges
const AuthRealm = "Admin"

// BasicAuth protects the admin routes with a single username and password
func BasicAuth(username, password string) gin.HandlerFunc {
	return gin.BasicAuthForRealm(gin.Accounts{username: password}, AuthRealm)
}

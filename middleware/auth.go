package middleware

import "github.com/gin-gonic/gin"

// PasswordUser is the basic auth user name expected alongside the configured password
const PasswordUser = "jukebox"

// Password requires HTTP basic auth when a password is configured
func Password(password string) gin.HandlerFunc {
	if password == "" {
		return func(c *gin.Context) { c.Next() }
	}
	return gin.BasicAuthForRealm(gin.Accounts{PasswordUser: password}, "jukebox")
}

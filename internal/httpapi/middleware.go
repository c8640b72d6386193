package httpapi

import (
	"crypto/subtle"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	headerNameWWWAuthenticate  = "WWW-Authenticate"
	headerValueBasicChallenge  = "Basic"
	detailMessageBadCredential = "Invalid credentials"
)

// AdminCredentials holds the two secrets admin requests are verified against.
type AdminCredentials struct {
	Username string
	Password string
}

// Matches compares the provided credentials in constant time. Both fields are
// always compared so a mismatch never reveals which one failed.
func (credentials AdminCredentials) Matches(username string, password string) bool {
	usernameMatches := subtle.ConstantTimeCompare([]byte(username), []byte(credentials.Username))
	passwordMatches := subtle.ConstantTimeCompare([]byte(password), []byte(credentials.Password))
	return usernameMatches&passwordMatches == 1
}

// RequestLogger logs one structured line per handled request.
func RequestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(context *gin.Context) {
		start := time.Now()
		context.Next()
		logger.Info("http",
			zap.String("method", context.Request.Method),
			zap.String("path", context.Request.URL.Path),
			zap.Int("status", context.Writer.Status()),
			zap.Duration("dur", time.Since(start)),
			zap.String("ip", context.ClientIP()),
			zap.String("ua", context.Request.UserAgent()),
		)
	}
}

// BasicAuthMiddleware protects admin routes with HTTP Basic authentication.
// Missing or mismatched credentials yield a uniform 401 with a Basic
// challenge and no detail on which field failed.
func BasicAuthMiddleware(credentials AdminCredentials) gin.HandlerFunc {
	return func(context *gin.Context) {
		providedUsername, providedPassword, headerPresent := context.Request.BasicAuth()
		if !headerPresent || !credentials.Matches(providedUsername, providedPassword) {
			context.Header(headerNameWWWAuthenticate, headerValueBasicChallenge)
			context.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{jsonKeyDetail: detailMessageBadCredential})
			return
		}
		context.Next()
	}
}

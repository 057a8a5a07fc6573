package middleware

import (
	"net"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/Niethin69/aadhvikha-learn-empower-succeed/models"
)

// DomainWhitelistMiddleware only lets through requests whose Host matches one
// of allowedDomains. A port on the Host header is ignored unless the entry
// carries one too. With no entries every request is refused.
func DomainWhitelistMiddleware(allowedDomains []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		host := c.Request.Host
		if !hostAllowed(host, allowedDomains) {
			log.Warn().Str("host", host).Str("path", c.Request.URL.Path).Msg("Host not whitelisted")
			c.AbortWithStatusJSON(http.StatusForbidden, models.ErrorResponse{
				Status:  "Request Failed",
				Error:   models.ErrorKindForbidden,
				Message: "Permission denied",
			})
			return
		}

		c.Next()
	}
}

func hostAllowed(host string, allowedDomains []string) bool {
	bare := host
	if h, _, err := net.SplitHostPort(host); err == nil {
		bare = h
	}
	for _, domain := range allowedDomains {
		if strings.EqualFold(domain, host) || strings.EqualFold(domain, bare) {
			return true
		}
	}
	return false
}

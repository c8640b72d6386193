package main

import (
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/MarkoPoloResearchLab/contact_svc/internal/httpapi"
)

const (
	routeGroupAPI            = "/api"
	routeGroupAdmin          = "/admin"
	routeRoot                = "/"
	routeContact             = "/contact"
	routeAdminLogin          = "/login"
	routeAdminSubmissions    = "/submissions"
	routeAdminSubmissionByID = "/submissions/:id"
	routeAdminStatus         = "/submissions/:id/status"
	routeAdminRespond        = "/submissions/:id/respond"
	routeAdminStats          = "/stats"

	wildcardOrigin          = "*"
	corsMaxAgeHours         = 12
	headerNameAuthorization = "Authorization"
	headerNameContentType   = "Content-Type"
)

type routerDependencies struct {
	logger          *zap.Logger
	contactHandlers *httpapi.ContactHandlers
	adminHandlers   *httpapi.AdminHandlers
	credentials     httpapi.AdminCredentials
	allowedOrigins  []string
}

func buildRouter(dependencies routerDependencies) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(httpapi.RequestLogger(dependencies.logger))
	router.Use(cors.New(corsConfiguration(dependencies.allowedOrigins)))

	apiGroup := router.Group(routeGroupAPI)
	apiGroup.GET(routeRoot, dependencies.contactHandlers.Root)
	apiGroup.POST(routeContact, dependencies.contactHandlers.SubmitContact)

	adminGroup := apiGroup.Group(routeGroupAdmin)
	adminGroup.POST(routeAdminLogin, dependencies.adminHandlers.Login)

	protectedGroup := adminGroup.Group("")
	protectedGroup.Use(httpapi.BasicAuthMiddleware(dependencies.credentials))
	protectedGroup.GET(routeAdminSubmissions, dependencies.adminHandlers.ListSubmissions)
	protectedGroup.GET(routeAdminSubmissionByID, dependencies.adminHandlers.GetSubmission)
	protectedGroup.PATCH(routeAdminStatus, dependencies.adminHandlers.UpdateStatus)
	protectedGroup.POST(routeAdminRespond, dependencies.adminHandlers.Respond)
	protectedGroup.DELETE(routeAdminSubmissionByID, dependencies.adminHandlers.DeleteSubmission)
	protectedGroup.GET(routeAdminStats, dependencies.adminHandlers.Stats)

	return router
}

func corsConfiguration(allowedOrigins []string) cors.Config {
	configuration := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{headerNameAuthorization, headerNameContentType},
		ExposeHeaders: []string{headerNameContentType},
		MaxAge:        corsMaxAgeHours * time.Hour,
	}

	if containsWildcardOrigin(allowedOrigins) {
		configuration.AllowAllOrigins = true
		return configuration
	}

	configuration.AllowOrigins = allowedOrigins
	configuration.AllowCredentials = true
	return configuration
}

func containsWildcardOrigin(allowedOrigins []string) bool {
	for _, origin := range allowedOrigins {
		if origin == wildcardOrigin {
			return true
		}
	}
	return false
}

func parseAllowedOrigins(rawOrigins string) []string {
	var origins []string
	for _, candidate := range strings.Split(rawOrigins, ",") {
		trimmed := strings.TrimSpace(candidate)
		if trimmed == "" {
			continue
		}
		origins = append(origins, trimmed)
	}

	if len(origins) == 0 {
		return []string{wildcardOrigin}
	}

	return origins
}

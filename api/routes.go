package api

import "github.com/gin-gonic/gin"

// RegisterRoutes mounts the API under group. chatLimit guards POST /chat.
func RegisterRoutes(group *gin.RouterGroup, chatLimit gin.HandlerFunc) {
	group.GET("/healthcheck", HealthCheckHandler)
	group.GET("/info", InfoHandler)

	public := group.Group("/public")
	public.GET("/countries", ListCountriesHandler)
	public.GET("/countries/:name", CountryHandler)
	public.GET("/countries/:name/:property", CountryPropertyHandler)

	chatGroup := group.Group("/chat", SessionMiddleware())
	chatGroup.POST("", chatLimit, ChatHandler)
	chatGroup.GET("/history", HistoryHandler)
	chatGroup.GET("/latest", LatestHandler)
	chatGroup.POST("/reset", ResetHandler)

	admin := group.Group("/admin", AdminAuthMiddleware())
	admin.GET("/conversations", AdminConversationsHandler)
	admin.DELETE("/conversations", AdminDeleteConversationsHandler)
	admin.GET("/stats", AdminStatsHandler)
}

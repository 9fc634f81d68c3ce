package handler

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Router groups every handler mounted by the API.
type Router struct {
	Auth            *AuthHandler
	Users           *UserHandler
	Events          *EventHandler
	Interpret       *InterpretHandler
	Chat            *ChatHandler
	Geo             *GeoHandler
	Recommendations *RecommendationHandler
	Profile         *ProfileHandler
	Reminders       *ReminderHandler
	Interactions    *InteractionHandler
	Export          *ExportHandler
	Metrics         *MetricsHandler

	// Authenticate guards every route that acts on a user's data.
	Authenticate gin.HandlerFunc
	// Docs mounts the Swagger UI under /docs.
	Docs bool
}

// Register mounts the routes on engine under prefix.
func (r *Router) Register(engine *gin.Engine, prefix string) {
	engine.GET("/health", r.Metrics.Health)
	engine.GET("/ready", r.Metrics.Ready)
	engine.GET("/metrics", r.Metrics.Prometheus)
	if r.Docs {
		engine.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := engine.Group(prefix)

	auth := api.Group("/auth")
	auth.POST("/register", r.Auth.Register)
	auth.POST("/login", r.Auth.Login)
	auth.POST("/refresh", r.Auth.Refresh)
	auth.POST("/logout", r.Authenticate, r.Auth.Logout)
	auth.GET("/google/url", r.Auth.GoogleURL)
	auth.GET("/google/callback", r.Auth.GoogleCallback)

	// Download links carry their own signed token.
	api.GET("/calendar/export/download", r.Export.Download)

	secured := api.Group("", r.Authenticate)

	secured.GET("/users/me", r.Users.Me)
	secured.PUT("/users/me", r.Users.UpdateMe)

	calendar := secured.Group("/calendar")
	calendar.POST("/interpret", r.Interpret.Interpret)
	calendar.GET("/get_tasks", r.Events.List)
	calendar.POST("/set_task", r.Events.Create)
	calendar.DELETE("/delete_task", r.Events.Delete)
	calendar.POST("/get_tasks_by_time", r.Events.ListByRange)
	calendar.PUT("/update_task/:id", r.Events.Update)
	calendar.GET("/recommend", r.Recommendations.Recommend)
	calendar.GET("/geocode", r.Geo.Geocode)
	calendar.GET("/export", r.Export.Link)

	secured.POST("/chat", r.Chat.Chat)
	secured.GET("/chat/messages", r.Chat.Messages)
	secured.POST("/chat/messages", r.Chat.AddMessage)
	secured.DELETE("/chat/messages", r.Chat.ClearMessages)
	secured.POST("/reschedule", r.Chat.Reschedule)

	secured.GET("/geo/forward", r.Geo.Forward)
	secured.GET("/geo/reverse", r.Geo.Reverse)
	secured.GET("/weather/current", r.Geo.CurrentWeather)
	secured.GET("/weather/forecast", r.Geo.Forecast)
	secured.GET("/weather/summary", r.Geo.Summary)
	secured.GET("/timezone", r.Geo.Timezone)
	secured.GET("/places/nearby", r.Geo.Places)

	secured.GET("/profile", r.Profile.Get)
	secured.POST("/profile", r.Profile.Create)
	secured.PUT("/profile", r.Profile.Update)
	secured.GET("/profile/weather", r.Profile.Weather)
	secured.GET("/settings", r.Profile.Settings)
	secured.PUT("/settings", r.Profile.UpsertSettings)

	secured.GET("/reminders", r.Reminders.List)
	secured.POST("/reminders", r.Reminders.Create)
	secured.GET("/reminders/:id", r.Reminders.Get)
	secured.PUT("/reminders/:id", r.Reminders.Update)
	secured.DELETE("/reminders/:id", r.Reminders.Delete)

	secured.GET("/interactions", r.Interactions.List)
}

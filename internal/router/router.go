// Package router binds handlers to the planner's HTTP routes.
package router

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/noah-isme/study-planner-api/internal/app"
	"github.com/noah-isme/study-planner-api/internal/handler"
	"github.com/noah-isme/study-planner-api/internal/middleware"
	"github.com/noah-isme/study-planner-api/pkg/config"
	"github.com/noah-isme/study-planner-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/study-planner-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/study-planner-api/pkg/middleware/requestid"
)

// SetupRouter configures the gin engine for a.
func SetupRouter(a *app.App) *gin.Engine {
	cfg := a.Config
	logr := a.Logger
	if logr == nil {
		logr = zap.NewNop()
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(a.Metrics))

	checks := make(map[string]handler.ReadinessCheck, len(a.Checks))
	for name, check := range a.Checks {
		checks[name] = handler.ReadinessCheck(check)
	}
	metricsHandler := handler.NewMetricsHandler(a.Metrics, checks)
	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	tabs := handler.NewTabHandler(a.Hub, 0)
	auth := handler.NewAuthHandler(a.Auth)
	tasks := handler.NewTaskHandler(a.Tasks)
	exams := handler.NewExamHandler(a.Exams)
	calendar := handler.NewCalendarHandler(a.ImportantDays)
	dashboard := handler.NewDashboardHandler(a.Dashboard, a.Timetable)
	settings := handler.NewSettingsHandler(a.Settings)
	notifications := handler.NewNotificationHandler(a.Notifications)
	data := handler.NewDataHandler(a.Data)

	api := r.Group(cfg.APIPrefix)
	api.Use(middleware.WithResponseMeta(), middleware.AttachTab(a.Hub))
	{
		api.POST("/tabs", tabs.Open)
		api.DELETE("/tabs/:id", tabs.Close)
		api.GET("/tabs/:id/stream", tabs.Stream)
		api.POST("/tabs/:id/permission", tabs.Permission)

		api.POST("/auth/signup", auth.Signup)
		api.POST("/auth/login", auth.Login)

		session := api.Group("")
		session.Use(middleware.RequireSession(a.Auth))
		{
			session.POST("/auth/logout", auth.Logout)
			session.GET("/auth/me", auth.Me)
			session.POST("/account/password", auth.ChangePassword)
			session.DELETE("/account", auth.DeleteAccount)

			session.GET("/tasks", tasks.List)
			session.POST("/tasks", tasks.Create)
			session.GET("/tasks/stats", tasks.Stats)
			session.GET("/tasks/:id", tasks.Get)
			session.PUT("/tasks/:id", tasks.Update)
			session.DELETE("/tasks/:id", tasks.Delete)
			session.POST("/tasks/:id/toggle", tasks.Toggle)

			session.GET("/exams", exams.List)
			session.POST("/exams", exams.Create)
			session.GET("/exams/upcoming", exams.Upcoming)
			session.GET("/exams/:id", exams.Get)
			session.PUT("/exams/:id", exams.Update)
			session.DELETE("/exams/:id", exams.Delete)

			session.GET("/calendar/days/:date", calendar.Day)
			session.POST("/calendar/days/:date/important", calendar.ToggleImportant)
			session.GET("/calendar/important", calendar.Important)

			session.GET("/dashboard", dashboard.Summary)
			session.GET("/timetable", dashboard.Timetable)

			session.GET("/settings", settings.Get)
			session.PUT("/settings", settings.Update)

			session.GET("/notifications", notifications.List)
			session.DELETE("/notifications", notifications.Clear)
			session.POST("/notifications/scan", notifications.Scan)

			session.GET("/data/export", data.Export)
			session.POST("/data/export/:format", data.SaveExport)
			session.GET("/data/download/:token", data.Download)
			session.POST("/data/reset", data.Reset)
		}
	}

	return r
}

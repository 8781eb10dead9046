package router

import (
	"fmt"
	"net/http"
	"simplereminder/internal/interfaces/api/handler"
	"simplereminder/internal/pkg/logger"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/mark3labs/mcp-go/server"
)

// Config holds the dependencies for the router.
type Config struct {
	ReminderHandler *handler.ReminderHandler
	LineHandler     *handler.LineHandler // nil when LINE is not configured
	MCPServer       *server.MCPServer    // nil disables /mcp
	Logger          logger.Logger
}

// NewRouter creates and configures a new Echo router.
func NewRouter(cfg *Config) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	// Middleware
	e.Use(middleware.RequestID())
	// Use custom logger that integrates with our logger interface
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogMethod:    true,
		LogHost:      true,
		LogLatency:   true,
		LogRequestID: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			cfg.Logger.Info(fmt.Sprintf("REQUEST: method=%s, uri=%s, status=%d, latency=%s, req_id=%s",
				v.Method, v.URI, v.Status, v.Latency, v.RequestID,
			))
			return nil
		},
	}))
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{
			echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization,
			"X-Line-Signature", "Mcp-Session-Id",
		},
		MaxAge: 300,
	}))

	// Routes
	e.GET("/", func(c echo.Context) error {
		return c.String(http.StatusOK, "OK")
	})

	h := cfg.ReminderHandler
	reminders := e.Group("/reminders")
	reminders.GET("", h.List)
	reminders.POST("", h.Create)
	reminders.DELETE("", h.DeleteMany)
	reminders.GET("/events", h.Events)
	reminders.GET("/:id", h.Get)
	reminders.PUT("/:id", h.Update)
	reminders.DELETE("/:id", h.Delete)
	reminders.POST("/:id/done", h.Done)

	e.POST("/actions", h.ProcessAction)
	e.POST("/reconcile", h.Reconcile)

	// LINE Webhook Endpoint
	// Note: LINE Platform requires POST for webhook
	if cfg.LineHandler != nil {
		e.POST("/callback", cfg.LineHandler.HandleWebhook)
	}

	if cfg.MCPServer != nil {
		mcpHandler := echo.WrapHandler(server.NewStreamableHTTPServer(cfg.MCPServer))
		e.Any("/mcp", mcpHandler)
	}

	cfg.Logger.Info("Router initialized with routes.")
	return e
}

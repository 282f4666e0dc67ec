package assistantapi

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/lanonasis/lanonasis-maas-sub005/pkg/errx"
	"github.com/lanonasis/lanonasis-maas-sub005/pkg/logx"
	"github.com/lanonasis/lanonasis-maas-sub005/pkg/memory"
	"github.com/lanonasis/lanonasis-maas-sub005/pkg/restx"
)

const requestIDHeader = "X-Request-ID"

type Config struct {
	Development bool
	CORSOrigins []string
	Version     string
	// Token, when set, is required on every /api route.
	Token string
	// AccessLog is where request lines go; nil means stdout.
	AccessLog io.Writer
}

// NewApp builds the bridge: middleware, health, assistant routes and a JSON
// 404. client may be nil, in which case health only reports the bridge.
func NewApp(cfg Config, h *Handlers, client memory.Client) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "LanOnasis Assistant Bridge",
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler(cfg),
		BodyLimit:             1 * 1024 * 1024,
		IdleTimeout:           120 * time.Second,
	})

	setupMiddleware(app, cfg)

	app.Get("/health", healthHandler(cfg, h, client))
	h.RegisterRoutes(app.Group("/api/v1", TokenAuth(cfg.Token)))
	app.Use(notFoundHandler)

	return app
}

func setupMiddleware(app *fiber.App, cfg Config) {
	app.Use(recover.New(recover.Config{
		EnableStackTrace: cfg.Development,
	}))

	app.Use(requestid.New(requestid.Config{
		Header:    requestIDHeader,
		Generator: restx.NewRequestID,
	}))

	origins := "*"
	if len(cfg.CORSOrigins) > 0 {
		origins = strings.Join(cfg.CORSOrigins, ",")
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:  origins,
		AllowHeaders:  "Origin, Content-Type, Accept, Authorization, X-API-Key, X-Request-ID",
		AllowMethods:  "GET, POST, DELETE, OPTIONS",
		ExposeHeaders: requestIDHeader,
	}))

	out := cfg.AccessLog
	if out == nil {
		out = os.Stdout
	}
	format := "${time} | ${status} | ${latency} | ${method} ${path}"
	if cfg.Development {
		format += " | ${ip} | ${respHeader:X-Request-ID}"
	}
	app.Use(logger.New(logger.Config{
		Format:     format + "\n",
		TimeFormat: "2006-01-02 15:04:05",
		TimeZone:   "Local",
		Output:     out,
	}))
}

func healthHandler(cfg Config, h *Handlers, client memory.Client) fiber.Handler {
	return func(c *fiber.Ctx) error {
		health := fiber.Map{
			"status":    "healthy",
			"service":   "lanonasis-assistant-bridge",
			"version":   cfg.Version,
			"sessions":  h.sessions.Len(),
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		}
		if client != nil {
			env := client.HealthCheck(c.UserContext())
			if env.Error != nil {
				health["memory_service"] = "unhealthy"
				health["memory_service_error"] = env.Error.UserMessage()
				health["status"] = "degraded"
			} else {
				health["memory_service"] = env.Data.Status
			}
		}

		status := fiber.StatusOK
		if health["status"] == "degraded" {
			status = fiber.StatusServiceUnavailable
		}
		return c.Status(status).JSON(health)
	}
}

func notFoundHandler(c *fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
		"error":      "Route not found",
		"code":       "NOT_FOUND",
		"path":       c.Path(),
		"method":     c.Method(),
		"request_id": requestID(c),
	})
}

func errorHandler(cfg Config) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		logx.WithFields(logx.Fields{
			"path":       c.Path(),
			"method":     c.Method(),
			"ip":         c.IP(),
			"request_id": requestID(c),
			"user_agent": c.Get("User-Agent"),
		}).Errorf("Request error: %v", err)

		var fe *fiber.Error
		if errors.As(err, &fe) {
			return c.Status(fe.Code).JSON(fiber.Map{
				"error":      fe.Message,
				"code":       "FIBER_ERROR",
				"status":     fe.Code,
				"request_id": requestID(c),
			})
		}

		var e *errx.Error
		if errors.As(err, &e) {
			status := statusOf(e)
			response := fiber.Map{
				"error":      e.UserMessage(),
				"code":       e.Code,
				"type":       string(e.Type),
				"status":     status,
				"request_id": requestID(c),
			}
			if len(e.Fields) > 0 {
				response["details"] = e.Fields
			} else if len(e.Details) > 0 {
				response["details"] = e.Details
			}
			if cfg.Development && e.Err != nil {
				response["underlying_error"] = e.Err.Error()
			}
			return c.Status(status).JSON(response)
		}

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":      "Internal Server Error",
			"type":       "INTERNAL",
			"code":       "INTERNAL_ERROR",
			"request_id": requestID(c),
		})
	}
}

// statusOf prefers the status an error was derived from and otherwise maps
// the code.
func statusOf(e *errx.Error) int {
	if e.StatusCode >= 400 {
		return e.StatusCode
	}
	switch e.Code {
	case errx.CodeValidation:
		return http.StatusBadRequest
	case errx.CodeAuth:
		return http.StatusUnauthorized
	case errx.CodeForbidden:
		return http.StatusForbidden
	case errx.CodeNotFound:
		return http.StatusNotFound
	case errx.CodeConflict:
		return http.StatusConflict
	case errx.CodeRateLimit:
		return http.StatusTooManyRequests
	case errx.CodeTimeout:
		return http.StatusGatewayTimeout
	case errx.CodeNetwork, errx.CodeServer, errx.CodeAPI:
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func requestID(c *fiber.Ctx) string {
	if id := c.GetRespHeader(requestIDHeader); id != "" {
		return id
	}
	return c.Get(requestIDHeader)
}

// Serve listens on addr until ctx is cancelled, then shuts down within
// timeout.
func Serve(ctx context.Context, app *fiber.App, addr string, timeout time.Duration) error {
	errCh := make(chan error, 1)
	go func() {
		logx.Infof("🚀 Assistant bridge listening on %s", addr)
		errCh <- app.Listen(addr)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logx.Info("🛑 Shutting down assistant bridge...")
	if err := app.ShutdownWithTimeout(timeout); err != nil {
		return err
	}
	logx.Info("✅ Assistant bridge stopped")
	return nil
}

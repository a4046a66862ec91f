package handler

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"docflow/internal/model"
	"docflow/internal/service"
)

// Pinger reports dependency health; *sql.DB satisfies it.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Deps are the collaborators the HTTP surface dispatches to.
type Deps struct {
	Uploads   service.IntakeStage
	Contracts service.IntakeStage
	Gatherer  prometheus.Gatherer

	// DB is pinged by /health. Leave nil when no database is configured.
	DB       Pinger
	// Analysis is optional; /analysis is not routed without it.
	Analysis service.AnalysisStage
}

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
func RegisterRoutes(app *fiber.App, d Deps) {
	app.Get("/health", HealthCheck(d.DB))
	app.Get("/healthz", LivenessProbe())

	if d.Gatherer != nil {
		app.Get("/metrics", Metrics(d.Gatherer))
	}

	webhooks := app.Group("/webhooks")
	webhooks.Post("/uploads", IntakeWebhook(d.Uploads))
	webhooks.Post("/contracts", IntakeWebhook(d.Contracts))

	if d.Analysis != nil {
		app.Post("/analysis", AnalyzeDocument(d.Analysis))
	}
}

// HealthCheck pings the database when one is configured.
func HealthCheck(db Pinger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if db != nil {
			ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
			defer cancel()
			if err := db.PingContext(ctx); err != nil {
				return writeError(c, fiber.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "dependency unavailable")
			}
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "healthy"})
	}
}

// LivenessProbe always answers 200.
func LivenessProbe() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	}
}

// Metrics exposes g in the Prometheus text format.
func Metrics(g prometheus.Gatherer) fiber.Handler {
	return adaptor.HTTPHandler(promhttp.HandlerFor(g, promhttp.HandlerOpts{}))
}

// IntakeWebhook wraps the raw request as an event envelope
// {"body", "headers", "httpMethod", "path"} and hands it to stage.
func IntakeWebhook(stage service.IntakeStage) fiber.Handler {
	return func(c *fiber.Ctx) error {
		headers := make(map[string]any)
		for k, v := range c.GetReqHeaders() {
			headers[k] = strings.Join(v, ",")
		}

		ev := model.Event{
			"body":       string(c.Body()),
			"headers":    headers,
			"httpMethod": c.Method(),
			"path":       c.Path(),
		}

		resp, err := stage.Handle(c.UserContext(), ev)
		if err != nil {
			return err
		}
		return writeResponse(c, resp)
	}
}

// AnalyzeDocument decodes an AnalysisEvent from the JSON body. A body that
// does not decode is treated as an empty event, which the stage rejects for
// its missing key.
func AnalyzeDocument(stage service.AnalysisStage) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var ev model.AnalysisEvent
		if err := json.Unmarshal(c.Body(), &ev); err != nil {
			ev = model.AnalysisEvent{}
		}

		resp, err := stage.Handle(c.UserContext(), ev, requestIDFromCtx(c))
		if err != nil {
			return err
		}
		return writeResponse(c, resp)
	}
}

// writeResponse sends a stage response verbatim.
func writeResponse(c *fiber.Ctx, resp model.Response) error {
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Status(resp.StatusCode).SendString(resp.Body)
}

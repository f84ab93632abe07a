package handler

import (
	"fmt"
	"time"

	"ltl-tracker/internal/core/cache"
	"ltl-tracker/internal/features/tracking/domain"
	"ltl-tracker/internal/features/tracking/ports"

	"github.com/gofiber/fiber/v2"
)

// TrackingHandler handles HTTP requests for tracking operations.
type TrackingHandler struct {
	tracker      ports.Tracker
	store        cache.Cache
	batchMaxSize int
	startedAt    time.Time
}

// NewTrackingHandler creates a new TrackingHandler. The store backs the
// health probe and may be nil when caching is disabled; batchMaxSize bounds
// the accepted batch request size at the API boundary.
func NewTrackingHandler(tracker ports.Tracker, store cache.Cache, batchMaxSize int) *TrackingHandler {
	return &TrackingHandler{
		tracker:      tracker,
		store:        store,
		batchMaxSize: batchMaxSize,
		startedAt:    time.Now(),
	}
}

// ErrorResponse represents an error response with Ray ID.
type ErrorResponse struct {
	// Message is the error description.
	Message string `json:"message"`
	// RayID is the unique request identifier for tracing.
	RayID string `json:"ray_id,omitempty"`
}

// BatchRequest is the POST body for batch tracking.
type BatchRequest struct {
	// TrackingNumbers are the PRO numbers to resolve, in caller order.
	TrackingNumbers []string `json:"tracking_numbers"`
}

// GetTracking godoc
// @Summary Track a single shipment
// @Description Resolves one tracking number through the strategy escalation engine. Retrieval failures are reported in the result body, not as HTTP errors.
// @Tags tracking
// @Accept json
// @Produce json
// @Param number path string true "Tracking Number"
// @Param carrier query string false "Carrier hint (e.g., estes, rl_carriers); overrides format-based identification"
// @Success 200 {object} domain.TrackingResult
// @Failure 400 {object} ErrorResponse
// @Router /tracking/{number} [get]
func (h *TrackingHandler) GetTracking(c *fiber.Ctx) error {
	trackingNumber := c.Params("number")
	if trackingNumber == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Message: "tracking number is required",
			RayID:   c.Locals("requestid").(string),
		})
	}

	hint := domain.Carrier(c.Query("carrier"))

	result := h.tracker.Track(c.UserContext(), trackingNumber, hint)
	return c.JSON(result)
}

// TrackBatch godoc
// @Summary Track a batch of shipments
// @Description Resolves a list of tracking numbers under bounded concurrency and per-carrier rate limits. Individual failures do not fail the batch.
// @Tags tracking
// @Accept json
// @Produce json
// @Param request body BatchRequest true "Tracking numbers to resolve"
// @Success 200 {object} domain.BatchJob
// @Failure 400 {object} ErrorResponse
// @Router /tracking/batch [post]
func (h *TrackingHandler) TrackBatch(c *fiber.Ctx) error {
	var req BatchRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Message: "invalid request body",
			RayID:   c.Locals("requestid").(string),
		})
	}

	if len(req.TrackingNumbers) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Message: "tracking_numbers is required",
			RayID:   c.Locals("requestid").(string),
		})
	}
	if h.batchMaxSize > 0 && len(req.TrackingNumbers) > h.batchMaxSize {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Message: fmt.Sprintf("batch size exceeds the maximum of %d", h.batchMaxSize),
			RayID:   c.Locals("requestid").(string),
		})
	}

	job := h.tracker.TrackBatch(c.UserContext(), req.TrackingNumbers)
	return c.JSON(job)
}

// Healthz godoc
// @Summary Health probe
// @Description Reports process uptime and, when a result cache is configured, whether it is reachable.
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 503 {object} map[string]string
// @Router /healthz [get]
func (h *TrackingHandler) Healthz(c *fiber.Ctx) error {
	resp := fiber.Map{
		"status": "ok",
		"uptime": time.Since(h.startedAt).Round(time.Second).String(),
	}

	if h.store != nil {
		if err := h.store.Ping(c.UserContext()); err != nil {
			resp["status"] = "degraded"
			resp["cache"] = "unreachable"
			return c.Status(fiber.StatusServiceUnavailable).JSON(resp)
		}
		resp["cache"] = "ok"
	}

	return c.JSON(resp)
}

// RegisterRoutes mounts the tracking endpoints on the app.
func (h *TrackingHandler) RegisterRoutes(app *fiber.App) {
	app.Get("/healthz", h.Healthz)
	app.Post("/tracking/batch", h.TrackBatch)
	app.Get("/tracking/:number", h.GetTracking)
}

package server

import (
	"encoding/xml"
	"errors"
	"time"

	"github.com/aleister1102/fleetvoice/internal/cache"
	"github.com/aleister1102/fleetvoice/internal/models"
	"github.com/aleister1102/fleetvoice/internal/procwatch"
	"github.com/aleister1102/fleetvoice/internal/tracker"
	"github.com/aleister1102/fleetvoice/internal/voice"
	"github.com/gofiber/fiber/v3"
	"github.com/rs/zerolog"
)

// Acknowledgement bodies for /update.
const (
	ackStarted    = "refresh started"
	ackInProgress = "refresh already in progress"
)

// emptyResponse is served only if the formatter itself fails.
var emptyResponse = []byte(xml.Header + "<Response></Response>")

type handlers struct {
	deps   Dependencies
	logger zerolog.Logger
}

// update starts a refresh cycle in the background and acknowledges at once.
func (h *handlers) update(c fiber.Ctx) error {
	var ids []string
	if id := c.Params("entityId"); id != "" {
		ids = append(ids, id)
	}

	err := h.deps.Refresher.Trigger(ids...)
	switch {
	case err == nil:
		return c.SendString(ackStarted)
	case errors.Is(err, tracker.ErrRefreshInProgress):
		return c.SendString(ackInProgress)
	case errors.Is(err, tracker.ErrUnknownEntity):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	default:
		h.logger.Error().Err(err).Strs("entities", ids).Msg("Refresh could not be started")
		return c.Status(fiber.StatusInternalServerError).SendString("refresh failed to start: " + err.Error())
	}
}

// voiceResponse answers from the cache only. Anything short of a fresh Found
// result gets the apology, never an error status.
func (h *handlers) voiceResponse(c fiber.Ctx) error {
	id := c.Params("entityId")
	if id == "" {
		id = h.deps.DefaultEntity
	}

	var text *string
	if h.deps.Refresher.HasEntity(id) {
		if address, ok := h.deps.Cache.Fresh(id, h.deps.StaleAfter); ok {
			text = &address
		}
	}

	body, err := h.deps.Formatter.Format(text)
	if err != nil {
		h.logger.Error().Err(err).Str("entity_id", id).Msg("Failed to render voice response")
		body = emptyResponse
	}
	c.Set(fiber.HeaderContentType, voice.ContentType)
	return c.Send(body)
}

type statusResponse struct {
	Running          bool                  `json:"running"`
	LastCycle        *models.RefreshReport `json:"last_cycle"`
	Cache            []cache.Entry         `json:"cache"`
	NextScheduledRun *time.Time            `json:"next_scheduled_run,omitempty"`
	Resources        *procwatch.Usage      `json:"resources,omitempty"`
}

func (h *handlers) status(c fiber.Ctx) error {
	resp := statusResponse{
		Running: h.deps.Refresher.Running(),
		Cache:   h.deps.Cache.Snapshot(),
	}
	if report, ok := h.deps.Refresher.LastReport(); ok {
		resp.LastCycle = &report
	}
	if h.deps.Scheduler != nil {
		if next, err := h.deps.Scheduler.NextRun(); err == nil && !next.IsZero() {
			resp.NextScheduledRun = &next
		}
	}
	if h.deps.Resources != nil {
		usage := h.deps.Resources.Usage(c.Context())
		resp.Resources = &usage
	}
	return c.JSON(resp)
}

func (h *handlers) health(c fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

package api

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/insightdelivered/txn-ingest/internal/extractor"
	"github.com/insightdelivered/txn-ingest/internal/ingest"
	"github.com/insightdelivered/txn-ingest/internal/models"
	"github.com/insightdelivered/txn-ingest/internal/normalize"
	"github.com/insightdelivered/txn-ingest/internal/remote"
	"github.com/insightdelivered/txn-ingest/internal/writer"
)

// Record pairs an entry with the id the API assigned to it.
type Record struct {
	ID    string       `json:"id"`
	Entry models.Entry `json:"entry"`
}

// ParseRequest is the JSON body accepted by /api/parse and /api/classify.
type ParseRequest struct {
	Text     string `json:"text"`
	Today    string `json:"today,omitempty"`
	Currency string `json:"currency,omitempty"`
	CSV      bool   `json:"csv,omitempty"`
}

// ParseResponse is the JSON response from /api/parse and /api/classify.
type ParseResponse struct {
	Success bool                `json:"success"`
	Error   string              `json:"error,omitempty"`
	Mode    models.Mode         `json:"mode,omitempty"`
	Records []Record            `json:"records"`
	Skipped []models.SkipRecord `json:"skipped,omitempty"`
	Count   int                 `json:"count"`
	Totals  models.Totals       `json:"totals"`
	CSV     string              `json:"csv,omitempty"`
	Version string              `json:"version,omitempty"`
}

// Submitter queues text for the online classifier. *remote.Queue implements it.
type Submitter interface {
	Submit(ctx context.Context, text, currency string) (*remote.Ticket, error)
}

// Handler holds the HTTP handlers for the API.
type Handler struct {
	Engine   *ingest.Engine
	Remote   Submitter // nil disables /api/classify
	Currency string
	Version  string
	Log      zerolog.Logger

	// Now returns the reference date for undated input. Defaults to time.Now.
	Now func() time.Time
}

// RegisterRoutes sets up the API routes on app.
func (h *Handler) RegisterRoutes(app *fiber.App) {
	api := app.Group("/api")
	api.Get("/health", h.HandleHealth)
	api.Post("/parse", h.HandleParse)
	api.Post("/classify", h.HandleClassify)
}

// HandleHealth reports liveness.
func (h *Handler) HandleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "ok",
		"engine":  "fiber",
		"version": h.Version,
		"remote":  h.Remote != nil,
	})
}

// HandleParse runs the local engine on a JSON body or a multipart upload.
func (h *Handler) HandleParse(c *fiber.Ctx) error {
	req, err := h.readRequest(c)
	if err != nil {
		return err
	}

	today, err := h.today(req.Today)
	if err != nil {
		return err
	}

	result := h.Engine.Parse(req.Text, today)
	return h.respond(c, result, req.CSV)
}

// HandleClassify sends the input to the online classifier and waits for it.
func (h *Handler) HandleClassify(c *fiber.Ctx) error {
	if h.Remote == nil {
		return fiber.NewError(fiber.StatusServiceUnavailable, "remote classification is not configured")
	}

	req, err := h.readRequest(c)
	if err != nil {
		return err
	}
	currency := req.Currency
	if currency == "" {
		currency = h.Currency
	}

	ctx := c.UserContext()
	ticket, err := h.Remote.Submit(ctx, req.Text, currency)
	if err != nil {
		return remoteError(err)
	}
	entries, err := ticket.Wait(ctx)
	if err != nil {
		return remoteError(err)
	}

	h.Log.Info().Str("ticket", ticket.ID).Int("entries", len(entries)).Msg("remote classification finished")
	return h.respond(c, &models.ParseResult{Mode: models.ModeText, Entries: entries}, req.CSV)
}

func (h *Handler) respond(c *fiber.Ctx, result *models.ParseResult, withCSV bool) error {
	records := make([]Record, 0, len(result.Entries))
	for _, e := range result.Entries {
		records = append(records, Record{ID: uuid.New().String(), Entry: e})
	}

	resp := ParseResponse{
		Success: true,
		Mode:    result.Mode,
		Records: records,
		Skipped: result.Skipped,
		Count:   len(records),
		Totals:  result.Totals(),
		Version: h.Version,
	}

	if withCSV {
		var buf bytes.Buffer
		w := &writer.CSVWriter{IncludeHeader: true}
		if err := w.Write(&buf, result.Entries); err != nil {
			return fmt.Errorf("csv generation failed: %w", err)
		}
		resp.CSV = buf.String()
	}

	return c.JSON(resp)
}

// readRequest accepts either a multipart form with a "file" field or a JSON
// ParseRequest body.
func (h *Handler) readRequest(c *fiber.Ctx) (ParseRequest, error) {
	var req ParseRequest

	if strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEMultipartForm) {
		fh, err := c.FormFile("file")
		if err != nil {
			return req, fiber.NewError(fiber.StatusBadRequest, "No file uploaded. Use form field 'file'.")
		}
		f, err := fh.Open()
		if err != nil {
			return req, fiber.NewError(fiber.StatusBadRequest, "Failed to read uploaded file.")
		}
		defer f.Close()

		data, err := io.ReadAll(f)
		if err != nil {
			return req, fiber.NewError(fiber.StatusBadRequest, "Failed to read uploaded file.")
		}
		text, err := extractor.Decode(fh.Filename, data)
		if err != nil {
			return req, fiber.NewError(fiber.StatusUnprocessableEntity, fmt.Sprintf("Text extraction failed: %v", err))
		}

		req.Text = text
		req.Today = c.FormValue("today")
		req.Currency = c.FormValue("currency")
		req.CSV = c.FormValue("csv") == "true"
		return req, nil
	}

	if err := c.BodyParser(&req); err != nil {
		return req, fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("Invalid request body: %v", err))
	}
	return req, nil
}

func (h *Handler) today(s string) (time.Time, error) {
	if s == "" {
		if h.Now != nil {
			return h.Now(), nil
		}
		return time.Now(), nil
	}
	t, err := time.Parse(normalize.Layout, s)
	if err != nil {
		return time.Time{}, fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("today must be YYYY-MM-DD, got %q", s))
	}
	return t, nil
}

func remoteError(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fiber.NewError(fiber.StatusGatewayTimeout, err.Error())
	}

	var remoteErr *remote.Error
	if !errors.As(err, &remoteErr) {
		return fiber.NewError(fiber.StatusBadGateway, err.Error())
	}
	switch remoteErr.Code {
	case remote.ErrRateLimited:
		return fiber.NewError(fiber.StatusTooManyRequests, remoteErr.Error())
	case remote.ErrQueueClosed, remote.ErrNotConfigured:
		return fiber.NewError(fiber.StatusServiceUnavailable, remoteErr.Error())
	case remote.ErrQueueCancelled:
		return fiber.NewError(fiber.StatusGatewayTimeout, remoteErr.Error())
	default:
		return fiber.NewError(fiber.StatusBadGateway, remoteErr.Error())
	}
}

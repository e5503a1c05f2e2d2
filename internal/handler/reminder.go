package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/segyhp/reminder-engine/internal/domain"
	"github.com/segyhp/reminder-engine/internal/repository"
	"github.com/segyhp/reminder-engine/pkg/response"
	"github.com/segyhp/reminder-engine/pkg/utils"
)

// ReminderRunner is the part of the reminder service the HTTP layer drives
type ReminderRunner interface {
	RunOnce(ctx context.Context, today time.Time) (*domain.RunSummary, error)
	Today() time.Time
}

type ReminderHandler struct {
	runner    ReminderRunner
	runs      repository.RunSummaryCache
	validator *validator.Validate
	logger    *zap.Logger
}

func NewReminderHandler(runner ReminderRunner, runs repository.RunSummaryCache, logger *zap.Logger) *ReminderHandler {
	return &ReminderHandler{
		runner:    runner,
		runs:      runs,
		validator: validator.New(),
		logger:    logger,
	}
}

// RegisterRoutes mounts the reminder endpoints on an /api/v1 subrouter
func (h *ReminderHandler) RegisterRoutes(api *mux.Router) {
	api.HandleFunc("/reminders/run", h.Run).Methods(http.MethodPost)
	api.HandleFunc("/reminders/last-run", h.LastRun).Methods(http.MethodGet)
}

// Run triggers a dispatch run. The optional date query parameter
// (YYYY-MM-DD) overrides today and must not be in the future.
func (h *ReminderHandler) Run(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if err := h.validator.Var(date, "omitempty,datetime=2006-01-02"); err != nil {
		response.BadRequest(w, "date must be formatted as YYYY-MM-DD", err)
		return
	}

	today := h.runner.Today()
	if date != "" {
		parsed, err := utils.ParseDate(date)
		if err != nil {
			response.BadRequest(w, "date must be formatted as YYYY-MM-DD", err)
			return
		}
		if parsed.After(today) {
			response.BadRequest(w, "date must not be later than "+utils.FormatDate(today), nil)
			return
		}
		today = parsed
	}

	// A run that started must finish even if the caller goes away.
	summary, err := h.runner.RunOnce(context.WithoutCancel(r.Context()), today)
	if err != nil {
		h.logger.Error("manual reminder run failed", zap.String("date", utils.FormatDate(today)), zap.Error(err))
		message := "Reminder run failed"
		if summary != nil {
			message = summary.Message()
		}
		response.JSON(w, http.StatusInternalServerError, message, summary, err)
		return
	}

	response.Success(w, summary.Message(), summary)
}

// LastRun returns the most recent run summary
func (h *ReminderHandler) LastRun(w http.ResponseWriter, r *http.Request) {
	summary, err := h.runs.Latest(r.Context())
	if err != nil {
		response.InternalServerError(w, "Could not read last run", err)
		return
	}
	if summary == nil {
		response.NotFound(w, "No reminder run recorded yet")
		return
	}

	response.Success(w, summary.Message(), summary)
}

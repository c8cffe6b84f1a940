package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/finwell/cashplan/internal/adapter/http/dto"
	"github.com/finwell/cashplan/internal/domain"
	"github.com/finwell/cashplan/internal/usecase"
)

// ScheduleService defines the behavior needed by ScheduleHandler.
type ScheduleService interface {
	Create(ctx context.Context, input usecase.CreateScheduleInput) (*domain.ScheduledTransaction, error)
	Update(ctx context.Context, id string, input usecase.UpdateScheduleInput) (*domain.ScheduledTransaction, error)
	Delete(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (*domain.ScheduledTransaction, error)
	List(ctx context.Context, criteria usecase.Criteria) ([]*domain.ScheduledTransaction, error)
	GetOccurrence(ctx context.Context, scheduleID string, index int) (*domain.OccurrenceInfo, error)
	RecordOccurrence(ctx context.Context, scheduleID string, index int) (*domain.Transaction, error)
	SkipOccurrence(ctx context.Context, scheduleID string, index int) error
	DeleteOccurrence(ctx context.Context, scheduleID string, index int) error
	RescheduleOccurrence(ctx context.Context, scheduleID string, index int, date domain.DayDate) error
	ResplitOccurrence(ctx context.Context, scheduleID string, index int, origin, destination []domain.Split) error
	ResetOccurrence(ctx context.Context, scheduleID string, index int) error
	UpcomingOccurrences(ctx context.Context, bound domain.DayDate) ([]*domain.OccurrenceInfo, error)
}

// ScheduleHandler handles schedule and occurrence HTTP requests.
type ScheduleHandler struct {
	schedules ScheduleService

	// upcomingHorizon bounds /schedules/upcoming when the client omits an
	// explicit until date.
	upcomingHorizon time.Duration
}

// NewScheduleHandler creates a new ScheduleHandler.
func NewScheduleHandler(schedules ScheduleService, upcomingHorizon time.Duration) *ScheduleHandler {
	return &ScheduleHandler{schedules: schedules, upcomingHorizon: upcomingHorizon}
}

// Create creates a new scheduled transaction template.
func (h *ScheduleHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateScheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	input, err := req.ToUseCaseInput()
	if err != nil {
		writeError(w, mapDomainError(err), "invalid schedule", err.Error())
		return
	}

	schedule, err := h.schedules.Create(r.Context(), input)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to create schedule", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.ScheduleFromDomain(schedule))
}

// Get retrieves a schedule by ID.
func (h *ScheduleHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	schedule, err := h.schedules.Get(r.Context(), id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get schedule", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ScheduleFromDomain(schedule))
}

// Update replaces a schedule's template fields.
func (h *ScheduleHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req dto.UpdateScheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	input, err := req.ToUseCaseInput()
	if err != nil {
		writeError(w, mapDomainError(err), "invalid schedule", err.Error())
		return
	}

	schedule, err := h.schedules.Update(r.Context(), id, input)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to update schedule", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ScheduleFromDomain(schedule))
}

// Delete removes a schedule and its occurrence modifications. Recorded
// transactions survive.
func (h *ScheduleHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.schedules.Delete(r.Context(), id); err != nil {
		writeError(w, mapDomainError(err), "failed to delete schedule", err.Error())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// List lists schedules, optionally filtered by category.
func (h *ScheduleHandler) List(w http.ResponseWriter, r *http.Request) {
	var filters []usecase.Filter
	if v := r.URL.Query().Get("category"); v != "" {
		filters = append(filters, usecase.Filter{Field: "category", Operator: usecase.OperatorEqual, Value: v})
	}

	criteria := usecase.NewCriteria(filters...).
		WithOrder("name", usecase.OrderAsc).
		WithPagination(parseIntQuery(r, "limit", 50), parseIntQuery(r, "offset", 0))

	schedules, err := h.schedules.List(r.Context(), criteria)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to list schedules", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ListSchedulesResponse{
		Schedules: dto.SchedulesFromDomain(schedules),
		Total:     int64(len(schedules)),
	})
}

// Upcoming lists pending occurrences across all schedules up to the until
// query date, defaulting to the configured horizon.
func (h *ScheduleHandler) Upcoming(w http.ResponseWriter, r *http.Request) {
	bound := domain.NewDayDate(time.Now().Add(h.upcomingHorizon))
	if v := r.URL.Query().Get("until"); v != "" {
		parsed, err := domain.ParseDayDate(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid until date", err.Error())
			return
		}
		bound = parsed
	}

	occurrences, err := h.schedules.UpcomingOccurrences(r.Context(), bound)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to list upcoming occurrences", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ListOccurrencesResponse{
		Occurrences: dto.OccurrencesFromDomain(occurrences),
		Total:       int64(len(occurrences)),
	})
}

// GetOccurrence resolves one occurrence: template values overlaid with any
// per-occurrence modification.
func (h *ScheduleHandler) GetOccurrence(w http.ResponseWriter, r *http.Request) {
	id, index, ok := h.occurrenceParams(w, r)
	if !ok {
		return
	}

	occurrence, err := h.schedules.GetOccurrence(r.Context(), id, index)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get occurrence", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.OccurrenceFromDomain(occurrence))
}

// RecordOccurrence materializes a pending occurrence into a real
// transaction and marks it completed.
func (h *ScheduleHandler) RecordOccurrence(w http.ResponseWriter, r *http.Request) {
	id, index, ok := h.occurrenceParams(w, r)
	if !ok {
		return
	}

	transaction, err := h.schedules.RecordOccurrence(r.Context(), id, index)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to record occurrence", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.TransactionFromDomain(transaction))
}

// SkipOccurrence marks a pending occurrence skipped.
func (h *ScheduleHandler) SkipOccurrence(w http.ResponseWriter, r *http.Request) {
	h.occurrenceAction(w, r, h.schedules.SkipOccurrence, "failed to skip occurrence")
}

// DeleteOccurrence marks a pending occurrence deleted.
func (h *ScheduleHandler) DeleteOccurrence(w http.ResponseWriter, r *http.Request) {
	h.occurrenceAction(w, r, h.schedules.DeleteOccurrence, "failed to delete occurrence")
}

// ResetOccurrence discards an occurrence's modification, restoring the
// template projection.
func (h *ScheduleHandler) ResetOccurrence(w http.ResponseWriter, r *http.Request) {
	h.occurrenceAction(w, r, h.schedules.ResetOccurrence, "failed to reset occurrence")
}

// RescheduleOccurrence moves a pending occurrence to a new date.
func (h *ScheduleHandler) RescheduleOccurrence(w http.ResponseWriter, r *http.Request) {
	id, index, ok := h.occurrenceParams(w, r)
	if !ok {
		return
	}

	var req dto.RescheduleOccurrenceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	date, err := domain.ParseDayDate(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date", err.Error())
		return
	}

	if err := h.schedules.RescheduleOccurrence(r.Context(), id, index, date); err != nil {
		writeError(w, mapDomainError(err), "failed to reschedule occurrence", err.Error())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ResplitOccurrence overrides a pending occurrence's splits.
func (h *ScheduleHandler) ResplitOccurrence(w http.ResponseWriter, r *http.Request) {
	id, index, ok := h.occurrenceParams(w, r)
	if !ok {
		return
	}

	var req dto.ResplitOccurrenceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	origin, err := dto.ToDomainSplits(req.OriginSplits)
	if err != nil {
		writeError(w, mapDomainError(err), "invalid origin splits", err.Error())
		return
	}
	destination, err := dto.ToDomainSplits(req.DestinationSplits)
	if err != nil {
		writeError(w, mapDomainError(err), "invalid destination splits", err.Error())
		return
	}

	if err := h.schedules.ResplitOccurrence(r.Context(), id, index, origin, destination); err != nil {
		writeError(w, mapDomainError(err), "failed to resplit occurrence", err.Error())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *ScheduleHandler) occurrenceParams(w http.ResponseWriter, r *http.Request) (string, int, bool) {
	id := chi.URLParam(r, "id")
	index, err := parseIndexParam(chi.URLParam(r, "index"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid occurrence index", err.Error())
		return "", 0, false
	}
	return id, index, true
}

func (h *ScheduleHandler) occurrenceAction(
	w http.ResponseWriter,
	r *http.Request,
	action func(ctx context.Context, scheduleID string, index int) error,
	message string,
) {
	id, index, ok := h.occurrenceParams(w, r)
	if !ok {
		return
	}

	if err := action(r.Context(), id, index); err != nil {
		writeError(w, mapDomainError(err), message, err.Error())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

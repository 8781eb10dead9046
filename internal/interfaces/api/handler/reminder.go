package handler

import (
	"errors"
	"fmt"
	"net/http"
	"simplereminder/internal/application/dto"
	"simplereminder/internal/application/service"
	"simplereminder/internal/domain/entity"
	"simplereminder/internal/pkg/broadcast"
	appErrors "simplereminder/internal/pkg/errors"
	"simplereminder/internal/pkg/logger"
	"strconv"

	"github.com/labstack/echo/v4"
)

// ReminderHandler exposes the reminder service over HTTP.
type ReminderHandler struct {
	reminderService service.ReminderService
	changes         broadcast.Subscriber
	log             logger.Logger
}

// NewReminderHandler creates a new ReminderHandler.
func NewReminderHandler(reminderService service.ReminderService, changes broadcast.Subscriber, log logger.Logger) *ReminderHandler {
	return &ReminderHandler{
		reminderService: reminderService,
		changes:         changes,
		log:             log,
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

// errorStatus maps service errors to HTTP status codes.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, appErrors.ErrReminderNotFound):
		return http.StatusNotFound
	case errors.Is(err, appErrors.ErrInvalidReminder), errors.Is(err, appErrors.ErrMalformedAction):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (h *ReminderHandler) fail(c echo.Context, err error) error {
	status := errorStatus(err)
	if status == http.StatusInternalServerError {
		h.log.Error(fmt.Sprintf("Request %s %s failed", c.Request().Method, c.Path()), err)
		return c.JSON(status, errorResponse{Error: appErrors.ErrInternalServer.Error()})
	}
	return c.JSON(status, errorResponse{Error: err.Error()})
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, errorResponse{Error: msg})
}

func pathID(c echo.Context) (int, error) {
	return strconv.Atoi(c.Param("id"))
}

// List handles GET /reminders.
func (h *ReminderHandler) List(c echo.Context) error {
	reminders, err := h.reminderService.ListReminders(c.Request().Context())
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, dto.ToReminderResponseList(reminders))
}

// Get handles GET /reminders/:id.
func (h *ReminderHandler) Get(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return badRequest(c, "invalid reminder id")
	}
	reminder, err := h.reminderService.GetReminder(c.Request().Context(), id)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, dto.ToReminderResponse(reminder))
}

// Create handles POST /reminders.
func (h *ReminderHandler) Create(c echo.Context) error {
	var req dto.CreateReminderRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	reminder, err := h.reminderService.AddReminder(c.Request().Context(), req)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusCreated, dto.ToReminderResponse(reminder))
}

// Update handles PUT /reminders/:id. Rescheduling is on unless ?reschedule=false.
func (h *ReminderHandler) Update(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return badRequest(c, "invalid reminder id")
	}
	reschedule := true
	if v := c.QueryParam("reschedule"); v != "" {
		if reschedule, err = strconv.ParseBool(v); err != nil {
			return badRequest(c, "invalid reschedule flag")
		}
	}
	var req dto.UpdateReminderRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	reminder, err := h.reminderService.EditReminder(c.Request().Context(), id, req, reschedule)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, dto.ToReminderResponse(reminder))
}

// Done handles POST /reminders/:id/done.
func (h *ReminderHandler) Done(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return badRequest(c, "invalid reminder id")
	}
	ctx := c.Request().Context()
	if _, err := h.reminderService.GetReminder(ctx, id); err != nil {
		return h.fail(c, err)
	}
	payload, err := entity.MarkDoneAction(id).Marshal()
	if err != nil {
		return h.fail(c, err)
	}
	if err := h.reminderService.ProcessAction(ctx, payload); err != nil {
		return h.fail(c, err)
	}
	reminder, err := h.reminderService.GetReminder(ctx, id)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, dto.ToReminderResponse(reminder))
}

// Delete handles DELETE /reminders/:id.
func (h *ReminderHandler) Delete(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return badRequest(c, "invalid reminder id")
	}
	if err := h.reminderService.RemoveReminders(c.Request().Context(), []int{id}); err != nil {
		return h.fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// DeleteMany handles DELETE /reminders with a body of ids.
func (h *ReminderHandler) DeleteMany(c echo.Context) error {
	var req dto.DeleteRemindersRequest
	if err := c.Bind(&req); err != nil || len(req.IDs) == 0 {
		return badRequest(c, "ids are required")
	}
	if err := h.reminderService.RemoveReminders(c.Request().Context(), req.IDs); err != nil {
		return h.fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ProcessAction handles POST /actions.
func (h *ReminderHandler) ProcessAction(c echo.Context) error {
	var req dto.ProcessActionRequest
	if err := c.Bind(&req); err != nil || req.Payload == "" {
		return badRequest(c, "payload is required")
	}
	if err := h.reminderService.ProcessAction(c.Request().Context(), req.Payload); err != nil {
		return h.fail(c, err)
	}
	return c.NoContent(http.StatusAccepted)
}

// Reconcile handles POST /reconcile.
func (h *ReminderHandler) Reconcile(c echo.Context) error {
	report, err := h.reminderService.ReconcileAll(c.Request().Context())
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, report)
}

// Events handles GET /reminders/events as a server-sent event stream with
// one "changed" event per committed change of the reminder collection.
func (h *ReminderHandler) Events(c echo.Context) error {
	changes, unsubscribe := h.changes.Subscribe()
	defer unsubscribe()

	res := c.Response()
	res.Header().Set(echo.HeaderContentType, "text/event-stream")
	res.Header().Set(echo.HeaderCacheControl, "no-cache")
	res.Header().Set(echo.HeaderConnection, "keep-alive")
	res.WriteHeader(http.StatusOK)
	if _, err := fmt.Fprint(res, "event: ready\ndata: {}\n\n"); err != nil {
		return nil
	}
	res.Flush()

	ctx := c.Request().Context()
	for {
		select {
		case <-ctx.Done():
			return nil
		case _, ok := <-changes:
			if !ok {
				return nil
			}
			if _, err := fmt.Fprint(res, "event: changed\ndata: {}\n\n"); err != nil {
				return nil
			}
			res.Flush()
		}
	}
}

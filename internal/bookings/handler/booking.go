package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"stayhub/internal/bookings/service"
	"stayhub/pkg/admission"
	apperrors "stayhub/pkg/errors"
	httputil "stayhub/pkg/http"
	"stayhub/pkg/logger"
	"stayhub/pkg/model"

	"github.com/julienschmidt/httprouter"
)

// BookingHandler serves the booking API. Every operation passes through
// the admission controller, so under load requests are rejected with a
// back-pressure status instead of piling up.
type BookingHandler struct {
	service   service.BookingService
	admission *admission.Controller
	log       *logger.Logger
}

func NewBookingHandler(service service.BookingService, admission *admission.Controller, log *logger.Logger) *BookingHandler {
	return &BookingHandler{
		service:   service,
		admission: admission,
		log:       log,
	}
}

func (h *BookingHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/bookings", h.Create)
	router.GET("/api/v1/bookings/id/:id", h.GetByID)
	router.PATCH("/api/v1/bookings/id/:id", h.UpdateDates)
	router.DELETE("/api/v1/bookings/id/:id", h.Cancel)
	router.GET("/api/v1/bookings/user/:userId", h.GetByUser)
	router.GET("/api/v1/availability", h.CheckAvailability)
}

func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.BookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "Create", apperrors.InvalidInput("Invalid request body"))
		return
	}

	booking, err := admission.Run(h.admission, r.Context(), func(ctx context.Context) (*model.Booking, error) {
		return h.service.Create(ctx, &req)
	})
	if err != nil {
		h.writeError(w, "Create", err)
		return
	}

	if err := httputil.WriteCreated(w, booking); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "error", err)
	}
}

func (h *BookingHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")

	booking, err := admission.Run(h.admission, r.Context(), func(ctx context.Context) (*model.Booking, error) {
		return h.service.GetByID(ctx, id)
	})
	if err != nil {
		h.writeError(w, "GetByID", err)
		return
	}

	if err := httputil.WriteSuccess(w, booking); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "error", err)
	}
}

func (h *BookingHandler) UpdateDates(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")

	var req model.DateChangeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "UpdateDates", apperrors.InvalidInput("Invalid request body"))
		return
	}

	booking, err := admission.Run(h.admission, r.Context(), func(ctx context.Context) (*model.Booking, error) {
		return h.service.UpdateDates(ctx, id, &req)
	})
	if err != nil {
		h.writeError(w, "UpdateDates", err)
		return
	}

	if err := httputil.WriteSuccess(w, booking); err != nil {
		h.log.Error("failed to write success response", "handler", "UpdateDates", "error", err)
	}
}

func (h *BookingHandler) Cancel(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")

	err := admission.Do(h.admission, r.Context(), func(ctx context.Context) error {
		return h.service.Cancel(ctx, id)
	})
	if err != nil {
		h.writeError(w, "Cancel", err)
		return
	}

	httputil.WriteNoContent(w)
}

func (h *BookingHandler) GetByUser(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	userID := ps.ByName("userId")

	bookings, err := admission.Run(h.admission, r.Context(), func(ctx context.Context) ([]model.Booking, error) {
		return h.service.GetByUser(ctx, userID)
	})
	if err != nil {
		h.writeError(w, "GetByUser", err)
		return
	}

	if err := httputil.WriteSuccess(w, bookings); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByUser", "error", err)
	}
}

type availabilityResponse struct {
	RoomID    string `json:"room_id"`
	CheckIn   string `json:"check_in"`
	CheckOut  string `json:"check_out"`
	Available bool   `json:"available"`
}

func (h *BookingHandler) CheckAvailability(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	query := r.URL.Query()
	roomID := query.Get("room_id")
	checkInStr := query.Get("check_in")
	checkOutStr := query.Get("check_out")

	if roomID == "" || checkInStr == "" || checkOutStr == "" {
		h.writeError(w, "CheckAvailability", apperrors.InvalidInput("room_id, check_in and check_out are required"))
		return
	}

	checkIn, err := time.ParseInLocation(model.DateLayout, checkInStr, time.UTC)
	if err != nil {
		h.writeError(w, "CheckAvailability", apperrors.InvalidInput("check_in must be a valid date (YYYY-MM-DD)"))
		return
	}
	checkOut, err := time.ParseInLocation(model.DateLayout, checkOutStr, time.UTC)
	if err != nil {
		h.writeError(w, "CheckAvailability", apperrors.InvalidInput("check_out must be a valid date (YYYY-MM-DD)"))
		return
	}
	if model.Nights(checkIn, checkOut) < 1 {
		h.writeError(w, "CheckAvailability", apperrors.InvalidInput("check_out must be at least one night after check_in"))
		return
	}

	available, err := admission.Run(h.admission, r.Context(), func(ctx context.Context) (bool, error) {
		return h.service.CheckAvailability(ctx, roomID, checkIn, checkOut)
	})
	if err != nil {
		h.writeError(w, "CheckAvailability", err)
		return
	}

	if err := httputil.WriteSuccess(w, availabilityResponse{
		RoomID:    roomID,
		CheckIn:   checkInStr,
		CheckOut:  checkOutStr,
		Available: available,
	}); err != nil {
		h.log.Error("failed to write success response", "handler", "CheckAvailability", "error", err)
	}
}

func (h *BookingHandler) writeError(w http.ResponseWriter, handlerName string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handlerName, "error", writeErr)
	}
}

package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/jwtauth/v5"

	"github.com/teamtrack/teamtrack-backend-go/internal/domain/attendance"
	"github.com/teamtrack/teamtrack-backend-go/internal/handler/http/response"
)

type AttendanceHandler interface {
	CheckIn(w http.ResponseWriter, r *http.Request)
	CheckOut(w http.ResponseWriter, r *http.Request)
	GetStatus(w http.ResponseWriter, r *http.Request)
	Sweep(w http.ResponseWriter, r *http.Request)
	GetMyAttendance(w http.ResponseWriter, r *http.Request)
	ListAttendance(w http.ResponseWriter, r *http.Request)
	GetSettings(w http.ResponseWriter, r *http.Request)
	UpdateSettings(w http.ResponseWriter, r *http.Request)
	RequestCorrection(w http.ResponseWriter, r *http.Request)
	GetMyCorrections(w http.ResponseWriter, r *http.Request)
	ListPendingCorrections(w http.ResponseWriter, r *http.Request)
	ReviewCorrection(w http.ResponseWriter, r *http.Request)
	GetStatistics(w http.ResponseWriter, r *http.Request)
}

type AttendanceHandlerImpl struct {
	attendanceService attendance.AttendanceService
}

func NewAttendanceHandler(attendanceService attendance.AttendanceService) AttendanceHandler {
	return &AttendanceHandlerImpl{attendanceService: attendanceService}
}

// CheckIn implements AttendanceHandler.
func (h *AttendanceHandlerImpl) CheckIn(w http.ResponseWriter, r *http.Request) {
	var checkInReq attendance.CheckInRequest

	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&checkInReq); err != nil {
			slog.Error("CheckIn decode error", "error", err)
			response.BadRequest(w, "Invalid request format", nil)
			return
		}
	}

	ip := r.RemoteAddr
	ua := r.UserAgent()
	checkInReq.IPAddress = &ip
	checkInReq.DeviceInfo = &ua

	record, err := h.attendanceService.CheckIn(r.Context(), checkInReq)
	if err != nil {
		slog.Error("CheckIn service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Checked in successfully", record)
}

// CheckOut implements AttendanceHandler.
func (h *AttendanceHandlerImpl) CheckOut(w http.ResponseWriter, r *http.Request) {
	var checkOutReq attendance.CheckOutRequest

	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&checkOutReq); err != nil {
			slog.Error("CheckOut decode error", "error", err)
			response.BadRequest(w, "Invalid request format", nil)
			return
		}
	}

	ip := r.RemoteAddr
	ua := r.UserAgent()
	checkOutReq.IPAddress = &ip
	checkOutReq.DeviceInfo = &ua

	record, err := h.attendanceService.CheckOut(r.Context(), checkOutReq)
	if err != nil {
		slog.Error("CheckOut service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Checked out successfully", record)
}

// GetStatus implements AttendanceHandler.
func (h *AttendanceHandlerImpl) GetStatus(w http.ResponseWriter, r *http.Request) {
	status, err := h.attendanceService.GetStatus(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, status)
}

// Sweep implements AttendanceHandler. It runs the auto-checkout decision for
// the authenticated user's open session; force bypasses settings.
func (h *AttendanceHandlerImpl) Sweep(w http.ResponseWriter, r *http.Request) {
	var sweepReq attendance.SweepRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&sweepReq); err != nil {
			response.BadRequest(w, "Invalid request format", nil)
			return
		}
	}

	_, claims, err := jwtauth.FromContext(r.Context())
	if err != nil {
		response.Unauthorized(w, err.Error())
		return
	}
	userID, _ := claims["user_id"].(string)

	result, err := h.attendanceService.AutoCheckoutSweep(r.Context(), userID, sweepReq.Force)
	if err != nil {
		slog.Error("Sweep service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func recordFilterFromQuery(r *http.Request) attendance.RecordFilter {
	q := r.URL.Query()

	var filter attendance.RecordFilter
	filter.Page, _ = strconv.Atoi(q.Get("page"))
	filter.Limit, _ = strconv.Atoi(q.Get("limit"))
	filter.SortBy = q.Get("sort_by")
	filter.SortOrder = q.Get("sort_order")

	if v := q.Get("user_id"); v != "" {
		filter.UserID = &v
	}
	if v := q.Get("start_date"); v != "" {
		filter.StartDate = &v
	}
	if v := q.Get("end_date"); v != "" {
		filter.EndDate = &v
	}

	return filter
}

// GetMyAttendance implements AttendanceHandler.
func (h *AttendanceHandlerImpl) GetMyAttendance(w http.ResponseWriter, r *http.Request) {
	list, err := h.attendanceService.GetMyAttendance(r.Context(), recordFilterFromQuery(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMeta(w, list.Records, &response.Meta{
		Page:       list.Page,
		Limit:      list.Limit,
		TotalItems: list.TotalCount,
		TotalPages: list.TotalPages,
	})
}

// ListAttendance implements AttendanceHandler.
func (h *AttendanceHandlerImpl) ListAttendance(w http.ResponseWriter, r *http.Request) {
	list, err := h.attendanceService.ListAttendance(r.Context(), recordFilterFromQuery(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMeta(w, list.Records, &response.Meta{
		Page:       list.Page,
		Limit:      list.Limit,
		TotalItems: list.TotalCount,
		TotalPages: list.TotalPages,
	})
}

// GetSettings implements AttendanceHandler.
func (h *AttendanceHandlerImpl) GetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.attendanceService.GetSettings(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, settings)
}

// UpdateSettings implements AttendanceHandler.
func (h *AttendanceHandlerImpl) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var updateReq attendance.UpdateSettingsRequest

	if err := json.NewDecoder(r.Body).Decode(&updateReq); err != nil {
		slog.Error("UpdateSettings decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	settings, err := h.attendanceService.UpdateSettings(r.Context(), updateReq)
	if err != nil {
		slog.Error("UpdateSettings service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Settings updated successfully", settings)
}

// RequestCorrection implements AttendanceHandler.
func (h *AttendanceHandlerImpl) RequestCorrection(w http.ResponseWriter, r *http.Request) {
	var correctionReq attendance.CreateCorrectionRequest

	if err := json.NewDecoder(r.Body).Decode(&correctionReq); err != nil {
		slog.Error("RequestCorrection decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	correction, err := h.attendanceService.RequestCorrection(r.Context(), correctionReq)
	if err != nil {
		slog.Error("RequestCorrection service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Correction request submitted", correction)
}

// GetMyCorrections implements AttendanceHandler.
func (h *AttendanceHandlerImpl) GetMyCorrections(w http.ResponseWriter, r *http.Request) {
	corrections, err := h.attendanceService.GetMyCorrections(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, corrections)
}

// ListPendingCorrections implements AttendanceHandler.
func (h *AttendanceHandlerImpl) ListPendingCorrections(w http.ResponseWriter, r *http.Request) {
	corrections, err := h.attendanceService.ListPendingCorrections(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, corrections)
}

// ReviewCorrection implements AttendanceHandler.
func (h *AttendanceHandlerImpl) ReviewCorrection(w http.ResponseWriter, r *http.Request) {
	var reviewReq attendance.ReviewCorrectionRequest

	if err := json.NewDecoder(r.Body).Decode(&reviewReq); err != nil {
		slog.Error("ReviewCorrection decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	reviewReq.ID = chi.URLParam(r, "id")

	result, err := h.attendanceService.ReviewCorrection(r.Context(), reviewReq)
	if err != nil {
		slog.Error("ReviewCorrection service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Correction reviewed", result)
}

// GetStatistics implements AttendanceHandler.
func (h *AttendanceHandlerImpl) GetStatistics(w http.ResponseWriter, r *http.Request) {
	filter := attendance.StatsFilter{
		StartDate: r.URL.Query().Get("start_date"),
		EndDate:   r.URL.Query().Get("end_date"),
	}

	stats, err := h.attendanceService.GetStatistics(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, stats)
}

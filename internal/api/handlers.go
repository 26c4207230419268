package api

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"nomadx/internal/export"
	"nomadx/internal/models"
)

func (s *HTTPServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type profileRequest struct {
	Role        models.Role `json:"role"`
	DisplayName string      `json:"display_name,omitempty"`
	Phone       string      `json:"phone,omitempty"`
}

func (s *HTTPServer) handleCreateProfile(w http.ResponseWriter, r *http.Request) {
	var body profileRequest
	if !decode(w, r, &body) {
		return
	}

	account := accountFrom(r.Context())
	profile := &models.UserProfile{
		ID:          account.ID,
		Email:       account.Email,
		Role:        body.Role,
		DisplayName: firstNonEmpty(body.DisplayName, account.DisplayName),
		Phone:       firstNonEmpty(body.Phone, account.PhoneNumber),
	}
	if err := s.svc.Users.Register(r.Context(), profile); err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, profile)
}

func (s *HTTPServer) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := s.svc.Users.GetProfile(r.Context(), accountFrom(r.Context()).ID)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func (s *HTTPServer) handleDashboard(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())

	var (
		summary any
		err     error
	)
	switch sess.Role {
	case models.RoleAgency:
		summary, err = s.svc.Dashboard.Agency(r.Context(), sess)
	case models.RoleCustomer:
		summary, err = s.svc.Dashboard.Customer(r.Context(), sess)
	default:
		summary, err = s.svc.Dashboard.Admin(r.Context(), sess)
	}
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// Bookings

func (s *HTTPServer) handleListBookings(w http.ResponseWriter, r *http.Request) {
	list, err := s.svc.Bookings.List(r.Context(), sessionFrom(r.Context()))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"bookings": list})
}

func (s *HTTPServer) handleCreateBooking(w http.ResponseWriter, r *http.Request) {
	var in models.BookingInput
	if !decode(w, r, &in) {
		return
	}
	id, err := s.svc.Bookings.Create(r.Context(), sessionFrom(r.Context()), in)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

func (s *HTTPServer) handleGetBooking(w http.ResponseWriter, r *http.Request) {
	b, err := s.svc.Bookings.Get(r.Context(), sessionFrom(r.Context()), r.PathValue("id"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (s *HTTPServer) handleUpdateBooking(w http.ResponseWriter, r *http.Request) {
	var patch models.BookingPatch
	if !decode(w, r, &patch) {
		return
	}
	if err := s.svc.Bookings.Update(r.Context(), sessionFrom(r.Context()), r.PathValue("id"), patch); err != nil {
		s.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *HTTPServer) handleDeleteBooking(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Bookings.Delete(r.Context(), sessionFrom(r.Context()), r.PathValue("id")); err != nil {
		s.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *HTTPServer) handleSetBookingStatus(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Status models.BookingStatus `json:"status"`
	}
	if !decode(w, r, &body) {
		return
	}
	if err := s.svc.Bookings.ChangeStatus(r.Context(), sessionFrom(r.Context()), r.PathValue("id"), body.Status); err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": string(body.Status)})
}

func (s *HTTPServer) handleExportBookings(w http.ResponseWriter, r *http.Request) {
	list, err := s.svc.Bookings.List(r.Context(), sessionFrom(r.Context()))
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := export.WriteBookings(&buf, list); err != nil {
		s.respondError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, export.FileName(time.Now())))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

// Suggestions

func (s *HTTPServer) handleSuggest(w http.ResponseWriter, r *http.Request) {
	var req models.SuggestionRequest
	if !decode(w, r, &req) {
		return
	}
	result, err := s.svc.Suggestions.Suggest(r.Context(), sessionFrom(r.Context()), req)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, suggestionResponse(result))
}

func (s *HTTPServer) handleSuggestForBooking(w http.ResponseWriter, r *http.Request) {
	result, err := s.svc.Suggestions.SuggestForBooking(r.Context(), sessionFrom(r.Context()), r.PathValue("id"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, suggestionResponse(result))
}

func suggestionResponse(result *models.Suggestion) map[string]any {
	return map[string]any{
		"suggested_vehicle":  result.SuggestedVehicle,
		"reasoning":          result.Reasoning,
		"confidence_level":   result.ConfidenceLevel,
		"confidence_percent": result.ConfidencePercent(),
	}
}

// Vehicles

func (s *HTTPServer) handleListVehicles(w http.ResponseWriter, r *http.Request) {
	list, err := s.svc.Vehicles.List(r.Context(), sessionFrom(r.Context()))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"vehicles": list})
}

func (s *HTTPServer) handleCreateVehicle(w http.ResponseWriter, r *http.Request) {
	var v models.Vehicle
	if !decode(w, r, &v) {
		return
	}
	if err := s.svc.Vehicles.Create(r.Context(), sessionFrom(r.Context()), &v); err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, v)
}

func (s *HTTPServer) handleGetVehicle(w http.ResponseWriter, r *http.Request) {
	v, err := s.svc.Vehicles.Get(r.Context(), sessionFrom(r.Context()), r.PathValue("id"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (s *HTTPServer) handleUpdateVehicle(w http.ResponseWriter, r *http.Request) {
	var patch models.VehiclePatch
	if !decode(w, r, &patch) {
		return
	}
	if err := s.svc.Vehicles.Update(r.Context(), sessionFrom(r.Context()), r.PathValue("id"), patch); err != nil {
		s.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *HTTPServer) handleDeleteVehicle(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Vehicles.Delete(r.Context(), sessionFrom(r.Context()), r.PathValue("id")); err != nil {
		s.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Employees

func (s *HTTPServer) handleListEmployees(w http.ResponseWriter, r *http.Request) {
	list, err := s.svc.Employees.List(r.Context(), sessionFrom(r.Context()))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"employees": list})
}

func (s *HTTPServer) handleCreateEmployee(w http.ResponseWriter, r *http.Request) {
	var e models.Employee
	if !decode(w, r, &e) {
		return
	}
	if err := s.svc.Employees.Create(r.Context(), sessionFrom(r.Context()), &e); err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, e)
}

func (s *HTTPServer) handleGetEmployee(w http.ResponseWriter, r *http.Request) {
	e, err := s.svc.Employees.Get(r.Context(), sessionFrom(r.Context()), r.PathValue("id"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func (s *HTTPServer) handleUpdateEmployee(w http.ResponseWriter, r *http.Request) {
	var patch models.EmployeePatch
	if !decode(w, r, &patch) {
		return
	}
	if err := s.svc.Employees.Update(r.Context(), sessionFrom(r.Context()), r.PathValue("id"), patch); err != nil {
		s.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *HTTPServer) handleDeleteEmployee(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Employees.Delete(r.Context(), sessionFrom(r.Context()), r.PathValue("id")); err != nil {
		s.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Reviews

func (s *HTTPServer) handleListReviews(w http.ResponseWriter, r *http.Request) {
	list, err := s.svc.Reviews.List(r.Context(), sessionFrom(r.Context()))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"reviews": list})
}

func (s *HTTPServer) handleSubmitReview(w http.ResponseWriter, r *http.Request) {
	var review models.Review
	if !decode(w, r, &review) {
		return
	}
	if err := s.svc.Reviews.Submit(r.Context(), sessionFrom(r.Context()), &review); err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, review)
}

func (s *HTTPServer) handleReviewedBookings(w http.ResponseWriter, r *http.Request) {
	reviewed, err := s.svc.Reviews.ReviewedBookingIDs(r.Context(), sessionFrom(r.Context()))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	ids := make([]string, 0, len(reviewed))
	for id := range reviewed {
		ids = append(ids, id)
	}
	writeJSON(w, http.StatusOK, map[string]any{"booking_ids": ids})
}

func (s *HTTPServer) handleDeleteReview(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Reviews.Delete(r.Context(), sessionFrom(r.Context()), r.PathValue("id")); err != nil {
		s.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Notifications

func (s *HTTPServer) handleListNotifications(w http.ResponseWriter, r *http.Request) {
	list, err := s.svc.Notifications.List(r.Context(), sessionFrom(r.Context()))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"notifications": list})
}

func (s *HTTPServer) handleCreateNotification(w http.ResponseWriter, r *http.Request) {
	var n models.Notification
	if !decode(w, r, &n) {
		return
	}
	if err := s.svc.Notifications.Create(r.Context(), sessionFrom(r.Context()), &n); err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, n)
}

func (s *HTTPServer) handleUnreadCount(w http.ResponseWriter, r *http.Request) {
	count, err := s.svc.Notifications.UnreadCount(r.Context(), sessionFrom(r.Context()))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"unread": count})
}

func (s *HTTPServer) handleMarkRead(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Notifications.MarkRead(r.Context(), sessionFrom(r.Context()), r.PathValue("id")); err != nil {
		s.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *HTTPServer) handleMarkAllRead(w http.ResponseWriter, r *http.Request) {
	n, err := s.svc.Notifications.MarkAllRead(r.Context(), sessionFrom(r.Context()))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"marked": n})
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

package hangouts

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"pup-hangouts/internal/domain/notifications"
	"pup-hangouts/internal/middleware"

	ics "github.com/arran4/golang-ical"
	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service, dispatcher *notifications.Dispatcher) {
	r.Route("/pups/{pupID}/hangouts", func(hr chi.Router) {
		hr.Post("/", createHangoutHandler(svc, dispatcher))
		hr.Get("/", listHangoutsHandler(svc))
	})

	r.Get("/pups/{pupID}/calendar.ics", calendarHandler(svc))

	r.Route("/hangouts/{hangoutID}", func(hr chi.Router) {
		hr.Patch("/", updateHangoutHandler(svc, dispatcher))
		hr.Delete("/", deleteHangoutHandler(svc, dispatcher))
		hr.Post("/claim", claimHangoutHandler(svc, dispatcher))
		hr.Post("/release", releaseHangoutHandler(svc, dispatcher))
		hr.Post("/complete", completeHangoutHandler(svc))
	})

	// Mi agenda como amigo asignado.
	r.Get("/me/hangouts", listMyHangoutsHandler(svc))
}

type recurrenceRequest struct {
	Frequency string `json:"frequency" enums:"daily,weekly,monthly"`
	Count     int    `json:"count"`
	Rule      string `json:"rule"` // RRULE cruda, alternativa a frequency+count
}

type createHangoutRequest struct {
	StartAt              string             `json:"start_at"` // RFC3339
	EndAt                string             `json:"end_at"`   // RFC3339
	DisplayName          string             `json:"display_name"`
	Notes                string             `json:"notes"`
	AssignedFriendUserID *string            `json:"assigned_friend_user_id"`
	Recurrence           *recurrenceRequest `json:"recurrence"`
}

type hangoutResponse struct {
	ID                   string    `json:"id"`
	PupID                string    `json:"pup_id"`
	StartAt              time.Time `json:"start_at"`
	EndAt                time.Time `json:"end_at"`
	Status               Status    `json:"status"`
	AssignedFriendUserID *string   `json:"assigned_friend_user_id,omitempty"`
	CreatedByUserID      string    `json:"created_by_user_id"`
	Notes                string    `json:"notes,omitempty"`
	DisplayName          string    `json:"display_name,omitempty"`
	SeriesID             *string   `json:"series_id,omitempty"`
	SeriesIndex          *int      `json:"series_index,omitempty"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

type windowResponse struct {
	StartAt time.Time `json:"start_at"`
	EndAt   time.Time `json:"end_at"`
}

type notificationResult struct {
	RecipientUserID string `json:"recipient_user_id"`
	RecipientName   string `json:"recipient_name,omitempty"`
	ContactChannel  string `json:"contact_channel,omitempty"`
	Relationship    string `json:"relationship"`
	Outcome         string `json:"outcome" enums:"sent,skipped,failed"`
	Reason          string `json:"reason"`
	Message         string `json:"message"`
}

type createHangoutResponse struct {
	Hangouts           []hangoutResponse    `json:"hangouts"`
	SkippedOccurrences []windowResponse     `json:"skipped_occurrences,omitempty"`
	Notifications      []notificationResult `json:"notifications"`
}

type mutateHangoutResponse struct {
	Hangout       hangoutResponse      `json:"hangout"`
	Notifications []notificationResult `json:"notifications"`
}

func toHangoutResponse(h Hangout) hangoutResponse {
	return hangoutResponse{
		ID:                   h.ID,
		PupID:                h.PupID,
		StartAt:              h.StartAt,
		EndAt:                h.EndAt,
		Status:               h.Status,
		AssignedFriendUserID: h.AssignedFriendUserID,
		CreatedByUserID:      h.CreatedByUserID,
		Notes:                h.Notes,
		DisplayName:          h.DisplayName,
		SeriesID:             h.SeriesID,
		SeriesIndex:          h.SeriesIndex,
		CreatedAt:            h.CreatedAt,
		UpdatedAt:            h.UpdatedAt,
	}
}

func toNotificationResults(results []notifications.Result) []notificationResult {
	out := make([]notificationResult, 0, len(results))
	for _, r := range results {
		out = append(out, notificationResult{
			RecipientUserID: r.RecipientUserID,
			RecipientName:   r.RecipientName,
			ContactChannel:  r.ContactChannel,
			Relationship:    r.Relationship,
			Outcome:         string(r.Outcome),
			Reason:          r.Reason,
			Message:         r.Message,
		})
	}
	return out
}

// createHangoutHandler godoc
// @Summary Crear hangout
// @Description Crea un turno de cuidado (suelto o serie recurrente). Solo el dueño del pup. Cada ocurrencia de una serie se valida por separado contra el calendario; las que chocan se reportan en skipped_occurrences.
// @Tags hangouts
// @Accept json
// @Produce json
// @Param pupID path string true "ID del pup"
// @Param payload body createHangoutRequest true "Ventana, asignación opcional y recurrencia opcional"
// @Success 201 {object} createHangoutResponse
// @Failure 400 {string} string "invalid json / rango inválido"
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "pup not found"
// @Failure 409 {string} string "ventana solapada"
// @Failure 422 {string} string "sin friendship para asignar"
// @Router /pups/{pupID}/hangouts [post]
func createHangoutHandler(svc *Service, dispatcher *notifications.Dispatcher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req createHangoutRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		start, err := time.Parse(time.RFC3339, req.StartAt)
		if err != nil {
			http.Error(w, "start_at must be RFC3339", http.StatusBadRequest)
			return
		}
		end, err := time.Parse(time.RFC3339, req.EndAt)
		if err != nil {
			http.Error(w, "end_at must be RFC3339", http.StatusBadRequest)
			return
		}

		in := CreateInput{
			PupID:                chi.URLParam(r, "pupID"),
			StartAt:              start,
			EndAt:                end,
			DisplayName:          req.DisplayName,
			Notes:                req.Notes,
			AssignedFriendUserID: req.AssignedFriendUserID,
		}
		if req.Recurrence != nil {
			in.Recurrence = &Recurrence{
				Frequency: req.Recurrence.Frequency,
				Count:     req.Recurrence.Count,
				RawRule:   req.Recurrence.Rule,
			}
		}

		out, err := svc.Create(r.Context(), claims.UserID, in)
		if err != nil {
			writeError(w, err)
			return
		}

		resp := createHangoutResponse{
			Hangouts:      make([]hangoutResponse, 0, len(out.Created)),
			Notifications: toNotificationResults(dispatcher.Dispatch(r.Context(), out.Intents)),
		}
		for _, h := range out.Created {
			resp.Hangouts = append(resp.Hangouts, toHangoutResponse(h))
		}
		for _, s := range out.Skipped {
			resp.SkippedOccurrences = append(resp.SkippedOccurrences, windowResponse{StartAt: s.Start, EndAt: s.End})
		}

		writeJSON(w, http.StatusCreated, resp)
	}
}

// optionalString distingue "campo ausente" de "campo en null" en un PATCH.
type optionalString struct {
	Present bool
	Value   *string
}

func (o *optionalString) UnmarshalJSON(b []byte) error {
	o.Present = true
	if string(b) == "null" {
		o.Value = nil
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	o.Value = &s
	return nil
}

type updateHangoutRequest struct {
	DisplayName *string `json:"display_name"`
	Notes       *string `json:"notes"`
	StartAt     *string `json:"start_at"` // RFC3339
	EndAt       *string `json:"end_at"`   // RFC3339

	// null explícito => desasignar y reabrir.
	AssignedFriendUserID optionalString `json:"assigned_friend_user_id"`
}

// updateHangoutHandler godoc
// @Summary Editar hangout
// @Description PATCH con autorización por campo: display_name, notes y assigned_friend_user_id son solo-dueño; start/end los mueve el dueño o el amigo asignado. assigned_friend_user_id en null desasigna y reabre.
// @Tags hangouts
// @Accept json
// @Produce json
// @Param hangoutID path string true "ID del hangout"
// @Param payload body updateHangoutRequest true "Campos a cambiar"
// @Success 200 {object} mutateHangoutResponse
// @Failure 400 {string} string "invalid json / rango inválido"
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "hangout not found"
// @Failure 409 {string} string "ventana solapada / estado terminal"
// @Failure 422 {string} string "sin friendship para reasignar"
// @Router /hangouts/{hangoutID} [patch]
func updateHangoutHandler(svc *Service, dispatcher *notifications.Dispatcher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req updateHangoutRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		in := UpdateInput{
			DisplayName: req.DisplayName,
			Notes:       req.Notes,
		}
		if req.StartAt != nil {
			t, err := time.Parse(time.RFC3339, *req.StartAt)
			if err != nil {
				http.Error(w, "start_at must be RFC3339", http.StatusBadRequest)
				return
			}
			in.StartAt = &t
		}
		if req.EndAt != nil {
			t, err := time.Parse(time.RFC3339, *req.EndAt)
			if err != nil {
				http.Error(w, "end_at must be RFC3339", http.StatusBadRequest)
				return
			}
			in.EndAt = &t
		}
		if req.AssignedFriendUserID.Present {
			if req.AssignedFriendUserID.Value == nil {
				in.ClearAssignedFriend = true
			} else {
				in.AssignedFriendUserID = req.AssignedFriendUserID.Value
			}
		}

		h, intents, err := svc.Update(r.Context(), claims.UserID, chi.URLParam(r, "hangoutID"), in)
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, mutateHangoutResponse{
			Hangout:       toHangoutResponse(h),
			Notifications: toNotificationResults(dispatcher.Dispatch(r.Context(), intents)),
		})
	}
}

// deleteHangoutHandler godoc
// @Summary Borrar hangout
// @Description Borra el turno (equivale a cancelarlo). Solo el dueño. Si estaba ASSIGNED se avisa al amigo; si estaba OPEN se avisa a todo el círculo.
// @Tags hangouts
// @Produce json
// @Param hangoutID path string true "ID del hangout"
// @Success 200 {object} mutateHangoutResponse
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "hangout not found"
// @Router /hangouts/{hangoutID} [delete]
func deleteHangoutHandler(svc *Service, dispatcher *notifications.Dispatcher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		h, intents, err := svc.Delete(r.Context(), claims.UserID, chi.URLParam(r, "hangoutID"))
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, mutateHangoutResponse{
			Hangout:       toHangoutResponse(h),
			Notifications: toNotificationResults(dispatcher.Dispatch(r.Context(), intents)),
		})
	}
}

func claimHangoutHandler(svc *Service, dispatcher *notifications.Dispatcher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		h, intents, err := svc.Claim(r.Context(), claims.UserID, chi.URLParam(r, "hangoutID"))
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, mutateHangoutResponse{
			Hangout:       toHangoutResponse(h),
			Notifications: toNotificationResults(dispatcher.Dispatch(r.Context(), intents)),
		})
	}
}

func releaseHangoutHandler(svc *Service, dispatcher *notifications.Dispatcher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		h, intents, err := svc.Release(r.Context(), claims.UserID, chi.URLParam(r, "hangoutID"))
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, mutateHangoutResponse{
			Hangout:       toHangoutResponse(h),
			Notifications: toNotificationResults(dispatcher.Dispatch(r.Context(), intents)),
		})
	}
}

func completeHangoutHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		h, err := svc.Complete(r.Context(), claims.UserID, chi.URLParam(r, "hangoutID"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toHangoutResponse(h))
	}
}

func listHangoutsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		f, err := parseListFilter(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		items, err := svc.ListForViewer(r.Context(), claims.UserID, chi.URLParam(r, "pupID"), f)
		if err != nil {
			writeError(w, err)
			return
		}

		out := make([]hangoutResponse, 0, len(items))
		for _, h := range items {
			out = append(out, toHangoutResponse(h))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func listMyHangoutsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		f, err := parseListFilter(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		items, err := svc.ListAssignedTo(r.Context(), claims.UserID, f)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]hangoutResponse, 0, len(items))
		for _, h := range items {
			out = append(out, toHangoutResponse(h))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// calendarHandler godoc
// @Summary Calendario ICS del pup
// @Description Exporta los turnos activos (OPEN/ASSIGNED) visibles para el caller como feed iCalendar.
// @Tags hangouts
// @Produce text/calendar
// @Param pupID path string true "ID del pup"
// @Success 200 {string} string "feed iCalendar"
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "pup not found"
// @Router /pups/{pupID}/calendar.ics [get]
func calendarHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		items, err := svc.ListForViewer(r.Context(), claims.UserID, chi.URLParam(r, "pupID"), ListFilter{})
		if err != nil {
			writeError(w, err)
			return
		}

		cal := ics.NewCalendar()
		cal.SetMethod(ics.MethodPublish)

		for _, h := range items {
			if !h.Active() {
				continue
			}
			ev := cal.AddEvent(h.ID)
			ev.SetDtStampTime(h.UpdatedAt)
			ev.SetStartAt(h.StartAt)
			ev.SetEndAt(h.EndAt)
			ev.SetSummary(eventSummary(h))
			if h.Notes != "" {
				ev.SetDescription(h.Notes)
			}
		}

		w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(cal.Serialize()))
	}
}

func eventSummary(h Hangout) string {
	if h.DisplayName != "" {
		return h.DisplayName
	}
	if h.Status == StatusAssigned {
		return "Pup hangout (assigned)"
	}
	return "Pup hangout (open)"
}

func parseListFilter(r *http.Request) (ListFilter, error) {
	var f ListFilter

	if v := strings.TrimSpace(r.URL.Query().Get("from")); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return ListFilter{}, errors.New("from must be RFC3339")
		}
		f.From = &t
	}
	if v := strings.TrimSpace(r.URL.Query().Get("to")); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return ListFilter{}, errors.New("to must be RFC3339")
		}
		f.To = &t
	}
	if v := strings.TrimSpace(r.URL.Query().Get("status")); v != "" {
		st := Status(strings.ToUpper(v))
		switch st {
		case StatusOpen, StatusAssigned, StatusCompleted, StatusCancelled:
			f.Status = &st
		default:
			return ListFilter{}, errors.New("unknown status")
		}
	}

	return f, nil
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		http.Error(w, "not found", http.StatusNotFound)
	case errors.Is(err, ErrForbidden):
		http.Error(w, "forbidden", http.StatusForbidden)
	case errors.Is(err, ErrOverlap), errors.Is(err, ErrBadState):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, ErrNoFriendship):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	default:
		http.Error(w, err.Error(), http.StatusBadRequest)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

package suggestions

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"pup-hangouts/internal/domain/hangouts"
	"pup-hangouts/internal/domain/notifications"
	"pup-hangouts/internal/middleware"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service, dispatcher *notifications.Dispatcher) {
	r.Route("/pups/{pupID}/suggestions", func(sr chi.Router) {
		sr.Post("/", proposeSuggestionHandler(svc, dispatcher))
		sr.Get("/", listSuggestionsHandler(svc))
	})

	r.Route("/suggestions/{suggestionID}", func(sr chi.Router) {
		sr.Patch("/", editSuggestionHandler(svc))
		sr.Delete("/", withdrawSuggestionHandler(svc, dispatcher))
		sr.Post("/decision", decideSuggestionHandler(svc, dispatcher))
	})

	// Mis propuestas, cruzando pups.
	r.Get("/me/suggestions", listMySuggestionsHandler(svc))
}

type recurrenceRequest struct {
	Frequency string `json:"frequency" enums:"daily,weekly,monthly"`
	Count     int    `json:"count"`
	Rule      string `json:"rule"` // RRULE cruda, alternativa a frequency+count
}

type proposeSuggestionRequest struct {
	StartAt     string             `json:"start_at"` // RFC3339
	EndAt       string             `json:"end_at"`   // RFC3339
	DisplayName string             `json:"display_name"`
	Comment     string             `json:"comment"`
	Recurrence  *recurrenceRequest `json:"recurrence"`
}

type suggestionResponse struct {
	ID                string     `json:"id"`
	PupID             string     `json:"pup_id"`
	StartAt           time.Time  `json:"start_at"`
	EndAt             time.Time  `json:"end_at"`
	Status            Status     `json:"status"`
	SuggestedByUserID string     `json:"suggested_by_user_id"`
	DisplayName       string     `json:"display_name,omitempty"`
	Comment           string     `json:"comment,omitempty"`
	DecisionComment   string     `json:"decision_comment,omitempty"`
	DecidedByUserID   *string    `json:"decided_by_user_id,omitempty"`
	DecidedAt         *time.Time `json:"decided_at,omitempty"`
	SeriesID          *string    `json:"series_id,omitempty"`
	SeriesIndex       *int       `json:"series_index,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
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

type proposeSuggestionResponse struct {
	Suggestions   []suggestionResponse `json:"suggestions"`
	Notifications []notificationResult `json:"notifications"`
}

type mutateSuggestionResponse struct {
	Suggestion    suggestionResponse   `json:"suggestion"`
	Notifications []notificationResult `json:"notifications"`
}

type decideSuggestionResponse struct {
	Suggestion    suggestionResponse   `json:"suggestion"`
	Hangout       *hangoutSummary      `json:"hangout,omitempty"`
	Notifications []notificationResult `json:"notifications"`
}

// hangoutSummary es la vista mínima del Hangout nacido de una aprobación; el
// recurso completo vive bajo /hangouts/{id}.
type hangoutSummary struct {
	ID                   string          `json:"id"`
	PupID                string          `json:"pup_id"`
	StartAt              time.Time       `json:"start_at"`
	EndAt                time.Time       `json:"end_at"`
	Status               hangouts.Status `json:"status"`
	AssignedFriendUserID *string         `json:"assigned_friend_user_id,omitempty"`
}

func toSuggestionResponse(sg Suggestion) suggestionResponse {
	return suggestionResponse{
		ID:                sg.ID,
		PupID:             sg.PupID,
		StartAt:           sg.StartAt,
		EndAt:             sg.EndAt,
		Status:            sg.Status,
		SuggestedByUserID: sg.SuggestedByUserID,
		DisplayName:       sg.DisplayName,
		Comment:           sg.Comment,
		DecisionComment:   sg.DecisionComment,
		DecidedByUserID:   sg.DecidedByUserID,
		DecidedAt:         sg.DecidedAt,
		SeriesID:          sg.SeriesID,
		SeriesIndex:       sg.SeriesIndex,
		CreatedAt:         sg.CreatedAt,
		UpdatedAt:         sg.UpdatedAt,
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

// proposeSuggestionHandler godoc
// @Summary Proponer hangout
// @Description Un amigo vinculado propone una ventana (suelta o serie). La sugerencia no ocupa el calendario: no se chequea solapamiento hasta que el dueño apruebe.
// @Tags suggestions
// @Accept json
// @Produce json
// @Param pupID path string true "ID del pup"
// @Param payload body proposeSuggestionRequest true "Ventana, comentario y recurrencia opcional"
// @Success 201 {object} proposeSuggestionResponse
// @Failure 400 {string} string "invalid json / rango inválido"
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "sin friendship con el pup"
// @Failure 404 {string} string "pup not found"
// @Router /pups/{pupID}/suggestions [post]
func proposeSuggestionHandler(svc *Service, dispatcher *notifications.Dispatcher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req proposeSuggestionRequest
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

		in := ProposeInput{
			PupID:       chi.URLParam(r, "pupID"),
			StartAt:     start,
			EndAt:       end,
			DisplayName: req.DisplayName,
			Comment:     req.Comment,
		}
		if req.Recurrence != nil {
			in.Recurrence = &Recurrence{
				Frequency: req.Recurrence.Frequency,
				Count:     req.Recurrence.Count,
				RawRule:   req.Recurrence.Rule,
			}
		}

		out, err := svc.Propose(r.Context(), claims.UserID, in)
		if err != nil {
			writeError(w, err)
			return
		}

		resp := proposeSuggestionResponse{
			Suggestions:   make([]suggestionResponse, 0, len(out.Created)),
			Notifications: toNotificationResults(dispatcher.Dispatch(r.Context(), out.Intents)),
		}
		for _, sg := range out.Created {
			resp.Suggestions = append(resp.Suggestions, toSuggestionResponse(sg))
		}

		writeJSON(w, http.StatusCreated, resp)
	}
}

type decideSuggestionRequest struct {
	Decision string `json:"decision" enums:"APPROVE,REJECT"`
	Comment  string `json:"comment"`
}

// decideSuggestionHandler godoc
// @Summary Decidir sugerencia
// @Description El dueño aprueba o rechaza una sugerencia PENDING, una sola vez. Aprobar crea atómicamente el Hangout ASSIGNED al amigo que propuso, con el comentario de decisión como notas.
// @Tags suggestions
// @Accept json
// @Produce json
// @Param suggestionID path string true "ID de la sugerencia"
// @Param payload body decideSuggestionRequest true "APPROVE o REJECT con comentario opcional"
// @Success 200 {object} decideSuggestionResponse
// @Failure 400 {string} string "invalid json / decisión desconocida"
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "suggestion not found"
// @Failure 409 {string} string "la sugerencia ya fue decidida"
// @Router /suggestions/{suggestionID}/decision [post]
func decideSuggestionHandler(svc *Service, dispatcher *notifications.Dispatcher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req decideSuggestionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		sg, h, intents, err := svc.Decide(r.Context(), claims.UserID, chi.URLParam(r, "suggestionID"), DecideInput{
			Decision: strings.ToUpper(strings.TrimSpace(req.Decision)),
			Comment:  req.Comment,
		})
		if err != nil {
			writeError(w, err)
			return
		}

		resp := decideSuggestionResponse{
			Suggestion:    toSuggestionResponse(sg),
			Notifications: toNotificationResults(dispatcher.Dispatch(r.Context(), intents)),
		}
		if h != nil {
			resp.Hangout = &hangoutSummary{
				ID:                   h.ID,
				PupID:                h.PupID,
				StartAt:              h.StartAt,
				EndAt:                h.EndAt,
				Status:               h.Status,
				AssignedFriendUserID: h.AssignedFriendUserID,
			}
		}

		writeJSON(w, http.StatusOK, resp)
	}
}

type editSuggestionRequest struct {
	DisplayName *string `json:"display_name"`
	Comment     *string `json:"comment"`
	StartAt     *string `json:"start_at"` // RFC3339
	EndAt       *string `json:"end_at"`   // RFC3339
}

// editSuggestionHandler godoc
// @Summary Editar sugerencia
// @Description Patch sobre una sugerencia PENDING; solo quien la creó.
// @Tags suggestions
// @Accept json
// @Produce json
// @Param suggestionID path string true "ID de la sugerencia"
// @Param payload body editSuggestionRequest true "Campos a cambiar"
// @Success 200 {object} suggestionResponse
// @Failure 400 {string} string "invalid json / rango inválido"
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "suggestion not found"
// @Failure 409 {string} string "la sugerencia ya fue decidida"
// @Router /suggestions/{suggestionID} [patch]
func editSuggestionHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req editSuggestionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		in := EditInput{
			DisplayName: req.DisplayName,
			Comment:     req.Comment,
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

		sg, err := svc.Edit(r.Context(), claims.UserID, chi.URLParam(r, "suggestionID"), in)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toSuggestionResponse(sg))
	}
}

// withdrawSuggestionHandler godoc
// @Summary Retirar sugerencia
// @Description Borra una sugerencia PENDING. Puede el creador o el dueño del pup; si la retira el creador se avisa al dueño.
// @Tags suggestions
// @Produce json
// @Param suggestionID path string true "ID de la sugerencia"
// @Success 200 {object} mutateSuggestionResponse
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "suggestion not found"
// @Failure 409 {string} string "la sugerencia ya fue decidida"
// @Router /suggestions/{suggestionID} [delete]
func withdrawSuggestionHandler(svc *Service, dispatcher *notifications.Dispatcher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		sg, intents, err := svc.Withdraw(r.Context(), claims.UserID, chi.URLParam(r, "suggestionID"))
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, mutateSuggestionResponse{
			Suggestion:    toSuggestionResponse(sg),
			Notifications: toNotificationResults(dispatcher.Dispatch(r.Context(), intents)),
		})
	}
}

func listSuggestionsHandler(svc *Service) http.HandlerFunc {
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

		out := make([]suggestionResponse, 0, len(items))
		for _, sg := range items {
			out = append(out, toSuggestionResponse(sg))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func listMySuggestionsHandler(svc *Service) http.HandlerFunc {
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

		items, err := svc.ListMine(r.Context(), claims.UserID, f)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]suggestionResponse, 0, len(items))
		for _, sg := range items {
			out = append(out, toSuggestionResponse(sg))
		}
		writeJSON(w, http.StatusOK, out)
	}
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
		case StatusPending, StatusApproved, StatusRejected:
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
	case errors.Is(err, ErrBadState):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		http.Error(w, err.Error(), http.StatusBadRequest)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

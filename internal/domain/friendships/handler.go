package friendships

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"pup-hangouts/internal/middleware"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/pups/{pupID}/friends", func(fr chi.Router) {
		fr.Post("/", linkFriendHandler(svc))
		fr.Get("/", listFriendsHandler(svc))
		fr.Delete("/{friendUserID}", unlinkFriendHandler(svc))
	})

	// Pups a los que estoy vinculado como amigo.
	r.Get("/me/pups", listMyLinkedPupsHandler(svc))
}

type linkFriendRequest struct {
	FriendUserID string `json:"friend_user_id"`
	History      string `json:"history"`
}

type friendshipResponse struct {
	ID           string    `json:"id"`
	PupID        string    `json:"pup_id"`
	FriendUserID string    `json:"friend_user_id"`
	History      string    `json:"history,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

func toFriendshipResponse(f Friendship) friendshipResponse {
	return friendshipResponse{
		ID:           f.ID,
		PupID:        f.PupID,
		FriendUserID: f.FriendUserID,
		History:      f.History,
		CreatedAt:    f.CreatedAt,
	}
}

// linkFriendHandler godoc
// @Summary Vincular amigo a un pup
// @Description Crea el vínculo (pup, amigo). Solo el dueño. Idempotente si ya existe.
// @Tags friendships
// @Accept json
// @Produce json
// @Param pupID path string true "ID del pup"
// @Param payload body linkFriendRequest true "Amigo a vincular"
// @Success 201 {object} friendshipResponse
// @Failure 400 {string} string "invalid json / rol no es FRIEND"
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "pup or user not found"
// @Router /pups/{pupID}/friends [post]
func linkFriendHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req linkFriendRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		f, err := svc.Link(r.Context(), claims.UserID, LinkInput{
			PupID:        chi.URLParam(r, "pupID"),
			FriendUserID: req.FriendUserID,
			History:      req.History,
		})
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, toFriendshipResponse(f))
	}
}

func listFriendsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		items, err := svc.ListByPup(r.Context(), chi.URLParam(r, "pupID"))
		if err != nil {
			writeError(w, err)
			return
		}

		out := make([]friendshipResponse, 0, len(items))
		for _, f := range items {
			out = append(out, toFriendshipResponse(f))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func unlinkFriendHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		err := svc.Unlink(r.Context(), claims.UserID,
			chi.URLParam(r, "pupID"), chi.URLParam(r, "friendUserID"))
		if err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func listMyLinkedPupsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		items, err := svc.ListByFriend(r.Context(), claims.UserID)
		if err != nil {
			writeError(w, err)
			return
		}

		out := make([]friendshipResponse, 0, len(items))
		for _, f := range items {
			out = append(out, toFriendshipResponse(f))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		http.Error(w, "not found", http.StatusNotFound)
	case errors.Is(err, ErrForbidden):
		http.Error(w, "forbidden", http.StatusForbidden)
	default:
		http.Error(w, err.Error(), http.StatusBadRequest)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

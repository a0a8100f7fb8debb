package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/lib/pq"

	"wishbook/internal/auth"
	"wishbook/internal/contact"
	"wishbook/internal/logger"
	"wishbook/internal/wish"
)

type ContactHandler struct {
	Contacts *contact.Store
	Wishes   *wish.Store
	Jobs     Jobs
}

type contactReq struct {
	Name               string     `json:"name"`
	Email              string     `json:"email"`
	Phone              string     `json:"phone"`
	Relationship       string     `json:"relationship"`
	Birthday           *time.Time `json:"birthday"`
	Anniversary        *time.Time `json:"anniversary"`
	CustomOccasionName string     `json:"custom_occasion_name"`
	CustomOccasionDate *time.Time `json:"custom_occasion_date"`
	Notes              string     `json:"notes"`
	Tags               []string   `json:"tags"`
}

func (h *ContactHandler) Create(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())

	var req contactReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		http.Error(w, "name is required", http.StatusBadRequest)
		return
	}
	if req.Relationship == "" {
		req.Relationship = "Friend"
	}

	c := contact.Contact{
		UserID:             uid,
		Name:               req.Name,
		Email:              strings.TrimSpace(strings.ToLower(req.Email)),
		Phone:              strings.TrimSpace(req.Phone),
		Relationship:       req.Relationship,
		Birthday:           req.Birthday,
		Anniversary:        req.Anniversary,
		CustomOccasionName: req.CustomOccasionName,
		CustomOccasionDate: req.CustomOccasionDate,
		Notes:              req.Notes,
		Tags:               pq.StringArray(req.Tags),
	}
	if err := h.Contacts.Create(r.Context(), &c); err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"contact_id": c.ID,
	})
}

func (h *ContactHandler) List(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())

	out, err := h.Contacts.ListByOwner(r.Context(), uid)
	if err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"contacts": out,
		"count":    len(out),
	})
}

// Delete removes a contact together with its wishes, cancelling their
// scheduler jobs so nothing fires for a recipient that no longer exists.
func (h *ContactHandler) Delete(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())

	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "bad id", http.StatusBadRequest)
		return
	}

	if err := h.Contacts.DeleteByOwner(r.Context(), uid, id); err != nil {
		if errors.Is(err, contact.ErrNotFound) {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	wishIDs, err := h.Wishes.DeleteByContact(r.Context(), uid, id)
	if err != nil {
		logger.Error("contact wish cascade failed", "contact_id", id, "error", err)
	}
	for _, wid := range wishIDs {
		h.Jobs.Cancel(wid)
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"deleted":        id,
		"wishes_removed": len(wishIDs),
	})
}

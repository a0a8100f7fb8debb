package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"gorm.io/gorm"

	"wishbook/internal/auth"
	"wishbook/internal/logger"
	"wishbook/internal/plan"
	"wishbook/internal/wish"
)

// Jobs is the scheduler surface the HTTP layer needs.
type Jobs interface {
	Enroll(fireAt time.Time, wishID uint64) string
	Cancel(wishID uint64) int
}

type WishHandler struct {
	DB    *gorm.DB
	Store *wish.Store
	Plans *plan.Store
	Jobs  Jobs
}

type scheduleReq struct {
	RecipientName  string  `json:"recipient_name"`
	RecipientEmail string  `json:"recipient_email"`
	PhoneNumber    string  `json:"phone_number"`
	TelegramChatID string  `json:"telegram_chat_id"`
	Platform       string  `json:"platform"`
	Occasion       string  `json:"occasion"`
	Tone           string  `json:"tone"`
	ExtraDetails   string  `json:"extra_details"`
	MediaURL       string  `json:"media_url"`
	TemplateID     string  `json:"template_id"`
	SendAt         string  `json:"send_at"`
	Recurrence     string  `json:"recurrence"`
	ContactID      *uint64 `json:"contact_id"`
	EventName      string  `json:"event_name"`
	EventType      string  `json:"event_type"`
}

// Schedule validates the request, enforces the owner's monthly plan limit,
// persists a pending record, and enrolls its scheduler job.
func (h *WishHandler) Schedule(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())

	var req scheduleReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}

	req.RecipientName = strings.TrimSpace(req.RecipientName)
	req.Occasion = strings.TrimSpace(req.Occasion)
	if req.RecipientName == "" || req.Occasion == "" {
		http.Error(w, "recipient_name and occasion are required", http.StatusBadRequest)
		return
	}
	if !wish.ValidPlatform(req.Platform) {
		http.Error(w, "unknown platform", http.StatusBadRequest)
		return
	}

	dueAt, err := time.Parse(time.RFC3339, req.SendAt)
	if err != nil {
		http.Error(w, "send_at must be RFC3339", http.StatusBadRequest)
		return
	}
	dueAt = dueAt.UTC()
	if dueAt.Before(time.Now().UTC()) {
		http.Error(w, "send_at must be in the future", http.StatusBadRequest)
		return
	}

	rec, err := wish.ParseRecurrence(req.Recurrence)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if req.Tone == "" {
		req.Tone = "warm"
	}

	record := wish.Wish{
		UserID:         uid,
		ContactID:      req.ContactID,
		RecipientName:  req.RecipientName,
		RecipientEmail: strings.TrimSpace(req.RecipientEmail),
		PhoneNumber:    strings.TrimSpace(req.PhoneNumber),
		TelegramChatID: strings.TrimSpace(req.TelegramChatID),
		Platform:       req.Platform,
		Occasion:       req.Occasion,
		Tone:           req.Tone,
		ExtraDetails:   req.ExtraDetails,
		MediaURL:       req.MediaURL,
		TemplateID:     req.TemplateID,
		DueAt:          dueAt,
		Recurrence:     rec,
		EventName:      req.EventName,
		EventType:      req.EventType,
		Status:         wish.StatusPending,
	}
	if _, err := record.Destination(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ok, err := h.withinMonthlyLimit(r, uid)
	if err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	if !ok {
		http.Error(w, "monthly wish limit reached for your plan", http.StatusForbidden)
		return
	}

	if err := h.Store.Create(r.Context(), &record); err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	jobID := h.Jobs.Enroll(record.DueAt, record.ID)

	logger.Info("wish scheduled",
		"wish_id", record.ID, "user_id", uid,
		"platform", record.Platform, "due_at", record.DueAt)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"wish_id":    record.ID,
		"job_id":     jobID,
		"status":     record.Status,
		"due_at":     record.DueAt,
		"recurrence": record.Recurrence.String(),
	})
}

func (h *WishHandler) withinMonthlyLimit(r *http.Request, uid uint64) (bool, error) {
	var u auth.User
	if err := h.DB.WithContext(r.Context()).First(&u, uid).Error; err != nil {
		return false, err
	}
	p, err := h.Plans.ByName(r.Context(), u.SubscriptionPlan)
	if err != nil {
		return false, err
	}
	if p == nil || p.MessageLimit <= 0 {
		return true, nil
	}

	now := time.Now().UTC()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	n, err := h.Store.CountByOwnerSince(r.Context(), uid, monthStart)
	if err != nil {
		return false, err
	}
	return n < int64(p.MessageLimit), nil
}

func (h *WishHandler) List(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())

	f := wish.ListFilter{
		Status:   r.URL.Query().Get("status"),
		Platform: r.URL.Query().Get("platform"),
	}
	out, err := h.Store.ListByOwner(r.Context(), uid, f)
	if err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"wishes": wishViews(out),
		"count":  len(out),
	})
}

func (h *WishHandler) History(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())

	out, err := h.Store.ListHistory(r.Context(), uid)
	if err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"wishes": wishViews(out),
		"count":  len(out),
	})
}

// Delete removes the record and cancels its pending job. An already-running
// execution is allowed to finish; its final status re-read makes the late
// commit a no-op.
func (h *WishHandler) Delete(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())

	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "bad id", http.StatusBadRequest)
		return
	}

	if err := h.Store.DeleteByOwner(r.Context(), uid, id); err != nil {
		if errors.Is(err, wish.ErrNotFound) {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	h.Jobs.Cancel(id)

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"deleted": id,
	})
}

type wishView struct {
	ID            uint64    `json:"id"`
	RecipientName string    `json:"recipient_name"`
	Platform      string    `json:"platform"`
	Occasion      string    `json:"occasion"`
	Tone          string    `json:"tone"`
	DueAt         time.Time `json:"due_at"`
	Recurrence    string    `json:"recurrence"`
	Status        string    `json:"status"`
	GeneratedText string    `json:"generated_text,omitempty"`
	LastError     string    `json:"last_error,omitempty"`
	ContactID     *uint64   `json:"contact_id,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

func wishViews(in []wish.Wish) []wishView {
	out := make([]wishView, 0, len(in))
	for _, w := range in {
		out = append(out, wishView{
			ID:            w.ID,
			RecipientName: w.RecipientName,
			Platform:      w.Platform,
			Occasion:      w.Occasion,
			Tone:          w.Tone,
			DueAt:         w.DueAt,
			Recurrence:    w.Recurrence.String(),
			Status:        w.Status,
			GeneratedText: w.GeneratedText,
			LastError:     w.LastError,
			ContactID:     w.ContactID,
			CreatedAt:     w.CreatedAt,
		})
	}
	return out
}

package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"wishbook/internal/auth"
	"wishbook/internal/genai"
	"wishbook/internal/wish"
)

type GenerateHandler struct {
	Gen     *genai.Client
	Store   *wish.Store
	Timeout time.Duration
}

type generateReq struct {
	Occasion      string `json:"occasion"`
	RecipientName string `json:"recipient_name"`
	Tone          string `json:"tone"`
	ExtraDetails  string `json:"extra_details"`
	Length        string `json:"length"`
}

// GenerateWish produces a wish on demand, outside the scheduler. The result
// is persisted as a terminal "generated" record so it shows up in history.
func (h *GenerateHandler) GenerateWish(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())

	var req generateReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	req.Occasion = strings.TrimSpace(req.Occasion)
	req.RecipientName = strings.TrimSpace(req.RecipientName)
	if req.Occasion == "" || req.RecipientName == "" {
		http.Error(w, "occasion and recipient_name are required", http.StatusBadRequest)
		return
	}
	if req.Tone == "" {
		req.Tone = "warm"
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	text, err := h.Gen.GenerateWish(ctx, genai.Input{
		Occasion:      req.Occasion,
		RecipientName: req.RecipientName,
		Tone:          req.Tone,
		ExtraDetails:  req.ExtraDetails,
		Length:        req.Length,
	})
	if err != nil {
		if errors.Is(err, genai.ErrGenerationUnavailable) {
			http.Error(w, "text generation unavailable", http.StatusServiceUnavailable)
			return
		}
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	record := wish.Wish{
		UserID:        uid,
		RecipientName: req.RecipientName,
		Platform:      wish.PlatformWeb,
		Occasion:      req.Occasion,
		Tone:          req.Tone,
		ExtraDetails:  req.ExtraDetails,
		DueAt:         time.Now().UTC(),
		Status:        wish.StatusGenerated,
		GeneratedText: text,
	}
	if err := h.Store.Create(r.Context(), &record); err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"wish_id": record.ID,
		"text":    text,
	})
}

type imagePromptReq struct {
	WishText string `json:"wish_text"`
}

// GenerateImagePrompt turns wish text into an art-direction prompt and a
// ready-to-use image URL for the pollinations text-to-image endpoint.
func (h *GenerateHandler) GenerateImagePrompt(w http.ResponseWriter, r *http.Request) {
	var req imagePromptReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	req.WishText = strings.TrimSpace(req.WishText)
	if req.WishText == "" {
		http.Error(w, "wish_text is required", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	desc, err := h.Gen.DescribeVisually(ctx, req.WishText)
	if err != nil {
		if errors.Is(err, genai.ErrGenerationUnavailable) {
			http.Error(w, "text generation unavailable", http.StatusServiceUnavailable)
			return
		}
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	imageURL := "https://image.pollinations.ai/prompt/" + url.PathEscape(desc) +
		"?width=1024&height=576&nologo=true"

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"prompt":    desc,
		"image_url": imageURL,
	})
}

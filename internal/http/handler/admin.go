package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"gorm.io/gorm"

	"wishbook/internal/auth"
	"wishbook/internal/metrics"
	"wishbook/internal/scheduler"
	"wishbook/internal/wish"
)

// statCache memoizes one admin payload for a short window so dashboard
// polling does not hammer the aggregate queries.
type statCache struct {
	mu      sync.Mutex
	value   any
	expires time.Time
}

func (c *statCache) get(ttl time.Duration, fill func() (any, error)) (any, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.value != nil && time.Now().Before(c.expires) {
		return c.value, nil
	}
	v, err := fill()
	if err != nil {
		return nil, err
	}
	c.value = v
	c.expires = time.Now().Add(ttl)
	return v, nil
}

type AdminHandler struct {
	DB      *gorm.DB
	Store   *wish.Store
	Sched   *scheduler.Scheduler
	Latency *metrics.LatencyHistory

	statsCache     statCache
	analyticsCache statCache
}

const adminCacheTTL = 15 * time.Second

func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	v, err := h.statsCache.get(adminCacheTTL, func() (any, error) {
		return h.buildStats(r.Context())
	})
	if err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func (h *AdminHandler) buildStats(ctx context.Context) (any, error) {
	var users int64
	if err := h.DB.WithContext(ctx).Model(&auth.User{}).Count(&users).Error; err != nil {
		return nil, err
	}
	total, err := h.Store.CountAll(ctx)
	if err != nil {
		return nil, err
	}
	today := time.Now().UTC().Truncate(24 * time.Hour)
	createdToday, err := h.Store.CountCreatedSince(ctx, today)
	if err != nil {
		return nil, err
	}

	return map[string]any{
		"total_users":  users,
		"total_wishes": total,
		"wishes_today": createdToday,
		"active_jobs":  h.Sched.Stats().ActiveJobs,
	}, nil
}

func (h *AdminHandler) Analytics(w http.ResponseWriter, r *http.Request) {
	v, err := h.analyticsCache.get(adminCacheTTL, func() (any, error) {
		return h.buildAnalytics(r.Context())
	})
	if err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func (h *AdminHandler) buildAnalytics(ctx context.Context) (any, error) {
	daily, err := h.Store.DailyCounts(ctx, 7)
	if err != nil {
		return nil, err
	}
	days := make([]map[string]any, 0, len(daily))
	for _, d := range daily {
		days = append(days, map[string]any{
			"date":  d.Date.Format("2006-01-02"),
			"count": d.Count,
		})
	}

	platforms := map[string]int64{}
	for _, p := range []string{wish.PlatformEmail, wish.PlatformWhatsApp, wish.PlatformTelegram, wish.PlatformWeb} {
		n, err := h.Store.CountByPlatform(ctx, p)
		if err != nil {
			return nil, err
		}
		platforms[p] = n
	}

	top, err := h.Store.TopSenders(ctx, 10)
	if err != nil {
		return nil, err
	}
	senders := make([]map[string]any, 0, len(top))
	for _, t := range top {
		var u auth.User
		email := "unknown"
		if err := h.DB.WithContext(ctx).First(&u, t.UserID).Error; err == nil {
			email = u.Email
		}
		senders = append(senders, map[string]any{
			"email": email,
			"count": t.Count,
		})
	}

	return map[string]any{
		"daily":       days,
		"platforms":   platforms,
		"top_senders": senders,
	}, nil
}

// System reports live scheduler and generation health. Never cached; the
// point is the current state.
func (h *AdminHandler) System(w http.ResponseWriter, r *http.Request) {
	st := h.Sched.Stats()
	sum := h.Latency.Summarize()

	recent := h.Latency.Recent(20)
	samples := make([]map[string]any, 0, len(recent))
	for _, s := range recent {
		samples = append(samples, map[string]any{
			"at":         s.At,
			"latency_ms": s.LatencyMS,
		})
	}

	var next any
	if st.NextFireAt != nil {
		next = st.NextFireAt
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"scheduler": map[string]any{
			"running":      st.Running,
			"active_jobs":  st.ActiveJobs,
			"next_fire_at": next,
		},
		"generation": map[string]any{
			"avg_latency_ms": sum.AvgLatencyMS,
			"sample_count":   sum.Count,
			"recent":         samples,
		},
	})
}

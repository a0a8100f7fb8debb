package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"wishbook/internal/auth"
	"wishbook/internal/plan"
	"wishbook/internal/testutil"
	"wishbook/internal/wish"
)

type fakeJobs struct {
	enrolled  []uint64
	cancelled []uint64
}

func (f *fakeJobs) Enroll(_ time.Time, wishID uint64) string {
	f.enrolled = append(f.enrolled, wishID)
	return "job"
}

func (f *fakeJobs) Cancel(wishID uint64) int {
	f.cancelled = append(f.cancelled, wishID)
	return 1
}

type testEnv struct {
	db     *gorm.DB
	store  *wish.Store
	jobs   *fakeJobs
	router http.Handler
	jwt    *auth.JWT
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := testutil.OpenDB(t, &auth.User{}, &plan.Plan{}, &wish.Wish{})
	require.NoError(t, plan.Seed(db))

	store := &wish.Store{DB: db}
	jobs := &fakeJobs{}
	jwtSvc := auth.NewJWT("test-secret")

	h := &WishHandler{DB: db, Store: store, Plans: &plan.Store{DB: db}, Jobs: jobs}

	r := chi.NewRouter()
	r.Group(func(r chi.Router) {
		r.Use(auth.RequireAuth(jwtSvc))
		r.Post("/api/schedule", h.Schedule)
		r.Get("/api/scheduled-wishes", h.List)
		r.Delete("/api/scheduled-wishes/{id}", h.Delete)
	})

	return &testEnv{db: db, store: store, jobs: jobs, router: r, jwt: jwtSvc}
}

func (e *testEnv) newUser(t *testing.T, email, planName string) (uint64, string) {
	t.Helper()
	u := auth.User{Email: email, PasswordHash: "x", Role: auth.RoleUser, SubscriptionPlan: planName}
	require.NoError(t, e.db.Create(&u).Error)
	token, err := e.jwt.Sign(u.ID)
	require.NoError(t, err)
	return u.ID, token
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func scheduleBody(sendAt time.Time) map[string]any {
	return map[string]any{
		"recipient_name":  "Budi",
		"recipient_email": "budi@example.com",
		"platform":        "email",
		"occasion":        "birthday",
		"send_at":         sendAt.Format(time.RFC3339),
	}
}

func TestScheduleCreatesPendingAndEnrollsJob(t *testing.T) {
	e := newTestEnv(t)
	uid, token := e.newUser(t, "a@example.com", "premium")

	rec := e.do(t, http.MethodPost, "/api/schedule", token, scheduleBody(time.Now().UTC().Add(time.Hour)))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp struct {
		WishID uint64 `json:"wish_id"`
		Status string `json:"status"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, wish.StatusPending, resp.Status)
	require.Equal(t, []uint64{resp.WishID}, e.jobs.enrolled)

	stored, err := e.store.Load(context.Background(), resp.WishID)
	require.NoError(t, err)
	require.Equal(t, uid, stored.UserID)
	require.Equal(t, wish.StatusPending, stored.Status)
}

func TestScheduleRejectsBadInput(t *testing.T) {
	e := newTestEnv(t)
	_, token := e.newUser(t, "b@example.com", "premium")
	future := time.Now().UTC().Add(time.Hour)

	past := scheduleBody(time.Now().UTC().Add(-time.Hour))
	rec := e.do(t, http.MethodPost, "/api/schedule", token, past)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	badPlatform := scheduleBody(future)
	badPlatform["platform"] = "carrier-pigeon"
	rec = e.do(t, http.MethodPost, "/api/schedule", token, badPlatform)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	noDest := scheduleBody(future)
	noDest["recipient_email"] = ""
	rec = e.do(t, http.MethodPost, "/api/schedule", token, noDest)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	require.Empty(t, e.jobs.enrolled)
}

func TestScheduleEnforcesMonthlyPlanLimit(t *testing.T) {
	e := newTestEnv(t)
	_, token := e.newUser(t, "c@example.com", "free")

	// Free tier allows 5 wishes per calendar month.
	for i := 0; i < 5; i++ {
		rec := e.do(t, http.MethodPost, "/api/schedule", token, scheduleBody(time.Now().UTC().Add(time.Hour)))
		require.Equal(t, http.StatusCreated, rec.Code, "wish %d: %s", i, rec.Body.String())
	}

	rec := e.do(t, http.MethodPost, "/api/schedule", token, scheduleBody(time.Now().UTC().Add(time.Hour)))
	require.Equal(t, http.StatusForbidden, rec.Code)
	require.Len(t, e.jobs.enrolled, 5)
}

func TestDeleteCancelsJobAndChecksOwnership(t *testing.T) {
	e := newTestEnv(t)
	_, token := e.newUser(t, "d@example.com", "premium")
	_, otherToken := e.newUser(t, "e@example.com", "premium")

	rec := e.do(t, http.MethodPost, "/api/schedule", token, scheduleBody(time.Now().UTC().Add(time.Hour)))
	require.Equal(t, http.StatusCreated, rec.Code)
	var resp struct {
		WishID uint64 `json:"wish_id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	path := fmt.Sprintf("/api/scheduled-wishes/%d", resp.WishID)

	rec = e.do(t, http.MethodDelete, path, otherToken, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Empty(t, e.jobs.cancelled)

	rec = e.do(t, http.MethodDelete, path, token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, []uint64{resp.WishID}, e.jobs.cancelled)
}

func TestListFiltersByStatus(t *testing.T) {
	e := newTestEnv(t)
	uid, token := e.newUser(t, "f@example.com", "premium")

	for _, st := range []string{wish.StatusPending, wish.StatusSent} {
		w := &wish.Wish{
			UserID:         uid,
			RecipientName:  "Sari",
			RecipientEmail: "sari@example.com",
			Platform:       wish.PlatformEmail,
			Occasion:       "birthday",
			Tone:           "warm",
			DueAt:          time.Now().UTC().Add(time.Hour),
			Status:         st,
		}
		require.NoError(t, e.store.Create(context.Background(), w))
	}

	rec := e.do(t, http.MethodGet, "/api/scheduled-wishes?status=pending", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Count  int `json:"count"`
		Wishes []struct {
			Status string `json:"status"`
		} `json:"wishes"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, 1, resp.Count)
	require.Equal(t, wish.StatusPending, resp.Wishes[0].Status)
}

func TestRoutesRequireAuth(t *testing.T) {
	e := newTestEnv(t)

	rec := e.do(t, http.MethodGet, "/api/scheduled-wishes", "", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = e.do(t, http.MethodPost, "/api/schedule", "garbage", scheduleBody(time.Now().Add(time.Hour)))
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

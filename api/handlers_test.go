package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"social-analytics/api"
	"social-analytics/models"
	"social-analytics/utils"
)

type mockStore struct {
	accounts []models.Account
	history  map[int64][]models.AnalyticsData
	listErr  error
}

func (m *mockStore) AddAccount(_ context.Context, platform models.Platform, handle string) (models.Account, error) {
	if strings.TrimSpace(handle) == "" {
		return models.Account{}, fmt.Errorf("%w: empty handle", models.ErrMalformedInput)
	}
	acc := models.Account{ID: int64(len(m.accounts) + 1), Platform: platform, Handle: handle}
	m.accounts = append(m.accounts, acc)
	return acc, nil
}

func (m *mockStore) ListAccounts(context.Context) ([]models.Account, error) {
	return m.accounts, m.listErr
}

func (m *mockStore) Account(_ context.Context, id int64) (models.Account, error) {
	for _, a := range m.accounts {
		if a.ID == id {
			return a, nil
		}
	}
	return models.Account{}, fmt.Errorf("account %d: %w", id, models.ErrNotFound)
}

func (m *mockStore) History(_ context.Context, id int64) ([]models.AnalyticsData, error) {
	return m.history[id], nil
}

type mockAnalytics struct{}

func (mockAnalytics) Collect(_ context.Context, accounts []models.Account) map[int64]models.AccountAnalytics {
	out := make(map[int64]models.AccountAnalytics, len(accounts))
	for _, a := range accounts {
		out[a.ID] = models.AccountAnalytics{
			Platform: a.Platform,
			Handle:   a.Handle,
			Source:   models.SourceScraper,
			Metrics:  models.EngagementSummary{TotalInteractions: 20, EngagementRate: 20},
		}
	}
	return out
}

type scheduled struct {
	platform models.Platform
	message  string
	runAt    time.Time
}

type mockScheduler struct {
	postResult bool
	posted     []string
	scheduled  []scheduled
}

func (m *mockScheduler) PostNow(_ context.Context, _ models.Platform, message string) bool {
	m.posted = append(m.posted, message)
	return m.postResult
}

func (m *mockScheduler) Schedule(platform models.Platform, message string, runAt time.Time) string {
	m.scheduled = append(m.scheduled, scheduled{platform, message, runAt})
	return "job-1"
}

func (m *mockScheduler) Job(id string) (models.ScheduledJob, error) {
	if id == "job-1" {
		return models.ScheduledJob{ID: id, Status: models.JobPending}, nil
	}
	return models.ScheduledJob{}, fmt.Errorf("job %s: %w", id, models.ErrNotFound)
}

func (m *mockScheduler) Jobs() []models.ScheduledJob {
	return []models.ScheduledJob{{ID: "job-1", Status: models.JobPending}}
}

func setupTestRouter(t *testing.T, store *mockStore, sched *mockScheduler) *gin.Engine {
	t.Helper()

	gin.SetMode(gin.TestMode)

	logger := utils.NewNopLogger()
	return api.NewRouter(api.NewHandler(store, mockAnalytics{}, sched, logger), logger)
}

func doJSON(router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestAddAccount_Success(t *testing.T) {
	store := &mockStore{}
	router := setupTestRouter(t, store, &mockScheduler{})

	w := doJSON(router, http.MethodPost, "/api/accounts", map[string]string{"platform": "Twitter", "handle": "gopher"})

	require.Equal(t, http.StatusOK, w.Code)
	resp := decode(t, w)
	assert.Equal(t, true, resp["success"])
	assert.Equal(t, "twitter", resp["platform"])
	assert.Equal(t, "gopher", resp["handle"])
	assert.EqualValues(t, 1, resp["id"])
}

func TestAddAccount_LegacyPath(t *testing.T) {
	store := &mockStore{}
	router := setupTestRouter(t, store, &mockScheduler{})

	w := doJSON(router, http.MethodPost, "/api/add_account", map[string]string{"platform": "tiktok", "handle": "dancer"})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, store.accounts, 1)
}

func TestAddAccount_BadInput(t *testing.T) {
	router := setupTestRouter(t, &mockStore{}, &mockScheduler{})

	tests := []struct {
		name string
		body any
	}{
		{"missing handle", map[string]string{"platform": "twitter"}},
		{"unknown platform", map[string]string{"platform": "myspace", "handle": "tom"}},
		{"blank handle", map[string]string{"platform": "twitter", "handle": "  "}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(router, http.MethodPost, "/api/accounts", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, false, decode(t, w)["success"])
		})
	}
}

func TestAnalytics(t *testing.T) {
	store := &mockStore{accounts: []models.Account{{ID: 3, Platform: models.TikTok, Handle: "dancer"}}}
	router := setupTestRouter(t, store, &mockScheduler{})

	w := doJSON(router, http.MethodGet, "/api/analytics", nil)

	require.Equal(t, http.StatusOK, w.Code)
	var resp map[string]models.AccountAnalytics
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Contains(t, resp, "3")
	assert.Equal(t, "dancer", resp["3"].Handle)
	assert.Equal(t, 20.0, resp["3"].Metrics.EngagementRate)
}

func TestAnalytics_StoreError(t *testing.T) {
	store := &mockStore{listErr: errors.New("db down")}
	router := setupTestRouter(t, store, &mockScheduler{})

	w := doJSON(router, http.MethodGet, "/api/get_analytics", nil)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "db down")
}

func TestExportAnalytics(t *testing.T) {
	store := &mockStore{accounts: []models.Account{{ID: 1, Platform: models.Twitter, Handle: "gopher"}}}
	router := setupTestRouter(t, store, &mockScheduler{})

	w := doJSON(router, http.MethodGet, "/api/analytics/export", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/csv")
	lines := strings.Split(strings.TrimSpace(w.Body.String()), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[1], "1,twitter,gopher,scraper,"))
}

func TestHistory(t *testing.T) {
	day := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	store := &mockStore{
		accounts: []models.Account{{ID: 1, Platform: models.Twitter, Handle: "gopher"}},
		history:  map[int64][]models.AnalyticsData{1: {{AccountID: 1, Date: day, Followers: 100}}},
	}
	router := setupTestRouter(t, store, &mockScheduler{})

	w := doJSON(router, http.MethodGet, "/api/accounts/1/history", nil)
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode(t, w)
	assert.Len(t, resp["history"], 1)

	assert.Equal(t, http.StatusNotFound, doJSON(router, http.MethodGet, "/api/accounts/99/history", nil).Code)
	assert.Equal(t, http.StatusBadRequest, doJSON(router, http.MethodGet, "/api/accounts/abc/history", nil).Code)
}

func TestPostUpdate_Immediate(t *testing.T) {
	sched := &mockScheduler{postResult: true}
	router := setupTestRouter(t, &mockStore{}, sched)

	w := doJSON(router, http.MethodPost, "/api/post_update", map[string]string{"platform": "twitter", "message": "hi"})

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, map[string]any{"success": true}, decode(t, w))
	assert.Equal(t, []string{"hi"}, sched.posted)
}

func TestPostUpdate_ImmediateFailure(t *testing.T) {
	sched := &mockScheduler{postResult: false}
	router := setupTestRouter(t, &mockStore{}, sched)

	w := doJSON(router, http.MethodPost, "/api/post_update", map[string]string{"platform": "linkedin", "message": "hi"})

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, decode(t, w)["success"])
}

func TestPostUpdate_UnknownPlatformIsFailedPost(t *testing.T) {
	bodies := []map[string]string{
		{"platform": "myspace", "message": "hi"},
		{"platform": "myspace", "message": "hi", "schedule_time": "2030-01-02T15:04:05Z"},
	}

	for _, body := range bodies {
		sched := &mockScheduler{postResult: true}
		router := setupTestRouter(t, &mockStore{}, sched)

		w := doJSON(router, http.MethodPost, "/api/post_update", body)

		require.Equal(t, http.StatusOK, w.Code)
		resp := decode(t, w)
		assert.Equal(t, false, resp["success"])
		assert.Contains(t, resp["error"], "unsupported platform")
		assert.Empty(t, sched.posted)
		assert.Empty(t, sched.scheduled)
	}
}

func TestPostUpdate_Scheduled(t *testing.T) {
	tests := []struct {
		raw  string
		want time.Time
	}{
		{"2030-01-02T15:04:05Z", time.Date(2030, 1, 2, 15, 4, 5, 0, time.UTC)},
		{"2030-01-02T17:04:05+02:00", time.Date(2030, 1, 2, 15, 4, 5, 0, time.UTC)},
		{"2030-01-02T15:04", time.Date(2030, 1, 2, 15, 4, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		sched := &mockScheduler{}
		router := setupTestRouter(t, &mockStore{}, sched)

		w := doJSON(router, http.MethodPost, "/api/post_update", map[string]string{
			"platform": "facebook", "message": "later", "schedule_time": tt.raw,
		})

		require.Equal(t, http.StatusOK, w.Code, tt.raw)
		resp := decode(t, w)
		assert.Equal(t, "Post scheduled", resp["message"])
		assert.Equal(t, "job-1", resp["job_id"])
		require.Len(t, sched.scheduled, 1)
		assert.True(t, tt.want.Equal(sched.scheduled[0].runAt), tt.raw)
		assert.Equal(t, models.Facebook, sched.scheduled[0].platform)
		assert.Empty(t, sched.posted)
	}
}

func TestPostUpdate_BadInput(t *testing.T) {
	router := setupTestRouter(t, &mockStore{}, &mockScheduler{})

	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{"platform":`},
		{"missing message", `{"platform":"twitter"}`},
		{"blank message", `{"platform":"twitter","message":"   "}`},
		{"bad schedule time", `{"platform":"twitter","message":"hi","schedule_time":"tomorrow"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/post_update", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, false, decode(t, w)["success"])
		})
	}
}

func TestJobs(t *testing.T) {
	router := setupTestRouter(t, &mockStore{}, &mockScheduler{})

	w := doJSON(router, http.MethodGet, "/api/jobs", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"job-1"`)

	assert.Equal(t, http.StatusOK, doJSON(router, http.MethodGet, "/api/jobs/job-1", nil).Code)
	assert.Equal(t, http.StatusNotFound, doJSON(router, http.MethodGet, "/api/jobs/nope", nil).Code)
}

func TestHealthAndMetrics(t *testing.T) {
	router := setupTestRouter(t, &mockStore{}, &mockScheduler{})

	assert.Equal(t, http.StatusOK, doJSON(router, http.MethodGet, "/health", nil).Code)
	assert.Equal(t, http.StatusOK, doJSON(router, http.MethodGet, "/metrics", nil).Code)
}

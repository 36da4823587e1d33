package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"pageperf/api/calculator"
	"pageperf/api/middleware"
	"pageperf/api/models"
	"pageperf/api/service"
	"pageperf/api/store"
	"pageperf/api/utils"
)

func init() { gin.SetMode(gin.TestMode) }

type fakeAnalysts struct {
	byEmail map[string]*models.Analyst
	err     error
}

func (f *fakeAnalysts) CreateAnalyst(_ context.Context, email string, hashed []byte) (*models.Analyst, error) {
	if _, ok := f.byEmail[email]; ok {
		return nil, fmt.Errorf("%w: %s", store.ErrAnalystExists, email)
	}
	a := &models.Analyst{ID: len(f.byEmail) + 1, Email: email, HashedPassword: hashed}
	f.byEmail[email] = a
	return a, nil
}

func (f *fakeAnalysts) GetAnalystByEmail(_ context.Context, email string) (*models.Analyst, error) {
	if f.err != nil {
		return nil, f.err
	}
	a, ok := f.byEmail[email]
	if !ok {
		return nil, fmt.Errorf("%w: %s", store.ErrAnalystNotFound, email)
	}
	return a, nil
}

type fakeEventWriter struct{ got []models.RawEvent }

func (f *fakeEventWriter) InsertEvents(_ context.Context, events []models.RawEvent) error {
	f.got = append(f.got, events...)
	return nil
}

type fakeURLs struct{ urls []string }

func (f *fakeURLs) ListActiveURLs(context.Context) ([]string, error) { return f.urls, nil }

func (f *fakeURLs) ReplaceActiveURLs(_ context.Context, urls []string) (int, error) {
	f.urls = urls
	return len(urls), nil
}

type countingInvalidator struct{ calls int }

func (f *countingInvalidator) InvalidateReports(context.Context) error {
	f.calls++
	return nil
}

type fakeReports struct {
	params    calculator.Params
	err       error
	publishTo string
}

func (f *fakeReports) Generate(_ context.Context, p calculator.Params) (*models.Report, error) {
	f.params = p
	if f.err != nil {
		return nil, f.err
	}
	if _, _, err := p.Windows(); err != nil {
		return nil, err
	}
	return &models.Report{Warnings: []string{"window: empty"}}, nil
}

func (f *fakeReports) Workbook(ctx context.Context, p calculator.Params, w io.Writer) error {
	if _, err := f.Generate(ctx, p); err != nil {
		return err
	}
	_, err := w.Write([]byte("PK"))
	return err
}

func (f *fakeReports) Publish(_ context.Context, p calculator.Params) (string, error) {
	f.params = p
	if f.publishTo == "" {
		return "", service.ErrPublishDisabled
	}
	return f.publishTo, nil
}

func (f *fakeReports) RecentRuns(context.Context, int) ([]models.ReportRun, error) { return nil, nil }

func serve(r http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func jsonRequest(method, path, body string) *http.Request {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestSignupAndLogin(t *testing.T) {
	tokens, err := utils.NewTokenManager("secret", time.Hour)
	require.NoError(t, err)
	h := NewAuthHandlers(&fakeAnalysts{byEmail: map[string]*models.Analyst{}}, tokens)
	r := gin.New()
	r.POST("/signup", h.Signup)
	r.POST("/login", h.Login)
	r.POST("/logout", h.Logout)

	body := `{"email":"ana@example.com","password":"correct-horse"}`
	assert.Equal(t, http.StatusCreated, serve(r, jsonRequest(http.MethodPost, "/signup", body)).Code)
	assert.Equal(t, http.StatusConflict, serve(r, jsonRequest(http.MethodPost, "/signup", body)).Code)
	assert.Equal(t, http.StatusBadRequest, serve(r, jsonRequest(http.MethodPost, "/signup", `{"email":"x","password":"short"}`)).Code)

	w := serve(r, jsonRequest(http.MethodPost, "/login", body))
	require.Equal(t, http.StatusOK, w.Code)
	var cookie *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == middleware.TokenCookie {
			cookie = c
		}
	}
	require.NotNil(t, cookie)
	claims, err := tokens.ValidateJWT(cookie.Value)
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", claims.Email)

	bad := `{"email":"ana@example.com","password":"wrong-password"}`
	assert.Equal(t, http.StatusUnauthorized, serve(r, jsonRequest(http.MethodPost, "/login", bad)).Code)
	unknown := `{"email":"bob@example.com","password":"whatever1"}`
	assert.Equal(t, http.StatusUnauthorized, serve(r, jsonRequest(http.MethodPost, "/login", unknown)).Code)

	assert.Equal(t, http.StatusOK, serve(r, jsonRequest(http.MethodPost, "/logout", "")).Code)
}

func TestLoginStoreFailure(t *testing.T) {
	tokens, err := utils.NewTokenManager("secret", time.Hour)
	require.NoError(t, err)
	hashed, err := bcrypt.GenerateFromPassword([]byte("pw"), bcrypt.MinCost)
	require.NoError(t, err)
	analysts := &fakeAnalysts{
		byEmail: map[string]*models.Analyst{"a@example.com": {ID: 1, Email: "a@example.com", HashedPassword: hashed}},
		err:     errors.New("connection refused"),
	}
	r := gin.New()
	r.POST("/login", NewAuthHandlers(analysts, tokens).Login)

	w := serve(r, jsonRequest(http.MethodPost, "/login", `{"email":"a@example.com","password":"pw"}`))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestTrackEvents(t *testing.T) {
	writer := &fakeEventWriter{}
	reports := &countingInvalidator{}
	r := gin.New()
	r.POST("/events", NewEventHandlers(writer, reports).TrackEvents)

	body := `[{"eventDate":"2023-05-15T00:00:00Z","pageUrl":"https://eclkc.ohs.acf.hhs.gov/a","pageLoadTimeMs":1200,"serverResponseTimeMs":300}]`
	w := serve(r, jsonRequest(http.MethodPost, "/events", body))
	require.Equal(t, http.StatusAccepted, w.Code)
	require.Len(t, writer.got, 1)
	assert.NotEmpty(t, writer.got[0].EventID)
	assert.Equal(t, writer.got[0].EventDate, writer.got[0].EventTimestamp)
	assert.Equal(t, 1, reports.calls)

	assert.Equal(t, http.StatusBadRequest, serve(r, jsonRequest(http.MethodPost, "/events", `[{"pageUrl":"/a"}]`)).Code)
	assert.Equal(t, http.StatusBadRequest, serve(r, jsonRequest(http.MethodPost, "/events", `{`)).Code)
	assert.Equal(t, http.StatusOK, serve(r, jsonRequest(http.MethodPost, "/events", `[]`)).Code)
	assert.Equal(t, 1, reports.calls)
}

func TestActiveURLs(t *testing.T) {
	urls := &fakeURLs{}
	reports := &countingInvalidator{}
	h := NewActiveURLHandlers(urls, reports)
	r := gin.New()
	r.GET("/active-urls", h.List)
	r.PUT("/active-urls", h.Replace)
	r.POST("/active-urls/upload", h.Upload)

	w := serve(r, httptest.NewRequest(http.MethodGet, "/active-urls", nil))
	assert.JSONEq(t, `{"count":0,"urls":[]}`, w.Body.String())

	w = serve(r, jsonRequest(http.MethodPut, "/active-urls", `{"urls":["/a","/b"]}`))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"/a", "/b"}, urls.urls)
	assert.Equal(t, 1, reports.calls)

	upload := func(content string) *httptest.ResponseRecorder {
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		fw, err := mw.CreateFormFile("file", "urls.csv")
		require.NoError(t, err)
		_, err = fw.Write([]byte(content))
		require.NoError(t, err)
		require.NoError(t, mw.Close())
		req := httptest.NewRequest(http.MethodPost, "/active-urls/upload", &buf)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		return serve(r, req)
	}

	w = upload("URLs\n/c\n/d\n/e\n")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"/c", "/d", "/e"}, urls.urls)
	assert.Equal(t, 2, reports.calls)

	w = upload("url\n/c\n")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "URLs")
	assert.Equal(t, 2, reports.calls)
}

func TestPerformanceReport(t *testing.T) {
	reports := &fakeReports{}
	h := NewReportHandlers(reports, 13)
	r := gin.New()
	r.GET("/reports/performance", h.Performance)
	r.GET("/reports/performance/workbook", h.Workbook)
	r.POST("/reports/performance/publish", h.Publish)
	r.GET("/reports/runs", h.Runs)

	w := serve(r, httptest.NewRequest(http.MethodGet, "/reports/performance?previous=20230501&current=20230515", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 13, reports.params.WindowDays)
	var got models.Report
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, []string{"window: empty"}, got.Warnings)

	serve(r, httptest.NewRequest(http.MethodGet, "/reports/performance?previous=20230501&current=20230515&window=6", nil))
	assert.Equal(t, 6, reports.params.WindowDays)

	tests := []struct {
		query  string
		status int
	}{
		{"previous=20230501", http.StatusBadRequest},
		{"previous=20230501&current=20230515&window=-1", http.StatusBadRequest},
		{"previous=2023-99-99&current=20230515", http.StatusBadRequest},
	}
	for _, tt := range tests {
		w := serve(r, httptest.NewRequest(http.MethodGet, "/reports/performance?"+tt.query, nil))
		assert.Equal(t, tt.status, w.Code, tt.query)
	}

	reports.err = errors.New("clickhouse down")
	w = serve(r, httptest.NewRequest(http.MethodGet, "/reports/performance?previous=20230501&current=20230515", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "clickhouse")
	reports.err = nil

	w = serve(r, httptest.NewRequest(http.MethodGet, "/reports/performance/workbook?previous=20230501&current=20230515", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, xlsxContentType, w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "page_performance_20230501-20230515.xlsx")

	w = serve(r, httptest.NewRequest(http.MethodPost, "/reports/performance/publish?previous=20230501&current=20230515", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	reports.publishTo = "results_20230501-20230515-101500.xlsx"
	w = serve(r, httptest.NewRequest(http.MethodPost, "/reports/performance/publish?previous=20230501&current=20230515", nil))
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.JSONEq(t, `{"key":"results_20230501-20230515-101500.xlsx"}`, w.Body.String())

	w = serve(r, httptest.NewRequest(http.MethodGet, "/reports/runs", nil))
	assert.JSONEq(t, `[]`, w.Body.String())
	assert.Equal(t, http.StatusBadRequest, serve(r, httptest.NewRequest(http.MethodGet, "/reports/runs?limit=0", nil)).Code)
}

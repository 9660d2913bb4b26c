package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/arnavshah/roster-api-go/pkg/auth"
	"github.com/arnavshah/roster-api-go/pkg/config"
	"github.com/arnavshah/roster-api-go/pkg/database"
	"github.com/arnavshah/roster-api-go/pkg/export"
	"github.com/arnavshah/roster-api-go/pkg/models"
	"github.com/arnavshah/roster-api-go/pkg/schedule"
)

type testServer struct {
	h      *Handler
	router *gin.Engine
	admin  string
	key    string
	area   models.Area
	ana    models.Person
	luis   models.Person
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.InitDB(config.DatabaseConfig{Path: filepath.Join(t.TempDir(), "roster.db")})
	require.NoError(t, err)
	authSvc := auth.New(config.AuthConfig{
		JWTSecret:     "jwt-secret",
		APIKeySecret:  "key-secret",
		AdminUsername: "admin",
		AdminPassword: "admin123",
		TokenTTL:      time.Hour,
		BcryptCost:    4,
	})
	require.NoError(t, authSvc.EnsureAdminExists(db))

	h, err := New(db, authSvc, prometheus.NewRegistry())
	require.NoError(t, err)
	s := &testServer{h: h, router: h.Router(), key: authSvc.GenerateHMACKey("tests")}
	s.admin, err = authSvc.CreateToken("admin")
	require.NoError(t, err)

	ctx := context.Background()
	s.area, err = h.Store.CreateArea(ctx, "Taller")
	require.NoError(t, err)
	s.ana, err = h.Store.CreatePerson(ctx, models.Person{Name: "Ana", AreaID: s.area.ID})
	require.NoError(t, err)
	s.luis, err = h.Store.CreatePerson(ctx, models.Person{Name: "Luis", AreaID: s.area.ID})
	require.NoError(t, err)
	_, err = h.Store.CreateWorkType(ctx, models.WorkType{Code: "VAC", Label: "Vacaciones", Color: "#4caf50"})
	require.NoError(t, err)
	_, err = h.Store.CreateWorkType(ctx, models.WorkType{Code: "SIC", Label: "Baja", Color: "#f44336"})
	require.NoError(t, err)
	return s
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var env struct {
		Data T `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return env.Data
}

func (s *testServer) assign(t *testing.T, p models.Person, code string, start, end time.Time) models.Assignment {
	t.Helper()
	w := s.do(t, http.MethodPost, "/api/assignments", s.admin, models.AssignmentInput{
		UserID: p.ID, WorkTypeCode: code, StartDate: start, EndDate: end,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode[models.Assignment](t, w)
}

func TestRoot(t *testing.T) {
	s := newTestServer(t)
	w := s.do(t, http.MethodGet, "/", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), serviceName)
}

func TestLogin(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/admin/login", "", gin.H{"username": "admin", "password": "admin123"})
	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		AccessToken string `json:"access_token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.NotEmpty(t, body.AccessToken)

	w = s.do(t, http.MethodPost, "/admin/login", "", gin.H{"username": "admin", "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAccessControl(t *testing.T) {
	s := newTestServer(t)

	assert.Equal(t, http.StatusUnauthorized, s.do(t, http.MethodGet, "/api/areas", "", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, s.do(t, http.MethodGet, "/api/areas", "tests.bad", nil).Code)
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/api/areas", s.key, nil).Code)
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/api/areas", s.admin, nil).Code)

	w := s.do(t, http.MethodPost, "/api/areas", s.key, gin.H{"name": "Oficina"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	w = s.do(t, http.MethodPost, "/api/areas", s.admin, gin.H{"name": "Oficina"})
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestKeys(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/admin/keys", s.admin, gin.H{"name": "kiosk"})
	require.Equal(t, http.StatusOK, w.Code)
	var issued struct {
		Key string `json:"key"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &issued))
	assert.True(t, strings.HasPrefix(issued.Key, "kiosk."))
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/api/work-types", issued.Key, nil).Code)

	keys := decode[[]database.APIKey](t, s.do(t, http.MethodGet, "/admin/keys", s.admin, nil))
	require.Len(t, keys, 1)
	assert.NotNil(t, keys[0].LastUsed)

	w = s.do(t, http.MethodDelete, "/admin/keys/"+itoa(keys[0].ID), s.admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, http.StatusUnauthorized, s.do(t, http.MethodGet, "/api/work-types", issued.Key, nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodDelete, "/admin/keys/999", s.admin, nil).Code)

	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodPost, "/admin/keys", s.admin, gin.H{"name": "a.b"}).Code)
}

func TestAssignmentRoutes(t *testing.T) {
	s := newTestServer(t)
	march := s.assign(t, s.ana, "vac", models.Date(2024, time.March, 28), models.Date(2024, time.April, 2))
	s.assign(t, s.luis, "SIC", models.Date(2024, time.April, 10), models.Date(2024, time.April, 12))
	assert.Equal(t, "VAC", march.WorkTypeCode)
	assert.Equal(t, s.area.ID, march.AreaID)

	inMarch := decode[[]models.Assignment](t, s.do(t, http.MethodGet, "/api/assignments/month/3/2024/"+s.area.ID, s.key, nil))
	require.Len(t, inMarch, 1)
	inApril := decode[[]models.Assignment](t, s.do(t, http.MethodGet, "/api/assignments/month/4/2024/"+s.area.ID, s.key, nil))
	assert.Len(t, inApril, 2)
	all := decode[[]models.Assignment](t, s.do(t, http.MethodGet, "/api/assignments/"+s.area.ID, s.key, nil))
	assert.Len(t, all, 2)
	byUser := decode[[]models.Assignment](t, s.do(t, http.MethodGet, "/api/assignments/user/"+s.luis.ID, s.key, nil))
	assert.Len(t, byUser, 1)

	ranged := decode[[]models.Assignment](t, s.do(t, http.MethodPost, "/api/assignments/range", s.key, gin.H{
		"startDate": models.Date(2024, time.April, 3), "endDate": models.Date(2024, time.April, 10),
	}))
	assert.Len(t, ranged, 1)

	one := decode[models.Assignment](t, s.do(t, http.MethodGet, "/api/assignments/id/"+march.ID, s.key, nil))
	assert.Equal(t, march.ID, one.ID)

	code := "SIC"
	w := s.do(t, http.MethodPut, "/api/assignments/"+march.ID, s.admin, models.AssignmentPatch{WorkTypeCode: &code})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "SIC", decode[models.Assignment](t, w).WorkTypeCode)

	w = s.do(t, http.MethodDelete, "/api/assignments/user/"+s.ana.ID+"/4/2024", s.admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	all = decode[[]models.Assignment](t, s.do(t, http.MethodGet, "/api/assignments/"+s.area.ID, s.key, nil))
	assert.Len(t, all, 1)
}

func TestAssignmentErrors(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/api/assignments", s.admin, models.AssignmentInput{
		UserID: s.ana.ID, WorkTypeCode: "VAC", StartDate: models.Date(2024, time.May, 5), EndDate: models.Date(2024, time.May, 1),
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"field":"endDate"`)

	w = s.do(t, http.MethodPost, "/api/assignments", s.admin, models.AssignmentInput{
		UserID: "ghost", WorkTypeCode: "VAC", StartDate: models.Date(2024, time.May, 1), EndDate: models.Date(2024, time.May, 1),
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), `"kind":"person"`)

	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodDelete, "/api/assignments/missing", s.admin, nil).Code)
	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodGet, "/api/assignments/month/13/2024/"+s.area.ID, s.key, nil).Code)
	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodGet, "/api/assignments/month/x/2024/"+s.area.ID, s.key, nil).Code)
}

func TestValidateAssignment(t *testing.T) {
	s := newTestServer(t)
	existing := s.assign(t, s.ana, "VAC", models.Date(2024, time.May, 3), models.Date(2024, time.May, 4))

	type result struct {
		Valid     bool     `json:"valid"`
		Error     string   `json:"error"`
		Conflicts []string `json:"conflicts"`
	}
	check := func(in models.AssignmentInput) result {
		w := s.do(t, http.MethodPost, "/api/assignments/validate", s.key, in)
		require.Equal(t, http.StatusOK, w.Code)
		var r result
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &r))
		return r
	}

	r := check(models.AssignmentInput{UserID: s.ana.ID, WorkTypeCode: "sic", StartDate: models.Date(2024, time.May, 1), EndDate: models.Date(2024, time.May, 3)})
	assert.True(t, r.Valid)
	assert.Equal(t, []string{existing.ID}, r.Conflicts)

	r = check(models.AssignmentInput{UserID: s.luis.ID, WorkTypeCode: "SIC", StartDate: models.Date(2024, time.May, 1), EndDate: models.Date(2024, time.May, 3)})
	assert.True(t, r.Valid)
	assert.Empty(t, r.Conflicts)

	r = check(models.AssignmentInput{UserID: s.ana.ID, WorkTypeCode: "NOPE", StartDate: models.Date(2024, time.May, 1), EndDate: models.Date(2024, time.May, 3)})
	assert.False(t, r.Valid)
	assert.Contains(t, r.Error, "NOPE")

	r = check(models.AssignmentInput{UserID: s.ana.ID, AreaID: "other-area", WorkTypeCode: "VAC", StartDate: models.Date(2024, time.May, 1), EndDate: models.Date(2024, time.May, 1)})
	assert.False(t, r.Valid)
	assert.Contains(t, r.Error, "other-area")

	r = check(models.AssignmentInput{UserID: s.ana.ID, WorkTypeCode: "VAC"})
	assert.False(t, r.Valid)
}

func TestGrid(t *testing.T) {
	s := newTestServer(t)
	first := s.assign(t, s.ana, "VAC", models.Date(2024, time.April, 3), models.Date(2024, time.April, 5))
	second := s.assign(t, s.ana, "SIC", models.Date(2024, time.April, 5), models.Date(2024, time.April, 6))

	w := s.do(t, http.MethodGet, "/api/schedule/grid/4/2024/"+s.area.ID, s.key, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	grid := decode[gridResponse](t, w)

	assert.Len(t, grid.Days, 30)
	assert.Equal(t, "L", grid.Days[0].Letter)
	require.Len(t, grid.Rows, 2)
	assert.Equal(t, "ANA", grid.Rows[0].Person.Name)

	total := 0
	var spans []schedule.Cell
	for _, c := range grid.Rows[0].Cells {
		total += c.Colspan
		if !c.Empty() {
			spans = append(spans, c)
		}
	}
	assert.Equal(t, 30, total)
	require.Len(t, spans, 2)
	assert.Equal(t, schedule.Cell{Day: 3, Colspan: 2, WorkTypeCode: "VAC", AssignmentID: first.ID}, spans[0])
	assert.Equal(t, schedule.Cell{Day: 5, Colspan: 2, WorkTypeCode: "SIC", AssignmentID: second.ID}, spans[1])

	require.Len(t, grid.Overwrites, 1)
	assert.Equal(t, first.ID, grid.Overwrites[0].Lost)
	assert.Equal(t, second.ID, grid.Overwrites[0].Kept)
}

func TestAvailability(t *testing.T) {
	s := newTestServer(t)
	a := s.assign(t, s.luis, "VAC", models.Date(2024, time.April, 1), models.Date(2024, time.April, 10))

	w := s.do(t, http.MethodGet, "/api/schedule/availability/2024-04-03/"+s.area.ID, s.key, nil)
	require.Equal(t, http.StatusOK, w.Code)
	got := decode[schedule.Availability](t, w)
	require.Len(t, got.Available, 1)
	assert.Equal(t, s.ana.ID, got.Available[0].ID)
	require.Len(t, got.Unavailable, 1)
	assert.Equal(t, a.ID, got.Unavailable[0].AssignmentID)
	assert.Equal(t, "Vacaciones", got.Unavailable[0].Label)

	w = s.do(t, http.MethodGet, "/api/schedule/availability/03-04-2024/"+s.area.ID, s.key, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAvailability_AssignmentStaysInPersonArea(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()
	office, err := s.h.Store.CreateArea(ctx, "Oficina")
	require.NoError(t, err)
	beto, err := s.h.Store.CreatePerson(ctx, models.Person{Name: "Beto", AreaID: office.ID})
	require.NoError(t, err)
	day := models.Date(2024, time.April, 3)

	w := s.do(t, http.MethodPost, "/api/assignments", s.admin, models.AssignmentInput{
		UserID: beto.ID, AreaID: s.area.ID, WorkTypeCode: "VAC", StartDate: day, EndDate: day,
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"field":"areaId"`)

	a := s.assign(t, beto, "VAC", day, day)
	assert.Equal(t, office.ID, a.AreaID)

	got := decode[schedule.Availability](t, s.do(t, http.MethodGet, "/api/schedule/availability/2024-04-03/"+office.ID, s.key, nil))
	assert.Empty(t, got.Available)
	require.Len(t, got.Unavailable, 1)
	assert.Equal(t, beto.ID, got.Unavailable[0].Person.ID)

	got = decode[schedule.Availability](t, s.do(t, http.MethodGet, "/api/schedule/availability/2024-04-03/"+s.area.ID, s.key, nil))
	assert.Len(t, got.Available, 2)
	assert.Empty(t, got.Unavailable)
}

func TestReportAndExport(t *testing.T) {
	s := newTestServer(t)
	s.assign(t, s.ana, "VAC", models.Date(2024, time.March, 30), models.Date(2024, time.April, 2))
	s.assign(t, s.luis, "SIC", models.Date(2024, time.April, 10), models.Date(2024, time.April, 10))

	report := decode[schedule.MonthReport](t, s.do(t, http.MethodGet, "/api/reports/4/2024/"+s.area.ID, s.key, nil))
	assert.Equal(t, []string{"SIC", "VAC"}, report.Codes)
	require.Len(t, report.Rows, 2)
	assert.Equal(t, 2, report.Rows[0].Counts["VAC"])
	assert.Equal(t, 1, report.Rows[1].Counts["SIC"])
	assert.Equal(t, 3, report.Total)

	for _, path := range []string{"/api/export/grid/4/2024/", "/api/export/report/4/2024/"} {
		w := s.do(t, http.MethodGet, path+s.area.ID, s.key, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, export.ContentType, w.Header().Get("Content-Type"))
		assert.Contains(t, w.Header().Get("Content-Disposition"), ".xlsx")
		f, err := excelize.OpenReader(w.Body)
		require.NoError(t, err)
		assert.Len(t, f.GetSheetList(), 1)
		f.Close()
	}

	w := s.do(t, http.MethodGet, "/api/export/grid/4/2024/x%22y", s.key, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, `attachment; filename="grid-x_y-2024-04.xlsx"`, w.Header().Get("Content-Disposition"))
}

func TestCatalogRoutes(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/api/work-types", s.admin, models.WorkType{Code: "for", Label: "Formación", Color: "#123"})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "FOR", decode[models.WorkType](t, w).Code)
	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodPost, "/api/work-types", s.admin, models.WorkType{Code: "X", Label: "x", Color: "red"}).Code)

	w = s.do(t, http.MethodPut, "/api/work-types/FOR", s.admin, models.WorkType{Label: "Curso", Color: "#abcdef"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Curso", decode[models.WorkType](t, w).Label)
	assert.Len(t, decode[[]models.WorkType](t, s.do(t, http.MethodGet, "/api/work-types", s.key, nil)), 3)
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodDelete, "/api/work-types/FOR", s.admin, nil).Code)

	people := decode[[]models.Person](t, s.do(t, http.MethodGet, "/api/users?areaId="+s.area.ID, s.key, nil))
	assert.Len(t, people, 2)
	w = s.do(t, http.MethodPut, "/api/users/"+s.luis.ID, s.admin, models.Person{Name: "luis m"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "LUIS M", decode[models.Person](t, w).Name)

	s.assign(t, s.ana, "VAC", models.Date(2024, time.May, 1), models.Date(2024, time.May, 1))
	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodDelete, "/api/users/"+s.ana.ID, s.admin, nil).Code)
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodDelete, "/api/users/"+s.luis.ID, s.admin, nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, "/api/users/"+s.luis.ID, s.key, nil).Code)

	w = s.do(t, http.MethodPut, "/api/areas/"+s.area.ID, s.admin, gin.H{"name": "Taller Norte"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Taller Norte", decode[models.Area](t, w).Name)
	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodDelete, "/api/areas/"+s.area.ID, s.admin, nil).Code)
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t)
	s.do(t, http.MethodGet, "/api/areas", s.key, nil)
	s.do(t, http.MethodGet, "/api/schedule/grid/4/2024/"+s.area.ID, s.key, nil)

	w := s.do(t, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `roster_http_requests_total{method="GET",route="/api/areas",status="200"} 1`)
	assert.Contains(t, body, `roster_window_operations_total{op="load",outcome="ok"} 1`)
	assert.Contains(t, body, "roster_index_build_seconds")
}

func itoa(id uint) string {
	b, _ := json.Marshal(id)
	return string(b)
}

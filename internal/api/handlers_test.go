package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
	"github.com/warehouse-sim/backend/internal/models"
	"github.com/warehouse-sim/backend/internal/planner"
	"github.com/warehouse-sim/backend/internal/sim"
	"github.com/warehouse-sim/backend/internal/timing"
)

// mockController records calls and serves canned snapshots.
type mockController struct {
	started   bool
	paused    bool
	resumed   bool
	reset     bool
	speed     float64
	enqueued  []*models.Order
	completed []*models.Order
	trail     *models.TrailSnapshot
}

func (m *mockController) Start()  { m.started = true }
func (m *mockController) Pause()  { m.paused = true }
func (m *mockController) Resume() { m.resumed = true }
func (m *mockController) Reset()  { m.reset = true }

func (m *mockController) SetSpeed(speed float64) error {
	if speed <= 0 {
		return assert.AnError
	}
	m.speed = speed
	return nil
}

func (m *mockController) Status() sim.Status {
	return sim.Status{
		Running:     true,
		Speed:       m.speed,
		Robot:       *models.NewRobot(),
		TotalAisles: 3,
		TotalRacks:  42,
	}
}

func (m *mockController) CompletedOrders() []*models.Order { return m.completed }

func (m *mockController) EnqueueOrder(order *models.Order) {
	m.enqueued = append(m.enqueued, order)
}

func (m *mockController) TrailSnapshot() *models.TrailSnapshot {
	if m.trail != nil {
		return m.trail
	}
	return &models.TrailSnapshot{}
}

func newTestContext(method, path, body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func newSimHandler(ctrl *mockController) SimulationHandler {
	calc := planner.NewCalculator(timing.NewManager(timing.DefaultConfig()))
	return NewSimulationHandler(ctrl, calc)
}

func TestHandleStatus(t *testing.T) {
	ctrl := &mockController{speed: 2.0}
	h := newSimHandler(ctrl)
	c, rec := newTestContext(http.MethodGet, "/api/simulation/status", "")

	require.NoError(t, h.HandleStatus(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var status sim.Status
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.True(t, status.Running)
	assert.Equal(t, 2.0, status.Speed)
	assert.Equal(t, models.RobotStateIdle, status.Robot.State)
}

func TestLifecycleHandlers(t *testing.T) {
	ctrl := &mockController{}
	h := newSimHandler(ctrl)

	cases := []struct {
		name    string
		handler func(echo.Context) error
		called  *bool
	}{
		{"start", h.HandleStart, &ctrl.started},
		{"pause", h.HandlePause, &ctrl.paused},
		{"resume", h.HandleResume, &ctrl.resumed},
		{"reset", h.HandleReset, &ctrl.reset},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, rec := newTestContext(http.MethodPost, "/api/simulation/"+tc.name, "")
			require.NoError(t, tc.handler(c))
			assert.Equal(t, http.StatusOK, rec.Code)
			assert.True(t, *tc.called)
		})
	}
}

func TestHandleSetSpeed(t *testing.T) {
	t.Run("valid speed", func(t *testing.T) {
		ctrl := &mockController{}
		h := newSimHandler(ctrl)
		c, rec := newTestContext(http.MethodPost, "/api/simulation/speed", `{"speed": 3.5}`)

		require.NoError(t, h.HandleSetSpeed(c))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, 3.5, ctrl.speed)
	})

	t.Run("rejected speed", func(t *testing.T) {
		ctrl := &mockController{}
		h := newSimHandler(ctrl)
		c, _ := newTestContext(http.MethodPost, "/api/simulation/speed", `{"speed": -1}`)

		err := h.HandleSetSpeed(c)
		require.Error(t, err)
		apiErr, ok := err.(*APIError)
		require.True(t, ok)
		assert.Equal(t, http.StatusBadRequest, apiErr.Status)
		assert.Equal(t, "VALIDATION_ERROR", apiErr.Code)
	})
}

func TestHandleEnqueueOrder(t *testing.T) {
	t.Run("creates order with generated id", func(t *testing.T) {
		ctrl := &mockController{}
		h := newSimHandler(ctrl)
		c, rec := newTestContext(http.MethodPost, "/api/simulation/orders",
			`{"items": ["ITEM_B_02", "ITEM_C_09"]}`)

		require.NoError(t, h.HandleEnqueueOrder(c))
		assert.Equal(t, http.StatusCreated, rec.Code)
		require.Len(t, ctrl.enqueued, 1)
		assert.NotEmpty(t, ctrl.enqueued[0].ID)
		assert.Equal(t, []string{"ITEM_B_02", "ITEM_C_09"}, ctrl.enqueued[0].Items)
	})

	t.Run("rejects empty item list", func(t *testing.T) {
		ctrl := &mockController{}
		h := newSimHandler(ctrl)
		c, _ := newTestContext(http.MethodPost, "/api/simulation/orders", `{"items": []}`)

		err := h.HandleEnqueueOrder(c)
		require.Error(t, err)
		assert.Empty(t, ctrl.enqueued)
	})
}

func TestHandlePlanPreview(t *testing.T) {
	ctrl := &mockController{}
	h := newSimHandler(ctrl)
	c, rec := newTestContext(http.MethodPost, "/api/simulation/plan",
		`{"start": {"aisle": 1, "rack": 1}, "targets": [{"aisle": 5, "rack": 9}]}`)

	require.NoError(t, h.HandlePlanPreview(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Path            *models.CompletePath `json:"path"`
		EfficiencyScore float64              `json:"efficiencyScore"`
		Valid           bool                 `json:"valid"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.Path)
	assert.NotEmpty(t, resp.Path.Segments)
	assert.True(t, resp.Valid)
	assert.Greater(t, resp.EfficiencyScore, 0.0)
	assert.LessOrEqual(t, resp.EfficiencyScore, 1.0)
}

func TestHandleTrail(t *testing.T) {
	snapshot := &models.TrailSnapshot{
		RecentPath: []models.TrailPoint{{
			Position:  models.SmoothCoordinate{Aisle: 2, Rack: 3},
			Type:      models.TrailRecentPath,
			Intensity: 0.8,
		}},
	}
	ctrl := &mockController{trail: snapshot}
	h := NewTrailHandler(ctrl)

	t.Run("json", func(t *testing.T) {
		c, rec := newTestContext(http.MethodGet, "/api/trail", "")
		require.NoError(t, h.HandleTrail(c))
		assert.Equal(t, http.StatusOK, rec.Code)

		var got models.TrailSnapshot
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		require.Len(t, got.RecentPath, 1)
		assert.Equal(t, 0.8, got.RecentPath[0].Intensity)
	})

	t.Run("msgpack", func(t *testing.T) {
		c, rec := newTestContext(http.MethodGet, "/api/trail/msgpack", "")
		require.NoError(t, h.HandleTrailMsgpack(c))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/x-msgpack", rec.Header().Get(echo.HeaderContentType))

		var got models.TrailSnapshot
		require.NoError(t, msgpack.Unmarshal(rec.Body.Bytes(), &got))
		require.Len(t, got.RecentPath, 1)
		assert.Equal(t, models.TrailRecentPath, got.RecentPath[0].Type)
	})
}

func TestHandleHealth(t *testing.T) {
	h := NewHealthHandler("1.2.3")
	c, rec := newTestContext(http.MethodGet, "/api/health", "")

	require.NoError(t, h.HandleHealth(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Status  string `json:"status"`
		Version string `json:"version"`
		Grid    struct {
			Aisles int `json:"aisles"`
			Racks  int `json:"racks"`
		} `json:"grid"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "1.2.3", resp.Version)
	assert.Equal(t, models.MaxAisle, resp.Grid.Aisles)
	assert.Equal(t, models.MaxRack, resp.Grid.Racks)
}

package api

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LENAX/plan-engine/pkg/core/block"
	"github.com/LENAX/plan-engine/pkg/core/engine"
	"github.com/LENAX/plan-engine/pkg/core/planner"
	"github.com/LENAX/plan-engine/pkg/core/realtime"
	"github.com/LENAX/plan-engine/pkg/storage/sqlite"
)

var apiBase = time.Date(2024, 2, 5, 8, 0, 0, 0, time.UTC)

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func setupTestServer(t *testing.T, withBus bool) (http.Handler, *engine.Engine) {
	t.Helper()
	store, err := sqlite.NewStoreFromDSN(filepath.Join(t.TempDir(), "api.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	opts := []engine.Option{
		engine.WithPlanner(planner.New(planner.WithClock(func() time.Time { return apiBase }))),
	}
	if withBus {
		bus, err := realtime.NewEventBus()
		require.NoError(t, err)
		t.Cleanup(func() { _ = bus.Close() })
		opts = append(opts, engine.WithEventBus(bus))
	}
	eng := engine.NewEngine(store, opts...)
	srv := NewAPIServer(eng, DefaultServerConfig(), "test")
	return srv.Handler(), eng
}

func doJSON(t *testing.T, h http.Handler, method, path string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	var env envelope
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w, env
}

func createBlock(t *testing.T, h http.Handler, body map[string]interface{}) block.Block {
	t.Helper()
	w, env := doJSON(t, h, http.MethodPost, "/api/v1/blocks", body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var b block.Block
	require.NoError(t, json.Unmarshal(env.Data, &b))
	return b
}

func TestHealth(t *testing.T) {
	h, _ := setupTestServer(t, false)
	w, env := doJSON(t, h, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var health struct {
		Status   string `json:"status"`
		Version  string `json:"version"`
		Database string `json:"database"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &health))
	assert.Equal(t, "healthy", health.Status)
	assert.Equal(t, "test", health.Version)
	assert.Equal(t, "ok", health.Database)
}

func TestBlocksCRUD(t *testing.T) {
	h, _ := setupTestServer(t, false)

	w, _ := doJSON(t, h, http.MethodPost, "/api/v1/blocks", map[string]interface{}{"qty_to_produce": 1})
	assert.Equal(t, http.StatusBadRequest, w.Code, "name必填")

	a := createBlock(t, h, map[string]interface{}{"name": "Découpe", "planned_hours": 4, "qty_to_produce": 2})
	b := createBlock(t, h, map[string]interface{}{"name": "Pliage", "planned_hours": 2, "predecessor_id": a.ID})

	w, env := doJSON(t, h, http.MethodGet, "/api/v1/blocks/"+itoa(b.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	var got block.Block
	require.NoError(t, json.Unmarshal(env.Data, &got))
	assert.Equal(t, "Pliage", got.Name)
	assert.Equal(t, a.ID, *got.PredecessorID)

	w, _ = doJSON(t, h, http.MethodGet, "/api/v1/blocks/abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w, _ = doJSON(t, h, http.MethodGet, "/api/v1/blocks/999", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	// 成环返回409
	w, env = doJSON(t, h, http.MethodPatch, "/api/v1/blocks/"+itoa(a.ID), map[string]interface{}{"predecessor_id": b.ID})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, http.StatusConflict, env.Code)

	// 前置不存在返回400
	w, _ = doJSON(t, h, http.MethodPatch, "/api/v1/blocks/"+itoa(a.ID), map[string]interface{}{"predecessor_id": 999})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// 关闭条件不满足返回400
	w, _ = doJSON(t, h, http.MethodPatch, "/api/v1/blocks/"+itoa(a.ID), map[string]interface{}{"completed": true})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// null清空前置
	w, env = doJSON(t, h, http.MethodPatch, "/api/v1/blocks/"+itoa(b.ID), map[string]interface{}{"predecessor_id": nil, "name": "Pliage 2"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.NoError(t, json.Unmarshal(env.Data, &got))
	assert.Nil(t, got.PredecessorID)
	assert.Equal(t, "Pliage 2", got.Name)

	w, env = doJSON(t, h, http.MethodGet, "/api/v1/blocks/"+itoa(a.ID)+"/cycle-check?predecessor_id="+itoa(a.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	var check struct {
		WouldCreateCycle bool `json:"would_create_cycle"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &check))
	assert.True(t, check.WouldCreateCycle)

	w, _ = doJSON(t, h, http.MethodDelete, "/api/v1/blocks/"+itoa(a.ID), nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w, _ = doJSON(t, h, http.MethodDelete, "/api/v1/blocks/"+itoa(a.ID), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestBlocksReplace(t *testing.T) {
	h, _ := setupTestServer(t, false)

	a := createBlock(t, h, map[string]interface{}{"name": "A", "planned_hours": 1})
	b := createBlock(t, h, map[string]interface{}{
		"name": "B", "planned_hours": 3, "spent_hours": 1, "work_center_id": 7,
		"qty_to_produce": 5, "predecessor_id": a.ID,
	})

	// PUT只带name：其余字段取零值或清空
	w, env := doJSON(t, h, http.MethodPut, "/api/v1/blocks/"+itoa(b.ID), map[string]interface{}{"name": "B2", "planned_weeks": 1})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var got block.Block
	require.NoError(t, json.Unmarshal(env.Data, &got))
	assert.Equal(t, "B2", got.Name)
	assert.Nil(t, got.PlannedHours)
	assert.Nil(t, got.SpentHours)
	assert.Nil(t, got.WorkCenterID)
	assert.Nil(t, got.PredecessorID)
	assert.Zero(t, got.QtyToProduce)
	require.NotNil(t, got.PlannedWeeks)
	assert.Equal(t, 1.0, *got.PlannedWeeks)

	w, _ = doJSON(t, h, http.MethodPut, "/api/v1/blocks/"+itoa(b.ID), map[string]interface{}{"planned_hours": 2})
	assert.Equal(t, http.StatusBadRequest, w.Code, "name必填")

	w, _ = doJSON(t, h, http.MethodPut, "/api/v1/blocks/"+itoa(a.ID), map[string]interface{}{"name": "A", "predecessor_id": a.ID})
	assert.Equal(t, http.StatusConflict, w.Code)

	w, _ = doJSON(t, h, http.MethodPut, "/api/v1/blocks/999", map[string]interface{}{"name": "X"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = doJSON(t, h, http.MethodPut, "/api/v1/blocks/"+itoa(a.ID), map[string]interface{}{"name": "A", "planned_weeks": 20000})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBlocksList(t *testing.T) {
	h, _ := setupTestServer(t, false)
	for _, name := range []string{"Soudure A", "Soudure B", "Peinture"} {
		createBlock(t, h, map[string]interface{}{"name": name})
	}

	w, env := doJSON(t, h, http.MethodGet, "/api/v1/blocks?q=soudure&order_by=name&order_dir=desc&size=1", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var list struct {
		Total   int           `json:"total"`
		Items   []block.Block `json:"items"`
		HasMore bool          `json:"has_more"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &list))
	assert.Equal(t, 2, list.Total)
	require.Len(t, list.Items, 1)
	assert.Equal(t, "Soudure B", list.Items[0].Name)
	assert.True(t, list.HasMore)

	w, _ = doJSON(t, h, http.MethodGet, "/api/v1/blocks?size=1000", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w, _ = doJSON(t, h, http.MethodGet, "/api/v1/blocks?order_dir=sideways", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPlanningRun(t *testing.T) {
	h, _ := setupTestServer(t, false)
	a := createBlock(t, h, map[string]interface{}{"name": "A", "planned_hours": 10, "work_center_id": 1})
	createBlock(t, h, map[string]interface{}{"name": "B", "planned_hours": 5, "predecessor_id": a.ID})
	createBlock(t, h, map[string]interface{}{"name": "C", "planned_hours": 4, "work_center_id": 1})

	w, _ := doJSON(t, h, http.MethodGet, "/api/v1/planning/last", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, env := doJSON(t, h, http.MethodPost, "/api/v1/planning/run?mode=asap", map[string]string{"start_date": "2024-03-01"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var report struct {
		RunID     string          `json:"run_id"`
		Direction string          `json:"direction"`
		Scheduled int             `json:"scheduled"`
		Entries   []planner.Entry `json:"entries"`
		Warning   string          `json:"warning"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &report))
	assert.Equal(t, "forward", report.Direction)
	assert.Equal(t, 3, report.Scheduled)
	assert.Empty(t, report.Warning)
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	require.Len(t, report.Entries, 3)
	assert.True(t, start.Equal(report.Entries[0].Start))

	// 无请求体时从当前时钟起排
	w, _ = doJSON(t, h, http.MethodPost, "/api/v1/planning/run", nil)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w, _ = doJSON(t, h, http.MethodPost, "/api/v1/planning/run?mode=retro", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, w.Code, "倒排必须提供due_date")
	w, _ = doJSON(t, h, http.MethodPost, "/api/v1/planning/run?mode=retro", map[string]string{"due_date": "soon"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w, _ = doJSON(t, h, http.MethodPost, "/api/v1/planning/run?mode=sideways", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = doJSON(t, h, http.MethodPost, "/api/v1/planning/run?mode=retro", map[string]string{"due_date": "2024-06-01T00:00:00Z"})
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w, env = doJSON(t, h, http.MethodGet, "/api/v1/planning/last?mode=retro", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(env.Data, &report))
	assert.Equal(t, "backward", report.Direction)

	w, env = doJSON(t, h, http.MethodGet, "/api/v1/planning/status", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var status engine.PlanningStatus
	require.NoError(t, json.Unmarshal(env.Data, &status))
	assert.Equal(t, 3, status.Total)
	assert.Equal(t, 3, status.Planned)

	w, env = doJSON(t, h, http.MethodGet, "/api/v1/planning", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var view []block.Block
	require.NoError(t, json.Unmarshal(env.Data, &view))
	require.Len(t, view, 3)
	assert.Equal(t, "A", view[0].Name)
	assert.NotNil(t, view[0].PlannedStart)

	w, env = doJSON(t, h, http.MethodGet, "/api/v1/planning/integrity", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var audit struct {
		Edges  int           `json:"edges"`
		Issues []interface{} `json:"issues"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &audit))
	assert.Equal(t, 1, audit.Edges)
	assert.Empty(t, audit.Issues)
}

func TestWorkCentersAndArticles(t *testing.T) {
	h, _ := setupTestServer(t, false)

	w, env := doJSON(t, h, http.MethodPost, "/api/v1/work-centers", map[string]interface{}{"code": "L1", "name": "Laser", "capacity": 1})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var wc block.WorkCenter
	require.NoError(t, json.Unmarshal(env.Data, &wc))

	w, _ = doJSON(t, h, http.MethodPost, "/api/v1/work-centers", map[string]interface{}{"code": "L1", "name": "Dup"})
	assert.Equal(t, http.StatusConflict, w.Code)
	w, _ = doJSON(t, h, http.MethodPost, "/api/v1/work-centers", map[string]interface{}{"code": "L2"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = doJSON(t, h, http.MethodPut, "/api/v1/work-centers/"+itoa(wc.ID), map[string]interface{}{"code": "L1", "name": "Laser fibre"})
	assert.Equal(t, http.StatusOK, w.Code)
	w, env = doJSON(t, h, http.MethodGet, "/api/v1/work-centers", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(env.Data), "Laser fibre")
	w, _ = doJSON(t, h, http.MethodDelete, "/api/v1/work-centers/"+itoa(wc.ID), nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w, _ = doJSON(t, h, http.MethodGet, "/api/v1/work-centers/"+itoa(wc.ID), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, env = doJSON(t, h, http.MethodPost, "/api/v1/articles", map[string]interface{}{"code": "T2", "designation": "Tôle 2mm"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var art block.Article
	require.NoError(t, json.Unmarshal(env.Data, &art))
	w, _ = doJSON(t, h, http.MethodGet, "/api/v1/articles/"+itoa(art.ID), nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w, _ = doJSON(t, h, http.MethodPut, "/api/v1/articles/"+itoa(art.ID), map[string]interface{}{"code": "T2", "designation": "Tôle 3mm"})
	assert.Equal(t, http.StatusOK, w.Code)
	w, env = doJSON(t, h, http.MethodGet, "/api/v1/articles", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(env.Data), "Tôle 3mm")
	w, _ = doJSON(t, h, http.MethodDelete, "/api/v1/articles/"+itoa(art.ID), nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRoutingCodesAndOrders(t *testing.T) {
	h, _ := setupTestServer(t, false)

	w, env := doJSON(t, h, http.MethodPost, "/api/v1/articles", map[string]interface{}{"code": "T2", "designation": "Tôle 2mm"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var art block.Article
	require.NoError(t, json.Unmarshal(env.Data, &art))

	w, _ = doJSON(t, h, http.MethodPost, "/api/v1/routing-codes", map[string]interface{}{"code": "DT-1", "article_id": 999})
	assert.Equal(t, http.StatusBadRequest, w.Code, "物料不存在")
	w, env = doJSON(t, h, http.MethodPost, "/api/v1/routing-codes", map[string]interface{}{"code": "DT-1", "article_id": art.ID})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var rc block.RoutingCode
	require.NoError(t, json.Unmarshal(env.Data, &rc))

	w, _ = doJSON(t, h, http.MethodPost, "/api/v1/orders", map[string]interface{}{"code": "OF-1", "mode": "sideways"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w, _ = doJSON(t, h, http.MethodPost, "/api/v1/orders", map[string]interface{}{"code": "OF-1", "due_date": "demain"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, env = doJSON(t, h, http.MethodPost, "/api/v1/orders", map[string]interface{}{
		"code": "OF-1", "routing_code_id": rc.ID, "mode": "retro", "due_date": "2024-03-29",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var order block.Order
	require.NoError(t, json.Unmarshal(env.Data, &order))
	require.NotNil(t, order.DueDate)
	assert.True(t, time.Date(2024, 3, 29, 0, 0, 0, 0, time.UTC).Equal(*order.DueDate))

	w, _ = doJSON(t, h, http.MethodDelete, "/api/v1/routing-codes/"+itoa(rc.ID), nil)
	assert.Equal(t, http.StatusConflict, w.Code, "仍被订单引用")

	createBlock(t, h, map[string]interface{}{"name": "Découpe", "order_id": order.ID})
	createBlock(t, h, map[string]interface{}{"name": "Autre"})
	w, env = doJSON(t, h, http.MethodGet, "/api/v1/orders/"+itoa(order.ID)+"/blocks", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var blocks struct {
		Total int           `json:"total"`
		Items []block.Block `json:"items"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &blocks))
	assert.Equal(t, 1, blocks.Total)
	assert.Equal(t, "Découpe", blocks.Items[0].Name)
	w, _ = doJSON(t, h, http.MethodGet, "/api/v1/orders/999/blocks", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = doJSON(t, h, http.MethodPut, "/api/v1/orders/"+itoa(order.ID), map[string]interface{}{"code": "OF-1b"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w, env = doJSON(t, h, http.MethodGet, "/api/v1/orders", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(env.Data), "OF-1b")

	w, _ = doJSON(t, h, http.MethodDelete, "/api/v1/orders/"+itoa(order.ID), nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w, _ = doJSON(t, h, http.MethodDelete, "/api/v1/routing-codes/"+itoa(rc.ID), nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w, env = doJSON(t, h, http.MethodGet, "/api/v1/routing-codes", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, string(env.Data), "DT-1")
}

func TestTransferCSV(t *testing.T) {
	h, _ := setupTestServer(t, false)
	a := createBlock(t, h, map[string]interface{}{"name": "A", "planned_hours": 1})
	createBlock(t, h, map[string]interface{}{"name": "B", "predecessor_id": a.ID})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/transfer/blocks.csv", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/csv")
	assert.Contains(t, w.Header().Get("Content-Disposition"), "attachment")
	exported := w.Body.String()
	assert.True(t, strings.HasPrefix(exported, "id;name;"))

	// 原始请求体导入到另一个库
	h2, eng2 := setupTestServer(t, false)
	req = httptest.NewRequest(http.MethodPost, "/api/v1/transfer/blocks", strings.NewReader(exported))
	req.Header.Set("Content-Type", "text/csv")
	w = httptest.NewRecorder()
	h2.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"imported":2`)

	blocks, err := eng2.PlanningView(req.Context())
	require.NoError(t, err)
	assert.Len(t, blocks, 2)

	// multipart上传：把B改成A的前置会成环
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", "blocks.csv")
	require.NoError(t, err)
	_, err = fw.Write([]byte("id;name;predecessor_id\n" + itoa(a.ID) + ";A;2\n"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req = httptest.NewRequest(http.MethodPost, "/api/v1/transfer/blocks", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w = httptest.NewRecorder()
	h2.ServeHTTP(w, req)
	assert.Equal(t, http.StatusConflict, w.Code, w.Body.String())
}

func TestEventsWebsocket(t *testing.T) {
	h, _ := setupTestServer(t, false)
	w, _ := doJSON(t, h, http.MethodGet, "/ws/events", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	h, _ = setupTestServer(t, true)
	server := httptest.NewServer(h)
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws/events"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	// 等待Hub登记连接后再触发事件
	time.Sleep(50 * time.Millisecond)
	resp, err := http.Post(server.URL+"/api/v1/blocks", "application/json", strings.NewReader(`{"name":"ws"}`))
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	var event realtime.Event
	require.NoError(t, json.Unmarshal(data, &event))
	assert.Equal(t, realtime.EventBlockCreated, event.Type)
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}

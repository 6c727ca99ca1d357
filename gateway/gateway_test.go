/******************************************************************************
 * Copyright (c) 2025-2026 Tenebris Technologies Inc.                         *
 * Please see the LICENSE file for details                                    *
 ******************************************************************************/

package gateway

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/PivotLLM/ClickBridge/config"
	"github.com/PivotLLM/ClickBridge/global"
	"github.com/PivotLLM/ClickBridge/goals"
)

const (
	testSecret = "s3cret"
	taskJSON   = `{"id":"t1","name":"Write docs","status":{"status":"to do"},"url":"https://app.clickup.com/t/t1"}`
)

var testNow = time.Date(2025, 1, 6, 15, 30, 0, 0, time.UTC)

type recorded struct {
	Method string
	Path   string
	Query  url.Values
	Auth   string
	Body   map[string]json.RawMessage
}

// stubUpstream is a fake ClickUp API that records every request
type stubUpstream struct {
	mu       sync.Mutex
	requests []recorded
	status   int
	response string
}

func (s *stubUpstream) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rec := recorded{
		Method: r.Method,
		Path:   r.URL.Path,
		Query:  r.URL.Query(),
		Auth:   r.Header.Get("Authorization"),
	}
	if data, _ := io.ReadAll(r.Body); len(data) > 0 {
		_ = json.Unmarshal(data, &rec.Body)
	}

	s.mu.Lock()
	s.requests = append(s.requests, rec)
	status, response := s.status, s.response
	s.mu.Unlock()

	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)
	_, _ = io.WriteString(w, response)
}

func (s *stubUpstream) calls() []recorded {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]recorded(nil), s.requests...)
}

// newTestGateway builds a gateway pointed at a stub upstream. env entries
// override the defaults for this test.
func newTestGateway(t *testing.T, stub *stubUpstream, env map[string]string, opts ...Option) http.Handler {
	t.Helper()

	srv := httptest.NewServer(stub)
	t.Cleanup(srv.Close)

	defaults := map[string]string{
		"PD_SHARED_SECRET":        testSecret,
		"CLICKUP_API_TOKEN":       "Bearer pk_test",
		"CLICKUP_DEFAULT_LIST_ID": "901",
		"CLICKUP_API_URL":         srv.URL + "/api/v2",
		"CLICKUP_GOALS_FILE":      "",
		"LOG_FILE":                "",
		"LOG_LEVEL":               "INFO",
	}
	for k, v := range env {
		defaults[k] = v
	}
	for k, v := range defaults {
		t.Setenv(k, v)
	}

	cfg := config.New()
	if err := cfg.Load(); err != nil {
		t.Fatalf("config.Load() error = %v", err)
	}

	opts = append([]Option{WithClock(func() time.Time { return testNow })}, opts...)
	return New(cfg, nil, opts...).Handler()
}

func send(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	return sendWithSecret(t, h, method, target, body, testSecret)
}

func sendWithSecret(t *testing.T, h http.Handler, method, target, body, secret string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if secret != "" {
		req.Header.Set(global.HeaderSharedSecret, secret)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decode(t *testing.T, rr *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("response is not JSON: %v (%s)", err, rr.Body.String())
	}
	return out
}

func expectError(t *testing.T, rr *httptest.ResponseRecorder, status int, kind string) map[string]interface{} {
	t.Helper()
	if rr.Code != status {
		t.Fatalf("status = %d, want %d (%s)", rr.Code, status, rr.Body.String())
	}
	body := decode(t, rr)
	if body["error"] != kind {
		t.Errorf("error = %v, want %q", body["error"], kind)
	}
	if msg, _ := body["message"].(string); msg == "" {
		t.Error("error envelope should carry a message")
	}
	if body["request_id"] != rr.Header().Get(global.HeaderRequestID) {
		t.Errorf("request_id = %v, want header value %q", body["request_id"], rr.Header().Get(global.HeaderRequestID))
	}
	return body
}

func TestAuthentication(t *testing.T) {
	tests := []struct {
		name   string
		secret string
		method string
		path   string
	}{
		{"health without secret", "", http.MethodGet, "/health"},
		{"health with wrong secret", "nope", http.MethodGet, "/health"},
		{"unknown path without secret", "", http.MethodGet, "/does-not-exist"},
		{"create with wrong secret", "s3cre", http.MethodPost, "/tasks.create"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stub := &stubUpstream{response: taskJSON}
			h := newTestGateway(t, stub, nil)

			rr := sendWithSecret(t, h, tt.method, tt.path, `{"title":"x"}`, tt.secret)
			expectError(t, rr, http.StatusUnauthorized, global.ErrKindUnauthorized)
			if len(stub.calls()) != 0 {
				t.Error("unauthorized request reached upstream")
			}
		})
	}
}

func TestAuthenticationUnconfiguredSecret(t *testing.T) {
	h := newTestGateway(t, &stubUpstream{}, map[string]string{"PD_SHARED_SECRET": ""})

	for _, secret := range []string{"", "anything"} {
		rr := sendWithSecret(t, h, http.MethodGet, "/health", "", secret)
		expectError(t, rr, http.StatusUnauthorized, global.ErrKindUnauthorized)
	}
}

func TestHealth(t *testing.T) {
	h := newTestGateway(t, &stubUpstream{}, nil)

	rr := send(t, h, http.MethodGet, "/health", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	if body := decode(t, rr); body["ok"] != true {
		t.Errorf("body = %v, want ok:true", body)
	}
	if rr.Header().Get(global.HeaderRequestID) == "" {
		t.Error("missing request id header")
	}
}

func TestRequestIDsAreUnique(t *testing.T) {
	h := newTestGateway(t, &stubUpstream{}, nil)

	first := send(t, h, http.MethodGet, "/health", "").Header().Get(global.HeaderRequestID)
	second := send(t, h, http.MethodGet, "/health", "").Header().Get(global.HeaderRequestID)
	if first == "" || first == second {
		t.Errorf("request ids %q and %q should be distinct and non-empty", first, second)
	}
}

func TestNotFound(t *testing.T) {
	tests := []struct {
		name   string
		method string
		path   string
	}{
		{"unknown path", http.MethodGet, "/nope"},
		{"wrong method on create", http.MethodGet, "/tasks.create"},
		{"wrong method on list", http.MethodPost, "/tasks.list"},
		{"wrong method on goals", http.MethodDelete, "/learning/goals"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestGateway(t, &stubUpstream{}, nil)
			expectError(t, send(t, h, tt.method, tt.path, ""), http.StatusNotFound, global.ErrKindNotFound)
		})
	}
}

func TestMe(t *testing.T) {
	stub := &stubUpstream{response: `{"user":{"id":7,"username":"ada","email":"ada@example.com","color":"#fff"}}`}
	h := newTestGateway(t, stub, nil)

	rr := send(t, h, http.MethodGet, "/clickup.me", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d (%s)", rr.Code, rr.Body.String())
	}
	want := map[string]interface{}{"id": float64(7), "username": "ada", "email": "ada@example.com"}
	if got := decode(t, rr); !reflect.DeepEqual(got, want) {
		t.Errorf("body = %v, want %v", got, want)
	}

	calls := stub.calls()
	if len(calls) != 1 || calls[0].Path != "/api/v2/user" || calls[0].Auth != "pk_test" {
		t.Errorf("unexpected upstream calls %+v", calls)
	}
}

func TestCreateTask(t *testing.T) {
	stub := &stubUpstream{response: taskJSON}
	h := newTestGateway(t, stub, nil)

	rr := send(t, h, http.MethodPost, "/tasks.create",
		`{"title":"Write docs","description":"d","priority":3,"tags":["a"],"due_date":"2025-01-02","assignees":[5]}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d (%s)", rr.Code, rr.Body.String())
	}

	want := map[string]interface{}{
		"id":     "t1",
		"url":    "https://app.clickup.com/t/t1",
		"status": "to do",
		"title":  "Write docs",
	}
	if got := decode(t, rr); !reflect.DeepEqual(got, want) {
		t.Errorf("body = %v, want %v", got, want)
	}

	calls := stub.calls()
	if len(calls) != 1 {
		t.Fatalf("upstream calls = %d, want 1", len(calls))
	}
	call := calls[0]
	if call.Method != http.MethodPost || call.Path != "/api/v2/list/901/task" {
		t.Errorf("unexpected upstream request %s %s", call.Method, call.Path)
	}
	if call.Auth != "pk_test" {
		t.Errorf("Authorization = %q, want normalized token", call.Auth)
	}
	checks := map[string]string{
		"name":      `"Write docs"`,
		"priority":  `3`,
		"due_date":  `1735776000000`,
		"assignees": `[5]`,
	}
	for key, want := range checks {
		if got := string(call.Body[key]); got != want {
			t.Errorf("upstream %s = %s, want %s", key, got, want)
		}
	}
}

func TestCreateTaskUsesRequestListID(t *testing.T) {
	stub := &stubUpstream{response: taskJSON}
	h := newTestGateway(t, stub, map[string]string{"CLICKUP_DEFAULT_LIST_ID": ""})

	rr := send(t, h, http.MethodPost, "/tasks.create", `{"title":"x","list_id":"555"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d (%s)", rr.Code, rr.Body.String())
	}
	if calls := stub.calls(); len(calls) != 1 || calls[0].Path != "/api/v2/list/555/task" {
		t.Errorf("unexpected upstream calls %+v", calls)
	}
}

func TestCreateTaskValidation(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		body string
		kind string
	}{
		{"missing title", nil, `{"description":"no title"}`, global.ErrKindValidation},
		{"blank title", nil, `{"title":"   "}`, global.ErrKindValidation},
		{"no list id anywhere", map[string]string{"CLICKUP_DEFAULT_LIST_ID": ""}, `{"title":"x"}`, global.ErrKindValidation},
		{"malformed json", nil, `{"title":`, global.ErrKindValidation},
		{"empty body", nil, ``, global.ErrKindValidation},
		{"priority out of range", nil, `{"title":"x","priority":9}`, global.ErrKindValidation},
		{"bad due date", nil, `{"title":"x","due_date":"next tuesday"}`, global.ErrKindValidation},
		{"fractional due date", nil, `{"title":"x","due_date":1735776000000.7}`, global.ErrKindValidation},
		{"missing token", map[string]string{"CLICKUP_API_TOKEN": ""}, `{"title":"x"}`, global.ErrKindConfiguration},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stub := &stubUpstream{response: taskJSON}
			h := newTestGateway(t, stub, tt.env)

			expectError(t, send(t, h, http.MethodPost, "/tasks.create", tt.body), http.StatusBadRequest, tt.kind)
			if len(stub.calls()) != 0 {
				t.Error("rejected request reached upstream")
			}
		})
	}
}

func TestListTasks(t *testing.T) {
	stub := &stubUpstream{response: `{"tasks":[
		{"id":"a","name":"A","status":{"status":"to do"},"url":"u/a","due_date":"1735776000000","assignees":[{"id":1},{"id":2}]},
		{"id":"b","name":"B","status":{"status":"done"},"url":"u/b","due_date":null,"assignees":[]}
	]}`}
	h := newTestGateway(t, stub, nil)

	rr := send(t, h, http.MethodGet, "/tasks.list?statuses=to%20do,%20,done&page=2&limit=5", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d (%s)", rr.Code, rr.Body.String())
	}

	calls := stub.calls()
	if len(calls) != 1 {
		t.Fatalf("upstream calls = %d, want 1", len(calls))
	}
	q := calls[0].Query
	if !reflect.DeepEqual(q["statuses[]"], []string{"to do", "done"}) {
		t.Errorf("statuses[] = %v", q["statuses[]"])
	}
	if q.Get("page") != "2" || q.Get("limit") != "5" {
		t.Errorf("page/limit = %s/%s", q.Get("page"), q.Get("limit"))
	}

	var body struct {
		Tasks []struct {
			ID        string  `json:"id"`
			Title     string  `json:"title"`
			Status    string  `json:"status"`
			DueDate   *int64  `json:"due_date"`
			Assignees []int64 `json:"assignees"`
			URL       string  `json:"url"`
		} `json:"tasks"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Tasks) != 2 {
		t.Fatalf("tasks = %d, want 2", len(body.Tasks))
	}
	first, second := body.Tasks[0], body.Tasks[1]
	if first.Title != "A" || first.DueDate == nil || *first.DueDate != 1735776000000 || !reflect.DeepEqual(first.Assignees, []int64{1, 2}) {
		t.Errorf("unexpected first task %+v", first)
	}
	if second.DueDate != nil || second.Assignees == nil || len(second.Assignees) != 0 {
		t.Errorf("unexpected second task %+v", second)
	}
	if !strings.Contains(rr.Body.String(), `"due_date":null`) {
		t.Error("missing due date should be rendered as null")
	}
}

func TestListTasksNumericDueDate(t *testing.T) {
	stub := &stubUpstream{response: `{"tasks":[
		{"id":"a","name":"A","status":{"status":"to do"},"url":"u/a","due_date":1735776000000,"assignees":[]},
		{"id":"b","name":"B","status":{"status":"to do"},"url":"u/b","due_date":"1735862400000","assignees":[]}
	]}`}
	h := newTestGateway(t, stub, nil)

	rr := send(t, h, http.MethodGet, "/tasks.list", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d (%s)", rr.Code, rr.Body.String())
	}

	var body struct {
		Tasks []struct {
			ID      string `json:"id"`
			DueDate *int64 `json:"due_date"`
		} `json:"tasks"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := map[string]int64{"a": 1735776000000, "b": 1735862400000}
	if len(body.Tasks) != len(want) {
		t.Fatalf("tasks = %d, want %d", len(body.Tasks), len(want))
	}
	for _, task := range body.Tasks {
		if task.DueDate == nil || *task.DueDate != want[task.ID] {
			t.Errorf("task %s due_date = %v, want %d", task.ID, task.DueDate, want[task.ID])
		}
	}
}

func TestListTasksRejectsBadPaging(t *testing.T) {
	stub := &stubUpstream{response: `{"tasks":[]}`}
	h := newTestGateway(t, stub, nil)

	expectError(t, send(t, h, http.MethodGet, "/tasks.list?limit=ten", ""), http.StatusBadRequest, global.ErrKindValidation)
	if len(stub.calls()) != 0 {
		t.Error("rejected request reached upstream")
	}
}

func TestUpdateTaskForwardsOnlyPresentKeys(t *testing.T) {
	tests := []struct {
		name string
		body string
		want map[string]string
	}{
		{
			name: "rename title",
			body: `{"id":"abc","title":"New name"}`,
			want: map[string]string{"name": `"New name"`},
		},
		{
			name: "explicit empty and null",
			body: `{"id":"abc","status":"","description":null}`,
			want: map[string]string{"status": `""`, "description": "null"},
		},
		{
			name: "due date converted",
			body: `{"id":"abc","due_date":"2025-01-02","priority":1}`,
			want: map[string]string{"due_date": "1735776000000", "priority": "1"},
		},
		{
			name: "due date cleared",
			body: `{"id":"abc","due_date":null}`,
			want: map[string]string{"due_date": "null"},
		},
		{
			name: "unknown keys dropped",
			body: `{"id":"abc","list_id":"901","tags":["x"]}`,
			want: map[string]string{"tags": `["x"]`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stub := &stubUpstream{response: taskJSON}
			h := newTestGateway(t, stub, nil)

			rr := send(t, h, http.MethodPost, "/tasks.update", tt.body)
			if rr.Code != http.StatusOK {
				t.Fatalf("status = %d (%s)", rr.Code, rr.Body.String())
			}

			calls := stub.calls()
			if len(calls) != 1 || calls[0].Method != http.MethodPut || calls[0].Path != "/api/v2/task/abc" {
				t.Fatalf("unexpected upstream calls %+v", calls)
			}
			got := map[string]string{}
			for k, v := range calls[0].Body {
				got[k] = string(v)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("upstream body = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestUpdateAndDeleteRequireID(t *testing.T) {
	for _, path := range []string{"/tasks.update", "/tasks.delete"} {
		for _, body := range []string{`{}`, `{"id":""}`, `{"id":12}`} {
			stub := &stubUpstream{response: taskJSON}
			h := newTestGateway(t, stub, nil)

			expectError(t, send(t, h, http.MethodPost, path, body), http.StatusBadRequest, global.ErrKindValidation)
			if len(stub.calls()) != 0 {
				t.Errorf("%s %s reached upstream", path, body)
			}
		}
	}
}

func TestDeleteTask(t *testing.T) {
	stub := &stubUpstream{response: `{}`}
	h := newTestGateway(t, stub, nil)

	rr := send(t, h, http.MethodPost, "/tasks.delete", `{"id":"abc"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d (%s)", rr.Code, rr.Body.String())
	}
	body := decode(t, rr)
	if body["id"] != "abc" || body["message"] == "" {
		t.Errorf("unexpected body %v", body)
	}
	if calls := stub.calls(); len(calls) != 1 || calls[0].Method != http.MethodDelete || calls[0].Path != "/api/v2/task/abc" {
		t.Errorf("unexpected upstream calls %+v", calls)
	}
}

func TestUpstreamErrors(t *testing.T) {
	t.Run("api error keeps status and details", func(t *testing.T) {
		stub := &stubUpstream{status: http.StatusNotFound, response: `{"err":"Task not found","ECODE":"ITEM_013"}`}
		h := newTestGateway(t, stub, nil)

		body := expectError(t, send(t, h, http.MethodPost, "/tasks.delete", `{"id":"missing"}`), http.StatusNotFound, global.ErrKindClickUpAPI)
		want := map[string]interface{}{"err": "Task not found", "ECODE": "ITEM_013"}
		if !reflect.DeepEqual(body["details"], want) {
			t.Errorf("details = %v, want %v", body["details"], want)
		}
	})

	t.Run("non-JSON upstream body", func(t *testing.T) {
		stub := &stubUpstream{status: http.StatusBadGateway, response: "<html>bad gateway</html>"}
		h := newTestGateway(t, stub, nil)

		expectError(t, send(t, h, http.MethodGet, "/clickup.me", ""), http.StatusInternalServerError, global.ErrKindNetwork)
	})

	t.Run("unreachable upstream", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		addr := srv.URL
		srv.Close()

		h := newTestGateway(t, &stubUpstream{}, map[string]string{"CLICKUP_API_URL": addr})
		expectError(t, send(t, h, http.MethodGet, "/clickup.me", ""), http.StatusInternalServerError, global.ErrKindNetwork)
	})
}

func TestWeeklySession(t *testing.T) {
	tests := []struct {
		name         string
		body         string
		wantPath     string
		wantInDesc   string
		wantNotInDes string
	}{
		{"empty body uses defaults", "", "/api/v2/list/901/task", global.DefaultObjectives[0], ""},
		{"custom objectives", `{"objectives":["Read the MCP docs"],"list_id":"777"}`, "/api/v2/list/777/task", "- Read the MCP docs", global.DefaultObjectives[0]},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stub := &stubUpstream{response: taskJSON}
			h := newTestGateway(t, stub, nil)

			rr := send(t, h, http.MethodPost, "/learning/weekly", tt.body)
			if rr.Code != http.StatusOK {
				t.Fatalf("status = %d (%s)", rr.Code, rr.Body.String())
			}
			if msg, _ := decode(t, rr)["message"].(string); msg == "" {
				t.Error("missing message")
			}

			calls := stub.calls()
			if len(calls) != 1 || calls[0].Path != tt.wantPath {
				t.Fatalf("unexpected upstream calls %+v", calls)
			}
			body := calls[0].Body
			if string(body["name"]) != `"Weekly LLM Learning Session 2025-01-06"` {
				t.Errorf("name = %s", body["name"])
			}
			if string(body["priority"]) != "2" || string(body["status"]) != `"to do"` {
				t.Errorf("priority/status = %s/%s", body["priority"], body["status"])
			}
			if string(body["tags"]) != `["learning","weekly","llm","productivity"]` {
				t.Errorf("tags = %s", body["tags"])
			}
			var desc string
			_ = json.Unmarshal(body["description"], &desc)
			if !strings.Contains(desc, tt.wantInDesc) {
				t.Errorf("description missing %q:\n%s", tt.wantInDesc, desc)
			}
			if tt.wantNotInDes != "" && strings.Contains(desc, tt.wantNotInDes) {
				t.Errorf("description should not contain %q", tt.wantNotInDes)
			}
		})
	}
}

func TestTrackProgress(t *testing.T) {
	stub := &stubUpstream{response: taskJSON}
	h := newTestGateway(t, stub, nil)

	rr := send(t, h, http.MethodPost, "/learning/track",
		`{"progress":{"timeSpent":45,"skills":["prompting"],"achievements":["shipped"]},"focusArea":"Agents"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d (%s)", rr.Code, rr.Body.String())
	}

	calls := stub.calls()
	if len(calls) != 1 {
		t.Fatalf("upstream calls = %d, want 1", len(calls))
	}
	body := calls[0].Body
	if string(body["name"]) != `"Learning Progress - 2025-01-06"` {
		t.Errorf("name = %s", body["name"])
	}
	if string(body["priority"]) != "1" || string(body["status"]) != `"in progress"` {
		t.Errorf("priority/status = %s/%s", body["priority"], body["status"])
	}
	var desc string
	_ = json.Unmarshal(body["description"], &desc)
	for _, want := range []string{"45", "prompting", "shipped", "Agents", global.DefaultSessionType} {
		if !strings.Contains(desc, want) {
			t.Errorf("description missing %q:\n%s", want, desc)
		}
	}
}

func TestGoalsStatic(t *testing.T) {
	h := newTestGateway(t, &stubUpstream{}, nil)

	rr := send(t, h, http.MethodGet, "/learning/goals", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	var got global.GoalsRequest
	if err := json.Unmarshal(rr.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !reflect.DeepEqual(got.Goals, global.DefaultGoals()) {
		t.Errorf("goals = %v, want defaults", got.Goals)
	}

	rr = send(t, h, http.MethodPost, "/learning/goals", `{"goals":[{"id":"go","title":"Learn Go"}]}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d (%s)", rr.Code, rr.Body.String())
	}
	if body := decode(t, rr); body["persisted"] != false {
		t.Errorf("persisted = %v, want false", body["persisted"])
	}
}

func TestGoalsFileStore(t *testing.T) {
	store := goals.NewFileStore(filepath.Join(t.TempDir(), "goals.json"), nil)
	h := newTestGateway(t, &stubUpstream{}, nil, WithGoalsStore(store))

	rr := send(t, h, http.MethodPost, "/learning/goals",
		`{"goals":[{"id":"go","title":"Learn Go","progress":10,"targetDate":"2026-12-31"}]}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d (%s)", rr.Code, rr.Body.String())
	}
	if body := decode(t, rr); body["persisted"] != true {
		t.Errorf("persisted = %v, want true", body["persisted"])
	}

	rr = send(t, h, http.MethodGet, "/learning/goals", "")
	var got global.GoalsRequest
	if err := json.Unmarshal(rr.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := []global.Goal{{ID: "go", Title: "Learn Go", Progress: 10, TargetDate: "2026-12-31"}}
	if !reflect.DeepEqual(got.Goals, want) {
		t.Errorf("goals = %v, want %v", got.Goals, want)
	}
}

func TestGoalsValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing goals", `{}`},
		{"goals not an array", `{"goals":"x"}`},
		{"goal without title", `{"goals":[{"id":"a"}]}`},
		{"negative progress", `{"goals":[{"id":"a","title":"A","progress":-1}]}`},
		{"malformed", `{"goals":[`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestGateway(t, &stubUpstream{}, nil)
			expectError(t, send(t, h, http.MethodPost, "/learning/goals", tt.body), http.StatusBadRequest, global.ErrKindValidation)
		})
	}
}

// panicStore panics on every call
type panicStore struct{}

func (panicStore) List(context.Context) ([]global.Goal, error) { panic("boom") }
func (panicStore) Replace(context.Context, []global.Goal) error { panic("boom") }
func (panicStore) Persistent() bool                             { return false }

func TestPanicRecovery(t *testing.T) {
	h := newTestGateway(t, &stubUpstream{}, nil, WithGoalsStore(panicStore{}))

	expectError(t, send(t, h, http.MethodGet, "/learning/goals", ""), http.StatusInternalServerError, global.ErrKindInternal)

	// the handler keeps serving after a panic
	if rr := send(t, h, http.MethodGet, "/health", ""); rr.Code != http.StatusOK {
		t.Errorf("status after panic = %d, want 200", rr.Code)
	}
}

func TestPanicAfterHeadersWritten(t *testing.T) {
	g := &Gateway{}
	h := g.recoverPanics(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("partial"))
		panic("late failure")
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/tasks", nil))

	if rr.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rr.Code)
	}
	if got := rr.Body.String(); got != "partial" {
		t.Errorf("body = %q, want only the partial response", got)
	}
}

func TestParseDueDate(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    int64
		wantNil bool
		wantErr bool
	}{
		{"number", `1735776000000`, 1735776000000, false, false},
		{"numeric string", `"1735776000000"`, 1735776000000, false, false},
		{"date", `"2025-01-02"`, 1735776000000, false, false},
		{"rfc3339", `"2025-01-02T00:00:00Z"`, 1735776000000, false, false},
		{"null", `null`, 0, true, false},
		{"empty string", `""`, 0, true, false},
		{"absent", ``, 0, true, false},
		{"exponent", `1.735776e12`, 1735776000000, false, false},
		{"fractional number", `1735776000000.7`, 0, false, true},
		{"fractional string", `"1735776000000.7"`, 0, false, true},
		{"garbage", `"soon"`, 0, false, true},
		{"bool", `true`, 0, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseDueDate(json.RawMessage(tt.raw))
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseDueDate(%s) error = %v, wantErr %v", tt.raw, err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if tt.wantNil {
				if got != nil {
					t.Errorf("parseDueDate(%s) = %d, want nil", tt.raw, *got)
				}
				return
			}
			if got == nil || *got != tt.want {
				t.Errorf("parseDueDate(%s) = %v, want %d", tt.raw, got, tt.want)
			}
		})
	}
}

func TestSplitStatuses(t *testing.T) {
	got := splitStatuses(" to do , ,in progress,")
	if !reflect.DeepEqual(got, []string{"to do", "in progress"}) {
		t.Errorf("splitStatuses() = %v", got)
	}
	if splitStatuses("") != nil {
		t.Error("empty filter should yield nil")
	}
}

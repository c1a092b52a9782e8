package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yurisalesc/poc-legal-llm/internal/core/domain"
	"github.com/yurisalesc/poc-legal-llm/internal/metrics"
)

type fakeQuery struct {
	answer *domain.Answer
	err    error
	got    string
}

func (f *fakeQuery) Ask(_ context.Context, question string) (*domain.Answer, error) {
	f.got = question
	return f.answer, f.err
}

func (f *fakeQuery) Retrieve(context.Context, string) ([]domain.Chunk, error) {
	return nil, nil
}

type fakeTasks struct {
	mu        sync.Mutex
	submitted []string
	tasks     map[string]*domain.Task
	err       error
}

func (f *fakeTasks) Submit(_ context.Context, path string) (*domain.Task, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.submitted = append(f.submitted, path)
	return &domain.Task{ID: "task-1", FilePath: path, State: domain.TaskPending}, nil
}

func (f *fakeTasks) Get(_ context.Context, id string) (*domain.Task, error) {
	if t, ok := f.tasks[id]; ok {
		return t, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeTasks) Start(context.Context) error { return nil }
func (f *fakeTasks) Stop()                       {}

type fakeStats struct{}

func (fakeStats) Stats(context.Context) (*domain.CollectionStats, error) {
	return &domain.CollectionStats{Collection: "leis", Chunks: 3, Sources: []string{"a.pdf"}}, nil
}

func newTestServer(t *testing.T, q *fakeQuery, tasks *fakeTasks) (*Server, string) {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "uploads")
	srv, err := NewServer(Ports{Query: q, Tasks: tasks, Stats: fakeStats{}, UploadDir: dir})
	require.NoError(t, err)
	return srv, dir
}

func uploadRequest(t *testing.T, filename, contentType string, body []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="file"; filename="`+filename+`"`)
	h.Set("Content-Type", contentType)
	part, err := mw.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(body)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/upload-lei/", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestNewServer_RequiresPorts(t *testing.T) {
	dir := t.TempDir()
	_, err := NewServer(Ports{Tasks: &fakeTasks{}, UploadDir: dir})
	assert.Error(t, err)
	_, err = NewServer(Ports{Query: &fakeQuery{}, UploadDir: dir})
	assert.Error(t, err)
	_, err = NewServer(Ports{Query: &fakeQuery{}, Tasks: &fakeTasks{}})
	assert.Error(t, err)
}

func TestUpload_Accepted(t *testing.T) {
	tasks := &fakeTasks{}
	srv, dir := newTestServer(t, &fakeQuery{}, tasks)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, uploadRequest(t, "lei_8666.pdf", "application/pdf", []byte("%PDF-1.4")))

	require.Equal(t, http.StatusAccepted, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, msgUploadAccepted, body["message"])
	assert.Equal(t, "task-1", body["task_id"])

	want := filepath.Join(dir, "lei_8666.pdf")
	assert.Equal(t, []string{want}, tasks.submitted)
	data, err := os.ReadFile(want)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4", string(data))
}

func TestUpload_StripsDirectories(t *testing.T) {
	tasks := &fakeTasks{}
	srv, dir := newTestServer(t, &fakeQuery{}, tasks)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, uploadRequest(t, "../../etc/lei.pdf", "application/pdf", []byte("x")))

	require.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, []string{filepath.Join(dir, "lei.pdf")}, tasks.submitted)
}

func TestUpload_Rejections(t *testing.T) {
	tests := []struct {
		name        string
		filename    string
		contentType string
		wantCode    int
		wantDetail  string
	}{
		{"not a pdf", "lei.txt", "text/plain", http.StatusBadRequest, msgNotPDF},
		{"no filename", "/", "application/pdf", http.StatusBadRequest, msgNoFilename},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tasks := &fakeTasks{}
			srv, _ := newTestServer(t, &fakeQuery{}, tasks)

			rec := httptest.NewRecorder()
			srv.Handler().ServeHTTP(rec, uploadRequest(t, tt.filename, tt.contentType, []byte("x")))

			assert.Equal(t, tt.wantCode, rec.Code)
			assert.Equal(t, tt.wantDetail, decode(t, rec)["detail"])
			assert.Empty(t, tasks.submitted)
		})
	}
}

func TestUpload_MissingField(t *testing.T) {
	srv, _ := newTestServer(t, &fakeQuery{}, &fakeTasks{})

	req := httptest.NewRequest(http.MethodPost, "/api/upload-lei/", strings.NewReader("nothing"))
	req.Header.Set("Content-Type", "text/plain")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpload_SubmitFailureRemovesFile(t *testing.T) {
	srv, dir := newTestServer(t, &fakeQuery{}, &fakeTasks{err: errors.New("stopped")})

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, uploadRequest(t, "lei.pdf", "application/pdf", []byte("x")))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	_, err := os.Stat(filepath.Join(dir, "lei.pdf"))
	assert.True(t, os.IsNotExist(err))
}

func TestQuery(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		query      *fakeQuery
		wantCode   int
		wantDetail string
	}{
		{
			name:       "empty question",
			body:       `{"question": "   "}`,
			query:      &fakeQuery{},
			wantCode:   http.StatusBadRequest,
			wantDetail: msgEmptyQuestion,
		},
		{
			name:       "malformed body",
			body:       `{"question":`,
			query:      &fakeQuery{},
			wantCode:   http.StatusUnprocessableEntity,
			wantDetail: msgBadBody,
		},
		{
			name:       "service failure",
			body:       `{"question": "Qual o objeto da lei?"}`,
			query:      &fakeQuery{err: errors.New("llm down")},
			wantCode:   http.StatusInternalServerError,
			wantDetail: msgQueryFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := newTestServer(t, tt.query, &fakeTasks{})

			req := httptest.NewRequest(http.MethodPost, "/api/consultar-lei/", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			srv.Handler().ServeHTTP(rec, req)

			assert.Equal(t, tt.wantCode, rec.Code)
			assert.Equal(t, tt.wantDetail, decode(t, rec)["detail"])
		})
	}
}

func TestQuery_Success(t *testing.T) {
	q := &fakeQuery{answer: &domain.Answer{
		Text:     "A lei institui normas para licitações.",
		Sources:  []string{"lei_8666.pdf"},
		Strategy: domain.StrategySemantic,
	}}
	srv, _ := newTestServer(t, q, &fakeTasks{})

	req := httptest.NewRequest(http.MethodPost, "/api/consultar-lei/",
		strings.NewReader(`{"question": "Qual o objeto da lei?"}`))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp queryResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "A lei institui normas para licitações.", resp.Result)
	assert.Equal(t, []string{"lei_8666.pdf"}, resp.Sources)
	assert.Equal(t, "semantic", resp.Strategy)
	assert.Equal(t, "Qual o objeto da lei?", q.got)
}

func TestQuery_NilSourcesEncodeAsEmptyList(t *testing.T) {
	srv, _ := newTestServer(t, &fakeQuery{answer: &domain.Answer{Text: "ok"}}, &fakeTasks{})

	req := httptest.NewRequest(http.MethodPost, "/api/consultar-lei/", strings.NewReader(`{"question":"q"}`))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"sources":[]`)
}

func TestTaskStatus(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	tasks := &fakeTasks{tasks: map[string]*domain.Task{
		"abc": {
			ID:        "abc",
			FilePath:  "/tmp/uploads/lei.pdf",
			State:     domain.TaskSucceeded,
			Result:    &domain.IngestResult{Source: "lei.pdf", Status: domain.IngestStatusSuccess, Chunks: 4},
			CreatedAt: now,
			UpdatedAt: now,
		},
	}}
	srv, _ := newTestServer(t, &fakeQuery{}, tasks)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/tasks/abc", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var got taskStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "abc", got.ID)
	assert.Equal(t, domain.TaskSucceeded, got.State)
	assert.Equal(t, "lei.pdf", got.File)
	require.NotNil(t, got.Result)
	assert.Equal(t, 4, got.Result.Chunks)

	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/tasks/missing", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, msgTaskNotFound, decode(t, rec)["detail"])
}

func TestHealthAndStats(t *testing.T) {
	srv, _ := newTestServer(t, &fakeQuery{}, &fakeTasks{})

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "API online", decode(t, rec)["status"])

	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/stats", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"a.pdf"`)
}

func TestWrongMethod(t *testing.T) {
	srv, _ := newTestServer(t, &fakeQuery{}, &fakeTasks{})

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/consultar-lei/", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestMetricsRoute(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())
	srv, err := NewServer(Ports{
		Query:     &fakeQuery{},
		Tasks:     &fakeTasks{},
		Metrics:   m,
		UploadDir: t.TempDir(),
	})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `legal_llm_http_requests_total{code="200",route="/api/health"} 1`)
}

func TestServe_ShutsDownOnCancel(t *testing.T) {
	srv, _ := newTestServer(t, &fakeQuery{}, &fakeTasks{})

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/api/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestUpload_EmptyFilename(t *testing.T) {
	srv, _ := newTestServer(t, &fakeQuery{}, &fakeTasks{})

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="file"; filename=""`)
	h.Set("Content-Type", "application/pdf")
	part, err := mw.CreatePart(h)
	require.NoError(t, err)
	_, _ = part.Write([]byte("x"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/upload-lei/", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, msgNoFilename, decode(t, rec)["detail"])
}

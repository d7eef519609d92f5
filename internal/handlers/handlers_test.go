package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"taskboard/internal/dashboard"
	"taskboard/internal/handlers"
	"taskboard/internal/handlers/dto"
	"taskboard/internal/identity"
	"taskboard/internal/middleware"
	"taskboard/internal/models"
)

type MockDashboard struct {
	mock.Mock
}

func (m *MockDashboard) Load(ctx context.Context, filter models.Filter) (dashboard.State, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(dashboard.State), args.Error(1)
}

func (m *MockDashboard) ChangeStatus(ctx context.Context, id uuid.UUID, status models.Status) (dashboard.State, error) {
	args := m.Called(ctx, id, status)
	return args.Get(0).(dashboard.State), args.Error(1)
}

func (m *MockDashboard) ChangeAssignee(ctx context.Context, id uuid.UUID, assignee string) (dashboard.State, error) {
	args := m.Called(ctx, id, assignee)
	return args.Get(0).(dashboard.State), args.Error(1)
}

func (m *MockDashboard) Claim(ctx context.Context, id uuid.UUID, principal uuid.UUID) (dashboard.State, error) {
	args := m.Called(ctx, id, principal)
	return args.Get(0).(dashboard.State), args.Error(1)
}

func (m *MockDashboard) Delete(ctx context.Context, id uuid.UUID, confirmed bool) (dashboard.State, error) {
	args := m.Called(ctx, id, confirmed)
	return args.Get(0).(dashboard.State), args.Error(1)
}

func (m *MockDashboard) Create(ctx context.Context, n models.NewTask) (*models.Task, dashboard.State, error) {
	args := m.Called(ctx, n)
	var task *models.Task
	if args.Get(0) != nil {
		task = args.Get(0).(*models.Task)
	}
	return task, args.Get(1).(dashboard.State), args.Error(2)
}

func (m *MockDashboard) History(ctx context.Context, id uuid.UUID) ([]*models.HistoryEntry, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.HistoryEntry), args.Error(1)
}

type stubDirectory struct {
	profiles map[uuid.UUID]*models.Profile
}

func (d *stubDirectory) Lookup(id uuid.UUID) (*models.Profile, bool) {
	p, ok := d.profiles[id]
	return p, ok
}

func (d *stubDirectory) All() []*models.Profile {
	res := make([]*models.Profile, 0, len(d.profiles))
	for _, p := range d.profiles {
		res = append(res, p)
	}
	return res
}

func strPtr(s string) *string { return &s }

func newRouter(h *handlers.TaskHandler) chi.Router {
	r := chi.NewRouter()
	r.Get("/api/tasks", h.ListTasks)
	r.Post("/api/tasks", h.CreateTask)
	r.Route("/api/tasks/{id}", func(r chi.Router) {
		r.Post("/status", h.ChangeStatus)
		r.Post("/assignee", h.ChangeAssignee)
		r.Post("/claim", h.ClaimTask)
		r.Get("/history", h.GetHistory)
		r.Delete("/", h.DeleteTask)
	})
	return r
}

func emptyDirectory() *stubDirectory {
	return &stubDirectory{profiles: map[uuid.UUID]*models.Profile{}}
}

func TestListTasksDefaultsToAll(t *testing.T) {
	board := new(MockDashboard)
	state := dashboard.State{
		Filter: models.FilterAll,
		Tasks:  []*models.Task{{ID: uuid.New(), Title: "a", Status: models.StatusPending}},
		Counts: models.Counts{All: 1, Pending: 1},
	}
	board.On("Load", mock.Anything, models.FilterAll).Return(state, nil)

	handler := handlers.NewTaskHandler(board, emptyDirectory())

	req := httptest.NewRequest(http.MethodGet, "/api/tasks", nil)
	rec := httptest.NewRecorder()
	newRouter(handler).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp dto.BoardResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "all", resp.Filter)
	require.Len(t, resp.Tasks, 1)
	assert.Equal(t, "a", resp.Tasks[0].Title)
	assert.Equal(t, 1, resp.Counts.All)
	board.AssertExpectations(t)
}

func TestListTasksSortsOverdueFirst(t *testing.T) {
	board := new(MockDashboard)
	past := time.Now().AddDate(0, 0, -7)
	future := time.Now().AddDate(0, 0, 7)
	overdue := &models.Task{ID: uuid.New(), Title: "overdue", Status: models.StatusPending, DueDate: &past}
	upcoming := &models.Task{ID: uuid.New(), Title: "upcoming", Status: models.StatusPending, DueDate: &future}

	state := dashboard.State{
		Filter: models.FilterAll,
		// Store order: upcoming first. Display order must flip it.
		Tasks: []*models.Task{upcoming, overdue},
	}
	board.On("Load", mock.Anything, models.FilterAll).Return(state, nil)

	handler := handlers.NewTaskHandler(board, emptyDirectory())

	req := httptest.NewRequest(http.MethodGet, "/api/tasks?status=all", nil)
	rec := httptest.NewRecorder()
	newRouter(handler).ServeHTTP(rec, req)

	var resp dto.BoardResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp.Tasks, 2)
	assert.Equal(t, "overdue", resp.Tasks[0].Title)
	assert.True(t, resp.Tasks[0].IsOverdue)
	assert.Equal(t, "Overdue", resp.Tasks[0].Badge)
	assert.Equal(t, "upcoming", resp.Tasks[1].Title)
}

func TestListTasksInvalidFilter(t *testing.T) {
	board := new(MockDashboard)
	board.On("Load", mock.Anything, models.Filter("bogus")).
		Return(dashboard.State{}, dashboard.NewValidationError("status", "unknown filter bogus"))

	handler := handlers.NewTaskHandler(board, emptyDirectory())

	req := httptest.NewRequest(http.MethodGet, "/api/tasks?status=bogus", nil)
	rec := httptest.NewRecorder()
	newRouter(handler).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListTasksDegradedOnLoadFailure(t *testing.T) {
	board := new(MockDashboard)
	stale := dashboard.State{
		Filter:    models.FilterAll,
		Tasks:     []*models.Task{{ID: uuid.New(), Title: "stale", Status: models.StatusPending}},
		LastError: "failed to load tasks",
	}
	board.On("Load", mock.Anything, models.FilterAll).
		Return(stale, dashboard.NewRemoteUnavailable(errors.New("connection refused")))

	handler := handlers.NewTaskHandler(board, emptyDirectory())

	req := httptest.NewRequest(http.MethodGet, "/api/tasks", nil)
	rec := httptest.NewRecorder()
	newRouter(handler).ServeHTTP(rec, req)

	// Degraded, not failed: the stale list ships with the inline error.
	require.Equal(t, http.StatusOK, rec.Code)

	var resp dto.BoardResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp.Tasks, 1)
	assert.Equal(t, "stale", resp.Tasks[0].Title)
	assert.Equal(t, "failed to load tasks", resp.Error)
}

func TestCreateTask(t *testing.T) {
	board := new(MockDashboard)
	created := &models.Task{ID: uuid.New(), Title: "new task", Status: models.StatusPending}
	due := time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC)

	board.On("Create", mock.Anything, mock.MatchedBy(func(n models.NewTask) bool {
		return n.Title == "new task" && n.DueDate != nil && n.DueDate.Equal(due)
	})).Return(created, dashboard.State{Filter: models.FilterAll, Tasks: []*models.Task{created}}, nil)

	handler := handlers.NewTaskHandler(board, emptyDirectory())

	body, _ := json.Marshal(dto.CreateTaskRequest{Title: "new task", DueDate: strPtr("2026-09-15")})
	req := httptest.NewRequest(http.MethodPost, "/api/tasks", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	newRouter(handler).ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)

	var resp struct {
		Task  dto.TaskResponse  `json:"task"`
		Board dto.BoardResponse `json:"board"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, created.ID, resp.Task.ID)
	assert.Len(t, resp.Board.Tasks, 1)
}

func TestCreateTaskRejectsBadDueDate(t *testing.T) {
	board := new(MockDashboard)
	handler := handlers.NewTaskHandler(board, emptyDirectory())

	body := []byte(`{"title":"x","due_date":"15/09/2026"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/tasks", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	newRouter(handler).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	board.AssertNotCalled(t, "Create")
}

func TestChangeStatus(t *testing.T) {
	board := new(MockDashboard)
	id := uuid.New()
	state := dashboard.State{
		Filter: models.FilterAll,
		Tasks:  []*models.Task{{ID: id, Title: "a", Status: models.StatusCompleted}},
	}
	board.On("ChangeStatus", mock.Anything, id, models.StatusCompleted).Return(state, nil)

	handler := handlers.NewTaskHandler(board, emptyDirectory())

	body := []byte(`{"status":"completed"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/tasks/"+id.String()+"/status", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	newRouter(handler).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp dto.BoardResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp.Tasks, 1)
	assert.Equal(t, "completed", resp.Tasks[0].Status)
}

func TestChangeStatusNotFound(t *testing.T) {
	board := new(MockDashboard)
	id := uuid.New()
	board.On("ChangeStatus", mock.Anything, id, models.StatusCompleted).
		Return(dashboard.State{}, dashboard.NewNotFound("task", id.String()))

	handler := handlers.NewTaskHandler(board, emptyDirectory())

	body := []byte(`{"status":"completed"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/tasks/"+id.String()+"/status", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	newRouter(handler).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)

	var resp map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, dashboard.CodeNotFound, resp["error"])
}

func TestChangeStatusInvalidTaskID(t *testing.T) {
	handler := handlers.NewTaskHandler(new(MockDashboard), emptyDirectory())

	req := httptest.NewRequest(http.MethodPost, "/api/tasks/not-a-uuid/status", bytes.NewReader([]byte(`{}`)))
	rec := httptest.NewRecorder()
	newRouter(handler).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestClaimTaskUsesPrincipal(t *testing.T) {
	board := new(MockDashboard)
	id := uuid.New()
	userID := uuid.New()
	board.On("Claim", mock.Anything, id, userID).Return(dashboard.State{Filter: models.FilterAll}, nil)

	handler := handlers.NewTaskHandler(board, emptyDirectory())

	req := httptest.NewRequest(http.MethodPost, "/api/tasks/"+id.String()+"/claim", nil)
	ctx := middleware.WithPrincipal(req.Context(), &identity.Principal{UserID: userID, Role: models.RoleStaff})
	rec := httptest.NewRecorder()
	newRouter(handler).ServeHTTP(rec, req.WithContext(ctx))

	assert.Equal(t, http.StatusOK, rec.Code)
	board.AssertExpectations(t)
}

func TestClaimTaskWithoutSession(t *testing.T) {
	handler := handlers.NewTaskHandler(new(MockDashboard), emptyDirectory())

	req := httptest.NewRequest(http.MethodPost, "/api/tasks/"+uuid.NewString()+"/claim", nil)
	rec := httptest.NewRecorder()
	newRouter(handler).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestDeleteTaskPassesConfirmation(t *testing.T) {
	board := new(MockDashboard)
	id := uuid.New()
	board.On("Delete", mock.Anything, id, true).Return(dashboard.State{Filter: models.FilterAll}, nil)

	handler := handlers.NewTaskHandler(board, emptyDirectory())

	req := httptest.NewRequest(http.MethodDelete, "/api/tasks/"+id.String()+"?confirm=true", nil)
	rec := httptest.NewRecorder()
	newRouter(handler).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	board.AssertExpectations(t)
}

func TestDeleteTaskUnconfirmed(t *testing.T) {
	board := new(MockDashboard)
	id := uuid.New()
	board.On("Delete", mock.Anything, id, false).
		Return(dashboard.State{}, dashboard.NewValidationError("confirm", "deletion requires explicit confirmation"))

	handler := handlers.NewTaskHandler(board, emptyDirectory())

	req := httptest.NewRequest(http.MethodDelete, "/api/tasks/"+id.String(), nil)
	rec := httptest.NewRecorder()
	newRouter(handler).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetHistoryRendersSentences(t *testing.T) {
	board := new(MockDashboard)
	taskID := uuid.New()
	actor := uuid.New()
	dir := &stubDirectory{profiles: map[uuid.UUID]*models.Profile{
		actor: {ID: actor, Role: models.RoleStaff, DisplayName: strPtr("Alice")},
	}}

	entries := []*models.HistoryEntry{{
		ID:           uuid.New(),
		TaskID:       taskID,
		FieldChanged: "status",
		OldValue:     strPtr("pending"),
		NewValue:     strPtr("in_progress"),
		ChangedBy:    actor,
		ChangedAt:    time.Now(),
	}}
	board.On("History", mock.Anything, taskID).Return(entries, nil)

	handler := handlers.NewTaskHandler(board, dir)

	req := httptest.NewRequest(http.MethodGet, "/api/tasks/"+taskID.String()+"/history", nil)
	rec := httptest.NewRecorder()
	newRouter(handler).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp []dto.HistoryEntryResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp, 1)
	assert.Equal(t, "Alice changed status to in progress", resp[0].Message)
}

func TestGetHistoryFailureServesEmptyList(t *testing.T) {
	board := new(MockDashboard)
	taskID := uuid.New()
	board.On("History", mock.Anything, taskID).Return(nil, errors.New("connection refused"))

	handler := handlers.NewTaskHandler(board, emptyDirectory())

	req := httptest.NewRequest(http.MethodGet, "/api/tasks/"+taskID.String()+"/history", nil)
	rec := httptest.NewRecorder()
	newRouter(handler).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp []dto.HistoryEntryResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Empty(t, resp)
}

func TestGetSessionLabels(t *testing.T) {
	handler := handlers.NewSessionHandler(nil)

	tests := []struct {
		name      string
		principal *identity.Principal
		wantLabel string
	}{
		{
			name:      "display name wins",
			principal: &identity.Principal{UserID: uuid.New(), Role: models.RoleAdmin, DisplayName: strPtr("Dana")},
			wantLabel: "Dana",
		},
		{
			name:      "admin fallback",
			principal: &identity.Principal{UserID: uuid.New(), Role: models.RoleAdmin},
			wantLabel: "Administrator",
		},
		{
			name:      "staff fallback",
			principal: &identity.Principal{UserID: uuid.New(), Role: models.RoleStaff},
			wantLabel: "Staff Member",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/session", nil)
			ctx := middleware.WithPrincipal(req.Context(), tt.principal)
			rec := httptest.NewRecorder()
			handler.GetSession(rec, req.WithContext(ctx))

			require.Equal(t, http.StatusOK, rec.Code)

			var resp dto.SessionResponse
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
			assert.Equal(t, tt.wantLabel, resp.Label)
			assert.Equal(t, tt.principal.UserID, resp.UserID)
		})
	}
}

type stubSignOuter struct {
	err   error
	token string
}

func (s *stubSignOuter) SignOut(_ context.Context, token string) error {
	s.token = token
	return s.err
}

func TestSignOut(t *testing.T) {
	sessions := &stubSignOuter{}
	handler := handlers.NewSessionHandler(sessions)

	req := httptest.NewRequest(http.MethodPost, "/api/session/signout", nil)
	rec := httptest.NewRecorder()
	handler.SignOut(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestSignOutRemoteFailure(t *testing.T) {
	sessions := &stubSignOuter{err: errors.New("connection refused")}
	handler := handlers.NewSessionHandler(sessions)

	req := httptest.NewRequest(http.MethodPost, "/api/session/signout", nil)
	rec := httptest.NewRecorder()
	handler.SignOut(rec, req)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestListStaffLabels(t *testing.T) {
	board := new(MockDashboard)
	id := uuid.New()
	dir := &stubDirectory{profiles: map[uuid.UUID]*models.Profile{
		id: {ID: id, Role: models.RoleAdmin, DisplayName: strPtr("Dana")},
	}}

	handler := handlers.NewTaskHandler(board, dir)

	req := httptest.NewRequest(http.MethodGet, "/api/users", nil)
	rec := httptest.NewRecorder()
	handler.ListStaff(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp []dto.StaffUserResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp, 1)
	assert.Equal(t, "Dana", resp[0].Label)
	assert.Equal(t, "admin", resp[0].Role)
}

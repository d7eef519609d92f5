package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"taskboard/internal/dashboard"
	"taskboard/internal/handlers/dto"
	"taskboard/internal/logger"
	"taskboard/internal/middleware"
	"taskboard/internal/models"
	"taskboard/internal/present"
)

type TaskHandler struct {
	board Dashboard
	dir   Directory
	now   func() time.Time
}

func NewTaskHandler(board Dashboard, dir Directory) *TaskHandler {
	return &TaskHandler{
		board: board,
		dir:   dir,
		now:   time.Now,
	}
}

func (h *TaskHandler) boardResponse(state dashboard.State) dto.BoardResponse {
	today := h.now()
	return dto.BoardResponse{
		Filter: string(state.Filter),
		Tasks:  dto.FromTaskList(present.SortForDisplay(state.Tasks, today), h.dir, today),
		Counts: state.Counts,
		Error:  state.LastError,
	}
}

// ListTasks serves the board view: sorted cards plus the unfiltered
// counts. On a load failure the last good list is still returned,
// with the inline error set.
func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	logger.HTTPRequestInfo(r, "HTTP_IN:")

	filter := models.Filter(r.URL.Query().Get("status"))
	if filter == "" {
		filter = models.FilterAll
	}

	state, err := h.board.Load(r.Context(), filter)
	if err != nil {
		var businessErr *dashboard.BusinessError
		if isValidation(err, &businessErr) {
			handleBusinessError(w, err)
			return
		}
		// Degraded view: stale list plus inline error beats a blank page.
		logger.Warn("HTTP: serving degraded board", zap.Error(err))
	}

	responseWithJSON(w, http.StatusOK, h.boardResponse(state))
}

func isValidation(err error, target **dashboard.BusinessError) bool {
	if b, ok := err.(*dashboard.BusinessError); ok && b.Code == dashboard.CodeValidation {
		*target = b
		return true
	}
	return false
}

func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	logger.HTTPRequestInfo(r, "HTTP_IN:")

	var request dto.CreateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		logger.Warn("HTTP: malformed JSON", zap.Error(err))
		responseWithError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	n := models.NewTask{
		Title:       request.Title,
		Description: request.Description,
	}

	if request.DueDate != nil && *request.DueDate != "" {
		due, err := dto.ParseDueDate(*request.DueDate)
		if err != nil {
			logger.Warn("HTTP: invalid due date", zap.String("due_date", *request.DueDate))
			responseWithError(w, http.StatusBadRequest, "due_date must be YYYY-MM-DD")
			return
		}
		n.DueDate = &due
	}

	if request.AssignedTo != nil && *request.AssignedTo != "" {
		assignee, err := uuid.Parse(*request.AssignedTo)
		if err != nil {
			responseWithError(w, http.StatusBadRequest, "assigned_to must be a user id")
			return
		}
		n.AssignedTo = &assignee
	}

	created, state, err := h.board.Create(r.Context(), n)
	if err != nil {
		if handleBusinessError(w, err) {
			return
		}
		responseWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	logger.Info("HTTP_OUT: task created", zap.String("task_id", created.ID.String()))
	today := h.now()
	responseWithJSON(w, http.StatusCreated, map[string]any{
		"task":  dto.FromTask(created, h.dir, today),
		"board": h.boardResponse(state),
	})
}

func (h *TaskHandler) ChangeStatus(w http.ResponseWriter, r *http.Request) {
	logger.HTTPRequestInfo(r, "HTTP_IN:")

	id, ok := taskID(w, r)
	if !ok {
		return
	}

	var request dto.StatusChangeRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		logger.Warn("HTTP: malformed JSON", zap.Error(err))
		responseWithError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	state, err := h.board.ChangeStatus(r.Context(), id, models.Status(request.Status))
	if err != nil {
		if handleBusinessError(w, err) {
			return
		}
		responseWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	responseWithJSON(w, http.StatusOK, h.boardResponse(state))
}

func (h *TaskHandler) ChangeAssignee(w http.ResponseWriter, r *http.Request) {
	logger.HTTPRequestInfo(r, "HTTP_IN:")

	id, ok := taskID(w, r)
	if !ok {
		return
	}

	var request dto.AssigneeChangeRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		logger.Warn("HTTP: malformed JSON", zap.Error(err))
		responseWithError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	state, err := h.board.ChangeAssignee(r.Context(), id, request.AssignedTo)
	if err != nil {
		if handleBusinessError(w, err) {
			return
		}
		responseWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	responseWithJSON(w, http.StatusOK, h.boardResponse(state))
}

func (h *TaskHandler) ClaimTask(w http.ResponseWriter, r *http.Request) {
	logger.HTTPRequestInfo(r, "HTTP_IN:")

	id, ok := taskID(w, r)
	if !ok {
		return
	}

	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		responseWithError(w, http.StatusUnauthorized, "no active session")
		return
	}

	state, err := h.board.Claim(r.Context(), id, principal.UserID)
	if err != nil {
		if handleBusinessError(w, err) {
			return
		}
		responseWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	responseWithJSON(w, http.StatusOK, h.boardResponse(state))
}

// DeleteTask requires confirm=true; the UI asks the user first and the
// API refuses anything unconfirmed.
func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	logger.HTTPRequestInfo(r, "HTTP_IN:")

	id, ok := taskID(w, r)
	if !ok {
		return
	}

	confirmed := r.URL.Query().Get("confirm") == "true"

	state, err := h.board.Delete(r.Context(), id, confirmed)
	if err != nil {
		if handleBusinessError(w, err) {
			return
		}
		responseWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	logger.Info("HTTP_OUT: task deleted", zap.String("task_id", id.String()))
	responseWithJSON(w, http.StatusOK, h.boardResponse(state))
}

func (h *TaskHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	logger.HTTPRequestInfo(r, "HTTP_IN:")

	id, ok := taskID(w, r)
	if !ok {
		return
	}

	entries, err := h.board.History(r.Context(), id)
	if err != nil {
		// History is supplementary; never fail the card over it.
		logger.Warn("HTTP: history fetch failed", zap.Error(err))
		entries = nil
	}

	responseWithJSON(w, http.StatusOK, dto.FromHistory(entries, h.dir))
}

// ListStaff serves the assignee dropdown from the directory snapshot.
func (h *TaskHandler) ListStaff(w http.ResponseWriter, r *http.Request) {
	logger.HTTPRequestInfo(r, "HTTP_IN:")

	profiles := h.dir.All()
	users := make([]dto.StaffUserResponse, len(profiles))
	for i, p := range profiles {
		users[i] = dto.StaffUserResponse{
			ID:    p.ID,
			Role:  string(p.Role),
			Label: present.DisplayLabel(p.ID, h.dir),
		}
	}
	responseWithJSON(w, http.StatusOK, users)
}

func (h *TaskHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	responseWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func taskID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	idParam := chi.URLParam(r, "id")
	id, err := uuid.Parse(idParam)
	if err != nil || id == uuid.Nil {
		logger.Warn("HTTP: invalid task id", zap.String("id", idParam))
		responseWithError(w, http.StatusBadRequest, "invalid task id")
		return uuid.Nil, false
	}
	return id, true
}

package api

import (
	"errors"
	"net/http"

	"github.com/nerrad567/fieldtask-core/internal/task"
)

// handleListTasks returns every task as a JSON array.
func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request, _ Request) {
	tasks, err := s.tasks.List(r.Context())
	if err != nil {
		s.logger.Error("failed to list tasks", "error", err)
		writeStatus(w, http.StatusInternalServerError)
		return
	}
	if tasks == nil {
		tasks = []task.Task{}
	}
	writeJSON(w, http.StatusOK, tasks)
}

// handleGetTask returns a single task, or 404 with an empty body.
func (s *Server) handleGetTask(w http.ResponseWriter, r *http.Request, req Request) {
	t, err := s.tasks.Get(r.Context(), req.ID)
	if err != nil {
		if errors.Is(err, task.ErrTaskNotFound) {
			writeStatus(w, http.StatusNotFound)
			return
		}
		s.logger.Error("failed to get task", "task_id", req.ID, "error", err)
		writeStatus(w, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// handleCreateTask validates and stores a new task, answering 201 with the
// stored document.
func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request, req Request) {
	t, err := s.tasks.Create(r.Context(), req.Body)
	if err != nil {
		s.writeTaskWriteError(w, "", err)
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

// handleUpdateTask fully replaces the five task fields.
func (s *Server) handleUpdateTask(w http.ResponseWriter, r *http.Request, req Request) {
	t, err := s.tasks.Update(r.Context(), req.ID, req.Body)
	if err != nil {
		s.writeTaskWriteError(w, req.ID, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// handleDeleteTask removes a task and answers with the document as it was.
func (s *Server) handleDeleteTask(w http.ResponseWriter, r *http.Request, req Request) {
	prior, err := s.tasks.Delete(r.Context(), req.ID)
	if err != nil {
		if errors.Is(err, task.ErrTaskNotFound) {
			writeStatus(w, http.StatusNotFound)
			return
		}
		s.logger.Error("failed to delete task", "task_id", req.ID, "error", err)
		writeStatus(w, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, prior)
}

// writeTaskWriteError maps create and update failures: unknown id 404,
// validation 400 with the message list, anything else 400 with the error
// text.
func (s *Server) writeTaskWriteError(w http.ResponseWriter, id string, err error) {
	var verr *task.ValidationError
	switch {
	case errors.Is(err, task.ErrTaskNotFound):
		writeStatus(w, http.StatusNotFound)
	case errors.As(err, &verr):
		writeBadRequest(w, verr.Messages)
	default:
		s.logger.Warn("task write failed", "task_id", id, "error", err)
		writeBadRequest(w, err.Error())
	}
}

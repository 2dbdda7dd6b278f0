package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/julienschmidt/httprouter"
	"github.com/lfmonteiro/taskdeck/auth"
	authapi "github.com/lfmonteiro/taskdeck/auth/api"
	"github.com/lfmonteiro/taskdeck/internal/logutil"
	"github.com/lfmonteiro/taskdeck/store"
	"github.com/lfmonteiro/taskdeck/task"
)

type (
	handler struct {
		svc *task.Service
	}

	taskRequest struct {
		ID          string    `json:"id"`
		Title       string    `json:"title"`
		Description string    `json:"description"`
		DueDate     task.Date `json:"dueDate"`
		IsCompleted bool      `json:"isCompleted"`
	}

	errorResponse struct {
		Message string `json:"message"`
	}

	validationResponse struct {
		Errors task.FieldErrors `json:"errors"`
	}
)

// AsHandler assembles the full HTTP surface: the unauthenticated login
// route plus the task routes, every one of the latter behind the
// security realm.
func AsHandler(authSvc *auth.Service, taskSvc *task.Service, realm *authapi.SecurityRealm) http.Handler {
	router := httprouter.New()
	h := handler{svc: taskSvc}
	router.Handler(http.MethodPost, "/auth/login", authapi.LoginHandler(authSvc))
	router.GET("/tasks", realm.Protect(h.list))
	router.POST("/tasks", realm.Protect(h.create))
	router.GET("/tasks/:id", realm.Protect(h.get))
	router.PUT("/tasks/:id", realm.Protect(h.update))
	router.DELETE("/tasks/:id", realm.Protect(h.delete))
	return router
}

func (h handler) list(w http.ResponseWriter, r *http.Request, _ httprouter.Params, caller auth.Identity) {
	views, err := h.svc.List(r.Context(), caller.UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if views == nil {
		views = []task.View{}
	}
	writeJSON(w, http.StatusOK, views)
}

func (h handler) get(w http.ResponseWriter, r *http.Request, ps httprouter.Params, caller auth.Identity) {
	taskID, ok := pathID(w, ps)
	if !ok {
		return
	}
	view, err := h.svc.Get(r.Context(), taskID, caller.UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h handler) create(w http.ResponseWriter, r *http.Request, _ httprouter.Params, caller auth.Identity) {
	var req taskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: "invalid request body"})
		return
	}
	view, err := h.svc.Create(r.Context(), caller.UserID, task.Input{
		Title:       req.Title,
		Description: req.Description,
		DueDate:     req.DueDate,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Location", fmt.Sprintf("/tasks/%v", view.ID))
	writeJSON(w, http.StatusCreated, view)
}

func (h handler) update(w http.ResponseWriter, r *http.Request, ps httprouter.Params, caller auth.Identity) {
	taskID, ok := pathID(w, ps)
	if !ok {
		return
	}
	var req taskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: "invalid request body"})
		return
	}
	if req.ID != taskID.String() {
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: "id in path does not match id in body"})
		return
	}
	view, err := h.svc.Update(r.Context(), taskID, caller.UserID, task.Input{
		Title:       req.Title,
		Description: req.Description,
		DueDate:     req.DueDate,
	}, req.IsCompleted)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h handler) delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params, caller auth.Identity) {
	taskID, ok := pathID(w, ps)
	if !ok {
		return
	}
	if err := h.svc.Delete(r.Context(), taskID, caller.UserID); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// pathID parses the :id segment. An id that is not a well-formed uuid
// can never name an existing task, so it gets the same not-found answer
// as a missing one.
func pathID(w http.ResponseWriter, ps httprouter.Params) (uuid.UUID, bool) {
	taskID, err := uuid.Parse(ps.ByName("id"))
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Message: "task not found"})
		return uuid.UUID{}, false
	}
	return taskID, true
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var fieldErrs task.FieldErrors
	var notFound store.TaskNotFound
	switch {
	case errors.As(err, &fieldErrs):
		writeJSON(w, http.StatusBadRequest, validationResponse{Errors: fieldErrs})
	case errors.As(err, &notFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Message: "task not found"})
	default:
		logger := logutil.GetOrDefault(r.Context())
		logger.Error().Err(err).Msg("Unexpected error serving task request")
		writeJSON(w, http.StatusInternalServerError, errorResponse{Message: "internal error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

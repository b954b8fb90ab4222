package backend

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/strun-app/strun-wallet/internal/model"
)

// TasksAPI covers /tasks endpoints.
type TasksAPI struct {
	r Requester
}

// List lists tasks matching filter.
func (t *TasksAPI) List(ctx context.Context, filter model.TaskFilter) ([]model.Task, error) {
	params := url.Values{}
	if filter.Category != "" {
		params.Set("category", filter.Category)
	}
	if filter.Status != "" {
		params.Set("status", filter.Status)
	}
	if filter.CreatedBy != "" {
		params.Set("created_by", filter.CreatedBy)
	}

	endpoint := "/tasks"
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	var tasks []model.Task
	if err := t.r.Do(ctx, http.MethodGet, endpoint, nil, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// CreatedBy lists tasks created by the backend user id.
func (t *TasksAPI) CreatedBy(ctx context.Context, userID int64) ([]model.Task, error) {
	return t.List(ctx, model.TaskFilter{CreatedBy: strconv.FormatInt(userID, 10)})
}

// Get gets one task.
func (t *TasksAPI) Get(ctx context.Context, id string) (*model.Task, error) {
	var task model.Task
	if err := t.r.Do(ctx, http.MethodGet, "/tasks/"+url.PathEscape(id), nil, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// Create creates a task.
func (t *TasksAPI) Create(ctx context.Context, task *model.Task) (*model.Task, error) {
	var created model.Task
	if err := t.r.Do(ctx, http.MethodPost, "/tasks", task, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// Accept accepts a task for the signed-in user.
func (t *TasksAPI) Accept(ctx context.Context, id string) (*model.Message, error) {
	var msg model.Message
	if err := t.r.Do(ctx, http.MethodPost, "/tasks/"+url.PathEscape(id)+"/accept", nil, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// Submit submits a proof of completion for a task.
func (t *TasksAPI) Submit(ctx context.Context, id string, proof *model.SubmitTaskProof) (*model.Message, error) {
	var msg model.Message
	if err := t.r.Do(ctx, http.MethodPost, "/tasks/"+url.PathEscape(id)+"/submit", proof, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// Accepted lists tasks the signed-in user accepted.
func (t *TasksAPI) Accepted(ctx context.Context) ([]model.Task, error) {
	var tasks []model.Task
	if err := t.r.Do(ctx, http.MethodGet, "/tasks/user/accepted", nil, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

package backend

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/strun-app/strun-wallet/internal/model"
)

const defaultPageSize = 20

// ProofsAPI covers the /proofs social feed.
type ProofsAPI struct {
	r Requester
}

// List gets a feed page.
func (p *ProofsAPI) List(ctx context.Context, limit, offset int) ([]model.Proof, error) {
	if limit <= 0 {
		limit = defaultPageSize
	}
	var proofs []model.Proof
	if err := p.r.Do(ctx, http.MethodGet, fmt.Sprintf("/proofs?limit=%d&offset=%d", limit, offset), nil, &proofs); err != nil {
		return nil, err
	}
	return proofs, nil
}

// Get gets one proof.
func (p *ProofsAPI) Get(ctx context.Context, id int64) (*model.Proof, error) {
	var proof model.Proof
	if err := p.r.Do(ctx, http.MethodGet, fmt.Sprintf("/proofs/%d", id), nil, &proof); err != nil {
		return nil, err
	}
	return &proof, nil
}

// Create posts a proof. The backend takes the author from the token.
func (p *ProofsAPI) Create(ctx context.Context, proof *model.NewProof) (*model.Proof, error) {
	var created model.Proof
	if err := p.r.Do(ctx, http.MethodPost, "/proofs", proof, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// ForTask lists the proofs submitted for a task.
func (p *ProofsAPI) ForTask(ctx context.Context, taskID string) ([]model.Proof, error) {
	var proofs []model.Proof
	if err := p.r.Do(ctx, http.MethodGet, "/proofs/task/"+url.PathEscape(taskID), nil, &proofs); err != nil {
		return nil, err
	}
	return proofs, nil
}

// Like likes a proof.
func (p *ProofsAPI) Like(ctx context.Context, id int64) (*model.Message, error) {
	return p.action(ctx, id, "like")
}

// Share records a share.
func (p *ProofsAPI) Share(ctx context.Context, id int64) (*model.Message, error) {
	return p.action(ctx, id, "share")
}

// Repost reposts a proof.
func (p *ProofsAPI) Repost(ctx context.Context, id int64) (*model.Message, error) {
	return p.action(ctx, id, "repost")
}

// Vote votes for a proof.
func (p *ProofsAPI) Vote(ctx context.Context, id int64) (*model.Message, error) {
	return p.action(ctx, id, "vote")
}

func (p *ProofsAPI) action(ctx context.Context, id int64, name string) (*model.Message, error) {
	var msg model.Message
	if err := p.r.Do(ctx, http.MethodPost, fmt.Sprintf("/proofs/%d/%s", id, name), nil, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

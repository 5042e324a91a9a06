package usrrepo

import (
	"context"

	"github.com/sksmith/print-factory/core"
	"github.com/sksmith/print-factory/core/user"
)

type MockRepo struct {
	CreateFunc func(ctx context.Context, u *user.User, options ...core.UpdateOptions) error
	GetFunc    func(ctx context.Context, username string, options ...core.QueryOptions) (user.User, error)
	DeleteFunc func(ctx context.Context, username string, options ...core.UpdateOptions) error
}

func (r MockRepo) Create(ctx context.Context, u *user.User, options ...core.UpdateOptions) error {
	return r.CreateFunc(ctx, u, options...)
}

func (r MockRepo) Get(ctx context.Context, username string, options ...core.QueryOptions) (user.User, error) {
	return r.GetFunc(ctx, username, options...)
}

func (r MockRepo) Delete(ctx context.Context, username string, options ...core.UpdateOptions) error {
	return r.DeleteFunc(ctx, username, options...)
}

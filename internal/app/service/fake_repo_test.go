package service

import (
	"context"
	"fmt"
	"sync"
	"vaccitrack/internal/common"
	"vaccitrack/internal/domain/model"
)

// fakeUserRepo is an in-memory UserRepository that counts calls.
type fakeUserRepo struct {
	mu        sync.Mutex
	users     []*model.User
	findCalls int
	creates   int
	findErr   error
	createErr error
	buckets   []model.UserTypeCount
	statsErr  error
	statCalls int
}

func (r *fakeUserRepo) FindOne(_ context.Context, f model.UserFilter) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.findCalls++
	if r.findErr != nil {
		return nil, r.findErr
	}
	for _, u := range r.users {
		if f.ID != "" && u.ID != f.ID {
			continue
		}
		if f.Email != "" && u.Email != f.Email {
			continue
		}
		if f.Password != "" && u.Password != f.Password {
			continue
		}
		cp := *u
		return &cp, nil
	}
	return nil, common.ErrNotFound
}

func (r *fakeUserRepo) Create(_ context.Context, u *model.User) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.creates++
	if r.createErr != nil {
		return nil, r.createErr
	}
	if u.ID == "" {
		u.ID = fmt.Sprintf("user-%d", len(r.users)+1)
	}
	cp := *u
	r.users = append(r.users, &cp)
	return u, nil
}

func (r *fakeUserRepo) Stats(context.Context) ([]model.UserTypeCount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.statCalls++
	return r.buckets, r.statsErr
}

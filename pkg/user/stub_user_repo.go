package user

import (
	"context"
	"sync"
)

type RepoStub struct {
	mu    sync.RWMutex
	users map[string]User
}

func NewRepoStub() *RepoStub {
	return &RepoStub{users: make(map[string]User)}
}

func (r *RepoStub) CreateUser(_ context.Context, user User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[user.Id] = user
	return nil
}

func (r *RepoStub) GetUser(_ context.Context, id string) (User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.users[id]
	if !ok {
		return User{}, ErrUserNotFound
	}
	return user, nil
}

func (r *RepoStub) UpdateUser(_ context.Context, userId string, user User) (User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[userId]; !ok {
		return User{}, ErrUserNotFound
	}
	user.Id = userId
	r.users[userId] = user
	return user, nil
}

func (r *RepoStub) DeleteUserData(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return ErrUserNotFound
	}
	delete(r.users, id)
	return nil
}

func (r *RepoStub) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users = make(map[string]User)
}

package web

import (
	"context"

	"github.com/permutationlock/catacrawl/db/user"
	"github.com/permutationlock/catacrawl/game"
)

type mockTokenizer struct {
	createFunc       func(username string, id game.PlayerID) (string, error)
	readUsernameFunc func(tokenString string) (string, error)
}

func (m mockTokenizer) Create(username string, id game.PlayerID) (string, error) {
	return m.createFunc(username, id)
}

func (m mockTokenizer) ReadUsername(tokenString string) (string, error) {
	return m.readUsernameFunc(tokenString)
}

type mockUserDao struct {
	createFunc         func(ctx context.Context, u user.User) error
	loginFunc          func(ctx context.Context, u user.User) (*user.User, error)
	updatePasswordFunc func(ctx context.Context, u user.User, newP string) error
	deleteFunc         func(ctx context.Context, u user.User) error
}

func (m mockUserDao) Create(ctx context.Context, u user.User) error {
	return m.createFunc(ctx, u)
}

func (m mockUserDao) Login(ctx context.Context, u user.User) (*user.User, error) {
	return m.loginFunc(ctx, u)
}

func (m mockUserDao) UpdatePassword(ctx context.Context, u user.User, newP string) error {
	return m.updatePasswordFunc(ctx, u, newP)
}

func (m mockUserDao) Delete(ctx context.Context, u user.User) error {
	return m.deleteFunc(ctx, u)
}

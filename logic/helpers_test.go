package logic_test

import (
	"context"
	"testing"

	"github.com/Taolee-crypto/timelink-backend/dao"
	"github.com/Taolee-crypto/timelink-backend/logic"
	"github.com/Taolee-crypto/timelink-backend/models"
	"github.com/Taolee-crypto/timelink-backend/pkg"
	"github.com/Taolee-crypto/timelink-backend/testutil"
)

type env struct {
	ctx   context.Context
	store *dao.Store
	svc   *logic.Services
}

func newEnv(t *testing.T) *env {
	t.Helper()
	st := testutil.Store(t)
	return &env{
		ctx:   context.Background(),
		store: st,
		svc:   logic.NewServices(st, testutil.Config(), pkg.StaticMedia{}, testutil.Logger()),
	}
}

func (e *env) user(t *testing.T, id uint64) *models.User {
	t.Helper()
	u, err := e.store.Users.GetUserByID(id)
	if err != nil {
		t.Fatalf("load user %d: %v", id, err)
	}
	return u
}

func (e *env) content(t *testing.T, id uint64) *models.ContentItem {
	t.Helper()
	c, err := e.store.Contents.GetContentByID(id)
	if err != nil {
		t.Fatalf("load content %d: %v", id, err)
	}
	return c
}

package main

import (
	"context"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"

	"github.com/example/tastetab/internal/bootstrap"
	"github.com/example/tastetab/internal/models"
	"github.com/example/tastetab/internal/store"
	"github.com/example/tastetab/internal/utils"
)

func newStore(t *testing.T, name string) store.Store {
	t.Helper()
	st, err := bootstrap.OpenStore(context.Background(), "file:"+name+"?mode=memory&cache=shared", "silent")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close(context.Background()) })
	return st
}

func TestCreateUser(t *testing.T) {
	utils.PasswordCost = bcrypt.MinCost
	ctx := context.Background()
	st := newStore(t, "posctl_create_user")

	user, err := createUser(ctx, st, createUserOptions{
		Username: "owner",
		Email:    "owner@example.com",
		Password: "S3cret!pass",
		Role:     "admin",
		Phone:    "9876543210",
	})
	if err != nil {
		t.Fatalf("createUser failed: %v", err)
	}
	if user.Role != models.RoleAdmin || !utils.CheckPassword(user.PasswordHash, "S3cret!pass") {
		t.Errorf("unexpected user %+v", user)
	}

	_, err = createUser(ctx, st, createUserOptions{Username: "other", Email: "owner@example.com", Password: "x", Role: "user"})
	if err == nil || !strings.Contains(err.Error(), "email already exists") {
		t.Errorf("expected email conflict, got %v", err)
	}
}

func TestCreateUserValidation(t *testing.T) {
	ctx := context.Background()
	st := newStore(t, "posctl_create_user_validation")

	tests := []createUserOptions{
		{Email: "a@example.com", Password: "p", Role: "admin"},
		{Username: "a", Email: "a@example.com", Password: "p", Role: "owner"},
		{Username: "a", Email: "a@example.com", Password: "p", Role: "user", Phone: "12345"},
	}
	for _, opts := range tests {
		if _, err := createUser(ctx, st, opts); err == nil {
			t.Errorf("expected error for %+v", opts)
		}
	}
}

func TestSeedItems(t *testing.T) {
	ctx := context.Background()
	st := newStore(t, "posctl_seed_items")

	n, err := seedItems(ctx, st)
	if err != nil {
		t.Fatalf("seedItems failed: %v", err)
	}

	items, err := st.ListItems(ctx)
	if err != nil {
		t.Fatalf("ListItems failed: %v", err)
	}
	if n == 0 || len(items) != n {
		t.Errorf("inserted %d, listed %d", n, len(items))
	}
}

func TestCommandsRequireFlags(t *testing.T) {
	cmd := createUserCmd()
	for _, name := range []string{"username", "email", "password"} {
		flag := cmd.Flags().Lookup(name)
		if flag == nil {
			t.Fatalf("missing flag %s", name)
		}
		if _, ok := flag.Annotations[cobra.BashCompOneRequiredFlag]; !ok {
			t.Errorf("flag %s should be required", name)
		}
	}
}

package repo

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-user-app/internal/domain"
	"go-user-app/pkg/utils"
)

func TestMapDupKey(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"nil", nil, nil},
		{"postgres login index",
			errors.New(`ERROR: duplicate key value violates unique constraint "uq_users_login_active" (SQLSTATE 23505)`),
			domain.ErrDuplicateLogin},
		{"postgres email index",
			errors.New(`ERROR: duplicate key value violates unique constraint "uq_users_email_active" (SQLSTATE 23505)`),
			domain.ErrDuplicateEmail},
		{"mysql login key",
			errors.New(`Error 1062 (23000): Duplicate entry 'jdoe' for key 'users.uq_users_login_active'`),
			domain.ErrDuplicateLogin},
		{"mysql email key",
			errors.New(`Error 1062 (23000): Duplicate entry 'a@b.c' for key 'users.uq_users_email_active'`),
			domain.ErrDuplicateEmail},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mapDupKey(tt.err)
			if tt.want == nil {
				assert.NoError(t, got)
				return
			}
			assert.ErrorIs(t, got, tt.want)
		})
	}
}

func TestMapDupKeyPassesThroughOtherErrors(t *testing.T) {
	orig := errors.New("connection refused")
	assert.Equal(t, orig, mapDupKey(orig))
}

func seedUser(t *testing.T, r *MemoryUserRepo, login, email string) string {
	t.Helper()
	u := &domain.User{ID: utils.NewID(), Login: login, Email: email, PasswordHash: "x"}
	require.NoError(t, r.Insert(context.Background(), u))
	return u.ID
}

func TestMemoryRepoUniqueness(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryUserRepo()
	id := seedUser(t, r, "jdoe", "jdoe@example.com")

	err := r.Insert(ctx, &domain.User{ID: utils.NewID(), Login: "jdoe", Email: "x@example.com"})
	assert.ErrorIs(t, err, domain.ErrDuplicateLogin)
	err = r.Insert(ctx, &domain.User{ID: utils.NewID(), Login: "x", Email: "jdoe@example.com"})
	assert.ErrorIs(t, err, domain.ErrDuplicateEmail)

	// Deleting releases the identifiers.
	require.NoError(t, r.SoftDelete(ctx, id))
	require.NoError(t, r.Insert(ctx, &domain.User{ID: utils.NewID(), Login: "jdoe", Email: "jdoe@example.com"}))
}

func TestMemoryRepoConcurrentInsertSameLogin(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryUserRepo()

	const n = 16
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = r.Insert(ctx, &domain.User{
				ID: utils.NewID(), Login: "jdoe", Email: utils.NewID() + "@example.com",
			})
		}(i)
	}
	wg.Wait()

	var ok, dup int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, domain.ErrDuplicateLogin):
			dup++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, ok, "exactly one concurrent insert may win")
	assert.Equal(t, n-1, dup)
}

func TestMemoryRepoFindByLoginAnyState(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryUserRepo()
	id := seedUser(t, r, "jdoe", "jdoe@example.com")
	require.NoError(t, r.SoftDelete(ctx, id))

	u, err := r.FindByLoginAnyState(ctx, "jdoe")
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.True(t, u.DeletedAt.Valid)

	active, err := r.FindActiveByLogin(ctx, "jdoe")
	require.NoError(t, err)
	assert.Nil(t, active)

	// A fresh active row with the reused login wins over the deleted one.
	id2 := seedUser(t, r, "jdoe", "new@example.com")
	u, err = r.FindByLoginAnyState(ctx, "jdoe")
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, id2, u.ID)
}

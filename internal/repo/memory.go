package repo

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"gorm.io/gorm"

	"go-user-app/internal/domain"
	"go-user-app/pkg/utils"
)

// MemoryUserRepo is a map-backed UserRepository for tests and local runs
// without a database. It enforces the same active-scoped uniqueness the SQL
// indexes do.
type MemoryUserRepo struct {
	mu    sync.RWMutex
	users map[string]domain.User
}

func NewMemoryUserRepo() *MemoryUserRepo {
	return &MemoryUserRepo{users: make(map[string]domain.User)}
}

func (r *MemoryUserRepo) FindByLoginAnyState(_ context.Context, login string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	// Prefer the active row when a deleted one left the login behind.
	var deleted *domain.User
	for _, u := range r.users {
		if u.Login != login {
			continue
		}
		if !u.DeletedAt.Valid {
			u := u
			return &u, nil
		}
		u := u
		deleted = &u
	}
	return deleted, nil
}

func (r *MemoryUserRepo) FindActiveByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if u, ok := r.users[id]; ok && !u.DeletedAt.Valid {
		return &u, nil
	}
	return nil, nil
}

func (r *MemoryUserRepo) FindActiveByLogin(_ context.Context, login string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if !u.DeletedAt.Valid && u.Login == login {
			return &u, nil
		}
	}
	return nil, nil
}

func (r *MemoryUserRepo) FindActiveByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if !u.DeletedAt.Valid && u.Email == email {
			return &u, nil
		}
	}
	return nil, nil
}

func (r *MemoryUserRepo) IsLoginTaken(_ context.Context, login, excludeID string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.takenLocked("login", login, excludeID), nil
}

func (r *MemoryUserRepo) IsEmailTaken(_ context.Context, email, excludeID string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.takenLocked("email", email, excludeID), nil
}

func (r *MemoryUserRepo) takenLocked(col, val, excludeID string) bool {
	for _, u := range r.users {
		if u.DeletedAt.Valid || u.ID == excludeID {
			continue
		}
		if (col == "login" && u.Login == val) || (col == "email" && u.Email == val) {
			return true
		}
	}
	return false
}

func (r *MemoryUserRepo) ListActive(_ context.Context, offset, limit int, q string) ([]domain.User, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var all []domain.User
	needle := strings.ToLower(strings.TrimSpace(q))
	for _, u := range r.users {
		if u.DeletedAt.Valid {
			continue
		}
		if needle != "" && !matches(&u, needle) {
			continue
		}
		all = append(all, u)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	total := int64(len(all))
	if offset >= len(all) {
		return nil, total, nil
	}
	end := offset + limit
	if limit <= 0 || end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func matches(u *domain.User, needle string) bool {
	return strings.Contains(strings.ToLower(u.Login), needle) ||
		strings.Contains(strings.ToLower(u.Email), needle) ||
		strings.Contains(strings.ToLower(u.Firstname), needle) ||
		strings.Contains(strings.ToLower(u.Lastname), needle)
}

func (r *MemoryUserRepo) Insert(_ context.Context, u *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.takenLocked("login", u.Login, "") {
		return domain.ErrDuplicateLogin
	}
	if r.takenLocked("email", u.Email, "") {
		return domain.ErrDuplicateEmail
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now()
	}
	u.UpdatedAt = u.CreatedAt
	r.users[u.ID] = *u
	return nil
}

func (r *MemoryUserRepo) UpdateFields(_ context.Context, id string, fields map[string]any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok || u.DeletedAt.Valid {
		return domain.ErrNotFound
	}
	if v, ok := fields["login"].(string); ok {
		if r.takenLocked("login", v, id) {
			return domain.ErrDuplicateLogin
		}
		u.Login = v
	}
	if v, ok := fields["email"].(string); ok {
		if r.takenLocked("email", v, id) {
			return domain.ErrDuplicateEmail
		}
		u.Email = v
	}
	if v, ok := fields["firstname"].(string); ok {
		u.Firstname = v
	}
	if v, ok := fields["lastname"].(string); ok {
		u.Lastname = v
	}
	if v, ok := fields["password_hash"].(string); ok {
		u.PasswordHash = v
	}
	u.UpdatedAt = time.Now()
	r.users[id] = u
	return nil
}

func (r *MemoryUserRepo) SoftDelete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok || u.DeletedAt.Valid {
		return domain.ErrNotFound
	}
	u.DeletedAt = gorm.DeletedAt{Time: time.Now(), Valid: true}
	r.users[id] = u
	return nil
}

// Raw returns the stored row regardless of deleted state. Test helper.
func (r *MemoryUserRepo) Raw(id string) (domain.User, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[id]
	return u, ok
}

// MemoryLoginLogRepo is the map-backed LoginLogRepository counterpart.
type MemoryLoginLogRepo struct {
	mu   sync.RWMutex
	logs []domain.LoginLog
}

func NewMemoryLoginLogRepo() *MemoryLoginLogRepo { return &MemoryLoginLogRepo{} }

func (r *MemoryLoginLogRepo) Append(_ context.Context, userID, ip string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logs = append(r.logs, domain.LoginLog{
		ID:        utils.NewID(),
		UserID:    userID,
		IPAddress: ip,
		CreatedAt: time.Now(),
	})
	return nil
}

func (r *MemoryLoginLogRepo) RecentByUser(_ context.Context, userID string, limit int) ([]domain.LoginLog, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []domain.LoginLog
	for i := len(r.logs) - 1; i >= 0 && len(out) < limit; i-- {
		if r.logs[i].UserID == userID {
			out = append(out, r.logs[i])
		}
	}
	return out, nil
}

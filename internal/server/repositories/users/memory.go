package users

import (
	"context"
	"sync"
	"time"

	"github.com/BakeNecko/sidus-heroes/internal/common"
	"github.com/BakeNecko/sidus-heroes/internal/server/models"
)

// MemoryRepository is a process-local Repository with the same uniqueness
// and not-found semantics as the Postgres one. It backs tests and local
// tooling.
type MemoryRepository struct {
	mu     sync.RWMutex
	nextID int64
	byID   map[int64]*models.User
	now    func() time.Time
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{byID: make(map[int64]*models.User), now: time.Now}
}

func (r *MemoryRepository) Create(_ context.Context, user *models.User) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.taken(0, user.UserName, user.Email) {
		return nil, common.ErrConflict
	}

	r.nextID++
	u := copyUser(user)
	u.ID = r.nextID
	u.CreatedAt = r.now()
	r.byID[u.ID] = u
	return copyUser(u), nil
}

func (r *MemoryRepository) GetByID(_ context.Context, id int64) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byID[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	return copyUser(u), nil
}

func (r *MemoryRepository) GetByUsername(_ context.Context, username string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.byID {
		if u.UserName == username {
			return copyUser(u), nil
		}
	}
	return nil, common.ErrNotFound
}

func (r *MemoryRepository) UpdateByID(_ context.Context, id int64, patch models.UserPatch) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[id]
	if !ok {
		return nil, common.ErrNotFound
	}

	name, email := u.UserName, u.Email
	if patch.UserName != nil {
		name = *patch.UserName
	}
	if patch.Email != nil {
		email = *patch.Email
	}
	if r.taken(id, name, email) {
		return nil, common.ErrConflict
	}

	u.UserName, u.Email = name, email
	return copyUser(u), nil
}

func (r *MemoryRepository) DeleteByID(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[id]; !ok {
		return common.ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

// Len is the number of stored users.
func (r *MemoryRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byID)
}

// taken reports whether another user than except owns name or email.
func (r *MemoryRepository) taken(except int64, name, email string) bool {
	for id, u := range r.byID {
		if id == except {
			continue
		}
		if u.UserName == name || u.Email == email {
			return true
		}
	}
	return false
}

func copyUser(u *models.User) *models.User {
	c := *u
	c.PasswordHash = append([]byte(nil), u.PasswordHash...)
	return &c
}

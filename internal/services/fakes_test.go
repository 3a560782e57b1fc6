package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"client_manager_backend/internal/models"
	"client_manager_backend/internal/repositories"

	"github.com/google/uuid"
)

// memClientRepo is an in-memory ClientRepository. Every method holds the lock for its
// whole body, so IncrementField behaves like a single UPDATE statement.
type memClientRepo struct {
	mu      sync.Mutex
	rows    map[string]*models.Client
	clock   time.Time
	listErr error
	lists   int

	// beforeIncrement runs inside IncrementField before the row is looked up.
	beforeIncrement func(id string)
	// afterWrite runs once IncrementField or Save has released the lock.
	afterWrite func(id string)
	// listTaken runs after ListActive has copied its rows and released the lock.
	listTaken func(call int)
}

func newMemClientRepo() *memClientRepo {
	return &memClientRepo{
		rows:  map[string]*models.Client{},
		clock: time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC),
	}
}

// tick advances the fake clock; callers hold mu.
func (r *memClientRepo) tick() time.Time {
	r.clock = r.clock.Add(time.Second)
	return r.clock
}

func (r *memClientRepo) FindByID(_ context.Context, id string, includeDeleted bool) (*models.Client, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[id]
	if !ok || (row.DeletedAt != nil && !includeDeleted) {
		return nil, repositories.ErrNotFound
	}
	c := *row
	return &c, nil
}

func (r *memClientRepo) FindByEmail(_ context.Context, email string, includeDeleted bool) (*models.Client, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, row := range r.rows {
		if row.Email == email && (includeDeleted || row.DeletedAt == nil) {
			c := *row
			return &c, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *memClientRepo) Insert(_ context.Context, _ repositories.SQLExecutor, client *models.Client) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, row := range r.rows {
		if row.Email == client.Email {
			return repositories.ErrDuplicateKey
		}
	}
	now := r.tick()
	client.ID = uuid.NewString()
	client.AccessCount = 0
	client.CreatedAt = now
	client.UpdatedAt = now
	client.DeletedAt = nil
	c := *client
	r.rows[c.ID] = &c
	return nil
}

func (r *memClientRepo) Save(_ context.Context, _ repositories.SQLExecutor, client *models.Client) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[client.ID]
	if !ok || row.DeletedAt != nil {
		return repositories.ErrNotFound
	}
	for id, other := range r.rows {
		if id != client.ID && other.Email == client.Email {
			return repositories.ErrDuplicateKey
		}
	}
	row.Name, row.Email, row.Phone = client.Name, client.Email, client.Phone
	row.UpdatedAt = r.tick()
	*client = *row
	r.runAfterWrite(client.ID)
	return nil
}

// runAfterWrite drops the lock around the hook so it can call back into the repo;
// callers hold mu and have deferred its release.
func (r *memClientRepo) runAfterWrite(id string) {
	if r.afterWrite == nil {
		return
	}
	r.mu.Unlock()
	defer r.mu.Lock()
	r.afterWrite(id)
}

func (r *memClientRepo) IncrementField(_ context.Context, _ repositories.SQLExecutor, id, field string, delta int64, touchUpdatedAt bool) (*models.Client, error) {
	if r.beforeIncrement != nil {
		r.beforeIncrement(id)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if field != repositories.FieldAccessCount {
		return nil, repositories.ErrInvalidArgument
	}
	row, ok := r.rows[id]
	if !ok || row.DeletedAt != nil {
		return nil, repositories.ErrNotFound
	}
	row.AccessCount += delta
	if touchUpdatedAt {
		row.UpdatedAt = r.tick()
	}
	c := *row
	r.runAfterWrite(id)
	return &c, nil
}

func (r *memClientRepo) SoftDelete(_ context.Context, _ repositories.SQLExecutor, id string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[id]
	if !ok || row.DeletedAt != nil {
		return 0, nil
	}
	now := r.tick()
	row.DeletedAt = &now
	return 1, nil
}

func (r *memClientRepo) ListActive(_ context.Context, orderBy repositories.SortField, direction repositories.SortDirection) ([]models.Client, error) {
	out, call, err := r.snapshotActive(orderBy, direction)
	if err != nil {
		return nil, err
	}
	if r.listTaken != nil {
		r.listTaken(call)
	}
	return out, nil
}

func (r *memClientRepo) snapshotActive(orderBy repositories.SortField, direction repositories.SortDirection) ([]models.Client, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lists++
	if r.listErr != nil {
		return nil, r.lists, r.listErr
	}
	if orderBy != repositories.SortByCreatedAt {
		return nil, r.lists, repositories.ErrInvalidArgument
	}
	out := []models.Client{}
	for _, row := range r.rows {
		if row.DeletedAt == nil {
			out = append(out, *row)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if direction == repositories.SortDesc {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, r.lists, nil
}

// accessCount reads the stored counter, bypassing the soft-delete filter.
func (r *memClientRepo) accessCount(id string) int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rows[id].AccessCount
}

type memUserRepo struct {
	mu    sync.Mutex
	users map[string]*models.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: map[string]*models.User{}}
}

func (r *memUserRepo) CreateUser(_ context.Context, _ repositories.SQLExecutor, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == user.Email {
			return repositories.ErrDuplicateKey
		}
	}
	user.ID = uuid.NewString()
	user.CreatedAt = time.Now().UTC()
	user.UpdatedAt = user.CreatedAt
	u := *user
	r.users[u.ID] = &u
	return nil
}

func (r *memUserRepo) FindUserByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			c := *u
			return &c, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *memUserRepo) FindUserByID(_ context.Context, userID string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	c := *u
	return &c, nil
}

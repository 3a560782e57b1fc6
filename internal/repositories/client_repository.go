package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"client_manager_backend/internal/models"

	"github.com/google/uuid"
)

// Columns accepted by IncrementField. Anything else is rejected before SQL is built.
const FieldAccessCount = "access_count"

// SortField is a column ListActive may order by.
type SortField string

const (
	SortByCreatedAt SortField = "created_at"
	SortByUpdatedAt SortField = "updated_at"
	SortByName      SortField = "name"
	SortByEmail     SortField = "email"
)

// SortDirection is ASC or DESC.
type SortDirection string

const (
	SortAsc  SortDirection = "ASC"
	SortDesc SortDirection = "DESC"
)

// ErrInvalidArgument is returned for field names or sort options outside the whitelist.
var ErrInvalidArgument = errors.New("invalid repository argument")

var incrementableFields = map[string]bool{
	FieldAccessCount: true,
}

var sortableFields = map[SortField]bool{
	SortByCreatedAt: true,
	SortByUpdatedAt: true,
	SortByName:      true,
	SortByEmail:     true,
}

// ClientRepository defines the record store operations for clients.
// Email arguments are expected to be normalized by the caller.
type ClientRepository interface {
	FindByID(ctx context.Context, id string, includeDeleted bool) (*models.Client, error)
	FindByEmail(ctx context.Context, email string, includeDeleted bool) (*models.Client, error)
	Insert(ctx context.Context, executor SQLExecutor, client *models.Client) error
	Save(ctx context.Context, executor SQLExecutor, client *models.Client) error
	IncrementField(ctx context.Context, executor SQLExecutor, id, field string, delta int64, touchUpdatedAt bool) (*models.Client, error)
	SoftDelete(ctx context.Context, executor SQLExecutor, id string) (int64, error)
	ListActive(ctx context.Context, orderBy SortField, direction SortDirection) ([]models.Client, error)
}

type clientRepository struct {
	db  *sql.DB
	now func() time.Time
}

// NewClientRepository creates a new instance of ClientRepository.
func NewClientRepository(db *sql.DB) ClientRepository {
	return &clientRepository{db: db, now: func() time.Time { return time.Now().UTC() }}
}

const clientColumns = `id, name, email, phone, access_count, created_at, updated_at, deleted_at`

func scanClient(row scanner) (*models.Client, error) {
	client := &models.Client{}
	var deletedAt sql.NullTime
	if err := row.Scan(
		&client.ID, &client.Name, &client.Email, &client.Phone,
		&client.AccessCount, &client.CreatedAt, &client.UpdatedAt, &deletedAt,
	); err != nil {
		return nil, err
	}
	if deletedAt.Valid {
		t := deletedAt.Time
		client.DeletedAt = &t
	}
	return client, nil
}

// FindByID retrieves a client by ID. Soft-deleted rows are only returned when includeDeleted is set.
func (r *clientRepository) FindByID(ctx context.Context, id string, includeDeleted bool) (*models.Client, error) {
	query := `SELECT ` + clientColumns + ` FROM clients WHERE id = $1`
	if !includeDeleted {
		query += ` AND deleted_at IS NULL`
	}

	client, err := scanClient(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting client by ID %s: %v", ErrDatabaseError, id, err)
	}
	return client, nil
}

// FindByEmail retrieves a client by normalized email.
func (r *clientRepository) FindByEmail(ctx context.Context, email string, includeDeleted bool) (*models.Client, error) {
	query := `SELECT ` + clientColumns + ` FROM clients WHERE lower(email) = $1`
	if !includeDeleted {
		query += ` AND deleted_at IS NULL`
	}
	query += ` LIMIT 1`

	client, err := scanClient(r.db.QueryRowContext(ctx, query, email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting client by email: %v", ErrDatabaseError, err)
	}
	return client, nil
}

// Insert stores a new client, assigning ID, timestamps and a zero access count.
func (r *clientRepository) Insert(ctx context.Context, executor SQLExecutor, client *models.Client) error {
	query := `INSERT INTO clients (id, name, email, phone, access_count, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, 0, $5, $5)`

	now := r.now()
	id := uuid.NewString()
	if _, err := executor.ExecContext(ctx, query, id, client.Name, client.Email, client.Phone, now); err != nil {
		return wrapWriteError(err, "creating client")
	}

	client.ID = id
	client.AccessCount = 0
	client.CreatedAt = now
	client.UpdatedAt = now
	client.DeletedAt = nil
	return nil
}

// Save writes the mutable fields of an active client and bumps updated_at.
// client is overwritten with the row as the same statement left it.
// access_count is never written here; it only moves through IncrementField.
func (r *clientRepository) Save(ctx context.Context, executor SQLExecutor, client *models.Client) error {
	query := `UPDATE clients SET name = $1, email = $2, phone = $3, updated_at = $4
	          WHERE id = $5 AND deleted_at IS NULL
	          RETURNING ` + clientColumns

	saved, err := scanClient(executor.QueryRowContext(ctx, query, client.Name, client.Email, client.Phone, r.now(), client.ID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return wrapWriteError(err, "updating client ID "+client.ID)
	}
	*client = *saved
	return nil
}

// IncrementField adds delta to a whitelisted counter column in a single statement
// and returns the row as that statement left it.
// The arithmetic happens in the database, so concurrent callers never lose an update.
func (r *clientRepository) IncrementField(ctx context.Context, executor SQLExecutor, id, field string, delta int64, touchUpdatedAt bool) (*models.Client, error) {
	if !incrementableFields[field] {
		return nil, fmt.Errorf("%w: field %q cannot be incremented", ErrInvalidArgument, field)
	}
	if delta < 0 {
		return nil, fmt.Errorf("%w: negative delta %d for %q", ErrInvalidArgument, delta, field)
	}

	query := fmt.Sprintf(`UPDATE clients SET %[1]s = %[1]s + $1`, field)
	args := []interface{}{delta}
	if touchUpdatedAt {
		query += `, updated_at = $2 WHERE id = $3 AND deleted_at IS NULL`
		args = append(args, r.now(), id)
	} else {
		query += ` WHERE id = $2 AND deleted_at IS NULL`
		args = append(args, id)
	}
	query += ` RETURNING ` + clientColumns

	client, err := scanClient(executor.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: incrementing %s for client ID %s: %v", ErrDatabaseError, field, id, err)
	}
	return client, nil
}

// SoftDelete stamps deleted_at on an active client and returns the number of rows affected (0 or 1).
func (r *clientRepository) SoftDelete(ctx context.Context, executor SQLExecutor, id string) (int64, error) {
	query := `UPDATE clients SET deleted_at = $1 WHERE id = $2 AND deleted_at IS NULL`
	result, err := executor.ExecContext(ctx, query, r.now(), id)
	if err != nil {
		return 0, fmt.Errorf("%w: deleting client ID %s: %v", ErrDatabaseError, id, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: getting rows affected for deleting client ID %s: %v", ErrDatabaseError, id, err)
	}
	return rowsAffected, nil
}

// ListActive returns every non-deleted client in the requested order.
func (r *clientRepository) ListActive(ctx context.Context, orderBy SortField, direction SortDirection) ([]models.Client, error) {
	if !sortableFields[orderBy] {
		return nil, fmt.Errorf("%w: cannot order by %q", ErrInvalidArgument, orderBy)
	}
	if direction != SortAsc && direction != SortDesc {
		return nil, fmt.Errorf("%w: unknown sort direction %q", ErrInvalidArgument, direction)
	}

	// id breaks ties so equal timestamps still list deterministically.
	query := fmt.Sprintf(`SELECT %s FROM clients WHERE deleted_at IS NULL ORDER BY %s %s, id %s`,
		clientColumns, orderBy, direction, direction)

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: querying clients: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	clients := []models.Client{}
	for rows.Next() {
		client, err := scanClient(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scanning client: %v", ErrDatabaseError, err)
		}
		clients = append(clients, *client)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating client rows: %v", ErrDatabaseError, err)
	}
	return clients, nil
}

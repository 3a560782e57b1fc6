package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"client_manager_backend/internal/metrics"
	"client_manager_backend/internal/models"
	"client_manager_backend/internal/repositories"
	"client_manager_backend/pkg/utils"

	"github.com/google/uuid"
)

// --- Custom Service Errors for Client ---
var (
	ErrClientNotFound   = errors.New("client not found")
	ErrEmailExists      = errors.New("email already in use")
	ErrClientValidation = errors.New("client data validation error")
)

// --- Client DTOs ---
type CreateClientRequest struct {
	Name  string `json:"name" binding:"required"`
	Email string `json:"email" binding:"required,email"`
	Phone string `json:"phone" binding:"required"`
}

// UpdateClientRequest is a partial update; nil fields keep their stored value.
type UpdateClientRequest struct {
	Name  *string `json:"name"`
	Email *string `json:"email" binding:"omitempty,email"`
	Phone *string `json:"phone"`
}

// --- ClientService Interface ---
type ClientService interface {
	CreateClient(ctx context.Context, req CreateClientRequest) (*models.Client, error)
	ListClients(ctx context.Context) ([]models.Client, error)
	ViewClient(ctx context.Context, clientID string) (*models.Client, error)
	UpdateClient(ctx context.Context, clientID string, req UpdateClientRequest) (*models.Client, error)
	RemoveClient(ctx context.Context, clientID string) error
}

// ClientServiceOptions tunes behaviour that differs between deployments.
type ClientServiceOptions struct {
	// ViewTouchesUpdatedAt makes ViewClient bump updated_at along with access_count.
	ViewTouchesUpdatedAt bool
}

// --- clientService Implementation ---
type clientService struct {
	clientRepo repositories.ClientRepository
	db         *sql.DB
	opts       ClientServiceOptions
}

// NewClientService creates a new instance of ClientService.
func NewClientService(repo repositories.ClientRepository, db *sql.DB, opts ClientServiceOptions) ClientService {
	return &clientService{
		clientRepo: repo,
		db:         db,
		opts:       opts,
	}
}

func validateCreate(req CreateClientRequest) error {
	if utils.IsEmpty(req.Name) {
		return fmt.Errorf("%w: name is required", ErrClientValidation)
	}
	if utils.IsEmpty(req.Email) {
		return fmt.Errorf("%w: email is required", ErrClientValidation)
	}
	if !utils.IsValidEmail(req.Email) {
		return fmt.Errorf("%w: email format is invalid", ErrClientValidation)
	}
	if utils.IsEmpty(req.Phone) {
		return fmt.Errorf("%w: phone is required", ErrClientValidation)
	}
	return nil
}

func validateUpdate(req UpdateClientRequest) error {
	if req.Name != nil && utils.IsEmpty(*req.Name) {
		return fmt.Errorf("%w: name cannot be empty if provided", ErrClientValidation)
	}
	if req.Email != nil && !utils.IsValidEmail(*req.Email) {
		return fmt.Errorf("%w: email format is invalid", ErrClientValidation)
	}
	if req.Phone != nil && utils.IsEmpty(*req.Phone) {
		return fmt.Errorf("%w: phone cannot be empty if provided", ErrClientValidation)
	}
	return nil
}

// validID rejects ids that could never have been issued, before they reach the store.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeSuccess
	case errors.Is(err, ErrClientNotFound):
		return metrics.OutcomeNotFound
	case errors.Is(err, ErrEmailExists):
		return metrics.OutcomeConflict
	case errors.Is(err, ErrClientValidation):
		return metrics.OutcomeValidation
	default:
		return metrics.OutcomeError
	}
}

// ensureEmailAvailable fails with ErrEmailExists if any client other than ownerID,
// active or soft-deleted, already holds the normalized email.
func (s *clientService) ensureEmailAvailable(ctx context.Context, email, ownerID string) error {
	existing, err := s.clientRepo.FindByEmail(ctx, email, true)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("failed to check email uniqueness: %w", err)
	}
	if existing.ID != ownerID {
		return ErrEmailExists
	}
	return nil
}

func (s *clientService) CreateClient(ctx context.Context, req CreateClientRequest) (client *models.Client, err error) {
	defer func() { metrics.RecordClientOperation("create", outcomeOf(err)) }()

	if err := validateCreate(req); err != nil {
		return nil, err
	}

	email := utils.NormalizeEmail(req.Email)
	if err := s.ensureEmailAvailable(ctx, email, ""); err != nil {
		return nil, err
	}

	client = &models.Client{
		Name:  req.Name,
		Email: email,
		Phone: req.Phone,
	}
	if err := s.clientRepo.Insert(ctx, s.db, client); err != nil {
		// The unique index is the final word when a concurrent create slips past the pre-check.
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, ErrEmailExists
		}
		return nil, fmt.Errorf("failed to create client in repository: %w", err)
	}
	return client, nil
}

func (s *clientService) ListClients(ctx context.Context) (clients []models.Client, err error) {
	defer func() { metrics.RecordClientOperation("list", outcomeOf(err)) }()

	clients, err = s.clientRepo.ListActive(ctx, repositories.SortByCreatedAt, repositories.SortDesc)
	if err != nil {
		return nil, fmt.Errorf("failed to list clients: %w", err)
	}
	return clients, nil
}

func (s *clientService) ViewClient(ctx context.Context, clientID string) (client *models.Client, err error) {
	defer func() { metrics.RecordClientOperation("view", outcomeOf(err)) }()

	if !validID(clientID) {
		return nil, ErrClientNotFound
	}
	if _, err := s.findActive(ctx, clientID); err != nil {
		return nil, err
	}

	// The increment statement returns the row it wrote, so the result is exactly this view's count.
	client, err = s.clientRepo.IncrementField(ctx, s.db, clientID, repositories.FieldAccessCount, 1, s.opts.ViewTouchesUpdatedAt)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrClientNotFound // removed between lookup and increment
		}
		return nil, fmt.Errorf("failed to increment access count: %w", err)
	}
	return client, nil
}

func (s *clientService) UpdateClient(ctx context.Context, clientID string, req UpdateClientRequest) (client *models.Client, err error) {
	defer func() { metrics.RecordClientOperation("update", outcomeOf(err)) }()

	if !validID(clientID) {
		return nil, ErrClientNotFound
	}
	if err := validateUpdate(req); err != nil {
		return nil, err
	}

	client, err = s.findActive(ctx, clientID)
	if err != nil {
		return nil, err
	}

	if req.Email != nil {
		email := utils.NormalizeEmail(*req.Email)
		if email != utils.NormalizeEmail(client.Email) {
			if err := s.ensureEmailAvailable(ctx, email, client.ID); err != nil {
				return nil, err
			}
		}
		client.Email = email
	}
	if req.Name != nil {
		client.Name = *req.Name
	}
	if req.Phone != nil {
		client.Phone = *req.Phone
	}

	if err := s.clientRepo.Save(ctx, s.db, client); err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, ErrEmailExists
		}
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrClientNotFound
		}
		return nil, fmt.Errorf("failed to update client in repository: %w", err)
	}
	return client, nil
}

func (s *clientService) RemoveClient(ctx context.Context, clientID string) (err error) {
	defer func() { metrics.RecordClientOperation("remove", outcomeOf(err)) }()

	if !validID(clientID) {
		return ErrClientNotFound
	}
	affected, err := s.clientRepo.SoftDelete(ctx, s.db, clientID)
	if err != nil {
		return fmt.Errorf("failed to delete client: %w", err)
	}
	if affected == 0 {
		return ErrClientNotFound
	}
	utils.LogInfo("Client soft-deleted", map[string]interface{}{"client_id": clientID})
	return nil
}

func (s *clientService) findActive(ctx context.Context, clientID string) (*models.Client, error) {
	client, err := s.clientRepo.FindByID(ctx, clientID, false)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrClientNotFound
		}
		return nil, fmt.Errorf("failed to get client by ID: %w", err)
	}
	return client, nil
}

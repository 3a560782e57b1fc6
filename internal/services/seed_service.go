package services

import (
	"context"
	"errors"

	"client_manager_backend/pkg/utils"
)

// SeedClients are the sample records created on a fresh database.
var SeedClients = []CreateClientRequest{
	{Name: "Maria Silva", Email: "maria.silva@example.com", Phone: "+55 11 98765-4321"},
	{Name: "João Santos", Email: "joao.santos@example.com", Phone: "+55 11 97654-3210"},
	{Name: "Ana Costa", Email: "ana.costa@example.com", Phone: "+55 11 96543-2109"},
}

// SeedResult summarises one seeding run.
type SeedResult struct {
	AdminCreated   bool
	ClientsCreated int
	ClientsSkipped int
	Failures       int
}

// SeedService populates an empty database with an admin user and sample clients.
type SeedService struct {
	authService   AuthService
	clientService ClientService
}

// NewSeedService creates a new SeedService.
func NewSeedService(as AuthService, cs ClientService) *SeedService {
	return &SeedService{authService: as, clientService: cs}
}

// Seed is idempotent. Clients whose email is already reserved, even by a
// soft-deleted record, are skipped. Individual failures are logged and counted.
func (s *SeedService) Seed(ctx context.Context, adminEmail, adminPassword string) SeedResult {
	var result SeedResult

	created, err := s.authService.EnsureUser(ctx, adminEmail, adminPassword)
	if err != nil {
		utils.LogError(err, "Seed: failed to create admin user")
		result.Failures++
	} else {
		result.AdminCreated = created
		utils.LogInfo("Seed: admin user ready", map[string]interface{}{"email": adminEmail, "created": created})
	}

	for _, req := range SeedClients {
		_, err := s.clientService.CreateClient(ctx, req)
		switch {
		case err == nil:
			result.ClientsCreated++
		case errors.Is(err, ErrEmailExists):
			result.ClientsSkipped++
		default:
			utils.LogError(err, "Seed: failed to create client "+req.Email)
			result.Failures++
		}
	}

	utils.LogInfo("Database seed finished", map[string]interface{}{
		"clients_created": result.ClientsCreated,
		"clients_skipped": result.ClientsSkipped,
		"failures":        result.Failures,
	})
	return result
}

package handlers

import (
	"errors"
	"net/http"

	"client_manager_backend/internal/services"
	"client_manager_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// ClientHandler holds the client service.
type ClientHandler struct {
	clientService services.ClientService
}

// NewClientHandler creates a new ClientHandler.
func NewClientHandler(cs services.ClientService) *ClientHandler {
	return &ClientHandler{clientService: cs}
}

// respondClientError maps lifecycle errors onto API errors.
func respondClientError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, services.ErrClientNotFound):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Client not found.", err.Error()))
	case errors.Is(err, services.ErrEmailExists):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, "Email already in use.", err.Error()))
	case errors.Is(err, services.ErrClientValidation):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Validation failed: "+err.Error(), err.Error()))
	default:
		utils.LogError(err, fallback)
		utils.RespondInternalError(c, fallback)
	}
}

// CreateClient handles the creation of a new client.
func (h *ClientHandler) CreateClient(c *gin.Context) {
	var req services.CreateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogDebug("CreateClient: invalid payload", map[string]interface{}{"error": err.Error()})
		utils.RespondValidationFailed(c, err.Error())
		return
	}

	client, err := h.clientService.CreateClient(c.Request.Context(), req)
	if err != nil {
		respondClientError(c, err, "Failed to create client.")
		return
	}
	c.JSON(http.StatusCreated, client)
}

// ListClients returns every active client, newest first.
func (h *ClientHandler) ListClients(c *gin.Context) {
	clients, err := h.clientService.ListClients(c.Request.Context())
	if err != nil {
		respondClientError(c, err, "Failed to fetch clients.")
		return
	}
	c.JSON(http.StatusOK, clients)
}

// ViewClient returns one client and counts the access.
func (h *ClientHandler) ViewClient(c *gin.Context) {
	client, err := h.clientService.ViewClient(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondClientError(c, err, "Failed to fetch client.")
		return
	}
	c.JSON(http.StatusOK, client)
}

// UpdateClient handles a partial update of a client.
func (h *ClientHandler) UpdateClient(c *gin.Context) {
	var req services.UpdateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogDebug("UpdateClient: invalid payload", map[string]interface{}{"error": err.Error(), "client_id": c.Param("id")})
		utils.RespondValidationFailed(c, err.Error())
		return
	}

	client, err := h.clientService.UpdateClient(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondClientError(c, err, "Failed to update client.")
		return
	}
	c.JSON(http.StatusOK, client)
}

// RemoveClient soft-deletes a client.
func (h *ClientHandler) RemoveClient(c *gin.Context) {
	if err := h.clientService.RemoveClient(c.Request.Context(), c.Param("id")); err != nil {
		respondClientError(c, err, "Failed to delete client.")
		return
	}
	c.Status(http.StatusNoContent)
}

package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/splittab/split_tab_app/internal/apperrors"
	portssvc "github.com/splittab/split_tab_app/internal/core/ports/services"
	"github.com/splittab/split_tab_app/internal/dto"
	"github.com/splittab/split_tab_app/internal/middleware"
)

// invitationHandler handles HTTP requests on the caller's own invitations.
type invitationHandler struct {
	invitationService portssvc.InvitationSvcFacade
}

// newInvitationHandler creates a new invitationHandler.
func newInvitationHandler(is portssvc.InvitationSvcFacade) *invitationHandler {
	return &invitationHandler{
		invitationService: is,
	}
}

// registerInvitationRoutes registers the user-facing invitation routes.
func registerInvitationRoutes(rg *gin.RouterGroup, invitationService portssvc.InvitationSvcFacade) {
	h := newInvitationHandler(invitationService)

	invitations := rg.Group("/invitations")
	{
		invitations.GET("", h.listPendingInvitations)
		invitations.POST("/:account_id/accept", h.acceptInvitation)
		invitations.POST("/:account_id/decline", h.declineInvitation)
		invitations.POST("/:account_id/cancel", h.cancelInvitation)
	}
}

// listPendingInvitations godoc
// @Summary List pending invitations for current user
// @Description Retrieves the authenticated user's pending group invitations.
// @Tags invitations
// @Produce  json
// @Success 200 {object} dto.ListAccountsResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to list invitations"
// @Security BearerAuth
// @Router /invitations [get]
func (h *invitationHandler) listPendingInvitations(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	invitations, err := h.invitationService.ListPendingInvitations(c.Request.Context(), userID)
	if err != nil {
		logger.Error("Failed to list pending invitations from service", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list invitations"})
		return
	}

	c.JSON(http.StatusOK, dto.ToListAccountsResponse(invitations))
}

// acceptInvitation godoc
// @Summary Accept an invitation
// @Description Activates the caller's pending account. If the caller already holds an active account in the group, the invitation is shelved instead and a conflict is returned.
// @Tags invitations
// @Produce  json
// @Param   account_id path string true "Account ID"
// @Success 200 {object} dto.AccountResponse
// @Failure 403 {object} map[string]string "Not the invitee"
// @Failure 404 {object} map[string]string "Invitation not found"
// @Failure 409 {object} map[string]string "Invitation no longer pending or already a member"
// @Security BearerAuth
// @Router /invitations/{account_id}/accept [post]
func (h *invitationHandler) acceptInvitation(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	accountID := c.Param("account_id")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	logger = logger.With(slog.String("account_id", accountID))

	account, err := h.invitationService.AcceptInvitation(c.Request.Context(), accountID, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Invitation not found"})
			return
		}
		if errors.Is(err, apperrors.ErrForbidden) {
			c.JSON(http.StatusForbidden, gin.H{"error": "Only the invitee can accept this invitation"})
			return
		}
		if errors.Is(err, apperrors.ErrConflict) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		logger.Error("Failed to accept invitation in service", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to accept invitation"})
		return
	}

	logger.Info("Invitation accepted successfully", slog.String("group_id", account.GroupID))
	c.JSON(http.StatusOK, dto.ToAccountResponse(account))
}

// declineInvitation godoc
// @Summary Decline an invitation
// @Description Marks the caller's pending account as declined.
// @Tags invitations
// @Produce  json
// @Param   account_id path string true "Account ID"
// @Success 204 "No Content"
// @Failure 403 {object} map[string]string "Not the invitee"
// @Failure 404 {object} map[string]string "Invitation not found"
// @Failure 409 {object} map[string]string "Invitation no longer pending"
// @Security BearerAuth
// @Router /invitations/{account_id}/decline [post]
func (h *invitationHandler) declineInvitation(c *gin.Context) {
	h.transition(c, "decline", h.invitationService.DeclineInvitation)
}

// cancelInvitation godoc
// @Summary Cancel an invitation
// @Description Cancels a pending invitation. Only the inviter may cancel.
// @Tags invitations
// @Produce  json
// @Param   account_id path string true "Account ID"
// @Success 204 "No Content"
// @Failure 403 {object} map[string]string "Not the inviter"
// @Failure 404 {object} map[string]string "Invitation not found"
// @Failure 409 {object} map[string]string "Invitation no longer pending"
// @Security BearerAuth
// @Router /invitations/{account_id}/cancel [post]
func (h *invitationHandler) cancelInvitation(c *gin.Context) {
	h.transition(c, "cancel", h.invitationService.CancelInvitation)
}

// transition runs a decline/cancel style state change and maps its errors.
func (h *invitationHandler) transition(c *gin.Context, action string, fn func(ctx context.Context, accountID, requestingUserID string) error) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	accountID := c.Param("account_id")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	if err := fn(c.Request.Context(), accountID, userID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Invitation not found"})
			return
		}
		if errors.Is(err, apperrors.ErrForbidden) {
			c.JSON(http.StatusForbidden, gin.H{"error": "Not permitted to " + action + " this invitation"})
			return
		}
		if errors.Is(err, apperrors.ErrConflict) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		logger.Error("Failed to "+action+" invitation in service", slog.String("error", err.Error()), slog.String("account_id", accountID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to " + action + " invitation"})
		return
	}

	c.Status(http.StatusNoContent)
}

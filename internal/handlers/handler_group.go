package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/splittab/split_tab_app/internal/apperrors"
	portssvc "github.com/splittab/split_tab_app/internal/core/ports/services"
	"github.com/splittab/split_tab_app/internal/dto"
	"github.com/splittab/split_tab_app/internal/middleware"
)

// groupHandler handles HTTP requests related to groups and their membership.
type groupHandler struct {
	groupService      portssvc.GroupSvcFacade
	invitationService portssvc.InvitationSvcFacade
}

// newGroupHandler creates a new groupHandler.
func newGroupHandler(gs portssvc.GroupSvcFacade, is portssvc.InvitationSvcFacade) *groupHandler {
	return &groupHandler{
		groupService:      gs,
		invitationService: is,
	}
}

// registerGroupRoutes registers routes related to groups and their members.
// It also registers EXPENSE and TASK routes nested under a specific group.
func registerGroupRoutes(rg *gin.RouterGroup, groupService portssvc.GroupSvcFacade, invitationService portssvc.InvitationSvcFacade, expenseService portssvc.ExpenseSvcFacade, taskService portssvc.TaskSvcFacade) {
	h := newGroupHandler(groupService, invitationService)

	// Routes for managing groups themselves (e.g., creating, listing user's groups)
	groupsTopLevel := rg.Group("/groups")
	{
		groupsTopLevel.POST("", h.createGroup)
		groupsTopLevel.GET("", h.listUserGroups) // List groups the calling user belongs to
	}

	// Routes specific to a single group (identified by group_id)
	groupSpecific := rg.Group("/groups/:group_id")
	{
		groupSpecific.GET("", h.getGroup)
		groupSpecific.PUT("", h.updateGroup)
		groupSpecific.POST("/exit", h.exitGroup)

		// Manage members within a group
		groupMembers := groupSpecific.Group("/members")
		{
			groupMembers.GET("", h.listGroupMembers)
			groupMembers.DELETE("/:account_id", h.removeMember)
		}

		// Invitations scoped to this group
		groupInvitations := groupSpecific.Group("/invitations")
		{
			groupInvitations.POST("", h.inviteUser)
			groupInvitations.GET("", h.listGroupInvitations)
		}

		// -- NESTED EXPENSE ROUTES --
		registerExpenseRoutes(groupSpecific, expenseService)

		// -- NESTED TASK ROUTES --
		registerTaskRoutes(groupSpecific, taskService)
	}
}

// createGroup godoc
// @Summary Create a new group
// @Description Creates a new group and assigns the creator as admin with an active account.
// @Tags groups
// @Accept  json
// @Produce  json
// @Param   group body dto.CreateGroupRequest true "Group details"
// @Success 201 {object} dto.GroupResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to create group"
// @Security BearerAuth
// @Router /groups [post]
func (h *groupHandler) createGroup(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateGroup", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": bindErrorMessage(err)})
		return
	}

	creatorUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("Creator user ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	logger = logger.With(slog.String("creator_user_id", creatorUserID))
	logger.Info("Received request to create group", slog.String("group_name", req.Name))

	newGroup, err := h.groupService.CreateGroup(c.Request.Context(), req, creatorUserID)
	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		logger.Error("Failed to create group in service", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create group"})
		return
	}

	logger.Info("Group created successfully", slog.String("group_id", newGroup.GroupID))
	c.JSON(http.StatusCreated, dto.ToGroupResponse(newGroup))
}

// listUserGroups godoc
// @Summary List groups for current user
// @Description Retrieves a list of groups the authenticated user is an active member of.
// @Tags groups
// @Produce  json
// @Success 200 {object} dto.ListGroupsResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to list groups"
// @Security BearerAuth
// @Router /groups [get]
func (h *groupHandler) listUserGroups(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	groups, err := h.groupService.ListUserGroups(c.Request.Context(), userID)
	if err != nil {
		logger.Error("Failed to list groups from service", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list groups"})
		return
	}

	c.JSON(http.StatusOK, dto.ToListGroupsResponse(groups))
}

// getGroup godoc
// @Summary Get group by ID
// @Description Retrieves a group's details; the caller must be an active member.
// @Tags groups
// @Produce  json
// @Param   group_id path string true "Group ID"
// @Success 200 {object} dto.GroupResponse
// @Failure 403 {object} map[string]string "Not a group member"
// @Failure 404 {object} map[string]string "Group not found"
// @Security BearerAuth
// @Router /groups/{group_id} [get]
func (h *groupHandler) getGroup(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	groupID := c.Param("group_id")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	group, err := h.groupService.GetGroupByID(c.Request.Context(), groupID, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Group not found"})
			return
		}
		if errors.Is(err, apperrors.ErrForbidden) {
			c.JSON(http.StatusForbidden, gin.H{"error": "Not a member of this group"})
			return
		}
		logger.Error("Failed to get group from service", slog.String("error", err.Error()), slog.String("group_id", groupID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get group"})
		return
	}

	c.JSON(http.StatusOK, dto.ToGroupResponse(group))
}

// updateGroup godoc
// @Summary Update group
// @Description Updates group info and permission flags. Info edits are subject to the edit-info policy; flag changes are admin only.
// @Tags groups
// @Accept  json
// @Produce  json
// @Param   group_id path string true "Group ID"
// @Param   group body dto.UpdateGroupRequest true "Fields to update"
// @Success 200 {object} dto.GroupResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 403 {object} map[string]string "Not permitted"
// @Failure 404 {object} map[string]string "Group not found"
// @Security BearerAuth
// @Router /groups/{group_id} [put]
func (h *groupHandler) updateGroup(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	groupID := c.Param("group_id")

	var req dto.UpdateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for UpdateGroup", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": bindErrorMessage(err)})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	group, err := h.groupService.UpdateGroup(c.Request.Context(), groupID, req, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Group not found"})
			return
		}
		if errors.Is(err, apperrors.ErrForbidden) {
			c.JSON(http.StatusForbidden, gin.H{"error": "Not permitted to update this group"})
			return
		}
		logger.Error("Failed to update group in service", slog.String("error", err.Error()), slog.String("group_id", groupID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update group"})
		return
	}

	c.JSON(http.StatusOK, dto.ToGroupResponse(group))
}

// listGroupMembers godoc
// @Summary List group members
// @Description Retrieves the active member accounts of a group.
// @Tags groups
// @Produce  json
// @Param   group_id path string true "Group ID"
// @Success 200 {object} dto.ListAccountsResponse
// @Failure 403 {object} map[string]string "Not a group member"
// @Failure 404 {object} map[string]string "Group not found"
// @Security BearerAuth
// @Router /groups/{group_id}/members [get]
func (h *groupHandler) listGroupMembers(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	groupID := c.Param("group_id")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	accounts, err := h.groupService.ListGroupMembers(c.Request.Context(), groupID, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Group not found"})
			return
		}
		if errors.Is(err, apperrors.ErrForbidden) {
			c.JSON(http.StatusForbidden, gin.H{"error": "Not a member of this group"})
			return
		}
		logger.Error("Failed to list group members from service", slog.String("error", err.Error()), slog.String("group_id", groupID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list group members"})
		return
	}

	c.JSON(http.StatusOK, dto.ToListAccountsResponse(accounts))
}

// inviteUser godoc
// @Summary Invite a user to a group
// @Description Creates a pending invitation (account) for the invitee, subject to the invite policy.
// @Tags groups
// @Accept  json
// @Produce  json
// @Param   group_id path string true "Group ID"
// @Param   invite body dto.InviteUserRequest true "Invitee user ID"
// @Success 201 {object} dto.AccountResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 403 {object} map[string]string "Not permitted to invite"
// @Failure 404 {object} map[string]string "Group or user not found"
// @Failure 409 {object} map[string]string "Already invited or already a member"
// @Security BearerAuth
// @Router /groups/{group_id}/invitations [post]
func (h *groupHandler) inviteUser(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	groupID := c.Param("group_id")

	var req dto.InviteUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for InviteUser", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": bindErrorMessage(err)})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	logger = logger.With(slog.String("group_id", groupID), slog.String("invitee_user_id", req.UserID))

	account, err := h.groupService.InviteUser(c.Request.Context(), groupID, req.UserID, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Group or user not found"})
			return
		}
		if errors.Is(err, apperrors.ErrForbidden) {
			c.JSON(http.StatusForbidden, gin.H{"error": "Not permitted to invite users to this group"})
			return
		}
		if errors.Is(err, apperrors.ErrDuplicate) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		logger.Error("Failed to invite user in service", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to invite user"})
		return
	}

	logger.Info("User invited successfully", slog.String("account_id", account.AccountID))
	c.JSON(http.StatusCreated, dto.ToAccountResponse(account))
}

// listGroupInvitations godoc
// @Summary List a group's pending invitations
// @Description Retrieves pending invitations for a group, subject to the see-invitations policy.
// @Tags groups
// @Produce  json
// @Param   group_id path string true "Group ID"
// @Success 200 {object} dto.ListAccountsResponse
// @Failure 403 {object} map[string]string "Not permitted"
// @Failure 404 {object} map[string]string "Group not found"
// @Security BearerAuth
// @Router /groups/{group_id}/invitations [get]
func (h *groupHandler) listGroupInvitations(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	groupID := c.Param("group_id")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	invitations, err := h.invitationService.ListGroupInvitations(c.Request.Context(), groupID, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Group not found"})
			return
		}
		if errors.Is(err, apperrors.ErrForbidden) {
			c.JSON(http.StatusForbidden, gin.H{"error": "Not permitted to see this group's invitations"})
			return
		}
		logger.Error("Failed to list group invitations from service", slog.String("error", err.Error()), slog.String("group_id", groupID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list invitations"})
		return
	}

	c.JSON(http.StatusOK, dto.ToListAccountsResponse(invitations))
}

// removeMember godoc
// @Summary Remove a member from a group
// @Description Removes an active member with a settled balance from the group. Admin only.
// @Tags groups
// @Produce  json
// @Param   group_id path string true "Group ID"
// @Param   account_id path string true "Account ID"
// @Success 204 "No Content"
// @Failure 403 {object} map[string]string "Not permitted"
// @Failure 404 {object} map[string]string "Group or account not found"
// @Failure 409 {object} map[string]string "Balance not settled or member not active"
// @Security BearerAuth
// @Router /groups/{group_id}/members/{account_id} [delete]
func (h *groupHandler) removeMember(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	groupID := c.Param("group_id")
	accountID := c.Param("account_id")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	if err := h.groupService.RemoveMember(c.Request.Context(), groupID, accountID, userID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Group or account not found"})
			return
		}
		if errors.Is(err, apperrors.ErrForbidden) {
			c.JSON(http.StatusForbidden, gin.H{"error": "Only the group admin can remove members"})
			return
		}
		if errors.Is(err, apperrors.ErrConflict) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		logger.Error("Failed to remove member in service", slog.String("error", err.Error()), slog.String("group_id", groupID), slog.String("account_id", accountID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove member"})
		return
	}

	c.Status(http.StatusNoContent)
}

// exitGroup godoc
// @Summary Exit a group
// @Description Marks the caller's own account as exited. Requires a settled balance; the admin cannot exit.
// @Tags groups
// @Produce  json
// @Param   group_id path string true "Group ID"
// @Success 204 "No Content"
// @Failure 403 {object} map[string]string "Admin cannot exit"
// @Failure 404 {object} map[string]string "Group or membership not found"
// @Failure 409 {object} map[string]string "Balance not settled"
// @Security BearerAuth
// @Router /groups/{group_id}/exit [post]
func (h *groupHandler) exitGroup(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	groupID := c.Param("group_id")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	if err := h.groupService.ExitGroup(c.Request.Context(), groupID, userID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Group or membership not found"})
			return
		}
		if errors.Is(err, apperrors.ErrForbidden) {
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
			return
		}
		if errors.Is(err, apperrors.ErrConflict) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		logger.Error("Failed to exit group in service", slog.String("error", err.Error()), slog.String("group_id", groupID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to exit group"})
		return
	}

	c.Status(http.StatusNoContent)
}

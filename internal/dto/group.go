package dto

import (
	"time"

	"github.com/splittab/split_tab_app/internal/core/domain"
)

// CreateGroupRequest defines the data needed to create a new group.
type CreateGroupRequest struct {
	Name         string `json:"name" binding:"required"`
	Description  string `json:"description"`
	CurrencyCode string `json:"currencyCode" binding:"required,iso4217"`

	CanUsersInvite         bool `json:"canUsersInvite"`
	CanUsersEditInfo       bool `json:"canUsersEditInfo"`
	CanUsersDeleteExpense  bool `json:"canUsersDeleteExpense"`
	CanUsersSeeInvitations bool `json:"canUsersSeeInvitations"`
}

// UpdateGroupRequest defines the data allowed for updating a group.
// Use pointers to distinguish between zero-value updates and fields not provided.
type UpdateGroupRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`

	CanUsersInvite         *bool `json:"canUsersInvite"`
	CanUsersEditInfo       *bool `json:"canUsersEditInfo"`
	CanUsersDeleteExpense  *bool `json:"canUsersDeleteExpense"`
	CanUsersSeeInvitations *bool `json:"canUsersSeeInvitations"`
}

// GroupResponse defines the data returned for a group.
type GroupResponse struct {
	GroupID      string `json:"groupID"`
	Name         string `json:"name"`
	Description  string `json:"description"`
	CurrencyCode string `json:"currencyCode"`
	CreatorID    string `json:"creatorID"`
	AdminID      string `json:"adminID"`

	CanUsersInvite         bool `json:"canUsersInvite"`
	CanUsersEditInfo       bool `json:"canUsersEditInfo"`
	CanUsersDeleteExpense  bool `json:"canUsersDeleteExpense"`
	CanUsersSeeInvitations bool `json:"canUsersSeeInvitations"`

	CreatedAt     time.Time `json:"createdAt"`
	CreatedBy     string    `json:"createdBy"`
	LastUpdatedAt time.Time `json:"lastUpdatedAt"`
	LastUpdatedBy string    `json:"lastUpdatedBy"`
}

// ToGroupResponse converts a domain.Group to GroupResponse DTO
func ToGroupResponse(g *domain.Group) GroupResponse {
	return GroupResponse{
		GroupID:                g.GroupID,
		Name:                   g.Name,
		Description:            g.Description,
		CurrencyCode:           g.CurrencyCode,
		CreatorID:              g.CreatorID,
		AdminID:                g.AdminID,
		CanUsersInvite:         g.CanUsersInvite,
		CanUsersEditInfo:       g.CanUsersEditInfo,
		CanUsersDeleteExpense:  g.CanUsersDeleteExpense,
		CanUsersSeeInvitations: g.CanUsersSeeInvitations,
		CreatedAt:              g.CreatedAt,
		CreatedBy:              g.CreatedBy,
		LastUpdatedAt:          g.LastUpdatedAt,
		LastUpdatedBy:          g.LastUpdatedBy,
	}
}

// ListGroupsResponse wraps a list of groups.
type ListGroupsResponse struct {
	Groups []GroupResponse `json:"groups"`
}

// ToListGroupsResponse converts a slice of domain.Group to DTO.
func ToListGroupsResponse(gs []domain.Group) ListGroupsResponse {
	list := make([]GroupResponse, len(gs))
	for i, g := range gs {
		list[i] = ToGroupResponse(&g)
	}
	return ListGroupsResponse{Groups: list}
}

// InviteUserRequest defines the data needed to invite a user into a group.
type InviteUserRequest struct {
	UserID string `json:"userID" binding:"required"`
}

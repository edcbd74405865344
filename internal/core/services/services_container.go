package services

import (
	portsrepo "github.com/splittab/split_tab_app/internal/core/ports/repositories"
	portssvc "github.com/splittab/split_tab_app/internal/core/ports/services"
	"github.com/splittab/split_tab_app/internal/platform/config"
)

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	container.User = NewUserService(repos.UserRepo)
	container.Token = NewTokenService(cfg)
	container.Group = NewGroupService(repos.GroupRepo, repos.AccountRepo, repos.UserRepo)
	container.Invitation = NewInvitationService(repos.AccountRepo, repos.GroupRepo)
	container.Expense = NewExpenseService(repos.ExpenseRepo, repos.AccountRepo, repos.GroupRepo)
	container.Task = NewTaskService(repos.TaskRepo, repos.AccountRepo, repos.GroupRepo)

	return container
}

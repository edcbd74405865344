package pgsql

import (
	"github.com/jackc/pgx/v5/pgxpool"
	portsrepo "github.com/splittab/split_tab_app/internal/core/ports/repositories"
)

func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	userRepo := newPgxUserRepository(dbPool)
	groupRepo := newPgxGroupRepository(dbPool)
	accountRepo := newPgxAccountRepository(dbPool)
	expenseRepo := newPgxExpenseRepository(dbPool, accountRepo)
	taskRepo := newPgxTaskRepository(dbPool)

	return portsrepo.RepositoryProvider{
		UserRepo:    userRepo,
		GroupRepo:   groupRepo,
		AccountRepo: accountRepo,
		ExpenseRepo: expenseRepo,
		TaskRepo:    taskRepo,
	}
}

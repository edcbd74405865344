package pgsql

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/splittab/split_tab_app/internal/apperrors"
	"github.com/splittab/split_tab_app/internal/core/domain"
	portsrepo "github.com/splittab/split_tab_app/internal/core/ports/repositories"
	"github.com/splittab/split_tab_app/internal/models"
	"github.com/splittab/split_tab_app/internal/utils/mapping"
)

type PgxTaskRepository struct {
	BaseRepository
}

// newPgxTaskRepository creates a new repository for task data.
func newPgxTaskRepository(pool *pgxpool.Pool) portsrepo.TaskRepositoryWithTx {
	return &PgxTaskRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

// Ensure PgxTaskRepository implements portsrepo.TaskRepositoryWithTx
var _ portsrepo.TaskRepositoryWithTx = (*PgxTaskRepository)(nil)

const taskColumns = `task_id, group_id, title, description, deadline, status, assigner_id, assignee_id, created_at, created_by, last_updated_at, last_updated_by`

func scanTaskRow(row pgx.Row) (*models.Task, error) {
	var m models.Task
	err := row.Scan(
		&m.TaskID,
		&m.GroupID,
		&m.Title,
		&m.Description,
		&m.Deadline,
		&m.Status,
		&m.AssignerID,
		&m.AssigneeID,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *PgxTaskRepository) queryTasks(ctx context.Context, query string, args ...any) ([]domain.Task, error) {
	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query tasks", err)
	}
	defer rows.Close()

	tasks := []models.Task{}
	for rows.Next() {
		m, err := scanTaskRow(rows)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan task row", err)
		}
		tasks = append(tasks, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating task rows", err)
	}

	return mapping.ToDomainTaskSlice(tasks), nil
}

// SaveTask persists a new task.
func (r *PgxTaskRepository) SaveTask(ctx context.Context, task domain.Task) error {
	modelTask := mapping.ToModelTask(task)
	query := `
		INSERT INTO tasks (` + taskColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12);
	`
	_, err := r.Pool.Exec(ctx, query,
		modelTask.TaskID,
		modelTask.GroupID,
		modelTask.Title,
		modelTask.Description,
		modelTask.Deadline,
		modelTask.Status,
		modelTask.AssignerID,
		modelTask.AssigneeID,
		modelTask.CreatedAt,
		modelTask.CreatedBy,
		modelTask.LastUpdatedAt,
		modelTask.LastUpdatedBy,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to insert task "+modelTask.TaskID, err)
	}
	return nil
}

// FindTaskByID retrieves a task by its ID.
func (r *PgxTaskRepository) FindTaskByID(ctx context.Context, taskID string) (*domain.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE task_id = $1;`
	m, err := scanTaskRow(r.Pool.QueryRow(ctx, query, taskID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find task by ID "+taskID, err)
	}
	t := mapping.ToDomainTask(*m)
	return &t, nil
}

// ListTasksByGroupID retrieves all tasks of a group, optionally filtered by status.
func (r *PgxTaskRepository) ListTasksByGroupID(ctx context.Context, groupID string, status *domain.TaskStatus) ([]domain.Task, error) {
	if status == nil {
		query := `SELECT ` + taskColumns + ` FROM tasks WHERE group_id = $1 ORDER BY deadline;`
		return r.queryTasks(ctx, query, groupID)
	}
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE group_id = $1 AND status = $2 ORDER BY deadline;`
	return r.queryTasks(ctx, query, groupID, string(*status))
}

// ListTasksByAssigneeID retrieves all tasks assigned to a user across groups.
func (r *PgxTaskRepository) ListTasksByAssigneeID(ctx context.Context, assigneeID string, status *domain.TaskStatus) ([]domain.Task, error) {
	if status == nil {
		query := `SELECT ` + taskColumns + ` FROM tasks WHERE assignee_id = $1 ORDER BY deadline;`
		return r.queryTasks(ctx, query, assigneeID)
	}
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE assignee_id = $1 AND status = $2 ORDER BY deadline;`
	return r.queryTasks(ctx, query, assigneeID, string(*status))
}

// UpdateTaskStatus sets the status of a task.
func (r *PgxTaskRepository) UpdateTaskStatus(ctx context.Context, taskID string, status domain.TaskStatus, updatedByUserID string, updatedAt time.Time) error {
	query := `
		UPDATE tasks
		SET status = $2, last_updated_at = $3, last_updated_by = $4
		WHERE task_id = $1;
	`
	ct, err := r.Pool.Exec(ctx, query, taskID, string(status), updatedAt, updatedByUserID)
	if err != nil {
		return apperrors.NewAppError(500, "failed to update task status for "+taskID, err)
	}
	if ct.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

package mapping

import (
	"github.com/splittab/split_tab_app/internal/core/domain"
	"github.com/splittab/split_tab_app/internal/models"
)

// ToModelTask converts a domain Task to a model Task
func ToModelTask(d domain.Task) models.Task {
	return models.Task{
		TaskID:      d.TaskID,
		GroupID:     d.GroupID,
		Title:       d.Title,
		Description: d.Description,
		Deadline:    d.Deadline,
		Status:      models.TaskStatus(d.Status),
		AssignerID:  d.AssignerID,
		AssigneeID:  d.AssigneeID,
		AuditFields: ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainTask converts a model Task to a domain Task
func ToDomainTask(m models.Task) domain.Task {
	return domain.Task{
		TaskID:      m.TaskID,
		GroupID:     m.GroupID,
		Title:       m.Title,
		Description: m.Description,
		Deadline:    m.Deadline,
		Status:      domain.TaskStatus(m.Status),
		AssignerID:  m.AssignerID,
		AssigneeID:  m.AssigneeID,
		AuditFields: ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainTaskSlice converts a slice of model Tasks to domain Tasks
func ToDomainTaskSlice(ms []models.Task) []domain.Task {
	ds := make([]domain.Task, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainTask(m)
	}
	return ds
}

package services_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/splittab/split_tab_app/internal/apperrors"
	"github.com/splittab/split_tab_app/internal/core/domain"
	portssvc "github.com/splittab/split_tab_app/internal/core/ports/services"
	"github.com/splittab/split_tab_app/internal/core/services"
	"github.com/splittab/split_tab_app/internal/dto"
)

type TaskServiceTestSuite struct {
	suite.Suite
	mockTaskRepo    *MockTaskRepository
	mockAccountRepo *MockAccountRepository
	mockGroupRepo   *MockGroupRepository
	service         portssvc.TaskSvcFacade

	group    *domain.Group
	assigner domain.Account
	assignee domain.Account
}

func (suite *TaskServiceTestSuite) SetupTest() {
	suite.mockTaskRepo = new(MockTaskRepository)
	suite.mockAccountRepo = new(MockAccountRepository)
	suite.mockGroupRepo = new(MockGroupRepository)
	suite.service = services.NewTaskService(suite.mockTaskRepo, suite.mockAccountRepo, suite.mockGroupRepo)

	suite.group = &domain.Group{
		GroupID:      uuid.NewString(),
		Name:         "Flat 4B",
		CurrencyCode: "EUR",
		Enabled:      true,
	}
	suite.assigner = activeAccount("assigner", suite.group.GroupID)
	suite.assignee = activeAccount("assignee", suite.group.GroupID)
}

func (suite *TaskServiceTestSuite) expectMembershipLoad() {
	suite.mockGroupRepo.On("FindGroupByID", mock.Anything, suite.group.GroupID).Return(suite.group, nil).Once()
	suite.mockAccountRepo.On("FindAccountsByGroupID", mock.Anything, suite.group.GroupID, []domain.MembershipStatus(nil)).
		Return([]domain.Account{suite.assigner, suite.assignee}, nil).Once()
}

func (suite *TaskServiceTestSuite) pendingTask() *domain.Task {
	return &domain.Task{
		TaskID:     uuid.NewString(),
		GroupID:    suite.group.GroupID,
		Title:      "Buy cleaning supplies",
		Status:     domain.TaskPending,
		AssignerID: "assigner",
		AssigneeID: "assignee",
	}
}

func (suite *TaskServiceTestSuite) TestCreateTask_Success() {
	ctx := context.Background()
	suite.expectMembershipLoad()
	suite.mockTaskRepo.On("SaveTask", ctx, mock.AnythingOfType("domain.Task")).Return(nil).Once()

	task, err := suite.service.CreateTask(ctx, suite.group.GroupID, dto.CreateTaskRequest{
		Title:      "Buy cleaning supplies",
		AssigneeID: "assignee",
	}, "assigner")

	suite.Require().NoError(err)
	suite.Equal(domain.TaskPending, task.Status)
	suite.Equal("assigner", task.AssignerID)
	suite.Equal("assignee", task.AssigneeID)
	suite.mockTaskRepo.AssertExpectations(suite.T())
}

func (suite *TaskServiceTestSuite) TestCreateTask_AssigneeNotMember() {
	ctx := context.Background()
	suite.expectMembershipLoad()

	_, err := suite.service.CreateTask(ctx, suite.group.GroupID, dto.CreateTaskRequest{
		Title:      "Take out trash",
		AssigneeID: "stranger",
	}, "assigner")

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockTaskRepo.AssertNotCalled(suite.T(), "SaveTask")
}

func (suite *TaskServiceTestSuite) TestCreateTask_AssignerNotMember() {
	ctx := context.Background()
	suite.expectMembershipLoad()

	_, err := suite.service.CreateTask(ctx, suite.group.GroupID, dto.CreateTaskRequest{
		Title:      "Take out trash",
		AssigneeID: "assignee",
	}, "stranger")

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrForbidden)
	suite.mockTaskRepo.AssertNotCalled(suite.T(), "SaveTask")
}

func (suite *TaskServiceTestSuite) TestUpdateTaskStatus_FinishedByAssignee() {
	ctx := context.Background()
	task := suite.pendingTask()
	suite.expectMembershipLoad()
	suite.mockTaskRepo.On("FindTaskByID", ctx, task.TaskID).Return(task, nil).Once()
	suite.mockTaskRepo.On("UpdateTaskStatus", ctx, task.TaskID, domain.TaskFinished, "assignee", mock.AnythingOfType("time.Time")).
		Return(nil).Once()

	updated, err := suite.service.UpdateTaskStatus(ctx, suite.group.GroupID, task.TaskID, domain.TaskFinished, "assignee")

	suite.Require().NoError(err)
	suite.Equal(domain.TaskFinished, updated.Status)
	suite.Equal("assignee", updated.LastUpdatedBy)
	suite.mockTaskRepo.AssertExpectations(suite.T())
}

func (suite *TaskServiceTestSuite) TestUpdateTaskStatus_FinishedByAssignerForbidden() {
	ctx := context.Background()
	task := suite.pendingTask()
	suite.expectMembershipLoad()
	suite.mockTaskRepo.On("FindTaskByID", ctx, task.TaskID).Return(task, nil).Once()

	_, err := suite.service.UpdateTaskStatus(ctx, suite.group.GroupID, task.TaskID, domain.TaskFinished, "assigner")

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrForbidden)
	suite.mockTaskRepo.AssertNotCalled(suite.T(), "UpdateTaskStatus")
}

func (suite *TaskServiceTestSuite) TestUpdateTaskStatus_CancelledByAssigner() {
	ctx := context.Background()
	task := suite.pendingTask()
	suite.expectMembershipLoad()
	suite.mockTaskRepo.On("FindTaskByID", ctx, task.TaskID).Return(task, nil).Once()
	suite.mockTaskRepo.On("UpdateTaskStatus", ctx, task.TaskID, domain.TaskCancelled, "assigner", mock.AnythingOfType("time.Time")).
		Return(nil).Once()

	updated, err := suite.service.UpdateTaskStatus(ctx, suite.group.GroupID, task.TaskID, domain.TaskCancelled, "assigner")

	suite.Require().NoError(err)
	suite.Equal(domain.TaskCancelled, updated.Status)
}

func (suite *TaskServiceTestSuite) TestUpdateTaskStatus_CancelledByAssigneeForbidden() {
	ctx := context.Background()
	task := suite.pendingTask()
	suite.expectMembershipLoad()
	suite.mockTaskRepo.On("FindTaskByID", ctx, task.TaskID).Return(task, nil).Once()

	_, err := suite.service.UpdateTaskStatus(ctx, suite.group.GroupID, task.TaskID, domain.TaskCancelled, "assignee")

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrForbidden)
}

func (suite *TaskServiceTestSuite) TestUpdateTaskStatus_NotPendingConflict() {
	ctx := context.Background()
	task := suite.pendingTask()
	task.Status = domain.TaskFinished
	suite.expectMembershipLoad()
	suite.mockTaskRepo.On("FindTaskByID", ctx, task.TaskID).Return(task, nil).Once()

	_, err := suite.service.UpdateTaskStatus(ctx, suite.group.GroupID, task.TaskID, domain.TaskDeclined, "assignee")

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrConflict)
	suite.mockTaskRepo.AssertNotCalled(suite.T(), "UpdateTaskStatus")
}

func (suite *TaskServiceTestSuite) TestUpdateTaskStatus_PendingIsNotATarget() {
	ctx := context.Background()
	task := suite.pendingTask()
	suite.expectMembershipLoad()
	suite.mockTaskRepo.On("FindTaskByID", ctx, task.TaskID).Return(task, nil).Once()

	_, err := suite.service.UpdateTaskStatus(ctx, suite.group.GroupID, task.TaskID, domain.TaskPending, "assignee")

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *TaskServiceTestSuite) TestGetTaskByID_WrongGroupNotFound() {
	ctx := context.Background()
	task := suite.pendingTask()
	task.GroupID = uuid.NewString()
	suite.expectMembershipLoad()
	suite.mockTaskRepo.On("FindTaskByID", ctx, task.TaskID).Return(task, nil).Once()

	_, err := suite.service.GetTaskByID(ctx, suite.group.GroupID, task.TaskID, "assigner")

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func (suite *TaskServiceTestSuite) TestListGroupTasks_StatusFilterPassedThrough() {
	ctx := context.Background()
	status := domain.TaskPending
	suite.expectMembershipLoad()
	suite.mockTaskRepo.On("ListTasksByGroupID", ctx, suite.group.GroupID, &status).
		Return([]domain.Task{*suite.pendingTask()}, nil).Once()

	tasks, err := suite.service.ListGroupTasks(ctx, suite.group.GroupID, "assignee", dto.ListTasksParams{Status: &status})

	suite.Require().NoError(err)
	suite.Len(tasks, 1)
	suite.mockTaskRepo.AssertExpectations(suite.T())
}

func (suite *TaskServiceTestSuite) TestListAssignedTasks_NoMembershipLookup() {
	ctx := context.Background()
	suite.mockTaskRepo.On("ListTasksByAssigneeID", ctx, "assignee", (*domain.TaskStatus)(nil)).
		Return([]domain.Task{*suite.pendingTask()}, nil).Once()

	tasks, err := suite.service.ListAssignedTasks(ctx, "assignee", dto.ListTasksParams{})

	suite.Require().NoError(err)
	suite.Len(tasks, 1)
	suite.mockGroupRepo.AssertNotCalled(suite.T(), "FindGroupByID")
	suite.mockTaskRepo.AssertExpectations(suite.T())
}

func TestTaskServiceTestSuite(t *testing.T) {
	suite.Run(t, new(TaskServiceTestSuite))
}

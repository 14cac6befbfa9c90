package task

import (
	"context"
	"testing"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teamtrack/teamtrack-backend-go/internal/domain/activity"
	"github.com/teamtrack/teamtrack-backend-go/internal/domain/project"
	"github.com/teamtrack/teamtrack-backend-go/internal/domain/task"
	"github.com/teamtrack/teamtrack-backend-go/internal/domain/user"
	"github.com/teamtrack/teamtrack-backend-go/internal/service/access"
)

const (
	testWorkspaceID = "11111111-1111-1111-1111-111111111111"
	testOwnerID     = "22222222-2222-2222-2222-222222222222"
	testMemberID    = "33333333-3333-3333-3333-333333333333"
	testStrangerID  = "44444444-4444-4444-4444-444444444444"
	testProjectID   = "aaaaaaaa-0000-0000-0000-000000000001"
)

var testTokenAuth = jwtauth.New("HS256", []byte("test-secret-key-for-jwt"), nil)

func authedContext(t *testing.T, userID string, role user.Role) context.Context {
	t.Helper()
	token, _, err := testTokenAuth.Encode(map[string]interface{}{
		"user_id":      userID,
		"workspace_id": testWorkspaceID,
		"role":         string(role),
	})
	require.NoError(t, err)
	return jwtauth.NewContext(context.Background(), token, nil)
}

// ---- in-memory fakes ----

type fakeProjectRepo struct {
	projects map[string]*project.Project
	members  map[string]map[string]bool
}

func (r *fakeProjectRepo) Create(ctx context.Context, p project.Project) (project.Project, error) {
	return p, nil
}
func (r *fakeProjectRepo) GetByID(ctx context.Context, id, workspaceID string) (project.Project, error) {
	p, ok := r.projects[id]
	if !ok || p.WorkspaceID != workspaceID {
		return project.Project{}, project.ErrProjectNotFound
	}
	return *p, nil
}
func (r *fakeProjectRepo) ListByWorkspace(ctx context.Context, workspaceID string) ([]project.Project, error) {
	return nil, nil
}
func (r *fakeProjectRepo) Update(ctx context.Context, p project.Project) error { return nil }
func (r *fakeProjectRepo) Delete(ctx context.Context, id, ws string) error     { return nil }
func (r *fakeProjectRepo) AddMember(ctx context.Context, m project.Member) error {
	if r.members[m.ProjectID] == nil {
		r.members[m.ProjectID] = make(map[string]bool)
	}
	r.members[m.ProjectID][m.UserID] = true
	return nil
}
func (r *fakeProjectRepo) RemoveMember(ctx context.Context, projectID, userID string) error {
	delete(r.members[projectID], userID)
	return nil
}
func (r *fakeProjectRepo) ListMembers(ctx context.Context, projectID string) ([]project.Member, error) {
	return nil, nil
}
func (r *fakeProjectRepo) IsMember(ctx context.Context, projectID, userID string) (bool, error) {
	return r.members[projectID][userID], nil
}

type fakeTaskRepo struct {
	tasks map[string]*task.Task
}

func (r *fakeTaskRepo) Create(ctx context.Context, t task.Task) (task.Task, error) {
	t.CreatedAt = time.Now()
	t.UpdatedAt = t.CreatedAt
	stored := t
	r.tasks[t.ID] = &stored
	return stored, nil
}

func (r *fakeTaskRepo) GetByID(ctx context.Context, id, workspaceID string) (task.Task, error) {
	t, ok := r.tasks[id]
	if !ok || t.WorkspaceID != workspaceID {
		return task.Task{}, task.ErrTaskNotFound
	}
	return *t, nil
}

func (r *fakeTaskRepo) ListByProject(ctx context.Context, projectID string) ([]task.Task, error) {
	var out []task.Task
	for _, t := range r.tasks {
		if t.ProjectID == projectID {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (r *fakeTaskRepo) Update(ctx context.Context, t task.Task) error {
	stored := t
	r.tasks[t.ID] = &stored
	return nil
}

func (r *fakeTaskRepo) Delete(ctx context.Context, id, workspaceID string) error {
	delete(r.tasks, id)
	return nil
}

type fakeSink struct {
	entries []activity.Entry
}

func (s *fakeSink) Record(ctx context.Context, entry activity.Entry) {
	s.entries = append(s.entries, entry)
}

type testHarness struct {
	service  task.TaskService
	tasks    *fakeTaskRepo
	projects *fakeProjectRepo
	sink     *fakeSink
}

func newTestHarness(t *testing.T) *testHarness {
	t.Helper()
	projects := &fakeProjectRepo{
		projects: map[string]*project.Project{
			testProjectID: {
				ID:          testProjectID,
				WorkspaceID: testWorkspaceID,
				CreatedBy:   testOwnerID,
				Name:        "Launch",
			},
		},
		members: map[string]map[string]bool{
			testProjectID: {testMemberID: true},
		},
	}
	tasks := &fakeTaskRepo{tasks: make(map[string]*task.Task)}
	sink := &fakeSink{}
	svc := NewTaskService(tasks, projects, access.NewResolver(projects), sink)
	return &testHarness{service: svc, tasks: tasks, projects: projects, sink: sink}
}

func (h *testHarness) seedTask(status task.Status, createdBy string) task.Task {
	t := task.Task{
		ID:          "bbbbbbbb-0000-0000-0000-000000000001",
		WorkspaceID: testWorkspaceID,
		ProjectID:   testProjectID,
		CreatedBy:   createdBy,
		Title:       "Ship it",
		Status:      status,
	}
	h.tasks.tasks[t.ID] = &t
	return t
}

func TestTaskService_CreateTask_Success(t *testing.T) {
	h := newTestHarness(t)
	ctx := authedContext(t, testMemberID, user.RoleMember)

	due := "2024-02-01"
	resp, err := h.service.CreateTask(ctx, task.CreateTaskRequest{
		ProjectID:  testProjectID,
		Title:      "Write docs",
		AssigneeID: strPtr(testMemberID),
		DueDate:    &due,
	})

	require.NoError(t, err)
	assert.Equal(t, string(task.StatusTodo), resp.Status)
	assert.Equal(t, testMemberID, *resp.AssigneeID)
	assert.Equal(t, "2024-02-01", *resp.DueDate)
	require.Len(t, h.sink.entries, 1)
	assert.Equal(t, activity.ActionTaskCreated, h.sink.entries[0].Action)
}

func TestTaskService_CreateTask_AssigneeMustBeMember(t *testing.T) {
	h := newTestHarness(t)
	ctx := authedContext(t, testOwnerID, user.RoleOwner)

	_, err := h.service.CreateTask(ctx, task.CreateTaskRequest{
		ProjectID:  testProjectID,
		Title:      "Write docs",
		AssigneeID: strPtr(testStrangerID),
	})

	assert.ErrorIs(t, err, task.ErrAssigneeNotMember)
}

func TestTaskService_CreateTask_NonMemberForbidden(t *testing.T) {
	h := newTestHarness(t)
	ctx := authedContext(t, testStrangerID, user.RoleMember)

	_, err := h.service.CreateTask(ctx, task.CreateTaskRequest{
		ProjectID: testProjectID,
		Title:     "Write docs",
	})

	assert.ErrorIs(t, err, task.ErrForbidden)
}

func TestTaskService_UpdateTask_StatusLadder(t *testing.T) {
	h := newTestHarness(t)
	seeded := h.seedTask(task.StatusTodo, testMemberID)
	ctx := authedContext(t, testMemberID, user.RoleMember)

	// todo -> done skips in_progress and is rejected
	_, err := h.service.UpdateTask(ctx, task.UpdateTaskRequest{
		ID:     seeded.ID,
		Status: strPtr(string(task.StatusDone)),
	})
	assert.ErrorIs(t, err, task.ErrInvalidStatusChange)

	resp, err := h.service.UpdateTask(ctx, task.UpdateTaskRequest{
		ID:     seeded.ID,
		Status: strPtr(string(task.StatusInProgress)),
	})
	require.NoError(t, err)
	assert.Equal(t, string(task.StatusInProgress), resp.Status)

	resp, err = h.service.UpdateTask(ctx, task.UpdateTaskRequest{
		ID:     seeded.ID,
		Status: strPtr(string(task.StatusDone)),
	})
	require.NoError(t, err)
	assert.Equal(t, string(task.StatusDone), resp.Status)

	// done reopens to in_progress only
	resp, err = h.service.UpdateTask(ctx, task.UpdateTaskRequest{
		ID:     seeded.ID,
		Status: strPtr(string(task.StatusInProgress)),
	})
	require.NoError(t, err)
	assert.Equal(t, string(task.StatusInProgress), resp.Status)
}

func TestTaskService_UpdateTask_SameStatusIsNoop(t *testing.T) {
	h := newTestHarness(t)
	seeded := h.seedTask(task.StatusInProgress, testMemberID)

	resp, err := h.service.UpdateTask(authedContext(t, testMemberID, user.RoleMember),
		task.UpdateTaskRequest{ID: seeded.ID, Status: strPtr(string(task.StatusInProgress))})

	require.NoError(t, err)
	assert.Equal(t, string(task.StatusInProgress), resp.Status)
}

func TestTaskService_UpdateTask_ClearAssignee(t *testing.T) {
	h := newTestHarness(t)
	seeded := h.seedTask(task.StatusTodo, testMemberID)
	h.tasks.tasks[seeded.ID].AssigneeID = strPtr(testMemberID)

	resp, err := h.service.UpdateTask(authedContext(t, testMemberID, user.RoleMember),
		task.UpdateTaskRequest{ID: seeded.ID, AssigneeID: strPtr("")})

	require.NoError(t, err)
	assert.Nil(t, resp.AssigneeID)
}

func TestTaskService_DeleteTask_CreatorOrManagerOnly(t *testing.T) {
	h := newTestHarness(t)
	seeded := h.seedTask(task.StatusTodo, testOwnerID)

	err := h.service.DeleteTask(authedContext(t, testMemberID, user.RoleMember), seeded.ID)
	assert.ErrorIs(t, err, task.ErrForbidden)

	err = h.service.DeleteTask(authedContext(t, testOwnerID, user.RoleOwner), seeded.ID)
	require.NoError(t, err)
	_, ok := h.tasks.tasks[seeded.ID]
	assert.False(t, ok)
}

func TestTaskService_ListTasks_ScopedToProject(t *testing.T) {
	h := newTestHarness(t)
	h.seedTask(task.StatusTodo, testMemberID)

	resp, err := h.service.ListTasks(authedContext(t, testMemberID, user.RoleMember), testProjectID)

	require.NoError(t, err)
	assert.Len(t, resp, 1)
}

func strPtr(s string) *string { return &s }

package services

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tarefas-app/tarefas-be/internal/apperr"
	"github.com/tarefas-app/tarefas-be/internal/models"
)

// fakeTaskRepo is an in-memory TaskRepository.
type fakeTaskRepo struct {
	tasks    map[int64]models.Task
	nextID   int64
	users    *fakeUserRepo
	failFind error
	failSave error
}

func newFakeTaskRepo(users *fakeUserRepo) *fakeTaskRepo {
	return &fakeTaskRepo{tasks: make(map[int64]models.Task), nextID: 1, users: users}
}

func (r *fakeTaskRepo) Create(task *models.Task) error {
	task.ID = r.nextID
	r.nextID++
	task.CreatedAt = time.Now()
	task.UpdatedAt = task.CreatedAt
	r.tasks[task.ID] = *task
	return nil
}

func (r *fakeTaskRepo) FindByID(id int64, withUsers bool) (*models.Task, error) {
	if r.failFind != nil {
		return nil, r.failFind
	}
	task, ok := r.tasks[id]
	if !ok {
		return nil, nil
	}
	if withUsers && r.users != nil {
		if creator, _ := r.users.FindByID(task.CreatorID); creator != nil {
			task.Creator = creator
		}
		if assignee, _ := r.users.FindByID(task.AssigneeID); assignee != nil {
			task.Assignee = assignee
		}
	}
	return &task, nil
}

func (r *fakeTaskRepo) Save(task *models.Task) error {
	if r.failSave != nil {
		return r.failSave
	}
	task.UpdatedAt = time.Now()
	r.tasks[task.ID] = *task
	return nil
}

func (r *fakeTaskRepo) Delete(id int64) (int64, error) {
	if _, ok := r.tasks[id]; !ok {
		return 0, nil
	}
	delete(r.tasks, id)
	return 1, nil
}

func (r *fakeTaskRepo) FindByOwnerOrAssignee(userID int64, status string) ([]models.Task, error) {
	var out []models.Task
	for _, task := range r.tasks {
		if task.CreatorID != userID && task.AssigneeID != userID {
			continue
		}
		if status != "" && task.Status != status {
			continue
		}
		out = append(out, task)
	}
	return out, nil
}

func (r *fakeTaskRepo) CountReferencingUser(userID int64) (int64, error) {
	var count int64
	for _, task := range r.tasks {
		if task.CreatorID == userID || task.AssigneeID == userID {
			count++
		}
	}
	return count, nil
}

// fakeUserRepo is an in-memory UserRepository.
type fakeUserRepo struct {
	users  map[int64]models.User
	nextID int64
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[int64]models.User), nextID: 1}
}

func (r *fakeUserRepo) Create(user *models.User) error {
	user.ID = r.nextID
	r.nextID++
	user.CreatedAt = time.Now()
	r.users[user.ID] = *user
	return nil
}

func (r *fakeUserRepo) FindByID(id int64) (*models.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	user.PasswordHash = ""
	return &user, nil
}

func (r *fakeUserRepo) FindByUsername(username string) (*models.User, error) {
	for _, user := range r.users {
		if user.Username == username {
			u := user
			return &u, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) FindAll() ([]models.User, error) {
	var out []models.User
	for _, user := range r.users {
		user.PasswordHash = ""
		out = append(out, user)
	}
	return out, nil
}

func (r *fakeUserRepo) Delete(id int64) (int64, error) {
	if _, ok := r.users[id]; !ok {
		return 0, nil
	}
	delete(r.users, id)
	return 1, nil
}

// eventRecorder captures emitted activity events.
type eventRecorder struct {
	types []string
}

func (e *eventRecorder) CreateEvent(eventType, level, message string, taskID *int64) error {
	e.types = append(e.types, eventType)
	return nil
}

func (e *eventRecorder) GetRecentEvents(limit int) ([]models.Event, error) { return nil, nil }

func (e *eventRecorder) PruneOlderThan(cutoff time.Time) (int64, error) { return 0, nil }

func newTestEngine(t *testing.T) (*TaskService, *fakeTaskRepo, *fakeUserRepo, *eventRecorder, models.User, models.User, models.User) {
	t.Helper()

	userRepo := newFakeUserRepo()
	taskRepo := newFakeTaskRepo(userRepo)
	events := &eventRecorder{}

	alice := models.User{Username: "alice"}
	bob := models.User{Username: "bob"}
	carol := models.User{Username: "carol"}
	require.NoError(t, userRepo.Create(&alice))
	require.NoError(t, userRepo.Create(&bob))
	require.NoError(t, userRepo.Create(&carol))

	svc := NewTaskService(taskRepo, userRepo, events)
	return svc, taskRepo, userRepo, events, alice, bob, carol
}

func TestCreateTaskDefaultsStatus(t *testing.T) {
	svc, _, _, events, alice, bob, _ := newTestEngine(t)

	task, err := svc.CreateTask("write report", "quarterly numbers", alice, bob.ID, "")
	require.NoError(t, err)

	assert.Equal(t, models.StatusNotStarted, task.Status)
	assert.Equal(t, alice.ID, task.CreatorID)
	assert.Equal(t, bob.ID, task.AssigneeID)
	require.NotNil(t, task.Creator)
	require.NotNil(t, task.Assignee)
	assert.Equal(t, "alice", task.Creator.Username)
	assert.Equal(t, "bob", task.Assignee.Username)
	assert.Contains(t, events.types, "task.created")
}

func TestCreateTaskUnknownAssignee(t *testing.T) {
	svc, _, _, _, alice, _, _ := newTestEngine(t)

	_, err := svc.CreateTask("write report", "", alice, 999, "")
	require.Error(t, err)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	assert.Equal(t, "assignee not found", apperr.Message(err))
}

func TestCreateTaskInvalidStatus(t *testing.T) {
	svc, _, _, _, alice, bob, _ := newTestEngine(t)

	_, err := svc.CreateTask("write report", "", alice, bob.ID, "Done")
	require.Error(t, err)
	assert.Equal(t, apperr.KindInvalidRequest, apperr.KindOf(err))
}

func TestCreateTaskRequiresTitle(t *testing.T) {
	svc, _, _, _, alice, bob, _ := newTestEngine(t)

	_, err := svc.CreateTask("", "no title", alice, bob.ID, "")
	require.Error(t, err)
	assert.Equal(t, apperr.KindInvalidRequest, apperr.KindOf(err))
}

func TestCreateTaskSelfAssignment(t *testing.T) {
	svc, _, _, _, alice, _, _ := newTestEngine(t)

	task, err := svc.CreateTask("solo work", "", alice, alice.ID, models.StatusInProgress)
	require.NoError(t, err)
	assert.Equal(t, alice.ID, task.CreatorID)
	assert.Equal(t, alice.ID, task.AssigneeID)
	assert.Equal(t, models.StatusInProgress, task.Status)
}

func TestCreateTaskReturnsDirectoryCreator(t *testing.T) {
	svc, _, userRepo, _, alice, bob, _ := newTestEngine(t)

	// The caller identity carries only what the token claims hold.
	caller := models.User{ID: alice.ID, Username: alice.Username}

	task, err := svc.CreateTask("write report", "", caller, bob.ID, "")
	require.NoError(t, err)

	record, err := userRepo.FindByID(alice.ID)
	require.NoError(t, err)
	require.NotNil(t, record)
	require.NotNil(t, task.Creator)
	assert.Equal(t, *record, *task.Creator, "create must return the directory record, not the claims")
	assert.False(t, task.Creator.CreatedAt.IsZero())

	// The same task read back serializes the identical creator shape.
	got, err := svc.GetTaskByID(task.ID, caller)
	require.NoError(t, err)
	require.NotNil(t, got.Creator)
	assert.Equal(t, *task.Creator, *got.Creator)
}

func TestUpdateTaskOnlyCreatorMayEdit(t *testing.T) {
	svc, _, _, _, alice, bob, carol := newTestEngine(t)

	task, err := svc.CreateTask("write report", "", alice, bob.ID, "")
	require.NoError(t, err)

	newStatus := models.StatusCompleted
	patch := models.TaskPatch{Status: &newStatus}

	// Neither the assignee nor a stranger may edit.
	for _, caller := range []models.User{bob, carol} {
		_, err := svc.UpdateTask(task.ID, patch, caller)
		require.Error(t, err)
		assert.Equal(t, apperr.KindInvalidRequest, apperr.KindOf(err))
		assert.Equal(t, "not permitted to edit", apperr.Message(err))
	}

	// The creator may.
	updated, err := svc.UpdateTask(task.ID, patch, alice)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, updated.Status)
}

func TestUpdateTaskPartialMerge(t *testing.T) {
	svc, _, _, _, alice, bob, carol := newTestEngine(t)

	task, err := svc.CreateTask("write report", "quarterly numbers", alice, bob.ID, "")
	require.NoError(t, err)

	// Only status in the patch: title and description keep their values.
	newStatus := models.StatusInProgress
	updated, err := svc.UpdateTask(task.ID, models.TaskPatch{Status: &newStatus}, alice)
	require.NoError(t, err)
	assert.Equal(t, "write report", updated.Title)
	assert.Equal(t, "quarterly numbers", updated.Description)
	assert.Equal(t, models.StatusInProgress, updated.Status)

	// Reassignment resolves the new assignee.
	updated, err = svc.UpdateTask(task.ID, models.TaskPatch{Responsavel: &carol.ID}, alice)
	require.NoError(t, err)
	assert.Equal(t, carol.ID, updated.AssigneeID)
	assert.Equal(t, models.StatusInProgress, updated.Status)

	// Reassignment to a missing user fails and changes nothing.
	ghost := int64(999)
	_, err = svc.UpdateTask(task.ID, models.TaskPatch{Responsavel: &ghost}, alice)
	require.Error(t, err)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	assert.Equal(t, "assignee not found", apperr.Message(err))

	current, err := svc.GetTaskByID(task.ID, alice)
	require.NoError(t, err)
	assert.Equal(t, carol.ID, current.AssigneeID)
}

func TestUpdateTaskInvalidStatus(t *testing.T) {
	svc, _, _, _, alice, bob, _ := newTestEngine(t)

	task, err := svc.CreateTask("write report", "", alice, bob.ID, "")
	require.NoError(t, err)

	bad := "Pendente"
	_, err = svc.UpdateTask(task.ID, models.TaskPatch{Status: &bad}, alice)
	require.Error(t, err)
	assert.Equal(t, apperr.KindInvalidRequest, apperr.KindOf(err))
}

func TestUpdateTaskStatusMayRegress(t *testing.T) {
	// No transition graph is enforced: a completed task can go back to
	// in-progress.
	svc, _, _, _, alice, bob, _ := newTestEngine(t)

	task, err := svc.CreateTask("write report", "", alice, bob.ID, models.StatusCompleted)
	require.NoError(t, err)

	back := models.StatusInProgress
	updated, err := svc.UpdateTask(task.ID, models.TaskPatch{Status: &back}, alice)
	require.NoError(t, err)
	assert.Equal(t, models.StatusInProgress, updated.Status)
}

func TestUpdateTaskNotFound(t *testing.T) {
	svc, _, _, _, alice, _, _ := newTestEngine(t)

	title := "x"
	_, err := svc.UpdateTask(42, models.TaskPatch{Title: &title}, alice)
	require.Error(t, err)
	assert.Equal(t, apperr.KindInvalidRequest, apperr.KindOf(err))
	assert.Equal(t, "task not found", apperr.Message(err))
}

func TestUpdateTaskMasksPersistenceFailure(t *testing.T) {
	svc, taskRepo, _, _, alice, bob, _ := newTestEngine(t)

	task, err := svc.CreateTask("write report", "", alice, bob.ID, "")
	require.NoError(t, err)

	taskRepo.failSave = errors.New("disk is full")

	newStatus := models.StatusCompleted
	_, err = svc.UpdateTask(task.ID, models.TaskPatch{Status: &newStatus}, alice)
	require.Error(t, err)
	assert.Equal(t, apperr.KindInvalidRequest, apperr.KindOf(err))
	assert.Equal(t, "update failed", apperr.Message(err))
	assert.NotContains(t, apperr.Message(err), "disk")
}

func TestDeleteTaskOnlyCreatorMayDelete(t *testing.T) {
	svc, _, _, events, alice, bob, carol := newTestEngine(t)

	task, err := svc.CreateTask("write report", "", alice, bob.ID, "")
	require.NoError(t, err)

	// Being the assignee does NOT grant delete rights.
	for _, caller := range []models.User{bob, carol} {
		err := svc.DeleteTask(task.ID, caller)
		require.Error(t, err)
		assert.Equal(t, apperr.KindInvalidRequest, apperr.KindOf(err))
		assert.Equal(t, "not permitted to delete", apperr.Message(err))
	}

	require.NoError(t, svc.DeleteTask(task.ID, alice))
	assert.Contains(t, events.types, "task.deleted")
}

func TestDeleteTaskTwice(t *testing.T) {
	svc, _, _, _, alice, bob, _ := newTestEngine(t)

	task, err := svc.CreateTask("write report", "", alice, bob.ID, "")
	require.NoError(t, err)

	require.NoError(t, svc.DeleteTask(task.ID, alice))

	err = svc.DeleteTask(task.ID, alice)
	require.Error(t, err)
	assert.Equal(t, apperr.KindInvalidRequest, apperr.KindOf(err))
	assert.Equal(t, "task not found", apperr.Message(err))
}

func TestGetTaskByIDAccess(t *testing.T) {
	svc, _, _, _, alice, bob, carol := newTestEngine(t)

	task, err := svc.CreateTask("write report", "", alice, bob.ID, "")
	require.NoError(t, err)

	// Creator and assignee may view.
	got, err := svc.GetTaskByID(task.ID, alice)
	require.NoError(t, err)
	assert.Equal(t, task.ID, got.ID)

	got, err = svc.GetTaskByID(task.ID, bob)
	require.NoError(t, err)
	assert.Equal(t, task.ID, got.ID)

	// A stranger gets the same error as a missing task, so existence
	// never leaks.
	_, strangerErr := svc.GetTaskByID(task.ID, carol)
	require.Error(t, strangerErr)
	_, missingErr := svc.GetTaskByID(task.ID+100, alice)
	require.Error(t, missingErr)
	assert.Equal(t, apperr.Message(missingErr), apperr.Message(strangerErr))
	assert.Equal(t, apperr.KindOf(missingErr), apperr.KindOf(strangerErr))
}

func TestGetTaskByIDRejectsNonPositiveID(t *testing.T) {
	svc, _, _, _, alice, _, _ := newTestEngine(t)

	for _, id := range []int64{0, -1} {
		_, err := svc.GetTaskByID(id, alice)
		require.Error(t, err)
		assert.Equal(t, apperr.KindInvalidRequest, apperr.KindOf(err))
		assert.Equal(t, "invalid id", apperr.Message(err))
	}
}

func TestGetTasksByUserFilterIsExact(t *testing.T) {
	svc, _, _, _, alice, bob, carol := newTestEngine(t)

	_, err := svc.CreateTask("a", "", alice, bob.ID, models.StatusInProgress)
	require.NoError(t, err)
	_, err = svc.CreateTask("b", "", alice, alice.ID, models.StatusCompleted)
	require.NoError(t, err)
	_, err = svc.CreateTask("c", "", bob, alice.ID, models.StatusInProgress)
	require.NoError(t, err)
	_, err = svc.CreateTask("d", "", carol, carol.ID, models.StatusInProgress)
	require.NoError(t, err)

	// Unfiltered: everything alice created or is assigned to.
	tasks, err := svc.GetTasksByUser(alice, "")
	require.NoError(t, err)
	assert.Len(t, tasks, 3)

	// Exact status match.
	tasks, err = svc.GetTasksByUser(alice, models.StatusInProgress)
	require.NoError(t, err)
	assert.Len(t, tasks, 2)
	for _, task := range tasks {
		assert.Equal(t, models.StatusInProgress, task.Status)
	}

	// Case differences do not match: the status set is closed labels, not
	// free text.
	tasks, err = svc.GetTasksByUser(alice, "em andamento")
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

func TestTaskLifecycleScenario(t *testing.T) {
	// Creator C creates a task assigned to A with no status; C completes it;
	// A cannot delete it; C deletes it; it is then gone for C too.
	svc, _, _, _, c, a, _ := newTestEngine(t)

	task, err := svc.CreateTask("ship release", "cut 2.4.0", c, a.ID, "")
	require.NoError(t, err)
	assert.Equal(t, models.StatusNotStarted, task.Status)

	done := models.StatusCompleted
	updated, err := svc.UpdateTask(task.ID, models.TaskPatch{Status: &done}, c)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, updated.Status)

	err = svc.DeleteTask(task.ID, a)
	require.Error(t, err)
	assert.Equal(t, apperr.KindInvalidRequest, apperr.KindOf(err))

	require.NoError(t, svc.DeleteTask(task.ID, c))

	_, err = svc.GetTaskByID(task.ID, c)
	require.Error(t, err)
	assert.Equal(t, apperr.KindInvalidRequest, apperr.KindOf(err))
	assert.Equal(t, "task not found or not permitted to view", apperr.Message(err))
}

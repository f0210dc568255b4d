package repository

import (
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/yukikurage/todo-list/internal/database"
	"github.com/yukikurage/todo-list/internal/models"
)

type RepositoryTestSuite struct {
	suite.Suite
	db       *gorm.DB
	tasks    TaskRepository
	tags     TagRepository
	users    UserRepository
	owner    *models.User
	stranger *models.User
}

func (s *RepositoryTestSuite) SetupTest() {
	var err error
	s.db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	s.Require().NoError(err)
	sqlDB, err := s.db.DB()
	s.Require().NoError(err)
	// every :memory: connection is a separate database
	sqlDB.SetMaxOpenConns(1)
	s.Require().NoError(database.MigrateDatabase(s.db))

	s.tasks = NewTaskRepository(s.db)
	s.tags = NewTagRepository(s.db)
	s.users = NewUserRepository(s.db)

	s.owner = &models.User{Email: "owner@example.com", PasswordHash: "hashed"}
	s.Require().NoError(s.users.Create(s.owner))
	s.stranger = &models.User{Email: "stranger@example.com", PasswordHash: "hashed"}
	s.Require().NoError(s.users.Create(s.stranger))
}

func (s *RepositoryTestSuite) TearDownTest() {
	sqlDB, err := s.db.DB()
	s.Require().NoError(err)
	sqlDB.Close()
}

func (s *RepositoryTestSuite) createTask(ownerID uint64, description string, priority models.Priority, tagNames ...string) *models.Task {
	tags, err := s.tags.FindOrCreate(tagNames)
	s.Require().NoError(err)

	task := &models.Task{
		Description: description,
		Priority:    priority,
		OwnerID:     ownerID,
		Tags:        tags,
	}
	s.Require().NoError(s.tasks.Create(task))
	return task
}

func (s *RepositoryTestSuite) descriptions(tasks []models.Task) []string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.Description
	}
	return out
}

func (s *RepositoryTestSuite) TestList_OwnerScopedNewestFirst() {
	s.createTask(s.owner.ID, "first", models.PriorityHigh)
	s.createTask(s.stranger.ID, "not mine", models.PriorityHigh)
	s.createTask(s.owner.ID, "second", models.PriorityLow)

	tasks, total, err := s.tasks.List(TaskFilter{OwnerID: s.owner.ID})
	s.Require().NoError(err)
	s.Equal(int64(2), total)
	s.Equal([]string{"second", "first"}, s.descriptions(tasks))
}

func (s *RepositoryTestSuite) TestList_ByTag() {
	s.createTask(s.owner.ID, "groceries", models.PriorityMedium, "home", "errands")
	s.createTask(s.owner.ID, "report", models.PriorityHigh, "work")

	home, err := s.tags.FindBySlug("home")
	s.Require().NoError(err)

	tasks, total, err := s.tasks.List(TaskFilter{OwnerID: s.owner.ID, TagID: &home.ID})
	s.Require().NoError(err)
	s.Equal(int64(1), total)
	s.Require().Len(tasks, 1)
	s.Equal("groceries", tasks[0].Description)
	s.ElementsMatch([]string{"home", "errands"}, tasks[0].TagNames())
}

func (s *RepositoryTestSuite) TestList_ByPriority() {
	s.createTask(s.owner.ID, "high", models.PriorityHigh)
	s.createTask(s.owner.ID, "medium", models.PriorityMedium)
	s.createTask(s.owner.ID, "low", models.PriorityLow)

	tasks, _, err := s.tasks.List(TaskFilter{
		OwnerID:          s.owner.ID,
		FilterByPriority: true,
		Priorities:       []models.Priority{models.PriorityHigh, models.PriorityLow},
	})
	s.Require().NoError(err)
	s.Equal([]string{"low", "high"}, s.descriptions(tasks))
}

func (s *RepositoryTestSuite) TestList_EmptyPrioritySelectsNothing() {
	s.createTask(s.owner.ID, "high", models.PriorityHigh)

	tasks, total, err := s.tasks.List(TaskFilter{OwnerID: s.owner.ID, FilterByPriority: true})
	s.Require().NoError(err)
	s.Zero(total)
	s.Empty(tasks)
}

func (s *RepositoryTestSuite) TestList_Paginated() {
	for _, d := range []string{"a", "b", "c"} {
		s.createTask(s.owner.ID, d, models.PriorityMedium)
	}

	tasks, total, err := s.tasks.List(TaskFilter{OwnerID: s.owner.ID, Page: 2, PageSize: 2})
	s.Require().NoError(err)
	s.Equal(int64(3), total)
	s.Equal([]string{"a"}, s.descriptions(tasks))
}

func (s *RepositoryTestSuite) TestFindByOwner() {
	task := s.createTask(s.owner.ID, "mine", models.PriorityHigh, "home")

	found, err := s.tasks.FindByOwner(task.ID, s.owner.ID, "Tags")
	s.Require().NoError(err)
	s.Equal([]string{"home"}, found.TagNames())

	_, err = s.tasks.FindByOwner(task.ID, s.stranger.ID)
	s.True(errors.Is(err, gorm.ErrRecordNotFound))
}

func (s *RepositoryTestSuite) TestMarkCompleted() {
	task := s.createTask(s.owner.ID, "finish me", models.PriorityLow, "home")

	s.Require().NoError(s.tasks.MarkCompleted(task.ID))

	found, err := s.tasks.FindByID(task.ID, "Tags")
	s.Require().NoError(err)
	s.True(found.IsCompleted)
	s.Equal("finish me", found.Description)
	s.Equal(models.PriorityLow, found.Priority)
	s.Equal(s.owner.ID, found.OwnerID)
	s.Equal([]string{"home"}, found.TagNames())
}

func (s *RepositoryTestSuite) TestMarkCompleted_AlreadyCompleted() {
	task := s.createTask(s.owner.ID, "twice", models.PriorityLow)

	s.Require().NoError(s.tasks.MarkCompleted(task.ID))
	s.Require().NoError(s.tasks.MarkCompleted(task.ID))

	found, err := s.tasks.FindByID(task.ID)
	s.Require().NoError(err)
	s.True(found.IsCompleted)
}

func (s *RepositoryTestSuite) TestUpdateWithTags() {
	task := s.createTask(s.owner.ID, "retag", models.PriorityLow, "old")

	tags, err := s.tags.FindOrCreate([]string{"new", "newer"})
	s.Require().NoError(err)
	task.Description = "retagged"
	task.Priority = models.PriorityHigh
	s.Require().NoError(s.tasks.UpdateWithTags(task, tags))

	found, err := s.tasks.FindByID(task.ID, "Tags")
	s.Require().NoError(err)
	s.Equal("retagged", found.Description)
	s.Equal(models.PriorityHigh, found.Priority)
	s.ElementsMatch([]string{"new", "newer"}, found.TagNames())

	s.Require().NoError(s.tasks.UpdateWithTags(found, nil))
	found, err = s.tasks.FindByID(task.ID, "Tags")
	s.Require().NoError(err)
	s.Empty(found.Tags)
}

func (s *RepositoryTestSuite) TestUpdateWithTags_RollsBackOnTagFailure() {
	task := s.createTask(s.owner.ID, "before", models.PriorityLow, "old")
	tags, err := s.tags.FindOrCreate([]string{"new"})
	s.Require().NoError(err)

	s.Require().NoError(s.db.Migrator().DropTable("task_tags"))

	task.Description = "after"
	s.Error(s.tasks.UpdateWithTags(task, tags))

	found, err := s.tasks.FindByID(task.ID)
	s.Require().NoError(err)
	s.Equal("before", found.Description)
}

func (s *RepositoryTestSuite) TestDelete() {
	task := s.createTask(s.owner.ID, "delete me", models.PriorityLow, "home")

	s.Require().NoError(s.tasks.Delete(task.ID))

	_, err := s.tasks.FindByID(task.ID)
	s.True(errors.Is(err, gorm.ErrRecordNotFound))

	var links int64
	s.Require().NoError(s.db.Table("task_tags").Where("task_id = ?", task.ID).Count(&links).Error)
	s.Zero(links)

	s.True(errors.Is(s.tasks.Delete(task.ID), gorm.ErrRecordNotFound))
}

func (s *RepositoryTestSuite) TestFindOrCreate_ReusesAndDisambiguatesSlugs() {
	first, err := s.tags.FindOrCreate([]string{"New York"})
	s.Require().NoError(err)
	s.Equal("new-york", first[0].Slug)

	again, err := s.tags.FindOrCreate([]string{"new york", "NEW YORK", "New-York"})
	s.Require().NoError(err)
	s.Require().Len(again, 2)
	s.Equal(first[0].ID, again[0].ID)
	s.Equal("New York", again[0].Name)
	s.Equal("New-York", again[1].Name)
	s.Equal("new-york_1", again[1].Slug)

	punct, err := s.tags.FindOrCreate([]string{"!!!"})
	s.Require().NoError(err)
	s.Equal("tag", punct[0].Slug)
}

func (s *RepositoryTestSuite) TestFindByEmail() {
	user, err := s.users.FindByEmail("owner@example.com")
	s.Require().NoError(err)
	s.Equal(s.owner.ID, user.ID)

	_, err = s.users.FindByEmail("nobody@example.com")
	s.True(errors.Is(err, gorm.ErrRecordNotFound))
}

func TestRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(RepositoryTestSuite))
}

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open gorm with sqlmock: %v", err)
	}
	return db, mock
}

func TestTaskRepository_ListPropagatesCountError(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTaskRepository(db)

	dbErr := errors.New("connection reset")
	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `tasks`").WillReturnError(dbErr)

	_, _, err := repo.List(TaskFilter{OwnerID: 1})
	if !errors.Is(err, dbErr) {
		t.Fatalf("expected %v, got %v", dbErr, err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestTaskRepository_UpdateWithTagsRollsBack(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTaskRepository(db)

	dbErr := errors.New("lock wait timeout")
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `tasks`").WillReturnError(dbErr)
	mock.ExpectRollback()

	task := &models.Task{ID: 3, Description: "changed", Priority: models.PriorityHigh, OwnerID: 1}
	err := repo.UpdateWithTags(task, []models.Tag{{ID: 1, Name: "home", Slug: "home"}})
	if !errors.Is(err, dbErr) {
		t.Fatalf("expected %v, got %v", dbErr, err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestTaskRepository_MarkCompletedZeroRowsIsNotAnError(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTaskRepository(db)

	// MySQL without clientFoundRows reports unchanged rows as unaffected
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `tasks` SET `is_completed`").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	if err := repo.MarkCompleted(3); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUserRepository_FindByEmailPropagatesError(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)

	dbErr := errors.New("timeout")
	mock.ExpectQuery("SELECT \\* FROM `users` WHERE email = \\?").WillReturnError(dbErr)

	_, err := repo.FindByEmail("a@example.com")
	if !errors.Is(err, dbErr) {
		t.Fatalf("expected %v, got %v", dbErr, err)
	}
}

func TestUserRepository_FindByIDReturnsRow(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "email", "password_hash", "created_at", "updated_at"}).
		AddRow(7, "seven@example.com", "hash", now, now)
	mock.ExpectQuery("SELECT \\* FROM `users` WHERE `users`.`id` = \\?").WillReturnRows(rows)

	user, err := repo.FindByID(7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user.Email != "seven@example.com" {
		t.Fatalf("unexpected email %q", user.Email)
	}
}

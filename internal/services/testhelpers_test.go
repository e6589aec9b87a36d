package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/yungbote/virtual-client-backend/internal/logger"
	"github.com/yungbote/virtual-client-backend/internal/repos"
	"github.com/yungbote/virtual-client-backend/internal/requestdata"
	"github.com/yungbote/virtual-client-backend/internal/types"
)

func testLogger(tb testing.TB) *logger.Logger {
	tb.Helper()
	log, err := logger.New("development")
	if err != nil {
		tb.Fatalf("failed to init logger: %v", err)
	}
	return log
}

func testDB(tb testing.TB) *gorm.DB {
	tb.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		tb.Fatalf("failed to open sqlite: %v", err)
	}
	if err := db.AutoMigrate(
		&types.User{},
		&types.UserToken{},
		&types.ClientProfile{},
		&types.EvaluationRubric{},
		&types.CourseSection{},
		&types.SectionEnrollment{},
		&types.Assignment{},
		&types.AssignmentClient{},
		&types.Session{},
		&types.Message{},
		&types.AICallLog{},
	); err != nil {
		tb.Fatalf("failed to migrate: %v", err)
	}
	return db
}

type testRepos struct {
	user             repos.UserRepo
	userToken        repos.UserTokenRepo
	clientProfile    repos.ClientProfileRepo
	rubric           repos.RubricRepo
	section          repos.SectionRepo
	enrollment       repos.EnrollmentRepo
	assignment       repos.AssignmentRepo
	assignmentClient repos.AssignmentClientRepo
	session          repos.SessionRepo
	message          repos.MessageRepo
	aiCallLog        repos.AICallLogRepo
}

func newTestRepos(db *gorm.DB, log *logger.Logger) testRepos {
	return testRepos{
		user:             repos.NewUserRepo(db, log),
		userToken:        repos.NewUserTokenRepo(db, log),
		clientProfile:    repos.NewClientProfileRepo(db, log),
		rubric:           repos.NewRubricRepo(db, log),
		section:          repos.NewSectionRepo(db, log),
		enrollment:       repos.NewEnrollmentRepo(db, log),
		assignment:       repos.NewAssignmentRepo(db, log),
		assignmentClient: repos.NewAssignmentClientRepo(db, log),
		session:          repos.NewSessionRepo(db, log),
		message:          repos.NewMessageRepo(db, log),
		aiCallLog:        repos.NewAICallLogRepo(db, log),
	}
}

func seedUser(tb testing.TB, db *gorm.DB, role string) *types.User {
	tb.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		tb.Fatalf("failed to hash password: %v", err)
	}
	user := &types.User{
		ID:        uuid.New(),
		Email:     uuid.New().String() + "@example.com",
		Password:  string(hashed),
		FirstName: "Test",
		LastName:  "User",
		Role:      role,
	}
	if err := db.Create(user).Error; err != nil {
		tb.Fatalf("failed to seed user: %v", err)
	}
	return user
}

func ctxAs(user *types.User) context.Context {
	return requestdata.WithRequestData(context.Background(), &requestdata.RequestData{
		UserID: user.ID,
		Role:   user.Role,
	})
}

package repos

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/yungbote/virtual-client-backend/internal/logger"
	"github.com/yungbote/virtual-client-backend/internal/types"
)

func repoTestDB(tb testing.TB) *gorm.DB {
	tb.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		tb.Fatalf("failed to open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&types.User{}, &types.ClientProfile{}, &types.Session{}, &types.Message{}); err != nil {
		tb.Fatalf("failed to migrate: %v", err)
	}
	return db
}

func repoTestLogger(tb testing.TB) *logger.Logger {
	tb.Helper()
	log, err := logger.New("development")
	if err != nil {
		tb.Fatalf("failed to init logger: %v", err)
	}
	return log
}

func seedSession(tb testing.TB, db *gorm.DB) *types.Session {
	tb.Helper()
	student := &types.User{Email: uuid.New().String() + "@example.com", Password: "x", FirstName: "T", LastName: "S", Role: types.RoleStudent}
	if err := db.Create(student).Error; err != nil {
		tb.Fatalf("seed student: %v", err)
	}
	teacher := &types.User{Email: uuid.New().String() + "@example.com", Password: "x", FirstName: "T", LastName: "T", Role: types.RoleTeacher}
	if err := db.Create(teacher).Error; err != nil {
		tb.Fatalf("seed teacher: %v", err)
	}
	profile := &types.ClientProfile{TeacherID: teacher.ID, Name: "Maria"}
	if err := db.Create(profile).Error; err != nil {
		tb.Fatalf("seed profile: %v", err)
	}
	session := &types.Session{
		StudentID:       student.ID,
		ClientProfileID: profile.ID,
		Status:          types.SessionStatusActive,
	}
	if err := db.Create(session).Error; err != nil {
		tb.Fatalf("seed session: %v", err)
	}
	return session
}

func TestClaimNextSeq(t *testing.T) {
	db := repoTestDB(t)
	repo := NewSessionRepo(db, repoTestLogger(t))
	session := seedSession(t, db)
	ctx := context.Background()

	for want := int64(0); want < 3; want++ {
		got, err := repo.ClaimNextSeq(ctx, nil, session.ID)
		if err != nil {
			t.Fatalf("ClaimNextSeq error: %v", err)
		}
		if got != want {
			t.Fatalf("claimed seq=%d, want %d", got, want)
		}
	}

	var reloaded types.Session
	if err := db.First(&reloaded, "id = ?", session.ID).Error; err != nil {
		t.Fatalf("reload session: %v", err)
	}
	if reloaded.NextSeq != 3 {
		t.Fatalf("next_seq=%d, want 3", reloaded.NextSeq)
	}
}

func TestClaimNextSeqUnknownSession(t *testing.T) {
	db := repoTestDB(t)
	repo := NewSessionRepo(db, repoTestLogger(t))

	_, err := repo.ClaimNextSeq(context.Background(), nil, uuid.New())
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("got %v, want gorm.ErrRecordNotFound", err)
	}
}

func TestClaimNextSeqInsideTransaction(t *testing.T) {
	db := repoTestDB(t)
	repo := NewSessionRepo(db, repoTestLogger(t))
	session := seedSession(t, db)
	ctx := context.Background()

	err := db.Transaction(func(tx *gorm.DB) error {
		seq, cErr := repo.ClaimNextSeq(ctx, tx, session.ID)
		if cErr != nil {
			return cErr
		}
		msg := &types.Message{
			SessionID: session.ID,
			Seq:       seq,
			Role:      types.MessageRoleUser,
			Content:   "hello",
		}
		return tx.Create(msg).Error
	})
	if err != nil {
		t.Fatalf("transaction error: %v", err)
	}

	var count int64
	if err := db.Model(&types.Message{}).Where("session_id = ?", session.ID).Count(&count).Error; err != nil {
		t.Fatalf("count messages: %v", err)
	}
	if count != 1 {
		t.Fatalf("messages=%d, want 1", count)
	}
}

func TestAccumulateUsage(t *testing.T) {
	db := repoTestDB(t)
	repo := NewSessionRepo(db, repoTestLogger(t))
	session := seedSession(t, db)
	ctx := context.Background()

	if err := repo.AccumulateUsage(ctx, nil, session.ID, 100, 0.002); err != nil {
		t.Fatalf("AccumulateUsage error: %v", err)
	}
	if err := repo.AccumulateUsage(ctx, nil, session.ID, 50, 0.001); err != nil {
		t.Fatalf("AccumulateUsage error: %v", err)
	}

	var reloaded types.Session
	if err := db.First(&reloaded, "id = ?", session.ID).Error; err != nil {
		t.Fatalf("reload session: %v", err)
	}
	if reloaded.TotalTokens != 150 {
		t.Fatalf("TotalTokens=%d, want 150", reloaded.TotalTokens)
	}
	if reloaded.EstimatedCost < 0.0029 || reloaded.EstimatedCost > 0.0031 {
		t.Fatalf("EstimatedCost=%f, want ~0.003", reloaded.EstimatedCost)
	}
}

func TestMarkCompletedOnlyOnce(t *testing.T) {
	db := repoTestDB(t)
	repo := NewSessionRepo(db, repoTestLogger(t))
	session := seedSession(t, db)
	ctx := context.Background()

	first := time.Now().Add(-time.Minute).UTC().Truncate(time.Second)
	if err := repo.MarkCompleted(ctx, nil, session.ID, first); err != nil {
		t.Fatalf("MarkCompleted error: %v", err)
	}

	// Already completed: the guard keeps the original completion time.
	later := time.Now().UTC().Truncate(time.Second)
	if err := repo.MarkCompleted(ctx, nil, session.ID, later); err != nil {
		t.Fatalf("second MarkCompleted error: %v", err)
	}

	var reloaded types.Session
	if err := db.First(&reloaded, "id = ?", session.ID).Error; err != nil {
		t.Fatalf("reload session: %v", err)
	}
	if reloaded.Status != types.SessionStatusCompleted {
		t.Fatalf("status=%q", reloaded.Status)
	}
	if reloaded.CompletedAt == nil || !reloaded.CompletedAt.Equal(first) {
		t.Fatalf("CompletedAt=%v, want %v", reloaded.CompletedAt, first)
	}
}

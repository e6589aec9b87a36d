package services

import (
	"errors"
	"testing"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/virtual-client-backend/internal/apierr"
	"github.com/yungbote/virtual-client-backend/internal/types"
)

type assignmentFixture struct {
	db          *gorm.DB
	svc         AssignmentService
	sections    SectionService
	enrollments EnrollmentService
	students    StudentService

	teacher *types.User
	section *types.CourseSection
	profile *types.ClientProfile
	rubric  *types.EvaluationRubric
}

func newAssignmentFixture(t *testing.T) *assignmentFixture {
	t.Helper()
	db := testDB(t)
	log := testLogger(t)
	r := newTestRepos(db, log)

	f := &assignmentFixture{db: db, teacher: seedUser(t, db, types.RoleTeacher)}
	f.sections = NewSectionService(db, log, r.section, r.enrollment, r.assignment)
	f.enrollments = NewEnrollmentService(db, log, f.sections, r.enrollment, r.user)
	f.svc = NewAssignmentService(db, log, f.sections, r.assignment, r.assignmentClient, r.clientProfile, r.rubric)
	f.students = NewStudentService(db, log, r.enrollment, r.section, r.assignment, r.assignmentClient)

	ctx := ctxAs(f.teacher)
	section, err := f.sections.Create(ctx, &types.CourseSection{Name: "Counseling 101"})
	if err != nil {
		t.Fatalf("create section: %v", err)
	}
	f.section = section

	f.profile = &types.ClientProfile{TeacherID: f.teacher.ID, Name: "Maria"}
	if err := db.Create(f.profile).Error; err != nil {
		t.Fatalf("seed profile: %v", err)
	}
	f.rubric = &types.EvaluationRubric{
		TeacherID: f.teacher.ID,
		Name:      "Core skills",
		Criteria:  datatypes.JSON([]byte(`[{"name":"Listening","weight":1.0}]`)),
	}
	if err := db.Create(f.rubric).Error; err != nil {
		t.Fatalf("seed rubric: %v", err)
	}
	return f
}

func TestAssignmentLifecycle(t *testing.T) {
	f := newAssignmentFixture(t)
	ctx := ctxAs(f.teacher)

	assignment, err := f.svc.Create(ctx, &types.Assignment{SectionID: f.section.ID, Title: "First intake"})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if assignment.IsPublished {
		t.Fatal("new assignments start unpublished")
	}

	// Publishing without clients is rejected.
	var apiErr *apierr.Error
	if _, err := f.svc.Publish(ctx, assignment.ID); !errors.As(err, &apiErr) || apiErr.Code != "no_clients_attached" {
		t.Fatalf("got %v, want no_clients_attached", err)
	}

	ac, err := f.svc.AttachClient(ctx, assignment.ID, f.profile.ID, f.rubric.ID, 0)
	if err != nil {
		t.Fatalf("AttachClient error: %v", err)
	}
	if _, err := f.svc.AttachClient(ctx, assignment.ID, f.profile.ID, f.rubric.ID, 0); !errors.As(err, &apiErr) || apiErr.Code != "client_already_attached" {
		t.Fatalf("duplicate attach: got %v, want client_already_attached", err)
	}

	published, err := f.svc.Publish(ctx, assignment.ID)
	if err != nil {
		t.Fatalf("Publish error: %v", err)
	}
	if !published.IsPublished {
		t.Fatal("assignment not marked published")
	}

	// Editing a published assignment is blocked.
	if _, err := f.svc.Update(ctx, assignment.ID, &types.Assignment{Title: "Renamed"}); !errors.As(err, &apiErr) || apiErr.Code != "assignment_published" {
		t.Fatalf("update while published: got %v, want assignment_published", err)
	}

	if _, err := f.svc.Unpublish(ctx, assignment.ID); err != nil {
		t.Fatalf("Unpublish error: %v", err)
	}
	if _, err := f.svc.Update(ctx, assignment.ID, &types.Assignment{Title: "Renamed"}); err != nil {
		t.Fatalf("update after unpublish: %v", err)
	}

	// Detach and re-attach reuses the same row.
	if err := f.svc.RemoveClient(ctx, assignment.ID, ac.ID); err != nil {
		t.Fatalf("RemoveClient error: %v", err)
	}
	again, err := f.svc.AttachClient(ctx, assignment.ID, f.profile.ID, f.rubric.ID, 2)
	if err != nil {
		t.Fatalf("re-AttachClient error: %v", err)
	}
	if again.ID != ac.ID {
		t.Fatalf("re-attach created a new row: %s != %s", again.ID, ac.ID)
	}
	if again.DisplayOrder != 2 {
		t.Fatalf("DisplayOrder=%d, want 2", again.DisplayOrder)
	}
}

func TestAssignmentDateWindowValidation(t *testing.T) {
	f := newAssignmentFixture(t)
	ctx := ctxAs(f.teacher)

	from := time.Now().Add(48 * time.Hour)
	due := time.Now().Add(24 * time.Hour)
	var apiErr *apierr.Error
	_, err := f.svc.Create(ctx, &types.Assignment{
		SectionID:     f.section.ID,
		Title:         "Backwards window",
		AvailableFrom: &from,
		DueDate:       &due,
	})
	if !errors.As(err, &apiErr) || apiErr.Code != "invalid_date_window" {
		t.Fatalf("got %v, want invalid_date_window", err)
	}
}

func TestStudentSeesOnlyOpenAssignments(t *testing.T) {
	f := newAssignmentFixture(t)
	ctx := ctxAs(f.teacher)

	student := seedUser(t, f.db, types.RoleStudent)
	if _, err := f.enrollments.Enroll(ctx, f.section.ID, student.Email); err != nil {
		t.Fatalf("Enroll error: %v", err)
	}

	published, err := f.svc.Create(ctx, &types.Assignment{SectionID: f.section.ID, Title: "Open"})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if _, err := f.svc.AttachClient(ctx, published.ID, f.profile.ID, f.rubric.ID, 0); err != nil {
		t.Fatalf("AttachClient error: %v", err)
	}
	if _, err := f.svc.Publish(ctx, published.ID); err != nil {
		t.Fatalf("Publish error: %v", err)
	}

	if _, err := f.svc.Create(ctx, &types.Assignment{SectionID: f.section.ID, Title: "Draft"}); err != nil {
		t.Fatalf("Create draft error: %v", err)
	}

	future := time.Now().Add(72 * time.Hour)
	notYet, err := f.svc.Create(ctx, &types.Assignment{SectionID: f.section.ID, Title: "Scheduled", AvailableFrom: &future})
	if err != nil {
		t.Fatalf("Create scheduled error: %v", err)
	}
	if _, err := f.svc.AttachClient(ctx, notYet.ID, f.profile.ID, f.rubric.ID, 0); err != nil {
		t.Fatalf("AttachClient error: %v", err)
	}
	if _, err := f.svc.Publish(ctx, notYet.ID); err != nil {
		t.Fatalf("Publish scheduled error: %v", err)
	}

	available, err := f.students.ListAvailableAssignments(ctxAs(student))
	if err != nil {
		t.Fatalf("ListAvailableAssignments error: %v", err)
	}
	if len(available) != 1 || available[0].ID != published.ID {
		t.Fatalf("available=%d, want only the open assignment", len(available))
	}

	clients, err := f.students.ListAssignmentClients(ctxAs(student), published.ID)
	if err != nil {
		t.Fatalf("ListAssignmentClients error: %v", err)
	}
	if len(clients) != 1 {
		t.Fatalf("clients=%d, want 1", len(clients))
	}

	// Unenrolled students cannot browse the assignment's clients.
	outsider := seedUser(t, f.db, types.RoleStudent)
	var apiErr *apierr.Error
	if _, err := f.students.ListAssignmentClients(ctxAs(outsider), published.ID); !errors.As(err, &apiErr) || apiErr.Code != "not_enrolled" {
		t.Fatalf("outsider: got %v, want not_enrolled", err)
	}
}

package services

import (
	"errors"
	"net/http"
	"testing"

	"github.com/yungbote/virtual-client-backend/internal/apierr"
	"github.com/yungbote/virtual-client-backend/internal/types"
)

func newSessionService(t *testing.T, f *conversationFixture) SessionService {
	t.Helper()
	log := testLogger(t)
	return NewSessionService(f.db, log, f.repos.session, f.repos.message, f.repos.assignmentClient, f.repos.assignment, f.repos.section)
}

func TestGetTranscriptAccess(t *testing.T) {
	f := newConversationFixture(t, nil)
	svc := newSessionService(t, f)
	studentCtx := ctxAs(f.student)

	session, _, err := f.svc.Start(studentCtx, StartConversationInput{AssignmentClientID: &f.ac.ID})
	if err != nil {
		t.Fatalf("Start error: %v", err)
	}
	if _, _, err := f.svc.SendMessage(studentCtx, session.ID, "Hello."); err != nil {
		t.Fatalf("SendMessage error: %v", err)
	}

	// Owning student reads the full transcript in order.
	got, messages, err := svc.GetTranscript(studentCtx, session.ID)
	if err != nil {
		t.Fatalf("student GetTranscript error: %v", err)
	}
	if got.ID != session.ID || len(messages) != 3 {
		t.Fatalf("session=%s messages=%d, want 3", got.ID, len(messages))
	}

	// The section's teacher can review assignment-bound sessions.
	if _, _, err := svc.GetTranscript(ctxAs(f.teacher), session.ID); err != nil {
		t.Fatalf("teacher GetTranscript error: %v", err)
	}

	var apiErr *apierr.Error
	otherStudent := seedUser(t, f.db, types.RoleStudent)
	if _, _, err := svc.GetTranscript(ctxAs(otherStudent), session.ID); !errors.As(err, &apiErr) || apiErr.Status != http.StatusForbidden {
		t.Fatalf("other student: got %v, want 403", err)
	}
	otherTeacher := seedUser(t, f.db, types.RoleTeacher)
	if _, _, err := svc.GetTranscript(ctxAs(otherTeacher), session.ID); !errors.As(err, &apiErr) || apiErr.Status != http.StatusForbidden {
		t.Fatalf("other teacher: got %v, want 403", err)
	}
}

func TestPracticeSessionsStayPrivate(t *testing.T) {
	f := newConversationFixture(t, nil)
	svc := newSessionService(t, f)

	session, _, err := f.svc.Start(ctxAs(f.student), StartConversationInput{ClientProfileID: &f.profile.ID})
	if err != nil {
		t.Fatalf("Start error: %v", err)
	}

	// Even the profile's own teacher cannot read a practice transcript.
	var apiErr *apierr.Error
	if _, _, err := svc.GetTranscript(ctxAs(f.teacher), session.ID); !errors.As(err, &apiErr) || apiErr.Status != http.StatusForbidden {
		t.Fatalf("teacher on practice session: got %v, want 403", err)
	}
}

func TestListOwnAndListForAssignment(t *testing.T) {
	f := newConversationFixture(t, nil)
	svc := newSessionService(t, f)
	studentCtx := ctxAs(f.student)

	assigned, _, err := f.svc.Start(studentCtx, StartConversationInput{AssignmentClientID: &f.ac.ID})
	if err != nil {
		t.Fatalf("Start assigned error: %v", err)
	}
	if _, _, err := f.svc.Start(studentCtx, StartConversationInput{ClientProfileID: &f.profile.ID}); err != nil {
		t.Fatalf("Start practice error: %v", err)
	}

	own, err := svc.ListOwn(studentCtx)
	if err != nil {
		t.Fatalf("ListOwn error: %v", err)
	}
	if len(own) != 2 {
		t.Fatalf("own sessions=%d, want 2", len(own))
	}

	// Only the assignment-bound session shows up for the teacher.
	forAssignment, err := svc.ListForAssignment(ctxAs(f.teacher), f.ac.AssignmentID)
	if err != nil {
		t.Fatalf("ListForAssignment error: %v", err)
	}
	if len(forAssignment) != 1 || forAssignment[0].ID != assigned.ID {
		t.Fatalf("assignment sessions=%d, want the bound one", len(forAssignment))
	}

	var apiErr *apierr.Error
	otherTeacher := seedUser(t, f.db, types.RoleTeacher)
	if _, err := svc.ListForAssignment(ctxAs(otherTeacher), f.ac.AssignmentID); !errors.As(err, &apiErr) || apiErr.Status != http.StatusForbidden {
		t.Fatalf("other teacher: got %v, want 403", err)
	}
}

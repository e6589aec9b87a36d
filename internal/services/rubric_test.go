package services

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"gorm.io/datatypes"

	"github.com/yungbote/virtual-client-backend/internal/apierr"
	"github.com/yungbote/virtual-client-backend/internal/types"
)

func criteriaJSON(tb testing.TB, criteria []types.RubricCriterion) datatypes.JSON {
	tb.Helper()
	raw, err := json.Marshal(criteria)
	if err != nil {
		tb.Fatalf("marshal criteria: %v", err)
	}
	return datatypes.JSON(raw)
}

func TestValidateRubric(t *testing.T) {
	cases := []struct {
		name     string
		rubric   types.EvaluationRubric
		wantCode string
	}{
		{
			name:     "missing_name",
			rubric:   types.EvaluationRubric{},
			wantCode: "name_required",
		},
		{
			name:     "no_criteria",
			rubric:   types.EvaluationRubric{Name: "Empathy"},
			wantCode: "criteria_required",
		},
		{
			name: "malformed_criteria",
			rubric: types.EvaluationRubric{
				Name:     "Empathy",
				Criteria: datatypes.JSON([]byte(`{"not":"an array"}`)),
			},
			wantCode: "invalid_criteria",
		},
		{
			name: "duplicate_names",
			rubric: types.EvaluationRubric{
				Name: "Empathy",
				Criteria: criteriaJSON(t, []types.RubricCriterion{
					{Name: "Listening", Weight: 0.5},
					{Name: "Listening", Weight: 0.5},
				}),
			},
			wantCode: "duplicate_criterion",
		},
		{
			name: "weight_out_of_range",
			rubric: types.EvaluationRubric{
				Name: "Empathy",
				Criteria: criteriaJSON(t, []types.RubricCriterion{
					{Name: "Listening", Weight: 1.5},
				}),
			},
			wantCode: "invalid_weight",
		},
		{
			name: "weights_do_not_sum",
			rubric: types.EvaluationRubric{
				Name: "Empathy",
				Criteria: criteriaJSON(t, []types.RubricCriterion{
					{Name: "Listening", Weight: 0.4},
					{Name: "Reflection", Weight: 0.4},
				}),
			},
			wantCode: "weights_must_sum_to_one",
		},
		{
			name: "valid",
			rubric: types.EvaluationRubric{
				Name: "Empathy",
				Criteria: criteriaJSON(t, []types.RubricCriterion{
					{Name: "Listening", Weight: 0.6},
					{Name: "Reflection", Weight: 0.4},
				}),
			},
		},
		{
			name: "valid_within_tolerance",
			rubric: types.EvaluationRubric{
				Name: "Empathy",
				Criteria: criteriaJSON(t, []types.RubricCriterion{
					{Name: "A", Weight: 0.3333},
					{Name: "B", Weight: 0.3333},
					{Name: "C", Weight: 0.3334},
				}),
			},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := validateRubric(&tc.rubric)
			if tc.wantCode == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			var apiErr *apierr.Error
			if !errors.As(err, &apiErr) {
				t.Fatalf("want apierr, got %v", err)
			}
			if apiErr.Code != tc.wantCode {
				t.Fatalf("code=%q, want %q", apiErr.Code, tc.wantCode)
			}
			if apiErr.Status != http.StatusBadRequest {
				t.Fatalf("status=%d, want 400", apiErr.Status)
			}
		})
	}
}

func TestRubricServiceOwnership(t *testing.T) {
	db := testDB(t)
	log := testLogger(t)
	r := newTestRepos(db, log)
	svc := NewRubricService(db, log, r.rubric, r.assignmentClient)

	teacher := seedUser(t, db, types.RoleTeacher)
	other := seedUser(t, db, types.RoleTeacher)
	student := seedUser(t, db, types.RoleStudent)

	created, err := svc.Create(ctxAs(teacher), &types.EvaluationRubric{
		Name: "Core skills",
		Criteria: criteriaJSON(t, []types.RubricCriterion{
			{Name: "Listening", Weight: 1.0},
		}),
	})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}

	if _, err := svc.Get(ctxAs(teacher), created.ID); err != nil {
		t.Fatalf("owner Get error: %v", err)
	}

	var apiErr *apierr.Error
	if _, err := svc.Get(ctxAs(other), created.ID); !errors.As(err, &apiErr) || apiErr.Status != http.StatusForbidden {
		t.Fatalf("other teacher Get: got %v, want 403", err)
	}
	if _, err := svc.Get(ctxAs(student), created.ID); !errors.As(err, &apiErr) || apiErr.Status != http.StatusForbidden {
		t.Fatalf("student Get: got %v, want 403", err)
	}

	if err := svc.Delete(ctxAs(teacher), created.ID); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	if _, err := svc.Get(ctxAs(teacher), created.ID); !errors.As(err, &apiErr) || apiErr.Status != http.StatusNotFound {
		t.Fatalf("Get after delete: got %v, want 404", err)
	}
}

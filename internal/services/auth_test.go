package services

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/yungbote/virtual-client-backend/internal/apierr"
	"github.com/yungbote/virtual-client-backend/internal/requestdata"
	"github.com/yungbote/virtual-client-backend/internal/types"
)

func newAuthFixture(t *testing.T) (AuthService, *gorm.DB) {
	t.Helper()
	db := testDB(t)
	log := testLogger(t)
	r := newTestRepos(db, log)
	svc := NewAuthService(db, log, r.user, r.userToken, "test-secret", 15*time.Minute, 7*24*time.Hour)
	return svc, db
}

func TestRegisterUserValidation(t *testing.T) {
	svc, _ := newAuthFixture(t)
	ctx := context.Background()

	cases := []struct {
		name     string
		user     types.User
		wantCode string
	}{
		{
			name:     "bad_email",
			user:     types.User{Email: "nope", Password: "password123", Role: types.RoleStudent},
			wantCode: "invalid_email",
		},
		{
			name:     "short_password",
			user:     types.User{Email: "a@b.com", Password: "short", Role: types.RoleStudent},
			wantCode: "weak_password",
		},
		{
			name:     "bad_role",
			user:     types.User{Email: "a@b.com", Password: "password123", Role: "admin"},
			wantCode: "invalid_role",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := svc.RegisterUser(ctx, &tc.user)
			var apiErr *apierr.Error
			if !errors.As(err, &apiErr) || apiErr.Code != tc.wantCode {
				t.Fatalf("got %v, want code %q", err, tc.wantCode)
			}
		})
	}
}

func TestRegisterLoginRoundTrip(t *testing.T) {
	svc, _ := newAuthFixture(t)
	ctx := context.Background()

	user := &types.User{
		Email:     "  Maria.Teacher@Example.COM ",
		Password:  "password123",
		FirstName: "Maria",
		LastName:  "Teacher",
		Role:      types.RoleTeacher,
	}
	if err := svc.RegisterUser(ctx, user); err != nil {
		t.Fatalf("RegisterUser error: %v", err)
	}
	if user.Email != "maria.teacher@example.com" {
		t.Fatalf("email not normalized: %q", user.Email)
	}
	if user.Password == "password123" {
		t.Fatal("password stored in plaintext")
	}

	// Duplicate email is rejected even with different casing.
	dup := &types.User{Email: "MARIA.TEACHER@example.com", Password: "password123", Role: types.RoleTeacher}
	var apiErr *apierr.Error
	if err := svc.RegisterUser(ctx, dup); !errors.As(err, &apiErr) || apiErr.Status != http.StatusConflict {
		t.Fatalf("duplicate register: got %v, want 409", err)
	}

	access, refresh, err := svc.LoginUser(ctx, "maria.teacher@example.com", "password123")
	if err != nil {
		t.Fatalf("LoginUser error: %v", err)
	}
	if access == "" || refresh == "" {
		t.Fatal("login returned empty tokens")
	}

	authedCtx, cErr := svc.SetContextFromToken(ctx, access)
	if cErr != nil {
		t.Fatalf("SetContextFromToken error: %v", cErr)
	}
	rd := requestdata.GetRequestData(authedCtx)
	if rd == nil || rd.UserID != user.ID || rd.Role != types.RoleTeacher {
		t.Fatalf("request data=%+v", rd)
	}

	if _, _, err := svc.LoginUser(ctx, "maria.teacher@example.com", "wrong-password"); !errors.As(err, &apiErr) || apiErr.Code != "invalid_credentials" {
		t.Fatalf("bad password login: got %v, want invalid_credentials", err)
	}
	if _, _, err := svc.LoginUser(ctx, "nobody@example.com", "password123"); !errors.As(err, &apiErr) || apiErr.Code != "invalid_credentials" {
		t.Fatalf("unknown email login: got %v, want invalid_credentials", err)
	}
}

func TestRefreshRotatesToken(t *testing.T) {
	svc, db := newAuthFixture(t)
	ctx := context.Background()

	user := &types.User{Email: "s@example.com", Password: "password123", Role: types.RoleStudent}
	if err := svc.RegisterUser(ctx, user); err != nil {
		t.Fatalf("RegisterUser error: %v", err)
	}
	_, refresh, err := svc.LoginUser(ctx, "s@example.com", "password123")
	if err != nil {
		t.Fatalf("LoginUser error: %v", err)
	}

	newAccess, newRefresh, err := svc.RefreshUser(ctx, refresh)
	if err != nil {
		t.Fatalf("RefreshUser error: %v", err)
	}
	if newAccess == "" || newRefresh == "" || newRefresh == refresh {
		t.Fatal("refresh did not rotate the token pair")
	}

	// The consumed refresh token is gone.
	var apiErr *apierr.Error
	if _, _, err := svc.RefreshUser(ctx, refresh); !errors.As(err, &apiErr) || apiErr.Status != http.StatusUnauthorized {
		t.Fatalf("reused refresh token: got %v, want 401", err)
	}

	var count int64
	if err := db.Model(&types.UserToken{}).Where("user_id = ?", user.ID).Count(&count).Error; err != nil {
		t.Fatalf("count tokens: %v", err)
	}
	if count != 1 {
		t.Fatalf("token rows=%d, want 1 after rotation", count)
	}
}

func TestRefreshRejectsExpiredToken(t *testing.T) {
	svc, db := newAuthFixture(t)
	ctx := context.Background()

	user := &types.User{Email: "e@example.com", Password: "password123", Role: types.RoleStudent}
	if err := svc.RegisterUser(ctx, user); err != nil {
		t.Fatalf("RegisterUser error: %v", err)
	}
	_, refresh, err := svc.LoginUser(ctx, "e@example.com", "password123")
	if err != nil {
		t.Fatalf("LoginUser error: %v", err)
	}
	if err := db.Model(&types.UserToken{}).
		Where("refresh_token = ?", refresh).
		Update("expires_at", time.Now().Add(-time.Hour)).Error; err != nil {
		t.Fatalf("expire token: %v", err)
	}

	var apiErr *apierr.Error
	if _, _, err := svc.RefreshUser(ctx, refresh); !errors.As(err, &apiErr) || apiErr.Code != "refresh_token_expired" {
		t.Fatalf("got %v, want refresh_token_expired", err)
	}
}

func TestLogoutDeletesTokens(t *testing.T) {
	svc, db := newAuthFixture(t)
	ctx := context.Background()

	user := &types.User{Email: "l@example.com", Password: "password123", Role: types.RoleStudent}
	if err := svc.RegisterUser(ctx, user); err != nil {
		t.Fatalf("RegisterUser error: %v", err)
	}
	if _, _, err := svc.LoginUser(ctx, "l@example.com", "password123"); err != nil {
		t.Fatalf("LoginUser error: %v", err)
	}

	authed := requestdata.WithRequestData(ctx, &requestdata.RequestData{UserID: user.ID, Role: user.Role})
	if err := svc.LogoutUser(authed); err != nil {
		t.Fatalf("LogoutUser error: %v", err)
	}

	var count int64
	if err := db.Model(&types.UserToken{}).Where("user_id = ?", user.ID).Count(&count).Error; err != nil {
		t.Fatalf("count tokens: %v", err)
	}
	if count != 0 {
		t.Fatalf("token rows=%d after logout, want 0", count)
	}
}

func TestSetContextFromTokenRejectsForgedToken(t *testing.T) {
	svc, db := newAuthFixture(t)
	log := testLogger(t)
	r := newTestRepos(db, log)
	other := NewAuthService(db, log, r.user, r.userToken, "different-secret", 15*time.Minute, time.Hour)

	user := &types.User{Email: "f@example.com", Password: "password123", Role: types.RoleStudent}
	if err := other.RegisterUser(context.Background(), user); err != nil {
		t.Fatalf("RegisterUser error: %v", err)
	}
	forged, _, err := other.LoginUser(context.Background(), "f@example.com", "password123")
	if err != nil {
		t.Fatalf("LoginUser error: %v", err)
	}

	var apiErr *apierr.Error
	if _, err := svc.SetContextFromToken(context.Background(), forged); !errors.As(err, &apiErr) || apiErr.Code != "invalid_token" {
		t.Fatalf("got %v, want invalid_token", err)
	}
}

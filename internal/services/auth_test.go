package services

import (
	"context"
	"errors"
	"testing"
	"time"

	types "github.com/yungbote/collabmarket-backend/internal/domain"
	apperr "github.com/yungbote/collabmarket-backend/internal/pkg/errors"
	"github.com/yungbote/collabmarket-backend/internal/requestdata"
)

func newAuthTestEnv(t *testing.T) (AuthService, *fakeUserRepo, *fakeBrandRepo, *fakeCreatorRepo) {
	t.Helper()
	users := newFakeUserRepo()
	brands := newFakeBrandRepo()
	creators := newFakeCreatorRepo()
	svc := NewAuthService(testDB(t), testLogger(t), users, brands, creators, "test-secret", time.Hour)
	return svc, users, brands, creators
}

func TestRegisterCreatesRoleProfile(t *testing.T) {
	svc, _, brands, creators := newAuthTestEnv(t)

	user, token, err := svc.Register(context.Background(), RegisterInput{
		Email:    "Brand@Example.com",
		Password: "correct horse",
		Role:     types.RoleBrand,
		Name:     "Acme",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if user.Email != "brand@example.com" {
		t.Fatalf("email normalization: want=brand@example.com got=%s", user.Email)
	}
	if user.Password == "correct horse" {
		t.Fatalf("password stored in plaintext")
	}
	if token == "" {
		t.Fatalf("token: want non-empty")
	}
	profile, _ := brands.GetByUserID(dbcBG(), user.ID)
	if profile == nil || profile.CompanyName != "Acme" {
		t.Fatalf("brand profile: got=%+v", profile)
	}

	creatorUser, _, err := svc.Register(context.Background(), RegisterInput{
		Email:    "creator@example.com",
		Password: "correct horse",
		Role:     types.RoleCreator,
		Name:     "jane films",
	})
	if err != nil {
		t.Fatalf("Register creator: %v", err)
	}
	cp, _ := creators.GetByUserID(dbcBG(), creatorUser.ID)
	if cp == nil || cp.DisplayName != "jane films" {
		t.Fatalf("creator profile: got=%+v", cp)
	}
}

func TestRegisterValidation(t *testing.T) {
	svc, _, _, _ := newAuthTestEnv(t)

	cases := []struct {
		name string
		in   RegisterInput
	}{
		{"bad email", RegisterInput{Email: "nope", Password: "long enough", Role: types.RoleBrand}},
		{"short password", RegisterInput{Email: "a@b.com", Password: "short", Role: types.RoleBrand}},
		{"bad role", RegisterInput{Email: "a@b.com", Password: "long enough", Role: "admin"}},
	}
	for _, tc := range cases {
		if _, _, err := svc.Register(context.Background(), tc.in); !errors.Is(err, apperr.ErrInvalidArgument) {
			t.Fatalf("%s: want=%v got=%v", tc.name, apperr.ErrInvalidArgument, err)
		}
	}
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	svc, _, _, _ := newAuthTestEnv(t)
	in := RegisterInput{Email: "a@b.com", Password: "long enough", Role: types.RoleCreator, Name: "jane"}

	if _, _, err := svc.Register(context.Background(), in); err != nil {
		t.Fatalf("first Register: %v", err)
	}
	if _, _, err := svc.Register(context.Background(), in); !errors.Is(err, apperr.ErrInvalidArgument) {
		t.Fatalf("duplicate Register: want=%v got=%v", apperr.ErrInvalidArgument, err)
	}
}

func TestLoginAndTokenRoundTrip(t *testing.T) {
	svc, _, _, _ := newAuthTestEnv(t)
	user, _, err := svc.Register(context.Background(), RegisterInput{
		Email: "a@b.com", Password: "long enough", Role: types.RoleCreator, Name: "jane",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	_, token, err := svc.Login(context.Background(), "a@b.com", "long enough")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	ctx, err := svc.SetContextFromToken(context.Background(), token)
	if err != nil {
		t.Fatalf("SetContextFromToken: %v", err)
	}
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID != user.ID || rd.Role != types.RoleCreator {
		t.Fatalf("request data from token: got=%+v", rd)
	}
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	svc, _, _, _ := newAuthTestEnv(t)
	if _, _, err := svc.Register(context.Background(), RegisterInput{
		Email: "a@b.com", Password: "long enough", Role: types.RoleCreator, Name: "jane",
	}); err != nil {
		t.Fatalf("Register: %v", err)
	}

	if _, _, err := svc.Login(context.Background(), "a@b.com", "wrong password"); !errors.Is(err, apperr.ErrUnauthorized) {
		t.Fatalf("wrong password: want=%v got=%v", apperr.ErrUnauthorized, err)
	}
	if _, _, err := svc.Login(context.Background(), "missing@b.com", "long enough"); !errors.Is(err, apperr.ErrUnauthorized) {
		t.Fatalf("unknown user: want=%v got=%v", apperr.ErrUnauthorized, err)
	}
}

func TestSetContextFromTokenRejectsForgery(t *testing.T) {
	svc, _, _, _ := newAuthTestEnv(t)
	other := NewAuthService(testDB(t), testLogger(t),
		newFakeUserRepo(), newFakeBrandRepo(), newFakeCreatorRepo(), "other-secret", time.Hour)

	_, token, err := other.Register(context.Background(), RegisterInput{
		Email: "a@b.com", Password: "long enough", Role: types.RoleCreator, Name: "jane",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if _, err := svc.SetContextFromToken(context.Background(), token); !errors.Is(err, apperr.ErrUnauthorized) {
		t.Fatalf("foreign-secret token: want=%v got=%v", apperr.ErrUnauthorized, err)
	}
	if _, err := svc.SetContextFromToken(context.Background(), "not-a-token"); !errors.Is(err, apperr.ErrUnauthorized) {
		t.Fatalf("garbage token: want=%v got=%v", apperr.ErrUnauthorized, err)
	}
}

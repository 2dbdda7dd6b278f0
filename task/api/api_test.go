package api

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lfmonteiro/taskdeck/auth"
	authapi "github.com/lfmonteiro/taskdeck/auth/api"
	"github.com/lfmonteiro/taskdeck/internal/testutil"
	"github.com/lfmonteiro/taskdeck/task"
	"github.com/steinfletcher/apitest"
	jsonpath "github.com/steinfletcher/apitest-jsonpath"
)

type fixture struct {
	handler http.Handler
	authSvc *auth.Service
	taskSvc *task.Service
	tokens  *auth.Tokens
}

func acquireFixture(ctx context.Context, t *testing.T) (fixture, func()) {
	st, cleanup := testutil.AcquireStore(ctx, t)
	tokens := auth.NewTokens(auth.Config{
		Secret:   []byte("0123456789abcdef0123456789abcdef"),
		Lifetime: 8 * time.Hour,
		Issuer:   "taskdeck",
		Audience: "taskdeck",
	})
	authSvc := auth.NewService(st, tokens)
	taskSvc := task.NewService(st)
	realm := authapi.NewRealm(tokens, auth.InMemoryIdentityCache())
	return fixture{
		handler: AsHandler(authSvc, taskSvc, realm),
		authSvc: authSvc,
		taskSvc: taskSvc,
		tokens:  tokens,
	}, cleanup
}

// loginAs registers the user and returns both the Authorization header
// value and the caller id the realm will derive from it.
func (f fixture) loginAs(ctx context.Context, t *testing.T, username, password string) (string, uuid.UUID) {
	t.Helper()
	_, err := f.authSvc.Register(ctx, username, password)
	if err != nil {
		t.Fatal(err)
	}
	token, err := f.authSvc.Login(ctx, username, password)
	if err != nil {
		t.Fatal(err)
	}
	caller, err := f.tokens.Verify(token)
	if err != nil {
		t.Fatal(err)
	}
	return fmt.Sprintf("Bearer %v", token), caller.UserID
}

func today() string {
	return time.Now().Format("2006-01-02")
}

func TestTaskScenario(t *testing.T) {
	ctx := context.Background()
	f, cleanup := acquireFixture(ctx, t)
	defer cleanup()
	bearer, callerID := f.loginAs(ctx, t, "testuser", "testpassword")

	apitest.Handler(f.handler).
		Post("/auth/login").
		JSON(`{"username":"testuser","password":"testpassword"}`).
		Expect(t).
		Status(http.StatusOK).
		Assert(jsonpath.Present(`$.token`)).
		End()

	apitest.Handler(f.handler).
		Get("/tasks").
		Header("Authorization", bearer).
		Expect(t).
		Status(http.StatusOK).
		Assert(jsonpath.Len(`$`, 0)).
		End()

	apitest.Handler(f.handler).
		Post("/tasks").
		Header("Authorization", bearer).
		JSON(fmt.Sprintf(`{"title":"Buy milk","dueDate":"%v"}`, today())).
		Expect(t).
		Status(http.StatusCreated).
		Assert(jsonpath.Equal(`$.title`, "Buy milk")).
		Assert(jsonpath.Equal(`$.isCompleted`, false)).
		End()

	views, err := f.taskSvc.List(ctx, callerID)
	if err != nil {
		t.Fatal(err)
	}
	if len(views) != 1 {
		t.Fatalf("expected a single task, got %v", len(views))
	}
	created := views[0]

	apitest.Handler(f.handler).
		Put(fmt.Sprintf("/tasks/%v", created.ID)).
		Header("Authorization", bearer).
		JSON(fmt.Sprintf(`{"id":"%v","title":"Buy milk","description":"","dueDate":"%v","isCompleted":true}`, created.ID, today())).
		Expect(t).
		Status(http.StatusOK).
		Assert(jsonpath.Equal(`$.isCompleted`, true)).
		End()

	apitest.Handler(f.handler).
		Delete(fmt.Sprintf("/tasks/%v", created.ID)).
		Header("Authorization", bearer).
		Expect(t).
		Status(http.StatusNoContent).
		End()

	apitest.Handler(f.handler).
		Get(fmt.Sprintf("/tasks/%v", created.ID)).
		Header("Authorization", bearer).
		Expect(t).
		Status(http.StatusNotFound).
		End()
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	ctx := context.Background()
	f, cleanup := acquireFixture(ctx, t)
	defer cleanup()
	f.loginAs(ctx, t, "testuser", "testpassword")

	apitest.Handler(f.handler).
		Post("/auth/login").
		JSON(`{"username":"testuser","password":"wrongpassword"}`).
		Expect(t).
		Status(http.StatusUnauthorized).
		Assert(jsonpath.Equal(`$.message`, "invalid credentials")).
		End()

	apitest.Handler(f.handler).
		Post("/auth/login").
		JSON(`{"username":"nobody","password":"testpassword"}`).
		Expect(t).
		Status(http.StatusUnauthorized).
		Assert(jsonpath.Equal(`$.message`, "invalid credentials")).
		End()

	apitest.Handler(f.handler).
		Post("/auth/login").
		Body(`not json`).
		Expect(t).
		Status(http.StatusBadRequest).
		End()
}

func TestTaskRoutesRequireAuthentication(t *testing.T) {
	ctx := context.Background()
	f, cleanup := acquireFixture(ctx, t)
	defer cleanup()

	id := uuid.New()
	apitest.Handler(f.handler).Get("/tasks").Expect(t).Status(http.StatusUnauthorized).End()
	apitest.Handler(f.handler).Post("/tasks").JSON(`{"title":"Buy milk"}`).Expect(t).Status(http.StatusUnauthorized).End()
	apitest.Handler(f.handler).Get(fmt.Sprintf("/tasks/%v", id)).Expect(t).Status(http.StatusUnauthorized).End()
	apitest.Handler(f.handler).Put(fmt.Sprintf("/tasks/%v", id)).JSON(`{}`).Expect(t).Status(http.StatusUnauthorized).End()
	apitest.Handler(f.handler).Delete(fmt.Sprintf("/tasks/%v", id)).Expect(t).Status(http.StatusUnauthorized).End()

	apitest.Handler(f.handler).
		Get("/tasks").
		Header("Authorization", "Bearer bogus-token").
		Expect(t).
		Status(http.StatusUnauthorized).
		End()
}

func TestCreateValidationMessages(t *testing.T) {
	ctx := context.Background()
	f, cleanup := acquireFixture(ctx, t)
	defer cleanup()
	bearer, _ := f.loginAs(ctx, t, "testuser", "testpassword")

	apitest.Handler(f.handler).
		Post("/tasks").
		Header("Authorization", bearer).
		JSON(fmt.Sprintf(`{"title":"ab","dueDate":"%v"}`, today())).
		Expect(t).
		Status(http.StatusBadRequest).
		Assert(jsonpath.Equal(`$.errors.title[0]`, "title must have at least 3 characters")).
		End()

	apitest.Handler(f.handler).
		Post("/tasks").
		Header("Authorization", bearer).
		JSON(`{"title":"Valid Title"}`).
		Expect(t).
		Status(http.StatusBadRequest).
		Assert(jsonpath.Equal(`$.errors.dueDate[0]`, "due date is required")).
		End()
}

func TestUpdateRejectsMismatchedID(t *testing.T) {
	ctx := context.Background()
	f, cleanup := acquireFixture(ctx, t)
	defer cleanup()
	bearer, callerID := f.loginAs(ctx, t, "testuser", "testpassword")

	due, err := task.ParseDate(today())
	if err != nil {
		t.Fatal(err)
	}
	view, err := f.taskSvc.Create(ctx, callerID, task.Input{Title: "Buy milk", DueDate: due})
	if err != nil {
		t.Fatal(err)
	}

	apitest.Handler(f.handler).
		Put(fmt.Sprintf("/tasks/%v", view.ID)).
		Header("Authorization", bearer).
		JSON(fmt.Sprintf(`{"id":"%v","title":"Buy milk","dueDate":"%v","isCompleted":false}`, uuid.New(), today())).
		Expect(t).
		Status(http.StatusBadRequest).
		End()
}

func TestTasksOfOtherUsersAreInvisible(t *testing.T) {
	ctx := context.Background()
	f, cleanup := acquireFixture(ctx, t)
	defer cleanup()
	_, aliceID := f.loginAs(ctx, t, "alice", "alicepassword")
	bobBearer, _ := f.loginAs(ctx, t, "bob", "bobpassword")

	due, err := task.ParseDate(today())
	if err != nil {
		t.Fatal(err)
	}
	view, err := f.taskSvc.Create(ctx, aliceID, task.Input{Title: "Private task", DueDate: due})
	if err != nil {
		t.Fatal(err)
	}

	apitest.Handler(f.handler).
		Get(fmt.Sprintf("/tasks/%v", view.ID)).
		Header("Authorization", bobBearer).
		Expect(t).
		Status(http.StatusNotFound).
		End()

	apitest.Handler(f.handler).
		Put(fmt.Sprintf("/tasks/%v", view.ID)).
		Header("Authorization", bobBearer).
		JSON(fmt.Sprintf(`{"id":"%v","title":"Hijacked","dueDate":"%v","isCompleted":false}`, view.ID, today())).
		Expect(t).
		Status(http.StatusNotFound).
		End()

	apitest.Handler(f.handler).
		Delete(fmt.Sprintf("/tasks/%v", view.ID)).
		Header("Authorization", bobBearer).
		Expect(t).
		Status(http.StatusNotFound).
		End()

	apitest.Handler(f.handler).
		Get("/tasks").
		Header("Authorization", bobBearer).
		Expect(t).
		Status(http.StatusOK).
		Assert(jsonpath.Len(`$`, 0)).
		End()
}

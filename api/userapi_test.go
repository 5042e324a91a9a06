package api_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi"
	"github.com/pkg/errors"
	"github.com/sksmith/print-factory/api"
	"github.com/sksmith/print-factory/core/user"
	"github.com/sksmith/print-factory/testutil"
)

func setupUserTestServer() (*httptest.Server, *user.MockUserService) {
	mockSvc := user.NewMockUserService()

	// admin/adminpass is an administrator, scott/floorpass is not.
	mockSvc.LoginFunc = func(ctx context.Context, username, password string) (user.User, error) {
		switch {
		case username == "admin" && password == "adminpass":
			return user.User{Username: "admin", IsAdmin: true}, nil
		case username == "scott" && password == "floorpass":
			return user.User{Username: "scott"}, nil
		default:
			return user.User{}, errors.New("bad credentials")
		}
	}

	userApi := api.NewUserApi(&mockSvc)
	r := chi.NewRouter()
	r.With(api.Authenticate(&mockSvc)).Route("/user", userApi.ConfigureRouter)
	ts := httptest.NewServer(r)

	return ts, &mockSvc
}

func TestUserCreate(t *testing.T) {
	ts, mockSvc := setupUserTestServer()
	defer ts.Close()

	body := map[string]interface{}{
		"username": "newoperator",
		"password": "printallday",
		"isAdmin":  false,
	}

	tests := []struct {
		name string

		options []testutil.RequestOptions

		wantStatusCode int
		wantCreated    bool
	}{
		{
			name:           "admin creates a user",
			options:        []testutil.RequestOptions{{Username: "admin", Password: "adminpass"}},
			wantStatusCode: http.StatusCreated,
			wantCreated:    true,
		},
		{
			name:           "non-admin is refused",
			options:        []testutil.RequestOptions{{Username: "scott", Password: "floorpass"}},
			wantStatusCode: http.StatusUnauthorized,
		},
		{
			name:           "no credentials",
			wantStatusCode: http.StatusUnauthorized,
		},
		{
			name:           "bad credentials",
			options:        []testutil.RequestOptions{{Username: "admin", Password: "wrong"}},
			wantStatusCode: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var created *user.CreateUserRequest
			mockSvc.CreateFunc = func(ctx context.Context, req user.CreateUserRequest) (user.User, error) {
				created = &req
				return user.User{Username: req.Username, IsAdmin: req.IsAdmin}, nil
			}

			res := testutil.Post(ts.URL+"/user", body, t, tt.options...)

			if res.StatusCode != tt.wantStatusCode {
				t.Errorf("status code got=[%d] want=[%d]", res.StatusCode, tt.wantStatusCode)
			}

			if tt.wantCreated {
				if created == nil {
					t.Fatal("expected the service to be called")
				}
				if created.PlainTextPassword != "printallday" {
					t.Errorf("password got=[%s] want=[printallday]", created.PlainTextPassword)
				}
			} else if created != nil {
				t.Error("service called without authorization")
			}
		})
	}
}

func TestUserGet(t *testing.T) {
	ts, mockSvc := setupUserTestServer()
	defer ts.Close()

	mockSvc.GetFunc = func(ctx context.Context, username string) (user.User, error) {
		return user.User{Username: username, HashedPassword: "secret-hash"}, nil
	}

	req, err := http.NewRequest(http.MethodGet, ts.URL+"/user/scott", nil)
	if err != nil {
		t.Fatal(err)
	}
	req.SetBasicAuth("admin", "adminpass")

	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}

	if res.StatusCode != http.StatusOK {
		t.Errorf("status code got=[%d] want=[%d]", res.StatusCode, http.StatusOK)
	}

	got := map[string]interface{}{}
	testutil.Unmarshal(res, &got, t)

	if got["username"] != "scott" {
		t.Errorf("username got=[%v] want=[scott]", got["username"])
	}
	if _, leaked := got["hashedPassword"]; leaked {
		t.Error("hashed password leaked in the response")
	}
}

package user

import "context"

type MockUserService struct {
	CreateFunc func(ctx context.Context, req CreateUserRequest) (User, error)
	GetFunc    func(ctx context.Context, username string) (User, error)
	DeleteFunc func(ctx context.Context, username string) error
	LoginFunc  func(ctx context.Context, username, password string) (User, error)
}

func NewMockUserService() MockUserService {
	return MockUserService{
		CreateFunc: func(ctx context.Context, req CreateUserRequest) (User, error) { return User{}, nil },
		GetFunc:    func(ctx context.Context, username string) (User, error) { return User{}, nil },
		DeleteFunc: func(ctx context.Context, username string) error { return nil },
		LoginFunc:  func(ctx context.Context, username, password string) (User, error) { return User{}, nil },
	}
}

func (s *MockUserService) Create(ctx context.Context, req CreateUserRequest) (User, error) {
	return s.CreateFunc(ctx, req)
}

func (s *MockUserService) Get(ctx context.Context, username string) (User, error) {
	return s.GetFunc(ctx, username)
}

func (s *MockUserService) Delete(ctx context.Context, username string) error {
	return s.DeleteFunc(ctx, username)
}

func (s *MockUserService) Login(ctx context.Context, username, password string) (User, error) {
	return s.LoginFunc(ctx, username, password)
}

package service

import (
	"context"

	"backend/internal/model"
	"backend/internal/repository"
	"backend/internal/rpc"
	"backend/pkg/apperr"
	"backend/pkg/pagination"

	"golang.org/x/crypto/bcrypt"
)

// --- DTOs ---

type CreateUserDTO struct {
	Username string `json:"username" binding:"required,min=3,max=100"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	FullName string `json:"full_name"`
}

// --- Interface ---

type UserService interface {
	Create(ctx context.Context, caller rpc.Caller, tracing rpc.Tracing, req CreateUserDTO) (*model.User, error)
	GetByID(ctx context.Context, id string) (*model.User, error)
	List(ctx context.Context, page, limit int) (rpc.Page, error)
}

type userService struct {
	repo  repository.UserRepository
	audit AuditService
}

func NewUserService(repo repository.UserRepository, audit AuditService) UserService {
	return &userService{repo: repo, audit: audit}
}

// --- Implementation ---

func (s *userService) Create(ctx context.Context, caller rpc.Caller, tracing rpc.Tracing, req CreateUserDTO) (*model.User, error) {
	_, lookupErr := s.repo.FindByUsername(ctx, req.Username)
	if err := checkUnique(lookupErr, "usernameExists", "username %s is taken", req.Username); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperr.Internal("hash password: %s", err.Error())
	}

	user := model.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: string(hash),
		FullName:     req.FullName,
	}

	if err := s.repo.Create(ctx, &user); err != nil {
		return nil, apperr.Internal("create user: %s", err.Error())
	}

	s.audit.Record(ctx, caller, tracing, model.ActionUserCreated, user.ID.String(), user.Username, nil)
	return &user, nil
}

func (s *userService) GetByID(ctx context.Context, id string) (*model.User, error) {
	userID, err := parseID(id, "id")
	if err != nil {
		return nil, err
	}

	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, notFoundOr(err, "userNotFound", "user %s not found", id)
	}
	return user, nil
}

func (s *userService) List(ctx context.Context, page, limit int) (rpc.Page, error) {
	p := pagination.Clamp(page, limit)
	users, total, err := s.repo.List(ctx, p.Offset, p.Limit)
	if err != nil {
		return rpc.Page{}, apperr.Internal("list users: %s", err.Error())
	}
	return rpc.Page{Docs: users, Limit: p.Limit, Page: p.Page, Total: total}, nil
}

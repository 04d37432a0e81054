package service

import (
	"errors"
	"strings"

	"go-marketplace-api/internal/model"
	"go-marketplace-api/internal/repository"
	"go-marketplace-api/pkg/apperror"
	"go-marketplace-api/pkg/jwt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrInvalidCredentials = apperror.Unauthorized("invalid email or password")
	ErrUserNotFound       = apperror.NotFound("user not found")
	ErrUserInactive       = apperror.Unauthorized("user account is inactive")
	ErrWrongPassword      = apperror.BadRequest("current password is incorrect")
	ErrSessionReplaced    = apperror.Unauthorized("session expired (logged in on another device)")
	ErrInvalidToken       = apperror.Unauthorized("invalid or expired token")
)

type AuthService interface {
	Register(req *RegisterRequest) (*LoginResponse, error)
	Login(email, password string) (*LoginResponse, error)
	Logout(userID uuid.UUID) error
	ResetPassword(req *ResetPasswordRequest) error
	ValidateToken(tokenString string) (*TokenValidationResponse, error)
	Me(userID uuid.UUID) (*TokenValidationResponse, error)
}

type RegisterRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=6"`
	FullName    string `json:"full_name" validate:"required"`
	PhoneNumber string `json:"phone_number"`
	AccountType string `json:"account_type" validate:"omitempty,oneof=customer vendor"`
}

type ResetPasswordRequest struct {
	Email       string `json:"email" validate:"required,email"`
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=6"`
}

type LoginResponse struct {
	Token      string             `json:"token"`
	User       model.UserResponse `json:"user"`
	Role       *model.Role        `json:"role"`
	Privileges []string           `json:"privileges"`
}

type TokenValidationResponse struct {
	User       model.UserResponse `json:"user"`
	Role       *model.Role        `json:"role"`
	Privileges []string           `json:"privileges"`
}

type authService struct {
	db         *gorm.DB
	userRepo   repository.UserRepository
	roleRepo   repository.RoleRepository
	walletRepo repository.WalletRepository
	jwt        *jwt.Manager
}

func NewAuthService(db *gorm.DB, userRepo repository.UserRepository, roleRepo repository.RoleRepository, walletRepo repository.WalletRepository, jwtManager *jwt.Manager) AuthService {
	return &authService{
		db:         db,
		userRepo:   userRepo,
		roleRepo:   roleRepo,
		walletRepo: walletRepo,
		jwt:        jwtManager,
	}
}

func (s *authService) Register(req *RegisterRequest) (*LoginResponse, error) {
	if err := validate(req); err != nil {
		return nil, err
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))

	if existing, _ := s.userRepo.FindByEmail(email); existing != nil {
		return nil, ErrEmailExists
	}

	roleCode := model.RoleCustomer
	if req.AccountType == "vendor" {
		roleCode = model.RoleVendor
	}
	role, err := s.roleRepo.FindByCode(roleCode)
	if err != nil {
		return nil, notFound(err, ErrRoleNotFound)
	}

	user := &model.User{
		Email:       email,
		FullName:    req.FullName,
		PhoneNumber: req.PhoneNumber,
		RoleID:      &role.ID,
		IsActive:    true,
		Privileges:  role.Privileges,
	}
	user.Audit("self")
	if err := user.SetPassword(req.Password); err != nil {
		return nil, errors.New("failed to hash password")
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := repository.NewUserRepo(tx).Create(user); err != nil {
			return err
		}
		return s.walletRepo.WithTx(tx).Create(&model.UserWallet{UserID: user.ID, Balance: decimal.Zero})
	})
	if err != nil {
		return nil, err
	}

	return s.Login(email, req.Password)
}

func (s *authService) Login(email, password string) (*LoginResponse, error) {
	user, err := s.userRepo.FindByEmail(strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	if !user.IsActive {
		return nil, ErrUserInactive
	}

	if !user.CheckPassword(password) {
		return nil, ErrInvalidCredentials
	}

	// Single session: a new token version invalidates older tokens.
	newTokenVersion := uuid.New().String()
	loginAt := now()
	if err := s.userRepo.UpdateLastLogin(user.ID, newTokenVersion, loginAt); err != nil {
		return nil, errors.New("failed to update session")
	}
	user.TokenVersion = newTokenVersion
	user.LastLoginAt = &loginAt

	token, err := s.jwt.GenerateToken(user.ID, user.Email, user.FullName, user.RoleCode(), user.GetPrivilegeCodes(), newTokenVersion)
	if err != nil {
		return nil, errors.New("failed to generate token")
	}

	return &LoginResponse{
		Token:      token,
		User:       user.ToResponse(),
		Role:       user.Role,
		Privileges: user.GetPrivilegeCodes(),
	}, nil
}

func (s *authService) Logout(userID uuid.UUID) error {
	return s.userRepo.UpdateTokenVersion(userID, uuid.New().String())
}

func (s *authService) ResetPassword(req *ResetPasswordRequest) error {
	if err := validate(req); err != nil {
		return err
	}

	user, err := s.userRepo.FindByEmail(strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		return ErrUserNotFound
	}

	if !user.CheckPassword(req.OldPassword) {
		return ErrWrongPassword
	}

	if err := user.SetPassword(req.NewPassword); err != nil {
		return errors.New("failed to hash new password")
	}
	if err := s.userRepo.UpdatePassword(user.ID, user.Password); err != nil {
		return err
	}

	// Sign out every device.
	return s.userRepo.UpdateTokenVersion(user.ID, uuid.New().String())
}

func (s *authService) ValidateToken(tokenString string) (*TokenValidationResponse, error) {
	claims, err := s.jwt.ValidateToken(tokenString)
	if err != nil {
		return nil, ErrInvalidToken
	}

	user, err := s.userRepo.FindByID(claims.UserID)
	if err != nil {
		return nil, ErrUserNotFound
	}
	if !user.IsActive {
		return nil, ErrUserInactive
	}
	if user.TokenVersion != claims.TokenVersion {
		return nil, ErrSessionReplaced
	}

	return validationResponse(user), nil
}

func (s *authService) Me(userID uuid.UUID) (*TokenValidationResponse, error) {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		return nil, notFound(err, ErrUserNotFound)
	}
	return validationResponse(user), nil
}

func validationResponse(user *model.User) *TokenValidationResponse {
	return &TokenValidationResponse{
		User:       user.ToResponse(),
		Role:       user.Role,
		Privileges: user.GetPrivilegeCodes(),
	}
}

package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"wikiadmin/internal/auth"
	"wikiadmin/internal/cache"
	"wikiadmin/internal/models"
	"wikiadmin/internal/observability"
	"wikiadmin/internal/repository"
	"wikiadmin/internal/validation"

	ozzo "github.com/go-ozzo/ozzo-validation/v4"
	"golang.org/x/crypto/bcrypt"
)

// AccountService owns login, admin accounts, normal users and the caller's
// own profile. Tier checks happen at the route; the target-role rules that
// depend on stored rows are enforced here.
type AccountService struct {
	users repository.UserRepository
	codec *auth.Codec
	cost  int
	now   func() time.Time
}

// PublicUser is the account shape returned next to a fresh token.
type PublicUser struct {
	ID       uint        `json:"id"`
	Username string      `json:"username"`
	Email    *string     `json:"email"`
	Role     models.Role `json:"role"`
	Avatar   string      `json:"avatar"`
}

type LoginInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
	IP       string `json:"-"`
}

type LoginResult struct {
	Token string     `json:"token"`
	User  PublicUser `json:"user"`
}

// CreateAccountInput is shared by admin and user creation. Role is ignored
// for normal users.
type CreateAccountInput struct {
	Username string            `json:"username"`
	Password string            `json:"password"`
	Email    string            `json:"email"`
	Nickname string            `json:"nickname"`
	Role     models.Role       `json:"role"`
	Status   models.UserStatus `json:"status"`
}

// UpdateAccountInput carries a partial update; nil fields are left alone.
type UpdateAccountInput struct {
	Email    *string            `json:"email"`
	Nickname *string            `json:"nickname"`
	Avatar   *string            `json:"avatar"`
	Role     *models.Role       `json:"role"`
	Status   *models.UserStatus `json:"status"`
	Password *string            `json:"password"`
}

type ProfileInput struct {
	Nickname *string `json:"nickname"`
	Email    *string `json:"email"`
	Avatar   *string `json:"avatar"`
	Bio      *string `json:"bio"`
}

type ChangePasswordInput struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

type AccountListInput struct {
	Keyword  string
	Status   models.UserStatus
	Page     int
	PageSize int
}

func NewAccountService(users repository.UserRepository, codec *auth.Codec) *AccountService {
	return &AccountService{
		users: users,
		codec: codec,
		cost:  bcrypt.DefaultCost,
		now:   time.Now,
	}
}

// Login verifies credentials and issues a token. Only active admin accounts
// may sign in to the back office.
func (s *AccountService) Login(ctx context.Context, in LoginInput) (*LoginResult, error) {
	err := ozzo.ValidateStruct(&in,
		ozzo.Field(&in.Username, ozzo.Required),
		ozzo.Field(&in.Password, ozzo.Required),
	)
	if err != nil {
		return nil, validation.AsAppError(err)
	}

	user, err := s.users.GetByUsername(ctx, strings.TrimSpace(in.Username))
	if err != nil {
		return nil, err
	}
	if user == nil {
		observability.LoginAttempts.WithLabelValues("unknown_user").Inc()
		return nil, models.NewUnauthorizedError("Invalid username or password")
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(in.Password)) != nil {
		observability.LoginAttempts.WithLabelValues("bad_password").Inc()
		return nil, models.NewUnauthorizedError("Invalid username or password")
	}
	if !user.Role.IsAdmin() {
		observability.LoginAttempts.WithLabelValues("not_admin").Inc()
		return nil, models.NewForbiddenError("This account cannot sign in to the admin console")
	}
	if !user.IsActive() {
		observability.LoginAttempts.WithLabelValues("inactive").Inc()
		return nil, models.NewForbiddenError("Account is disabled")
	}

	at := s.now()
	if err := s.users.RecordLogin(ctx, user.ID, in.IP, at); err != nil {
		return nil, err
	}
	token, _, err := s.codec.Issue(auth.Identity{ID: user.ID, Username: user.Username, Role: user.Role}, nil)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	observability.LoginAttempts.WithLabelValues("success").Inc()

	return &LoginResult{Token: token, User: toPublicUser(user)}, nil
}

// Logout revokes the presented token until it would have expired anyway.
func (s *AccountService) Logout(ctx context.Context, claims *auth.Claims) error {
	if claims == nil || claims.ExpiresAt == nil {
		return nil
	}
	if err := cache.RevokeToken(ctx, claims.RegisteredClaims.ID, claims.ExpiresAt.Time); err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (s *AccountService) ListAdmins(ctx context.Context, in AccountListInput) (models.Page[models.User], error) {
	return s.list(ctx, models.AdminRoles, in)
}

func (s *AccountService) ListUsers(ctx context.Context, in AccountListInput) (models.Page[models.User], error) {
	return s.list(ctx, []models.Role{models.RoleUser}, in)
}

func (s *AccountService) list(ctx context.Context, roles []models.Role, in AccountListInput) (models.Page[models.User], error) {
	if in.Status != "" && !in.Status.Valid() {
		return models.Page[models.User]{}, models.NewValidationError("invalid status")
	}
	page, pageSize := normalizePage(in.Page, in.PageSize)
	users, total, err := s.users.List(ctx, repository.UserFilter{
		Roles:    roles,
		Keyword:  strings.TrimSpace(in.Keyword),
		Status:   in.Status,
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		return models.Page[models.User]{}, err
	}
	return models.NewPage(users, total, page, pageSize), nil
}

// GetAdmin hides normal users behind NotFound.
func (s *AccountService) GetAdmin(ctx context.Context, id uint) (*models.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !user.Role.IsAdmin() {
		return nil, models.NewNotFoundError("Admin", id)
	}
	return user, nil
}

func (s *AccountService) CreateAdmin(ctx context.Context, in CreateAccountInput) (*models.User, error) {
	if !in.Role.IsAdmin() {
		return nil, models.NewValidationError("role must be SUPER_ADMIN or REVIEWER")
	}
	return s.create(ctx, in)
}

func (s *AccountService) CreateUser(ctx context.Context, in CreateAccountInput) (*models.User, error) {
	in.Role = models.RoleUser
	return s.create(ctx, in)
}

func (s *AccountService) create(ctx context.Context, in CreateAccountInput) (*models.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	if in.Status == "" {
		in.Status = models.UserStatusActive
	}
	err := ozzo.ValidateStruct(&in,
		ozzo.Field(&in.Username, ozzo.Required, validation.UsernameRule),
		ozzo.Field(&in.Password, ozzo.Required, validation.PasswordRule),
		ozzo.Field(&in.Email, validation.EmailRule),
		ozzo.Field(&in.Nickname, ozzo.RuneLength(0, 50)),
		ozzo.Field(&in.Status, ozzo.By(validStatus)),
	)
	if err != nil {
		return nil, validation.AsAppError(err)
	}

	if err := s.ensureUsernameFree(ctx, in.Username); err != nil {
		return nil, err
	}
	var email *string
	if in.Email != "" {
		if err := s.ensureEmailFree(ctx, in.Email, 0); err != nil {
			return nil, err
		}
		email = &in.Email
	}

	hash, err := s.hash(in.Password)
	if err != nil {
		return nil, err
	}
	user := &models.User{
		Username: in.Username,
		Email:    email,
		Password: hash,
		Nickname: in.Nickname,
		Role:     in.Role,
		Status:   in.Status,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *AccountService) UpdateAdmin(ctx context.Context, id uint, in UpdateAccountInput) (*models.User, error) {
	if _, err := s.GetAdmin(ctx, id); err != nil {
		return nil, err
	}
	if in.Role != nil && !in.Role.IsAdmin() {
		return nil, models.NewValidationError("role must be SUPER_ADMIN or REVIEWER")
	}
	return s.update(ctx, id, in)
}

// DeleteAdmin soft-deletes an admin account. Nobody deletes themselves.
func (s *AccountService) DeleteAdmin(ctx context.Context, actor *models.User, id uint) error {
	if actor != nil && actor.ID == id {
		return models.NewForbiddenError("You cannot delete your own account")
	}
	if _, err := s.GetAdmin(ctx, id); err != nil {
		return err
	}
	return s.users.SoftDelete(ctx, id)
}

// normalUser loads id and rejects any row that is not a normal user.
func (s *AccountService) normalUser(ctx context.Context, id uint) (*models.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user.Role != models.RoleUser {
		return nil, models.NewForbiddenError("Only normal user accounts can be managed here")
	}
	return user, nil
}

func (s *AccountService) UpdateUser(ctx context.Context, id uint, in UpdateAccountInput) (*models.User, error) {
	if _, err := s.normalUser(ctx, id); err != nil {
		return nil, err
	}
	if in.Role != nil && *in.Role != models.RoleUser {
		return nil, models.NewForbiddenError("Normal users cannot be promoted here")
	}
	return s.update(ctx, id, in)
}

func (s *AccountService) DeleteUser(ctx context.Context, id uint) error {
	if _, err := s.normalUser(ctx, id); err != nil {
		return err
	}
	return s.users.SoftDelete(ctx, id)
}

// SetStatus changes any account's status. A super-admin's status may only be
// changed by another super-admin.
func (s *AccountService) SetStatus(ctx context.Context, actor *models.User, id uint, status models.UserStatus) (*models.User, error) {
	if !status.Valid() {
		return nil, models.NewValidationError("status must be ACTIVE, INACTIVE or BANNED")
	}
	target, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if target.Role == models.RoleSuperAdmin && (actor == nil || actor.Role != models.RoleSuperAdmin) {
		return nil, models.NewForbiddenError("Only a super admin can change a super admin's status")
	}
	if err := s.users.Update(ctx, id, map[string]any{"status": status}); err != nil {
		return nil, err
	}
	return s.users.GetByID(ctx, id)
}

func (s *AccountService) update(ctx context.Context, id uint, in UpdateAccountInput) (*models.User, error) {
	fields := map[string]any{}
	if in.Email != nil {
		email := strings.TrimSpace(*in.Email)
		if email == "" {
			fields["email"] = nil
		} else {
			if err := validation.ValidateEmail(email); err != nil {
				return nil, models.NewValidationError("email: " + err.Error())
			}
			if err := s.ensureEmailFree(ctx, email, id); err != nil {
				return nil, err
			}
			fields["email"] = email
		}
	}
	if in.Nickname != nil {
		if err := ozzo.Validate(*in.Nickname, ozzo.RuneLength(0, 50)); err != nil {
			return nil, models.NewValidationError("nickname: " + err.Error())
		}
		fields["nickname"] = *in.Nickname
	}
	if in.Avatar != nil {
		fields["avatar"] = *in.Avatar
	}
	if in.Role != nil {
		if !in.Role.Valid() {
			return nil, models.NewValidationError("invalid role")
		}
		fields["role"] = *in.Role
	}
	if in.Status != nil {
		if !in.Status.Valid() {
			return nil, models.NewValidationError("invalid status")
		}
		fields["status"] = *in.Status
	}
	if in.Password != nil && *in.Password != "" {
		if err := validation.ValidatePassword(*in.Password); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		hash, err := s.hash(*in.Password)
		if err != nil {
			return nil, err
		}
		fields["password"] = hash
	}

	if len(fields) > 0 {
		if err := s.users.Update(ctx, id, fields); err != nil {
			return nil, err
		}
	}
	return s.users.GetByID(ctx, id)
}

// ProfileView is the caller's own account as shown on the profile page.
type ProfileView struct {
	ID          uint              `json:"id"`
	Username    string            `json:"username"`
	Email       *string           `json:"email"`
	Nickname    string            `json:"nickname"`
	Avatar      string            `json:"avatar"`
	Bio         string            `json:"bio"`
	Role        models.Role       `json:"role"`
	Status      models.UserStatus `json:"status"`
	LoginCount  int               `json:"loginCount"`
	LastLoginAt *time.Time        `json:"lastLoginAt"`
	CreatedAt   time.Time         `json:"createdAt"`
}

func (s *AccountService) Profile(ctx context.Context, id uint) (*ProfileView, error) {
	var view ProfileView
	err := cache.CacheAside(ctx, cache.UserKey(id), &view, cache.UserTTL, func() error {
		user, err := s.users.GetByID(ctx, id)
		if err != nil {
			return err
		}
		view = ProfileView{
			ID:          user.ID,
			Username:    user.Username,
			Email:       user.Email,
			Nickname:    user.Nickname,
			Avatar:      user.Avatar,
			Bio:         user.Bio,
			Role:        user.Role,
			Status:      user.Status,
			LoginCount:  user.LoginCount,
			LastLoginAt: user.LastLoginAt,
			CreatedAt:   user.CreatedAt,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &view, nil
}

func (s *AccountService) UpdateProfile(ctx context.Context, id uint, in ProfileInput) (*ProfileView, error) {
	if in.Bio != nil {
		if err := ozzo.Validate(*in.Bio, ozzo.RuneLength(0, 500)); err != nil {
			return nil, models.NewValidationError("bio: " + err.Error())
		}
	}
	_, err := s.update(ctx, id, UpdateAccountInput{Email: in.Email, Nickname: in.Nickname, Avatar: in.Avatar})
	if err != nil {
		return nil, err
	}
	if in.Bio != nil {
		if err := s.users.Update(ctx, id, map[string]any{"bio": *in.Bio}); err != nil {
			return nil, err
		}
	}
	return s.Profile(ctx, id)
}

// SetAvatar records an uploaded avatar URL on the account.
func (s *AccountService) SetAvatar(ctx context.Context, id uint, url string) error {
	return s.users.Update(ctx, id, map[string]any{"avatar": url})
}

func (s *AccountService) ChangePassword(ctx context.Context, id uint, in ChangePasswordInput) error {
	err := ozzo.ValidateStruct(&in,
		ozzo.Field(&in.OldPassword, ozzo.Required),
		ozzo.Field(&in.NewPassword, ozzo.Required, validation.PasswordRule),
	)
	if err != nil {
		return validation.AsAppError(err)
	}
	if in.OldPassword == in.NewPassword {
		return models.NewValidationError("New password must differ from the current one")
	}
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(in.OldPassword)) != nil {
		return models.NewValidationError("Current password is incorrect")
	}
	hash, err := s.hash(in.NewPassword)
	if err != nil {
		return err
	}
	return s.users.Update(ctx, id, map[string]any{"password": hash})
}

func (s *AccountService) ensureUsernameFree(ctx context.Context, username string) error {
	taken, err := s.users.UsernameTaken(ctx, username, 0)
	if err != nil {
		return err
	}
	if taken {
		return models.NewConflictError("username", "Username already exists")
	}
	return nil
}

func (s *AccountService) ensureEmailFree(ctx context.Context, email string, excludeID uint) error {
	taken, err := s.users.EmailTaken(ctx, email, excludeID)
	if err != nil {
		return err
	}
	if taken {
		return models.NewConflictError("email", "Email already in use")
	}
	return nil
}

func (s *AccountService) hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", models.NewValidationError("password is too long")
		}
		return "", models.NewInternalError(err)
	}
	return string(hash), nil
}

func validStatus(v any) error {
	if s, ok := v.(models.UserStatus); ok && (s == "" || s.Valid()) {
		return nil
	}
	return errors.New("must be ACTIVE, INACTIVE or BANNED")
}

func toPublicUser(u *models.User) PublicUser {
	return PublicUser{ID: u.ID, Username: u.Username, Email: u.Email, Role: u.Role, Avatar: u.Avatar}
}

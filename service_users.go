package folio

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// UserInput is the validated content of a user form. An empty Password on
// update keeps the current one.
type UserInput struct {
	Username string
	Email    string
	Password string
	IsAdmin  bool
}

// dummyHash is compared against when the email is unknown, so a miss costs
// the same as a wrong password.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("folio-placeholder"), bcrypt.MinCost)

// Authenticate returns the user with email if password matches.
func (s *Service) Authenticate(ctx context.Context, email, password string) (User, error) {
	u, err := s.store.GetUserByEmail(ctx, strings.TrimSpace(email))
	if errors.Is(err, ErrNotFound) {
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		return User{}, ErrInvalidCredentials
	}
	if err != nil {
		return User{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return User{}, ErrInvalidCredentials
	}
	return u, nil
}

func (s *Service) checkUserUnique(ctx context.Context, in UserInput, excludeID int64) error {
	taken, err := s.store.UserFieldTaken(ctx, "username", in.Username, excludeID)
	if err != nil {
		return err
	}
	if taken {
		return invalid("username", "username already exists")
	}
	taken, err = s.store.UserFieldTaken(ctx, "email", in.Email, excludeID)
	if err != nil {
		return err
	}
	if taken {
		return invalid("email", "email already registered")
	}
	return nil
}

// duplicateUserError converts a unique-constraint backstop hit into the
// same form error the pre-check would have produced.
func duplicateUserError(err error) error {
	switch col, _ := duplicateColumn(err); col {
	case "username":
		return invalid("username", "username already exists")
	case "email":
		return invalid("email", "email already registered")
	}
	return err
}

func (s *Service) hash(password string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(h), nil
}

// CreateUser adds an account after checking username and email are free.
func (s *Service) CreateUser(ctx context.Context, in UserInput) (User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	if in.Password == "" {
		return User{}, invalid("password", "password is required")
	}
	if err := s.checkUserUnique(ctx, in, 0); err != nil {
		return User{}, err
	}
	hash, err := s.hash(in.Password)
	if err != nil {
		return User{}, err
	}
	u := User{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hash,
		IsAdmin:      in.IsAdmin,
		CreatedAt:    s.now(),
	}
	if err := s.store.CreateUser(ctx, &u); err != nil {
		return User{}, duplicateUserError(err)
	}
	s.log.Info("user created", "id", u.ID, "username", u.Username, "admin", u.IsAdmin)
	return u, nil
}

// UpdateUser edits account id. The password changes only when given.
func (s *Service) UpdateUser(ctx context.Context, id int64, in UserInput) (User, error) {
	u, err := s.store.GetUser(ctx, id)
	if err != nil {
		return User{}, err
	}
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	if err := s.checkUserUnique(ctx, in, id); err != nil {
		return User{}, err
	}
	u.Username = in.Username
	u.Email = in.Email
	u.IsAdmin = in.IsAdmin
	if in.Password != "" {
		if u.PasswordHash, err = s.hash(in.Password); err != nil {
			return User{}, err
		}
	}
	if err := s.store.UpdateUser(ctx, &u); err != nil {
		return User{}, duplicateUserError(err)
	}
	return u, nil
}

// DeleteUser removes account id on behalf of actor, who inherits its posts
// and uploads. Actors cannot delete themselves.
func (s *Service) DeleteUser(ctx context.Context, id int64, actor Caller) error {
	if id == actor.UserID {
		return ErrSelfDelete
	}
	if err := s.store.DeleteUser(ctx, id, actor.UserID); err != nil {
		return err
	}
	s.log.Info("user deleted", "id", id, "posts_reassigned_to", actor.UserID)
	return nil
}

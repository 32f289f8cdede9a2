package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"tasknest/internal/model"
	"tasknest/internal/repository"
)

// PNG signature plus the start of an IHDR chunk; enough for type sniffing.
var tinyPNG = []byte{
	0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n',
	0x00, 0x00, 0x00, 0x0d, 'I', 'H', 'D', 'R',
	0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
	0x08, 0x02, 0x00, 0x00, 0x00,
}

func newUserService(db *gorm.DB) *UserService {
	return NewUserService(repository.NewUserRepository(db), nil, 1<<20)
}

func signupUser(t *testing.T, db *gorm.DB, email, password string) *AuthResult {
	t.Helper()

	result, err := newAuthService(db).Signup(context.Background(), SignupInput{
		Name:     "Test",
		Email:    email,
		Password: password,
	})
	require.NoError(t, err)
	return result
}

func TestUpdateProfile(t *testing.T) {
	db := newTestDB(t)
	svc := newUserService(db)
	result := signupUser(t, db, "a@x.com", "Secret1")

	name := "Jess"
	updated, err := svc.UpdateProfile(result.User, UpdateProfileInput{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Jess", updated.Name)

	stored, err := repository.NewUserRepository(db).GetByID(result.User.ID)
	require.NoError(t, err)
	assert.Equal(t, "Jess", stored.Name)
}

func TestUpdateProfile_Validation(t *testing.T) {
	db := newTestDB(t)
	svc := newUserService(db)
	result := signupUser(t, db, "a@x.com", "Secret1")

	empty := ""
	_, err := svc.UpdateProfile(result.User, UpdateProfileInput{Name: &empty})
	assert.ErrorIs(t, err, ErrInvalidInput)

	badEmail := "@example.com"
	_, err = svc.UpdateProfile(result.User, UpdateProfileInput{Email: &badEmail})
	assert.ErrorIs(t, err, ErrInvalidInput)

	badPassword := "worstpassword"
	_, err = svc.UpdateProfile(result.User, UpdateProfileInput{Password: &badPassword})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestUpdateProfile_EmailTaken(t *testing.T) {
	db := newTestDB(t)
	svc := newUserService(db)
	signupUser(t, db, "taken@x.com", "Secret1")
	result := signupUser(t, db, "a@x.com", "Secret1")

	taken := "taken@x.com"
	_, err := svc.UpdateProfile(result.User, UpdateProfileInput{Email: &taken})
	assert.ErrorIs(t, err, ErrEmailExists)
}

func TestUpdateProfile_RehashesPassword(t *testing.T) {
	db := newTestDB(t)
	svc := newUserService(db)
	result := signupUser(t, db, "a@x.com", "Secret1")
	oldHash := result.User.PasswordHash

	password := "NewSecret2"
	updated, err := svc.UpdateProfile(result.User, UpdateProfileInput{Password: &password})
	require.NoError(t, err)
	assert.NotEqual(t, oldHash, updated.PasswordHash)
	assert.NotEqual(t, password, updated.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(updated.PasswordHash), []byte(password)))
}

func TestDeleteAccount_Cascades(t *testing.T) {
	db := newTestDB(t)
	svc := newUserService(db)
	result := signupUser(t, db, "a@x.com", "Secret1")

	taskSvc := newTaskService(db)
	_, err := taskSvc.Create(result.User.ID, CreateTaskInput{Description: "one"})
	require.NoError(t, err)
	_, err = taskSvc.Create(result.User.ID, CreateTaskInput{Description: "two"})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteAccount(context.Background(), result.User))

	stored, err := repository.NewUserRepository(db).GetByID(result.User.ID)
	require.NoError(t, err)
	assert.Nil(t, stored)

	var taskCount int64
	require.NoError(t, db.Model(&model.Task{}).Where("user_id = ?", result.User.ID).Count(&taskCount).Error)
	assert.Zero(t, taskCount)

	var tokenCount int64
	require.NoError(t, db.Model(&model.SessionToken{}).Where("user_id = ?", result.User.ID).Count(&tokenCount).Error)
	assert.Zero(t, tokenCount)
}

func TestSetAvatar(t *testing.T) {
	db := newTestDB(t)
	svc := newUserService(db)
	result := signupUser(t, db, "a@x.com", "Secret1")

	require.NoError(t, svc.SetAvatar(result.User, tinyPNG))

	data, contentType, err := svc.AvatarByUserID(result.User.ID)
	require.NoError(t, err)
	assert.Equal(t, tinyPNG, data)
	assert.Equal(t, "image/png", contentType)
}

func TestSetAvatar_RejectsNonImage(t *testing.T) {
	db := newTestDB(t)
	svc := newUserService(db)
	result := signupUser(t, db, "a@x.com", "Secret1")

	err := svc.SetAvatar(result.User, []byte("just some text"))
	assert.ErrorIs(t, err, ErrAvatarInvalid)
}

func TestSetAvatar_RejectsOversized(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(repository.NewUserRepository(db), nil, 16)
	result := signupUser(t, db, "a@x.com", "Secret1")

	err := svc.SetAvatar(result.User, tinyPNG)
	assert.ErrorIs(t, err, ErrAvatarTooLarge)
}

func TestClearAvatar(t *testing.T) {
	db := newTestDB(t)
	svc := newUserService(db)
	result := signupUser(t, db, "a@x.com", "Secret1")

	require.NoError(t, svc.SetAvatar(result.User, tinyPNG))
	require.NoError(t, svc.ClearAvatar(result.User))

	_, _, err := svc.AvatarByUserID(result.User.ID)
	assert.ErrorIs(t, err, ErrAvatarNotFound)
}

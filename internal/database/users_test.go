package database

import (
	"context"
	"fmt"
	"serwer-cytatow/internal/auth"
	"serwer-cytatow/internal/models"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func createRandomUser(t *testing.T) *models.User {
	hashedPassword, err := auth.HashPassword("secretpassword")
	require.NoError(t, err)

	suffix := uuid.NewString()[:8]
	user, err := testStore.CreateUser(context.Background(), CreateUserParams{
		Username:     fmt.Sprintf("user_%s", suffix),
		Email:        fmt.Sprintf("user_%s@example.com", suffix),
		PasswordHash: hashedPassword,
	})
	require.NoError(t, err)
	require.NotNil(t, user)
	return user
}

func TestCreateUser(t *testing.T) {
	user := createRandomUser(t)

	require.NotZero(t, user.ID)
	require.NotEmpty(t, user.PasswordHash)
	require.NotZero(t, user.CreatedAt)
}

func TestCreateUser_DuplicateEmail(t *testing.T) {
	existing := createRandomUser(t)

	duplicate, err := testStore.CreateUser(context.Background(), CreateUserParams{
		Username:     "different_" + existing.Username,
		Email:        existing.Email,
		PasswordHash: existing.PasswordHash,
	})
	require.ErrorIs(t, err, ErrDuplicateUser)
	require.Nil(t, duplicate)

	// The second user must not have been created.
	var count int
	err = testStore.GetPool().QueryRow(context.Background(),
		"SELECT count(*) FROM users WHERE email = $1", existing.Email).Scan(&count)
	require.NoError(t, err)
	require.Equal(t, 1, count)
}

func TestCreateUser_DuplicateUsername(t *testing.T) {
	existing := createRandomUser(t)

	duplicate, err := testStore.CreateUser(context.Background(), CreateUserParams{
		Username:     existing.Username,
		Email:        "different_" + existing.Email,
		PasswordHash: existing.PasswordHash,
	})
	require.ErrorIs(t, err, ErrDuplicateUser)
	require.Nil(t, duplicate)
}

func TestGetUserByEmail(t *testing.T) {
	user := createRandomUser(t)

	foundUser, err := testStore.GetUserByEmail(context.Background(), user.Email)
	require.NoError(t, err)
	require.NotNil(t, foundUser)
	require.Equal(t, user.ID, foundUser.ID)
	require.Equal(t, user.Username, foundUser.Username)
	require.NotEmpty(t, foundUser.PasswordHash)

	nonExistentUser, err := testStore.GetUserByEmail(context.Background(), "nonexistent@example.com")
	require.NoError(t, err)
	require.Nil(t, nonExistentUser)
}

func TestGetUserByUsernameOrEmail(t *testing.T) {
	user := createRandomUser(t)

	byUsername, err := testStore.GetUserByUsernameOrEmail(context.Background(), user.Username, "no-such@example.com")
	require.NoError(t, err)
	require.NotNil(t, byUsername)
	require.Equal(t, user.ID, byUsername.ID)

	byEmail, err := testStore.GetUserByUsernameOrEmail(context.Background(), "no_such_user", user.Email)
	require.NoError(t, err)
	require.NotNil(t, byEmail)
	require.Equal(t, user.ID, byEmail.ID)

	neither, err := testStore.GetUserByUsernameOrEmail(context.Background(), "no_such_user", "no-such@example.com")
	require.NoError(t, err)
	require.Nil(t, neither)
}

func TestUpdateUserProfile(t *testing.T) {
	user := createRandomUser(t)

	updated, err := testStore.UpdateUserProfile(context.Background(), UpdateUserProfileParams{
		ID:       user.ID,
		Username: user.Username,
		Email:    "updated_" + user.Email,
	})
	require.NoError(t, err)
	require.NotNil(t, updated)
	require.Equal(t, "updated_"+user.Email, updated.Email)
	require.Equal(t, user.Username, updated.Username)
}

func TestUpdateUserProfile_Collision(t *testing.T) {
	user := createRandomUser(t)
	other := createRandomUser(t)

	updated, err := testStore.UpdateUserProfile(context.Background(), UpdateUserProfileParams{
		ID:       user.ID,
		Username: user.Username,
		Email:    other.Email,
	})
	require.ErrorIs(t, err, ErrDuplicateUser)
	require.Nil(t, updated)
}

func TestUpdateUserPassword(t *testing.T) {
	user := createRandomUser(t)

	newHash, err := auth.HashPassword("brandNewPassword")
	require.NoError(t, err)

	err = testStore.UpdateUserPassword(context.Background(), user.ID, newHash)
	require.NoError(t, err)

	reloaded, err := testStore.GetUserByID(context.Background(), user.ID)
	require.NoError(t, err)
	require.NotNil(t, reloaded)
	require.Equal(t, newHash, reloaded.PasswordHash)
	require.True(t, auth.CheckPasswordHash("brandNewPassword", reloaded.PasswordHash))
}

package identity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/unigrievance/gateway/testutils"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	db := testutils.SetupTestDB(t, &User{}, &PendingVerification{})
	return NewStore(db, nil)
}

func testUser() *User {
	return &User{
		Email:        "s1@kluniversity.in",
		StudentID:    "1234567890",
		PasswordHash: "$2a$04$notarealhashnotarealhashnotarealhash",
		Course:       "B.Tech CSE",
		Department:   "CSE",
	}
}

func TestStore_CreateAndFindUser(t *testing.T) {
	store := newTestStore(t)

	user := testUser()
	require.NoError(t, store.CreateUser(user))
	assert.NotZero(t, user.ID)
	assert.False(t, user.IsVerified)

	t.Run("find by email", func(t *testing.T) {
		found, err := store.FindByLogin("s1@kluniversity.in")
		require.NoError(t, err)
		assert.Equal(t, user.ID, found.ID)
	})

	t.Run("find by student id", func(t *testing.T) {
		found, err := store.FindByLogin("1234567890")
		require.NoError(t, err)
		assert.Equal(t, user.Email, found.Email)
	})

	t.Run("missing user", func(t *testing.T) {
		_, err := store.FindByLogin("nobody@kluniversity.in")
		assert.ErrorIs(t, err, ErrUserNotFound)
	})

	t.Run("either identifier matches during registration lookup", func(t *testing.T) {
		found, err := store.FindByEmailOrStudentID("other@kluniversity.in", "1234567890")
		require.NoError(t, err)
		assert.Equal(t, user.ID, found.ID)

		found, err = store.FindByEmailOrStudentID("s1@kluniversity.in", "0000000000")
		require.NoError(t, err)
		assert.Equal(t, user.ID, found.ID)
	})
}

func TestStore_CreateUser_Conflict(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.CreateUser(testUser()))

	t.Run("duplicate email", func(t *testing.T) {
		dup := testUser()
		dup.StudentID = "9999999999"
		assert.ErrorIs(t, store.CreateUser(dup), ErrConflict)
	})

	t.Run("duplicate student id", func(t *testing.T) {
		dup := testUser()
		dup.Email = "s2@kluniversity.in"
		assert.ErrorIs(t, store.CreateUser(dup), ErrConflict)
	})
}

func TestStore_UpdateUnverified(t *testing.T) {
	store := newTestStore(t)

	user := testUser()
	require.NoError(t, store.CreateUser(user))

	user.PasswordHash = "new-hash"
	user.Course = "B.Tech ECE"
	user.Department = "ECE"
	require.NoError(t, store.UpdateUnverified(user))

	found, err := store.FindByEmail(user.Email)
	require.NoError(t, err)
	assert.Equal(t, "new-hash", found.PasswordHash)
	assert.Equal(t, "B.Tech ECE", found.Course)
	assert.Equal(t, "ECE", found.Department)
}

func TestStore_DeleteUnverified(t *testing.T) {
	store := newTestStore(t)

	t.Run("removes unverified user", func(t *testing.T) {
		user := testUser()
		require.NoError(t, store.CreateUser(user))
		require.NoError(t, store.DeleteUnverified(user.Email))

		_, err := store.FindByEmail(user.Email)
		assert.ErrorIs(t, err, ErrUserNotFound)
	})

	t.Run("leaves verified user in place", func(t *testing.T) {
		user := testUser()
		user.Email = "s2@kluniversity.in"
		user.StudentID = "2222222222"
		require.NoError(t, store.CreateUser(user))
		require.NoError(t, store.CompleteVerification(user.Email))

		require.NoError(t, store.DeleteUnverified(user.Email))

		found, err := store.FindByEmail(user.Email)
		require.NoError(t, err)
		assert.True(t, found.IsVerified)
	})
}

func TestStore_PendingLifecycle(t *testing.T) {
	store := newTestStore(t)
	email := "s1@kluniversity.in"

	pending := &PendingVerification{
		Email:        email,
		PasscodeHash: "hash",
		ExpiresAt:    time.Now().Add(10 * time.Minute),
		LastIssuedAt: time.Now(),
	}
	require.NoError(t, store.CreatePending(pending))

	t.Run("at most one pending row per email", func(t *testing.T) {
		dup := &PendingVerification{
			Email:        email,
			PasscodeHash: "other-hash",
			ExpiresAt:    time.Now().Add(10 * time.Minute),
			LastIssuedAt: time.Now(),
		}
		assert.ErrorIs(t, store.CreatePending(dup), ErrConflict)
	})

	t.Run("update in place", func(t *testing.T) {
		pending.ResendCount = 2
		pending.PasscodeHash = "new-hash"
		require.NoError(t, store.UpdatePending(pending))

		found, err := store.FindPending(email)
		require.NoError(t, err)
		assert.Equal(t, 2, found.ResendCount)
		assert.Equal(t, "new-hash", found.PasscodeHash)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, store.DeletePending(email))
		_, err := store.FindPending(email)
		assert.ErrorIs(t, err, ErrPendingNotFound)
	})
}

func TestStore_MarkVerified(t *testing.T) {
	store := newTestStore(t)

	user := testUser()
	require.NoError(t, store.CreateUser(user))

	require.NoError(t, store.MarkVerified(user.Email))
	// Idempotent, and a no-op for absent users.
	require.NoError(t, store.MarkVerified(user.Email))
	require.NoError(t, store.MarkVerified("nobody@kluniversity.in"))

	found, err := store.FindByEmail(user.Email)
	require.NoError(t, err)
	assert.True(t, found.IsVerified)
}

func TestStore_CompleteVerification(t *testing.T) {
	store := newTestStore(t)

	user := testUser()
	require.NoError(t, store.CreateUser(user))
	require.NoError(t, store.CreatePending(&PendingVerification{
		Email:        user.Email,
		PasscodeHash: "hash",
		ExpiresAt:    time.Now().Add(10 * time.Minute),
		LastIssuedAt: time.Now(),
	}))

	require.NoError(t, store.CompleteVerification(user.Email))

	found, err := store.FindByEmail(user.Email)
	require.NoError(t, err)
	assert.True(t, found.IsVerified)

	_, err = store.FindPending(user.Email)
	assert.ErrorIs(t, err, ErrPendingNotFound)
}

func TestPendingVerification_Expired(t *testing.T) {
	expiry := time.Now().Add(10 * time.Minute)
	pending := &PendingVerification{ExpiresAt: expiry}

	assert.False(t, pending.Expired(expiry.Add(-time.Second)))
	// The code is dead at exactly the expiry instant.
	assert.True(t, pending.Expired(expiry))
	assert.True(t, pending.Expired(expiry.Add(time.Second)))
}

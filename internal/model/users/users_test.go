package users

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"max.ks1230/fintrack/internal/entity/user"
	"max.ks1230/fintrack/internal/model/customerr"
	"max.ks1230/fintrack/internal/model/storage"
)

func Test_OnRegister_ShouldCreateAccountWithNormalizedEmail(t *testing.T) {
	ctx := context.Background()
	s := NewStore(storage.NewInMemStorage())

	u, err := s.Register(ctx, "Alice", " Alice@Example.Com ", "secret1")
	require.NoError(t, err)

	assert.NotEmpty(t, u.ID)
	assert.Equal(t, "alice@example.com", u.Email)
	assert.Equal(t, user.PlanFree, u.Plan)
	assert.NotEqual(t, "secret1", u.PasswordHash)
}

func Test_OnRegisterDuplicateEmail_ShouldFailRegardlessOfCase(t *testing.T) {
	ctx := context.Background()
	s := NewStore(storage.NewInMemStorage())

	_, err := s.Register(ctx, "Alice", "alice@example.com", "secret1")
	require.NoError(t, err)

	_, err = s.Register(ctx, "Imposter", "ALICE@example.com", "secret2")

	var derr *customerr.DuplicateEmailError
	assert.ErrorAs(t, err, &derr)
}

func Test_OnRegisterWithBadInput_ShouldFailValidation(t *testing.T) {
	ctx := context.Background()
	s := NewStore(storage.NewInMemStorage())

	var verr *customerr.ValidationError

	_, err := s.Register(ctx, "", "alice@example.com", "secret1")
	assert.ErrorAs(t, err, &verr)

	_, err = s.Register(ctx, "Alice", "not-an-email", "secret1")
	assert.ErrorAs(t, err, &verr)

	_, err = s.Register(ctx, "Alice", "alice@example.com", "short")
	assert.ErrorAs(t, err, &verr)
}

func Test_OnAuthenticate_ShouldAcceptCorrectCredentials(t *testing.T) {
	ctx := context.Background()
	s := NewStore(storage.NewInMemStorage())

	registered, err := s.Register(ctx, "Alice", "alice@example.com", "secret1")
	require.NoError(t, err)

	u, err := s.Authenticate(ctx, "Alice@Example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, registered.ID, u.ID)
}

func Test_OnAuthenticateFailure_ShouldNotRevealWhichFieldWasWrong(t *testing.T) {
	ctx := context.Background()
	s := NewStore(storage.NewInMemStorage())

	_, err := s.Register(ctx, "Alice", "alice@example.com", "secret1")
	require.NoError(t, err)

	var icerr *customerr.InvalidCredentialsError

	_, err = s.Authenticate(ctx, "alice@example.com", "wrong-pass")
	assert.ErrorAs(t, err, &icerr)
	wrongPass := err.Error()

	_, err = s.Authenticate(ctx, "nobody@example.com", "secret1")
	assert.ErrorAs(t, err, &icerr)
	assert.Equal(t, wrongPass, err.Error())
}

func Test_OnSessionLifecycle_ShouldTrackCurrentUser(t *testing.T) {
	ctx := context.Background()
	s := NewStore(storage.NewInMemStorage())

	registered, err := s.Register(ctx, "Alice", "alice@example.com", "secret1")
	require.NoError(t, err)

	_, ok, err := s.Current(ctx, 42)
	require.NoError(t, err)
	assert.False(t, ok)

	s.SetCurrent(42, registered.ID)
	u, ok, err := s.Current(ctx, 42)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, registered.ID, u.ID)

	s.ClearCurrent(42)
	_, ok, err = s.Current(ctx, 42)
	require.NoError(t, err)
	assert.False(t, ok)
}

package auth_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/finsight/internal/apperr"
	"github.com/MrJamesThe3rd/finsight/internal/auth"
)

func TestTokens(t *testing.T) {
	id := uuid.New()

	t.Run("RoundTrip", func(t *testing.T) {
		tokens := auth.NewTokens("secret", time.Hour)

		raw, exp, err := tokens.Issue(id)
		require.NoError(t, err)
		assert.WithinDuration(t, time.Now().Add(time.Hour), exp, time.Minute)

		got, err := tokens.Parse(raw)
		require.NoError(t, err)
		assert.Equal(t, id, got)
	})

	t.Run("Expired", func(t *testing.T) {
		tokens := auth.NewTokens("secret", -time.Minute)

		raw, _, err := tokens.Issue(id)
		require.NoError(t, err)

		_, err = tokens.Parse(raw)
		require.ErrorIs(t, err, auth.ErrInvalidToken)
		assert.ErrorIs(t, err, apperr.ErrUnauthenticated)
	})

	t.Run("WrongSecret", func(t *testing.T) {
		raw, _, err := auth.NewTokens("secret", time.Hour).Issue(id)
		require.NoError(t, err)

		_, err = auth.NewTokens("other", time.Hour).Parse(raw)
		require.ErrorIs(t, err, auth.ErrInvalidToken)
	})

	t.Run("Garbage", func(t *testing.T) {
		_, err := auth.NewTokens("secret", time.Hour).Parse("not-a-token")
		require.ErrorIs(t, err, auth.ErrInvalidToken)
	})
}

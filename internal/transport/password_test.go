package transport_test

import (
	"strings"
	"testing"

	"github.com/casperdev-io/jss-client/internal/transport"
	"github.com/casperdev-io/jss-client/pkg/jss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolvePassword_Literal(t *testing.T) {
	t.Parallel()

	password, err := transport.ResolvePassword(&jss.Config{Password: "hunter2"})
	require.NoError(t, err)
	assert.Equal(t, "hunter2", password)
}

func TestResolvePassword_FromInputLine(t *testing.T) {
	t.Parallel()

	t.Run("first line", func(t *testing.T) {
		t.Parallel()

		password, err := transport.ResolvePassword(&jss.Config{
			PasswordLine:  1,
			PasswordInput: strings.NewReader("secret\nother\n"),
		})
		require.NoError(t, err)
		assert.Equal(t, "secret", password)
	})

	t.Run("later line", func(t *testing.T) {
		t.Parallel()

		password, err := transport.ResolvePassword(&jss.Config{
			PasswordLine:  3,
			PasswordInput: strings.NewReader("ignored\nalso ignored\nsecret\n"),
		})
		require.NoError(t, err)
		assert.Equal(t, "secret", password)
	})

	t.Run("input too short", func(t *testing.T) {
		t.Parallel()

		_, err := transport.ResolvePassword(&jss.Config{
			PasswordLine:  5,
			PasswordInput: strings.NewReader("only\ntwo\n"),
		})
		require.ErrorIs(t, err, jss.ErrMissingConfiguration)
	})
}

func TestResolvePassword_LiteralBeatsOtherModes(t *testing.T) {
	t.Parallel()

	password, err := transport.ResolvePassword(&jss.Config{
		Password:      "literal",
		PasswordLine:  1,
		PasswordInput: strings.NewReader("from-line\n"),
	})
	require.NoError(t, err)
	assert.Equal(t, "literal", password)
}

func TestResolvePassword_NoSource(t *testing.T) {
	t.Parallel()

	_, err := transport.ResolvePassword(&jss.Config{})
	require.ErrorIs(t, err, jss.ErrMissingConfiguration)
}

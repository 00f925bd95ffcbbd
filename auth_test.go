package amqp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlainAuthResponseIsNulSeparated(t *testing.T) {
	a := &PlainAuth{Username: "user", Password: "pass"}
	assert.Equal(t, "PLAIN", a.Mechanism())
	assert.Equal(t, "\x00user\x00pass", a.Response())
}

func TestExternalAuthHasEmptyResponse(t *testing.T) {
	a := &ExternalAuth{}
	assert.Equal(t, "EXTERNAL", a.Mechanism())
	assert.Empty(t, a.Response())
}

func TestTokenAuthDefaultsMechanismToPlain(t *testing.T) {
	a := &TokenAuth{Username: "user", Token: "tok"}
	assert.Equal(t, "PLAIN", a.Mechanism())
	assert.Equal(t, "\x00user\x00tok", a.Response())
}

func TestTokenAuthHonorsExplicitMechanism(t *testing.T) {
	a := &TokenAuth{MechanismName: "XOAUTH2", Username: "user", Token: "tok"}
	assert.Equal(t, "XOAUTH2", a.Mechanism())
}

func TestPickSASLMechanismPrefersClientOrder(t *testing.T) {
	client := []Authentication{&ExternalAuth{}, &PlainAuth{Username: "u", Password: "p"}}
	picked, ok := pickSASLMechanism(client, []string{"PLAIN", "AMQPLAIN"})
	require.True(t, ok)
	assert.Equal(t, "PLAIN", picked.Mechanism())
}

func TestPickSASLMechanismNoneInCommon(t *testing.T) {
	client := []Authentication{&ExternalAuth{}}
	_, ok := pickSASLMechanism(client, []string{"PLAIN"})
	assert.False(t, ok)
}

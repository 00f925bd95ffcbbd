package amqp

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShufflingResolverTriesEveryCandidateUntilSuccess(t *testing.T) {
	candidates := []Endpoint{
		{Host: "a", Port: 1},
		{Host: "b", Port: 2},
		{Host: "c", Port: 3},
	}
	r := NewShufflingResolver(candidates)

	tried := map[string]bool{}
	transport, ep, err := r.SelectOne(func(e Endpoint) (Transport, error) {
		tried[e.Host] = true
		if e.Host != "c" {
			return nil, errors.New("refused")
		}
		return nil, nil
	})

	succeeded := -1
	for i, e := range r.(*shufflingResolver).order {
		if e.Host == "c" {
			succeeded = i
		}
	}

	require.NoError(t, err)
	assert.Equal(t, "c", ep.Host)
	assert.Nil(t, transport)
	assert.Len(t, tried, succeeded+1, "every candidate ahead of the one that succeeds is attempted, none after it")
}

func TestShufflingResolverReturnsBrokerUnreachableWhenAllFail(t *testing.T) {
	candidates := []Endpoint{{Host: "a", Port: 1}, {Host: "b", Port: 2}}
	r := NewShufflingResolver(candidates)

	_, _, err := r.SelectOne(func(e Endpoint) (Transport, error) {
		return nil, errors.New("down")
	})

	require.Error(t, err)
	var unreachable *BrokerUnreachableError
	require.ErrorAs(t, err, &unreachable)
	assert.Len(t, unreachable.Attempts, 2)
}

func TestEndpointAddress(t *testing.T) {
	e := Endpoint{Host: "broker.internal", Port: 5672}
	assert.Equal(t, "broker.internal:5672", e.Address())
}

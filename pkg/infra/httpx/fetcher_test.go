package httpx

import (
	"errors"
	"testing"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpstreamBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	breaker := newUpstreamBreaker("image-proxy")
	boom := errors.New("connect refused")

	for i := 0; i < breakerMaxFailures; i++ {
		_, err := breaker.Execute(func() (interface{}, error) { return nil, boom })
		require.ErrorIs(t, err, boom)
	}

	_, err := breaker.Execute(func() (interface{}, error) { return nil, nil })
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
}

func TestUpstreamBreakerRecoversAfterSuccess(t *testing.T) {
	breaker := newUpstreamBreaker("drive-proxy")
	boom := errors.New("timeout")

	for i := 0; i < breakerMaxFailures-1; i++ {
		_, err := breaker.Execute(func() (interface{}, error) { return nil, boom })
		require.ErrorIs(t, err, boom)
	}

	// one success resets the consecutive-failure count
	_, err := breaker.Execute(func() (interface{}, error) { return "ok", nil })
	require.NoError(t, err)

	_, err = breaker.Execute(func() (interface{}, error) { return "ok", nil })
	assert.NoError(t, err)
}

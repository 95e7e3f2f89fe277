package queue

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkhamitov/notify-gateway/internal/model"
)

func TestRoutingKeyFor(t *testing.T) {
	key, err := RoutingKeyFor(model.TypeEmail)
	require.NoError(t, err)
	assert.Equal(t, EmailRoutingKey, key)

	key, err = RoutingKeyFor(model.TypePush)
	require.NoError(t, err)
	assert.Equal(t, PushRoutingKey, key)

	_, err = RoutingKeyFor(model.Type("sms"))
	assert.Error(t, err)
}

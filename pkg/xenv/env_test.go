package xenv_test

import (
	"testing"

	"pingpong/pkg/xenv"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	c := xenv.Default()
	assert.Equal(t, 10, c.MaxMessages)
	assert.Equal(t, "localhost:8080", c.Addr())
	assert.Equal(t, "Initiator", c.InitiatorName)
	assert.Equal(t, "Server", c.ResponderName)
	assert.Equal(t, xenv.TransportTCP, c.Transport)
	assert.Equal(t, 100, c.QueueSize)
}

func TestLoadFrom(t *testing.T) {
	c, err := xenv.LoadFrom(map[string]string{
		"PINGPONG_MAX_MESSAGES": "3",
		"PINGPONG_PORT":         "9000",
		"PINGPONG_TRANSPORT":    "ws",
	})
	require.NoError(t, err)
	assert.Equal(t, 3, c.MaxMessages)
	assert.Equal(t, 9000, c.Port)
	assert.Equal(t, xenv.TransportWebsocket, c.Transport)
}

func TestLoadFromInvalid(t *testing.T) {
	cases := []map[string]string{
		{"PINGPONG_MAX_MESSAGES": "-1"},
		{"PINGPONG_PORT": "70000"},
		{"PINGPONG_TRANSPORT": "udp"},
		{"PINGPONG_QUEUE_SIZE": "0"},
		{"PINGPONG_MAX_MESSAGES": "many"},
		{"PINGPONG_RESPONDER_NAME": "Initiator"},
	}
	for _, environ := range cases {
		_, err := xenv.LoadFrom(environ)
		assert.Error(t, err, "%v", environ)
	}
}

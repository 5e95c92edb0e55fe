package proxy

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewHTTPClient_Direct(t *testing.T) {
	c, err := NewHTTPClient("")
	require.NoError(t, err)
	assert.Nil(t, c.Transport)
	assert.Zero(t, c.Timeout)
}

func TestNewHTTPClient_Socks(t *testing.T) {
	c, err := NewHTTPClient("127.0.0.1:8888")
	require.NoError(t, err)

	tr, ok := c.Transport.(*http.Transport)
	require.True(t, ok)
	assert.NotNil(t, tr.DialContext)
}

package netx

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnippet(t *testing.T) {
	assert.Equal(t, "", Snippet(nil))
	assert.Equal(t, "oops", Snippet(strings.NewReader("  oops \n")))

	long := strings.Repeat("x", MaxSnippet*2)
	assert.Len(t, Snippet(strings.NewReader(long)), MaxSnippet)
}

func TestStatusIn(t *testing.T) {
	assert.True(t, StatusIn(201, 200, 201, 204))
	assert.False(t, StatusIn(202, 200, 201, 204))
	assert.False(t, StatusIn(200))
}

func TestNewHTTPClient_RoundTripAndDrain(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "hello")
	}))
	defer ts.Close()

	c := NewHTTPClient(time.Second)
	assert.Zero(t, c.Timeout, "overall timeout is left to request contexts")

	resp, err := c.Get(ts.URL)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	DrainAndClose(resp)
	DrainAndClose(nil)
}

package location

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"coleta/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var uberlandia = model.Coordinate{Latitude: -18.9186, Longitude: -48.2772}

func TestSessionGrantFlow(t *testing.T) {
	var s Session
	assert.Equal(t, Unrequested, s.State())
	assert.False(t, s.Coordinate().Resolved())

	s, err := s.Request()
	require.NoError(t, err)
	assert.Equal(t, Requesting, s.State())

	s, err = s.Grant(uberlandia)
	require.NoError(t, err)
	assert.Equal(t, Granted, s.State())
	assert.Equal(t, uberlandia, s.Coordinate())
	assert.True(t, s.State().Terminal())
}

func TestSessionDenyFlow(t *testing.T) {
	s, err := Session{}.Request()
	require.NoError(t, err)

	s, err = s.Deny("")
	require.NoError(t, err)
	assert.Equal(t, Denied, s.State())
	assert.Equal(t, DeniedAdvisory, s.Advisory())
	assert.False(t, s.Coordinate().Resolved())
}

func TestSessionRejectsSentinelGrant(t *testing.T) {
	s, _ := Session{}.Request()
	next, err := s.Grant(model.Coordinate{})
	assert.ErrorIs(t, err, ErrUnresolved)
	assert.Equal(t, Requesting, next.State())
}

func TestSessionTerminalStates(t *testing.T) {
	s, _ := Session{}.Request()
	granted, _ := s.Grant(uberlandia)
	denied, _ := s.Deny("no")

	for _, terminal := range []Session{granted, denied} {
		_, err := terminal.Request()
		assert.ErrorIs(t, err, ErrInvalidTransition)
		_, err = terminal.Grant(uberlandia)
		assert.ErrorIs(t, err, ErrInvalidTransition)
		_, err = terminal.Deny("")
		assert.ErrorIs(t, err, ErrInvalidTransition)
	}
}

func TestSessionGrantBeforeRequest(t *testing.T) {
	_, err := Session{}.Grant(uberlandia)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestFixedSource(t *testing.T) {
	c, err := Fixed(uberlandia).Locate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uberlandia, c)

	_, err = Fixed{}.Locate(context.Background())
	assert.ErrorIs(t, err, ErrUnresolved)
}

func TestIPLookup(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"success","lat":-18.9186,"lon":-48.2772}`))
	}))
	defer srv.Close()

	c, err := NewIPLookup(srv.URL).Locate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uberlandia, c)
}

func TestIPLookupFailureStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"fail","message":"private range"}`))
	}))
	defer srv.Close()

	_, err := NewIPLookup(srv.URL).Locate(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "private range")
}

func TestProviderDefaultsToUnavailable(t *testing.T) {
	_, err := NewProvider(nil, nil).Locate(context.Background())
	assert.True(t, errors.Is(err, ErrUnavailable))
}

package shared

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T) *SessionManager {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewSessionManager(client, "test_session", "secret", time.Hour, false)
}

func TestSessionRoundTrip(t *testing.T) {
	ctx := context.Background()
	sm := newTestManager(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	sess, err := sm.Load(ctx, req)
	require.NoError(t, err)
	require.NotEmpty(t, sess.ID)

	sess.SetUser("42")
	sess.SetSelectedCompany(7)
	sess.SetSelectedSubUnit(3)

	res := httptest.NewRecorder()
	require.NoError(t, sm.Commit(ctx, res, sess))

	cookies := res.Result().Cookies()
	require.Len(t, cookies, 1)

	next := httptest.NewRequest(http.MethodGet, "/", nil)
	next.AddCookie(cookies[0])
	reloaded, err := sm.Load(ctx, next)
	require.NoError(t, err)
	require.Equal(t, "42", reloaded.User())
	require.Equal(t, int64(7), reloaded.SelectedCompany())
	require.Equal(t, int64(3), reloaded.SelectedSubUnit())
}

func TestClearingCompanyClearsSubUnit(t *testing.T) {
	sess := &Session{}
	sess.SetSelectedCompany(1)
	sess.SetSelectedSubUnit(2)
	sess.SetSelectedCompany(0)
	require.Zero(t, sess.SelectedCompany())
	require.Zero(t, sess.SelectedSubUnit())
}

func TestSessionDestroy(t *testing.T) {
	ctx := context.Background()
	sm := newTestManager(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	sess, err := sm.Load(ctx, req)
	require.NoError(t, err)
	sess.SetUser("9")

	res := httptest.NewRecorder()
	require.NoError(t, sm.Commit(ctx, res, sess))

	sm.Destroy(sess)
	res2 := httptest.NewRecorder()
	require.NoError(t, sm.Commit(ctx, res2, sess))

	expired := res2.Result().Cookies()
	require.Len(t, expired, 1)
	require.Equal(t, -1, expired[0].MaxAge)
}

func TestFlashMessagesPopInOrder(t *testing.T) {
	sess := &Session{}
	sess.AddFlash(FlashMessage{Kind: "error", Message: "primero"})
	sess.AddFlash(FlashMessage{Kind: "info", Message: "segundo"})

	first := sess.PopFlash()
	require.NotNil(t, first)
	require.Equal(t, "primero", first.Message)

	second := sess.PopFlash()
	require.NotNil(t, second)
	require.Equal(t, "segundo", second.Message)

	require.Nil(t, sess.PopFlash())
}

package wiredis_test

import (
	"context"
	"net"
	"testing"

	"github.com/stretchr/testify/require"

	"wiredis"
	"wiredis/internal/testserver"
)

func newTestServer(t *testing.T, cfg testserver.Config) *testserver.Server {
	t.Helper()
	srv := testserver.New(cfg)
	require.NoError(t, srv.Start())
	t.Cleanup(func() { srv.Close() })
	return srv
}

func TestConnection_ConnectAndCommand(t *testing.T) {
	srv := newTestServer(t, testserver.Config{})
	c := wiredis.New(wiredis.Options{Host: srv.Host(), Port: srv.Port()})
	require.NoError(t, c.Connect(context.Background()))
	defer c.Close()

	v, err := c.Command([]byte("SET"), []byte("k"), []byte("v"))
	require.NoError(t, err)
	require.Equal(t, "OK", v.Str)

	v, err = c.Command([]byte("GET"), []byte("k"))
	require.NoError(t, err)
	require.Equal(t, "v", v.Str)
}

func TestConnection_DoubleConnectFails(t *testing.T) {
	srv := newTestServer(t, testserver.Config{})
	c := wiredis.New(wiredis.Options{Host: srv.Host(), Port: srv.Port()})
	require.NoError(t, c.Connect(context.Background()))
	defer c.Close()

	err := c.Connect(context.Background())
	require.Error(t, err)
	var clientErr *wiredis.ClientError
	require.ErrorAs(t, err, &clientErr)
}

func TestConnection_AuthAndSelect(t *testing.T) {
	srv := newTestServer(t, testserver.Config{Password: "secret"})
	c := wiredis.New(wiredis.Options{
		Host:     srv.Host(),
		Port:     srv.Port(),
		Password: "secret",
		Database: 3,
	})
	require.NoError(t, c.Connect(context.Background()))
	defer c.Close()
	require.Equal(t, 3, c.Database())
}

func TestConnection_AuthFailure(t *testing.T) {
	srv := newTestServer(t, testserver.Config{Password: "secret"})
	c := wiredis.New(wiredis.Options{Host: srv.Host(), Port: srv.Port(), Password: "wrong"})
	err := c.Connect(context.Background())
	require.Error(t, err)
	require.ErrorIs(t, err, wiredis.ErrConnect)
	require.True(t, c.IsClosed())
}

func TestConnection_ReplyErrorOnUnknownCommand(t *testing.T) {
	srv := newTestServer(t, testserver.Config{})
	c := wiredis.New(wiredis.Options{Host: srv.Host(), Port: srv.Port()})
	require.NoError(t, c.Connect(context.Background()))
	defer c.Close()

	_, err := c.Command([]byte("NOSUCHCOMMAND"))
	require.Error(t, err)
	var replyErr *wiredis.ReplyError
	require.ErrorAs(t, err, &replyErr)
}

func TestConnection_Transaction(t *testing.T) {
	srv := newTestServer(t, testserver.Config{})
	c := wiredis.New(wiredis.Options{Host: srv.Host(), Port: srv.Port()})
	require.NoError(t, c.Connect(context.Background()))
	defer c.Close()

	err := c.Transaction(func(tx *wiredis.Connection) error {
		_, queueErr := tx.Command([]byte("SET"), []byte("a"), []byte("1"))
		require.NoError(t, queueErr)
		_, queueErr = tx.Command([]byte("SET"), []byte("b"), []byte("2"))
		require.NoError(t, queueErr)
		v, execErr := tx.Exec()
		require.NoError(t, execErr)
		require.Len(t, v.Array, 2)
		return nil
	})
	require.NoError(t, err)
	require.False(t, c.InMulti())

	v, err := c.Command([]byte("GET"), []byte("a"))
	require.NoError(t, err)
	require.Equal(t, "1", v.Str)
}

func TestConnection_TransactionDiscardsOnError(t *testing.T) {
	srv := newTestServer(t, testserver.Config{})
	c := wiredis.New(wiredis.Options{Host: srv.Host(), Port: srv.Port()})
	require.NoError(t, c.Connect(context.Background()))
	defer c.Close()

	sentinel := require.New(t)
	err := c.Transaction(func(tx *wiredis.Connection) error {
		_, queueErr := tx.Command([]byte("SET"), []byte("never"), []byte("1"))
		require.NoError(t, queueErr)
		return context.Canceled
	})
	sentinel.ErrorIs(err, context.Canceled)
	sentinel.False(c.InMulti())

	_, ok, err := getRaw(c, "never")
	sentinel.NoError(err)
	sentinel.False(ok)
}

func TestConnection_ConnectWithConn(t *testing.T) {
	srv := newTestServer(t, testserver.Config{})
	raw, err := net.Dial("tcp", srv.Addr())
	require.NoError(t, err)

	c := wiredis.New(wiredis.Options{})
	require.NoError(t, c.ConnectWithConn(raw))
	defer c.Close()

	v, err := c.Command([]byte("PING"))
	require.NoError(t, err)
	require.Equal(t, "PONG", v.Str)
}

func getRaw(c *wiredis.Connection, key string) (string, bool, error) {
	v, err := c.Command([]byte("GET"), []byte(key))
	if err != nil {
		return "", false, err
	}
	if v.Null {
		return "", false, nil
	}
	return v.Str, true, nil
}

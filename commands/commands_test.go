package commands_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"wiredis"
	"wiredis/commands"
	"wiredis/internal/testserver"
)

func dial(t *testing.T) (*wiredis.Connection, *testserver.Server) {
	t.Helper()
	srv := testserver.New(testserver.Config{})
	require.NoError(t, srv.Start())
	t.Cleanup(func() { srv.Close() })

	c := wiredis.New(wiredis.Options{Host: srv.Host(), Port: srv.Port()})
	require.NoError(t, c.Connect(context.Background()))
	t.Cleanup(func() { c.Close() })
	return c, srv
}

func TestStringCommands(t *testing.T) {
	c, _ := dial(t)

	require.NoError(t, commands.Set(c, "greeting", "hello"))
	v, ok, err := commands.Get(c, "greeting")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "hello", v)

	_, ok, err = commands.Get(c, "missing")
	require.NoError(t, err)
	require.False(t, ok)

	prev, ok, err := commands.GetSet(c, "greeting", "bye")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "hello", prev)

	n, err := commands.Incr(c, "counter")
	require.NoError(t, err)
	require.Equal(t, int64(1), n)
	n, err = commands.Incr(c, "counter")
	require.NoError(t, err)
	require.Equal(t, int64(2), n)

	typ, err := commands.Type(c, "greeting")
	require.NoError(t, err)
	require.Equal(t, "string", typ)

	ttl, err := commands.TTL(c, "greeting")
	require.NoError(t, err)
	require.Equal(t, int64(-1), ttl)
	ttl, err = commands.TTL(c, "nope")
	require.NoError(t, err)
	require.Equal(t, int64(-2), ttl)

	exists, err := commands.Exists(c, "greeting", "nope")
	require.NoError(t, err)
	require.Equal(t, int64(1), exists)

	deleted, err := commands.Del(c, "greeting", "counter")
	require.NoError(t, err)
	require.Equal(t, int64(2), deleted)
}

func TestPing(t *testing.T) {
	c, _ := dial(t)

	reply, err := commands.Ping(c)
	require.NoError(t, err)
	require.Equal(t, "PONG", reply)

	reply, err = commands.Ping(c, "echo-me")
	require.NoError(t, err)
	require.Equal(t, "echo-me", reply)
}

func TestDBSizeAndSwapDB(t *testing.T) {
	c, _ := dial(t)

	require.NoError(t, commands.Set(c, "a", "1"))
	n, err := commands.DBSize(c)
	require.NoError(t, err)
	require.Equal(t, int64(1), n)

	require.NoError(t, commands.SwapDB(c, 0, 1))
	n, err = commands.DBSize(c)
	require.NoError(t, err)
	require.Equal(t, int64(0), n)
}

func TestHashCommands(t *testing.T) {
	c, _ := dial(t)

	added, err := commands.HSet(c, "user:1", "name", "ada", "lang", "go")
	require.NoError(t, err)
	require.Equal(t, int64(2), added)

	name, ok, err := commands.HGet(c, "user:1", "name")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "ada", name)

	_, ok, err = commands.HGet(c, "user:1", "missing")
	require.NoError(t, err)
	require.False(t, ok)

	vals, err := commands.HMGet(c, "user:1", "name", "missing", "lang")
	require.NoError(t, err)
	require.Len(t, vals, 3)
	require.Equal(t, "ada", *vals[0])
	require.Nil(t, vals[1])
	require.Equal(t, "go", *vals[2])

	all, err := commands.HGetAll(c, "user:1")
	require.NoError(t, err)
	require.Equal(t, map[string]string{"name": "ada", "lang": "go"}, all)

	keys, err := commands.HKeys(c, "user:1")
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"name", "lang"}, keys)

	vs, err := commands.HVals(c, "user:1")
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"ada", "go"}, vs)

	length, err := commands.HLen(c, "user:1")
	require.NoError(t, err)
	require.Equal(t, int64(2), length)
}

func TestSetCommands(t *testing.T) {
	c, _ := dial(t)

	added, err := commands.SAdd(c, "tags", "go", "redis", "go")
	require.NoError(t, err)
	require.Equal(t, int64(2), added)

	members, err := commands.SMembers(c, "tags")
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"go", "redis"}, members)
}

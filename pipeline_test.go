package wiredis_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"wiredis"
	"wiredis/internal/testserver"
	"wiredis/resp"
)

func TestPipeline_WithPipelineScope(t *testing.T) {
	srv := newTestServer(t, testserver.Config{})
	c := wiredis.New(wiredis.Options{Host: srv.Host(), Port: srv.Port()})
	require.NoError(t, c.Connect(context.Background()))
	defer c.Close()

	var values []resp.Value
	err := c.WithPipeline(func(p *wiredis.Pipeline) error {
		p.Command("SET", "x", "1")
		p.Command("GET", "x")
		require.Equal(t, 2, p.Len())

		results, execErr := p.Execute(false, false)
		if execErr != nil {
			return execErr
		}
		values = results.([]resp.Value)
		return nil
	})
	require.NoError(t, err)
	require.Len(t, values, 2)
	require.Equal(t, "OK", values[0].Str)
	require.Equal(t, "1", values[1].Str)
}

func TestPipeline_FourCommandsTyped(t *testing.T) {
	srv := newTestServer(t, testserver.Config{})
	c := wiredis.New(wiredis.Options{Host: srv.Host(), Port: srv.Port()})
	require.NoError(t, c.Connect(context.Background()))
	defer c.Close()

	p := c.Pipeline()
	p.Command("SET", "x", "1")
	p.Command("SET", "y", "2")
	p.Command("GET", "x")
	p.Command("GET", "y")
	require.Equal(t, 4, p.Len())

	results, err := p.Execute(false, false)
	require.NoError(t, err)
	require.Equal(t, 0, p.Len())

	values, ok := results.([]resp.Value)
	require.True(t, ok)
	require.Len(t, values, 4)
	require.Equal(t, "OK", values[0].Str)
	require.Equal(t, "OK", values[1].Str)
	require.Equal(t, "1", values[2].Str)
	require.Equal(t, "2", values[3].Str)
}

func TestPipeline_IgnoreResults(t *testing.T) {
	srv := newTestServer(t, testserver.Config{})
	c := wiredis.New(wiredis.Options{Host: srv.Host(), Port: srv.Port()})
	require.NoError(t, c.Connect(context.Background()))
	defer c.Close()

	p := c.Pipeline()
	for i := 0; i < 200; i++ {
		p.Command("INCR", "counter")
	}
	_, err := p.Execute(false, true)
	require.NoError(t, err)

	v, err := c.Command([]byte("GET"), []byte("counter"))
	require.NoError(t, err)
	require.Equal(t, "200", v.Str)
}

func TestPipeline_Transaction(t *testing.T) {
	srv := newTestServer(t, testserver.Config{})
	c := wiredis.New(wiredis.Options{Host: srv.Host(), Port: srv.Port()})
	require.NoError(t, c.Connect(context.Background()))
	defer c.Close()

	p := c.Pipeline()
	p.Command("SET", "tx-a", "1")
	p.Command("SET", "tx-b", "2")
	results, err := p.Execute(true, false)
	require.NoError(t, err)

	arr, ok := results.(resp.Value)
	require.True(t, ok)
	require.Len(t, arr.Array, 2)
	require.Equal(t, "OK", arr.Array[0].Str)
	require.Equal(t, "OK", arr.Array[1].Str)

	v, err := c.Command([]byte("GET"), []byte("tx-a"))
	require.NoError(t, err)
	require.Equal(t, "1", v.Str)
}

func TestPipeline_EmptyExecuteFails(t *testing.T) {
	srv := newTestServer(t, testserver.Config{})
	c := wiredis.New(wiredis.Options{Host: srv.Host(), Port: srv.Port()})
	require.NoError(t, c.Connect(context.Background()))
	defer c.Close()

	p := c.Pipeline()
	_, err := p.Execute(false, false)
	require.Error(t, err)
	var clientErr *wiredis.ClientError
	require.ErrorAs(t, err, &clientErr)
}

func TestPipeline_ClearDiscardsBufferedCommands(t *testing.T) {
	srv := newTestServer(t, testserver.Config{})
	c := wiredis.New(wiredis.Options{Host: srv.Host(), Port: srv.Port()})
	require.NoError(t, c.Connect(context.Background()))
	defer c.Close()

	p := c.Pipeline()
	p.Command("SET", "discarded", "1")
	p.Clear()
	require.Equal(t, 0, p.Len())
	require.Equal(t, 0, p.Buffered())

	_, ok, err := getRaw(c, "discarded")
	require.NoError(t, err)
	require.False(t, ok)
}

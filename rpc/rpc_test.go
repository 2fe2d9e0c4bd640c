package rpc

import (
	"io"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/kwindex/kwindex/manager"
	"github.com/kwindex/kwindex/posting"
	"github.com/kwindex/kwindex/storager"
)

func discardLog() zerolog.Logger { return zerolog.New(io.Discard) }

func startStorager(t *testing.T, kind posting.Kind) (addr string, closeFn func()) {
	t.Helper()
	s := storager.New(kind, nil, nil, discardLog())
	svc := NewStoragerService(s, discardLog())
	ln, err := ListenAndServeStorager("127.0.0.1:0", svc)
	require.NoError(t, err)
	return ln.Addr().String(), func() { ln.Close() }
}

func TestStoragerClientServerRoundTrip(t *testing.T) {
	addr, closeFn := startStorager(t, posting.KindMPT)
	defer closeFn()

	client, err := DialStorager(addr)
	require.NoError(t, err)
	defer client.(*StoragerClient).Close()

	proof, root, err := client.Add("rust", "file1")
	require.NoError(t, err)
	require.NotEmpty(t, root)
	require.NotEmpty(t, proof)

	fids, _, err := client.Query("rust")
	require.NoError(t, err)
	require.Equal(t, []string{"file1"}, fids)

	_, _, err = client.Delete("rust", "file1")
	require.NoError(t, err)

	fids, _, err = client.Query("rust")
	require.NoError(t, err)
	require.Empty(t, fids)
}

func TestManagerOverStoragerRPC(t *testing.T) {
	addrA, closeA := startStorager(t, posting.KindMPT)
	defer closeA()
	addrB, closeB := startStorager(t, posting.KindMPT)
	defer closeB()

	m := manager.New(posting.KindMPT, DialStorager, discardLog())
	m.AddStorager("node-a", addrA, 100)
	m.AddStorager("node-b", addrB, 100)

	require.NoError(t, m.Add("file1", []string{"rust", "networking"}))
	require.NoError(t, m.Add("file2", []string{"rust"}))

	res, err := m.QuerySingleKeyword("rust")
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"file1", "file2"}, res.Fids)

	res, err = m.QueryBooleanExpr("rust AND networking")
	require.NoError(t, err)
	require.Equal(t, []string{"file1"}, res.Fids)
}

func TestManagerServiceOverRPC(t *testing.T) {
	addrA, closeA := startStorager(t, posting.KindMPT)
	defer closeA()

	m := manager.New(posting.KindMPT, DialStorager, discardLog())
	m.AddStorager("node-a", addrA, 100)

	managerSvc := NewManagerService(m, discardLog())
	ln, err := ListenAndServeManager("127.0.0.1:0", managerSvc)
	require.NoError(t, err)
	defer ln.Close()

	client, err := DialManager(ln.Addr().String())
	require.NoError(t, err)
	defer client.Close()

	success, _, err := client.Add("file1", []string{"rust"})
	require.NoError(t, err)
	require.True(t, success)

	reply, err := client.QueryKeyword("rust")
	require.NoError(t, err)
	require.Equal(t, []string{"file1"}, reply.Fids)
}

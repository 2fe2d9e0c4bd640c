package rpc

import (
	"net/rpc"

	"github.com/kwindex/kwindex/manager"
)

// StoragerClient is a net/rpc-backed implementation of
// manager.StoragerClient, dialing a single storage node.
type StoragerClient struct {
	client *rpc.Client
}

// DialStorager opens a connection to a storage node at addr. It satisfies
// manager.Dialer.
func DialStorager(addr string) (manager.StoragerClient, error) {
	client, err := rpc.Dial("tcp", addr)
	if err != nil {
		return nil, err
	}
	return &StoragerClient{client: client}, nil
}

func (c *StoragerClient) Add(keyword, fid string) ([]byte, []byte, error) {
	var reply StoragerAddReply
	err := c.client.Call("Storager.Add", &StoragerAddArgs{Keyword: keyword, Fid: fid}, &reply)
	return reply.Proof, reply.RootHash, err
}

func (c *StoragerClient) Query(keyword string) ([]string, []byte, error) {
	var reply StoragerQueryReply
	err := c.client.Call("Storager.Query", &StoragerQueryArgs{Keyword: keyword}, &reply)
	return reply.Fids, reply.Proof, err
}

func (c *StoragerClient) Delete(keyword, fid string) ([]byte, []byte, error) {
	var reply StoragerDeleteReply
	err := c.client.Call("Storager.Delete", &StoragerDeleteArgs{Keyword: keyword, Fid: fid}, &reply)
	return reply.Proof, reply.RootHash, err
}

// Close releases the underlying connection.
func (c *StoragerClient) Close() error {
	return c.client.Close()
}

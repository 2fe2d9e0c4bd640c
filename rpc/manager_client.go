package rpc

import (
	"net/rpc"
)

// ManagerClient dials a manager process for use by an external client
// (ad hoc tooling, and the rpc package's tests); the
// client CLI itself is out of scope per spec.md Non-goals.
type ManagerClient struct {
	client *rpc.Client
}

// DialManager opens a connection to a manager at addr.
func DialManager(addr string) (*ManagerClient, error) {
	client, err := rpc.Dial("tcp", addr)
	if err != nil {
		return nil, err
	}
	return &ManagerClient{client: client}, nil
}

func (c *ManagerClient) Add(fid string, keywords []string) (bool, string, error) {
	var reply ManagerReply
	err := c.client.Call("Manager.Add", &ManagerAddArgs{Fid: fid, Keywords: keywords}, &reply)
	return reply.Success, reply.Message, err
}

func (c *ManagerClient) Delete(fid string, keywords []string) (bool, string, error) {
	var reply ManagerReply
	err := c.client.Call("Manager.Delete", &ManagerDeleteArgs{Fid: fid, Keywords: keywords}, &reply)
	return reply.Success, reply.Message, err
}

func (c *ManagerClient) Update(fid string, oldKeywords, newKeywords []string) (bool, string, error) {
	var reply ManagerReply
	err := c.client.Call("Manager.Update", &ManagerUpdateArgs{Fid: fid, OldKeywords: oldKeywords, NewKeywords: newKeywords}, &reply)
	return reply.Success, reply.Message, err
}

func (c *ManagerClient) QueryKeyword(keyword string) (ManagerQueryReply, error) {
	var reply ManagerQueryReply
	err := c.client.Call("Manager.Query", &ManagerQueryArgs{Keyword: keyword}, &reply)
	return reply, err
}

func (c *ManagerClient) QueryBooleanFunction(expr string) (ManagerQueryReply, error) {
	var reply ManagerQueryReply
	err := c.client.Call("Manager.Query", &ManagerQueryArgs{BooleanFunction: expr}, &reply)
	return reply, err
}

// Close releases the underlying connection.
func (c *ManagerClient) Close() error {
	return c.client.Close()
}

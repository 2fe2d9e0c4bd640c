package rpc

import (
	"net"
	"net/rpc"

	"github.com/rs/zerolog"

	"github.com/kwindex/kwindex/manager"
)

// ManagerService exposes a *manager.Manager as the net/rpc service named
// "Manager", implementing the four RPCs spec.md §6 names.
type ManagerService struct {
	m   *manager.Manager
	log zerolog.Logger
}

// NewManagerService wraps m for RPC registration.
func NewManagerService(m *manager.Manager, log zerolog.Logger) *ManagerService {
	return &ManagerService{m: m, log: log}
}

func (svc *ManagerService) Add(args *ManagerAddArgs, reply *ManagerReply) error {
	if err := svc.m.Add(args.Fid, args.Keywords); err != nil {
		reply.Success, reply.Message = false, err.Error()
		return nil
	}
	reply.Success = true
	return nil
}

func (svc *ManagerService) Delete(args *ManagerDeleteArgs, reply *ManagerReply) error {
	if err := svc.m.Delete(args.Fid, args.Keywords); err != nil {
		reply.Success, reply.Message = false, err.Error()
		return nil
	}
	reply.Success = true
	return nil
}

func (svc *ManagerService) Update(args *ManagerUpdateArgs, reply *ManagerReply) error {
	if err := svc.m.Update(args.Fid, args.OldKeywords, args.NewKeywords); err != nil {
		reply.Success, reply.Message = false, err.Error()
		return nil
	}
	reply.Success = true
	return nil
}

func (svc *ManagerService) Query(args *ManagerQueryArgs, reply *ManagerQueryReply) error {
	var res manager.QueryResult
	var err error
	if args.BooleanFunction != "" {
		res, err = svc.m.QueryBooleanExpr(args.BooleanFunction)
	} else {
		res, err = svc.m.QuerySingleKeyword(args.Keyword)
	}
	if err != nil {
		return err
	}

	var proof []byte
	if len(res.Proof.SubProofs) > 0 {
		proof = res.Proof.SubProofs[0]
	}
	reply.Fids = res.Fids
	reply.Proof = proof
	reply.RootHash = res.Root
	reply.Verified = res.Verified
	return nil
}

// ListenAndServeManager registers svc under the name "Manager" and accepts
// connections on addr until the listener is closed.
func ListenAndServeManager(addr string, svc *ManagerService) (net.Listener, error) {
	server := rpc.NewServer()
	if err := server.RegisterName("Manager", svc); err != nil {
		return nil, err
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				svc.log.Debug().Err(err).Msg("manager rpc listener closed")
				return
			}
			go server.ServeConn(conn)
		}
	}()
	return ln, nil
}

package rpc

import (
	"net"
	"net/rpc"

	"github.com/rs/zerolog"

	"github.com/kwindex/kwindex/storager"
)

// StoragerService exposes a *storager.Storager as the net/rpc service
// named "Storager", implementing the three RPCs spec.md §6 names.
type StoragerService struct {
	s   *storager.Storager
	log zerolog.Logger
}

// NewStoragerService wraps s for RPC registration.
func NewStoragerService(s *storager.Storager, log zerolog.Logger) *StoragerService {
	return &StoragerService{s: s, log: log}
}

func (svc *StoragerService) Add(args *StoragerAddArgs, reply *StoragerAddReply) error {
	proof, root, err := svc.s.Add(args.Keyword, args.Fid)
	if err != nil {
		return err
	}
	wire, err := EncodeProof(proof, root)
	if err != nil {
		return err
	}
	reply.Proof, reply.RootHash = wire, root
	return nil
}

func (svc *StoragerService) Query(args *StoragerQueryArgs, reply *StoragerQueryReply) error {
	fids, proof, root, err := svc.s.Query(args.Keyword)
	if err != nil {
		return err
	}
	wire, err := EncodeProof(proof, root)
	if err != nil {
		return err
	}
	reply.Fids, reply.Proof = fids, wire
	return nil
}

func (svc *StoragerService) Delete(args *StoragerDeleteArgs, reply *StoragerDeleteReply) error {
	proof, root, err := svc.s.Delete(args.Keyword, args.Fid)
	if err != nil {
		return err
	}
	wire, err := EncodeProof(proof, root)
	if err != nil {
		return err
	}
	reply.Proof, reply.RootHash = wire, root
	return nil
}

// ListenAndServeStorager registers svc under the name "Storager" and
// accepts connections on addr until the listener is closed, in the style
// of the stdlib net/rpc accept loop.
func ListenAndServeStorager(addr string, svc *StoragerService) (net.Listener, error) {
	server := rpc.NewServer()
	if err := server.RegisterName("Storager", svc); err != nil {
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
				svc.log.Debug().Err(err).Msg("storager rpc listener closed")
				return
			}
			go server.ServeConn(conn)
		}
	}()
	return ln, nil
}

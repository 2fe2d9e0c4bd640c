// Command manager runs the manager service of spec.md §4.6/§6: it routes
// keyword operations to storage nodes over the consistent hash ring,
// verifies proofs, and evaluates boolean queries.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kwindex/kwindex/kwlog"
	"github.com/kwindex/kwindex/manager"
	"github.com/kwindex/kwindex/posting"
	"github.com/kwindex/kwindex/rpc"
)

const defaultReplicas = 100

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		port      uint16
		adsMode   string
		storagers string
	)

	cmd := &cobra.Command{
		Use:   "manager",
		Short: "run a kwindex manager node",
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := parseAdsMode(adsMode)
			if err != nil {
				return err
			}
			addrs := splitStoragers(storagers)

			log := kwlog.New("manager", nil)
			m := manager.New(kind, rpc.DialStorager, log)
			for i, addr := range addrs {
				nodeID := fmt.Sprintf("storager-%d", i)
				m.AddStorager(nodeID, addr, defaultReplicas)
				log.Info().Str("node", nodeID).Str("addr", addr).Msg("registered storager")
			}

			svc := rpc.NewManagerService(m, log)
			listenAddr := fmt.Sprintf(":%d", port)
			ln, err := rpc.ListenAndServeManager(listenAddr, svc)
			if err != nil {
				return fmt.Errorf("bind %s: %w", listenAddr, err)
			}
			defer ln.Close()

			log.Info().Str("addr", ln.Addr().String()).Str("ads-mode", kind.String()).Msg("manager listening")
			select {}
		},
	}

	cmd.Flags().Uint16Var(&port, "port", 50051, "TCP port to listen on")
	cmd.Flags().StringVar(&adsMode, "ads-mode", "accumulator", "authenticated data structure: accumulator or mpt")
	cmd.Flags().StringVar(&storagers, "storagers", "", "comma-separated storager addresses")
	return cmd
}

func parseAdsMode(s string) (posting.Kind, error) {
	switch strings.ToLower(s) {
	case "accumulator", "":
		return posting.KindAccumulator, nil
	case "mpt":
		return posting.KindMPT, nil
	default:
		return 0, fmt.Errorf("invalid --ads-mode %q: want accumulator or mpt", s)
	}
}

func splitStoragers(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

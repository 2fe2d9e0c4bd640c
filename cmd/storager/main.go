// Command storager runs the storage-node service of spec.md §4.5/§6: a
// map of keyword to posting-list ADS instance, exposed over Add/Query/
// Delete.
//
// Usage: storager <port> [ads_type]
package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/kwindex/kwindex/curve"
	"github.com/kwindex/kwindex/kvstore"
	"github.com/kwindex/kwindex/kwlog"
	"github.com/kwindex/kwindex/posting"
	"github.com/kwindex/kwindex/rpc"
	"github.com/kwindex/kwindex/storager"
)

const minSeedLen = 20

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var dbDir string

	cmd := &cobra.Command{
		Use:   "storager <port> [ads_type]",
		Short: "run a kwindex storage node",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			port, err := strconv.ParseUint(args[0], 10, 16)
			if err != nil {
				return fmt.Errorf("invalid port %q: %w", args[0], err)
			}
			adsType := "accumulator"
			if len(args) == 2 {
				adsType = args[1]
			}
			kind, err := parseAdsType(adsType)
			if err != nil {
				return err
			}

			log := kwlog.New("storager", nil)

			var setup *curve.Setup
			if kind == posting.KindAccumulator {
				setup, err = readTrustedSetup()
				if err != nil {
					return err
				}
			}

			var store kvstore.KVStore
			if kind == posting.KindMPT && dbDir != "" {
				bs, err := kvstore.OpenBadgerStore(dbDir)
				if err != nil {
					return fmt.Errorf("open db-dir %s: %w", dbDir, err)
				}
				defer bs.Close()
				store = bs
			}

			s := storager.New(kind, setup, store, log)
			if err := s.Restore(); err != nil {
				return fmt.Errorf("restore from %s: %w", dbDir, err)
			}

			svc := rpc.NewStoragerService(s, log)
			listenAddr := fmt.Sprintf(":%d", port)
			ln, err := rpc.ListenAndServeStorager(listenAddr, svc)
			if err != nil {
				return fmt.Errorf("bind %s: %w", listenAddr, err)
			}
			defer ln.Close()

			log.Info().Str("addr", ln.Addr().String()).Str("ads-mode", kind.String()).Msg("storager listening")
			select {}
		},
	}

	cmd.Flags().StringVar(&dbDir, "db-dir", "", "Badger directory persisting MPT state across restarts (mpt mode only; empty keeps state in memory)")
	return cmd
}

func parseAdsType(s string) (posting.Kind, error) {
	switch strings.ToLower(s) {
	case "accumulator", "":
		return posting.KindAccumulator, nil
	case "mpt":
		return posting.KindMPT, nil
	default:
		return 0, fmt.Errorf("invalid ads_type %q: want accumulator or mpt", s)
	}
}

// readTrustedSetup prompts for the ceremony passphrase shared by every
// accumulator-mode node, the same way cmd/trustedsetup derives its public
// fingerprint, so every node's process-local Setup converges on the same
// secret s without ever writing it to disk (spec.md §3 "s is never
// transmitted or persisted").
func readTrustedSetup() (*curve.Setup, error) {
	for {
		fmt.Fprintf(os.Stderr, "enter trusted setup passphrase (at least %d characters) > ", minSeedLen)
		seed, err := term.ReadPassword(int(syscall.Stdin))
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return nil, fmt.Errorf("read passphrase: %w", err)
		}
		if len(seed) < minSeedLen {
			fmt.Fprintln(os.Stderr, "passphrase too short")
			continue
		}
		setup := curve.NewSetupFromSeed(seed)
		for i := range seed {
			seed[i] = 0
		}
		return setup, nil
	}
}

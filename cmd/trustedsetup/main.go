// Command trustedsetup runs the one-time ceremony of spec.md §3/§4.2: a
// participant enters a passphrase, which is stretched into the secret
// scalar s behind the accumulator's public map x -> g2^(s-x). s itself is
// never written anywhere; this command only prints the public fingerprint
// g2^s (the x=0 case of that map) so operators can cross-check that every
// storage node derived the same secret from the same passphrase.
//
// Adapted from the teacher's models/trie_kzg_bn256/kzg_setup ceremony.
package main

import (
	"encoding/hex"
	"fmt"
	"math/big"
	"os"
	"syscall"

	"github.com/spf13/cobra"
	krand "go.dedis.ch/kyber/v3/util/random"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/term"

	"github.com/kwindex/kwindex/curve"
	"github.com/kwindex/kwindex/field"
)

const minSeedLen = 20

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "trustedsetup",
		Short: "run the accumulator trusted-setup ceremony and print its public fingerprint",
		RunE: func(cmd *cobra.Command, args []string) error {
			setup, err := runCeremony()
			if err != nil {
				return err
			}
			fingerprint := setup.G2PowerSMinus(field.FromUint64(0))
			fmt.Printf("public fingerprint g2^s = %s\n", hex.EncodeToString(fingerprint.Bytes()))
			fmt.Println("distribute this value to operators for cross-checking; s itself was never written to disk")
			return nil
		},
	}
}

// runCeremony prompts for a passphrase and stretches it into the secret
// scalar s, mirroring the teacher's kzg_setup flow: blake2b the passphrase,
// then hash again a random number of extra rounds so a weak passphrase
// costs an attacker more without pretending this replaces a real
// multi-party ceremony. The round count comes from kyber's CSPRNG-backed
// random stream rather than math/rand, since it has nothing to do with
// test-fixture reproducibility.
func runCeremony() (*curve.Setup, error) {
	stream := krand.New()
	for {
		fmt.Fprintf(os.Stderr, "enter seed (at least %d characters) and press ENTER (CTRL-C to exit) > ", minSeedLen)
		seed, err := term.ReadPassword(int(syscall.Stdin))
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return nil, fmt.Errorf("read seed: %w", err)
		}
		if len(seed) < minSeedLen {
			fmt.Fprintln(os.Stderr, "seed too short")
			continue
		}

		h := blake2b.Sum256(seed)
		for i := range seed {
			seed[i] = 0
		}
		extra := krand.Int(big.NewInt(90), stream)
		for i := 0; i < 10+int(extra.Int64()); i++ {
			h = blake2b.Sum256(h[:])
		}
		s := field.FromBytesReduce(h[:])
		h = [32]byte{}
		return curve.NewSetup(s), nil
	}
}

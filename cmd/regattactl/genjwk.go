package main

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"os"

	"github.com/lestrrat-go/jwx/v2/jwk"
	"github.com/spf13/cobra"
)

var genjwkFlags struct {
	kid  string
	save string
}

var genjwkCmd = &cobra.Command{
	Use:   "genjwk",
	Short: "Generate an ES256 signing key and its public JWKS",
	Long: `Generates an ES256 keypair for a local auth emulator. The private JWK signs
tokens; the public JWKS is what the API fetches from JWKS_URL.`,
	RunE: runGenjwk,
}

func init() {
	genjwkCmd.Flags().StringVar(&genjwkFlags.kid, "kid", "regatta-dev-key", "key id")
	genjwkCmd.Flags().StringVar(&genjwkFlags.save, "save", "", "also write the private key to this file")
	rootCmd.AddCommand(genjwkCmd)
}

func runGenjwk(cmd *cobra.Command, args []string) error {
	private, public, err := generateSigningKey(genjwkFlags.kid)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "private JWK:\n%s\n\npublic JWKS:\n%s\n", private, public)

	if genjwkFlags.save != "" {
		if err := os.WriteFile(genjwkFlags.save, private, 0o600); err != nil {
			return fmt.Errorf("failed to write key file: %w", err)
		}
		fmt.Fprintf(out, "\nprivate key saved to %s\n", genjwkFlags.save)
	}
	return nil
}

// generateSigningKey returns the private JWK and a one-key public JWKS, both as JSON
func generateSigningKey(kid string) ([]byte, []byte, error) {
	raw, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to generate private key: %w", err)
	}

	key, err := jwk.FromRaw(raw)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create JWK: %w", err)
	}
	for k, v := range map[string]interface{}{
		jwk.KeyIDKey:     kid,
		jwk.AlgorithmKey: "ES256",
		jwk.KeyUsageKey:  "sig",
	} {
		if err := key.Set(k, v); err != nil {
			return nil, nil, fmt.Errorf("failed to set %s: %w", k, err)
		}
	}

	pub, err := key.PublicKey()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to derive public key: %w", err)
	}
	set := jwk.NewSet()
	if err := set.AddKey(pub); err != nil {
		return nil, nil, fmt.Errorf("failed to build JWKS: %w", err)
	}

	private, err := json.MarshalIndent(key, "", "  ")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to marshal JWK: %w", err)
	}
	public, err := json.MarshalIndent(set, "", "  ")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to marshal JWKS: %w", err)
	}
	return private, public, nil
}

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"ikedadada/go-onionchain/internal/cli"
	vo "ikedadada/go-onionchain/internal/domain/value_object"
)

func newRootCommand() *cobra.Command {
	var out string
	var bits int

	cmd := &cobra.Command{
		Use:   "keygen",
		Short: "Generate an RSA key pair for a node or client",
		Example: `  # Write rsa_key.pem and rsa_key.pem.pub
  keygen

  keygen -o node1.pem -b 3072`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			pub, err := generate(out, bits)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "generated", out, "and", pub)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "rsa_key.pem", "output private key file")
	cmd.Flags().IntVarP(&bits, "bits", "b", 2048, "RSA modulus size")
	return cmd
}

// generate writes the private key to out and the public key to out+".pub".
func generate(out string, bits int) (string, error) {
	key, err := vo.GenerateRSAPrivKey(bits)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(out, key.ToPEM(), 0600); err != nil {
		return "", err
	}
	pubOut := out + ".pub"
	if err := os.WriteFile(pubOut, key.PublicKey().ToPEM(), 0644); err != nil {
		return "", err
	}
	return pubOut, nil
}

func main() {
	cli.ExecuteWithFang(newRootCommand())
}

package cmd

import (
	"github.com/spf13/cobra"

	"github.com/keymint-io/keymint/pkg/license"
)

func newKeysCmd() *cobra.Command {
	keys := &cobra.Command{
		Use:   "keys",
		Short: "Signing key commands",
		Long:  ``,
	}

	keys.AddCommand(&cobra.Command{
		Use:   "generate",
		Short: "Generate a signing key pair",
		Long: `Generate an Ed25519 key pair for license signing.
The private key goes to the server configuration; the public key is
embedded in the client application.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			publicKey, privateKey, err := license.GenerateKeyPair()
			if err != nil {
				return err
			}
			cmd.Printf("private_key: %s\n", privateKey)
			cmd.Printf("public_key:  %s\n", publicKey)
			return nil
		},
	})

	return keys
}

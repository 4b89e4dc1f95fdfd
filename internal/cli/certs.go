package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mpetrov/boxstrap/internal/config"
	"github.com/mpetrov/boxstrap/internal/pki"
)

var (
	certsOutDir string
	certsOrg    string
)

func init() {
	rootCmd.AddCommand(certsCmd)
	certsCmd.Flags().StringVar(&certsOutDir, "out-dir", "certs", "Directory for generated chain artifacts")
	certsCmd.Flags().StringVar(&certsOrg, "org", "", "Certificate organization name")
}

var certsCmd = &cobra.Command{
	Use:   "certs",
	Short: "Generate the certificate chain for Roles Anywhere",
	Long: "Generates a root CA and a client certificate signed by it, plus base64\n" +
		"companions ready for the ROLES_ANYWHERE_CERTIFICATE and\n" +
		"ROLES_ANYWHERE_PRIVATE_KEY variables. The root certificate is what\n" +
		"'boxstrap infra deploy' registers as the trust anchor.",
	RunE: runCerts,
}

func runCerts(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(os.Getenv)
	if err != nil {
		return err
	}

	chain, err := pki.Generate(certsOutDir, pki.ChainSpec{
		CommonName:   cfg.ProjectName,
		Organization: certsOrg,
	})
	if err != nil {
		return fmt.Errorf("generate chain: %w", err)
	}
	if err := pki.VerifyChain(chain.CertPath, chain.RootCertPath); err != nil {
		return err
	}

	fmt.Printf("root CA:      %s\n", chain.RootCertPath)
	fmt.Printf("certificate:  %s\n", chain.CertPath)
	fmt.Printf("private key:  %s\n", chain.KeyPath)
	fmt.Println()
	fmt.Println("Export the bundle variables from the base64 companions:")
	fmt.Printf("  export ROLES_ANYWHERE_CERTIFICATE=$(cat %s)\n", chain.CertB64Path)
	fmt.Printf("  export ROLES_ANYWHERE_PRIVATE_KEY=$(cat %s)\n", chain.KeyB64Path)
	return nil
}

package cli

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/mpetrov/boxstrap/internal/awsx"
	"github.com/mpetrov/boxstrap/internal/config"
	"github.com/mpetrov/boxstrap/internal/infra"
)

var infraRootCAPath string

func init() {
	rootCmd.AddCommand(infraCmd)
	infraCmd.AddCommand(infraDeployCmd)
	infraCmd.AddCommand(infraStatusCmd)
	infraDeployCmd.Flags().StringVar(&infraRootCAPath, "root-ca", "certs/root-ca.pem", "Root CA certificate registered as the trust anchor")
}

var infraCmd = &cobra.Command{
	Use:   "infra",
	Short: "Manage the project's backing infrastructure stack",
}

var infraDeployCmd = &cobra.Command{
	Use:   "deploy",
	Short: "Deploy the stack and mirror its outputs to the parameter store",
	RunE:  runInfraDeploy,
}

var infraStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show stack status and outputs",
	RunE:  runInfraStatus,
}

func newDeployer(cmd *cobra.Command) (*infra.Deployer, error) {
	cfg, err := config.Load(os.Getenv)
	if err != nil {
		return nil, err
	}
	awsCfg, err := awsx.LoadConfig(cmd.Context(), cfg.Region, config.ActiveProfile())
	if err != nil {
		return nil, err
	}
	return &infra.Deployer{
		Stacks:      awsx.NewCFNStacks(awsCfg),
		Params:      awsx.NewSSMStore(awsCfg),
		ProjectName: cfg.ProjectName,
		Out:         os.Stderr,
	}, nil
}

func runInfraDeploy(cmd *cobra.Command, args []string) error {
	rootCA, err := os.ReadFile(infraRootCAPath)
	if err != nil {
		return fmt.Errorf("read root CA (run 'boxstrap certs' first): %w", err)
	}

	d, err := newDeployer(cmd)
	if err != nil {
		return err
	}
	info, err := d.Deploy(cmd.Context(), string(rootCA))
	if err != nil {
		return err
	}
	printStack(info)
	return nil
}

func runInfraStatus(cmd *cobra.Command, args []string) error {
	d, err := newDeployer(cmd)
	if err != nil {
		return err
	}
	info, err := d.Status(cmd.Context())
	if err != nil {
		return err
	}
	printStack(info)
	return nil
}

func printStack(info awsx.StackInfo) {
	fmt.Printf("stack:  %s\n", info.Name)
	fmt.Printf("status: %s\n", info.Status)
	keys := make([]string, 0, len(info.Outputs))
	for k := range info.Outputs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Printf("  %s = %s\n", k, info.Outputs[k])
	}
}

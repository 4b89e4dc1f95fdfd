package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mpetrov/boxstrap/internal/awsx"
	"github.com/mpetrov/boxstrap/internal/config"
)

var (
	paramSecure  bool
	paramDecrypt bool
)

func init() {
	rootCmd.AddCommand(paramCmd)
	paramCmd.AddCommand(paramGetCmd)
	paramCmd.AddCommand(paramPutCmd)
	paramGetCmd.Flags().BoolVar(&paramDecrypt, "decrypt", true, "Decrypt secure parameters")
	paramPutCmd.Flags().BoolVar(&paramSecure, "secure", false, "Store as an encrypted parameter")
}

var paramCmd = &cobra.Command{
	Use:   "param",
	Short: "Read and write project configuration parameters",
	Long: "Reads and writes parameters in the project's remote namespace. Names\n" +
		"starting with '/' are absolute; anything else resolves under\n" +
		"/<project-name>/.",
}

var paramGetCmd = &cobra.Command{
	Use:   "get <name>",
	Short: "Print a parameter value",
	Args:  cobra.ExactArgs(1),
	RunE:  runParamGet,
}

var paramPutCmd = &cobra.Command{
	Use:   "put <name> <value>",
	Short: "Store a parameter value",
	Args:  cobra.ExactArgs(2),
	RunE:  runParamPut,
}

// resolveParamName namespaces relative names under the project.
func resolveParamName(project, name string) string {
	if strings.HasPrefix(name, "/") {
		return name
	}
	return "/" + project + "/" + name
}

func newParamStore(cmd *cobra.Command) (awsx.ParameterStore, string, error) {
	cfg, err := config.Load(os.Getenv)
	if err != nil {
		return nil, "", err
	}
	awsCfg, err := awsx.LoadConfig(cmd.Context(), cfg.Region, config.ActiveProfile())
	if err != nil {
		return nil, "", err
	}
	return awsx.NewSSMStore(awsCfg), cfg.ProjectName, nil
}

func runParamGet(cmd *cobra.Command, args []string) error {
	store, project, err := newParamStore(cmd)
	if err != nil {
		return err
	}
	name := resolveParamName(project, args[0])
	value, found, err := store.Get(cmd.Context(), name, paramDecrypt)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("parameter %s not found", name)
	}
	fmt.Println(value)
	return nil
}

func runParamPut(cmd *cobra.Command, args []string) error {
	store, project, err := newParamStore(cmd)
	if err != nil {
		return err
	}
	name := resolveParamName(project, args[0])
	if err := store.Put(cmd.Context(), name, args[1], paramSecure); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "stored %s\n", name)
	return nil
}

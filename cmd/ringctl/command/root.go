package command

import (
	"fmt"
	"os"

	"github.com/DataDog/datadog-agent/pkg/util/fxutil"
	"github.com/spf13/cobra"
	"go.uber.org/fx"

	"github.com/kimm528/ringfitmanager/api"
)

var logLevel string

// Run executes a given function with dependencies supplied by the service DI graph
// `f` must return an error or nothing
// `opts` can be used to supply additional arguments that are not provided by the service
func Run(f interface{}, opts ...fx.Option) error {
	deps := append(opts, api.Dependencies()...)
	deps = append(deps, fx.NopLogger)
	return fxutil.OneShot(f, deps...)
}

var rootCmd = &cobra.Command{
	Use:   "ringctl",
	Short: "Operator tool for RingFit Manager",
	Long:  "ringctl manages the roster and devices of a facility and exports health reports",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Overwrite zap's log level
		return os.Setenv("LOG_LEVEL", logLevel)
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&logLevel, "log-level", "v", "error", "Log Level")
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(styleError.Render(err.Error()))
		os.Exit(1)
	}
}

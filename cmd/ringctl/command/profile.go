package command

import (
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/kimm528/ringfitmanager/health"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Args:  cobra.NoArgs,
	Short: "Print the default health profile",
	Long:  "The profile command prints the default thresholds and goals with the configured overrides applied",
	RunE: func(cmd *cobra.Command, args []string) error {
		return Run(printProfile)
	},
}

func printProfile(profile health.Profile) error {
	enc := yaml.NewEncoder(os.Stdout)
	enc.SetIndent(2)
	defer enc.Close()
	return enc.Encode(profile)
}

func init() {
	rootCmd.AddCommand(profileCmd)
}

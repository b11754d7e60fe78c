package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/denniswebb/fwfacts/internal/config"
	"github.com/denniswebb/fwfacts/internal/logging"
)

const serviceName = "fwfacts"

var (
	cfgFile string
)

var rootCmd = &cobra.Command{
	Use:   "fwfacts",
	Short: "Report firewall chain policies as configuration-management facts",
	Long: `fwfacts reads the default policy of the INPUT, OUTPUT and FORWARD chains for
iptables and ip6tables and prints them as named facts such as iptables_input_policy.
It also ships the suffix_hash_title template helper for renaming mapping keys.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		viper.SetEnvPrefix("FWF")
		viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
		viper.AutomaticEnv()

		if cfgFile != "" {
			viper.SetConfigFile(cfgFile)
			if err := viper.ReadInConfig(); err != nil {
				return fmt.Errorf("failed to read config file: %w", err)
			}
		}

		logging.InitLogger(viper.GetString("log-level"), viper.GetString("log-format"), serviceName)
		return nil
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "Path to configuration file")
	flags.String("log-level", "info", "Log level (debug, info, warn, error)")
	flags.String("log-format", "json", "Log format (json, text)")
	flags.StringP("output", "o", config.OutputText, "Output format (text, json, yaml, table)")
	mustBindFlags(flags, "log-level", "log-format", "output")

	config.SetDefaults(viper.GetViper())

	rootCmd.AddCommand(FactsCmd)
	rootCmd.AddCommand(SuffixKeysCmd)
	rootCmd.AddCommand(ListCmd)
}

func mustBindFlags(flags *pflag.FlagSet, names ...string) {
	for _, name := range names {
		if err := viper.BindPFlag(name, flags.Lookup(name)); err != nil {
			fmt.Fprintf(os.Stderr, "failed to bind %s flag: %v\n", name, err)
			os.Exit(1)
		}
	}
}

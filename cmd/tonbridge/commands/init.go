package commands

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/oraichain/tonbridge-core/config"
	"github.com/oraichain/tonbridge-core/libs/cli"
)

// NewInitCmd returns the command writing config.toml into the home
// directory.
func NewInitCmd(v *viper.Viper) *cobra.Command {
	var (
		chainID  string
		contract string
		force    bool
	)
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize the home directory of a verifier",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			home := v.GetString(cli.HomeFlag)
			conf := config.DefaultConfig().SetRoot(home)
			conf.LogLevel = v.GetString(cli.LogLevelFlag)
			conf.LogFormat = v.GetString(cli.LogFormatFlag)
			if chainID != "" {
				conf.LightClient.ChainID = chainID
			}
			conf.Bridge.Contract = contract
			if err := conf.ValidateBasic(); err != nil {
				return err
			}

			if _, err := os.Stat(conf.ConfigFile()); err == nil && !force {
				return fmt.Errorf("%s already exists, use --force to overwrite it", conf.ConfigFile())
			} else if err != nil && !errors.Is(err, os.ErrNotExist) {
				return err
			}
			if err := config.EnsureRoot(home); err != nil {
				return err
			}
			if err := config.WriteConfigFile(home, conf); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", conf.ConfigFile())
			return nil
		},
	}
	cmd.Flags().StringVar(&chainID, "chain-id", "", "chain id of the verified chain (default Oraichain)")
	cmd.Flags().StringVar(&contract, "contract", "", "bech32 address of the bridge contract")
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing config file")
	_ = cmd.MarkFlagRequired("contract")
	return cmd
}

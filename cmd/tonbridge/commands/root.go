package commands

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	dbm "github.com/tendermint/tm-db"

	"github.com/oraichain/tonbridge-core/config"
	"github.com/oraichain/tonbridge-core/libs/cli"
	"github.com/oraichain/tonbridge-core/libs/log"
	"github.com/oraichain/tonbridge-core/light"
	dbs "github.com/oraichain/tonbridge-core/light/store/db"
)

// RootCommand constructs the root command of tonbridge. Every subcommand
// reads its settings from v, which is filled from the flags, the TB_
// environment variables and the config.toml under --home.
func RootCommand(v *viper.Viper, defaultHome string) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "tonbridge",
		Short:         "Light client and packet verification for the TON bridge",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().String(cli.LogLevelFlag, log.LogLevelInfo, "log level")
	cmd.PersistentFlags().String(cli.LogFormatFlag, log.LogFormatPlain, "log format (plain|json)")

	cmd.AddCommand(
		NewInitCmd(v),
		NewVerifyUpdateCmd(v),
		NewVerifyPacketCmd(v),
		NewTxCmd(),
		NewPacketCmd(),
		NewCellCmd(),
		NewRelayCmd(),
		VersionCmd,
	)
	return cli.PrepareBaseCmd(cmd, v, "TB", defaultHome)
}

// ParseConfig retrieves the validated configuration gathered in v.
func ParseConfig(v *viper.Viper) (*config.Config, error) {
	conf, err := config.Load(v)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(conf.RootDir); err != nil {
		return nil, fmt.Errorf("home directory %s: %w (run init first)", conf.RootDir, err)
	}
	return conf, nil
}

func newLogger(cmd *cobra.Command, conf *config.Config) (log.Logger, error) {
	return log.NewDefaultLoggerWithWriter(log.NewSyncWriter(cmd.ErrOrStderr()), conf.LogFormat, conf.LogLevel)
}

func openDB(conf *config.Config, name string) (dbm.DB, error) {
	db, err := config.DefaultDBProvider(&config.DBContext{ID: name, Config: conf})
	if err != nil {
		return nil, fmt.Errorf("open %s db: %w", name, err)
	}
	return db, nil
}

// newLightClient opens the light client persisted under the home directory.
// The caller closes the returned db.
func newLightClient(conf *config.Config, logger log.Logger, metrics *light.Metrics) (*light.Client, dbm.DB, error) {
	params, err := conf.LightClient.Params()
	if err != nil {
		return nil, nil, err
	}
	db, err := openDB(conf, config.LightDBName)
	if err != nil {
		return nil, nil, err
	}
	c, err := light.NewClient(
		params,
		dbs.New(db, params.ChainID),
		light.PruningSize(conf.LightClient.PruningSize),
		light.Logger(logger.With("module", "light")),
		light.WithMetrics(metrics),
	)
	if err != nil {
		db.Close()
		return nil, nil, err
	}
	return c, db, nil
}

// parseNow returns the wall clock, or s as an RFC3339 time if given.
func parseNow(s string) (time.Time, error) {
	if s == "" {
		return time.Now(), nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --now: %w", err)
	}
	return t, nil
}

func trimHex(s string) string {
	return strings.TrimPrefix(strings.TrimPrefix(strings.TrimSpace(s), "0x"), "0X")
}

package cli

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	HomeFlag      = "home"
	TraceFlag     = "trace"
	LogLevelFlag  = "log_level"
	LogFormatFlag = "log_format"
)

// PrepareBaseCmd adds the home and trace flags to cmd and makes it read the
// environment, its flags and the config file under home into v before any
// subcommand runs.
func PrepareBaseCmd(cmd *cobra.Command, v *viper.Viper, envPrefix, defaultHome string) *cobra.Command {
	cmd.PersistentFlags().StringP(HomeFlag, "", defaultHome, "directory for config and data")
	cmd.PersistentFlags().Bool(TraceFlag, false, "print out full stack trace on errors")
	initEnv := func(cmd *cobra.Command, args []string) error {
		InitEnv(v, envPrefix)
		return nil
	}
	cmd.PersistentPreRunE = concatCobraCmdFuncs(initEnv, BindFlagsLoadViper(v), cmd.PersistentPreRunE)
	return cmd
}

// InitEnv makes v read environment variables with the given prefix.
func InitEnv(v *viper.Viper, prefix string) {
	// This copies all variables like TBHOME to TB_HOME,
	// so we can support both formats for the user
	prefix = strings.ToUpper(prefix)
	ps := prefix + "_"
	for _, e := range os.Environ() {
		kv := strings.SplitN(e, "=", 2)
		if len(kv) == 2 {
			k, val := kv[0], kv[1]
			if strings.HasPrefix(k, prefix) && !strings.HasPrefix(k, ps) {
				k2 := strings.Replace(k, prefix, ps, 1)
				os.Setenv(k2, val)
			}
		}
	}

	// env variables with TB prefix (eg. TB_HOME, TB_LIGHT_CHAIN_ID)
	v.SetEnvPrefix(prefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
}

type cobraCmdFunc func(cmd *cobra.Command, args []string) error

// Returns a single function that calls each argument function in sequence
// RunE, PreRunE, PersistentPreRunE, etc. all have this same signature
func concatCobraCmdFuncs(fs ...cobraCmdFunc) cobraCmdFunc {
	return func(cmd *cobra.Command, args []string) error {
		for _, f := range fs {
			if f != nil {
				if err := f(cmd, args); err != nil {
					return err
				}
			}
		}
		return nil
	}
}

// BindFlagsLoadViper binds the flags of the running command and reads
// config.toml from the home directory into v. A missing config file is not
// an error.
func BindFlagsLoadViper(v *viper.Viper) cobraCmdFunc {
	return func(cmd *cobra.Command, args []string) error {
		// cmd.Flags() includes flags from this command and all persistent flags from the parent
		if err := v.BindPFlags(cmd.Flags()); err != nil {
			return err
		}

		homeDir := v.GetString(HomeFlag)
		v.Set(HomeFlag, homeDir)
		v.SetConfigName("config")                         // name of config file (without extension)
		v.SetConfigType("toml")                           // the file has no extension in its name
		v.AddConfigPath(homeDir)                          // search root directory
		v.AddConfigPath(filepath.Join(homeDir, "config")) // search root directory /config

		// ignore not found error, return other errors
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return err
			}
		}
		return nil
	}
}

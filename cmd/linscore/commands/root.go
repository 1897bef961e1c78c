package commands

import (
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const appName = "linscore"

// app carries the state shared by all subcommands of one invocation.
type app struct {
	cfgFile string
	v       *viper.Viper
	log     *logrus.Logger
}

// Execute runs the root command with os.Args.
func Execute() error {
	return newRootCmd(os.Stdout, os.Stderr).Execute()
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	a := &app{
		v:   viper.New(),
		log: logrus.New(),
	}
	a.log.SetOutput(stderr)
	a.log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})

	root := &cobra.Command{
		Use:   appName,
		Short: "Linear GMM scoring of speaker models against utterance statistics",
		Long: `linscore scores speaker GMMs against sufficient statistics of test
utterances with the linear approximation of the log-likelihood ratio
relative to a universal background model.

Examples:
  # Score models against statistics, one row per model
  linscore score -f request.yaml

  # Frame-length normalised scores as JSON, offsets at full weight
  linscore score -f request.yaml --normalize --offset-weight 1 --format json

  # Accumulate statistics for feature frames against the UBM
  linscore stats -f frames.yaml > stats.yaml
`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.initConfig(cmd)
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	pf := root.PersistentFlags()
	pf.StringVar(&a.cfgFile, "config", "", "config file (default is ./linscore.yaml)")
	pf.String("log-level", "warning", "log level (debug, info, warning, error)")
	pf.BoolP("verbose", "v", false, "verbose output (same as --log-level debug)")
	pf.String("format", "table", "output format (table, json, yaml)")
	pf.StringP("output", "o", "", "output file (default: stdout)")
	mustBind(a.v.BindPFlag("log_level", pf.Lookup("log-level")))
	mustBind(a.v.BindPFlag("verbose", pf.Lookup("verbose")))
	mustBind(a.v.BindPFlag("format", pf.Lookup("format")))
	mustBind(a.v.BindPFlag("output", pf.Lookup("output")))

	root.AddCommand(newScoreCmd(a))
	root.AddCommand(newStatsCmd(a))
	return root
}

func (a *app) initConfig(cmd *cobra.Command) error {
	a.v.SetEnvPrefix(strings.ToUpper(appName))
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()

	if a.cfgFile != "" {
		a.v.SetConfigFile(a.cfgFile)
		if err := a.v.ReadInConfig(); err != nil {
			return errors.Wrapf(err, "read config %s", a.cfgFile)
		}
	} else {
		a.v.SetConfigName(appName)
		a.v.SetConfigType("yaml")
		a.v.AddConfigPath(".")
		if err := a.v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return errors.Wrap(err, "read config")
			}
		}
	}

	level, err := logrus.ParseLevel(a.v.GetString("log_level"))
	if err != nil {
		return errors.Wrap(err, "log_level")
	}
	if a.v.GetBool("verbose") {
		level = logrus.DebugLevel
	}
	a.log.SetLevel(level)
	if f := a.v.ConfigFileUsed(); f != "" {
		a.log.WithField("file", f).Debug("loaded config")
	}
	return nil
}

// mustBind panics on a failed flag binding, which only happens when a flag
// name is misspelled.
func mustBind(err error) {
	if err != nil {
		panic(err)
	}
}

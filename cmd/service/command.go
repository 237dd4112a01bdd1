package service

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/docuquery/docuquery/app/core"
	"github.com/docuquery/docuquery/app/store/sqlstore"
	"github.com/docuquery/docuquery/pkg/safe"
)

type Options struct {
	ConfigPath string
}

func (o *Options) AddFlags(flagSet *pflag.FlagSet) {
	flagSet.StringVarP(&o.ConfigPath, "config", "c", "", "init api by given config")
}

func NewCommand() *cobra.Command {
	opts := &Options{}
	cmd := &cobra.Command{
		Use:   "service",
		Short: "document retrieval service",
		RunE: func(cmd *cobra.Command, args []string) error {
			return Run(opts)
		},
	}
	opts.AddFlags(cmd.Flags())
	return cmd
}

func Run(opts *Options) error {
	app := core.MustSetupCore(core.MustLoadBaseConfig(opts.ConfigPath))

	go safe.RunWithLog(func() {
		serve(app)
	}, "http")

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
	<-sigs
	return nil
}

// NewMigrateCommand applies pending schema migrations and exits.
func NewMigrateCommand() *cobra.Command {
	opts := &Options{}
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "apply database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := core.MustLoadBaseConfig(opts.ConfigPath)
			provider := sqlstore.MustSetup(cfg.Postgres)()
			if err := provider.Install(); err != nil {
				return err
			}
			fmt.Println("migrations applied")
			return nil
		},
	}
	opts.AddFlags(cmd.Flags())
	return cmd
}

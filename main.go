package main

import (
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/crmkit/automation/action"
	"github.com/crmkit/automation/agent"
	"github.com/crmkit/automation/config"
	"github.com/crmkit/automation/crm"
	"github.com/crmkit/automation/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

type cli struct {
	cfg config.Config
}

func setupFlags(cmd *cobra.Command) error {
	cmd.Flags().String("config-file", "", "Path to config file.")
	cmd.Flags().String("redis-addr", "localhost:6379", "comma separated list of redis host:port")
	cmd.Flags().String("namespace", "automation", "namespace used in storage")
	cmd.Flags().Int("http-port", 8080, "http port for rest endpoints")
	cmd.Flags().String("storage-impl", "redis", "implementation of underline storage")
	cmd.Flags().Int("dispatcher-capacity", 512, "execution dispatcher capacity")
	cmd.Flags().Int("resume-poll-seconds", 1, "poll interval of the delay resume executor")
	cmd.Flags().String("analytics-file", "", "file to record per-action analytics, disabled when empty")
	return viper.BindPFlags(cmd.Flags())
}

func (c *cli) setupConfig(cmd *cobra.Command, args []string) error {
	configFile, err := cmd.Flags().GetString("config-file")
	if err != nil {
		return err
	}
	viper.SetConfigFile(configFile)

	if err = viper.ReadInConfig(); err != nil {
		// it's ok if config file doesn't exist
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return err
		}
	}

	c.cfg.RedisConfig.Addrs = strings.Split(viper.GetString("redis-addr"), ",")
	c.cfg.RedisConfig.Namespace = viper.GetString("namespace")
	c.cfg.HttpPort = viper.GetInt("http-port")
	c.cfg.StorageType = config.StorageType(viper.GetString("storage-impl"))
	c.cfg.DispatcherCapacity = viper.GetInt("dispatcher-capacity")
	c.cfg.ResumePollSeconds = viper.GetInt("resume-poll-seconds")
	c.cfg.AnalyticsFile = viper.GetString("analytics-file")
	return logger.InitLogger()
}

func (c *cli) run(cmd *cobra.Command, args []string) error {
	services := action.Services{
		Contacts: crm.NewInMemContactService(),
		Deals:    crm.NewInMemDealService(),
		Tasks:    crm.NewInMemTaskService(),
		Email:    crm.NewInMemEmailSender(),
		Chat:     crm.NewInMemChatMessenger(),
		Notifier: crm.NewInMemNotifier(),
	}
	a, err := agent.New(c.cfg, services)
	if err != nil {
		panic(err)
	}
	if err := a.Start(); err != nil {
		panic(err)
	}
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc
	return a.Shutdown()
}

func main() {
	cli := &cli{}

	cmd := &cobra.Command{
		Use:     "automation",
		PreRunE: cli.setupConfig,
		RunE:    cli.run,
	}

	if err := setupFlags(cmd); err != nil {
		log.Fatal(err)
	}

	if err := cmd.Execute(); err != nil {
		log.Fatal(err)
	}
}

package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/zackypick/polar/internal/bitcoin"
	"github.com/zackypick/polar/internal/compose"
	"github.com/zackypick/polar/internal/config"
	"github.com/zackypick/polar/internal/docker"
	"github.com/zackypick/polar/internal/model"
	"github.com/zackypick/polar/internal/repo"
	"github.com/zackypick/polar/internal/store"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "polar",
	Short: "Run local Bitcoin and Lightning test networks with docker",
	Long: `polar builds declarative multi-node Bitcoin and Lightning regtest
networks, translates them into docker compose projects, and drives
their container lifecycle.`,
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default: $HOME/.polar/polar.yml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("polar")
		viper.SetConfigType("yml")
		viper.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(filepath.Join(home, ".polar"))
		}
	}

	viper.SetEnvPrefix("POLAR")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			fmt.Fprintf(os.Stderr, "Error reading config: %v\n", err)
		}
	}
}

// runner is what the docker controller executes commands with; tests
// swap in a recording fake.
var runner docker.CommandRunner = docker.ExecRunner{}

// app bundles the wired engine for one command invocation.
type app struct {
	cfg      *config.Config
	log      *zap.Logger
	store    *store.Store
	docker   *docker.Controller
	bitcoin  *bitcoin.Service
	versions repo.State
}

func newApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	log := zap.NewNop()
	if verbose {
		if log, err = zap.NewDevelopment(); err != nil {
			return nil, err
		}
	}

	ctl := docker.NewController(cfg, compose.NewBuilder(), runner, log)
	versions, err := repo.Load(filepath.Join(cfg.DataDir, "versions.json"))
	if err != nil {
		return nil, err
	}

	return &app{
		cfg:      cfg,
		log:      log,
		store:    store.New(cfg, log),
		docker:   ctl,
		bitcoin:  bitcoin.NewService(bitcoin.NewExecClient(ctl), cfg.Bitcoin.SettleDelay(), log),
		versions: versions,
	}, nil
}

// network looks a network up by name in a loaded document.
func (a *app) network(doc *store.NetworksFile, name string) (*model.Network, error) {
	for _, n := range doc.Networks {
		if n.Name == name {
			return n, nil
		}
	}
	return nil, fmt.Errorf("network %q not found", name)
}

package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/artpar/smoothstack/internal/shell/devenv"
	"github.com/artpar/smoothstack/internal/shell/engine"
	"github.com/artpar/smoothstack/internal/shell/fabric"
	"github.com/artpar/smoothstack/internal/shell/network"
	"github.com/artpar/smoothstack/internal/shell/orchestrator"
	"github.com/artpar/smoothstack/internal/shell/servicegroup"
	"github.com/artpar/smoothstack/internal/shell/source"
	"github.com/artpar/smoothstack/internal/shell/templatestore"
)

// app lazily constructs and caches every shell component a subcommand
// might need, built once per CLI invocation from the loaded Config.
type app struct {
	cfg        *Config
	logger     *slog.Logger
	jsonOutput bool

	client engine.Client

	groups       *servicegroup.Store
	templates    *templatestore.Store
	networkMgr   *network.Manager
	fabricReg    *fabric.Registry
	orch         *orchestrator.Orchestrator
	devenvMgr    *devenv.Manager
	sourceReg    *source.Registry
}

func (a *app) engineClient() (engine.Client, error) {
	if a.client != nil {
		return a.client, nil
	}
	c, err := engine.NewDockerClient(a.cfg.Docker.Host)
	if err != nil {
		return nil, fmt.Errorf("connect to container engine: %w", err)
	}
	a.client = c
	return a.client, nil
}

func (a *app) groupStore() (*servicegroup.Store, error) {
	if a.groups != nil {
		return a.groups, nil
	}
	s, err := servicegroup.New(a.cfg.ServiceGroupsDir())
	if err != nil {
		return nil, err
	}
	a.groups = s
	return a.groups, nil
}

func (a *app) templateStore() (*templatestore.Store, error) {
	if a.templates != nil {
		return a.templates, nil
	}
	s, err := templatestore.New(a.cfg.TemplatesDir())
	if err != nil {
		return nil, err
	}
	a.templates = s
	return a.templates, nil
}

func (a *app) network() (*network.Manager, error) {
	if a.networkMgr != nil {
		return a.networkMgr, nil
	}
	c, err := a.engineClient()
	if err != nil {
		return nil, err
	}
	a.networkMgr = network.New(c)
	return a.networkMgr, nil
}

func (a *app) fabricRegistry() (*fabric.Registry, error) {
	if a.fabricReg != nil {
		return a.fabricReg, nil
	}
	c, err := a.engineClient()
	if err != nil {
		return nil, err
	}
	a.fabricReg = fabric.NewRegistry(c)
	if err := loadPersistedChannels(a.cfg.CommDir(), a.fabricReg); err != nil {
		return nil, err
	}
	return a.fabricReg, nil
}

func (a *app) orchestrator() (*orchestrator.Orchestrator, error) {
	if a.orch != nil {
		return a.orch, nil
	}
	c, err := a.engineClient()
	if err != nil {
		return nil, err
	}
	a.orch = orchestrator.New(c, a.logger)
	return a.orch, nil
}

func (a *app) devenv() (*devenv.Manager, error) {
	if a.devenvMgr != nil {
		return a.devenvMgr, nil
	}
	store, err := a.templateStore()
	if err != nil {
		return nil, err
	}
	c, err := a.engineClient()
	if err != nil {
		return nil, err
	}
	a.devenvMgr = devenv.New(store, c, a.logger)
	return a.devenvMgr, nil
}

func (a *app) sourceRegistry() (*source.Registry, error) {
	if a.sourceReg != nil {
		return a.sourceReg, nil
	}
	reg, err := source.NewRegistry(a.cfg.SourcesDir())
	if err != nil {
		return nil, err
	}
	a.sourceReg = reg
	return a.sourceReg, nil
}

func newRootCmd() *cobra.Command {
	var configPath string
	a := &app{}

	root := &cobra.Command{
		Use:           "smoothstack",
		Short:         "Orchestrate multi-service containerized stacks",
		Version:       fmt.Sprintf("%s (built %s)", Version, BuildTime),
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := LoadConfig(configPath)
			if err != nil {
				return fmt.Errorf("configuration error: %w", err)
			}
			a.cfg = cfg
			a.logger = SetupLogger(cfg)
			jsonOutput, _ := cmd.Flags().GetBool("json")
			a.jsonOutput = jsonOutput
			return nil
		},
	}

	root.PersistentFlags().StringVar(&configPath, "config", "", "path to config file")
	root.PersistentFlags().Bool("json", false, "emit structured JSON output on list/show/inspect commands")

	root.AddCommand(newServiceCmd(a))
	root.AddCommand(newNetworkCmd(a))
	root.AddCommand(newCommCmd(a))
	root.AddCommand(newDevCmd(a))

	return root
}

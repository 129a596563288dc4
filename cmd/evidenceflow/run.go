package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oots-bridge/evidence-contract-tests/config"
	"github.com/oots-bridge/evidence-contract-tests/framework"
	"github.com/oots-bridge/evidence-contract-tests/logstore"
	"github.com/oots-bridge/evidence-contract-tests/scenarios"
	"github.com/oots-bridge/evidence-contract-tests/simulator"
)

var (
	runPathID   int
	runFilters  framework.RegexFilters
	skipPrereqs bool
	debugFailed bool
	debugAll    bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Execute the scenario catalog against a deployment",
	RunE:  runScenarios,
}

func init() {
	runCmd.Flags().IntVar(&runPathID, "path", 0, "run only the path with this catalog id")
	runCmd.Flags().Var(&runFilters.MustMatch, "run", "regex pattern(s) to select paths to run")
	runCmd.Flags().Var(&runFilters.MustNotMatch, "skip", "regex pattern(s) to select paths not to run")
	runCmd.Flags().BoolVar(&skipPrereqs, "skip-prereqs", false, "skip the collaborator health checks")
	runCmd.Flags().BoolVar(&debugFailed, "debug", false, "print captured debug output for failed paths")
	runCmd.Flags().BoolVar(&debugAll, "debug-all", false, "print captured debug output for all paths")
}

func runScenarios(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	mainLogger := framework.Logger(framework.NullLogger())
	if debugAll {
		mainLogger = log.New(os.Stdout, "", log.LstdFlags)
	}

	gateway := scenarios.NewGatewayClient(cfg.Gateway.BaseURL, mainLogger)
	simClient := simulator.NewControlClient(cfg.Simulator.BaseURL, mainLogger)
	store, err := logstore.NewClient(logstore.Config{
		Addresses:        cfg.LogStore.Addresses,
		Index:            cfg.LogStore.Index,
		CorrelationField: cfg.LogStore.CorrelationField,
		Username:         cfg.LogStore.Username,
		Password:         cfg.LogStore.Password,
	}, mainLogger)
	if err != nil {
		return err
	}

	if !skipPrereqs {
		fmt.Println("Checking collaborators...")
		err := scenarios.CheckPrerequisites(ctx, []scenarios.Prereq{
			{Name: "requester gateway", Check: gateway.Health},
			{Name: "log store", Check: store.Ping},
			{Name: "data-provider simulator", Check: simClient.Health},
		})
		if err != nil {
			return err
		}
		fmt.Println("All collaborators reachable")
	}

	paths := scenarios.Catalog()
	if runPathID > 0 {
		path, ok := scenarios.FindPath(runPathID)
		if !ok {
			return fmt.Errorf("no catalog path with id %d", runPathID)
		}
		paths = []scenarios.Path{path}
	}

	fmt.Println("Running scenario catalog")
	runner := scenarios.NewRunner(scenarios.RunnerConfig{
		Gateway:            gateway,
		Simulator:          simClient,
		Store:              store,
		SimulatorBaseURL:   cfg.Simulator.BaseURL,
		ReturnURL:          cfg.Simulator.ReturnURL,
		DefaultWaitBudget:  cfg.Run.WaitBudget(),
		DefaultStepTimeout: cfg.Run.StepTimeout(),
		PollInterval:       cfg.Run.PollInterval(),
		QuerySize:          cfg.Run.QuerySize,
		ScenarioLogger: framework.ConsoleScenarioLogger{
			DebugOutputOnFailure: debugFailed || debugAll,
			DebugOutputOnSuccess: debugAll,
			Output:               os.Stdout,
		},
	})

	results := runner.RunAll(ctx, paths, runFilters.AsFilter)

	fmt.Println()
	framework.PrintResults(os.Stdout, results)
	if !results.OK() {
		return fmt.Errorf("%d path(s) failed", len(results.Failures()))
	}
	return nil
}

package cmd

import (
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	sim "github.com/coexsim/coexsim/sim"
)

var (
	// CLI flags for the simulation run
	seed            int64   // Master seed for all RNG subsystems
	horizonS        float64 // Total simulation time (in seconds of virtual time)
	logLevel        string  // Log verbosity level
	wifiNodes       int     // Number of CSMA/CA (WiFi) stations in the generated scenario
	nruNodes        int     // Number of LBT (NR-U) stations in the generated scenario
	trafficModel    string  // "saturated" or "poisson"
	lambdaPerS      float64 // Poisson arrival rate per node
	queueLimit      int     // Packet queue capacity (0 = unbounded)
	adaptationLaw   string  // "hysteresis" or "aimd"
	scenarioPath    string  // Optional YAML scenario file; overrides the generated scenario
	outputPath      string  // Optional JSON results path
	sampleIntervalS float64 // Time-series sampling cadence (0 = disabled)
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "coexsim",
	Short: "Discrete-event simulator for WiFi / NR-U spectrum coexistence",
}

// runCmd executes one simulation using parameters from CLI flags
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the coexistence simulation",
	Run: func(cmd *cobra.Command, args []string) {
		// Set up logging
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logrus.Fatalf("Invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)

		cfg, err := loadScenario()
		if err != nil {
			logrus.Fatalf("unable to build scenario: %v", err)
		}

		logrus.Infof("Starting simulation: horizon=%.2fs seed=%d nodes=%d",
			cfg.HorizonS, cfg.Seed, len(cfg.Nodes))

		startTime := time.Now()

		scenario, err := cfg.BuildScenario()
		if err != nil {
			logrus.Fatalf("scenario construction failed: %v", err)
		}
		scenario.Run()
		report := scenario.Report()
		report.Print()

		if outputPath != "" {
			if err := saveReport(report, outputPath); err != nil {
				logrus.Fatalf("unable to write results: %v", err)
			}
			logrus.Infof("Results written to %s", outputPath)
		}

		logrus.Infof("Simulation complete in %s.", time.Since(startTime).Round(time.Millisecond))
	},
}

// loadScenario resolves the run configuration: a YAML scenario file when
// given, otherwise the generated default topology shaped by the flags.
func loadScenario() (*sim.ScenarioConfig, error) {
	if scenarioPath != "" {
		return LoadScenarioFile(scenarioPath)
	}
	return DefaultScenario(), nil
}

func init() {
	runCmd.Flags().Int64Var(&seed, "seed", 42, "master seed for deterministic runs")
	runCmd.Flags().Float64Var(&horizonS, "horizon", 2.0, "virtual time to simulate, in seconds")
	runCmd.Flags().StringVar(&logLevel, "log-level", "info", "log level (trace, debug, info, warn, error)")
	runCmd.Flags().IntVar(&wifiNodes, "wifi-nodes", 3, "number of WiFi stations")
	runCmd.Flags().IntVar(&nruNodes, "nru-nodes", 2, "number of NR-U stations")
	runCmd.Flags().StringVar(&trafficModel, "traffic", "saturated", "traffic model: saturated or poisson")
	runCmd.Flags().Float64Var(&lambdaPerS, "lambda", 50, "poisson arrival rate per node (packets/s)")
	runCmd.Flags().IntVar(&queueLimit, "queue-limit", 100, "packet queue capacity, 0 = unbounded")
	runCmd.Flags().StringVar(&adaptationLaw, "adaptation-law", "hysteresis", "sensing threshold law: hysteresis or aimd")
	runCmd.Flags().StringVar(&scenarioPath, "scenario", "", "YAML scenario file (overrides topology flags)")
	runCmd.Flags().StringVar(&outputPath, "output", "", "write the JSON report to this path")
	runCmd.Flags().Float64Var(&sampleIntervalS, "sample-interval", 0, "time-series sampling cadence in seconds, 0 = off")

	rootCmd.AddCommand(runCmd)
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

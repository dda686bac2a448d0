package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"stadiumsim/simulator"
	"stadiumsim/store"
)

var (
	configFile    string
	population    int
	seed          int64
	horizon       float64
	controllerOff bool
	snapshotsOut  string
	actionsOut    string
	dbPath        string
	resultsOut    string
	smallScenario bool
	verbose       bool
)

var rootCmd = &cobra.Command{
	Use:   "stadium",
	Short: "Stadium crowd-flow simulator",
	Long: `Discrete-event simulation of match-day crowd flow through a stadium.

Fans arrive on a configurable rate curve, pass parking, security and the
turnstiles, visit the concourse, watch the match and leave through the
exit gates. An adaptive controller watches queue metrics and opens extra
lanes when congestion risk crosses its thresholds.

Runs are deterministic for a fixed seed: the same configuration always
produces byte-identical snapshot and action logs.`,
	RunE: runSimulation,
}

func init() {
	rootCmd.Flags().StringVarP(&configFile, "config", "c", "", "Path to YAML or JSON configuration file (defaults apply if omitted)")
	rootCmd.Flags().IntVarP(&population, "population", "n", 0, "Override total population")
	rootCmd.Flags().Int64Var(&seed, "seed", -1, "Override random seed (0 = non-reproducible)")
	rootCmd.Flags().Float64Var(&horizon, "horizon", 0, "Override simulation horizon in minutes")
	rootCmd.Flags().BoolVar(&controllerOff, "no-controller", false, "Disable the adaptive controller")
	rootCmd.Flags().StringVar(&snapshotsOut, "snapshots", "", "Write per-tick metric snapshots to this CSV file")
	rootCmd.Flags().StringVar(&actionsOut, "actions", "", "Write the control action log to this CSV file")
	rootCmd.Flags().StringVar(&dbPath, "db", "", "Persist the run to this SQLite database")
	rootCmd.Flags().StringVarP(&resultsOut, "output", "o", "", "Write full results JSON to this file (stdout if omitted)")
	rootCmd.Flags().BoolVar(&smallScenario, "small", false, "Use the small 2k-fan scenario as the base configuration")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Log simulation events to stderr")
}

func buildConfig() (*simulator.SimConfig, error) {
	var cfg *simulator.SimConfig
	var err error
	switch {
	case configFile != "":
		cfg, err = simulator.LoadConfig(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load configuration: %w", err)
		}
	case smallScenario:
		cfg = simulator.SmallConfig()
	default:
		cfg = simulator.DefaultConfig()
	}

	if population > 0 {
		cfg.Population = population
	}
	if seed >= 0 {
		cfg.RandomSeed = seed
	}
	if horizon > 0 {
		cfg.Horizon = horizon
	}
	if controllerOff {
		cfg.Controller.Enabled = false
	}
	return cfg, nil
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig()
	if err != nil {
		return err
	}

	engine, err := simulator.NewEngine(cfg)
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if verbose {
		engine.LogEvent = func(msg string) {
			fmt.Fprintf(os.Stderr, "[SIM] %s\n", msg)
		}
	}

	results := engine.Run()

	s := results.Summary
	fmt.Fprintf(os.Stderr, "Run finished at t=%.1f: arrived=%d completed=%d exited=%d abandoned=%d actions=%d\n",
		engine.Now(), s.Arrived, s.Completed, s.Exited, s.AbandonedInFlight, s.ControlActions)

	if snapshotsOut != "" {
		if err := store.WriteSnapshotsCSV(snapshotsOut, results.Snapshots); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Snapshots written to %s\n", snapshotsOut)
	}
	if actionsOut != "" {
		if err := store.WriteActionsCSV(actionsOut, results.Actions); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Action log written to %s\n", actionsOut)
	}
	if dbPath != "" {
		db, err := store.Open(dbPath)
		if err != nil {
			return err
		}
		defer db.Close()
		runID, err := db.SaveRun(cfg, results)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Run %s saved to %s\n", runID, dbPath)
	}

	if resultsOut != "" || (snapshotsOut == "" && actionsOut == "" && dbPath == "") {
		output, err := json.MarshalIndent(results, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal results: %w", err)
		}
		if resultsOut != "" {
			if err := os.WriteFile(resultsOut, output, 0644); err != nil {
				return err
			}
			fmt.Fprintf(os.Stderr, "Results written to %s\n", resultsOut)
		} else {
			fmt.Println(string(output))
		}
	}
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

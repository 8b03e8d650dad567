// cmd/root.go
package cmd

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	sim "github.com/rail-sim/rail-sim/sim"
)

var (
	scenarioFile    string
	stationsFile    string
	sectionsFile    string
	trainsFile      string
	disruptionsFile string
	traceOut        string
	logLevel        string
	seed            int64
	horizon         int64
	randomEvents    bool
)

var rootCmd = &cobra.Command{
	Use:   "rail-sim",
	Short: "Discrete-event simulator for railway networks",
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a railway network simulation",
	Run: func(cmd *cobra.Command, args []string) {
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logrus.Fatalf("Invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)

		sc := sim.DefaultScenario()
		if scenarioFile != "" {
			sc, err = sim.LoadScenario(scenarioFile)
			if err != nil {
				logrus.Fatalf("Loading scenario: %v", err)
			}
		}
		if cmd.Flags().Changed("stations") {
			sc.StationsFile = stationsFile
		}
		if cmd.Flags().Changed("sections") {
			sc.SectionsFile = sectionsFile
		}
		if cmd.Flags().Changed("trains") {
			sc.TrainsFile = trainsFile
		}
		if cmd.Flags().Changed("disruptions") {
			sc.DisruptionsFile = disruptionsFile
		}
		if cmd.Flags().Changed("seed") {
			sc.Seed = seed
		}
		if cmd.Flags().Changed("horizon") {
			sc.HorizonS = horizon
		}
		if cmd.Flags().Changed("random-events") {
			sc.RandomEvents = randomEvents
		}

		stations, err := sim.LoadStations(sc.StationsFile)
		if err != nil {
			logrus.Fatalf("Loading stations: %v", err)
		}
		sections, err := sim.LoadSections(sc.SectionsFile)
		if err != nil {
			logrus.Fatalf("Loading sections: %v", err)
		}
		trains, err := sim.LoadTrains(sc.TrainsFile)
		if err != nil {
			logrus.Fatalf("Loading trains: %v", err)
		}
		disruptions, err := sim.LoadDisruptions(sc.DisruptionsFile)
		if err != nil {
			logrus.Fatalf("Loading disruptions: %v", err)
		}

		sim.ValidateRoutes(stations, sections, trains)
		sim.GenerateBlocks(sections, trains)

		logrus.Infof("Starting simulation with %d stations, %d directed sections, %d trains, seed=%d",
			len(stations), len(sections), len(trains), sc.Seed)

		s := sim.NewSimulator(stations, sections, sc)
		for _, t := range trains {
			s.AddTrain(t)
		}
		for _, d := range disruptions {
			s.ScheduleDisruption(d)
		}
		s.Run()

		s.BuildReport().Print(os.Stdout)
		if traceOut != "" {
			if err := s.Trace.ExportCSV(traceOut); err != nil {
				logrus.Fatalf("Exporting trace: %v", err)
			}
			logrus.Infof("Event trace written to %s", traceOut)
		}
		logrus.Info("Simulation complete.")
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	runCmd.Flags().StringVar(&scenarioFile, "scenario", "", "Scenario YAML file (overlays defaults)")
	runCmd.Flags().StringVar(&stationsFile, "stations", "data/stations.csv", "Stations CSV file")
	runCmd.Flags().StringVar(&sectionsFile, "sections", "data/sections.csv", "Sections CSV file")
	runCmd.Flags().StringVar(&trainsFile, "trains", "data/trains.csv", "Trains CSV file")
	runCmd.Flags().StringVar(&disruptionsFile, "disruptions", "data/disruptions.csv", "Disruptions CSV file (optional)")
	runCmd.Flags().StringVar(&traceOut, "out", "simulation_events.csv", "Event trace CSV output path (empty to skip)")
	runCmd.Flags().StringVar(&logLevel, "log", "info", "Log level (debug, info, warn, error)")
	runCmd.Flags().Int64Var(&seed, "seed", 1, "Master RNG seed")
	runCmd.Flags().Int64Var(&horizon, "horizon", 0, "Simulation horizon in virtual seconds (0 = unbounded)")
	runCmd.Flags().BoolVar(&randomEvents, "random-events", false, "Enable random disruption generation")

	rootCmd.AddCommand(runCmd)
}

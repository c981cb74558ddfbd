package main

import (
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/sanonone/threshdb/internal/server"
	"github.com/sanonone/threshdb/pkg/harness"
)

func main() {
	mode := flag.String("mode", "serve", "Operating mode: \"serve\" (TCP + HTTP server) or \"run\" (execute an experiment batch and exit)")
	configPath := flag.String("config", "experiments.yaml", "Experiment batch config for -mode run")
	resultsDir := flag.String("results", "", "Override the config's results directory (empty keeps the config value)")
	tcpAddr := flag.String("tcp-addr", ":9090", "Address and port for the TCP server (e.g. :9090 or 127.0.0.1:9090)")
	httpAddr := flag.String("http-addr", ":9091", "Address and port for the REST API server (e.g. :9091)")

	flag.Parse()

	switch *mode {
	case "run":
		runBatch(*configPath, *resultsDir)
	case "serve":
		serve(*tcpAddr, *httpAddr)
	default:
		log.Fatalf("Unknown mode %q (want \"serve\" or \"run\")", *mode)
	}
}

// runBatch executes the configured experiments once and exits.
func runBatch(configPath, resultsDir string) {
	cfg, err := harness.LoadConfig(configPath)
	if err != nil {
		log.Fatalf("Could not load the experiment config: %v", err)
	}
	if resultsDir != "" {
		cfg.ResultsDir = resultsDir
	}

	runner, err := harness.NewRunner(cfg)
	if err != nil {
		log.Fatalf("Could not prepare the runner: %v", err)
	}
	if err := runner.Run(); err != nil {
		log.Fatalf("Batch failed: %v", err)
	}
}

// serve runs the TCP and HTTP servers until SIGINT or SIGTERM.
func serve(tcpAddr, httpAddr string) {
	srv := server.NewServer(httpAddr)

	// Channel listening for the interrupt signal (Ctrl+C)
	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, syscall.SIGINT, syscall.SIGTERM)

	// Start the TCP and HTTP servers in a goroutine so main is not blocked
	go func() {
		if err := srv.Run(tcpAddr); err != nil {
			log.Fatal(err)
		}
	}()

	// Block main waiting for the shutdown signal
	<-shutdownChan

	srv.Shutdown()
}

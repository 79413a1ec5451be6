// Command kraft-broker runs the broker: it loads configuration, wires up
// logging/metrics, and serves the three supported Kafka APIs from a
// KRaft cluster-metadata log until it receives a shutdown signal.
package main

import (
	"context"
	"flag"
	"log"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fork-the-planet/kraft-broker/broker"
	"github.com/fork-the-planet/kraft-broker/config"
	"github.com/fork-the-planet/kraft-broker/kraft"
	"github.com/fork-the-planet/kraft-broker/logging"
	"github.com/fork-the-planet/kraft-broker/metrics"
	"github.com/fork-the-planet/kraft-broker/store"
)

func main() {
	propertiesPath := flag.String("config", "", "path to server.properties (optional)")
	brokerConfigPath := flag.String("broker-config", "", "path to broker.yaml (optional)")
	flag.Parse()

	if err := run(*propertiesPath, *brokerConfigPath); err != nil {
		log.Fatal(err)
	}
}

func run(propertiesPath, brokerConfigPath string) error {
	props := config.DefaultProperties()
	if propertiesPath != "" {
		p, err := config.LoadProperties(propertiesPath)
		if err != nil {
			return err
		}
		props = p
	}

	file := config.DefaultFile()
	if brokerConfigPath != "" {
		f, err := config.LoadFile(brokerConfigPath)
		if err != nil {
			return err
		}
		file = f
	}

	logger := logging.New(logging.LevelInfo)
	reg := metrics.NewRegistry()

	reader := kraft.NewReader(props.LogDir)
	resilientReader := broker.NewResilientReader(reader)

	// The metadata log is read fresh per dispatch (not here): a missing or
	// unreadable log dir at startup is not fatal, it just means every
	// dispatch answers "unknown topic" until the breaker's window passes
	// and the file becomes readable.
	dispatcher := broker.NewDispatcher(resilientReader, nullMessageStore{}, logger, reg)

	listener, err := net.Listen("tcp", props.Listener)
	if err != nil {
		return err
	}

	server := broker.NewServer(listener, dispatcher, logger, reg, file.Server.MaxConnections, toDuration(file.Server.ShutdownTimeout))

	stopMetrics := make(chan struct{})
	reg.StartPeriodicLog(logger, toDuration(file.Metrics.Interval), stopMetrics)
	defer close(stopMetrics)

	serveErr := make(chan error, 1)
	go func() { serveErr <- server.Serve() }()

	logger.Infof("listening on %s, metadata log %s", props.Listener, reader.Path())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Infof("received %s, shutting down", sig)
	case err := <-serveErr:
		if err != nil {
			logger.Errorf("accept loop stopped: %v", err)
			return err
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), toDuration(file.Server.ShutdownTimeout))
	defer shutdownCancel()
	return server.Shutdown(shutdownCtx)
}

// nullMessageStore is a local alias for store.NullStore, the message store
// the dispatcher is wired with.
type nullMessageStore = store.NullStore

func toDuration(d config.Duration) time.Duration {
	return time.Duration(d)
}

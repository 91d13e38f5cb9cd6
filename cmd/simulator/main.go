package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
)

var (
	addr      = flag.String("addr", ":9000", "Listen address for the simulated feed")
	muid      = flag.String("muid", "9badcc2e-f522-4814-a429-d61e4e1d6bf4", "Meter ID served in every record")
	days      = flag.Int("days", 7, "Days of history in the initial dataset")
	interval  = flag.Duration("interval", 15*time.Minute, "Spacing between readings")
	growEvery = flag.Duration("grow", 0, "Append one interval of readings this often (0 = static dataset)")
	failRate  = flag.Float64("fail-rate", 0, "Probability of answering 503 (tests breaker behavior)")
	verbose   = flag.Bool("verbose", false, "Enable verbose logging")
)

func main() {
	flag.Parse()

	var logger *zap.Logger
	var err error
	if *verbose {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	feed := NewFeed(FeedConfig{
		MeterID:  *muid,
		Days:     *days,
		Interval: *interval,
		FailRate: *failRate,
	}, logger)

	if *growEvery > 0 {
		go feed.Grow(*growEvery)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/active", feed.ServeActive)
	mux.HandleFunc("/reactive", feed.ServeReactive)

	srv := &http.Server{Addr: *addr, Handler: mux}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		fmt.Println("\nShutting down simulator...")
		srv.Close()
		os.Exit(0)
	}()

	fmt.Printf("Meter feed simulator started\n")
	fmt.Printf("  muid:     %s\n", *muid)
	fmt.Printf("  active:   http://localhost%s/active\n", *addr)
	fmt.Printf("  reactive: http://localhost%s/reactive\n", *addr)
	fmt.Println("\nPress Ctrl+C to stop")

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal("Simulator server failed", zap.Error(err))
	}
}

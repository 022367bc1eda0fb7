package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"connectivity-monitor/internal/config"
	"connectivity-monitor/internal/database"
	"connectivity-monitor/internal/monitor"
	"connectivity-monitor/internal/ping"
	"connectivity-monitor/internal/textlog"
	"connectivity-monitor/internal/web"
)

func main() {
	// Parse configuration
	cfg, err := config.ParseFlags()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// Initialize database
	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	// Initialize schema
	if err := db.InitSchema(); err != nil {
		log.Fatalf("Failed to initialize database schema: %v", err)
	}

	// Raw sockets need CAP_NET_RAW or root
	engine, results, err := ping.New(ping.Options{
		Timeout: cfg.PingTimeout(),
		IPv6:    cfg.IPv6,
		Debug:   cfg.Debug,
	})
	if err != nil {
		var sockErr *ping.SocketError
		if errors.As(err, &sockErr) {
			log.Fatalf("Cannot open %s socket, run with root or CAP_NET_RAW: %v", sockErr.Network, sockErr.Err)
		}
		log.Fatalf("Failed to start pinger: %v", err)
	}
	defer engine.Close()

	// Initialize components
	mon := monitor.New(cfg, db, engine, results)

	if cfg.ClearTextLog != "" {
		textLog, err := textlog.Open(cfg.ClearTextLog)
		if err != nil {
			log.Fatalf("Failed to open clear text log: %v", err)
		}
		defer textLog.Close()
		mon.AddSink(textLog)
	}

	webServer := web.New(cfg.BindAddress, mon, db)
	mon.AddObserver(webServer.Hub())

	// Handle shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	if err := mon.Start(); err != nil {
		log.Fatalf("Failed to start monitor: %v", err)
	}

	go func() {
		if err := webServer.Start(); err != nil {
			log.Fatalf("Failed to start web server: %v", err)
		}
	}()

	log.Printf("API available at http://%s/api/status", cfg.BindAddress)

	<-sigChan
	log.Println("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := webServer.Shutdown(ctx); err != nil {
		log.Printf("Web server shutdown: %v", err)
	}

	mon.Stop()
	if err := mon.Wait(); err != nil {
		log.Printf("Monitor stopped with error: %v", err)
	}
}

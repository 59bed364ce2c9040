package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/prodchat/chatctl/internal/backend"
	"github.com/prodchat/chatctl/internal/config"
	"github.com/prodchat/chatctl/internal/controller"
	"github.com/prodchat/chatctl/internal/logging"
	"github.com/prodchat/chatctl/internal/monitoring"
	"github.com/prodchat/chatctl/internal/shared/types"
	"github.com/prodchat/chatctl/internal/store"
)

func main() {
	// Parse flags
	configFile := flag.String("config", "", "YAML config file")
	backendURL := flag.String("backend", "", "Backend base URL (overrides config)")
	storePath := flag.String("store", "", "Session snapshot path (overrides config)")
	flag.Parse()

	cfg := config.LoadOrDefault()
	if *configFile != "" {
		if err := cfg.ApplyFile(*configFile); err != nil {
			log.Fatalf("Failed to apply config file: %v", err)
		}
	}
	if *backendURL != "" {
		cfg.Backend.URL = *backendURL
	}
	if *storePath != "" {
		cfg.Store.Path = *storePath
	}

	var logger *logging.Logger
	if cfg.Logging.Development {
		logger = logging.NewDevelopment()
	} else {
		logger = logging.NewDefault()
	}
	defer logger.Sync()

	metrics := monitoring.NewMetrics(prometheus.DefaultRegisterer)

	client := backend.NewClient(backend.Config{
		BaseURL:        cfg.Backend.URL,
		Timeout:        cfg.Backend.Timeout,
		HistoryRetries: cfg.Backend.HistoryRetries,
		RateLimit:      cfg.Backend.RateLimit,
	})

	ctrl := controller.New(client, store.NewFileStore(cfg.Store.Path), logger).
		WithMetrics(metrics)

	printer := &transcriptPrinter{}
	ctrl.OnChange(printer.Render)

	// Handle Ctrl-C while blocked on stdin
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Println()
		logger.Sync()
		os.Exit(0)
	}()

	ctrl.RestoreFromStorage()
	<-ctrl.ReconcileHistory()
	if ctrl.State().SessionID == "" {
		<-ctrl.StartSession()
	}

	fmt.Println("chatctl — type a message, /new for a fresh session, /stop to forget it, /quit to exit")
	repl(ctrl)
}

func repl(ctrl *controller.Controller) {
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return
		}
		line := strings.TrimSpace(scanner.Text())

		switch line {
		case "":
			continue
		case "/quit":
			return
		case "/new":
			<-ctrl.StartSession()
		case "/stop":
			ctrl.StopSession()
			fmt.Println("session stopped")
		default:
			<-ctrl.SendMessage(line)
		}
	}
}

// transcriptPrinter prints transcript entries as they appear. State
// changes arrive from multiple goroutines; printed tracks how many entries
// have already been shown.
type transcriptPrinter struct {
	mu      sync.Mutex
	printed int
}

func (p *transcriptPrinter) Render(state controller.State) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(state.Messages) < p.printed {
		// Transcript was reset
		p.printed = 0
	}
	for _, m := range state.Messages[p.printed:] {
		if m.Role == types.RoleUser {
			fmt.Printf("you: %s\n", m.Message)
		} else {
			fmt.Printf("bot: %s\n", m.Message)
		}
	}
	p.printed = len(state.Messages)
}

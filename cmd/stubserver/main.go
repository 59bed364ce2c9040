package main

import (
	"flag"
	"log"

	"github.com/prodchat/chatctl/internal/logging"
	"github.com/prodchat/chatctl/internal/stub"
)

func main() {
	// Parse flags
	addr := flag.String("addr", "127.0.0.1:8000", "Listen address")
	dev := flag.Bool("dev", false, "Development logging")
	flag.Parse()

	var logger *logging.Logger
	if *dev {
		logger = logging.NewDevelopment()
	} else {
		logger = logging.NewDefault()
	}
	defer logger.Sync()

	srv := stub.New(logger)
	log.Printf("stub chat service listening on %s", *addr)
	if err := srv.Run(*addr); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

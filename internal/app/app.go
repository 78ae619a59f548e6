package app

import (
	"context"
	"flag"
	"os"
	"strconv"

	"ipamd/internal/app/bootstrap"
	"ipamd/internal/app/server"
	"ipamd/internal/config"
	"ipamd/internal/jobs/runtime"
	"ipamd/internal/support"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
)

// Run wires the whole service together and blocks on the HTTP server.
func Run() error {
	if err := godotenv.Load(); err != nil {
		log.Warn("No .env file found. Falling back to system environment variables.")
	}

	log.Info("Starting ipamd")

	portFlag := flag.Int("port", 8082, "Port to listen on")
	productionFlag := flag.Bool("production", false, "Run in production mode")
	flag.Parse()

	config.SetProductionMode(*productionFlag)
	applyLogLevel()

	port, err := strconv.Atoi(os.Getenv("PORT"))
	if err != nil || port == 0 {
		port = *portFlag
	}

	if err := bootstrap.Setup(); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// the background jobs need redis; the API itself keeps working
	// without it
	if client, err := support.GetRedisClient(); err != nil {
		log.Warn("Redis unavailable, background jobs disabled", "error", err)
	} else {
		stopPresence := runtime.LaunchPresence(ctx, client)
		defer stopPresence()
		go runtime.StartSubnetUsageRoutine(ctx, client)
		defer func() {
			if err := support.CloseRedisClient(); err != nil {
				log.Warn("error closing redis client", "error", err)
			}
		}()
	}

	return server.OpenRoutes(port)
}

// applyLogLevel keeps debug output out of production logs.
func applyLogLevel() {
	if config.InProductionMode {
		log.SetLevel(log.InfoLevel)
		return
	}
	log.SetLevel(log.DebugLevel)
}

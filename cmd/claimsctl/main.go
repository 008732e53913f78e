package main

import (
	"context"
	"log"
	"os"

	"github.com/dmitrijs2005/claimdesk/internal/flagx"
	"github.com/dmitrijs2005/claimdesk/internal/logging"
	"github.com/dmitrijs2005/claimdesk/internal/ops"
	"github.com/dmitrijs2005/claimdesk/internal/server/config"
)

func main() {

	ctx := context.Background()
	cfg := config.LoadConfig()
	logger := logging.NewJSON(os.Stderr, cfg.LogLevel)

	name, args := flagx.SplitCommand(os.Args[1:])
	app := ops.NewApp(cfg, logger, os.Stdin, os.Stdout)

	if err := app.Run(ctx, name, args); err != nil {
		log.Fatalf("%v", err)
	}

}

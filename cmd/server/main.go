package main

import (
	"context"
	"log"

	"github.com/vizzyhq/vizzy/internal/server"
	"github.com/vizzyhq/vizzy/internal/server/config"
)

func main() {

	ctx := context.Background()
	cfg := config.LoadConfig()
	app, err := server.NewApp(ctx, cfg)

	if err != nil {
		log.Printf("%v", err)
		return
	}

	app.Run(ctx)

}

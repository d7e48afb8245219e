package main

import (
	"context"
	"log"
	"os"

	"github.com/BakeNecko/sidus-heroes/internal/buildinfo"
	"github.com/BakeNecko/sidus-heroes/internal/server"
	"github.com/BakeNecko/sidus-heroes/internal/server/config"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	ctx := context.Background()
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("%v", err)
	}

	app, err := server.NewApp(ctx, cfg)
	if err != nil {
		log.Fatalf("%v", err)
	}

	app.Run(ctx)

}

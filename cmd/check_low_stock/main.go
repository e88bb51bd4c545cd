// check_low_stock ejecuta una vez el barrido de existencias bajas y publica los
// avisos como lo haría el job programado. Útil desde cron del sistema.
package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/jhoicas/Reparaciones-api/internal/application/events"
	"github.com/jhoicas/Reparaciones-api/internal/application/inventory"
	"github.com/jhoicas/Reparaciones-api/internal/infrastructure/notify"
	"github.com/jhoicas/Reparaciones-api/internal/infrastructure/postgres"
	"github.com/jhoicas/Reparaciones-api/pkg/config"
	"github.com/jhoicas/Reparaciones-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cargar configuración: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.Log.Level, App: "check_low_stock"})

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	var pub events.Publisher = notify.NewLogPublisher(log)
	if cfg.Redis.Addr != "" {
		client, err := notify.NewRedisClient(ctx, cfg.Redis.Addr)
		if err != nil {
			log.Warn().Err(err).Msg("redis no disponible, avisos solo al log")
		} else {
			defer client.Close()
			pub = notify.Multi{pub, notify.NewRedisPublisher(client, cfg.Redis.Channel)}
		}
	}

	sweeper := inventory.NewLowStockUseCase(postgres.NewStore(pool), events.NewDispatcher(pub, log))
	items, err := sweeper.Sweep(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("barrido de existencias bajas")
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "SKU\tNOMBRE\tCANTIDAD\tMINIMO")
	for _, it := range items {
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\n", it.SKU, it.Name, it.Quantity, it.MinQuantity)
	}
	w.Flush()
}

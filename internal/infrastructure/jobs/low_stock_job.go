// Package jobs tareas programadas del servicio.
package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/jhoicas/Reparaciones-api/internal/application/inventory"
	"github.com/jhoicas/Reparaciones-api/pkg/logger"
)

// LowStockJob corre el barrido de existencias bajas según una expresión cron.
type LowStockJob struct {
	sweeper *inventory.LowStockUseCase
	cron    *cron.Cron
	spec    string
	log     *logger.Logger
}

// NewLowStockJob crea el job. spec es una expresión cron de 5 campos ("0 8 * * *").
// loc fija la zona horaria del calendario; nil usa la local.
func NewLowStockJob(sweeper *inventory.LowStockUseCase, spec string, loc *time.Location, log *logger.Logger) *LowStockJob {
	opts := []cron.Option{}
	if loc != nil {
		opts = append(opts, cron.WithLocation(loc))
	}
	return &LowStockJob{
		sweeper: sweeper,
		cron:    cron.New(opts...),
		spec:    spec,
		log:     log,
	}
}

// Run ejecuta un barrido inmediato.
func (j *LowStockJob) Run(ctx context.Context) {
	items, err := j.sweeper.Sweep(ctx)
	if err != nil {
		j.log.Error().Err(err).Msg("barrido de existencias bajas")
		return
	}
	j.log.Info().Int("articulos", len(items)).Msg("barrido de existencias bajas")
}

// Start programa el barrido.
func (j *LowStockJob) Start() error {
	if _, err := j.cron.AddFunc(j.spec, func() { j.Run(context.Background()) }); err != nil {
		return err
	}
	j.cron.Start()
	j.log.Info().Str("cron", j.spec).Msg("job de existencias bajas iniciado")
	return nil
}

// Stop detiene el programador y espera a que termine un barrido en curso.
func (j *LowStockJob) Stop() {
	<-j.cron.Stop().Done()
	j.log.Info().Msg("job de existencias bajas detenido")
}

// Aplica el esquema del núcleo de admisiones a cada almacén de campus
// configurado. Idempotente: el esquema usa IF NOT EXISTS.
package main

import (
	"context"
	"os"
	"time"

	"github.com/tu-usuario/admission-core/internal/infrastructure/postgres"
	"github.com/tu-usuario/admission-core/pkg/config"
	"github.com/tu-usuario/admission-core/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.New(logger.Config{}).Fatal().Err(err).Msg("cargar configuración")
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})

	if len(cfg.Tenants) == 0 {
		log.Fatal().Msg("sin campus configurados (variable TENANTS)")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	failed := false
	for _, tc := range cfg.Tenants {
		if !tc.Enabled {
			log.Warn().Str("tenant", tc.ID).Msg("campus deshabilitado, se omite")
			continue
		}
		pool, err := postgres.NewPool(ctx, tc.DSN)
		if err != nil {
			log.Error().Err(err).Str("tenant", tc.ID).Msg("conectar almacén")
			failed = true
			continue
		}
		if _, err := pool.Exec(ctx, postgres.SchemaSQL); err != nil {
			log.Error().Err(err).Str("tenant", tc.ID).Msg("aplicar esquema")
			failed = true
		} else {
			log.Info().Str("tenant", tc.ID).Msg("esquema aplicado")
		}
		pool.Close()
	}
	if failed {
		os.Exit(1)
	}
}

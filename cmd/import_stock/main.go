// import_stock carga existencias iniciales desde un CSV exportado del sistema anterior.
//
// Uso: go run ./cmd/import_stock [-latin1] [-sep ';'] ruta/existencias.csv
// Columnas: sku, nombre, cantidad, minimo, ubicacion (la primera fila es encabezado).
// Un SKU nuevo se da de alta; uno existente recibe la cantidad como entrada.
package main

import (
	"context"
	"encoding/csv"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/jhoicas/Reparaciones-api/internal/application/events"
	"github.com/jhoicas/Reparaciones-api/internal/application/inventory"
	"github.com/jhoicas/Reparaciones-api/internal/domain"
	"github.com/jhoicas/Reparaciones-api/internal/infrastructure/notify"
	"github.com/jhoicas/Reparaciones-api/internal/infrastructure/postgres"
	"github.com/jhoicas/Reparaciones-api/pkg/config"
	"github.com/jhoicas/Reparaciones-api/pkg/logger"
)

const importAuthor = "import_stock"

type row struct {
	line     int
	sku      string
	name     string
	quantity int
	min      int
	location string
}

func main() {
	latin1 := flag.Bool("latin1", false, "el archivo viene en ISO-8859-1 (exportaciones de Excel)")
	sep := flag.String("sep", ";", "separador de columnas")
	flag.Parse()
	if flag.NArg() != 1 || len(*sep) != 1 {
		fmt.Fprintln(os.Stderr, "uso: import_stock [-latin1] [-sep ';'] archivo.csv")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cargar configuración: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.Log.Level, App: "import_stock"})

	f, err := os.Open(flag.Arg(0))
	if err != nil {
		log.Fatal().Err(err).Msg("abrir CSV")
	}
	defer f.Close()

	var r io.Reader = f
	if *latin1 {
		r = transform.NewReader(f, charmap.ISO8859_1.NewDecoder())
	}
	rows, err := readRows(r, rune((*sep)[0]))
	if err != nil {
		log.Fatal().Err(err).Msg("leer CSV")
	}

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()
	if _, err := postgres.Migrate(ctx, pool); err != nil {
		log.Fatal().Err(err).Msg("migraciones")
	}

	store := postgres.NewStore(pool)
	dispatcher := events.NewDispatcher(notify.NewLogPublisher(log), log)
	stock := inventory.NewStockUseCase(postgres.NewTxRunner(pool), store, dispatcher)

	var created, received, failed int
	for _, rw := range rows {
		existing, err := store.Items().GetBySKU(ctx, rw.sku)
		if err != nil {
			log.Fatal().Err(err).Str("sku", rw.sku).Msg("consultar artículo")
		}
		if existing == nil {
			_, err = stock.CreateItem(ctx, inventory.NewItemInput{
				SKU:         rw.sku,
				Name:        rw.name,
				Quantity:    rw.quantity,
				MinQuantity: rw.min,
				Location:    rw.location,
				AuthorID:    importAuthor,
			})
			if err == nil {
				created++
			}
		} else if rw.quantity > 0 {
			_, err = stock.ReceiveStock(ctx, inventory.MovementInput{
				SKU:      rw.sku,
				Quantity: rw.quantity,
				Reason:   "Importación CSV",
				AuthorID: importAuthor,
			})
			if err == nil {
				received++
			}
		}
		if err != nil {
			failed++
			log.Warn().Err(err).Int("linea", rw.line).Str("sku", rw.sku).Msg("fila omitida")
		}
	}
	log.Info().Int("altas", created).Int("entradas", received).Int("omitidas", failed).Msg("importación terminada")
}

// readRows valida todas las filas antes de escribir nada.
func readRows(r io.Reader, sep rune) ([]row, error) {
	cr := csv.NewReader(r)
	cr.Comma = sep
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return nil, errors.New("el archivo no tiene filas de datos")
	}
	var out []row
	var errs []error
	for i, rec := range records[1:] {
		line := i + 2
		if len(rec) < 3 {
			errs = append(errs, fmt.Errorf("línea %d: se esperan al menos sku, nombre y cantidad", line))
			continue
		}
		rw := row{line: line, sku: strings.TrimSpace(rec[0]), name: strings.TrimSpace(rec[1])}
		if rw.sku == "" {
			errs = append(errs, fmt.Errorf("línea %d: %w", line, domain.Invalid("sku", "requerido")))
			continue
		}
		if rw.quantity, err = strconv.Atoi(strings.TrimSpace(rec[2])); err != nil || rw.quantity < 0 {
			errs = append(errs, fmt.Errorf("línea %d: cantidad inválida %q", line, rec[2]))
			continue
		}
		if len(rec) > 3 && strings.TrimSpace(rec[3]) != "" {
			if rw.min, err = strconv.Atoi(strings.TrimSpace(rec[3])); err != nil || rw.min < 0 {
				errs = append(errs, fmt.Errorf("línea %d: mínimo inválido %q", line, rec[3]))
				continue
			}
		}
		if len(rec) > 4 {
			rw.location = strings.TrimSpace(rec[4])
		}
		out = append(out, rw)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return out, nil
}

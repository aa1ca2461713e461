package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/Liqwid-Labs/ogmios-client-go/pkg/log"
	"github.com/Liqwid-Labs/ogmios-client-go/pkg/ogmios"
)

// MempoolExporter writes recorded mempool transactions as CSV.
type MempoolExporter struct {
	store *MempoolStore
}

func NewMempoolExporter(store *MempoolStore) *MempoolExporter {
	return &MempoolExporter{store: store}
}

// ExportToCSV writes up to limit records, most recently seen first.
func (e *MempoolExporter) ExportToCSV(ctx context.Context, writer io.Writer, limit int) error {
	records, err := e.store.Recent(ctx, limit)
	if err != nil {
		return fmt.Errorf("failed to get mempool transactions: %w", err)
	}

	csvWriter := csv.NewWriter(writer)
	defer csvWriter.Flush()

	header := []string{"TxID", "FirstSeenSlot", "LastSeenSlot", "Fee", "Inputs", "Outputs", "OutputAda", "SeenCount", "FirstSeenAt", "LastSeenAt"}
	if err := csvWriter.Write(header); err != nil {
		return fmt.Errorf("failed to write header to CSV: %w", err)
	}

	for _, rec := range records {
		row := []string{
			rec.TxID,
			strconv.FormatUint(rec.FirstSeenSlot, 10),
			strconv.FormatUint(rec.LastSeenSlot, 10),
			fmtAda(ogmios.LovelaceToAda(rec.Fee)),
			strconv.Itoa(rec.InputCount),
			strconv.Itoa(rec.OutputCount),
			fmtAda(ogmios.LovelaceToAda(rec.OutputLovelace)),
			strconv.Itoa(rec.SeenCount),
			rec.FirstSeenAt.UTC().Format(time.RFC3339),
			rec.LastSeenAt.UTC().Format(time.RFC3339),
		}
		if err := csvWriter.Write(row); err != nil {
			return fmt.Errorf("failed to write row to CSV: %w", err)
		}
	}
	csvWriter.Flush()
	return csvWriter.Error()
}

// ExportToFile writes the CSV export into dir and returns the file name.
func (e *MempoolExporter) ExportToFile(ctx context.Context, dir string, limit int) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	fileName := filepath.Join(dir, fmt.Sprintf("mempool_%s.csv", time.Now().UTC().Format("20060102T150405Z")))
	file, err := os.Create(fileName)
	if err != nil {
		return "", fmt.Errorf("failed to create CSV file %s: %w", fileName, err)
	}
	defer file.Close()

	if err := e.ExportToCSV(ctx, file, limit); err != nil {
		return "", fmt.Errorf("failed to export to CSV: %w", err)
	}
	return fileName, nil
}

// runExportCli dumps the mempool recorder as CSV.
// Example: ogmios export --limit 100 --dir ./exports
func runExportCli(ctx context.Context, config *Config, args []string, out io.Writer) error {
	logger := log.FromContext(ctx)

	var (
		dir   string
		limit int
	)
	fs := newFlagSet("export", out)
	fs.StringVar(&dir, "dir", "", "write a file into this directory instead of stdout")
	fs.IntVar(&limit, "limit", 1000, "maximum number of transactions")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if limit <= 0 {
		return fmt.Errorf("limit must be positive, got %d", limit)
	}

	db, err := ConnectToDB(config.DB, logger)
	if err != nil {
		return fmt.Errorf("failed to setup database: %w", err)
	}
	exporter := NewMempoolExporter(NewMempoolStore(db))

	if dir == "" {
		return exporter.ExportToCSV(ctx, out, limit)
	}
	fileName, err := exporter.ExportToFile(ctx, dir, limit)
	if err != nil {
		return err
	}
	logger.Info("exported mempool transactions", "file", fileName)
	return nil
}

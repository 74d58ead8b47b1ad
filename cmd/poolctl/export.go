package main

import (
	"fmt"
	"os"
	"time"

	"github.com/xitongsys/parquet-go-source/writerfile"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/writer"

	poolv1 "vusdpool/proto/pool/v1"
)

// settlementRow is the Parquet schema for exported history. Amounts stay
// decimal strings so 256-bit values survive the round trip.
type settlementRow struct {
	ReceiptID    string `parquet:"name=receipt_id, type=UTF8"`
	Op           string `parquet:"name=op, type=UTF8, encoding=PLAIN_DICTIONARY"`
	Actor        string `parquet:"name=actor, type=UTF8, encoding=PLAIN_DICTIONARY"`
	Counterparty string `parquet:"name=counterparty, type=UTF8"`
	Amount       string `parquet:"name=amount, type=UTF8"`
	Bonus        string `parquet:"name=bonus, type=UTF8"`
	Status       string `parquet:"name=status, type=UTF8, encoding=PLAIN_DICTIONARY"`
	Attempts     int32  `parquet:"name=attempts, type=INT32"`
	ExternalRef  string `parquet:"name=external_ref, type=UTF8"`
	Digest       string `parquet:"name=digest, type=UTF8"`
	CommittedAt  string `parquet:"name=committed_at, type=UTF8"`
}

func writeSettlementsParquet(path string, rows []*poolv1.Settlement) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create parquet: %w", err)
	}
	fw := writerfile.NewWriterFile(file)
	pw, err := writer.NewParquetWriter(fw, new(settlementRow), 1)
	if err != nil {
		file.Close()
		return fmt.Errorf("parquet schema: %w", err)
	}
	pw.CompressionType = parquet.CompressionCodec_SNAPPY

	for _, row := range rows {
		if row == nil {
			continue
		}
		pr := &settlementRow{
			ReceiptID:    row.ReceiptID,
			Op:           row.Op,
			Actor:        row.Actor,
			Counterparty: row.Counterparty,
			Amount:       row.Amount,
			Bonus:        row.Bonus,
			Status:       row.Status,
			Attempts:     int32(row.Attempts),
			ExternalRef:  row.ExternalRef,
			Digest:       row.Digest,
			CommittedAt:  row.CommittedAt.UTC().Format(time.RFC3339Nano),
		}
		if err := pw.Write(pr); err != nil {
			pw.WriteStop()
			file.Close()
			return fmt.Errorf("parquet write: %w", err)
		}
	}
	if err := pw.WriteStop(); err != nil {
		file.Close()
		return fmt.Errorf("parquet flush: %w", err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("close parquet file: %w", err)
	}
	return nil
}

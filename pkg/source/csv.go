package source

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
	"golang.org/x/text/encoding/charmap"

	"github.com/David-Botos/import-cif/pkg/model"
)

// CSVSource reads a latin-1 encoded delimited export
type CSVSource struct {
	path      string
	delimiter rune
	logger    *zap.Logger
}

// NewCSVSource creates a file source. An empty delimiter means ','.
func NewCSVSource(path, delimiter string, logger *zap.Logger) (*CSVSource, error) {
	if path == "" {
		return nil, errors.New("source path cannot be empty")
	}
	d := ','
	if delimiter != "" {
		r, size := utf8.DecodeRuneInString(delimiter)
		if size != len(delimiter) || r == '"' || r == '\r' || r == '\n' {
			return nil, fmt.Errorf("invalid delimiter %q", delimiter)
		}
		d = r
	}
	if logger == nil {
		logger = zap.L()
	}
	return &CSVSource{path: path, delimiter: d, logger: logger.Named("csv-source")}, nil
}

// Name returns the file path
func (s *CSVSource) Name() string { return s.path }

// Read loads the whole file
func (s *CSVSource) Read(ctx context.Context) (model.RawBatch, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return model.RawBatch{}, fmt.Errorf("failed to open source file: %w", err)
	}
	defer f.Close()

	batch, err := ReadCSV(ctx, f, s.path, s.delimiter)
	if err != nil {
		return model.RawBatch{}, err
	}

	s.logger.Info("Read source file",
		zap.String("path", s.path),
		zap.Int("columns", len(batch.Metadata.Columns)),
		zap.Int("rows", len(batch.Records)))
	return batch, nil
}

// ReadCSV decodes latin-1 text from r and maps every data row onto a RawRecord.
// Missing mandatory columns are reported before any row is read.
func ReadCSV(ctx context.Context, r io.Reader, name string, delimiter rune) (model.RawBatch, error) {
	reader := csv.NewReader(charmap.ISO8859_1.NewDecoder().Reader(r))
	reader.Comma = delimiter
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return model.RawBatch{}, fmt.Errorf("source %s is empty", name)
		}
		return model.RawBatch{}, fmt.Errorf("failed to read header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	metadata := model.NewTableMetadata("", name, header)
	if err := CheckColumns(metadata); err != nil {
		return model.RawBatch{}, err
	}

	mapper := newRowMapper(metadata)
	batch := model.RawBatch{Metadata: metadata}
	for {
		if len(batch.Records)%10000 == 0 {
			if err := ctx.Err(); err != nil {
				return model.RawBatch{}, err
			}
		}

		cells, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return model.RawBatch{}, fmt.Errorf("failed to read %s: %w", name, err)
		}

		line, _ := reader.FieldPos(0)
		batch.Records = append(batch.Records, mapper.record(line, cells))
	}

	return batch, nil
}

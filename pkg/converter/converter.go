// pkg/converter/converter.go
package converter

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// CellConverter renders warehouse driver values as the text cells the
// cleaning pipeline expects from a delimited export
type CellConverter struct {
	logger *zap.Logger
	// Configuration options
	config CellConverterConfig
}

// CellConverterConfig provides configuration options for cell conversion
type CellConverterConfig struct {
	// Decimal separator written for fractional numbers. The cleaner strips
	// '.' as a thousands separator, so only ',' round-trips.
	DecimalSeparator string
	// Whether to treat empty strings as NULL
	EmptyStringAsNull bool
	// Text values that mean NULL in the warehouse
	NullMarkers []string
}

// DefaultConfig matches the file export: decimal comma, no thousands separator
func DefaultConfig() CellConverterConfig {
	return CellConverterConfig{
		DecimalSeparator:  ",",
		EmptyStringAsNull: true,
		NullMarkers:       []string{"null", "NULL", "nil", "NIL", "nan", "NaN"},
	}
}

// NewCellConverter creates a new CellConverter with default configuration
func NewCellConverter(logger *zap.Logger) *CellConverter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CellConverter{
		logger: logger,
		config: DefaultConfig(),
	}
}

// NewCellConverterWithConfig creates a CellConverter with custom configuration.
// It fails for a decimal separator the cleaner would not read back.
func NewCellConverterWithConfig(logger *zap.Logger, config CellConverterConfig) (*CellConverter, error) {
	if config.DecimalSeparator == "" {
		config.DecimalSeparator = ","
	}
	if config.DecimalSeparator != "," {
		return nil, fmt.Errorf("decimal separator %q is not supported, cells must use ','", config.DecimalSeparator)
	}
	c := NewCellConverter(logger)
	c.config = config
	return c, nil
}

// getBaseType extracts the base type from a complex type definition
func getBaseType(fullType string) string {
	parts := strings.Split(fullType, "(")
	return strings.ToUpper(strings.TrimSpace(parts[0]))
}

// IsNumericType reports whether a driver type name holds numbers. Both
// postgres (pgx) and snowflake names are recognised.
func IsNumericType(dataType string) bool {
	switch getBaseType(dataType) {
	case "NUMBER", "FIXED", "NUMERIC", "DECIMAL", "REAL", "FLOAT", "FLOAT4", "FLOAT8",
		"DOUBLE", "DOUBLE PRECISION", "INT", "INT2", "INT4", "INT8",
		"INTEGER", "SMALLINT", "BIGINT":
		return true
	default:
		return false
	}
}

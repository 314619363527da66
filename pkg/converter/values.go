// pkg/converter/values.go
package converter

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/spf13/cast"
	"go.uber.org/zap"
)

// ToCell converts one driver value into cell text. Numbers are written in the
// export locale so that the cleaner parses them the same way as file input.
// NULL becomes the empty cell.
func (c *CellConverter) ToCell(value interface{}, dataType string) string {
	if c.isNull(value) {
		return ""
	}

	switch v := value.(type) {
	case float32:
		return c.formatFloat(float64(v))
	case float64:
		return c.formatFloat(v)
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return cast.ToString(v)
	case bool:
		return strconv.FormatBool(v)
	case time.Time:
		return v.Format(time.RFC3339)
	case []byte:
		return c.convertText(string(v), dataType)
	case string:
		return c.convertText(v, dataType)
	}

	s, err := cast.ToStringE(value)
	if err == nil {
		return c.convertText(s, dataType)
	}

	// Complex values (VARIANT, arrays) end up as JSON text
	jsonBytes, err := json.Marshal(value)
	if err != nil {
		c.logger.Warn("Unconvertible cell value", zap.String("type", fmt.Sprintf("%T", value)), zap.Error(err))
		return fmt.Sprintf("%v", value)
	}
	return string(jsonBytes)
}

// convertText handles text values. Drivers return exact numerics (NUMERIC,
// NUMBER(p,s)) as strings with a '.' decimal point, which would read as a
// thousands separator, so those are re-rendered.
func (c *CellConverter) convertText(s, dataType string) string {
	if !IsNumericType(dataType) {
		return s
	}
	f, err := cast.ToFloat64E(strings.TrimSpace(s))
	if err != nil {
		c.logger.Debug("Numeric column holds non numeric text",
			zap.String("dataType", dataType),
			zap.String("value", s))
		return s
	}
	return c.formatFloat(f)
}

func (c *CellConverter) formatFloat(f float64) string {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return ""
	}
	s := strconv.FormatFloat(f, 'f', -1, 64)
	return strings.Replace(s, ".", c.config.DecimalSeparator, 1)
}

// isNull determines if a value should be treated as NULL
func (c *CellConverter) isNull(value interface{}) bool {
	if value == nil {
		return true
	}

	if strVal, ok := value.(string); ok {
		if strVal == "" {
			return c.config.EmptyStringAsNull
		}
		for _, null := range c.config.NullMarkers {
			if strVal == null {
				return true
			}
		}
	}

	return false
}

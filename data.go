// FILE: lixenwraith/lconfig/data.go
package lconfig

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/agilira/go-errors"
	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/mat"
)

// timestampLayout matches the asctime() text the driver writes after "#:".
const timestampLayout = "Mon Jan 2 15:04:05 2006"

// Timestamp is the acquisition start time recorded in the data block.
// Raw always holds the text after the marker; the parsed fields are only
// meaningful when Valid is true.
type Timestamp struct {
	Raw     string
	Weekday string
	Month   int // 1-12
	Day     int
	Hour    int
	Minute  int
	Second  int
	Year    int
	Valid   bool
}

// Time returns the timestamp as a UTC time.Time.
func (ts Timestamp) Time() (time.Time, bool) {
	if !ts.Valid {
		return time.Time{}, false
	}
	return time.Date(ts.Year, time.Month(ts.Month), ts.Day, ts.Hour, ts.Minute, ts.Second, 0, time.UTC), true
}

// String implements fmt.Stringer.
func (ts Timestamp) String() string {
	return ts.Raw
}

// parseTimestamp reads "weekday month day HH:MM:SS year".
// The returned Timestamp keeps Raw even when err is not nil.
func parseTimestamp(raw string) (Timestamp, error) {
	ts := Timestamp{Raw: strings.TrimSpace(raw)}
	fields := strings.Fields(ts.Raw)
	t, err := time.Parse(timestampLayout, strings.Join(fields, " "))
	if err != nil {
		return ts, err
	}
	ts.Weekday = fields[0]
	ts.Month = int(t.Month())
	ts.Day = t.Day()
	ts.Hour = t.Hour()
	ts.Minute = t.Minute()
	ts.Second = t.Second()
	ts.Year = t.Year()
	ts.Valid = true
	return ts, nil
}

// dataBlock is what follows the header terminator.
type dataBlock struct {
	start   Timestamp
	samples *mat.Dense // nil when no rows were read
	rows    int
}

// readDataBlock consumes r to EOF. line is the file line r is positioned at
// and ncol the analog input count every row must match.
func readDataBlock(r *bufio.Reader, line, ncol int, logger zerolog.Logger) (*dataBlock, error) {
	block := &dataBlock{}
	var flat []float64

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for ; sc.Scan(); line++ {
		text := strings.TrimSpace(sc.Text())

		if strings.HasPrefix(text, timestampMarker) {
			ts, err := parseTimestamp(text[len(timestampMarker):])
			if err != nil {
				logger.Warn().
					Err(err).
					Str("raw", ts.Raw).
					Int("line", line).
					Msg("unparseable start timestamp")
			}
			block.start = ts
			continue
		}
		if strings.HasPrefix(text, "#") {
			continue
		}

		fields := strings.Fields(text)
		if len(fields) == 0 {
			continue
		}
		if len(fields) != ncol {
			return nil, errors.New(ErrCodeColumnMismatch,
				fmt.Sprintf("data line has %d columns but %d analog inputs are configured", len(fields), ncol)).
				WithContext("line", line).
				WithContext("columns", len(fields)).
				WithContext("channels", ncol)
		}
		for _, f := range fields {
			v, err := strconv.ParseFloat(f, 64)
			if err != nil {
				return nil, errors.Wrap(err, ErrCodeConversion, fmt.Sprintf("failed to convert data value %q", f)).
					WithContext("line", line).
					WithContext("value", f)
			}
			flat = append(flat, v)
		}
		block.rows++
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(err, ErrCodeIO, "failed to read data block").
			WithContext("line", line)
	}

	if block.rows > 0 {
		block.samples = mat.NewDense(block.rows, ncol, flat)
	}

	logger.Debug().
		Int("rows", block.rows).
		Int("columns", ncol).
		Bool("timestamp", block.start.Valid).
		Msg("data block read")
	return block, nil
}

package tracelog

import (
	"bytes"
	"encoding/json"
	"time"
)

// TimestampLayout renders UTC times with millisecond precision,
// e.g. 2016-03-01T12:30:45.123Z.
const TimestampLayout = "2006-01-02T15:04:05.000Z"

// Envelope is the JSON object written for each line in JSON mode.
type Envelope struct {
	Level      string `json:"level"`
	LoggerName string `json:"logger_name"`
	ModuleName string `json:"module_name"`
	Message    string `json:"message"`
	Timestamp  string `json:"@timestamp"`
}

// FormatTimestamp converts t to UTC and renders it with TimestampLayout.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// MarshalLine encodes e as one line of JSON terminated by a newline.
// HTML characters are left unescaped.
func (e Envelope) MarshalLine() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(e); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

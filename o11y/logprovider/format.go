package logprovider

import (
	"bytes"
	"encoding/json"
	"fmt"
	"hash/crc32"
	"sort"
	"strings"
	"time"
)

type level int

const (
	levelDebug level = iota
	levelInfo
	levelWarn
	levelError
)

func parseLevel(s string) level {
	switch strings.ToLower(s) {
	case "debug":
		return levelDebug
	case "warn", "warning":
		return levelWarn
	case "error":
		return levelError
	}
	return levelInfo
}

// allows reports whether an event with this data passes the level filter.
// Successful spans are info, canceled spans are warnings and failed spans are errors.
func (l level) allows(data map[string]interface{}) bool {
	switch l {
	case levelWarn:
		return data["result"] == "error" || data["result"] == "canceled"
	case levelError:
		return data["result"] == "error"
	}
	return true
}

func formatJSON(data map[string]interface{}) []byte {
	b, err := json.Marshal(data)
	if err != nil {
		b, _ = json.Marshal(map[string]interface{}{
			"name":          data["name"],
			"marshal_error": err.Error(),
		})
	}
	return append(b, '\n')
}

func formatText(data map[string]interface{}, colour bool) []byte {
	buf := new(bytes.Buffer)
	ts, _ := data["timestamp"].(time.Time)
	duration := "-"
	if d, ok := data["duration_ms"].(float64); ok {
		duration = fmt.Sprintf("%.3fms", d)
	}
	_, _ = fmt.Fprintf(buf, "%s %s %s %s",
		ts.Format("15:04:05"),
		applyColour(shortID(data["trace.trace_id"]), colour),
		duration,
		applyColour(fmt.Sprintf("%s", data["name"]), colour),
	)

	for _, k := range sortedKeys(data) {
		if excluded(k) {
			continue
		}
		label := k
		if k == "error" && colour {
			label = errorHighlight(k)
		}
		_, _ = fmt.Fprintf(buf, " %s=%v", label, data[k])
	}
	buf.WriteString("\n")
	return buf.Bytes()
}

func excluded(k string) bool {
	switch k {
	case "name", "timestamp", "version", "service", "duration_ms":
		return true
	}
	for _, prefix := range []string{"trace.", "meta."} {
		if strings.HasPrefix(k, prefix) {
			return true
		}
	}
	return false
}

func shortID(raw interface{}) string {
	id, ok := raw.(string)
	if !ok || len(id) < 5 {
		return "unkwn"
	}
	return id[len(id)-5:]
}

func sortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// palette is the ansi 256 colour codes that read well on a dark terminal
var palette = func() []uint8 {
	var p []uint8
	for c := 9; c <= 231; c++ {
		switch {
		case c >= 15 && c <= 20, c >= 52 && c <= 62, c >= 88 && c <= 91, c == 145, c == 159:
			continue
		}
		p = append(p, uint8(c))
	}
	return p
}()

// applyColour picks a colour from a hash of the value, so the same trace id or span name
// renders in the same colour across lines and runs.
func applyColour(value string, colour bool) string {
	if !colour {
		return value
	}
	i := crc32.ChecksumIEEE([]byte(value)) % uint32(len(palette))
	return fmt.Sprintf("\033[1;38;5;%dm%s\033[0m", palette[i], value)
}

func errorHighlight(s string) string {
	return fmt.Sprintf("\033[1;37;41m%s\033[0m", s)
}

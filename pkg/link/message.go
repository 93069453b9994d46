// Package link carries rendered screens over a line based serial report
// stream.
package link

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/itohio/gospectro/pkg/render"
)

// Kind is the message type tag that starts every line.
type Kind byte

const (
	KindText     Kind = 'T'
	KindBars     Kind = 'B'
	KindRipeness Kind = 'R'
)

// MaxValue is the largest normalized channel value accepted by Parse.
const MaxValue = 69

// CommentPrefix starts device log lines sharing the report stream.
const CommentPrefix = "# "

// Message is one rendered screen.
type Message struct {
	Time   time.Time
	Kind   Kind
	Text   string // status text or bars title
	Score  uint8  // ripeness score
	Mode   string
	LED    string
	Values []uint8
}

// Encode formats m as a single line without the trailing newline.
// Format:
//
//	T,unix_micros,text
//	B,unix_micros,title,mode,led,v1;v2;...
//	R,unix_micros,score,mode,led,v1;v2;...
func Encode(m Message) string {
	ts := strconv.FormatInt(m.Time.UnixMicro(), 10)
	switch m.Kind {
	case KindText:
		return "T," + ts + "," + clean(m.Text)
	case KindBars:
		return strings.Join([]string{"B", ts, clean(m.Text), clean(m.Mode), clean(m.LED), encodeValues(m.Values)}, ",")
	case KindRipeness:
		return strings.Join([]string{"R", ts, strconv.Itoa(int(m.Score)), clean(m.Mode), clean(m.LED), encodeValues(m.Values)}, ",")
	default:
		return ""
	}
}

// Parse parses a line produced by Encode.
func Parse(line string) (Message, error) {
	if line == "" {
		return Message{}, fmt.Errorf("empty line")
	}

	kind := Kind(line[0])
	switch kind {
	case KindText:
		parts := strings.SplitN(line, ",", 3)
		if len(parts) != 3 || parts[0] != "T" {
			return Message{}, fmt.Errorf("invalid text line: expected 3 fields, got %d", len(parts))
		}
		ts, err := parseTime(parts[1])
		if err != nil {
			return Message{}, err
		}
		return Message{Time: ts, Kind: KindText, Text: parts[2]}, nil

	case KindBars, KindRipeness:
		parts := strings.Split(line, ",")
		if len(parts) != 6 || len(parts[0]) != 1 {
			return Message{}, fmt.Errorf("invalid line format: expected 6 comma-separated values, got %d", len(parts))
		}
		ts, err := parseTime(parts[1])
		if err != nil {
			return Message{}, err
		}
		values, err := parseValues(parts[5])
		if err != nil {
			return Message{}, err
		}
		m := Message{Time: ts, Kind: kind, Mode: parts[3], LED: parts[4], Values: values}
		if kind == KindBars {
			m.Text = parts[2]
			return m, nil
		}
		score, err := strconv.ParseUint(parts[2], 10, 8)
		if err != nil {
			return Message{}, fmt.Errorf("invalid score: %w", err)
		}
		m.Score = uint8(score)
		return m, nil
	}

	return Message{}, fmt.Errorf("unknown message kind %q", line[0])
}

// Apply draws m on sink.
func Apply(m Message, sink render.Sink) {
	switch m.Kind {
	case KindText:
		sink.Text(m.Text)
	case KindBars:
		sink.Bars(m.Text, m.Values, m.Mode, m.LED)
	case KindRipeness:
		sink.Ripeness(m.Score, m.Values, m.Mode, m.LED)
	}
}

func parseTime(s string) (time.Time, error) {
	micros, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp: %w", err)
	}
	return time.UnixMicro(micros), nil
}

func encodeValues(values []uint8) string {
	var sb strings.Builder
	for i, v := range values {
		if i > 0 {
			sb.WriteByte(';')
		}
		sb.WriteString(strconv.Itoa(int(v)))
	}
	return sb.String()
}

func parseValues(s string) ([]uint8, error) {
	if s == "" {
		return nil, nil
	}
	fields := strings.Split(s, ";")
	out := make([]uint8, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseUint(f, 10, 8)
		if err != nil {
			return nil, fmt.Errorf("invalid value %d: %w", i, err)
		}
		if v > MaxValue {
			return nil, fmt.Errorf("value %d out of range: %d (max %d)", i, v, MaxValue)
		}
		out[i] = uint8(v)
	}
	return out, nil
}

// clean keeps labels on one line and within their field.
func clean(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ',', '\n', '\r':
			return ' '
		}
		return r
	}, s)
}

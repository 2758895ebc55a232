package domain

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Notation identifies which written form a time expression used.
type Notation string

const (
	Notation24Hour       Notation = "24h"
	Notation12Hour       Notation = "12h"
	Notation12HourMinute Notation = "12h+min"
)

// TimeToken is one detected time expression. Start and End are byte offsets
// into the scanned text; Hour is already normalized to 24-hour form.
type TimeToken struct {
	Start    int
	End      int
	Hour     int
	Minute   int
	Notation Notation
}

var (
	re12HourMinute = regexp.MustCompile(`\b(1[0-2]|0?[1-9]):([0-5][0-9]) ?([AaPp][Mm])\b`)
	re12Hour       = regexp.MustCompile(`\b(1[0-2]|0?[1-9]) ?([AaPp][Mm])\b`)
	re24Hour       = regexp.MustCompile(`\b([0-1]?[0-9]|2[0-3]):([0-5][0-9])\b`)
)

// ScanTokens finds the time expressions in text. Notations are tried in
// priority order: 12-hour with minutes, bare 12-hour, then 24-hour. The
// first notation that matches anywhere claims the whole message, so a
// message mixing notations converts only the highest-priority one.
func ScanTokens(text string) ([]TimeToken, error) {
	if tokens, err := scan12HourMinute(text); err != nil || len(tokens) > 0 {
		return tokens, err
	}
	if tokens, err := scan12Hour(text); err != nil || len(tokens) > 0 {
		return tokens, err
	}
	return scan24Hour(text)
}

func scan12HourMinute(text string) ([]TimeToken, error) {
	var tokens []TimeToken
	for _, m := range re12HourMinute.FindAllStringSubmatchIndex(text, -1) {
		hour12, err := number(text, m[2], m[3])
		if err != nil {
			return nil, err
		}
		minute, err := number(text, m[4], m[5])
		if err != nil {
			return nil, err
		}
		hour, err := To24Hour(hour12, text[m[6]:m[7]])
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, TimeToken{
			Start:    m[0],
			End:      m[1],
			Hour:     hour,
			Minute:   minute,
			Notation: Notation12HourMinute,
		})
	}
	return tokens, nil
}

func scan12Hour(text string) ([]TimeToken, error) {
	var tokens []TimeToken
	for _, m := range re12Hour.FindAllStringSubmatchIndex(text, -1) {
		hour12, err := number(text, m[2], m[3])
		if err != nil {
			return nil, err
		}
		hour, err := To24Hour(hour12, text[m[4]:m[5]])
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, TimeToken{
			Start:    m[0],
			End:      m[1],
			Hour:     hour,
			Notation: Notation12Hour,
		})
	}
	return tokens, nil
}

func scan24Hour(text string) ([]TimeToken, error) {
	var tokens []TimeToken
	for _, m := range re24Hour.FindAllStringSubmatchIndex(text, -1) {
		hour, err := number(text, m[2], m[3])
		if err != nil {
			return nil, err
		}
		minute, err := number(text, m[4], m[5])
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, TimeToken{
			Start:    m[0],
			End:      m[1],
			Hour:     hour,
			Minute:   minute,
			Notation: Notation24Hour,
		})
	}
	return tokens, nil
}

func number(text string, start, end int) (int, error) {
	n, err := strconv.Atoi(text[start:end])
	if err != nil {
		return 0, fmt.Errorf("parse number %q: %w", text[start:end], err)
	}
	return n, nil
}

// To24Hour converts a 12-hour clock reading to a 24-hour one. The hour must
// be in 1..12 and the meridiem must be am or pm in any case.
func To24Hour(hour int, meridiem string) (int, error) {
	if hour < 1 || hour > 12 {
		return 0, fmt.Errorf("hour %d outside the 12-hour clock", hour)
	}
	switch strings.ToLower(meridiem) {
	case "am":
		if hour == 12 {
			return 0, nil
		}
		return hour, nil
	case "pm":
		if hour == 12 {
			return 12, nil
		}
		return hour + 12, nil
	}
	return 0, ErrInvalidMeridiem
}

// TimestampMarkup renders t as the chat platform's short-time markup, which
// clients display in each reader's own timezone.
func TimestampMarkup(t time.Time) string {
	return fmt.Sprintf("<t:%d:t>", t.Unix())
}

// RewriteContent replaces each token's span with the markup for the matching
// instant. Tokens must be ordered by start offset and lie within content.
func RewriteContent(content string, tokens []TimeToken, instants []time.Time) (string, error) {
	if len(tokens) != len(instants) {
		return "", fmt.Errorf("got %d tokens but %d instants", len(tokens), len(instants))
	}

	var b strings.Builder
	last := 0
	for i, tok := range tokens {
		if tok.Start < last || tok.End > len(content) || tok.Start > tok.End {
			return "", fmt.Errorf("token span %d..%d out of bounds", tok.Start, tok.End)
		}
		b.WriteString(content[last:tok.Start])
		b.WriteString(TimestampMarkup(instants[i]))
		last = tok.End
	}
	b.WriteString(content[last:])
	return b.String(), nil
}

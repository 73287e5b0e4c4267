package conf

import (
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"go.uber.org/zap"
)

// ============================================================================
// CONF READER — aXe-style "KEY value [value]" text files
// ============================================================================
// Each line is classified as one of:
//   1. blank / comment / indented          → ignored
//   2. KEY value                           → string or number
//   3. KEY min max                         → numeric pair (both must be numbers)
// Anything else (one token, four or more tokens) is ignored.
//
// Tokens are separated by runs of whitespace, or by a comma that has no digit
// on either side: "1,000" stays one token, "a,b" becomes two.
//
// Keys naming the filter-throughput and sensitivity tables are dropped; those
// files are only used for simulations.
// ============================================================================

// Pattern constants used by the classifier.
const (
	// NumberPattern is the permissive numeric grammar: optional sign, optional
	// integer and fractional digits, optional exponent.
	NumberPattern = `^[+\-]?\d*\.?\d*(?:[eE][+\-]?\d*)?$`

	// KeyStartPattern matches a line (or token) that starts with a letter.
	KeyStartPattern = `^[a-zA-Z]`
)

var (
	numberRe   = regexp.MustCompile(NumberPattern)
	keyStartRe = regexp.MustCompile(KeyStartPattern)
)

// Keys containing any of these substrings are never stored.
var deniedKeyParts = []string{"FILTER", "SENSITIVITY"}

var (
	// ErrMinMaxExpected is returned for a three-token line whose values are
	// not both numeric.
	ErrMinMaxExpected = errors.New("Min/max values expected")

	// ErrMalformedNumber is returned when a token passes the numeric grammar
	// but is not a number ("+", ".", "1e").
	ErrMalformedNumber = errors.New("malformed numeric value")
)

// Option configures the reader.
type Option func(*options)

type options struct {
	logger *zap.Logger
}

// WithLogger routes per-key diagnostics to l.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

func applyOptions(opts []Option) *options {
	o := &options{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// ReadFile reads the configuration file at path into a Record.
// The file is read in full and closed before any line is interpreted.
func ReadFile(path string, opts ...Option) (*Record, error) {
	o := applyOptions(opts)
	o.logger.Info("Reading configuration", zap.String("file", path))

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	rec, err := parseLines(splitLines(string(data)), o)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rec, nil
}

// Parse reads all of r and returns the accepted key/value pairs.
func Parse(r io.Reader, opts ...Option) (*Record, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration: %w", err)
	}
	return parseLines(splitLines(string(data)), applyOptions(opts))
}

func splitLines(s string) []string {
	return strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n")
}

func parseLines(lines []string, o *options) (*Record, error) {
	rec := NewRecord()
	for i, line := range lines {
		key, val, ok, err := ParseLine(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i+1, err)
		}
		if !ok || IsDenied(key) {
			continue
		}
		rec.Set(key, val)
		o.logger.Debug(fmt.Sprintf("Setting %s = %s", key, val),
			zap.String("key", key), zap.Stringer("value", val))
	}
	return rec, nil
}

// ParseLine classifies a single line. ok is false for lines that carry no
// key/value pair; err is non-nil only for malformed numeric content.
// The key denylist is not applied here, see IsDenied.
func ParseLine(line string) (key string, val Value, ok bool, err error) {
	if strings.TrimSpace(line) == "" || !keyStartRe.MatchString(line) {
		return "", Value{}, false, nil
	}

	tokens := Tokenize(strings.TrimSpace(line))
	switch len(tokens) {
	case 2:
		key = tokens[0]
		raw := tokens[1]
		if IsNumeric(raw) {
			f, err := parseNumber(raw)
			if err != nil {
				return "", Value{}, false, fmt.Errorf("%w for %s: %q", ErrMalformedNumber, key, raw)
			}
			return key, Number(f), true, nil
		}
		if keyStartRe.MatchString(raw) {
			return key, String(raw), true, nil
		}
		return "", Value{}, false, nil

	case 3:
		key = tokens[0]
		lo, hi := tokens[1], tokens[2]
		if !IsNumeric(lo) || !IsNumeric(hi) {
			return "", Value{}, false, fmt.Errorf("%w for %s", ErrMinMaxExpected, key)
		}
		a, err := parseNumber(lo)
		if err != nil {
			return "", Value{}, false, fmt.Errorf("%w for %s: %q", ErrMalformedNumber, key, lo)
		}
		b, err := parseNumber(hi)
		if err != nil {
			return "", Value{}, false, fmt.Errorf("%w for %s: %q", ErrMalformedNumber, key, hi)
		}
		return key, Pair(a, b), true, nil
	}
	return "", Value{}, false, nil
}

// IsDenied reports whether key names an auxiliary file that is not modelled.
func IsDenied(key string) bool {
	for _, part := range deniedKeyParts {
		if strings.Contains(key, part) {
			return true
		}
	}
	return false
}

// IsNumeric reports whether tok matches NumberPattern.
func IsNumeric(tok string) bool {
	return numberRe.MatchString(tok)
}

func parseNumber(tok string) (float64, error) {
	return strconv.ParseFloat(tok, 64)
}

// ============================================================================
// TOKENIZER
// ============================================================================

// Tokenize splits s on runs of whitespace and on commas that are neither
// preceded nor followed by a digit. Adjacent separators produce empty tokens,
// so "a , b" yields four tokens.
func Tokenize(s string) []string {
	runes := []rune(s)
	var tokens []string
	start := 0
	for i := 0; i < len(runes); {
		r := runes[i]
		switch {
		case unicode.IsSpace(r):
			j := i
			for j < len(runes) && unicode.IsSpace(runes[j]) {
				j++
			}
			tokens = append(tokens, string(runes[start:i]))
			start = j
			i = j
		case r == ',' && !digitAt(runes, i-1) && !digitAt(runes, i+1):
			tokens = append(tokens, string(runes[start:i]))
			start = i + 1
			i++
		default:
			i++
		}
	}
	return append(tokens, string(runes[start:]))
}

func digitAt(runes []rune, i int) bool {
	return i >= 0 && i < len(runes) && unicode.IsDigit(runes[i])
}

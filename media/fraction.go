package media

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidFraction is returned for fractions with a non-positive part.
var ErrInvalidFraction = errors.New("invalid fraction")

// Fraction is an exact rational such as a frame rate of 30000/1001.
type Fraction struct {
	Num int
	Den int
}

// Validate checks that both parts are positive.
func (f Fraction) Validate() error {
	if f.Num <= 0 || f.Den <= 0 {
		return fmt.Errorf("%w: %d/%d", ErrInvalidFraction, f.Num, f.Den)
	}
	return nil
}

// Float returns Num/Den.
func (f Fraction) Float() float64 {
	return float64(f.Num) / float64(f.Den)
}

// Reciprocal returns Den/Num.
func (f Fraction) Reciprocal() Fraction {
	return Fraction{Num: f.Den, Den: f.Num}
}

func (f Fraction) String() string {
	return strconv.Itoa(f.Num) + "/" + strconv.Itoa(f.Den)
}

// ParseFraction parses "num/den" or a plain integer.
func ParseFraction(s string) (Fraction, error) {
	num, den, found := strings.Cut(strings.TrimSpace(s), "/")
	f := Fraction{Den: 1}

	var err error
	if f.Num, err = strconv.Atoi(strings.TrimSpace(num)); err != nil {
		return Fraction{}, fmt.Errorf("%w: %q", ErrInvalidFraction, s)
	}
	if found {
		if f.Den, err = strconv.Atoi(strings.TrimSpace(den)); err != nil {
			return Fraction{}, fmt.Errorf("%w: %q", ErrInvalidFraction, s)
		}
	}
	if err := f.Validate(); err != nil {
		return Fraction{}, err
	}
	return f, nil
}

// MarshalText implements encoding.TextMarshaler.
func (f Fraction) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (f *Fraction) UnmarshalText(text []byte) error {
	parsed, err := ParseFraction(string(text))
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}

// Package e164 holds the phone number representation used by the discovery
// protocol and its fixed-width binary encoding.
//
// Numbers travel inside the encrypted query as unsigned 64-bit integers, big
// endian, 8 bytes per number. The string form is the E.164 format: a leading
// `+` followed by the country code and subscriber number.
package e164

import (
	"encoding/binary"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Width is the number of bytes a single encoded number occupies.
const Width = 8

// ErrInvalidNumber flags input that is not a usable E.164 number. Encoding
// stops at the first invalid number; the whole batch is rejected.
var ErrInvalidNumber = errors.New("invalid e164 number")

// Number is a phone number in E.164 string form, e.g. "+15551234567".
type Number string

// String implements fmt.Stringer.
func (n Number) String() string {
	return string(n)
}

// Uint64 parses the numeric value of the number. It fails when the leading
// `+` is missing, the remainder is not decimal, or the value is too short to
// be a plausible number. Values of 99 and below are placeholders or typos,
// never routable numbers.
func (n Number) Uint64() (uint64, error) {
	s := string(n)
	if !strings.HasPrefix(s, "+") {
		return 0, fmt.Errorf("%w: %q lacks leading '+'", ErrInvalidNumber, s)
	}
	v, err := strconv.ParseUint(s[1:], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not numeric", ErrInvalidNumber, s)
	}
	if v <= 99 {
		return 0, fmt.Errorf("%w: %q is too short", ErrInvalidNumber, s)
	}
	return v, nil
}

// Valid reports whether the number parses under the same rules as Uint64.
func (n Number) Valid() error {
	_, err := n.Uint64()
	return err
}

// Encode serializes numbers in input order into Width bytes each, big endian.
// The output length is exactly Width*len(numbers). Any invalid number aborts
// the encode with an error wrapping ErrInvalidNumber; no partial output is
// returned.
func Encode(numbers []Number) ([]byte, error) {
	out := make([]byte, 0, Width*len(numbers))
	var buf [Width]byte
	for _, n := range numbers {
		v, err := n.Uint64()
		if err != nil {
			return nil, err
		}
		binary.BigEndian.PutUint64(buf[:], v)
		out = append(out, buf[:]...)
	}
	return out, nil
}

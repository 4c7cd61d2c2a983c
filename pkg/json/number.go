package json

import (
	"errors"
	"fmt"
	"math"
	"strconv"
)

// Number is a decoded numeric literal: Mantissa * 10^Exp, negated when
// Negative is set. Keeping the parts separate lets integer reads reject
// fractions and overflow exactly instead of going through float64.
type Number struct {
	Mantissa uint64
	Exp      int64
	Negative bool

	// inexact is set when mantissa digits had to be dropped.
	inexact bool
}

// Integer messages, named after the bound they enforce.
const (
	msgFraction      = "Integers cannot have a decimal point or negative order of magnitude."
	msgExpOverflow   = "Specified order of magnitude too large -- encountered overflow applying it."
	msgTooPrecise    = "Integers greater than 18446744073709551615 not supported."
	msgNegativeUint  = "Unsigned integers cannot have a negative sign."
	msgFloatOverflow = "Number is too large to be represented as a floating point value."
)

// maxExponent caps parsed exponents well past anything float64 or uint64
// can hold, so accumulating digits cannot overflow.
const maxExponent = 1 << 20

// GetNumber decodes the number at the cursor into its parts.
func (r *Reader) GetNumber() (Number, error) {
	var n Number
	r.EatWhitespace()
	c := r.get()
	if c == '-' {
		n.Negative = true
		c = r.get()
	}
	if c != '.' && !isDigit(c) {
		return n, r.shapeError(fmt.Sprintf("expecting number but found '%s'", charText(c)), -1)
	}
	if c == '0' {
		c = r.get()
		if isDigit(c) {
			return n, r.syntaxError("leading zeros not allowed", -1)
		}
	}
	for isDigit(c) {
		if !n.push(c) {
			n.Exp++
		}
		c = r.get()
	}
	if c == '.' {
		c = r.get()
		for isDigit(c) {
			if n.push(c) {
				n.Exp--
			}
			c = r.get()
		}
	}
	if c == 'e' || c == 'E' {
		c = r.get()
		neg := false
		switch c {
		case '-':
			neg = true
			c = r.get()
		case '+':
			c = r.get()
		}
		if !isDigit(c) {
			return n, r.syntaxError("expected digits in exponent", -1)
		}
		var exp int64
		for isDigit(c) {
			if exp < maxExponent {
				exp = exp*10 + int64(c-'0')
			}
			c = r.get()
		}
		if neg {
			exp = -exp
		}
		n.Exp += exp
	}
	if c != EOF {
		r.pos--
	}
	return n, r.endValue()
}

// push appends a digit to the mantissa. When the mantissa is full the digit
// is dropped, recording a loss of precision if it was significant, and push
// reports false.
func (n *Number) push(c int) bool {
	d := uint64(c - '0')
	if n.Mantissa > (math.MaxUint64-d)/10 {
		if d != 0 {
			n.inexact = true
		}
		return false
	}
	n.Mantissa = n.Mantissa*10 + d
	return true
}

// Float64 converts n with correct rounding.
func (n Number) Float64() (float64, error) {
	s := strconv.FormatUint(n.Mantissa, 10) + "e" + strconv.FormatInt(n.Exp, 10)
	f, err := strconv.ParseFloat(s, 64)
	if math.IsInf(f, 0) {
		return 0, errors.New(msgFloatOverflow)
	}
	if err != nil && f != 0 {
		return 0, err
	}
	if n.Negative {
		f = -f
	}
	return f, nil
}

// integer applies a non-negative exponent by repeated multiplication.
func (n Number) integer() (Number, string) {
	if n.Exp < 0 {
		return n, msgFraction
	}
	if n.inexact {
		return n, msgTooPrecise
	}
	if n.Mantissa == 0 {
		n.Exp = 0
		return n, ""
	}
	for ; n.Exp > 0; n.Exp-- {
		if n.Mantissa > math.MaxUint64/10 {
			return n, msgExpOverflow
		}
		n.Mantissa *= 10
	}
	return n, ""
}

// String formats n the way it would be written back.
func (n Number) String() string {
	s := strconv.FormatUint(n.Mantissa, 10)
	if n.Exp != 0 {
		s += "e" + strconv.FormatInt(n.Exp, 10)
	}
	if n.Negative {
		s = "-" + s
	}
	return s
}

// getInteger decodes an integer and checks it against [-lo, hi], where lo
// is the magnitude of the most negative allowed value.
func (r *Reader) getInteger(hi, lo uint64, tooBig, tooSmall string) (uint64, bool, error) {
	start := r.pos
	n, err := r.GetNumber()
	if err != nil {
		return 0, false, err
	}
	n, msg := n.integer()
	switch {
	case msg != "":
	case n.Negative && lo == 0 && n.Mantissa != 0:
		msg = msgNegativeUint
	case !n.Negative && n.Mantissa > hi:
		msg = tooBig
	case n.Negative && n.Mantissa > lo:
		msg = tooSmall
	}
	if msg != "" {
		r.Seek(start)
		r.EatWhitespace()
		return 0, false, r.rangeError(msg, 0)
	}
	return n.Mantissa, n.Negative && n.Mantissa != 0, nil
}

// negate returns -m for 0 < m <= 1<<63 without overflowing int64.
func negate(m uint64) int64 {
	if m > math.MaxInt64 {
		return math.MinInt64
	}
	return -int64(m)
}

// GetInt64 decodes a signed 64-bit integer.
func (r *Reader) GetInt64() (int64, error) {
	m, neg, err := r.getInteger(math.MaxInt64, 1<<63,
		fmt.Sprintf("Signed integers greater than %d not supported.", int64(math.MaxInt64)),
		fmt.Sprintf("Integers less than %d not supported.", int64(math.MinInt64)))
	if err != nil {
		return 0, err
	}
	if neg {
		return negate(m), nil
	}
	return int64(m), nil
}

// GetUint64 decodes an unsigned 64-bit integer.
func (r *Reader) GetUint64() (uint64, error) {
	m, _, err := r.getInteger(math.MaxUint64, 0, "", "")
	return m, err
}

// GetInt32 decodes a signed 32-bit integer.
func (r *Reader) GetInt32() (int32, error) {
	m, neg, err := r.getInteger(math.MaxInt32, 1<<31,
		fmt.Sprintf("Found a number greater than %d which is unsupported in this context.", math.MaxInt32),
		fmt.Sprintf("Found a number less than %d which is unsupported in this context.", math.MinInt32))
	if err != nil {
		return 0, err
	}
	if neg {
		return int32(negate(m)), nil
	}
	return int32(m), nil
}

// GetUint32 decodes an unsigned 32-bit integer.
func (r *Reader) GetUint32() (uint32, error) {
	m, _, err := r.getInteger(math.MaxUint32, 0,
		fmt.Sprintf("Found a number greater than %d which is unsupported in this context.", uint32(math.MaxUint32)), "")
	return uint32(m), err
}

// GetInt decodes an integer of the platform int width.
func (r *Reader) GetInt() (int, error) {
	if strconv.IntSize == 32 {
		v, err := r.GetInt32()
		return int(v), err
	}
	v, err := r.GetInt64()
	return int(v), err
}

// GetFloat decodes a floating point number.
func (r *Reader) GetFloat() (float64, error) {
	start := r.pos
	n, err := r.GetNumber()
	if err != nil {
		return 0, err
	}
	f, err := n.Float64()
	if err != nil {
		r.Seek(start)
		r.EatWhitespace()
		return 0, r.rangeError(err.Error(), 0)
	}
	return f, nil
}

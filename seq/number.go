package seq

import "math"

// Number carries a rational value. Arithmetic uses the double view; the
// encoder asks for the reduced fraction view.
type Number struct {
	generic
	Value float64
}

func NewNumber(anchor bool, value float64) *Number {
	return &Number{generic{anchor}, value}
}

func NewFractionNumber(anchor bool, numerator, denominator int64) *Number {
	return &Number{generic{anchor}, float64(numerator) / float64(denominator)}
}

func (*Number) DataType() DataType { return TypeNumber }

func (n *Number) Copy() Generic {
	c := *n
	return &c
}

// Int64 truncates the value towards zero.
func (n *Number) Int64() int64 {
	return int64(math.Trunc(n.Value))
}

// IsNatural reports whether the value has no fractional part.
func (n *Number) IsNatural() bool {
	return float64(n.Int64()) == n.Value
}

// Fraction returns the reduced fraction view of the value.
func (n *Number) Fraction() Fraction {
	return AsFraction(n.Value)
}

// Fraction is the encodable view of a Number; the denominator is always
// positive.
type Fraction struct {
	Numerator   int64
	Denominator int64
}

// AsFraction decomposes a double into a reduced fraction, scaling the
// decimal part by powers of ten and dividing out the highest common
// factor.
func AsFraction(value float64) Fraction {

	sign := int64(1)
	if value < 0 {
		sign = -1
	}

	number := math.Abs(value)
	whole := math.Trunc(number)
	decimal := number - whole
	multiplier := int64(1)

	if decimal > 0 {
		for i := decimal; i > math.Floor(i); i = float64(multiplier) * decimal {
			multiplier *= 10
		}
	}

	part := int64(math.Round(decimal * float64(multiplier)))
	hcf := int64(0)
	u := part
	v := multiplier

	for {
		u %= v
		if u == 0 {
			hcf = v
			break
		}
		v %= u
		if v == 0 {
			hcf = u
			break
		}
	}

	multiplier /= hcf

	return Fraction{
		Numerator:   sign * (part/hcf + int64(whole)*multiplier),
		Denominator: multiplier,
	}
}

// sizeOf returns the smallest accepted little-endian byte width (1, 2, 4
// or 8) able to hold the given value.
func sizeOf(value uint64) byte {
	if value > math.MaxUint32 {
		return 8
	}
	if value > math.MaxUint16 {
		return 4
	}
	if value > math.MaxUint8 {
		return 2
	}
	return 1
}

package formula

// decodeSignedTriple decodes a three-digit sign-magnitude field: the first
// digit's parity is the sign (odd = negative), the remaining two digits are
// the magnitude (0-99).
func decodeSignedTriple(d0, d1, d2 byte) int64 {
	magnitude := int64(d1)*10 + int64(d2)
	if d0%2 == 1 {
		return -magnitude
	}
	return magnitude
}

// operation selects one of the four gene-decoded arithmetic programs.
type operation int

const (
	opLinear   operation = 0 // slope*input + bias
	opInverse  operation = 1 // slope*input - bias
	opModular  operation = 2 // (slope*input) mod auxiliary + bias
	opQuadratic operation = 3 // slope*input^2 + bias
)

// decodedGene holds the arithmetic program a gene decodes to.
type decodedGene struct {
	op        operation
	slope     int64
	bias      int64
	auxiliary int64
}

func decodeGene(g Gene) decodedGene {
	op := operation(g[0] % 4)
	slope := decodeSignedTriple(g[1], g[2], g[3])
	bias := decodeSignedTriple(g[4], g[5], g[6])
	aux := decodeSignedTriple(g[7], g[8], g[9])
	if aux == 0 {
		aux = 1
	}
	return decodedGene{op: op, slope: slope, bias: bias, auxiliary: aux}
}

// predictNumeric interprets gene as a miniature arithmetic program over
// int32 inputs, saturating the result to the int32 range.
func predictNumeric(g Gene, input int32) int32 {
	d := decodeGene(g)
	in := int64(input)

	var raw int64
	switch d.op {
	case opLinear:
		raw = d.slope*in + d.bias
	case opInverse:
		raw = d.slope*in - d.bias
	case opModular:
		aux := d.auxiliary
		if aux < 0 {
			aux = -aux
		}
		if aux == 0 {
			aux = 1
		}
		raw = (d.slope*in)%aux + d.bias
	case opQuadratic:
		raw = d.slope*in*in + d.bias
	}

	return saturateInt32(raw)
}

func saturateInt32(v int64) int32 {
	const maxI32 = int64(1<<31 - 1)
	const minI32 = -int64(1 << 31)
	if v > maxI32 {
		return int32(maxI32)
	}
	if v < minI32 {
		return int32(minI32)
	}
	return int32(v)
}

package pix

import (
	"strconv"

	"github.com/pkg/errors"
)

// Method identifies the pipeline a payload was encoded with. Ids are stable:
// an id is never reused for different semantics.
type Method uint8

const (
	MethodRaw        Method = 0  // identity
	MethodRLE        Method = 1  // rle -> deflate
	MethodZlib       Method = 2  // deflate
	MethodZlibBest   Method = 3  // best of several deflate strategies
	MethodDelta      Method = 4  // best predictor -> deflate
	MethodPalette    Method = 5  // palette index -> deflate
	MethodRowFilter  Method = 6  // per-row adaptive filter -> deflate
	MethodFilterAll  Method = 7  // whole-image uniform filter -> deflate
	MethodRLEFilter  Method = 8  // rle -> per-row adaptive filter -> deflate
	MethodRowFilter2 Method = 9  // per-row adaptive filter -> deflate x2
	MethodFilterAll2 Method = 10 // whole-image uniform filter -> deflate x2

	methodCount = 11
)

var methodNames = [methodCount]string{
	MethodRaw:        "raw",
	MethodRLE:        "rle",
	MethodZlib:       "zlib",
	MethodZlibBest:   "zlib-best",
	MethodDelta:      "delta",
	MethodPalette:    "palette",
	MethodRowFilter:  "png-row",
	MethodFilterAll:  "png-all",
	MethodRLEFilter:  "rle+png-row",
	MethodRowFilter2: "png-row+zlib",
	MethodFilterAll2: "png-all+zlib",
}

// Valid reports whether m is a known method id.
func (m Method) Valid() bool {
	return m < methodCount
}

func (m Method) String() string {
	if m.Valid() {
		return methodNames[m]
	}
	return "method(" + strconv.Itoa(int(m)) + ")"
}

// Methods returns every method id in ascending order.
func Methods() []Method {
	out := make([]Method, methodCount)
	for i := range out {
		out[i] = Method(i)
	}
	return out
}

// ParseMethod accepts a method name or its numeric id.
func ParseMethod(s string) (Method, error) {
	for i, name := range methodNames {
		if name == s {
			return Method(i), nil
		}
	}
	if n, err := strconv.Atoi(s); err == nil && n >= 0 && n < methodCount {
		return Method(n), nil
	}
	return 0, errors.Wrapf(ErrUnsupportedMethod, "unknown method %q", s)
}

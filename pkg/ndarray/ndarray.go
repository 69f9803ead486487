// Package ndarray implements a self-describing binary encoding for
// n-dimensional numeric arrays stored in database blob columns.
//
// The wire format is a fixed header (magic, version, element type, shape)
// followed by the raw little-endian element data. Decoding never executes
// embedded code and rejects any blob whose header is inconsistent with its
// payload length.
package ndarray

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Magic identifies an encoded array blob.
var magic = [4]byte{0x93, 'N', 'D', 'A'}

const formatVersion = 1

// maxDims bounds the number of dimensions accepted on decode.
const maxDims = 32

// DType identifies the element type of an array.
type DType uint8

// Supported element types.
const (
	Float64 DType = iota + 1
	Float32
	Int64
	Int32
	Int16
	Uint8
)

// String returns the numpy-style name for the dtype.
func (d DType) String() string {
	switch d {
	case Float64:
		return "float64"
	case Float32:
		return "float32"
	case Int64:
		return "int64"
	case Int32:
		return "int32"
	case Int16:
		return "int16"
	case Uint8:
		return "uint8"
	}
	return fmt.Sprintf("dtype(%d)", uint8(d))
}

// ItemSize returns the element width in bytes, or 0 for an unknown dtype.
func (d DType) ItemSize() int {
	switch d {
	case Float64, Int64:
		return 8
	case Float32, Int32:
		return 4
	case Int16:
		return 2
	case Uint8:
		return 1
	}
	return 0
}

// FormatError reports a malformed or inconsistent blob.
type FormatError struct {
	Reason string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("ndarray: malformed blob: %s", e.Reason)
}

// Array is an n-dimensional array with raw little-endian element storage.
// Moving bits rather than values keeps float round-trips exact, including
// NaN payloads.
type Array struct {
	DType DType
	Shape []int
	Data  []byte
}

// NumElems returns the product of the shape dimensions.
// A 0-dimensional array holds exactly one element.
func (a *Array) NumElems() int {
	n := 1
	for _, d := range a.Shape {
		n *= d
	}
	return n
}

// New creates a zero-filled array of the given dtype and shape.
func New(dtype DType, shape []int) (*Array, error) {
	size := dtype.ItemSize()
	if size == 0 {
		return nil, fmt.Errorf("ndarray: unknown dtype %d", dtype)
	}
	n := 1
	for _, d := range shape {
		if d < 0 {
			return nil, fmt.Errorf("ndarray: negative dimension %d", d)
		}
		n *= d
	}
	return &Array{
		DType: dtype,
		Shape: append([]int(nil), shape...),
		Data:  make([]byte, n*size),
	}, nil
}

// NewFloat64 creates a float64 array from vals, which must match the shape.
func NewFloat64(shape []int, vals []float64) (*Array, error) {
	a, err := New(Float64, shape)
	if err != nil {
		return nil, err
	}
	if len(vals) != a.NumElems() {
		return nil, fmt.Errorf("ndarray: %d values do not fill shape %v", len(vals), shape)
	}
	for i, v := range vals {
		binary.LittleEndian.PutUint64(a.Data[i*8:], math.Float64bits(v))
	}
	return a, nil
}

// NewFloat32 creates a float32 array from vals, which must match the shape.
func NewFloat32(shape []int, vals []float32) (*Array, error) {
	a, err := New(Float32, shape)
	if err != nil {
		return nil, err
	}
	if len(vals) != a.NumElems() {
		return nil, fmt.Errorf("ndarray: %d values do not fill shape %v", len(vals), shape)
	}
	for i, v := range vals {
		binary.LittleEndian.PutUint32(a.Data[i*4:], math.Float32bits(v))
	}
	return a, nil
}

// NewInt64 creates an int64 array from vals, which must match the shape.
func NewInt64(shape []int, vals []int64) (*Array, error) {
	a, err := New(Int64, shape)
	if err != nil {
		return nil, err
	}
	if len(vals) != a.NumElems() {
		return nil, fmt.Errorf("ndarray: %d values do not fill shape %v", len(vals), shape)
	}
	for i, v := range vals {
		binary.LittleEndian.PutUint64(a.Data[i*8:], uint64(v))
	}
	return a, nil
}

// Float64s returns the elements of a float64 array.
func (a *Array) Float64s() ([]float64, error) {
	if a.DType != Float64 {
		return nil, fmt.Errorf("ndarray: dtype is %s, not float64", a.DType)
	}
	out := make([]float64, a.NumElems())
	for i := range out {
		out[i] = math.Float64frombits(binary.LittleEndian.Uint64(a.Data[i*8:]))
	}
	return out, nil
}

// Float32s returns the elements of a float32 array.
func (a *Array) Float32s() ([]float32, error) {
	if a.DType != Float32 {
		return nil, fmt.Errorf("ndarray: dtype is %s, not float32", a.DType)
	}
	out := make([]float32, a.NumElems())
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(a.Data[i*4:]))
	}
	return out, nil
}

// Int64s returns the elements of an int64 array.
func (a *Array) Int64s() ([]int64, error) {
	if a.DType != Int64 {
		return nil, fmt.Errorf("ndarray: dtype is %s, not int64", a.DType)
	}
	out := make([]int64, a.NumElems())
	for i := range out {
		out[i] = int64(binary.LittleEndian.Uint64(a.Data[i*8:]))
	}
	return out, nil
}

// Equal reports whether two arrays have identical dtype, shape, and raw
// element bits. NaNs with equal bit patterns compare equal.
func Equal(a, b *Array) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.DType != b.DType || len(a.Shape) != len(b.Shape) {
		return false
	}
	for i := range a.Shape {
		if a.Shape[i] != b.Shape[i] {
			return false
		}
	}
	if len(a.Data) != len(b.Data) {
		return false
	}
	for i := range a.Data {
		if a.Data[i] != b.Data[i] {
			return false
		}
	}
	return true
}

// Marshal encodes the array into a self-describing blob.
//
// Layout: magic (4) | version (1) | dtype (1) | ndim (1) | reserved (1) |
// shape (ndim * uint32 LE) | raw element data.
func Marshal(a *Array) ([]byte, error) {
	if a == nil {
		return nil, fmt.Errorf("ndarray: cannot marshal nil array")
	}
	size := a.DType.ItemSize()
	if size == 0 {
		return nil, fmt.Errorf("ndarray: unknown dtype %d", a.DType)
	}
	if len(a.Shape) > maxDims {
		return nil, fmt.Errorf("ndarray: %d dimensions exceeds limit of %d", len(a.Shape), maxDims)
	}
	if want := a.NumElems() * size; len(a.Data) != want {
		return nil, fmt.Errorf("ndarray: data length %d does not match shape %v (want %d)", len(a.Data), a.Shape, want)
	}

	buf := make([]byte, 0, 8+4*len(a.Shape)+len(a.Data))
	buf = append(buf, magic[:]...)
	buf = append(buf, formatVersion, byte(a.DType), byte(len(a.Shape)), 0)
	for _, d := range a.Shape {
		if d < 0 || d > math.MaxUint32 {
			return nil, fmt.Errorf("ndarray: dimension %d out of range", d)
		}
		buf = binary.LittleEndian.AppendUint32(buf, uint32(d))
	}
	buf = append(buf, a.Data...)
	return buf, nil
}

// Unmarshal decodes a blob produced by Marshal. The header is validated
// against the payload length before any data is interpreted.
func Unmarshal(blob []byte) (*Array, error) {
	if len(blob) < 8 {
		return nil, &FormatError{Reason: "blob shorter than header"}
	}
	if blob[0] != magic[0] || blob[1] != magic[1] || blob[2] != magic[2] || blob[3] != magic[3] {
		return nil, &FormatError{Reason: "bad magic"}
	}
	if blob[4] != formatVersion {
		return nil, &FormatError{Reason: fmt.Sprintf("unsupported version %d", blob[4])}
	}
	dtype := DType(blob[5])
	size := dtype.ItemSize()
	if size == 0 {
		return nil, &FormatError{Reason: fmt.Sprintf("unknown dtype %d", blob[5])}
	}
	ndim := int(blob[6])
	if ndim > maxDims {
		return nil, &FormatError{Reason: fmt.Sprintf("%d dimensions exceeds limit", ndim)}
	}
	if len(blob) < 8+4*ndim {
		return nil, &FormatError{Reason: "blob shorter than declared shape"}
	}

	shape := make([]int, ndim)
	n := 1
	for i := 0; i < ndim; i++ {
		d := binary.LittleEndian.Uint32(blob[8+4*i:])
		shape[i] = int(d)
		n *= int(d)
	}
	data := blob[8+4*ndim:]
	if len(data) != n*size {
		return nil, &FormatError{Reason: fmt.Sprintf("payload is %d bytes, shape %v of %s needs %d", len(data), shape, dtype, n*size)}
	}

	return &Array{
		DType: dtype,
		Shape: shape,
		Data:  append([]byte(nil), data...),
	}, nil
}

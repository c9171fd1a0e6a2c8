package dataset

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/aretw0/gleaner/pkg/domain"
	"github.com/sbinet/npyio"
	"gonum.org/v1/gonum/mat"
)

// MaxElements caps the size of a decoded array.
const MaxElements = 1 << 27

// Array is a decoded dense numeric array in C order.
type Array struct {
	Shape []int
	Data  []float64
}

// ReadArray decodes a float64 or float32 npy array. The header shape is
// checked before any data is allocated.
func ReadArray(r io.Reader) (*Array, error) {
	nr, err := npyio.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidModel, err)
	}
	descr := nr.Header.Descr

	shape := append([]int(nil), descr.Shape...)
	count, err := elements(shape)
	if err != nil {
		return nil, err
	}

	var data []float64
	switch kind := strings.TrimLeft(descr.Type, "<>=|"); kind {
	case "f8":
		if err := nr.Read(&data); err != nil {
			return nil, fmt.Errorf("%w: failed to read npy data: %v", domain.ErrInvalidModel, err)
		}
	case "f4":
		var raw []float32
		if err := nr.Read(&raw); err != nil {
			return nil, fmt.Errorf("%w: failed to read npy data: %v", domain.ErrInvalidModel, err)
		}
		data = make([]float64, len(raw))
		for i, v := range raw {
			data[i] = float64(v)
		}
	default:
		return nil, fmt.Errorf("%w: unsupported npy dtype %q (want f8 or f4)", domain.ErrInvalidModel, descr.Type)
	}
	if len(data) != count {
		return nil, fmt.Errorf("%w: npy data has %d elements, shape %v needs %d", domain.ErrInvalidModel, len(data), shape, count)
	}

	if descr.Fortran && len(shape) > 1 {
		data = toRowMajor(shape, data)
	}
	return &Array{Shape: shape, Data: data}, nil
}

// WriteArray encodes a 3-D [state][action][next] array as float64 npy, with
// the rows stacked into shape (states*actions, next).
func WriteArray(w io.Writer, a *Array) error {
	if len(a.Shape) != 3 {
		return fmt.Errorf("expected 3 dimensions, got %v", a.Shape)
	}
	rows, cols := a.Shape[0]*a.Shape[1], a.Shape[2]
	if rows*cols != len(a.Data) || rows == 0 || cols == 0 {
		return fmt.Errorf("shape %v does not match %d elements", a.Shape, len(a.Data))
	}
	return npyio.Write(w, mat.NewDense(rows, cols, a.Data))
}

func elements(shape []int) (int, error) {
	if len(shape) == 0 {
		return 0, fmt.Errorf("%w: npy array is a scalar", domain.ErrInvalidModel)
	}
	count := 1
	for _, d := range shape {
		if d < 1 {
			return 0, fmt.Errorf("%w: invalid npy shape %v", domain.ErrInvalidModel, shape)
		}
		if count > math.MaxInt/d || count*d > MaxElements {
			return 0, fmt.Errorf("%w: npy shape %v exceeds %d elements", domain.ErrInvalidModel, shape, MaxElements)
		}
		count *= d
	}
	return count, nil
}

// toRowMajor reorders column-major data into C order.
func toRowMajor(shape []int, data []float64) []float64 {
	out := make([]float64, len(data))
	idx := make([]int, len(shape))
	for c := range out {
		f, stride := 0, 1
		for i, d := range shape {
			f += idx[i] * stride
			stride *= d
		}
		out[c] = data[f]
		for i := len(idx) - 1; i >= 0; i-- {
			idx[i]++
			if idx[i] < shape[i] {
				break
			}
			idx[i] = 0
		}
	}
	return out
}

// Package dataset reads and writes the solver's input artifacts: the
// transition model tensor and the expert trajectories. Inputs are parsed as
// data only.
package dataset

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aretw0/gleaner/pkg/domain"
	"gopkg.in/yaml.v3"
)

// Tolerance bounds how far a transition row may sum away from 1.
const Tolerance = 1e-6

// LoadModel reads a [state][action][next] tensor from an .npy, .json or
// .yaml file and checks it against space. An .npy file may also hold the
// rows stacked as (states*actions, next). A model declaring fewer actions
// than the space enumerates uses the leading actions only; the returned space
// reflects that.
func LoadModel(path string, space *domain.Space) (*domain.TransitionModel, *domain.Space, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read transition model: %w", err)
	}

	var arr *Array
	switch strings.ToLower(filepath.Ext(path)) {
	case ".npy":
		arr, err = ReadArray(bytes.NewReader(data))
	case ".json":
		var nested [][][]float64
		if err = json.Unmarshal(data, &nested); err == nil {
			arr, err = flatten(nested)
		}
	case ".yaml", ".yml":
		var nested [][][]float64
		if err = yaml.Unmarshal(data, &nested); err == nil {
			arr, err = flatten(nested)
		}
	default:
		return nil, nil, fmt.Errorf("%w: unsupported model format %q", domain.ErrInvalidModel, filepath.Ext(path))
	}
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %s: %v", domain.ErrInvalidModel, path, err)
	}

	return FromArray(arr, space)
}

// FromArray validates a decoded tensor and wraps it as a model.
func FromArray(arr *Array, space *domain.Space) (*domain.TransitionModel, *domain.Space, error) {
	var states, actions, next int
	switch len(arr.Shape) {
	case 3:
		states, actions, next = arr.Shape[0], arr.Shape[1], arr.Shape[2]
	case 2:
		next = arr.Shape[1]
		if next == 0 || arr.Shape[0]%next != 0 {
			return nil, nil, fmt.Errorf("%w: %d stacked rows do not divide into %d states", domain.ErrInvalidModel, arr.Shape[0], next)
		}
		states, actions = next, arr.Shape[0]/next
	default:
		return nil, nil, fmt.Errorf("%w: expected 3 dimensions, got %v", domain.ErrInvalidModel, arr.Shape)
	}
	if states != next {
		return nil, nil, fmt.Errorf("%w: shape %v is not square in states", domain.ErrInvalidModel, arr.Shape)
	}
	if states != space.NumStates() {
		return nil, nil, fmt.Errorf("%w: %d states, space has %d", domain.ErrInvalidModel, states, space.NumStates())
	}

	sp, err := space.Truncate(actions)
	if err != nil {
		return nil, nil, err
	}

	model, err := domain.NewTransitionModelFromData(states, actions, arr.Data)
	if err != nil {
		return nil, nil, err
	}
	if err := model.Validate(Tolerance); err != nil {
		return nil, nil, err
	}
	return model, sp, nil
}

func flatten(nested [][][]float64) (*Array, error) {
	if len(nested) == 0 || len(nested[0]) == 0 {
		return nil, fmt.Errorf("empty tensor")
	}
	states, actions := len(nested), len(nested[0])
	next := len(nested[0][0])

	data := make([]float64, 0, states*actions*next)
	for s, rows := range nested {
		if len(rows) != actions {
			return nil, fmt.Errorf("state %d has %d actions, want %d", s, len(rows), actions)
		}
		for a, row := range rows {
			if len(row) != next {
				return nil, fmt.Errorf("row (%d, %d) has %d entries, want %d", s, a, len(row), next)
			}
			data = append(data, row...)
		}
	}
	return &Array{Shape: []int{states, actions, next}, Data: data}, nil
}

// WriteModel stores model in the format implied by the path's extension.
func WriteModel(path string, model *domain.TransitionModel) error {
	arr := &Array{
		Shape: []int{model.NumStates(), model.NumActions(), model.NumStates()},
		Data:  model.Data(),
	}

	var buf bytes.Buffer
	switch strings.ToLower(filepath.Ext(path)) {
	case ".npy":
		if err := WriteArray(&buf, arr); err != nil {
			return err
		}
	case ".json":
		if err := json.NewEncoder(&buf).Encode(nest(model)); err != nil {
			return err
		}
	case ".yaml", ".yml":
		if err := yaml.NewEncoder(&buf).Encode(nest(model)); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unsupported model format %q", filepath.Ext(path))
	}
	return os.WriteFile(path, buf.Bytes(), 0644)
}

func nest(model *domain.TransitionModel) [][][]float64 {
	out := make([][][]float64, model.NumStates())
	for s := range out {
		out[s] = make([][]float64, model.NumActions())
		for a := range out[s] {
			out[s][a] = append([]float64{}, model.Row(s, a)...)
		}
	}
	return out
}

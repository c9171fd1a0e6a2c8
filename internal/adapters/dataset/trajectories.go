package dataset

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/aretw0/gleaner/pkg/domain"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// TrajectoryFile is the keyed document form.
type TrajectoryFile struct {
	Trajectories []domain.Trajectory `json:"trajectories" yaml:"trajectories"`
}

// LoadTrajectories reads expert trajectories from JSON or YAML. The document
// is either a list of trajectories or an object with a "trajectories" key.
// Each step is a [state, action, next] triple or a {state, action, next}
// object; states are integer lists or strings such as "1,2,3".
//
// Files ending in .txt or .py hold the legacy literal form
// "EXPERT_TRAJECTORIES = [[((1, 1, 1), 'move(1, 3)', (3, 1, 1)), ...]]"; it is
// transliterated to YAML flow syntax and parsed, never evaluated.
func LoadTrajectories(path string) ([]domain.Trajectory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read trajectories: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt", ".py":
		data = []byte(transliterate(string(data)))
	}

	trajs, err := ParseTrajectories(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return trajs, nil
}

// ParseTrajectories decodes a JSON or YAML trajectory document.
func ParseTrajectories(data []byte) ([]domain.Trajectory, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidTrajectory, err)
	}

	var list []any
	switch v := doc.(type) {
	case []any:
		list = v
	case map[string]any:
		inner, ok := v["trajectories"].([]any)
		if !ok {
			return nil, fmt.Errorf("%w: missing \"trajectories\" list", domain.ErrInvalidTrajectory)
		}
		list = inner
	case nil:
		return nil, nil
	default:
		return nil, fmt.Errorf("%w: unexpected document of type %T", domain.ErrInvalidTrajectory, doc)
	}

	out := make([]domain.Trajectory, 0, len(list))
	for ti, rawTraj := range list {
		steps, ok := rawTraj.([]any)
		if !ok {
			return nil, fmt.Errorf("%w: trajectory %d is not a list", domain.ErrInvalidTrajectory, ti)
		}
		traj := make(domain.Trajectory, 0, len(steps))
		for si, rawStep := range steps {
			step, err := decodeStep(rawStep)
			if err != nil {
				return nil, fmt.Errorf("%w: trajectory %d step %d: %v", domain.ErrInvalidTrajectory, ti, si, err)
			}
			traj = append(traj, step)
		}
		out = append(out, traj)
	}
	return out, nil
}

func decodeStep(raw any) (domain.Step, error) {
	var fields any
	switch v := raw.(type) {
	case []any:
		if len(v) != 3 {
			return domain.Step{}, fmt.Errorf("expected [state, action, next], got %d elements", len(v))
		}
		fields = map[string]any{"state": v[0], "action": v[1], "next": v[2]}
	case map[string]any:
		fields = v
	default:
		return domain.Step{}, fmt.Errorf("unexpected step of type %T", raw)
	}

	var step domain.Step
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:  stateHook,
		ErrorUnused: true,
		Result:      &step,
	})
	if err != nil {
		return domain.Step{}, err
	}
	if err := decoder.Decode(fields); err != nil {
		return domain.Step{}, err
	}
	if step.State == nil || step.Action == "" {
		return domain.Step{}, fmt.Errorf("step needs a state and an action")
	}
	return step, nil
}

var stateType = reflect.TypeOf(domain.State{})

// stateHook lets states be written as "1,2,3" or "(1, 2, 3)".
func stateHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	if to != stateType || from.Kind() != reflect.String {
		return data, nil
	}
	return domain.ParseState(data.(string))
}

// transliterate rewrites a Python-style literal into YAML flow syntax:
// the assignment prefix is dropped, tuples become lists and single quotes
// become double quotes. Text inside quotes is copied unchanged.
func transliterate(src string) string {
	if i := strings.Index(src, "="); i >= 0 && !strings.ContainsAny(src[:i], "[({'\"") {
		src = src[i+1:]
	}

	var sb strings.Builder
	var quote rune
	for _, r := range src {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
				sb.WriteRune('"')
				continue
			}
			sb.WriteRune(r)
		case r == '\'' || r == '"':
			quote = r
			sb.WriteRune('"')
		case r == '(':
			sb.WriteRune('[')
		case r == ')':
			sb.WriteRune(']')
		default:
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

// WriteTrajectories stores trajectories as a keyed JSON or YAML document.
func WriteTrajectories(path string, trajectories []domain.Trajectory) error {
	doc := TrajectoryFile{Trajectories: trajectories}

	var buf bytes.Buffer
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		enc := json.NewEncoder(&buf)
		enc.SetIndent("", "  ")
		if err := enc.Encode(doc); err != nil {
			return err
		}
	case ".yaml", ".yml":
		if err := yaml.NewEncoder(&buf).Encode(doc); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unsupported trajectory format %q", filepath.Ext(path))
	}
	return os.WriteFile(path, buf.Bytes(), 0644)
}

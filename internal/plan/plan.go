// Package plan defines the Plan/Action data model shared by the planner and the
// executor, its JSON wire form, and recovery of plans from free-form model output.
package plan

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
)

// Kind is the discriminator written to the "type" field of every action.
type Kind string

const (
	KindWriteFile Kind = "write_file"
	KindRun       Kind = "run"
)

var (
	// ErrUnknownAction is returned when an action's "type" is missing or not a known Kind.
	ErrUnknownAction = errors.New("unknown action type")
	// ErrMissingField is returned when a required field is absent or null.
	ErrMissingField = errors.New("missing required field")
)

// Action is one step of a Plan. The set of implementations is closed:
// WriteFile and Run are the only actions.
type Action interface {
	Kind() Kind
	// Label renders a short human-readable form, used for dry-run listings.
	Label() string
	isAction()
}

// WriteFile replaces the content of Path, optionally creating missing parent directories.
type WriteFile struct {
	Path       string
	Content    string
	CreateDirs bool
}

// Run spawns Cmd with Args.
type Run struct {
	Cmd  string
	Args []string
}

func (WriteFile) Kind() Kind { return KindWriteFile }
func (Run) Kind() Kind       { return KindRun }

func (a WriteFile) Label() string { return "write_file:" + a.Path }

func (a Run) Label() string {
	if len(a.Args) == 0 {
		return "run:" + a.Cmd
	}
	return "run:" + a.Cmd + " " + strings.Join(a.Args, " ")
}

func (WriteFile) isAction() {}
func (Run) isAction()       {}

// Plan is an ordered list of actions plus a human-readable description.
// An empty action list is a valid no-op plan.
type Plan struct {
	Description string
	Actions     []Action
}

type writeFileWire struct {
	Type       Kind   `json:"type"`
	Path       string `json:"path"`
	Content    string `json:"content"`
	CreateDirs bool   `json:"create_dirs"`
}

type runWire struct {
	Type Kind     `json:"type"`
	Cmd  string   `json:"cmd"`
	Args []string `json:"args"`
}

func (a WriteFile) MarshalJSON() ([]byte, error) {
	return json.Marshal(writeFileWire{
		Type:       KindWriteFile,
		Path:       a.Path,
		Content:    a.Content,
		CreateDirs: a.CreateDirs,
	})
}

func (a Run) MarshalJSON() ([]byte, error) {
	args := a.Args
	if args == nil {
		args = []string{}
	}
	return json.Marshal(runWire{Type: KindRun, Cmd: a.Cmd, Args: args})
}

func (p Plan) MarshalJSON() ([]byte, error) {
	actions := p.Actions
	if actions == nil {
		actions = []Action{}
	}
	return json.Marshal(struct {
		Description string   `json:"description"`
		Actions     []Action `json:"actions"`
	}{p.Description, actions})
}

// UnmarshalJSON decodes the strict wire form: "description" and "actions" are
// required, every action needs a known "type" and that variant's required fields.
// "create_dirs" defaults to false. Unrecognized extra fields are ignored.
func (p *Plan) UnmarshalJSON(data []byte) error {
	var wire struct {
		Description *string            `json:"description"`
		Actions     *[]json.RawMessage `json:"actions"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	if wire.Description == nil {
		return fmt.Errorf("plan.description: %w", ErrMissingField)
	}
	if wire.Actions == nil {
		return fmt.Errorf("plan.actions: %w", ErrMissingField)
	}

	actions := make([]Action, 0, len(*wire.Actions))
	for i, raw := range *wire.Actions {
		act, err := decodeAction(raw)
		if err != nil {
			return fmt.Errorf("plan.actions[%d]: %w", i, err)
		}
		actions = append(actions, act)
	}

	p.Description = *wire.Description
	p.Actions = actions
	return nil
}

func decodeAction(raw json.RawMessage) (Action, error) {
	var head struct {
		Type *Kind `json:"type"`
	}
	if err := json.Unmarshal(raw, &head); err != nil {
		return nil, err
	}
	if head.Type == nil {
		return nil, fmt.Errorf("type: %w", ErrUnknownAction)
	}

	switch *head.Type {
	case KindWriteFile:
		var w struct {
			Path       *string `json:"path"`
			Content    *string `json:"content"`
			CreateDirs *bool   `json:"create_dirs"`
		}
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		if w.Path == nil {
			return nil, fmt.Errorf("write_file.path: %w", ErrMissingField)
		}
		if w.Content == nil {
			return nil, fmt.Errorf("write_file.content: %w", ErrMissingField)
		}
		act := WriteFile{Path: *w.Path, Content: *w.Content}
		if w.CreateDirs != nil {
			act.CreateDirs = *w.CreateDirs
		}
		return act, nil
	case KindRun:
		var r struct {
			Cmd  *string   `json:"cmd"`
			Args *[]string `json:"args"`
		}
		if err := json.Unmarshal(raw, &r); err != nil {
			return nil, err
		}
		if r.Cmd == nil {
			return nil, fmt.Errorf("run.cmd: %w", ErrMissingField)
		}
		if r.Args == nil {
			return nil, fmt.Errorf("run.args: %w", ErrMissingField)
		}
		return Run{Cmd: *r.Cmd, Args: *r.Args}, nil
	default:
		return nil, fmt.Errorf("type %q: %w", *head.Type, ErrUnknownAction)
	}
}

// Parse decodes a complete JSON document as a Plan.
func Parse(data []byte) (*Plan, error) {
	var p Plan
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Load reads and parses a plan file. Any structural problem is reported
// before a single action could run.
func Load(path string) (*Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading plan file %s: %w", path, err)
	}
	p, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing plan %s: %w", path, err)
	}
	return p, nil
}

// Encode renders the plan as indented JSON with a trailing newline.
func Encode(p *Plan) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(p); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

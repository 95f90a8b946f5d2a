// Package tsconfig repairs compilerOptions entries that the compiler
// reported as unknown.
package tsconfig

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	orderedmap "github.com/wk8/go-ordered-map/v2"
	"go.uber.org/zap"

	"ts-fixer/internal/classify"
)

const optionsKey = "compilerOptions"

type Status string

const (
	StatusMissing     Status = "missing"
	StatusInvalid     Status = "invalid"
	StatusUnchanged   Status = "unchanged"
	StatusUpdated     Status = "updated"
	StatusDryRun      Status = "dry_run"
	StatusWriteFailed Status = "write_failed"
)

var ErrNotObject = errors.New("not a JSON object")

// Edit is one compilerOptions assignment.
type Edit struct {
	Key   string
	Value any
}

type Result struct {
	Path   string
	Status Status
	Edits  []Edit
	Err    error
}

// object keeps keys in file order; values stay raw so untouched entries
// are written back as they were read.
type object = orderedmap.OrderedMap[string, json.RawMessage]

type Patcher struct {
	path   string
	log    *zap.Logger
	dryRun bool
}

func New(path string, log *zap.Logger, dryRun bool) *Patcher {
	return &Patcher{path: path, log: log, dryRun: dryRun}
}

// Fix returns the value assigned to an absent compiler option.
func Fix(key string) any {
	switch key {
	case "strict", "noImplicitAny", "strictNullChecks":
		return true
	case "target", "module":
		return "esnext"
	default:
		return nil
	}
}

// Settings returns the option names named by incorrect_settings errors.
func Settings(lines []string) []string {
	var keys []string
	for _, line := range lines {
		if groups, ok := classify.Find(classify.IncorrectSettings, line); ok && len(groups) > 0 {
			keys = append(keys, groups[0])
		}
	}
	return keys
}

// Apply patches the config file for every incorrect_settings line. Problems
// are logged and carried in the result; the file is only rewritten when an
// option was actually added.
func (p *Patcher) Apply(lines []string) Result {
	res := Result{Path: p.path}

	data, err := os.ReadFile(p.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			p.log.Warn(fmt.Sprintf("File %s not found.", p.path))
			res.Status = StatusMissing
			return res
		}
		p.log.Error(fmt.Sprintf("Error reading %s: %v", p.path, err))
		res.Status, res.Err = StatusInvalid, err
		return res
	}

	cfg, err := decodeObject(data)
	if err != nil {
		p.log.Error(fmt.Sprintf("Error reading %s: %v", p.path, err))
		res.Status, res.Err = StatusInvalid, err
		return res
	}

	opts := orderedmap.New[string, json.RawMessage]()
	if raw, ok := cfg.Get(optionsKey); ok {
		if opts, err = decodeObject(raw); err != nil {
			err = fmt.Errorf("%s: %w", optionsKey, err)
			p.log.Error(fmt.Sprintf("Error reading %s: %v", p.path, err))
			res.Status, res.Err = StatusInvalid, err
			return res
		}
	}

	for _, key := range Settings(lines) {
		if current, ok := opts.Get(key); ok && !falsy(current) {
			continue
		}
		value := Fix(key)
		encoded, err := json.Marshal(value)
		if err != nil {
			res.Status, res.Err = StatusInvalid, err
			return res
		}
		opts.Set(key, encoded)
		res.Edits = append(res.Edits, Edit{Key: key, Value: value})
		p.log.Debug(fmt.Sprintf("Setting %s.%s = %s", optionsKey, key, encoded))
	}

	if len(res.Edits) == 0 {
		res.Status = StatusUnchanged
		return res
	}

	if p.dryRun {
		p.log.Info(fmt.Sprintf("Dry run, %s not written (%d change(s))", p.path, len(res.Edits)))
		res.Status = StatusDryRun
		return res
	}

	encodedOpts, err := opts.MarshalJSON()
	if err == nil {
		cfg.Set(optionsKey, encodedOpts)
		data, err = encode(cfg)
	}
	if err == nil {
		err = writeFile(p.path, data)
	}
	if err != nil {
		p.log.Error(fmt.Sprintf("Error updating %s: %v", p.path, err))
		res.Status, res.Err = StatusWriteFailed, err
		return res
	}

	p.log.Info(fmt.Sprintf("%s updated successfully.", p.path))
	res.Status = StatusUpdated
	return res
}

func decodeObject(data []byte) (*object, error) {
	trimmed := bytes.TrimSpace(data)
	var probe json.RawMessage
	if err := json.Unmarshal(trimmed, &probe); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, ErrNotObject
	}
	obj := orderedmap.New[string, json.RawMessage]()
	if err := json.Unmarshal(trimmed, obj); err != nil {
		return nil, fmt.Errorf("decode object: %w", err)
	}
	return obj, nil
}

// encode renders obj with two-space indentation.
func encode(obj *object) ([]byte, error) {
	compact, err := obj.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("marshal config: %w", err)
	}
	var out bytes.Buffer
	if err := json.Indent(&out, compact, "", "  "); err != nil {
		return nil, fmt.Errorf("indent config: %w", err)
	}
	return out.Bytes(), nil
}

func writeFile(path string, data []byte) error {
	perm := os.FileMode(0644)
	if info, err := os.Stat(path); err == nil {
		perm = info.Mode().Perm()
	}
	return os.WriteFile(path, data, perm)
}

// falsy treats null, false, 0, "", [] and {} as unset.
func falsy(raw json.RawMessage) bool {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return false
	}
	switch x := v.(type) {
	case nil:
		return true
	case bool:
		return !x
	case float64:
		return x == 0
	case string:
		return x == ""
	case []any:
		return len(x) == 0
	case map[string]any:
		return len(x) == 0
	}
	return false
}

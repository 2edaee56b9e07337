// Package backendtest provides a recording in-memory backend for tests.
package backendtest

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/alnah/go-html2pdf/internal/backend"
)

var (
	_ backend.Backend        = (*Backend)(nil)
	_ backend.ConfigReleaser = (*Backend)(nil)
)

// ErrUnknownHandle is returned for handles the backend never issued or
// already released.
var ErrUnknownHandle = errors.New("backendtest: unknown handle")

// Call records one backend invocation.
type Call struct {
	Method string
	Handle backend.Handle
	Key    string
	Value  string
	Global bool
}

// KV is one applied config setting.
type KV struct {
	Key   string
	Value string
}

// Object is one object added to a converter.
type Object struct {
	Settings []KV
	Content  string
}

// Run describes a conversion when RunConversion is called.
type Run struct {
	Converter backend.Handle
	Global    []KV
	Objects   []Object
	Callbacks backend.Callbacks
}

// Backend records every call and keeps handle state in memory.
//
// Hooks must be set before the backend is used. All recorded state may be
// read from any goroutine.
type Backend struct {
	// LoadFunc overrides Load.
	LoadFunc func() error

	// Fail is consulted before every call except Load; a non-nil error
	// fails that call.
	Fail func(Call) error

	// OnRun decides the outcome of RunConversion and may fire callbacks.
	// By default it fires Finished(true) and succeeds.
	OnRun func(*Run) bool

	// Output builds the fetched bytes. By default it is "%PDF-test" followed
	// by each object's content on its own line.
	Output func(*Run) []byte

	mu         sync.Mutex
	calls      []Call
	next       backend.Handle
	configs    map[backend.Handle]*config
	converters map[backend.Handle]*Run
	results    map[backend.Handle][]byte

	active   atomic.Int32
	overlaps atomic.Int32
}

type config struct {
	global   bool
	settings []KV
}

// New returns an empty Backend.
func New() *Backend {
	return &Backend{
		configs:    make(map[backend.Handle]*config),
		converters: make(map[backend.Handle]*Run),
		results:    make(map[backend.Handle][]byte),
	}
}

// enter records c, tracks overlapping calls and applies the Fail hook.
func (b *Backend) enter(c Call) (leave func(), err error) {
	if b.active.Add(1) > 1 {
		b.overlaps.Add(1)
	}
	leave = func() { b.active.Add(-1) }

	b.mu.Lock()
	b.calls = append(b.calls, c)
	b.mu.Unlock()

	if b.Fail != nil && c.Method != "Load" {
		if err := b.Fail(c); err != nil {
			return leave, err
		}
	}
	return leave, nil
}

func (b *Backend) Load() error {
	leave, _ := b.enter(Call{Method: "Load"})
	defer leave()
	if b.LoadFunc != nil {
		return b.LoadFunc()
	}
	return nil
}

func (b *Backend) CreateGlobalConfig() (backend.Handle, error) {
	return b.createConfig("CreateGlobalConfig", true)
}

func (b *Backend) CreateObjectConfig() (backend.Handle, error) {
	return b.createConfig("CreateObjectConfig", false)
}

func (b *Backend) createConfig(method string, global bool) (backend.Handle, error) {
	leave, err := b.enter(Call{Method: method, Global: global})
	defer leave()
	if err != nil {
		return 0, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.next++
	b.configs[b.next] = &config{global: global}
	return b.next, nil
}

func (b *Backend) SetConfigValue(h backend.Handle, key, value string, global bool) error {
	leave, err := b.enter(Call{Method: "SetConfigValue", Handle: h, Key: key, Value: value, Global: global})
	defer leave()
	if err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	cfg, ok := b.configs[h]
	if !ok {
		return fmt.Errorf("%w: config %d", ErrUnknownHandle, h)
	}
	if cfg.global != global {
		return fmt.Errorf("backendtest: config %d global=%t, set with global=%t", h, cfg.global, global)
	}
	cfg.settings = append(cfg.settings, KV{Key: key, Value: value})
	return nil
}

func (b *Backend) CreateConverter(global backend.Handle) (backend.Handle, error) {
	leave, err := b.enter(Call{Method: "CreateConverter", Handle: global})
	defer leave()
	if err != nil {
		return 0, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	cfg, ok := b.configs[global]
	if !ok || !cfg.global {
		return 0, fmt.Errorf("%w: global config %d", ErrUnknownHandle, global)
	}
	delete(b.configs, global)
	b.next++
	b.converters[b.next] = &Run{Converter: b.next, Global: cfg.settings}
	return b.next, nil
}

func (b *Backend) AddObject(conv, obj backend.Handle, content string) error {
	leave, err := b.enter(Call{Method: "AddObject", Handle: conv, Value: content})
	defer leave()
	if err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	run, ok := b.converters[conv]
	if !ok {
		return fmt.Errorf("%w: converter %d", ErrUnknownHandle, conv)
	}
	cfg, ok := b.configs[obj]
	if !ok || cfg.global {
		return fmt.Errorf("%w: object config %d", ErrUnknownHandle, obj)
	}
	delete(b.configs, obj)
	run.Objects = append(run.Objects, Object{Settings: cfg.settings, Content: content})
	return nil
}

func (b *Backend) RegisterCallbacks(conv backend.Handle, cb backend.Callbacks) error {
	leave, err := b.enter(Call{Method: "RegisterCallbacks", Handle: conv})
	defer leave()
	if err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	run, ok := b.converters[conv]
	if !ok {
		return fmt.Errorf("%w: converter %d", ErrUnknownHandle, conv)
	}
	run.Callbacks = cb
	return nil
}

func (b *Backend) RunConversion(conv backend.Handle) bool {
	leave, err := b.enter(Call{Method: "RunConversion", Handle: conv})
	defer leave()
	if err != nil {
		return false
	}

	b.mu.Lock()
	run, ok := b.converters[conv]
	b.mu.Unlock()
	if !ok {
		return false
	}

	// Callbacks fire without the lock held so observers may read state.
	var success bool
	if b.OnRun != nil {
		success = b.OnRun(run)
	} else {
		if run.Callbacks.Finished != nil {
			run.Callbacks.Finished(true)
		}
		success = true
	}
	if !success {
		return false
	}

	out := defaultOutput(run)
	if b.Output != nil {
		out = b.Output(run)
	}
	b.mu.Lock()
	b.results[conv] = out
	b.mu.Unlock()
	return true
}

func defaultOutput(r *Run) []byte {
	var sb strings.Builder
	sb.WriteString("%PDF-test")
	for _, o := range r.Objects {
		sb.WriteByte('\n')
		sb.WriteString(o.Content)
	}
	return []byte(sb.String())
}

func (b *Backend) FetchResult(conv backend.Handle) ([]byte, error) {
	leave, err := b.enter(Call{Method: "FetchResult", Handle: conv})
	defer leave()
	if err != nil {
		return nil, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	out, ok := b.results[conv]
	if !ok {
		return nil, fmt.Errorf("%w: no result for converter %d", ErrUnknownHandle, conv)
	}
	return out, nil
}

func (b *Backend) DestroyConverter(conv backend.Handle) error {
	leave, err := b.enter(Call{Method: "DestroyConverter", Handle: conv})
	defer leave()
	if err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.converters[conv]; !ok {
		return fmt.Errorf("%w: converter %d", ErrUnknownHandle, conv)
	}
	delete(b.converters, conv)
	delete(b.results, conv)
	return nil
}

func (b *Backend) DestroyConfig(h backend.Handle) error {
	leave, err := b.enter(Call{Method: "DestroyConfig", Handle: h})
	defer leave()
	if err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.configs[h]; !ok {
		return fmt.Errorf("%w: config %d", ErrUnknownHandle, h)
	}
	delete(b.configs, h)
	return nil
}

// Calls returns a copy of every recorded call, in order.
func (b *Backend) Calls() []Call {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Call(nil), b.calls...)
}

// Methods returns the method names of every recorded call, in order.
func (b *Backend) Methods() []string {
	calls := b.Calls()
	out := make([]string, len(calls))
	for i, c := range calls {
		out[i] = c.Method
	}
	return out
}

// Count returns how many times method was called.
func (b *Backend) Count(method string) int {
	n := 0
	for _, c := range b.Calls() {
		if c.Method == method {
			n++
		}
	}
	return n
}

// Settings returns the SetConfigValue calls, keyed as sent, in order.
func (b *Backend) Settings(global bool) []KV {
	var out []KV
	for _, c := range b.Calls() {
		if c.Method == "SetConfigValue" && c.Global == global {
			out = append(out, KV{Key: c.Key, Value: c.Value})
		}
	}
	return out
}

// Live returns the number of handles not yet released.
func (b *Backend) Live() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.configs) + len(b.converters)
}

// Overlaps returns how many calls started while another was in progress.
func (b *Backend) Overlaps() int {
	return int(b.overlaps.Load())
}

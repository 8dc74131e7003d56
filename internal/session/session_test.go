package session

import (
	"bytes"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mpyw/goowl/internal/config"
	"github.com/mpyw/goowl/internal/engine"
	"github.com/mpyw/goowl/internal/fatal"
)

type stubUnit struct {
	res engine.Result
	err error
}

func (u stubUnit) Analyze() (engine.Result, error) { return u.res, u.err }

type abortRecorder struct {
	mu   sync.Mutex
	errs []error
}

func (a *abortRecorder) abort(err error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.errs = append(a.errs, err)
}

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Workers = 2
	cfg.Grace = time.Millisecond
	cfg.StackMax = 0
	return cfg
}

func TestSessionEmitsOneLinePerUnit(t *testing.T) {
	var out bytes.Buffer
	var rec abortRecorder

	s, err := New(Options{Config: testConfig(), Out: &out, Abort: rec.abort})
	require.NoError(t, err)

	for _, name := range []string{"foo", "bar", "foo"} {
		s.Scheduler.Spawn(stubUnit{res: engine.Result{
			Filename: "a.go",
			Item:     map[string]string{"name": name},
		}})
	}

	require.NoError(t, s.Close())
	assert.Empty(t, rec.errs)

	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	for _, line := range lines {
		assert.True(t, strings.HasPrefix(line, `{"a.go":{"items":[{"name":`), line)
	}
}

func TestSessionFailingUnitAborts(t *testing.T) {
	var out bytes.Buffer
	var rec abortRecorder

	s, err := New(Options{Config: testConfig(), Out: &out, Abort: rec.abort})
	require.NoError(t, err)

	s.Scheduler.Spawn(stubUnit{err: errors.New("boom")})

	err = s.Close()
	require.Error(t, err)
	assert.Equal(t, fatal.Internal, fatal.ClassOf(err))

	rec.mu.Lock()
	defer rec.mu.Unlock()
	require.NotEmpty(t, rec.errs)
	assert.Equal(t, fatal.ExitInternal, fatal.ExitCode(rec.errs[0]))
	assert.Empty(t, out.String())
}

func TestSessionRejectsUnknownFormat(t *testing.T) {
	cfg := testConfig()
	cfg.Format = "xml"

	_, err := New(Options{Config: cfg, Abort: func(error) {}})
	assert.Error(t, err)
}

func TestAbortIgnoresNil(t *testing.T) {
	var rec abortRecorder

	s, err := New(Options{Config: testConfig(), Out: &bytes.Buffer{}, Abort: rec.abort})
	require.NoError(t, err)

	s.Abort(nil)
	s.Abort(fatal.Env("read source", "x.go", errors.New("gone")))
	require.NoError(t, s.Close())

	require.Len(t, rec.errs, 1)
	assert.Equal(t, fatal.ExitEnvironment, fatal.ExitCode(rec.errs[0]))
}

func TestNewLogger(t *testing.T) {
	tests := []struct {
		level     string
		wantInfo  bool
		wantDebug bool
	}{
		{"quiet", false, false},
		{"info", true, false},
		{"debug", true, true},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			var buf bytes.Buffer
			logger := NewLogger(tt.level, &buf)

			logger.Debug("d")
			logger.Info("i")
			logger.Error("e")

			out := buf.String()
			assert.Contains(t, out, "msg=e")
			assert.Equal(t, tt.wantInfo, strings.Contains(out, "msg=i"))
			assert.Equal(t, tt.wantDebug, strings.Contains(out, "msg=d"))
		})
	}
}

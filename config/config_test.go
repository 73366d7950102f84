package config

import (
	"os"
	"path/filepath"
	"reflect"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoZeroFields(t *testing.T) {
	cfg := Default()

	for _, field := range visit(newVar(*cfg), "Config", false) {
		assert.Fail(t, "zero-value field", field)
	}
}

func TestDefaultIsValid(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestParse(t *testing.T) {
	t.Run("empty document", func(t *testing.T) {
		cfg, err := Parse([]byte("{}"))
		require.NoError(t, err)
		require.Equal(t, Default(), cfg)
	})

	t.Run("overrides", func(t *testing.T) {
		cfg, err := Parse([]byte(`{
			"net": {"read_buffer_size": 512, "read_timeout": "2s"},
			"http": {"max_discard_body": 0},
			"worker": {"delay": "25ms", "answer": "forty-two"}
		}`))
		require.NoError(t, err)
		require.Equal(t, 512, cfg.NET.ReadBufferSize)
		require.Equal(t, 2*time.Second, cfg.NET.ReadTimeout)
		require.Equal(t, Default().NET.WriteTimeout, cfg.NET.WriteTimeout)
		require.Zero(t, cfg.HTTP.MaxDiscardBody)
		require.Equal(t, 25*time.Millisecond, cfg.Worker.Delay)
		require.Equal(t, "forty-two", cfg.Worker.Answer)
	})

	t.Run("bad duration", func(t *testing.T) {
		_, err := Parse([]byte(`{"worker": {"delay": "soon"}}`))
		require.ErrorContains(t, err, "worker.delay")
	})

	t.Run("invalid value", func(t *testing.T) {
		_, err := Parse([]byte(`{"worker": {"answer": ""}}`))
		require.Error(t, err)
	})

	t.Run("malformed json", func(t *testing.T) {
		_, err := Parse([]byte(`{"worker": `))
		require.Error(t, err)
	})
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hitchhiker.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"loop": {"event_queue_size": 16}}`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 16, cfg.Loop.EventQueueSize)

	_, err = Load(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
}

func TestWatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hitchhiker.json")
	require.NoError(t, os.WriteFile(path, []byte(`{}`), 0o600))

	var delay atomic.Int64
	w, err := Watch(path, func(cfg *Config) {
		delay.Store(int64(cfg.Worker.Delay))
	})
	require.NoError(t, err)
	defer func() {
		require.NoError(t, w.Close())
	}()

	require.NoError(t, os.WriteFile(path, []byte(`{"worker": {"delay": "7ms"}}`), 0o600))
	require.Eventually(t, func() bool {
		return time.Duration(delay.Load()) == 7*time.Millisecond
	}, 5*time.Second, 10*time.Millisecond)
}

type variable struct {
	Type  reflect.Type
	Value reflect.Value
}

func newVar(a any) variable {
	return variable{reflect.TypeOf(a), reflect.ValueOf(a)}
}

func visit(a variable, name string, nullable bool) (fields []string) {
	if a.Type.Kind() == reflect.Struct {
		for field := range a.Value.NumField() {
			v1 := variable{a.Type.Field(field).Type, a.Value.Field(field)}
			fieldname := a.Type.Field(field).Name
			isNullable := a.Type.Field(field).Tag.Get("test") == "nullable"
			fields = append(fields, visit(v1, name+"."+fieldname, isNullable)...)
		}

		return fields
	}

	if a.Value.IsZero() && !nullable {
		return []string{name}
	}

	return nil
}

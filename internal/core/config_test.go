package core

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestViper(t *testing.T) *viper.Viper {
	t.Helper()
	v := viper.New()
	SetDefaults(v)
	return v
}

func TestLoadConfigDefaults(t *testing.T) {
	config, err := LoadConfig(newTestViper(t))
	require.NoError(t, err)

	assert.Equal(t, "info", config.Log.Level)
	assert.Equal(t, "console", config.Log.Format)
	assert.Equal(t, 10, config.Table.RowCount)
	assert.Equal(t, "default", config.Table.Theme)
	assert.Equal(t, "localhost:8080", config.Server.Addr)
	assert.Equal(t, 200*time.Millisecond, config.Watch.Debounce)
}

func TestLoadConfigOverrides(t *testing.T) {
	v := newTestViper(t)
	v.Set("table.rowCount", 25)
	v.Set("watch.debounce", "1s")
	v.Set("log.format", "json")
	v.Set("kube.namespace", "prod")

	config, err := LoadConfig(v)
	require.NoError(t, err)
	assert.Equal(t, 25, config.Table.RowCount)
	assert.Equal(t, time.Second, config.Watch.Debounce)
	assert.Equal(t, "json", config.Log.Format)
	assert.Equal(t, "prod", config.Kube.Namespace)
}

func TestLoadConfigInvalid(t *testing.T) {
	tests := []struct {
		name   string
		key    string
		value  any
		errMsg string
	}{
		{"zero rows", "table.rowCount", 0, "rowCount"},
		{"bad format", "log.format", "xml", "log.format"},
		{"no addr", "server.addr", "", "server.addr"},
		{"negative debounce", "watch.debounce", "-1s", "debounce"},
		{"undecodable rows", "table.rowCount", "many", "decode"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := newTestViper(t)
			v.Set(tt.key, tt.value)
			_, err := LoadConfig(v)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestNewViperReadsFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("table:\n  rowCount: 7\nserver:\n  addr: :9000\n"), 0o644))
	t.Setenv("VTABLE_SERVER_ADDR", ":9999")

	v, err := NewViper(path)
	require.NoError(t, err)

	config, err := LoadConfig(v)
	require.NoError(t, err)
	assert.Equal(t, 7, config.Table.RowCount)
	assert.Equal(t, ":9999", config.Server.Addr, "environment wins over the file")
}

func TestNewViperMissingExplicitFile(t *testing.T) {
	_, err := NewViper(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestNewViperWithoutConfigFile(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())
	t.Setenv("VTABLE_CONFIG_FILE", "")

	v, err := NewViper("")
	require.NoError(t, err)
	assert.Equal(t, 10, v.GetInt("table.rowCount"))
}

func TestDefaultLogFile(t *testing.T) {
	t.Setenv("XDG_STATE_HOME", "/var/state")
	assert.Equal(t, filepath.Join("/var/state", "vtable", "vtable.log"), DefaultLogFile())
}

func TestStateRecordReload(t *testing.T) {
	state := NewState(&Config{}, "file rows.yaml")
	now := time.Now()

	state.RecordReload(12, nil, now)
	snap := state.Snapshot()
	assert.Equal(t, 12, snap.RecordCount)
	assert.Equal(t, 1, snap.Reloads)
	assert.NoError(t, snap.LastError)

	state.RecordReload(0, errors.New("boom"), now.Add(time.Second))
	snap = state.Snapshot()
	assert.Equal(t, 12, snap.RecordCount, "failed reloads keep the previous count")
	assert.Equal(t, 2, snap.Reloads)
	assert.EqualError(t, snap.LastError, "boom")
	assert.Equal(t, "file rows.yaml", snap.Source)
	assert.NotNil(t, state.Config())
}

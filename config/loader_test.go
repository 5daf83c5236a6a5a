package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	file := filepath.Join(dir, "governor.yaml")
	require.NoError(t, os.WriteFile(file, []byte(content), 0644))
	return file
}

func TestLoader_LoadAndUnmarshal(t *testing.T) {
	file := writeConfig(t, `
governor:
  updates:
    significance_threshold: 0.2
    dispatch_timeout: 5s
`)

	loader := NewLoader(Options{ConfigFile: file})
	require.NoError(t, loader.Load())
	assert.Equal(t, []string{file}, loader.LoadedFiles())

	var section struct {
		SignificanceThreshold float64       `mapstructure:"significance_threshold"`
		DispatchTimeout       time.Duration `mapstructure:"dispatch_timeout"`
	}
	require.NoError(t, loader.Unmarshal("governor.updates", &section))
	assert.Equal(t, 0.2, section.SignificanceThreshold)
	assert.Equal(t, 5*time.Second, section.DispatchTimeout)
}

func TestLoader_MissingFileTolerated(t *testing.T) {
	// 纯环境变量部署：找不到配置文件不是错误
	loader := NewLoader(Options{ConfigPaths: []string{t.TempDir()}})
	assert.NoError(t, loader.Load())
	assert.Empty(t, loader.LoadedFiles())
}

func TestLoader_MissingSectionIsError(t *testing.T) {
	file := writeConfig(t, "governor:\n  mode: {}\n")

	loader := NewLoader(Options{ConfigFile: file})
	require.NoError(t, loader.Load())

	var out map[string]interface{}
	assert.Error(t, loader.Unmarshal("nonexistent", &out))
	assert.False(t, loader.IsSet("nonexistent"))
	assert.True(t, loader.IsSet("governor.mode"))
}

func TestLoader_EnvOverride(t *testing.T) {
	file := writeConfig(t, "statusapi:\n  addr: \":9181\"\n")

	t.Setenv("TALENTMESH_STATUSAPI_ADDR", ":9999")

	loader := NewLoader(Options{ConfigFile: file})
	require.NoError(t, loader.Load())

	// 环境变量覆盖文件值
	assert.Equal(t, ":9999", loader.GetString("statusapi.addr"))
}

func TestLoader_SetOverride(t *testing.T) {
	loader := NewLoader(Options{ConfigPaths: []string{t.TempDir()}})
	require.NoError(t, loader.Load())

	loader.Set("statusapi.addr", ":8080")
	assert.Equal(t, ":8080", loader.GetString("statusapi.addr"))
	assert.True(t, loader.IsSet("statusapi.addr"))
}

func TestLoader_MalformedFileIsFatal(t *testing.T) {
	file := writeConfig(t, "governor: [unclosed\n")

	loader := NewLoader(Options{ConfigFile: file})
	assert.Error(t, loader.Load())
}

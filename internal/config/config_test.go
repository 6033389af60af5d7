package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	v := viper.New()
	SetDefaults(v)

	var c Config
	require.NoError(t, v.Unmarshal(&c))

	assert.True(t, c.AddComments)
	assert.False(t, c.PreserveHeaders)
	assert.False(t, c.RemapTools)
	assert.Equal(t, 1, c.ToolStart)
	assert.Equal(t, "none", c.Template)
	assert.Equal(t, "print", c.Output)
	assert.Equal(t, ":8787", c.Server.Addr)
	assert.Equal(t, 32, c.Server.MaxUploadMB)
	assert.Equal(t, 4, c.Load.Jobs)
	assert.Equal(t, "info", c.Log.Level)
}

func TestInitEnvOverrides(t *testing.T) {
	t.Cleanup(viper.Reset)
	t.Setenv("NCMERGE_SERVER_ADDR", ":9000")
	t.Setenv("NCMERGE_REMAP_TOOLS", "true")

	require.NoError(t, Init())

	assert.Equal(t, ":9000", GetServerAddr())
	assert.True(t, GetRemapTools())
	assert.Equal(t, ":9000", C.Server.Addr)
	assert.Equal(t, int64(32<<20), GetMaxUploadBytes())
}

func TestSetters(t *testing.T) {
	t.Cleanup(viper.Reset)

	SetOutput("copy")
	SetTemplate("fanuc")
	assert.Equal(t, "copy", GetOutput())
	assert.Equal(t, "fanuc", GetTemplate())
	assert.Equal(t, "copy", C.Output)
}

func TestExpandTilde(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, "jobs/out.nc"), expandTilde("~/jobs/out.nc"))
	assert.Equal(t, "/abs/out.nc", expandTilde("/abs/out.nc"))
	assert.Equal(t, "", expandTilde(""))
}

package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Carmen-Shannon/oxy-sandbox/engine/config"
)

func TestControlsBannerListsBindings(t *testing.T) {
	cfg := config.Default()
	cfg.Source = "sandbox.yaml"
	out := controlsBanner(cfg)

	for _, c := range controls {
		assert.Contains(t, out, c[0])
		assert.Contains(t, out, c[1])
	}
	assert.Contains(t, out, cfg.Window.Title)
	assert.Contains(t, out, "2 frames in flight")
	assert.Contains(t, out, "sandbox.yaml")
}

func TestLoadConfigAppliesFlagOverrides(t *testing.T) {
	flagConfig = ""
	t.Cleanup(func() { flagFramesInFlight, flagVSync = 0, true })

	require.NoError(t, runCmd.Flags().Set("frames-in-flight", "3"))
	require.NoError(t, runCmd.Flags().Set("vsync", "false"))
	cfg, err := loadConfig(runCmd)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Render.FramesInFlight)
	assert.Equal(t, "immediate", cfg.Render.PresentMode)

	require.NoError(t, runCmd.Flags().Set("frames-in-flight", "9"))
	_, err = loadConfig(runCmd)
	assert.ErrorIs(t, err, config.ErrInvalid)
}

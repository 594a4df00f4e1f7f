package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildSessionConfig(t *testing.T) {
	cfg := BuildSessionConfig()

	assert.True(t, cfg.Headless)
	assert.Equal(t, PageLoadNormal, cfg.PageLoadStrategy)
	assert.Equal(t, "1920,1080", cfg.WindowSize)
	assert.Equal(t, []string{
		"--headless=new",
		"--window-size=1920,1080",
		"--disable-gpu",
		"--disable-site-isolation-trials",
	}, cfg.Args())
}

func TestBuildSessionConfig_IndependentInstances(t *testing.T) {
	first := BuildSessionConfig()
	second := BuildSessionConfig()

	assert.Equal(t, first.Args(), second.Args())
	assert.Equal(t, first.PageLoadStrategy, second.PageLoadStrategy)

	first.ExtraFlags[0] = "--mutated"
	first.ExtraFlags = append(first.ExtraFlags, "--another")

	assert.Equal(t, []string{"--disable-gpu", "--disable-site-isolation-trials"}, second.ExtraFlags)
	assert.Equal(t, []string{"--disable-gpu", "--disable-site-isolation-trials"}, BuildSessionConfig().ExtraFlags)
}

func TestUserActions_BuildSessionConfig(t *testing.T) {
	actions := NewUserActions(TestParameters{}, nil)
	assert.Equal(t, BuildSessionConfig(), actions.BuildSessionConfig())
}

func TestSessionConfig_Viewport(t *testing.T) {
	tests := []struct {
		size       string
		wantWidth  int
		wantHeight int
		wantErr    bool
	}{
		{"1920,1080", 1920, 1080, false},
		{"1280x720", 1280, 720, false},
		{"1920", 0, 0, true},
		{"wide,tall", 0, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.size, func(t *testing.T) {
			w, h, err := SessionConfig{WindowSize: tt.size}.Viewport()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantWidth, w)
			assert.Equal(t, tt.wantHeight, h)
		})
	}
}

func TestPageLoadStrategy(t *testing.T) {
	assert.Equal(t, "load", PageLoadNormal.WaitUntil())
	assert.Equal(t, "domcontentloaded", PageLoadEager.WaitUntil())
	assert.Equal(t, "commit", PageLoadNone.WaitUntil())
	assert.Equal(t, "eager", PageLoadEager.String())
}

func TestLaunchOptions(t *testing.T) {
	cfg := BuildSessionConfig()

	launch := LaunchOptions(cfg)
	require.NotNil(t, launch.Headless)
	assert.True(t, *launch.Headless)
	assert.Equal(t, cfg.Args(), launch.Args)

	ctxOpts, err := ContextOptions(cfg)
	require.NoError(t, err)
	require.NotNil(t, ctxOpts.Viewport)
	assert.Equal(t, 1920, ctxOpts.Viewport.Width)
	assert.Equal(t, 1080, ctxOpts.Viewport.Height)

	_, err = ContextOptions(SessionConfig{WindowSize: "bad"})
	assert.Error(t, err)
}

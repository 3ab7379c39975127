package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"coleta/internal/api"
	"coleta/internal/location"
	"coleta/internal/model"
	"coleta/internal/ui"
	"coleta/internal/upload"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T, args ...string) (*Config, error) {
	t.Helper()
	v := viper.New()
	flags := pflag.NewFlagSet("coleta", pflag.ContinueOnError)
	require.NoError(t, bindFlags(v, flags))
	require.NoError(t, flags.Parse(args))
	return loadConfig(v)
}

func TestLoadConfigDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	config, err := testConfig(t)
	require.NoError(t, err)

	dir := filepath.Join(home, ".coleta")
	assert.Equal(t, api.DefaultBaseURL, config.APIURL)
	assert.Equal(t, filepath.Join(dir, "coleta.db"), config.DBPath)
	assert.Equal(t, filepath.Join(dir, "coleta.log"), config.Log.Path)
	assert.Equal(t, filepath.Join(dir, "uploads"), config.UploadDir)
	assert.Nil(t, config.Location)
	assert.False(t, config.IPLocate)
	assert.Empty(t, config.FallbackItems)
	assert.IsType(t, location.Unavailable{}, config.locationSource())
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("COLETA_API_URL", "http://api.test:3333")
	t.Setenv("COLETA_FALLBACK_ITEMS", "3, 4")
	t.Setenv("COLETA_IP_LOCATE", "true")

	config, err := testConfig(t)
	require.NoError(t, err)

	assert.Equal(t, "http://api.test:3333", config.APIURL)
	assert.Equal(t, []int64{3, 4}, config.FallbackItems)
	assert.True(t, config.IPLocate)
	assert.IsType(t, &location.IPLookup{}, config.locationSource())
}

func TestLoadConfigFromFile(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	dir := filepath.Join(home, ".coleta")
	require.NoError(t, os.MkdirAll(dir, 0o700))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yml"), []byte("log-level: debug\nminio-endpoint: localhost:9000\n"), 0o600))

	config, err := testConfig(t)
	require.NoError(t, err)
	assert.Equal(t, "debug", config.Log.Level)
	assert.Equal(t, "localhost:9000", config.Minio.Endpoint)
	assert.Equal(t, "uploads", config.Minio.Bucket)
}

func TestLoadConfigFixedLocation(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	config, err := testConfig(t, "--lat", "-18.91", "--lon", "-48.27")
	require.NoError(t, err)
	require.NotNil(t, config.Location)
	assert.Equal(t, model.Coordinate{Latitude: -18.91, Longitude: -48.27}, *config.Location)
	assert.Equal(t, location.Fixed(*config.Location), config.locationSource())
}

func TestLoadConfigRejectsSentinelLocation(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	_, err := testConfig(t, "--lat", "0", "--lon", "0")
	assert.ErrorContains(t, err, "not a usable location")
}

func TestLoadConfigRejectsBadFallback(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	_, err := testConfig(t, "--fallback-items", "1,x")
	assert.ErrorContains(t, err, `invalid item id "x"`)
}

func TestParseItemIDs(t *testing.T) {
	ids, err := parseItemIDs("1,2, 6,")
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2, 6}, ids)

	ids, err = parseItemIDs("")
	require.NoError(t, err)
	assert.Nil(t, ids)

	_, err = parseItemIDs("0")
	assert.Error(t, err)
}

func TestApplyOnboarding(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	config, err := testConfig(t)
	require.NoError(t, err)
	config.applyOnboarding(OnboardingSettings{Completed: true, IPLocate: true, APIURL: "http://saved:3333"})
	assert.True(t, config.IPLocate)
	assert.Equal(t, "http://saved:3333", config.APIURL)

	config, err = testConfig(t, "--api-url", "http://flag:3333", "--ip-locate=false")
	require.NoError(t, err)
	config.applyOnboarding(OnboardingSettings{Completed: true, IPLocate: true, APIURL: "http://saved:3333"})
	assert.False(t, config.IPLocate)
	assert.Equal(t, "http://flag:3333", config.APIURL)
}

func TestOnboardingSettingsRoundTrip(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "coleta")

	settings, err := loadOnboardingSettings(dir)
	require.NoError(t, err)
	assert.False(t, settings.Completed)

	want := OnboardingSettings{Completed: true, IPLocate: true, APIURL: "http://localhost:3333"}
	require.NoError(t, saveOnboardingSettings(dir, want))

	got, err := loadOnboardingSettings(dir)
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.False(t, shouldRunOnboarding(got))
}

func TestOnboardingFlow(t *testing.T) {
	m := newOnboardingModel("http://localhost:3333")

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("n")})
	m = next.(onboardingModel)
	assert.Equal(t, stepAPI, m.step)
	assert.False(t, m.settings.IPLocate)

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(onboardingModel)
	assert.Equal(t, stepDone, m.step)
	assert.Equal(t, "http://localhost:3333", m.settings.APIURL)
	assert.True(t, m.settings.Completed)
	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())
}

func TestOnboardingRejectsBadURL(t *testing.T) {
	m := newOnboardingModel("localhost")
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(onboardingModel)
	require.Equal(t, stepAPI, m.step)

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(onboardingModel)
	assert.Equal(t, stepAPI, m.step)
	assert.Nil(t, cmd)
	assert.Contains(t, m.err, "not an http(s) address")
	assert.Contains(t, m.View(), "not an http(s) address")
}

func TestNewStore(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	store, err := newStore(ctx, &Config{UploadDir: t.TempDir()})
	require.NoError(t, err)
	assert.IsType(t, &upload.DiskStore{}, store)

	_, err = newStore(ctx, &Config{Minio: upload.MinioConfig{Endpoint: "localhost:9000"}})
	assert.ErrorContains(t, err, "minio-access-key")
}

func TestUploadCommand(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	src := filepath.Join(t.TempDir(), "photo.png")
	require.NoError(t, os.WriteFile(src, []byte("png"), 0o600))
	dir := t.TempDir()

	var out bytes.Buffer
	root := newRootCmd(viper.New(), "test")
	root.SetOut(&out)
	root.SetArgs([]string{"upload", src, "--upload-dir", dir, "--upload-base-url", "http://files.test"})
	require.NoError(t, root.Execute())

	url := strings.TrimSpace(out.String())
	assert.Regexp(t, `^http://files\.test/uploads/[0-9a-f]{12}-photo\.png$`, url)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, strings.HasSuffix(entries[0].Name(), "-photo.png"))
}

func TestNewDepsWiresServices(t *testing.T) {
	config := &Config{ConfigDir: t.TempDir(), APIURL: "http://api.test", FallbackItems: []int64{2}}
	deps := newDeps(config, nil, ui.TerminalCapabilities{})

	assert.NotNil(t, deps.Catalog)
	assert.NotNil(t, deps.Points)
	assert.NotNil(t, deps.Locator)
	assert.NotNil(t, deps.Details)
	assert.NotNil(t, deps.Photos)
	assert.Equal(t, []int64{2}, deps.Fallback)
	assert.Equal(t, filepath.Join(config.ConfigDir, "ui_prefs.json"), deps.PrefsPath)
}

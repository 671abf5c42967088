package installer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/caarlos0/env/v11"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandevgo/gsb/configs"
	"github.com/sandevgo/gsb/internal/config"
)

var (
	enter  = tea.KeyMsg{Type: tea.KeyEnter}
	down   = tea.KeyMsg{Type: tea.KeyDown}
	toggle = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'x'}}
)

func TestTransportStep(t *testing.T) {
	state := NewInstallState(t.TempDir())
	step := NewTransportStep()

	// Telnet starts enabled; turn it off and leave nothing selected.
	step, _ = step.Update(toggle, state, 80, 24)
	assert.False(t, state.App.EnableTelnet)

	got, _ := step.Update(enter, state, 80, 24)
	require.NotNil(t, got, "enter with nothing selected must stay")
	assert.Contains(t, got.View(state), errNoTransport.Error())

	step, _ = step.Update(down, state, 80, 24)
	step, _ = step.Update(toggle, state, 80, 24)
	assert.True(t, state.App.EnableTelegram)

	got, _ = step.Update(enter, state, 80, 24)
	assert.Nil(t, got)
}

func TestPortStep(t *testing.T) {
	state := NewInstallState(t.TempDir())

	step := NewPortStep().(*PortStep)
	step.input.SetValue("70000")
	got, _ := step.Update(enter, state, 80, 24)
	require.NotNil(t, got)
	assert.Contains(t, got.View(state), `invalid port "70000"`)

	step.input.SetValue("4001")
	got, _ = step.Update(enter, state, 80, 24)
	assert.Nil(t, got)
	assert.Equal(t, 4001, state.App.Port)
}

func TestPortStep_SkippedWithoutTelnet(t *testing.T) {
	state := NewInstallState(t.TempDir())
	state.App.EnableTelnet = false

	got, _ := NewPortStep().Update(nextMsg{}, state, 80, 24)
	assert.Nil(t, got)
	got, _ = NewEncodingStep().Update(nextMsg{}, state, 80, 24)
	assert.Nil(t, got)
}

func TestEncodingStep(t *testing.T) {
	state := NewInstallState(t.TempDir())
	step := NewEncodingStep()

	step, _ = step.Update(down, state, 80, 24)
	got, _ := step.Update(enter, state, 80, 24)
	assert.Nil(t, got)
	assert.Equal(t, "windows-1252", state.App.Encoding)
}

func TestTelegramTokenStep(t *testing.T) {
	state := NewInstallState(t.TempDir())

	got, _ := NewTelegramTokenStep().Update(nextMsg{}, state, 80, 24)
	assert.Nil(t, got, "skipped while Telegram is disabled")

	state.App.EnableTelegram = true
	step := NewTelegramTokenStep().(*TelegramTokenStep)
	got, _ = step.Update(enter, state, 80, 24)
	require.NotNil(t, got)
	assert.Contains(t, got.View(state), errNoToken.Error())

	step.input.SetValue(" 123:abc ")
	got, _ = step.Update(enter, state, 80, 24)
	assert.Nil(t, got)
	assert.Equal(t, "123:abc", state.Telegram.Token)
}

func TestAdminsStep(t *testing.T) {
	state := NewInstallState(t.TempDir())
	step := NewAdminsStep().(*AdminsStep)

	step.input.SetValue(" 10.0.0.1, ,tg:42,console")
	got, _ := step.Update(enter, state, 80, 24)
	assert.Nil(t, got)
	assert.Equal(t, []string{"10.0.0.1", "tg:42", "console"}, state.App.AdminHosts)
}

func TestSummary(t *testing.T) {
	state := NewInstallState("/srv/gsb")
	state.App.EnableConsole = true
	state.App.Port = 4001

	assert.Equal(t, []string{
		"Runtime:    /srv/gsb",
		"Transports: telnet, console",
		"Port:       4001",
		"Encoding:   utf-8 (default)",
		"Admins:     127.0.0.1, console (default)",
	}, state.Summary())
}

func TestSaveSteps(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "runtime")
	state := NewInstallState(dir)
	state.App.EnableTelnet = false
	state.App.EnableTelegram = true
	state.App.AdminHosts = []string{"tg:42"}
	state.Telegram.Token = "123:abc"

	got, _ := NewSaveEnvStep().Update(nextMsg{}, state, 80, 24)
	require.Nil(t, got)
	got, _ = NewInitializeFilesStep().Update(nextMsg{}, state, 80, 24)
	require.Nil(t, got)

	words, err := os.ReadFile(filepath.Join(dir, "words.txt"))
	require.NoError(t, err)
	assert.Equal(t, configs.Words, words)

	vars, err := godotenv.Read(state.EnvPath())
	require.NoError(t, err)

	var app config.AppConfig
	require.NoError(t, env.ParseWithOptions(&app, env.Options{Environment: vars}))
	assert.False(t, app.EnableTelnet)
	assert.True(t, app.EnableTelegram)
	assert.Equal(t, []string{"tg:42"}, app.AdminHosts)
	assert.Equal(t, 4000, app.Port)
	assert.Equal(t, "123:abc", vars["GSB_TELEGRAM_TOKEN"])

	again, _ := NewSaveEnvStep().Update(nextMsg{}, state, 80, 24)
	require.NotNil(t, again, "an existing .env is never overwritten")
	assert.Contains(t, again.View(state), "already exists")
}

func TestWriteWordList_KeepsExisting(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "words.txt")
	require.NoError(t, os.WriteFile(path, []byte("custom\n"), 0644))

	require.NoError(t, writeWordList(dir))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "custom\n", string(data))
}

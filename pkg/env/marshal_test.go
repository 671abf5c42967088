package env

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Port      int      `env:"GSB_PORT" envDefault:"4000"`
	Interface string   `env:"GSB_INTERFACE"`
	Telnet    bool     `env:"GSB_ENABLE_TELNET"`
	Admins    []string `env:"GSB_ADMIN_HOSTS" envSeparator:","`
	Welcome   string   `env:"GSB_WELCOME"`
	Token     string   `env:"GSB_TELEGRAM_TOKEN,required,notEmpty"`
	hidden    string   `env:"HIDDEN"`
	NoTag     string
}

func TestMarshalEnv(t *testing.T) {
	got, err := MarshalEnv(&sample{
		Port:      4001,
		Interface: "127.0.0.1",
		Telnet:    true,
		Admins:    []string{"127.0.0.1", "console"},
		Welcome:   "Welcome to the chatroom.",
		Token:     "abc:def",
		hidden:    "x",
		NoTag:     "y",
	})
	require.NoError(t, err)

	want := "GSB_PORT=4001\n" +
		"GSB_INTERFACE=127.0.0.1\n" +
		"GSB_ENABLE_TELNET=true\n" +
		"GSB_ADMIN_HOSTS=127.0.0.1,console\n" +
		"GSB_WELCOME=\"Welcome to the chatroom.\"\n" +
		"GSB_TELEGRAM_TOKEN=abc:def\n"
	assert.Equal(t, want, got)
}

func TestMarshalEnv_SkipsZeroValues(t *testing.T) {
	got, err := MarshalEnv(sample{})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestMarshalEnv_FalseOverridesTrueDefault(t *testing.T) {
	got, err := MarshalEnv(struct {
		Telnet  bool `env:"GSB_ENABLE_TELNET" envDefault:"true"`
		Console bool `env:"GSB_ENABLE_CONSOLE" envDefault:"false"`
	}{})
	require.NoError(t, err)
	assert.Equal(t, "GSB_ENABLE_TELNET=false\n", got)
}

func TestMarshalEnv_RejectsNonStruct(t *testing.T) {
	_, err := MarshalEnv(42)
	assert.Error(t, err)
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runtime", ".env")

	require.NoError(t, WriteFile(path, &sample{Port: 4002}, &sample{Token: "t"}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "GSB_PORT=4002\nGSB_TELEGRAM_TOKEN=t\n", string(data))

	assert.Error(t, WriteFile(path, &sample{Port: 1}), "must not overwrite")
}

package config_test

import (
	"reflect"
	"strings"
	"testing"

	"github.com/spf13/viper"

	"github.com/ossyrian/nitroparse/internal/config"
)

func TestConfig_UnmarshalTOML(t *testing.T) {
	const doc = `
input = ["a.nds", "b.nds"]
output = "report.yaml"
format = "yaml"
encoding = "shift_jis"
strict_tags = true
jobs = 4
log_level = "debug"
log_output_dir = "/tmp/logs"
`
	v := viper.New()
	v.SetConfigType("toml")
	if err := v.ReadConfig(strings.NewReader(doc)); err != nil {
		t.Fatalf("ReadConfig() failed: %v", err)
	}

	var got config.Config
	if err := v.Unmarshal(&got); err != nil {
		t.Fatalf("Unmarshal() failed: %v", err)
	}

	want := config.Config{
		InputFiles:   []string{"a.nds", "b.nds"},
		OutputPath:   "report.yaml",
		Format:       "yaml",
		Encoding:     "shift_jis",
		StrictTags:   true,
		Jobs:         4,
		LogLevel:     "debug",
		LogOutputDir: "/tmp/logs",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Unmarshal() = %+v, want %+v", got, want)
	}
}

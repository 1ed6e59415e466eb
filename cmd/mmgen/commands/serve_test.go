package commands

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elecmate/mmgen/internal/model"
)

func TestServeLoadConfig(t *testing.T) {
	tests := map[string]struct {
		configFile string
		cmd        func(dataDir string) ServeCommand
		expCfg     func(dataDir string) model.ServerConfig
		expErr     bool
	}{
		"Without config file the defaults should be used.": {
			cmd: func(string) ServeCommand { return ServeCommand{} },
			expCfg: func(dataDir string) model.ServerConfig {
				return model.ServerConfig{
					ListenAddress: "127.0.0.1:8080",
					PublicURL:     "http://127.0.0.1:8080",
					DownloadsDir:  filepath.Join(dataDir, "downloads"),
					Generator:     model.GeneratorConfig{Provider: model.GeneratorProviderKnowledge, APIKeyEnv: "OPENAI_API_KEY"},
				}
			},
		},

		"The config file in the data dir should be loaded and flags should win.": {
			configFile: `
listen_address: 0.0.0.0:9000
public_url: https://mmgen.example.com
workers: 4
generation_timeout: 2m
generator:
  provider: openai
  model: gpt-4o-mini
  api_key_env: MY_KEY
`,
			cmd: func(string) ServeCommand { return ServeCommand{workers: 8} },
			expCfg: func(dataDir string) model.ServerConfig {
				return model.ServerConfig{
					ListenAddress:     "0.0.0.0:9000",
					PublicURL:         "https://mmgen.example.com",
					DownloadsDir:      filepath.Join(dataDir, "downloads"),
					Workers:           8,
					GenerationTimeout: 2 * time.Minute,
					Generator:         model.GeneratorConfig{Provider: model.GeneratorProviderOpenAI, Model: "gpt-4o-mini", APIKeyEnv: "MY_KEY"},
				}
			},
		},

		"A missing explicit config file should fail.": {
			cmd: func(dataDir string) ServeCommand {
				return ServeCommand{configPath: filepath.Join(dataDir, "missing.yaml")}
			},
			expErr: true,
		},

		"The openai generator without model should fail.": {
			cmd:    func(string) ServeCommand { return ServeCommand{provider: "openai"} },
			expErr: true,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)
			require := require.New(t)

			dataDir := t.TempDir()
			if test.configFile != "" {
				err := os.WriteFile(filepath.Join(dataDir, "config.yaml"), []byte(test.configFile), 0o644)
				require.NoError(err)
			}

			c := test.cmd(dataDir)
			c.rootCmd = &RootCommand{DataDir: dataDir}

			cfg, err := c.loadConfig(context.TODO())
			if test.expErr {
				assert.Error(err)
			} else if assert.NoError(err) {
				assert.Equal(test.expCfg(dataDir), cfg)
			}
		})
	}
}

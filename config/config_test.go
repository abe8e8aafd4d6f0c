package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	internal "featops/internal"
)

// ConfigTestSuite tests the config package functionality
type ConfigTestSuite struct {
	suite.Suite
	tempDir string
	origDir string
}

func TestConfigSuite(t *testing.T) {
	suite.Run(t, new(ConfigTestSuite))
}

func (suite *ConfigTestSuite) SetupTest() {
	var err error
	suite.origDir, err = os.Getwd()
	require.NoError(suite.T(), err)

	tempDir, err := os.MkdirTemp("", "featops-config-test-*")
	require.NoError(suite.T(), err)
	suite.tempDir = tempDir

	err = os.Chdir(tempDir)
	require.NoError(suite.T(), err)
}

func (suite *ConfigTestSuite) TearDownTest() {
	if suite.origDir != "" {
		os.Chdir(suite.origDir)
	}
	if suite.tempDir != "" {
		os.RemoveAll(suite.tempDir)
	}
}

func (suite *ConfigTestSuite) TestLoadConfigWithDefaults() {
	cfg, err := LoadConfig("")

	require.NoError(suite.T(), err)
	require.NotNil(suite.T(), cfg)
	assert.Equal(suite.T(), "cpu", cfg.Runtime.ExecutionProvider)
	assert.Equal(suite.T(), 1, cfg.Runtime.OpsetVersion)
	assert.Equal(suite.T(), internal.DefaultStorePath, cfg.Store.Path)
	assert.Equal(suite.T(), "word", cfg.Vectorizer.Analyzer)
	assert.Equal(suite.T(), "l2", cfg.Vectorizer.Norm)
	assert.Equal(suite.T(), 1, cfg.Vectorizer.NgramMin)
}

func (suite *ConfigTestSuite) TestLoadConfigFromFile() {
	configPath := filepath.Join(suite.tempDir, "config.yaml")
	content := []byte(`
runtime:
  maxWorkers: 8
  opsetVersion: 2
store:
  path: /tmp/custom.db
vectorizer:
  analyzer: char
  ngramMin: 2
  ngramMax: 4
`)
	require.NoError(suite.T(), os.WriteFile(configPath, content, 0o644))

	cfg, err := LoadConfig(configPath)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), 8, cfg.Runtime.MaxWorkers)
	assert.Equal(suite.T(), 2, cfg.Runtime.OpsetVersion)
	assert.Equal(suite.T(), "/tmp/custom.db", cfg.Store.Path)
	assert.Equal(suite.T(), "char", cfg.Vectorizer.Analyzer)
	assert.Equal(suite.T(), 2, cfg.Vectorizer.NgramMin)
	assert.Equal(suite.T(), 4, cfg.Vectorizer.NgramMax)
	// Untouched keys keep their defaults.
	assert.Equal(suite.T(), "cpu", cfg.Runtime.ExecutionProvider)
}

func (suite *ConfigTestSuite) TestLoadConfigInvalidNgramRange() {
	configPath := filepath.Join(suite.tempDir, "config.yaml")
	content := []byte(`
vectorizer:
  ngramMin: 3
  ngramMax: 2
`)
	require.NoError(suite.T(), os.WriteFile(configPath, content, 0o644))

	_, err := LoadConfig(configPath)
	assert.Error(suite.T(), err)
}

func (suite *ConfigTestSuite) TestLoadConfigMissingExplicitFile() {
	_, err := LoadConfig(filepath.Join(suite.tempDir, "nope.yaml"))
	assert.Error(suite.T(), err)
}

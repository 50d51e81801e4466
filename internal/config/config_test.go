package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "stackctl.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "t4-dev-environment", cfg.StackName)
	assert.Equal(t, "us-east-1", cfg.Region)
	assert.Equal(t, "deploy/cloudformation.yaml", cfg.Template)
	assert.Equal(t, "ec2-user", cfg.SSHUser)
	assert.Equal(t, "15s", cfg.PollInterval)
	assert.Equal(t, "40m", cfg.WaitTimeout)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "stackctl.yaml")
	content := `
stackName: gpu-lab
region: eu-west-1
sshUser: ubuntu
pollInterval: 5s
waitTimeout: 10m
showEvents: true
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "gpu-lab", cfg.StackName)
	assert.Equal(t, "eu-west-1", cfg.Region)
	assert.Equal(t, "ubuntu", cfg.SSHUser)
	assert.Equal(t, "5s", cfg.PollInterval)
	assert.Equal(t, "10m", cfg.WaitTimeout)
	assert.True(t, cfg.ShowEvents)
}

func TestLoadEnvironmentOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "stackctl.yaml")
	require.NoError(t, os.WriteFile(path, []byte("region: eu-west-1\n"), 0o644))

	t.Setenv("STACKCTL_REGION", "ap-southeast-2")
	t.Setenv("STACKCTL_PROFILE", "lab")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "ap-southeast-2", cfg.Region)
	assert.Equal(t, "lab", cfg.Profile)
}

func TestLoadEnvFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("STACKCTL_STACK_NAME=from-env-file\n"), 0o644))

	path := filepath.Join(dir, "stackctl.yaml")
	require.NoError(t, os.WriteFile(path, []byte("envFiles:\n  - .env\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env-file", cfg.StackName)
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "stackctl.yaml")
	require.NoError(t, os.WriteFile(path, []byte("stackName: [unclosed\n"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
}

func TestReadTemplate(t *testing.T) {
	dir := t.TempDir()
	tmplPath := filepath.Join(dir, "template.yaml")
	require.NoError(t, os.WriteFile(tmplPath, []byte("AWSTemplateFormatVersion: \"2010-09-09\"\n"), 0o644))

	cfg := Default()
	cfg.Template = tmplPath

	body, err := cfg.ReadTemplate()
	require.NoError(t, err)
	assert.Contains(t, body, "2010-09-09")

	cfg.Template = filepath.Join(dir, "missing.yaml")
	_, err = cfg.ReadTemplate()
	require.Error(t, err)
}

package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fabriclab/fabric-pulse/internal/errors"
)

const sampleTopology = `
name: dc1_fabric
mgmt:
  network: clab-mgmt
  ipv4-subnet: 172.20.20.0/24
topology:
  kinds:
    ceos:
      image: ceos:4.32.1F
  nodes:
    dc1-spine1:
      kind: ceos
      mgmt-ipv4: 172.20.20.11
    dc1-spine2:
      kind: ceos
      mgmt-ipv4: 172.20.20.12
    dc1-leaf1:
      kind: ceos
      mgmt-ipv4: 172.20.20.21
    dc1-host1:
      kind: linux
      mgmt-ipv4: 172.20.20.31
    dc1-dynamic:
      kind: ceos
`

func TestLoadTopologyTargets(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "lab.clab.yml", sampleTopology)

	targets, err := LoadTopologyTargets(path, nil)
	require.NoError(t, err)

	// Ordered by name, nodes without mgmt-ipv4 skipped
	require.Len(t, targets, 4)
	assert.Equal(t, "dc1-host1", targets[0].Name)
	assert.Equal(t, "dc1-leaf1", targets[1].Name)
	assert.Equal(t, "dc1-spine1", targets[2].Name)
	assert.Equal(t, "dc1-spine2", targets[3].Name)

	assert.Equal(t, "172.20.20.21", targets[1].Host)
	assert.Equal(t, "leaf", targets[1].Role)
	assert.Equal(t, "spine", targets[2].Role)
}

func TestLoadTopologyTargetsKindFilter(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "lab.clab.yml", sampleTopology)

	targets, err := LoadTopologyTargets(path, []string{"ceos"})
	require.NoError(t, err)

	require.Len(t, targets, 3)
	for _, target := range targets {
		assert.NotEqual(t, "dc1-host1", target.Name)
	}
}

func TestLoadTopologyTargetsMissingFile(t *testing.T) {
	_, err := LoadTopologyTargets("/does/not/exist.yml", nil)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrTargets))
}

func TestLoadTopologyTargetsMalformed(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "bad.yml", "topology: [not a map")

	_, err := LoadTopologyTargets(path, nil)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrTargets))
}

func TestLoadTopologyTargetsNoNodes(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "empty.yml", "name: empty\ntopology:\n  nodes: {}\n")

	_, err := LoadTopologyTargets(path, nil)
	require.Error(t, err)
}

func TestLoadTopologyTargetsNoUsableNodes(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "dyn.yml", `
name: dyn
topology:
  nodes:
    sw1:
      kind: ceos
`)

	_, err := LoadTopologyTargets(path, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mgmt-ipv4")
}

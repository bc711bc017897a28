package config

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/fabriclab/fabric-pulse/internal/errors"
)

// clabTopology is the subset of a containerlab topology file we care about:
// node names and their management addressing.
type clabTopology struct {
	Name     string `yaml:"name"`
	Topology struct {
		Nodes map[string]clabNode `yaml:"nodes"`
	} `yaml:"topology"`
}

type clabNode struct {
	Kind     string `yaml:"kind"`
	MgmtIPv4 string `yaml:"mgmt-ipv4"`
	MgmtIPv6 string `yaml:"mgmt-ipv6"`
}

// LoadTopologyTargets derives monitoring targets from a containerlab topology
// file's management-IP set. Nodes without a static management address are
// skipped (containerlab assigns them dynamically, so there is nothing stable
// to poll). If kinds is non-empty, only nodes of those kinds are included.
//
// The result is ordered by node name so the dashboard layout is stable
// across runs.
func LoadTopologyTargets(path string, kinds []string) ([]Target, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrTargets,
			"Cannot read topology file "+path,
			"Check topology.file points at your containerlab topology")
	}

	var topo clabTopology
	if err := yaml.Unmarshal(data, &topo); err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrTargets,
			"Topology file "+path+" is not valid YAML",
			"Check the file against the containerlab schema")
	}

	if len(topo.Topology.Nodes) == 0 {
		return nil, errors.New(errors.ErrTargets,
			fmt.Sprintf("Topology '%s' defines no nodes", topo.Name),
			"Check the topology.nodes section")
	}

	wantKind := make(map[string]bool, len(kinds))
	for _, k := range kinds {
		wantKind[k] = true
	}

	names := make([]string, 0, len(topo.Topology.Nodes))
	for name := range topo.Topology.Nodes {
		names = append(names, name)
	}
	sort.Strings(names)

	var targets []Target
	for _, name := range names {
		node := topo.Topology.Nodes[name]
		if len(wantKind) > 0 && !wantKind[node.Kind] {
			continue
		}
		host := node.MgmtIPv4
		if host == "" {
			host = node.MgmtIPv6
		}
		if host == "" {
			continue
		}
		targets = append(targets, Target{
			Name: name,
			Host: host,
			Role: InferRole(name),
		})
	}

	if len(targets) == 0 {
		return nil, errors.New(errors.ErrTargets,
			fmt.Sprintf("No usable nodes in topology '%s'", topo.Name),
			"Nodes need a static mgmt-ipv4 (or mgmt-ipv6) to be monitored")
	}

	return targets, nil
}

package eapi

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"
)

// DeviceState is the operational snapshot of one device from a single poll
// cycle. Immutable once produced; a new cycle produces a new value.
type DeviceState struct {
	Model   string
	Version string
	Uptime  time.Duration

	// CPUPercent is total CPU utilization, or -1 when the device didn't report it.
	CPUPercent float64

	// Temperature is the hottest sensor in °C, or -1 when unreported.
	Temperature float64

	// TempAlarms counts sensors currently in alert state.
	TempAlarms int

	// MLAG is the MLAG state ("active", "inactive", "disabled", or "n/a").
	MLAG string

	BGP        BGPSummary
	Interfaces InterfaceSummary
}

// BGPSummary counts BGP peers across all VRFs.
type BGPSummary struct {
	Established int
	Total       int
}

// String renders the adjacency count the way `show ip bgp summary` operators
// expect: "3/4 up", or "n/a" when no peers are configured.
func (b BGPSummary) String() string {
	if b.Total == 0 {
		return "n/a"
	}
	return fmt.Sprintf("%d/%d up", b.Established, b.Total)
}

// InterfaceSummary aggregates link state across all ports.
type InterfaceSummary struct {
	Up       int
	Down     int
	Disabled int

	// Ports holds per-interface rows for the detail view, sorted by name.
	Ports []Port
}

// Total returns the number of physical and logical ports reported.
func (s InterfaceSummary) Total() int {
	return s.Up + s.Down + s.Disabled
}

// String renders the link summary as "up/total" for the dashboard table.
func (s InterfaceSummary) String() string {
	if s.Total() == 0 {
		return "n/a"
	}
	return fmt.Sprintf("%d/%d up", s.Up, s.Total())
}

// Port is one interface row in the detail view.
type Port struct {
	Name        string
	Status      string // connected, notconnect, disabled
	Speed       string // e.g. "10G", "1G", "auto"
	Description string
}

// Wire-format structs for the show commands we issue. Field sets are the
// minimum the dashboard needs; eAPI returns far more.

type showVersion struct {
	ModelName string  `json:"modelName"`
	Version   string  `json:"version"`
	Uptime    float64 `json:"uptime"`
}

type showInterfacesStatus struct {
	InterfaceStatuses map[string]struct {
		LinkStatus          string `json:"linkStatus"`
		Description         string `json:"description"`
		Bandwidth           int64  `json:"bandwidth"`
		AutoNegotiateActive bool   `json:"autoNegotiateActive"`
	} `json:"interfaceStatuses"`
}

type showBGPSummary struct {
	Vrfs map[string]struct {
		Peers map[string]struct {
			PeerState string `json:"peerState"`
		} `json:"peers"`
	} `json:"vrfs"`
}

type showMLAG struct {
	State     string `json:"state"`
	MlagState string `json:"mlagState"`
}

type tempSensor struct {
	Name               string  `json:"name"`
	CurrentTemperature float64 `json:"currentTemperature"`
	InAlertState       bool    `json:"inAlertState"`
}

type showTemperature struct {
	SystemStatus string       `json:"systemStatus"`
	TempSensors  []tempSensor `json:"tempSensors"`
	CardSlots    []struct {
		TempSensors []tempSensor `json:"tempSensors"`
	} `json:"cardSlots"`
	PowerSupplySlots []struct {
		TempSensors []tempSensor `json:"tempSensors"`
	} `json:"powerSupplySlots"`
}

func (v showVersion) uptimeDuration() time.Duration {
	return time.Duration(v.Uptime * float64(time.Second))
}

func summarizeInterfaces(raw showInterfacesStatus) InterfaceSummary {
	var summary InterfaceSummary
	for name, iface := range raw.InterfaceStatuses {
		switch iface.LinkStatus {
		case "connected":
			summary.Up++
		case "disabled":
			summary.Disabled++
		default:
			summary.Down++
		}
		summary.Ports = append(summary.Ports, Port{
			Name:        name,
			Status:      iface.LinkStatus,
			Speed:       formatBandwidth(iface.Bandwidth, iface.AutoNegotiateActive),
			Description: iface.Description,
		})
	}
	sort.Slice(summary.Ports, func(i, j int) bool {
		return interfaceLess(summary.Ports[i].Name, summary.Ports[j].Name)
	})
	return summary
}

// interfaceLess orders interface names the way EOS does: shorter names first
// within the same prefix so Ethernet2 sorts before Ethernet10.
func interfaceLess(a, b string) bool {
	if len(a) != len(b) {
		pa, pb := trimDigits(a), trimDigits(b)
		if pa == pb {
			return len(a) < len(b)
		}
	}
	return a < b
}

func trimDigits(s string) string {
	i := len(s)
	for i > 0 && s[i-1] >= '0' && s[i-1] <= '9' {
		i--
	}
	return s[:i]
}

func formatBandwidth(bps int64, autoneg bool) string {
	switch {
	case bps >= 1_000_000_000_000:
		return fmt.Sprintf("%dT", bps/1_000_000_000_000)
	case bps >= 1_000_000_000:
		return fmt.Sprintf("%dG", bps/1_000_000_000)
	case bps >= 1_000_000:
		return fmt.Sprintf("%dM", bps/1_000_000)
	case autoneg:
		return "auto"
	default:
		return "-"
	}
}

func summarizeBGP(raw showBGPSummary) BGPSummary {
	var summary BGPSummary
	for _, vrf := range raw.Vrfs {
		for _, peer := range vrf.Peers {
			summary.Total++
			if peer.PeerState == "Established" {
				summary.Established++
			}
		}
	}
	return summary
}

func mlagState(raw showMLAG) string {
	if raw.State != "" {
		return raw.State
	}
	if raw.MlagState != "" {
		return raw.MlagState
	}
	return "disabled"
}

// summarizeTemperature returns the hottest sensor and the count in alert
// state. Modular systems report sensors per card and per power supply on
// top of the chassis sensors.
func summarizeTemperature(raw showTemperature) (maxTemp float64, alarms int) {
	maxTemp = -1
	scan := func(sensors []tempSensor) {
		for _, s := range sensors {
			if s.CurrentTemperature > maxTemp {
				maxTemp = s.CurrentTemperature
			}
			if s.InAlertState {
				alarms++
			}
		}
	}
	scan(raw.TempSensors)
	for _, slot := range raw.CardSlots {
		scan(slot.TempSensors)
	}
	for _, slot := range raw.PowerSupplySlots {
		scan(slot.TempSensors)
	}
	return maxTemp, alarms
}

// parseCPU extracts total CPU utilization from `show processes top once`.
// The JSON shape varies across EOS releases: newer ones expose cpuInfo with
// an idle percentage, older ones a flat utilization key. Returns -1 when
// nothing recognizable is present.
func parseCPU(raw json.RawMessage) float64 {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(raw, &top); err != nil {
		return -1
	}

	for _, key := range []string{"cpu", "cpuUtilization", "cpuTotal"} {
		if v, ok := top[key]; ok {
			var pct float64
			if err := json.Unmarshal(v, &pct); err == nil {
				return pct
			}
		}
	}

	if v, ok := top["cpuInfo"]; ok {
		var info struct {
			Cpus struct {
				Idle float64 `json:"idle"`
			} `json:"%Cpu(s)"`
		}
		if err := json.Unmarshal(v, &info); err == nil && info.Cpus.Idle > 0 {
			return 100 - info.Cpus.Idle
		}
	}

	return -1
}

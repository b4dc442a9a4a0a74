/*
 * Copyright 2026 Shelly Manager Contributors.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package component

// Switch is the projected view of a switch:N component.
type Switch struct {
	Output          bool
	ActivePower     *float64
	Voltage         *float64
	Current         *float64
	Frequency       *float64
	PowerFactor     *float64
	TemperatureC    *float64
	TemperatureF    *float64
	EnergyKWh       *float64
	Source          string
	Name            string
	AutoOn          bool
	AutoOff         bool
	PowerLimit      *float64
	CurrentLimit    *float64
}

// Input is the projected view of an input:N component.
type Input struct {
	State     bool
	InputType string
	Name      string
	Enabled   bool
	Inverted  bool
}

// CoverState enumerates the states a Cover component may report.
type CoverState string

const (
	CoverOpen     CoverState = "open"
	CoverClosed   CoverState = "closed"
	CoverOpening  CoverState = "opening"
	CoverClosing  CoverState = "closing"
	CoverStopped  CoverState = "stopped"
	CoverUnknown  CoverState = "unknown"
)

// Cover is the projected view of a cover:N component.
type Cover struct {
	State         CoverState
	Position      *int
	Power         *float64
	Voltage       *float64
	Current       *float64
	Temperature   *float64
	Energy        *float64
	LastDirection string
	Source        string
	Name          string
	MaxOpenTime   *float64
	MaxCloseTime  *float64
	PowerLimit    *float64
}

// System is the projected view of the sys component.
type System struct {
	DeviceName       string
	HardwareAddress  string
	FirmwareID       string
	Uptime           int
	RestartRequired  bool
	RAMTotal         int
	RAMFree          int
	FSTotal          int
	FSFree           int
	AvailableUpdates map[string]FirmwareVersion
	UnixTime         int64
	Timezone         string
}

// FirmwareVersion is one entry of System.AvailableUpdates.
type FirmwareVersion struct {
	Version string
	BuildID string
}

// Cloud is the projected view of the cloud component.
type Cloud struct {
	Connected bool
	Enabled   bool
	Server    string
}

// Wifi is the projected view of the wifi component.
type Wifi struct {
	StationIPv4 string
	StationIPv6 []string
	Status      string
	SSID        string
	BSSID       string
	RSSI        *int
}

// Websocket is the projected view of the ws component.
type Websocket struct {
	Connected bool
}

// Ethernet is the projected view of the eth component.
type Ethernet struct {
	Address    string
	IPv6       []string
	Enabled    bool
	ServerMode bool
	IPv4Mode   string
	Netmask    string
	Gateway    string
	Nameserver string
}

// BTHome is the projected view of the bthome component.
type BTHome struct {
	Errors  []string
	Enabled bool
}

// BLE is the projected view of the ble component.
type BLE struct {
	Enabled    bool
	RPCEnabled bool
}

// KNX is the projected view of the knx component.
type KNX struct {
	Enabled          bool
	IndividualAddr   string
	RoutingAddr      string
}

// MQTT is the projected view of the mqtt component.
type MQTT struct {
	Connected            bool
	Enabled              bool
	Server               string
	ClientID             string
	User                 string
	TopicPrefix          string
	EnableRPC            bool
	RPCNotifications     bool
	StatusNotifications  bool
	UseClientCert        bool
	EnableControl        bool
}

// Zigbee is the projected view of the zigbee component.
type Zigbee struct {
	NetworkState string
	Enabled      bool
}

// EMPhase holds one phase's readings for a 3-phase energy meter.
type EMPhase struct {
	Current      *float64
	Voltage      *float64
	ActivePower  *float64
	ApparentPower *float64
	PowerFactor  *float64
	Frequency    *float64
}

// EM is the projected view of an em:N (3-phase energy meter) component.
type EM struct {
	PhaseA        EMPhase
	PhaseB        EMPhase
	PhaseC        EMPhase
	NeutralCurrent *float64
	TotalCurrent  *float64
	TotalActPower *float64
	TotalAprtPower *float64
	Name          string
	CTType        string
}

// EM1 is the projected view of an em1:N (1-phase energy meter) component.
type EM1 struct {
	Current     *float64
	Voltage     *float64
	ActivePower *float64
	ApparentPower *float64
	PowerFactor *float64
	Frequency   *float64
	Name        string
	CTType      string
	Reverse     bool
}

// EMData is the projected view of an emdata:N (3-phase cumulative energy)
// component.
type EMData struct {
	PhaseAActEnergy  *float64
	PhaseAActRetEnergy *float64
	PhaseBActEnergy  *float64
	PhaseBActRetEnergy *float64
	PhaseCActEnergy  *float64
	PhaseCActRetEnergy *float64
	TotalActEnergy   *float64
	TotalActRetEnergy *float64
}

// EM1Data is the projected view of an em1data:N (1-phase cumulative energy)
// component.
type EM1Data struct {
	ActEnergy    *float64
	ActRetEnergy *float64
}

// Generic is the fallback projection for any component type with no
// dedicated variant: a raw passthrough of status and config.
type Generic struct {
	Status map[string]any
	Config map[string]any
}

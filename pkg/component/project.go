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

// Project turns a component's raw status+config payload into the typed
// variant for componentType, or a Generic passthrough for any type with no
// dedicated projector. status and/or config may be nil.
func Project(componentType string, status, config map[string]any) any {
	switch normalizeType(componentType) {
	case "switch":
		return projectSwitch(status, config)
	case "input":
		return projectInput(status, config)
	case "cover":
		return projectCover(status, config)
	case "sys":
		return projectSystem(status, config)
	case "cloud":
		return projectCloud(status, config)
	case "wifi":
		return projectWifi(status, config)
	case "ws":
		return projectWebsocket(status)
	case "eth":
		return projectEthernet(status, config)
	case "bthome":
		return projectBTHome(status, config)
	case "ble":
		return projectBLE(config)
	case "knx":
		return projectKNX(config)
	case "mqtt":
		return projectMQTT(status, config)
	case "zigbee":
		return projectZigbee(status, config)
	case "em":
		return projectEM(status, config)
	case "em1":
		return projectEM1(status, config)
	case "emdata":
		return projectEMData(status)
	case "em1data":
		return projectEM1Data(status)
	default:
		return Generic{Status: status, Config: config}
	}
}

func normalizeType(t string) string {
	for i := range t {
		if t[i] == ':' {
			return t[:i]
		}
	}

	return t
}

func projectSwitch(status, config map[string]any) Switch {
	return Switch{
		Output:       getBool(status, "output"),
		ActivePower:  getFloatPtr(status, "apower"),
		Voltage:      getFloatPtr(status, "voltage"),
		Current:      getFloatPtr(status, "current"),
		Frequency:    getFloatPtr(status, "freq"),
		PowerFactor:  getFloatPtr(status, "pf"),
		TemperatureC: getFloatPtr(getMap(status, "temperature"), "tC"),
		TemperatureF: getFloatPtr(getMap(status, "temperature"), "tF"),
		EnergyKWh:    getFloatPtr(getMap(status, "aenergy"), "total"),
		Source:       getString(status, "source"),
		Name:         getString(config, "name"),
		AutoOn:       getBool(config, "auto_on"),
		AutoOff:      getBool(config, "auto_off"),
		PowerLimit:   getFloatPtr(config, "power_limit"),
		CurrentLimit: getFloatPtr(config, "current_limit"),
	}
}

func projectInput(status, config map[string]any) Input {
	return Input{
		State:     getBool(status, "state"),
		InputType: getString(config, "type"),
		Name:      getString(config, "name"),
		Enabled:   getBool(config, "enable"),
		Inverted:  getBool(config, "invert"),
	}
}

func projectCover(status, config map[string]any) Cover {
	state := CoverState(getString(status, "state"))
	if state == "" {
		state = CoverUnknown
	}

	return Cover{
		State:         state,
		Position:      getIntPtr(status, "current_pos"),
		Power:         getFloatPtr(status, "apower"),
		Voltage:       getFloatPtr(status, "voltage"),
		Current:       getFloatPtr(status, "current"),
		Temperature:   getFloatPtr(getMap(status, "temperature"), "tC"),
		Energy:        getFloatPtr(getMap(status, "aenergy"), "total"),
		LastDirection: getString(status, "last_direction"),
		Source:        getString(status, "source"),
		Name:          getString(config, "name"),
		MaxOpenTime:   getFloatPtr(config, "maxtime_open"),
		MaxCloseTime:  getFloatPtr(config, "maxtime_close"),
		PowerLimit:    getFloatPtr(config, "power_limit"),
	}
}

func projectSystem(status, config map[string]any) System {
	updates := map[string]FirmwareVersion{}

	if raw := getMap(getMap(status, "available_updates"), "stable"); raw != nil {
		updates["stable"] = FirmwareVersion{
			Version: getString(raw, "version"),
			BuildID: getString(raw, "build_id"),
		}
	}

	if raw := getMap(getMap(status, "available_updates"), "beta"); raw != nil {
		updates["beta"] = FirmwareVersion{
			Version: getString(raw, "version"),
			BuildID: getString(raw, "build_id"),
		}
	}

	device := getMap(config, "device")

	return System{
		DeviceName:       getString(device, "name"),
		HardwareAddress:  getString(status, "mac"),
		FirmwareID:       getString(status, "fw_id"),
		Uptime:           getInt(status, "uptime"),
		RestartRequired:  getBool(status, "restart_required"),
		RAMTotal:         getInt(status, "ram_size"),
		RAMFree:          getInt(status, "ram_free"),
		FSTotal:          getInt(status, "fs_size"),
		FSFree:           getInt(status, "fs_free"),
		AvailableUpdates: updates,
		UnixTime:         int64(getFloat(status, "unixtime")),
		Timezone:         getString(getMap(config, "location"), "tz"),
	}
}

func projectCloud(status, config map[string]any) Cloud {
	return Cloud{
		Connected: getBool(status, "connected"),
		Enabled:   getBool(config, "enable"),
		Server:    getString(config, "server"),
	}
}

func projectWifi(status, _ map[string]any) Wifi {
	return Wifi{
		StationIPv4: getString(status, "sta_ip"),
		StationIPv6: getStringSlice(status, "sta_ip6"),
		Status:      getString(status, "status"),
		SSID:        getString(status, "ssid"),
		BSSID:       getString(status, "bssid"),
		RSSI:        getIntPtr(status, "rssi"),
	}
}

func projectWebsocket(status map[string]any) Websocket {
	return Websocket{Connected: getBool(status, "connected")}
}

func projectEthernet(status, config map[string]any) Ethernet {
	return Ethernet{
		Address:    getString(status, "ip"),
		IPv6:       getStringSlice(status, "ip6"),
		Enabled:    getBool(config, "enable"),
		ServerMode: getBool(config, "server_mode"),
		IPv4Mode:   getString(config, "ipv4mode"),
		Netmask:    getString(config, "netmask"),
		Gateway:    getString(config, "gw"),
		Nameserver: getString(config, "nameserver"),
	}
}

func projectBTHome(status, config map[string]any) BTHome {
	return BTHome{
		Errors:  getStringSlice(status, "errors"),
		Enabled: getBool(config, "enable"),
	}
}

func projectBLE(config map[string]any) BLE {
	return BLE{
		Enabled:    getBool(config, "enable"),
		RPCEnabled: getBool(getMap(config, "rpc"), "enable"),
	}
}

func projectKNX(config map[string]any) KNX {
	return KNX{
		Enabled:        getBool(config, "enable"),
		IndividualAddr: getString(config, "ia"),
		RoutingAddr:    getString(config, "routing_addr"),
	}
}

func projectMQTT(status, config map[string]any) MQTT {
	return MQTT{
		Connected:           getBool(status, "connected"),
		Enabled:             getBool(config, "enable"),
		Server:              getString(config, "server"),
		ClientID:            getString(config, "client_id"),
		User:                getString(config, "user"),
		TopicPrefix:         getString(config, "topic_prefix"),
		EnableRPC:           getBool(config, "enable_rpc"),
		RPCNotifications:    getBool(config, "rpc_ntfy"),
		StatusNotifications: getBool(config, "status_ntfy"),
		UseClientCert:       getBool(config, "ssl_ca"),
		EnableControl:       getBool(config, "enable_control"),
	}
}

func projectZigbee(status, config map[string]any) Zigbee {
	return Zigbee{
		NetworkState: getString(status, "network_state"),
		Enabled:      getBool(config, "enable"),
	}
}

func projectEMPhase(m map[string]any, prefix string) EMPhase {
	return EMPhase{
		Current:       getFloatPtr(m, prefix+"_current"),
		Voltage:       getFloatPtr(m, prefix+"_voltage"),
		ActivePower:   getFloatPtr(m, prefix+"_act_power"),
		ApparentPower: getFloatPtr(m, prefix+"_aprt_power"),
		PowerFactor:   getFloatPtr(m, prefix+"_pf"),
		Frequency:     getFloatPtr(m, prefix+"_freq"),
	}
}

func projectEM(status, config map[string]any) EM {
	return EM{
		PhaseA:         projectEMPhase(status, "a"),
		PhaseB:         projectEMPhase(status, "b"),
		PhaseC:         projectEMPhase(status, "c"),
		NeutralCurrent: getFloatPtr(status, "n_current"),
		TotalCurrent:   getFloatPtr(status, "total_current"),
		TotalActPower:  getFloatPtr(status, "total_act_power"),
		TotalAprtPower: getFloatPtr(status, "total_aprt_power"),
		Name:           getString(config, "name"),
		CTType:         getString(config, "ct_type"),
	}
}

func projectEM1(status, config map[string]any) EM1 {
	return EM1{
		Current:       getFloatPtr(status, "current"),
		Voltage:       getFloatPtr(status, "voltage"),
		ActivePower:   getFloatPtr(status, "act_power"),
		ApparentPower: getFloatPtr(status, "aprt_power"),
		PowerFactor:   getFloatPtr(status, "pf"),
		Frequency:     getFloatPtr(status, "freq"),
		Name:          getString(config, "name"),
		CTType:        getString(config, "ct_type"),
		Reverse:       getBool(config, "reverse"),
	}
}

func projectEMData(status map[string]any) EMData {
	return EMData{
		PhaseAActEnergy:    getFloatPtr(status, "a_total_act_energy"),
		PhaseAActRetEnergy: getFloatPtr(status, "a_total_act_ret_energy"),
		PhaseBActEnergy:    getFloatPtr(status, "b_total_act_energy"),
		PhaseBActRetEnergy: getFloatPtr(status, "b_total_act_ret_energy"),
		PhaseCActEnergy:    getFloatPtr(status, "c_total_act_energy"),
		PhaseCActRetEnergy: getFloatPtr(status, "c_total_act_ret_energy"),
		TotalActEnergy:     getFloatPtr(status, "total_act"),
		TotalActRetEnergy:  getFloatPtr(status, "total_act_ret"),
	}
}

func projectEM1Data(status map[string]any) EM1Data {
	return EM1Data{
		ActEnergy:    getFloatPtr(status, "total_act_energy"),
		ActRetEnergy: getFloatPtr(status, "total_act_ret_energy"),
	}
}

// TotalPower sums the active power of every switch component and the
// aggregate active power of every em/em1 component on the snapshot, treating
// missing readings as zero (spec §4.4).
func TotalPower(components []any) float64 {
	var total float64

	for _, c := range components {
		switch v := c.(type) {
		case Switch:
			if v.ActivePower != nil {
				total += *v.ActivePower
			}
		case EM:
			if v.TotalActPower != nil {
				total += *v.TotalActPower
			}
		case EM1:
			if v.ActivePower != nil {
				total += *v.ActivePower
			}
		}
	}

	return total
}

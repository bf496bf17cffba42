//go:build !ios && !android && (amd64 || arm64)

package adlgo

import (
	"fmt"
	"sort"
	"unsafe"

	"github.com/obinnaokechukwu/adlgo/driver"
)

// SensorType indexes ADLPMLogDataOutput.sensors.
type SensorType int

const (
	SensorMaxTypes        SensorType = 0
	SensorClkGFXClk       SensorType = 1
	SensorClkMemClk       SensorType = 2
	SensorClkSOCClk       SensorType = 3
	SensorClkUVDClk1      SensorType = 4
	SensorClkUVDClk2      SensorType = 5
	SensorClkVCEClk       SensorType = 6
	SensorClkVCNClk       SensorType = 7
	SensorTempEdge        SensorType = 8
	SensorTempMem         SensorType = 9
	SensorTempVRVDDC      SensorType = 10
	SensorTempVRMVDD      SensorType = 11
	SensorTempLiquid      SensorType = 12
	SensorTempPLX         SensorType = 13
	SensorFanRPM          SensorType = 14
	SensorFanPercentage   SensorType = 15
	SensorSOCVoltage      SensorType = 16
	SensorSOCPower        SensorType = 17
	SensorSOCCurrent      SensorType = 18
	SensorInfoActivityGFX SensorType = 19
	SensorInfoActivityMem SensorType = 20
	SensorGFXVoltage      SensorType = 21
	SensorMemVoltage      SensorType = 22
	SensorASICPower       SensorType = 23
	SensorTempVRSOC       SensorType = 24
	SensorTempVRMVDD0     SensorType = 25
	SensorTempVRMVDD1     SensorType = 26
	SensorTempHotspot     SensorType = 27
	SensorTempGFX         SensorType = 28
	SensorTempSOC         SensorType = 29
	SensorGFXPower        SensorType = 30
	SensorGFXCurrent      SensorType = 31
	SensorTempCPU         SensorType = 32
	SensorCPUPower        SensorType = 33
	SensorClkCPUClk       SensorType = 34
	SensorThrottlerStatus SensorType = 35
)

var sensorNames = map[SensorType]string{
	SensorMaxTypes:        "SENSOR_MAXTYPES",
	SensorClkGFXClk:       "PMLOG_CLK_GFXCLK",
	SensorClkMemClk:       "PMLOG_CLK_MEMCLK",
	SensorClkSOCClk:       "PMLOG_CLK_SOCCLK",
	SensorClkUVDClk1:      "PMLOG_CLK_UVDCLK1",
	SensorClkUVDClk2:      "PMLOG_CLK_UVDCLK2",
	SensorClkVCEClk:       "PMLOG_CLK_VCECLK",
	SensorClkVCNClk:       "PMLOG_CLK_VCNCLK",
	SensorTempEdge:        "PMLOG_TEMPERATURE_EDGE",
	SensorTempMem:         "PMLOG_TEMPERATURE_MEM",
	SensorTempVRVDDC:      "PMLOG_TEMPERATURE_VRVDDC",
	SensorTempVRMVDD:      "PMLOG_TEMPERATURE_VRMVDD",
	SensorTempLiquid:      "PMLOG_TEMPERATURE_LIQUID",
	SensorTempPLX:         "PMLOG_TEMPERATURE_PLX",
	SensorFanRPM:          "PMLOG_FAN_RPM",
	SensorFanPercentage:   "PMLOG_FAN_PERCENTAGE",
	SensorSOCVoltage:      "PMLOG_SOC_VOLTAGE",
	SensorSOCPower:        "PMLOG_SOC_POWER",
	SensorSOCCurrent:      "PMLOG_SOC_CURRENT",
	SensorInfoActivityGFX: "PMLOG_INFO_ACTIVITY_GFX",
	SensorInfoActivityMem: "PMLOG_INFO_ACTIVITY_MEM",
	SensorGFXVoltage:      "PMLOG_GFX_VOLTAGE",
	SensorMemVoltage:      "PMLOG_MEM_VOLTAGE",
	SensorASICPower:       "PMLOG_ASIC_POWER",
	SensorTempVRSOC:       "PMLOG_TEMPERATURE_VRSOC",
	SensorTempVRMVDD0:     "PMLOG_TEMPERATURE_VRMVDD0",
	SensorTempVRMVDD1:     "PMLOG_TEMPERATURE_VRMVDD1",
	SensorTempHotspot:     "PMLOG_TEMPERATURE_HOTSPOT",
	SensorTempGFX:         "PMLOG_TEMPERATURE_GFX",
	SensorTempSOC:         "PMLOG_TEMPERATURE_SOC",
	SensorGFXPower:        "PMLOG_GFX_POWER",
	SensorGFXCurrent:      "PMLOG_GFX_CURRENT",
	SensorTempCPU:         "PMLOG_TEMPERATURE_CPU",
	SensorCPUPower:        "PMLOG_CPU_POWER",
	SensorClkCPUClk:       "PMLOG_CLK_CPUCLK",
	SensorThrottlerStatus: "PMLOG_THROTTLER_STATUS",
}

func (s SensorType) String() string {
	if name, ok := sensorNames[s]; ok {
		return name
	}
	return fmt.Sprintf("PMLOG_SENSOR(%d)", int(s))
}

// SensorSet holds the supported sensors of one PMLog query.
type SensorSet map[SensorType]int

// Get returns the value of sensor s and whether it is supported.
func (s SensorSet) Get(t SensorType) (int, bool) {
	v, ok := s[t]
	return v, ok
}

// Types returns the supported sensor types in ascending order.
func (s SensorSet) Types() []SensorType {
	out := make([]SensorType, 0, len(s))
	for t := range s {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// PMLogData returns the adapter's current power management log sensors.
// Unsupported sensors are omitted.
func (c *Context) PMLogData(index int) (SensorSet, error) {
	const op = "PMLogData"
	if err := checkIndex(op, index); err != nil {
		return nil, err
	}
	unlock, err := c.enter(op)
	if err != nil {
		return nil, err
	}
	defer unlock()
	if _, err := c.require(op, CapPMLog); err != nil {
		return nil, err
	}
	var out driver.PMLogDataOutput
	out.Size = int32(unsafe.Sizeof(out))
	if err := c.check(driver.EntryNewQueryPMLogDataGet, c.drv.NewQueryPMLogDataGet(c.handle, int32(index), &out)); err != nil {
		return nil, err
	}
	set := make(SensorSet)
	for i, s := range out.Sensors {
		if s.Supported != 0 {
			set[SensorType(i)] = int(s.Value)
		}
	}
	return set, nil
}

// FanRPMInvalid is the fan speed PMLog reports when the reading is invalid,
// typically because the fan controller has stalled.
const FanRPMInvalid = 65535

// Temps is the fan and hotspot reading of one adapter.
type Temps struct {
	FanRPM     int
	FanPercent int
	// Hotspot is the junction temperature in degrees Celsius.
	Hotspot int

	HasFanRPM     bool
	HasFanPercent bool
	HasHotspot    bool
}

// FanStalled reports whether the fan speed reading is invalid.
func (t Temps) FanStalled() bool {
	return t.HasFanRPM && t.FanRPM == FanRPMInvalid
}

// TempsFrom extracts fan and hotspot readings from a sensor set.
func TempsFrom(s SensorSet) Temps {
	var t Temps
	t.FanRPM, t.HasFanRPM = s.Get(SensorFanRPM)
	t.FanPercent, t.HasFanPercent = s.Get(SensorFanPercentage)
	t.Hotspot, t.HasHotspot = s.Get(SensorTempHotspot)
	return t
}

// Temps returns the adapter's fan speed, fan duty and hotspot temperature.
func (c *Context) Temps(index int) (Temps, error) {
	set, err := c.PMLogData(index)
	if err != nil {
		return Temps{}, err
	}
	return TempsFrom(set), nil
}

//go:build !ios && !android && (amd64 || arm64)

package driver

// Entry point names exported by the ADL library.
const (
	EntryMainControlCreate         = "ADL2_Main_Control_Create"
	EntryMainControlX2Create       = "ADL2_Main_ControlX2_Create"
	EntryMainControlX3Create       = "ADL2_Main_ControlX3_Create"
	EntryMainControlDestroy        = "ADL2_Main_Control_Destroy"
	EntryMainControlRefresh        = "ADL2_Main_Control_Refresh"
	EntryMainControlGetProcAddress = "ADL2_Main_Control_GetProcAddress"

	EntryAdapterNumberOfAdaptersGet = "ADL2_Adapter_NumberOfAdapters_Get"
	EntryAdapterAdapterInfoGet      = "ADL2_Adapter_AdapterInfo_Get"
	EntryAdapterAdapterInfoX2Get    = "ADL2_Adapter_AdapterInfoX2_Get"
	EntryAdapterAdapterInfoX3Get    = "ADL2_Adapter_AdapterInfoX3_Get"
	EntryAdapterActiveGet           = "ADL2_Adapter_Active_Get"
	EntryAdapterIDGet               = "ADL2_Adapter_ID_Get"
	EntryAdapterPrimaryGet          = "ADL2_Adapter_Primary_Get"
	EntryAdapterMemoryInfoGet       = "ADL2_Adapter_MemoryInfo_Get"
	EntryGraphicsVersionsGet        = "ADL2_Graphics_Versions_Get"
	EntryGraphicsVersionsX2Get      = "ADL2_Graphics_VersionsX2_Get"
	EntryOverdriveCaps              = "ADL2_Overdrive_Caps"
	EntryNewQueryPMLogDataGet       = "ADL2_New_QueryPMLogData_Get"

	EntryLegacyMainControlCreate          = "ADL_Main_Control_Create"
	EntryLegacyMainControlX2Create        = "ADL_Main_ControlX2_Create"
	EntryLegacyMainControlDestroy         = "ADL_Main_Control_Destroy"
	EntryLegacyMainControlRefresh         = "ADL_Main_Control_Refresh"
	EntryLegacyAdapterNumberOfAdaptersGet = "ADL_Adapter_NumberOfAdapters_Get"
	EntryLegacyAdapterAdapterInfoGet      = "ADL_Adapter_AdapterInfo_Get"
	EntryLegacyAdapterActiveGet           = "ADL_Adapter_Active_Get"
)

// EntryPoints lists every entry point bound by System.
var EntryPoints = []string{
	EntryMainControlCreate,
	EntryMainControlX2Create,
	EntryMainControlX3Create,
	EntryMainControlDestroy,
	EntryMainControlRefresh,
	EntryMainControlGetProcAddress,
	EntryAdapterNumberOfAdaptersGet,
	EntryAdapterAdapterInfoGet,
	EntryAdapterAdapterInfoX2Get,
	EntryAdapterAdapterInfoX3Get,
	EntryAdapterActiveGet,
	EntryAdapterIDGet,
	EntryAdapterPrimaryGet,
	EntryAdapterMemoryInfoGet,
	EntryGraphicsVersionsGet,
	EntryGraphicsVersionsX2Get,
	EntryOverdriveCaps,
	EntryNewQueryPMLogDataGet,
	EntryLegacyMainControlCreate,
	EntryLegacyMainControlX2Create,
	EntryLegacyMainControlDestroy,
	EntryLegacyMainControlRefresh,
	EntryLegacyAdapterNumberOfAdaptersGet,
	EntryLegacyAdapterAdapterInfoGet,
	EntryLegacyAdapterActiveGet,
}

// Opaque lists the struct names the SDK headers reference without a layout.
// Entry points taking these types are not bound.
var Opaque = []string{
	"ADL_DL_DISPLAYMODEINFO",
	"ADL_DL_DISPLAY_MODE",
	"ADLVulkanAppInfo",
	"BINFILE",
	"BOOL",
	"CUSTOMISATIONS",
	"DATATYPES",
	"LPXScreenInfo",
	"PRIVACYTYPES",
}

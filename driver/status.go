//go:build !ios && !android && (amd64 || arm64)

package driver

import "fmt"

// Status is an ADL return code. Zero and positive values are success
// variants; negative values are errors.
type Status int32

const (
	StatusOkWait       Status = 4
	StatusOkRestart    Status = 3
	StatusOkModeChange Status = 2
	StatusOkWarning    Status = 1
	StatusOk           Status = 0

	StatusErr                         Status = -1
	StatusErrNotInit                  Status = -2
	StatusErrInvalidParam             Status = -3
	StatusErrInvalidParamSize         Status = -4
	StatusErrInvalidADLIdx            Status = -5
	StatusErrInvalidControllerIdx     Status = -6
	StatusErrInvalidDisplayIdx        Status = -7
	StatusErrNotSupported             Status = -8
	StatusErrNullPointer              Status = -9
	StatusErrDisabledAdapter          Status = -10
	StatusErrInvalidCallback          Status = -11
	StatusErrResourceConflict         Status = -12
	StatusErrSetIncomplete            Status = -20
	StatusErrNoXDisplay               Status = -21
	StatusErrCallToIncompatibleDriver Status = -22
)

// StatusNoCallbackSlots is never returned by ADL. System reports it from a
// create call when every allocation callback slot is bound to a live session.
const StatusNoCallbackSlots Status = -1000

var statusNames = map[Status]string{
	StatusOkWait:                      "ADL_OK_WAIT",
	StatusOkRestart:                   "ADL_OK_RESTART",
	StatusOkModeChange:                "ADL_OK_MODE_CHANGE",
	StatusOkWarning:                   "ADL_OK_WARNING",
	StatusOk:                          "ADL_OK",
	StatusErr:                         "ADL_ERR",
	StatusErrNotInit:                  "ADL_ERR_NOT_INIT",
	StatusErrInvalidParam:             "ADL_ERR_INVALID_PARAM",
	StatusErrInvalidParamSize:         "ADL_ERR_INVALID_PARAM_SIZE",
	StatusErrInvalidADLIdx:            "ADL_ERR_INVALID_ADL_IDX",
	StatusErrInvalidControllerIdx:     "ADL_ERR_INVALID_CONTROLLER_IDX",
	StatusErrInvalidDisplayIdx:        "ADL_ERR_INVALID_DIPLAY_IDX",
	StatusErrNotSupported:             "ADL_ERR_NOT_SUPPORTED",
	StatusErrNullPointer:              "ADL_ERR_NULL_POINTER",
	StatusErrDisabledAdapter:          "ADL_ERR_DISABLED_ADAPTER",
	StatusErrInvalidCallback:          "ADL_ERR_INVALID_CALLBACK",
	StatusErrResourceConflict:         "ADL_ERR_RESOURCE_CONFLICT",
	StatusErrSetIncomplete:            "ADL_ERR_SET_INCOMPLETE",
	StatusErrNoXDisplay:               "ADL_ERR_NO_XDISPLAY",
	StatusErrCallToIncompatibleDriver: "ADL_ERR_CALL_TO_INCOMPATIABLE_DRIVER",
}

// String returns the SDK name of the code.
func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	if s == StatusNoCallbackSlots {
		return "NO_CALLBACK_SLOTS"
	}
	return fmt.Sprintf("ADL_STATUS(%d)", int32(s))
}

// Succeeded reports whether s is ADL_OK or one of the positive variants.
func (s Status) Succeeded() bool { return s >= 0 }

// Known reports whether s is one of the codes defined by the SDK.
func (s Status) Known() bool {
	_, ok := statusNames[s]
	return ok
}

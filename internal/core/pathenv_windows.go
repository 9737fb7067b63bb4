//go:build windows

package core

import (
	"fmt"
	"strings"
	"unsafe"

	"golang.org/x/sys/windows"
	"golang.org/x/sys/windows/registry"

	"cliup/internal/core/locate"
	"cliup/internal/core/platform"
)

func newPlatformReconciler(info platform.Info) PathReconciler {
	return &registryReconciler{info: info}
}

const systemEnvKeyPath = `SYSTEM\CurrentControlSet\Control\Session Manager\Environment`

// registryReconciler persists PATH additions in the HKCU or HKLM
// environment keys and broadcasts the change so new shells pick it up
// without a relog.
type registryReconciler struct {
	info platform.Info
}

func (r *registryReconciler) Reconcile(scope Scope, dirs []string) ([]string, error) {
	dirs = locate.DedupeDirs(r.info.OS, dirs)
	if scope == ScopeSystem {
		dirs = FilterSystemDirs(r.info, dirs)
	}
	if len(dirs) == 0 {
		return nil, nil
	}

	root, keyPath := registry.CURRENT_USER, `Environment`
	if scope == ScopeSystem {
		root, keyPath = registry.LOCAL_MACHINE, systemEnvKeyPath
	}
	key, err := registry.OpenKey(root, keyPath, registry.QUERY_VALUE|registry.SET_VALUE)
	if err != nil {
		return nil, fmt.Errorf("opening %s PATH key: %w", scope, err)
	}
	defer key.Close()

	value, valType, err := key.GetStringValue("Path")
	if err == registry.ErrNotExist {
		value, valType = "", registry.EXPAND_SZ
	} else if err != nil {
		return nil, fmt.Errorf("reading %s PATH value: %w", scope, err)
	}

	var parts []string
	current := make(map[string]bool)
	for _, part := range strings.Split(value, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		parts = append(parts, part)
		current[locate.NormalizePath(r.info.OS, part)] = true
	}

	var added []string
	for _, dir := range dirs {
		if current[locate.NormalizePath(r.info.OS, dir)] {
			continue
		}
		parts = append(parts, dir)
		added = append(added, dir)
	}
	if len(added) == 0 {
		return nil, nil
	}

	newValue := strings.Join(parts, ";")
	if valType == registry.SZ {
		err = key.SetStringValue("Path", newValue)
	} else {
		err = key.SetExpandStringValue("Path", newValue)
	}
	if err != nil {
		return nil, fmt.Errorf("writing %s PATH value: %w", scope, err)
	}

	broadcastEnvironmentChange()
	return added, nil
}

const (
	hwndBroadcast   = 0xFFFF
	wmSettingChange = 0x001A
	smtoAbortIfHung = 0x0002
)

// broadcastEnvironmentChange tells running applications the environment
// block changed. Failures are ignored; the registry write already stuck.
func broadcastEnvironmentChange() {
	env, err := windows.UTF16PtrFromString("Environment")
	if err != nil {
		return
	}
	user32 := windows.NewLazySystemDLL("user32.dll")
	sendMessageTimeout := user32.NewProc("SendMessageTimeoutW")
	var result uintptr
	sendMessageTimeout.Call(
		uintptr(hwndBroadcast),
		uintptr(wmSettingChange),
		0,
		uintptr(unsafe.Pointer(env)),
		uintptr(smtoAbortIfHung),
		5000,
		uintptr(unsafe.Pointer(&result)),
	)
}

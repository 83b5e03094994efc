//go:build !darwin

package permissions

// Check 非 macOS 系统不需要额外授权
func Check() *Status {
	return newStatus(true, true)
}

// OpenSettings 非 macOS 无操作
func OpenSettings(*Status) {}

// Package process 查找并激活目标窗口所属的进程（例如浏览器）
package process

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/go-vgo/robotgo"
	"github.com/shirou/gopsutil/v4/process"
)

// ErrNotFound 没有匹配的进程
var ErrNotFound = errors.New("未找到进程")

// ProcessInfo 进程信息
type ProcessInfo struct {
	PID  int    `json:"pid"`
	Name string `json:"name"`
	Path string `json:"path"`
}

// matchName 不区分大小写的部分匹配，忽略 .exe 后缀
func matchName(procName, query string) bool {
	q := strings.TrimSuffix(strings.ToLower(strings.TrimSpace(query)), ".exe")
	if q == "" {
		return false
	}
	return strings.Contains(strings.ToLower(procName), q)
}

// FindProcess 按名称查找进程 (不区分大小写，支持部分匹配)，按 PID 排序
func FindProcess(name string) ([]ProcessInfo, error) {
	pids, err := process.Pids()
	if err != nil {
		return nil, fmt.Errorf("获取进程列表失败: %w", err)
	}

	var matches []ProcessInfo
	for _, pid := range pids {
		proc, err := process.NewProcess(pid)
		if err != nil {
			continue
		}

		procName, err := proc.Name()
		if err != nil || !matchName(procName, name) {
			continue
		}

		exe, _ := proc.Exe()
		matches = append(matches, ProcessInfo{
			PID:  int(pid),
			Name: procName,
			Path: exe,
		})
	}

	sort.Slice(matches, func(i, j int) bool { return matches[i].PID < matches[j].PID })
	return matches, nil
}

// activate 激活窗口，测试时替换
var activate = func(pid int) error {
	return robotgo.ActivePid(pid)
}

// Focus 激活名称匹配的进程窗口，依次尝试直到成功
func Focus(name string) (*ProcessInfo, error) {
	procs, err := FindProcess(name)
	if err != nil {
		return nil, err
	}
	if len(procs) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}

	var lastErr error
	for i := range procs {
		if err := activate(procs[i].PID); err != nil {
			lastErr = err
			continue
		}
		return &procs[i], nil
	}
	return nil, fmt.Errorf("激活窗口失败: %s: %w", name, lastErr)
}

// FocusFunc 返回激活指定进程的函数，name 为空时返回 nil
func FocusFunc(name string) func() error {
	if strings.TrimSpace(name) == "" {
		return nil
	}
	return func() error {
		_, err := Focus(name)
		return err
	}
}

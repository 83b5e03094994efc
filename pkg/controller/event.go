package controller

import (
	"github.com/zoeyai/autopainter/pkg/paint"
	"github.com/zoeyai/autopainter/pkg/picker"
)

// EventKind 事件类型
type EventKind int

const (
	// EventStatus 状态文本变化
	EventStatus EventKind = iota
	// EventWarning 警告通知
	EventWarning
	// EventError 错误通知
	EventError
	// EventSample 取色周期的取样
	EventSample
	// EventConfirm 确认取色
	EventConfirm
	// EventRunFinished 涂色循环已退出，控制器已恢复空闲
	EventRunFinished
	// EventPickerFinished 取色循环已退出
	EventPickerFinished
)

func (k EventKind) String() string {
	switch k {
	case EventStatus:
		return "status"
	case EventWarning:
		return "warning"
	case EventError:
		return "error"
	case EventSample:
		return "sample"
	case EventConfirm:
		return "confirm"
	case EventRunFinished:
		return "run-finished"
	case EventPickerFinished:
		return "picker-finished"
	default:
		return "unknown"
	}
}

// Event 后台循环发给控制端的事件
type Event struct {
	Kind    EventKind
	Message string
	Sample  picker.Sample
	Result  paint.RunResult

	PickResult picker.Result
}

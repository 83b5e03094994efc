// Package palette 维护颜色名称到参考图路径的映射
package palette

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ErrUnknownColor 调色板中没有该颜色
var ErrUnknownColor = errors.New("未知颜色")

// DefaultColor 默认选中的颜色
const DefaultColor = "black"

// DefaultNames 内置的颜色名称，colors.json 不存在时使用
var DefaultNames = []string{
	"black", "darkgray", "gray", "mediumgray", "lightgray", "white",
	"deepred", "darkred", "red", "lightred", "darkorange", "orange",
	"gold", "yellow", "lightyellow", "darkgoldenrod", "goldenrod",
	"lightgoldenrod", "darkolive", "olive", "lightolive", "darkgreen",
	"green", "lightgreen", "darkteal", "teal", "lightteal", "darkcyan",
	"cyan", "lightcyan", "darkblue", "blue", "lightblue", "darkindigo",
	"indigo", "lightindigo", "darkslateblue", "slateblue", "lightslateblue",
	"darkpurple", "purple", "lightpurple", "darkpink", "pink", "lightpink",
	"darkpeach", "peach", "lightpeach", "darkbrown", "brown", "lightbrown",
	"darktan", "tan", "lighttan", "darkbeige", "beige", "lightbeige",
	"darkstone", "stone", "lightstone", "darkslate", "slate", "lightslate",
}

// Palette 有序的颜色列表，每个颜色对应 <dir>/<name>.png
type Palette struct {
	dir   string
	names []string
	index map[string]string
}

// New 由名称列表创建调色板，重复和空名称被忽略
func New(dir string, names []string) *Palette {
	p := &Palette{dir: dir, index: make(map[string]string, len(names))}
	for _, n := range names {
		p.add(n)
	}
	return p
}

// Default 使用内置名称创建调色板
func Default(dir string) *Palette {
	return New(dir, DefaultNames)
}

// Load 读取 colors.json（字符串数组），文件不存在时返回内置调色板
func Load(file, dir string) (*Palette, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(dir), nil
		}
		return nil, fmt.Errorf("读取颜色列表失败: %w", err)
	}

	var names []string
	if err := json.Unmarshal(data, &names); err != nil {
		return nil, fmt.Errorf("解析颜色列表失败: %w", err)
	}
	return New(dir, names), nil
}

// Save 写入 colors.json
func (p *Palette) Save(file string) error {
	data, err := json.MarshalIndent(p.names, "", "  ")
	if err != nil {
		return fmt.Errorf("序列化颜色列表失败: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(file), 0755); err != nil {
		return fmt.Errorf("创建目录失败: %w", err)
	}
	if err := os.WriteFile(file, data, 0644); err != nil {
		return fmt.Errorf("写入颜色列表失败: %w", err)
	}
	return nil
}

func (p *Palette) add(name string) bool {
	name = strings.TrimSpace(name)
	key := strings.ToLower(name)
	if key == "" {
		return false
	}
	if _, ok := p.index[key]; ok {
		return false
	}
	p.index[key] = name
	p.names = append(p.names, name)
	return true
}

// Add 追加颜色，已存在时返回 false
func (p *Palette) Add(name string) bool {
	return p.add(name)
}

// Dir 参考图目录
func (p *Palette) Dir() string {
	return p.dir
}

// Names 按定义顺序返回颜色名称
func (p *Palette) Names() []string {
	return append([]string(nil), p.names...)
}

// Len 颜色数量
func (p *Palette) Len() int {
	return len(p.names)
}

// Resolve 返回规范的颜色名称，不区分大小写
func (p *Palette) Resolve(name string) (string, error) {
	canon, ok := p.index[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownColor, name)
	}
	return canon, nil
}

// Path 颜色对应的参考图路径
func (p *Palette) Path(name string) (string, error) {
	canon, err := p.Resolve(name)
	if err != nil {
		return "", err
	}
	return p.PathFor(canon), nil
}

// PathFor 不检查名称，直接拼接路径
func (p *Palette) PathFor(name string) string {
	return filepath.Join(p.dir, name+".png")
}

// Default 默认颜色：存在 black 时为 black，否则为第一个，空调色板返回 ""
func (p *Palette) Default() string {
	if canon, ok := p.index[DefaultColor]; ok {
		return canon
	}
	if len(p.names) > 0 {
		return p.names[0]
	}
	return ""
}

// Missing 返回参考图文件不存在的颜色，按名称排序
func (p *Palette) Missing() []string {
	var out []string
	for _, n := range p.names {
		if _, err := os.Stat(p.PathFor(n)); err != nil {
			out = append(out, n)
		}
	}
	sort.Strings(out)
	return out
}

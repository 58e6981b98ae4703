package session

import "fmt"

// Mode 当前编辑工具，同一时间只有一个
type Mode string

const (
	ModeIdle       Mode = "idle"
	ModeErase      Mode = "erase"
	ModeBackground Mode = "background"
	ModeEnhance    Mode = "enhance"
	ModeLogo       Mode = "logo"
)

var modes = []Mode{ModeIdle, ModeErase, ModeBackground, ModeEnhance, ModeLogo}

// ParseMode 解析模式名
func ParseMode(s string) (Mode, error) {
	for _, m := range modes {
		if string(m) == s {
			return m, nil
		}
	}
	return "", fmt.Errorf("unknown mode %q", s)
}

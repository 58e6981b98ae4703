package editsvc

import "fmt"

// RemovalPrompt 移除物体时的固定指令，约定红色半透明区域为待移除的部分
const RemovalPrompt = "The image contains areas highlighted with a semi-transparent red overlay. " +
	"Remove the objects under the red highlighted areas and fill them in naturally so they blend " +
	"seamlessly with the surrounding background. Remove the red overlay itself completely. " +
	"Do not change anything outside the highlighted areas."

// EnhancePrompt 增强画质的固定指令
const EnhancePrompt = "Enhance this image: increase resolution and sharpness, reduce noise and " +
	"compression artifacts, and improve lighting and color balance while keeping the content, " +
	"composition and subject identity exactly the same."

// BackgroundPrompt 替换背景的指令
func BackgroundPrompt(description string) string {
	return fmt.Sprintf("Replace the background of this image with %s. Keep the main subject exactly "+
		"as it is, with accurate edges, and match the lighting of the subject to the new background.", description)
}

// PresetKind 预设类型
type PresetKind string

const (
	PresetColor PresetKind = "color"
	PresetScene PresetKind = "scene"
)

// Preset 背景预设
type Preset struct {
	ID          string     `json:"id"`
	Kind        PresetKind `json:"kind"`
	Name        string     `json:"name"`
	Value       string     `json:"value,omitempty"` // 颜色的十六进制值
	Description string     `json:"description"`
}

var colors = []Preset{
	{ID: "white", Kind: PresetColor, Name: "White", Value: "#FFFFFF", Description: "a clean solid white (#FFFFFF) studio background"},
	{ID: "black", Kind: PresetColor, Name: "Black", Value: "#000000", Description: "a solid black (#000000) background"},
	{ID: "gray", Kind: PresetColor, Name: "Gray", Value: "#9CA3AF", Description: "a neutral solid gray (#9CA3AF) background"},
	{ID: "blue", Kind: PresetColor, Name: "Blue", Value: "#3B82F6", Description: "a solid blue (#3B82F6) background"},
	{ID: "green", Kind: PresetColor, Name: "Green", Value: "#22C55E", Description: "a solid green (#22C55E) background"},
	{ID: "pink", Kind: PresetColor, Name: "Pink", Value: "#F9A8D4", Description: "a soft solid pink (#F9A8D4) background"},
}

var scenes = []Preset{
	{ID: "beach", Kind: PresetScene, Name: "Beach", Description: "a sunny tropical beach with turquoise water"},
	{ID: "office", Kind: PresetScene, Name: "Office", Description: "a bright modern office interior, softly blurred"},
	{ID: "city", Kind: PresetScene, Name: "City", Description: "a city street at golden hour with soft bokeh"},
	{ID: "forest", Kind: PresetScene, Name: "Forest", Description: "a lush green forest with dappled sunlight"},
	{ID: "studio", Kind: PresetScene, Name: "Studio", Description: "a professional photo studio with a soft gradient backdrop"},
	{ID: "mountains", Kind: PresetScene, Name: "Mountains", Description: "snowy mountains under a clear blue sky"},
}

// Colors 颜色预设
func Colors() []Preset {
	return append([]Preset(nil), colors...)
}

// Scenes 场景预设
func Scenes() []Preset {
	return append([]Preset(nil), scenes...)
}

// LookupPreset 按 id 查找预设
func LookupPreset(id string) (Preset, bool) {
	for _, list := range [][]Preset{colors, scenes} {
		for _, p := range list {
			if p.ID == id {
				return p, true
			}
		}
	}
	return Preset{}, false
}

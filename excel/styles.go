package excel

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// textNumFmt is the built-in "@" number format: values stay text.
const textNumFmt = 49

// StyleManager caches Excel styles so each style is created only once per file.
type StyleManager struct {
	file  *excelize.File
	cache map[string]int
}

// NewStyleManager creates a style manager bound to the given file.
func NewStyleManager(f *excelize.File) *StyleManager {
	return &StyleManager{file: f, cache: make(map[string]int)}
}

// Text returns a centered, bordered style with the text number format.
func (sm *StyleManager) Text() (int, error) {
	return sm.getOrCreate("text", &excelize.Style{
		Alignment: centered(),
		Border:    defaultBorder(),
		NumFmt:    textNumFmt,
	})
}

// Header returns a bold, centered, bordered header style on a solid background.
func (sm *StyleManager) Header(color string) (int, error) {
	return sm.getOrCreate("header:"+color, &excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Alignment: centered(),
		Border:    defaultBorder(),
		Fill:      solidFill(color),
	})
}

// Filled returns base with its fill replaced by a solid color. Font, border,
// alignment and number format of base are kept.
func (sm *StyleManager) Filled(base int, color string) (int, error) {
	key := fmt.Sprintf("fill:%d:%s", base, color)
	if id, ok := sm.cache[key]; ok {
		return id, nil
	}

	style := &excelize.Style{}
	if base != 0 {
		existing, err := sm.file.GetStyle(base)
		if err != nil {
			return 0, fmt.Errorf("get style %d: %w", base, err)
		}
		copied := *existing
		style = &copied
	}
	style.Fill = solidFill(color)

	return sm.getOrCreate(key, style)
}

func (sm *StyleManager) getOrCreate(key string, style *excelize.Style) (int, error) {
	if id, ok := sm.cache[key]; ok {
		return id, nil
	}

	id, err := sm.file.NewStyle(style)
	if err != nil {
		return 0, err
	}

	sm.cache[key] = id
	return id, nil
}

func centered() *excelize.Alignment {
	return &excelize.Alignment{Horizontal: "center", Vertical: "center"}
}

func solidFill(color string) excelize.Fill {
	return excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{color}}
}

func defaultBorder() []excelize.Border {
	return []excelize.Border{
		{Type: "left", Color: "000000", Style: 1},
		{Type: "right", Color: "000000", Style: 1},
		{Type: "top", Color: "000000", Style: 1},
		{Type: "bottom", Color: "000000", Style: 1},
	}
}

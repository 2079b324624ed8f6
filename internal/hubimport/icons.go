package hubimport

import (
	_ "embed"
	"fmt"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed icons.yaml
var iconsYAML []byte

var iconGlyphs = mustLoadIcons(iconsYAML)

func mustLoadIcons(data []byte) map[string]string {
	icons, err := loadIcons(data)
	if err != nil {
		panic(err)
	}
	return icons
}

func loadIcons(data []byte) (map[string]string, error) {
	icons := map[string]string{}
	if err := yaml.Unmarshal(data, &icons); err != nil {
		return nil, fmt.Errorf("parse icon map: %w", err)
	}
	return icons, nil
}

// iconName extracts the Font Awesome name from a class attribute such as
// "icon icon16 fa-fw fa-check". Size, width and animation modifiers are
// skipped. The bool is false when the element is not an icon.
func iconName(class string) (string, bool) {
	isIcon := false
	name := ""
	for _, f := range strings.Fields(class) {
		switch {
		case iconClasses[f]:
			isIcon = true
		case strings.HasPrefix(f, "fa-") && name == "":
			if n := strings.TrimPrefix(f, "fa-"); !isIconModifier(n) {
				name = n
			}
		}
	}
	if !isIcon || name == "" {
		return "", false
	}
	return name, true
}

var iconClasses = map[string]bool{
	"icon": true, "icon16": true, "icon24": true, "icon32": true,
	"fa": true, "fas": true, "far": true, "fab": true,
}

var iconModifiers = map[string]bool{
	"fw": true, "lg": true, "xs": true, "sm": true, "li": true, "ul": true,
	"spin": true, "pulse": true, "border": true, "inverse": true,
	"pull-left": true, "pull-right": true, "flip-horizontal": true, "flip-vertical": true,
	"rotate-90": true, "rotate-180": true, "rotate-270": true,
	"stack-1x": true, "stack-2x": true,
}

var iconSizePattern = regexp.MustCompile(`^\d+x$`)

func isIconModifier(name string) bool {
	return iconModifiers[name] || iconSizePattern.MatchString(name)
}

// iconGlyph returns the unicode replacement for an icon, empty when unknown.
func iconGlyph(name string) string {
	return iconGlyphs[name]
}

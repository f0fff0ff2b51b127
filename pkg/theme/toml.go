package theme

import (
	"bytes"
	"fmt"
	"os"
	"regexp"

	"github.com/BurntSushi/toml"
)

// tomlTheme is the on-disk layout of a custom theme.
type tomlTheme struct {
	Name   string      `toml:"name"`
	Base   tomlBase    `toml:"base"`
	Widget tomlWidget  `toml:"widget"`
	Status tomlStatus  `toml:"status"`
	Extra  tomlSpecial `toml:"special"`
}

type tomlBase struct {
	Foreground string `toml:"foreground"`
	Muted      string `toml:"muted"`
	Accent     string `toml:"accent"`
	SelectedBg string `toml:"selected_bg"`
}

type tomlWidget struct {
	Border      string `toml:"border"`
	BorderFocus string `toml:"border_focus"`
	Title       string `toml:"title"`
}

type tomlStatus struct {
	Good string `toml:"good"`
	Warn string `toml:"warn"`
	Bad  string `toml:"bad"`
}

type tomlSpecial struct {
	GaugeEmpty string `toml:"gauge_empty"`
	Chart      string `toml:"chart"`
	HelpKey    string `toml:"help_key"`
	HelpDesc   string `toml:"help_desc"`
}

var hexColor = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// LoadFromTOML parses a theme definition. Fields left empty inherit from the
// default theme, so a file may override only a few colours.
func LoadFromTOML(data []byte) (Theme, error) {
	var tt tomlTheme
	if err := toml.Unmarshal(data, &tt); err != nil {
		return Theme{}, fmt.Errorf("theme: parse TOML: %w", err)
	}
	if tt.Name == "" {
		return Theme{}, fmt.Errorf("theme: missing name")
	}

	t := Get("default")
	t.Name = tt.Name
	for _, f := range []struct {
		dst *string
		src string
		key string
	}{
		{&t.Foreground, tt.Base.Foreground, "base.foreground"},
		{&t.Muted, tt.Base.Muted, "base.muted"},
		{&t.Accent, tt.Base.Accent, "base.accent"},
		{&t.SelectedBg, tt.Base.SelectedBg, "base.selected_bg"},
		{&t.Border, tt.Widget.Border, "widget.border"},
		{&t.BorderFocus, tt.Widget.BorderFocus, "widget.border_focus"},
		{&t.Title, tt.Widget.Title, "widget.title"},
		{&t.Good, tt.Status.Good, "status.good"},
		{&t.Warn, tt.Status.Warn, "status.warn"},
		{&t.Bad, tt.Status.Bad, "status.bad"},
		{&t.GaugeEmpty, tt.Extra.GaugeEmpty, "special.gauge_empty"},
		{&t.Chart, tt.Extra.Chart, "special.chart"},
		{&t.HelpKey, tt.Extra.HelpKey, "special.help_key"},
		{&t.HelpDesc, tt.Extra.HelpDesc, "special.help_desc"},
	} {
		if f.src == "" {
			continue
		}
		if !hexColor.MatchString(f.src) {
			return Theme{}, fmt.Errorf("theme: invalid hex color %q for %s (expected #RRGGBB)", f.src, f.key)
		}
		*f.dst = f.src
	}
	return t, nil
}

// LoadFile reads and registers a custom theme.
func LoadFile(path string) (Theme, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Theme{}, fmt.Errorf("theme: %w", err)
	}
	t, err := LoadFromTOML(data)
	if err != nil {
		return Theme{}, err
	}
	Register(t)
	return t, nil
}

// SaveToTOML serializes a theme.
func SaveToTOML(t Theme) ([]byte, error) {
	tt := tomlTheme{
		Name:   t.Name,
		Base:   tomlBase{Foreground: t.Foreground, Muted: t.Muted, Accent: t.Accent, SelectedBg: t.SelectedBg},
		Widget: tomlWidget{Border: t.Border, BorderFocus: t.BorderFocus, Title: t.Title},
		Status: tomlStatus{Good: t.Good, Warn: t.Warn, Bad: t.Bad},
		Extra:  tomlSpecial{GaugeEmpty: t.GaugeEmpty, Chart: t.Chart, HelpKey: t.HelpKey, HelpDesc: t.HelpDesc},
	}
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(tt); err != nil {
		return nil, fmt.Errorf("theme: encode TOML: %w", err)
	}
	return buf.Bytes(), nil
}

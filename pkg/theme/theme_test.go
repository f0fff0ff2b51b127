package theme

import (
	"regexp"
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/google/go-cmp/cmp"

	"gitlab.com/tinyland/lab/chain-pulse/pkg/components"
)

var testHexPattern = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

func TestGetUnknownFallsBackToDefault(t *testing.T) {
	if got := Get("no-such-theme"); got.Name != "default" {
		t.Errorf("Get(unknown).Name = %q, want default", got.Name)
	}
	if _, ok := Lookup("no-such-theme"); ok {
		t.Error("Lookup(unknown) reported ok")
	}
}

func TestGetIsCaseInsensitive(t *testing.T) {
	if got := Get("NORD"); got.Name != "nord" {
		t.Errorf("Get(NORD).Name = %q", got.Name)
	}
}

func TestBuiltinsAreValidHex(t *testing.T) {
	for _, th := range builtins() {
		for field, v := range map[string]string{
			"foreground": th.Foreground, "muted": th.Muted, "accent": th.Accent,
			"selected_bg": th.SelectedBg, "border": th.Border, "border_focus": th.BorderFocus,
			"title": th.Title, "good": th.Good, "warn": th.Warn, "bad": th.Bad,
			"gauge_empty": th.GaugeEmpty, "chart": th.Chart,
			"help_key": th.HelpKey, "help_desc": th.HelpDesc,
		} {
			if !testHexPattern.MatchString(v) {
				t.Errorf("%s.%s = %q is not #RRGGBB", th.Name, field, v)
			}
		}
	}
}

func TestNamesSorted(t *testing.T) {
	names := Names()
	for i := 1; i < len(names); i++ {
		if names[i-1] > names[i] {
			t.Fatalf("Names() not sorted: %v", names)
		}
	}
	if len(names) < 4 {
		t.Errorf("Names() = %v, want at least the four builtins", names)
	}
}

func TestLoadFromTOMLPartialOverride(t *testing.T) {
	data := []byte(`
name = "ops"

[status]
bad = "#ff0000"
`)
	got, err := LoadFromTOML(data)
	if err != nil {
		t.Fatalf("LoadFromTOML: %v", err)
	}
	want := Get("default")
	want.Name = "ops"
	want.Bad = "#ff0000"
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("theme (-want +got):\n%s", diff)
	}
}

func TestLoadFromTOMLErrors(t *testing.T) {
	tests := map[string]string{
		"syntax":    `name = `,
		"no name":   `[base]` + "\n" + `accent = "#ffffff"`,
		"bad color": `name = "x"` + "\n[base]\naccent = \"red\"",
	}
	for name, data := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := LoadFromTOML([]byte(data)); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	orig := Get("gruvbox")
	data, err := SaveToTOML(orig)
	if err != nil {
		t.Fatalf("SaveToTOML: %v", err)
	}
	if !strings.Contains(string(data), `name = "gruvbox"`) {
		t.Errorf("encoded theme lacks name:\n%s", data)
	}
	got, err := LoadFromTOML(data)
	if err != nil {
		t.Fatalf("LoadFromTOML: %v", err)
	}
	if diff := cmp.Diff(orig, got); diff != "" {
		t.Errorf("round trip (-want +got):\n%s", diff)
	}
}

func TestStylesCoverEveryCellStyle(t *testing.T) {
	st := Get("default").Styles()
	for _, cs := range []components.CellStyle{
		components.StyleNormal, components.StyleMuted, components.StyleGood,
		components.StyleWarn, components.StyleBad, components.StyleAccent,
	} {
		if _, ok := st.Table.Cells[cs]; !ok {
			t.Errorf("no style for cell style %d", cs)
		}
	}
}

func TestStylesUsePalette(t *testing.T) {
	th := Get("nord")
	st := th.Styles()
	tests := []struct {
		name string
		got  lipgloss.TerminalColor
		want string
	}{
		{"title", st.Title.GetForeground(), th.Title},
		{"frame border", st.Frame.GetBorderTopForeground(), th.Border},
		{"focused border", st.FrameFocus.GetBorderTopForeground(), th.BorderFocus},
		{"selected row", st.Table.RowSelected.GetBackground(), th.SelectedBg},
		{"gauge empty", st.Gauge.Empty.GetForeground(), th.GaugeEmpty},
	}
	for _, tt := range tests {
		if tt.got != lipgloss.Color(tt.want) {
			t.Errorf("%s colour = %v, want %s", tt.name, tt.got, tt.want)
		}
	}
}

package theme

func builtins() []Theme {
	return []Theme{
		{
			Name:        "default",
			Foreground:  "#d4d4d4",
			Muted:       "#6b6b6b",
			Accent:      "#7C3AED",
			SelectedBg:  "#2d2640",
			Border:      "#3e3e3e",
			BorderFocus: "#7C3AED",
			Title:       "#d4d4d4",
			Good:        "#4ec970",
			Warn:        "#e5c07b",
			Bad:         "#e06c75",
			GaugeEmpty:  "#3e3e3e",
			Chart:       "#7C3AED",
			HelpKey:     "#7C3AED",
			HelpDesc:    "#6b6b6b",
		},
		{
			Name:        "gruvbox",
			Foreground:  "#ebdbb2",
			Muted:       "#928374",
			Accent:      "#fe8019",
			SelectedBg:  "#3c3836",
			Border:      "#504945",
			BorderFocus: "#fe8019",
			Title:       "#ebdbb2",
			Good:        "#b8bb26",
			Warn:        "#fabd2f",
			Bad:         "#fb4934",
			GaugeEmpty:  "#504945",
			Chart:       "#fe8019",
			HelpKey:     "#fe8019",
			HelpDesc:    "#928374",
		},
		{
			Name:        "nord",
			Foreground:  "#d8dee9",
			Muted:       "#4c566a",
			Accent:      "#88c0d0",
			SelectedBg:  "#3b4252",
			Border:      "#434c5e",
			BorderFocus: "#88c0d0",
			Title:       "#eceff4",
			Good:        "#a3be8c",
			Warn:        "#ebcb8b",
			Bad:         "#bf616a",
			GaugeEmpty:  "#434c5e",
			Chart:       "#81a1c1",
			HelpKey:     "#88c0d0",
			HelpDesc:    "#4c566a",
		},
		{
			Name:        "mono",
			Foreground:  "#c0c0c0",
			Muted:       "#707070",
			Accent:      "#ffffff",
			SelectedBg:  "#303030",
			Border:      "#505050",
			BorderFocus: "#ffffff",
			Title:       "#ffffff",
			Good:        "#c0c0c0",
			Warn:        "#e0e0e0",
			Bad:         "#ffffff",
			GaugeEmpty:  "#303030",
			Chart:       "#c0c0c0",
			HelpKey:     "#ffffff",
			HelpDesc:    "#707070",
		},
	}
}

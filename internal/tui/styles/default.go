package styles

// NewDefaultTheme creates a clean dark theme for dokita.
func NewDefaultTheme() *Theme {
	return &Theme{
		Name:   "default",
		IsDark: true,

		// Teal/green health tones
		Primary:   ParseHex("#2dd4bf"), // Teal
		Secondary: ParseHex("#34d399"), // Green
		Tertiary:  ParseHex("#334155"), // Slate
		Accent:    ParseHex("#60a5fa"), // Blue accent

		// Dark backgrounds
		BgBase:    ParseHex("#0f172a"),
		BgSubtle:  ParseHex("#1e293b"),
		BgOverlay: ParseHex("#283548"),

		// Light foregrounds
		FgBase:   ParseHex("#cbd5e1"),
		FgMuted:  ParseHex("#7c8aa0"),
		FgSubtle: ParseHex("#5a6880"),

		// Borders
		Border:      ParseHex("#334155"),
		BorderFocus: ParseHex("#2dd4bf"),

		// Status colors
		Success: ParseHex("#34d399"),
		Error:   ParseHex("#f87171"),
		Warning: ParseHex("#fbbf24"),
		Info:    ParseHex("#60a5fa"),
	}
}

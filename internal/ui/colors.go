package ui

// ColorPrimary returns the escape code of the active theme's primary color.
func ColorPrimary() string { return GetCurrentTheme().Primary }

// ColorSecondary returns the escape code of the secondary color.
func ColorSecondary() string { return GetCurrentTheme().Secondary }

// ColorGood returns the escape code used for results within tolerance.
func ColorGood() string { return GetCurrentTheme().Good }

// ColorWarn returns the escape code used for notable deviations.
func ColorWarn() string { return GetCurrentTheme().Warn }

// ColorBad returns the escape code used for failures.
func ColorBad() string { return GetCurrentTheme().Bad }

func ColorInfo() string      { return GetCurrentTheme().Info }
func ColorBold() string      { return GetCurrentTheme().Bold }
func ColorUnderline() string { return GetCurrentTheme().Underline }
func ColorReset() string     { return GetCurrentTheme().Reset }

// Colorize wraps s in color and a reset. It returns s unchanged when the
// active theme has no colors.
func Colorize(color, s string) string {
	if color == "" {
		return s
	}
	return color + s + ColorReset()
}

package preference

import "context"

// ThemeKey is the fixed preference key of the theme choice.
const ThemeKey = "soit_theme"

// Theme is the binary colour scheme.
type Theme string

// Supported themes. Dark is the default.
const (
	ThemeDark  Theme = "dark"
	ThemeLight Theme = "light"
)

// ParseTheme maps a stored value to a Theme; anything but "light" is dark.
func ParseTheme(raw string) Theme {
	if Theme(raw) == ThemeLight {
		return ThemeLight
	}
	return ThemeDark
}

// Opposite returns the other theme.
func (t Theme) Opposite() Theme {
	if t == ThemeLight {
		return ThemeDark
	}
	return ThemeLight
}

// ToggleLabel is the button caption, naming the theme a click switches to.
func (t Theme) ToggleLabel() string {
	if t == ThemeLight {
		return "Dark mode"
	}
	return "Light mode"
}

// LoadTheme reads the stored theme. Store errors and absence yield the
// default so a broken store never blocks the page.
func LoadTheme(ctx context.Context, store Store) Theme {
	if store == nil {
		return ThemeDark
	}
	raw, ok, err := store.Get(ctx, ThemeKey)
	if err != nil || !ok {
		return ThemeDark
	}
	return ParseTheme(raw)
}

// ToggleTheme flips and persists the theme, returning the new value.
func ToggleTheme(ctx context.Context, store Store) (Theme, error) {
	next := LoadTheme(ctx, store).Opposite()
	if store == nil {
		return next, nil
	}
	return next, store.Set(ctx, ThemeKey, string(next))
}

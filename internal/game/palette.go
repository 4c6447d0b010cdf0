package game

// Colour is a player token colour, stored as an RGB hex string
type Colour string

// The fixed palette players choose from
const (
	Red    Colour = "c52828"
	Orange Colour = "e59100"
	Yellow Colour = "e2e05d"
	Green  Colour = "12751b"
	Blue   Colour = "214ddc"
	Purple Colour = "a41bf3"
	Pink   Colour = "d2638d"
	White  Colour = "d3ceca"
	Black  Colour = "3a363b"
)

// Palette returns every selectable colour in display order
func Palette() []Colour {
	return []Colour{Red, Orange, Yellow, Green, Blue, Purple, Pink, White, Black}
}

// IsColour reports whether c belongs to the palette
func IsColour(c Colour) bool {
	switch c {
	case Red, Orange, Yellow, Green, Blue, Purple, Pink, White, Black:
		return true
	}
	return false
}

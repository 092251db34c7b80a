package components

// Color is an 8-bit RGBA colour, kept independent of any rendering backend.
type Color struct {
	R, G, B, A uint8
}

// Palette used by the level builder and spawners.
var (
	ColorPlayer    = Color{R: 255, G: 69, B: 0, A: 255}    // orange red
	ColorEnemy     = Color{R: 255, G: 0, B: 255, A: 255}   // fuchsia
	ColorWall      = Color{R: 80, G: 80, B: 80, A: 255}    // dark gray
	ColorPickup    = Color{R: 0, G: 228, B: 48, A: 255}    // green
	ColorVirus     = Color{R: 253, G: 249, B: 0, A: 255}   // yellow
	ColorParticle  = Color{R: 245, G: 245, B: 245, A: 255} // white
	ColorExplosion = Color{R: 255, G: 161, B: 0, A: 255}   // orange
)

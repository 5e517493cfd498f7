package memory

import (
	"log/slog"
	"strings"
	"unicode"
)

// Cartridge header field offsets.
const (
	titleAddress          = 0x0134
	titleLength           = 16
	cartridgeTypeAddress  = 0x0147
	romSizeAddress        = 0x0148
	ramSizeAddress        = 0x0149
	versionNumberAddress  = 0x014C
	headerChecksumAddress = 0x014D
)

const headerEnd = 0x0150

// Cartridge is a ROM-only (no MBC) cartridge. It answers bus traffic for
// 0x0000-0x7FFF and 0xA000-0xBFFF: ROM reads come from the loaded image,
// writes are ignored, and the absent external RAM reads as 0xFF.
type Cartridge struct {
	rom            []byte
	title          string
	cartType       uint8
	romSize        uint8
	ramSize        uint8
	version        uint8
	headerChecksum uint8
}

// NewCartridge returns an empty cartridge, useful for tests that only need
// RAM and I/O behavior.
func NewCartridge() *Cartridge {
	return &Cartridge{
		rom:   make([]byte, 0x8000),
		title: "(none)",
	}
}

// NewCartridgeWithData builds a cartridge from a ROM image and parses its
// header for diagnostics.
func NewCartridgeWithData(data []byte) *Cartridge {
	cart := &Cartridge{
		rom:   make([]byte, len(data)),
		title: "(untitled)",
	}
	copy(cart.rom, data)

	if len(data) < headerEnd {
		slog.Warn("ROM image too small for a cartridge header", "size", len(data))
		return cart
	}

	cart.title = cleanTitle(data[titleAddress : titleAddress+titleLength])
	cart.cartType = data[cartridgeTypeAddress]
	cart.romSize = data[romSizeAddress]
	cart.ramSize = data[ramSizeAddress]
	cart.version = data[versionNumberAddress]
	cart.headerChecksum = data[headerChecksumAddress]

	if cart.cartType != 0 {
		slog.Warn("unsupported mapper, treating cartridge as ROM-only",
			"type", cart.cartType, "title", cart.title)
	}
	slog.Info("loaded cartridge",
		"title", cart.title, "rom_bytes", len(data), "version", cart.version)

	return cart
}

// Title returns the cleaned header title.
func (c *Cartridge) Title() string {
	return c.title
}

// ReadByte serves reads in the cartridge's two bus windows.
func (c *Cartridge) ReadByte(address uint16) uint8 {
	if address < 0x8000 {
		if int(address) < len(c.rom) {
			return c.rom[address]
		}
		return 0xFF
	}
	// External RAM window with no RAM fitted.
	return 0xFF
}

// WriteByte accepts and discards writes. ROM is not writable and MBC
// register writes have no meaning without a mapper.
func (c *Cartridge) WriteByte(address uint16, value uint8) {
}

// cleanTitle turns the raw header bytes into something printable: nulls
// become spaces, anything unprintable becomes '?', and the result is
// trimmed.
func cleanTitle(raw []byte) string {
	runes := make([]rune, 0, len(raw))
	for _, b := range raw {
		r := rune(b)
		switch {
		case r == 0:
			r = ' '
		case !unicode.IsPrint(r):
			r = '?'
		}
		runes = append(runes, r)
	}

	title := strings.TrimSpace(string(runes))
	if title == "" {
		return "(untitled)"
	}
	return title
}

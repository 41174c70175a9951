// Package palette implements parsing of the GIMP Palette (.gpl) text
// format (spec component C18, supplemented from the GIMP-palette reader
// the distilled spec only names by glossary reference). Header: a literal
// "GIMP Palette" first line; body lines are "r g b" decimal triples;
// lines starting with # are comments; blank lines and anything else
// non-numeric are skipped.
package palette

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	imgpkg "github.com/drgolem/tmediago/internal/image"
	"github.com/drgolem/tmediago/internal/mediaerr"
)

// HeaderToken is the literal first-line marker identifying a recognized
// palette file.
const HeaderToken = "GIMP Palette"

// IsGPLStream reports whether r's first line is exactly HeaderToken
// (after trimming surrounding whitespace).
func IsGPLStream(r io.Reader) bool {
	scanner := bufio.NewScanner(r)
	if !scanner.Scan() {
		return false
	}
	return strings.TrimSpace(scanner.Text()) == HeaderToken
}

// ReadGPL parses a GIMP Palette stream into a Palette. Returns
// mediaerr.ErrInvalidArgument if the header line doesn't match.
func ReadGPL(r io.Reader) (imgpkg.Palette, error) {
	scanner := bufio.NewScanner(r)

	if !scanner.Scan() {
		return imgpkg.Palette{}, mediaerr.ErrInvalidArgument
	}
	if strings.TrimSpace(scanner.Text()) != HeaderToken {
		return imgpkg.Palette{}, mediaerr.ErrInvalidArgument
	}

	seen := make(map[imgpkg.RGB24]bool)
	var colors []imgpkg.RGB24

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if line[0] < '0' || line[0] > '9' {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) < 3 {
			continue
		}
		r, err1 := strconv.Atoi(fields[0])
		g, err2 := strconv.Atoi(fields[1])
		b, err3 := strconv.Atoi(fields[2])
		if err1 != nil || err2 != nil || err3 != nil {
			continue
		}

		c := imgpkg.RGB24{R: uint8(r & 0xFF), G: uint8(g & 0xFF), B: uint8(b & 0xFF)}
		if !seen[c] {
			seen[c] = true
			colors = append(colors, c)
		}
	}

	return imgpkg.Palette{Colors: colors}, scanner.Err()
}

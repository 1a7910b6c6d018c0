// Package pgn parses Portable Game Notation into structured games.
//
// The parser covers the subset the detection pipeline needs: tag-pair
// headers, a single mainline of SAN moves, clock annotations, and the
// standard termination markers. Comments, variations and NAG codes are
// tolerated without disturbing mainline ply order.
package pgn

import (
	"fmt"
	"sort"
	"strings"
)

// NoClock marks a ply without a clock annotation.
const NoClock = -1.0

// Ply is one half-move of the mainline.
type Ply struct {
	// Index is 1-based: odd plies are white moves, even plies black.
	Index int
	// SAN is the move text as written, including check/annotation glyphs.
	SAN string
	// UCI is the same move in coordinate notation (e2e4, e7e8q).
	UCI string
	// FEN is the position after the move is played.
	FEN string
	// Clock is the seconds remaining on the mover's clock after the move,
	// taken from a [%clk ...] annotation, or NoClock when absent.
	Clock float64
}

// Game is a parsed PGN game. Treat it as read-only after Parse returns.
type Game struct {
	Tags map[string]string
	// StartFEN is the position before the first ply. Games with a FEN setup
	// tag start there; all others from the standard initial position.
	StartFEN string
	Plies    []Ply
	Result   string
}

// Header returns the tag value for key, or empty string when absent.
func (g *Game) Header(key string) string { return g.Tags[key] }

func (g *Game) White() string { return g.Tags["White"] }
func (g *Game) Black() string { return g.Tags["Black"] }
func (g *Game) Event() string { return g.Tags["Event"] }
func (g *Game) Site() string  { return g.Tags["Site"] }
func (g *Game) Date() string  { return g.Tags["Date"] }

// ID derives a stable identifier for the game from its headers and length.
func (g *Game) ID() string {
	if site := g.Tags["Site"]; strings.Contains(site, "/") {
		// Online games carry a unique URL in the Site tag.
		return site
	}
	return fmt.Sprintf("%s/%s/%s-vs-%s/%d",
		g.Tags["Event"], g.Tags["Date"], g.White(), g.Black(), len(g.Plies))
}

// HasClocks reports whether any ply carries a clock annotation.
func (g *Game) HasClocks() bool {
	for _, p := range g.Plies {
		if p.Clock != NoClock {
			return true
		}
	}
	return false
}

// Seven Tag Roster order used for canonical serialization.
var rosterTags = []string{"Event", "Site", "Date", "Round", "White", "Black", "Result"}

// String renders the game in canonical PGN: roster tags first, remaining
// tags sorted, then the mainline with clock annotations preserved.
// Parsing the output yields a game equal to the receiver.
func (g *Game) String() string {
	var b strings.Builder

	emitted := make(map[string]bool, len(g.Tags))
	for _, key := range rosterTags {
		if v, ok := g.Tags[key]; ok {
			fmt.Fprintf(&b, "[%s \"%s\"]\n", key, escapeTag(v))
			emitted[key] = true
		}
	}
	rest := make([]string, 0, len(g.Tags))
	for key := range g.Tags {
		if !emitted[key] {
			rest = append(rest, key)
		}
	}
	sort.Strings(rest)
	for _, key := range rest {
		fmt.Fprintf(&b, "[%s \"%s\"]\n", key, escapeTag(g.Tags[key]))
	}
	b.WriteString("\n")

	for i, p := range g.Plies {
		if i%2 == 0 {
			fmt.Fprintf(&b, "%d. ", i/2+1)
		}
		b.WriteString(p.SAN)
		if p.Clock != NoClock {
			fmt.Fprintf(&b, " {[%%clk %s]}", formatClock(p.Clock))
		}
		b.WriteString(" ")
	}
	b.WriteString(g.Result)
	b.WriteString("\n")
	return b.String()
}

// escapeTag applies the tag-value escapes, backslash first so the quote
// escape is not doubled.
func escapeTag(v string) string {
	v = strings.ReplaceAll(v, `\`, `\\`)
	return strings.ReplaceAll(v, `"`, `\"`)
}

func formatClock(seconds float64) string {
	h := int(seconds) / 3600
	m := (int(seconds) % 3600) / 60
	s := seconds - float64(h*3600+m*60)
	if s == float64(int(s)) {
		return fmt.Sprintf("%d:%02d:%02d", h, m, int(s))
	}
	return fmt.Sprintf("%d:%02d:%04.1f", h, m, s)
}

package pgn

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/notnil/chess"
)

var (
	tagPattern = regexp.MustCompile(`^\[(?P<key>[A-Za-z0-9_]+)\s+"(?P<value>(?:[^"\\]|\\.)*)"\]$`)
	clkPattern = regexp.MustCompile(`\[%clk\s+(\d+):(\d+):(\d+(?:\.\d+)?)\]`)
	sanPattern = regexp.MustCompile(
		`^(O-O-O|O-O|[KQRBN][a-h]?[1-8]?x?[a-h][1-8]|[a-h]x[a-h][1-8](=[QRBN])?|[a-h][1-8](=[QRBN])?)[+#]?[!?]{0,2}$`)
)

var resultMarkers = map[string]bool{
	"1-0": true, "0-1": true, "1/2-1/2": true, "*": true,
}

// Parse converts raw PGN text into a Game. It returns ErrParse on malformed
// movetext (unbalanced move numbers, illegal tokens) and ErrEmpty when no
// movetext is present. Missing optional headers default to empty strings.
// Parsing is deterministic: identical input yields an identical Game.
func Parse(raw string) (*Game, error) {
	tags := make(map[string]string)
	var moveLines []string

	inHeader := true
	for _, line := range strings.Split(raw, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if inHeader && strings.HasPrefix(trimmed, "[") {
			m := tagPattern.FindStringSubmatch(trimmed)
			if m == nil {
				return nil, fmt.Errorf("%w: malformed tag pair %q", ErrParse, trimmed)
			}
			tags[m[1]] = unescapeTag(m[2])
			continue
		}
		inHeader = false
		moveLines = append(moveLines, trimmed)
	}

	if len(moveLines) == 0 {
		return nil, ErrEmpty
	}

	plies, result, err := consumeMovetext(strings.Join(moveLines, " "))
	if err != nil {
		return nil, err
	}
	if result == "" {
		result = tags["Result"]
	}
	if result == "" {
		result = "*"
	}

	startFEN, err := annotatePositions(plies, tags["FEN"])
	if err != nil {
		return nil, err
	}
	return &Game{Tags: tags, StartFEN: startFEN, Plies: plies, Result: result}, nil
}

// unescapeTag resolves the \" and \\ escapes tag values may carry.
func unescapeTag(v string) string {
	if !strings.Contains(v, `\`) {
		return v
	}
	var b strings.Builder
	b.Grow(len(v))
	for i := 0; i < len(v); i++ {
		if v[i] == '\\' && i+1 < len(v) {
			i++
		}
		b.WriteByte(v[i])
	}
	return b.String()
}

// annotatePositions replays the mainline on a board, checking legality and
// filling in the UCI form and resulting FEN of every ply.
func annotatePositions(plies []Ply, setupFEN string) (string, error) {
	game := chess.NewGame()
	if setupFEN != "" {
		opt, err := chess.FEN(setupFEN)
		if err != nil {
			return "", fmt.Errorf("%w: bad FEN tag: %v", ErrParse, err)
		}
		game = chess.NewGame(opt)
	}
	pos := game.Position()
	startFEN := pos.String()

	notation := chess.AlgebraicNotation{}
	for i := range plies {
		san := strings.TrimRight(plies[i].SAN, "!?")
		move, err := notation.Decode(pos, san)
		if err != nil {
			return "", fmt.Errorf("%w: illegal move %q at ply %d", ErrParse, plies[i].SAN, plies[i].Index)
		}
		plies[i].UCI = chess.UCINotation{}.Encode(pos, move)
		pos = pos.Update(move)
		plies[i].FEN = pos.String()
	}
	return startFEN, nil
}

// ParseAll splits a multi-game PGN stream and parses every game in it.
// A single malformed game fails the whole call; batch callers that want
// per-game tolerance should split the stream themselves via SplitGames.
func ParseAll(raw string) ([]*Game, error) {
	games := make([]*Game, 0, 4)
	for i, chunk := range SplitGames(raw) {
		g, err := Parse(chunk)
		if err != nil {
			return nil, fmt.Errorf("game %d: %w", i+1, err)
		}
		games = append(games, g)
	}
	return games, nil
}

// SplitGames splits a PGN stream into per-game chunks. A new game starts at
// a tag-pair line following movetext.
func SplitGames(raw string) []string {
	var chunks []string
	var buf []string
	seenMoves := false

	for _, line := range strings.Split(raw, "\n") {
		trimmed := strings.TrimSpace(line)
		startsTag := strings.HasPrefix(trimmed, "[") && tagPattern.MatchString(trimmed)
		if startsTag && seenMoves {
			chunks = append(chunks, strings.Join(buf, "\n"))
			buf = buf[:0]
			seenMoves = false
		}
		if trimmed != "" && !startsTag {
			seenMoves = true
		}
		buf = append(buf, line)
	}
	if strings.TrimSpace(strings.Join(buf, "\n")) != "" {
		chunks = append(chunks, strings.Join(buf, "\n"))
	}
	return chunks
}

// token kinds produced by the movetext scanner.
type tokenKind int

const (
	tokMove tokenKind = iota
	tokMoveNumber
	tokResult
)

type token struct {
	kind  tokenKind
	text  string
	num   int     // move number for tokMoveNumber
	black bool    // "N..." continuation
	clock float64 // clock annotation trailing the previous move, NoClock if none
}

// consumeMovetext scans movetext and assembles plies, validating move-number
// bookkeeping along the way.
func consumeMovetext(text string) ([]Ply, string, error) {
	tokens, err := scan(text)
	if err != nil {
		return nil, "", err
	}

	var plies []Ply
	result := ""

	for _, t := range tokens {
		switch t.kind {
		case tokResult:
			result = t.text
		case tokMoveNumber:
			expected := len(plies)/2 + 1
			if t.num != expected {
				return nil, "", fmt.Errorf("%w: move number %d where %d expected",
					ErrParse, t.num, expected)
			}
			wantBlack := len(plies)%2 == 1
			if t.black != wantBlack {
				return nil, "", fmt.Errorf("%w: unbalanced move number %d", ErrParse, t.num)
			}
		case tokMove:
			plies = append(plies, Ply{Index: len(plies) + 1, SAN: t.text, Clock: NoClock})
		}
		if t.clock != NoClock && len(plies) > 0 {
			plies[len(plies)-1].Clock = t.clock
		}
		if result != "" {
			break
		}
	}
	return plies, result, nil
}

// scan tokenizes movetext, skipping comments, variations and NAG codes.
// Clock annotations found inside comments are attached to the token that
// precedes them.
func scan(text string) ([]token, error) {
	var tokens []token
	i := 0
	n := len(text)

	attachClock := func(c float64) {
		if len(tokens) > 0 {
			tokens[len(tokens)-1].clock = c
		}
	}

	for i < n {
		switch c := text[i]; {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++
		case c == '{':
			end := strings.IndexByte(text[i:], '}')
			if end < 0 {
				return nil, fmt.Errorf("%w: unterminated comment", ErrParse)
			}
			if clk, ok := parseClock(text[i : i+end]); ok {
				attachClock(clk)
			}
			i += end + 1
		case c == ';':
			nl := strings.IndexByte(text[i:], '\n')
			if nl < 0 {
				i = n
			} else {
				i += nl + 1
			}
		case c == '(':
			depth := 1
			j := i + 1
			for j < n && depth > 0 {
				switch text[j] {
				case '(':
					depth++
				case ')':
					depth--
				}
				j++
			}
			if depth != 0 {
				return nil, fmt.Errorf("%w: unterminated variation", ErrParse)
			}
			i = j
		case c == '$':
			j := i + 1
			for j < n && text[j] >= '0' && text[j] <= '9' {
				j++
			}
			if j == i+1 {
				return nil, fmt.Errorf("%w: bare $ in movetext", ErrParse)
			}
			i = j
		default:
			j := i
			for j < n && !strings.ContainsRune(" \t\n\r{};()", rune(text[j])) {
				j++
			}
			word := text[i:j]
			i = j
			t, err := classify(word)
			if err != nil {
				return nil, err
			}
			tokens = append(tokens, t)
		}
	}
	return tokens, nil
}

func classify(word string) (token, error) {
	t := token{clock: NoClock}
	if resultMarkers[word] {
		t.kind = tokResult
		t.text = word
		return t, nil
	}
	if trimmed, dots := splitMoveNumber(word); trimmed != "" {
		num, err := strconv.Atoi(trimmed)
		if err != nil || num < 1 {
			return t, fmt.Errorf("%w: bad move number %q", ErrParse, word)
		}
		t.kind = tokMoveNumber
		t.num = num
		// "12..." is the standard black continuation; some exporters write
		// "12..", so anything beyond the single dot counts as black.
		t.black = dots >= 2
		return t, nil
	}
	if !sanPattern.MatchString(word) {
		return t, fmt.Errorf("%w: illegal token %q", ErrParse, word)
	}
	t.kind = tokMove
	t.text = word
	return t, nil
}

// splitMoveNumber returns the digits and trailing-dot count of a move-number
// token ("12." -> "12",1 ; "12..." -> "12",3), or "" when word is not one.
func splitMoveNumber(word string) (digits string, dots int) {
	k := len(word)
	for k > 0 && word[k-1] == '.' {
		k--
		dots++
	}
	if dots == 0 || k == 0 {
		return "", 0
	}
	for _, r := range word[:k] {
		if r < '0' || r > '9' {
			return "", 0
		}
	}
	return word[:k], dots
}

// parseClock extracts a [%clk H:MM:SS(.t)] annotation from comment text.
func parseClock(comment string) (float64, bool) {
	m := clkPattern.FindStringSubmatch(comment)
	if m == nil {
		return 0, false
	}
	h, _ := strconv.Atoi(m[1])
	mins, _ := strconv.Atoi(m[2])
	secs, _ := strconv.ParseFloat(m[3], 64)
	return float64(h*3600+mins*60) + secs, true
}

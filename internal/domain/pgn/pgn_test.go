package pgn

import (
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

const annotatedGame = `[Event "Rated Blitz game"]
[Site "https://lichess.org/AbCdEf12"]
[Date "2024.03.17"]
[White "attacker01"]
[Black "defender02"]
[Result "1-0"]

1. e4 {[%clk 0:03:00]} e5 {[%clk 0:03:00]} 2. Nf3 {[%clk 0:02:58]} Nc6
{[%clk 0:02:55]} 3. Bb5 {[%clk 0:02:57]} a6 $6 (3... Nf6 {a better try})
4. Ba4 {[%clk 0:02:55]} Nf6 {[%clk 0:02:51]} 1-0
`

func TestParse(t *testing.T) {
	Convey("Given a PGN game with clocks, NAGs and variations", t, func() {
		Convey("When it is parsed", func() {
			g, err := Parse(annotatedGame)

			Convey("Then the mainline plies come out in order", func() {
				So(err, ShouldBeNil)
				So(g.Plies, ShouldHaveLength, 8)
				So(g.Plies[0].SAN, ShouldEqual, "e4")
				So(g.Plies[0].Index, ShouldEqual, 1)
				So(g.Plies[5].SAN, ShouldEqual, "a6")
				So(g.Plies[7].SAN, ShouldEqual, "Nf6")
				So(g.Result, ShouldEqual, "1-0")
			})

			Convey("Then variation moves never leak into the mainline", func() {
				So(err, ShouldBeNil)
				for _, p := range g.Plies[:5] {
					So(p.SAN, ShouldNotEqual, "Nf6")
				}
			})

			Convey("Then clock annotations attach to their plies", func() {
				So(err, ShouldBeNil)
				So(g.Plies[0].Clock, ShouldEqual, 180.0)
				So(g.Plies[2].Clock, ShouldEqual, 178.0)
				So(g.Plies[5].Clock, ShouldEqual, NoClock)
				So(g.HasClocks(), ShouldBeTrue)
			})

			Convey("Then headers are captured", func() {
				So(err, ShouldBeNil)
				So(g.White(), ShouldEqual, "attacker01")
				So(g.Black(), ShouldEqual, "defender02")
				So(g.ID(), ShouldEqual, "https://lichess.org/AbCdEf12")
			})

			Convey("Then every ply carries its coordinate move and resulting position", func() {
				So(err, ShouldBeNil)
				So(g.StartFEN, ShouldEqual, "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1")
				So(g.Plies[0].UCI, ShouldEqual, "e2e4")
				So(g.Plies[0].FEN, ShouldEqual, "rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq e3 0 1")
				So(g.Plies[4].UCI, ShouldEqual, "f1b5")
				for _, p := range g.Plies {
					So(p.FEN, ShouldNotBeEmpty)
				}
			})
		})
	})

	Convey("Given a game without headers", t, func() {
		Convey("When it is parsed", func() {
			g, err := Parse("1. d4 d5 2. c4 e6 1/2-1/2")

			Convey("Then missing headers default to empty and an ID is still derived", func() {
				So(err, ShouldBeNil)
				So(g.White(), ShouldEqual, "")
				So(g.Plies, ShouldHaveLength, 4)
				So(g.ID(), ShouldNotBeEmpty)
			})
		})
	})

	Convey("Given malformed input", t, func() {
		Convey("When move numbers do not match the ply count", func() {
			_, err := Parse("1. e4 e5 3. Nf3 *")

			Convey("Then parsing fails with a parse error", func() {
				So(errors.Is(err, ErrParse), ShouldBeTrue)
			})
		})

		Convey("When the movetext contains an illegal token", func() {
			_, err := Parse("1. e4 e5 2. Zz9 *")

			Convey("Then parsing fails with a parse error", func() {
				So(errors.Is(err, ErrParse), ShouldBeTrue)
			})
		})

		Convey("When a well-formed move is illegal in its position", func() {
			_, err := Parse("1. e4 e5 2. Qxf7 *")

			Convey("Then parsing fails and names the ply", func() {
				So(errors.Is(err, ErrParse), ShouldBeTrue)
				So(err.Error(), ShouldContainSubstring, "ply 3")
			})
		})

		Convey("When a comment never closes", func() {
			_, err := Parse("1. e4 {never closed e5 *")

			Convey("Then parsing fails with a parse error", func() {
				So(errors.Is(err, ErrParse), ShouldBeTrue)
			})
		})

		Convey("When the input has no movetext", func() {
			_, err := Parse("[Event \"empty\"]\n")

			Convey("Then parsing fails with an empty-input error", func() {
				So(errors.Is(err, ErrEmpty), ShouldBeTrue)
			})
		})
	})
}

func TestRoundTrip(t *testing.T) {
	Convey("Given a parsed game", t, func() {
		g, err := Parse(annotatedGame)
		So(err, ShouldBeNil)

		Convey("When its canonical form is re-parsed", func() {
			again, err := Parse(g.String())

			Convey("Then the game survives unchanged", func() {
				So(err, ShouldBeNil)
				So(again.Tags, ShouldResemble, g.Tags)
				So(again.Plies, ShouldResemble, g.Plies)
				So(again.Result, ShouldEqual, g.Result)
				So(again.String(), ShouldEqual, g.String())
			})
		})
	})
}

func TestEscapedTagValues(t *testing.T) {
	Convey("Given tag values carrying escaped quotes and backslashes", t, func() {
		raw := `[Event "The \"Evergreen\" Rematch"]
[Site "C:\\games\\archive"]

1. e4 e5 *
`
		Convey("When the game is parsed", func() {
			g, err := Parse(raw)

			Convey("Then the escapes resolve to the literal characters", func() {
				So(err, ShouldBeNil)
				So(g.Event(), ShouldEqual, `The "Evergreen" Rematch`)
				So(g.Site(), ShouldEqual, `C:\games\archive`)
			})

			Convey("Then the values survive a serialization round trip", func() {
				again, err := Parse(g.String())
				So(err, ShouldBeNil)
				So(again.Tags, ShouldResemble, g.Tags)
				So(again.String(), ShouldEqual, g.String())
			})
		})
	})
}

func TestBlackContinuations(t *testing.T) {
	Convey("Given movetext with black continuation numbers", t, func() {
		Convey("When the continuation uses the standard three dots", func() {
			g, err := Parse("1. e4 {novelty} 1... e5 2. Nf3 Nc6 *")

			Convey("Then the mainline parses in order", func() {
				So(err, ShouldBeNil)
				So(g.Plies, ShouldHaveLength, 4)
				So(g.Plies[1].SAN, ShouldEqual, "e5")
			})
		})

		Convey("When an exporter writes only two dots", func() {
			g, err := Parse("1. e4 {novelty} 1.. e5 2. Nf3 Nc6 *")

			Convey("Then it still reads as a black continuation", func() {
				So(err, ShouldBeNil)
				So(g.Plies, ShouldHaveLength, 4)
				So(g.Plies[1].SAN, ShouldEqual, "e5")
			})
		})

		Convey("When a continuation number appears on a white move", func() {
			_, err := Parse("1. e4 2... e5 *")

			Convey("Then the imbalance is reported", func() {
				So(errors.Is(err, ErrParse), ShouldBeTrue)
			})
		})
	})
}

func TestParseAll(t *testing.T) {
	Convey("Given a stream with three games", t, func() {
		stream := `[Event "one"]
[Result "1-0"]

1. e4 e5 1-0

[Event "two"]
[Result "0-1"]

1. d4 d5 0-1

[Event "three"]

1. c4 c5 *
`
		Convey("When the stream is parsed", func() {
			games, err := ParseAll(stream)

			Convey("Then every game is returned in order", func() {
				So(err, ShouldBeNil)
				So(games, ShouldHaveLength, 3)
				So(games[0].Event(), ShouldEqual, "one")
				So(games[1].Result, ShouldEqual, "0-1")
				So(games[2].Plies[0].SAN, ShouldEqual, "c4")
			})
		})

		Convey("When one game in the stream is broken", func() {
			_, err := ParseAll(stream + "\n[Event \"four\"]\n\n1. !! *\n")

			Convey("Then the error names the failing game", func() {
				So(errors.Is(err, ErrParse), ShouldBeTrue)
				So(err.Error(), ShouldContainSubstring, "game 4")
			})
		})
	})
}

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/chessguard/chessguard/internal/app"
	"github.com/chessguard/chessguard/internal/domain/model"
	"github.com/chessguard/chessguard/pkg/logger"
)

func init() {
	_ = logger.Init()
	_ = logger.SetLevelString("error")
}

const italianGame = `[Event "Casual game"]
[Site "https://example.org/game/api-1"]
[White "suspect"]
[Black "opponent"]
[Result "1-0"]

1. e4 e5 2. Nf3 Nc6 3. Bc4 Bc5 4. c3 Nf6 5. d4 exd4
6. cxd4 Bb4+ 7. Nc3 Nxe4 8. O-O Bxc3 9. d5 Ne5 10. bxc3 Nxc3 1-0
`

// timedBody builds an /analyze request with uniform white think times.
func timedBody(pgnText string) []byte {
	req := map[string]any{"pgn": pgnText, "player": "suspect", "game_id": "api-1"}
	var samples []map[string]any
	for ply := 1; ply <= 19; ply += 2 {
		samples = append(samples, map[string]any{"ply": ply, "elapsed_seconds": 1.5})
	}
	req["telemetry"] = samples
	body, err := json.Marshal(req)
	if err != nil {
		panic(err)
	}
	return body
}

func TestAPI(t *testing.T) {
	ctx := context.Background()

	Convey("Given a registered API over a running service", t, func() {
		svc := app.New(app.WithWorkerCount(1), app.WithQueueSize(8))
		So(svc.Start(ctx), ShouldBeNil)
		Reset(svc.Stop)

		mux := http.NewServeMux()
		NewServer(svc, svc.Store()).Register(mux)

		do := func(method, path string, body []byte) *httptest.ResponseRecorder {
			req := httptest.NewRequest(method, path, bytes.NewReader(body))
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)
			return rec
		}

		Convey("When a timed game is posted to /analyze", func() {
			rec := do(http.MethodPost, "/analyze", timedBody(italianGame))

			Convey("Then the finished report comes back", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				var report model.DetectionReport
				So(json.Unmarshal(rec.Body.Bytes(), &report), ShouldBeNil)
				So(report.GameID, ShouldEqual, "api-1")
				So(report.Status, ShouldEqual, model.StatusPartial)
				So(report.Features.TimingSuspicion, ShouldNotBeNil)
				So(report.Features.EngineAgreement, ShouldBeNil)
			})

			Convey("Then the report is readable back by ID", func() {
				rec := do(http.MethodGet, "/reports/api-1", nil)
				So(rec.Code, ShouldEqual, http.StatusOK)
			})

			Convey("Then the listing contains it", func() {
				rec := do(http.MethodGet, "/reports", nil)
				So(rec.Code, ShouldEqual, http.StatusOK)
				var reports []model.DetectionReport
				So(json.Unmarshal(rec.Body.Bytes(), &reports), ShouldBeNil)
				So(reports, ShouldHaveLength, 1)
			})

			Convey("Then stats reflect the stored report", func() {
				rec := do(http.MethodGet, "/stats", nil)
				So(rec.Code, ShouldEqual, http.StatusOK)
				var stats app.Stats
				So(json.Unmarshal(rec.Body.Bytes(), &stats), ShouldBeNil)
				So(stats.Reports, ShouldEqual, 1)
			})
		})

		Convey("When the inputs are bad", func() {
			Convey("Then malformed JSON is a 400", func() {
				rec := do(http.MethodPost, "/analyze", []byte("{"))
				So(rec.Code, ShouldEqual, http.StatusBadRequest)
			})

			Convey("Then malformed PGN is a 400", func() {
				body, _ := json.Marshal(map[string]string{"pgn": "1. e4 e9 1-0"})
				rec := do(http.MethodPost, "/analyze", body)
				So(rec.Code, ShouldEqual, http.StatusBadRequest)
			})

			Convey("Then a game with no usable data source is a 422", func() {
				body, _ := json.Marshal(map[string]string{"pgn": italianGame})
				rec := do(http.MethodPost, "/analyze", body)
				So(rec.Code, ShouldEqual, http.StatusUnprocessableEntity)
			})

			Convey("Then an unknown report is a 404", func() {
				rec := do(http.MethodGet, "/reports/nope", nil)
				So(rec.Code, ShouldEqual, http.StatusNotFound)
			})
		})

		Convey("When liveness is checked", func() {
			rec := do(http.MethodGet, "/healthz", nil)

			Convey("Then the service reports ok", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				So(rec.Body.String(), ShouldContainSubstring, "ok")
			})
		})

		Convey("When a multi-game stream arrives without a player", func() {
			stream := fmt.Sprintf("%s\n%s", italianGame, italianGame)
			body, _ := json.Marshal(map[string]string{"pgn": stream})
			rec := do(http.MethodPost, "/analyze", body)

			Convey("Then the request is rejected as incomplete", func() {
				So(rec.Code, ShouldEqual, http.StatusBadRequest)
				So(rec.Body.String(), ShouldContainSubstring, "player")
			})
		})
	})
}

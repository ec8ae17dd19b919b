package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/parley/internal/adapters/http/api"
	"github.com/okian/parley/internal/adapters/repository"
	"github.com/okian/parley/internal/domain/model"
	"github.com/okian/parley/internal/domain/scoring"
	"github.com/okian/parley/internal/domain/session"
	"github.com/okian/parley/internal/domain/topic"
)

// stubDeps is a scriptable Dependencies implementation.
type stubDeps struct {
	catalog *topic.Catalog

	startID    string
	startTopic *topic.Topic
	startErr   error

	outcome api.TurnOutcome
	turnErr error

	score    float64
	scoreRes *scoring.Result
	scoreErr error

	report    string
	reportErr error

	endRec *model.SessionRecord
	endErr error

	sessionID string

	listIDs []string
	listErr error

	loaded  model.SessionRecord
	loadErr error

	transcript     string
	transcribeErr  error
	lastAudioBytes []byte
}

func (s *stubDeps) Catalog() *topic.Catalog { return s.catalog }

func (s *stubDeps) StartSession(_ context.Context, _ string) (string, *topic.Topic, error) {
	return s.startID, s.startTopic, s.startErr
}

func (s *stubDeps) RecordUserTurn(_ context.Context, _ string) (api.TurnOutcome, error) {
	return s.outcome, s.turnErr
}

func (s *stubDeps) CurrentScore(_ context.Context) (float64, *scoring.Result, error) {
	return s.score, s.scoreRes, s.scoreErr
}

func (s *stubDeps) ProgressReport(_ context.Context) (string, error) {
	return s.report, s.reportErr
}

func (s *stubDeps) EndSession(_ context.Context) (*model.SessionRecord, error) {
	return s.endRec, s.endErr
}

func (s *stubDeps) ActiveSessionID() string { return s.sessionID }

func (s *stubDeps) ListSessions(_ context.Context) ([]string, error) {
	return s.listIDs, s.listErr
}

func (s *stubDeps) LoadSession(_ context.Context, _ string) (model.SessionRecord, error) {
	return s.loaded, s.loadErr
}

func (s *stubDeps) Transcribe(_ context.Context, audio io.Reader) (string, error) {
	s.lastAudioBytes, _ = io.ReadAll(audio)
	return s.transcript, s.transcribeErr
}

// stubStats satisfies api.StatsProvider.
type stubStats struct {
	stats map[string]interface{}
}

func (s *stubStats) GetStats() map[string]interface{} { return s.stats }

func newMux(deps *stubDeps, stats *stubStats) *http.ServeMux {
	if deps.catalog == nil {
		deps.catalog = topic.NewCatalog()
	}
	if stats == nil {
		stats = &stubStats{stats: map[string]interface{}{"active": false}}
	}
	mux := http.NewServeMux()
	api.NewServer(deps, stats).Register(context.Background(), mux)
	return mux
}

func do(mux *http.ServeMux, method, path string, body io.Reader) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, body)
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	return rr
}

func decode(t *httptest.ResponseRecorder, v any) error {
	return json.Unmarshal(t.Body.Bytes(), v)
}

func TestTopicsEndpoint(t *testing.T) {
	Convey("Given the topics endpoint", t, func() {
		mux := newMux(&stubDeps{}, nil)

		Convey("When topics are listed", func() {
			rr := do(mux, http.MethodGet, "/topics", nil)

			Convey("Then all catalog topics are returned in order", func() {
				So(rr.Code, ShouldEqual, http.StatusOK)

				var topics []map[string]any
				So(decode(rr, &topics), ShouldBeNil)
				So(topics, ShouldHaveLength, 5)
				So(topics[0]["key"], ShouldEqual, "weather")
				So(topics[0]["name"], ShouldEqual, "Weather")
				So(topics[0]["keywords"], ShouldEqual, 5)
			})
		})

		Convey("When the method is wrong", func() {
			rr := do(mux, http.MethodPost, "/topics", nil)
			So(rr.Code, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestSessionEndpoint(t *testing.T) {
	Convey("Given the session endpoint", t, func() {
		weather, _ := topic.NewCatalog().Get("weather")

		Convey("When a session starts successfully", func() {
			deps := &stubDeps{
				startID:    "weather_20250314_150000",
				startTopic: weather,
			}
			rr := do(newMux(deps, nil), http.MethodPost, "/session",
				strings.NewReader(`{"topic":"weather"}`))

			Convey("Then 201 carries the id and introduction", func() {
				So(rr.Code, ShouldEqual, http.StatusCreated)

				var resp map[string]any
				So(decode(rr, &resp), ShouldBeNil)
				So(resp["session_id"], ShouldEqual, "weather_20250314_150000")
				So(resp["topic"], ShouldEqual, "Weather")
				So(resp["introduction"], ShouldNotBeEmpty)
			})
		})

		Convey("When a session is already active", func() {
			deps := &stubDeps{startErr: session.ErrSessionActive}
			rr := do(newMux(deps, nil), http.MethodPost, "/session",
				strings.NewReader(`{"topic":"weather"}`))

			So(rr.Code, ShouldEqual, http.StatusConflict)
			So(rr.Body.String(), ShouldContainSubstring, "session_active")
		})

		Convey("When the topic is unknown", func() {
			deps := &stubDeps{startErr: errors.New("unknown topic: quilting")}
			rr := do(newMux(deps, nil), http.MethodPost, "/session",
				strings.NewReader(`{"topic":"quilting"}`))

			So(rr.Code, ShouldEqual, http.StatusNotFound)
			So(rr.Body.String(), ShouldContainSubstring, "unknown_topic")
		})

		Convey("When the body is malformed", func() {
			rr := do(newMux(&stubDeps{startTopic: weather}, nil), http.MethodPost, "/session",
				strings.NewReader(`{`))

			So(rr.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When a session ends", func() {
			deps := &stubDeps{
				endRec: &model.SessionRecord{SessionID: "weather_20250314_150000", FinalScore: 72},
			}
			rr := do(newMux(deps, nil), http.MethodDelete, "/session", nil)

			Convey("Then 200 carries the full record", func() {
				So(rr.Code, ShouldEqual, http.StatusOK)

				var rec map[string]any
				So(decode(rr, &rec), ShouldBeNil)
				So(rec["session_id"], ShouldEqual, "weather_20250314_150000")
				So(rec["final_score"], ShouldEqual, 72)
			})
		})

		Convey("When ending with no active session", func() {
			deps := &stubDeps{endErr: session.ErrNoActiveSession}
			rr := do(newMux(deps, nil), http.MethodDelete, "/session", nil)

			So(rr.Code, ShouldEqual, http.StatusNotFound)
			So(rr.Body.String(), ShouldContainSubstring, "no_session")
		})
	})
}

func TestTurnsEndpoint(t *testing.T) {
	Convey("Given the turns endpoint", t, func() {
		score := 42.5

		Convey("When a turn is recorded", func() {
			deps := &stubDeps{
				outcome: api.TurnOutcome{
					Reply:          "Interesting, tell me more.",
					Score:          &score,
					ShouldContinue: true,
					Reason:         "continue conversation",
				},
			}
			rr := do(newMux(deps, nil), http.MethodPost, "/session/turns",
				strings.NewReader(`{"content":"traffic is heavy today"}`))

			Convey("Then the outcome is mirrored back", func() {
				So(rr.Code, ShouldEqual, http.StatusOK)

				var resp map[string]any
				So(decode(rr, &resp), ShouldBeNil)
				So(resp["reply"], ShouldEqual, "Interesting, tell me more.")
				So(resp["score"], ShouldEqual, 42.5)
				So(resp["should_continue"], ShouldEqual, true)
			})
		})

		Convey("When the content is blank", func() {
			rr := do(newMux(&stubDeps{}, nil), http.MethodPost, "/session/turns",
				strings.NewReader(`{"content":"   "}`))

			So(rr.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When no session is active", func() {
			deps := &stubDeps{turnErr: session.ErrNoActiveSession}
			rr := do(newMux(deps, nil), http.MethodPost, "/session/turns",
				strings.NewReader(`{"content":"hello"}`))

			So(rr.Code, ShouldEqual, http.StatusNotFound)
			So(rr.Body.String(), ShouldContainSubstring, "no_session")
		})
	})
}

func TestScoreAndReportEndpoints(t *testing.T) {
	Convey("Given an active session", t, func() {
		deps := &stubDeps{
			sessionID: "weather_20250314_150000",
			score:     61.2,
			scoreRes: &scoring.Result{
				TotalScore:         61.2,
				CoveragePercentage: 40,
				KeywordMatches: map[string]scoring.KeywordMatch{
					"temperature": {Relevance: 0.8},
				},
			},
			report: "PROGRESS REPORT\nCurrent score: 61.2/100",
		}
		mux := newMux(deps, nil)

		Convey("When the score is requested", func() {
			rr := do(mux, http.MethodGet, "/session/score", nil)

			Convey("Then it carries coverage and per-term relevance", func() {
				So(rr.Code, ShouldEqual, http.StatusOK)

				var resp map[string]any
				So(decode(rr, &resp), ShouldBeNil)
				So(resp["session_id"], ShouldEqual, "weather_20250314_150000")
				So(resp["score"], ShouldEqual, 61.2)
				So(resp["coverage_percentage"], ShouldEqual, 40)
				matches := resp["keyword_matches"].(map[string]any)
				So(matches["temperature"], ShouldEqual, 0.8)
			})
		})

		Convey("When the report is requested", func() {
			rr := do(mux, http.MethodGet, "/session/report", nil)

			So(rr.Code, ShouldEqual, http.StatusOK)
			So(rr.Body.String(), ShouldContainSubstring, "PROGRESS REPORT")
		})
	})

	Convey("Given no active session", t, func() {
		deps := &stubDeps{
			scoreErr:  session.ErrNoActiveSession,
			reportErr: session.ErrNoActiveSession,
		}
		mux := newMux(deps, nil)

		So(do(mux, http.MethodGet, "/session/score", nil).Code, ShouldEqual, http.StatusNotFound)
		So(do(mux, http.MethodGet, "/session/report", nil).Code, ShouldEqual, http.StatusNotFound)
	})
}

func TestSessionsEndpoints(t *testing.T) {
	Convey("Given persisted sessions", t, func() {
		deps := &stubDeps{
			listIDs: []string{"weather_20250315_100000", "weather_20250314_150000"},
			loaded:  model.SessionRecord{SessionID: "weather_20250314_150000", Topic: "Weather"},
		}
		mux := newMux(deps, nil)

		Convey("When sessions are listed", func() {
			rr := do(mux, http.MethodGet, "/sessions", nil)

			So(rr.Code, ShouldEqual, http.StatusOK)
			var resp map[string][]string
			So(decode(rr, &resp), ShouldBeNil)
			So(resp["sessions"], ShouldResemble, deps.listIDs)
		})

		Convey("When one session is fetched", func() {
			rr := do(mux, http.MethodGet, "/sessions/weather_20250314_150000", nil)

			So(rr.Code, ShouldEqual, http.StatusOK)
			So(rr.Body.String(), ShouldContainSubstring, `"topic":"Weather"`)
		})

		Convey("When the path parameter is missing", func() {
			rr := do(mux, http.MethodGet, "/sessions/", nil)
			So(rr.Code, ShouldEqual, http.StatusBadRequest)
		})
	})

	Convey("Given an empty store", t, func() {
		rr := do(newMux(&stubDeps{}, nil), http.MethodGet, "/sessions", nil)

		Convey("Then the list is an empty array, not null", func() {
			So(rr.Code, ShouldEqual, http.StatusOK)
			So(strings.TrimSpace(rr.Body.String()), ShouldEqual, `{"sessions":[]}`)
		})
	})

	Convey("Given a missing session", t, func() {
		deps := &stubDeps{loadErr: repository.ErrNotFound}
		rr := do(newMux(deps, nil), http.MethodGet, "/sessions/weather_20990101_000000", nil)

		So(rr.Code, ShouldEqual, http.StatusNotFound)
		So(rr.Body.String(), ShouldContainSubstring, "not_found")
	})

	Convey("Given persistence is disabled", t, func() {
		deps := &stubDeps{listErr: errors.New("session persistence is disabled")}
		rr := do(newMux(deps, nil), http.MethodGet, "/sessions", nil)

		So(rr.Code, ShouldEqual, http.StatusServiceUnavailable)
	})
}

func TestTranscribeEndpoint(t *testing.T) {
	Convey("Given the transcribe endpoint", t, func() {
		Convey("When audio is posted", func() {
			deps := &stubDeps{transcript: "traffic was bad this morning"}
			rr := do(newMux(deps, nil), http.MethodPost, "/transcribe",
				bytes.NewReader([]byte("fake-wav-bytes")))

			Convey("Then the transcript comes back", func() {
				So(rr.Code, ShouldEqual, http.StatusOK)
				So(rr.Body.String(), ShouldContainSubstring, "traffic was bad this morning")
				So(deps.lastAudioBytes, ShouldResemble, []byte("fake-wav-bytes"))
			})
		})

		Convey("When the body is empty", func() {
			rr := do(newMux(&stubDeps{}, nil), http.MethodPost, "/transcribe", nil)
			So(rr.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When transcription is not configured", func() {
			deps := &stubDeps{transcribeErr: errors.New("transcription is not configured")}
			rr := do(newMux(deps, nil), http.MethodPost, "/transcribe",
				bytes.NewReader([]byte("audio")))

			So(rr.Code, ShouldEqual, http.StatusServiceUnavailable)
		})

		Convey("When the provider fails", func() {
			deps := &stubDeps{transcribeErr: errors.New("upstream timeout")}
			rr := do(newMux(deps, nil), http.MethodPost, "/transcribe",
				bytes.NewReader([]byte("audio")))

			So(rr.Code, ShouldEqual, http.StatusBadGateway)
			So(rr.Body.String(), ShouldContainSubstring, "transcription_failed")
		})
	})
}

func TestStatsAndHealthEndpoints(t *testing.T) {
	Convey("Given the operational endpoints", t, func() {
		stats := &stubStats{stats: map[string]interface{}{"active": true, "userTurns": 3}}
		mux := newMux(&stubDeps{}, stats)

		Convey("When stats are requested", func() {
			rr := do(mux, http.MethodGet, "/stats", nil)

			So(rr.Code, ShouldEqual, http.StatusOK)
			var resp map[string]any
			So(decode(rr, &resp), ShouldBeNil)
			So(resp["active"], ShouldEqual, true)
			So(resp["userTurns"], ShouldEqual, 3)
		})

		Convey("When health is probed", func() {
			rr := do(mux, http.MethodGet, "/healthz", nil)
			So(rr.Code, ShouldEqual, http.StatusOK)
		})
	})
}

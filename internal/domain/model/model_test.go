package model_test

import (
	"encoding/json"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/parley/internal/domain/model"
	"github.com/okian/parley/internal/domain/topic"
)

func testTopic() *topic.Topic {
	return &topic.Topic{
		Name:        "Road Traffic",
		Description: "traffic flow",
		Keywords: []topic.Keyword{
			{Term: "accidents", Description: "disruptions", Weight: 1.0},
		},
	}
}

func TestSession(t *testing.T) {
	Convey("Given a new session", t, func() {
		start := time.Date(2025, 3, 14, 15, 9, 26, 0, time.UTC)
		s := model.NewSession(testTopic(), start)

		Convey("Then the id embeds the topic slug and start timestamp", func() {
			So(s.SessionID, ShouldEqual, "road_traffic_20250314_150926")
		})

		Convey("Then it starts with no turns and no end time", func() {
			So(s.Turns, ShouldBeEmpty)
			So(s.Ended(), ShouldBeFalse)
			So(s.UserTurnCount(), ShouldEqual, 0)
		})

		Convey("When turns accumulate", func() {
			s.Turns = append(s.Turns,
				model.NewTurn(start, model.SpeakerAssistant, "hello there"),
				model.NewTurn(start.Add(time.Minute), model.SpeakerUser, "traffic is bad"),
				model.NewTurn(start.Add(2*time.Minute), model.SpeakerUser, "accidents cause jams"),
			)

			Convey("Then user turn views skip assistant turns", func() {
				So(s.UserTurnCount(), ShouldEqual, 2)
				So(s.UserTurnTexts(), ShouldResemble, []string{"traffic is bad", "accidents cause jams"})
			})
		})

		Convey("When elapsed is asked for an active session", func() {
			now := start.Add(5 * time.Minute)
			So(s.Elapsed(now), ShouldEqual, 5*time.Minute)
		})

		Convey("When the session has ended", func() {
			end := start.Add(3 * time.Minute)
			s.EndTime = &end

			Convey("Then elapsed is frozen at the final duration", func() {
				So(s.Elapsed(start.Add(time.Hour)), ShouldEqual, 3*time.Minute)
			})
		})
	})

	Convey("Given speakers", t, func() {
		So(model.SpeakerUser.Valid(), ShouldBeTrue)
		So(model.SpeakerAssistant.Valid(), ShouldBeTrue)
		So(model.Speaker("narrator").Valid(), ShouldBeFalse)
	})

	Convey("Given a turn", t, func() {
		turn := model.NewTurn(time.Now(), model.SpeakerUser, "  three  little words ")

		Convey("Then words are counted on whitespace", func() {
			So(turn.WordCount(), ShouldEqual, 3)
		})

		Convey("Then each turn gets a distinct id", func() {
			other := model.NewTurn(time.Now(), model.SpeakerUser, "more")
			So(turn.TurnID, ShouldNotEqual, other.TurnID)
		})
	})
}

func TestSessionRecord(t *testing.T) {
	Convey("Given an ended session", t, func() {
		start := time.Date(2025, 3, 14, 15, 0, 0, 0, time.UTC)
		end := start.Add(90 * time.Second)
		score := 42.5

		s := model.NewSession(testTopic(), start)
		userScore := 42.5
		s.Turns = append(s.Turns,
			model.NewTurn(start, model.SpeakerAssistant, "hi"),
			model.NewTurn(start.Add(time.Minute), model.SpeakerUser, "accidents everywhere"),
		)
		s.Turns[1].Score = &userScore
		s.TotalUserWords = 2
		s.EndTime = &end
		s.FinalScore = &score

		details := &model.ScoringDetails{
			CoveragePercentage: 100,
			KeywordMatches:     map[string]float64{"accidents": 0.7},
		}
		rec := model.NewSessionRecord(s, details)

		Convey("Then the record mirrors the session", func() {
			So(rec.SessionID, ShouldEqual, s.SessionID)
			So(rec.Topic, ShouldEqual, "Road Traffic")
			So(rec.StartTime, ShouldEqual, "2025-03-14T15:00:00Z")
			So(rec.EndTime, ShouldEqual, "2025-03-14T15:01:30Z")
			So(rec.DurationMinutes, ShouldAlmostEqual, 1.5, 0.0001)
			So(rec.FinalScore, ShouldEqual, 42.5)
			So(rec.TotalTurns, ShouldEqual, 2)
			So(rec.UserTurns, ShouldEqual, 1)
			So(rec.TotalUserWords, ShouldEqual, 2)
		})

		Convey("Then the JSON shape uses snake_case field names", func() {
			data, err := json.Marshal(rec)
			So(err, ShouldBeNil)

			var m map[string]any
			So(json.Unmarshal(data, &m), ShouldBeNil)
			for _, key := range []string{
				"session_id", "topic", "start_time", "end_time",
				"duration_minutes", "final_score", "total_turns",
				"user_turns", "total_user_words", "turns", "scoring_details",
			} {
				So(m, ShouldContainKey, key)
			}
		})
	})
}

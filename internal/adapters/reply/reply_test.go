package reply

import (
	"fmt"
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/parley/internal/domain/topic"
)

func wideTopic(keywordCount int) *topic.Topic {
	t := &topic.Topic{
		Name:        "Weather & Climate",
		Description: "Discussing weather patterns, climate, and seasonal changes.",
	}
	for i := 0; i < keywordCount; i++ {
		t.Keywords = append(t.Keywords, topic.Keyword{
			Term:        fmt.Sprintf("term%d", i),
			Description: fmt.Sprintf("about term%d", i),
			Weight:      1,
		})
	}
	return t
}

func TestPromptRendering(t *testing.T) {
	// Persona and followUpPrompt are pure string builders; no client needed.
	g := &Generator{}

	Convey("Given a topic with more keywords than the persona cap", t, func() {
		tp := wideTopic(personaKeywordCap + 3)

		Convey("When the persona is rendered", func() {
			p := g.Persona(tp)

			Convey("Then it names the topic and its focus", func() {
				So(p, ShouldContainSubstring, tp.Name)
				So(p, ShouldContainSubstring, tp.Description)
			})

			Convey("And only the leading keywords appear", func() {
				So(p, ShouldContainSubstring, "term0")
				So(p, ShouldContainSubstring, fmt.Sprintf("term%d", personaKeywordCap-1))
				So(p, ShouldNotContainSubstring, fmt.Sprintf("term%d:", personaKeywordCap))
			})
		})

		Convey("When the follow-up prompt is rendered", func() {
			p := g.followUpPrompt(tp, "I think humidity matters", 42.5)

			Convey("Then it embeds the user's words and the score", func() {
				So(p, ShouldContainSubstring, `"I think humidity matters"`)
				So(p, ShouldContainSubstring, "42.5/100")
			})

			Convey("And keywords are capped at the follow-up limit", func() {
				So(p, ShouldContainSubstring, fmt.Sprintf("term%d", followUpKeywordCap-1))
				So(p, ShouldNotContainSubstring, fmt.Sprintf("term%d:", followUpKeywordCap))
			})
		})
	})

	Convey("The canned fallback is a usable turn", t, func() {
		So(strings.TrimSpace(Fallback), ShouldNotBeEmpty)
		So(Fallback, ShouldEndWith, "?")
	})
}

package chat

import (
	"encoding/json"
	"strings"

	"github.com/sandevgo/momobot/internal/core"
)

// Extraction is the structured view of one raw model reply. Degraded marks
// replies that carried no decodable JSON: the raw text becomes the reply and
// every signal is empty.
type Extraction struct {
	Reply        string
	EmotionTags  []string
	EmotionLevel int
	Moment       *core.MomentCandidate
	Degraded     bool
}

// ParseResponse decodes the semi-structured model output. The producing
// model is not schema-guaranteed, so every field is defaulted rather than
// trusted and a decode failure degrades instead of erroring.
func ParseResponse(raw string) Extraction {
	block := firstJSONObject(raw)
	if block == "" {
		block = raw
	}

	var payload map[string]any
	if err := json.Unmarshal([]byte(block), &payload); err != nil {
		return Extraction{Reply: raw, EmotionTags: []string{}, Degraded: true}
	}

	ext := Extraction{
		Reply:        asString(payload["chat_response"]),
		EmotionTags:  asStringList(payload["emotion_tags"]),
		EmotionLevel: asInt(payload["emotion_level"]),
	}

	if m, ok := payload["moment"].(map[string]any); ok {
		// The model must declare the moment itself; anything else inside a
		// "moment" key is noise.
		if flagged, _ := m["is_moment"].(bool); flagged {
			ext.Moment = &core.MomentCandidate{
				Type:              asString(m["type"]),
				RawTimeExpression: asString(m["time"]),
				EventDescription:  asString(m["event_description"]),
				Emotion:           asString(m["emotion"]),
				EmotionLevel:      asInt(m["emotion_level"]),
				Importance:        asString(m["importance"]),
				SuggestedAction:   asString(m["suggested_action"]),
				SuggestedTiming:   asString(m["suggested_timing"]),
				FirstMessage:      asString(m["first_message"]),
				AIAttitude:        asString(m["ai_attitude"]),
				Reason:            asString(m["reason"]),
			}
		}
	}

	return ext
}

// firstJSONObject returns the first balanced {...} block in text, tolerating
// surrounding prose and markdown fences. String literals and escapes are
// honored so braces inside values do not unbalance the scan.
func firstJSONObject(text string) string {
	start := strings.IndexByte(text, '{')
	if start == -1 {
		return ""
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[start : i+1]
			}
		}
	}
	return ""
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func asStringList(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return []string{}
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func asInt(v any) int {
	// encoding/json decodes every number into float64.
	f, ok := v.(float64)
	if !ok || f != float64(int(f)) {
		return 0
	}
	return int(f)
}

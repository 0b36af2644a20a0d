package model

import (
	"encoding/json"
	"time"
)

// Answer is a single answer record for one question on one side of a game.
// QuestionID and IsCorrect are the fields the state machine inspects; Extra
// carries any additional client-supplied fields so forward-compatible
// payloads survive a round trip.
type Answer struct {
	QuestionID QuestionID
	IsCorrect  bool
	Timestamp  time.Time
	Extra      map[string]any
}

// MarshalJSON inlines Extra next to the fixed fields
func (a Answer) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(a.Extra)+3)
	for k, v := range a.Extra {
		out[k] = v
	}
	out["questionId"] = a.QuestionID
	out["isCorrect"] = a.IsCorrect
	if !a.Timestamp.IsZero() {
		out["timestamp"] = a.Timestamp.UTC().Format(time.RFC3339Nano)
	}
	return json.Marshal(out)
}

// UnmarshalJSON extracts the fixed fields and keeps everything else in Extra
func (a *Answer) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	if qid, ok := raw["questionId"].(string); ok {
		a.QuestionID = QuestionID(qid)
	}
	if correct, ok := raw["isCorrect"].(bool); ok {
		a.IsCorrect = correct
	}
	if ts, ok := raw["timestamp"].(string); ok {
		if t, err := time.Parse(time.RFC3339Nano, ts); err == nil {
			a.Timestamp = t
		}
	}

	delete(raw, "questionId")
	delete(raw, "isCorrect")
	delete(raw, "timestamp")
	if len(raw) > 0 {
		a.Extra = raw
	} else {
		a.Extra = nil
	}
	return nil
}

// AnswerSet holds one side's answers keyed by question, so at most one
// record per question exists by construction.
type AnswerSet map[QuestionID]Answer

// NewAnswerSet returns an empty answer collection
func NewAnswerSet() AnswerSet {
	return make(AnswerSet)
}

// Upsert replaces any existing record for each incoming question and adds
// the rest. Resubmission never duplicates.
func (s AnswerSet) Upsert(answers ...Answer) {
	for _, a := range answers {
		s[a.QuestionID] = a
	}
}

// CorrectCount returns how many records are marked correct
func (s AnswerSet) CorrectCount() int {
	n := 0
	for _, a := range s {
		if a.IsCorrect {
			n++
		}
	}
	return n
}

// Ordered serializes the set to a slice following the game's question order.
// Answers for questions outside the list are appended afterwards in no
// particular order.
func (s AnswerSet) Ordered(questions []QuestionID) []Answer {
	out := make([]Answer, 0, len(s))
	seen := make(map[QuestionID]bool, len(questions))
	for _, qid := range questions {
		seen[qid] = true
		if a, ok := s[qid]; ok {
			out = append(out, a)
		}
	}
	for qid, a := range s {
		if !seen[qid] {
			out = append(out, a)
		}
	}
	return out
}

// Clone returns an independent copy of the set
func (s AnswerSet) Clone() AnswerSet {
	out := make(AnswerSet, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

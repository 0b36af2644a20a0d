package model

import "time"

// Attempt is a single recorded question attempt outside any game,
// used for the learning analytics batch endpoint
type Attempt struct {
	Username        string     `json:"username"`
	QuestionID      QuestionID `json:"questionId"`
	IsCorrect       bool       `json:"isCorrect"`
	Timestamp       time.Time  `json:"timestamp"`
	SessionID       string     `json:"sessionId,omitempty"`
	ChapterTitle    string     `json:"chapterTitle,omitempty"`
	SubchapterID    string     `json:"subchapterId,omitempty"`
	SubchapterTitle string     `json:"subchapterTitle,omitempty"`
}

// OpponentStats aggregates a user's finished games against one opponent
type OpponentStats struct {
	Opponent   string `json:"opponent"`
	Games      int    `json:"games"`
	Wins       int    `json:"wins"`
	Losses     int    `json:"losses"`
	MyCorrect  int    `json:"myCorrect"`
	OppCorrect int    `json:"oppCorrect"`
}

// OverallStats is a user's win/loss/draw summary across all finished games
type OverallStats struct {
	Wins   int `json:"wins"`
	Losses int `json:"losses"`
	Draws  int `json:"draws"`
}

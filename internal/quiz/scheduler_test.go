package quiz

import (
	"testing"
	"time"

	"hanzidrill/internal/models"
)

var today = models.NewDate(2024, time.March, 10)

func TestScoreAndLabel(t *testing.T) {
	tests := []struct {
		idk       int
		wantScore int
		wantLabel string
	}{
		{idk: 0, wantScore: 4, wantLabel: "Very Strong"},
		{idk: 1, wantScore: 3, wantLabel: "Strong"},
		{idk: 2, wantScore: 2, wantLabel: "Average"},
		{idk: 3, wantScore: 1, wantLabel: "Weak"},
		{idk: 4, wantScore: 0, wantLabel: "Very Weak"},
		{idk: 11, wantScore: 0, wantLabel: "Very Weak"},
	}

	for _, tt := range tests {
		score := Score(tt.idk)
		if score != tt.wantScore {
			t.Errorf("Score(%d) = %d, want %d", tt.idk, score, tt.wantScore)
		}
		if label := ScoreLabel(score); label != tt.wantLabel {
			t.Errorf("ScoreLabel(%d) = %q, want %q", score, label, tt.wantLabel)
		}
	}
}

func TestNextBank(t *testing.T) {
	tests := []struct {
		name  string
		bank  int
		score int
		want  int
	}{
		{name: "promote from 1", bank: 1, score: 4, want: 2},
		{name: "promote from 4", bank: 4, score: 4, want: 5},
		{name: "capped at 5", bank: 5, score: 4, want: 5},
		{name: "one mistake resets", bank: 4, score: 3, want: 1},
		{name: "many mistakes reset", bank: 5, score: 0, want: 1},
		{name: "unset bank treated as 1", bank: 0, score: 4, want: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NextBank(tt.bank, tt.score); got != tt.want {
				t.Errorf("NextBank(%d, %d) = %d, want %d", tt.bank, tt.score, got, tt.want)
			}
		})
	}
}

func TestDueDateLaw(t *testing.T) {
	want := map[int]int{1: 1, 2: 3, 3: 7, 4: 30, 5: 60}
	for bank := MinBank; bank <= MaxBank; bank++ {
		due := DueDate(today, bank)
		if got := due.DaysSince(today); got != want[bank] {
			t.Errorf("DueDate(bank %d) - today = %d days, want %d", bank, got, want[bank])
		}
	}
}

func TestInitialDueDate(t *testing.T) {
	if got := InitialDueDate(today, 9); !got.Equal(today) {
		t.Errorf("InitialDueDate(9 words) = %s, want today", got)
	}
	if got := InitialDueDate(today, 10); !got.Equal(today.AddDays(1)) {
		t.Errorf("InitialDueDate(10 words) = %s, want tomorrow", got)
	}
}

func TestFinish(t *testing.T) {
	testSet := []models.Word{
		{ID: 10, Simp: "你好", Trad: "你好", Bank: 1},
		{ID: 11, Simp: "汉字", Trad: "漢字", Bank: 5},
		{ID: 12, Simp: "学习", Trad: "學習", Bank: 3},
	}
	idk := map[int]int{1: 2, 2: 7}

	res := Finish(testSet, idk, models.CharSetTraditional, today)

	wantScores := []models.ScoreEntry{
		{Char: "你好", ScoreLabel: "Very Strong"},
		{Char: "漢字", ScoreLabel: "Average"},
		{Char: "學習", ScoreLabel: "Very Weak"},
	}
	for i, want := range wantScores {
		if res.Scores[i] != want {
			t.Errorf("Scores[%d] = %+v, want %+v", i, res.Scores[i], want)
		}
	}

	wantSubs := []models.ScoreSubmission{{WordID: 10, Score: 4}, {WordID: 11, Score: 2}, {WordID: 12, Score: 0}}
	for i, want := range wantSubs {
		if res.Submissions[i] != want {
			t.Errorf("Submissions[%d] = %+v, want %+v", i, res.Submissions[i], want)
		}
	}

	wantUpdates := []struct {
		bank int
		days int
	}{{bank: 2, days: 3}, {bank: 1, days: 1}, {bank: 1, days: 1}}
	for i, want := range wantUpdates {
		u := res.Updates[i]
		if u.WordID != testSet[i].ID || u.Bank != want.bank || u.DueDate.DaysSince(today) != want.days {
			t.Errorf("Updates[%d] = %+v, want bank %d due today+%d", i, u, want.bank, want.days)
		}
	}

	if got := len(res.Payload().Scores); got != 3 {
		t.Errorf("len(Payload().Scores) = %d, want 3", got)
	}
}

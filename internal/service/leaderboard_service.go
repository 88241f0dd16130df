package service

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"math"
	"quizcraft_backend/internal/model"
	"quizcraft_backend/internal/util"
	"time"
)

// podiumSize is how many top entries get special styling on the
// leaderboard; the podium is only shown once that many attempts exist.
const podiumSize = 3

type LeaderboardService struct {
	QuizRepo    QuizStore
	AttemptRepo AttemptStore
}

func NewLeaderboardService(quizRepo QuizStore, attemptRepo AttemptStore) *LeaderboardService {
	return &LeaderboardService{
		QuizRepo:    quizRepo,
		AttemptRepo: attemptRepo,
	}
}

type LeaderboardEntry struct {
	Rank           int       `json:"rank"`
	AttemptID      string    `json:"attemptId"`
	StudentName    string    `json:"studentName"`
	StudentEmail   string    `json:"studentEmail"`
	Score          int       `json:"score"`
	TotalQuestions int       `json:"totalQuestions"`
	Percentage     int       `json:"percentage"`
	CompletedAt    time.Time `json:"completedAt"`
}

type LeaderboardStats struct {
	Average int `json:"average"`
	Highest int `json:"highest"`
	Lowest  int `json:"lowest"`
}

type Leaderboard struct {
	Quiz    *model.Quiz        `json:"quiz"`
	Entries []LeaderboardEntry `json:"entries"`
	Stats   LeaderboardStats   `json:"stats"`
	Podium  []LeaderboardEntry `json:"podium,omitempty"`
}

func (s *LeaderboardService) GetLeaderboard(quizID string) (*Leaderboard, error) {
	quiz, err := s.QuizRepo.FindByID(quizID)
	if err != nil {
		return nil, util.ErrQuizNotFound
	}

	attempts, err := s.AttemptRepo.ListByQuiz(quizID)
	if err != nil {
		return nil, err
	}

	entries := buildEntries(attempts)
	board := &Leaderboard{
		Quiz:    quiz,
		Entries: entries,
		Stats:   computeStats(attempts),
	}
	if len(entries) >= podiumSize {
		board.Podium = entries[:podiumSize]
	}
	return board, nil
}

// ExportCSV renders the leaderboard as a CSV file. Fields pass through
// encoding/csv, so names containing commas or quotes stay aligned.
func (s *LeaderboardService) ExportCSV(quizID string) (string, []byte, error) {
	board, err := s.GetLeaderboard(quizID)
	if err != nil {
		return "", nil, err
	}

	data, err := renderCSV(board.Entries)
	if err != nil {
		return "", nil, err
	}

	filename := fmt.Sprintf("%s-leaderboard.csv", board.Quiz.Title)
	return filename, data, nil
}

// buildEntries assumes attempts arrive pre-sorted by the repository
// (score desc, submission order on ties) and assigns 1-based ranks.
func buildEntries(attempts []model.QuizAttempt) []LeaderboardEntry {
	entries := make([]LeaderboardEntry, len(attempts))
	for i, a := range attempts {
		name := a.StudentName
		if name == "" {
			name = "Anonymous"
		}
		email := a.StudentEmail
		if email == "" {
			email = "N/A"
		}
		entries[i] = LeaderboardEntry{
			Rank:           i + 1,
			AttemptID:      a.ID,
			StudentName:    name,
			StudentEmail:   email,
			Score:          a.Score,
			TotalQuestions: a.TotalQuestions,
			Percentage:     a.Percentage(),
			CompletedAt:    a.CompletedAt,
		}
	}
	return entries
}

func computeStats(attempts []model.QuizAttempt) LeaderboardStats {
	if len(attempts) == 0 {
		return LeaderboardStats{}
	}

	sum := 0.0
	highest := math.Inf(-1)
	lowest := math.Inf(1)
	for _, a := range attempts {
		pct := float64(a.Score) / float64(a.TotalQuestions) * 100
		sum += pct
		highest = math.Max(highest, pct)
		lowest = math.Min(lowest, pct)
	}

	return LeaderboardStats{
		Average: int(math.Round(sum / float64(len(attempts)))),
		Highest: int(math.Round(highest)),
		Lowest:  int(math.Round(lowest)),
	}
}

func renderCSV(entries []LeaderboardEntry) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write([]string{"Rank", "Student Name", "Email", "Score", "Percentage", "Completed Date"}); err != nil {
		return nil, err
	}

	for _, e := range entries {
		row := []string{
			fmt.Sprintf("%d", e.Rank),
			e.StudentName,
			e.StudentEmail,
			fmt.Sprintf("%d/%d", e.Score, e.TotalQuestions),
			fmt.Sprintf("%d%%", e.Percentage),
			e.CompletedAt.Format(util.DateFormat),
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

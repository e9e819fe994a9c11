package quiz

import "time"

type Category struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	Slug        string    `json:"slug"`
	Icon        *string   `json:"icon"`
	Color       *string   `json:"color"`
	IsActive    bool      `json:"isActive"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type Difficulty struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"` // easy|medium|hard
	Label     string    `json:"label"`
	Points    int       `json:"points"`
	Color     *string   `json:"color"`
	Order     int       `json:"order"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Option struct {
	ID         string `json:"id"`
	Text       string `json:"text"`
	IsCorrect  bool   `json:"isCorrect"`
	Order      int    `json:"order"`
	QuestionID string `json:"questionId"`
}

// Question carries its relations when loaded through the store.
type Question struct {
	ID           string      `json:"id"`
	Title        string      `json:"title"`
	Question     string      `json:"question"`
	Code         *string     `json:"code"`
	Explanation  string      `json:"explanation"`
	IsActive     bool        `json:"isActive"`
	CategoryID   string      `json:"categoryId"`
	DifficultyID string      `json:"difficultyId"`
	CreatedAt    time.Time   `json:"createdAt"`
	UpdatedAt    time.Time   `json:"updatedAt"`
	Options      []Option    `json:"options,omitempty"`
	Category     *Category   `json:"category,omitempty"`
	Difficulty   *Difficulty `json:"difficulty,omitempty"`
}

// CorrectOption returns the first option flagged correct, or nil.
func (q Question) CorrectOption() *Option {
	for i := range q.Options {
		if q.Options[i].IsCorrect {
			o := q.Options[i]
			return &o
		}
	}
	return nil
}

func (q Question) option(id string) (Option, bool) {
	for _, o := range q.Options {
		if o.ID == id {
			return o, true
		}
	}
	return Option{}, false
}

// PublicOption is an Option as sent before the question is answered.
type PublicOption struct {
	ID         string `json:"id"`
	Text       string `json:"text"`
	Order      int    `json:"order"`
	QuestionID string `json:"questionId"`
}

// PublicQuestion is a Question with every correctness flag removed.
type PublicQuestion struct {
	ID           string         `json:"id"`
	Title        string         `json:"title"`
	Question     string         `json:"question"`
	Code         *string        `json:"code"`
	IsActive     bool           `json:"isActive"`
	CategoryID   string         `json:"categoryId"`
	DifficultyID string         `json:"difficultyId"`
	Options      []PublicOption `json:"options"`
	Category     *Category      `json:"category,omitempty"`
	Difficulty   *Difficulty    `json:"difficulty,omitempty"`
}

// Public strips correctness and the explanation.
func (q Question) Public() PublicQuestion {
	opts := make([]PublicOption, 0, len(q.Options))
	for _, o := range q.Options {
		opts = append(opts, PublicOption{ID: o.ID, Text: o.Text, Order: o.Order, QuestionID: o.QuestionID})
	}
	return PublicQuestion{
		ID:           q.ID,
		Title:        q.Title,
		Question:     q.Question,
		Code:         q.Code,
		IsActive:     q.IsActive,
		CategoryID:   q.CategoryID,
		DifficultyID: q.DifficultyID,
		Options:      opts,
		Category:     q.Category,
		Difficulty:   q.Difficulty,
	}
}

func PublicQuestions(qs []Question) []PublicQuestion {
	out := make([]PublicQuestion, 0, len(qs))
	for _, q := range qs {
		out = append(out, q.Public())
	}
	return out
}

type User struct {
	ID            string    `json:"id"`
	Email         *string   `json:"email"`
	Username      *string   `json:"username"`
	DisplayName   *string   `json:"displayName"`
	Avatar        *string   `json:"avatar"`
	IsAnonymous   bool      `json:"isAnonymous"`
	TotalSessions int       `json:"totalSessions"`
	TotalScore    int       `json:"totalScore"`
	BestScore     float64   `json:"bestScore"`
	Streak        int       `json:"streak"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
	LastActiveAt  time.Time `json:"lastActiveAt"`
}

type DeviceType string

const (
	DeviceMobile  DeviceType = "mobile"
	DeviceTablet  DeviceType = "tablet"
	DeviceDesktop DeviceType = "desktop"
)

type Session struct {
	ID             string         `json:"id"`
	SessionToken   string         `json:"sessionToken"`
	StartedAt      time.Time      `json:"startedAt"`
	CompletedAt    *time.Time     `json:"completedAt"`
	IsCompleted    bool           `json:"isCompleted"`
	TotalQuestions int            `json:"totalQuestions"`
	CorrectAnswers int            `json:"correctAnswers"`
	Score          float64        `json:"score"`
	TimeSpent      *int           `json:"timeSpent"`
	UserID         string         `json:"userId"`
	UserAgent      string         `json:"userAgent"`
	IPAddress      string         `json:"ipAddress"`
	DeviceType     DeviceType     `json:"deviceType"`
	Answers        []AnswerDetail `json:"answers,omitempty"`
}

// Answer is immutable once written.
type Answer struct {
	ID         string    `json:"id"`
	IsCorrect  bool      `json:"isCorrect"`
	TimeSpent  *int      `json:"timeSpent"`
	AnsweredAt time.Time `json:"answeredAt"`
	SessionID  string    `json:"sessionId"`
	QuestionID string    `json:"questionId"`
	OptionID   string    `json:"optionId"`
	UserID     string    `json:"userId"`
}

// AnswerDetail is an Answer joined to its question (with category and
// difficulty) and the chosen option.
type AnswerDetail struct {
	Answer
	Question Question `json:"question"`
	Option   Option   `json:"option"`
}

type QuestionStats struct {
	ID             string    `json:"id"`
	QuestionID     string    `json:"questionId"`
	TotalAnswers   int       `json:"totalAnswers"`
	CorrectAnswers int       `json:"correctAnswers"`
	SuccessRate    float64   `json:"successRate"`
	AverageTime    *float64  `json:"averageTime"`
	LastUpdated    time.Time `json:"lastUpdated"`
	TimeSamples    int       `json:"-"`
}

// RequestMeta is the caller context recorded on a new session.
type RequestMeta struct {
	UserAgent string
	IPAddress string
}

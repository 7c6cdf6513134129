package models

// User is the profile the backend returns alongside a token.
type User struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	IsAdmin  bool   `json:"is_admin"`
}

// Session is the authenticated identity held by the client.
type Session struct {
	User  User   `json:"user"`
	Token string `json:"token"`
}

// Action names a tool workflow as reported in history entries.
type Action string

const (
	ActionSummary        Action = "summary"
	ActionTranslation    Action = "translation"
	ActionQuiz           Action = "quiz"
	ActionPDFSummary     Action = "pdf_summary"
	ActionPDFTranslation Action = "pdf_translation"
	ActionPDFQuiz        Action = "pdf_quiz"
)

// Tool maps pdf_* actions onto the tool they belong to.
func (a Action) Tool() Action {
	switch a {
	case ActionPDFSummary:
		return ActionSummary
	case ActionPDFTranslation:
		return ActionTranslation
	case ActionPDFQuiz:
		return ActionQuiz
	default:
		return a
	}
}

type Question struct {
	Question string   `json:"question"`
	Options  []string `json:"options"`
	Answer   string   `json:"answer"`
}

// QuizPayload mirrors the generator output; Error is set instead of Quiz
// when generation failed upstream.
type QuizPayload struct {
	Quiz  []Question `json:"quiz"`
	Error string     `json:"error,omitempty"`
}

// SummaryResult is returned by both the URL and the PDF summary endpoints.
// URL results carry Title, PDF results carry Filename.
type SummaryResult struct {
	ArticleID  int    `json:"article_id"`
	Title      string `json:"title,omitempty"`
	Filename   string `json:"filename,omitempty"`
	Summary    string `json:"summary"`
	TextLength int    `json:"text_length,omitempty"`
}

type TranslationResult struct {
	ArticleID     int    `json:"article_id"`
	Title         string `json:"title,omitempty"`
	OriginalTitle string `json:"original_title,omitempty"`
	Filename      string `json:"filename,omitempty"`
	Translation   string `json:"translation"`
	TextLength    int    `json:"text_length,omitempty"`
}

type QuizResult struct {
	ArticleID  int         `json:"article_id"`
	Title      string      `json:"title,omitempty"`
	Filename   string      `json:"filename,omitempty"`
	Quiz       QuizPayload `json:"quiz"`
	TextLength int         `json:"text_length,omitempty"`
}

// Heading returns whichever of title or filename the backend filled in.
func (r SummaryResult) Heading() string { return firstNonEmpty(r.Title, r.Filename) }

func (r TranslationResult) Heading() string {
	return firstNonEmpty(r.Title, r.OriginalTitle, r.Filename)
}

func (r QuizResult) Heading() string { return firstNonEmpty(r.Title, r.Filename) }

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

type HistoryEntry struct {
	ID        int       `json:"id"`
	Title     string    `json:"title"`
	Action    Action    `json:"action"`
	URL       string    `json:"url"`
	CreatedAt Timestamp `json:"created_at"`
}

type QuizAttempt struct {
	ID          int       `json:"id"`
	ArticleID   int       `json:"article_id"`
	Score       float64   `json:"score"`
	SubmittedAt Timestamp `json:"submitted_at"`
}

type QuizAnswer struct {
	Question   string `json:"question"`
	UserAnswer string `json:"user_answer"`
}

type QuizSubmission struct {
	ArticleID int          `json:"article_id"`
	Answers   []QuizAnswer `json:"answers"`
}

type QuizSubmitResult struct {
	Score          float64   `json:"score"`
	TotalQuestions int       `json:"total_questions"`
	CorrectAnswers int       `json:"correct_answers"`
	SubmittedAt    Timestamp `json:"submitted_at"`
	Status         string    `json:"status"`
}

type AdminStats struct {
	TotalUsers        int     `json:"total_users"`
	TotalArticles     int     `json:"total_articles"`
	TotalSummaries    int     `json:"total_summaries"`
	TotalTranslations int     `json:"total_translations"`
	TotalQuizAttempts int     `json:"total_quiz_attempts"`
	AverageQuizScore  float64 `json:"average_quiz_score"`
}

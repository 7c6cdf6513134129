// Package quiz drives a generated quiz one question at a time: the player
// picks an option, sees whether it was right, moves on, and gets a score at
// the end. It knows nothing about how the quiz was produced or displayed.
package quiz

import "github.com/wikismart/wikismart/internal/models"

// Question is one multiple-choice item. CorrectAnswer must be one of Options.
type Question struct {
	Text          string
	Options       []string
	CorrectAnswer string
}

// FromModels converts the wire representation into engine questions.
func FromModels(in []models.Question) []Question {
	out := make([]Question, 0, len(in))
	for _, q := range in {
		out = append(out, Question{Text: q.Question, Options: append([]string(nil), q.Options...), CorrectAnswer: q.Answer})
	}
	return out
}

// State is the phase of an attempt at its current question.
type State int

const (
	AwaitingAnswer State = iota
	Revealed
	Finished
)

// String returns the snake_case name of the state.
func (s State) String() string {
	switch s {
	case AwaitingAnswer:
		return "awaiting_answer"
	case Revealed:
		return "revealed"
	case Finished:
		return "finished"
	default:
		return "unknown"
	}
}

// Session is a single attempt over a fixed quiz. It is owned by one caller
// and is not safe for concurrent use.
type Session struct {
	questions []Question
	index     int
	selected  map[int]string
	revealed  bool
	finished  bool
}

// Snapshot is a value copy of the attempt state.
type Snapshot struct {
	Index    int
	Selected map[int]string
	Revealed bool
	Finished bool
}

// Start validates the whole quiz up front and returns a session waiting for
// the first answer.
func Start(questions []Question) (*Session, error) {
	if err := Validate(questions); err != nil {
		return nil, err
	}
	qs := make([]Question, len(questions))
	for i, q := range questions {
		qs[i] = Question{Text: q.Text, Options: append([]string(nil), q.Options...), CorrectAnswer: q.CorrectAnswer}
	}
	s := &Session{questions: qs}
	s.Restart()
	return s, nil
}

// Validate reports the first structural problem in questions.
func Validate(questions []Question) error {
	if len(questions) == 0 {
		return &InvalidQuizError{Index: -1, Reason: "no questions"}
	}
	for i, q := range questions {
		if len(q.Options) < 2 {
			return &InvalidQuizError{Index: i, Reason: "fewer than 2 options"}
		}
		if !contains(q.Options, q.CorrectAnswer) {
			return &InvalidQuizError{Index: i, Reason: "correct answer is not among the options"}
		}
	}
	return nil
}

// SelectAnswer records option for the current question and reveals it.
// Once revealed the answer is final: further calls are no-ops until Advance.
func (s *Session) SelectAnswer(option string) error {
	if s.revealed || s.finished {
		return nil
	}
	if !contains(s.questions[s.index].Options, option) {
		return &InvalidSelectionError{Index: s.index, Option: option}
	}
	s.selected[s.index] = option
	s.revealed = true
	return nil
}

// Advance moves past a revealed question. On the last question it finishes
// the attempt and keeps the index where it is.
func (s *Session) Advance() error {
	if s.finished {
		return nil
	}
	if !s.revealed {
		return ErrNotRevealed
	}
	if s.index == len(s.questions)-1 {
		s.finished = true
		return nil
	}
	s.index++
	s.revealed = false
	return nil
}

// Score returns the rounded percentage of correct answers once finished.
func (s *Session) Score() (int, error) {
	if !s.finished {
		return 0, ErrNotFinished
	}
	return Percent(s.CorrectCount(), len(s.questions)), nil
}

// Restart clears every selection and returns to the first question.
func (s *Session) Restart() {
	s.index = 0
	s.selected = map[int]string{}
	s.revealed = false
	s.finished = false
}

// State derives the phase from the revealed and finished flags.
func (s *Session) State() State {
	switch {
	case s.finished:
		return Finished
	case s.revealed:
		return Revealed
	default:
		return AwaitingAnswer
	}
}

// Index is the zero-based position of the current question.
func (s *Session) Index() int { return s.index }

// Len is the number of questions in the quiz.
func (s *Session) Len() int { return len(s.questions) }

// Revealed reports whether the current question has been answered.
func (s *Session) Revealed() bool { return s.revealed }

// Finished reports whether the attempt is over and Score is available.
func (s *Session) Finished() bool { return s.finished }

// Current returns a copy of the question at the current index.
func (s *Session) Current() Question {
	q := s.questions[s.index]
	q.Options = append([]string(nil), q.Options...)
	return q
}

// Selected returns the option recorded for question i, if any.
func (s *Session) Selected(i int) (string, bool) {
	v, ok := s.selected[i]
	return v, ok
}

// IsCorrect reports whether question i was answered with its correct option.
// Unanswered questions are incorrect.
func (s *Session) IsCorrect(i int) bool {
	if i < 0 || i >= len(s.questions) {
		return false
	}
	v, ok := s.selected[i]
	return ok && v == s.questions[i].CorrectAnswer
}

// LastCorrect reports whether the revealed answer at the current index is
// right. It is false while awaiting an answer.
func (s *Session) LastCorrect() bool {
	return (s.revealed || s.finished) && s.IsCorrect(s.index)
}

// CorrectCount counts the questions answered correctly so far.
func (s *Session) CorrectCount() int {
	n := 0
	for i := range s.questions {
		if s.IsCorrect(i) {
			n++
		}
	}
	return n
}

// Snapshot copies the attempt state; later moves do not affect it.
func (s *Session) Snapshot() Snapshot {
	sel := make(map[int]string, len(s.selected))
	for k, v := range s.selected {
		sel[k] = v
	}
	return Snapshot{Index: s.index, Selected: sel, Revealed: s.revealed, Finished: s.finished}
}

// Submission builds the payload for recording this attempt with the backend.
// Unanswered questions are sent with an empty answer.
func (s *Session) Submission(articleID int) models.QuizSubmission {
	answers := make([]models.QuizAnswer, 0, len(s.questions))
	for i, q := range s.questions {
		answers = append(answers, models.QuizAnswer{Question: q.Text, UserAnswer: s.selected[i]})
	}
	return models.QuizSubmission{ArticleID: articleID, Answers: answers}
}

func contains(options []string, v string) bool {
	for _, o := range options {
		if o == v {
			return true
		}
	}
	return false
}

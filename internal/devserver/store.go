package devserver

import (
	"sort"
	"sync"
	"time"

	"github.com/wikismart/wikismart/internal/models"
)

type User struct {
	ID        int
	Username  string
	Email     string
	PassHash  []byte
	IsAdmin   bool
	CreatedAt time.Time
}

// Article is one tool invocation; history is the list of a user's articles.
type Article struct {
	ID        int
	OwnerID   int
	Title     string
	URL       string
	Action    models.Action
	Content   string
	Quiz      []models.Question
	CreatedAt time.Time
}

type Attempt struct {
	ID          int
	OwnerID     int
	ArticleID   int
	Score       float64
	SubmittedAt time.Time
}

type memoryStore struct {
	mu           sync.RWMutex
	nextID       int
	usersByEmail map[string]*User
	articles     map[int]*Article
	attempts     []*Attempt
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		usersByEmail: map[string]*User{},
		articles:     map[int]*Article{},
	}
}

func (s *memoryStore) id() int {
	s.nextID++
	return s.nextID
}

func (s *memoryStore) FindUserByEmail(email string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if u, ok := s.usersByEmail[email]; ok {
		copy := *u
		return &copy, nil
	}
	return nil, nil
}

func (s *memoryStore) AddUser(u *User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.usersByEmail[u.Email]; ok {
		return NewConflictError("Email already registered")
	}
	u.ID = s.id()
	copy := *u
	s.usersByEmail[u.Email] = &copy
	return nil
}

func (s *memoryStore) addArticle(a *Article) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a.ID = s.id()
	s.articles[a.ID] = a
}

func (s *memoryStore) getArticle(id int) *Article {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.articles[id]
}

// listArticles returns a user's articles newest first.
func (s *memoryStore) listArticles(ownerID int) []*Article {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Article, 0, len(s.articles))
	for _, a := range s.articles {
		if a.OwnerID == ownerID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out
}

func (s *memoryStore) addAttempt(a *Attempt) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a.ID = s.id()
	s.attempts = append(s.attempts, a)
}

func (s *memoryStore) listAttempts(ownerID int) []*Attempt {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Attempt, 0, len(s.attempts))
	for i := len(s.attempts) - 1; i >= 0; i-- {
		if s.attempts[i].OwnerID == ownerID {
			out = append(out, s.attempts[i])
		}
	}
	return out
}

func (s *memoryStore) stats() models.AdminStats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st := models.AdminStats{TotalUsers: len(s.usersByEmail), TotalArticles: len(s.articles), TotalQuizAttempts: len(s.attempts)}
	for _, a := range s.articles {
		switch a.Action.Tool() {
		case models.ActionSummary:
			st.TotalSummaries++
		case models.ActionTranslation:
			st.TotalTranslations++
		}
	}
	if len(s.attempts) > 0 {
		var sum float64
		for _, a := range s.attempts {
			sum += a.Score
		}
		st.AverageQuizScore = roundTo2(sum / float64(len(s.attempts)))
	}
	return st
}

package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
	"timed-quiz-service/internal/domain"
)

// StaticQuizLoader serves quizzes from an in-memory map (quiz files, tests, demos).
type StaticQuizLoader struct {
	quizzes map[string]domain.Quiz
}

func NewStaticQuizLoader(quizzes map[string]domain.Quiz) *StaticQuizLoader {
	return &StaticQuizLoader{quizzes: quizzes}
}

func (l *StaticQuizLoader) LoadQuiz(_ context.Context, quizID string) (domain.Quiz, error) {
	if quiz, ok := l.quizzes[quizID]; ok {
		return quiz, nil
	}
	return domain.Quiz{}, domain.ErrQuizNotFound
}

// IDs lists the quizzes the loader can serve.
func (l *StaticQuizLoader) IDs() []string {
	ids := make([]string, 0, len(l.quizzes))
	for id := range l.quizzes {
		ids = append(ids, id)
	}
	return ids
}

// ReadQuizFile decodes a quiz from a .yaml/.yml or .json file.
func ReadQuizFile(path string) (domain.Quiz, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.Quiz{}, err
	}
	var quiz domain.Quiz
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		err = json.Unmarshal(data, &quiz)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &quiz)
	default:
		return domain.Quiz{}, fmt.Errorf("unsupported quiz file %s", path)
	}
	if err != nil {
		return domain.Quiz{}, fmt.Errorf("decode quiz %s: %w", path, err)
	}
	if quiz.ID == "" {
		quiz.ID = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return quiz, nil
}

// LoadQuizDir reads every quiz file in dir into a static loader.
func LoadQuizDir(dir string) (*StaticQuizLoader, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	quizzes := make(map[string]domain.Quiz)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".json", ".yaml", ".yml":
		default:
			continue
		}
		quiz, err := ReadQuizFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, err
		}
		quizzes[quiz.ID] = quiz
	}
	return NewStaticQuizLoader(quizzes), nil
}

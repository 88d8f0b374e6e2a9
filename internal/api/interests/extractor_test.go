package interests

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/koushik8686/GeoGuide-sub000/internal/types"
)

// MockClassifier is a mock implementation of Classifier
type MockClassifier struct {
	mock.Mock
}

func (m *MockClassifier) Classify(ctx context.Context, prompt string) (string, error) {
	args := m.Called(ctx, prompt)
	return args.String(0), args.Error(1)
}

func newTestService(c Classifier, timeout time.Duration) *ServiceImpl {
	logger := slog.Default()
	return NewServiceImpl(logger, NewClassifierStage(c, timeout, logger), KeywordStage{})
}

func TestExtract(t *testing.T) {
	ctx := context.Background()

	t.Run("Classifier success", func(t *testing.T) {
		c := new(MockClassifier)
		c.On("Classify", mock.Anything, mock.AnythingOfType("string")).Return(`["sushi","restaurant"]`, nil).Once()

		got := newTestService(c, time.Second).Extract(ctx, "find me a good sushi place")

		assert.Equal(t, types.InterestSet{"sushi", "restaurant"}, got.Tags)
		assert.Equal(t, types.InterestSourceClassifier, got.Source)
		c.AssertExpectations(t)
	})

	t.Run("Classifier error falls back to keywords", func(t *testing.T) {
		c := new(MockClassifier)
		c.On("Classify", mock.Anything, mock.Anything).Return("", errors.New("quota exceeded")).Once()

		got := newTestService(c, time.Second).Extract(ctx, "find me a good sushi place")

		assert.Equal(t, types.InterestSet{"sushi"}, got.Tags)
		assert.Equal(t, types.InterestSourceKeywords, got.Source)
		c.AssertExpectations(t)
	})

	t.Run("Malformed answer falls back to keywords", func(t *testing.T) {
		c := new(MockClassifier)
		c.On("Classify", mock.Anything, mock.Anything).Return("sushi, I guess", nil).Once()

		got := newTestService(c, time.Second).Extract(ctx, "dentist near me")

		assert.Equal(t, types.InterestSet{"dentist"}, got.Tags)
		assert.Equal(t, types.InterestSourceKeywords, got.Source)
	})

	t.Run("Empty answer falls back to keywords", func(t *testing.T) {
		c := new(MockClassifier)
		c.On("Classify", mock.Anything, mock.Anything).Return(`[]`, nil).Once()

		got := newTestService(c, time.Second).Extract(ctx, "dentist near me")

		assert.Equal(t, types.InterestSet{"dentist"}, got.Tags)
		assert.Equal(t, types.InterestSourceKeywords, got.Source)
	})

	t.Run("Classifier timeout falls back to keywords", func(t *testing.T) {
		c := new(MockClassifier)
		c.On("Classify", mock.Anything, mock.Anything).
			Run(func(args mock.Arguments) {
				<-args.Get(0).(context.Context).Done()
			}).
			Return("", context.DeadlineExceeded).Once()

		start := time.Now()
		got := newTestService(c, 20*time.Millisecond).Extract(ctx, "dentist near me")

		assert.Less(t, time.Since(start), time.Second)
		assert.Equal(t, types.InterestSet{"dentist"}, got.Tags)
		assert.Equal(t, types.InterestSourceKeywords, got.Source)
	})

	t.Run("Nothing matches returns default", func(t *testing.T) {
		c := new(MockClassifier)
		c.On("Classify", mock.Anything, mock.Anything).Return("", errors.New("down")).Once()

		got := newTestService(c, time.Second).Extract(ctx, "qwerty zxcv")

		assert.Equal(t, types.InterestSet{types.DefaultInterest}, got.Tags)
		assert.Equal(t, types.InterestSourceDefault, got.Source)
	})

	t.Run("Empty query skips every stage", func(t *testing.T) {
		c := new(MockClassifier)

		got := newTestService(c, time.Second).Extract(ctx, "")

		assert.True(t, got.Tags.IsDefault())
		c.AssertNotCalled(t, "Classify", mock.Anything, mock.Anything)
	})

	t.Run("Keywords only", func(t *testing.T) {
		got := NewServiceImpl(slog.Default(), KeywordStage{}).Extract(ctx, "pizza")
		assert.Equal(t, types.InterestSet{"pizza"}, got.Tags)
	})
}

func TestClassifierPrompt(t *testing.T) {
	p := classifierPrompt("ramen please")
	assert.Contains(t, p, `"ramen please"`)
	assert.Contains(t, p, "sushi")
	assert.Contains(t, p, "JSON array")
}

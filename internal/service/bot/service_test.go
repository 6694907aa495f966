package bot

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brainovision/campus-assistant/backend/internal/knowledge"
	"github.com/brainovision/campus-assistant/backend/internal/model/chat"
	"github.com/brainovision/campus-assistant/backend/internal/service/site"
	"github.com/brainovision/campus-assistant/backend/internal/store"
)

const testSite = "https://example.edu"

type fakeScraper struct {
	pages    map[string][]string
	headings []string
	headErr  error
	text     string
	textErr  error
}

func (f *fakeScraper) URL(path string) string { return testSite + "/" + path }

func (f *fakeScraper) ScrapeSite(context.Context) map[string][]string { return f.pages }

func (f *fakeScraper) Headings(context.Context, string, int) ([]string, error) {
	return f.headings, f.headErr
}

func (f *fakeScraper) PageText(context.Context, string) (string, error) {
	return f.text, f.textErr
}

type memoryStore struct {
	intents []knowledge.Intent
	err     error
}

func (m *memoryStore) ReplaceIntents(_ context.Context, intents []knowledge.Intent) error {
	if m.err != nil {
		return m.err
	}
	m.intents = intents
	return nil
}

func (m *memoryStore) LoadIntents(context.Context) ([]knowledge.Intent, error) {
	if len(m.intents) == 0 {
		return nil, store.ErrNotTrained
	}
	return m.intents, nil
}

type fakeAnswerer struct {
	reply   string
	err     error
	calls   int
	history []chat.Message
}

func (f *fakeAnswerer) Answer(_ context.Context, history []chat.Message, _, _ string) (string, error) {
	f.calls++
	f.history = history
	return f.reply, f.err
}

func newTestService(t *testing.T, sc *fakeScraper, st IntentStore, opts ...Option) (*Service, *knowledge.Base) {
	t.Helper()
	base, err := knowledge.Load(testSite)
	require.NoError(t, err)
	opts = append([]Option{WithRand(func(int) int { return 0 })}, opts...)
	return NewService(base, sc, st, opts...), base
}

func TestRespondTopicAnswers(t *testing.T) {
	svc, base := newTestService(t, &fakeScraper{}, &memoryStore{})

	reply, err := svc.Respond(context.Background(), "  PYTON ")
	require.NoError(t, err)
	assert.Equal(t, base.Topics.Python, reply)

	reply, err = svc.Respond(context.Background(), "contact")
	require.NoError(t, err)
	assert.Equal(t, base.Topics.Contact, reply)
}

func TestRespondInternshipConsultsSite(t *testing.T) {
	cases := []struct {
		name    string
		scraper *fakeScraper
		want    func(knowledge.Topics) string
	}{
		{"page mentions internship", &fakeScraper{text: "our internship program"}, func(t knowledge.Topics) string { return t.InternshipSite }},
		{"page without mention", &fakeScraper{text: "welcome"}, func(t knowledge.Topics) string { return t.Internship }},
		{"page missing", &fakeScraper{textErr: &site.StatusError{Code: 404}}, func(t knowledge.Topics) string { return t.Internship }},
		{"site unreachable", &fakeScraper{textErr: errors.New("dial tcp: refused")}, func(t knowledge.Topics) string { return t.InternshipUnavailable }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc, base := newTestService(t, tc.scraper, &memoryStore{})
			reply, err := svc.Respond(context.Background(), "intership")
			require.NoError(t, err)
			assert.Equal(t, tc.want(base.Topics), reply)
		})
	}
}

func TestRespondCoursesListsHeadings(t *testing.T) {
	sc := &fakeScraper{headings: []string{"A1", "B2", "C3", "D4", "E5", "F6", "G7", "H8"}}
	svc, base := newTestService(t, sc, &memoryStore{})

	reply, err := svc.Respond(context.Background(), "what courses")
	require.NoError(t, err)
	assert.Equal(t, base.CoursesList([]string{"A1", "B2", "C3", "D4", "E5", "F6"}), reply)
	assert.NotContains(t, reply, "G7")

	sc.headings = nil
	reply, _ = svc.Respond(context.Background(), "what courses")
	assert.Equal(t, base.Topics.Courses, reply)

	sc.headErr = errors.New("timeout")
	reply, _ = svc.Respond(context.Background(), "what courses")
	assert.Equal(t, base.Topics.CoursesUnavailable, reply)
}

func TestRespondFallsBackWhenUntrained(t *testing.T) {
	svc, base := newTestService(t, &fakeScraper{}, &memoryStore{})

	reply, err := svc.Respond(context.Background(), "hello there")
	require.NoError(t, err)
	assert.Equal(t, base.Fallbacks[0], reply)
	assert.Contains(t, reply, testSite)
}

func TestTrainThenRespondUsesModel(t *testing.T) {
	st := &memoryStore{}
	svc, base := newTestService(t, &fakeScraper{pages: map[string][]string{}}, st)
	assert.False(t, svc.Trained())

	n, err := svc.Train(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 12, n)
	assert.Len(t, st.intents, 12)
	assert.True(t, svc.Trained())

	reply, err := svc.Respond(context.Background(), "hello there")
	require.NoError(t, err)
	var greeting knowledge.Intent
	for _, in := range base.Build(nil) {
		if in.Tag == "greeting" {
			greeting = in
		}
	}
	assert.Equal(t, greeting.Responses[0], reply)
}

func TestTrainReportsStoreFailure(t *testing.T) {
	svc, _ := newTestService(t, &fakeScraper{}, &memoryStore{err: errors.New("disk full")})

	_, err := svc.Train(context.Background())
	assert.ErrorContains(t, err, "disk full")
	assert.False(t, svc.Trained())
}

func TestReload(t *testing.T) {
	empty, _ := newTestService(t, &fakeScraper{}, &memoryStore{})
	assert.ErrorIs(t, empty.Reload(context.Background()), store.ErrNotTrained)

	st := &memoryStore{intents: []knowledge.Intent{{Tag: "fees", Patterns: []string{"course fees"}, Responses: []string{"Fees vary."}}}}
	svc, _ := newTestService(t, &fakeScraper{}, st)
	require.NoError(t, svc.Reload(context.Background()))

	reply, err := svc.Respond(context.Background(), "fees")
	require.NoError(t, err)
	assert.Equal(t, "Fees vary.", reply)
}

func TestRespondConsultsAnswererBeforeFallback(t *testing.T) {
	ans := &fakeAnswerer{reply: "From the model."}
	svc, base := newTestService(t, &fakeScraper{}, &memoryStore{}, WithAnswerer(ans))

	reply, err := svc.Respond(context.Background(), "hello there")
	require.NoError(t, err)
	assert.Equal(t, "From the model.", reply)

	ans.err = errors.New("quota")
	reply, err = svc.Respond(context.Background(), "hello there")
	require.NoError(t, err)
	assert.Equal(t, base.Fallbacks[0], reply)
	assert.Equal(t, 2, ans.calls)
}

func TestChatWithHistoryPassesEarlierTurnsToAnswerer(t *testing.T) {
	ans := &fakeAnswerer{reply: "Yes, in the evenings."}
	svc, _ := newTestService(t, &fakeScraper{}, &memoryStore{}, WithAnswerer(ans))

	history := []chat.Message{
		{Author: chat.AuthorUser, Text: "hello there"},
		{Author: chat.AuthorBot, Text: "Hi! How can I help?"},
	}
	resp, err := svc.ChatWithHistory(context.Background(), history, "are there weekend batches")
	require.NoError(t, err)
	assert.Equal(t, chat.Response{Status: chat.StatusSuccess, Response: "Yes, in the evenings."}, resp)
	assert.Equal(t, history, ans.history)

	_, err = svc.Chat(context.Background(), "are there weekend batches")
	require.NoError(t, err)
	assert.Nil(t, ans.history)
}

func TestRespondHonoursCancelledContext(t *testing.T) {
	svc, _ := newTestService(t, &fakeScraper{}, &memoryStore{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := svc.Respond(ctx, "hello")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestWelcomeAndErrorReply(t *testing.T) {
	svc, _ := newTestService(t, &fakeScraper{}, &memoryStore{})
	assert.True(t, strings.HasPrefix(svc.Welcome(), "Welcome to Brainovision Solutions!"))
	assert.Equal(t, "I apologize for the inconvenience. Please visit our website directly: "+testSite, svc.ErrorReply())
}

func TestChatWrapsReplies(t *testing.T) {
	svc, base := newTestService(t, &fakeScraper{}, &memoryStore{})

	resp, err := svc.Chat(context.Background(), "   ")
	require.NoError(t, err)
	assert.True(t, resp.OK())
	assert.Equal(t, base.Welcome, resp.Response)

	resp, err = svc.Chat(context.Background(), "how do I contact you")
	require.NoError(t, err)
	assert.Equal(t, chat.StatusSuccess, resp.Status)
	assert.Equal(t, base.Topics.Contact, resp.Response)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = svc.Chat(ctx, "hello")
	assert.ErrorIs(t, err, context.Canceled)
}

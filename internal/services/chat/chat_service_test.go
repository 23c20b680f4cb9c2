package chat

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/AjjayK/Kronia-Pesticide-LLM/internal/models"
)

type fakeSearch struct {
	response   *models.SearchResponse
	err        error
	lastQuery  string
	lastFilter string
	lastLimit  int
}

func (f *fakeSearch) Search(ctx context.Context, query, productFilter string, limit int) (*models.SearchResponse, error) {
	f.lastQuery = query
	f.lastFilter = productFilter
	f.lastLimit = limit
	if f.err != nil {
		return nil, f.err
	}
	return f.response, nil
}

type fakeClassifier struct {
	categories models.CategorySet
	err        error
}

func (f *fakeClassifier) Classify(ctx context.Context, question string) (models.CategorySet, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.categories, nil
}

type fakeWeather struct {
	snapshot    *models.WeatherSnapshot
	called      bool
	lastInclude models.CategorySet
}

func (f *fakeWeather) Forecast(ctx context.Context, lat, lon float64, include models.CategorySet) (*models.WeatherSnapshot, error) {
	f.called = true
	f.lastInclude = include
	return f.snapshot, nil
}

type fakeResolver struct {
	citations []models.Citation
}

func (f *fakeResolver) Resolve(ctx context.Context, response *models.SearchResponse) ([]models.Citation, error) {
	return f.citations, nil
}

func evidenceResponse() *models.SearchResponse {
	return &models.SearchResponse{
		Results: []models.EvidenceChunk{
			{Chunk: "Apply when wind is below 10 mph.", RelativePath: "labels/sevin.pdf", ProductName: "Sevin"},
		},
	}
}

func newTestService(llm *fakeLLM, search *fakeSearch, classifier *fakeClassifier, weather *fakeWeather, resolver *fakeResolver) *ChatService {
	return NewChatService(llm, search, classifier, weather, resolver, arbor.NewLogger(), 7, 10)
}

func TestAskFirstQuestion(t *testing.T) {
	// First turn: no history, so no rewrite call; the single LLM call is
	// the answer generation.
	llm := &fakeLLM{responses: []string{"Sevin is applied at..."}}
	search := &fakeSearch{response: evidenceResponse()}
	resolver := &fakeResolver{citations: []models.Citation{{Source: "labels/sevin.pdf", URL: "https://signed/sevin"}}}
	svc := newTestService(llm, search, &fakeClassifier{categories: models.NewCategorySet()}, &fakeWeather{}, resolver)

	conv := models.NewConversation("session_1", "user_1")
	result, err := svc.Ask(context.Background(), conv, "How do I apply Sevin?")
	require.NoError(t, err)

	assert.Equal(t, "Sevin is applied at...", result.Answer)
	assert.Equal(t, "How do I apply Sevin?", result.Query, "first question retrieves verbatim")
	assert.Equal(t, "How do I apply Sevin?", search.lastQuery)
	assert.Equal(t, models.FilterAll, search.lastFilter)
	assert.Equal(t, 10, search.lastLimit)
	require.Len(t, result.Citations, 1)

	require.Len(t, conv.Turns, 2)
	assert.Equal(t, models.RoleUser, conv.Turns[0].Role)
	assert.Equal(t, models.RoleAssistant, conv.Turns[1].Role)
	assert.Len(t, conv.Turns[1].Citations, 1)
}

func TestAskFollowUpRewritesAndFilters(t *testing.T) {
	// Second turn: the scripted responses are the rewritten query, then the
	// answer.
	llm := &fakeLLM{responses: []string{"restricted entry interval Sevin tomatoes", "The REI is 12 hours."}}
	search := &fakeSearch{response: evidenceResponse()}
	svc := newTestService(llm, search, &fakeClassifier{categories: models.NewCategorySet()}, &fakeWeather{}, &fakeResolver{})

	conv := models.NewConversation("session_1", "user_1")
	conv.ProductFilter = "Sevin"
	conv.Append(turn(models.RoleUser, "Tell me about Sevin on tomatoes"))
	conv.Append(turn(models.RoleAssistant, "Sevin is a carbaryl insecticide..."))

	result, err := svc.Ask(context.Background(), conv, "What is the REI?")
	require.NoError(t, err)

	assert.Equal(t, "restricted entry interval Sevin tomatoes", result.Query)
	assert.Equal(t, "restricted entry interval Sevin tomatoes", search.lastQuery)
	assert.Equal(t, "Sevin", search.lastFilter)
	assert.Equal(t, "The REI is 12 hours.", result.Answer)
	assert.Len(t, conv.Turns, 4)
}

func TestAskWithWeather(t *testing.T) {
	llm := &fakeLLM{responses: []string{"Wait for the wind to drop below 10 mph."}}
	classifier := &fakeClassifier{categories: models.NewCategorySet(models.WeatherCurrent, models.WeatherHourly)}
	weather := &fakeWeather{snapshot: &models.WeatherSnapshot{
		Current: map[string]any{"temp": 84.2, "wind_speed": 12.0},
	}}
	svc := newTestService(llm, &fakeSearch{response: evidenceResponse()}, classifier, weather, &fakeResolver{})

	conv := models.NewConversation("session_1", "user_1")
	conv.Location = &models.UserSettings{UserID: "user_1", LocationName: "Davis, CA", Latitude: 38.54, Longitude: -121.74}

	result, err := svc.Ask(context.Background(), conv, "Can I spray this afternoon?")
	require.NoError(t, err)

	assert.True(t, weather.called)
	assert.True(t, weather.lastInclude.Has(models.WeatherCurrent))
	assert.True(t, weather.lastInclude.Has(models.WeatherHourly))
	require.NotNil(t, result.Weather)
	assert.Equal(t, 12.0, result.Weather.Current["wind_speed"])
	assert.Equal(t, result.Weather, conv.Weather, "snapshot cached on the session")

	// The forecast reaches the model inside the weather block.
	require.Len(t, llm.lastSent, 1)
	assert.Contains(t, llm.lastSent[0].Content, "<weather>")
	assert.Contains(t, llm.lastSent[0].Content, `"wind_speed":12`)
}

func TestAskWeatherSkippedWithoutLocation(t *testing.T) {
	llm := &fakeLLM{responses: []string{"Check local wind conditions."}}
	classifier := &fakeClassifier{categories: models.NewCategorySet(models.WeatherCurrent)}
	weather := &fakeWeather{snapshot: &models.WeatherSnapshot{Current: map[string]any{"temp": 70.0}}}
	svc := newTestService(llm, &fakeSearch{response: evidenceResponse()}, classifier, weather, &fakeResolver{})

	conv := models.NewConversation("session_1", "user_1")

	result, err := svc.Ask(context.Background(), conv, "Can I spray this afternoon?")
	require.NoError(t, err)
	assert.False(t, weather.called)
	assert.True(t, result.Weather.Empty())
}

func TestAskClassifierFailureDegradesToNoWeather(t *testing.T) {
	llm := &fakeLLM{responses: []string{"Here is the label guidance."}}
	classifier := &fakeClassifier{err: errors.New("classifier down")}
	weather := &fakeWeather{}
	svc := newTestService(llm, &fakeSearch{response: evidenceResponse()}, classifier, weather, &fakeResolver{})

	conv := models.NewConversation("session_1", "user_1")
	conv.Location = &models.UserSettings{Latitude: 1, Longitude: 1}

	result, err := svc.Ask(context.Background(), conv, "Can I spray today?")
	require.NoError(t, err)
	assert.False(t, weather.called)
	assert.Equal(t, "Here is the label guidance.", result.Answer)
}

func TestAskRetrievalFailureAppendsErrorTurn(t *testing.T) {
	llm := &fakeLLM{responses: []string{"unused"}}
	search := &fakeSearch{err: errors.New("search service unavailable")}
	svc := newTestService(llm, search, &fakeClassifier{categories: models.NewCategorySet()}, &fakeWeather{}, &fakeResolver{})

	conv := models.NewConversation("session_1", "user_1")
	_, err := svc.Ask(context.Background(), conv, "How do I apply Sevin?")
	require.Error(t, err)

	// The failed turn still leaves a complete user/assistant pair, with the
	// error text in the assistant turn.
	require.Len(t, conv.Turns, 2)
	assert.Equal(t, models.RoleUser, conv.Turns[0].Role)
	assert.Equal(t, models.RoleAssistant, conv.Turns[1].Role)
	assert.Contains(t, conv.Turns[1].Content, "search service unavailable")
}

func TestAskWindowExcludesInFlightTurn(t *testing.T) {
	// With exactly W prior turns, the rewrite prompt must carry all of them
	// but never the question being asked.
	llm := &fakeLLM{responses: []string{"rewritten", "answer"}}
	svc := newTestService(llm, &fakeSearch{response: evidenceResponse()}, &fakeClassifier{categories: models.NewCategorySet()}, &fakeWeather{}, &fakeResolver{})

	conv := models.NewConversation("session_1", "user_1")
	for i := 0; i < 8; i++ {
		if i%2 == 0 {
			conv.Append(turn(models.RoleUser, "old question"))
		} else {
			conv.Append(turn(models.RoleAssistant, "old answer"))
		}
	}

	_, err := svc.Ask(context.Background(), conv, "the new question")
	require.NoError(t, err)

	// First LLM call is the rewrite; its history block must hold the 7
	// turns preceding the in-flight question and nothing newer.
	require.GreaterOrEqual(t, len(llm.allSent), 2)
	rewritePrompt := llm.allSent[0][0].Content
	assert.NotContains(t, rewritePrompt, "<chat_history>\nthe new question")

	historyBlock := rewritePrompt[strings.Index(rewritePrompt, "<chat_history>"):strings.Index(rewritePrompt, "</chat_history>")]
	assert.Equal(t, 7, strings.Count(historyBlock, "old "))
	assert.NotContains(t, historyBlock, "the new question")
}

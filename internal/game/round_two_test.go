package game

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// openBetting sets topic 10 and reveals it.
func openBetting(t *testing.T, f *fixture) {
	t.Helper()
	ctx := context.Background()
	_, err := f.m.SetR2Topic(ctx, 10)
	require.NoError(t, err)
	_, err = f.m.RevealR2Topic(ctx)
	require.NoError(t, err)
	f.drain()
}

func TestSetR2TopicResetsAndPreloads(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.m.SetR2Topic(ctx, 99)
	require.ErrorIs(t, err, ErrInvalidTopic)

	openBetting(t, f)
	_, err = f.m.SetMaxBet(ctx, 50)
	require.NoError(t, err)
	_, err = f.m.PlaceBet(ctx, 1, 40)
	require.NoError(t, err)
	f.drain()

	st, err := f.m.SetR2Topic(ctx, 10)
	require.NoError(t, err)
	r2 := st.RoundTwo
	assert.Equal(t, StageTopic, r2.Stage)
	assert.False(t, r2.TopicVisible)
	assert.Zero(t, r2.MaxBet)
	assert.Empty(t, r2.Bets)
	assert.Equal(t, ptr("g1"), r2.CurrentQuestionID)
	assert.Equal(t, ptr("Capital of Peru?"), r2.CurrentQuestionText)

	assert.Equal(t, []string{EventR2Topic, EventR2QuestionSelected}, f.types())

	st, err = f.m.SetR2Topic(ctx, 12)
	require.NoError(t, err)
	assert.Nil(t, st.RoundTwo.CurrentQuestionID)
	assert.Equal(t, []string{EventR2Topic}, f.types())
}

func TestRevealR2Topic(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.m.RevealR2Topic(ctx)
	require.ErrorIs(t, err, ErrNoTopicSet)

	_, err = f.m.SetR2Topic(ctx, 11)
	require.NoError(t, err)
	f.drain()

	st, err := f.m.RevealR2Topic(ctx)
	require.NoError(t, err)
	assert.True(t, st.RoundTwo.TopicVisible)

	_, err = f.m.RevealR2Topic(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{EventR2TopicVisible}, f.types())
}

func TestSetMaxBetClamps(t *testing.T) {
	f := newFixture(t)

	st, err := f.m.SetMaxBet(context.Background(), -5)
	require.NoError(t, err)
	assert.Zero(t, st.RoundTwo.MaxBet)
}

func TestPlaceBet(t *testing.T) {
	ctx := context.Background()

	t.Run("guards in order", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.m.PlaceBet(ctx, 42, 10)
		require.ErrorIs(t, err, ErrUnknownTeam)

		_, err = f.m.PlaceBet(ctx, 1, 10)
		require.ErrorIs(t, err, ErrNoTopicSet)

		_, err = f.m.SetR2Topic(ctx, 10)
		require.NoError(t, err)
		_, err = f.m.PlaceBet(ctx, 1, 10)
		require.ErrorIs(t, err, ErrTopicNotRevealed)

		_, err = f.m.RevealR2Topic(ctx)
		require.NoError(t, err)
		_, err = f.m.PlaceBet(ctx, 1, -1)
		require.ErrorIs(t, err, ErrInvalidAmount)

		_, err = f.m.PlaceBet(ctx, 1, 101)
		require.ErrorIs(t, err, ErrExceedsLimit)

		_, err = f.m.SetAnswerWindow(ctx, true)
		require.NoError(t, err)
		_, err = f.m.PlaceBet(ctx, 1, 10)
		require.ErrorIs(t, err, ErrBettingClosed)
	})

	t.Run("limit is min of max bet and score", func(t *testing.T) {
		f := newFixture(t)
		openBetting(t, f)
		_, err := f.m.SetMaxBet(ctx, 50)
		require.NoError(t, err)

		_, err = f.m.PlaceBet(ctx, 1, 51)
		require.ErrorIs(t, err, ErrExceedsLimit)
		_, err = f.m.PlaceBet(ctx, 1, 50)
		require.NoError(t, err)

		_, err = f.m.PlaceBet(ctx, 4, 21)
		require.ErrorIs(t, err, ErrExceedsLimit)
		st, err := f.m.PlaceBet(ctx, 4, 20)
		require.NoError(t, err)
		assert.Equal(t, map[int64]int{1: 50, 4: 20}, st.RoundTwo.Bets)
	})

	t.Run("bets only increase after question shown", func(t *testing.T) {
		f := newFixture(t)
		openBetting(t, f)

		_, err := f.m.PlaceBet(ctx, 2, 30)
		require.NoError(t, err)
		_, err = f.m.PlaceBet(ctx, 2, 10)
		require.NoError(t, err)

		st, err := f.m.SetR2QuestionVisible(ctx, true)
		require.NoError(t, err)
		assert.Equal(t, StageQuestion, st.RoundTwo.Stage)

		accepted := []int{10}
		for _, amount := range []int{5, 15, 12, 40, 39, 40} {
			if _, err := f.m.PlaceBet(ctx, 2, amount); err == nil {
				accepted = append(accepted, amount)
			} else {
				require.ErrorIs(t, err, ErrCannotDecrease)
			}
		}
		assert.Equal(t, []int{10, 15, 40, 40}, accepted)
		assert.IsNonDecreasing(t, accepted)
	})
}

func TestBetLimit(t *testing.T) {
	tests := []struct {
		maxBet, score, want int
	}{
		{0, 80, 80},
		{50, 80, 50},
		{50, 20, 20},
		{50, 0, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, BetLimit(tt.maxBet, tt.score), "BetLimit(%d, %d)", tt.maxBet, tt.score)
	}
}

func TestAnswerWindowStages(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.m.SetAnswerWindow(ctx, true)
	require.ErrorIs(t, err, ErrNoTopicSet)

	openBetting(t, f)
	_, err = f.m.SetR2QuestionVisible(ctx, true)
	require.NoError(t, err)

	st, err := f.m.SetAnswerWindow(ctx, true)
	require.NoError(t, err)
	assert.Equal(t, StageAnswer, st.RoundTwo.Stage)
	assert.True(t, st.RoundTwo.AnswerWindowOpen)

	st, err = f.m.SetAnswerWindow(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, StageQuestion, st.RoundTwo.Stage)
	assert.False(t, st.RoundTwo.AnswerWindowOpen)
}

func TestSubmitAnswer(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.m.SetR2Topic(ctx, 11)
	require.NoError(t, err)
	_, err = f.m.SubmitAnswer(ctx, 1, "Charango")
	require.ErrorIs(t, err, ErrWindowClosed)

	_, err = f.m.SetAnswerWindow(ctx, true)
	require.NoError(t, err)
	f.drain()

	_, err = f.m.SubmitAnswer(ctx, 1, "Quena")
	require.ErrorIs(t, err, ErrInvalidAnswer)
	_, err = f.m.SubmitAnswer(ctx, 1, "   ")
	require.ErrorIs(t, err, ErrInvalidAnswer)
	_, err = f.m.SubmitAnswer(ctx, 42, "Cajon")
	require.ErrorIs(t, err, ErrUnknownTeam)

	st, err := f.m.SubmitAnswer(ctx, 1, "  Charango ")
	require.NoError(t, err)
	assert.Equal(t, "Charango", st.RoundTwo.Answers[1])

	events := f.drain()
	require.Len(t, events, 1)
	assert.Equal(t, AnswerPayload{TeamID: 1}, events[0].Payload)
}

func TestRevealCorrectAnswer(t *testing.T) {
	ctx := context.Background()

	t.Run("from question bank", func(t *testing.T) {
		f := newFixture(t)
		openBetting(t, f)
		_, err := f.m.SetAnswerWindow(ctx, true)
		require.NoError(t, err)

		st, err := f.m.RevealCorrectAnswer(ctx, nil)
		require.NoError(t, err)
		assert.Equal(t, ptr("Lima"), st.RoundTwo.CorrectAnswer)
		assert.Equal(t, StageRevealed, st.RoundTwo.Stage)
		assert.False(t, st.RoundTwo.AnswerWindowOpen)

		_, err = f.m.RevealCorrectAnswer(ctx, ptr("Cusco"))
		require.ErrorIs(t, err, ErrAnswerFinal)
		_, err = f.m.SetAnswerWindow(ctx, true)
		require.ErrorIs(t, err, ErrAnswerFinal)
	})

	t.Run("explicit", func(t *testing.T) {
		f := newFixture(t)
		openBetting(t, f)

		_, err := f.m.RevealCorrectAnswer(ctx, ptr("  "))
		require.ErrorIs(t, err, ErrNoCorrectAnswer)

		_, err = f.m.RevealCorrectAnswer(ctx, ptr(" Callao "))
		require.NoError(t, err)
		events := f.drain()
		require.Len(t, events, 1)
		assert.Equal(t, AnswerRevealedPayload{CorrectAnswer: "Callao"}, events[0].Payload)
	})

	t.Run("no question", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.m.SetR2Topic(ctx, 12)
		require.NoError(t, err)

		_, err = f.m.RevealCorrectAnswer(ctx, nil)
		require.ErrorIs(t, err, ErrNoQuestion)
	})
}

func TestSettleRequiresCorrectAnswer(t *testing.T) {
	f := newFixture(t)
	openBetting(t, f)

	_, err := f.m.Settle(context.Background())
	require.ErrorIs(t, err, ErrNoCorrectAnswer)
}

// playQuestion runs one full round-two cycle up to the reveal.
func playQuestion(t *testing.T, f *fixture, bets map[int64]int, answers map[int64]string) {
	t.Helper()
	ctx := context.Background()
	openBetting(t, f)
	for id, amount := range bets {
		_, err := f.m.PlaceBet(ctx, id, amount)
		require.NoError(t, err)
	}
	_, err := f.m.SetR2QuestionVisible(ctx, true)
	require.NoError(t, err)
	_, err = f.m.SetAnswerWindow(ctx, true)
	require.NoError(t, err)
	for id, text := range answers {
		_, err := f.m.SubmitAnswer(ctx, id, text)
		require.NoError(t, err)
	}
	_, err = f.m.RevealCorrectAnswer(ctx, nil)
	require.NoError(t, err)
	f.drain()
}

func TestSettleHighestCorrectBetWins(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	playQuestion(t, f, map[int64]int{1: 30, 2: 20}, map[int64]string{1: "lima", 2: "LIMA "})

	res, err := f.m.Settle(ctx)
	require.NoError(t, err)
	assert.Equal(t, 50, res.Settlement.Pot)
	assert.Equal(t, []int64{1}, res.Settlement.Winners)
	assert.Equal(t, 120, f.store.score(1))
	assert.Equal(t, 80, f.store.score(2))

	r2 := res.State.RoundTwo
	assert.Equal(t, StageIdle, r2.Stage)
	assert.Nil(t, r2.TopicID)
	assert.False(t, r2.TopicVisible)
	assert.Nil(t, r2.CorrectAnswer)
	assert.Empty(t, r2.Bets)
	assert.Empty(t, r2.Answers)

	events := f.drain()
	require.Len(t, events, 1)
	assert.Equal(t, EventR2Settled, events[0].Type)
	p := events[0].Payload.(SettledPayload)
	assert.Equal(t, 120, p.Teams[0].Score)
}

func TestSettleTieSplitsPot(t *testing.T) {
	f := newFixture(t)
	playQuestion(t, f,
		map[int64]int{1: 10, 2: 10, 3: 10},
		map[int64]string{1: "Lima", 2: "lima", 3: "Cusco"})

	res, err := f.m.Settle(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 30, res.Settlement.Pot)
	assert.Equal(t, []int64{1, 2}, res.Settlement.Winners)
	assert.Equal(t, 105, f.store.score(1))
	assert.Equal(t, 105, f.store.score(2))
	assert.Equal(t, 90, f.store.score(3))
}

func TestSettleManualCorrect(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	playQuestion(t, f, map[int64]int{1: 10, 2: 10}, map[int64]string{1: "Lima", 2: "Lim"})

	st, err := f.m.SetManualCorrect(ctx, []int64{2, 2})
	require.NoError(t, err)
	assert.Equal(t, []int64{2}, st.RoundTwo.ManualCorrect)

	res, err := f.m.Settle(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2}, res.Settlement.Winners)
	assert.Equal(t, 100, f.store.score(1))
	assert.Equal(t, 100, f.store.score(2))
}

func TestBetStaysWithinLoweredLimits(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	openBetting(t, f)
	_, err := f.m.SetMaxBet(ctx, 100)
	require.NoError(t, err)
	_, err = f.m.PlaceBet(ctx, 4, 20)
	require.NoError(t, err)
	f.drain()

	st, err := f.m.SetMaxBet(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, 5, st.RoundTwo.Bets[4])
	events := f.drain()
	require.Len(t, events, 1)
	assert.Equal(t, MaxBetPayload{MaxBet: 5, Bets: map[int64]int{4: 5}}, events[0].Payload)

	_, err = f.m.AdjustScore(ctx, 4, -15)
	require.NoError(t, err)
	assert.Equal(t, 5, f.store.score(4))

	// Raising the limit again does not restore the lowered bet.
	st, err = f.m.SetMaxBet(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, 5, st.RoundTwo.Bets[4])

	_, err = f.m.SetR2QuestionVisible(ctx, true)
	require.NoError(t, err)
	_, err = f.m.SetAnswerWindow(ctx, true)
	require.NoError(t, err)
	_, err = f.m.SubmitAnswer(ctx, 4, "Quito")
	require.NoError(t, err)
	_, err = f.m.RevealCorrectAnswer(ctx, nil)
	require.NoError(t, err)

	res, err := f.m.Settle(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, res.Settlement.Pot)
	assert.Equal(t, 0, f.store.score(4))
}

func TestSettleCapsStakeAfterScoreDrop(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	playQuestion(t, f, map[int64]int{4: 20}, map[int64]string{4: "Quito"})

	_, err := f.m.AdjustScore(ctx, 4, -15)
	require.NoError(t, err)

	res, err := f.m.Settle(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[int64]int{4: -5}, res.Settlement.Deltas)
	assert.Equal(t, 0, f.store.score(4))
}

func TestSetR2Options(t *testing.T) {
	ctx := context.Background()

	t.Run("needs a topic", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.m.SetR2Options(ctx, []string{"Lima"}, nil)
		require.ErrorIs(t, err, ErrNoTopicSet)
		assert.Empty(t, f.drain())
	})

	t.Run("replaces options and toggles visibility", func(t *testing.T) {
		f := newFixture(t)
		openBetting(t, f)

		st, err := f.m.SetR2Options(ctx, []string{" Lima", "Quito", "", "Lima", "Cusco "}, ptr(true))
		require.NoError(t, err)
		assert.Equal(t, []string{"Lima", "Quito", "Cusco"}, st.RoundTwo.Options)
		assert.True(t, st.RoundTwo.OptionsVisible)

		events := f.drain()
		require.Len(t, events, 1)
		assert.Equal(t, EventR2Options, events[0].Type)
		assert.Equal(t, R2OptionsPayload{Options: []string{"Lima", "Quito", "Cusco"}, Visible: true}, events[0].Payload)

		st, err = f.m.SetR2Options(ctx, []string{"Lima", "Arequipa"}, nil)
		require.NoError(t, err)
		assert.True(t, st.RoundTwo.OptionsVisible, "nil visible keeps the flag")

		_, err = f.m.SetR2QuestionVisible(ctx, true)
		require.NoError(t, err)
		_, err = f.m.SetAnswerWindow(ctx, true)
		require.NoError(t, err)
		_, err = f.m.SubmitAnswer(ctx, 1, "Quito")
		require.ErrorIs(t, err, ErrInvalidAnswer)
		_, err = f.m.SubmitAnswer(ctx, 1, "Arequipa")
		require.NoError(t, err)
	})

	t.Run("fixed once the answer is revealed", func(t *testing.T) {
		f := newFixture(t)
		playQuestion(t, f, map[int64]int{1: 10}, map[int64]string{1: "Lima"})

		_, err := f.m.SetR2Options(ctx, []string{"Lima"}, ptr(false))
		require.ErrorIs(t, err, ErrAnswerFinal)
	})

	t.Run("selecting a question hides options", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.m.SetR2Topic(ctx, 11)
		require.NoError(t, err)
		_, err = f.m.SetR2Options(ctx, []string{"Charango"}, ptr(true))
		require.NoError(t, err)

		st, err := f.m.SelectR2Question(ctx, ptr("m1"))
		require.NoError(t, err)
		assert.Equal(t, []string{"Charango", "Cajon"}, st.RoundTwo.Options)
		assert.False(t, st.RoundTwo.OptionsVisible)
	})
}

func TestR2Options(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	options, err := f.m.R2Options(ctx, "m1")
	require.NoError(t, err)
	assert.Equal(t, []string{"Charango", "Cajon"}, options)

	options, err = f.m.R2Options(ctx, "g1")
	require.NoError(t, err)
	assert.Equal(t, []string{}, options)

	_, err = f.m.R2Options(ctx, "h1")
	require.ErrorIs(t, err, ErrInvalidQuestion)
}

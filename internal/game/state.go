package game

import "encoding/json"

// Stage is the wagering phase of round two.
type Stage string

const (
	StageIdle     Stage = "idle"
	StageTopic    Stage = "topic"
	StageQuestion Stage = "question"
	StageAnswer   Stage = "answer"
	StageRevealed Stage = "revealed"
)

// Section names as persisted by a Store.
const (
	SectionRoundOne = "roundOne"
	SectionRoundTwo = "roundTwo"
	SectionBuzz     = "buzz"
	SectionHermes   = "hermes"
)

var Sections = []string{SectionRoundOne, SectionRoundTwo, SectionBuzz, SectionHermes}

// State is the game-state snapshot of one session.
type State struct {
	RoundOne RoundOne `json:"roundOne"`
	RoundTwo RoundTwo `json:"roundTwo"`
	Buzz     Buzz     `json:"buzz"`
	Hermes   Hermes   `json:"hermes"`
}

type RoundOne struct {
	EligibleSelectors      []int64         `json:"eligibleSelectors"`
	CurrentSelector        *int64          `json:"currentSelector"`
	SelectedTopics         map[int64]int64 `json:"selectedTopics"`
	QuestionVisible        bool            `json:"questionVisible"`
	CurrentQuestionID      *string         `json:"currentQuestionId"`
	CurrentQuestionTopicID *int64          `json:"currentQuestionTopicId"`
	CurrentTopicSelectedBy *int64          `json:"currentTopicSelectedBy"`
	Options                []string        `json:"options"`
}

type RoundTwo struct {
	TopicID             *int64           `json:"topicId"`
	TopicVisible        bool             `json:"topicVisible"`
	MaxBet              int              `json:"maxBet"`
	CurrentQuestionID   *string          `json:"currentQuestionId"`
	CurrentQuestionText *string          `json:"currentQuestionText"`
	QuestionVisible     bool             `json:"questionVisible"`
	AnswerWindowOpen    bool             `json:"answerWindowOpen"`
	Options             []string         `json:"options"`
	OptionsVisible      bool             `json:"optionsVisible"`
	Bets                map[int64]int    `json:"bets"`
	Answers             map[int64]string `json:"answers"`
	ManualCorrect       []int64          `json:"manualCorrect"`
	CorrectAnswer       *string          `json:"correctAnswer"`
	Stage               Stage            `json:"stage"`
}

type Buzz struct {
	Allowed bool    `json:"allowed"`
	Winner  *int64  `json:"winner"`
	Winners []int64 `json:"winners"`
}

type Hermes struct {
	LastUsedByID *int64 `json:"lastUsedById"`
}

// Default returns a fresh state with every section at its defaults.
func Default() State {
	return State{
		RoundOne: defaultRoundOne(),
		RoundTwo: defaultRoundTwo(),
		Buzz:     defaultBuzz(),
		Hermes:   Hermes{},
	}
}

func defaultRoundOne() RoundOne {
	return RoundOne{
		EligibleSelectors: []int64{},
		SelectedTopics:    map[int64]int64{},
		Options:           []string{},
	}
}

func defaultRoundTwo() RoundTwo {
	return RoundTwo{
		Options:       []string{},
		Bets:          map[int64]int{},
		Answers:       map[int64]string{},
		ManualCorrect: []int64{},
		Stage:         StageIdle,
	}
}

func defaultBuzz() Buzz {
	return Buzz{Winners: []int64{}}
}

// DecodeSections merges persisted section documents over defaults. Unknown
// sections are ignored; missing keys keep their default values.
func DecodeSections(raw map[string][]byte) (State, error) {
	st := Default()
	targets := map[string]any{
		SectionRoundOne: &st.RoundOne,
		SectionRoundTwo: &st.RoundTwo,
		SectionBuzz:     &st.Buzz,
		SectionHermes:   &st.Hermes,
	}
	for name, data := range raw {
		dst, ok := targets[name]
		if !ok || len(data) == 0 {
			continue
		}
		if err := json.Unmarshal(data, dst); err != nil {
			return Default(), err
		}
	}
	st.normalize()
	return st, nil
}

// EncodeSections renders every section as its own JSON document.
func EncodeSections(st State) (map[string][]byte, error) {
	st.normalize()
	out := make(map[string][]byte, len(Sections))
	for name, v := range map[string]any{
		SectionRoundOne: st.RoundOne,
		SectionRoundTwo: st.RoundTwo,
		SectionBuzz:     st.Buzz,
		SectionHermes:   st.Hermes,
	} {
		data, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		out[name] = data
	}
	return out, nil
}

// normalize replaces nil collections so clients never see null where a
// list or map is expected.
func (st *State) normalize() {
	r1 := &st.RoundOne
	if r1.EligibleSelectors == nil {
		r1.EligibleSelectors = []int64{}
	}
	if r1.SelectedTopics == nil {
		r1.SelectedTopics = map[int64]int64{}
	}
	if r1.Options == nil {
		r1.Options = []string{}
	}

	r2 := &st.RoundTwo
	if r2.Options == nil {
		r2.Options = []string{}
	}
	if r2.Bets == nil {
		r2.Bets = map[int64]int{}
	}
	if r2.Answers == nil {
		r2.Answers = map[int64]string{}
	}
	if r2.ManualCorrect == nil {
		r2.ManualCorrect = []int64{}
	}
	if r2.Stage == "" {
		r2.Stage = StageIdle
	}

	if st.Buzz.Winners == nil {
		st.Buzz.Winners = []int64{}
	}
}

// Clone returns a deep copy of st.
func (st State) Clone() State {
	c := st
	c.RoundOne.EligibleSelectors = append([]int64{}, st.RoundOne.EligibleSelectors...)
	c.RoundOne.SelectedTopics = make(map[int64]int64, len(st.RoundOne.SelectedTopics))
	for k, v := range st.RoundOne.SelectedTopics {
		c.RoundOne.SelectedTopics[k] = v
	}
	c.RoundOne.Options = append([]string{}, st.RoundOne.Options...)
	c.RoundOne.CurrentSelector = clonePtr(st.RoundOne.CurrentSelector)
	c.RoundOne.CurrentQuestionID = clonePtr(st.RoundOne.CurrentQuestionID)
	c.RoundOne.CurrentQuestionTopicID = clonePtr(st.RoundOne.CurrentQuestionTopicID)
	c.RoundOne.CurrentTopicSelectedBy = clonePtr(st.RoundOne.CurrentTopicSelectedBy)

	c.RoundTwo.Options = append([]string{}, st.RoundTwo.Options...)
	c.RoundTwo.Bets = make(map[int64]int, len(st.RoundTwo.Bets))
	for k, v := range st.RoundTwo.Bets {
		c.RoundTwo.Bets[k] = v
	}
	c.RoundTwo.Answers = make(map[int64]string, len(st.RoundTwo.Answers))
	for k, v := range st.RoundTwo.Answers {
		c.RoundTwo.Answers[k] = v
	}
	c.RoundTwo.ManualCorrect = append([]int64{}, st.RoundTwo.ManualCorrect...)
	c.RoundTwo.TopicID = clonePtr(st.RoundTwo.TopicID)
	c.RoundTwo.CurrentQuestionID = clonePtr(st.RoundTwo.CurrentQuestionID)
	c.RoundTwo.CurrentQuestionText = clonePtr(st.RoundTwo.CurrentQuestionText)
	c.RoundTwo.CorrectAnswer = clonePtr(st.RoundTwo.CorrectAnswer)

	c.Buzz.Winner = clonePtr(st.Buzz.Winner)
	c.Buzz.Winners = append([]int64{}, st.Buzz.Winners...)
	c.Hermes.LastUsedByID = clonePtr(st.Hermes.LastUsedByID)
	return c
}

// Public returns a copy of st safe to show every client. Until the correct
// answer is revealed the round-two answers keep their team keys, so clients
// can see who answered, but the answer text is blanked.
func (st State) Public() State {
	c := st.Clone()
	if c.RoundTwo.Stage != StageRevealed {
		for id := range c.RoundTwo.Answers {
			c.RoundTwo.Answers[id] = ""
		}
	}
	return c
}

func ptr[T any](v T) *T { return &v }

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	return ptr(*p)
}

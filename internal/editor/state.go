package editor

// AnswerState is the transport-facing view of one answer row.
type AnswerState struct {
	ID        string `json:"id,omitempty"`
	Answer    string `json:"answer"`
	IsCorrect bool   `json:"isCorrect"`
	Dirty     bool   `json:"dirty"`
	Focused   bool   `json:"focused"`
}

// State is a full snapshot of the session, sent to clients after every
// transition so they can render controls without re-deriving cursor rules.
type State struct {
	Page           int           `json:"page"`
	PageCount      int           `json:"pageCount"`
	IsFirstPage    bool          `json:"isFirstPage"`
	IsLastPage     bool          `json:"isLastPage"`
	IsNewQuestion  bool          `json:"isNewQuestion"`
	Question       string        `json:"question"`
	QuestionDirty  bool          `json:"questionDirty"`
	Answers        []AnswerState `json:"answers"`
	FocusedAnswer  int           `json:"focusedAnswer"`
	PendingDeletes []string      `json:"pendingDeletes,omitempty"`
	Dirty          bool          `json:"dirty"`
	CanSubmit      bool          `json:"canSubmit"`
}

// State renders the current snapshot.
func (s *Session) State() State {
	st := State{
		Page:          s.page.Page(),
		PageCount:     s.page.MaxPage(),
		IsFirstPage:   s.page.IsFirstPage(),
		IsLastPage:    s.page.IsLastPage(),
		IsNewQuestion: s.Target().Kind == NewQuestion,
		Question:      s.questionText.Value(),
		QuestionDirty: s.questionText.Dirty(),
		FocusedAnswer: s.focus.Page(),
		Dirty:         s.Dirty(),
		CanSubmit:     s.Valid(),
	}
	st.PendingDeletes = append(st.PendingDeletes, s.pendingDeletes...)
	for i, a := range s.answers {
		st.Answers = append(st.Answers, AnswerState{
			ID:        a.id,
			Answer:    a.text.Value(),
			IsCorrect: a.correct.Value(),
			Dirty:     a.dirty(),
			Focused:   i == s.focus.Page(),
		})
	}
	return st
}

package selfanalysis

const (
	// AgentFailureMessage is returned when the step agent cannot be reached.
	AgentFailureMessage = "すみません、うまく応答を生成できませんでした。もう一度、今のお考えを聞かせてもらえますか？"
	// CompletionMessage is returned for every turn after the session reached FIN.
	CompletionMessage = "自己分析はすべて完了しました。レポートで振り返ってみませんか？"
)

var fallbackPrompts = map[Step]string{
	StepFuture:     "将来どんなことを実現したいですか？",
	StepMotivation: "そう考えるようになったきっかけの出来事を教えてもらえますか？",
	StepHistory:    "これまでの経験で印象に残っている出来事は何ですか？",
	StepGap:        "理想の将来と今の自分との間に、どんな差があると感じますか？",
	StepVision:     "その将来像を一言で表すと、どんな言葉になりますか？",
	StepReflect:    "ここまでの対話を振り返って、一番の気づきは何ですか？",
}

// FallbackPrompt is the fixed question asked at step when the agent output has none.
func FallbackPrompt(step Step) string {
	if p, ok := fallbackPrompts[step]; ok {
		return p
	}
	if step == StepFin {
		return CompletionMessage
	}
	return AgentFailureMessage
}

// ensureQuestion returns msg when it holds exactly one question, else the fallback for step.
func ensureQuestion(step Step, msg string) string {
	if msg == "" || CountQuestionMarks(msg) != 1 {
		return FallbackPrompt(step)
	}
	return msg
}

// OpeningPrompt is the first question of a new session.
func OpeningPrompt() string { return FallbackPrompt(FirstStep()) }

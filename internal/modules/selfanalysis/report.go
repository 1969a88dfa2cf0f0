package selfanalysis

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/itsuki0625/react-ai-chatapp-sub000/internal/pkg/dbctx"
)

// Report collects every note of a session in pipeline order.
type Report struct {
	SessionID   uuid.UUID `json:"session_id"`
	CurrentStep Step      `json:"current_step"`
	Completed   bool      `json:"completed"`
	Sections    []Section `json:"sections"`
}

type Section struct {
	Step    Step    `json:"step"`
	Payload Payload `json:"payload"`
}

// BuildReport assembles the report of sessionID. ok is false when the session does not exist.
func BuildReport(dbc dbctx.Context, sessions *SessionState, notes *NoteStore, sessionID uuid.UUID) (Report, bool, error) {
	step, ok, err := sessions.Peek(dbc, sessionID)
	if err != nil || !ok {
		return Report{}, ok, err
	}
	list, err := notes.List(dbc, sessionID)
	if err != nil {
		return Report{}, true, err
	}
	sort.SliceStable(list, func(i, j int) bool { return list[i].Step.Index() < list[j].Step.Index() })

	r := Report{
		SessionID:   sessionID,
		CurrentStep: step,
		Completed:   step == StepFin,
		Sections:    make([]Section, 0, len(list)),
	}
	for _, n := range list {
		r.Sections = append(r.Sections, Section{Step: n.Step, Payload: n.Payload})
	}
	return r, true, nil
}

var sectionTitles = map[Step]string{
	StepFuture:     "将来像",
	StepMotivation: "原体験",
	StepHistory:    "これまでの歩み",
	StepGap:        "理想とのギャップ",
	StepVision:     "ビジョン",
	StepReflect:    "振り返り",
}

// Markdown renders the report for the student.
func (r Report) Markdown() string {
	var b strings.Builder
	b.WriteString("# 自己分析レポート\n")
	if !r.Completed {
		fmt.Fprintf(&b, "\n> 進行中（現在のステップ: %s）\n", r.CurrentStep)
	}
	for _, s := range r.Sections {
		fmt.Fprintf(&b, "\n## %s\n\n", sectionTitles[s.Step])
		switch s.Step {
		case StepFuture:
			line(&b, "将来像", s.Payload["future"])
			bullets(&b, "価値観", s.Payload["values"])
		case StepMotivation:
			ep, _ := asObject(s.Payload["episode"])
			for _, f := range MotivationEpisodeFields {
				line(&b, f, ep[f])
			}
		case StepHistory:
			items, _ := asList(s.Payload["timeline"])
			for _, it := range items {
				e, _ := asObject(it)
				fmt.Fprintf(&b, "- %v: %v\n", scalar(e["year"]), scalar(e["event"]))
			}
		case StepGap:
			items, _ := asList(s.Payload["gaps"])
			for _, it := range items {
				g, _ := asObject(it)
				fmt.Fprintf(&b, "- [%v] 深刻度 %v / 緊急度 %v: %s\n",
					scalar(g["category"]), scalar(g["severity"]), scalar(g["urgency"]), joinList(g["root_causes"]))
			}
		case StepVision:
			line(&b, "ビジョン", s.Payload["vision"])
			line(&b, "独自性", s.Payload["uniqueness"])
		case StepReflect:
			line(&b, "まとめ", s.Payload["summary"])
			bullets(&b, "気づき", s.Payload["insights"])
			bullets(&b, "強み", s.Payload["strengths"])
			bullets(&b, "伸びしろ", s.Payload["growth_edges"])
			bullets(&b, "マイルストーン", s.Payload["milestones"])
		}
	}
	return b.String()
}

func line(b *strings.Builder, label string, v any) {
	if v == nil {
		return
	}
	fmt.Fprintf(b, "- **%s**: %v\n", label, scalar(v))
}

func bullets(b *strings.Builder, label string, v any) {
	items, ok := asList(v)
	if !ok || len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "\n**%s**\n", label)
	for _, it := range items {
		fmt.Fprintf(b, "- %v\n", scalar(it))
	}
}

func joinList(v any) string {
	items, _ := asList(v)
	parts := make([]string, 0, len(items))
	for _, it := range items {
		parts = append(parts, fmt.Sprint(scalar(it)))
	}
	return strings.Join(parts, "、")
}

func scalar(v any) any {
	switch x := v.(type) {
	case nil:
		return ""
	case float64:
		if x == float64(int64(x)) {
			return int64(x)
		}
		return x
	case string, bool, int, int64:
		return x
	default:
		b, err := json.Marshal(x)
		if err != nil {
			return fmt.Sprint(x)
		}
		return string(b)
	}
}

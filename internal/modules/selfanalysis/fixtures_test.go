package selfanalysis

import (
	"encoding/json"
	"testing"
)

var validPayloadJSON = map[Step]string{
	StepFuture: `{
		"future": "地域医療の格差をITでなくす",
		"values": ["貢献", "挑戦", "共感"],
		"question": "そう考えるようになったきっかけは何ですか？"
	}`,
	StepMotivation: `{
		"episode": {
			"situation": "祖母が住む町には病院が一つしかなかった",
			"trigger": "祖母の診察まで三か月待つと聞いた",
			"action": "オンライン診療について調べ始めた",
			"obstacle": "町の高齢者はスマホに慣れていなかった",
			"support": "地元の保健師さんが話を聞いてくれた",
			"outcome": "使い方講座を開いて十人が参加した",
			"emotion": "悔しさ",
			"insight": "技術は使える形で届けて初めて役に立つ"
		},
		"question": "これまでで一番印象に残っている経験は何ですか？"
	}`,
	StepHistory: `{
		"timeline": [
			{"year": 2019, "event": "生徒会で地域清掃を企画した", "skills": ["企画"], "values": ["貢献"]},
			{"year": 2021, "event": "プログラミング部を立ち上げた", "skills": ["設計", "統率"], "values": ["挑戦", "成長"]},
			{"year": 2023, "event": "スマホ講座を開いた", "skills": ["傾聴", "説明", "運営"], "values": ["共感"]}
		],
		"question": "理想の将来と今の自分の差はどこにあると思いますか？"
	}`,
	StepGap: `{
		"gaps": [
			{"category": "knowledge", "root_causes": ["医療制度を学ぶ機会がない"], "severity": 4, "urgency": 3},
			{"category": "skill", "root_causes": ["開発経験が少ない", "英語が苦手"], "severity": 3, "urgency": 4},
			{"category": "network", "root_causes": ["医療者の知り合いがいない"], "severity": 2, "urgency": 2}
		],
		"question": "その将来像を一言で表すとどうなりますか？"
	}`,
	StepVision: `{
		"vision": "誰もが安心できる地域医療を実現する",
		"uniqueness": 0.7,
		"question": "ここまでを振り返って、どんな気づきがありましたか？"
	}`,
	StepReflect: `{
		"insights": ["原体験が将来像を支えている", "人に届ける工夫が好き", "学ぶべき領域が明確になった"],
		"strengths": ["行動力", "傾聴", "巻き込み力"],
		"growth_edges": ["医療知識", "開発経験", "英語力"],
		"milestones": ["医療情報学のオープンキャンパスに行く"],
		"summary": "地域医療の格差をなくしたいという思いは祖母の体験から生まれた。強みを活かしつつ、医療と技術の両方を学ぶ。",
		"question": "最初の一歩はいつ踏み出しますか？"
	}`,
}

// mustPayload decodes a fixture outside of a test goroutine.
func mustPayload(step Step) Payload {
	var p Payload
	if err := json.Unmarshal([]byte(validPayloadJSON[step]), &p); err != nil {
		panic(err)
	}
	return p
}

// validPayload decodes a fresh copy of the fixture for step, so numbers are float64 as from a provider.
func validPayload(t *testing.T, step Step) Payload {
	t.Helper()
	raw, ok := validPayloadJSON[step]
	if !ok {
		t.Fatalf("no fixture for %s", step)
	}
	var p Payload
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		t.Fatalf("decode %s fixture: %v", step, err)
	}
	return p
}

func listAt(t *testing.T, p map[string]any, key string) []any {
	t.Helper()
	l, ok := p[key].([]any)
	if !ok {
		t.Fatalf("fixture field %s is not a list", key)
	}
	return l
}

func objAt(t *testing.T, v any) map[string]any {
	t.Helper()
	m, ok := v.(map[string]any)
	if !ok {
		t.Fatalf("fixture value is not an object: %T", v)
	}
	return m
}

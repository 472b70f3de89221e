package response

import (
	"reflect"
	"testing"
)

// recordingSink 按写入顺序记录每个片段，供重排逻辑断言使用。
type recordingSink struct {
	writes []sinkWrite
}

type sinkWrite struct {
	kind string // "reasoning" | "content"
	text string
}

func (r *recordingSink) WriteReasoning(text string) error {
	r.writes = append(r.writes, sinkWrite{kind: "reasoning", text: text})
	return nil
}

func (r *recordingSink) WriteContent(text string) error {
	r.writes = append(r.writes, sinkWrite{kind: "content", text: text})
	return nil
}

func TestReorderBufferScenario(t *testing.T) {
	sink := &recordingSink{}
	buf := NewReasoningBuffer(sink)

	for _, f := range []struct {
		thought bool
		text    string
	}{
		{true, "Let me "},
		{true, "think."},
		{false, "The "},
		{false, "answer."},
	} {
		var err error
		if f.thought {
			err = buf.OnThought(f.text)
		} else {
			err = buf.OnAnswer(f.text)
		}
		if err != nil {
			t.Fatalf("fragment %q: %v", f.text, err)
		}
	}
	if err := buf.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	want := []sinkWrite{
		{"reasoning", "Let me think."},
		{"content", "The "},
		{"content", "answer."},
	}
	if !reflect.DeepEqual(sink.writes, want) {
		t.Errorf("writes = %v, want %v", sink.writes, want)
	}
}

func TestReorderBufferNoContentLoss(t *testing.T) {
	sink := &recordingSink{}
	buf := NewReasoningBuffer(sink)

	in := []sinkWrite{
		{"reasoning", "a"}, {"content", "b"}, {"reasoning", "c"},
		{"content", "d"}, {"reasoning", "e"},
	}
	for _, f := range in {
		if f.kind == "reasoning" {
			_ = buf.OnThought(f.text)
		} else {
			_ = buf.OnAnswer(f.text)
		}
	}
	_ = buf.Flush()

	// 所有输入文本都必须出现在输出里，一个不多一个不少
	counts := map[string]int{}
	for _, f := range in {
		counts[f.text]++
	}
	for _, w := range sink.writes {
		counts[w.text]--
	}
	for text, n := range counts {
		if n != 0 {
			t.Errorf("fragment %q count off by %d", text, n)
		}
	}
}

func TestReorderBufferReasoningBeforeContent(t *testing.T) {
	sink := &recordingSink{}
	buf := NewReasoningBuffer(sink)

	_ = buf.OnThought("t1")
	_ = buf.OnThought("t2")
	_ = buf.OnAnswer("c1")
	_ = buf.OnThought("t3")
	_ = buf.Flush()

	// 正文开始前的思考全部合并成一块，排在第一条正文之前
	if len(sink.writes) < 2 {
		t.Fatalf("writes = %v", sink.writes)
	}
	if sink.writes[0] != (sinkWrite{"reasoning", "t1t2"}) {
		t.Errorf("first write = %v, want combined reasoning", sink.writes[0])
	}
	if sink.writes[1] != (sinkWrite{"content", "c1"}) {
		t.Errorf("second write = %v", sink.writes[1])
	}
}

func TestReorderBufferFlushIdempotent(t *testing.T) {
	sink := &recordingSink{}
	buf := NewReasoningBuffer(sink)

	_ = buf.OnThought("x")
	_ = buf.Flush()
	_ = buf.Flush()
	_ = buf.Flush()

	want := []sinkWrite{{"reasoning", "x"}}
	if !reflect.DeepEqual(sink.writes, want) {
		t.Errorf("writes = %v, want single reasoning chunk", sink.writes)
	}
}

func TestReorderBufferEmptyReasoningWritesNothing(t *testing.T) {
	sink := &recordingSink{}
	buf := NewReasoningBuffer(sink)

	_ = buf.OnAnswer("hello")
	_ = buf.Flush()

	want := []sinkWrite{{"content", "hello"}}
	if !reflect.DeepEqual(sink.writes, want) {
		t.Errorf("writes = %v, want content only", sink.writes)
	}
}

func TestReorderBufferReasoningOnly(t *testing.T) {
	sink := &recordingSink{}
	buf := NewReasoningBuffer(sink)

	_ = buf.OnThought("deep ")
	_ = buf.OnThought("thoughts")
	_ = buf.Flush()

	want := []sinkWrite{{"reasoning", "deep thoughts"}}
	if !reflect.DeepEqual(sink.writes, want) {
		t.Errorf("writes = %v, want combined reasoning", sink.writes)
	}
}

func TestReorderBufferLateThoughtPassesThrough(t *testing.T) {
	sink := &recordingSink{}
	buf := NewReasoningBuffer(sink)

	_ = buf.OnThought("a")
	_ = buf.OnAnswer("hello")
	_ = buf.OnThought("b")
	_ = buf.Flush()

	want := []sinkWrite{
		{"reasoning", "a"},
		{"content", "hello"},
		{"reasoning", "b"},
	}
	if !reflect.DeepEqual(sink.writes, want) {
		t.Errorf("writes = %v, want %v", sink.writes, want)
	}
}

func TestReorderBufferEmptyAnswerTriggersFlush(t *testing.T) {
	sink := &recordingSink{}
	buf := NewReasoningBuffer(sink)

	_ = buf.OnThought("r")
	_ = buf.OnAnswer("")

	if len(sink.writes) != 2 {
		t.Fatalf("writes = %v", sink.writes)
	}
	if sink.writes[0] != (sinkWrite{"reasoning", "r"}) {
		t.Errorf("first write = %v, want reasoning before empty content", sink.writes[0])
	}
	if sink.writes[1] != (sinkWrite{"content", ""}) {
		t.Errorf("second write = %v", sink.writes[1])
	}
}

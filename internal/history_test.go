package internal

import (
	"testing"
)

func TestGroupHistory_Grouping(t *testing.T) {
	records := []HistoryRecord{
		CreateTestHistoryRecord("t1", "customer", "first", "2024-03-01T10:00:00Z"),
		CreateTestHistoryRecord("t2", "customer", "other ticket", "2024-03-02T09:00:00Z"),
		CreateTestHistoryRecord("t1", "bot", "reply", "2024-03-01T10:01:00Z"),
	}

	got := GroupHistory(records)
	if len(got) != 2 {
		t.Fatalf("GroupHistory() returned %d groups, want 2", len(got))
	}

	// Most recent activity first.
	if got[0].ID != "t2" || got[1].ID != "t1" {
		t.Errorf("group order = [%s, %s], want [t2, t1]", got[0].ID, got[1].ID)
	}
	if len(got[1].Messages) != 2 {
		t.Errorf("t1 has %d messages, want 2", len(got[1].Messages))
	}
	for _, conv := range got {
		if conv.Origin != OriginRemote {
			t.Errorf("group %s origin = %q, want %q", conv.ID, conv.Origin, OriginRemote)
		}
	}
}

func TestGroupHistory_SortsRegardlessOfInputOrder(t *testing.T) {
	// Same records in two arrival orders must produce the same timeline.
	forward := []HistoryRecord{
		CreateTestHistoryRecord("t1", "customer", "a", "2024-03-01T10:00:00Z"),
		CreateTestHistoryRecord("t1", "bot", "b", "2024-03-01T10:01:00Z"),
		CreateTestHistoryRecord("t1", "customer", "c", "2024-03-01T10:02:00Z"),
	}
	scrambled := []HistoryRecord{forward[2], forward[0], forward[1]}

	for _, records := range [][]HistoryRecord{forward, scrambled} {
		got := GroupHistory(records)
		if len(got) != 1 {
			t.Fatalf("GroupHistory() returned %d groups, want 1", len(got))
		}
		texts := []string{}
		for _, msg := range got[0].Messages {
			texts = append(texts, msg.Text)
		}
		if texts[0] != "a" || texts[1] != "b" || texts[2] != "c" {
			t.Errorf("message order = %v, want [a b c]", texts)
		}
	}
}

func TestGroupHistory_GroupTimestampIsEarliest(t *testing.T) {
	// The newest record arrives first; the group timestamp must still
	// reflect the earliest one.
	records := []HistoryRecord{
		CreateTestHistoryRecord("t1", "bot", "late", "2024-03-05T10:00:00Z"),
		CreateTestHistoryRecord("t1", "customer", "early", "2024-03-01T10:00:00Z"),
	}

	got := GroupHistory(records)
	if got[0].Timestamp != "2024-03-01T10:00:00Z" {
		t.Errorf("group timestamp = %q, want the earliest record's", got[0].Timestamp)
	}
}

func TestGroupHistory_Title(t *testing.T) {
	tests := []struct {
		name    string
		records []HistoryRecord
		want    string
	}{
		{
			name: "subject from meta",
			records: []HistoryRecord{
				{SessionID: "t1", Role: "customer", Content: "x", Timestamp: "2024-03-01T10:00:00Z",
					Meta: map[string]string{"subject": "Refund request"}},
			},
			want: "Refund request",
		},
		{
			name: "default label without subject",
			records: []HistoryRecord{
				{SessionID: "t1", Role: "customer", Content: "x", Timestamp: "2024-03-01T10:00:00Z"},
			},
			want: DefaultTicketTitle,
		},
		{
			name: "subject on a later record fills the default",
			records: []HistoryRecord{
				{SessionID: "t1", Role: "customer", Content: "x", Timestamp: "2024-03-01T10:00:00Z"},
				{SessionID: "t1", Role: "bot", Content: "y", Timestamp: "2024-03-01T10:01:00Z",
					Meta: map[string]string{"subject": "Refund request"}},
			},
			want: "Refund request",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := GroupHistory(tt.records)
			if len(got) != 1 {
				t.Fatalf("GroupHistory() returned %d groups, want 1", len(got))
			}
			if got[0].Title != tt.want {
				t.Errorf("title = %q, want %q", got[0].Title, tt.want)
			}
		})
	}
}

func TestGroupHistory_Deduplicates(t *testing.T) {
	record := CreateTestHistoryRecord("t1", "customer", "hello", "2024-03-01T10:00:00Z")
	got := GroupHistory([]HistoryRecord{record, record, record})

	if len(got) != 1 || len(got[0].Messages) != 1 {
		t.Errorf("replayed record not deduplicated: %d groups, %d messages", len(got), len(got[0].Messages))
	}
}

func TestGroupHistory_SkipsRecordsWithoutSessionID(t *testing.T) {
	records := []HistoryRecord{
		CreateTestHistoryRecord("", "customer", "orphan", "2024-03-01T10:00:00Z"),
	}

	if got := GroupHistory(records); len(got) != 0 {
		t.Errorf("GroupHistory() returned %d groups for orphan records, want 0", len(got))
	}
}

func TestGroupHistory_RoleMapping(t *testing.T) {
	records := []HistoryRecord{
		CreateTestHistoryRecord("t1", "customer", "a", "2024-03-01T10:00:00Z"),
		CreateTestHistoryRecord("t1", "user", "b", "2024-03-01T10:01:00Z"),
		CreateTestHistoryRecord("t1", "agent", "c", "2024-03-01T10:02:00Z"),
		CreateTestHistoryRecord("t1", "assistant", "d", "2024-03-01T10:03:00Z"),
	}

	got := GroupHistory(records)[0].Messages
	want := []Sender{SenderUser, SenderUser, SenderAgent, SenderBot}
	for i, msg := range got {
		if msg.Sender != want[i] {
			t.Errorf("message %d sender = %q, want %q", i, msg.Sender, want[i])
		}
	}
}

package seq

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestHeaderRoundTrip(t *testing.T) {

	data := map[string]string{
		"api":  "SeqAPI",
		"std":  "2020-07-15",
		"time": "1595000000",
		"load": "std:math\x00std:string\x00std:stdio",
	}

	writer := NewBufferWriter()
	writer.PutFileHeader(1, 2, 3, data)

	header, err := NewByteBuffer(writer.Bytes()).Reader().Header()
	if err != nil {
		t.Fatalf("Header() raised an error: %v", err)
	}

	if !header.CheckVersion(1, 2) {
		t.Error("CheckVersion(1, 2) = false, want true")
	}
	if header.CheckVersion(1, 3) {
		t.Error("CheckVersion(1, 3) = true, want false")
	}
	if !header.CheckPatch(3) {
		t.Error("CheckPatch(3) = false, want true")
	}
	if header.CheckPatch(4) {
		t.Error("CheckPatch(4) = true, want false")
	}
	if got := header.VersionString(); got != "1.2.3" {
		t.Errorf("VersionString() = %q, want \"1.2.3\"", got)
	}

	for key, want := range data {
		got, ok := header.Value(key)
		if !ok {
			t.Errorf("Value(%q) missing", key)
			continue
		}
		if got != want {
			t.Errorf("Value(%q) = %q, want %q", key, got, want)
		}
	}

	table := header.ValueTable("load")
	if diff := cmp.Diff([]string{"std:math", "std:string", "std:stdio"}, table); diff != "" {
		t.Errorf("ValueTable(\"load\") mismatch (-want +got):\n%s", diff)
	}
}

func TestHeaderMissingTable(t *testing.T) {

	header := NewFileHeader(1, 0, 0, nil)

	if table := header.ValueTable("load"); len(table) != 0 {
		t.Errorf("ValueTable() on missing key = %v, want empty", table)
	}
	if _, ok := header.Value("load"); ok {
		t.Error("Value() on missing key reported ok")
	}
}

func TestHeaderRejectsBadSignature(t *testing.T) {

	writer := NewBufferWriter()
	writer.PutFileHeader(1, 0, 0, nil)
	bytes := writer.Bytes()
	bytes[0] = 'x'

	if _, err := NewByteBuffer(bytes).Reader().Header(); err == nil {
		t.Error("Header() with bad signature did not fail")
	}
}

func TestHeaderRejectsTrailingKey(t *testing.T) {

	// a key without its value
	payload := []byte{'s', 'q', 'c', 0, 1, 0, 0, 4, 0, 0, 0, 'k', 'e', 'y', 0}

	if _, err := NewByteBuffer(payload).Reader().Header(); err == nil {
		t.Error("Header() with trailing key did not fail")
	}
}

func TestHeaderLeavesBytecodeBehind(t *testing.T) {

	writer := NewBufferWriter()
	writer.PutFileHeader(1, 0, 0, map[string]string{"api": "SeqAPI"})
	writer.PutByte('A')

	reader := NewByteBuffer(writer.Bytes()).Reader()
	if _, err := reader.Header(); err != nil {
		t.Fatalf("Header() raised an error: %v", err)
	}

	if got := reader.NextByte(); got != 'A' {
		t.Errorf("byte after header = %q, want 'A'", got)
	}
}

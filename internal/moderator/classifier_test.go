package moderator

import "testing"

func TestClassify(t *testing.T) {
	forbidden := []string{"golpe", "scam"}
	sensitive := []string{"briga", "politica"}

	tests := []struct {
		name string
		body string
		kind VerdictKind
		word string
	}{
		{"clean message", "bom dia pessoal", VerdictClean, ""},
		{"forbidden exact", "isso é golpe", VerdictForbidden, "golpe"},
		{"forbidden case insensitive", "ISSO É GOLPE", VerdictForbidden, "golpe"},
		{"forbidden substring", "golpezinho de sempre", VerdictForbidden, "golpe"},
		{"sensitive match", "vai dar briga", VerdictSensitive, "briga"},
		{"forbidden wins over sensitive", "golpe e briga", VerdictForbidden, "golpe"},
		{"first forbidden in list order", "scam e golpe", VerdictForbidden, "golpe"},
		{"empty body", "", VerdictClean, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := Classify(tt.body, forbidden, sensitive)
			if v.Kind != tt.kind {
				t.Errorf("Classify(%q).Kind = %v, want %v", tt.body, v.Kind, tt.kind)
			}
			if v.Word != tt.word {
				t.Errorf("Classify(%q).Word = %q, want %q", tt.body, v.Word, tt.word)
			}
		})
	}
}

func TestClassifySkipsEmptyWords(t *testing.T) {
	v := Classify("qualquer coisa", []string{""}, []string{""})
	if v.Kind != VerdictClean {
		t.Errorf("empty list entries must never match, got %v", v.Kind)
	}
}

func TestClassifyUppercaseListEntry(t *testing.T) {
	v := Classify("palavra proibida aqui", []string{"PROIBIDA"}, nil)
	if v.Kind != VerdictForbidden {
		t.Error("expected match regardless of list entry casing")
	}
	if v.Word != "PROIBIDA" {
		t.Errorf("Word = %q, want the list entry as written", v.Word)
	}
}

package ingest

import (
	"reflect"
	"testing"

	"github.com/cognicore/jotlens/pkg/jotlens/stoplist"
)

func TestTokenizerBasic(t *testing.T) {
	tokenizer := NewTokenizer([]string{"the", "a", "and", "of"})

	tokens := tokenizer.Tokenize("The quick brown fox jumps over the lazy dog")
	want := []string{"quick", "brown", "fox", "jumps", "over", "lazy", "dog"}
	if !reflect.DeepEqual(tokens, want) {
		t.Errorf("Tokenize = %v, want %v", tokens, want)
	}
}

func TestTokenizerPunctuation(t *testing.T) {
	tokenizer := NewTokenizer(stoplist.Default())

	tests := []struct {
		name string
		text string
		want []string
	}{
		{"trailing period", "Finished the work project.", []string{"finished", "work", "project"}},
		{"apostrophe joins", "I don't know, it's fine!", []string{"dont", "know", "fine"}},
		{"hyphen joins", "Update the to-do list", []string{"update", "todo", "list"}},
		{"underscore kept", "file_name here", []string{"file_name", "here"}},
		{"digits kept", "Ran 5 km", []string{"ran", "5", "km"}},
		{"newlines split", "deep\nwork\tsession", []string{"deep", "work", "session"}},
		{"unicode letters", "Café Über", []string{"café", "über"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tokenizer.Tokenize(tt.text)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Tokenize(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestTokenizerEmpty(t *testing.T) {
	tokenizer := NewTokenizer(stoplist.Default())

	for _, text := range []string{"", "   ", "...!?", "the and of"} {
		if got := tokenizer.Tokenize(text); len(got) != 0 {
			t.Errorf("Tokenize(%q) = %v, want empty", text, got)
		}
	}
}

func TestTokenizerStopwordsCaseInsensitive(t *testing.T) {
	tokenizer := NewTokenizer([]string{"The", "AND"})

	got := tokenizer.Tokenize("the cat AND The dog")
	want := []string{"cat", "dog"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Tokenize = %v, want %v", got, want)
	}
	if !tokenizer.IsStop("and") {
		t.Error("IsStop should match lowercased configured word")
	}
}

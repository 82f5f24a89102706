package domain

import (
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestDeriveTitleShortTextUnchanged(t *testing.T) {
	assert.Equal(t, "What is OpenClaw?", DeriveTitle("  What is OpenClaw?  ", 60))
}

func TestDeriveTitleTruncatesByRunes(t *testing.T) {
	long := "коротенький вопрос про лобстеров, который никак не влезает в заголовок"
	title := DeriveTitle(long, 60)
	assert.Equal(t, 60, utf8.RuneCountInString(title))
	assert.Equal(t, string([]rune(long)[:60]), title)
}

func TestTranscriptCloneIsIndependent(t *testing.T) {
	tr := Transcript{{Role: RoleUser, Content: "hi", Finalized: true}}
	cp := tr.Clone()
	cp[0].Content = "changed"
	assert.Equal(t, "hi", tr[0].Content)
}

func TestTranscriptLast(t *testing.T) {
	assert.Nil(t, Transcript{}.Last())

	tr := Transcript{
		{Role: RoleUser, Content: "a", Finalized: true},
		{Role: RoleAssistant, Content: "b"},
	}
	assert.Equal(t, "b", tr.Last().Content)
}

package meta

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseFileName(t *testing.T) {
	tests := []struct {
		name        string
		in          string
		wantTitle   string
		wantAuthors []string
	}{
		{"book title marks", "《深度学习导论》-张三.pdf", "深度学习导论", []string{"张三"}},
		{"book title marks with several authors", "《图神经网络》-李四、王五.pdf", "图神经网络", []string{"李四", "王五"}},
		{"dash separated", "Attention Is All You Need-Vaswani.pdf", "Attention Is All You Need", []string{"Vaswani"}},
		{"underscore separated", "ResNet_He.PDF", "ResNet", []string{"He"}},
		{"directory prefix dropped", "incoming/papers/BERT-Devlin.pdf", "BERT", []string{"Devlin"}},
		{"windows path", `C:\in\GPT_Radford.pdf`, "GPT", []string{"Radford"}},
		{"no author", "survey.pdf", "survey", nil},
		{"no extension", "notes", "notes", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			title, authors := ParseFileName(tt.in)
			assert.Equal(t, tt.wantTitle, title)
			assert.Equal(t, tt.wantAuthors, authors)
		})
	}
}

func TestSplitKeywords(t *testing.T) {
	assert.Nil(t, SplitKeywords(""))
	assert.Equal(t, []string{"nlp", "transformer", "注意力", "翻译"}, SplitKeywords(" nlp; transformer，注意力；翻译 ,"))
	assert.Len(t, SplitKeywords("a,b,c,d,e,f,g,h,i,j"), MaxKeywords)
}

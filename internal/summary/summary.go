// Package summary produces short professional summaries of paper PDFs.
package summary

import (
	"context"
	"errors"
)

// MaxPDFBytes bounds the size of a document sent for summarization.
const MaxPDFBytes = 20 << 20

// Prompt asks for a 300-500 character Chinese abstract covering the paper's
// thesis, key methods and main conclusions.
const Prompt = "请将以下学术论文内容，总结为一段300-500字的中文摘要，风格要专业、客观。" +
	"需要清晰地概括出论文的核心论点、使用了什么关键方法或技术，以及得出了哪些主要结论。"

var (
	// ErrNotPDF is returned when the payload cannot be parsed as a PDF with at least one page.
	ErrNotPDF = errors.New("not a readable pdf")
	// ErrTooLarge is returned when the payload exceeds MaxPDFBytes.
	ErrTooLarge = errors.New("pdf too large to summarize")
	// ErrEmptySummary is returned when the model answers with no usable text.
	ErrEmptySummary = errors.New("model returned an empty summary")
	// ErrRefused is returned when the model declines the request.
	ErrRefused = errors.New("model refused to summarize")
)

// Summarizer turns a PDF into a summary.
type Summarizer interface {
	Summarize(ctx context.Context, pdf []byte) (string, error)
}
